package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// Config holds all application configuration
type Config struct {
	UI struct {
		Color     string `mapstructure:"color"`
		ColorMode string `mapstructure:"color_mode"`
		MaxWidth  int    `mapstructure:"max_width"`
	} `mapstructure:"ui"`
	Artwork struct {
		Enabled      bool `mapstructure:"enabled"`
		Padding      int  `mapstructure:"padding"`
		WidthPixels  int  `mapstructure:"width_pixels"`
		WidthColumns int  `mapstructure:"width_columns"`
	} `mapstructure:"artwork"`
	Text struct {
		MaxLengthWithArt int `mapstructure:"max_length_with_art"`
		MaxLengthNoArt   int `mapstructure:"max_length_no_art"`
	} `mapstructure:"text"`
	Timing struct {
		UIRefreshMs int `mapstructure:"ui_refresh_ms"`
		DataFetchMs int `mapstructure:"data_fetch_ms"`
	} `mapstructure:"timing"`
	Spotify struct {
		ScriptTimeoutMs int `mapstructure:"script_timeout_ms"`
	} `mapstructure:"spotify"`
	Log struct {
		File  string `mapstructure:"file"`
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

func defaultConfig() Config {
	var cfg Config
	cfg.UI.Color = "2"
	cfg.UI.ColorMode = "auto"
	cfg.UI.MaxWidth = 45
	cfg.Artwork.Enabled = true
	cfg.Artwork.Padding = 16
	cfg.Artwork.WidthPixels = 300
	cfg.Artwork.WidthColumns = 13
	cfg.Text.MaxLengthWithArt = 22
	cfg.Text.MaxLengthNoArt = 36
	cfg.Timing.UIRefreshMs = 100
	cfg.Timing.DataFetchMs = 800
	cfg.Spotify.ScriptTimeoutMs = 5000
	cfg.Log.Level = "info"
	return cfg
}

// SafeConfig wraps Config with thread-safe access
type SafeConfig struct {
	mu  sync.RWMutex
	cfg Config
}

// Get returns a copy of the current config (thread-safe read)
func (sc *SafeConfig) Get() Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.cfg
}

// Set updates the config (thread-safe write)
func (sc *SafeConfig) Set(cfg Config) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.cfg = cfg
}

var config = func() *SafeConfig {
	sc := &SafeConfig{}
	sc.Set(defaultConfig())
	return sc
}()

// Config file changed notification
type configReloadMsg struct{}

var configChangeChan = make(chan struct{}, 1)

// Watch for config file changes
func watchConfigCmd() tea.Cmd {
	return func() tea.Msg {
		<-configChangeChan
		return configReloadMsg{}
	}
}

// configError describes one invalid config field
type configError struct {
	field   string
	message string
}

func (e configError) Error() string {
	return fmt.Sprintf("%s: %s", e.field, e.message)
}

var hexColorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// isValidColor accepts ANSI codes 0-255 and #RGB / #RRGGBB hex colors
func isValidColor(color string) bool {
	if strings.HasPrefix(color, "#") {
		return hexColorPattern.MatchString(color)
	}
	if color == "" || len(color) > 3 {
		return false
	}
	for _, c := range color {
		if c < '0' || c > '9' {
			return false
		}
	}
	n, err := strconv.Atoi(color)
	return err == nil && n <= 255
}

// validateConfig returns one error per invalid field
func validateConfig(cfg *Config) []error {
	var errs []error
	add := func(field, format string, args ...any) {
		errs = append(errs, configError{field: field, message: fmt.Sprintf(format, args...)})
	}

	if !isValidColor(cfg.UI.Color) {
		add("ui.color", "invalid color format '%s'", cfg.UI.Color)
	}
	if cfg.UI.ColorMode != "auto" && cfg.UI.ColorMode != "manual" {
		add("ui.color_mode", "must be 'auto' or 'manual' (got '%s')", cfg.UI.ColorMode)
	}
	if cfg.UI.MaxWidth < 20 || cfg.UI.MaxWidth > 200 {
		add("ui.max_width", "must be between 20 and 200 (got %d)", cfg.UI.MaxWidth)
	}

	if cfg.Artwork.Padding < 0 || cfg.Artwork.Padding >= cfg.UI.MaxWidth {
		add("artwork.padding", "must be between 0 and ui.max_width (got %d)", cfg.Artwork.Padding)
	}
	if cfg.Artwork.WidthPixels <= 0 || cfg.Artwork.WidthPixels > 2000 {
		add("artwork.width_pixels", "must be between 1 and 2000 (got %d)", cfg.Artwork.WidthPixels)
	}
	if cfg.Artwork.WidthColumns <= 0 || cfg.Artwork.WidthColumns > 100 {
		add("artwork.width_columns", "must be between 1 and 100 (got %d)", cfg.Artwork.WidthColumns)
	}

	if cfg.Text.MaxLengthWithArt <= 0 || cfg.Text.MaxLengthWithArt > 200 {
		add("text.max_length_with_art", "must be between 1 and 200 (got %d)", cfg.Text.MaxLengthWithArt)
	}
	if cfg.Text.MaxLengthNoArt <= 0 || cfg.Text.MaxLengthNoArt > 200 {
		add("text.max_length_no_art", "must be between 1 and 200 (got %d)", cfg.Text.MaxLengthNoArt)
	}

	if cfg.Timing.UIRefreshMs < 10 || cfg.Timing.UIRefreshMs > 1000 {
		add("timing.ui_refresh_ms", "must be between 10 and 1000 (got %d)", cfg.Timing.UIRefreshMs)
	}
	if cfg.Timing.DataFetchMs < 100 || cfg.Timing.DataFetchMs > 60000 {
		add("timing.data_fetch_ms", "must be between 100 and 60000 (got %d)", cfg.Timing.DataFetchMs)
	}

	if cfg.Spotify.ScriptTimeoutMs < 100 || cfg.Spotify.ScriptTimeoutMs > 60000 {
		add("spotify.script_timeout_ms", "must be between 100 and 60000 (got %d)", cfg.Spotify.ScriptTimeoutMs)
	}
	if _, err := zapcore.ParseLevel(cfg.Log.Level); err != nil {
		add("log.level", "unknown level '%s'", cfg.Log.Level)
	}

	return errs
}

// applyDefaultsForInvalidFields resets every field named in errs to its default
func applyDefaultsForInvalidFields(cfg *Config, errs []error) {
	def := defaultConfig()
	for _, err := range errs {
		ce, ok := err.(configError)
		if !ok {
			continue
		}
		switch ce.field {
		case "ui.color":
			cfg.UI.Color = def.UI.Color
		case "ui.color_mode":
			cfg.UI.ColorMode = def.UI.ColorMode
		case "ui.max_width":
			cfg.UI.MaxWidth = def.UI.MaxWidth
		case "artwork.padding":
			cfg.Artwork.Padding = def.Artwork.Padding
		case "artwork.width_pixels":
			cfg.Artwork.WidthPixels = def.Artwork.WidthPixels
		case "artwork.width_columns":
			cfg.Artwork.WidthColumns = def.Artwork.WidthColumns
		case "text.max_length_with_art":
			cfg.Text.MaxLengthWithArt = def.Text.MaxLengthWithArt
		case "text.max_length_no_art":
			cfg.Text.MaxLengthNoArt = def.Text.MaxLengthNoArt
		case "timing.ui_refresh_ms":
			cfg.Timing.UIRefreshMs = def.Timing.UIRefreshMs
		case "timing.data_fetch_ms":
			cfg.Timing.DataFetchMs = def.Timing.DataFetchMs
		case "spotify.script_timeout_ms":
			cfg.Spotify.ScriptTimeoutMs = def.Spotify.ScriptTimeoutMs
		case "log.level":
			cfg.Log.Level = def.Log.Level
		}
	}

	// Padding is checked against max_width, which may only just have been fixed
	if cfg.Artwork.Padding >= cfg.UI.MaxWidth {
		cfg.Artwork.Padding = def.Artwork.Padding
	}
}

func printConfigWarnings(errs []error) {
	if len(errs) == 0 {
		return
	}
	fmt.Fprintln(os.Stderr, "Warning: invalid config values, using defaults for:")
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "  - %v\n", err)
	}
}

// loadConfig unmarshals viper's current state and fixes any invalid fields
func loadConfig(v *viper.Viper) (Config, []error, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, nil, fmt.Errorf("failed to parse config: %w", err)
	}
	errs := validateConfig(&cfg)
	applyDefaultsForInvalidFields(&cfg, errs)
	return cfg, errs, nil
}

// initConfig reads the config file, environment and flags into the global config.
// configFile overrides the XDG lookup when set.
func initConfig(v *viper.Viper, configFile string, flags *pflag.FlagSet) error {
	def := defaultConfig()
	v.SetDefault("ui.color", def.UI.Color)
	v.SetDefault("ui.color_mode", def.UI.ColorMode)
	v.SetDefault("ui.max_width", def.UI.MaxWidth)
	v.SetDefault("artwork.enabled", def.Artwork.Enabled)
	v.SetDefault("artwork.padding", def.Artwork.Padding)
	v.SetDefault("artwork.width_pixels", def.Artwork.WidthPixels)
	v.SetDefault("artwork.width_columns", def.Artwork.WidthColumns)
	v.SetDefault("text.max_length_with_art", def.Text.MaxLengthWithArt)
	v.SetDefault("text.max_length_no_art", def.Text.MaxLengthNoArt)
	v.SetDefault("timing.ui_refresh_ms", def.Timing.UIRefreshMs)
	v.SetDefault("timing.data_fetch_ms", def.Timing.DataFetchMs)
	v.SetDefault("spotify.script_timeout_ms", def.Spotify.ScriptTimeoutMs)
	v.SetDefault("log.file", def.Log.File)
	v.SetDefault("log.level", def.Log.Level)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check XDG_CONFIG_HOME first, fallback to ~/.config
		configHome := os.Getenv("XDG_CONFIG_HOME")
		if configHome == "" {
			if homeDir, err := os.UserHomeDir(); err == nil {
				configHome = filepath.Join(homeDir, ".config")
			}
		}
		if configHome != "" {
			v.AddConfigPath(filepath.Join(configHome, "spotplaying"))
		}
	}

	v.SetEnvPrefix("SPOTPLAYING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file found but had errors
			fmt.Fprintf(os.Stderr, "Warning: Error reading config file: %v\n", err)
		}
	}

	// Flags only take precedence when explicitly set
	if flags != nil {
		if f := flags.Lookup("color"); f != nil {
			if err := v.BindPFlag("ui.color", f); err != nil {
				return err
			}
		}
		if f := flags.Lookup("no-artwork"); f != nil && f.Changed {
			v.Set("artwork.enabled", false)
		}
	}

	cfg, errs, err := loadConfig(v)
	if err != nil {
		return err
	}
	printConfigWarnings(errs)
	config.Set(cfg)
	return nil
}

// watchConfig live-reloads the config file and notifies the TUI
func watchConfig(v *viper.Viper) {
	v.OnConfigChange(func(e fsnotify.Event) {
		cfg, _, err := loadConfig(v)
		if err != nil {
			return
		}
		config.Set(cfg)
		select {
		case configChangeChan <- struct{}{}:
		default:
			// Channel full, skip notification
		}
	})
	v.WatchConfig()
}
