package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// playerFactory builds the playback backend once config and logging are ready
type playerFactory func(cfg Config, logger *zap.Logger) Player

func newSpotifyPlayer(cfg Config, logger *zap.Logger) Player {
	timeout := time.Duration(cfg.Spotify.ScriptTimeoutMs) * time.Millisecond
	return NewSpotify(NewScriptExecutor(timeout, logger), logger)
}

// cli holds what every subcommand needs after PersistentPreRunE
type cli struct {
	viper      *viper.Viper
	newPlayer  playerFactory
	configFile string
	logger     *zap.Logger
	player     Player
}

func newRootCmd(newPlayer playerFactory) *cobra.Command {
	c := &cli{viper: viper.New(), newPlayer: newPlayer, logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "spotplaying",
		Short: "Show and control the current Spotify track",
		Long: `spotplaying shows the track Spotify is playing in a small terminal UI
and controls playback through AppleScript.

Run without arguments to open the UI, or use a subcommand for one-off
queries and controls.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = c.logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runUI()
		},
	}

	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default $XDG_CONFIG_HOME/spotplaying/config.yaml)")
	root.Flags().StringP("color", "c", "2", "Set the desired color (ANSI code or hex)")
	root.Flags().Bool("no-artwork", false, "Disable album artwork display")

	root.AddCommand(c.newStatusCmd(), c.newControlCmd())
	for _, action := range []Action{ActionPlay, ActionPause, ActionNext, ActionPrevious, ActionQuit} {
		root.AddCommand(c.newActionCmd(action))
	}

	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	if err := initConfig(c.viper, c.configFile, cmd.Flags()); err != nil {
		return err
	}
	cfg := config.Get()

	logger, err := newLogger(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return err
	}
	c.logger = logger
	c.player = c.newPlayer(cfg, logger)
	return nil
}

func (c *cli) runUI() error {
	watchConfig(c.viper)

	m := newModel(c.player, NewArtworkFetcher(c.logger), c.logger, supportsKittyGraphics())
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	return nil
}

func (c *cli) newStatusCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the current track once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := c.player.Status(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(snapshot)
			}
			printStatus(out, snapshot, isTerminal(out))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the snapshot as JSON")
	return cmd
}

func (c *cli) newControlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "control <play|pause|next|previous|quit>",
		Short: "Send a playback command to Spotify",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := ParseAction(args[0])
			if err != nil {
				return err
			}
			return c.player.Send(cmd.Context(), action)
		},
	}
}

func (c *cli) newActionCmd(action Action) *cobra.Command {
	return &cobra.Command{
		Use:   string(action),
		Short: fmt.Sprintf("Shorthand for 'control %s'", action),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.player.Send(cmd.Context(), action)
		},
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// printStatus writes a short human-readable summary of snapshot
func printStatus(w io.Writer, snapshot PlayerSnapshot, styled bool) {
	title := lipgloss.NewStyle()
	muted := lipgloss.NewStyle()
	if styled {
		cfg := config.Get()
		title = title.Foreground(lipgloss.Color(cfg.UI.Color)).Bold(true)
		muted = muted.Foreground(lipgloss.Color("245"))
	}

	if !snapshot.Running() {
		fmt.Fprintln(w, muted.Render("Spotify is not running"))
		return
	}

	state := "paused"
	if snapshot.IsPlaying {
		state = "playing"
	}

	fmt.Fprintf(w, "%s - %s\n", title.Render(snapshot.TrackName), snapshot.Artist)
	fmt.Fprintf(w, "%s %s/%s\n",
		muted.Render(state),
		formatTime(int64(snapshot.TimePlayed)),
		formatTime(int64(snapshot.TotalTime/1000)))
	if snapshot.AlbumArt != "" {
		fmt.Fprintln(w, muted.Render(snapshot.AlbumArt))
	}
}
