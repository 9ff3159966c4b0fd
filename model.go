package main

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// model is the Bubble Tea model for the TUI application
type model struct {
	player  Player
	fetcher *ArtworkFetcher
	logger  *zap.Logger

	snapshot  PlayerSnapshot
	fetchedAt time.Time // When snapshot was read, for position interpolation
	lastError error

	color  string
	width  int
	height int

	// Album artwork support
	artworkEncoded string // Kitty protocol-encoded artwork for display
	artworkURL     string // URL the current artwork was requested for
	supportsKitty  bool   // Whether terminal supports Kitty graphics

	// Text scrolling state
	scrollOffset int // Current scroll position for text animation
	scrollPause  int // Pause counter at start/end of scroll
	scrollTick   int // Tick counter for slowing scroll speed

	keys keyMap
	help help.Model
}

func newModel(player Player, fetcher *ArtworkFetcher, logger *zap.Logger, supportsKitty bool) model {
	if logger == nil {
		logger = zap.NewNop()
	}
	return model{
		player:        player,
		fetcher:       fetcher,
		logger:        logger,
		snapshot:      PlayerSnapshot{TrackName: notRunningTrack},
		color:         config.Get().UI.Color,
		supportsKitty: supportsKitty,
		keys:          newKeyMap(),
		help:          help.New(),
	}
}

// UI refresh tick - fires every ui_refresh_ms for smooth rendering
type tickMsg time.Time

// Data fetch tick - fires every data_fetch_ms to query Spotify
type fetchMsg time.Time

// Result of one status query
type snapshotMsg struct {
	snapshot PlayerSnapshot
	err      error
}

// Result of a playback command
type commandMsg struct {
	action Action
	err    error
}

// Result of downloading and encoding artwork
type artworkMsg struct {
	url     string
	encoded string
	color   string // Extracted dominant color, empty unless color_mode is auto
	err     error
}

// Schedule next UI refresh tick
func tickCmd() tea.Cmd {
	cfg := config.Get()
	return tea.Tick(time.Duration(cfg.Timing.UIRefreshMs)*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Schedule next data fetch
func fetchCmd() tea.Cmd {
	cfg := config.Get()
	return tea.Tick(time.Duration(cfg.Timing.DataFetchMs)*time.Millisecond, func(t time.Time) tea.Msg {
		return fetchMsg(t)
	})
}

// Query Spotify in the background (doesn't block UI)
func (m model) fetchStatus() tea.Cmd {
	player := m.player
	return func() tea.Msg {
		snapshot, err := player.Status(context.Background())
		return snapshotMsg{snapshot: snapshot, err: err}
	}
}

func (m model) sendCommand(action Action) tea.Cmd {
	player := m.player
	return func() tea.Msg {
		return commandMsg{action: action, err: player.Send(context.Background(), action)}
	}
}

// Download and encode artwork in the background
func (m model) fetchArtwork(url string) tea.Cmd {
	fetcher := m.fetcher
	logger := m.logger
	extractColor := config.Get().UI.ColorMode == "auto"
	return func() tea.Msg {
		data, err := fetcher.Fetch(context.Background(), url)
		if err != nil {
			logger.Debug("artwork fetch failed", zap.String("url", url), zap.Error(err))
			return artworkMsg{url: url, err: err}
		}

		msg := artworkMsg{url: url}
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Warn("artwork processing panicked", zap.Any("panic", r))
					msg.encoded, msg.color = "", ""
				}
			}()
			msg.color, msg.encoded, msg.err = processArtwork(data, extractColor)
		}()
		return msg
	}
}

// playPauseAction picks the command for the single play/pause control
func (m model) playPauseAction() Action {
	if m.snapshot.IsPlaying {
		return ActionPause
	}
	return ActionPlay
}

// Current position in seconds, interpolated between fetches while playing
func (m model) currentPosition() float64 {
	pos := float64(m.snapshot.TimePlayed)
	if !m.snapshot.IsPlaying || m.fetchedAt.IsZero() {
		return pos
	}

	pos += time.Since(m.fetchedAt).Seconds()

	if duration := float64(m.snapshot.TotalTime) / 1000; duration > 0 && pos > duration {
		pos = duration
	}
	return pos
}

func (m model) artworkVisible() bool {
	return m.supportsKitty && config.Get().Artwork.Enabled
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		m.fetchStatus(),
		fetchCmd(),
		watchConfigCmd(),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Exit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.PlayPause):
			return m, m.sendCommand(m.playPauseAction())
		case key.Matches(msg, m.keys.Next):
			return m, m.sendCommand(ActionNext)
		case key.Matches(msg, m.keys.Previous):
			return m, m.sendCommand(ActionPrevious)
		case key.Matches(msg, m.keys.QuitSpotify):
			return m, m.sendCommand(ActionQuit)
		case key.Matches(msg, m.keys.Artwork):
			cfg := config.Get()
			cfg.Artwork.Enabled = !cfg.Artwork.Enabled
			config.Set(cfg)
			m.artworkEncoded = ""
			m.artworkURL = ""
			if cfg.Artwork.Enabled && m.supportsKitty && m.snapshot.AlbumArt != "" {
				m.artworkURL = m.snapshot.AlbumArt
				return m, m.fetchArtwork(m.snapshot.AlbumArt)
			}
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case configReloadMsg:
		cfg := config.Get()
		if cfg.UI.ColorMode == "manual" {
			m.color = cfg.UI.Color
		}
		if !cfg.Artwork.Enabled {
			m.artworkEncoded = ""
			m.artworkURL = ""
		} else if m.artworkEncoded == "" && m.supportsKitty {
			// Artwork was just enabled, fetch it for the current song
			m.artworkURL = ""
			return m, tea.Batch(watchConfigCmd(), m.fetchStatus())
		}
		return m, watchConfigCmd()

	case tickMsg:
		m.advanceScroll()
		return m, tickCmd()

	case fetchMsg:
		return m, tea.Batch(
			fetchCmd(),
			m.fetchStatus(),
		)

	case commandMsg:
		if msg.err != nil {
			m.lastError = msg.err
			return m, nil
		}
		// Fetch fresh state right after a control action
		return m, m.fetchStatus()

	case snapshotMsg:
		return m.applySnapshot(msg)

	case artworkMsg:
		// Drop results for a track we've already moved past
		if msg.url != m.artworkURL {
			return m, nil
		}
		if msg.err != nil {
			m.artworkEncoded = ""
			return m, nil
		}
		m.artworkEncoded = msg.encoded
		if config.Get().UI.ColorMode == "auto" && msg.color != "" {
			m.color = msg.color
		}
		return m, nil
	}

	return m, nil
}

func (m model) applySnapshot(msg snapshotMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.lastError = msg.err
		return m, nil
	}

	if msg.snapshot.TrackName != m.snapshot.TrackName {
		m.scrollOffset = 0
		m.scrollPause = 30 // Pause at start for 3 seconds
		m.scrollTick = 0
	}

	m.snapshot = msg.snapshot
	m.fetchedAt = time.Now()
	m.lastError = nil

	if !m.snapshot.Running() || m.snapshot.AlbumArt == "" {
		m.artworkEncoded = ""
		m.artworkURL = ""
		return m, nil
	}

	if m.artworkVisible() && m.snapshot.AlbumArt != m.artworkURL {
		m.artworkURL = m.snapshot.AlbumArt
		return m, m.fetchArtwork(m.artworkURL)
	}
	return m, nil
}

func (m *model) maxTextLen() int {
	cfg := config.Get()
	if m.artworkVisible() {
		return cfg.Text.MaxLengthWithArt
	}
	return cfg.Text.MaxLengthNoArt
}

// advanceScroll moves the scrolling text one step every third tick
func (m *model) advanceScroll() {
	m.scrollTick++
	if m.scrollPause > 0 {
		m.scrollPause--
		return
	}
	if m.scrollTick%3 != 0 {
		return
	}

	m.scrollOffset++

	longest := longestRuneLen(m.snapshot.TrackName, m.snapshot.Artist)
	if longest > m.maxTextLen() {
		loopPoint := longest + len([]rune(scrollSeparator))
		if m.scrollOffset >= loopPoint {
			m.scrollOffset = 0
			m.scrollPause = 30 // Pause for 3 seconds when looping back
		}
	}
}
