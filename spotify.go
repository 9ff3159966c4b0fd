package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

var (
	// ErrExecution means osascript could not be launched or exited non-zero
	ErrExecution = errors.New("failed to execute AppleScript")
	// ErrMalformedOutput means the status line did not split into six fields
	ErrMalformedOutput = errors.New("invalid output format from AppleScript")
	// ErrInvalidAction means an action outside play/pause/next/previous/quit
	ErrInvalidAction = errors.New("invalid action")
)

// notRunningTrack is the track name reported when Spotify isn't running
const notRunningTrack = "Not Running"

// statusScript asks Spotify for the current track as a single pipe-delimited line.
// When Spotify isn't running it returns a placeholder line in the same shape
// so both cases go through the same parser.
const statusScript = `on run
	if application "Spotify" is running then
		tell application "Spotify"
			set trackName to name of current track
			set trackArtist to artist of current track
			set artUrl to artwork url of current track
			set trackDuration to duration of current track
			set playerPosition to player position
			set playerState to player state as string
			return trackName & "|" & trackArtist & "|" & artUrl & "|" & playerState & "|" & trackDuration & "|" & (playerPosition * 1000 as integer)
		end tell
	else
		return "Not Running|None||stopped|0|0"
	end if
end run`

// PlayerSnapshot is a point-in-time read of Spotify's player state
type PlayerSnapshot struct {
	TrackName  string `json:"track_name"`
	Artist     string `json:"artist"`
	AlbumArt   string `json:"album_art"`
	IsPlaying  bool   `json:"is_playing"`
	TotalTime  uint32 `json:"total_time"`  // milliseconds
	TimePlayed uint32 `json:"time_played"` // seconds
}

// Running reports whether the snapshot came from a running Spotify
func (s PlayerSnapshot) Running() bool {
	return s.TrackName != notRunningTrack
}

// Progress returns the played fraction of the track in [0, 1]
func (s PlayerSnapshot) Progress() float64 {
	if s.TotalTime == 0 {
		return 0
	}
	p := float64(s.TimePlayed) * 1000 / float64(s.TotalTime)
	if p > 1 {
		return 1
	}
	return p
}

// Action is a playback command understood by Spotify
type Action string

const (
	ActionPlay     Action = "play"
	ActionPause    Action = "pause"
	ActionNext     Action = "next"
	ActionPrevious Action = "previous"
	ActionQuit     Action = "quit"
)

var actionScripts = map[Action]string{
	ActionPlay:     `tell application "Spotify" to play`,
	ActionPause:    `tell application "Spotify" to pause`,
	ActionNext:     `tell application "Spotify" to next track`,
	ActionPrevious: `tell application "Spotify" to previous track`,
	ActionQuit:     `tell application "Spotify" to quit`,
}

// ParseAction validates a free-form action name
func ParseAction(name string) (Action, error) {
	action := Action(name)
	if _, ok := actionScripts[action]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, name)
	}
	return action, nil
}

// Spotify queries and controls the Spotify desktop app through AppleScript
type Spotify struct {
	executor ScriptExecutor
	logger   *zap.Logger
}

// NewSpotify creates a Spotify client that runs scripts with executor
func NewSpotify(executor ScriptExecutor, logger *zap.Logger) *Spotify {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Spotify{executor: executor, logger: logger}
}

// Status runs the status script once and parses its output
func (s *Spotify) Status(ctx context.Context) (PlayerSnapshot, error) {
	out, err := s.run(ctx, statusScript)
	if err != nil {
		return PlayerSnapshot{}, err
	}

	snapshot, err := parseStatusLine(out)
	if err != nil {
		s.logger.Warn("unexpected status output", zap.String("output", out), zap.Error(err))
		return PlayerSnapshot{}, err
	}
	return snapshot, nil
}

// Send runs the fixed script for action. Output is ignored.
func (s *Spotify) Send(ctx context.Context, action Action) error {
	script, ok := actionScripts[action]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidAction, string(action))
	}
	if _, err := s.run(ctx, script); err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	return nil
}

func (s *Spotify) run(ctx context.Context, script string) (string, error) {
	res, err := s.executor.Run(ctx, script)
	if err != nil {
		s.logger.Warn("osascript failed to run", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrExecution, err)
	}
	if res.ExitCode != 0 {
		s.logger.Warn("osascript exited with error", zap.Int("exit_code", res.ExitCode))
		return "", fmt.Errorf("%w: exit status %d", ErrExecution, res.ExitCode)
	}
	return res.Stdout, nil
}

// parseStatusLine turns "name|artist|art|state|duration_ms|position_ms" into a snapshot.
// Missing fields are fatal, unparseable numbers fall back to 0.
func parseStatusLine(output string) (PlayerSnapshot, error) {
	parts := strings.Split(strings.TrimSpace(output), "|")
	if len(parts) < 6 {
		return PlayerSnapshot{}, fmt.Errorf("%w: got %d fields, expected 6", ErrMalformedOutput, len(parts))
	}

	return PlayerSnapshot{
		TrackName:  parts[0],
		Artist:     parts[1],
		AlbumArt:   parts[2],
		IsPlaying:  parts[3] == "playing",
		TotalTime:  parseMillis(parts[4]),
		TimePlayed: parseMillis(parts[5]) / 1000,
	}, nil
}

// parseMillis parses an unsigned decimal with an optional leading '+'
func parseMillis(field string) uint32 {
	v, err := strconv.ParseUint(strings.TrimPrefix(field, "+"), 10, 32)
	if err != nil {
		return 0
	}
	return uint32(v)
}
