package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m model) View() string {
	cfg := config.Get()

	currentPos := m.currentPosition()
	duration := float64(m.snapshot.TotalTime) / 1000
	var progress float64
	if duration > 0 {
		progress = min(currentPos/duration, 1)
	}

	color := lipgloss.Color(m.color)
	highlight := lipgloss.NewStyle().Foreground(color)
	white := lipgloss.NewStyle().Foreground(lipgloss.Color("15")) // ANSI white

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(1, 2)

	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("203"))

	var textContent strings.Builder
	var progressBarContent string

	switch {
	case m.lastError != nil:
		textContent.WriteString(errorStyle.Render("Error: " + m.lastError.Error()))

	case !m.snapshot.Running():
		textContent.WriteString(highlight.Render("󰓃 Now Playing") + "\n\n")
		textContent.WriteString(mutedStyle.Render("Spotify is not running") + "\n\n")
		textContent.WriteString(dimStyle.Render("Open Spotify to begin"))

	default:
		textContent.WriteString(highlight.Render("󰓃 Now Playing") + "\n\n")

		addLine := func(icon, value string) {
			if value != "" {
				fmt.Fprintf(&textContent, "%s %s\n", highlight.Bold(true).Render(icon), value)
			}
		}

		maxLen := m.maxTextLen()
		addLine("󰎈 ", scrollText(m.snapshot.TrackName, maxLen, m.scrollOffset))
		addLine("󰠃 ", scrollText(m.snapshot.Artist, maxLen, m.scrollOffset))
		if m.snapshot.IsPlaying {
			addLine("󰐊 ", "Playing")
		} else {
			addLine("󰏤 ", "Paused")
		}

		// Bar width leaves room for the timestamps
		barWidth := max(cfg.UI.MaxWidth-17, 1)
		filled := int(float64(barWidth) * progress)
		progressBar := highlight.Render(strings.Repeat("█", filled)) +
			white.Render(strings.Repeat("─", barWidth-filled))

		progressBarContent = fmt.Sprintf(
			"\n%s %s/%s",
			progressBar,
			highlight.Render(formatTime(int64(currentPos))),
			highlight.Render(formatTime(int64(duration))),
		)
	}

	var topSection string
	if m.artworkEncoded != "" && m.artworkVisible() {
		paddedText := lipgloss.NewStyle().
			PaddingLeft(cfg.Artwork.Padding).
			Render(textContent.String())
		topSection = m.artworkEncoded + paddedText
	} else if m.supportsKitty {
		// Clear any image left over from the previous track
		topSection = kittyDeleteAll + textContent.String()
	} else {
		topSection = textContent.String()
	}

	contentStr := borderStyle.
		Width(cfg.UI.MaxWidth).
		Render(topSection + progressBarContent)

	helpText := lipgloss.NewStyle().
		Width(cfg.UI.MaxWidth).
		Align(lipgloss.Center).
		Render(m.help.View(m.keys))

	fullUI := lipgloss.JoinVertical(lipgloss.Center, contentStr, "\n"+helpText)

	return lipgloss.Place(
		m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		fullUI,
	)
}
