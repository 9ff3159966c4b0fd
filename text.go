package main

import (
	"fmt"
)

// scrollSeparator is appended to scrolling text so the loop point is visible
const scrollSeparator = "  •  "

// formatTime converts seconds to MM:SS format
func formatTime(seconds int64) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// scrollText returns a max-rune window of text starting at offset, looping smoothly
func scrollText(text string, max int, offset int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}

	full := append(runes, []rune(scrollSeparator)...)
	n := len(full)
	offset %= n

	window := make([]rune, max)
	for i := range window {
		window[i] = full[(offset+i)%n]
	}
	return string(window)
}

// longestRuneLen returns the rune length of the longest string
func longestRuneLen(texts ...string) int {
	longest := 0
	for _, t := range texts {
		if l := len([]rune(t)); l > longest {
			longest = l
		}
	}
	return longest
}
