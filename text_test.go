package main

import (
	"strings"
	"testing"
	"unicode/utf8"
)

// TestFormatTime tests the formatTime function with various inputs
func TestFormatTime(t *testing.T) {
	tests := []struct {
		name     string
		seconds  int64
		expected string
	}{
		{"zero seconds", 0, "00:00"},
		{"under 10 seconds", 5, "00:05"},
		{"under one minute", 45, "00:45"},
		{"exactly one minute", 60, "01:00"},
		{"over one minute", 75, "01:15"},
		{"typical track", 180, "03:00"},
		{"under one hour", 3599, "59:59"},
		{"over one hour", 3661, "61:01"},
		{"multiple hours", 7384, "123:04"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatTime(tt.seconds)
			if result != tt.expected {
				t.Errorf("formatTime(%d) = %q; want %q", tt.seconds, result, tt.expected)
			}
		})
	}
}

// TestScrollText tests the scrollText function with various inputs
func TestScrollText(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		maxLength int
		offset    int
		expected  string
	}{
		{"short text no scroll", "Short", 10, 0, "Short"},
		{"exact length no scroll", "ExactlyTen", 10, 0, "ExactlyTen"},
		{"long text offset 0", "This is a very long text that needs scrolling", 20, 0, "This is a very long "},
		{"long text offset middle", "This is a very long text that needs scrolling", 20, 5, "is a very long text "},
		{"long text offset near end", "This is a very long text that needs scrolling", 20, 30, "needs scrolling  •  "},
		{"wraps past separator", "ABCDEFG", 5, 10, "  ABC"},
		{"offset beyond loop", "ABCDEFG", 5, 12, "ABCDE"},
		{"unicode characters", "Hello 世界 🎵 Music", 10, 0, "Hello 世界 🎵"},
		{"unicode with scroll", "Hello 世界 🎵 Music Player", 10, 6, "世界 🎵 Music"},
		{"empty text", "", 10, 0, ""},
		{"zero max length", "Some text", 0, 0, ""},
		{"negative max length", "Some text", -1, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := scrollText(tt.text, tt.maxLength, tt.offset)
			if result != tt.expected {
				t.Errorf("scrollText(%q, %d, %d) = %q; want %q",
					tt.text, tt.maxLength, tt.offset, result, tt.expected)
			}
		})
	}
}

// TestScrollTextUnicodeSafety tests that scrollText handles multi-byte characters correctly
func TestScrollTextUnicodeSafety(t *testing.T) {
	text := "日本語テキスト"
	maxLength := 5

	for offset := 0; offset < len([]rune(text))+10; offset++ {
		result := scrollText(text, maxLength, offset)

		if n := utf8.RuneCountInString(result); n != maxLength {
			t.Errorf("Offset %d: scrollText result has %d runes, want %d", offset, n, maxLength)
		}
		if !utf8.ValidString(result) {
			t.Errorf("Offset %d: scrollText result contains invalid UTF-8", offset)
		}
	}
}

func TestScrollTextLoopsBackToStart(t *testing.T) {
	text := "A long track name that scrolls"
	loop := len([]rune(text)) + len([]rune(scrollSeparator))

	if got, want := scrollText(text, 10, loop), scrollText(text, 10, 0); got != want {
		t.Errorf("offset %d = %q; want %q", loop, got, want)
	}
	if !strings.Contains(scrollText(text, 10, len([]rune(text))-2), "•") {
		t.Error("expected separator to be visible near the loop point")
	}
}

func TestLongestRuneLen(t *testing.T) {
	assertEqual(t, longestRuneLen(), 0, "no strings")
	assertEqual(t, longestRuneLen("abc", "abcdef", ""), 6, "ascii")
	assertEqual(t, longestRuneLen("世界", "ab"), 2, "runes not bytes")
}

// BenchmarkScrollText benchmarks the scrollText function
func BenchmarkScrollText(b *testing.B) {
	text := "This is a very long text that needs scrolling with multiple words"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		scrollText(text, 20, 10)
	}
}
