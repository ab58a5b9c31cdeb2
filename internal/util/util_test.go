package util

import (
	"testing"
	"time"
)

func TestDirExists(t *testing.T) {
	dir := t.TempDir()
	if !DirExists(dir) {
		t.Errorf("Expected DirExists to return true for existing dir")
	}
	if DirExists(dir + "-notfound") {
		t.Errorf("Expected DirExists to return false for non-existent dir")
	}
}

func TestFormatTime(t *testing.T) {
	cases := []struct {
		seconds  int
		expected string
	}{
		{0, "00:00"},
		{9, "00:09"},
		{60, "01:00"},
		{90, "01:30"},
		{600, "10:00"},
		{-5, "00:00"},
	}
	for _, c := range cases {
		got := FormatTime(c.seconds)
		if got != c.expected {
			t.Errorf("FormatTime(%d) = %q, want %q", c.seconds, got, c.expected)
		}
	}
}

func TestFormatUptime(t *testing.T) {
	cases := []struct {
		dur      time.Duration
		expected string
	}{
		{time.Second * 5, "5 seconds"},
		{time.Second * 65, "1 minute, 5 seconds"},
		{time.Second * 3665, "1 hour, 1 minute, 5 seconds"},
		{time.Second * 3600, "1 hour, 0 minutes, 0 seconds"},
		{time.Second * 60, "1 minute, 0 seconds"},
		{time.Second * 1, "1 second"},
	}
	for _, c := range cases {
		got := FormatUptime(c.dur)
		if got != c.expected {
			t.Errorf("FormatUptime(%v) = %q, want %q", c.dur, got, c.expected)
		}
	}
}

func TestParseScore(t *testing.T) {
	cases := []struct {
		raw      string
		expected int
	}{
		{"0", 0},
		{"42", 42},
		{"-7", -7},
		{" 15 ", 15},
		{"", 0},
		{"abc", 0},
		{"12.5", 0},
	}
	for _, c := range cases {
		got := ParseScore(c.raw)
		if got != c.expected {
			t.Errorf("ParseScore(%q) = %d, want %d", c.raw, got, c.expected)
		}
	}
}

func TestSameName(t *testing.T) {
	if !SameName("Alice", "alice") {
		t.Error("Expected case-insensitive match")
	}
	if !SameName(" Bob ", "bob") {
		t.Error("Expected trimmed match")
	}
	if SameName("Alice", "Bob") {
		t.Error("Expected different names not to match")
	}
}
