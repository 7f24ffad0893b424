package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatControl(t *testing.T) {
	tests := []struct {
		name string
		key  string
		desc string
	}{
		{name: "basic control", key: "Ctrl-C", desc: "Stop the loop"},
		{name: "longer key", key: "Escape", desc: "Close the window"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatControl(tt.key, tt.desc)
			assert.Contains(t, got, tt.key)
			assert.Contains(t, got, tt.desc)
		})
	}
}

func TestFormatAppHeader(t *testing.T) {
	got := FormatAppHeader("RUN", "wayland-1")
	assert.Contains(t, got, "wayloop")
	assert.Contains(t, got, "RUN")
	assert.Contains(t, got, "wayland-1")

	assert.NotContains(t, FormatAppHeader("RUN", ""), "\n\n")
}

func TestFormatResult(t *testing.T) {
	assert.Contains(t, FormatResult(true, "done"), IconSuccess)
	assert.Contains(t, FormatResult(false, "failed"), IconError)
}

func TestTraceTable(t *testing.T) {
	out := TraceTable([]TraceRow{
		{Step: 1, Action: "open", Calls: []string{"create w0"}},
		{Step: 2, Action: "configure", Calls: []string{"resize w0 800x600", "draw w0"}},
		{Step: 3, Action: "capability"},
	})

	for _, want := range []string{"STEP", "ACTION", "CALLBACKS", "open", "create w0", "resize w0 800x600", "draw w0", "capability"} {
		assert.Contains(t, out, want)
	}
	// Multi-call cells span several lines
	assert.Greater(t, strings.Count(out, "\n"), 6)
}

func TestCreateSeparator(t *testing.T) {
	tests := []struct {
		name  string
		width int
		char  string
		count int
	}{
		{"explicit", 10, "=", 10},
		{"default width", 0, "-", 50},
		{"default char", 5, "", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			char := tt.char
			if char == "" {
				char = "─"
			}
			assert.Equal(t, tt.count, strings.Count(CreateSeparator(tt.width, tt.char), char))
		})
	}
}
