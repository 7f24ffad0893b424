package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateStateless(t *testing.T) {
	assert.True(t, State(0).Stateless())
	assert.True(t, (StateActivated | StateResizing).Stateless())
	assert.False(t, StateMaximized.Stateless())
	assert.False(t, StateFullscreen.Stateless())
	assert.False(t, StateTiledBottom.Stateless())
}

func TestStateForcesResize(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{0, StateActivated, false},
		{StateActivated, StateSuspended, false},
		{StateActivated, StateActivated | StateMaximized, true},
		{StateMaximized, 0, true},
		{StateResizing, 0, true},
		{StateTiledLeft | StateActivated, StateTiledLeft, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.ForcesResize(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestStateStringAndParse(t *testing.T) {
	assert.Equal(t, "floating", State(0).String())
	assert.Equal(t, "maximized|activated", (StateMaximized | StateActivated).String())

	bit, ok := ParseState("tiled_top")
	assert.True(t, ok)
	assert.Equal(t, StateTiledTop, bit)
	_, ok = ParseState("bogus")
	assert.False(t, ok)
}

func TestAttributesBuilders(t *testing.T) {
	a := DefaultAttributes().
		WithTitle("demo").
		WithSize(800, 600).
		WithResizable(true).
		WithTheme(ParseTheme("dark"))

	assert.Equal(t, "demo", a.Title)
	assert.Equal(t, uint32(800), a.Size.Width)
	assert.True(t, a.Resizable)
	assert.True(t, a.Decorations)
	assert.Equal(t, ThemeDark, a.Theme)
	assert.Equal(t, "wayland.window", a.ResolvedAppID())
	assert.Equal(t, "auto", ParseTheme("purple").String())
}
