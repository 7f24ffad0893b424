package decor

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/bnema/wayloop/window"
)

type fakeCanvas struct {
	parent    window.ID
	placed    map[Part]Rect
	hidden    map[Part]bool
	painted   map[Part]image.Rectangle
	destroyed bool
}

func newFakeCanvas(parent window.ID) *fakeCanvas {
	return &fakeCanvas{
		parent:  parent,
		placed:  make(map[Part]Rect),
		hidden:  make(map[Part]bool),
		painted: make(map[Part]image.Rectangle),
	}
}

func (c *fakeCanvas) Surface(p Part) window.ID {
	return window.NewID(100+uint32(p), 1)
}

func (c *fakeCanvas) Place(p Part, r Rect) {
	c.placed[p] = r
	delete(c.hidden, p)
}

func (c *fakeCanvas) Hide(p Part) { c.hidden[p] = true }

func (c *fakeCanvas) Paint(p Part, img *image.RGBA, _ int32) error {
	c.painted[p] = img.Bounds()
	return nil
}

func (c *fakeCanvas) Destroy() { c.destroyed = true }

func newTestFrame() (*Frame, *fakeCanvas) {
	c := newFakeCanvas(window.NewID(1, 1))
	f := New(c, window.FrameConfig{Theme: window.ThemeLight})
	f.Resize(400, 300)
	return f, c
}

func TestFrameBorders(t *testing.T) {
	f, _ := newTestFrame()

	w, h := f.AddBorders(400, 300)
	assert.Equal(t, uint32(400), w)
	assert.Equal(t, uint32(300+HeaderSize), h)

	w, h = f.SubtractBorders(400, 300+HeaderSize)
	assert.Equal(t, uint32(400), w)
	assert.Equal(t, uint32(300), h)

	_, h = f.SubtractBorders(400, 10)
	assert.Zero(t, h)

	x, y := f.Location()
	assert.Equal(t, int32(0), x)
	assert.Equal(t, int32(-HeaderSize), y)
}

func TestFrameWithoutHeader(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *Frame)
	}{
		{"hidden", func(f *Frame) { f.SetHidden(true) }},
		{"fullscreen", func(f *Frame) { f.UpdateState(window.StateFullscreen) }},
		{"titlebar hidden", func(f *Frame) { f.hideTitlebar = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := newTestFrame()
			tt.setup(f)

			_, h := f.AddBorders(400, 300)
			assert.Equal(t, uint32(300), h)
			_, y := f.Location()
			assert.Zero(t, y)
		})
	}
}

func TestFrameDrawLayout(t *testing.T) {
	f, c := newTestFrame()
	f.SetScalingFactor(2)
	require.True(t, f.Dirty())

	assert.True(t, f.Draw())
	assert.False(t, f.Dirty())

	assert.Equal(t, Rect{X: 0, Y: -HeaderSize, Width: 400, Height: HeaderSize}, c.placed[PartHeader])
	assert.Equal(t, Rect{X: -BorderSize, Y: -HeaderSize - BorderSize, Width: 410, Height: BorderSize}, c.placed[PartTop])
	assert.Equal(t, Rect{X: -BorderSize, Y: 300, Width: 410, Height: BorderSize}, c.placed[PartBottom])
	assert.Equal(t, Rect{X: -BorderSize, Y: -HeaderSize, Width: BorderSize, Height: 300 + HeaderSize}, c.placed[PartLeft])
	assert.Equal(t, Rect{X: 400, Y: -HeaderSize, Width: BorderSize, Height: 300 + HeaderSize}, c.placed[PartRight])

	assert.Equal(t, image.Rect(0, 0, 800, 2*HeaderSize), c.painted[PartHeader])
}

func TestFrameDrawWhileMaximizedHidesBorders(t *testing.T) {
	f, c := newTestFrame()
	f.UpdateState(window.StateMaximized)

	assert.True(t, f.Draw())
	assert.False(t, c.hidden[PartHeader])
	for _, p := range []Part{PartTop, PartBottom, PartLeft, PartRight} {
		assert.True(t, c.hidden[p], p.String())
	}
}

func TestFrameHiddenDoesNotDraw(t *testing.T) {
	f, c := newTestFrame()
	f.SetHidden(true)

	assert.False(t, f.Draw())
	for _, p := range allParts {
		assert.True(t, c.hidden[p], p.String())
	}
}

func TestFrameCursorsOnBorders(t *testing.T) {
	f, c := newTestFrame()

	tests := []struct {
		part Part
		x, y float64
		want window.CursorIcon
	}{
		{PartTop, 200, 2, window.CursorNResize},
		{PartTop, 2, 2, window.CursorNWResize},
		{PartTop, 408, 2, window.CursorNEResize},
		{PartBottom, 200, 2, window.CursorSResize},
		{PartLeft, 2, 100, window.CursorWResize},
		{PartRight, 2, 100, window.CursorEResize},
		{PartRight, 2, 330, window.CursorSEResize},
		{PartHeader, 10, 10, window.CursorDefault},
	}
	for _, tt := range tests {
		t.Run(tt.part.String(), func(t *testing.T) {
			icon, ok := f.ClickPointMoved(0, c.Surface(tt.part), tt.x, tt.y)
			require.True(t, ok)
			assert.Equal(t, tt.want, icon)
		})
	}

	_, ok := f.ClickPointMoved(0, window.NewID(999, 9), 1, 1)
	assert.False(t, ok)
}

func TestFrameResizeFromBorder(t *testing.T) {
	f, c := newTestFrame()
	f.ClickPointMoved(0, c.Surface(PartBottom), 2, 2)

	action, ok := f.OnClick(0, window.ClickNormal, true)
	require.True(t, ok)
	assert.Equal(t, window.ActionResize, action.Kind)
	assert.Equal(t, window.EdgeBottomLeft, action.Edge)
}

func TestFrameButtons(t *testing.T) {
	tests := []struct {
		name string
		x    float64
		want window.FrameActionKind
	}{
		{"close", 390, window.ActionClose},
		{"maximize", 350, window.ActionMaximize},
		{"minimize", 320, window.ActionMinimize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, c := newTestFrame()
			f.ClickPointMoved(0, c.Surface(PartHeader), tt.x, 10)

			_, ok := f.OnClick(0, window.ClickNormal, true)
			assert.False(t, ok, "press only arms the button")

			action, ok := f.OnClick(time.Millisecond, window.ClickNormal, false)
			require.True(t, ok)
			assert.Equal(t, tt.want, action.Kind)
		})
	}
}

func TestFrameReleaseElsewhereCancelsButton(t *testing.T) {
	f, c := newTestFrame()
	f.ClickPointMoved(0, c.Surface(PartHeader), 390, 10)
	f.OnClick(0, window.ClickNormal, true)

	f.ClickPointMoved(0, c.Surface(PartHeader), 100, 10)
	_, ok := f.OnClick(0, window.ClickNormal, false)
	assert.False(t, ok)
}

func TestFrameButtonsFollowCapabilities(t *testing.T) {
	f, c := newTestFrame()
	f.UpdateWMCapabilities(window.CapWindowMenu)

	f.ClickPointMoved(0, c.Surface(PartHeader), 350, 10)
	action, ok := f.OnClick(0, window.ClickNormal, true)
	require.True(t, ok)
	assert.Equal(t, window.ActionMove, action.Kind, "no maximize button without the capability")
}

func TestFrameHeaderDragAndDoubleClick(t *testing.T) {
	f, c := newTestFrame()
	f.ClickPointMoved(0, c.Surface(PartHeader), 100, 10)

	action, ok := f.OnClick(1000*time.Millisecond, window.ClickNormal, true)
	require.True(t, ok)
	assert.Equal(t, window.ActionMove, action.Kind)
	f.OnClick(1050*time.Millisecond, window.ClickNormal, false)

	action, ok = f.OnClick(1200*time.Millisecond, window.ClickNormal, true)
	require.True(t, ok)
	assert.Equal(t, window.ActionMaximize, action.Kind)

	f.UpdateState(window.StateMaximized)
	action, _ = f.OnClick(5000*time.Millisecond, window.ClickNormal, true)
	assert.Equal(t, window.ActionMove, action.Kind, "clicks too far apart")
	action, _ = f.OnClick(5100*time.Millisecond, window.ClickNormal, true)
	assert.Equal(t, window.ActionUnMaximize, action.Kind)
}

func TestFrameAlternateClickShowsMenu(t *testing.T) {
	f, c := newTestFrame()
	f.ClickPointMoved(0, c.Surface(PartHeader), 50, 20)

	action, ok := f.OnClick(0, window.ClickAlternate, true)
	require.True(t, ok)
	assert.Equal(t, window.FrameAction{Kind: window.ActionShowMenu, X: 50, Y: 20 - HeaderSize}, action)

	_, ok = f.OnClick(0, window.ClickAlternate, false)
	assert.False(t, ok)
}

func TestFrameHoverMarksDirty(t *testing.T) {
	f, c := newTestFrame()
	f.Draw()
	require.False(t, f.Dirty())

	f.ClickPointMoved(0, c.Surface(PartHeader), 100, 10)
	assert.False(t, f.Dirty(), "hovering the title does not change the look")

	f.ClickPointMoved(0, c.Surface(PartHeader), 390, 10)
	assert.True(t, f.Dirty())

	f.Draw()
	f.ClickPointLeft()
	assert.True(t, f.Dirty())
	_, ok := f.OnClick(0, window.ClickNormal, true)
	assert.False(t, ok, "no click without a pointer")
}

func TestFitTitle(t *testing.T) {
	face := titleFace(1)
	assert.Equal(t, "short", fitTitle(face, "short", 1000))

	long := fitTitle(face, "a very long window title that cannot fit", 80)
	assert.NotEmpty(t, long)
	assert.Contains(t, long, ellipsis)
	assert.Empty(t, fitTitle(face, "wide", 1))
}

func TestFactoryWrapsCanvasErrors(t *testing.T) {
	boom := errors.New("no subcompositor")
	factory := NewFactory(CanvasFactoryFunc(func(window.ID) (Canvas, error) { return nil, boom }))

	_, err := factory.NewFrame(window.NewID(1, 1), window.FrameConfig{})
	assert.ErrorIs(t, err, boom)

	factory = NewFactory(CanvasFactoryFunc(func(id window.ID) (Canvas, error) { return newFakeCanvas(id), nil }))
	frame, err := factory.NewFrame(window.NewID(1, 1), window.FrameConfig{})
	require.NoError(t, err)
	frame.Destroy()
}

type countingFace struct {
	font.Face
	closes *int
}

func (c countingFace) Close() error {
	*c.closes++
	return nil
}

func TestFrameClosesReplacedFaces(t *testing.T) {
	f, _ := newTestFrame()
	closes := 0
	f.newFace = func(int32) font.Face {
		return countingFace{Face: basicfont.Face7x13, closes: &closes}
	}

	f.faceFor(1)
	f.faceFor(2)
	f.faceFor(2)
	assert.Equal(t, 1, closes)

	f.Destroy()
	assert.Equal(t, 2, closes)
	assert.Nil(t, f.face)
}
