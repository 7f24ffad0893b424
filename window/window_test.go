package window

import (
	"fmt"
	"strings"
	"testing"

	"github.com/bnema/wayloop/dpi"
	"github.com/bnema/wayloop/internal/arena"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWindow(attrs Attributes) (*Window, *fakeToplevel) {
	tl := &fakeToplevel{}
	return New(NewID(10, 1), tl, nil, 0, attrs), tl
}

func floating(width, height uint32) Configure {
	return Configure{NewSize: dpi.Size(width, height), Capabilities: CapAll}
}

func TestNewAppliesAttributes(t *testing.T) {
	w, tl := newTestWindow(DefaultAttributes())

	assert.Equal(t, DefaultSize, w.Size())
	assert.Equal(t, "Wayland window", tl.title)
	assert.Equal(t, "wayland.window", tl.appID)
	assert.Equal(t, 1, tl.commits, "initial bufferless commit")
	assert.Equal(t, [2]uint32{2, 1}, [2]uint32{tl.minW, tl.minH})
	assert.Contains(t, tl.calls, "decorations server")
	assert.Equal(t, int32(1), w.Scale())
}

func TestNewClampsInitialSizeToMinimum(t *testing.T) {
	w, _ := newTestWindow(DefaultAttributes().WithSize(100, 50).WithMinSize(200, 10))
	assert.Equal(t, dpi.Size(200, 50), w.Size())
}

func TestNewUsesApplicationName(t *testing.T) {
	_, tl := newTestWindow(DefaultAttributes().WithApplicationName("org.example.App", "main"))
	assert.Equal(t, "org.example.App", tl.appID)
}

func TestConfigureSuggestedSize(t *testing.T) {
	w, tl := newTestWindow(DefaultAttributes())

	resized := w.ApplyConfigure(floating(800, 600))

	assert.True(t, resized)
	assert.Equal(t, dpi.Size(800, 600), w.Size())
	assert.Equal(t, [4]int64{0, 0, 800, 600}, tl.geometry)
	assert.True(t, tl.opaque)
	assert.True(t, w.Stateless())
}

func TestResizeSetsGeometryBeforeOpaqueRegion(t *testing.T) {
	w, tl := newTestWindow(DefaultAttributes())

	for _, size := range [][2]uint32{{800, 600}, {1024, 768}} {
		tl.calls = nil
		require.True(t, w.ApplyConfigure(floating(size[0], size[1])))

		geometry := fmt.Sprintf("geometry 0,0 %dx%d", size[0], size[1])
		require.Contains(t, tl.calls, geometry)
		require.Contains(t, tl.calls, "opaque true")
		assert.Less(t, indexOf(tl.calls, geometry), indexOf(tl.calls, "opaque true"))
	}
}

func indexOf(calls []string, call string) int {
	for i, c := range calls {
		if c == call {
			return i
		}
	}
	return -1
}

func TestConfigureFocusOnlyChangesDoNotResize(t *testing.T) {
	w, _ := newTestWindow(DefaultAttributes())
	require.True(t, w.ApplyConfigure(floating(800, 600)))

	for _, state := range []State{StateActivated, StateActivated | StateSuspended, StateSuspended, 0} {
		cfg := floating(800, 600)
		cfg.State = state
		assert.False(t, w.ApplyConfigure(cfg), "state %s must not resize", state)
	}
}

func TestConfigureMaximizeAtSameSizeResizes(t *testing.T) {
	w, _ := newTestWindow(DefaultAttributes())
	require.True(t, w.ApplyConfigure(floating(800, 600)))

	cfg := floating(800, 600)
	cfg.State = StateMaximized
	assert.True(t, w.ApplyConfigure(cfg))
	assert.True(t, w.IsMaximized())
	assert.False(t, w.Stateless())

	assert.False(t, w.ApplyConfigure(cfg), "repeating the same configure is a no-op")
}

func TestConfigureRestoresStatelessSize(t *testing.T) {
	w, _ := newTestWindow(DefaultAttributes())
	require.True(t, w.ApplyConfigure(floating(800, 600)))

	maximized := floating(1920, 1080)
	maximized.State = StateMaximized | StateActivated
	require.True(t, w.ApplyConfigure(maximized))
	assert.Equal(t, dpi.Size(1920, 1080), w.Size())

	restored := Configure{State: StateActivated}
	require.True(t, w.ApplyConfigure(restored))
	assert.Equal(t, dpi.Size(800, 600), w.Size(), "free-floating size survives maximize")
}

func TestConfigureWithoutSizeKeepsCurrentWhenTiled(t *testing.T) {
	w, _ := newTestWindow(DefaultAttributes())
	tiled := floating(640, 480)
	tiled.State = StateTiledLeft
	require.True(t, w.ApplyConfigure(tiled))

	again := Configure{State: StateTiledLeft}
	assert.False(t, w.ApplyConfigure(again))
	assert.Equal(t, dpi.Size(640, 480), w.Size())
}

func TestConfigureConstrainsToSuggestedBounds(t *testing.T) {
	w, _ := newTestWindow(DefaultAttributes().WithSize(800, 600))

	cfg := Configure{SuggestedBounds: dpi.Size(500, 0)}
	require.True(t, w.ApplyConfigure(cfg))
	assert.Equal(t, dpi.Size(500, 600), w.Size())

	// Bounds are ignored when the compositor picked the size.
	sized := floating(900, 700)
	sized.SuggestedBounds = dpi.Size(500, 400)
	require.True(t, w.ApplyConfigure(sized))
	assert.Equal(t, dpi.Size(900, 700), w.Size())
}

func TestConfigureWithFrameSubtractsBorders(t *testing.T) {
	w, tl := newTestWindow(DefaultAttributes())
	frame := newFakeFrame()
	w.AttachFrame(frame)

	require.True(t, w.ApplyConfigure(floating(800, 635)))
	assert.Equal(t, dpi.Size(800, 600), w.Size())
	assert.Equal(t, [4]int64{0, -35, 800, 635}, tl.geometry)
	assert.Equal(t, [2]uint32{800, 600}, frame.resized)

	// A suggested height smaller than the titlebar falls back to 1 before the minimum applies.
	require.True(t, w.ApplyConfigure(floating(800, 20)))
	assert.Equal(t, w.MinSurfaceSize().Height, w.Size().Height)
}

func TestConfigureWithFrameConstrainsBoundsWithoutBorders(t *testing.T) {
	w, _ := newTestWindow(DefaultAttributes().WithSize(800, 600))
	w.AttachFrame(newFakeFrame())

	cfg := Configure{SuggestedBounds: dpi.Size(1000, 435)}
	require.True(t, w.ApplyConfigure(cfg))
	assert.Equal(t, dpi.Size(800, 400), w.Size())
}

func TestMinimumSizeIsNeverViolated(t *testing.T) {
	suggestions := []dpi.LogicalSize{
		dpi.Size(1, 1), dpi.Size(50, 500), dpi.Size(500, 50), dpi.Size(300, 200), dpi.Size(1000, 1000),
	}

	for _, withFrame := range []bool{false, true} {
		w, _ := newTestWindow(DefaultAttributes())
		if withFrame {
			w.AttachFrame(newFakeFrame())
		}
		min := dpi.Size(300, 200)
		w.SetMinSurfaceSize(&min)

		for _, s := range suggestions {
			w.ApplyConfigure(floating(s.Width, s.Height))
			got, floor := w.Size(), w.MinSurfaceSize()
			assert.GreaterOrEqual(t, got.Width, floor.Width, "frame=%v suggestion=%s", withFrame, s)
			assert.GreaterOrEqual(t, got.Height, floor.Height, "frame=%v suggestion=%s", withFrame, s)
		}
	}
}

func TestMinSizeFloorAndBorderExpansion(t *testing.T) {
	w, tl := newTestWindow(DefaultAttributes())

	tiny := dpi.Size(0, 0)
	w.SetMinSurfaceSize(&tiny)
	assert.Equal(t, MinSize, w.MinSurfaceSize())

	min := dpi.Size(100, 100)
	w.SetMinSurfaceSize(&min)
	w.AttachFrame(newFakeFrame())
	assert.Equal(t, dpi.Size(100, 135), w.MinSurfaceSize())
	assert.Equal(t, [2]uint32{100, 135}, [2]uint32{tl.minW, tl.minH})

	w.DropFrame()
	assert.Equal(t, dpi.Size(100, 100), w.MinSurfaceSize())
}

func TestMaxSize(t *testing.T) {
	w, tl := newTestWindow(DefaultAttributes().WithMaxSize(1024, 768))
	assert.Equal(t, dpi.Size(1024, 768), w.MaxSurfaceSize())

	w.AttachFrame(newFakeFrame())
	assert.Equal(t, [2]uint32{1024, 803}, [2]uint32{tl.maxW, tl.maxH})

	w.SetMaxSurfaceSize(nil)
	assert.True(t, w.MaxSurfaceSize().IsZero())
}

func TestSetTitleTruncatesOnRuneBoundary(t *testing.T) {
	w, tl := newTestWindow(DefaultAttributes())
	frame := newFakeFrame()
	w.AttachFrame(frame)

	title := strings.Repeat("a", MaxTitleBytes-1) + "é" + "tail"
	w.SetTitle(title)

	assert.Len(t, w.Title(), MaxTitleBytes-1)
	assert.Equal(t, w.Title(), tl.title)
	assert.Equal(t, w.Title(), frame.title)

	w.SetTitle("short")
	assert.Equal(t, "short", w.Title())
}

func TestSetScale(t *testing.T) {
	w, _ := newTestWindow(DefaultAttributes().WithSize(100, 50))
	frame := newFakeFrame()
	w.AttachFrame(frame)

	assert.False(t, w.SetScale(1))
	assert.True(t, w.SetScale(2))
	assert.Equal(t, 2.0, frame.scale)
	assert.Equal(t, dpi.PhysicalSize{Width: 200, Height: 100}, w.PhysicalSize())

	assert.True(t, w.SetScale(0))
	assert.Equal(t, int32(1), w.Scale(), "scale never drops below 1")
}

func TestRequestInnerSizeOnlyWhenFloating(t *testing.T) {
	w, _ := newTestWindow(DefaultAttributes())
	require.True(t, w.ApplyConfigure(floating(800, 600)))
	w.SetScale(2)

	got := w.RequestInnerSize(dpi.PhysicalSize{Width: 1000, Height: 800})
	assert.Equal(t, dpi.PhysicalSize{Width: 1000, Height: 800}, got)
	assert.Equal(t, dpi.Size(500, 400), w.Size())

	maximized := floating(1920, 1080)
	maximized.State = StateMaximized
	w.ApplyConfigure(maximized)
	got = w.RequestInnerSize(dpi.PhysicalSize{Width: 10, Height: 10})
	assert.Equal(t, w.PhysicalSize(), got)
	assert.Equal(t, dpi.Size(1920, 1080), w.Size())
}

func TestSetDecorateHidesFrameAndResizes(t *testing.T) {
	w, tl := newTestWindow(DefaultAttributes())
	frame := newFakeFrame()
	w.AttachFrame(frame)
	tl.calls = nil

	w.SetDecorate(false)
	assert.True(t, frame.hidden)
	assert.NotEmpty(t, tl.calls, "geometry is re-sent")

	w.SetDecorate(false)
	w.SetDecorate(true)
	assert.False(t, frame.hidden)
}

func TestRefreshFrameOnlyDrawsDirtyVisibleFrames(t *testing.T) {
	w, _ := newTestWindow(DefaultAttributes())
	assert.False(t, w.RefreshFrame())

	frame := newFakeFrame()
	w.AttachFrame(frame)
	assert.True(t, w.RefreshFrame())
	assert.False(t, w.RefreshFrame(), "clean frame is not redrawn")

	frame.dirty = true
	frame.hidden = true
	assert.False(t, w.RefreshFrame())
	assert.Equal(t, 1, frame.draws)
}

func TestFrameActions(t *testing.T) {
	grab := Grab{Seat: 7, Serial: 42}
	tests := []struct {
		name   string
		action FrameAction
		close  bool
		call   string
	}{
		{"close", FrameAction{Kind: ActionClose}, true, ""},
		{"minimize", FrameAction{Kind: ActionMinimize}, false, "minimized"},
		{"maximize", FrameAction{Kind: ActionMaximize}, false, "maximized true"},
		{"unmaximize", FrameAction{Kind: ActionUnMaximize}, false, "maximized false"},
		{"menu", FrameAction{Kind: ActionShowMenu, X: 3, Y: 4}, false, "menu 7/42 at 3,4"},
		{"resize", FrameAction{Kind: ActionResize, Edge: EdgeBottomRight}, false, "resize 7/42 edge=10"},
		{"move", FrameAction{Kind: ActionMove}, false, "move 7/42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, tl := newTestWindow(DefaultAttributes())
			tl.calls = nil

			assert.Equal(t, tt.close, w.FrameAction(tt.action, grab))
			if tt.call != "" {
				assert.Equal(t, []string{tt.call}, tl.calls)
			}
		})
	}
}

func TestOnFrameClickRoutesThroughFrame(t *testing.T) {
	w, _ := newTestWindow(DefaultAttributes())
	assert.False(t, w.OnFrameClick(true, ClickNormal, 0, Grab{}), "no frame, no action")

	frame := newFakeFrame()
	frame.action = &FrameAction{Kind: ActionClose}
	w.AttachFrame(frame)
	assert.True(t, w.OnFrameClick(false, ClickNormal, 0, Grab{}))
}

type grabTable struct {
	devices *arena.Arena[Grab]
}

func (g grabTable) Grab(h arena.Handle) (Grab, bool) {
	return g.devices.Get(h)
}

func TestDragWindowSkipsStalePointers(t *testing.T) {
	devices := &arena.Arena[Grab]{}
	alive := devices.Insert(Grab{Seat: 1, Serial: 5})
	gone := devices.Insert(Grab{Seat: 2, Serial: 9})
	devices.Remove(gone)

	r := NewRegistry(grabTable{devices})
	w, tl := newTestWindow(DefaultAttributes())
	r.Insert(w.ID(), w)

	w.PointerEnter(alive)
	w.PointerEnter(gone)
	w.PointerEnter(alive)
	assert.Len(t, w.Pointers(), 2)

	tl.calls = nil
	w.DragWindow()
	w.DragResizeWindow(EdgeLeft)
	w.SetScale(2)
	w.ShowWindowMenu(dpi.PhysicalPosition{X: 20, Y: 10})
	assert.Equal(t, []string{"move 1/5", "resize 1/5 edge=4", "menu 1/5 at 10,5"}, tl.calls)

	w.PointerLeave(alive)
	tl.calls = nil
	w.DragWindow()
	assert.Empty(t, tl.calls)
}

func TestOutputTracking(t *testing.T) {
	w, _ := newTestWindow(DefaultAttributes())
	_, ok := w.Output()
	assert.False(t, ok)

	w.SetOutput(3)
	w.ClearOutput(4)
	out, ok := w.Output()
	assert.True(t, ok)
	assert.Equal(t, OutputID(3), out)

	w.ClearOutput(3)
	_, ok = w.Output()
	assert.False(t, ok)
}

func TestDestroyReleasesResources(t *testing.T) {
	w, tl := newTestWindow(DefaultAttributes())
	frame := newFakeFrame()
	w.AttachFrame(frame)

	w.Destroy()
	assert.True(t, frame.destroyed)
	assert.True(t, tl.destroyed)
	assert.False(t, w.HasFrame())
}
