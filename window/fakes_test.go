package window

import (
	"fmt"
	"time"
)

type fakeToplevel struct {
	calls     []string
	title     string
	appID     string
	minW      uint32
	minH      uint32
	maxW      uint32
	maxH      uint32
	geometry  [4]int64
	opaque    bool
	maximized bool
	commits   int
	destroyed bool
}

func (f *fakeToplevel) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeToplevel) SetTitle(title string) error {
	f.title = title
	f.record("title")
	return nil
}

func (f *fakeToplevel) SetAppID(id string) error {
	f.appID = id
	f.record("app_id %s", id)
	return nil
}

func (f *fakeToplevel) SetMinSize(w, h uint32) error {
	f.minW, f.minH = w, h
	f.record("min %dx%d", w, h)
	return nil
}

func (f *fakeToplevel) SetMaxSize(w, h uint32) error {
	f.maxW, f.maxH = w, h
	f.record("max %dx%d", w, h)
	return nil
}

func (f *fakeToplevel) SetWindowGeometry(x, y int32, w, h uint32) error {
	f.geometry = [4]int64{int64(x), int64(y), int64(w), int64(h)}
	f.record("geometry %d,%d %dx%d", x, y, w, h)
	return nil
}

func (f *fakeToplevel) SetOpaque(opaque bool) error {
	f.opaque = opaque
	f.record("opaque %v", opaque)
	return nil
}

func (f *fakeToplevel) RequestDecorationMode(mode DecorationMode) error {
	f.record("decorations %s", mode)
	return nil
}

func (f *fakeToplevel) SetMaximized(maximized bool) error {
	f.maximized = maximized
	f.record("maximized %v", maximized)
	return nil
}

func (f *fakeToplevel) SetFullscreen(fullscreen bool, output OutputID) error {
	f.record("fullscreen %v %d", fullscreen, output)
	return nil
}

func (f *fakeToplevel) SetMinimized() error {
	f.record("minimized")
	return nil
}

func (f *fakeToplevel) Move(g Grab) error {
	f.record("move %d/%d", g.Seat, g.Serial)
	return nil
}

func (f *fakeToplevel) Resize(g Grab, edge ResizeEdge) error {
	f.record("resize %d/%d edge=%d", g.Seat, g.Serial, edge)
	return nil
}

func (f *fakeToplevel) ShowWindowMenu(g Grab, x, y int32) error {
	f.record("menu %d/%d at %d,%d", g.Seat, g.Serial, x, y)
	return nil
}

func (f *fakeToplevel) Commit() error {
	f.commits++
	return nil
}

func (f *fakeToplevel) Destroy() error {
	f.destroyed = true
	return nil
}

// fakeFrame has a 35 unit titlebar and no side borders.
type fakeFrame struct {
	header    uint32
	hidden    bool
	dirty     bool
	title     string
	scale     float64
	state     State
	resized   [2]uint32
	draws     int
	action    *FrameAction
	destroyed bool
}

func newFakeFrame() *fakeFrame {
	return &fakeFrame{header: 35, dirty: true}
}

func (f *fakeFrame) SetTitle(title string)               { f.title = title }
func (f *fakeFrame) SetScalingFactor(scale float64)      { f.scale = scale }
func (f *fakeFrame) SetHidden(hidden bool)               { f.hidden = hidden }
func (f *fakeFrame) Hidden() bool                        { return f.hidden }
func (f *fakeFrame) Dirty() bool                         { return f.dirty }
func (f *fakeFrame) UpdateState(state State)             { f.state = state }
func (f *fakeFrame) UpdateWMCapabilities(WMCapabilities) {}
func (f *fakeFrame) Resize(w, h uint32)                  { f.resized = [2]uint32{w, h} }
func (f *fakeFrame) Location() (int32, int32)            { return 0, -int32(f.header) }
func (f *fakeFrame) ClickPointLeft()                     {}
func (f *fakeFrame) Destroy()                            { f.destroyed = true }

func (f *fakeFrame) Draw() bool {
	f.draws++
	f.dirty = false
	return true
}

func (f *fakeFrame) SubtractBorders(w, h uint32) (uint32, uint32) {
	if h <= f.header {
		return w, 0
	}
	return w, h - f.header
}

func (f *fakeFrame) AddBorders(w, h uint32) (uint32, uint32) {
	return w, h + f.header
}

func (f *fakeFrame) OnClick(time.Duration, FrameClick, bool) (FrameAction, bool) {
	if f.action == nil {
		return FrameAction{}, false
	}
	return *f.action, true
}

func (f *fakeFrame) ClickPointMoved(time.Duration, ID, float64, float64) (CursorIcon, bool) {
	return CursorDefault, true
}
