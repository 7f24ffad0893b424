package window

import (
	"time"
	"unicode/utf8"

	"github.com/bnema/wayloop/dpi"
	"github.com/bnema/wayloop/internal/arena"
	"github.com/bnema/wayloop/internal/logger"
)

const (
	// DefaultScaleFactor is the buffer scale before any output is entered.
	DefaultScaleFactor int32 = 1
	// MaxTitleBytes bounds the title sent over the protocol.
	MaxTitleBytes = 1024
)

var (
	// DefaultSize is used when the window attributes carry no size.
	DefaultSize = dpi.Size(256, 256)
	// MinSize is the floor applied to any requested minimum size.
	MinSize = dpi.Size(2, 1)
)

// Window is the client-side state of one toplevel, folded from configure
// sequences and application requests.
type Window struct {
	id       ID
	toplevel Toplevel
	viewport Viewport
	frame    Frame

	title        string
	appID        string
	theme        Theme
	hideTitlebar bool
	decorations  bool
	decorate     bool
	transparent  bool
	resizable    bool
	visible      bool

	state     State
	stateless bool

	size          dpi.LogicalSize
	statelessSize dpi.LogicalSize
	minSize       dpi.LogicalSize
	maxSize       dpi.LogicalSize
	requestedMin  *dpi.LogicalSize
	requestedMax  *dpi.LogicalSize
	scale         int32

	output    OutputID
	hasOutput bool

	pointers      []arena.Handle
	cursor        CursorIcon
	cursorVisible bool

	grabs  GrabResolver
	redraw func()
}

// New sets up the state of a freshly created toplevel and performs the
// initial bufferless commit that makes the compositor send a configure.
// lastOutput is used when the window starts fullscreen.
func New(id ID, toplevel Toplevel, viewport Viewport, lastOutput OutputID, attrs Attributes) *Window {
	w := &Window{
		id:            id,
		toplevel:      toplevel,
		viewport:      viewport,
		theme:         attrs.Theme,
		hideTitlebar:  attrs.HideTitlebar,
		decorations:   attrs.Decorations,
		decorate:      attrs.Decorations,
		resizable:     attrs.Resizable,
		visible:       attrs.Visible,
		size:          DefaultSize,
		statelessSize: DefaultSize,
		minSize:       MinSize,
		scale:         DefaultScaleFactor,
		cursor:        CursorDefault,
		cursorVisible: true,
	}

	w.SetTitle(attrs.Title)
	w.appID = attrs.ResolvedAppID()
	if w.appID != "" {
		w.call("set app id", toplevel.SetAppID(w.appID))
	}
	if attrs.Maximized {
		w.call("set maximized", toplevel.SetMaximized(true))
	}
	if attrs.Fullscreen {
		w.call("set fullscreen", toplevel.SetFullscreen(true, lastOutput))
	}
	if w.decorations {
		w.call("request server decorations", toplevel.RequestDecorationMode(DecorationServer))
	}

	w.SetMinSurfaceSize(attrs.MinSize)
	w.SetMaxSurfaceSize(attrs.MaxSize)

	size := DefaultSize
	if attrs.Size != nil {
		size = *attrs.Size
	}
	w.size = size.Max(w.minSize)
	w.statelessSize = w.size
	w.transparent = attrs.Transparent

	w.call("initial commit", toplevel.Commit())
	return w
}

func (w *Window) call(op string, err error) {
	if err != nil {
		logger.Debugf("window %s: %s: %v", w.id, op, err)
	}
}

// ID returns the window identity.
func (w *Window) ID() ID { return w.id }

// Title returns the current (possibly truncated) title.
func (w *Window) Title() string { return w.title }

// AppID returns the application id announced to the compositor.
func (w *Window) AppID() string { return w.appID }

// Size returns the logical content size, borders excluded.
func (w *Window) Size() dpi.LogicalSize { return w.size }

// PhysicalSize returns the content size in buffer pixels.
func (w *Window) PhysicalSize() dpi.PhysicalSize {
	return w.size.ToPhysical(w.ScaleFactor())
}

// MinSurfaceSize returns the minimum size, borders included when a frame exists.
func (w *Window) MinSurfaceSize() dpi.LogicalSize { return w.minSize }

// MaxSurfaceSize returns the maximum size; zero means unbounded.
func (w *Window) MaxSurfaceSize() dpi.LogicalSize { return w.maxSize }

// Scale returns the integer buffer scale.
func (w *Window) Scale() int32 { return w.scale }

// ScaleFactor returns the scale as used for unit conversions.
func (w *Window) ScaleFactor() float64 { return float64(w.scale) }

// State returns the last configured state.
func (w *Window) State() State { return w.state }

// Stateless reports whether the window is free-floating.
func (w *Window) Stateless() bool { return w.stateless }

func (w *Window) IsMaximized() bool  { return w.state.Has(StateMaximized) }
func (w *Window) IsFullscreen() bool { return w.state.Has(StateFullscreen) }
func (w *Window) Resizable() bool    { return w.resizable }
func (w *Window) Visible() bool      { return w.visible }
func (w *Window) Transparent() bool  { return w.transparent }
func (w *Window) Decorated() bool    { return w.decorate }

// Output returns the output the window last entered.
func (w *Window) Output() (OutputID, bool) { return w.output, w.hasOutput }

// SetOutput records the output the surface entered.
func (w *Window) SetOutput(output OutputID) {
	w.output = output
	w.hasOutput = true
}

// ClearOutput forgets output if it is the one currently recorded.
func (w *Window) ClearOutput(output OutputID) {
	if w.hasOutput && w.output == output {
		w.output = 0
		w.hasOutput = false
	}
}

// FrameConfig returns the decoration look requested at creation.
func (w *Window) FrameConfig() FrameConfig {
	return FrameConfig{Theme: w.theme, HideTitlebar: w.hideTitlebar}
}

// HasFrame reports whether client-side decorations are attached.
func (w *Window) HasFrame() bool { return w.frame != nil }

// Frame returns the attached decorations, if any.
func (w *Window) Frame() Frame { return w.frame }

// AttachFrame installs client-side decorations and re-sends the size limits
// so they account for the borders.
func (w *Window) AttachFrame(frame Frame) {
	if w.frame != nil {
		w.frame.Destroy()
	}
	frame.SetTitle(w.title)
	frame.SetScalingFactor(w.ScaleFactor())
	frame.SetHidden(!w.decorate)
	w.frame = frame
	w.SetMinSurfaceSize(w.requestedMin)
	w.SetMaxSurfaceSize(w.requestedMax)
}

// DropFrame releases client-side decorations.
func (w *Window) DropFrame() {
	if w.frame == nil {
		return
	}
	w.frame.Destroy()
	w.frame = nil
	w.SetMinSurfaceSize(w.requestedMin)
	w.SetMaxSurfaceSize(w.requestedMax)
}

// ApplyConfigure folds a configure into the window and reports whether the
// window was resized. The decoration frame must already reflect the
// configure's decoration mode.
func (w *Window) ApplyConfigure(cfg Configure) bool {
	w.stateless = cfg.State.Stateless()

	var (
		size      dpi.LogicalSize
		constrain bool
	)
	if w.frame != nil {
		w.frame.UpdateState(cfg.State)
		w.frame.UpdateWMCapabilities(cfg.Capabilities)

		switch {
		case cfg.HasSize():
			width, height := w.frame.SubtractBorders(cfg.NewSize.Width, cfg.NewSize.Height)
			size = dpi.Size(max(width, 1), max(height, 1))
		case cfg.NewSize.IsZero() && w.stateless:
			size, constrain = w.statelessSize, true
		default:
			size, constrain = w.size, true
		}
	} else {
		switch {
		case cfg.HasSize():
			size = cfg.NewSize
		case w.stateless:
			size, constrain = w.statelessSize, true
		default:
			size, constrain = w.size, true
		}
	}

	// Bounds only apply when the compositor let the client pick the size.
	if constrain {
		boundW, boundH := w.surfaceSizeBounds(cfg)
		if boundW != 0 {
			size.Width = min(size.Width, boundW)
		}
		if boundH != 0 {
			size.Height = min(size.Height, boundH)
		}
	}
	size = size.Max(w.minSize)

	forced := w.state.ForcesResize(cfg.State)
	w.state = cfg.State

	if forced || size != w.size {
		w.Resize(size)
		return true
	}
	return false
}

// surfaceSizeBounds returns the suggested bounds without borders. A zero
// result means no bound in that dimension.
func (w *Window) surfaceSizeBounds(cfg Configure) (uint32, uint32) {
	bw, bh := cfg.SuggestedBounds.Width, cfg.SuggestedBounds.Height
	if w.frame == nil {
		return bw, bh
	}
	width, height := w.frame.SubtractBorders(max(bw, 1), max(bh, 1))
	if bw == 0 {
		width = 0
	}
	if bh == 0 {
		height = 0
	}
	return width, height
}

// Resize applies a new content size and updates the window geometry.
func (w *Window) Resize(size dpi.LogicalSize) {
	size = size.Max(w.minSize)
	w.size = size
	if w.stateless {
		w.statelessSize = size
	}

	var x, y int32
	outer := size
	if w.frame != nil {
		if !w.frame.Hidden() {
			w.frame.Resize(size.Width, size.Height)
		}
		x, y = w.frame.Location()
		outer.Width, outer.Height = w.frame.AddBorders(size.Width, size.Height)
	}

	w.call("set window geometry", w.toplevel.SetWindowGeometry(x, y, outer.Width, outer.Height))
	w.ReloadTransparencyHint()

	if w.viewport != nil {
		w.call("set viewport destination", w.viewport.SetDestination(size.Width, size.Height))
	}
}

// ReloadTransparencyHint re-sends the opaque region.
func (w *Window) ReloadTransparencyHint() {
	w.call("set opaque region", w.toplevel.SetOpaque(!w.transparent))
}

// SetScale records a new buffer scale and reports whether it changed.
// Values below 1 are clamped to 1.
func (w *Window) SetScale(factor int32) bool {
	factor = max(factor, 1)
	if factor == w.scale {
		return false
	}
	w.scale = factor
	if w.frame != nil {
		w.frame.SetScalingFactor(float64(factor))
	}
	return true
}

// SetMinSurfaceSize sets the minimum content size. nil restores the floor.
func (w *Window) SetMinSurfaceSize(size *dpi.LogicalSize) {
	w.requestedMin = size

	s := MinSize
	if size != nil {
		s = size.Max(MinSize)
	}
	if w.frame != nil {
		s.Width, s.Height = w.frame.AddBorders(s.Width, s.Height)
	}

	w.minSize = s
	w.call("set min size", w.toplevel.SetMinSize(s.Width, s.Height))
}

// SetMaxSurfaceSize sets the maximum content size. nil removes the limit.
func (w *Window) SetMaxSurfaceSize(size *dpi.LogicalSize) {
	w.requestedMax = size

	var s dpi.LogicalSize
	if size != nil {
		s = *size
		if w.frame != nil {
			s.Width, s.Height = w.frame.AddBorders(s.Width, s.Height)
		}
	}

	w.maxSize = s
	w.call("set max size", w.toplevel.SetMaxSize(s.Width, s.Height))
}

// SetTitle sets the title, truncated to MaxTitleBytes on a rune boundary.
func (w *Window) SetTitle(title string) {
	if len(title) > MaxTitleBytes {
		n := MaxTitleBytes
		for n > 0 && !utf8.RuneStart(title[n]) {
			n--
		}
		title = title[:n]
	}

	if w.frame != nil {
		w.frame.SetTitle(title)
	}
	w.call("set title", w.toplevel.SetTitle(title))
	w.title = title
}

// SetTransparent toggles the opaque region hint.
func (w *Window) SetTransparent(transparent bool) {
	w.transparent = transparent
	w.ReloadTransparencyHint()
}

// SetDecorate shows or hides client-side decorations.
func (w *Window) SetDecorate(decorate bool) {
	if decorate == w.decorate {
		return
	}
	w.decorate = decorate

	if decorate {
		w.call("request server decorations", w.toplevel.RequestDecorationMode(DecorationServer))
	}
	if w.frame != nil {
		w.frame.SetHidden(!decorate)
		w.Resize(w.size)
	}
}

// RequestInnerSize asks for a new physical content size. It only takes
// effect on free-floating windows; the resulting size is returned.
func (w *Window) RequestInnerSize(size dpi.PhysicalSize) dpi.PhysicalSize {
	if w.stateless {
		w.Resize(size.ToLogical(w.ScaleFactor()))
	}
	return w.PhysicalSize()
}

// SetMaximized asks the compositor to (un)maximize the window.
func (w *Window) SetMaximized(maximized bool) {
	w.call("set maximized", w.toplevel.SetMaximized(maximized))
}

// SetFullscreen asks for fullscreen on the output the window is on.
func (w *Window) SetFullscreen(fullscreen bool) {
	w.call("set fullscreen", w.toplevel.SetFullscreen(fullscreen, w.output))
}

// SetMinimized asks the compositor to minimize the window. Wayland offers
// no way back.
func (w *Window) SetMinimized() {
	w.call("set minimized", w.toplevel.SetMinimized())
}

// SetCursor selects the cursor shown while a pointer hovers the content.
func (w *Window) SetCursor(icon CursorIcon) { w.cursor = icon }

// Cursor returns the selected cursor.
func (w *Window) Cursor() CursorIcon { return w.cursor }

// SetCursorVisible shows or hides the cursor over the content.
func (w *Window) SetCursorVisible(visible bool) { w.cursorVisible = visible }

// CursorVisible reports whether the cursor is shown over the content.
func (w *Window) CursorVisible() bool { return w.cursorVisible }

// RequestRedraw schedules a draw callback for this window. Inside a loop
// iteration the redraw is delivered in the same iteration when requested
// before the redraw phase.
func (w *Window) RequestRedraw() {
	if w.redraw != nil {
		w.redraw()
	}
}

// PointerEnter records a pointer hovering the window.
func (w *Window) PointerEnter(h arena.Handle) {
	for _, p := range w.pointers {
		if p == h {
			return
		}
	}
	w.pointers = append(w.pointers, h)
}

// PointerLeave forgets a hovering pointer.
func (w *Window) PointerLeave(h arena.Handle) {
	kept := w.pointers[:0]
	for _, p := range w.pointers {
		if p != h {
			kept = append(kept, p)
		}
	}
	w.pointers = kept
}

// Pointers returns the handles of the hovering pointers.
func (w *Window) Pointers() []arena.Handle { return w.pointers }

// eachGrab runs f for every hovering pointer whose device is still alive.
func (w *Window) eachGrab(f func(Grab)) {
	if w.grabs == nil {
		return
	}
	for _, h := range w.pointers {
		if g, ok := w.grabs.Grab(h); ok {
			f(g)
		}
	}
}

// DragWindow starts an interactive move with the hovering pointers.
func (w *Window) DragWindow() {
	w.eachGrab(func(g Grab) {
		w.call("move", w.toplevel.Move(g))
	})
}

// DragResizeWindow starts an interactive resize from edge.
func (w *Window) DragResizeWindow(edge ResizeEdge) {
	w.eachGrab(func(g Grab) {
		w.call("resize", w.toplevel.Resize(g, edge))
	})
}

// ShowWindowMenu opens the compositor window menu at a physical position.
func (w *Window) ShowWindowMenu(pos dpi.PhysicalPosition) {
	logical := pos.ToLogical(w.ScaleFactor())
	w.eachGrab(func(g Grab) {
		w.call("show window menu", w.toplevel.ShowWindowMenu(g, dpi.Round(logical.X), dpi.Round(logical.Y)))
	})
}

// OnFrameClick forwards a click to the decorations and performs the
// resulting action. It reports whether the window should close.
func (w *Window) OnFrameClick(pressed bool, click FrameClick, timestamp time.Duration, grab Grab) bool {
	if w.frame == nil {
		return false
	}
	action, ok := w.frame.OnClick(timestamp, click, pressed)
	if !ok {
		return false
	}
	return w.FrameAction(action, grab)
}

// FrameAction performs a decoration action and reports whether the window
// should close.
func (w *Window) FrameAction(action FrameAction, grab Grab) bool {
	switch action.Kind {
	case ActionClose:
		return true
	case ActionMinimize:
		w.SetMinimized()
	case ActionMaximize:
		w.SetMaximized(true)
	case ActionUnMaximize:
		w.SetMaximized(false)
	case ActionShowMenu:
		w.call("show window menu", w.toplevel.ShowWindowMenu(grab, action.X, action.Y))
	case ActionResize:
		if action.Edge != EdgeNone {
			w.call("resize", w.toplevel.Resize(grab, action.Edge))
		}
	case ActionMove:
		w.call("move", w.toplevel.Move(grab))
	}
	return false
}

// RefreshFrame redraws visible, dirty decorations and reports whether they
// were drawn.
func (w *Window) RefreshFrame() bool {
	if w.frame != nil && !w.frame.Hidden() && w.frame.Dirty() {
		return w.frame.Draw()
	}
	return false
}

// Destroy releases the decorations, viewport and toplevel.
func (w *Window) Destroy() {
	if w.frame != nil {
		w.frame.Destroy()
		w.frame = nil
	}
	if w.viewport != nil {
		w.call("destroy viewport", w.viewport.Destroy())
	}
	w.call("destroy toplevel", w.toplevel.Destroy())
}
