// Package decor draws client-side window decorations: a header bar with
// the title and window buttons, and invisible resize borders around the
// window. Surfaces are provided by a Canvas.
package decor

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/image/font"

	"github.com/bnema/wayloop/internal/logger"
	"github.com/bnema/wayloop/window"
)

const (
	// HeaderSize is the logical height of the header bar.
	HeaderSize = 35
	// BorderSize is the logical width of the resize borders.
	BorderSize = 5

	buttonWidth     = 32
	cornerSize      = 15
	doubleClickTime = 400 * time.Millisecond
)

type button int

const (
	buttonNone button = iota
	buttonClose
	buttonMaximize
	buttonMinimize
)

type location struct {
	part Part
	x, y float64
}

// Factory builds frames on canvases from a CanvasFactory.
type Factory struct {
	canvases CanvasFactory
}

// NewFactory returns a window.FrameFactory drawing on canvases.
func NewFactory(canvases CanvasFactory) *Factory {
	return &Factory{canvases: canvases}
}

func (f *Factory) NewFrame(id window.ID, config window.FrameConfig) (window.Frame, error) {
	canvas, err := f.canvases.NewCanvas(id)
	if err != nil {
		return nil, fmt.Errorf("decor: create canvas for %s: %w", id, err)
	}
	return New(canvas, config), nil
}

// Frame implements window.Frame.
type Frame struct {
	canvas       Canvas
	palette      palette
	hideTitlebar bool

	title  string
	scale  float64
	hidden bool
	dirty  bool
	state  window.State
	caps   window.WMCapabilities

	width, height uint32

	pointer   *location
	pressed   button
	lastClick time.Duration
	clicked   bool

	face      font.Face
	faceScale int32
	newFace   func(scale int32) font.Face
}

// New returns a frame drawing on canvas.
func New(canvas Canvas, config window.FrameConfig) *Frame {
	return &Frame{
		canvas:       canvas,
		palette:      paletteFor(config.Theme),
		hideTitlebar: config.HideTitlebar,
		scale:        1,
		dirty:        true,
		caps:         window.CapAll,
		newFace:      titleFace,
	}
}

func (f *Frame) headerVisible() bool {
	return !f.hidden && !f.hideTitlebar && !f.state.Has(window.StateFullscreen)
}

func (f *Frame) bordersVisible() bool {
	return !f.hidden && f.state.Stateless()
}

func (f *Frame) headerHeight() uint32 {
	if f.headerVisible() {
		return HeaderSize
	}
	return 0
}

func (f *Frame) SetTitle(title string) {
	if title != f.title {
		f.title = title
		f.dirty = true
	}
}

func (f *Frame) SetScalingFactor(scale float64) {
	if scale != f.scale {
		f.scale = scale
		f.dirty = true
	}
}

func (f *Frame) SetHidden(hidden bool) {
	if hidden == f.hidden {
		return
	}
	f.hidden = hidden
	f.dirty = true
	if hidden {
		for _, p := range allParts {
			f.canvas.Hide(p)
		}
	}
}

func (f *Frame) Hidden() bool { return f.hidden }
func (f *Frame) Dirty() bool  { return f.dirty }

func (f *Frame) UpdateState(state window.State) {
	if state != f.state {
		f.state = state
		f.dirty = true
	}
}

func (f *Frame) UpdateWMCapabilities(caps window.WMCapabilities) {
	if caps != f.caps {
		f.caps = caps
		f.dirty = true
	}
}

func (f *Frame) Resize(width, height uint32) {
	if width != f.width || height != f.height {
		f.width, f.height = width, height
		f.dirty = true
	}
}

func (f *Frame) SubtractBorders(width, height uint32) (uint32, uint32) {
	header := f.headerHeight()
	if height <= header {
		return width, 0
	}
	return width, height - header
}

func (f *Frame) AddBorders(width, height uint32) (uint32, uint32) {
	return width, height + f.headerHeight()
}

func (f *Frame) Location() (int32, int32) {
	return 0, -int32(f.headerHeight())
}

// Draw lays the parts out around the content and repaints them.
func (f *Frame) Draw() bool {
	f.dirty = false
	if f.hidden || f.width == 0 || f.height == 0 {
		return false
	}
	scale := int32(math.Ceil(f.scale))
	header := int32(f.headerHeight())

	drawn := true
	if f.headerVisible() {
		f.canvas.Place(PartHeader, Rect{X: 0, Y: -header, Width: f.width, Height: HeaderSize})
		if err := f.canvas.Paint(PartHeader, f.renderHeader(scale), scale); err != nil {
			logger.Debugf("decor: paint header: %v", err)
			drawn = false
		}
	} else {
		f.canvas.Hide(PartHeader)
	}

	if !f.bordersVisible() {
		for _, p := range allParts[1:] {
			f.canvas.Hide(p)
		}
		return drawn
	}
	for _, p := range allParts[1:] {
		r := f.borderRect(p)
		f.canvas.Place(p, r)
		if err := f.canvas.Paint(p, transparent(r, scale), scale); err != nil {
			logger.Debugf("decor: paint %s border: %v", p, err)
			drawn = false
		}
	}
	return drawn
}

func (f *Frame) borderRect(p Part) Rect {
	header := int32(f.headerHeight())
	side := f.height + uint32(header)
	switch p {
	case PartTop:
		return Rect{X: -BorderSize, Y: -header - BorderSize, Width: f.width + 2*BorderSize, Height: BorderSize}
	case PartBottom:
		return Rect{X: -BorderSize, Y: int32(f.height), Width: f.width + 2*BorderSize, Height: BorderSize}
	case PartLeft:
		return Rect{X: -BorderSize, Y: -header, Width: BorderSize, Height: side}
	case PartRight:
		return Rect{X: int32(f.width), Y: -header, Width: BorderSize, Height: side}
	default:
		return Rect{}
	}
}

// buttons returns the visible header buttons from right to left.
func (f *Frame) buttons() []button {
	out := []button{buttonClose}
	if f.caps.Has(window.CapMaximize) {
		out = append(out, buttonMaximize)
	}
	if f.caps.Has(window.CapMinimize) {
		out = append(out, buttonMinimize)
	}
	return out
}

func (f *Frame) buttonAt(x float64) button {
	if x < 0 || x >= float64(f.width) {
		return buttonNone
	}
	idx := int((float64(f.width) - x) / buttonWidth)
	buttons := f.buttons()
	if idx < len(buttons) {
		return buttons[idx]
	}
	return buttonNone
}

func (f *Frame) hovered() button {
	if f.pointer == nil || f.pointer.part != PartHeader {
		return buttonNone
	}
	return f.buttonAt(f.pointer.x)
}

func (f *Frame) partOf(surface window.ID) (Part, bool) {
	for _, p := range allParts {
		if f.canvas.Surface(p) == surface {
			return p, true
		}
	}
	return 0, false
}

func (f *Frame) edgeAt(loc location) window.ResizeEdge {
	r := f.borderRect(loc.part)
	switch loc.part {
	case PartTop, PartBottom:
		top := loc.part == PartTop
		switch {
		case loc.x < cornerSize:
			return pick(top, window.EdgeTopLeft, window.EdgeBottomLeft)
		case loc.x >= float64(r.Width)-cornerSize:
			return pick(top, window.EdgeTopRight, window.EdgeBottomRight)
		default:
			return pick(top, window.EdgeTop, window.EdgeBottom)
		}
	case PartLeft, PartRight:
		left := loc.part == PartLeft
		switch {
		case loc.y < cornerSize:
			return pick(left, window.EdgeTopLeft, window.EdgeTopRight)
		case loc.y >= float64(r.Height)-cornerSize:
			return pick(left, window.EdgeBottomLeft, window.EdgeBottomRight)
		default:
			return pick(left, window.EdgeLeft, window.EdgeRight)
		}
	}
	return window.EdgeNone
}

func pick[T any](cond bool, a, b T) T {
	if cond {
		return a
	}
	return b
}

var edgeCursors = map[window.ResizeEdge]window.CursorIcon{
	window.EdgeTop:         window.CursorNResize,
	window.EdgeBottom:      window.CursorSResize,
	window.EdgeLeft:        window.CursorWResize,
	window.EdgeRight:       window.CursorEResize,
	window.EdgeTopLeft:     window.CursorNWResize,
	window.EdgeTopRight:    window.CursorNEResize,
	window.EdgeBottomLeft:  window.CursorSWResize,
	window.EdgeBottomRight: window.CursorSEResize,
}

func (f *Frame) ClickPointMoved(_ time.Duration, surface window.ID, x, y float64) (window.CursorIcon, bool) {
	part, ok := f.partOf(surface)
	if !ok {
		return "", false
	}
	before := f.hovered()
	f.pointer = &location{part: part, x: x, y: y}
	if f.hovered() != before {
		f.dirty = true
	}

	if part == PartHeader {
		return window.CursorDefault, true
	}
	if icon, ok := edgeCursors[f.edgeAt(*f.pointer)]; ok {
		return icon, true
	}
	return window.CursorDefault, true
}

func (f *Frame) ClickPointLeft() {
	if f.hovered() != buttonNone || f.pressed != buttonNone {
		f.dirty = true
	}
	f.pointer = nil
	f.pressed = buttonNone
}

func (f *Frame) OnClick(timestamp time.Duration, click window.FrameClick, pressed bool) (window.FrameAction, bool) {
	if f.pointer == nil {
		return window.FrameAction{}, false
	}
	loc := *f.pointer

	if click == window.ClickAlternate {
		if pressed && loc.part == PartHeader && f.caps.Has(window.CapWindowMenu) {
			return window.FrameAction{
				Kind: window.ActionShowMenu,
				X:    int32(loc.x),
				Y:    int32(loc.y) - int32(f.headerHeight()),
			}, true
		}
		return window.FrameAction{}, false
	}

	if loc.part != PartHeader {
		if pressed && f.bordersVisible() {
			if edge := f.edgeAt(loc); edge != window.EdgeNone {
				return window.FrameAction{Kind: window.ActionResize, Edge: edge}, true
			}
		}
		return window.FrameAction{}, false
	}

	target := f.buttonAt(loc.x)
	if pressed {
		if target != buttonNone {
			f.pressed = target
			f.dirty = true
			return window.FrameAction{}, false
		}
		if f.clicked && timestamp-f.lastClick < doubleClickTime && f.caps.Has(window.CapMaximize) {
			f.clicked = false
			return f.toggleMaximize(), true
		}
		f.lastClick, f.clicked = timestamp, true
		return window.FrameAction{Kind: window.ActionMove}, true
	}

	held := f.pressed
	f.pressed = buttonNone
	if held != buttonNone {
		f.dirty = true
	}
	if target == buttonNone || target != held {
		return window.FrameAction{}, false
	}
	switch target {
	case buttonClose:
		return window.FrameAction{Kind: window.ActionClose}, true
	case buttonMaximize:
		return f.toggleMaximize(), true
	case buttonMinimize:
		return window.FrameAction{Kind: window.ActionMinimize}, true
	}
	return window.FrameAction{}, false
}

func (f *Frame) toggleMaximize() window.FrameAction {
	if f.state.Has(window.StateMaximized) {
		return window.FrameAction{Kind: window.ActionUnMaximize}
	}
	return window.FrameAction{Kind: window.ActionMaximize}
}

func (f *Frame) Destroy() {
	f.closeFace()
	f.canvas.Destroy()
}
