package window

import "strings"

// State is the set of toplevel states reported by the compositor.
type State uint16

const (
	StateMaximized State = 1 << iota
	StateFullscreen
	StateResizing
	StateActivated
	StateTiledLeft
	StateTiledRight
	StateTiledTop
	StateTiledBottom
	StateSuspended
)

// StateTiled is any tiled edge.
const StateTiled = StateTiledLeft | StateTiledRight | StateTiledTop | StateTiledBottom

// Focus-only bits; changes limited to these never cause a resize.
const stateFocusBits = StateActivated | StateSuspended

var stateNames = []struct {
	bit  State
	name string
}{
	{StateMaximized, "maximized"},
	{StateFullscreen, "fullscreen"},
	{StateResizing, "resizing"},
	{StateActivated, "activated"},
	{StateTiledLeft, "tiled_left"},
	{StateTiledRight, "tiled_right"},
	{StateTiledTop, "tiled_top"},
	{StateTiledBottom, "tiled_bottom"},
	{StateSuspended, "suspended"},
}

// ParseState maps a state name as printed by State.String to its bit.
func ParseState(name string) (State, bool) {
	for _, n := range stateNames {
		if n.name == name {
			return n.bit, true
		}
	}
	return 0, false
}

// Has reports whether every bit of f is set.
func (s State) Has(f State) bool { return s&f == f }

// Any reports whether at least one bit of f is set.
func (s State) Any(f State) bool { return s&f != 0 }

// Stateless reports whether the window is free-floating: neither maximized,
// fullscreen nor tiled.
func (s State) Stateless() bool {
	return !s.Any(StateMaximized | StateFullscreen | StateTiled)
}

// ForcesResize reports whether moving from s to next must resize the window
// even if the size did not change.
func (s State) ForcesResize(next State) bool {
	return (s^next)&^stateFocusBits != 0
}

func (s State) String() string {
	var parts []string
	for _, n := range stateNames {
		if s.Has(n.bit) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "floating"
	}
	return strings.Join(parts, "|")
}

// WMCapabilities lists the window management actions the compositor supports.
type WMCapabilities uint8

const (
	CapWindowMenu WMCapabilities = 1 << iota
	CapMaximize
	CapFullscreen
	CapMinimize
)

// CapAll is assumed when the compositor does not advertise capabilities.
const CapAll = CapWindowMenu | CapMaximize | CapFullscreen | CapMinimize

func (c WMCapabilities) Has(f WMCapabilities) bool { return c&f == f }

// DecorationMode tells who draws the window frame.
type DecorationMode int

const (
	DecorationClient DecorationMode = iota
	DecorationServer
)

func (m DecorationMode) String() string {
	if m == DecorationServer {
		return "server"
	}
	return "client"
}

// ResizeEdge is the edge or corner grabbed for an interactive resize.
// The values match the xdg_toplevel resize_edge enum.
type ResizeEdge uint32

const (
	EdgeNone        ResizeEdge = 0
	EdgeTop         ResizeEdge = 1
	EdgeBottom      ResizeEdge = 2
	EdgeLeft        ResizeEdge = 4
	EdgeTopLeft     ResizeEdge = 5
	EdgeBottomLeft  ResizeEdge = 6
	EdgeRight       ResizeEdge = 8
	EdgeTopRight    ResizeEdge = 9
	EdgeBottomRight ResizeEdge = 10
)

// CursorIcon names a cursor shape.
type CursorIcon string

const (
	CursorDefault    CursorIcon = "default"
	CursorPointer    CursorIcon = "pointer"
	CursorText       CursorIcon = "text"
	CursorMove       CursorIcon = "move"
	CursorNResize    CursorIcon = "n-resize"
	CursorSResize    CursorIcon = "s-resize"
	CursorEResize    CursorIcon = "e-resize"
	CursorWResize    CursorIcon = "w-resize"
	CursorNEResize   CursorIcon = "ne-resize"
	CursorNWResize   CursorIcon = "nw-resize"
	CursorSEResize   CursorIcon = "se-resize"
	CursorSWResize   CursorIcon = "sw-resize"
	CursorNotAllowed CursorIcon = "not-allowed"
)
