package window

import "github.com/bnema/wayloop/internal/arena"

// OutputID identifies a compositor output by its protocol object number.
type OutputID uint32

// Grab is the seat and input serial that authorise an interactive operation.
type Grab struct {
	Seat   uint32
	Serial uint32
}

// GrabResolver resolves the hovering pointer handles stored on a window.
// Handles whose device is gone fail to resolve.
type GrabResolver interface {
	Grab(h arena.Handle) (Grab, bool)
}

// Toplevel is the protocol side of a window: every request the state machine
// issues to the compositor goes through it.
type Toplevel interface {
	SetTitle(title string) error
	SetAppID(id string) error
	SetMinSize(width, height uint32) error
	SetMaxSize(width, height uint32) error
	SetWindowGeometry(x, y int32, width, height uint32) error
	// SetOpaque marks the whole surface opaque, or clears the opaque region.
	SetOpaque(opaque bool) error
	RequestDecorationMode(mode DecorationMode) error
	SetMaximized(maximized bool) error
	SetFullscreen(fullscreen bool, output OutputID) error
	SetMinimized() error
	Move(grab Grab) error
	Resize(grab Grab, edge ResizeEdge) error
	ShowWindowMenu(grab Grab, x, y int32) error
	Commit() error
	Destroy() error
}

// Viewport scales the window's buffer to its logical size.
type Viewport interface {
	SetDestination(width, height uint32) error
	Destroy() error
}
