// Package backend defines the contract between the event loop and a
// compositor connection.
//
// A Backend turns protocol callbacks into immutable Event values delivered in
// arrival order on a channel, and performs the requests the loop needs to
// create windows and bind input devices. All engine state lives on the loop
// goroutine; backends never touch it.
package backend

import (
	"errors"
	"fmt"

	"github.com/bnema/wayloop/seat"
	"github.com/bnema/wayloop/window"
)

var (
	// ErrDisconnected is reported when the event stream ends without a more specific cause.
	ErrDisconnected = errors.New("backend: connection closed")
	// ErrUnsupported is returned for requests the compositor cannot serve.
	ErrUnsupported = errors.New("backend: unsupported by compositor")
)

// ProtocolError is a fatal error raised by the compositor against one of our objects.
type ProtocolError struct {
	Object  string
	Code    uint32
	Message string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error on %s (code %d): %s", e.Object, e.Code, e.Message)
}

// Surface is a freshly created window surface.
type Surface struct {
	ID       window.ID
	Toplevel window.Toplevel
	// Viewport is nil when the compositor has no viewporter.
	Viewport window.Viewport
}

// Backend is a compositor connection.
type Backend interface {
	// Events delivers protocol notifications in arrival order. The channel is
	// closed when the connection ends; Err then reports why.
	Events() <-chan Event
	Err() error
	CreateWindow(attrs window.Attributes) (Surface, error)
	BindDevice(seat seat.SeatID, capability seat.Capability) (seat.Device, error)
	// Frames returns the client-side decoration factory, or nil when frames
	// cannot be built (no subcompositor).
	Frames() window.FrameFactory
	Close() error
}

// Locker is implemented by backends that can lock the session.
type Locker interface {
	Lock() error
	Unlock() error
}
