package seat

import (
	"fmt"
	"time"

	"github.com/bnema/wayloop/dpi"
)

// PointerID distinguishes concurrent pointers. Touch contacts get their own id.
type PointerID uint64

// PrimaryPointer is the id of the primary pointer.
const PrimaryPointer PointerID = 1

// TouchPointerID returns the pointer id of a touch contact.
func TouchPointerID(contact int32) PointerID {
	return PointerID(uint64(uint32(contact)) + 1)
}

// PointerType is the kind of device behind a pointer.
type PointerType int

const (
	PointerMouse PointerType = iota
	PointerTouch
	PointerPen
)

func (t PointerType) String() string {
	switch t {
	case PointerTouch:
		return "touch"
	case PointerPen:
		return "pen"
	default:
		return "mouse"
	}
}

// PointerInfo identifies the pointer an event comes from.
type PointerInfo struct {
	ID   PointerID
	Type PointerType
}

// Orientation of a stylus or touch contact, in radians.
type Orientation struct {
	Altitude float64
	Azimuth  float64
}

// PointerState is the state of a pointer at the time of an event.
type PointerState struct {
	Time            time.Duration
	Position        dpi.PhysicalPosition
	Modifiers       Modifiers
	Pressure        float32
	ContactGeometry dpi.PhysicalPosition
	Orientation     Orientation
}

// PointerEventKind tags a PointerEvent.
type PointerEventKind int

const (
	PointerEnter PointerEventKind = iota
	PointerLeave
	PointerMove
	PointerDown
	PointerUp
	PointerCancel
	PointerScroll
)

func (k PointerEventKind) String() string {
	switch k {
	case PointerEnter:
		return "enter"
	case PointerLeave:
		return "leave"
	case PointerMove:
		return "move"
	case PointerDown:
		return "down"
	case PointerUp:
		return "up"
	case PointerCancel:
		return "cancel"
	case PointerScroll:
		return "scroll"
	default:
		return "unknown"
	}
}

// PointerEvent is delivered to the application for mouse and touch input.
// Button is set for Down and Up, Scroll for Scroll.
type PointerEvent struct {
	Kind    PointerEventKind
	Pointer PointerInfo
	Button  Button
	State   PointerState
	Scroll  dpi.PhysicalPosition
}

func (e PointerEvent) String() string {
	switch e.Kind {
	case PointerDown, PointerUp:
		return fmt.Sprintf("%s %s %s at %.1f,%.1f", e.Pointer.Type, e.Kind, e.Button, e.State.Position.X, e.State.Position.Y)
	case PointerCancel:
		return fmt.Sprintf("%s cancel", e.Pointer.Type)
	case PointerScroll:
		return fmt.Sprintf("%s scroll %.1f,%.1f", e.Pointer.Type, e.Scroll.X, e.Scroll.Y)
	default:
		return fmt.Sprintf("%s %s at %.1f,%.1f", e.Pointer.Type, e.Kind, e.State.Position.X, e.State.Position.Y)
	}
}
