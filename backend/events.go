package backend

import (
	"time"

	"github.com/bnema/wayloop/dpi"
	"github.com/bnema/wayloop/seat"
	"github.com/bnema/wayloop/window"
)

// Event is a protocol notification.
type Event interface {
	backendEvent()
}

// SurfaceRef names the surface an input event hit. Parent is set when the
// surface is a decoration part belonging to a window.
type SurfaceRef struct {
	Surface window.ID
	Parent  window.ID
}

// Window returns the logical window the surface belongs to.
func (r SurfaceRef) Window() window.ID {
	if !r.Parent.IsZero() {
		return r.Parent
	}
	return r.Surface
}

// IsDecoration reports whether the surface is a decoration part.
func (r SurfaceRef) IsDecoration() bool {
	return !r.Parent.IsZero() && r.Parent != r.Surface
}

// Configure carries a complete configure sequence for a toplevel. The
// backend acknowledges it before delivery.
type Configure struct {
	Surface window.ID
	Config  window.Configure
}

// CloseRequested is sent when the compositor asks a toplevel to close.
type CloseRequested struct {
	Surface window.ID
}

// ScaleChanged reports the preferred integer buffer scale of a surface.
type ScaleChanged struct {
	Surface window.ID
	Factor  int32
}

// FrameDone signals that a good time to draw the surface has come.
type FrameDone struct {
	Surface window.ID
}

// SurfaceEnter reports that a surface became visible on an output.
type SurfaceEnter struct {
	Surface window.ID
	Output  window.OutputID
}

// SurfaceLeave reports that a surface left an output.
type SurfaceLeave struct {
	Surface window.ID
	Output  window.OutputID
}

// CapabilityAdded reports a seat gaining an input capability.
type CapabilityAdded struct {
	Seat       seat.SeatID
	Capability seat.Capability
}

// CapabilityRemoved reports a seat losing an input capability.
type CapabilityRemoved struct {
	Seat       seat.SeatID
	Capability seat.Capability
}

// PointerRawKind tags a PointerRaw.
type PointerRawKind int

const (
	RawEnter PointerRawKind = iota
	RawLeave
	RawMotion
	RawPress
	RawRelease
	RawAxis
)

// PointerRaw is one pointer notification, positions in surface-local logical units.
type PointerRaw struct {
	Kind     PointerRawKind
	Surface  SurfaceRef
	Position dpi.LogicalPosition
	Time     time.Duration
	Serial   uint32
	Button   uint32
	Axis     dpi.LogicalPosition
}

// PointerFrame groups pointer notifications that belong together.
type PointerFrame struct {
	Device seat.DeviceID
	Events []PointerRaw
}

type TouchDown struct {
	Device   seat.DeviceID
	Serial   uint32
	Time     time.Duration
	Surface  SurfaceRef
	Contact  int32
	Position dpi.LogicalPosition
}

type TouchUp struct {
	Device  seat.DeviceID
	Serial  uint32
	Time    time.Duration
	Contact int32
}

type TouchMotion struct {
	Device   seat.DeviceID
	Time     time.Duration
	Contact  int32
	Position dpi.LogicalPosition
}

type TouchShape struct {
	Device  seat.DeviceID
	Contact int32
	Major   float64
	Minor   float64
}

type TouchOrientation struct {
	Device      seat.DeviceID
	Contact     int32
	Orientation float64
}

// TouchCancel invalidates every active contact of the device.
type TouchCancel struct {
	Device seat.DeviceID
}

type KeyboardEnter struct {
	Device  seat.DeviceID
	Surface SurfaceRef
}

type KeyboardLeave struct {
	Device  seat.DeviceID
	Surface SurfaceRef
}

type Key struct {
	Device seat.DeviceID
	Time   time.Duration
	Key    uint32
	State  seat.KeyState
}

// Keymap reports where a keyboard's keymap puts the modifiers.
type Keymap struct {
	Device    seat.DeviceID
	Modifiers seat.ModifierMap
}

type ModifiersChanged struct {
	Device    seat.DeviceID
	Depressed uint32
	Latched   uint32
	Locked    uint32
	Group     uint32
}

// LockSurfaceConfigure sizes the lock surface shown on an output.
type LockSurfaceConfigure struct {
	Surface window.ID
	Output  window.OutputID
	Size    dpi.LogicalSize
}

// Locked confirms the session is locked.
type Locked struct{}

// Unlocked reports that the lock ended, either on request or because the
// compositor refused or finished it.
type Unlocked struct{}

func (Configure) backendEvent()            {}
func (CloseRequested) backendEvent()       {}
func (ScaleChanged) backendEvent()         {}
func (FrameDone) backendEvent()            {}
func (SurfaceEnter) backendEvent()         {}
func (SurfaceLeave) backendEvent()         {}
func (CapabilityAdded) backendEvent()      {}
func (CapabilityRemoved) backendEvent()    {}
func (PointerFrame) backendEvent()         {}
func (TouchDown) backendEvent()            {}
func (TouchUp) backendEvent()              {}
func (TouchMotion) backendEvent()          {}
func (TouchShape) backendEvent()           {}
func (TouchOrientation) backendEvent()     {}
func (TouchCancel) backendEvent()          {}
func (KeyboardEnter) backendEvent()        {}
func (KeyboardLeave) backendEvent()        {}
func (Key) backendEvent()                  {}
func (Keymap) backendEvent()               {}
func (ModifiersChanged) backendEvent()     {}
func (LockSurfaceConfigure) backendEvent() {}
func (Locked) backendEvent()               {}
func (Unlocked) backendEvent()             {}
