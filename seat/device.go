package seat

import "github.com/bnema/wayloop/window"

// SeatID is the protocol object number of a seat.
type SeatID uint32

// DeviceID is the protocol object number of a pointer, touch or keyboard.
type DeviceID uint32

// Capability is an input capability a seat can gain or lose.
type Capability int

const (
	CapabilityPointer Capability = iota
	CapabilityKeyboard
	CapabilityTouch
)

func (c Capability) String() string {
	switch c {
	case CapabilityPointer:
		return "pointer"
	case CapabilityKeyboard:
		return "keyboard"
	case CapabilityTouch:
		return "touch"
	default:
		return "unknown"
	}
}

// ParseCapability maps a name as printed by Capability.String.
func ParseCapability(s string) (Capability, bool) {
	for _, c := range []Capability{CapabilityPointer, CapabilityKeyboard, CapabilityTouch} {
		if c.String() == s {
			return c, true
		}
	}
	return 0, false
}

// Device is a bound input device.
type Device interface {
	ID() DeviceID
	Seat() SeatID
	Capability() Capability
	// LatestSerial is the serial of the last button press or touch down.
	LatestSerial() (uint32, bool)
	SetCursor(icon window.CursorIcon) error
	HideCursor() error
	Release() error
}
