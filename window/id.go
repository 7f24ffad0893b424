package window

import "fmt"

// ID identifies a window or lock surface for the lifetime of the process.
//
// object is the protocol object number of the backing surface; serial is a
// creation counter assigned by the backend so that an ID is never reused even
// when the compositor recycles object numbers.
type ID struct {
	object uint32
	serial uint32
}

// NewID builds an ID from a surface object number and a creation serial.
func NewID(object, serial uint32) ID {
	return ID{object: object, serial: serial}
}

// Object returns the protocol object number of the surface.
func (id ID) Object() uint32 { return id.object }

// Serial returns the creation serial.
func (id ID) Serial() uint32 { return id.serial }

// IsZero reports whether id refers to no window.
func (id ID) IsZero() bool { return id == ID{} }

func (id ID) String() string {
	return fmt.Sprintf("wl_surface@%d#%d", id.object, id.serial)
}
