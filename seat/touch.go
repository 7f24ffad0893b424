package seat

import (
	"slices"

	"github.com/bnema/wayloop/window"
)

// TouchContact is one finger on a touch surface. Surface is the surface the
// contact went down on, a decoration part when OnFrame is set. Scale is the
// scale of the target window at touch down.
type TouchContact struct {
	Window  window.ID
	Surface window.ID
	Device  DeviceID
	Info    PointerInfo
	State   PointerState
	Scale   float64
	OnFrame bool
}

// TouchTable maps protocol contact ids to active contacts.
type TouchTable struct {
	contacts map[int32]*TouchContact
}

// NewTouchTable returns an empty table.
func NewTouchTable() *TouchTable {
	return &TouchTable{contacts: make(map[int32]*TouchContact)}
}

// Add starts tracking a contact, replacing a stale one with the same id.
func (t *TouchTable) Add(id int32, c *TouchContact) {
	t.contacts[id] = c
}

// Get returns the contact for id.
func (t *TouchTable) Get(id int32) (*TouchContact, bool) {
	c, ok := t.contacts[id]
	return c, ok
}

// Remove stops tracking id and returns its contact.
func (t *TouchTable) Remove(id int32) (*TouchContact, bool) {
	c, ok := t.contacts[id]
	if ok {
		delete(t.contacts, id)
	}
	return c, ok
}

// Drain removes every contact and returns them ordered by contact id.
func (t *TouchTable) Drain() []*TouchContact {
	ids := make([]int32, 0, len(t.contacts))
	for id := range t.contacts {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]*TouchContact, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.contacts[id])
	}
	clear(t.contacts)
	return out
}

// Len returns the number of active contacts.
func (t *TouchTable) Len() int { return len(t.contacts) }
