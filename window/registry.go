package window

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/bnema/wayloop/internal/orderedset"
)

// Registry owns every open window and lock surface together with the
// per-iteration pending sets. Pending sets may hold identities whose window
// has since been removed; consumers look windows up and skip missing ones.
type Registry struct {
	windows map[ID]*Window
	order   []ID
	locks   map[ID]*LockSurface

	grabs GrabResolver

	newWindows orderedset.Set[ID]
	rescale    orderedset.Set[ID]
	resize     orderedset.Set[ID]
	redraw     orderedset.Set[ID]
	close      orderedset.Set[ID]
}

// NewRegistry returns an empty registry. grabs resolves hovering pointers
// for interactive operations and may be nil.
func NewRegistry(grabs GrabResolver) *Registry {
	return &Registry{
		windows: make(map[ID]*Window),
		locks:   make(map[ID]*LockSurface),
		grabs:   grabs,
	}
}

// Insert adds a window. Inserting an ID twice is a programming error.
func (r *Registry) Insert(id ID, w *Window) {
	if _, ok := r.windows[id]; ok {
		panic(fmt.Sprintf("window: %s inserted twice", id))
	}
	w.grabs = r.grabs
	w.redraw = func() { r.redraw.Add(id) }
	r.windows[id] = w
	r.order = append(r.order, id)
}

// Remove deletes a window and returns its ID. Removing an unknown ID is a
// programming error.
func (r *Registry) Remove(id ID) ID {
	w, ok := r.windows[id]
	if !ok {
		panic(fmt.Sprintf("window: removing unknown %s", id))
	}
	w.redraw = nil
	delete(r.windows, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return id
}

// Get returns the window for id.
func (r *Registry) Get(id ID) (*Window, bool) {
	w, ok := r.windows[id]
	return w, ok
}

// IDs returns the open windows in creation order.
func (r *Registry) IDs() []ID {
	return append([]ID(nil), r.order...)
}

// Len returns the number of open windows.
func (r *Registry) Len() int { return len(r.windows) }

// InsertLock adds a lock surface. Inserting an ID twice is a programming error.
func (r *Registry) InsertLock(l *LockSurface) {
	if _, ok := r.locks[l.ID()]; ok {
		panic(fmt.Sprintf("window: lock surface %s inserted twice", l.ID()))
	}
	r.locks[l.ID()] = l
}

// RemoveLock deletes a lock surface and reports whether it existed.
func (r *Registry) RemoveLock(id ID) bool {
	if _, ok := r.locks[id]; !ok {
		return false
	}
	delete(r.locks, id)
	return true
}

// Lock returns the lock surface for id.
func (r *Registry) Lock(id ID) (*LockSurface, bool) {
	l, ok := r.locks[id]
	return l, ok
}

// LockIDs returns the identities of every lock surface in creation order.
func (r *Registry) LockIDs() []ID {
	ids := make([]ID, 0, len(r.locks))
	for id := range r.locks {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b ID) int { return cmp.Compare(a.serial, b.serial) })
	return ids
}

// IsEmpty reports whether no window and no lock surface is open.
func (r *Registry) IsEmpty() bool {
	return len(r.windows) == 0 && len(r.locks) == 0
}

// HasPending reports whether any pending set is non-empty.
func (r *Registry) HasPending() bool {
	return r.newWindows.Len() > 0 || r.rescale.Len() > 0 || r.resize.Len() > 0 ||
		r.redraw.Len() > 0 || r.close.Len() > 0
}

// MarkNew queues the creation notification for id.
func (r *Registry) MarkNew(id ID) { r.newWindows.Add(id) }

// RequestRescale queues a scale change notification for id.
func (r *Registry) RequestRescale(id ID) { r.rescale.Add(id) }

// RequestResize queues a resize notification for id.
func (r *Registry) RequestResize(id ID) { r.resize.Add(id) }

// RequestRedraw queues a draw callback for id.
func (r *Registry) RequestRedraw(id ID) { r.redraw.Add(id) }

// RequestClose queues the removal of id.
func (r *Registry) RequestClose(id ID) { r.close.Add(id) }

// TakeNew drains the pending creation notifications.
func (r *Registry) TakeNew() []ID { return r.newWindows.Take() }

// TakeRescale drains the pending scale change notifications.
func (r *Registry) TakeRescale() []ID { return r.rescale.Take() }

// TakeResize drains the pending resize notifications.
func (r *Registry) TakeResize() []ID { return r.resize.Take() }

// TakeRedraw drains the pending redraws.
func (r *Registry) TakeRedraw() []ID { return r.redraw.Take() }

// TakeClose drains the pending closes.
func (r *Registry) TakeClose() []ID { return r.close.Take() }
