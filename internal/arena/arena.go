// Package arena stores values in reusable slots addressed by generation-checked handles.
//
// A Handle stays valid until the slot it points to is freed. Once freed, the
// slot's generation is bumped so stale handles fail to resolve even if the slot
// is reused by a later insertion.
package arena

import "fmt"

// Handle addresses a slot in an Arena. The zero Handle never resolves.
type Handle struct {
	index      uint32
	generation uint32
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool {
	return h.generation == 0
}

func (h Handle) String() string {
	return fmt.Sprintf("%d#%d", h.index, h.generation)
}

type slot[T any] struct {
	value      T
	generation uint32
	occupied   bool
}

// Arena is a slot allocator. The zero value is ready to use.
type Arena[T any] struct {
	slots []slot[T]
	free  []uint32
	len   int
}

// Insert stores v and returns its handle.
func (a *Arena[T]) Insert(v T) Handle {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.slots = append(a.slots, slot[T]{})
		idx = uint32(len(a.slots) - 1)
	}

	s := &a.slots[idx]
	s.generation++
	s.value = v
	s.occupied = true
	a.len++

	return Handle{index: idx, generation: s.generation}
}

// Get resolves h. It fails for zero, freed or reused handles.
func (a *Arena[T]) Get(h Handle) (T, bool) {
	var zero T
	if h.IsZero() || int(h.index) >= len(a.slots) {
		return zero, false
	}
	s := &a.slots[h.index]
	if !s.occupied || s.generation != h.generation {
		return zero, false
	}
	return s.value, true
}

// Remove frees the slot behind h and returns the value it held.
func (a *Arena[T]) Remove(h Handle) (T, bool) {
	v, ok := a.Get(h)
	if !ok {
		return v, false
	}
	s := &a.slots[h.index]
	var zero T
	s.value = zero
	s.occupied = false
	a.free = append(a.free, h.index)
	a.len--
	return v, true
}

// Len returns the number of occupied slots.
func (a *Arena[T]) Len() int {
	return a.len
}
