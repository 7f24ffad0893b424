// Package orderedset provides a deduplicating set that remembers insertion order.
package orderedset

// Set is an insertion-ordered set. The zero value is ready to use.
type Set[T comparable] struct {
	index map[T]struct{}
	items []T
}

// Add inserts v and reports whether it was not already present.
func (s *Set[T]) Add(v T) bool {
	if s.index == nil {
		s.index = make(map[T]struct{})
	}
	if _, ok := s.index[v]; ok {
		return false
	}
	s.index[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

// Has reports whether v is in the set.
func (s *Set[T]) Has(v T) bool {
	_, ok := s.index[v]
	return ok
}

// Len returns the number of elements.
func (s *Set[T]) Len() int {
	return len(s.items)
}

// Items returns the elements in insertion order. The slice must not be modified.
func (s *Set[T]) Items() []T {
	return s.items
}

// Merge adds every element of other, keeping the order of first insertion.
func (s *Set[T]) Merge(other []T) {
	for _, v := range other {
		s.Add(v)
	}
}

// Take returns the elements in insertion order and empties the set.
func (s *Set[T]) Take() []T {
	items := s.items
	s.items = nil
	s.index = nil
	return items
}
