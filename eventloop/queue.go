package eventloop

import (
	"github.com/bnema/wayloop/seat"
	"github.com/bnema/wayloop/window"
)

type internalKind int

const (
	internalRedraw internalKind = iota
	internalKeyboard
	internalPointer
	internalFocus
)

// internalEvent is produced while handling protocol events and delivered to
// the application during the input phase of the next drain.
type internalEvent struct {
	kind    internalKind
	window  window.ID
	key     seat.KeyboardEvent
	pointer seat.PointerEvent
	focused bool
}

func (s *state) pushRedraw(id window.ID) {
	s.events = append(s.events, internalEvent{kind: internalRedraw, window: id})
}

func (s *state) pushKeyboard(ev seat.KeyboardEvent) {
	s.events = append(s.events, internalEvent{kind: internalKeyboard, key: ev})
}

func (s *state) pushPointer(id window.ID, ev seat.PointerEvent) {
	s.events = append(s.events, internalEvent{kind: internalPointer, window: id, pointer: ev})
}

func (s *state) pushFocus(id window.ID, focused bool) {
	s.events = append(s.events, internalEvent{kind: internalFocus, window: id, focused: focused})
}

func (s *state) takeEvents() []internalEvent {
	events := s.events
	s.events = nil
	return events
}
