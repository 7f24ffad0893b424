package eventloop

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/bnema/wayloop/a11y"
	"github.com/bnema/wayloop/window"
)

var (
	// ErrLoopClosed is returned by Handle requests made after Run returned.
	ErrLoopClosed = errors.New("eventloop: loop closed")
	// ErrAlreadyRunning is returned when Run is called twice concurrently.
	ErrAlreadyRunning = errors.New("eventloop: already running")
)

// lockRequest is a session lock or unlock asked through the handle.
type lockRequest bool

const (
	requestLock   lockRequest = true
	requestUnlock lockRequest = false
)

// mailbox is the state shared between a Loop and its handles.
type mailbox[E any] struct {
	mu      sync.Mutex
	closed  bool
	windows []window.Attributes
	events  []E
	redraws []window.ID
	a11y    []a11y.Event
	locks   []lockRequest

	wake    chan struct{}
	stop    atomic.Bool
	locked  atomic.Bool
	running atomic.Bool
}

func newMailbox[E any]() *mailbox[E] {
	return &mailbox[E]{wake: make(chan struct{}, 1)}
}

func (m *mailbox[E]) notify() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// post runs f under the lock unless the mailbox is closed, then wakes the loop.
func (m *mailbox[E]) post(f func()) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrLoopClosed
	}
	f()
	m.mu.Unlock()
	m.notify()
	return nil
}

// PushAccessibility implements a11y.Sink. Events pushed after shutdown are dropped.
func (m *mailbox[E]) PushAccessibility(ev a11y.Event) {
	_ = m.post(func() { m.a11y = append(m.a11y, ev) })
}

// batch is everything taken from the mailbox in one go.
type batch[E any] struct {
	windows []window.Attributes
	events  []E
	redraws []window.ID
	a11y    []a11y.Event
	locks   []lockRequest
}

func (m *mailbox[E]) take() batch[E] {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := batch[E]{
		windows: m.windows,
		events:  m.events,
		redraws: m.redraws,
		a11y:    m.a11y,
		locks:   m.locks,
	}
	m.windows, m.events, m.redraws, m.a11y, m.locks = nil, nil, nil, nil, nil
	return b
}

func (m *mailbox[E]) close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
}

// Handle talks to a Loop from any goroutine. Copies of the pointer may be
// shared freely.
type Handle[E any] struct {
	m *mailbox[E]
}

// RequestWindow asks the loop to create a window. The application learns
// its ID through CreateWindow.
func (h *Handle[E]) RequestWindow(attrs window.Attributes) error {
	return h.m.post(func() { h.m.windows = append(h.m.windows, attrs) })
}

// SendEvent queues a user event, delivered exactly once through UserEvent.
func (h *Handle[E]) SendEvent(ev E) error {
	return h.m.post(func() { h.m.events = append(h.m.events, ev) })
}

// RequestRedraw schedules a Draw callback for id.
func (h *Handle[E]) RequestRedraw(id window.ID) error {
	return h.m.post(func() { h.m.redraws = append(h.m.redraws, id) })
}

// Lock asks the compositor to lock the session.
func (h *Handle[E]) Lock() error {
	return h.m.post(func() { h.m.locks = append(h.m.locks, requestLock) })
}

// Unlock ends a session lock.
func (h *Handle[E]) Unlock() error {
	return h.m.post(func() { h.m.locks = append(h.m.locks, requestUnlock) })
}

// IsLocked reports whether the compositor confirmed the session lock.
func (h *Handle[E]) IsLocked() bool { return h.m.locked.Load() }

// Stop makes Run return after the current iteration. It is idempotent.
func (h *Handle[E]) Stop() {
	h.m.stop.Store(true)
	h.m.notify()
}

// IsRunning reports whether Run is executing.
func (h *Handle[E]) IsRunning() bool { return h.m.running.Load() }
