// Package eventloop drives windows created on a compositor connection.
//
// A Loop folds protocol events into window state and then drains the
// accumulated work into ApplicationHandler callbacks, once per iteration and
// in a fixed order: new windows, user events, rescales, resizes, user
// signals, accessibility requests, input and focus, redraws and finally
// closes. Everything happens on the goroutine calling Run; other goroutines
// talk to the loop through its Handle.
package eventloop

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bnema/wayloop/a11y"
	"github.com/bnema/wayloop/backend"
	"github.com/bnema/wayloop/internal/logger"
	"github.com/bnema/wayloop/internal/orderedset"
	"github.com/bnema/wayloop/window"
)

type options struct {
	dispatchTimeout   time.Duration
	bridge            a11y.Bridge
	clientDecorations bool
}

// Option configures a Loop.
type Option func(*options)

// WithDispatchTimeout bounds how long an iteration waits for events. Zero,
// the default, waits indefinitely.
func WithDispatchTimeout(d time.Duration) Option {
	return func(o *options) { o.dispatchTimeout = d }
}

// WithAccessibilityBridge attaches every window to an accessibility bridge.
func WithAccessibilityBridge(b a11y.Bridge) Option {
	return func(o *options) { o.bridge = b }
}

// WithClientDecorations allows client-side decorations when the compositor
// does not draw them. Enabled by default.
func WithClientDecorations(enabled bool) Option {
	return func(o *options) { o.clientDecorations = enabled }
}

// Loop is the event loop driver.
type Loop[E any] struct {
	backend backend.Backend
	opts    options
	mailbox *mailbox[E]
	state   *state
	// user events taken from the mailbox, delivered at the next drain
	pending []E
	a11y    []a11y.Event
	log     *log.Logger
}

// New builds a loop over b. The returned handle may be used before Run is
// called; its requests are queued until the first iteration.
func New[E any](b backend.Backend, opts ...Option) (*Loop[E], *Handle[E]) {
	o := options{clientDecorations: true}
	for _, opt := range opts {
		opt(&o)
	}

	l := &Loop[E]{
		backend: b,
		opts:    o,
		mailbox: newMailbox[E](),
		log:     logger.WithPrefix("eventloop"),
	}
	l.state = newState(b, o, l.mailbox, &l.mailbox.locked, l.log)
	return l, &Handle[E]{m: l.mailbox}
}

// Windows returns the window registry. It must only be used from the
// goroutine running the loop.
func (l *Loop[E]) Windows() *window.Registry { return l.state.windows }

// Run iterates until every window is closed, Stop is called or ctx is
// cancelled, all of which return nil. A failing connection returns an error
// wrapping the backend's cause.
func (l *Loop[E]) Run(ctx context.Context, app ApplicationHandler[E]) error {
	if !l.mailbox.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer func() {
		l.mailbox.close()
		l.mailbox.running.Store(false)
	}()

	l.log.Debug("event loop running")
	for {
		more, err := l.RunOnce(ctx, app)
		if err != nil {
			l.log.Error("event loop failed", "err", err)
			return err
		}
		if !more {
			l.log.Debug("closing the event loop")
			return nil
		}
	}
}

// RunOnce performs a single iteration and reports whether the loop should
// continue.
func (l *Loop[E]) RunOnce(ctx context.Context, app ApplicationHandler[E]) (bool, error) {
	if err := l.dispatch(ctx); err != nil {
		return false, err
	}
	l.drain(app)

	if l.state.windows.IsEmpty() || l.mailbox.stop.Load() || ctx.Err() != nil {
		return false, nil
	}
	return true, nil
}

// ready reports whether an iteration has work without waiting for events.
func (l *Loop[E]) ready(ctx context.Context) bool {
	return l.state.windows.IsEmpty() ||
		l.state.windows.HasPending() ||
		len(l.state.events) > 0 ||
		len(l.pending) > 0 ||
		len(l.a11y) > 0 ||
		l.mailbox.stop.Load() ||
		ctx.Err() != nil
}

// dispatch collects handle requests and protocol events. It blocks only when
// nothing is pending.
func (l *Loop[E]) dispatch(ctx context.Context) error {
	l.processMailbox()

	events := l.backend.Events()
	if !l.ready(ctx) {
		var timeout <-chan time.Time
		if l.opts.dispatchTimeout > 0 {
			timer := time.NewTimer(l.opts.dispatchTimeout)
			defer timer.Stop()
			timeout = timer.C
		}

		select {
		case ev, ok := <-events:
			if !ok {
				return l.disconnected()
			}
			l.state.handle(ev)
		case <-l.mailbox.wake:
		case <-ctx.Done():
			l.mailbox.stop.Store(true)
		case <-timeout:
		}
	}

	// Take what is already buffered without waiting for more. A closed
	// channel is reported even when work is pending.
buffered:
	for n := len(events); n >= 0; n-- {
		select {
		case ev, ok := <-events:
			if !ok {
				return l.disconnected()
			}
			l.state.handle(ev)
		default:
			break buffered
		}
	}

	l.processMailbox()
	return nil
}

func (l *Loop[E]) disconnected() error {
	err := l.backend.Err()
	if err == nil {
		err = backend.ErrDisconnected
	}
	return fmt.Errorf("dispatch: %w", err)
}

// processMailbox applies the requests made through handles.
func (l *Loop[E]) processMailbox() {
	b := l.mailbox.take()
	for _, attrs := range b.windows {
		l.state.createWindow(attrs)
	}
	for _, req := range b.locks {
		l.state.lock(req)
	}
	for _, id := range b.redraws {
		l.state.pushRedraw(id)
	}
	l.pending = append(l.pending, b.events...)
	l.a11y = append(l.a11y, b.a11y...)
}

// drain turns the accumulated state into callbacks.
func (l *Loop[E]) drain(app ApplicationHandler[E]) {
	s := l.state
	reg := s.windows

	newWindows := reg.TakeNew()
	rescale := reg.TakeRescale()
	var resize, redraw orderedset.Set[window.ID]
	resize.Merge(reg.TakeResize())
	redraw.Merge(reg.TakeRedraw())
	closing := reg.TakeClose()

	userEvents := l.pending
	l.pending = nil
	a11yEvents := l.a11y
	l.a11y = nil
	internal := s.takeEvents()

	for _, id := range newWindows {
		if s.exists(id) {
			app.CreateWindow(id)
		}
	}

	for _, ev := range userEvents {
		app.UserEvent(ev)
	}

	for _, id := range rescale {
		if scale, ok := s.scaleOf(id); ok {
			app.Rescale(id, scale)
			resize.Add(id)
		}
	}

	for _, id := range resize.Items() {
		if size, ok := s.physicalSize(id); ok {
			app.Resize(id, size)
			redraw.Add(id)
		}
	}

	app.UserSignals(reg)

	for _, ev := range a11yEvents {
		l.deliverAccessibility(app, ev)
	}

	for _, ev := range internal {
		l.deliver(app, ev)
	}

	// Redraws requested by the application or by input since the take.
	redraw.Merge(reg.TakeRedraw())
	for _, id := range redraw.Items() {
		if w, ok := reg.Get(id); ok {
			w.RefreshFrame()
		} else if _, ok := reg.Lock(id); !ok {
			continue
		}
		app.Draw(id, s.adapters[id])
	}

	for _, id := range closing {
		if s.closeSurface(id) {
			l.log.Debug("window closed", "window", id)
			app.Close(id)
		}
	}
}

func (l *Loop[E]) deliverAccessibility(app ApplicationHandler[E], ev a11y.Event) {
	s := l.state
	adapter, ok := s.adapters[ev.Window]
	if !ok || !s.exists(ev.Window) {
		l.log.Debug("dropping accessibility event for unknown window", "window", ev.Window, "event", ev)
		return
	}
	switch ev.Kind {
	case a11y.Activate:
		adapter.SetActive(true)
		app.AccessibilityActivate(ev.Window, adapter)
	case a11y.ActionRequested:
		app.AccessibilityAction(ev.Window, ev.Request, adapter)
	case a11y.Deactivate:
		app.AccessibilityDeactivate(ev.Window, adapter)
		adapter.SetActive(false)
	}
}

// deliver hands one internal event to the application. Every delivery
// schedules a redraw of its window.
func (l *Loop[E]) deliver(app ApplicationHandler[E], ev internalEvent) {
	s := l.state
	switch ev.kind {
	case internalRedraw:
		if s.exists(ev.window) {
			s.windows.RequestRedraw(ev.window)
		}
	case internalKeyboard:
		if s.focus.IsZero() || !s.exists(s.focus) {
			return
		}
		s.windows.RequestRedraw(s.focus)
		app.Keyboard(s.focus, ev.key)
	case internalPointer:
		if !s.exists(ev.window) {
			return
		}
		s.windows.RequestRedraw(ev.window)
		app.Pointer(ev.window, ev.pointer)
	case internalFocus:
		if !s.exists(ev.window) {
			return
		}
		s.windows.RequestRedraw(ev.window)
		app.Focus(ev.window, ev.focused)
	}
}
