// Package wayland implements backend.Backend on a live compositor
// connection using go-wayland.
//
// Protocol callbacks run on a reader goroutine that owns the socket reads.
// They are translated into backend events and queued on the events channel.
// Requests issued by the event loop, and every lookup in the proxy table,
// are serialised with mu.
package wayland

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/rajveermalviya/go-wayland/wayland/client"
	"github.com/rajveermalviya/go-wayland/wayland/stable/viewporter"
	xdg_shell "github.com/rajveermalviya/go-wayland/wayland/stable/xdg-shell"
	ext_session_lock "github.com/rajveermalviya/go-wayland/wayland/staging/ext-session-lock-v1"
	xdg_decoration "github.com/rajveermalviya/go-wayland/wayland/unstable/xdg-decoration-v1"
	"golang.org/x/sys/unix"

	"github.com/bnema/wayloop/backend"
	"github.com/bnema/wayloop/decor"
	"github.com/bnema/wayloop/internal/logger"
	"github.com/bnema/wayloop/seat"
	"github.com/bnema/wayloop/window"
)

// Global interface names.
const (
	compositorInterface    = "wl_compositor"
	subcompositorInterface = "wl_subcompositor"
	shmInterface           = "wl_shm"
	outputInterface        = "wl_output"
	seatInterface          = "wl_seat"
	wmBaseInterface        = "xdg_wm_base"
	decorationInterface    = "zxdg_decoration_manager_v1"
	viewporterInterface    = "wp_viewporter"
	sessionLockInterface   = "ext_session_lock_manager_v1"
)

// Highest protocol versions the backend speaks. xdg_wm_base 4 adds
// configure_bounds and 5 adds wm_capabilities.
const (
	compositorVersion = 4
	outputVersion     = 3
	seatVersion       = 7
	wmBaseVersion     = 5
)

// DefaultBuffer is the default capacity of the event channel.
const DefaultBuffer = 256

// Option configures a Backend.
type Option func(*Backend)

// WithBuffer sets the event channel capacity.
func WithBuffer(n int) Option {
	return func(b *Backend) {
		if n > 0 {
			b.buffer = n
		}
	}
}

// WithDisplay connects to the named display instead of WAYLAND_DISPLAY.
func WithDisplay(name string) Option {
	return func(b *Backend) { b.address = name }
}

// Backend is a compositor connection.
type Backend struct {
	address string
	buffer  int

	mu            sync.Mutex
	display       *client.Display
	ctx           *client.Context
	registry      *client.Registry
	compositor    *client.Compositor
	subcompositor *client.Subcompositor
	shm           *client.Shm
	wmBase        *xdg_shell.WmBase

	// Optional globals, nil when the compositor lacks them.
	decorations *xdg_decoration.DecorationManager
	viewporter  *viewporter.Viewporter
	lockManager *ext_session_lock.ExtSessionLockManager

	outputs map[uint32]*output
	seats   map[uint32]*seatState
	windows map[uint32]*toplevel
	parts   map[uint32]backend.SurfaceRef
	session *session
	cursors *cursorTheme
	serial  uint32
	closing bool

	events    chan backend.Event
	done      chan struct{}
	closeOnce sync.Once
	errMu     sync.Mutex
	err       error

	log *log.Logger
}

// Connect opens the display, binds the globals and starts reading events.
func Connect(opts ...Option) (*Backend, error) {
	b := &Backend{
		buffer:  DefaultBuffer,
		outputs: make(map[uint32]*output),
		seats:   make(map[uint32]*seatState),
		windows: make(map[uint32]*toplevel),
		parts:   make(map[uint32]backend.SurfaceRef),
		done:    make(chan struct{}),
		log:     logger.WithPrefix("wayland"),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.events = make(chan backend.Event, b.buffer)

	display, err := client.Connect(b.address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Wayland display: %w", err)
	}
	b.display = display
	b.ctx = display.Context()
	display.SetErrorHandler(b.handleDisplayError)

	registry, err := display.GetRegistry()
	if err != nil {
		b.ctx.Close()
		return nil, fmt.Errorf("failed to get registry: %w", err)
	}
	b.registry = registry
	registry.SetGlobalHandler(b.handleGlobal)
	registry.SetGlobalRemoveHandler(b.handleGlobalRemove)

	// Globals, then the events of the objects bound from them.
	for range 2 {
		if err := b.roundtrip(); err != nil {
			b.ctx.Close()
			return nil, fmt.Errorf("initial roundtrip: %w", err)
		}
	}

	switch {
	case b.compositor == nil:
		b.ctx.Close()
		return nil, fmt.Errorf("%w: wl_compositor", backend.ErrUnsupported)
	case b.shm == nil:
		b.ctx.Close()
		return nil, fmt.Errorf("%w: wl_shm", backend.ErrUnsupported)
	case b.wmBase == nil:
		b.ctx.Close()
		return nil, fmt.Errorf("%w: xdg_wm_base", backend.ErrUnsupported)
	}

	b.cursors = newCursorTheme(b)
	go b.readLoop()

	b.log.Debug("connected",
		"outputs", len(b.outputs),
		"seats", len(b.seats),
		"subcompositor", b.subcompositor != nil,
		"decorations", b.decorations != nil,
		"viewporter", b.viewporter != nil,
		"session_lock", b.lockManager != nil,
	)
	return b, nil
}

func (b *Backend) roundtrip() error {
	callback, err := b.display.Sync()
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	done := false
	callback.SetDoneHandler(func(client.CallbackDoneEvent) { done = true })
	for !done {
		if err := b.dispatch(); err != nil {
			return err
		}
	}
	return nil
}

// dispatch reads one message and hands it to its proxy. The proxy table is
// shared with requests, so the lookup takes mu; the handler runs without it.
// Events for objects already destroyed are dropped.
func (b *Backend) dispatch() error {
	sender, opcode, fd, data, err := b.ctx.ReadMsg()
	if err != nil {
		return fmt.Errorf("read message: %w", err)
	}

	b.mu.Lock()
	proxy := b.ctx.GetProxy(sender)
	b.mu.Unlock()

	d, ok := proxy.(client.Dispatcher)
	if !ok {
		if fd >= 0 {
			unix.Close(fd)
		}
		b.log.Debug("dropping event for unknown object", "object", sender, "opcode", opcode)
		return nil
	}
	if sender == b.display.ID() {
		// Error events look up the offending proxy.
		b.mu.Lock()
		defer b.mu.Unlock()
	}
	d.Dispatch(opcode, fd, data)
	return nil
}

func (b *Backend) readLoop() {
	for {
		err := b.dispatch()
		select {
		case <-b.done:
			b.finish(nil)
			return
		default:
		}
		if err != nil {
			b.finish(fmt.Errorf("wayland: %w", err))
			return
		}
	}
}

// finish records why the connection ended and closes the event stream. Only
// the reader goroutine calls it.
func (b *Backend) finish(err error) {
	b.closeOnce.Do(func() {
		b.errMu.Lock()
		if b.err == nil {
			b.err = err
		}
		b.errMu.Unlock()
		close(b.events)
	})
}

// emit queues events unless the connection is closing.
func (b *Backend) emit(events ...backend.Event) {
	for _, ev := range events {
		select {
		case b.events <- ev:
		case <-b.done:
			return
		}
	}
}

func (b *Backend) handleDisplayError(e client.DisplayErrorEvent) {
	object := "unknown"
	if e.ObjectId != nil {
		object = fmt.Sprintf("object@%d", e.ObjectId.ID())
	}
	err := &backend.ProtocolError{Object: object, Code: e.Code, Message: e.Message}
	b.log.Error("protocol error", "object", object, "code", e.Code, "message", e.Message)
	b.errMu.Lock()
	if b.err == nil {
		b.err = err
	}
	b.errMu.Unlock()
}

// handleGlobal binds the globals the backend uses. Binding registers
// proxies, so it runs under mu.
func (b *Backend) handleGlobal(e client.RegistryGlobalEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch e.Interface {
	case compositorInterface:
		comp := client.NewCompositor(b.ctx)
		if b.bind(e, compositorVersion, comp) {
			b.compositor = comp
		}
	case subcompositorInterface:
		sub := client.NewSubcompositor(b.ctx)
		if b.bind(e, 1, sub) {
			b.subcompositor = sub
		}
	case shmInterface:
		shm := client.NewShm(b.ctx)
		if b.bind(e, 1, shm) {
			b.shm = shm
		}
	case wmBaseInterface:
		wm := xdg_shell.NewWmBase(b.ctx)
		if b.bind(e, wmBaseVersion, wm) {
			wm.SetPingHandler(func(ev xdg_shell.WmBasePingEvent) {
				b.mu.Lock()
				defer b.mu.Unlock()
				if err := wm.Pong(ev.Serial); err != nil {
					b.log.Warn("failed to answer ping", "err", err)
				}
			})
			b.wmBase = wm
		}
	case decorationInterface:
		manager := xdg_decoration.NewDecorationManager(b.ctx)
		if b.bind(e, 1, manager) {
			b.decorations = manager
		}
	case viewporterInterface:
		vp := viewporter.NewViewporter(b.ctx)
		if b.bind(e, 1, vp) {
			b.viewporter = vp
		}
	case sessionLockInterface:
		manager := ext_session_lock.NewExtSessionLockManager(b.ctx)
		if b.bind(e, 1, manager) {
			b.lockManager = manager
		}
	case outputInterface:
		wlOutput := client.NewOutput(b.ctx)
		if b.bind(e, outputVersion, wlOutput) {
			b.addOutput(e.Name, wlOutput)
		}
	case seatInterface:
		wlSeat := client.NewSeat(b.ctx)
		version := min(e.Version, seatVersion)
		if b.bind(e, seatVersion, wlSeat) {
			b.addSeat(e.Name, wlSeat, version)
		}
	}
}

// Caller holds mu.
func (b *Backend) bind(e client.RegistryGlobalEvent, maxVersion uint32, proxy client.Proxy) bool {
	if err := b.registry.Bind(e.Name, e.Interface, min(e.Version, maxVersion), proxy); err != nil {
		b.log.Warn("failed to bind global", "interface", e.Interface, "err", err)
		return false
	}
	b.log.Debug("bound global", "interface", e.Interface, "version", min(e.Version, maxVersion))
	return true
}

func (b *Backend) handleGlobalRemove(e client.RegistryGlobalRemoveEvent) {
	b.mu.Lock()
	var events []backend.Event
	for id, o := range b.outputs {
		if o.name == e.Name {
			delete(b.outputs, id)
			events = b.outputRemoved(id)
		}
	}
	for id, s := range b.seats {
		if s.name == e.Name {
			events = append(events, s.removeAll()...)
			delete(b.seats, id)
		}
	}
	b.mu.Unlock()
	b.emit(events...)
}

// nextID builds the identity of a freshly created surface.
func (b *Backend) nextID(surface *client.Surface) window.ID {
	b.serial++
	return window.NewID(surface.ID(), b.serial)
}

// resolve maps a protocol surface to the reference input events carry.
// Caller holds mu.
func (b *Backend) resolve(surface *client.Surface) (backend.SurfaceRef, bool) {
	if surface == nil {
		return backend.SurfaceRef{}, false
	}
	if t, ok := b.windows[surface.ID()]; ok {
		return backend.SurfaceRef{Surface: t.id}, true
	}
	if b.session != nil {
		if l, ok := b.session.surfaces[surface.ID()]; ok {
			return backend.SurfaceRef{Surface: l.id}, true
		}
	}
	ref, ok := b.parts[surface.ID()]
	return ref, ok
}

func (b *Backend) Events() <-chan backend.Event { return b.events }

func (b *Backend) Err() error {
	b.errMu.Lock()
	defer b.errMu.Unlock()
	return b.err
}

// CreateWindow creates a surface with an xdg toplevel role.
func (b *Backend) CreateWindow(attrs window.Attributes) (backend.Surface, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closing {
		return backend.Surface{}, backend.ErrDisconnected
	}

	t, err := b.newToplevel(attrs)
	if err != nil {
		return backend.Surface{}, err
	}
	surface := backend.Surface{ID: t.id, Toplevel: t}
	if b.viewporter != nil {
		proxy, err := b.viewporter.GetViewport(t.surface)
		if err != nil {
			b.log.Warn("failed to get viewport", "window", t.id, "err", err)
		} else {
			surface.Viewport = &viewport{b: b, proxy: proxy}
		}
	}
	return surface, nil
}

// BindDevice acquires the pointer, keyboard or touch object of a seat.
func (b *Backend) BindDevice(id seat.SeatID, capability seat.Capability) (seat.Device, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.seats[uint32(id)]
	if !ok {
		return nil, fmt.Errorf("wayland: unknown seat %d", id)
	}
	d, err := s.bind(capability)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Frames returns the subsurface decoration factory, or nil without a
// subcompositor.
func (b *Backend) Frames() window.FrameFactory {
	if b.subcompositor == nil {
		return nil
	}
	return decor.NewFactory(decor.CanvasFactoryFunc(b.newCanvas))
}

// Close disconnects from the compositor.
func (b *Backend) Close() error {
	b.mu.Lock()
	if b.closing {
		b.mu.Unlock()
		return nil
	}
	b.closing = true
	close(b.done)

	var errs []error
	for _, s := range b.seats {
		s.removeAll()
	}
	if b.session != nil {
		errs = append(errs, b.session.destroy(true))
		b.session = nil
	}
	if b.cursors != nil {
		b.cursors.destroy()
	}
	if b.decorations != nil {
		errs = append(errs, b.decorations.Destroy())
	}
	if b.viewporter != nil {
		errs = append(errs, b.viewporter.Destroy())
	}
	if b.lockManager != nil {
		errs = append(errs, b.lockManager.Destroy())
	}
	if b.wmBase != nil {
		errs = append(errs, b.wmBase.Destroy())
	}
	// The reader goroutine sees done once Dispatch fails and closes the
	// event stream.
	errs = append(errs, b.ctx.Close())
	b.mu.Unlock()
	return errors.Join(errs...)
}
