// Package headless is a scripted backend.Backend without a compositor.
// Protocol events are injected with Emit and every request the loop makes
// is recorded for inspection.
package headless

import (
	"fmt"
	"sync"

	"github.com/bnema/wayloop/backend"
	"github.com/bnema/wayloop/decor"
	"github.com/bnema/wayloop/dpi"
	"github.com/bnema/wayloop/seat"
	"github.com/bnema/wayloop/window"
)

// DefaultBuffer is the event channel capacity.
const DefaultBuffer = 256

// Option configures a Backend.
type Option func(*Backend)

// WithBuffer sets the event channel capacity.
func WithBuffer(n int) Option {
	return func(b *Backend) { b.buffer = n }
}

// WithDecorations makes Frames return a factory drawing on recorded canvases.
func WithDecorations() Option {
	return func(b *Backend) { b.frames = decor.NewFactory(decor.CanvasFactoryFunc(b.newCanvas)) }
}

// WithFrames makes Frames return factory.
func WithFrames(factory window.FrameFactory) Option {
	return func(b *Backend) { b.frames = factory }
}

// WithLockOutputs enables session locking; a lock surface is configured on
// every given output with size.
func WithLockOutputs(size dpi.LogicalSize, outputs ...window.OutputID) Option {
	return func(b *Backend) {
		b.lockable = true
		b.lockSize = size
		b.lockOutputs = outputs
	}
}

// Backend implements backend.Backend.
type Backend struct {
	mu     sync.Mutex
	buffer int
	events chan backend.Event
	closed bool
	err    error

	object uint32
	serial uint32

	frames    window.FrameFactory
	toplevels map[window.ID]*Toplevel
	order     []window.ID
	devices   map[seat.DeviceID]*Device
	canvases  map[window.ID]*Canvas
	createErr error

	lockable    bool
	lockSize    dpi.LogicalSize
	lockOutputs []window.OutputID
	locks       []window.ID
}

// New returns a backend with no windows and no devices.
func New(opts ...Option) *Backend {
	b := &Backend{
		buffer:    DefaultBuffer,
		object:    2,
		toplevels: make(map[window.ID]*Toplevel),
		devices:   make(map[seat.DeviceID]*Device),
		canvases:  make(map[window.ID]*Canvas),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.events = make(chan backend.Event, b.buffer)
	return b
}

// nextID allocates a protocol object number and a creation serial.
func (b *Backend) nextID() window.ID {
	b.object++
	b.serial++
	return window.NewID(b.object, b.serial)
}

// Emit queues protocol events. It blocks when the buffer is full and
// panics after Fail or Close.
func (b *Backend) Emit(events ...backend.Event) {
	for _, ev := range events {
		b.events <- ev
	}
}

// Fail closes the event stream with err, as a broken connection would.
func (b *Backend) Fail(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.err = err
	b.closed = true
	close(b.events)
}

// FailCreate makes the next window creations return err; nil restores them.
func (b *Backend) FailCreate(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.createErr = err
}

func (b *Backend) Events() <-chan backend.Event { return b.events }

func (b *Backend) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

func (b *Backend) CreateWindow(attrs window.Attributes) (backend.Surface, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return backend.Surface{}, backend.ErrDisconnected
	}
	if b.createErr != nil {
		return backend.Surface{}, b.createErr
	}
	id := b.nextID()
	tl := &Toplevel{id: id}
	b.toplevels[id] = tl
	b.order = append(b.order, id)
	return backend.Surface{ID: id, Toplevel: tl}, nil
}

func (b *Backend) BindDevice(s seat.SeatID, capability seat.Capability) (seat.Device, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, backend.ErrDisconnected
	}
	id := b.nextID()
	dev := &Device{id: seat.DeviceID(id.Object()), seat: s, capability: capability}
	b.devices[dev.id] = dev
	return dev, nil
}

func (b *Backend) Frames() window.FrameFactory { return b.frames }

// Close ends the event stream without an error.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		close(b.events)
	}
	return nil
}

// Lock implements backend.Locker. It confirms the lock and configures one
// lock surface per output.
func (b *Backend) Lock() error {
	b.mu.Lock()
	if !b.lockable {
		b.mu.Unlock()
		return backend.ErrUnsupported
	}
	if len(b.locks) > 0 {
		b.mu.Unlock()
		return fmt.Errorf("headless: session already locked")
	}
	events := []backend.Event{backend.Locked{}}
	for _, output := range b.lockOutputs {
		id := b.nextID()
		b.locks = append(b.locks, id)
		events = append(events, backend.LockSurfaceConfigure{Surface: id, Output: output, Size: b.lockSize})
	}
	b.mu.Unlock()

	b.Emit(events...)
	return nil
}

// Unlock implements backend.Locker.
func (b *Backend) Unlock() error {
	b.mu.Lock()
	if len(b.locks) == 0 {
		b.mu.Unlock()
		return fmt.Errorf("headless: session not locked")
	}
	b.locks = nil
	b.mu.Unlock()

	b.Emit(backend.Unlocked{})
	return nil
}

// LockSurfaces returns the lock surfaces of the current lock.
func (b *Backend) LockSurfaces() []window.ID {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]window.ID(nil), b.locks...)
}

// Windows returns the created windows in creation order.
func (b *Backend) Windows() []window.ID {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]window.ID(nil), b.order...)
}

// Toplevel returns the recorder of a created window.
func (b *Backend) Toplevel(id window.ID) (*Toplevel, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	tl, ok := b.toplevels[id]
	return tl, ok
}

// Device returns a bound device.
func (b *Backend) Device(id seat.DeviceID) (*Device, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	dev, ok := b.devices[id]
	return dev, ok
}

// DeviceFor returns the last device bound for a seat capability.
func (b *Backend) DeviceFor(s seat.SeatID, capability seat.Capability) (*Device, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var found *Device
	for _, dev := range b.devices {
		if dev.seat == s && dev.capability == capability && (found == nil || dev.id > found.id) {
			found = dev
		}
	}
	return found, found != nil
}

// Canvas returns the decoration canvas of a window.
func (b *Backend) Canvas(parent window.ID) (*Canvas, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.canvases[parent]
	return c, ok
}

func (b *Backend) newCanvas(parent window.ID) (decor.Canvas, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c := &Canvas{parent: parent, surfaces: make(map[decor.Part]window.ID)}
	for _, p := range []decor.Part{decor.PartHeader, decor.PartTop, decor.PartBottom, decor.PartLeft, decor.PartRight} {
		c.surfaces[p] = b.nextID()
	}
	c.placed = make(map[decor.Part]decor.Rect)
	c.hidden = make(map[decor.Part]bool)
	b.canvases[parent] = c
	return c, nil
}
