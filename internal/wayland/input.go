package wayland

import (
	"fmt"
	"strings"
	"time"

	"github.com/rajveermalviya/go-wayland/wayland/client"
	"golang.org/x/sys/unix"

	"github.com/bnema/wayloop/backend"
	"github.com/bnema/wayloop/dpi"
	"github.com/bnema/wayloop/seat"
	"github.com/bnema/wayloop/window"
)

// wl_pointer gained the frame event in version 5.
const pointerFrameVersion = 5

// seatState is a bound wl_seat and the devices acquired from it.
type seatState struct {
	b       *Backend
	name    uint32
	id      seat.SeatID
	proxy   *client.Seat
	version uint32
	caps    uint32
	devices map[seat.Capability]*device
}

// Caller holds mu.
func (b *Backend) addSeat(name uint32, proxy *client.Seat, version uint32) {
	s := &seatState{
		b:       b,
		name:    name,
		id:      seat.SeatID(proxy.ID()),
		proxy:   proxy,
		version: version,
		devices: make(map[seat.Capability]*device),
	}
	proxy.SetCapabilitiesHandler(s.handleCapabilities)
	b.seats[proxy.ID()] = s
}

var capabilityBits = []struct {
	bit        uint32
	capability seat.Capability
}{
	{uint32(client.SeatCapabilityPointer), seat.CapabilityPointer},
	{uint32(client.SeatCapabilityKeyboard), seat.CapabilityKeyboard},
	{uint32(client.SeatCapabilityTouch), seat.CapabilityTouch},
}

func (s *seatState) handleCapabilities(e client.SeatCapabilitiesEvent) {
	s.b.mu.Lock()
	old := s.caps
	s.caps = e.Capabilities

	var events []backend.Event
	for _, c := range capabilityBits {
		had, has := old&c.bit != 0, e.Capabilities&c.bit != 0
		switch {
		case has && !had:
			events = append(events, backend.CapabilityAdded{Seat: s.id, Capability: c.capability})
		case had && !has:
			if d, ok := s.devices[c.capability]; ok {
				d.release()
				delete(s.devices, c.capability)
			}
			events = append(events, backend.CapabilityRemoved{Seat: s.id, Capability: c.capability})
		}
	}
	s.b.mu.Unlock()
	s.b.emit(events...)
}

// removeAll releases every device of a seat going away.
// Caller holds mu.
func (s *seatState) removeAll() []backend.Event {
	var events []backend.Event
	for _, c := range capabilityBits {
		if s.caps&c.bit == 0 {
			continue
		}
		if d, ok := s.devices[c.capability]; ok {
			d.release()
			delete(s.devices, c.capability)
		}
		events = append(events, backend.CapabilityRemoved{Seat: s.id, Capability: c.capability})
	}
	s.caps = 0
	return events
}

// bind acquires the device for capability. Caller holds mu.
func (s *seatState) bind(capability seat.Capability) (*device, error) {
	if d, ok := s.devices[capability]; ok {
		return d, nil
	}
	d := &device{b: s.b, seat: s, capability: capability}

	switch capability {
	case seat.CapabilityPointer:
		p, err := s.proxy.GetPointer()
		if err != nil {
			return nil, fmt.Errorf("get pointer: %w", err)
		}
		d.pointer = p
		d.id = seat.DeviceID(p.ID())
		d.watchPointer()
	case seat.CapabilityKeyboard:
		k, err := s.proxy.GetKeyboard()
		if err != nil {
			return nil, fmt.Errorf("get keyboard: %w", err)
		}
		d.keyboard = k
		d.id = seat.DeviceID(k.ID())
		d.watchKeyboard()
	case seat.CapabilityTouch:
		t, err := s.proxy.GetTouch()
		if err != nil {
			return nil, fmt.Errorf("get touch: %w", err)
		}
		d.touch = t
		d.id = seat.DeviceID(t.ID())
		d.watchTouch()
	default:
		return nil, fmt.Errorf("wayland: unknown capability %s", capability)
	}
	s.devices[capability] = d
	return d, nil
}

// device is a wl_pointer, wl_keyboard or wl_touch. It implements seat.Device.
type device struct {
	b          *Backend
	seat       *seatState
	id         seat.DeviceID
	capability seat.Capability

	pointer  *client.Pointer
	keyboard *client.Keyboard
	touch    *client.Touch

	serial    uint32
	hasSerial bool
	// enter serial, required by set_cursor
	enterSerial uint32
	frame       []backend.PointerRaw
	released    bool
}

func (d *device) ID() seat.DeviceID           { return d.id }
func (d *device) Seat() seat.SeatID           { return d.seat.id }
func (d *device) Capability() seat.Capability { return d.capability }

func (d *device) LatestSerial() (uint32, bool) {
	d.b.mu.Lock()
	defer d.b.mu.Unlock()
	return d.serial, d.hasSerial
}

func (d *device) SetCursor(icon window.CursorIcon) error {
	d.b.mu.Lock()
	defer d.b.mu.Unlock()
	if d.pointer == nil {
		return fmt.Errorf("wayland: %s device has no cursor", d.capability)
	}
	img, err := d.b.cursors.get(icon)
	if err != nil {
		return err
	}
	return d.pointer.SetCursor(d.enterSerial, img.surface, img.hotspotX, img.hotspotY)
}

func (d *device) HideCursor() error {
	d.b.mu.Lock()
	defer d.b.mu.Unlock()
	if d.pointer == nil {
		return fmt.Errorf("wayland: %s device has no cursor", d.capability)
	}
	return d.pointer.SetCursor(d.enterSerial, nil, 0, 0)
}

func (d *device) Release() error {
	d.b.mu.Lock()
	defer d.b.mu.Unlock()
	d.release()
	delete(d.seat.devices, d.capability)
	return nil
}

// release destroys the protocol object. Caller holds mu.
func (d *device) release() {
	if d.released {
		return
	}
	d.released = true
	var err error
	switch {
	case d.pointer != nil:
		err = d.pointer.Release()
	case d.keyboard != nil:
		err = d.keyboard.Release()
	case d.touch != nil:
		err = d.touch.Release()
	}
	if err != nil {
		d.b.log.Debug("failed to release device", "device", d.id, "err", err)
	}
}

func ms(t uint32) time.Duration { return time.Duration(t) * time.Millisecond }

// push appends a pointer notification and flushes it right away on seats
// without pointer frames. Caller holds mu.
func (d *device) push(raw backend.PointerRaw) []backend.Event {
	d.frame = append(d.frame, raw)
	if d.seat.version < pointerFrameVersion {
		return d.flush()
	}
	return nil
}

// Caller holds mu.
func (d *device) flush() []backend.Event {
	if len(d.frame) == 0 {
		return nil
	}
	ev := backend.PointerFrame{Device: d.id, Events: d.frame}
	d.frame = nil
	return []backend.Event{ev}
}

// locked runs f under the lock and emits what it returns.
func (d *device) locked(f func() []backend.Event) {
	d.b.mu.Lock()
	events := f()
	d.b.mu.Unlock()
	d.b.emit(events...)
}

func (d *device) watchPointer() {
	p := d.pointer
	// Last surface entered; motion and buttons carry none.
	var focus backend.SurfaceRef

	p.SetEnterHandler(func(e client.PointerEnterEvent) {
		d.locked(func() []backend.Event {
			ref, ok := d.b.resolve(e.Surface)
			if !ok {
				return nil
			}
			focus = ref
			d.enterSerial = e.Serial
			return d.push(backend.PointerRaw{
				Kind: backend.RawEnter, Surface: ref, Serial: e.Serial,
				Position: dpi.LogicalPosition{X: e.SurfaceX, Y: e.SurfaceY},
			})
		})
	})
	p.SetLeaveHandler(func(e client.PointerLeaveEvent) {
		d.locked(func() []backend.Event {
			ref := focus
			focus = backend.SurfaceRef{}
			if ref.Surface.IsZero() {
				return nil
			}
			return d.push(backend.PointerRaw{Kind: backend.RawLeave, Surface: ref, Serial: e.Serial})
		})
	})
	p.SetMotionHandler(func(e client.PointerMotionEvent) {
		d.locked(func() []backend.Event {
			if focus.Surface.IsZero() {
				return nil
			}
			return d.push(backend.PointerRaw{
				Kind: backend.RawMotion, Surface: focus, Time: ms(e.Time),
				Position: dpi.LogicalPosition{X: e.SurfaceX, Y: e.SurfaceY},
			})
		})
	})
	p.SetButtonHandler(func(e client.PointerButtonEvent) {
		d.locked(func() []backend.Event {
			if focus.Surface.IsZero() {
				return nil
			}
			kind := backend.RawRelease
			if e.State == uint32(client.PointerButtonStatePressed) {
				kind = backend.RawPress
				d.serial, d.hasSerial = e.Serial, true
			}
			return d.push(backend.PointerRaw{
				Kind: kind, Surface: focus, Time: ms(e.Time), Serial: e.Serial, Button: e.Button,
			})
		})
	})
	p.SetAxisHandler(func(e client.PointerAxisEvent) {
		d.locked(func() []backend.Event {
			if focus.Surface.IsZero() {
				return nil
			}
			var delta dpi.LogicalPosition
			if e.Axis == uint32(client.PointerAxisHorizontalScroll) {
				delta.X = e.Value
			} else {
				delta.Y = e.Value
			}
			return d.push(backend.PointerRaw{Kind: backend.RawAxis, Surface: focus, Time: ms(e.Time), Axis: delta})
		})
	})
	p.SetFrameHandler(func(client.PointerFrameEvent) {
		d.locked(d.flush)
	})
}

func (d *device) watchKeyboard() {
	k := d.keyboard
	k.SetKeymapHandler(func(e client.KeyboardKeymapEvent) {
		// Keys stay evdev codes; only the modifier layout is read.
		keymap, err := readKeymap(e)
		if err != nil {
			d.b.log.Warn("failed to read keymap, using default modifiers", "device", d.id, "err", err)
			return
		}
		d.b.emit(backend.Keymap{Device: d.id, Modifiers: seat.ParseModifierMap(keymap)})
	})
	k.SetEnterHandler(func(e client.KeyboardEnterEvent) {
		d.locked(func() []backend.Event {
			ref, ok := d.b.resolve(e.Surface)
			if !ok {
				return nil
			}
			return []backend.Event{backend.KeyboardEnter{Device: d.id, Surface: ref}}
		})
	})
	k.SetLeaveHandler(func(e client.KeyboardLeaveEvent) {
		d.locked(func() []backend.Event {
			ref, ok := d.b.resolve(e.Surface)
			if !ok {
				return nil
			}
			return []backend.Event{backend.KeyboardLeave{Device: d.id, Surface: ref}}
		})
	})
	k.SetKeyHandler(func(e client.KeyboardKeyEvent) {
		state := seat.KeyReleased
		if e.State == uint32(client.KeyboardKeyStatePressed) {
			state = seat.KeyPressed
		}
		d.b.emit(backend.Key{Device: d.id, Time: ms(e.Time), Key: e.Key, State: state})
	})
	k.SetModifiersHandler(func(e client.KeyboardModifiersEvent) {
		d.b.emit(backend.ModifiersChanged{
			Device:    d.id,
			Depressed: e.ModsDepressed,
			Latched:   e.ModsLatched,
			Locked:    e.ModsLocked,
			Group:     e.Group,
		})
	})
}

func (d *device) watchTouch() {
	t := d.touch
	t.SetDownHandler(func(e client.TouchDownEvent) {
		d.locked(func() []backend.Event {
			ref, ok := d.b.resolve(e.Surface)
			if !ok {
				return nil
			}
			d.serial, d.hasSerial = e.Serial, true
			return []backend.Event{backend.TouchDown{
				Device: d.id, Serial: e.Serial, Time: ms(e.Time), Surface: ref, Contact: e.Id,
				Position: dpi.LogicalPosition{X: e.X, Y: e.Y},
			}}
		})
	})
	t.SetUpHandler(func(e client.TouchUpEvent) {
		d.b.emit(backend.TouchUp{Device: d.id, Serial: e.Serial, Time: ms(e.Time), Contact: e.Id})
	})
	t.SetMotionHandler(func(e client.TouchMotionEvent) {
		d.b.emit(backend.TouchMotion{
			Device: d.id, Time: ms(e.Time), Contact: e.Id,
			Position: dpi.LogicalPosition{X: e.X, Y: e.Y},
		})
	})
	t.SetShapeHandler(func(e client.TouchShapeEvent) {
		d.b.emit(backend.TouchShape{Device: d.id, Contact: e.Id, Major: e.Major, Minor: e.Minor})
	})
	t.SetOrientationHandler(func(e client.TouchOrientationEvent) {
		d.b.emit(backend.TouchOrientation{Device: d.id, Contact: e.Id, Orientation: e.Orientation})
	})
	t.SetCancelHandler(func(client.TouchCancelEvent) {
		d.b.emit(backend.TouchCancel{Device: d.id})
	})
}

// readKeymap maps the xkb_v1 keymap sent by the compositor and closes its fd.
func readKeymap(e client.KeyboardKeymapEvent) (string, error) {
	defer unix.Close(e.Fd)
	if e.Format != uint32(client.KeyboardKeymapFormatXkbV1) {
		return "", fmt.Errorf("unsupported keymap format %d", e.Format)
	}
	if e.Size == 0 {
		return "", fmt.Errorf("empty keymap")
	}
	data, err := unix.Mmap(e.Fd, 0, int(e.Size), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return "", fmt.Errorf("mmap keymap: %w", err)
	}
	defer unix.Munmap(data)
	return strings.TrimRight(string(data), "\x00"), nil
}
