package eventloop

import (
	"math"

	"github.com/bnema/wayloop/backend"
	"github.com/bnema/wayloop/internal/arena"
	"github.com/bnema/wayloop/seat"
	"github.com/bnema/wayloop/window"
)

// touchPressure is reported for every contact; wl_touch has no pressure.
const touchPressure = 0.5

// Evdev codes of the buttons that act on decorations.
const (
	btnLeft  = 0x110
	btnRight = 0x111
)

func (s *state) capabilityAdded(e backend.CapabilityAdded) {
	if e.Capability == seat.CapabilityKeyboard {
		if _, ok := s.keyboards[e.Seat]; ok {
			return
		}
	}

	dev, err := s.backend.BindDevice(e.Seat, e.Capability)
	if err != nil {
		s.log.Warn("failed to bind input device", "seat", e.Seat, "capability", e.Capability, "err", err)
		return
	}

	switch e.Capability {
	case seat.CapabilityKeyboard:
		s.keyboards[e.Seat] = dev
	case seat.CapabilityPointer, seat.CapabilityTouch:
		kind := seat.PointerMouse
		if e.Capability == seat.CapabilityTouch {
			kind = seat.PointerTouch
		}
		s.pointers.Add(dev, seat.PointerInfo{ID: seat.PointerID(dev.ID()), Type: kind})
	default:
		s.log.Error("could not recognize capability", "seat", e.Seat, "capability", e.Capability)
		return
	}
	s.log.Debug("input device bound", "seat", e.Seat, "capability", e.Capability, "device", dev.ID())
}

func (s *state) capabilityRemoved(e backend.CapabilityRemoved) {
	switch e.Capability {
	case seat.CapabilityKeyboard:
		dev, ok := s.keyboards[e.Seat]
		if !ok {
			return
		}
		if !s.focus.IsZero() {
			s.pushFocus(s.focus, false)
			s.focus = window.ID{}
		}
		if err := dev.Release(); err != nil {
			s.log.Debug("failed to release keyboard", "err", err)
		}
		delete(s.keyboards, e.Seat)
	case seat.CapabilityPointer, seat.CapabilityTouch:
		info, ok := s.pointers.Remove(e.Seat, e.Capability)
		if !ok {
			s.log.Warn("could not remove unknown capability", "seat", e.Seat, "capability", e.Capability)
			return
		}
		if e.Capability == seat.CapabilityTouch {
			s.touches.Drain()
		}
		for _, id := range s.windows.IDs() {
			s.pushPointer(id, seat.PointerEvent{Kind: seat.PointerCancel, Pointer: info})
		}
	}
}

func (s *state) pointerFrame(e backend.PointerFrame) {
	dev, info, h, ok := s.pointers.ByDevice(e.Device)
	if !ok {
		s.log.Debug("pointer frame from unknown device", "device", e.Device)
		return
	}
	for _, raw := range e.Events {
		if raw.Surface.IsDecoration() {
			s.decorationPointer(dev, raw)
			continue
		}
		s.surfacePointer(dev, info, h, raw)
	}
}

// surfacePointer turns pointer input on window content into application events.
func (s *state) surfacePointer(dev seat.Device, info seat.PointerInfo, h arena.Handle, raw backend.PointerRaw) {
	id := raw.Surface.Window()
	scale, ok := s.scaleOf(id)
	if !ok {
		return
	}
	ev := seat.PointerEvent{
		Pointer: info,
		State: seat.PointerState{
			Time:      raw.Time,
			Position:  raw.Position.ToPhysical(scale),
			Modifiers: s.modifiers,
		},
	}

	switch raw.Kind {
	case backend.RawEnter:
		if w, ok := s.windows.Get(id); ok {
			s.applyCursor(dev, w)
			w.PointerEnter(h)
		}
		ev.Kind = seat.PointerEnter
	case backend.RawLeave:
		if w, ok := s.windows.Get(id); ok {
			w.PointerLeave(h)
		}
		ev.Kind = seat.PointerLeave
	case backend.RawMotion:
		ev.Kind = seat.PointerMove
	case backend.RawPress, backend.RawRelease:
		button, ok := seat.ButtonFromCode(raw.Button)
		if !ok {
			s.log.Debug("ignoring unknown pointer button", "code", raw.Button)
			return
		}
		ev.Kind = seat.PointerDown
		if raw.Kind == backend.RawRelease {
			ev.Kind = seat.PointerUp
		}
		ev.Button = button
	case backend.RawAxis:
		ev.Kind = seat.PointerScroll
		ev.Scroll = raw.Axis.ToPhysical(scale)
	default:
		return
	}
	s.pushPointer(id, ev)
}

func (s *state) applyCursor(dev seat.Device, w *window.Window) {
	var err error
	if w.CursorVisible() {
		err = dev.SetCursor(w.Cursor())
	} else {
		err = dev.HideCursor()
	}
	if err != nil {
		s.log.Debug("failed to set cursor", "window", w.ID(), "err", err)
	}
}

// decorationPointer routes pointer input on decoration parts to the frame.
func (s *state) decorationPointer(dev seat.Device, raw backend.PointerRaw) {
	id := raw.Surface.Window()
	if raw.Kind == backend.RawPress || raw.Kind == backend.RawRelease {
		s.windows.RequestRedraw(id)
	}
	w, ok := s.windows.Get(id)
	if !ok || !w.HasFrame() {
		return
	}
	frame := w.Frame()

	switch raw.Kind {
	case backend.RawEnter, backend.RawMotion:
		if icon, ok := frame.ClickPointMoved(raw.Time, raw.Surface.Surface, raw.Position.X, raw.Position.Y); ok {
			if err := dev.SetCursor(icon); err != nil {
				s.log.Debug("failed to set cursor", "window", id, "err", err)
			}
		}
	case backend.RawLeave:
		frame.ClickPointLeft()
	case backend.RawPress, backend.RawRelease:
		var click window.FrameClick
		switch raw.Button {
		case btnLeft:
			click = window.ClickNormal
		case btnRight:
			click = window.ClickAlternate
		default:
			return
		}
		grab := window.Grab{Seat: uint32(dev.Seat()), Serial: raw.Serial}
		if w.OnFrameClick(raw.Kind == backend.RawPress, click, raw.Time, grab) {
			s.windows.RequestClose(id)
		}
	}
	if frame.Dirty() {
		s.windows.RequestRedraw(id)
	}
}

func (s *state) touchDown(e backend.TouchDown) {
	dev, info, _, ok := s.pointers.ByDevice(e.Device)
	if !ok {
		return
	}
	id := e.Surface.Window()
	scale, ok := s.scaleOf(id)
	if !ok {
		return
	}

	info.ID = seat.TouchPointerID(e.Contact)
	contact := &seat.TouchContact{
		Window:  id,
		Surface: e.Surface.Surface,
		Device:  e.Device,
		Info:    info,
		State: seat.PointerState{
			Time:      e.Time,
			Position:  e.Position.ToPhysical(scale),
			Modifiers: s.modifiers,
			Pressure:  touchPressure,
		},
		Scale:   scale,
		OnFrame: e.Surface.IsDecoration(),
	}
	s.touches.Add(e.Contact, contact)

	if contact.OnFrame {
		if w, ok := s.windows.Get(id); ok && w.HasFrame() {
			w.Frame().ClickPointMoved(e.Time, e.Surface.Surface, e.Position.X, e.Position.Y)
			grab := window.Grab{Seat: uint32(dev.Seat()), Serial: e.Serial}
			if w.OnFrameClick(true, window.ClickNormal, e.Time, grab) {
				s.windows.RequestClose(id)
			}
			s.windows.RequestRedraw(id)
		}
		return
	}

	s.pushPointer(id, seat.PointerEvent{
		Kind:    seat.PointerDown,
		Pointer: contact.Info,
		Button:  seat.ButtonPrimary,
		State:   contact.State,
	})
}

func (s *state) touchUp(e backend.TouchUp) {
	contact, ok := s.touches.Remove(e.Contact)
	if !ok {
		return
	}
	contact.State.Time = e.Time
	contact.State.Modifiers = s.modifiers

	if contact.OnFrame {
		w, ok := s.windows.Get(contact.Window)
		if !ok {
			return
		}
		var grab window.Grab
		if dev, _, _, ok := s.pointers.ByDevice(contact.Device); ok {
			grab = window.Grab{Seat: uint32(dev.Seat()), Serial: e.Serial}
		}
		if w.OnFrameClick(false, window.ClickNormal, e.Time, grab) {
			s.windows.RequestClose(contact.Window)
		}
		s.windows.RequestRedraw(contact.Window)
		return
	}

	s.pushPointer(contact.Window, seat.PointerEvent{
		Kind:    seat.PointerUp,
		Pointer: contact.Info,
		Button:  seat.ButtonPrimary,
		State:   contact.State,
	})
}

func (s *state) touchMotion(e backend.TouchMotion) {
	contact, ok := s.touches.Get(e.Contact)
	if !ok {
		return
	}
	contact.State.Time = e.Time
	contact.State.Position = e.Position.ToPhysical(contact.Scale)
	contact.State.Modifiers = s.modifiers

	if contact.OnFrame {
		if w, ok := s.windows.Get(contact.Window); ok && w.HasFrame() {
			w.Frame().ClickPointMoved(e.Time, contact.Surface, e.Position.X, e.Position.Y)
			if w.Frame().Dirty() {
				s.windows.RequestRedraw(contact.Window)
			}
		}
		return
	}

	s.pushPointer(contact.Window, seat.PointerEvent{
		Kind:    seat.PointerMove,
		Pointer: contact.Info,
		State:   contact.State,
	})
}

func (s *state) touchShape(e backend.TouchShape) {
	if contact, ok := s.touches.Get(e.Contact); ok {
		contact.State.ContactGeometry.X = e.Major
		contact.State.ContactGeometry.Y = e.Minor
	}
}

func (s *state) touchOrientation(e backend.TouchOrientation) {
	if contact, ok := s.touches.Get(e.Contact); ok {
		contact.State.Orientation = seat.Orientation{Altitude: math.Pi / 2, Azimuth: e.Orientation}
	}
}

// touchCancel cancels the contacts the application saw go down. Contacts
// held by a frame only release it.
func (s *state) touchCancel(backend.TouchCancel) {
	for _, contact := range s.touches.Drain() {
		if contact.OnFrame {
			if w, ok := s.windows.Get(contact.Window); ok && w.HasFrame() {
				w.Frame().ClickPointLeft()
				s.windows.RequestRedraw(contact.Window)
			}
			continue
		}
		info := contact.Info
		info.Type = seat.PointerTouch
		s.pushPointer(contact.Window, seat.PointerEvent{
			Kind:    seat.PointerCancel,
			Pointer: info,
			State:   contact.State,
		})
	}
}

func (s *state) keyboardEnter(e backend.KeyboardEnter) {
	id := e.Surface.Window()
	if !s.exists(id) {
		return
	}
	s.focus = id
	s.pushFocus(id, true)
}

func (s *state) keyboardLeave(e backend.KeyboardLeave) {
	id := e.Surface.Window()
	if s.focus == id {
		s.focus = window.ID{}
	}
	s.pushFocus(id, false)
}
