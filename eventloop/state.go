package eventloop

import (
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/bnema/wayloop/a11y"
	"github.com/bnema/wayloop/backend"
	"github.com/bnema/wayloop/dpi"
	"github.com/bnema/wayloop/seat"
	"github.com/bnema/wayloop/window"
)

// state is everything the loop goroutine owns. Protocol events are folded
// into it as they arrive; the drain then turns it into callbacks.
type state struct {
	backend backend.Backend
	locker  backend.Locker
	frames  window.FrameFactory

	// framesFailed is set once building decorations failed and stays set.
	framesFailed bool

	windows   *window.Registry
	pointers  *seat.PointerRegistry
	touches   *seat.TouchTable
	keyboards map[seat.SeatID]seat.Device
	focus     window.ID
	modifiers seat.Modifiers

	// per keyboard, DefaultModifierMap until its keymap arrives
	modifierMaps map[seat.DeviceID]seat.ModifierMap

	lastOutput window.OutputID

	sink     a11y.Sink
	bridge   a11y.Bridge
	adapters map[window.ID]*a11y.Adapter

	events []internalEvent
	locked *atomic.Bool

	log *log.Logger
}

func newState(b backend.Backend, o options, sink a11y.Sink, locked *atomic.Bool, logger *log.Logger) *state {
	pointers := seat.NewPointerRegistry()
	s := &state{
		backend:      b,
		windows:      window.NewRegistry(pointers),
		pointers:     pointers,
		touches:      seat.NewTouchTable(),
		keyboards:    make(map[seat.SeatID]seat.Device),
		modifierMaps: make(map[seat.DeviceID]seat.ModifierMap),
		sink:         sink,
		bridge:       o.bridge,
		adapters:     make(map[window.ID]*a11y.Adapter),
		locked:       locked,
		log:          logger,
	}
	if locker, ok := b.(backend.Locker); ok {
		s.locker = locker
	}
	if o.clientDecorations {
		s.frames = b.Frames()
	}
	return s
}

// handle folds one protocol event into the state.
func (s *state) handle(ev backend.Event) {
	switch e := ev.(type) {
	case backend.Configure:
		s.configure(e)
	case backend.CloseRequested:
		if s.exists(e.Surface) {
			s.windows.RequestClose(e.Surface)
		}
	case backend.ScaleChanged:
		s.scaleChanged(e)
	case backend.FrameDone:
		if s.exists(e.Surface) {
			s.windows.RequestRedraw(e.Surface)
		}
	case backend.SurfaceEnter:
		s.lastOutput = e.Output
		if w, ok := s.windows.Get(e.Surface); ok {
			w.SetOutput(e.Output)
		}
	case backend.SurfaceLeave:
		if w, ok := s.windows.Get(e.Surface); ok {
			w.ClearOutput(e.Output)
		}
	case backend.CapabilityAdded:
		s.capabilityAdded(e)
	case backend.CapabilityRemoved:
		s.capabilityRemoved(e)
	case backend.PointerFrame:
		s.pointerFrame(e)
	case backend.TouchDown:
		s.touchDown(e)
	case backend.TouchUp:
		s.touchUp(e)
	case backend.TouchMotion:
		s.touchMotion(e)
	case backend.TouchShape:
		s.touchShape(e)
	case backend.TouchOrientation:
		s.touchOrientation(e)
	case backend.TouchCancel:
		s.touchCancel(e)
	case backend.KeyboardEnter:
		s.keyboardEnter(e)
	case backend.KeyboardLeave:
		s.keyboardLeave(e)
	case backend.Key:
		s.pushKeyboard(seat.KeyboardEvent{Key: e.Key, State: e.State, Time: e.Time, Modifiers: s.modifiers})
	case backend.Keymap:
		s.modifierMaps[e.Device] = e.Modifiers
	case backend.ModifiersChanged:
		mm, ok := s.modifierMaps[e.Device]
		if !ok {
			mm = seat.DefaultModifierMap
		}
		s.modifiers = mm.Modifiers(e.Depressed, e.Latched, e.Locked)
	case backend.LockSurfaceConfigure:
		s.lockConfigure(e)
	case backend.Locked:
		s.locked.Store(true)
		s.log.Info("session locked")
	case backend.Unlocked:
		s.locked.Store(false)
		for _, id := range s.windows.LockIDs() {
			s.windows.RequestClose(id)
		}
		s.log.Info("session unlocked")
	default:
		s.log.Warnf("unhandled backend event %T", ev)
	}
}

// exists reports whether id is an open window or lock surface.
func (s *state) exists(id window.ID) bool {
	_, ok := s.scaleOf(id)
	return ok
}

func (s *state) scaleOf(id window.ID) (float64, bool) {
	if w, ok := s.windows.Get(id); ok {
		return w.ScaleFactor(), true
	}
	if l, ok := s.windows.Lock(id); ok {
		return l.ScaleFactor(), true
	}
	return 0, false
}

func (s *state) physicalSize(id window.ID) (dpi.PhysicalSize, bool) {
	if w, ok := s.windows.Get(id); ok {
		return w.PhysicalSize(), true
	}
	if l, ok := s.windows.Lock(id); ok {
		return l.PhysicalSize(), true
	}
	return dpi.PhysicalSize{}, false
}

// createWindow creates the protocol objects and the state of a new window.
func (s *state) createWindow(attrs window.Attributes) {
	surface, err := s.backend.CreateWindow(attrs)
	if err != nil {
		s.log.Error("failed to create window", "title", attrs.Title, "err", err)
		return
	}
	id := surface.ID
	w := window.New(id, surface.Toplevel, surface.Viewport, s.lastOutput, attrs)
	s.windows.Insert(id, w)
	s.adapters[id] = a11y.NewAdapter(id, s.sink, s.bridge)
	s.windows.MarkNew(id)
	s.log.Debug("window created", "window", id, "title", w.Title())
}

func (s *state) configure(e backend.Configure) {
	w, ok := s.windows.Get(e.Surface)
	if !ok {
		s.log.Debug("configure for unknown window", "window", e.Surface)
		return
	}

	if e.Config.DecorationMode == window.DecorationClient {
		if !w.HasFrame() && s.frames != nil && !s.framesFailed {
			frame, err := s.frames.NewFrame(w.ID(), w.FrameConfig())
			if err != nil {
				s.log.Error("failed to create client side decorations frame", "window", w.ID(), "err", err)
				s.framesFailed = true
			} else {
				w.AttachFrame(frame)
			}
		}
	} else {
		w.DropFrame()
	}

	if w.ApplyConfigure(e.Config) {
		s.windows.RequestResize(e.Surface)
	}
	s.windows.RequestRedraw(e.Surface)
}

func (s *state) scaleChanged(e backend.ScaleChanged) {
	var changed bool
	if w, ok := s.windows.Get(e.Surface); ok {
		changed = w.SetScale(e.Factor)
	} else if l, ok := s.windows.Lock(e.Surface); ok {
		changed = l.SetScale(e.Factor)
	} else {
		return
	}
	if changed {
		s.windows.RequestRescale(e.Surface)
	}
}

func (s *state) lockConfigure(e backend.LockSurfaceConfigure) {
	l, ok := s.windows.Lock(e.Surface)
	if !ok {
		l = window.NewLockSurface(e.Surface, e.Output)
		s.windows.InsertLock(l)
		s.adapters[e.Surface] = a11y.NewAdapter(e.Surface, s.sink, s.bridge)
		s.windows.MarkNew(e.Surface)
	}
	if l.Configure(e.Size) {
		s.windows.RequestResize(e.Surface)
	}
	s.windows.RequestRedraw(e.Surface)
}

// closeSurface removes a window or lock surface and releases what it holds.
// It reports false when id was already gone.
func (s *state) closeSurface(id window.ID) bool {
	if w, ok := s.windows.Get(id); ok {
		s.windows.Remove(id)
		w.Destroy()
	} else if !s.windows.RemoveLock(id) {
		return false
	}

	if a, ok := s.adapters[id]; ok {
		a.Close()
		delete(s.adapters, id)
	}
	if s.focus == id {
		s.focus = window.ID{}
	}
	return true
}

func (s *state) lock(req lockRequest) {
	if s.locker == nil {
		s.log.Warn("session lock is not supported by this backend")
		return
	}
	var err error
	if req == requestLock {
		err = s.locker.Lock()
	} else {
		err = s.locker.Unlock()
	}
	if err != nil {
		s.log.Warn("session lock request failed", "lock", bool(req), "err", err)
	}
}
