package replay

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bnema/wayloop/a11y"
	"github.com/bnema/wayloop/backend"
	"github.com/bnema/wayloop/dpi"
	"github.com/bnema/wayloop/eventloop"
	"github.com/bnema/wayloop/internal/headless"
	"github.com/bnema/wayloop/internal/logger"
	"github.com/bnema/wayloop/seat"
	"github.com/bnema/wayloop/window"
)

// iterationTimeout bounds how long a step waits for protocol events.
const iterationTimeout = time.Millisecond

const codeLeft = 0x110

var pointerKinds = map[string]backend.PointerRawKind{
	"enter":   backend.RawEnter,
	"leave":   backend.RawLeave,
	"motion":  backend.RawMotion,
	"press":   backend.RawPress,
	"release": backend.RawRelease,
	"axis":    backend.RawAxis,
}

// Entry is what one step made the application see.
type Entry struct {
	Step   int
	Action string
	Calls  []string
}

// Trace is the outcome of a replay.
type Trace struct {
	Scenario string
	Entries  []Entry
	// Finished is set when the loop asked to stop before the last step
	Finished bool
}

// Calls flattens the trace.
func (t *Trace) Calls() []string {
	var calls []string
	for _, e := range t.Entries {
		calls = append(calls, e.Calls...)
	}
	return calls
}

type runner struct {
	s       *Scenario
	backend *headless.Backend
	loop    *eventloop.Loop[string]
	handle  *eventloop.Handle[string]
	app     *recorder
	log     *log.Logger
	serial  uint32
}

// Run plays s and returns the calls made after each step.
func Run(ctx context.Context, s *Scenario) (*Trace, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	var opts []headless.Option
	if s.Decorations {
		opts = append(opts, headless.WithDecorations())
	}
	if s.Lock != nil {
		outputs := make([]window.OutputID, s.Lock.Outputs)
		for i := range outputs {
			outputs[i] = window.OutputID(i + 1)
		}
		opts = append(opts, headless.WithLockOutputs(dpi.Size(s.Lock.Width, s.Lock.Height), outputs...))
	}

	b := headless.New(opts...)
	defer b.Close()
	loop, handle := eventloop.New[string](b, eventloop.WithDispatchTimeout(iterationTimeout))

	r := &runner{
		s:       s,
		backend: b,
		loop:    loop,
		handle:  handle,
		app:     newRecorder(),
		log:     logger.WithPrefix("replay"),
	}
	return r.run(ctx)
}

func (r *runner) run(ctx context.Context) (*Trace, error) {
	trace := &Trace{Scenario: r.s.Name}
	r.log.Debug("replaying scenario", "name", r.s.Name, "steps", len(r.s.Steps))

	for i, step := range r.s.Steps {
		if err := r.apply(step); err != nil {
			return trace, fmt.Errorf("step %d (%s): %w", i+1, step.Action(), err)
		}
		more, err := r.loop.RunOnce(ctx, r.app)
		if err != nil {
			return trace, fmt.Errorf("step %d (%s): %w", i+1, step.Action(), err)
		}
		trace.Entries = append(trace.Entries, Entry{Step: i + 1, Action: step.Action(), Calls: r.app.take()})
		if !more {
			trace.Finished = i < len(r.s.Steps)-1
			r.log.Debug("event loop finished", "step", i+1)
			break
		}
	}
	return trace, nil
}

// window resolves a window reference.
func (r *runner) window(ref int) (window.ID, error) {
	if ref < 0 || ref >= len(r.app.ids) {
		return window.ID{}, fmt.Errorf("no window %d", ref)
	}
	return r.app.ids[ref], nil
}

func (r *runner) device(capability seat.Capability) (*headless.Device, error) {
	for _, id := range []seat.SeatID{1, 2, 3, 4} {
		if dev, ok := r.backend.DeviceFor(id, capability); ok {
			return dev, nil
		}
	}
	return nil, fmt.Errorf("no %s bound, add the capability first", capability)
}

func (r *runner) nextSerial(explicit uint32) uint32 {
	if explicit != 0 {
		r.serial = explicit
	} else {
		r.serial++
	}
	return r.serial
}

func (r *runner) apply(st Step) error {
	switch {
	case st.Open != nil:
		return r.handle.RequestWindow(st.Open.attributes())

	case st.Configure != nil:
		id, err := r.window(st.Configure.Window)
		if err != nil {
			return err
		}
		r.backend.Emit(backend.Configure{Surface: id, Config: st.Configure.config()})

	case st.Scale != nil:
		id, err := r.window(st.Scale.Window)
		if err != nil {
			return err
		}
		r.backend.Emit(backend.ScaleChanged{Surface: id, Factor: st.Scale.Factor})

	case st.Redraw != nil:
		id, err := r.window(*st.Redraw)
		if err != nil {
			return err
		}
		return r.handle.RequestRedraw(id)

	case st.Frame != nil:
		id, err := r.window(*st.Frame)
		if err != nil {
			return err
		}
		r.backend.Emit(backend.FrameDone{Surface: id})

	case st.Close != nil:
		id, err := r.window(*st.Close)
		if err != nil {
			return err
		}
		r.backend.Emit(backend.CloseRequested{Surface: id})

	case st.Event != nil:
		return r.handle.SendEvent(*st.Event)

	case st.Capability != nil:
		capability, _ := seat.ParseCapability(st.Capability.Name)
		id := seat.SeatID(max(st.Capability.Seat, 1))
		if st.Capability.Remove {
			r.backend.Emit(backend.CapabilityRemoved{Seat: id, Capability: capability})
		} else {
			r.backend.Emit(backend.CapabilityAdded{Seat: id, Capability: capability})
		}

	case st.Pointer != nil:
		return r.pointer(st.Pointer)

	case st.Focus != nil:
		dev, err := r.device(seat.CapabilityKeyboard)
		if err != nil {
			return err
		}
		id, err := r.window(st.Focus.Window)
		if err != nil {
			return err
		}
		ref := backend.SurfaceRef{Surface: id}
		if st.Focus.Focused {
			r.backend.Emit(backend.KeyboardEnter{Device: dev.ID(), Surface: ref})
		} else {
			r.backend.Emit(backend.KeyboardLeave{Device: dev.ID(), Surface: ref})
		}

	case st.Key != nil:
		dev, err := r.device(seat.CapabilityKeyboard)
		if err != nil {
			return err
		}
		state := seat.KeyReleased
		if st.Key.Pressed {
			state = seat.KeyPressed
		}
		r.backend.Emit(backend.Key{Device: dev.ID(), Key: st.Key.Key, State: state})

	case st.Touch != nil:
		return r.touch(st.Touch)

	case st.Lock:
		return r.handle.Lock()

	case st.Unlock:
		return r.handle.Unlock()

	case st.Stop:
		r.handle.Stop()
	}
	return nil
}

func (r *runner) pointer(p *PointerStep) error {
	dev, err := r.device(seat.CapabilityPointer)
	if err != nil {
		return err
	}
	id, err := r.window(p.Window)
	if err != nil {
		return err
	}

	raw := backend.PointerRaw{
		Kind:     pointerKinds[p.Kind],
		Surface:  backend.SurfaceRef{Surface: id},
		Position: dpi.LogicalPosition{X: p.X, Y: p.Y},
	}
	switch raw.Kind {
	case backend.RawEnter:
		raw.Serial = r.nextSerial(p.Serial)
	case backend.RawPress, backend.RawRelease:
		raw.Serial = r.nextSerial(p.Serial)
		raw.Button = p.Button
		if raw.Button == 0 {
			raw.Button = codeLeft
		}
	case backend.RawAxis:
		raw.Axis = raw.Position
		raw.Position = dpi.LogicalPosition{}
	}
	r.backend.Emit(backend.PointerFrame{Device: dev.ID(), Events: []backend.PointerRaw{raw}})
	return nil
}

func (r *runner) touch(t *TouchStep) error {
	dev, err := r.device(seat.CapabilityTouch)
	if err != nil {
		return err
	}
	pos := dpi.LogicalPosition{X: t.X, Y: t.Y}

	switch t.Kind {
	case "down":
		id, err := r.window(t.Window)
		if err != nil {
			return err
		}
		r.backend.Emit(backend.TouchDown{
			Device:   dev.ID(),
			Serial:   r.nextSerial(0),
			Surface:  backend.SurfaceRef{Surface: id},
			Contact:  t.Contact,
			Position: pos,
		})
	case "up":
		r.backend.Emit(backend.TouchUp{Device: dev.ID(), Serial: r.nextSerial(0), Contact: t.Contact})
	case "motion":
		r.backend.Emit(backend.TouchMotion{Device: dev.ID(), Contact: t.Contact, Position: pos})
	case "cancel":
		r.backend.Emit(backend.TouchCancel{Device: dev.ID()})
	}
	return nil
}

func (o *OpenStep) attributes() window.Attributes {
	attrs := window.DefaultAttributes().WithResizable(true)
	if o.Title != "" {
		attrs = attrs.WithTitle(o.Title)
	}
	if o.Width > 0 && o.Height > 0 {
		attrs = attrs.WithSize(o.Width, o.Height)
	}
	if o.MinWidth > 0 && o.MinHeight > 0 {
		attrs = attrs.WithMinSize(o.MinWidth, o.MinHeight)
	}
	if o.Decorations != nil {
		attrs = attrs.WithDecorations(*o.Decorations)
	}
	return attrs
}

func (c *ConfigureStep) config() window.Configure {
	cfg := window.Configure{
		NewSize:        dpi.Size(c.Width, c.Height),
		DecorationMode: window.DecorationServer,
		Capabilities:   window.CapAll,
	}
	if c.ClientSide {
		cfg.DecorationMode = window.DecorationClient
	}
	for _, name := range c.States {
		state, _ := window.ParseState(name)
		cfg.State |= state
	}
	return cfg
}

// recorder is the application used during a replay. Windows are named by
// the order in which they were created.
type recorder struct {
	eventloop.NopHandler[string]
	ids    []window.ID
	labels map[window.ID]string
	calls  []string
}

func newRecorder() *recorder {
	return &recorder{labels: make(map[window.ID]string)}
}

func (r *recorder) add(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) take() []string {
	calls := r.calls
	r.calls = nil
	return calls
}

func (r *recorder) label(id window.ID) string {
	if l, ok := r.labels[id]; ok {
		return l
	}
	return id.String()
}

func (r *recorder) CreateWindow(id window.ID) {
	r.labels[id] = fmt.Sprintf("w%d", len(r.ids))
	r.ids = append(r.ids, id)
	r.add("create %s", r.label(id))
}

func (r *recorder) UserEvent(ev string) { r.add("event %s", ev) }

func (r *recorder) Rescale(id window.ID, factor float64) {
	r.add("rescale %s %g", r.label(id), factor)
}

func (r *recorder) Resize(id window.ID, size dpi.PhysicalSize) {
	r.add("resize %s %s", r.label(id), size)
}

func (r *recorder) AccessibilityActivate(id window.ID, _ *a11y.Adapter) {
	r.add("a11y activate %s", r.label(id))
}

func (r *recorder) AccessibilityAction(id window.ID, req a11y.ActionRequest, _ *a11y.Adapter) {
	r.add("a11y action %s %s", r.label(id), req.Action)
}

func (r *recorder) AccessibilityDeactivate(id window.ID, _ *a11y.Adapter) {
	r.add("a11y deactivate %s", r.label(id))
}

func (r *recorder) Keyboard(id window.ID, ev seat.KeyboardEvent) {
	r.add("key %s %d %s", r.label(id), ev.Key, ev.State)
}

func (r *recorder) Pointer(id window.ID, ev seat.PointerEvent) {
	r.add("pointer %s %s", r.label(id), ev.Kind)
}

func (r *recorder) Focus(id window.ID, focused bool) {
	r.add("focus %s %t", r.label(id), focused)
}

func (r *recorder) Draw(id window.ID, _ *a11y.Adapter) { r.add("draw %s", r.label(id)) }

func (r *recorder) Close(id window.ID) { r.add("close %s", r.label(id)) }
