package eventloop

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bnema/wayloop/a11y"
	"github.com/bnema/wayloop/backend"
	"github.com/bnema/wayloop/dpi"
	"github.com/bnema/wayloop/internal/headless"
	"github.com/bnema/wayloop/seat"
	"github.com/bnema/wayloop/window"
)

const testTimeout = 5 * time.Millisecond

// recorder is an application logging every callback it receives.
type recorder struct {
	NopHandler[string]
	calls         []string
	recordSignals bool
	pointers      []seat.PointerEvent
	keys          []seat.KeyboardEvent
	adapters      map[window.ID]*a11y.Adapter

	onUserEvent func(ev string)
	onSignals   func(windows *window.Registry)
	onDraw      func(id window.ID)
}

func (r *recorder) add(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) reset() {
	r.calls = nil
	r.pointers = nil
	r.keys = nil
}

// count returns how many calls start with prefix.
func (r *recorder) count(prefix string) int {
	n := 0
	for _, c := range r.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (r *recorder) CreateWindow(id window.ID) { r.add("create %s", id) }

func (r *recorder) UserEvent(ev string) {
	r.add("user %s", ev)
	if r.onUserEvent != nil {
		r.onUserEvent(ev)
	}
}

func (r *recorder) Rescale(id window.ID, factor float64) { r.add("rescale %s %g", id, factor) }

func (r *recorder) Resize(id window.ID, size dpi.PhysicalSize) { r.add("resize %s %s", id, size) }

func (r *recorder) UserSignals(windows *window.Registry) {
	if r.recordSignals {
		r.add("signals")
	}
	if r.onSignals != nil {
		r.onSignals(windows)
	}
}

func (r *recorder) AccessibilityActivate(id window.ID, adapter *a11y.Adapter) {
	r.add("a11y activate %s active=%t", id, adapter.Active())
}

func (r *recorder) AccessibilityAction(id window.ID, req a11y.ActionRequest, _ *a11y.Adapter) {
	r.add("a11y action %s %s", id, req.Action)
}

func (r *recorder) AccessibilityDeactivate(id window.ID, _ *a11y.Adapter) {
	r.add("a11y deactivate %s", id)
}

func (r *recorder) Keyboard(id window.ID, ev seat.KeyboardEvent) {
	r.keys = append(r.keys, ev)
	r.add("key %s %d %s", id, ev.Key, ev.State)
}

func (r *recorder) Pointer(id window.ID, ev seat.PointerEvent) {
	r.pointers = append(r.pointers, ev)
	r.add("pointer %s %s", id, ev.Kind)
}

func (r *recorder) Focus(id window.ID, focused bool) { r.add("focus %s %t", id, focused) }

func (r *recorder) Draw(id window.ID, adapter *a11y.Adapter) {
	if r.adapters == nil {
		r.adapters = make(map[window.ID]*a11y.Adapter)
	}
	r.adapters[id] = adapter
	r.add("draw %s", id)
	if r.onDraw != nil {
		r.onDraw(id)
	}
}

func (r *recorder) Close(id window.ID) { r.add("close %s", id) }

type harness struct {
	t       *testing.T
	loop    *Loop[string]
	handle  *Handle[string]
	backend *headless.Backend
	app     *recorder
}

func newHarness(t *testing.T, opts ...headless.Option) *harness {
	t.Helper()
	b := headless.New(opts...)
	loop, handle := New[string](b, WithDispatchTimeout(testTimeout))
	return &harness{t: t, loop: loop, handle: handle, backend: b, app: &recorder{}}
}

// tick runs one iteration and reports whether the loop would continue.
func (h *harness) tick() bool {
	h.t.Helper()
	more, err := h.loop.RunOnce(context.Background(), h.app)
	require.NoError(h.t, err)
	return more
}

// open requests a window and runs the iteration creating it.
func (h *harness) open(attrs window.Attributes) window.ID {
	h.t.Helper()
	before := len(h.backend.Windows())
	require.NoError(h.t, h.handle.RequestWindow(attrs))
	h.tick()
	ids := h.backend.Windows()
	require.Len(h.t, ids, before+1)
	return ids[len(ids)-1]
}

// openConfigured opens a window and applies a first server-side configure.
func (h *harness) openConfigured(width, height uint32) window.ID {
	h.t.Helper()
	id := h.open(window.DefaultAttributes())
	h.backend.Emit(backend.Configure{Surface: id, Config: serverSide(width, height, 0)})
	h.tick()
	h.app.reset()
	return id
}

// bind adds a capability to seat 1 and returns the bound device.
func (h *harness) bind(capability seat.Capability) *headless.Device {
	h.t.Helper()
	h.backend.Emit(backend.CapabilityAdded{Seat: 1, Capability: capability})
	h.tick()
	dev, ok := h.backend.DeviceFor(1, capability)
	require.True(h.t, ok)
	h.app.reset()
	return dev
}

func serverSide(width, height uint32, state window.State) window.Configure {
	return window.Configure{
		NewSize:        dpi.Size(width, height),
		DecorationMode: window.DecorationServer,
		State:          state,
		Capabilities:   window.CapAll,
	}
}

func clientSide(width, height uint32, state window.State) window.Configure {
	cfg := serverSide(width, height, state)
	cfg.DecorationMode = window.DecorationClient
	return cfg
}

func pointerFrame(dev *headless.Device, events ...backend.PointerRaw) backend.PointerFrame {
	return backend.PointerFrame{Device: dev.ID(), Events: events}
}

func on(id window.ID) backend.SurfaceRef { return backend.SurfaceRef{Surface: id} }

func at(x, y float64) dpi.LogicalPosition { return dpi.LogicalPosition{X: x, Y: y} }
