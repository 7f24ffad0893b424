package wayland

import (
	"github.com/rajveermalviya/go-wayland/wayland/client"

	"github.com/bnema/wayloop/backend"
	"github.com/bnema/wayloop/window"
)

// output is a bound wl_output.
type output struct {
	name  uint32
	proxy *client.Output
	scale int32
}

// Caller holds mu.
func (b *Backend) addOutput(name uint32, proxy *client.Output) {
	o := &output{name: name, proxy: proxy, scale: 1}
	proxy.SetScaleHandler(func(e client.OutputScaleEvent) {
		b.mu.Lock()
		o.scale = max(e.Factor, 1)
		events := b.rescaleOn(proxy.ID())
		b.mu.Unlock()
		b.emit(events...)
	})

	b.outputs[proxy.ID()] = o
}

// outputByID returns the proxy of an output for fullscreen requests.
// Caller holds mu.
func (b *Backend) outputByID(id window.OutputID) *client.Output {
	if o, ok := b.outputs[uint32(id)]; ok {
		return o.proxy
	}
	return nil
}

// rescaleOn reports the new scale of every window shown on output.
// Caller holds mu.
func (b *Backend) rescaleOn(output uint32) []backend.Event {
	var events []backend.Event
	for _, t := range b.windows {
		if t.outputs[output] {
			events = append(events, backend.ScaleChanged{Surface: t.id, Factor: b.scaleOf(t)})
		}
	}
	return events
}

// outputRemoved forgets an output every window was shown on.
// Caller holds mu.
func (b *Backend) outputRemoved(output uint32) []backend.Event {
	var events []backend.Event
	for _, t := range b.windows {
		if !t.outputs[output] {
			continue
		}
		delete(t.outputs, output)
		events = append(events,
			backend.SurfaceLeave{Surface: t.id, Output: window.OutputID(output)},
			backend.ScaleChanged{Surface: t.id, Factor: b.scaleOf(t)},
		)
	}
	return events
}

// scaleOf is the largest scale of the outputs showing t.
// Caller holds mu.
func (b *Backend) scaleOf(t *toplevel) int32 {
	scale := int32(1)
	for id := range t.outputs {
		if o, ok := b.outputs[id]; ok {
			scale = max(scale, o.scale)
		}
	}
	return scale
}
