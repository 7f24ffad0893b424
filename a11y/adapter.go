package a11y

import "github.com/bnema/wayloop/window"

// Handler is given to the accessibility bridge for one window. Its methods
// may be called from any goroutine; they only enqueue events for the loop.
type Handler struct {
	id   window.ID
	sink Sink
}

// NewHandler returns a handler that forwards requests for id to sink.
func NewHandler(id window.ID, sink Sink) *Handler {
	return &Handler{id: id, sink: sink}
}

// Window returns the window the handler serves.
func (h *Handler) Window() window.ID { return h.id }

// RequestInitialTree is called when an assistive technology starts
// observing the window.
func (h *Handler) RequestInitialTree() {
	h.sink.PushAccessibility(Event{Kind: Activate, Window: h.id})
}

// DoAction forwards an action request.
func (h *Handler) DoAction(req ActionRequest) {
	h.sink.PushAccessibility(Event{Kind: ActionRequested, Window: h.id, Request: req})
}

// Deactivate is called when no assistive technology observes the window anymore.
func (h *Handler) Deactivate() {
	h.sink.PushAccessibility(Event{Kind: Deactivate, Window: h.id})
}

// Adapter is the application's view of a window's accessibility state.
// It is only used from the loop goroutine.
type Adapter struct {
	handler *Handler
	bridge  Bridge
	active  bool
	last    *TreeUpdate
}

// NewAdapter creates the adapter for id and attaches it to bridge, which may be nil.
func NewAdapter(id window.ID, sink Sink, bridge Bridge) *Adapter {
	a := &Adapter{handler: NewHandler(id, sink), bridge: bridge}
	if bridge != nil {
		bridge.Attach(id, a.handler)
	}
	return a
}

// Handler returns the handler given to the bridge.
func (a *Adapter) Handler() *Handler { return a.handler }

// Active reports whether an assistive technology observes the window.
func (a *Adapter) Active() bool { return a.active }

// SetActive is called by the loop on activation changes.
func (a *Adapter) SetActive(active bool) {
	a.active = active
	if !active {
		a.last = nil
	}
}

// UpdateIfActive builds a tree update with build and forwards it, but only
// while active so inactive windows pay nothing.
func (a *Adapter) UpdateIfActive(build func() TreeUpdate) bool {
	if !a.active {
		return false
	}
	update := build()
	a.last = &update
	if a.bridge != nil {
		a.bridge.Update(a.handler.id, update)
	}
	return true
}

// LastUpdate returns the last update forwarded while active.
func (a *Adapter) LastUpdate() (TreeUpdate, bool) {
	if a.last == nil {
		return TreeUpdate{}, false
	}
	return *a.last, true
}

// Close detaches the window from the bridge.
func (a *Adapter) Close() {
	a.active = false
	if a.bridge != nil {
		a.bridge.Detach(a.handler.id)
	}
}
