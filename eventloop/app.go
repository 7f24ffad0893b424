package eventloop

import (
	"github.com/bnema/wayloop/a11y"
	"github.com/bnema/wayloop/dpi"
	"github.com/bnema/wayloop/seat"
	"github.com/bnema/wayloop/window"
)

// ApplicationHandler receives the callbacks of one loop iteration. Every
// method runs on the goroutine that called Run.
//
// Within an iteration callbacks arrive in this order: CreateWindow,
// UserEvent, Rescale, Resize, UserSignals, accessibility callbacks, input
// and focus callbacks, Draw, Close.
type ApplicationHandler[E any] interface {
	CreateWindow(id window.ID)
	UserEvent(ev E)
	Rescale(id window.ID, factor float64)
	Resize(id window.ID, size dpi.PhysicalSize)
	// UserSignals gives the application a chance to mutate windows before
	// accessibility, input and redraw processing.
	UserSignals(windows *window.Registry)
	AccessibilityActivate(id window.ID, adapter *a11y.Adapter)
	AccessibilityAction(id window.ID, req a11y.ActionRequest, adapter *a11y.Adapter)
	AccessibilityDeactivate(id window.ID, adapter *a11y.Adapter)
	Keyboard(id window.ID, ev seat.KeyboardEvent)
	Pointer(id window.ID, ev seat.PointerEvent)
	Focus(id window.ID, focused bool)
	Draw(id window.ID, adapter *a11y.Adapter)
	// Close is the last callback for a window; the window is already gone
	// from the registry.
	Close(id window.ID)
}

// NopHandler implements ApplicationHandler with no-ops. Embed it to only
// implement the callbacks you need.
type NopHandler[E any] struct{}

func (NopHandler[E]) CreateWindow(window.ID)                                           {}
func (NopHandler[E]) UserEvent(E)                                                      {}
func (NopHandler[E]) Rescale(window.ID, float64)                                       {}
func (NopHandler[E]) Resize(window.ID, dpi.PhysicalSize)                               {}
func (NopHandler[E]) UserSignals(*window.Registry)                                     {}
func (NopHandler[E]) AccessibilityActivate(window.ID, *a11y.Adapter)                   {}
func (NopHandler[E]) AccessibilityAction(window.ID, a11y.ActionRequest, *a11y.Adapter) {}
func (NopHandler[E]) AccessibilityDeactivate(window.ID, *a11y.Adapter)                 {}
func (NopHandler[E]) Keyboard(window.ID, seat.KeyboardEvent)                           {}
func (NopHandler[E]) Pointer(window.ID, seat.PointerEvent)                             {}
func (NopHandler[E]) Focus(window.ID, bool)                                            {}
func (NopHandler[E]) Draw(window.ID, *a11y.Adapter)                                    {}
func (NopHandler[E]) Close(window.ID)                                                  {}
