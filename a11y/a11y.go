// Package a11y routes assistive technology requests to the windows they
// target. Tree contents are produced by the application and are opaque here.
package a11y

import (
	"fmt"

	"github.com/bnema/wayloop/window"
)

// EventKind tags an accessibility Event.
type EventKind int

const (
	Activate EventKind = iota
	Deactivate
	ActionRequested
)

func (k EventKind) String() string {
	switch k {
	case Activate:
		return "activate"
	case Deactivate:
		return "deactivate"
	case ActionRequested:
		return "action"
	default:
		return "unknown"
	}
}

// NodeID identifies a node of an accessibility tree.
type NodeID uint64

// Action is what an assistive technology asks a node to do.
type Action string

const (
	ActionClick           Action = "click"
	ActionFocus           Action = "focus"
	ActionBlur            Action = "blur"
	ActionScrollIntoView  Action = "scroll_into_view"
	ActionSetValue        Action = "set_value"
	ActionIncrement       Action = "increment"
	ActionDecrement       Action = "decrement"
	ActionShowContextMenu Action = "show_context_menu"
)

// ActionRequest is an action targeted at one node.
type ActionRequest struct {
	Action Action
	Target NodeID
	Value  string
}

// Event is an accessibility request queued for the event loop.
type Event struct {
	Kind    EventKind
	Window  window.ID
	Request ActionRequest
}

func (e Event) String() string {
	if e.Kind == ActionRequested {
		return fmt.Sprintf("%s %s on node %d", e.Kind, e.Request.Action, e.Request.Target)
	}
	return e.Kind.String()
}

// Node is one element of an accessibility tree.
type Node struct {
	ID       NodeID
	Role     string
	Name     string
	Children []NodeID
}

// TreeUpdate is a full or partial tree produced by the application.
type TreeUpdate struct {
	Nodes []Node
	Root  NodeID
	Focus NodeID
}

// Sink receives accessibility events from any goroutine.
type Sink interface {
	PushAccessibility(ev Event)
}

// Bridge connects windows to the platform accessibility service.
type Bridge interface {
	Attach(id window.ID, h *Handler)
	Update(id window.ID, update TreeUpdate)
	Detach(id window.ID)
}
