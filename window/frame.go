package window

import "time"

// FrameClick is the kind of click delivered to a decoration frame.
type FrameClick int

const (
	ClickNormal FrameClick = iota
	ClickAlternate
)

// FrameActionKind is what the user asked for by interacting with the frame.
type FrameActionKind int

const (
	ActionNone FrameActionKind = iota
	ActionClose
	ActionMinimize
	ActionMaximize
	ActionUnMaximize
	ActionShowMenu
	ActionResize
	ActionMove
)

func (k FrameActionKind) String() string {
	switch k {
	case ActionClose:
		return "close"
	case ActionMinimize:
		return "minimize"
	case ActionMaximize:
		return "maximize"
	case ActionUnMaximize:
		return "unmaximize"
	case ActionShowMenu:
		return "show_menu"
	case ActionResize:
		return "resize"
	case ActionMove:
		return "move"
	default:
		return "none"
	}
}

// FrameAction is returned by a frame click. X and Y are set for ShowMenu,
// Edge for Resize.
type FrameAction struct {
	Kind FrameActionKind
	X, Y int32
	Edge ResizeEdge
}

// FrameConfig selects the look of a client-side frame.
type FrameConfig struct {
	Theme        Theme
	HideTitlebar bool
}

// Frame is a client-side decoration drawn around a window's content.
//
// Sizes are logical. SubtractBorders returns 0 for a dimension that would
// not be positive once the borders are removed.
type Frame interface {
	SetTitle(title string)
	SetScalingFactor(scale float64)
	SetHidden(hidden bool)
	Hidden() bool
	Dirty() bool
	// Draw repaints the frame and reports whether the frame was drawn.
	Draw() bool
	UpdateState(state State)
	UpdateWMCapabilities(caps WMCapabilities)
	Resize(width, height uint32)
	SubtractBorders(width, height uint32) (uint32, uint32)
	AddBorders(width, height uint32) (uint32, uint32)
	// Location is the offset of the frame's top-left corner relative to the content.
	Location() (x, y int32)
	OnClick(timestamp time.Duration, click FrameClick, pressed bool) (FrameAction, bool)
	// ClickPointMoved tracks the pointer over the decoration surface and
	// returns the cursor to show.
	ClickPointMoved(timestamp time.Duration, surface ID, x, y float64) (CursorIcon, bool)
	ClickPointLeft()
	Destroy()
}

// FrameFactory builds frames for windows that need client-side decorations.
type FrameFactory interface {
	NewFrame(id ID, config FrameConfig) (Frame, error)
}
