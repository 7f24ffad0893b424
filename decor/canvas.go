package decor

import (
	"image"

	"github.com/bnema/wayloop/window"
)

// Part is one of the surfaces a frame is made of.
type Part int

const (
	PartHeader Part = iota
	PartTop
	PartBottom
	PartLeft
	PartRight
)

var allParts = []Part{PartHeader, PartTop, PartBottom, PartLeft, PartRight}

func (p Part) String() string {
	switch p {
	case PartHeader:
		return "header"
	case PartTop:
		return "top"
	case PartBottom:
		return "bottom"
	case PartLeft:
		return "left"
	case PartRight:
		return "right"
	default:
		return "unknown"
	}
}

// Rect is a logical rectangle relative to the top-left corner of the window content.
type Rect struct {
	X, Y          int32
	Width, Height uint32
}

// Canvas holds the surfaces of one frame, typically subsurfaces of the
// window surface.
type Canvas interface {
	// Surface returns the identity of the surface showing part. Input
	// events on decorations carry it.
	Surface(part Part) window.ID
	// Place positions part and makes it visible.
	Place(part Part, r Rect)
	Hide(part Part)
	// Paint attaches img, sized in buffer pixels, to part.
	Paint(part Part, img *image.RGBA, scale int32) error
	Destroy()
}

// CanvasFactory creates the canvas of a new frame.
type CanvasFactory interface {
	NewCanvas(parent window.ID) (Canvas, error)
}

// CanvasFactoryFunc adapts a function to CanvasFactory.
type CanvasFactoryFunc func(parent window.ID) (Canvas, error)

func (f CanvasFactoryFunc) NewCanvas(parent window.ID) (Canvas, error) { return f(parent) }
