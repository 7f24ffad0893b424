// Package dpi converts between logical (scale independent) and physical (pixel) units.
package dpi

import (
	"fmt"
	"math"
)

// LogicalSize is a size in surface-local logical units.
type LogicalSize struct {
	Width  uint32
	Height uint32
}

// PhysicalSize is a size in buffer pixels.
type PhysicalSize struct {
	Width  uint32
	Height uint32
}

// LogicalPosition is a position in surface-local logical units.
type LogicalPosition struct {
	X float64
	Y float64
}

// PhysicalPosition is a position in buffer pixels.
type PhysicalPosition struct {
	X float64
	Y float64
}

// Size returns a LogicalSize.
func Size(width, height uint32) LogicalSize {
	return LogicalSize{Width: width, Height: height}
}

// ToPhysical scales s, rounding each dimension to the nearest pixel.
func (s LogicalSize) ToPhysical(scale float64) PhysicalSize {
	return PhysicalSize{
		Width:  roundUint(float64(s.Width) * scale),
		Height: roundUint(float64(s.Height) * scale),
	}
}

// Max returns the component-wise maximum of s and o.
func (s LogicalSize) Max(o LogicalSize) LogicalSize {
	return LogicalSize{Width: max(s.Width, o.Width), Height: max(s.Height, o.Height)}
}

// Min returns the component-wise minimum of s and o.
func (s LogicalSize) Min(o LogicalSize) LogicalSize {
	return LogicalSize{Width: min(s.Width, o.Width), Height: min(s.Height, o.Height)}
}

// IsZero reports whether both dimensions are zero.
func (s LogicalSize) IsZero() bool {
	return s.Width == 0 && s.Height == 0
}

func (s LogicalSize) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// ToLogical divides s by scale, rounding each dimension to the nearest unit.
func (s PhysicalSize) ToLogical(scale float64) LogicalSize {
	if scale <= 0 {
		scale = 1
	}
	return LogicalSize{
		Width:  roundUint(float64(s.Width) / scale),
		Height: roundUint(float64(s.Height) / scale),
	}
}

func (s PhysicalSize) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// ToPhysical scales p without rounding.
func (p LogicalPosition) ToPhysical(scale float64) PhysicalPosition {
	return PhysicalPosition{X: p.X * scale, Y: p.Y * scale}
}

// ToLogical divides p by scale.
func (p PhysicalPosition) ToLogical(scale float64) LogicalPosition {
	if scale <= 0 {
		scale = 1
	}
	return LogicalPosition{X: p.X / scale, Y: p.Y / scale}
}

// Round rounds v to the nearest integer, halves away from zero.
func Round(v float64) int32 {
	return int32(math.Round(v))
}

func roundUint(v float64) uint32 {
	if v <= 0 {
		return 0
	}
	return uint32(math.Round(v))
}
