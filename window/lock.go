package window

import "github.com/bnema/wayloop/dpi"

// LockSurface is a surface shown on one output while the session is locked.
type LockSurface struct {
	id     ID
	output OutputID
	size   dpi.LogicalSize
	scale  int32
}

// NewLockSurface returns a lock surface that has not been configured yet.
func NewLockSurface(id ID, output OutputID) *LockSurface {
	return &LockSurface{id: id, output: output, scale: DefaultScaleFactor}
}

func (l *LockSurface) ID() ID                { return l.id }
func (l *LockSurface) Output() OutputID      { return l.output }
func (l *LockSurface) Size() dpi.LogicalSize { return l.size }

// Configured reports whether the compositor has sent a size yet.
func (l *LockSurface) Configured() bool { return !l.size.IsZero() }

// Configure applies the compositor-chosen size and reports whether it changed.
func (l *LockSurface) Configure(size dpi.LogicalSize) bool {
	if size == l.size {
		return false
	}
	l.size = size
	return true
}

// SetScale records a buffer scale, clamped to at least 1.
func (l *LockSurface) SetScale(factor int32) bool {
	factor = max(factor, 1)
	if factor == l.scale {
		return false
	}
	l.scale = factor
	return true
}

// ScaleFactor returns the scale as used for unit conversions.
func (l *LockSurface) ScaleFactor() float64 { return float64(l.scale) }

// PhysicalSize returns the size in buffer pixels.
func (l *LockSurface) PhysicalSize() dpi.PhysicalSize {
	return l.size.ToPhysical(l.ScaleFactor())
}
