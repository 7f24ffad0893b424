package dpi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogicalToPhysicalRounds(t *testing.T) {
	tests := []struct {
		name  string
		size  LogicalSize
		scale float64
		want  PhysicalSize
	}{
		{"integer scale", Size(800, 600), 2, PhysicalSize{1600, 1200}},
		{"identity", Size(256, 256), 1, PhysicalSize{256, 256}},
		{"fractional rounds half up", Size(3, 5), 1.5, PhysicalSize{5, 8}},
		{"fractional rounds down", Size(101, 7), 1.25, PhysicalSize{126, 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.size.ToPhysical(tt.scale))
		})
	}
}

func TestPhysicalToLogical(t *testing.T) {
	assert.Equal(t, Size(800, 600), PhysicalSize{1600, 1200}.ToLogical(2))
	assert.Equal(t, Size(10, 10), PhysicalSize{10, 10}.ToLogical(0), "non-positive scale falls back to 1")
}

func TestPositionConversion(t *testing.T) {
	p := LogicalPosition{X: 10.5, Y: 3}.ToPhysical(2)
	assert.Equal(t, PhysicalPosition{X: 21, Y: 6}, p)
	assert.Equal(t, LogicalPosition{X: 10.5, Y: 3}, p.ToLogical(2))
}

func TestSizeMinMax(t *testing.T) {
	a, b := Size(2, 10), Size(5, 1)
	assert.Equal(t, Size(5, 10), a.Max(b))
	assert.Equal(t, Size(2, 1), a.Min(b))
	assert.True(t, LogicalSize{}.IsZero())
	assert.Equal(t, "5x1", b.String())
}
