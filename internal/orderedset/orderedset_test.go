package orderedset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetDeduplicatesAndKeepsOrder(t *testing.T) {
	var s Set[int]

	assert.True(t, s.Add(3))
	assert.True(t, s.Add(1))
	assert.False(t, s.Add(3))
	assert.True(t, s.Add(2))

	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Has(1))
	assert.False(t, s.Has(4))
	assert.Equal(t, []int{3, 1, 2}, s.Items())
}

func TestSetTakeEmpties(t *testing.T) {
	var s Set[string]
	s.Merge([]string{"a", "b", "a"})

	assert.Equal(t, []string{"a", "b"}, s.Take())
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Has("a"))
	assert.Empty(t, s.Take())

	// Usable again after a take.
	assert.True(t, s.Add("a"))
	assert.Equal(t, []string{"a"}, s.Items())
}
