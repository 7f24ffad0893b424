package window

import (
	"testing"

	"github.com/bnema/wayloop/dpi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryInsertAndRemove(t *testing.T) {
	r := NewRegistry(nil)
	assert.True(t, r.IsEmpty())

	a := New(NewID(3, 1), &fakeToplevel{}, nil, 0, DefaultAttributes())
	b := New(NewID(4, 2), &fakeToplevel{}, nil, 0, DefaultAttributes())
	r.Insert(a.ID(), a)
	r.Insert(b.ID(), b)

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []ID{a.ID(), b.ID()}, r.IDs())

	got, ok := r.Get(a.ID())
	require.True(t, ok)
	assert.Same(t, a, got)

	assert.Equal(t, a.ID(), r.Remove(a.ID()))
	_, ok = r.Get(a.ID())
	assert.False(t, ok)
	assert.Equal(t, []ID{b.ID()}, r.IDs())
}

func TestRegistryProgrammingErrorsPanic(t *testing.T) {
	r := NewRegistry(nil)
	w := New(NewID(3, 1), &fakeToplevel{}, nil, 0, DefaultAttributes())
	r.Insert(w.ID(), w)

	assert.Panics(t, func() { r.Insert(w.ID(), w) })
	assert.Panics(t, func() { r.Remove(NewID(99, 99)) })
}

func TestRegistryPendingSetsDeduplicate(t *testing.T) {
	r := NewRegistry(nil)
	a, b := NewID(3, 1), NewID(4, 2)

	r.RequestRedraw(a)
	r.RequestRedraw(b)
	r.RequestRedraw(a)
	r.RequestResize(b)
	r.RequestRescale(a)
	r.RequestClose(b)
	r.MarkNew(a)

	assert.Equal(t, []ID{a, b}, r.TakeRedraw())
	assert.Empty(t, r.TakeRedraw(), "take clears the set")
	assert.Equal(t, []ID{b}, r.TakeResize())
	assert.Equal(t, []ID{a}, r.TakeRescale())
	assert.Equal(t, []ID{b}, r.TakeClose())
	assert.Equal(t, []ID{a}, r.TakeNew())
}

func TestRegistryWindowRedrawHook(t *testing.T) {
	r := NewRegistry(nil)
	w := New(NewID(3, 1), &fakeToplevel{}, nil, 0, DefaultAttributes())

	w.RequestRedraw()
	r.Insert(w.ID(), w)
	w.RequestRedraw()
	w.RequestRedraw()
	assert.Equal(t, []ID{w.ID()}, r.TakeRedraw())

	r.Remove(w.ID())
	w.RequestRedraw()
	assert.Empty(t, r.TakeRedraw())
}

func TestRegistryLockSurfaces(t *testing.T) {
	r := NewRegistry(nil)
	l1 := NewLockSurface(NewID(8, 5), 1)
	l2 := NewLockSurface(NewID(9, 3), 2)

	r.InsertLock(l1)
	r.InsertLock(l2)
	assert.False(t, r.IsEmpty())
	assert.Panics(t, func() { r.InsertLock(l1) })
	assert.Equal(t, []ID{l2.ID(), l1.ID()}, r.LockIDs())

	assert.False(t, l1.Configured())
	assert.True(t, l1.Configure(dpi.Size(1920, 1080)))
	assert.False(t, l1.Configure(dpi.Size(1920, 1080)))
	assert.True(t, l1.SetScale(2))
	assert.Equal(t, dpi.PhysicalSize{Width: 3840, Height: 2160}, l1.PhysicalSize())

	assert.True(t, r.RemoveLock(l1.ID()))
	assert.False(t, r.RemoveLock(l1.ID()))
	assert.True(t, r.RemoveLock(l2.ID()))
	assert.True(t, r.IsEmpty())
}
