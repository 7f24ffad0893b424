package headless

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/wayloop/backend"
	"github.com/bnema/wayloop/dpi"
	"github.com/bnema/wayloop/seat"
	"github.com/bnema/wayloop/window"
)

func TestCreateWindowAssignsUniqueIDs(t *testing.T) {
	b := New()

	first, err := b.CreateWindow(window.DefaultAttributes())
	require.NoError(t, err)
	second, err := b.CreateWindow(window.DefaultAttributes())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Less(t, first.ID.Serial(), second.ID.Serial())
	assert.Equal(t, []window.ID{first.ID, second.ID}, b.Windows())

	tl, ok := b.Toplevel(first.ID)
	require.True(t, ok)
	require.NoError(t, first.Toplevel.SetTitle("hello"))
	assert.Equal(t, "hello", tl.Title())
	assert.Equal(t, []string{`title "hello"`}, tl.Calls())
}

func TestFailClosesEventStream(t *testing.T) {
	b := New()
	boom := errors.New("broken pipe")
	b.Emit(backend.Locked{})
	b.Fail(boom)
	b.Fail(errors.New("ignored"))

	ev, ok := <-b.Events()
	require.True(t, ok)
	assert.Equal(t, backend.Locked{}, ev)
	_, ok = <-b.Events()
	assert.False(t, ok)
	assert.ErrorIs(t, b.Err(), boom)

	_, err := b.CreateWindow(window.DefaultAttributes())
	assert.ErrorIs(t, err, backend.ErrDisconnected)
}

func TestFailCreate(t *testing.T) {
	b := New()
	boom := errors.New("no xdg_wm_base")
	b.FailCreate(boom)
	_, err := b.CreateWindow(window.DefaultAttributes())
	assert.ErrorIs(t, err, boom)

	b.FailCreate(nil)
	_, err = b.CreateWindow(window.DefaultAttributes())
	assert.NoError(t, err)
}

func TestBindDevice(t *testing.T) {
	b := New()
	dev, err := b.BindDevice(7, seat.CapabilityPointer)
	require.NoError(t, err)
	assert.Equal(t, seat.SeatID(7), dev.Seat())

	recorded, ok := b.DeviceFor(7, seat.CapabilityPointer)
	require.True(t, ok)
	assert.Equal(t, dev.ID(), recorded.ID())

	require.NoError(t, dev.SetCursor(window.CursorMove))
	icon, hidden := recorded.Cursor()
	assert.Equal(t, window.CursorMove, icon)
	assert.False(t, hidden)

	touch, err := b.BindDevice(7, seat.CapabilityTouch)
	require.NoError(t, err)
	assert.Error(t, touch.SetCursor(window.CursorMove))
}

func TestLocking(t *testing.T) {
	b := New()
	assert.ErrorIs(t, b.Lock(), backend.ErrUnsupported)

	b = New(WithLockOutputs(dpi.Size(1920, 1080), 1, 2))
	require.NoError(t, b.Lock())
	assert.Error(t, b.Lock())
	require.Len(t, b.LockSurfaces(), 2)

	assert.Equal(t, backend.Locked{}, <-b.Events())
	first := (<-b.Events()).(backend.LockSurfaceConfigure)
	assert.Equal(t, window.OutputID(1), first.Output)
	assert.Equal(t, dpi.Size(1920, 1080), first.Size)
	<-b.Events()

	require.NoError(t, b.Unlock())
	assert.Equal(t, backend.Unlocked{}, <-b.Events())
	assert.Error(t, b.Unlock())
}
