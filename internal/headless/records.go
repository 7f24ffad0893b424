package headless

import (
	"fmt"
	"image"
	"sync"

	"github.com/bnema/wayloop/backend"
	"github.com/bnema/wayloop/decor"
	"github.com/bnema/wayloop/seat"
	"github.com/bnema/wayloop/window"
)

// Toplevel records the requests made on a window.
type Toplevel struct {
	mu        sync.Mutex
	id        window.ID
	calls     []string
	title     string
	appID     string
	geometry  [4]int64
	destroyed bool
}

func (t *Toplevel) record(format string, args ...any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, fmt.Sprintf(format, args...))
	return nil
}

// Calls returns every request in order, formatted for comparison.
func (t *Toplevel) Calls() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.calls...)
}

// Title returns the last title set.
func (t *Toplevel) Title() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.title
}

// AppID returns the last application id set.
func (t *Toplevel) AppID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.appID
}

// Geometry returns the last window geometry as x, y, width, height.
func (t *Toplevel) Geometry() (int32, int32, uint32, uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return int32(t.geometry[0]), int32(t.geometry[1]), uint32(t.geometry[2]), uint32(t.geometry[3])
}

// Destroyed reports whether the toplevel was destroyed.
func (t *Toplevel) Destroyed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.destroyed
}

func (t *Toplevel) SetTitle(title string) error {
	t.mu.Lock()
	t.title = title
	t.mu.Unlock()
	return t.record("title %q", title)
}

func (t *Toplevel) SetAppID(id string) error {
	t.mu.Lock()
	t.appID = id
	t.mu.Unlock()
	return t.record("app_id %q", id)
}

func (t *Toplevel) SetMinSize(w, h uint32) error { return t.record("min %dx%d", w, h) }
func (t *Toplevel) SetMaxSize(w, h uint32) error { return t.record("max %dx%d", w, h) }

func (t *Toplevel) SetWindowGeometry(x, y int32, w, h uint32) error {
	t.mu.Lock()
	t.geometry = [4]int64{int64(x), int64(y), int64(w), int64(h)}
	t.mu.Unlock()
	return t.record("geometry %d,%d %dx%d", x, y, w, h)
}

func (t *Toplevel) SetOpaque(opaque bool) error { return t.record("opaque %t", opaque) }

func (t *Toplevel) RequestDecorationMode(mode window.DecorationMode) error {
	return t.record("decorations %s", mode)
}

func (t *Toplevel) SetMaximized(maximized bool) error { return t.record("maximized %t", maximized) }

func (t *Toplevel) SetFullscreen(fullscreen bool, output window.OutputID) error {
	return t.record("fullscreen %t output %d", fullscreen, output)
}

func (t *Toplevel) SetMinimized() error { return t.record("minimized") }

func (t *Toplevel) Move(g window.Grab) error {
	return t.record("move seat %d serial %d", g.Seat, g.Serial)
}

func (t *Toplevel) Resize(g window.Grab, edge window.ResizeEdge) error {
	return t.record("resize seat %d serial %d edge %d", g.Seat, g.Serial, edge)
}

func (t *Toplevel) ShowWindowMenu(g window.Grab, x, y int32) error {
	return t.record("menu seat %d serial %d at %d,%d", g.Seat, g.Serial, x, y)
}

func (t *Toplevel) Commit() error { return t.record("commit") }

func (t *Toplevel) Destroy() error {
	t.mu.Lock()
	t.destroyed = true
	t.mu.Unlock()
	return t.record("destroy")
}

// Device is a recorded input device.
type Device struct {
	mu         sync.Mutex
	id         seat.DeviceID
	seat       seat.SeatID
	capability seat.Capability
	serial     uint32
	cursor     window.CursorIcon
	hidden     bool
	released   bool
}

func (d *Device) ID() seat.DeviceID           { return d.id }
func (d *Device) Seat() seat.SeatID           { return d.seat }
func (d *Device) Capability() seat.Capability { return d.capability }

func (d *Device) LatestSerial() (uint32, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.serial, d.serial != 0
}

// SetSerial records the serial of the last press.
func (d *Device) SetSerial(serial uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.serial = serial
}

func (d *Device) SetCursor(icon window.CursorIcon) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.capability != seat.CapabilityPointer {
		return fmt.Errorf("headless: cursors unsupported for %s", d.capability)
	}
	d.cursor, d.hidden = icon, false
	return nil
}

func (d *Device) HideCursor() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hidden = true
	return nil
}

func (d *Device) Release() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.released = true
	return nil
}

// Cursor returns the cursor last set and whether it is hidden.
func (d *Device) Cursor() (window.CursorIcon, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cursor, d.hidden
}

// Released reports whether the device was released.
func (d *Device) Released() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.released
}

// Canvas records the decoration parts of a window.
type Canvas struct {
	mu        sync.Mutex
	parent    window.ID
	surfaces  map[decor.Part]window.ID
	placed    map[decor.Part]decor.Rect
	hidden    map[decor.Part]bool
	paints    int
	destroyed bool
}

func (c *Canvas) Surface(part decor.Part) window.ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.surfaces[part]
}

func (c *Canvas) Place(part decor.Part, r decor.Rect) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.placed[part] = r
	delete(c.hidden, part)
}

func (c *Canvas) Hide(part decor.Part) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hidden[part] = true
}

func (c *Canvas) Paint(decor.Part, *image.RGBA, int32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paints++
	return nil
}

func (c *Canvas) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.destroyed = true
}

// Ref returns the reference input events use for part.
func (c *Canvas) Ref(part decor.Part) backend.SurfaceRef {
	return backend.SurfaceRef{Surface: c.Surface(part), Parent: c.parent}
}

// Placed returns where part was last placed and whether it is visible.
func (c *Canvas) Placed(part decor.Part) (decor.Rect, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.placed[part]
	return r, ok && !c.hidden[part]
}

// Paints returns the number of buffers painted.
func (c *Canvas) Paints() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paints
}

// Destroyed reports whether the canvas was destroyed.
func (c *Canvas) Destroyed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.destroyed
}
