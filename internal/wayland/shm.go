package wayland

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"strconv"

	"github.com/rajveermalviya/go-wayland/wayland/client"
	"github.com/rajveermalviya/go-wayland/wayland/cursor"
	"golang.org/x/sys/unix"

	"github.com/bnema/wayloop/backend"
	"github.com/bnema/wayloop/window"
)

// shmBuffer is a wl_buffer backed by an anonymous memory file.
type shmBuffer struct {
	fd     int
	data   []byte
	width  int32
	height int32
	buffer *client.Buffer
}

// newShmBuffer allocates an ARGB8888 buffer. The buffer frees itself once
// the compositor releases it unless keep is set. Caller holds mu.
func (b *Backend) newShmBuffer(width, height int32, keep bool) (*shmBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("wayland: invalid buffer size %dx%d", width, height)
	}
	stride := width * 4
	size := int(stride * height)

	fd, err := unix.MemfdCreate("wayloop-shm", unix.MFD_CLOEXEC|unix.MFD_ALLOW_SEALING)
	if err != nil {
		return nil, fmt.Errorf("memfd_create: %w", err)
	}
	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("ftruncate: %w", err)
	}
	data, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("mmap: %w", err)
	}

	pool, err := b.shm.CreatePool(fd, int32(size))
	if err != nil {
		unix.Munmap(data)
		unix.Close(fd)
		return nil, fmt.Errorf("create shm pool: %w", err)
	}
	defer pool.Destroy()

	buffer, err := pool.CreateBuffer(0, width, height, stride, uint32(client.ShmFormatArgb8888))
	if err != nil {
		unix.Munmap(data)
		unix.Close(fd)
		return nil, fmt.Errorf("create buffer: %w", err)
	}

	s := &shmBuffer{fd: fd, data: data, width: width, height: height, buffer: buffer}
	if !keep {
		buffer.SetReleaseHandler(func(client.BufferReleaseEvent) {
			b.mu.Lock()
			defer b.mu.Unlock()
			s.destroy()
		})
	}
	return s, nil
}

func (s *shmBuffer) destroy() {
	if s.buffer == nil {
		return
	}
	s.buffer.Destroy()
	s.buffer = nil
	unix.Munmap(s.data)
	unix.Close(s.fd)
}

// fill copies img into the buffer as premultiplied little-endian ARGB.
func (s *shmBuffer) fill(img *image.RGBA) {
	copyARGB(s.data, img, int(s.width), int(s.height))
}

// copyARGB converts img, whose RGBA pixels are already premultiplied, into
// the byte order of WL_SHM_FORMAT_ARGB8888 on a little-endian host.
func copyARGB(dst []byte, img *image.RGBA, width, height int) {
	b := img.Bounds()
	for y := 0; y < height && y < b.Dy(); y++ {
		src := img.Pix[y*img.Stride:]
		row := dst[y*width*4:]
		for x := 0; x < width && x < b.Dx(); x++ {
			r, g, bl, a := src[x*4], src[x*4+1], src[x*4+2], src[x*4+3]
			row[x*4], row[x*4+1], row[x*4+2], row[x*4+3] = bl, g, r, a
		}
	}
}

// Present attaches img to the surface of window or lock surface id at the
// given buffer scale and commits it.
func (b *Backend) Present(id window.ID, img *image.RGBA, scale int32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	surface, ok := b.surfaceOf(id)
	if !ok {
		return fmt.Errorf("wayland: unknown window %s", id)
	}
	return b.attach(surface, img, scale)
}

// attach uploads img to surface and commits. Caller holds mu.
func (b *Backend) attach(surface *client.Surface, img *image.RGBA, scale int32) error {
	bounds := img.Bounds()
	buf, err := b.newShmBuffer(int32(bounds.Dx()), int32(bounds.Dy()), false)
	if err != nil {
		return err
	}
	buf.fill(img)

	if err := surface.SetBufferScale(max(scale, 1)); err != nil {
		return err
	}
	if err := surface.Attach(buf.buffer, 0, 0); err != nil {
		return err
	}
	if err := surface.DamageBuffer(0, 0, buf.width, buf.height); err != nil {
		return err
	}
	return surface.Commit()
}

// RequestFrame asks for a FrameDone event when it is a good time to draw
// window id again. The request applies with the next commit.
func (b *Backend) RequestFrame(id window.ID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	surface, ok := b.surfaceOf(id)
	if !ok {
		return fmt.Errorf("wayland: unknown window %s", id)
	}
	callback, err := surface.Frame()
	if err != nil {
		return fmt.Errorf("frame callback: %w", err)
	}
	callback.SetDoneHandler(func(client.CallbackDoneEvent) {
		b.emit(backend.FrameDone{Surface: id})
	})
	return nil
}

// cursorSize is the logical edge of the cursor images.
const cursorSize = 24

// cursorNames lists the theme names tried for each icon, CSS names first.
var cursorNames = map[window.CursorIcon][]string{
	window.CursorDefault:    {"default", cursor.LeftPtr},
	window.CursorPointer:    {"pointer", "hand2", cursor.Hand1},
	window.CursorText:       {"text", cursor.Xterm},
	window.CursorMove:       {"move", "fleur", cursor.Grabbing},
	window.CursorNResize:    {"n-resize", cursor.TopSide},
	window.CursorSResize:    {"s-resize", cursor.BottomSide},
	window.CursorEResize:    {"e-resize", cursor.RightSide},
	window.CursorWResize:    {"w-resize", cursor.LeftSide},
	window.CursorNEResize:   {"ne-resize", cursor.TopRightCorner},
	window.CursorNWResize:   {"nw-resize", cursor.TopLeftCorner},
	window.CursorSEResize:   {"se-resize", cursor.BottomRightCorner},
	window.CursorSWResize:   {"sw-resize", cursor.BottomLeftCorner},
	window.CursorNotAllowed: {"not-allowed", "crossed_circle"},
}

// cursorImage is a cursor surface with its hotspot.
type cursorImage struct {
	surface  *client.Surface
	hotspotX int32
	hotspotY int32

	// set for generated images; theme buffers belong to the theme
	buffer *shmBuffer
}

// cursorTheme serves cursor surfaces from the XCURSOR_THEME theme. Icons
// the theme lacks, or every icon when no theme loads, are generated.
type cursorTheme struct {
	b      *Backend
	theme  *cursor.Theme
	images map[window.CursorIcon]*cursorImage
}

// newCursorTheme loads the user's cursor theme. Caller holds mu or runs
// before the reader goroutine starts.
func newCursorTheme(b *Backend) *cursorTheme {
	c := &cursorTheme{b: b, images: make(map[window.CursorIcon]*cursorImage)}
	size := cursorSize
	if v, err := strconv.Atoi(os.Getenv("XCURSOR_SIZE")); err == nil && v > 0 {
		size = v
	}
	theme, err := cursor.LoadTheme(os.Getenv("XCURSOR_THEME"), size, b.shm)
	if err != nil {
		b.log.Debug("no cursor theme, using generated cursors", "err", err)
		return c
	}
	c.theme = theme
	return c
}

// get returns the surface showing icon. Caller holds mu.
func (c *cursorTheme) get(icon window.CursorIcon) (*cursorImage, error) {
	if img, ok := c.images[icon]; ok {
		return img, nil
	}

	img, err := c.fromTheme(icon)
	if err != nil {
		return nil, err
	}
	if img == nil {
		if img, err = c.generate(icon); err != nil {
			return nil, err
		}
	}
	c.images[icon] = img
	return img, nil
}

// fromTheme returns nil when the theme has no image for icon.
func (c *cursorTheme) fromTheme(icon window.CursorIcon) (*cursorImage, error) {
	if c.theme == nil {
		return nil, nil
	}
	var found *cursor.Cursor
	for _, name := range cursorNames[icon] {
		if found = c.theme.GetCursor(name); found != nil && len(found.Images) > 0 {
			break
		}
	}
	if found == nil || len(found.Images) == 0 {
		return nil, nil
	}

	frame := &found.Images[0]
	buffer, err := frame.GetBuffer()
	if err != nil {
		return nil, fmt.Errorf("cursor buffer: %w", err)
	}
	surface, err := c.show(buffer, int32(frame.Width), int32(frame.Height))
	if err != nil {
		return nil, err
	}
	return &cursorImage{surface: surface, hotspotX: int32(frame.HotspotX), hotspotY: int32(frame.HotspotY)}, nil
}

func (c *cursorTheme) generate(icon window.CursorIcon) (*cursorImage, error) {
	pixels, hx, hy := drawCursor(icon)
	buf, err := c.b.newShmBuffer(cursorSize, cursorSize, true)
	if err != nil {
		return nil, err
	}
	buf.fill(pixels)

	surface, err := c.show(buf.buffer, cursorSize, cursorSize)
	if err != nil {
		buf.destroy()
		return nil, err
	}
	return &cursorImage{surface: surface, buffer: buf, hotspotX: hx, hotspotY: hy}, nil
}

// show creates a surface with buffer committed on it.
func (c *cursorTheme) show(buffer *client.Buffer, width, height int32) (*client.Surface, error) {
	surface, err := c.b.compositor.CreateSurface()
	if err != nil {
		return nil, fmt.Errorf("create cursor surface: %w", err)
	}
	if err := surface.Attach(buffer, 0, 0); err != nil {
		surface.Destroy()
		return nil, err
	}
	if err := surface.Damage(0, 0, width, height); err != nil {
		surface.Destroy()
		return nil, err
	}
	if err := surface.Commit(); err != nil {
		surface.Destroy()
		return nil, err
	}
	return surface, nil
}

// Caller holds mu.
func (c *cursorTheme) destroy() {
	for icon, img := range c.images {
		img.surface.Destroy()
		if img.buffer != nil {
			img.buffer.destroy()
		}
		delete(c.images, icon)
	}
	if c.theme != nil {
		if err := c.theme.Destroy(); err != nil {
			c.b.log.Debug("failed to destroy cursor theme", "err", err)
		}
		c.theme = nil
	}
}

var (
	cursorFill    = color.RGBA{0xff, 0xff, 0xff, 0xff}
	cursorOutline = color.RGBA{0x00, 0x00, 0x00, 0xff}
)

// drawCursor renders a fallback image for icon and returns its hotspot.
// Resize cursors are a two-headed line; everything else is a crosshair or
// an arrow.
func drawCursor(icon window.CursorIcon) (*image.RGBA, int32, int32) {
	img := image.NewRGBA(image.Rect(0, 0, cursorSize, cursorSize))
	const mid = cursorSize / 2

	line := func(x0, y0, dx, dy, n int) {
		for i := range n {
			x, y := x0+dx*i, y0+dy*i
			draw.Draw(img, image.Rect(x-1, y-1, x+2, y+2), image.NewUniform(cursorOutline), image.Point{}, draw.Over)
		}
		for i := range n {
			img.SetRGBA(x0+dx*i, y0+dy*i, cursorFill)
		}
	}

	switch icon {
	case window.CursorNResize, window.CursorSResize:
		line(mid, 2, 0, 1, cursorSize-4)
		return img, mid, mid
	case window.CursorEResize, window.CursorWResize:
		line(2, mid, 1, 0, cursorSize-4)
		return img, mid, mid
	case window.CursorNWResize, window.CursorSEResize:
		line(3, 3, 1, 1, cursorSize-6)
		return img, mid, mid
	case window.CursorNEResize, window.CursorSWResize:
		line(cursorSize-4, 3, -1, 1, cursorSize-6)
		return img, mid, mid
	case window.CursorText, window.CursorMove:
		line(mid, 2, 0, 1, cursorSize-4)
		line(2, mid, 1, 0, cursorSize-4)
		return img, mid, mid
	default:
		// Arrow: a filled triangle with its tip at the hotspot.
		for y := 1; y < 17; y++ {
			for x := 1; x <= y/2+1; x++ {
				c := cursorFill
				if x == 1 || x == y/2+1 || y == 16 {
					c = cursorOutline
				}
				img.SetRGBA(x, y, c)
			}
		}
		return img, 1, 1
	}
}
