package wayland

import (
	"fmt"
	"image"

	"github.com/rajveermalviya/go-wayland/wayland/client"

	"github.com/bnema/wayloop/backend"
	"github.com/bnema/wayloop/decor"
	"github.com/bnema/wayloop/window"
)

// canvas shows the decoration parts of a window on subsurfaces of its
// surface. It implements decor.Canvas.
type canvas struct {
	b      *Backend
	parent window.ID
	parts  map[decor.Part]*part
}

type part struct {
	id      window.ID
	surface *client.Surface
	sub     *client.Subsurface
	visible bool
}

func (b *Backend) newCanvas(parent window.ID) (decor.Canvas, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.windows[parent.Object()]
	if !ok || t.id != parent {
		return nil, fmt.Errorf("wayland: unknown window %s", parent)
	}
	if b.subcompositor == nil {
		return nil, fmt.Errorf("%w: wl_subcompositor", backend.ErrUnsupported)
	}

	c := &canvas{b: b, parent: parent, parts: make(map[decor.Part]*part)}
	for _, p := range []decor.Part{decor.PartHeader, decor.PartTop, decor.PartBottom, decor.PartLeft, decor.PartRight} {
		surface, err := b.compositor.CreateSurface()
		if err != nil {
			c.destroyLocked()
			return nil, fmt.Errorf("create %s surface: %w", p, err)
		}
		sub, err := b.subcompositor.GetSubsurface(surface, t.surface)
		if err != nil {
			surface.Destroy()
			c.destroyLocked()
			return nil, fmt.Errorf("get %s subsurface: %w", p, err)
		}
		if err := sub.SetDesync(); err != nil {
			b.log.Debug("failed to desync decoration", "part", p, "err", err)
		}
		pt := &part{id: b.nextID(surface), surface: surface, sub: sub}
		c.parts[p] = pt
		b.parts[surface.ID()] = backend.SurfaceRef{Surface: pt.id, Parent: parent}
	}
	return c, nil
}

func (c *canvas) Surface(p decor.Part) window.ID {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if pt, ok := c.parts[p]; ok {
		return pt.id
	}
	return window.ID{}
}

func (c *canvas) Place(p decor.Part, r decor.Rect) {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	pt, ok := c.parts[p]
	if !ok {
		return
	}
	if err := pt.sub.SetPosition(r.X, r.Y); err != nil {
		c.b.log.Debug("failed to place decoration", "part", p, "err", err)
	}
	pt.visible = true
}

func (c *canvas) Hide(p decor.Part) {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	pt, ok := c.parts[p]
	if !ok || !pt.visible {
		return
	}
	pt.visible = false
	if err := pt.surface.Attach(nil, 0, 0); err != nil {
		c.b.log.Debug("failed to detach decoration", "part", p, "err", err)
		return
	}
	if err := pt.surface.Commit(); err != nil {
		c.b.log.Debug("failed to commit decoration", "part", p, "err", err)
	}
}

func (c *canvas) Paint(p decor.Part, img *image.RGBA, scale int32) error {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	pt, ok := c.parts[p]
	if !ok {
		return fmt.Errorf("wayland: unknown decoration part %s", p)
	}
	if img.Bounds().Empty() {
		return nil
	}
	return c.b.attach(pt.surface, img, scale)
}

func (c *canvas) Destroy() {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	c.destroyLocked()
}

// Caller holds mu.
func (c *canvas) destroyLocked() {
	for p, pt := range c.parts {
		delete(c.b.parts, pt.surface.ID())
		if err := pt.sub.Destroy(); err != nil {
			c.b.log.Debug("failed to destroy subsurface", "part", p, "err", err)
		}
		if err := pt.surface.Destroy(); err != nil {
			c.b.log.Debug("failed to destroy decoration surface", "part", p, "err", err)
		}
		delete(c.parts, p)
	}
}
