package wayland

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/rajveermalviya/go-wayland/wayland/client"
	"github.com/rajveermalviya/go-wayland/wayland/stable/viewporter"
	xdg_shell "github.com/rajveermalviya/go-wayland/wayland/stable/xdg-shell"
	xdg_decoration "github.com/rajveermalviya/go-wayland/wayland/unstable/xdg-decoration-v1"

	"github.com/bnema/wayloop/backend"
	"github.com/bnema/wayloop/dpi"
	"github.com/bnema/wayloop/window"
)

// toplevel is a window surface with its xdg objects. It implements
// window.Toplevel; every request takes the backend lock.
type toplevel struct {
	b       *Backend
	id      window.ID
	surface *client.Surface
	xdg     *xdg_shell.Surface
	role    *xdg_shell.Toplevel

	// nil without a decoration manager
	decoration *xdg_decoration.ToplevelDecoration

	// Outputs the surface is shown on, by proxy id.
	outputs map[uint32]bool

	pending window.Configure
}

// Caller holds mu.
func (b *Backend) newToplevel(attrs window.Attributes) (*toplevel, error) {
	surface, err := b.compositor.CreateSurface()
	if err != nil {
		return nil, fmt.Errorf("create surface: %w", err)
	}
	xdgSurface, err := b.wmBase.GetXdgSurface(surface)
	if err != nil {
		surface.Destroy()
		return nil, fmt.Errorf("get xdg surface: %w", err)
	}
	role, err := xdgSurface.GetToplevel()
	if err != nil {
		xdgSurface.Destroy()
		surface.Destroy()
		return nil, fmt.Errorf("get xdg toplevel: %w", err)
	}

	t := &toplevel{
		b:       b,
		id:      b.nextID(surface),
		surface: surface,
		xdg:     xdgSurface,
		role:    role,
		outputs: make(map[uint32]bool),
	}
	t.pending.Capabilities = window.CapAll

	if b.decorations != nil {
		decoration, err := b.decorations.GetToplevelDecoration(role)
		if err != nil {
			b.log.Warn("failed to get toplevel decoration", "err", err)
		} else {
			t.decoration = decoration
			decoration.SetConfigureHandler(t.handleDecorationConfigure)
		}
	}

	role.SetConfigureHandler(t.handleToplevelConfigure)
	role.SetConfigureBoundsHandler(t.handleConfigureBounds)
	role.SetWmCapabilitiesHandler(t.handleWMCapabilities)
	role.SetCloseHandler(func(xdg_shell.ToplevelCloseEvent) {
		b.emit(backend.CloseRequested{Surface: t.id})
	})
	xdgSurface.SetConfigureHandler(t.handleSurfaceConfigure)
	surface.SetEnterHandler(t.handleEnter)
	surface.SetLeaveHandler(t.handleLeave)

	b.windows[surface.ID()] = t
	b.log.Debug("created toplevel", "window", t.id, "title", attrs.Title)
	return t, nil
}

func (t *toplevel) handleToplevelConfigure(e xdg_shell.ToplevelConfigureEvent) {
	t.b.mu.Lock()
	defer t.b.mu.Unlock()
	t.pending.NewSize = dpi.Size(uint32(max(e.Width, 0)), uint32(max(e.Height, 0)))
	t.pending.State = decodeStates(e.States)
}

func (t *toplevel) handleConfigureBounds(e xdg_shell.ToplevelConfigureBoundsEvent) {
	t.b.mu.Lock()
	defer t.b.mu.Unlock()
	t.pending.SuggestedBounds = dpi.Size(uint32(max(e.Width, 0)), uint32(max(e.Height, 0)))
}

func (t *toplevel) handleWMCapabilities(e xdg_shell.ToplevelWmCapabilitiesEvent) {
	t.b.mu.Lock()
	defer t.b.mu.Unlock()
	t.pending.Capabilities = decodeCapabilities(e.Capabilities)
}

func (t *toplevel) handleDecorationConfigure(e xdg_decoration.ToplevelDecorationConfigureEvent) {
	t.b.mu.Lock()
	defer t.b.mu.Unlock()
	t.pending.DecorationMode = decorationMode(e.Mode)
}

// handleSurfaceConfigure ends a configure sequence. The decoration mode
// stays client-side until a decoration manager says otherwise.
func (t *toplevel) handleSurfaceConfigure(e xdg_shell.SurfaceConfigureEvent) {
	t.b.mu.Lock()
	if err := t.xdg.AckConfigure(e.Serial); err != nil {
		t.b.mu.Unlock()
		t.b.log.Warn("failed to ack configure", "window", t.id, "err", err)
		return
	}
	cfg := t.pending
	t.b.mu.Unlock()

	t.b.emit(backend.Configure{Surface: t.id, Config: cfg})
}

func (t *toplevel) handleEnter(e client.SurfaceEnterEvent) {
	if e.Output == nil {
		return
	}
	t.b.mu.Lock()
	t.outputs[e.Output.ID()] = true
	scale := t.b.scaleOf(t)
	t.b.mu.Unlock()

	t.b.emit(
		backend.SurfaceEnter{Surface: t.id, Output: window.OutputID(e.Output.ID())},
		backend.ScaleChanged{Surface: t.id, Factor: scale},
	)
}

func (t *toplevel) handleLeave(e client.SurfaceLeaveEvent) {
	if e.Output == nil {
		return
	}
	t.b.mu.Lock()
	delete(t.outputs, e.Output.ID())
	scale := t.b.scaleOf(t)
	t.b.mu.Unlock()

	t.b.emit(
		backend.SurfaceLeave{Surface: t.id, Output: window.OutputID(e.Output.ID())},
		backend.ScaleChanged{Surface: t.id, Factor: scale},
	)
}

// decodeStates reads the xdg_toplevel state array. Values start at 1 and
// follow the order of the window.State bits; unknown values are ignored.
func decodeStates(raw []byte) window.State {
	var state window.State
	for len(raw) >= 4 {
		v := binary.NativeEndian.Uint32(raw)
		raw = raw[4:]
		if v >= 1 && v <= 9 {
			state |= window.State(1) << (v - 1)
		}
	}
	return state
}

// decodeCapabilities reads the xdg_toplevel wm_capabilities array. Values
// start at 1 and follow the order of the window.WMCapabilities bits.
func decodeCapabilities(raw []byte) window.WMCapabilities {
	var caps window.WMCapabilities
	for len(raw) >= 4 {
		v := binary.NativeEndian.Uint32(raw)
		raw = raw[4:]
		if v >= 1 && v <= 4 {
			caps |= window.WMCapabilities(1) << (v - 1)
		}
	}
	return caps
}

func decorationMode(mode uint32) window.DecorationMode {
	if xdg_decoration.ToplevelDecorationMode(mode) == xdg_decoration.ToplevelDecorationModeServerSide {
		return window.DecorationServer
	}
	return window.DecorationClient
}

func clampInt32(v uint32) int32 {
	return int32(min(v, math.MaxInt32))
}

func (t *toplevel) lock() func() {
	t.b.mu.Lock()
	return t.b.mu.Unlock
}

func (t *toplevel) SetTitle(title string) error {
	defer t.lock()()
	return t.role.SetTitle(title)
}

func (t *toplevel) SetAppID(id string) error {
	defer t.lock()()
	return t.role.SetAppId(id)
}

func (t *toplevel) SetMinSize(width, height uint32) error {
	defer t.lock()()
	return t.role.SetMinSize(clampInt32(width), clampInt32(height))
}

func (t *toplevel) SetMaxSize(width, height uint32) error {
	defer t.lock()()
	return t.role.SetMaxSize(clampInt32(width), clampInt32(height))
}

func (t *toplevel) SetWindowGeometry(x, y int32, width, height uint32) error {
	defer t.lock()()
	return t.xdg.SetWindowGeometry(x, y, clampInt32(width), clampInt32(height))
}

// SetOpaque marks the whole surface opaque with an unbounded region.
func (t *toplevel) SetOpaque(opaque bool) error {
	defer t.lock()()
	if !opaque {
		return t.surface.SetOpaqueRegion(nil)
	}
	region, err := t.b.compositor.CreateRegion()
	if err != nil {
		return fmt.Errorf("create region: %w", err)
	}
	defer region.Destroy()
	if err := region.Add(0, 0, math.MaxInt32, math.MaxInt32); err != nil {
		return err
	}
	return t.surface.SetOpaqueRegion(region)
}

// RequestDecorationMode asks the decoration manager for mode. Without one
// the request is dropped and configures keep reporting client-side
// decorations.
func (t *toplevel) RequestDecorationMode(mode window.DecorationMode) error {
	defer t.lock()()
	if t.decoration == nil {
		t.b.log.Debug("no decoration manager, keeping client-side decorations", "window", t.id, "mode", mode)
		return nil
	}
	want := xdg_decoration.ToplevelDecorationModeClientSide
	if mode == window.DecorationServer {
		want = xdg_decoration.ToplevelDecorationModeServerSide
	}
	return t.decoration.SetMode(uint32(want))
}

func (t *toplevel) SetMaximized(maximized bool) error {
	defer t.lock()()
	if maximized {
		return t.role.SetMaximized()
	}
	return t.role.UnsetMaximized()
}

func (t *toplevel) SetFullscreen(fullscreen bool, out window.OutputID) error {
	defer t.lock()()
	if fullscreen {
		return t.role.SetFullscreen(t.b.outputByID(out))
	}
	return t.role.UnsetFullscreen()
}

func (t *toplevel) SetMinimized() error {
	defer t.lock()()
	return t.role.SetMinimized()
}

func (t *toplevel) Move(g window.Grab) error {
	defer t.lock()()
	s, ok := t.b.seats[g.Seat]
	if !ok {
		return fmt.Errorf("wayland: unknown seat %d", g.Seat)
	}
	return t.role.Move(s.proxy, g.Serial)
}

func (t *toplevel) Resize(g window.Grab, edge window.ResizeEdge) error {
	defer t.lock()()
	s, ok := t.b.seats[g.Seat]
	if !ok {
		return fmt.Errorf("wayland: unknown seat %d", g.Seat)
	}
	return t.role.Resize(s.proxy, g.Serial, uint32(edge))
}

func (t *toplevel) ShowWindowMenu(g window.Grab, x, y int32) error {
	defer t.lock()()
	s, ok := t.b.seats[g.Seat]
	if !ok {
		return fmt.Errorf("wayland: unknown seat %d", g.Seat)
	}
	return t.role.ShowWindowMenu(s.proxy, g.Serial, x, y)
}

func (t *toplevel) Commit() error {
	defer t.lock()()
	return t.surface.Commit()
}

func (t *toplevel) Destroy() error {
	defer t.lock()()
	delete(t.b.windows, t.surface.ID())
	if t.decoration != nil {
		if err := t.decoration.Destroy(); err != nil {
			return err
		}
	}
	if err := t.role.Destroy(); err != nil {
		return err
	}
	if err := t.xdg.Destroy(); err != nil {
		return err
	}
	return t.surface.Destroy()
}

// viewport implements window.Viewport on a wp_viewport.
type viewport struct {
	b     *Backend
	proxy *viewporter.Viewport
}

func (v *viewport) SetDestination(width, height uint32) error {
	v.b.mu.Lock()
	defer v.b.mu.Unlock()
	return v.proxy.SetDestination(clampInt32(width), clampInt32(height))
}

func (v *viewport) Destroy() error {
	v.b.mu.Lock()
	defer v.b.mu.Unlock()
	return v.proxy.Destroy()
}
