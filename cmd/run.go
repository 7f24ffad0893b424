package cmd

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/bnema/wayloop/a11y"
	"github.com/bnema/wayloop/dpi"
	"github.com/bnema/wayloop/eventloop"
	"github.com/bnema/wayloop/internal/config"
	"github.com/bnema/wayloop/internal/logger"
	"github.com/bnema/wayloop/internal/ui"
	"github.com/bnema/wayloop/internal/wayland"
	"github.com/bnema/wayloop/seat"
	"github.com/bnema/wayloop/window"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open windows on the running compositor",
	Long: `Run connects to the Wayland compositor named by WAYLAND_DISPLAY, opens the
configured number of windows and logs every callback the event loop makes.
Press Escape to close a window, M to toggle maximize and F to toggle
fullscreen. The command ends when the last window closes or on Ctrl-C.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().Int("windows", 0, "number of windows to open (overrides window.count)")
	runCmd.Flags().String("title", "", "window title (overrides window.title)")
	runCmd.Flags().String("display", "", "Wayland display name (defaults to WAYLAND_DISPLAY)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	if n, _ := cmd.Flags().GetInt("windows"); n > 0 {
		cfg.Window.Count = n
	}
	if title, _ := cmd.Flags().GetString("title"); title != "" {
		cfg.Window.Title = title
	}
	display, _ := cmd.Flags().GetString("display")

	opts := []wayland.Option{wayland.WithBuffer(cfg.Loop.EventBuffer)}
	if display != "" {
		opts = append(opts, wayland.WithDisplay(display))
	}
	conn, err := wayland.Connect(opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to compositor: %w", err)
	}
	defer conn.Close()

	subtitle := os.Getenv("WAYLAND_DISPLAY")
	if display != "" {
		subtitle = display
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.FormatAppHeader("RUN", subtitle))
	fmt.Fprintln(cmd.OutOrStdout(), ui.FormatControl("Escape", "close the focused window"))
	fmt.Fprintln(cmd.OutOrStdout(), ui.FormatControl("M / F", "toggle maximized / fullscreen"))
	fmt.Fprintln(cmd.OutOrStdout(), ui.FormatControl("Ctrl-C", "quit"))

	loop, handle := eventloop.New[string](conn, cfg.LoopOptions()...)

	attrs := cfg.WindowAttributes()
	for i := 0; i < max(cfg.Window.Count, 1); i++ {
		if err := handle.RequestWindow(attrs); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		handle.Stop()
	}()

	app := newDemoApp(conn, loop.Windows, window.ParseTheme(cfg.Window.Theme))
	if err := loop.Run(ctx, app); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.FormatResult(true, fmt.Sprintf("event loop finished after %d draw(s)", app.draws)))
	return nil
}

// presenter uploads window contents.
type presenter interface {
	Present(id window.ID, img *image.RGBA, scale int32) error
}

const (
	keyEsc = 1
	keyF   = 33
	keyM   = 50
)

// demoApp paints each window with a solid color and logs callbacks.
type demoApp struct {
	eventloop.NopHandler[string]
	out     presenter
	windows func() *window.Registry
	theme   window.Theme
	log     *log.Logger

	pressed map[window.ID]bool
	draws   int
}

func newDemoApp(out presenter, windows func() *window.Registry, theme window.Theme) *demoApp {
	return &demoApp{
		out:     out,
		windows: windows,
		theme:   theme,
		log:     logger.WithPrefix("run"),
		pressed: make(map[window.ID]bool),
	}
}

func (a *demoApp) CreateWindow(id window.ID) { a.log.Info("window created", "window", id) }

func (a *demoApp) Rescale(id window.ID, factor float64) {
	a.log.Info("scale factor changed", "window", id, "factor", factor)
}

func (a *demoApp) Resize(id window.ID, size dpi.PhysicalSize) {
	a.log.Info("window resized", "window", id, "size", size)
}

func (a *demoApp) AccessibilityActivate(id window.ID, _ *a11y.Adapter) {
	a.log.Debug("accessibility activated", "window", id)
}

func (a *demoApp) Keyboard(id window.ID, ev seat.KeyboardEvent) {
	a.log.Debug("key", "window", id, "key", ev.Key, "state", ev.State, "modifiers", ev.Modifiers)
	if ev.State != seat.KeyPressed {
		return
	}
	windows := a.windows()
	w, ok := windows.Get(id)
	if !ok {
		return
	}
	switch ev.Key {
	case keyEsc:
		windows.RequestClose(id)
	case keyM:
		w.SetMaximized(!w.IsMaximized())
	case keyF:
		w.SetFullscreen(!w.IsFullscreen())
	}
}

func (a *demoApp) Pointer(id window.ID, ev seat.PointerEvent) {
	switch ev.Kind {
	case seat.PointerDown:
		a.pressed[id] = true
	case seat.PointerUp, seat.PointerLeave, seat.PointerCancel:
		a.pressed[id] = false
	}
	a.log.Debug("pointer", "window", id, "kind", ev.Kind, "position", ev.State.Position)
}

func (a *demoApp) Focus(id window.ID, focused bool) {
	a.log.Info("focus changed", "window", id, "focused", focused)
}

func (a *demoApp) Draw(id window.ID, _ *a11y.Adapter) {
	w, ok := a.windows().Get(id)
	if !ok {
		return
	}
	size := w.PhysicalSize()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	img := image.NewRGBA(image.Rect(0, 0, int(size.Width), int(size.Height)))
	draw.Draw(img, img.Bounds(), image.NewUniform(a.fill(id, w.Transparent())), image.Point{}, draw.Src)
	if err := a.out.Present(id, img, w.Scale()); err != nil {
		a.log.Error("failed to present window", "window", id, "err", err)
		return
	}
	a.draws++
}

func (a *demoApp) fill(id window.ID, transparent bool) color.RGBA {
	c := color.RGBA{0xf4, 0xf4, 0xf4, 0xff}
	if a.theme == window.ThemeDark {
		c = color.RGBA{0x24, 0x24, 0x28, 0xff}
	}
	if a.pressed[id] {
		c = color.RGBA{0x00, 0x87, 0xff, 0xff}
	}
	if transparent {
		// Premultiplied
		c = color.RGBA{c.R / 2, c.G / 2, c.B / 2, 0x80}
	}
	return c
}

func (a *demoApp) Close(id window.ID) {
	delete(a.pressed, id)
	a.log.Info("window closed", "window", id)
}

var _ eventloop.ApplicationHandler[string] = (*demoApp)(nil)
