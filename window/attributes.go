package window

import "github.com/bnema/wayloop/dpi"

// Theme selects the palette of client-side decorations.
type Theme int

const (
	ThemeAuto Theme = iota
	ThemeLight
	ThemeDark
)

// ParseTheme maps "light", "dark" and anything else to a Theme.
func ParseTheme(s string) Theme {
	switch s {
	case "light":
		return ThemeLight
	case "dark":
		return ThemeDark
	default:
		return ThemeAuto
	}
}

func (t Theme) String() string {
	switch t {
	case ThemeLight:
		return "light"
	case ThemeDark:
		return "dark"
	default:
		return "auto"
	}
}

// ApplicationName is the general and instance name used to identify the application.
type ApplicationName struct {
	General  string
	Instance string
}

// Attributes describe a window to be created.
type Attributes struct {
	Title        string
	AppID        string
	AppName      *ApplicationName
	Size         *dpi.LogicalSize
	MinSize      *dpi.LogicalSize
	MaxSize      *dpi.LogicalSize
	Visible      bool
	Resizable    bool
	Maximized    bool
	Fullscreen   bool
	Decorations  bool
	HideTitlebar bool
	Transparent  bool
	Theme        Theme
}

// DefaultAttributes returns the attributes used when nothing is customised.
func DefaultAttributes() Attributes {
	return Attributes{
		Title:       "Wayland window",
		AppID:       "wayland.window",
		Visible:     true,
		Decorations: true,
	}
}

func (a Attributes) WithTitle(title string) Attributes {
	a.Title = title
	return a
}

func (a Attributes) WithAppID(id string) Attributes {
	a.AppID = id
	return a
}

// WithApplicationName sets the name pair; its general part takes precedence over AppID.
func (a Attributes) WithApplicationName(general, instance string) Attributes {
	a.AppName = &ApplicationName{General: general, Instance: instance}
	return a
}

func (a Attributes) WithSize(width, height uint32) Attributes {
	s := dpi.Size(width, height)
	a.Size = &s
	return a
}

func (a Attributes) WithMinSize(width, height uint32) Attributes {
	s := dpi.Size(width, height)
	a.MinSize = &s
	return a
}

func (a Attributes) WithMaxSize(width, height uint32) Attributes {
	s := dpi.Size(width, height)
	a.MaxSize = &s
	return a
}

func (a Attributes) WithVisible(visible bool) Attributes {
	a.Visible = visible
	return a
}

func (a Attributes) WithResizable(resizable bool) Attributes {
	a.Resizable = resizable
	return a
}

func (a Attributes) WithMaximized(maximized bool) Attributes {
	a.Maximized = maximized
	return a
}

func (a Attributes) WithFullscreen(fullscreen bool) Attributes {
	a.Fullscreen = fullscreen
	return a
}

func (a Attributes) WithDecorations(decorations bool) Attributes {
	a.Decorations = decorations
	return a
}

func (a Attributes) WithTitlebarHidden(hidden bool) Attributes {
	a.HideTitlebar = hidden
	return a
}

func (a Attributes) WithTransparent(transparent bool) Attributes {
	a.Transparent = transparent
	return a
}

func (a Attributes) WithTheme(theme Theme) Attributes {
	a.Theme = theme
	return a
}

// ResolvedAppID returns the application id announced to the compositor.
func (a Attributes) ResolvedAppID() string {
	if a.AppName != nil && a.AppName.General != "" {
		return a.AppName.General
	}
	return a.AppID
}
