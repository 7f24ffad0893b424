package decor

import (
	"image/color"
	"os"
	"strings"

	"github.com/bnema/wayloop/window"
)

type palette struct {
	header         color.RGBA
	headerInactive color.RGBA
	text           color.RGBA
	textInactive   color.RGBA
	buttonHover    color.RGBA
	buttonPressed  color.RGBA
	closeHover     color.RGBA
}

var (
	lightPalette = palette{
		header:         color.RGBA{0xeb, 0xeb, 0xeb, 0xff},
		headerInactive: color.RGBA{0xfa, 0xfa, 0xfa, 0xff},
		text:           color.RGBA{0x1e, 0x1e, 0x1e, 0xff},
		textInactive:   color.RGBA{0x85, 0x85, 0x85, 0xff},
		buttonHover:    color.RGBA{0xd5, 0xd5, 0xd5, 0xff},
		buttonPressed:  color.RGBA{0xc0, 0xc0, 0xc0, 0xff},
		closeHover:     color.RGBA{0xe0, 0x1b, 0x24, 0xff},
	}
	darkPalette = palette{
		header:         color.RGBA{0x30, 0x30, 0x30, 0xff},
		headerInactive: color.RGBA{0x24, 0x24, 0x24, 0xff},
		text:           color.RGBA{0xff, 0xff, 0xff, 0xff},
		textInactive:   color.RGBA{0x91, 0x91, 0x91, 0xff},
		buttonHover:    color.RGBA{0x47, 0x47, 0x47, 0xff},
		buttonPressed:  color.RGBA{0x5a, 0x5a, 0x5a, 0xff},
		closeHover:     color.RGBA{0xc0, 0x1c, 0x28, 0xff},
	}
)

// paletteFor resolves a theme. Auto follows a ":dark" GTK_THEME variant.
func paletteFor(theme window.Theme) palette {
	switch theme {
	case window.ThemeDark:
		return darkPalette
	case window.ThemeLight:
		return lightPalette
	}
	if strings.HasSuffix(strings.ToLower(os.Getenv("GTK_THEME")), ":dark") {
		return darkPalette
	}
	return lightPalette
}
