package decor

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/bnema/wayloop/internal/logger"
	"github.com/bnema/wayloop/window"
)

const (
	titleSize = 13
	iconSize  = 10
	ellipsis  = "…"
)

var titleFont = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(gobold.TTF)
})

// titleFace returns the face for the header title at scale, falling back to
// the built-in bitmap face.
func titleFace(scale int32) font.Face {
	fnt, err := titleFont()
	if err != nil {
		return basicfont.Face7x13
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    float64(titleSize * scale),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return basicfont.Face7x13
	}
	return face
}

// faceFor returns the title face at scale, closing the one it replaces.
func (f *Frame) faceFor(scale int32) font.Face {
	if f.face == nil || f.faceScale != scale {
		f.closeFace()
		f.face = f.newFace(scale)
		f.faceScale = scale
	}
	return f.face
}

func (f *Frame) closeFace() {
	if f.face == nil {
		return
	}
	if err := f.face.Close(); err != nil {
		logger.Debugf("decor: close title face: %v", err)
	}
	f.face = nil
}

func transparent(r Rect, scale int32) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, int(r.Width)*int(scale), int(r.Height)*int(scale)))
}

func fill(img *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

// renderHeader paints the header bar in buffer pixels.
func (f *Frame) renderHeader(scale int32) *image.RGBA {
	s := int(scale)
	width := int(f.width) * s
	height := HeaderSize * s
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	active := f.state.Has(window.StateActivated)
	bg, fg := f.palette.headerInactive, f.palette.textInactive
	if active {
		bg, fg = f.palette.header, f.palette.text
	}
	fill(img, img.Bounds(), bg)

	buttons := f.buttons()
	hovered := f.hovered()
	for i, b := range buttons {
		x1 := width - i*buttonWidth*s
		r := image.Rect(x1-buttonWidth*s, 0, x1, height)
		switch {
		case b == f.pressed:
			fill(img, r, f.palette.buttonPressed)
		case b == hovered && b == buttonClose:
			fill(img, r, f.palette.closeHover)
		case b == hovered:
			fill(img, r, f.palette.buttonHover)
		}
		drawIcon(img, b, r, iconSize*s, fg)
	}

	titleWidth := width - len(buttons)*buttonWidth*s - 2*buttonWidth*s
	f.drawTitle(img, scale, titleWidth, fg)
	return img
}

func (f *Frame) drawTitle(img *image.RGBA, scale int32, maxWidth int, c color.Color) {
	if f.title == "" || maxWidth <= 0 {
		return
	}
	face := f.faceFor(scale)
	title := fitTitle(face, f.title, maxWidth)
	if title == "" {
		return
	}

	bounds := img.Bounds()
	advance := font.MeasureString(face, title).Round()
	metrics := face.Metrics()
	baseline := (bounds.Dy() + metrics.Ascent.Round() - metrics.Descent.Round()) / 2

	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P((bounds.Dx()-advance)/2, baseline),
	}
	d.DrawString(title)
}

// fitTitle shortens title with an ellipsis until it fits maxWidth pixels.
func fitTitle(face font.Face, title string, maxWidth int) string {
	if font.MeasureString(face, title).Round() <= maxWidth {
		return title
	}
	runes := []rune(title)
	for n := len(runes) - 1; n > 0; n-- {
		candidate := string(runes[:n]) + ellipsis
		if font.MeasureString(face, candidate).Round() <= maxWidth {
			return candidate
		}
	}
	return ""
}

// drawIcon draws the glyph of b centered in r.
func drawIcon(img *image.RGBA, b button, r image.Rectangle, size int, c color.Color) {
	cx, cy := (r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2
	x0, y0 := cx-size/2, cy-size/2
	thickness := max(size/10, 1)

	switch b {
	case buttonClose:
		for i := 0; i < size; i++ {
			for t := 0; t < thickness; t++ {
				img.Set(x0+i, y0+i+t, c)
				img.Set(x0+size-1-i, y0+i+t, c)
			}
		}
	case buttonMaximize:
		box := image.Rect(x0, y0, x0+size, y0+size)
		fill(img, image.Rect(box.Min.X, box.Min.Y, box.Max.X, box.Min.Y+thickness), c)
		fill(img, image.Rect(box.Min.X, box.Max.Y-thickness, box.Max.X, box.Max.Y), c)
		fill(img, image.Rect(box.Min.X, box.Min.Y, box.Min.X+thickness, box.Max.Y), c)
		fill(img, image.Rect(box.Max.X-thickness, box.Min.Y, box.Max.X, box.Max.Y), c)
	case buttonMinimize:
		fill(img, image.Rect(x0, y0+size-thickness, x0+size, y0+size), c)
	}
}
