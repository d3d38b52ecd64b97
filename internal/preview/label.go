package preview

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Label writes text with its baseline at (x, y) over a dark shadow.
func Label(img draw.Image, x, y int, text string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.NRGBA{0, 0, 0, 200}),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x+1, y+1),
	}
	d.DrawString(text)
	d.Src = image.NewUniform(col)
	d.Dot = fixed.P(x, y)
	d.DrawString(text)
}
