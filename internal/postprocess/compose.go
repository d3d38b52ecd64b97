package postprocess

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// SideBySide places images left to right with gap pixels between them on a canvas filled
// with bg. Images are top-aligned.
func SideBySide(bg color.NRGBA, gap int, imgs ...*image.NRGBA) *image.NRGBA {
	w, h := 0, 0
	for i, img := range imgs {
		b := img.Bounds()
		if i > 0 {
			w += gap
		}
		w += b.Dx()
		h = max(h, b.Dy())
	}
	canvas := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	x := 0
	for _, img := range imgs {
		b := img.Bounds()
		draw.Copy(canvas, image.Pt(x, 0), img, b, draw.Over, nil)
		x += b.Dx() + gap
	}
	return canvas
}

// Fit scales img into a size×size canvas, preserving aspect ratio and centering it.
func Fit(img image.Image, size int) *image.NRGBA {
	canvas := image.NewNRGBA(image.Rect(0, 0, size, size))
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return canvas
	}

	sc := min(float64(size)/float64(b.Dx()), float64(size)/float64(b.Dy()))
	dstW := max(int(float64(b.Dx())*sc+0.5), 1)
	dstH := max(int(float64(b.Dy())*sc+0.5), 1)
	offX := (size - dstW) / 2
	offY := (size - dstH) / 2
	draw.CatmullRom.Scale(canvas, image.Rect(offX, offY, offX+dstW, offY+dstH), img, b, draw.Src, nil)
	return canvas
}
