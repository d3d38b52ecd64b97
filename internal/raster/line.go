package raster

import (
	"image/color"
	"math"
)

// Pen describes how lines and discs are drawn. Overlay pens ignore and do not write depth.
type Pen struct {
	Color   color.NRGBA
	Width   float64
	Overlay bool
}

func (fb *FrameBuffer) plot(x, y int, z float64, pen Pen) {
	if !fb.inside(x, y) {
		return
	}
	if !pen.Overlay && !fb.depthTest(x, y, z) {
		return
	}
	fb.put(x, y, pen.Color.R, pen.Color.G, pen.Color.B, pen.Color.A)
}

// DrawLine draws a segment between two screen-space points, depth interpolated along it.
func DrawLine(fb *FrameBuffer, a, b [3]float64, pen Pen) {
	half := math.Max(pen.Width, 1) / 2
	dx, dy := b[0]-a[0], b[1]-a[1]
	len2 := dx*dx + dy*dy

	minX := max(int(math.Floor(math.Min(a[0], b[0])-half)), 0)
	maxX := min(int(math.Ceil(math.Max(a[0], b[0])+half)), fb.Width-1)
	minY := max(int(math.Floor(math.Min(a[1], b[1])-half)), 0)
	maxY := min(int(math.Ceil(math.Max(a[1], b[1])+half)), fb.Height-1)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := float64(x)-a[0], float64(y)-a[1]
			t := 0.0
			if len2 > 1e-12 {
				t = math.Max(0, math.Min(1, (px*dx+py*dy)/len2))
			}
			ex, ey := px-t*dx, py-t*dy
			if ex*ex+ey*ey > half*half {
				continue
			}
			fb.plot(x, y, a[2]+t*(b[2]-a[2]), pen)
		}
	}
}

// DrawDisc fills a circle of the pen's width centred on a screen-space point.
func DrawDisc(fb *FrameBuffer, c [3]float64, pen Pen) {
	DrawLine(fb, c, c, pen)
}
