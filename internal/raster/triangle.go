package raster

import (
	"image/color"
	"math"

	"rig-reorient/internal/mathutil"
)

// FillTriangle rasterizes one flat-shaded triangle given in screen space (x, y, depth) with
// z-buffering. The normal is taken from the screen-space vertices, so shading follows the view.
func FillTriangle(fb *FrameBuffer, p0, p1, p2 [3]float64, col color.NRGBA, lc *LightConfig) {
	x0, y0, z0 := p0[0], p0[1], p0[2]
	x1, y1, z1 := p1[0], p1[1], p1[2]
	x2, y2, z2 := p2[0], p2[1], p2[2]

	// Face normal for flat shading (screen y is down)
	e1 := mathutil.Vec3{x1 - x0, y0 - y1, z1 - z0}
	e2 := mathutil.Vec3{x2 - x0, y0 - y2, z2 - z0}
	n, err := e1.Cross(e2).Normalize()
	if err != nil {
		return
	}
	shade := lc.ComputeShade(n)
	r := clamp255(float64(col.R) * shade)
	g := clamp255(float64(col.G) * shade)
	b := clamp255(float64(col.B) * shade)

	// Bounding box
	minX := max(int(math.Min(math.Min(x0, x1), x2)), 0)
	maxX := min(int(math.Max(math.Max(x0, x1), x2))+1, fb.Width-1)
	minY := max(int(math.Min(math.Min(y0, y1), y2)), 0)
	maxY := min(int(math.Max(math.Max(y0, y1), y2))+1, fb.Height-1)
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det

	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) - y2
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1
			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}
			if !fb.depthTest(sx, sy, w0*z0+w1*z1+w2*z2) {
				continue
			}
			fb.put(sx, sy, r, g, b, col.A)
		}
	}
}
