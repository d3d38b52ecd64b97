package viewmatrix

import (
	"fmt"
	"math"
	"sort"

	"rig-reorient/internal/mathutil"
)

// Named views. Each rotates world points into camera space: x right, y up, z toward the viewer.
var views = map[string]mathutil.Mat3{
	"front": mathutil.Mat3Identity(),
	"side":  mathutil.RotY(mathutil.Deg2Rad(-90)),
	"top":   mathutil.RotX(mathutil.Deg2Rad(90)),
	"persp": mathutil.Mat3Mul(mathutil.RotX(mathutil.Deg2Rad(20)), mathutil.RotY(mathutil.Deg2Rad(-35))),
}

// View returns a named view matrix.
func View(name string) (mathutil.Mat3, error) {
	m, ok := views[name]
	if !ok {
		return mathutil.Mat3{}, fmt.Errorf("viewmatrix: unknown view %q (have %v)", name, ViewNames())
	}
	return m, nil
}

// ViewNames lists the named views in sorted order.
func ViewNames() []string {
	names := make([]string, 0, len(views))
	for n := range views {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Camera is an orthographic projection framed around a set of points.
type Camera struct {
	R      mathutil.Mat3
	Center [3]float64
	Scale  float64 // pixels per world unit
	Size   int
}

// Fit frames points so their projected bounds fill size minus margin on each side.
func Fit(points []mathutil.Vec3, R mathutil.Mat3, size, margin int) Camera {
	allMin := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	allMax := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, p := range points {
		t := R.MulVec3(p)
		for k := 0; k < 3; k++ {
			allMin[k] = math.Min(allMin[k], t[k])
			allMax[k] = math.Max(allMax[k], t[k])
		}
	}
	if len(points) == 0 {
		allMin, allMax = [3]float64{}, [3]float64{}
	}

	center := [3]float64{
		(allMin[0] + allMax[0]) / 2,
		(allMin[1] + allMax[1]) / 2,
		(allMin[2] + allMax[2]) / 2,
	}
	span := math.Max(allMax[0]-allMin[0], allMax[1]-allMin[1])
	if span < 0.001 {
		span = 0.001
	}
	usable := size - 2*margin
	if usable < 1 {
		usable = 1
	}
	return Camera{R: R, Center: center, Scale: float64(usable) / span, Size: size}
}

// Project maps a world point to screen x, y (y down) and depth (larger is nearer).
func (c Camera) Project(p mathutil.Vec3) [3]float64 {
	t := c.R.MulVec3(p)
	half := float64(c.Size) / 2
	return [3]float64{
		(t[0]-c.Center[0])*c.Scale + half,
		-(t[1]-c.Center[1])*c.Scale + half,
		t[2],
	}
}

// ProjectPoints projects every point.
func (c Camera) ProjectPoints(points []mathutil.Vec3) [][3]float64 {
	out := make([][3]float64, len(points))
	for i, p := range points {
		out[i] = c.Project(p)
	}
	return out
}

// WorldSpan is the world distance covered by the frame width.
func (c Camera) WorldSpan() float64 {
	return float64(c.Size) / c.Scale
}
