// Package preview draws skeletons with their joint axes so a re-orientation can be checked by eye.
package preview

import (
	"image"
	"image/color"

	"rig-reorient/internal/mathutil"
	"rig-reorient/internal/postprocess"
	"rig-reorient/internal/raster"
	"rig-reorient/internal/skeleton"
	"rig-reorient/internal/viewmatrix"
)

var (
	AxisColors = [3]color.NRGBA{
		{230, 60, 60, 255},
		{70, 200, 70, 255},
		{70, 110, 240, 255},
	}
	BoneColor      = color.NRGBA{170, 170, 180, 255}
	HighlightColor = color.NRGBA{250, 190, 60, 255}
	Backdrop       = color.NRGBA{34, 36, 40, 255}
)

const margin = 16

// Options controls a render. Size is the output size; the frame is Size×Supersample.
type Options struct {
	Size        int
	Supersample int
	Background  *image.NRGBA
	Highlight   []string
	Labels      bool
}

func (o Options) withDefaults() Options {
	if o.Size <= 0 {
		o.Size = 256
	}
	if o.Supersample <= 0 {
		o.Supersample = 1
	}
	return o
}

// Points returns the world positions of the named nodes, or of every transform node when
// names is empty. Unknown names are skipped.
func Points(s *skeleton.Skeleton, names ...string) []mathutil.Vec3 {
	worlds := s.WorldMatrices()
	if len(names) == 0 {
		for _, n := range s.Topological() {
			if k, _ := s.Kind(n); k.Transformable() {
				names = append(names, n)
			}
		}
	}
	pts := make([]mathutil.Vec3, 0, len(names))
	for _, n := range names {
		if m, ok := worlds[storedName(s, n)]; ok {
			pts = append(pts, m.Translation())
		}
	}
	return pts
}

func storedName(s *skeleton.Skeleton, name string) string {
	if j, err := s.Joint(name); err == nil {
		return j.Name
	}
	return name
}

// Frame builds a camera for the supersampled frame around points.
func Frame(points []mathutil.Vec3, view mathutil.Mat3, opts Options) viewmatrix.Camera {
	opts = opts.withDefaults()
	return viewmatrix.Fit(points, view, opts.Size*opts.Supersample, margin*opts.Supersample)
}

// Render draws every transform node of s as a bone to its parent plus its local axes.
// Highlighted joints get an overlay of their axes and, with Labels, their names.
func Render(s *skeleton.Skeleton, cam viewmatrix.Camera, opts Options) *image.NRGBA {
	opts = opts.withDefaults()
	ss := opts.Supersample

	fb := raster.NewFrameBuffer(cam.Size, cam.Size)
	if opts.Background != nil {
		fb.SetBackground(postprocess.Fit(opts.Background, cam.Size))
	} else {
		fill(fb, Backdrop)
	}

	hl := make(map[string]bool, len(opts.Highlight))
	for _, n := range opts.Highlight {
		hl[storedName(s, n)] = true
	}

	worlds := s.WorldMatrices()
	order := s.Topological()
	lc := raster.DefaultLightConfig()
	axisLen := cam.WorldSpan() * 0.06

	for _, name := range order {
		if k, _ := s.Kind(name); !k.Transformable() {
			continue
		}
		parent, _ := s.Parent(name)
		pw, ok := worlds[parent]
		if !ok {
			continue
		}
		col := BoneColor
		if hl[parent] {
			col = HighlightColor
		}
		drawBone(fb, cam, pw, worlds[name].Translation(), col, &lc)
	}

	for _, name := range order {
		if k, _ := s.Kind(name); !k.Transformable() {
			continue
		}
		w := worlds[name]
		pos := w.Translation()
		p := cam.Project(pos)
		width := 1.5 * float64(ss)
		if hl[name] {
			width *= 2
		}
		for i, axis := range w.Axes() {
			tip := cam.Project(pos.Add(axis.Scale(axisLen)))
			raster.DrawLine(fb, p, tip, raster.Pen{Color: AxisColors[i], Width: width, Overlay: hl[name]})
		}
		raster.DrawDisc(fb, p, raster.Pen{Color: color.NRGBA{235, 235, 235, 255}, Width: width * 1.5, Overlay: hl[name]})
	}

	img := fb.Image()
	if ss > 1 {
		img = postprocess.Downsample(img, ss)
	}
	if opts.Labels {
		for _, name := range order {
			if !hl[name] {
				continue
			}
			p := cam.Project(worlds[name].Translation())
			Label(img, int(p[0])/ss+6, int(p[1])/ss-4, name, HighlightColor)
		}
	}
	return img
}

func fill(fb *raster.FrameBuffer, c color.NRGBA) {
	for i := 0; i < len(fb.Color); i += 4 {
		fb.Color[i], fb.Color[i+1], fb.Color[i+2], fb.Color[i+3] = c.R, c.G, c.B, c.A
	}
}

// drawBone draws an octahedral bone from the parent's world position to child, its cross
// section squared to the parent axis least aligned with the bone.
func drawBone(fb *raster.FrameBuffer, cam viewmatrix.Camera, parent mathutil.Mat4, child mathutil.Vec3, col color.NRGBA, lc *raster.LightConfig) {
	a := parent.Translation()
	d := child.Sub(a)
	length := d.Len()
	u, err := d.Normalize()
	if err != nil {
		return
	}

	side := mathutil.Vec3{}
	best := 2.0
	for _, axis := range parent.Axes() {
		if dot := abs(axis.Dot(u)); dot < best {
			best, side = dot, axis
		}
	}
	v, err := side.Sub(u.Scale(side.Dot(u))).Normalize()
	if err != nil {
		return
	}
	w := u.Cross(v)

	r := length * 0.1
	mid := a.Add(u.Scale(length * 0.2))
	ring := [4]mathutil.Vec3{
		mid.Add(v.Scale(r)),
		mid.Add(w.Scale(r)),
		mid.Sub(v.Scale(r)),
		mid.Sub(w.Scale(r)),
	}
	pa, pb := cam.Project(a), cam.Project(child)
	var pr [4][3]float64
	for i, q := range ring {
		pr[i] = cam.Project(q)
	}
	for i := range ring {
		n := (i + 1) % 4
		raster.FillTriangle(fb, pa, pr[i], pr[n], col, lc)
		raster.FillTriangle(fb, pb, pr[n], pr[i], col, lc)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
