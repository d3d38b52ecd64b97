package raster

import (
	"image"
	"math"
)

// FrameBuffer holds the rendering target as flat slices for cache locality.
type FrameBuffer struct {
	Width  int
	Height int
	Color  []uint8   // RGBA interleaved, len = W*H*4
	ZBuf   []float64 // depth per pixel, len = W*H, initialized to -inf
}

// NewFrameBuffer allocates a zeroed color buffer and -inf z-buffer.
func NewFrameBuffer(w, h int) *FrameBuffer {
	n := w * h
	zbuf := make([]float64, n)
	for i := range zbuf {
		zbuf[i] = math.Inf(-1)
	}
	return &FrameBuffer{
		Width:  w,
		Height: h,
		Color:  make([]uint8, n*4),
		ZBuf:   zbuf,
	}
}

// SetBackground copies img into the color buffer. Depth is untouched.
func (fb *FrameBuffer) SetBackground(img *image.NRGBA) {
	b := img.Bounds()
	w := min(b.Dx(), fb.Width)
	for y := 0; y < min(b.Dy(), fb.Height); y++ {
		src := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(fb.Color[y*fb.Width*4:(y*fb.Width+w)*4], img.Pix[src:src+w*4])
	}
}

// Image copies the color buffer into a new NRGBA image.
func (fb *FrameBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	copy(img.Pix, fb.Color)
	return img
}

// depthTest claims pixel (x, y) at depth z; it reports false when something nearer is there.
func (fb *FrameBuffer) depthTest(x, y int, z float64) bool {
	i := y*fb.Width + x
	if z <= fb.ZBuf[i] {
		return false
	}
	fb.ZBuf[i] = z
	return true
}

func (fb *FrameBuffer) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < fb.Width && y < fb.Height
}

func (fb *FrameBuffer) put(x, y int, r, g, b, a uint8) {
	i := (y*fb.Width + x) * 4
	fb.Color[i] = r
	fb.Color[i+1] = g
	fb.Color[i+2] = b
	fb.Color[i+3] = a
}
