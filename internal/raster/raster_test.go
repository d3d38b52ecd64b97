package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	red  = color.NRGBA{255, 0, 0, 255}
	blue = color.NRGBA{0, 0, 255, 255}
)

func alphaAt(fb *FrameBuffer, x, y int) uint8 {
	return fb.Color[(y*fb.Width+x)*4+3]
}

func TestFillTriangleDepth(t *testing.T) {
	fb := NewFrameBuffer(32, 32)
	lc := DefaultLightConfig()

	FillTriangle(fb, [3]float64{2, 2, 0}, [3]float64{30, 2, 0}, [3]float64{2, 30, 0}, red, &lc)
	assert.Equal(t, uint8(255), alphaAt(fb, 5, 5))
	assert.Equal(t, uint8(0), alphaAt(fb, 28, 28))
	assert.Greater(t, fb.Color[(5*32+5)*4], uint8(0))

	// farther triangle is hidden
	FillTriangle(fb, [3]float64{2, 2, -1}, [3]float64{30, 2, -1}, [3]float64{2, 30, -1}, blue, &lc)
	assert.Equal(t, uint8(0), fb.Color[(5*32+5)*4+2])

	// nearer one wins
	FillTriangle(fb, [3]float64{2, 2, 1}, [3]float64{30, 2, 1}, [3]float64{2, 30, 1}, blue, &lc)
	assert.Greater(t, fb.Color[(5*32+5)*4+2], uint8(0))
}

func TestFillTriangleDegenerate(t *testing.T) {
	fb := NewFrameBuffer(8, 8)
	lc := DefaultLightConfig()
	FillTriangle(fb, [3]float64{1, 1, 0}, [3]float64{4, 4, 0}, [3]float64{6, 6, 0}, red, &lc)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			assert.Equal(t, uint8(0), alphaAt(fb, x, y))
		}
	}
}

func TestDrawLine(t *testing.T) {
	fb := NewFrameBuffer(20, 20)
	DrawLine(fb, [3]float64{2, 10, 0}, [3]float64{17, 10, 0}, Pen{Color: red, Width: 3})
	assert.Equal(t, uint8(255), alphaAt(fb, 10, 10))
	assert.Equal(t, uint8(255), alphaAt(fb, 10, 11))
	assert.Equal(t, uint8(0), alphaAt(fb, 10, 14))
	assert.Equal(t, uint8(0), alphaAt(fb, 19, 10))

	// behind the existing line, only overlay pens draw
	DrawLine(fb, [3]float64{10, 2, -5}, [3]float64{10, 17, -5}, Pen{Color: blue, Width: 1})
	assert.Equal(t, uint8(0), fb.Color[(10*20+10)*4+2])
	DrawLine(fb, [3]float64{10, 2, -5}, [3]float64{10, 17, -5}, Pen{Color: blue, Width: 1, Overlay: true})
	assert.Equal(t, uint8(255), fb.Color[(10*20+10)*4+2])
}

func TestDrawDiscClipped(t *testing.T) {
	fb := NewFrameBuffer(10, 10)
	DrawDisc(fb, [3]float64{0, 0, 0}, Pen{Color: red, Width: 6})
	assert.Equal(t, uint8(255), alphaAt(fb, 1, 1))
	assert.Equal(t, uint8(0), alphaAt(fb, 5, 5))
}

func TestBackgroundAndImage(t *testing.T) {
	bg := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := range bg.Pix {
		bg.Pix[i] = 200
	}
	fb := NewFrameBuffer(6, 6)
	fb.SetBackground(bg)
	img := fb.Image()
	assert.Equal(t, color.NRGBA{200, 200, 200, 200}, img.NRGBAAt(3, 3))
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(5, 5))
}
