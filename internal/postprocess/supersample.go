package postprocess

import "image"

// Downsample shrinks a supersampled frame by an integer factor, averaging each factor×factor
// block. Colour is weighted by alpha so transparent pixels add no dark fringe. Trailing rows and
// columns that do not fill a block are dropped.
func Downsample(img *image.NRGBA, factor int) *image.NRGBA {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	w, h := b.Dx()/factor, b.Dy()/factor
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	n := factor * factor

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var r, g, bl, a int
			for sy := 0; sy < factor; sy++ {
				si := img.PixOffset(b.Min.X+x*factor, b.Min.Y+y*factor+sy)
				for sx := 0; sx < factor; sx++ {
					p := img.Pix[si : si+4 : si+4]
					pa := int(p[3])
					r += int(p[0]) * pa
					g += int(p[1]) * pa
					bl += int(p[2]) * pa
					a += pa
					si += 4
				}
			}
			di := dst.PixOffset(x, y)
			if a > 0 {
				dst.Pix[di] = uint8((r + a/2) / a)
				dst.Pix[di+1] = uint8((g + a/2) / a)
				dst.Pix[di+2] = uint8((bl + a/2) / a)
			}
			dst.Pix[di+3] = uint8((a + n/2) / n)
		}
	}
	return dst
}
