package postprocess

import "image"

// applyRoundedCornerMask zeroes alpha at the four corners of img outside
// the inscribed quarter-circle of radius r, spec.md §4.6. Pixels inside
// the window (anywhere not within one of the four r*r corner squares) are
// untouched.
func applyRoundedCornerMask(img *image.RGBA, r int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if r <= 0 || w < 2*r || h < 2*r {
		return
	}

	corners := [4]struct{ cx, cy, x0, y0 int }{
		{r, r, 0, 0},                 // top-left
		{w - r - 1, r, w - r, 0},     // top-right
		{r, h - r - 1, 0, h - r},     // bottom-left
		{w - r - 1, h - r - 1, w - r, h - r}, // bottom-right
	}

	for _, c := range corners {
		for y := c.y0; y < c.y0+r; y++ {
			for x := c.x0; x < c.x0+r; x++ {
				dx := float64(x - c.cx)
				dy := float64(y - c.cy)
				if dx*dx+dy*dy > float64(r*r) {
					off := img.PixOffset(b.Min.X+x, b.Min.Y+y)
					img.Pix[off+3] = 0
				}
			}
		}
	}
}
