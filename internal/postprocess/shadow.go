package postprocess

import (
	"image"
	"math"

	"github.com/shellrec/shellrec/internal/model"
)

// gaussianKernel1D builds a normalized 1-D Gaussian kernel of radius
// ceil(3*sigma), spec.md §4.6 step 4.
func gaussianKernel1D(sigma float64) []float64 {
	radius := int(math.Ceil(3 * sigma))
	kernel := make([]float64, 2*radius+1)
	sum := 0.0
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		kernel[i+radius] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

func clampIndex(i, dim int) int {
	if i < 0 {
		return 0
	}
	if i >= dim {
		return dim - 1
	}
	return i
}

// convolveHorizontal and convolveVertical each parallelize over independent
// rows/columns (spec.md §4.6 step 4): no row's output depends on another
// row's, so they fan out across a worker pool.
func convolveHorizontal(src []float64, w, h int, kernel []float64, pool *rowPool) []float64 {
	dst := make([]float64, len(src))
	radius := len(kernel) / 2
	pool.forEachRow(h, func(y int) {
		rowOff := y * w
		for x := 0; x < w; x++ {
			sum := 0.0
			for k := -radius; k <= radius; k++ {
				sum += src[rowOff+clampIndex(x+k, w)] * kernel[k+radius]
			}
			dst[rowOff+x] = sum
		}
	})
	return dst
}

func convolveVertical(src []float64, w, h int, kernel []float64, pool *rowPool) []float64 {
	dst := make([]float64, len(src))
	radius := len(kernel) / 2
	pool.forEachRow(w, func(x int) {
		for y := 0; y < h; y++ {
			sum := 0.0
			for k := -radius; k <= radius; k++ {
				sum += src[clampIndex(y+k, h)*w+x] * kernel[k+radius]
			}
			dst[y*w+x] = sum
		}
	})
	return dst
}

// applyDropShadow builds the blurred-alpha shadow canvas and composites
// the source image onto it, spec.md §4.6 steps 1-8.
func applyDropShadow(src *image.RGBA, bg model.Background, sigma float64) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	pad := int(2 * sigma)
	canvasW, canvasH := w+2*pad, h+2*pad

	bgColor := resolveBackground(bg)
	canvas := image.NewRGBA(image.Rect(0, 0, canvasW, canvasH))
	for i := 0; i < len(canvas.Pix); i += 4 {
		canvas.Pix[i+0] = bgColor.R
		canvas.Pix[i+1] = bgColor.G
		canvas.Pix[i+2] = bgColor.B
		canvas.Pix[i+3] = bgColor.A
	}

	alphaMap := make([]float64, canvasW*canvasH)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			_, _, _, a := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
			alphaMap[(y+pad)*canvasW+(x+pad)] = float64(a>>8) / 255.0
		}
	}

	kernel := gaussianKernel1D(sigma)
	pool := newRowPool()
	blurredH := convolveHorizontal(alphaMap, canvasW, canvasH, kernel, pool)
	blurred := convolveVertical(blurredH, canvasW, canvasH, kernel, pool)

	for y := 0; y < canvasH; y++ {
		for x := 0; x < canvasW; x++ {
			a := blurred[y*canvasW+x]
			shadowAlpha := uint8(math.Min(255, math.Round(a*255)))
			compositeOver(canvas, x, y, 0, 0, 0, shadowAlpha)
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, a := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
			compositeOver(canvas, x+pad, y+pad, uint8(r>>8), uint8(g>>8), uint8(bl>>8), uint8(a>>8))
		}
	}

	return canvas
}

// compositeOver blends (r,g,b,a) onto canvas at (x,y) using Porter-Duff
// "over": alpha_out = alpha_s + alpha_d*(1-alpha_s), spec.md §4.6 step 6.
func compositeOver(canvas *image.RGBA, x, y int, r, g, bl, a uint8) {
	off := canvas.PixOffset(x, y)
	dr, dg, db, da := canvas.Pix[off], canvas.Pix[off+1], canvas.Pix[off+2], canvas.Pix[off+3]

	as := float64(a) / 255.0
	ad := float64(da) / 255.0
	aOut := as + ad*(1-as)
	if aOut <= 0 {
		canvas.Pix[off], canvas.Pix[off+1], canvas.Pix[off+2], canvas.Pix[off+3] = 0, 0, 0, 0
		return
	}

	blend := func(cs, cd uint8) uint8 {
		v := (float64(cs)*as + float64(cd)*ad*(1-as)) / aOut
		return uint8(math.Round(v))
	}

	canvas.Pix[off+0] = blend(r, dr)
	canvas.Pix[off+1] = blend(g, dg)
	canvas.Pix[off+2] = blend(bl, db)
	canvas.Pix[off+3] = uint8(math.Round(aOut * 255))
}
