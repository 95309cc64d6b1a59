package capture

import (
	"image"

	"github.com/shellrec/shellrec/internal/model"
)

// calibrateMargin walks the vertical and horizontal centre scan-lines of img
// inward from each edge until it finds a fully opaque pixel (alpha 0xFF).
// The counted transparent rows/columns form the Margin.
func calibrateMargin(img *image.RGBA) model.Margin {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 {
		return model.Margin{}
	}

	midX := b.Min.X + width/2
	midY := b.Min.Y + height/2

	return model.Margin{
		Top:    scanOpaque(img, midX, b.Min.Y, b.Max.Y, 1, true),
		Bottom: scanOpaque(img, midX, b.Max.Y-1, b.Min.Y-1, -1, true),
		Left:   scanOpaque(img, b.Min.X, midY, b.Max.X, 1, false),
		Right:  scanOpaque(img, b.Max.X-1, midY, b.Min.X-1, -1, false),
	}
}

// scanOpaque walks the centre scan-line from start toward end (exclusive) in
// steps of stride, counting pixels until the first fully opaque one.
func scanOpaque(img *image.RGBA, fixed, start, end, stride int, vertical bool) int {
	count := 0
	for pos := start; pos != end; pos += stride {
		var x, y int
		if vertical {
			x, y = fixed, pos
		} else {
			x, y = pos, fixed
		}
		_, _, _, a := img.At(x, y).RGBA()
		if a>>8 == 0xFF {
			return count
		}
		count++
	}
	return count
}

// cropToMargin returns an owned ImageBuffer cropped by m, forcing full
// opacity across the buffer if the source's first pixel reports alpha other
// than 0xFF (a 24-bit source with no real alpha channel).
func cropToMargin(img *image.RGBA, m model.Margin) *model.ImageBuffer {
	b := img.Bounds()
	croppedRect := image.Rect(
		b.Min.X+m.Left, b.Min.Y+m.Top,
		b.Max.X-m.Right, b.Max.Y-m.Bottom,
	)
	if croppedRect.Dx() <= 0 || croppedRect.Dy() <= 0 {
		croppedRect = b
	}

	width, height := croppedRect.Dx(), croppedRect.Dy()
	buf := model.NewImageBuffer(width, height, model.ColorSpaceRGBA8)
	for y := 0; y < height; y++ {
		srcStart := img.PixOffset(croppedRect.Min.X, croppedRect.Min.Y+y)
		copy(buf.Samples[y*width*4:(y+1)*width*4], img.Pix[srcStart:srcStart+width*4])
	}

	if len(buf.Samples) >= 4 && buf.Samples[3] != 0xFF {
		buf.ForceOpaqueAlpha()
	}

	return buf
}
