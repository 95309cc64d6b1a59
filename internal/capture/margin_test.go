package capture

import (
	"image"
	"image/color"
	"testing"

	"github.com/shellrec/shellrec/internal/model"
)

// solidWithBorder returns a size x size RGBA image: border pixels
// transparent, the inner (size-2*border) square opaque red.
func solidWithBorder(size, border int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if x < border || y < border || x >= size-border || y >= size-border {
				img.Set(x, y, color.RGBA{0, 0, 0, 0})
			} else {
				img.Set(x, y, color.RGBA{200, 0, 0, 255})
			}
		}
	}
	return img
}

func TestCalibrateMarginUniformBorder(t *testing.T) {
	img := solidWithBorder(100, 10)
	m := calibrateMargin(img)
	want := model.Margin{Top: 10, Bottom: 10, Left: 10, Right: 10}
	if m != want {
		t.Errorf("calibrateMargin() = %+v, want %+v", m, want)
	}
}

func TestCalibrateMarginNoBorder(t *testing.T) {
	img := solidWithBorder(50, 0)
	m := calibrateMargin(img)
	if !m.IsZero() {
		t.Errorf("calibrateMargin() = %+v, want zero margin", m)
	}
}

func TestCropToMarginDimensions(t *testing.T) {
	img := solidWithBorder(100, 10)
	buf := cropToMargin(img, model.Margin{Top: 10, Bottom: 10, Left: 10, Right: 10})
	if buf.Width != 80 || buf.Height != 80 {
		t.Errorf("cropToMargin() dims = %dx%d, want 80x80", buf.Width, buf.Height)
	}
	if len(buf.Samples) != 80*80*4 {
		t.Errorf("cropToMargin() samples len = %d, want %d", len(buf.Samples), 80*80*4)
	}
}

func TestCropToMarginForcesOpaqueWhenSourceHasNoAlpha(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{10, 20, 30, 0})
		}
	}
	buf := cropToMargin(img, model.Margin{})
	for i := 3; i < len(buf.Samples); i += 4 {
		if buf.Samples[i] != 0xFF {
			t.Fatalf("expected alpha byte %d forced to 0xFF, got %d", i, buf.Samples[i])
		}
	}
}
