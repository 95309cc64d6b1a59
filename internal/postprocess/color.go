package postprocess

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/shellrec/shellrec/internal/model"
)

// resolveBackground turns a model.Background into an opaque (or, for
// Transparent, fully-clear) RGBA fill colour, spec.md §4.6 step 1.
func resolveBackground(bg model.Background) color.RGBA {
	switch bg.Kind {
	case model.BackgroundWhite:
		return color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	case model.BackgroundBlack:
		return color.RGBA{R: 0, G: 0, B: 0, A: 0xFF}
	case model.BackgroundHex:
		return color.RGBA{R: bg.Hex.R, G: bg.Hex.G, B: bg.Hex.B, A: bg.Hex.A}
	case model.BackgroundTransparent:
		fallthrough
	default:
		return color.RGBA{}
	}
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("postprocess: creating %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("postprocess: encoding %s: %w", path, err)
	}
	return nil
}
