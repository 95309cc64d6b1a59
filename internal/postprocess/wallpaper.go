package postprocess

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	"github.com/shellrec/shellrec/internal/model"
)

// venturaWidth and venturaHeight are the fixed dimensions of the built-in
// wallpaper. There is no bundled bitmap asset (this module never embeds
// binary resources); instead generateVenturaWallpaper renders a stand-in
// gradient of the same shape a real desktop wallpaper composite expects.
const (
	venturaWidth  = 1920
	venturaHeight = 1080
)

// wallpaperDims reports the pixel dimensions a wallpaper choice will have,
// without necessarily decoding the whole file.
func wallpaperDims(w model.Wallpaper) (int, int, error) {
	switch w.Kind {
	case model.WallpaperVentura:
		return venturaWidth, venturaHeight, nil
	case model.WallpaperCustom:
		f, err := os.Open(w.Path.String())
		if err != nil {
			return 0, 0, fmt.Errorf("postprocess: opening wallpaper %s: %w", w.Path, err)
		}
		defer f.Close()
		cfg, _, err := image.DecodeConfig(f)
		if err != nil {
			return 0, 0, fmt.Errorf("postprocess: reading wallpaper %s: %w", w.Path, err)
		}
		return cfg.Width, cfg.Height, nil
	default:
		return 0, 0, fmt.Errorf("postprocess: no wallpaper configured")
	}
}

// loadWallpaper decodes the configured wallpaper into an RGBA image.
func loadWallpaper(w model.Wallpaper) (*image.RGBA, error) {
	switch w.Kind {
	case model.WallpaperVentura:
		return generateVenturaWallpaper(), nil
	case model.WallpaperCustom:
		f, err := os.Open(w.Path.String())
		if err != nil {
			return nil, fmt.Errorf("postprocess: opening wallpaper %s: %w", w.Path, err)
		}
		defer f.Close()
		img, _, err := image.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("postprocess: decoding wallpaper %s: %w", w.Path, err)
		}
		return toRGBA(img), nil
	default:
		return nil, fmt.Errorf("postprocess: no wallpaper configured")
	}
}

// generateVenturaWallpaper renders a dusk-gradient stand-in for the macOS
// Ventura default wallpaper: warm orange top fading to deep indigo bottom.
func generateVenturaWallpaper() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, venturaWidth, venturaHeight))
	top := [3]float64{247, 147, 71}
	bottom := [3]float64{32, 24, 82}
	for y := 0; y < venturaHeight; y++ {
		t := float64(y) / float64(venturaHeight-1)
		r := uint8(math.Round(top[0] + (bottom[0]-top[0])*t))
		g := uint8(math.Round(top[1] + (bottom[1]-top[1])*t))
		b := uint8(math.Round(top[2] + (bottom[2]-top[2])*t))
		rowOff := img.PixOffset(0, y)
		for x := 0; x < venturaWidth; x++ {
			off := rowOff + x*4
			img.Pix[off+0] = r
			img.Pix[off+1] = g
			img.Pix[off+2] = b
			img.Pix[off+3] = 0xFF
		}
	}
	return img
}

// compositeOnWallpaper centres frame on a copy of wallpaper, spec.md §4.6:
// "centre the (possibly shadowed) frame on a copy of the wallpaper with pad
// pixels between frame edges and wallpaper edges." ValidateWallpaper already
// guaranteed the wallpaper is large enough for the requested pad; centring
// naturally produces a margin no smaller than pad on every side.
func compositeOnWallpaper(frame *image.RGBA, wallpaper *image.RGBA, pad int) *image.RGBA {
	wb := wallpaper.Bounds()
	out := image.NewRGBA(wb)
	copy(out.Pix, wallpaper.Pix)

	fb := frame.Bounds()
	fw, fh := fb.Dx(), fb.Dy()
	ox := (wb.Dx() - fw) / 2
	oy := (wb.Dy() - fh) / 2

	for y := 0; y < fh; y++ {
		for x := 0; x < fw; x++ {
			r, g, b, a := frame.At(fb.Min.X+x, fb.Min.Y+y).RGBA()
			compositeOver(out, ox+x, oy+y, uint8(r>>8), uint8(g>>8), uint8(b>>8), uint8(a>>8))
		}
	}
	return out
}
