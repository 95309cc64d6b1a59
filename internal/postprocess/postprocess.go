// Package postprocess implements the Post-Processing Pipeline (C7):
// rounded-corner mask, drop shadow, and wallpaper composite, applied per
// frame and parallelized with internal/workerpool. The algorithms
// themselves have no teacher analogue (spec.md §4.6 specifies them
// exactly); the parallel-over-frames structure is grounded on the
// teacher's colorconv.go row-major, no-shared-mutable-state convolution
// style, generalized from one frame to the whole frame set.
package postprocess

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"

	"golang.org/x/image/bmp"

	"github.com/shellrec/shellrec/internal/logging"
	"github.com/shellrec/shellrec/internal/model"
	"github.com/shellrec/shellrec/internal/workerpool"
)

var log = logging.L("postprocess")

// CornerRadius is the fixed rounded-corner radius, spec.md §4.6.
const CornerRadius = 9

// ShadowSigma is the fixed Gaussian blur radius for the drop shadow.
const ShadowSigma = 20.0

// Config resolves the decoration settings for a session.
type Config struct {
	Decor      model.Decoration
	Background model.Background
	Wallpaper  model.Wallpaper
}

// ValidateWallpaper checks the "(W + 2*pad) <= wallpaper_w && (H + 2*pad)
// <= wallpaper_h" precondition once, up front, against the frame dims a
// shadow pass would produce (or the raw capture dims if Decor == None).
func ValidateWallpaper(cfg Config, frameW, frameH int) error {
	if cfg.Wallpaper.Kind == model.WallpaperNone {
		return nil
	}
	w, h := frameW, frameH
	if cfg.Decor == model.DecorationShadow {
		pad := int(2 * ShadowSigma)
		w += 2 * pad
		h += 2 * pad
	}
	ww, wh, err := wallpaperDims(cfg.Wallpaper)
	if err != nil {
		return err
	}
	pad := cfg.Wallpaper.Padding
	if w+2*pad > ww || h+2*pad > wh {
		return fmt.Errorf("postprocess: frame %dx%d with padding %d does not fit wallpaper %dx%d", w, h, pad, ww, wh)
	}
	return nil
}

// Run processes every frame in frames and every screenshot in shots,
// fanning the work out across pool. Frame files are decoded, processed,
// and overwritten in place; screenshots are read from their temp file and
// written to "<outputBase>-<tc>.png", beside the recording's output files.
func Run(ctx context.Context, cfg Config, frames []model.FrameRecord, shots []model.ScreenshotInfo, outputBase string, pool *workerpool.Pool) error {
	errc := make(chan error, len(frames)+len(shots))

	for _, f := range frames {
		f := f
		pool.Submit(func() {
			errc <- processFrameFile(cfg, f.Path, f.Path)
		})
	}
	for _, s := range shots {
		s := s
		pool.Submit(func() {
			dest := fmt.Sprintf("%s-%d.png", outputBase, s.TimecodeMS)
			errc <- processScreenshotFile(cfg, s.TempPath, dest)
		})
	}

	pool.StopAccepting()
	pool.Drain(ctx)
	close(errc)

	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func processFrameFile(cfg Config, srcPath, dstPath string) error {
	img, err := readBMP(srcPath)
	if err != nil {
		return err
	}
	out := Process(cfg, img)
	return writeBMP(dstPath, out)
}

func processScreenshotFile(cfg Config, srcPath, dstPath string) error {
	img, err := readPNG(srcPath)
	if err != nil {
		return err
	}
	out := Process(cfg, img)
	return writePNG(dstPath, out)
}

// Process applies the mask, optional shadow, and optional wallpaper
// composite to a single frame, in the order spec.md §4.6 specifies.
func Process(cfg Config, img *image.RGBA) *image.RGBA {
	applyRoundedCornerMask(img, CornerRadius)

	out := img
	if cfg.Decor == model.DecorationShadow {
		out = applyDropShadow(img, cfg.Background, ShadowSigma)
	}

	if cfg.Wallpaper.Kind != model.WallpaperNone {
		wp, err := loadWallpaper(cfg.Wallpaper)
		if err == nil {
			out = compositeOnWallpaper(out, wp, cfg.Wallpaper.Padding)
		} else {
			log.Warn("failed to load wallpaper, skipping composite", "error", err)
		}
	}
	return out
}

func readBMP(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("postprocess: opening %s: %w", path, err)
	}
	defer f.Close()
	img, err := bmp.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("postprocess: decoding %s: %w", path, err)
	}
	return toRGBA(img), nil
}

func readPNG(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("postprocess: opening %s: %w", path, err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("postprocess: decoding %s: %w", path, err)
	}
	return toRGBA(img), nil
}

func writeBMP(path string, img *image.RGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("postprocess: creating %s: %w", path, err)
	}
	defer f.Close()
	if err := bmp.Encode(f, img); err != nil {
		return fmt.Errorf("postprocess: encoding %s: %w", path, err)
	}
	return nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(x, y, img.At(x, y))
		}
	}
	return out
}
