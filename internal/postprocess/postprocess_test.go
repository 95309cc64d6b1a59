package postprocess

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/shellrec/shellrec/internal/model"
)

func solidRGBA(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestRoundedCornerMaskClearsOutsideQuarterCircle(t *testing.T) {
	img := solidRGBA(40, 30, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	applyRoundedCornerMask(img, CornerRadius)

	// The true corner pixel is outside the inscribed circle: must be cleared.
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
		t.Fatalf("corner pixel (0,0) alpha = %d, want 0", a>>8)
	}
	// Centre of the image is far from every corner: must be untouched.
	if _, _, _, a := img.At(20, 15).RGBA(); a>>8 != 255 {
		t.Fatalf("centre pixel alpha = %d, want 255", a>>8)
	}
	// A pixel exactly on the circle boundary (distance == r from the corner
	// centre, along the top edge) must survive.
	if _, _, _, a := img.At(CornerRadius, 0).RGBA(); a>>8 != 255 {
		t.Fatalf("boundary pixel alpha = %d, want 255", a>>8)
	}
}

func TestRoundedCornerMaskNoopOnTinyImage(t *testing.T) {
	img := solidRGBA(4, 4, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	applyRoundedCornerMask(img, CornerRadius)
	if _, _, _, a := img.At(0, 0).RGBA(); a>>8 != 255 {
		t.Fatalf("mask should be a no-op when the image is smaller than 2*r, got alpha %d", a>>8)
	}
}

func TestGaussianKernelNormalizesToOne(t *testing.T) {
	kernel := gaussianKernel1D(20.0)
	sum := 0.0
	for _, v := range kernel {
		sum += v
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Fatalf("kernel sums to %f, want 1.0", sum)
	}
	mid := len(kernel) / 2
	if kernel[mid] <= kernel[0] {
		t.Fatalf("kernel should peak at the centre")
	}
}

func TestDropShadowGrowsCanvasByTwicePad(t *testing.T) {
	w, h := 30, 20
	src := solidRGBA(w, h, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	out := applyDropShadow(src, model.Background{Kind: model.BackgroundWhite}, ShadowSigma)

	pad := int(2 * ShadowSigma)
	wantW, wantH := w+2*pad, h+2*pad
	b := out.Bounds()
	if b.Dx() != wantW || b.Dy() != wantH {
		t.Fatalf("shadow canvas = %dx%d, want %dx%d", b.Dx(), b.Dy(), wantW, wantH)
	}

	// The original frame should have been recomposited at its padded offset,
	// fully opaque.
	if _, _, _, a := out.At(pad+w/2, pad+h/2).RGBA(); a>>8 != 255 {
		t.Fatalf("frame centre alpha = %d, want 255", a>>8)
	}
}

func TestCompositeOverOpaqueSourceReplacesDestination(t *testing.T) {
	canvas := image.NewRGBA(image.Rect(0, 0, 1, 1))
	canvas.Set(0, 0, color.RGBA{R: 0, G: 0, B: 0, A: 255})
	compositeOver(canvas, 0, 0, 200, 100, 50, 255)

	r, g, b, a := canvas.At(0, 0).RGBA()
	if uint8(r>>8) != 200 || uint8(g>>8) != 100 || uint8(b>>8) != 50 || a>>8 != 255 {
		t.Fatalf("opaque source over opaque dest = (%d,%d,%d,%d), want (200,100,50,255)", r>>8, g>>8, b>>8, a>>8)
	}
}

func TestCompositeOverTransparentSourceLeavesDestinationUnchanged(t *testing.T) {
	canvas := image.NewRGBA(image.Rect(0, 0, 1, 1))
	canvas.Set(0, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	compositeOver(canvas, 0, 0, 0, 0, 0, 0)

	r, g, b, a := canvas.At(0, 0).RGBA()
	if uint8(r>>8) != 10 || uint8(g>>8) != 20 || uint8(b>>8) != 30 || a>>8 != 255 {
		t.Fatalf("fully transparent source changed destination: (%d,%d,%d,%d)", r>>8, g>>8, b>>8, a>>8)
	}
}

func TestResolveBackgroundNamedColours(t *testing.T) {
	cases := []struct {
		kind model.BackgroundKind
		want color.RGBA
	}{
		{model.BackgroundTransparent, color.RGBA{}},
		{model.BackgroundWhite, color.RGBA{R: 255, G: 255, B: 255, A: 255}},
		{model.BackgroundBlack, color.RGBA{A: 255}},
	}
	for _, c := range cases {
		got := resolveBackground(model.Background{Kind: c.kind})
		if got != c.want {
			t.Errorf("resolveBackground(%v) = %+v, want %+v", c.kind, got, c.want)
		}
	}
}

func TestResolveBackgroundHex(t *testing.T) {
	hex, err := model.ParseHexColor("#336699")
	if err != nil {
		t.Fatalf("ParseHexColor: %v", err)
	}
	got := resolveBackground(model.Background{Kind: model.BackgroundHex, Hex: hex})
	want := color.RGBA{R: 0x33, G: 0x66, B: 0x99, A: 0xFF}
	if got != want {
		t.Fatalf("resolveBackground(hex) = %+v, want %+v", got, want)
	}
}

func TestValidateWallpaperRejectsOversizedFrame(t *testing.T) {
	cfg := Config{
		Decor: model.DecorationNone,
		Wallpaper: model.Wallpaper{
			Kind:    model.WallpaperVentura,
			Padding: 50,
		},
	}
	// Ventura wallpaper is 1920x1080; a frame this large plus padding cannot fit.
	if err := ValidateWallpaper(cfg, 1900, 1000); err == nil {
		t.Fatal("expected error for oversized frame, got nil")
	}
}

func TestValidateWallpaperAcceptsFittingFrame(t *testing.T) {
	cfg := Config{
		Decor: model.DecorationNone,
		Wallpaper: model.Wallpaper{
			Kind:    model.WallpaperVentura,
			Padding: 20,
		},
	}
	if err := ValidateWallpaper(cfg, 800, 600); err != nil {
		t.Fatalf("expected fitting frame to validate, got %v", err)
	}
}

func TestValidateWallpaperNoneIsAlwaysFine(t *testing.T) {
	cfg := Config{Wallpaper: model.Wallpaper{Kind: model.WallpaperNone}}
	if err := ValidateWallpaper(cfg, 1_000_000, 1_000_000); err != nil {
		t.Fatalf("WallpaperNone should never fail validation, got %v", err)
	}
}

func TestCompositeOnWallpaperCentresFrame(t *testing.T) {
	frame := solidRGBA(10, 10, color.RGBA{R: 255, A: 255})
	wallpaper := generateVenturaWallpaper()

	out := compositeOnWallpaper(frame, wallpaper, 20)
	b := out.Bounds()
	if b.Dx() != venturaWidth || b.Dy() != venturaHeight {
		t.Fatalf("composited canvas = %dx%d, want wallpaper dims %dx%d", b.Dx(), b.Dy(), venturaWidth, venturaHeight)
	}

	cx, cy := venturaWidth/2, venturaHeight/2
	if r, _, _, a := out.At(cx, cy).RGBA(); uint8(r>>8) != 255 || a>>8 != 255 {
		t.Fatalf("frame centre not opaque red after composite: r=%d a=%d", r>>8, a>>8)
	}
}

func TestProcessAppliesMaskOnly(t *testing.T) {
	img := solidRGBA(40, 30, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	cfg := Config{Decor: model.DecorationNone, Wallpaper: model.Wallpaper{Kind: model.WallpaperNone}}
	out := Process(cfg, img)

	if out != img {
		t.Fatal("Process without shadow/wallpaper should return the same (mutated-in-place) image")
	}
	if _, _, _, a := out.At(0, 0).RGBA(); a != 0 {
		t.Fatalf("corner should have been masked, alpha = %d", a>>8)
	}
}
