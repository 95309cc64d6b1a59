package session

import (
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shellrec/shellrec/internal/config"
)

func TestBuildOutputConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Output = "out/clip"
	cfg.VideoOnly = true
	cfg.Video = true
	cfg.StartPauseMS = 500
	cfg.EndPauseMS = 0

	out := buildOutputConfig(cfg)
	if out.OutputBase != "out/clip" {
		t.Errorf("got OutputBase %q", out.OutputBase)
	}
	if out.GIF {
		t.Error("VideoOnly should disable GIF")
	}
	if !out.MP4 {
		t.Error("Video should enable MP4")
	}
	if !out.HasStartPause || out.StartPause != 500*time.Millisecond {
		t.Errorf("got start pause %v / %v", out.HasStartPause, out.StartPause)
	}
	if out.HasEndPause {
		t.Error("zero end_pause_ms should leave HasEndPause false")
	}
}

func TestFirstFrameDims(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frame.bmp")
	img := image.NewRGBA(image.Rect(0, 0, 12, 7))
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	w, h, err := firstFrameDims(path)
	if err != nil {
		t.Fatalf("firstFrameDims: %v", err)
	}
	if w != 12 || h != 7 {
		t.Errorf("got %dx%d, want 12x7", w, h)
	}
}

func TestFirstFrameDimsMissingFile(t *testing.T) {
	if _, _, err := firstFrameDims(filepath.Join(t.TempDir(), "missing.bmp")); err == nil {
		t.Fatal("expected an error for a missing frame file")
	}
}

func TestJoinAllReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	a := make(chan error, 1)
	b := make(chan error, 1)
	a <- nil
	b <- boom

	if err := joinAll(a, b); err != boom {
		t.Errorf("got %v, want %v", err, boom)
	}
}

func TestJoinAllAllNil(t *testing.T) {
	a := make(chan error, 1)
	b := make(chan error, 1)
	a <- nil
	b <- nil

	if err := joinAll(a, b); err != nil {
		t.Errorf("got %v, want nil", err)
	}
}
