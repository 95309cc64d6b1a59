package headless

import (
	"context"
	"testing"
	"time"

	"github.com/shellrec/shellrec/internal/capture"
	"github.com/shellrec/shellrec/internal/model"
)

// staticCapturer always returns the same solid-color frame, fast enough
// that a short real-time sleep produces several samples.
type staticCapturer struct {
	calibrated bool
}

func (s *staticCapturer) Enumerate() ([]model.WindowInfo, error) { return nil, nil }
func (s *staticCapturer) ActiveWindow() (model.WindowID, error)  { return 1, nil }
func (s *staticCapturer) Calibrate(model.WindowID) error {
	s.calibrated = true
	return nil
}
func (s *staticCapturer) Capture(model.WindowID) (*model.ImageBuffer, error) {
	buf := model.NewImageBuffer(4, 4, model.ColorSpaceRGBA8)
	for i := range buf.Samples {
		buf.Samples[i] = 0xFF
	}
	return buf, nil
}
func (s *staticCapturer) Close() error { return nil }

var _ capture.Capturer = (*staticCapturer)(nil)

func baseConfig() Config {
	return Config{
		WindowID: 1,
		FPS:      60,
		Natural:  true, // every tick is saved, no idle-elision timing to race against
		Decor:    model.DecorationNone,
	}
}

func TestStartBeforeReadyCalibratesCapturer(t *testing.T) {
	cap := &staticCapturer{}
	r, err := New(baseConfig(), cap)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() { _, _ = r.StopAndGenerate(context.Background()) }()

	if !cap.calibrated {
		t.Fatal("expected Start to calibrate the capturer")
	}
	if !r.IsRecording() {
		t.Fatal("expected IsRecording to be true after Start")
	}
}

func TestStartTwiceErrors(t *testing.T) {
	r, err := New(baseConfig(), &staticCapturer{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() { _, _ = r.StopAndGenerate(context.Background()) }()

	if err := r.Start(); err == nil {
		t.Fatal("expected a second Start to error")
	}
}

func TestStopAndGenerateBeforeStartErrors(t *testing.T) {
	r, err := New(baseConfig(), &staticCapturer{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := r.StopAndGenerate(context.Background()); err == nil {
		t.Fatal("expected StopAndGenerate before Start to error")
	}
}

func TestStopAndGenerateTwiceErrors(t *testing.T) {
	r, err := New(baseConfig(), &staticCapturer{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	if _, err := r.StopAndGenerate(context.Background()); err != nil {
		t.Fatalf("first StopAndGenerate: %v", err)
	}
	if _, err := r.StopAndGenerate(context.Background()); err == nil {
		t.Fatal("expected a second StopAndGenerate to error")
	}
}

func TestStopAndGenerateProducesFrames(t *testing.T) {
	r, err := New(baseConfig(), &staticCapturer{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	out, err := r.StopAndGenerate(context.Background())
	if err != nil {
		t.Fatalf("StopAndGenerate: %v", err)
	}
	if out.FrameCount == 0 {
		t.Fatal("expected at least one captured frame")
	}
	if r.IsRecording() {
		t.Fatal("expected IsRecording to be false after StopAndGenerate")
	}
}

func TestNewRejectsOutOfRangeFPS(t *testing.T) {
	cfg := baseConfig()
	cfg.FPS = 0
	if _, err := New(cfg, &staticCapturer{}); err == nil {
		t.Fatal("expected fps=0 to be rejected")
	}
	cfg.FPS = 61
	if _, err := New(cfg, &staticCapturer{}); err == nil {
		t.Fatal("expected fps=61 to be rejected")
	}
}
