package wintarget

import (
	"os"
	"testing"

	"github.com/shellrec/shellrec/internal/model"
)

type fakeCapturer struct {
	windows  []model.WindowInfo
	activeID model.WindowID
	activeErr error
}

func (f *fakeCapturer) Enumerate() ([]model.WindowInfo, error) { return f.windows, nil }
func (f *fakeCapturer) ActiveWindow() (model.WindowID, error)  { return f.activeID, f.activeErr }
func (f *fakeCapturer) Calibrate(model.WindowID) error         { return nil }
func (f *fakeCapturer) Capture(model.WindowID) (*model.ImageBuffer, error) {
	return nil, nil
}
func (f *fakeCapturer) Close() error { return nil }

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"WINDOWID", "TERM_PROGRAM"} {
		old, had := os.LookupEnv(k)
		os.Unsetenv(k)
		t.Cleanup(func() {
			if had {
				os.Setenv(k, old)
			}
		})
	}
}

func TestResolveExplicitIDWins(t *testing.T) {
	clearEnv(t)
	os.Setenv("WINDOWID", "999")

	cap := &fakeCapturer{activeID: 1}
	got, err := Resolve(cap, 42)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != model.WindowID(42) {
		t.Fatalf("got %v, want 42 (explicit id should beat WINDOWID)", got)
	}
}

func TestResolveFallsBackToWindowIDEnv(t *testing.T) {
	clearEnv(t)
	os.Setenv("WINDOWID", "123")

	cap := &fakeCapturer{activeID: 1}
	got, err := Resolve(cap, 0)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != model.WindowID(123) {
		t.Fatalf("got %v, want 123", got)
	}
}

func TestResolveRejectsInvalidWindowID(t *testing.T) {
	clearEnv(t)
	os.Setenv("WINDOWID", "not-a-number")

	cap := &fakeCapturer{activeID: 1}
	if _, err := Resolve(cap, 0); err == nil {
		t.Fatal("expected an error for a non-numeric WINDOWID")
	}
}

func TestResolveFallsBackToActiveWindow(t *testing.T) {
	clearEnv(t)

	cap := &fakeCapturer{activeID: 7}
	got, err := Resolve(cap, 0)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != model.WindowID(7) {
		t.Fatalf("got %v, want 7", got)
	}
}

func TestResolveFromTermProgramRequiresKnownValue(t *testing.T) {
	if _, ok := resolveFromTermProgram(&fakeCapturer{}, "some-unknown-emulator"); ok {
		t.Fatal("an unrecognised TERM_PROGRAM value should never resolve")
	}
}
