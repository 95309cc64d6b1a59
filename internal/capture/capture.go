// Package capture implements the Capture Interface (C1): window enumeration,
// active-window resolution, margin calibration, and per-frame sampling.
// Platform backends live in capture_linux.go (X11 XGetImage), capture_darwin.go
// (CoreGraphics), and capture_windows.go (GDI).
package capture

import (
	"errors"
	"fmt"

	"github.com/shellrec/shellrec/internal/logging"
	"github.com/shellrec/shellrec/internal/model"
)

var log = logging.L("capture")

// ErrNotSupported is returned when the platform has no capture backend.
var ErrNotSupported = errors.New("capture: screen capture not supported on this platform")

// ErrNotCalibratable is returned by Calibrate when the window is not
// visible (unmapped, minimized, or zero-area).
var ErrNotCalibratable = errors.New("capture: window is not calibratable (not visible)")

// ErrWindowNotFound is returned when a WindowID no longer resolves to a
// live window.
var ErrWindowNotFound = errors.New("capture: window not found")

// CaptureError wraps a platform-level capture failure. The photographer
// treats every CaptureError as fatal for the session.
type CaptureError struct {
	Kind string
	Err  error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture: %s: %v", e.Kind, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// Capturer is the C1 interface: enumerate, resolve the active window,
// calibrate margins once, then sample frames repeatedly.
type Capturer interface {
	Enumerate() ([]model.WindowInfo, error)
	ActiveWindow() (model.WindowID, error)
	Calibrate(id model.WindowID) error
	Capture(id model.WindowID) (*model.ImageBuffer, error)
	Close() error
}

// New constructs the platform-specific capturer.
func New() (Capturer, error) {
	return newPlatformCapturer()
}
