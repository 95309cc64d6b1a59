// Package scratch owns the process-owned temp directory spec.md §3 calls
// the "scratch directory": created once at session start, shared read-only
// by every consumer thereafter, and recursively removed when the session
// drops it (spec.md §5's shared-state item 1).
package scratch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shellrec/shellrec/internal/logging"
)

var log = logging.L("scratch")

// Dir is a handle to a created scratch directory. The zero value is not
// valid; use New. Dir is safe to read concurrently once created — nothing
// in this package mutates it after New returns. C5 (photographer) writes
// frame and screenshot files under Path, C7 (post-processing) overwrites
// frames in place, and C8 (output) adds its pause-frame copies there.
type Dir struct {
	path string
}

// New creates a fresh scratch directory under the OS temp dir, prefixed
// "t-rec-" to match the frame/screenshot file naming convention (spec.md
// §6) it holds files for.
func New() (*Dir, error) {
	path, err := os.MkdirTemp("", "t-rec-")
	if err != nil {
		return nil, fmt.Errorf("scratch: creating directory: %w", err)
	}
	log.Debug("scratch directory created", "path", path)
	return &Dir{path: path}, nil
}

// Path returns the absolute directory path. Frame and screenshot files
// live directly under it (spec.md §6's naming rules).
func (d *Dir) Path() string {
	return d.path
}

// FramePath returns the path a frame at the given millisecond timecode
// would be written to: t-rec-frame-<tc:09>.bmp.
func (d *Dir) FramePath(timecodeMS uint64) string {
	return FramePathIn(d.path, timecodeMS)
}

// ScreenshotPath returns the path an in-scratch screenshot at the given
// timecode would be written to: t-rec-screenshot-<tc:09>.png.
func (d *Dir) ScreenshotPath(timecodeMS uint64) string {
	return ScreenshotPathIn(d.path, timecodeMS)
}

// FramePathIn and ScreenshotPathIn implement spec.md §6's scratch-file
// naming directly against a directory path, for callers (the photographer)
// that hold the scratch directory as a plain string rather than a *Dir.
func FramePathIn(dir string, timecodeMS uint64) string {
	return filepath.Join(dir, fmt.Sprintf("t-rec-frame-%09d.bmp", timecodeMS))
}

func ScreenshotPathIn(dir string, timecodeMS uint64) string {
	return filepath.Join(dir, fmt.Sprintf("t-rec-screenshot-%09d.png", timecodeMS))
}

// Close recursively removes the scratch directory, spec.md §4.8 step 15's
// "drop the scratch directory". Safe to call once; a second call is a
// no-op since RemoveAll tolerates a missing path.
func (d *Dir) Close() error {
	if err := os.RemoveAll(d.path); err != nil {
		return fmt.Errorf("scratch: removing %s: %w", d.path, err)
	}
	log.Debug("scratch directory removed", "path", d.path)
	return nil
}
