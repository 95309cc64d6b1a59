// Package output implements the Output Assembler (C8): it hands the saved
// frame sequence to external encoders (ImageMagick's convert for GIF,
// ffmpeg for MP4) rather than encoding either format itself, spec.md §4.7.
package output

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/shellrec/shellrec/internal/logging"
	"github.com/shellrec/shellrec/internal/model"
)

var log = logging.L("output")

// Config resolves the output-assembly settings for a session. StartPause/
// EndPause are only honored when HasStartPause/HasEndPause is set, the same
// optional-duration shape internal/photographer.Config uses for idle-pause.
type Config struct {
	OutputBase    string // path without extension
	GIF           bool
	MP4           bool
	FPS           int
	StartPause    time.Duration
	HasStartPause bool
	EndPause      time.Duration
	HasEndPause   bool
}

// PreflightCheck verifies the external encoders a requested format needs
// are on PATH, spec.md §4.7's "dependency pre-flight". Call once at session
// start, before any capture begins, so a missing tool fails fast.
func PreflightCheck(cfg Config) error {
	if cfg.GIF {
		if _, err := exec.LookPath("convert"); err != nil {
			return fmt.Errorf("output: GIF requested but ImageMagick's convert is not on PATH: %w", err)
		}
	}
	if cfg.MP4 {
		if _, err := exec.LookPath("ffmpeg"); err != nil {
			return fmt.Errorf("output: MP4 requested but ffmpeg is not on PATH: %w", err)
		}
	}
	return nil
}

// GenerateGIF invokes convert over the saved frame sequence, spec.md §4.7's
// GIF path. frames must be in ascending timecode order (the order C5 and
// C9 already maintain).
func GenerateGIF(ctx context.Context, frames []model.FrameRecord, cfg Config) error {
	if len(frames) == 0 {
		return fmt.Errorf("output: no frames to encode")
	}

	target := cfg.OutputBase + ".gif"
	args := []string{"-loop", "0"}

	var prependPath string
	if cfg.HasStartPause && cfg.StartPause > 0 {
		var err error
		prependPath, err = duplicateFrame(frames[0].Path, "start-pause")
		if err != nil {
			return err
		}
		defer os.Remove(prependPath)
		args = append(args, "-delay", centiseconds(cfg.StartPause), prependPath)
	}

	prevTC := frames[0].TimecodeMS
	for i, f := range frames {
		var delayMS uint64
		if i == 0 {
			delayMS = 0
		} else {
			delayMS = f.TimecodeMS - prevTC
		}
		prevTC = f.TimecodeMS
		args = append(args, "-delay", centisecondsMS(delayMS), f.Path)
	}

	if cfg.HasEndPause && cfg.EndPause > 0 {
		appendPath, err := duplicateFrame(frames[len(frames)-1].Path, "end-pause")
		if err != nil {
			return err
		}
		defer os.Remove(appendPath)
		args = append(args, "-delay", centiseconds(cfg.EndPause), appendPath)
	}

	args = append(args, "-layers", "Optimize", target)

	if err := runEncoder(ctx, "convert", args); err != nil {
		return err
	}
	log.Info("gif written", "path", target, "frames", len(frames))
	return nil
}

// GenerateMP4 invokes ffmpeg over the naturally ordered frame sequence,
// spec.md §4.7's MP4 path. ffmpeg reads the BMP sequence directly from the
// scratch directory via a glob pattern rather than a generated concat file,
// since C5 already names frames in a fixed-width, lexically sortable order.
func GenerateMP4(ctx context.Context, frames []model.FrameRecord, scratchDir string, cfg Config) error {
	if len(frames) == 0 {
		return fmt.Errorf("output: no frames to encode")
	}

	target := cfg.OutputBase + ".mp4"
	// A glob, not a %09d sequence pattern: elided frames leave gaps in the
	// numeric timecode, so the file list isn't contiguously numbered.
	// Lexical glob order matches numeric order because every name is
	// zero-padded to the same width.
	pattern := filepath.Join(scratchDir, "t-rec-frame-*.bmp")

	args := []string{
		"-y",
		"-framerate", fmt.Sprintf("%d", cfg.FPS),
		"-pattern_type", "glob",
		"-i", pattern,
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		target,
	}

	if err := runEncoder(ctx, "ffmpeg", args); err != nil {
		return err
	}
	log.Info("mp4 written", "path", target, "frames", len(frames))
	return nil
}

func runEncoder(ctx context.Context, name string, args []string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.Stdout = io.Discard

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("output: %s failed: %w: %s", name, err, stderr.String())
	}
	return nil
}

// duplicateFrame copies src to a new temp file in the same directory, used
// to prepend/append a held frame for --start-pause/--end-pause without
// stretching that frame's own delay, spec.md §4.7.
func duplicateFrame(src, suffix string) (string, error) {
	dir := filepath.Dir(src)
	ext := filepath.Ext(src)
	dst := filepath.Join(dir, fmt.Sprintf("t-rec-%s%s", suffix, ext))

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("output: duplicating %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("output: duplicating %s: %w", src, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return "", fmt.Errorf("output: duplicating %s: %w", src, err)
	}
	return dst, nil
}

// centiseconds converts a time.Duration to GIF's native centisecond delay unit.
func centiseconds(d time.Duration) string {
	return fmt.Sprintf("%d", d.Milliseconds()/10)
}

// centisecondsMS converts a millisecond delay to GIF's native centisecond
// delay unit: round(delayMS / 10), spec.md §4.7.
func centisecondsMS(delayMS uint64) string {
	return fmt.Sprintf("%d", (delayMS+5)/10)
}
