// Package headless implements the Headless Recorder (C10): a programmatic,
// PTY-free recording API over C1 (capture), C2 (event router), C5
// (photographer), C7 (post-processing), and C8 (output assembly), grounded
// on original_source/crates/t-rec/src/headless.rs's HeadlessRecorder. Where
// the Rust original consumes itself by value and panics on a state
// violation, the idiomatic Go equivalent is a mutex-guarded state field and
// plain error returns, matching the teacher's desktop.Session
// stopOnce/cleanupOnce idempotency idiom rather than introducing panics
// this codebase has no other use for.
package headless

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "golang.org/x/image/bmp" // registers "bmp" with image.DecodeConfig

	"github.com/shellrec/shellrec/internal/capture"
	"github.com/shellrec/shellrec/internal/eventbus"
	"github.com/shellrec/shellrec/internal/logging"
	"github.com/shellrec/shellrec/internal/model"
	"github.com/shellrec/shellrec/internal/output"
	"github.com/shellrec/shellrec/internal/photographer"
	"github.com/shellrec/shellrec/internal/postprocess"
	"github.com/shellrec/shellrec/internal/scratch"
	"github.com/shellrec/shellrec/internal/workerpool"
)

var log = logging.L("headless")

// Config mirrors HeadlessRecorderConfig: a type-safe, builder-free
// configuration struct for a single programmatic recording.
type Config struct {
	WindowID model.WindowID
	FPS      int
	Natural  bool

	IdlePause    time.Duration
	HasIdlePause bool

	StartPause    time.Duration
	HasStartPause bool
	EndPause      time.Duration
	HasEndPause   bool

	Decor      model.Decoration
	Background model.Background
	Wallpaper  model.Wallpaper

	GIFPath string // empty disables GIF generation
	MP4Path string // empty disables MP4 generation
}

// Output reports the files StopAndGenerate produced.
type Output struct {
	GIFPath    string
	MP4Path    string
	FrameCount int
}

type recorderState int

const (
	stateReady recorderState = iota
	stateRecording
	stateConsumed
)

// Recorder is a single-use headless recording session: Ready, then
// Recording after Start, then Consumed after StopAndGenerate. Any call out
// of order returns an error rather than panicking.
type Recorder struct {
	cfg      Config
	capturer capture.Capturer

	mu    sync.Mutex
	state recorderState

	router     *eventbus.Router
	scratchDir *scratch.Dir
	frames     *model.FrameLog
	idle       *model.IdleClock
	photo      *photographer.Photographer
	done       chan error
}

// New constructs a Recorder in the Ready state. capturer is injected so
// callers (and tests) can supply a fake rather than the real platform
// backend; calibration is deferred to Start, matching the original's
// "calibration happens in start() so the window has time to become
// visible".
func New(cfg Config, capturer capture.Capturer) (*Recorder, error) {
	if cfg.FPS < 1 || cfg.FPS > 60 {
		return nil, fmt.Errorf("headless: fps %d is out of range [1, 60]", cfg.FPS)
	}
	return &Recorder{cfg: cfg, capturer: capturer}, nil
}

// Start calibrates the capture target, creates a scratch directory, and
// spawns the photographer's sampling loop on a background goroutine.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case stateRecording:
		return fmt.Errorf("headless: Start called while already recording")
	case stateConsumed:
		return fmt.Errorf("headless: Start called after StopAndGenerate")
	}

	if err := r.capturer.Calibrate(r.cfg.WindowID); err != nil {
		return fmt.Errorf("headless: calibrating window %d (is it visible?): %w", r.cfg.WindowID, err)
	}

	dir, err := scratch.New()
	if err != nil {
		return err
	}

	r.router = eventbus.New(eventbus.DefaultQueueCapacity)
	r.scratchDir = dir
	r.frames = model.NewFrameLog()
	r.idle = model.NewIdleClock()

	r.photo = photographer.New(photographer.Config{
		Capturer:     r.capturer,
		WindowID:     r.cfg.WindowID,
		Router:       r.router,
		ScratchDir:   dir.Path(),
		FPS:          r.cfg.FPS,
		Natural:      r.cfg.Natural,
		IdlePause:    r.cfg.IdlePause,
		HasIdlePause: r.cfg.HasIdlePause,
		Frames:       r.frames,
		Screenshots:  model.NewScreenshotLog(),
		Idle:         r.idle,
	})

	start := time.Now()
	r.done = make(chan error, 1)
	go func() {
		r.done <- r.photo.Run(start)
	}()

	r.router.Send(eventbus.CaptureStartEvent())
	r.state = stateRecording
	log.Debug("headless recording started", "win_id", uint64(r.cfg.WindowID))
	return nil
}

// IsRecording reports whether the recorder is currently between Start and
// StopAndGenerate.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == stateRecording
}

// StopAndGenerate signals the photographer to stop, waits for it to exit,
// runs the post-processing pipeline over the captured frames, and invokes
// the configured encoders. The recorder is Consumed afterward regardless of
// outcome — a second call always errors.
func (r *Recorder) StopAndGenerate(ctx context.Context) (*Output, error) {
	r.mu.Lock()
	if r.state == stateReady {
		r.mu.Unlock()
		return nil, fmt.Errorf("headless: StopAndGenerate called before Start")
	}
	if r.state == stateConsumed {
		r.mu.Unlock()
		return nil, fmt.Errorf("headless: StopAndGenerate called twice")
	}
	r.state = stateConsumed
	router, dir, frames, done := r.router, r.scratchDir, r.frames, r.done
	r.mu.Unlock()

	defer dir.Close()

	router.Send(eventbus.CaptureStopEvent())
	if err := <-done; err != nil {
		return nil, fmt.Errorf("headless: photographer failed: %w", err)
	}

	frameList := frames.Frames()
	if len(frameList) == 0 {
		return nil, fmt.Errorf("headless: no frames were captured")
	}

	if r.cfg.Wallpaper.Kind != model.WallpaperNone {
		w, h, err := firstFrameDims(frameList[0].Path)
		if err != nil {
			return nil, fmt.Errorf("headless: determining frame dimensions for wallpaper validation: %w", err)
		}
		if err := postprocess.ValidateWallpaper(postprocessConfig(r.cfg), w, h); err != nil {
			return nil, err
		}
	}

	pool := workerpool.New(4, len(frameList)+1)
	if err := postprocess.Run(ctx, postprocessConfig(r.cfg), frameList, nil, "", pool); err != nil {
		return nil, fmt.Errorf("headless: post-processing: %w", err)
	}

	out := &Output{FrameCount: len(frameList)}

	if r.cfg.GIFPath != "" {
		cfg := outputConfig(r.cfg, r.cfg.GIFPath)
		if err := output.GenerateGIF(ctx, frameList, cfg); err != nil {
			return nil, fmt.Errorf("headless: generating GIF: %w", err)
		}
		out.GIFPath = r.cfg.GIFPath
	}
	if r.cfg.MP4Path != "" {
		cfg := outputConfig(r.cfg, r.cfg.MP4Path)
		if err := output.GenerateMP4(ctx, frameList, dir.Path(), cfg); err != nil {
			return nil, fmt.Errorf("headless: generating MP4: %w", err)
		}
		out.MP4Path = r.cfg.MP4Path
	}

	log.Info("headless recording finished", "frames", out.FrameCount, "gif", out.GIFPath, "mp4", out.MP4Path)
	return out, nil
}

func postprocessConfig(cfg Config) postprocess.Config {
	return postprocess.Config{Decor: cfg.Decor, Background: cfg.Background, Wallpaper: cfg.Wallpaper}
}

// outputConfig strips path's extension to build output.Config's
// extension-free OutputBase, then sets only the flag for the format the
// caller is asking this call to produce.
func outputConfig(cfg Config, path string) output.Config {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	isGIF := strings.EqualFold(filepath.Ext(path), ".gif")
	return output.Config{
		OutputBase:    base,
		GIF:           isGIF,
		MP4:           !isGIF,
		FPS:           cfg.FPS,
		StartPause:    cfg.StartPause,
		HasStartPause: cfg.HasStartPause,
		EndPause:      cfg.EndPause,
		HasEndPause:   cfg.HasEndPause,
	}
}

// firstFrameDims reads just the BMP header of the first captured frame to
// learn the raw capture dimensions, the same "open the first frame to
// determine dimensions" step the original takes before wallpaper
// validation.
func firstFrameDims(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
