// Package photographer implements the Photographer Actor (C5): the
// fixed-cadence sampling loop with idle-elision accounting described in
// spec.md §4.5. This is the component with no teacher analogue — the
// algorithm is implemented directly from the spec — but its loop shape
// (timer-paced, lock-guarded shared state) is grounded on
// the teacher's desktop.Session capture loop, and its frame-equality
// pre-check is grounded on frame_diff.go's CRC32 frameDiffer.
package photographer

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"time"

	"golang.org/x/image/bmp"

	"github.com/shellrec/shellrec/internal/capture"
	"github.com/shellrec/shellrec/internal/eventbus"
	"github.com/shellrec/shellrec/internal/logging"
	"github.com/shellrec/shellrec/internal/model"
	"github.com/shellrec/shellrec/internal/scratch"
)

var log = logging.L("photographer")

// Config configures a single recording run.
type Config struct {
	Capturer   capture.Capturer
	WindowID   model.WindowID
	Router     *eventbus.Router
	ScratchDir string

	FPS          int
	Natural      bool
	IdlePause    time.Duration
	HasIdlePause bool

	Frames      *model.FrameLog
	Screenshots *model.ScreenshotLog
	Idle        *model.IdleClock
}

// Photographer runs the sampling loop described in spec.md §4.5.
type Photographer struct {
	cfg Config

	frameInterval time.Duration
	start         time.Time
	lastNow       time.Time
	lastFrame     *model.ImageBuffer
	currentIdle   time.Duration

	differ *frameDiffer
}

// New constructs a Photographer. Call Run to start sampling; Run blocks
// until Capture::Stop or Lifecycle::Shutdown is observed, or a capture
// error occurs.
func New(cfg Config) *Photographer {
	return &Photographer{
		cfg:           cfg,
		frameInterval: time.Second / time.Duration(cfg.FPS),
		differ:        newFrameDiffer(),
	}
}

// pendingScreenshot carries a screenshot request observed mid-tick, valid
// for exactly one tick (spec.md §4.5 step 2).
type pendingScreenshot struct {
	timecodeMS uint64
	valid      bool
}

// Run executes the sampling loop until shutdown. start is the instant
// Capture::Start was observed (spec.md §4.5's "start").
func (p *Photographer) Run(start time.Time) error {
	p.start = start
	p.lastNow = start

	sub := p.cfg.Router.Subscribe()
	defer p.cfg.Router.Unsubscribe(sub)

	tick := time.NewTimer(p.frameInterval)
	defer tick.Stop()

	for {
		<-tick.C

		var pending pendingScreenshot
		stop := false
		eventbus.DrainAll(sub, func(ev eventbus.Event) bool {
			switch {
			case ev.Kind == eventbus.KindCapture && ev.Capture == eventbus.CaptureStop:
				stop = true
				return false
			case ev.Kind == eventbus.KindLifecycle && ev.Lifecycle == eventbus.LifecycleShutdown:
				stop = true
				return false
			case ev.Kind == eventbus.KindCapture && ev.Capture == eventbus.CaptureScreenshot:
				pending = pendingScreenshot{timecodeMS: ev.TimecodeMS, valid: true}
			}
			return true
		})
		if stop {
			return nil
		}

		if err := p.tick(pending); err != nil {
			return err
		}

		next := p.lastNow.Add(p.frameInterval)
		delay := time.Until(next)
		if delay < 0 {
			delay = 0
		}
		tick.Reset(delay)
	}
}

// tick implements spec.md §4.5 steps 3-9 for a single sample.
func (p *Photographer) tick(pending pendingScreenshot) error {
	now := time.Now()
	tc := p.adjustedTimecodeMS(now)

	img, err := p.cfg.Capturer.Capture(p.cfg.WindowID)
	if err != nil {
		return fmt.Errorf("photographer: capture window %d: %w", p.cfg.WindowID, err)
	}

	if pending.valid {
		if werr := p.writeScreenshot(img, pending.timecodeMS); werr != nil {
			return werr
		}
	}

	frameDuration := now.Sub(p.lastNow)

	// likelyChanged must run on every tick, including the first, so its
	// hash is warmed against this frame before the next tick asks "did it
	// change". Calling it only inside !save would skip tick 1 entirely.
	changed := p.differ.likelyChanged(img.Samples)

	save := p.lastFrame == nil || p.cfg.Natural
	if !save {
		identical := !changed && img.EqualSamples(p.lastFrame)
		if identical {
			p.currentIdle += frameDuration
			elide := !p.cfg.HasIdlePause || p.currentIdle >= p.cfg.IdlePause
			if elide {
				p.cfg.Idle.Add(frameDuration)
			} else {
				save = true
			}
		} else {
			p.currentIdle = 0
			save = true
		}
	} else {
		p.currentIdle = 0
	}

	if save {
		if err := p.writeFrame(img, tc); err != nil {
			return err
		}
		p.cfg.Frames.Append(model.FrameRecord{TimecodeMS: tc, Path: scratch.FramePathIn(p.cfg.ScratchDir, tc)})
		p.lastFrame = img
	}

	p.lastNow = now
	return nil
}

// adjustedTimecodeMS computes tc = (now - idle_duration) - start, spec.md
// §4.5 step 3.
func (p *Photographer) adjustedTimecodeMS(now time.Time) uint64 {
	elapsed := now.Sub(p.start) - p.cfg.Idle.Elapsed()
	if elapsed < 0 {
		elapsed = 0
	}
	return uint64(elapsed.Milliseconds())
}

func (p *Photographer) writeFrame(img *model.ImageBuffer, tc uint64) error {
	return writeImageBuffer(scratch.FramePathIn(p.cfg.ScratchDir, tc), img)
}

func (p *Photographer) writeScreenshot(img *model.ImageBuffer, tc uint64) error {
	path := scratch.ScreenshotPathIn(p.cfg.ScratchDir, tc)
	if err := writeImageBufferPNG(path, img); err != nil {
		return err
	}
	p.cfg.Screenshots.Append(model.ScreenshotInfo{TimecodeMS: tc, TempPath: path})
	return nil
}

// writeImageBuffer encodes an RGBA8 ImageBuffer as a BMP file, matching the
// t-rec-frame-*.bmp format spec.md §6 mandates for the output assembler's
// ffmpeg input.
func writeImageBuffer(path string, buf *model.ImageBuffer) error {
	// capture.Capturer always hands back RGBA8 (see capture.cropToMargin),
	// matching spec.md §4.5 step 8's "colour tag RGBA8".
	rgba := &image.RGBA{
		Pix:    buf.Samples,
		Stride: buf.Width * 4,
		Rect:   image.Rect(0, 0, buf.Width, buf.Height),
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("photographer: creating %s: %w", path, err)
	}
	defer f.Close()
	if err := bmp.Encode(f, rgba); err != nil {
		return fmt.Errorf("photographer: encoding %s: %w", path, err)
	}
	return nil
}

// writeImageBufferPNG encodes an RGBA8 ImageBuffer as a PNG file, matching
// the t-rec-screenshot-*.png scratch naming spec.md §6 mandates (unlike
// frame files, screenshots are never handed to an external encoder, so
// there's no reason to pay BMP's larger, uncompressed size for them).
func writeImageBufferPNG(path string, buf *model.ImageBuffer) error {
	rgba := &image.RGBA{
		Pix:    buf.Samples,
		Stride: buf.Width * 4,
		Rect:   image.Rect(0, 0, buf.Width, buf.Height),
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("photographer: creating %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, rgba); err != nil {
		return fmt.Errorf("photographer: encoding %s: %w", path, err)
	}
	return nil
}
