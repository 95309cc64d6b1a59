// Package session implements the Session Orchestrator (C9): the fifteen
// step sequence spec.md §4.8 lays out, wiring every other component
// together for a single foreground recording. Grounded on
// cmd/breeze-agent/main.go's runAgent() startup sequence — load config,
// initialize logging, construct the long-lived components, run until
// shutdown, tear down in order — adapted from a daemon's start/stop
// lifecycle to a recording's single linear run.
package session

import (
	"context"
	"fmt"
	"image"
	"os"
	"time"

	_ "golang.org/x/image/bmp" // registers "bmp" with image.DecodeConfig, for firstFrameDims
	"golang.org/x/term"

	"github.com/shellrec/shellrec/internal/capture"
	"github.com/shellrec/shellrec/internal/config"
	"github.com/shellrec/shellrec/internal/eventbus"
	"github.com/shellrec/shellrec/internal/input"
	"github.com/shellrec/shellrec/internal/logging"
	"github.com/shellrec/shellrec/internal/model"
	"github.com/shellrec/shellrec/internal/output"
	"github.com/shellrec/shellrec/internal/photographer"
	"github.com/shellrec/shellrec/internal/postprocess"
	"github.com/shellrec/shellrec/internal/presenter"
	"github.com/shellrec/shellrec/internal/publish"
	"github.com/shellrec/shellrec/internal/pty"
	"github.com/shellrec/shellrec/internal/scratch"
	"github.com/shellrec/shellrec/internal/wintarget"
	"github.com/shellrec/shellrec/internal/workerpool"
)

var log = logging.L("session")

// countdownSeconds is spec.md §4.8 step 8's pre-recording countdown.
const countdownSeconds = 3

// shellInitDelay is spec.md §4.8 step 10's wait for the shell to finish
// initializing before Capture::Start is published.
const shellInitDelay = 350 * time.Millisecond

// Summary is printed to the user at the end of a session and returned to
// callers that want it (e.g. a future scripting surface).
type Summary struct {
	GIFPath    string
	MP4Path    string
	PublishURI string
	FrameCount int
}

// Run executes a full foreground recording session: spec.md §4.8 steps 1
// through 15, in order. cfg is the fully resolved configuration (defaults
// ⊕ profile ⊕ CLI already merged by the caller).
func Run(ctx context.Context, cfg *config.Config) (*Summary, error) {
	outCfg := buildOutputConfig(cfg)
	if err := output.PreflightCheck(outCfg); err != nil { // step 1
		return nil, err
	}

	settings, err := resolveSettings(cfg) // step 2 (the part config.Load doesn't already do)
	if err != nil {
		return nil, err
	}

	capturer, err := capture.New()
	if err != nil {
		return nil, fmt.Errorf("session: constructing capturer: %w", err)
	}
	defer capturer.Close()

	winID, err := wintarget.Resolve(capturer, cfg.WinID) // step 3
	if err != nil {
		return nil, err
	}

	if err := capturer.Calibrate(winID); err != nil { // step 4
		return nil, fmt.Errorf("session: calibrating window %d: %w", uint64(winID), err)
	}

	postCfg := postprocess.Config{Decor: settings.Decor, Background: settings.Background, Wallpaper: settings.Wallpaper}

	scratchDir, err := scratch.New() // step 6 (directory)
	if err != nil {
		return nil, err
	}
	defer scratchDir.Close() // step 15

	router := eventbus.New(eventbus.DefaultQueueCapacity) // step 6 (router)
	frames := model.NewFrameLog()
	screenshots := model.NewScreenshotLog()
	idle := model.NewIdleClock()
	inputState := input.NewState()

	idlePause, hasIdlePause := cfg.IdlePauseDuration()

	photo := photographer.New(photographer.Config{ // step 7
		Capturer:     capturer,
		WindowID:     winID,
		Router:       router,
		ScratchDir:   scratchDir.Path(),
		FPS:          cfg.FPS,
		Natural:      cfg.Natural,
		IdlePause:    idlePause,
		HasIdlePause: hasIdlePause,
		Frames:       frames,
		Screenshots:  screenshots,
		Idle:         idle,
	})

	photoDone := make(chan error, 1)
	go func() { photoDone <- photo.Run(time.Now()) }()

	printStartupMessages(cfg) // step 8
	countdown(countdownSeconds)
	clearScreen()

	cols, rows := terminalSize()
	host, err := pty.Spawn(cfg.Program, cols, rows) // step 9 (PTY)
	if err != nil {
		return nil, fmt.Errorf("session: spawning %q: %w", cfg.Program, err)
	}
	defer host.Close()

	forwarder := pty.NewForwarder(host, router)
	forwarderDone := make(chan error, 1)
	go func() { forwarderDone <- forwarder.Run() }()

	recordingStart := time.Now()
	actor := input.NewActor(inputState, router, recordingStart, idle) // step 9 (Input actor)
	actorDone := make(chan error, 1)
	go func() { actorDone <- actor.Run(int(os.Stdin.Fd()), host.Writer) }()

	time.Sleep(shellInitDelay) // step 10
	router.Send(eventbus.CaptureStartEvent())

	presenter.Run(router) // step 11: hands the main thread over until Shutdown/Error

	router.Send(eventbus.LifecycleShutdownEvent()) // step 12
	if err := joinAll(photoDone, forwarderDone, actorDone); err != nil {
		log.Warn("one or more actors returned an error during shutdown", "error", err)
	}

	frameList := frames.Frames()
	if len(frameList) == 0 {
		return nil, fmt.Errorf("session: no frames were captured")
	}
	shotList := screenshots.Screenshots()

	if settings.Wallpaper.Kind != model.WallpaperNone {
		w, h, err := firstFrameDims(frameList[0].Path)
		if err != nil {
			return nil, err
		}
		if err := postprocess.ValidateWallpaper(postCfg, w, h); err != nil {
			return nil, err
		}
	}

	pool := workerpool.New(4, len(frameList)+len(shotList)+1)
	if err := postprocess.Run(ctx, postCfg, frameList, shotList, cfg.Output, pool); err != nil { // step 13
		return nil, err
	}

	summary := &Summary{FrameCount: len(frameList)}

	if outCfg.GIF { // step 14
		if err := output.GenerateGIF(ctx, frameList, outCfg); err != nil {
			return nil, err
		}
		summary.GIFPath = outCfg.OutputBase + ".gif"
	}
	if outCfg.MP4 {
		if err := output.GenerateMP4(ctx, frameList, scratchDir.Path(), outCfg); err != nil {
			return nil, err
		}
		summary.MP4Path = outCfg.OutputBase + ".mp4"
	}

	if cfg.Publish != "" {
		primary := summary.GIFPath
		if primary == "" {
			primary = summary.MP4Path
		}
		target, err := publish.ParseTarget(cfg.Publish)
		if err != nil {
			return nil, err
		}
		uri, err := publish.Run(ctx, target, primary)
		if err != nil {
			return nil, err
		}
		summary.PublishURI = uri
	}

	printSummary(summary) // step 15
	return summary, nil
}

func buildOutputConfig(cfg *config.Config) output.Config {
	return output.Config{
		OutputBase:    cfg.Output,
		GIF:           !cfg.VideoOnly,
		MP4:           cfg.Video,
		FPS:           cfg.FPS,
		StartPause:    time.Duration(cfg.StartPauseMS) * time.Millisecond,
		HasStartPause: cfg.StartPauseMS > 0,
		EndPause:      time.Duration(cfg.EndPauseMS) * time.Millisecond,
		HasEndPause:   cfg.EndPauseMS > 0,
	}
}

// firstFrameDims reads the dimensions of the first captured frame, the
// only dimension source available once recording has started — Capturer
// exposes no getter before a frame is actually captured.
func firstFrameDims(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("session: opening %s: %w", path, err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("session: reading frame dimensions from %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}

func terminalSize() (uint16, uint16) {
	cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || cols <= 0 || rows <= 0 {
		return 80, 24
	}
	return uint16(cols), uint16(rows)
}

func printStartupMessages(cfg *config.Config) {
	fmt.Printf("Recording started. Output will be written to %s\n", cfg.Output)
	fmt.Println("Press Ctrl-D to stop. F2 takes a screenshot, F3 toggles keystroke capture.")
}

func countdown(seconds int) {
	for i := seconds; i > 0; i-- {
		fmt.Printf("%d...\n", i)
		time.Sleep(time.Second)
	}
}

func clearScreen() {
	fmt.Print("\x1b[2J\x1b[H")
}

func printSummary(s *Summary) {
	fmt.Printf("Recorded %d frames.\n", s.FrameCount)
	if s.GIFPath != "" {
		fmt.Printf("GIF:  %s\n", s.GIFPath)
	}
	if s.MP4Path != "" {
		fmt.Printf("MP4:  %s\n", s.MP4Path)
	}
	if s.PublishURI != "" {
		fmt.Printf("Published: %s\n", s.PublishURI)
	}
}

// joinAllTimeout bounds joinAll so a single misbehaving actor can't hang the
// whole session forever; every actor here (photographer, forwarder, input)
// observes Lifecycle::Shutdown within a handful of milliseconds, so this is
// generous.
const joinAllTimeout = 5 * time.Second

// joinAll waits for every actor's result, returning the first non-nil error
// observed (spec.md §4.8 step 12's "propagating errors"). An actor that
// hasn't reported back within joinAllTimeout is logged and skipped rather
// than left to block shutdown indefinitely.
func joinAll(chans ...chan error) error {
	var first error
	for i, c := range chans {
		select {
		case err := <-c:
			if err != nil && first == nil {
				first = err
			}
		case <-time.After(joinAllTimeout):
			log.Warn("actor did not report back before shutdown timeout", "index", i)
		}
	}
	return first
}
