package input

import (
	"errors"
	"io"
	"time"

	"golang.org/x/term"

	"github.com/shellrec/shellrec/internal/eventbus"
	"github.com/shellrec/shellrec/internal/model"
)

// pollInterval is how long each stdin poll waits before giving the main
// loop a chance to check for shutdown, per spec.md §4.4.
const pollInterval = 50 * time.Millisecond

// Actor is the C4 input actor: one per session, run on its own goroutine.
type Actor struct {
	State          *State
	Hotkeys        HotkeyConfig
	Router         *eventbus.Router
	RecordingStart time.Time
	Idle           *model.IdleClock

	fd int
}

// NewActor builds an actor with the default hotkey bindings.
func NewActor(state *State, router *eventbus.Router, recordingStart time.Time, idle *model.IdleClock) *Actor {
	return &Actor{
		State:          state,
		Hotkeys:        DefaultHotkeyConfig(),
		Router:         router,
		RecordingStart: recordingStart,
		Idle:           idle,
	}
}

// Run puts stdin into raw mode, forwards keys to shellStdin, and returns
// once Ctrl-D or Lifecycle::Shutdown is observed. Raw mode is always
// restored before returning, including on error.
func (a *Actor) Run(fd int, shellStdin io.Writer) error {
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	log.Debug("raw mode enabled")
	defer func() {
		if rerr := term.Restore(fd, oldState); rerr != nil {
			log.Warn("failed to restore terminal state", "error", rerr)
		}
	}()

	a.fd = fd
	sub := a.Router.Subscribe()
	defer a.Router.Unsubscribe(sub)

	var pending []byte

	for {
		shuttingDown := false
		eventbus.DrainAll(sub, func(ev eventbus.Event) bool {
			if ev.Kind == eventbus.KindLifecycle && ev.Lifecycle == eventbus.LifecycleShutdown {
				shuttingDown = true
				return false
			}
			return true
		})
		if shuttingDown {
			return nil
		}

		chunk, err := pollStdin(fd, pollInterval)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if len(chunk) == 0 {
			continue
		}
		pending = append(pending, chunk...)

		keys, consumed := decodeAll(pending)
		pending = pending[consumed:]

		for _, key := range keys {
			exit, werr := a.handleKey(key, shellStdin)
			if werr != nil {
				return werr
			}
			if exit {
				return nil
			}
		}
	}
}

// handleKey implements spec.md §4.4 steps 1-4.
func (a *Actor) handleKey(key DecodedKey, shellStdin io.Writer) (exit bool, err error) {
	if hk := a.Hotkeys.lookup(key.Code); hk != HotkeyNone {
		switch hk {
		case HotkeyScreenshot:
			a.triggerScreenshot()
		case HotkeyToggleKeystrokeCapture:
			enabled := a.State.ToggleCapture()
			log.Debug("keystroke capture toggled", "enabled", enabled)
		}
		return false, nil
	}

	if key.Ctrl && key.Letter == 'D' {
		// Forward the raw EOF byte first so the shell itself sees its stdin
		// close and can exit on its own, rather than being left idle and
		// only reaped later when the PTY master is closed.
		if len(key.Raw) > 0 {
			shellStdin.Write(key.Raw)
		}
		a.Router.Send(eventbus.CaptureStopEvent())
		a.Router.Send(eventbus.LifecycleShutdownEvent())
		return true, nil
	}

	if a.State.CaptureEnabled() {
		a.State.Push(model.Keystroke{
			Name:       key.Name(),
			AdjustedMS: a.adjustedTimecodeMS(),
		})
	}

	if len(key.Raw) > 0 {
		if _, werr := shellStdin.Write(key.Raw); werr != nil {
			return false, werr
		}
	}
	return false, nil
}

func (a *Actor) triggerScreenshot() {
	tc := a.adjustedTimecodeMS()
	a.Router.Send(eventbus.CaptureScreenshotEvent(tc))
	a.Router.Send(eventbus.FlashScreenshotTakenEvent())
	log.Debug("screenshot hotkey triggered", "timecode_ms", tc)
}

// adjustedTimecodeMS mirrors the photographer's tc formula (spec.md §4.5
// step 3) so keystroke and screenshot timestamps land on the same timeline
// as saved frames.
func (a *Actor) adjustedTimecodeMS() uint64 {
	elapsed := time.Since(a.RecordingStart) - a.Idle.Elapsed()
	if elapsed < 0 {
		elapsed = 0
	}
	return uint64(elapsed.Milliseconds())
}
