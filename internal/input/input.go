// Package input implements the Input Actor (C4): raw-mode terminal
// handling, hotkey dispatch, keystroke logging, and shell byte forwarding.
// The platform split lives in poll_unix.go (nonblocking syscall.Read
// polling, mirroring the teacher's terminal host) and poll_windows.go
// (blocking reads off a background goroutine, since Windows stdin has no
// non-blocking mode).
package input

import (
	"sync"
	"sync/atomic"

	"github.com/shellrec/shellrec/internal/logging"
	"github.com/shellrec/shellrec/internal/model"
)

var log = logging.L("input")

// Hotkey names a configured action bound to a function key.
type Hotkey int

const (
	HotkeyNone Hotkey = iota
	HotkeyScreenshot
	HotkeyToggleKeystrokeCapture
)

// HotkeyConfig maps function keys to actions. The zero value has no
// hotkeys bound; DefaultHotkeyConfig matches spec.md §4.4.
type HotkeyConfig struct {
	Screenshot             KeyCode
	ToggleKeystrokeCapture KeyCode
}

// DefaultHotkeyConfig is F2 = Screenshot, F3 = ToggleKeystrokeCapture.
func DefaultHotkeyConfig() HotkeyConfig {
	return HotkeyConfig{
		Screenshot:             KeyF2,
		ToggleKeystrokeCapture: KeyF3,
	}
}

func (h HotkeyConfig) lookup(code KeyCode) Hotkey {
	if code == KeyNone {
		return HotkeyNone
	}
	switch code {
	case h.Screenshot:
		return HotkeyScreenshot
	case h.ToggleKeystrokeCapture:
		return HotkeyToggleKeystrokeCapture
	default:
		return HotkeyNone
	}
}

// State is the shared, concurrency-safe keystroke log and capture-enabled
// flag. The orchestrator owns one per session; a future overlay renderer
// (C6, out of scope here) would read Keystrokes after the session ends.
type State struct {
	mu         sync.Mutex
	keystrokes []model.Keystroke
	enabled    atomic.Bool
}

// NewState returns a State with keystroke capture initially disabled.
func NewState() *State {
	return &State{}
}

// ToggleCapture flips the enabled flag and returns the new value.
func (s *State) ToggleCapture() bool {
	for {
		old := s.enabled.Load()
		if s.enabled.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// CaptureEnabled reports whether keystroke capture is currently on.
func (s *State) CaptureEnabled() bool {
	return s.enabled.Load()
}

// Push appends a keystroke record.
func (s *State) Push(k model.Keystroke) {
	s.mu.Lock()
	s.keystrokes = append(s.keystrokes, k)
	s.mu.Unlock()
}

// Keystrokes returns a copy of the log collected so far.
func (s *State) Keystrokes() []model.Keystroke {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Keystroke, len(s.keystrokes))
	copy(out, s.keystrokes)
	return out
}
