// Package pty implements the PTY Host (C3): spawns a child shell attached to
// a pseudo-terminal and forwards its output to the process's stdout, with
// a Windows ConPTY variant that additionally answers the shell's initial
// cursor-position-report request.
package pty

import (
	"errors"
	"io"

	"github.com/shellrec/shellrec/internal/logging"
)

var log = logging.L("pty")

// ErrNotStarted is returned by operations that require a running PTY.
var ErrNotStarted = errors.New("pty: session not started")

// waiter abstracts "block until the child shell exits": an *exec.Cmd on
// Unix, a raw process handle on Windows (ConPTY attaches to startup info
// that os/exec has no hook for, so the Windows backend can't use exec.Cmd).
type waiter interface {
	Wait() error
}

// Host is a live pseudo-terminal pair with a running child shell. The
// platform-specific Spawn implementations populate Reader/Writer/Resize/Wait
// and set NeedsCPRHandshake when the platform requires the forwarder to
// answer a cursor-position-report request (Windows ConPTY only).
type Host struct {
	// Reader yields the shell's combined stdout/stderr stream (the PTY
	// master's read side).
	Reader io.Reader
	// Writer carries keystrokes to the shell (the PTY master's write side).
	Writer io.Writer

	NeedsCPRHandshake bool

	cmd     waiter
	closeFn func() error
	resize  func(cols, rows uint16) error
}

// Spawn creates a pseudo-terminal, copies the given initial size onto it,
// and starts program as the session leader with the slave side as its
// controlling terminal and stdio.
func Spawn(program string, cols, rows uint16) (*Host, error) {
	return spawn(program, cols, rows)
}

// Resize propagates a new terminal size to the running shell.
func (h *Host) Resize(cols, rows uint16) error {
	if h.resize == nil {
		return ErrNotStarted
	}
	return h.resize(cols, rows)
}

// Wait blocks until the child shell exits and returns its error, if any.
func (h *Host) Wait() error {
	if h.cmd == nil {
		return ErrNotStarted
	}
	return h.cmd.Wait()
}

// Close releases the PTY's OS resources. Idempotent.
func (h *Host) Close() error {
	if h.closeFn == nil {
		return nil
	}
	return h.closeFn()
}
