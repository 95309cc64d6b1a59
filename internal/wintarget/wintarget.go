// Package wintarget resolves the window a session should record, spec.md
// §4.8 step 3: an explicit id wins, then the WINDOWID environment variable,
// then TERM_PROGRAM mapped to a well-known terminal emulator process, and
// finally the capturer's notion of the active window.
package wintarget

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/shellrec/shellrec/internal/capture"
	"github.com/shellrec/shellrec/internal/logging"
	"github.com/shellrec/shellrec/internal/model"
)

var log = logging.L("wintarget")

// termProgramProcess maps a TERM_PROGRAM value to the process name gopsutil
// would see for that emulator, so the env var can be cross-checked against
// a live process before it's trusted.
var termProgramProcess = map[string]string{
	"iterm.app":      "iterm2",
	"apple_terminal": "terminal",
	"vscode":         "code",
	"wezterm":        "wezterm-gui",
	"alacritty":      "alacritty",
	"hyper":          "hyper",
	"kitty":          "kitty",
	"tabby":          "tabby",
}

// Resolve implements the four-step fallback. explicitID is the --win-id
// flag value (0 means unset); capturer is used both for the
// TERM_PROGRAM-to-title cross reference and the final active-window
// fallback.
func Resolve(capturer capture.Capturer, explicitID uint64) (model.WindowID, error) {
	if explicitID != 0 {
		log.Debug("window resolved from explicit id", "win_id", explicitID)
		return model.WindowID(explicitID), nil
	}

	if raw := os.Getenv("WINDOWID"); raw != "" {
		id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("wintarget: WINDOWID=%q is not a valid number: %w", raw, err)
		}
		log.Debug("window resolved from WINDOWID", "win_id", id)
		return model.WindowID(id), nil
	}

	if term := os.Getenv("TERM_PROGRAM"); term != "" {
		if id, ok := resolveFromTermProgram(capturer, term); ok {
			log.Debug("window resolved from TERM_PROGRAM", "term_program", term, "win_id", uint64(id))
			return id, nil
		}
		log.Warn("TERM_PROGRAM set but no matching window/process found, falling back to active window", "term_program", term)
	}

	id, err := capturer.ActiveWindow()
	if err != nil {
		return 0, fmt.Errorf("wintarget: resolving active window: %w", err)
	}
	log.Debug("window resolved from active window fallback", "win_id", uint64(id))
	return id, nil
}

// resolveFromTermProgram confirms the emulator TERM_PROGRAM names is
// actually running, then finds a window whose title references it.
func resolveFromTermProgram(capturer capture.Capturer, termProgram string) (model.WindowID, bool) {
	procName, known := termProgramProcess[strings.ToLower(termProgram)]
	if !known {
		return 0, false
	}
	if !processRunning(procName) {
		return 0, false
	}

	windows, err := capturer.Enumerate()
	if err != nil {
		log.Warn("enumerate failed while resolving TERM_PROGRAM window", "error", err)
		return 0, false
	}
	for _, w := range windows {
		if strings.Contains(strings.ToLower(w.Title), strings.ToLower(termProgram)) ||
			strings.Contains(strings.ToLower(w.Title), procName) {
			return w.ID, true
		}
	}
	return 0, false
}

// processRunning reports whether a process with the given (case-insensitive)
// name is present in the current process table.
func processRunning(name string) bool {
	procs, err := process.Processes()
	if err != nil {
		log.Warn("listing processes failed", "error", err)
		return false
	}
	want := strings.ToLower(name)
	for _, p := range procs {
		pname, err := p.Name()
		if err != nil {
			continue
		}
		if strings.ToLower(pname) == want {
			return true
		}
	}
	return false
}
