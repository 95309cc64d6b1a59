package input

import (
	"fmt"
	"unicode/utf8"
)

// KeyCode symbolically names a decoded key, independent of the raw bytes
// a terminal used to encode it.
type KeyCode string

const (
	KeyNone      KeyCode = ""
	KeyEnter     KeyCode = "Return"
	KeyTab       KeyCode = "Tab"
	KeyBackspace KeyCode = "Backspace"
	KeyEscape    KeyCode = "Escape"
	KeyDelete    KeyCode = "Delete"
	KeyUp        KeyCode = "Up"
	KeyDown      KeyCode = "Down"
	KeyLeft      KeyCode = "Left"
	KeyRight     KeyCode = "Right"
	KeyHome      KeyCode = "Home"
	KeyEnd       KeyCode = "End"
	KeyPageUp    KeyCode = "PageUp"
	KeyPageDown  KeyCode = "PageDown"
	KeyInsert    KeyCode = "Insert"
	KeyF1        KeyCode = "F1"
	KeyF2        KeyCode = "F2"
	KeyF3        KeyCode = "F3"
	KeyF4        KeyCode = "F4"
	KeyF5        KeyCode = "F5"
	KeyF6        KeyCode = "F6"
	KeyF7        KeyCode = "F7"
	KeyF8        KeyCode = "F8"
	KeyF9        KeyCode = "F9"
	KeyF10       KeyCode = "F10"
	KeyF11       KeyCode = "F11"
	KeyF12       KeyCode = "F12"
)

// DecodedKey is one key press, already carrying the exact bytes the
// terminal sent for it (raw mode delivers control and escape sequences
// pre-encoded, so forwarding is a pass-through of Raw).
type DecodedKey struct {
	Code KeyCode
	Raw  []byte
	// Ctrl is set for Ctrl+<letter> combinations decoded from bytes
	// 0x01-0x1A; Letter holds the uppercase letter in that case.
	Ctrl   bool
	Letter byte
	// Rune holds the decoded character when Code == KeyNone and this is
	// a plain printable key press.
	Rune rune
}

// escapeSeq maps a complete xterm escape sequence (bytes after the leading
// ESC) to its KeyCode. Matches original_source/src/input/mod.rs's
// key_to_bytes table read in reverse.
var escapeSeq = map[string]KeyCode{
	"OP":    KeyF1,
	"OQ":    KeyF2,
	"OR":    KeyF3,
	"OS":    KeyF4,
	"[15~":  KeyF5,
	"[17~":  KeyF6,
	"[18~":  KeyF7,
	"[19~":  KeyF8,
	"[20~":  KeyF9,
	"[21~":  KeyF10,
	"[23~":  KeyF11,
	"[24~":  KeyF12,
	"[A":    KeyUp,
	"[B":    KeyDown,
	"[C":    KeyRight,
	"[D":    KeyLeft,
	"[H":    KeyHome,
	"[F":    KeyEnd,
	"[5~":   KeyPageUp,
	"[6~":   KeyPageDown,
	"[2~":   KeyInsert,
	"[3~":   KeyDelete,
}

// maxEscapeSeqLen bounds how many buffered bytes, the ESC itself included,
// decodeOne will wait for before giving up and treating the lone ESC as
// KeyEscape.
const maxEscapeSeqLen = 5

// decodeOne consumes the longest recognizable key at the front of buf and
// returns it along with the number of bytes consumed. ok is false when buf
// starts an escape sequence that is not yet complete (the caller keeps the
// bytes and calls again once more arrive; once maxEscapeSeqLen bytes are
// buffered without a match, the leading ESC is returned as KeyEscape).
func decodeOne(buf []byte) (DecodedKey, int, bool) {
	if len(buf) == 0 {
		return DecodedKey{}, 0, false
	}

	b := buf[0]

	if b == 0x1b {
		if len(buf) == 1 {
			return DecodedKey{}, 0, false
		}
		for seq, code := range escapeSeq {
			n := len(seq) + 1
			if len(buf) >= n && string(buf[1:n]) == seq {
				return DecodedKey{Code: code, Raw: append([]byte(nil), buf[:n]...)}, n, true
			}
		}
		if len(buf) >= maxEscapeSeqLen {
			// Nothing matched within the window; treat as a lone Escape
			// and let the remaining bytes decode on the next call.
			return DecodedKey{Code: KeyEscape, Raw: []byte{0x1b}}, 1, true
		}
		return DecodedKey{}, 0, false
	}

	switch b {
	case 0x0d:
		return DecodedKey{Code: KeyEnter, Raw: []byte{b}}, 1, true
	case 0x09:
		return DecodedKey{Code: KeyTab, Raw: []byte{b}}, 1, true
	case 0x7f:
		return DecodedKey{Code: KeyBackspace, Raw: []byte{b}}, 1, true
	}

	if b >= 0x01 && b <= 0x1a {
		letter := b - 1 + 'A'
		return DecodedKey{Ctrl: true, Letter: letter, Raw: []byte{b}}, 1, true
	}

	r, size := utf8.DecodeRune(buf)
	if r == utf8.RuneError && size <= 1 {
		// Incomplete multi-byte UTF-8 sequence; wait for more bytes.
		if len(buf) < utf8.UTFMax {
			return DecodedKey{}, 0, false
		}
		// Invalid byte even with a full buffer: forward it verbatim.
		return DecodedKey{Rune: rune(b), Raw: []byte{b}}, 1, true
	}
	return DecodedKey{Rune: r, Raw: append([]byte(nil), buf[:size]...)}, size, true
}

// decodeAll extracts every complete key in buf, returning the decoded keys
// and the number of leading bytes consumed. Trailing bytes that don't yet
// form a complete key are left in buf for the next read.
func decodeAll(buf []byte) ([]DecodedKey, int) {
	var keys []DecodedKey
	consumed := 0
	for consumed < len(buf) {
		key, n, ok := decodeOne(buf[consumed:])
		if !ok {
			break
		}
		keys = append(keys, key)
		consumed += n
	}
	return keys, consumed
}

// Name renders a human-readable label for the overlay log, matching
// original_source/src/input/mod.rs's format_key_name.
func (k DecodedKey) Name() string {
	if k.Ctrl {
		return fmt.Sprintf("Ctrl+%c", k.Letter)
	}
	if k.Code != KeyNone {
		return string(k.Code)
	}
	if k.Rune != 0 {
		return string(k.Rune)
	}
	return "Unknown"
}
