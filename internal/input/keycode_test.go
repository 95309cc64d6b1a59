package input

import "testing"

func TestDecodeOnePlainChar(t *testing.T) {
	keys, consumed := decodeAll([]byte("a"))
	if consumed != 1 || len(keys) != 1 {
		t.Fatalf("decodeAll(%q) = %v, %d", "a", keys, consumed)
	}
	if keys[0].Rune != 'a' || keys[0].Name() != "a" {
		t.Fatalf("got %+v", keys[0])
	}
}

func TestDecodeOneCtrlD(t *testing.T) {
	keys, consumed := decodeAll([]byte{0x04})
	if consumed != 1 || len(keys) != 1 {
		t.Fatalf("consumed=%d keys=%v", consumed, keys)
	}
	if !keys[0].Ctrl || keys[0].Letter != 'D' {
		t.Fatalf("got %+v, want Ctrl+D", keys[0])
	}
	if keys[0].Name() != "Ctrl+D" {
		t.Fatalf("Name() = %q, want Ctrl+D", keys[0].Name())
	}
}

func TestDecodeArrowKeys(t *testing.T) {
	cases := map[string]KeyCode{
		"\x1b[A": KeyUp,
		"\x1b[B": KeyDown,
		"\x1b[C": KeyRight,
		"\x1b[D": KeyLeft,
	}
	for seq, want := range cases {
		keys, consumed := decodeAll([]byte(seq))
		if len(keys) != 1 || keys[0].Code != want || consumed != len(seq) {
			t.Fatalf("decodeAll(%q) = %v, consumed=%d, want %v", seq, keys, consumed, want)
		}
	}
}

func TestDecodeFunctionKeys(t *testing.T) {
	cases := map[string]KeyCode{
		"\x1bOP":    KeyF1,
		"\x1bOQ":    KeyF2,
		"\x1b[15~":  KeyF5,
		"\x1b[24~":  KeyF12,
	}
	for seq, want := range cases {
		keys, consumed := decodeAll([]byte(seq))
		if len(keys) != 1 || keys[0].Code != want || consumed != len(seq) {
			t.Fatalf("decodeAll(%q) = %v, consumed=%d, want %v", seq, keys, consumed, want)
		}
	}
}

func TestDecodeIncompleteEscapeWaitsForMoreBytes(t *testing.T) {
	keys, consumed := decodeAll([]byte{0x1b, '['})
	if len(keys) != 0 || consumed != 0 {
		t.Fatalf("expected incomplete sequence to wait, got keys=%v consumed=%d", keys, consumed)
	}
}

func TestDecodeMultipleKeysInOneChunk(t *testing.T) {
	keys, consumed := decodeAll([]byte("ab\r"))
	if consumed != 3 || len(keys) != 3 {
		t.Fatalf("consumed=%d keys=%v", consumed, keys)
	}
	if keys[0].Rune != 'a' || keys[1].Rune != 'b' || keys[2].Code != KeyEnter {
		t.Fatalf("got %+v", keys)
	}
}

func TestDecodeBackspaceAndTab(t *testing.T) {
	keys, consumed := decodeAll([]byte{0x7f, 0x09})
	if consumed != 2 || len(keys) != 2 {
		t.Fatalf("consumed=%d keys=%v", consumed, keys)
	}
	if keys[0].Code != KeyBackspace || keys[1].Code != KeyTab {
		t.Fatalf("got %+v", keys)
	}
}
