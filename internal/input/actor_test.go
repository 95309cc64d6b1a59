package input

import (
	"bytes"
	"testing"
	"time"

	"github.com/shellrec/shellrec/internal/eventbus"
	"github.com/shellrec/shellrec/internal/model"
)

func newTestActor() (*Actor, *eventbus.Router, *eventbus.Subscription) {
	router := eventbus.New(8)
	sub := router.Subscribe()
	a := &Actor{
		State:          NewState(),
		Hotkeys:        DefaultHotkeyConfig(),
		Router:         router,
		RecordingStart: time.Now(),
		Idle:           model.NewIdleClock(),
	}
	return a, router, sub
}

func TestHandleKeyScreenshotHotkeyNotForwarded(t *testing.T) {
	a, _, sub := newTestActor()
	var out bytes.Buffer

	exit, err := a.handleKey(DecodedKey{Code: KeyF2, Raw: []byte{0x1b, 'O', 'Q'}}, &out)
	if err != nil || exit {
		t.Fatalf("exit=%v err=%v", exit, err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected hotkey not forwarded, got %q", out.Bytes())
	}

	ev, ok := eventbus.TryRecv(sub)
	if !ok || ev.Kind != eventbus.KindCapture || ev.Capture != eventbus.CaptureScreenshot {
		t.Fatalf("expected CaptureScreenshot event, got %+v ok=%v", ev, ok)
	}
}

func TestHandleKeyToggleHotkey(t *testing.T) {
	a, _, _ := newTestActor()
	var out bytes.Buffer

	if a.State.CaptureEnabled() {
		t.Fatal("expected capture disabled initially")
	}
	_, err := a.handleKey(DecodedKey{Code: KeyF3, Raw: []byte{0x1b, 'O', 'R'}}, &out)
	if err != nil {
		t.Fatal(err)
	}
	if !a.State.CaptureEnabled() {
		t.Fatal("expected F3 to enable capture")
	}
}

func TestHandleKeyCtrlDPublishesStopThenShutdown(t *testing.T) {
	a, _, sub := newTestActor()
	var out bytes.Buffer

	exit, err := a.handleKey(DecodedKey{Ctrl: true, Letter: 'D', Raw: []byte{0x04}}, &out)
	if err != nil || !exit {
		t.Fatalf("exit=%v err=%v, want exit=true", exit, err)
	}

	ev1, ok1 := eventbus.TryRecv(sub)
	ev2, ok2 := eventbus.TryRecv(sub)
	if !ok1 || ev1.Capture != eventbus.CaptureStop {
		t.Fatalf("expected CaptureStop first, got %+v", ev1)
	}
	if !ok2 || ev2.Lifecycle != eventbus.LifecycleShutdown {
		t.Fatalf("expected LifecycleShutdown second, got %+v", ev2)
	}
}

func TestHandleKeyForwardsPlainCharAndLogsWhenEnabled(t *testing.T) {
	a, _, _ := newTestActor()
	a.State.ToggleCapture()
	var out bytes.Buffer

	exit, err := a.handleKey(DecodedKey{Rune: 'x', Raw: []byte("x")}, &out)
	if err != nil || exit {
		t.Fatalf("exit=%v err=%v", exit, err)
	}
	if out.String() != "x" {
		t.Fatalf("expected forwarded byte 'x', got %q", out.String())
	}
	if len(a.State.Keystrokes()) != 1 || a.State.Keystrokes()[0].Name != "x" {
		t.Fatalf("expected keystroke logged, got %+v", a.State.Keystrokes())
	}
}

func TestHandleKeyForwardsWithoutLoggingWhenDisabled(t *testing.T) {
	a, _, _ := newTestActor()
	var out bytes.Buffer

	_, err := a.handleKey(DecodedKey{Rune: 'y', Raw: []byte("y")}, &out)
	if err != nil {
		t.Fatal(err)
	}
	if out.String() != "y" {
		t.Fatalf("expected forwarded byte, got %q", out.String())
	}
	if len(a.State.Keystrokes()) != 0 {
		t.Fatalf("expected no keystroke logged while capture disabled, got %+v", a.State.Keystrokes())
	}
}
