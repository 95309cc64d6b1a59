package output

import (
	"context"
	"testing"
	"time"
)

func TestCentisecondsMSRoundsToNearest(t *testing.T) {
	cases := []struct {
		ms   uint64
		want string
	}{
		{0, "0"},
		{10, "1"},
		{25, "3"}, // round(25/10) = 3 (2.5 rounds up)
		{24, "2"},
		{100, "10"},
	}
	for _, c := range cases {
		if got := centisecondsMS(c.ms); got != c.want {
			t.Errorf("centisecondsMS(%d) = %s, want %s", c.ms, got, c.want)
		}
	}
}

func TestCentisecondsConvertsDuration(t *testing.T) {
	if got := centiseconds(1500 * time.Millisecond); got != "150" {
		t.Fatalf("centiseconds(1.5s) = %s, want 150", got)
	}
	if got := centiseconds(0); got != "0" {
		t.Fatalf("centiseconds(0) = %s, want 0", got)
	}
}

func TestPreflightCheckSkipsUnrequestedFormats(t *testing.T) {
	if err := PreflightCheck(Config{}); err != nil {
		t.Fatalf("PreflightCheck with no formats requested should never fail, got %v", err)
	}
}

func TestGenerateGIFRejectsEmptyFrameList(t *testing.T) {
	if err := GenerateGIF(context.Background(), nil, Config{OutputBase: "/tmp/out"}); err == nil {
		t.Fatal("expected an error for an empty frame list")
	}
}

func TestGenerateMP4RejectsEmptyFrameList(t *testing.T) {
	if err := GenerateMP4(context.Background(), nil, "/tmp", Config{OutputBase: "/tmp/out", FPS: 15}); err == nil {
		t.Fatal("expected an error for an empty frame list")
	}
}
