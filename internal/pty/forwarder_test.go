package pty

import (
	"bytes"
	"testing"
)

func newTestForwarder(needsCPR bool) (*Forwarder, *bytes.Buffer) {
	var written bytes.Buffer
	f := &Forwarder{
		host: &Host{
			Writer: &written,
		},
		stdout:  &bytes.Buffer{},
		cprDone: !needsCPR,
	}
	return f, &written
}

func TestMaybeAnswerCPRRespondsOnce(t *testing.T) {
	f, written := newTestForwarder(true)

	f.maybeAnswerCPR([]byte("garbage \x1b[6n more"))
	if !bytes.Equal(written.Bytes(), cprResponse) {
		t.Fatalf("expected CPR response written, got %q", written.Bytes())
	}

	written.Reset()
	f.maybeAnswerCPR([]byte("\x1b[6n"))
	if written.Len() != 0 {
		t.Fatalf("expected no second response, got %q", written.Bytes())
	}
}

func TestMaybeAnswerCPRGivesUpAfterScanLimit(t *testing.T) {
	f, written := newTestForwarder(true)

	f.maybeAnswerCPR(bytes.Repeat([]byte{'x'}, cprScanLimit))
	if !f.cprDone {
		t.Fatalf("expected scanning to stop after %d bytes", cprScanLimit)
	}
	if written.Len() != 0 {
		t.Fatalf("expected no response when request never appears, got %q", written.Bytes())
	}
}

func TestMaybeAnswerCPRNoopWhenNotNeeded(t *testing.T) {
	f, written := newTestForwarder(false)

	f.maybeAnswerCPR([]byte("\x1b[6n"))
	if written.Len() != 0 {
		t.Fatalf("expected no response on platforms without CPR handshake, got %q", written.Bytes())
	}
}
