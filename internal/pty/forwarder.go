package pty

import (
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/shellrec/shellrec/internal/eventbus"
)

// cprRequest is the cursor-position-report request cmd.exe issues at
// startup (ESC [ 6 n); cprResponse is the canonical "cursor at row 1, col 1"
// reply (ESC [ 1 ; 1 R). Without this handshake on ConPTY, cmd.exe blocks
// forever waiting for an answer a real terminal would have supplied.
var (
	cprRequest  = []byte{0x1b, '[', '6', 'n'}
	cprResponse = []byte{0x1b, '[', '1', ';', '1', 'R'}
)

const cprScanLimit = 500

// Forwarder is the C3 forwarding task: reads the PTY master, writes to the
// process's stdout, and selects on the event router's shutdown subscription
// between reads so it can stop promptly on shutdown even while the shell is
// idle.
type Forwarder struct {
	host   *Host
	stdout io.Writer
	sub    *eventbus.Subscription

	cprDone bool
	scanned int
}

// NewForwarder builds a forwarder writing to stdout, subscribed to router
// for the shutdown signal.
func NewForwarder(host *Host, router *eventbus.Router) *Forwarder {
	return &Forwarder{
		host:   host,
		stdout: os.Stdout,
		sub:    router.Subscribe(),
		cprDone: !host.NeedsCPRHandshake,
	}
}

// readResult is one PTY master read, handed from the background reader
// goroutine to Run's select loop.
type readResult struct {
	n   int
	err error
}

// Run reads from the PTY master in a loop, forwarding bytes to stdout, until
// Lifecycle::Shutdown is observed or the master read returns EOF/error. The
// master read happens on a background goroutine so Run can select on it
// alongside the shutdown subscription: a plain blocking Read() on f.host.Reader
// would otherwise never wake up once the shell goes idle, leaving Shutdown
// unobserved until the next byte of shell output arrives (which, after
// Ctrl-D, may be never).
func (f *Forwarder) Run() error {
	buf := make([]byte, 4096)
	results := make(chan readResult, 1)
	requestRead := make(chan struct{}, 1)
	requestRead <- struct{}{}

	go func() {
		for range requestRead {
			n, err := f.host.Reader.Read(buf)
			results <- readResult{n: n, err: err}
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, open := <-f.sub.Events:
			if !open {
				return nil
			}
			if ev.Kind == eventbus.KindLifecycle && ev.Lifecycle == eventbus.LifecycleShutdown {
				return nil
			}

		case res := <-results:
			if res.n > 0 {
				chunk := buf[:res.n]
				f.maybeAnswerCPR(chunk)
				if _, werr := f.stdout.Write(chunk); werr != nil {
					return werr
				}
			}
			if res.err != nil {
				if errors.Is(res.err, io.EOF) {
					return nil
				}
				return res.err
			}
			select {
			case requestRead <- struct{}{}:
			default:
			}
		}
	}
}

// maybeAnswerCPR scans the first cprScanLimit bytes of shell output for a
// cursor-position-report request and answers it exactly once.
func (f *Forwarder) maybeAnswerCPR(chunk []byte) {
	if f.cprDone {
		return
	}
	remaining := cprScanLimit - f.scanned
	if remaining <= 0 {
		f.cprDone = true
		return
	}
	scan := chunk
	if len(scan) > remaining {
		scan = scan[:remaining]
	}
	f.scanned += len(scan)

	if bytes.Contains(scan, cprRequest) {
		f.host.Writer.Write(cprResponse)
		f.cprDone = true
		return
	}
	if f.scanned >= cprScanLimit {
		f.cprDone = true
	}
}
