//go:build windows

package input

import (
	"os"
	"sync"
	"time"
)

// windowsStdinPump backgrounds the one blocking os.Stdin.Read Windows
// allows, feeding chunks to pollStdin through a buffered channel. There is
// no non-blocking read mode on Windows consoles, so the teacher's
// SetNonblock+EAGAIN idiom (poll_unix.go) doesn't port directly; this is
// the same "read loop plus a short timeout so the caller can check for
// shutdown" shape, adapted to Windows' blocking-only stdin.
type windowsStdinPump struct {
	once   sync.Once
	chunks chan []byte
	errs   chan error
}

var pump = &windowsStdinPump{
	chunks: make(chan []byte, 64),
	errs:   make(chan error, 1),
}

func (p *windowsStdinPump) start() {
	p.once.Do(func() {
		go func() {
			buf := make([]byte, 256)
			for {
				n, err := os.Stdin.Read(buf)
				if n > 0 {
					chunk := make([]byte, n)
					copy(chunk, buf[:n])
					p.chunks <- chunk
				}
				if err != nil {
					p.errs <- err
					return
				}
			}
		}()
	})
}

// pollStdin waits up to timeout for the next chunk read from stdin by the
// background pump goroutine.
func pollStdin(fd int, timeout time.Duration) ([]byte, error) {
	pump.start()
	select {
	case chunk := <-pump.chunks:
		return chunk, nil
	case err := <-pump.errs:
		return nil, err
	case <-time.After(timeout):
		return nil, nil
	}
}
