//go:build linux || darwin

package input

import (
	"io"
	"syscall"
	"time"
)

// pollStdin reads whatever is available on fd within timeout, using the
// same non-blocking-read-plus-EAGAIN idiom the teacher's terminal host
// uses for its stdin pump. An empty, error-free return means the timeout
// elapsed with nothing to read.
func pollStdin(fd int, timeout time.Duration) ([]byte, error) {
	if err := syscall.SetNonblock(fd, true); err != nil {
		return nil, err
	}
	defer syscall.SetNonblock(fd, false)

	deadline := time.Now().Add(timeout)
	buf := make([]byte, 256)

	for {
		n, err := syscall.Read(fd, buf)
		if n > 0 {
			return buf[:n], nil
		}
		if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
			if time.Now().After(deadline) {
				return nil, nil
			}
			time.Sleep(5 * time.Millisecond)
			continue
		}
		if err != nil {
			return nil, err
		}
		// n == 0, err == nil: stdin closed.
		return nil, io.EOF
	}
}
