//go:build linux

package pty

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"unsafe"
)

func spawn(program string, cols, rows uint16) (*Host, error) {
	master, slave, err := openPty()
	if err != nil {
		return nil, fmt.Errorf("opening pty: %w", err)
	}

	if err := setWinsize(master.Fd(), cols, rows); err != nil {
		master.Close()
		slave.Close()
		return nil, fmt.Errorf("setting initial window size: %w", err)
	}

	cmd := exec.Command(program)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")
	cmd.Stdin = slave
	cmd.Stdout = slave
	cmd.Stderr = slave
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid:  true,
		Setctty: true,
	}

	if err := cmd.Start(); err != nil {
		master.Close()
		slave.Close()
		return nil, fmt.Errorf("starting shell %q: %w", program, err)
	}

	// The child owns its own fd to the slave now.
	slave.Close()

	h := &Host{
		Reader: master,
		Writer: master,
		cmd:    cmd,
	}
	h.resize = func(cols, rows uint16) error {
		return setWinsize(master.Fd(), cols, rows)
	}
	h.closeFn = master.Close

	log.Info("pty spawned", "program", program, "cols", cols, "rows", rows)
	return h, nil
}

func openPty() (*os.File, *os.File, error) {
	master, err := os.OpenFile("/dev/ptmx", os.O_RDWR, 0)
	if err != nil {
		return nil, nil, err
	}

	slaveName, err := ptsname(master)
	if err != nil {
		master.Close()
		return nil, nil, err
	}

	if err := unlockpt(master); err != nil {
		master.Close()
		return nil, nil, err
	}

	slave, err := os.OpenFile(slaveName, os.O_RDWR|syscall.O_NOCTTY, 0)
	if err != nil {
		master.Close()
		return nil, nil, err
	}

	return master, slave, nil
}

func ptsname(f *os.File) (string, error) {
	var n uint32
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, f.Fd(), syscall.TIOCGPTN, uintptr(unsafe.Pointer(&n)))
	if errno != 0 {
		return "", errno
	}
	return fmt.Sprintf("/dev/pts/%d", n), nil
}

func unlockpt(f *os.File) error {
	var u int32
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, f.Fd(), syscall.TIOCSPTLCK, uintptr(unsafe.Pointer(&u)))
	if errno != 0 {
		return errno
	}
	return nil
}

type winsize struct {
	Rows   uint16
	Cols   uint16
	Xpixel uint16
	Ypixel uint16
}

func setWinsize(fd uintptr, cols, rows uint16) error {
	ws := &winsize{Rows: rows, Cols: cols}
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, fd, syscall.TIOCSWINSZ, uintptr(unsafe.Pointer(ws)))
	if errno != 0 {
		return errno
	}
	return nil
}
