//go:build darwin

package pty

/*
#include <stdlib.h>
#include <fcntl.h>
#include <unistd.h>
#include <sys/ioctl.h>
*/
import "C"

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"unsafe"
)

func spawn(program string, cols, rows uint16) (*Host, error) {
	masterFd, err := C.posix_openpt(C.O_RDWR)
	if masterFd < 0 || err != nil {
		return nil, fmt.Errorf("posix_openpt: %w", err)
	}

	if rc := C.grantpt(masterFd); rc != 0 {
		C.close(masterFd)
		return nil, fmt.Errorf("grantpt failed")
	}
	if rc := C.unlockpt(masterFd); rc != 0 {
		C.close(masterFd)
		return nil, fmt.Errorf("unlockpt failed")
	}

	cName := C.ptsname(masterFd)
	if cName == nil {
		C.close(masterFd)
		return nil, fmt.Errorf("ptsname returned nil")
	}
	slaveName := C.GoString(cName)

	master := os.NewFile(uintptr(masterFd), "/dev/ptmx")
	if master == nil {
		C.close(masterFd)
		return nil, fmt.Errorf("wrapping master fd")
	}

	slave, err := os.OpenFile(slaveName, os.O_RDWR, 0)
	if err != nil {
		master.Close()
		return nil, fmt.Errorf("opening slave pty %s: %w", slaveName, err)
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
