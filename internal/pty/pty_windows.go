//go:build windows

package pty

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

// conPty wraps a real Windows pseudo-console (ConPTY), available since
// Windows 10 1809. Unlike a plain stdio pipe, the console host on the other
// end understands cursor movement, colors, and the cursor-position-report
// handshake cmd.exe performs at startup.
type conPty struct {
	handle windows.Handle

	inRead, inWrite   windows.Handle // parent writes inWrite, console reads inRead
	outRead, outWrite windows.Handle // console writes outWrite, parent reads outRead

	reader *os.File
	writer *os.File

	attrList *windows.ProcThreadAttributeListContainer
	process  windows.Handle
}

// conPtyWaiter adapts a raw process handle to the Host.cmd.Wait() contract
// without dragging in os/exec, which has no hook for attaching a
// pseudo-console to a child process's startup info.
type conPtyWaiter struct {
	process windows.Handle
}

func (w *conPtyWaiter) Wait() error {
	s, err := windows.WaitForSingleObject(w.process, windows.INFINITE)
	if err != nil {
		return err
	}
	if s != windows.WAIT_OBJECT_0 {
		return fmt.Errorf("WaitForSingleObject returned %d", s)
	}
	var code uint32
	if err := windows.GetExitCodeProcess(w.process, &code); err != nil {
		return err
	}
	if code != 0 {
		return fmt.Errorf("shell exited with code %d", code)
	}
	return nil
}

func spawn(program string, cols, rows uint16) (*Host, error) {
	cpty, err := newConPty(cols, rows)
	if err != nil {
		return nil, fmt.Errorf("creating pseudo console: %w", err)
	}

	if err := cpty.startShell(program); err != nil {
		cpty.close()
		return nil, fmt.Errorf("starting shell %q: %w", program, err)
	}

	h := &Host{
		Reader:            cpty.reader,
		Writer:            cpty.writer,
		NeedsCPRHandshake: true,
		cmd:               &conPtyWaiter{process: cpty.process},
	}
	h.resize = cpty.resize
	h.closeFn = func() error {
		cpty.close()
		return nil
	}

	log.Info("conpty spawned", "program", program, "cols", cols, "rows", rows)
	return h, nil
}

func newConPty(cols, rows uint16) (*conPty, error) {
	cpty := &conPty{}

	if err := windows.CreatePipe(&cpty.inRead, &cpty.inWrite, nil, 0); err != nil {
		return nil, fmt.Errorf("creating stdin pipe: %w", err)
	}
	if err := windows.CreatePipe(&cpty.outRead, &cpty.outWrite, nil, 0); err != nil {
		windows.CloseHandle(cpty.inRead)
		windows.CloseHandle(cpty.inWrite)
		return nil, fmt.Errorf("creating stdout pipe: %w", err)
	}

	size := windows.Coord{X: int16(cols), Y: int16(rows)}
	var handle windows.Handle
	err := windows.CreatePseudoConsole(size, cpty.inRead, cpty.outWrite, 0, &handle)
	if err != nil {
		cpty.closePipes()
		return nil, fmt.Errorf("CreatePseudoConsole: %w", err)
	}
	cpty.handle = handle

	// The console now owns these ends; clear inheritance so a later
	// CreateProcess doesn't leak them to unrelated children.
	windows.SetHandleInformation(cpty.inRead, windows.HANDLE_FLAG_INHERIT, 0)
	windows.SetHandleInformation(cpty.outWrite, windows.HANDLE_FLAG_INHERIT, 0)

	cpty.writer = os.NewFile(uintptr(cpty.inWrite), "conpty-in")
	cpty.reader = os.NewFile(uintptr(cpty.outRead), "conpty-out")

	return cpty, nil
}

// startShell issues CreateProcess directly with an EXTENDED_STARTUPINFO
// carrying the pseudo-console attribute. os/exec has no hook for a custom
// attribute list, so ConPTY wiring can't go through exec.Cmd.
func (c *conPty) startShell(program string) error {
	attrList, err := windows.NewProcThreadAttributeList(1)
	if err != nil {
		return fmt.Errorf("allocating attribute list: %w", err)
	}
	if err := attrList.Update(
		windows.PROC_THREAD_ATTRIBUTE_PSEUDOCONSOLE,
		unsafe.Pointer(c.handle),
		unsafe.Sizeof(c.handle),
	); err != nil {
		return fmt.Errorf("binding pseudo console to attribute list: %w", err)
	}
	c.attrList = attrList

	appName, err := windows.UTF16PtrFromString(program)
	if err != nil {
		return fmt.Errorf("invalid program path %q: %w", program, err)
	}
	cmdLine, err := windows.UTF16PtrFromString(program)
	if err != nil {
		return fmt.Errorf("invalid program path %q: %w", program, err)
	}

	siEx := &windows.StartupInfoEx{
		ProcThreadAttributeList: attrList.List(),
	}
	siEx.StartupInfo.Cb = uint32(unsafe.Sizeof(*siEx))

	var pi windows.ProcessInformation
	err = windows.CreateProcess(
		appName,
		cmdLine,
		nil, // process security attributes
		nil, // thread security attributes
		false,
		windows.EXTENDED_STARTUPINFO_PRESENT|windows.CREATE_UNICODE_ENVIRONMENT,
		nil, // inherit parent's environment unchanged
		nil, // inherit parent's working directory
		&siEx.StartupInfo,
		&pi,
	)
	if err != nil {
		attrList.Delete()
		return fmt.Errorf("CreateProcess: %w", err)
	}
	windows.CloseHandle(pi.Thread)

	c.process = pi.Process
	return nil
}

func (c *conPty) resize(cols, rows uint16) error {
	size := windows.Coord{X: int16(cols), Y: int16(rows)}
	return windows.ResizePseudoConsole(c.handle, size)
}

func (c *conPty) closePipes() {
	for _, h := range []windows.Handle{c.inRead, c.inWrite, c.outRead, c.outWrite} {
		if h != 0 {
			windows.CloseHandle(h)
		}
	}
}

func (c *conPty) close() {
	if c.handle != 0 {
		windows.ClosePseudoConsole(c.handle)
	}
	if c.writer != nil {
		c.writer.Close()
	}
	if c.reader != nil {
		c.reader.Close()
	}
	if c.attrList != nil {
		c.attrList.Delete()
	}
}
