//go:build windows

package capture

import (
	"fmt"
	"image"
	"sync"
	"syscall"
	"unsafe"

	"github.com/shellrec/shellrec/internal/model"
)

var (
	user32 = syscall.NewLazyDLL("user32.dll")
	gdi32  = syscall.NewLazyDLL("gdi32.dll")

	procEnumWindows        = user32.NewProc("EnumWindows")
	procGetWindowTextW     = user32.NewProc("GetWindowTextW")
	procIsWindowVisible    = user32.NewProc("IsWindowVisible")
	procGetForegroundWindow = user32.NewProc("GetForegroundWindow")
	procGetWindowDC        = user32.NewProc("GetWindowDC")
	procReleaseDC          = user32.NewProc("ReleaseDC")
	procGetWindowRect      = user32.NewProc("GetWindowRect")
	procPrintWindow        = user32.NewProc("PrintWindow")

	procCreateCompatibleDC     = gdi32.NewProc("CreateCompatibleDC")
	procCreateCompatibleBitmap = gdi32.NewProc("CreateCompatibleBitmap")
	procSelectObject           = gdi32.NewProc("SelectObject")
	procDeleteDC               = gdi32.NewProc("DeleteDC")
	procDeleteObject           = gdi32.NewProc("DeleteObject")
	procGetDIBits              = gdi32.NewProc("GetDIBits")
)

const (
	dibRGBColors  = 0
	biRGB         = 0
	pwRenderFullContent = 0x00000002
)

type rect struct {
	Left, Top, Right, Bottom int32
}

type bitmapInfoHeader struct {
	BiSize          uint32
	BiWidth         int32
	BiHeight        int32
	BiPlanes        uint16
	BiBitCount      uint16
	BiCompression   uint32
	BiSizeImage     uint32
	BiXPelsPerMeter int32
	BiYPelsPerMeter int32
	BiClrUsed       uint32
	BiClrImportant  uint32
}

type bitmapInfo struct {
	BmiHeader bitmapInfoHeader
	BmiColors [1]uint32
}

type windowsCapturer struct {
	mu      sync.Mutex
	margins map[model.WindowID]model.Margin
}

func newPlatformCapturer() (Capturer, error) {
	return &windowsCapturer{margins: make(map[model.WindowID]model.Margin)}, nil
}

func (c *windowsCapturer) Enumerate() ([]model.WindowInfo, error) {
	var infos []model.WindowInfo
	cb := syscall.NewCallback(func(hwnd uintptr, _ uintptr) uintptr {
		visible, _, _ := procIsWindowVisible.Call(hwnd)
		if visible == 0 {
			return 1
		}
		buf := make([]uint16, 256)
		n, _, _ := procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
		title := ""
		if n > 0 {
			title = syscall.UTF16ToString(buf[:n])
		}
		if title == "" {
			return 1
		}
		infos = append(infos, model.WindowInfo{ID: model.WindowID(hwnd), Title: title})
		return 1
	})
	procEnumWindows.Call(cb, 0)
	return infos, nil
}

func (c *windowsCapturer) ActiveWindow() (model.WindowID, error) {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return 0, ErrWindowNotFound
	}
	return model.WindowID(hwnd), nil
}

func (c *windowsCapturer) Calibrate(id model.WindowID) error {
	img, err := c.captureRaw(id)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.margins[id] = calibrateMargin(img)
	c.mu.Unlock()
	return nil
}

func (c *windowsCapturer) Capture(id model.WindowID) (*model.ImageBuffer, error) {
	img, err := c.captureRaw(id)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	margin := c.margins[id]
	c.mu.Unlock()
	return cropToMargin(img, margin), nil
}

func (c *windowsCapturer) captureRaw(id model.WindowID) (*image.RGBA, error) {
	hwnd := uintptr(id)

	visible, _, _ := procIsWindowVisible.Call(hwnd)
	if visible == 0 {
		return nil, ErrNotCalibratable
	}

	var r rect
	ret, _, _ := procGetWindowRect.Call(hwnd, uintptr(unsafe.Pointer(&r)))
	if ret == 0 {
		return nil, ErrNotCalibratable
	}
	width := int(r.Right - r.Left)
	height := int(r.Bottom - r.Top)
	if width <= 0 || height <= 0 {
		return nil, ErrNotCalibratable
	}

	hdc, _, _ := procGetWindowDC.Call(hwnd)
	if hdc == 0 {
		return nil, &CaptureError{Kind: "gdi", Err: fmt.Errorf("GetWindowDC failed")}
	}
	defer procReleaseDC.Call(hwnd, hdc)

	memDC, _, _ := procCreateCompatibleDC.Call(hdc)
	if memDC == 0 {
		return nil, &CaptureError{Kind: "gdi", Err: fmt.Errorf("CreateCompatibleDC failed")}
	}
	defer procDeleteDC.Call(memDC)

	hBitmap, _, _ := procCreateCompatibleBitmap.Call(hdc, uintptr(width), uintptr(height))
	if hBitmap == 0 {
		return nil, &CaptureError{Kind: "gdi", Err: fmt.Errorf("CreateCompatibleBitmap failed")}
	}
	defer procDeleteObject.Call(hBitmap)

	oldBitmap, _, _ := procSelectObject.Call(memDC, hBitmap)
	defer procSelectObject.Call(memDC, oldBitmap)

	ret, _, _ = procPrintWindow.Call(hwnd, memDC, pwRenderFullContent)
	if ret == 0 {
		return nil, &CaptureError{Kind: "gdi", Err: fmt.Errorf("PrintWindow failed")}
	}

	bi := bitmapInfo{
		BmiHeader: bitmapInfoHeader{
			BiSize:        uint32(unsafe.Sizeof(bitmapInfoHeader{})),
			BiWidth:       int32(width),
			BiHeight:      -int32(height),
			BiPlanes:      1,
			BiBitCount:    32,
			BiCompression: biRGB,
		},
	}
	pixBuf := make([]byte, width*height*4)
	ret, _, _ = procGetDIBits.Call(
		memDC, hBitmap, 0, uintptr(height),
		uintptr(unsafe.Pointer(&pixBuf[0])),
		uintptr(unsafe.Pointer(&bi)),
		dibRGBColors,
	)
	if ret == 0 {
		return nil, &CaptureError{Kind: "gdi", Err: fmt.Errorf("GetDIBits failed")}
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	bgraToRGBAInPlace(pixBuf)
	copy(img.Pix, pixBuf)
	return img, nil
}

// bgraToRGBAInPlace swaps the B and R channels GDI returns for RGBA8
// consumers.
func bgraToRGBAInPlace(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i], pix[i+2] = pix[i+2], pix[i]
	}
}

func (c *windowsCapturer) Close() error {
	return nil
}

var _ Capturer = (*windowsCapturer)(nil)
