//go:build linux

package capture

/*
#cgo CFLAGS: -I/usr/include
#cgo LDFLAGS: -lX11 -lXext

#include <X11/Xlib.h>
#include <X11/Xatom.h>
#include <X11/Xutil.h>
#include <X11/extensions/XShm.h>
#include <sys/ipc.h>
#include <sys/shm.h>
#include <stdlib.h>
#include <string.h>

typedef struct {
    void* data;
    int width;
    int height;
    int bytesPerRow;
    int error;
} WindowCaptureResult;

static Display* openDisplay() {
    return XOpenDisplay(NULL);
}

static Window getActiveWindowX(Display* dpy) {
    Window root = DefaultRootWindow(dpy);
    Atom netActive = XInternAtom(dpy, "_NET_ACTIVE_WINDOW", True);
    if (netActive == None) {
        return None;
    }

    Atom actualType;
    int actualFormat;
    unsigned long nItems, bytesAfter;
    unsigned char* prop = NULL;

    int status = XGetWindowProperty(dpy, root, netActive, 0, 1, False,
        XA_WINDOW, &actualType, &actualFormat, &nItems, &bytesAfter, &prop);

    Window result = None;
    if (status == Success && prop != NULL && nItems > 0) {
        result = *(Window*)prop;
    }
    if (prop != NULL) {
        XFree(prop);
    }
    return result;
}

// listClientWindows returns up to maxOut window ids from _NET_CLIENT_LIST,
// writing the count to *count.
static void listClientWindows(Display* dpy, unsigned long* out, int maxOut, int* count) {
    *count = 0;
    Window root = DefaultRootWindow(dpy);
    Atom netClientList = XInternAtom(dpy, "_NET_CLIENT_LIST", True);
    if (netClientList == None) {
        return;
    }

    Atom actualType;
    int actualFormat;
    unsigned long nItems, bytesAfter;
    unsigned char* prop = NULL;

    int status = XGetWindowProperty(dpy, root, netClientList, 0, 1024, False,
        XA_WINDOW, &actualType, &actualFormat, &nItems, &bytesAfter, &prop);

    if (status == Success && prop != NULL) {
        Window* windows = (Window*)prop;
        int n = (int)nItems;
        if (n > maxOut) {
            n = maxOut;
        }
        for (int i = 0; i < n; i++) {
            out[i] = (unsigned long)windows[i];
        }
        *count = n;
    }
    if (prop != NULL) {
        XFree(prop);
    }
}

// windowTitle copies at most bufLen-1 bytes of the window's _NET_WM_NAME (or
// WM_NAME fallback) into buf, null-terminated.
static void windowTitle(Display* dpy, Window w, char* buf, int bufLen) {
    buf[0] = '\0';

    Atom netWMName = XInternAtom(dpy, "_NET_WM_NAME", True);
    Atom utf8String = XInternAtom(dpy, "UTF8_STRING", True);
    if (netWMName != None && utf8String != None) {
        Atom actualType;
        int actualFormat;
        unsigned long nItems, bytesAfter;
        unsigned char* prop = NULL;
        int status = XGetWindowProperty(dpy, w, netWMName, 0, 1024, False,
            utf8String, &actualType, &actualFormat, &nItems, &bytesAfter, &prop);
        if (status == Success && prop != NULL && nItems > 0) {
            int n = (int)nItems;
            if (n > bufLen - 1) {
                n = bufLen - 1;
            }
            memcpy(buf, prop, n);
            buf[n] = '\0';
            XFree(prop);
            return;
        }
        if (prop != NULL) {
            XFree(prop);
        }
    }

    char* name = NULL;
    if (XFetchName(dpy, w, &name) && name != NULL) {
        strncpy(buf, name, bufLen - 1);
        buf[bufLen - 1] = '\0';
        XFree(name);
    }
}

// windowGeometry returns the window's size in root coordinates, and whether
// it is currently viewable.
static int windowGeometry(Display* dpy, Window w, int* width, int* height, int* viewable) {
    XWindowAttributes attrs;
    if (!XGetWindowAttributes(dpy, w, &attrs)) {
        return 0;
    }
    *width = attrs.width;
    *height = attrs.height;
    *viewable = (attrs.map_state == IsViewable);
    return 1;
}

// captureWindow captures the given window's framebuffer via XGetImage.
static WindowCaptureResult captureWindow(Display* dpy, Window w) {
    WindowCaptureResult result = {0};

    XWindowAttributes attrs;
    if (!XGetWindowAttributes(dpy, w, &attrs) || attrs.map_state != IsViewable) {
        result.error = 1;
        return result;
    }

    XImage* image = XGetImage(dpy, w, 0, 0, attrs.width, attrs.height, AllPlanes, ZPixmap);
    if (image == NULL) {
        result.error = 2;
        return result;
    }

    result.width = image->width;
    result.height = image->height;
    result.bytesPerRow = result.width * 4;

    size_t dataSize = (size_t)result.bytesPerRow * result.height;
    result.data = malloc(dataSize);
    if (result.data == NULL) {
        XDestroyImage(image);
        result.error = 3;
        return result;
    }

    unsigned char* dst = (unsigned char*)result.data;
    int depth = image->bits_per_pixel;
    for (int y = 0; y < result.height; y++) {
        for (int x = 0; x < result.width; x++) {
            unsigned long pixel = XGetPixel(image, x, y);
            int idx = y * result.bytesPerRow + x * 4;
            if (depth == 32 || depth == 24) {
                dst[idx+0] = (pixel >> 16) & 0xFF;
                dst[idx+1] = (pixel >> 8) & 0xFF;
                dst[idx+2] = pixel & 0xFF;
                dst[idx+3] = 255;
            } else if (depth == 16) {
                dst[idx+0] = ((pixel >> 11) & 0x1F) * 255 / 31;
                dst[idx+1] = ((pixel >> 5) & 0x3F) * 255 / 63;
                dst[idx+2] = (pixel & 0x1F) * 255 / 31;
                dst[idx+3] = 255;
            }
        }
    }

    XDestroyImage(image);
    return result;
}

static void freeWindowCapture(void* data) {
    if (data != NULL) {
        free(data);
    }
}
*/
import "C"

import (
	"fmt"
	"image"
	"sync"
	"unsafe"

	"github.com/shellrec/shellrec/internal/model"
)

type linuxCapturer struct {
	mu      sync.Mutex
	display *C.Display
	margins map[model.WindowID]model.Margin
}

func newPlatformCapturer() (Capturer, error) {
	dpy := C.openDisplay()
	if dpy == nil {
		return nil, fmt.Errorf("opening X11 display (is DISPLAY set?): %w", ErrNotSupported)
	}
	return &linuxCapturer{
		display: dpy,
		margins: make(map[model.WindowID]model.Margin),
	}, nil
}

func (c *linuxCapturer) Enumerate() ([]model.WindowInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	const maxWindows = 1024
	ids := make([]C.ulong, maxWindows)
	var count C.int
	C.listClientWindows(c.display, (*C.ulong)(unsafe.Pointer(&ids[0])), C.int(maxWindows), &count)

	infos := make([]model.WindowInfo, 0, int(count))
	for i := 0; i < int(count); i++ {
		w := C.Window(ids[i])
		titleBuf := make([]C.char, 256)
		C.windowTitle(c.display, w, &titleBuf[0], C.int(len(titleBuf)))
		infos = append(infos, model.WindowInfo{
			ID:    model.WindowID(ids[i]),
			Title: C.GoString(&titleBuf[0]),
		})
	}
	return infos, nil
}

func (c *linuxCapturer) ActiveWindow() (model.WindowID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w := C.getActiveWindowX(c.display)
	if w == C.None {
		return 0, ErrWindowNotFound
	}
	return model.WindowID(w), nil
}

func (c *linuxCapturer) Calibrate(id model.WindowID) error {
	img, err := c.captureRaw(id)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.margins[id] = calibrateMargin(img)
	c.mu.Unlock()
	return nil
}

func (c *linuxCapturer) Capture(id model.WindowID) (*model.ImageBuffer, error) {
	img, err := c.captureRaw(id)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	margin := c.margins[id]
	c.mu.Unlock()
	return cropToMargin(img, margin), nil
}

func (c *linuxCapturer) captureRaw(id model.WindowID) (*image.RGBA, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var width, height, viewable C.int
	if C.windowGeometry(c.display, C.Window(id), &width, &height, &viewable) == 0 || viewable == 0 {
		return nil, ErrNotCalibratable
	}

	result := C.captureWindow(c.display, C.Window(id))
	if result.error != 0 {
		return nil, &CaptureError{Kind: "x11", Err: fmt.Errorf("XGetImage failed (code %d)", int(result.error))}
	}
	defer C.freeWindowCapture(result.data)

	w, h, stride := int(result.width), int(result.height), int(result.bytesPerRow)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	cData := C.GoBytes(result.data, C.int(stride*h))
	for y := 0; y < h; y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+w*4], cData[y*stride:y*stride+w*4])
	}
	return img, nil
}

func (c *linuxCapturer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.display != nil {
		C.XCloseDisplay(c.display)
		c.display = nil
	}
	return nil
}

var _ Capturer = (*linuxCapturer)(nil)
