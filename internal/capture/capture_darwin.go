//go:build darwin

package capture

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation -framework AppKit

#include <CoreGraphics/CoreGraphics.h>
#include <CoreFoundation/CoreFoundation.h>
#include <AppKit/AppKit.h>
#include <stdlib.h>
#include <string.h>

typedef struct {
    void* data;
    int width;
    int height;
    int bytesPerRow;
    int error;
} WindowCaptureResult;

// listWindows fills out/titleBuf with up to maxOut on-screen window ids and
// their owning-app names, writing the count to *count.
static void listWindows(uint32_t* out, char* titleBuf, int titleStride, int maxOut, int* count) {
    *count = 0;
    CFArrayRef infoList = CGWindowListCopyWindowInfo(
        kCGWindowListOptionOnScreenOnly | kCGWindowListExcludeDesktopElements,
        kCGNullWindowID);
    if (infoList == NULL) {
        return;
    }

    CFIndex n = CFArrayGetCount(infoList);
    int written = 0;
    for (CFIndex i = 0; i < n && written < maxOut; i++) {
        CFDictionaryRef entry = (CFDictionaryRef)CFArrayGetValueAtIndex(infoList, i);

        CFNumberRef layerNum = (CFNumberRef)CFDictionaryGetValue(entry, kCGWindowLayer);
        int layer = 0;
        if (layerNum != NULL) {
            CFNumberGetValue(layerNum, kCFNumberIntType, &layer);
        }
        if (layer != 0) {
            continue; // only normal app windows, not menu bar / dock / overlays
        }

        CFNumberRef idNum = (CFNumberRef)CFDictionaryGetValue(entry, kCGWindowNumber);
        uint32_t wid = 0;
        if (idNum != NULL) {
            CFNumberGetValue(idNum, kCFNumberSInt32Type, &wid);
        }
        out[written] = wid;

        char* dst = titleBuf + written * titleStride;
        dst[0] = '\0';
        CFStringRef name = (CFStringRef)CFDictionaryGetValue(entry, kCGWindowOwnerName);
        if (name != NULL) {
            CFStringGetCString(name, dst, titleStride, kCFStringEncodingUTF8);
        }

        written++;
    }
    *count = written;
    CFRelease(infoList);
}

static uint32_t activeWindowID() {
    NSRunningApplication* frontmost = [[NSWorkspace sharedWorkspace] frontmostApplication];
    if (frontmost == nil) {
        return 0;
    }
    pid_t pid = frontmost.processIdentifier;

    CFArrayRef infoList = CGWindowListCopyWindowInfo(
        kCGWindowListOptionOnScreenOnly | kCGWindowListExcludeDesktopElements,
        kCGNullWindowID);
    if (infoList == NULL) {
        return 0;
    }

    uint32_t result = 0;
    CFIndex n = CFArrayGetCount(infoList);
    for (CFIndex i = 0; i < n; i++) {
        CFDictionaryRef entry = (CFDictionaryRef)CFArrayGetValueAtIndex(infoList, i);
        CFNumberRef ownerPidNum = (CFNumberRef)CFDictionaryGetValue(entry, kCGWindowOwnerPID);
        int ownerPid = -1;
        if (ownerPidNum != NULL) {
            CFNumberGetValue(ownerPidNum, kCFNumberIntType, &ownerPid);
        }
        if (ownerPid == (int)pid) {
            CFNumberRef idNum = (CFNumberRef)CFDictionaryGetValue(entry, kCGWindowNumber);
            if (idNum != NULL) {
                CFNumberGetValue(idNum, kCFNumberSInt32Type, &result);
            }
            break;
        }
    }
    CFRelease(infoList);
    return result;
}

static int windowIsVisible(uint32_t windowID) {
    CFArrayRef ids = CFArrayCreate(NULL, (const void**)&windowID, 1, NULL);
    CFArrayRef infoList = CGWindowListCreateDescriptionFromArray(ids);
    CFRelease(ids);
    int visible = (infoList != NULL && CFArrayGetCount(infoList) > 0);
    if (infoList != NULL) {
        CFRelease(infoList);
    }
    return visible;
}

// captureWindow renders the window to an offscreen RGBA bitmap context via
// the legacy (but still synchronous and window-scoped) CGWindowListCreateImage.
static WindowCaptureResult captureWindow(uint32_t windowID) {
    WindowCaptureResult result = {0};

    CGImageRef cgImage = CGWindowListCreateImage(
        CGRectNull, kCGWindowListOptionIncludingWindow, windowID, kCGWindowImageBoundsIgnoreFraming);
    if (cgImage == NULL) {
        result.error = 1;
        return result;
    }

    int width = (int)CGImageGetWidth(cgImage);
    int height = (int)CGImageGetHeight(cgImage);
    if (width == 0 || height == 0) {
        CGImageRelease(cgImage);
        result.error = 2;
        return result;
    }

    int bytesPerRow = width * 4;
    size_t dataSize = (size_t)bytesPerRow * height;
    void* buf = malloc(dataSize);
    if (buf == NULL) {
        CGImageRelease(cgImage);
        result.error = 3;
        return result;
    }

    CGColorSpaceRef colorSpace = CGColorSpaceCreateDeviceRGB();
    CGContextRef ctx = CGBitmapContextCreate(buf, width, height, 8, bytesPerRow, colorSpace,
        kCGImageAlphaPremultipliedLast | kCGBitmapByteOrder32Big);
    CGColorSpaceRelease(colorSpace);
    if (ctx == NULL) {
        free(buf);
        CGImageRelease(cgImage);
        result.error = 4;
        return result;
    }

    CGContextDrawImage(ctx, CGRectMake(0, 0, width, height), cgImage);
    CGContextRelease(ctx);
    CGImageRelease(cgImage);

    result.data = buf;
    result.width = width;
    result.height = height;
    result.bytesPerRow = bytesPerRow;
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

type darwinCapturer struct {
	mu      sync.Mutex
	margins map[model.WindowID]model.Margin
}

func newPlatformCapturer() (Capturer, error) {
	return &darwinCapturer{margins: make(map[model.WindowID]model.Margin)}, nil
}

func (c *darwinCapturer) Enumerate() ([]model.WindowInfo, error) {
	const maxWindows = 256
	const titleStride = 256
	ids := make([]C.uint32_t, maxWindows)
	titles := make([]C.char, maxWindows*titleStride)
	var count C.int

	C.listWindows(
		(*C.uint32_t)(unsafe.Pointer(&ids[0])),
		(*C.char)(unsafe.Pointer(&titles[0])),
		C.int(titleStride),
		C.int(maxWindows),
		&count,
	)

	infos := make([]model.WindowInfo, 0, int(count))
	for i := 0; i < int(count); i++ {
		title := C.GoString((*C.char)(unsafe.Pointer(&titles[i*titleStride])))
		infos = append(infos, model.WindowInfo{ID: model.WindowID(ids[i]), Title: title})
	}
	return infos, nil
}

func (c *darwinCapturer) ActiveWindow() (model.WindowID, error) {
	id := C.activeWindowID()
	if id == 0 {
		return 0, ErrWindowNotFound
	}
	return model.WindowID(id), nil
}

func (c *darwinCapturer) Calibrate(id model.WindowID) error {
	img, err := c.captureRaw(id)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.margins[id] = calibrateMargin(img)
	c.mu.Unlock()
	return nil
}

func (c *darwinCapturer) Capture(id model.WindowID) (*model.ImageBuffer, error) {
	img, err := c.captureRaw(id)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	margin := c.margins[id]
	c.mu.Unlock()
	return cropToMargin(img, margin), nil
}

func (c *darwinCapturer) captureRaw(id model.WindowID) (*image.RGBA, error) {
	if C.windowIsVisible(C.uint32_t(id)) == 0 {
		return nil, ErrNotCalibratable
	}

	result := C.captureWindow(C.uint32_t(id))
	if result.error != 0 {
		return nil, &CaptureError{Kind: "coregraphics", Err: fmt.Errorf("CGWindowListCreateImage failed (code %d)", int(result.error))}
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

func (c *darwinCapturer) Close() error {
	return nil
}

var _ Capturer = (*darwinCapturer)(nil)
