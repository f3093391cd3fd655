//go:build darwin && cgo

package platform

/*
#cgo LDFLAGS: -framework ApplicationServices -framework CoreFoundation -framework CoreGraphics
#include <stdint.h>
#include <stdlib.h>
#include <ApplicationServices/ApplicationServices.h>
#include <CoreFoundation/CoreFoundation.h>
#include <CoreGraphics/CoreGraphics.h>

// Private window server calls. They are undocumented and may disappear in a
// future release; their absence would fail the link, not the call.
extern AXError _AXUIElementGetWindow(AXUIElementRef element, CGWindowID *windowID);
extern uint64_t CGSMainConnectionID(void);
extern CFArrayRef CGSCopySpaces(uint64_t cid, int mask);
extern uint64_t CGSGetWindowWorkspace(uint64_t cid, CGWindowID wid);
extern void CGSMoveWindowToSpace(uint64_t cid, CGWindowID wid, uint64_t space);

static int ds_copy_spaces(uint64_t cid, int mask, uint64_t *out, int cap) {
	CFArrayRef spaces = CGSCopySpaces(cid, mask);
	if (spaces == NULL) {
		return 0;
	}
	CFIndex n = CFArrayGetCount(spaces);
	for (CFIndex i = 0; i < n && i < cap; i++) {
		CFNumberRef num = (CFNumberRef)CFArrayGetValueAtIndex(spaces, i);
		uint64_t v = 0;
		if (num != NULL) {
			CFNumberGetValue(num, kCFNumberSInt64Type, &v);
		}
		out[i] = v;
	}
	CFRelease(spaces);
	return (int)n;
}

static AXError ds_window_for_element(AXUIElementRef element, uint32_t *wid) {
	CGWindowID id = 0;
	AXError err = _AXUIElementGetWindow(element, &id);
	*wid = (uint32_t)id;
	return err;
}

static int ds_process_trusted(int prompt) {
	if (!prompt) {
		return AXIsProcessTrusted() ? 1 : 0;
	}
	const void *keys[] = { kAXTrustedCheckOptionPrompt };
	const void *values[] = { kCFBooleanTrue };
	CFDictionaryRef opts = CFDictionaryCreate(kCFAllocatorDefault, keys, values, 1,
		&kCFTypeDictionaryKeyCallBacks, &kCFTypeDictionaryValueCallBacks);
	Boolean trusted = AXIsProcessTrustedWithOptions(opts);
	CFRelease(opts);
	return trusted ? 1 : 0;
}

static char *ds_copy_cstring(CFStringRef s) {
	if (s == NULL) {
		return NULL;
	}
	CFIndex len = CFStringGetMaximumSizeForEncoding(CFStringGetLength(s), kCFStringEncodingUTF8) + 1;
	char *buf = malloc(len);
	if (buf == NULL) {
		return NULL;
	}
	if (!CFStringGetCString(s, buf, len, kCFStringEncodingUTF8)) {
		free(buf);
		return NULL;
	}
	return buf;
}

typedef struct {
	uint32_t id;
	int32_t pid;
	char *owner;
	char *title;
} ds_window;

static int ds_list_windows(ds_window *out, int cap) {
	CFArrayRef list = CGWindowListCopyWindowInfo(
		kCGWindowListOptionAll | kCGWindowListExcludeDesktopElements, kCGNullWindowID);
	if (list == NULL) {
		return -1;
	}
	CFIndex n = CFArrayGetCount(list);
	for (CFIndex i = 0; i < n && i < cap; i++) {
		CFDictionaryRef d = (CFDictionaryRef)CFArrayGetValueAtIndex(list, i);
		int32_t id = 0, pid = 0;
		CFNumberRef num = (CFNumberRef)CFDictionaryGetValue(d, kCGWindowNumber);
		if (num != NULL) {
			CFNumberGetValue(num, kCFNumberSInt32Type, &id);
		}
		num = (CFNumberRef)CFDictionaryGetValue(d, kCGWindowOwnerPID);
		if (num != NULL) {
			CFNumberGetValue(num, kCFNumberSInt32Type, &pid);
		}
		out[i].id = (uint32_t)id;
		out[i].pid = pid;
		out[i].owner = ds_copy_cstring((CFStringRef)CFDictionaryGetValue(d, kCGWindowOwnerName));
		out[i].title = ds_copy_cstring((CFStringRef)CFDictionaryGetValue(d, kCGWindowName));
	}
	CFRelease(list);
	return (int)n;
}

static void ds_free_windows(ds_window *w, int n) {
	for (int i = 0; i < n; i++) {
		free(w[i].owner);
		free(w[i].title);
	}
}

static AXError ds_app_windows(int32_t pid, AXUIElementRef *out, int cap, int *count) {
	*count = 0;
	AXUIElementRef app = AXUIElementCreateApplication(pid);
	if (app == NULL) {
		return kAXErrorFailure;
	}
	CFTypeRef value = NULL;
	AXError err = AXUIElementCopyAttributeValue(app, kAXWindowsAttribute, &value);
	CFRelease(app);
	if (err != kAXErrorSuccess || value == NULL) {
		return err;
	}
	CFArrayRef windows = (CFArrayRef)value;
	CFIndex n = CFArrayGetCount(windows);
	for (CFIndex i = 0; i < n && i < cap; i++) {
		out[i] = (AXUIElementRef)CFRetain(CFArrayGetValueAtIndex(windows, i));
	}
	*count = (int)n;
	CFRelease(value);
	return kAXErrorSuccess;
}

static AXError ds_focused_window(AXUIElementRef *out) {
	*out = NULL;
	AXUIElementRef system = AXUIElementCreateSystemWide();
	CFTypeRef app = NULL;
	AXError err = AXUIElementCopyAttributeValue(system, kAXFocusedApplicationAttribute, &app);
	CFRelease(system);
	if (err != kAXErrorSuccess || app == NULL) {
		return err;
	}
	CFTypeRef window = NULL;
	err = AXUIElementCopyAttributeValue((AXUIElementRef)app, kAXFocusedWindowAttribute, &window);
	CFRelease(app);
	if (err != kAXErrorSuccess) {
		return err;
	}
	*out = (AXUIElementRef)window;
	return kAXErrorSuccess;
}

static void ds_release(uintptr_t ref) {
	if (ref != 0) {
		CFRelease((CFTypeRef)ref);
	}
}
*/
import "C"

import (
	"fmt"
	"sync"
	"unsafe"
)

const (
	darwinSpaceBuffer  = 64
	darwinWindowBuffer = 512
	darwinAppWindows   = 64
)

// DarwinBackend calls the macOS accessibility and window server APIs.
type DarwinBackend struct {
	releaseMu sync.Mutex
}

var _ Backend = (*DarwinBackend)(nil)

// NewDarwinBackend returns the macOS backend.
func NewDarwinBackend() *DarwinBackend {
	return &DarwinBackend{}
}

func openDarwin() (Backend, error) {
	return NewDarwinBackend(), nil
}

func (b *DarwinBackend) Name() string { return "darwin" }

func (b *DarwinBackend) Capability() Capability { return Available }

func (b *DarwinBackend) MainConnection() Connection {
	return Connection{id: uint64(C.CGSMainConnectionID())}
}

func (b *DarwinBackend) CopySpaces(conn Connection, mask SpaceMask) []SpaceID {
	size := darwinSpaceBuffer
	for {
		buf := make([]C.uint64_t, size)
		n := int(C.ds_copy_spaces(C.uint64_t(conn.id), C.int(mask), &buf[0], C.int(size)))
		if n > size {
			size = n
			continue
		}
		out := make([]SpaceID, 0, n)
		for _, v := range buf[:n] {
			if v != 0 {
				out = append(out, SpaceID(v))
			}
		}
		return out
	}
}

func (b *DarwinBackend) WindowSpace(conn Connection, window WindowID) SpaceID {
	return SpaceID(C.CGSGetWindowWorkspace(C.uint64_t(conn.id), C.CGWindowID(window)))
}

func (b *DarwinBackend) MoveWindowToSpace(conn Connection, window WindowID, space SpaceID) {
	C.CGSMoveWindowToSpace(C.uint64_t(conn.id), C.CGWindowID(window), C.uint64_t(space))
}

func (b *DarwinBackend) ListWindows() ([]Window, error) {
	size := darwinWindowBuffer
	for {
		buf := make([]C.ds_window, size)
		n := int(C.ds_list_windows(&buf[0], C.int(size)))
		if n < 0 {
			return nil, fmt.Errorf("window list unavailable")
		}
		filled := n
		if filled > size {
			filled = size
		}
		if n > size {
			C.ds_free_windows(&buf[0], C.int(filled))
			size = n
			continue
		}
		out := make([]Window, 0, n)
		for _, w := range buf[:n] {
			out = append(out, Window{
				ID:    WindowID(w.id),
				PID:   int(w.pid),
				AppID: goString(w.owner),
				Title: goString(w.title),
			})
		}
		C.ds_free_windows(&buf[0], C.int(n))
		return out, nil
	}
}

func (b *DarwinBackend) Elements() ElementBackend { return b }

func (b *DarwinBackend) ElementSource() ElementSource { return b }

func (b *DarwinBackend) WindowForElement(e Element) (WindowID, Status) {
	if e.IsZero() {
		return 0, StatusInvalidUIElement
	}
	var wid C.uint32_t
	status := C.ds_window_for_element(C.AXUIElementRef(unsafe.Pointer(e.ref)), &wid)
	return WindowID(wid), Status(status)
}

func (b *DarwinBackend) ProcessTrusted(prompt bool) bool {
	p := 0
	if prompt {
		p = 1
	}
	return C.ds_process_trusted(C.int(p)) != 0
}

func (b *DarwinBackend) ApplicationWindows(pid int) ([]Element, func(), error) {
	size := darwinAppWindows
	for {
		buf := make([]C.AXUIElementRef, size)
		var count C.int
		status := Status(C.ds_app_windows(C.int32_t(pid), &buf[0], C.int(size), &count))
		if status != StatusSuccess {
			return nil, func() {}, &StatusError{Op: fmt.Sprintf("copy windows of pid %d", pid), Status: status}
		}
		n := int(count)
		filled := n
		if filled > size {
			filled = size
		}
		elements := make([]Element, 0, filled)
		for _, ref := range buf[:filled] {
			elements = append(elements, Element{ref: uintptr(unsafe.Pointer(ref))})
		}
		if n > size {
			b.release(elements)
			size = n
			continue
		}
		return elements, func() { b.release(elements) }, nil
	}
}

func (b *DarwinBackend) FocusedWindow() (Element, func(), error) {
	var ref C.AXUIElementRef
	status := Status(C.ds_focused_window(&ref))
	if status != StatusSuccess {
		return Element{}, func() {}, &StatusError{Op: "focused window", Status: status}
	}
	if ref == nil {
		return Element{}, func() {}, fmt.Errorf("focused window: none")
	}
	el := Element{ref: uintptr(unsafe.Pointer(ref))}
	return el, func() { b.release([]Element{el}) }, nil
}

// release drops the retain taken when elements were handed out. Refs are
// zeroed so a second call is a no-op.
func (b *DarwinBackend) release(elements []Element) {
	b.releaseMu.Lock()
	defer b.releaseMu.Unlock()
	for i := range elements {
		C.ds_release(C.uintptr_t(elements[i].ref))
		elements[i].ref = 0
	}
}

func goString(s *C.char) string {
	if s == nil {
		return ""
	}
	return C.GoString(s)
}
