//go:build windows

package winapi

import (
	"syscall"
	"unsafe"

	"github.com/davehorner/e-grid/internal/geometry"
	"github.com/davehorner/e-grid/internal/grid"
	"golang.org/x/sys/windows"
)

// EnumTopLevelWindows lists every top-level window handle currently known
// to the shell, for the server's startup discovery scan (the one-time
// equivalent of the create events a freshly-started hook would otherwise
// miss for already-open windows).
func EnumTopLevelWindows() []grid.Handle {
	var out []grid.Handle
	cb := syscall.NewCallback(func(hwnd uintptr, _ uintptr) uintptr {
		out = append(out, grid.Handle(hwnd))
		return 1 // continue enumeration
	})
	procEnumWindows.Call(cb, 0)
	return out
}

// GetRect returns a window's current rectangle in virtual-desktop
// coordinates.
func GetRect(h grid.Handle) (geometry.Rect, bool) {
	var r rect
	ret, _, _ := procGetWindowRect.Call(uintptr(h), uintptr(unsafe.Pointer(&r)))
	if ret == 0 {
		return geometry.Rect{}, false
	}
	return geometry.Rect{Left: r.Left, Top: r.Top, Right: r.Right, Bottom: r.Bottom}, true
}

// MoveTo repositions a window, preserving z-order (SWP_NOZORDER) and
// without activating it (SWP_NOACTIVATE) — the animation engine drives
// many small repositions per second and must not steal focus.
func MoveTo(h grid.Handle, target geometry.Rect) error {
	ret, _, err := procSetWindowPos.Call(
		uintptr(h), 0,
		uintptr(target.Left), uintptr(target.Top),
		uintptr(target.Width()), uintptr(target.Height()),
		uintptr(swpNoZOrder|swpNoActivate),
	)
	if ret == 0 {
		return err
	}
	return nil
}

// IsVisible, IsMinimized, IsMaximized wrap the corresponding single-bit
// Win32 predicates.
func IsVisible(h grid.Handle) bool {
	ret, _, _ := procIsWindowVisible.Call(uintptr(h))
	return ret != 0
}

func IsMinimized(h grid.Handle) bool {
	ret, _, _ := procIsIconic.Call(uintptr(h))
	return ret != 0
}

func IsMaximized(h grid.Handle) bool {
	ret, _, _ := procIsZoomed.Call(uintptr(h))
	return ret != 0
}

// IsTopLevel reports whether h is its own ancestor root — i.e. not owned
// by another window as a child/popup in a way that disqualifies it from
// being independently manageable.
func IsTopLevel(h grid.Handle) bool {
	ret, _, _ := procGetAncestor.Call(uintptr(h), gaRoot)
	return grid.Handle(ret) == h
}

// IsCloaked queries DWMWA_CLOAKED: true for windows hidden by the DWM
// (virtual desktops, UWP suspension) even though IsWindowVisible may
// still report true.
func IsCloaked(h grid.Handle) bool {
	var cloaked uint32
	ret, _, _ := procDwmGetWindowAttribute.Call(
		uintptr(h), dwmwaCloaked,
		uintptr(unsafe.Pointer(&cloaked)), unsafe.Sizeof(cloaked),
	)
	return ret == 0 && cloaked != 0
}

// IsToolWindow reports whether h carries WS_EX_TOOLWINDOW, the extended
// style the manageability filter's cloaked-tool-window rule checks (spec
// §4.2 item c).
func IsToolWindow(h grid.Handle) bool {
	ret, _, _ := procGetWindowLongW.Call(uintptr(h), uintptr(int32(gwlExStyle)))
	return int32(ret)&wsExToolWindow != 0
}

// ClassName returns the window class name.
func ClassName(h grid.Handle) string {
	buf := make([]uint16, 256)
	n, _, _ := procGetClassNameW.Call(uintptr(h), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		return ""
	}
	return windows.UTF16ToString(buf[:n])
}

// Title returns the window's current title text.
func Title(h grid.Handle) string {
	length, _, _ := procGetWindowTextLengthW.Call(uintptr(h))
	if length == 0 {
		return ""
	}
	buf := make([]uint16, length+1)
	n, _, _ := procGetWindowTextW.Call(uintptr(h), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		return ""
	}
	return windows.UTF16ToString(buf[:n])
}

// OwningProcessID returns the process id that created h.
func OwningProcessID(h grid.Handle) uint32 {
	var pid uint32
	procGetWindowThreadProcessId.Call(uintptr(h), uintptr(unsafe.Pointer(&pid)))
	return pid
}

// ForegroundWindow returns the handle currently holding input focus.
func ForegroundWindow() grid.Handle {
	ret, _, _ := procGetForegroundWindow.Call()
	return grid.Handle(ret)
}

// SetForeground brings h to the foreground, backing the FocusWindow
// command (spec §4.7). Win32 restricts which process may steal the
// foreground; a failure here is reported to the caller rather than
// treated as fatal.
func SetForeground(h grid.Handle) error {
	ret, _, err := procSetForegroundWindow.Call(uintptr(h))
	if ret == 0 {
		return err
	}
	return nil
}

// CurrentProcessID returns this process's own PID, used to seed
// grid.SetOwnProcessID so the manageability filter excludes our own
// windows.
func CurrentProcessID() uint32 {
	ret, _, _ := procGetCurrentProcessId.Call()
	return uint32(ret)
}

// Snapshot gathers every attribute the manageability filter and tracker
// need for handle h into a grid.RawAttributes value in one call, so the
// dispatcher's Backend.QueryAttributes has a single natural
// implementation point.
func Snapshot(h grid.Handle) (grid.RawAttributes, error) {
	r, ok := GetRect(h)
	if !ok {
		return grid.RawAttributes{}, errInvalidHandle(h)
	}
	return grid.RawAttributes{
		Handle:       h,
		Rect:         r,
		Title:        Title(h),
		ClassName:    ClassName(h),
		ProcessID:    OwningProcessID(h),
		IsTopLevel:   IsTopLevel(h),
		IsVisible:    IsVisible(h),
		IsToolWindow: IsToolWindow(h),
		IsCloaked:    IsCloaked(h),
		Flags: grid.Flags{
			Minimized:  IsMinimized(h),
			Maximized:  IsMaximized(h),
			Foreground: ForegroundWindow() == h,
		},
	}, nil
}

type errInvalidHandle grid.Handle

func (e errInvalidHandle) Error() string {
	return "winapi: invalid window handle"
}
