//go:build windows

// Package winapi is the sole OS boundary in this module: hand-written
// Win32 bindings for the user32/dwmapi/kernel32 calls the tracker needs.
// No example repo in the retrieval pack ships genuine Win32 FFI, so this
// package follows the standard Go idiom for it directly — lazy-loaded
// DLLs and syscall.Syscall, the same pattern golang.org/x/sys/windows
// itself is built from (already a dependency, via the teacher, for
// golang.org/x/term's console handling). See DESIGN.md for the stdlib
// justification: there is no third-party Win32 binding in the pack to
// reuse instead.
package winapi

import "golang.org/x/sys/windows"

var (
	user32  = windows.NewLazySystemDLL("user32.dll")
	dwmapi  = windows.NewLazySystemDLL("dwmapi.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procEnumWindows            = user32.NewProc("EnumWindows")
	procGetWindowRect          = user32.NewProc("GetWindowRect")
	procMoveWindow             = user32.NewProc("MoveWindow")
	procSetWindowPos           = user32.NewProc("SetWindowPos")
	procGetForegroundWindow    = user32.NewProc("GetForegroundWindow")
	procSetForegroundWindow    = user32.NewProc("SetForegroundWindow")
	procIsWindowVisible        = user32.NewProc("IsWindowVisible")
	procIsIconic               = user32.NewProc("IsIconic")
	procIsZoomed               = user32.NewProc("IsZoomed")
	procGetClassNameW          = user32.NewProc("GetClassNameW")
	procGetWindowTextW         = user32.NewProc("GetWindowTextW")
	procGetWindowTextLengthW   = user32.NewProc("GetWindowTextLengthW")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
	procGetWindow              = user32.NewProc("GetWindow")
	procGetAncestor            = user32.NewProc("GetAncestor")
	procEnumDisplayMonitors    = user32.NewProc("EnumDisplayMonitors")
	procGetMonitorInfoW        = user32.NewProc("GetMonitorInfoW")
	procGetWindowLongW         = user32.NewProc("GetWindowLongW")
	procSetWinEventHook        = user32.NewProc("SetWinEventHook")
	procUnhookWinEvent         = user32.NewProc("UnhookWinEvent")
	procGetMessageW            = user32.NewProc("GetMessageW")
	procTranslateMessage       = user32.NewProc("TranslateMessage")
	procDispatchMessageW       = user32.NewProc("DispatchMessageW")

	procDwmGetWindowAttribute = dwmapi.NewProc("DwmGetWindowAttribute")

	procGetCurrentProcessId = kernel32.NewProc("GetCurrentProcessId")
)
