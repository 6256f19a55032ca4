//go:build windows

package winapi

// rect mirrors the Win32 RECT struct layout (LONG left, top, right,
// bottom), used only at the syscall boundary before translation into
// geometry.Rect.
type rect struct {
	Left, Top, Right, Bottom int32
}

// monitorInfo mirrors MONITORINFO: cbSize, rcMonitor, rcWork, dwFlags.
type monitorInfo struct {
	CbSize    uint32
	RcMonitor rect
	RcWork    rect
	DwFlags   uint32
}

const (
	swpNoZOrder   = 0x0004
	swpNoActivate = 0x0010

	gaRoot = 2 // GA_ROOT

	dwmwaCloaked = 14 // DWMWA_CLOAKED

	winEventOutOfContext = 0x0000
	evtMin               = 0x00000001

	gwlExStyle     = -20  // GWL_EXSTYLE
	wsExToolWindow = 0x80 // WS_EX_TOOLWINDOW

	// Window-event constants this package subscribes to (EVENT_* from
	// winuser.h), matched against in the hook callback.
	eventObjectCreate       = 0x8000
	eventObjectDestroy      = 0x8001
	eventObjectShow         = 0x8002
	eventObjectHide         = 0x8003
	eventObjectLocationChange = 0x800B
	eventSystemForeground   = 0x0003
	eventSystemMoveSizeStart = 0x000A
	eventSystemMoveSizeEnd  = 0x000B
	eventSystemMinimizeStart = 0x0016
	eventSystemMinimizeEnd  = 0x0017
	evtMax                  = 0x7FFFFFFF
)
