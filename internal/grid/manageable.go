package grid

import (
	"strings"

	"github.com/davehorner/e-grid/internal/geometry"
)

// RawAttributes is the snapshot of OS window attributes the manageability
// filter decides on. internal/winapi populates this from live Win32 state;
// keeping it as plain data here (rather than depending on winapi) lets the
// filter stay a pure function, testable without any OS handle.
type RawAttributes struct {
	Handle       Handle
	Rect         geometry.Rect
	Title        string
	ClassName    string
	ProcessID    uint32
	IsTopLevel   bool
	IsVisible    bool
	IsToolWindow bool
	IsCloaked    bool
	Flags        Flags
}

// offScreenMinimizedCoord is the sentinel top-left coordinate Windows
// parks minimized windows at (SW_SHOWMINIMIZED moves the window to
// (-32000, -32000) on classic shells).
const offScreenMinimizedCoord = -32000

// DenyClassNames lists window classes the filter excludes outright:
// shell chrome and tool windows that are not manageable application
// windows even though they may report IsTopLevel/IsVisible. This is the
// deny-list the spec's Design Notes flag as an open question the source
// left ambiguous — fixed here explicitly per that note's instruction.
var DenyClassNames = map[string]bool{
	"Shell_TrayWnd":              true,
	"Shell_SecondaryTrayWnd":     true,
	"Progman":                    true,
	"WorkerW":                    true,
	"Windows.UI.Core.CoreWindow": true,
	"NotifyIconOverflowWindow":   true,
	"tooltips_class32":           true,
	"Xaml_WindowedPopupClass":    true,
}

// ownProcessID is set once at server startup (GetCurrentProcessId) so the
// filter can exclude the tracker's own windows without importing winapi.
var ownProcessID uint32

// SetOwnProcessID records the tracker process's own PID for the
// manageability filter's self-exclusion rule (e).
func SetOwnProcessID(pid uint32) { ownProcessID = pid }

// IsManageable applies the filter from spec §4.2: excludes windows that are
// not top-level, invisible, cloaked tool windows, parked at the off-screen
// minimized coordinate, owned by the tracker's own process, or carry an
// empty/deny-listed class name.
func IsManageable(a RawAttributes) (bool, string) {
	if !a.IsTopLevel {
		return false, "not top-level"
	}
	if !a.IsVisible {
		return false, "invisible"
	}
	if a.IsToolWindow && a.IsCloaked {
		return false, "cloaked tool window"
	}
	if a.Rect.Left <= offScreenMinimizedCoord && a.Rect.Top <= offScreenMinimizedCoord {
		return false, "off-screen minimized"
	}
	if ownProcessID != 0 && a.ProcessID == ownProcessID {
		return false, "owned by tracker process"
	}
	class := strings.TrimSpace(a.ClassName)
	if class == "" || DenyClassNames[class] {
		return false, "denied class name: " + class
	}
	return true, ""
}
