//go:build windows

package winapi

import (
	"syscall"
	"unsafe"

	"github.com/davehorner/e-grid/internal/geometry"
	"github.com/davehorner/e-grid/internal/grid"
)

// EnumMonitors enumerates physical display monitors and returns them as
// grid.Monitor records with session-stable small integer IDs (the order
// EnumDisplayMonitors reports them in, which Windows keeps stable for the
// session — matching spec §3's "monitor_id... stable for a session").
func EnumMonitors() []grid.Monitor {
	var out []grid.Monitor
	var id grid.MonitorID

	cb := syscall.NewCallback(func(hMonitor uintptr, _ uintptr, _ uintptr, _ uintptr) uintptr {
		var mi monitorInfo
		mi.CbSize = uint32(unsafe.Sizeof(mi))
		ret, _, _ := procGetMonitorInfoW.Call(hMonitor, uintptr(unsafe.Pointer(&mi)))
		if ret != 0 {
			bounds := geometry.Rect{Left: mi.RcMonitor.Left, Top: mi.RcMonitor.Top, Right: mi.RcMonitor.Right, Bottom: mi.RcMonitor.Bottom}
			work := geometry.Rect{Left: mi.RcWork.Left, Top: mi.RcWork.Top, Right: mi.RcWork.Right, Bottom: mi.RcWork.Bottom}
			out = append(out, grid.Monitor{
				ID:       id,
				Bounds:   bounds,
				WorkArea: work,
				Width:    bounds.Width(),
				Height:   bounds.Height(),
			})
			id++
		}
		return 1
	})
	procEnumDisplayMonitors.Call(0, 0, cb, 0)
	return out
}
