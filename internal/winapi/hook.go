//go:build windows

package winapi

import (
	"syscall"
	"time"
	"unsafe"

	"github.com/davehorner/e-grid/internal/events"
	"github.com/davehorner/e-grid/internal/grid"
)

// activeQueue is the single process-scoped pointer the WinEvent callback
// dereferences. SetWinEventHook's callback signature is fixed by the OS
// and cannot capture a closure over a Go value across the cgo-less
// syscall boundary, so a package-level pointer set at Install and cleared
// at Uninstall is the boundary concession spec §9 calls for — "treated as
// a boundary concession, not a general pattern" — every other component
// in this module takes an explicit queue/tracker reference.
var activeQueue *events.Queue

// Hook owns the installed WinEvent hook handle and the Win32 message pump
// required to receive it.
type Hook struct {
	handle uintptr
}

// Install registers a low-level WinEvent hook over the full event range
// (evtMin..evtMax) and routes every callback straight into queue.Push —
// the callback's entire body, per spec §4.3's discipline: no locks, no
// blocking, no work beyond constructing and enqueuing a Raw event.
// translateEventType is the actual filter; SetWinEventHook itself has no
// way to select a sparse set of event codes, only a contiguous range.
func Install(queue *events.Queue) *Hook {
	activeQueue = queue
	cb := syscall.NewCallback(winEventProc)
	ret, _, _ := procSetWinEventHook.Call(
		uintptr(evtMin), uintptr(evtMax),
		0, cb, 0, 0, uintptr(winEventOutOfContext),
	)
	return &Hook{handle: ret}
}

// Uninstall removes the hook and clears the process-scoped queue pointer.
func (h *Hook) Uninstall() {
	if h.handle != 0 {
		procUnhookWinEvent.Call(h.handle)
		h.handle = 0
	}
	activeQueue = nil
}

// Pump runs the Win32 message loop the WinEvent hook requires to deliver
// callbacks, until the hook is uninstalled. It must run on the thread that
// called Install (Win32 thread affinity), matching the "one main thread
// runs the OS message pump" requirement in spec §5.
func (h *Hook) Pump() {
	type msg struct {
		hwnd          uintptr
		message       uint32
		wParam, lParam uintptr
		time          uint32
		pt            struct{ x, y int32 }
	}
	var m msg
	for h.handle != 0 {
		ret, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if ret == 0 {
			return
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
	}
}

// winEventProc is the raw WinEvent callback. Its signature matches
// WINEVENTPROC; only eventType and hwnd are used.
func winEventProc(hWinEventHook uintptr, eventType uint32, hwnd uintptr, idObject, idChild int32, idEventThread, dwmsEventTime uint32) uintptr {
	// A panic must not unwind into the OS; the event is dropped instead.
	defer func() { _ = recover() }()
	q := activeQueue
	if q == nil || hwnd == 0 {
		return 0
	}

	kind, ok := translateEventType(eventType)
	if !ok {
		return 0
	}
	q.Push(events.Raw{Kind: kind, Handle: grid.Handle(hwnd), Timestamp: time.Now()})
	return 0
}

func translateEventType(eventType uint32) (events.Kind, bool) {
	switch eventType {
	case eventObjectCreate, eventObjectShow:
		return events.Create, true
	case eventObjectDestroy, eventObjectHide:
		return events.Destroy, true
	case eventObjectLocationChange:
		return events.LocationChange, true
	case eventSystemForeground:
		return events.Foreground, true
	case eventSystemMoveSizeStart:
		// Win32 fires the same EVENT_SYSTEM_MOVESIZESTART for both drag-move
		// and drag-resize. Every bracket is reported as MoveStart/MoveEnd;
		// nothing here or in the dispatcher compares rect dimensions, so
		// drag-resizes are not reported as ResizeStart/ResizeEnd.
		return events.MoveStart, true
	case eventSystemMoveSizeEnd:
		return events.MoveEnd, true
	case eventSystemMinimizeStart:
		return events.Minimize, true
	case eventSystemMinimizeEnd:
		return events.Restore, true
	default:
		return 0, false
	}
}
