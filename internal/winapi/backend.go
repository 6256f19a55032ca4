//go:build windows

package winapi

import (
	"github.com/davehorner/e-grid/internal/geometry"
	"github.com/davehorner/e-grid/internal/grid"
)

// Backend implements dispatcher.Backend against live Win32 state. It holds
// no fields: every call it makes is a direct syscall, so a zero value is
// always ready to use.
type Backend struct{}

// QueryAttributes satisfies dispatcher.Backend.
func (Backend) QueryAttributes(h grid.Handle) (grid.RawAttributes, error) {
	return Snapshot(h)
}

// Reposition satisfies dispatcher.Backend.
func (Backend) Reposition(h grid.Handle, rect geometry.Rect) error {
	return MoveTo(h, rect)
}

// Focus satisfies server.FocusBackend, bringing h to the foreground for
// the FocusWindow command.
func (Backend) Focus(h grid.Handle) error {
	return SetForeground(h)
}
