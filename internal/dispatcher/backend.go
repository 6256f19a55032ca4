package dispatcher

import (
	"github.com/davehorner/e-grid/internal/geometry"
	"github.com/davehorner/e-grid/internal/grid"
)

// Backend abstracts the OS query/reposition operations the dispatcher
// needs, the same way the teacher's platform.Backend interface keeps
// platform-specific syscalls out of daemon logic. internal/winapi supplies
// the real Windows implementation; tests supply an in-memory fake so the
// dispatcher is fully testable off-Windows.
type Backend interface {
	// QueryAttributes resolves the live attributes for handle. An error
	// means the handle is no longer valid (spec §4.4: "OS query failure
	// for a handle is non-fatal and treated as an implicit Destroy").
	QueryAttributes(h grid.Handle) (grid.RawAttributes, error)

	// Reposition moves handle to rect. Used both by command handling and
	// by the animation manager's per-tick interpolation.
	Reposition(h grid.Handle, rect geometry.Rect) error
}
