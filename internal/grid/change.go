package grid

import "github.com/davehorner/e-grid/internal/geometry"

// ChangeKind classifies the outcome of WindowTracker.AddOrUpdate.
type ChangeKind int

const (
	ChangeCreated ChangeKind = iota
	ChangeMoved
	ChangeUnchanged
	ChangeRejected
)

// Change is returned by AddOrUpdate so the dispatcher can derive the
// high-level GridEvent without re-querying the tracker.
type Change struct {
	Kind        ChangeKind
	Old         geometry.Rect // valid when Kind == ChangeMoved
	New         geometry.Rect
	RejectReason string // valid when Kind == ChangeRejected
}

func (c ChangeKind) String() string {
	switch c {
	case ChangeCreated:
		return "Created"
	case ChangeMoved:
		return "Moved"
	case ChangeUnchanged:
		return "Unchanged"
	case ChangeRejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}
