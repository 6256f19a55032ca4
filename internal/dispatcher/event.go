package dispatcher

import (
	"time"

	"github.com/davehorner/e-grid/internal/geometry"
	"github.com/davehorner/e-grid/internal/grid"
)

// Kind is the high-level grid event the dispatcher derives from raw OS
// events, with wire codes matching spec §6's WindowEvent.event_type.
type Kind uint8

const (
	Created Kind = iota
	Destroyed
	Moved
	StateChanged
	MoveStart
	MoveStop
	ResizeStart
	ResizeStop
	ContinuousMove
	ContinuousResize
	Focused
	Defocused
)

func (k Kind) String() string {
	switch k {
	case Created:
		return "Created"
	case Destroyed:
		return "Destroyed"
	case Moved:
		return "Moved"
	case StateChanged:
		return "StateChanged"
	case MoveStart:
		return "MoveStart"
	case MoveStop:
		return "MoveStop"
	case ResizeStart:
		return "ResizeStart"
	case ResizeStop:
		return "ResizeStop"
	case ContinuousMove:
		return "ContinuousMove"
	case ContinuousResize:
		return "ContinuousResize"
	case Focused:
		return "Focused"
	case Defocused:
		return "Defocused"
	default:
		return "Unknown"
	}
}

// Event is the dispatcher's internal representation of a high-level grid
// event, carrying enough context for the server facade to translate it
// into the wire WindowEvent/WindowFocusEvent structs without a second
// tracker lookup.
type Event struct {
	Kind      Kind
	Handle    grid.Handle
	Old       geometry.Rect
	New       geometry.Rect
	MonitorID grid.MonitorID
	ProcessID uint32
	Timestamp time.Time
}
