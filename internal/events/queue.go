// Package events implements the intake side of the event plane (spec
// component C3): the raw event type OS callbacks construct, and the
// bounded, coalescing queue that decouples the OS callback from the
// dispatcher. Nothing here may block — see Queue.Push.
package events

import (
	"sync"
	"time"

	"github.com/davehorner/e-grid/internal/grid"
)

// Kind enumerates the raw OS window events the intake callback observes.
type Kind int

const (
	Create Kind = iota
	Destroy
	LocationChange
	Foreground
	MoveStart
	MoveEnd
	ResizeStart
	ResizeEnd
	Minimize
	Restore
)

func (k Kind) String() string {
	switch k {
	case Create:
		return "Create"
	case Destroy:
		return "Destroy"
	case LocationChange:
		return "LocationChange"
	case Foreground:
		return "Foreground"
	case MoveStart:
		return "MoveStart"
	case MoveEnd:
		return "MoveEnd"
	case ResizeStart:
		return "ResizeStart"
	case ResizeEnd:
		return "ResizeEnd"
	case Minimize:
		return "Minimize"
	case Restore:
		return "Restore"
	default:
		return "Unknown"
	}
}

// Raw is the value the intake callback's entire body constructs: cheap to
// build from attributes already in hand, no OS round-trip, no allocation
// beyond the struct itself.
type Raw struct {
	Kind      Kind
	Handle    grid.Handle
	Timestamp time.Time
}

// coalescible reports whether repeated events of this kind for the same
// handle should collapse to the most recent one rather than queuing every
// occurrence (spec §4.3: LocationChange bursts collapse; MoveStart/
// ResizeStart are preserved verbatim).
func (k Kind) coalescible() bool {
	return k == LocationChange
}

// DefaultCapacity is the default bound K from spec §4.3.
const DefaultCapacity = 4096

// Queue is the bounded MPSC queue between OS callbacks and the dispatcher.
// Push is the only method callable from an OS callback context; it must
// never block and never acquire a lock shared with the dispatcher thread.
// The mutex here is private to the queue itself — a brief, uncontended
// critical section, not the tracker/grid lock the dispatcher owns — so it
// satisfies that constraint without needing true lock-free atomics.
type Queue struct {
	mu       sync.Mutex
	cap      int
	items    []Raw
	coalesce map[grid.Handle]int // handle -> index into items, for coalescible kinds pending drain
	dropped  uint64
}

// NewQueue constructs a Queue bounded at capacity events.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{
		cap:      capacity,
		items:    make([]Raw, 0, capacity),
		coalesce: make(map[grid.Handle]int),
	}
}

// Push enqueues a raw event, applying the coalescing rules from spec §4.3.
// It never blocks: on a full queue it coalesces or drops rather than
// waiting for the dispatcher to drain.
func (q *Queue) Push(e Raw) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if e.Kind == Destroy {
		q.supersedeLocked(e.Handle)
		q.appendLocked(e)
		return
	}

	if e.Kind.coalescible() {
		if idx, ok := q.coalesce[e.Handle]; ok && idx < len(q.items) && q.items[idx].Kind == e.Kind && q.items[idx].Handle == e.Handle {
			q.items[idx] = e
			return
		}
	}

	if len(q.items) >= q.cap {
		if !q.coalesceOldestLocked(e) {
			// No matching in-flight event to coalesce into: drop the
			// oldest entry outright rather than block the callback.
			q.dropOldestLocked()
		} else {
			return
		}
	}

	q.appendLocked(e)
}

// appendLocked appends e and, if coalescible, records its index for future
// coalescing.
func (q *Queue) appendLocked(e Raw) {
	q.items = append(q.items, e)
	if e.Kind.coalescible() {
		q.coalesce[e.Handle] = len(q.items) - 1
	}
}

// supersedeLocked removes every pending event for handle: a Destroy always
// wins over anything queued before it for that handle.
func (q *Queue) supersedeLocked(h grid.Handle) {
	if len(q.items) == 0 {
		return
	}
	out := q.items[:0]
	for _, it := range q.items {
		if it.Handle == h {
			continue
		}
		out = append(out, it)
	}
	q.items = out
	delete(q.coalesce, h)
	q.reindexLocked()
}

// coalesceOldestLocked tries to fold e into an existing queued event of the
// same kind for the same handle when the queue is full. Returns true if it
// did so (meaning e has effectively been enqueued).
func (q *Queue) coalesceOldestLocked(e Raw) bool {
	if idx, ok := q.coalesce[e.Handle]; ok && idx < len(q.items) && q.items[idx].Kind == e.Kind {
		q.items[idx] = e
		return true
	}
	for i := range q.items {
		if q.items[i].Handle == e.Handle && q.items[i].Kind == e.Kind {
			q.items[i] = e
			if e.Kind.coalescible() {
				q.coalesce[e.Handle] = i
			}
			return true
		}
	}
	return false
}

// dropOldestLocked discards the single oldest queued event to make room,
// counting it for observability.
func (q *Queue) dropOldestLocked() {
	if len(q.items) == 0 {
		return
	}
	q.items = q.items[1:]
	q.dropped++
	q.reindexLocked()
}

func (q *Queue) reindexLocked() {
	for h := range q.coalesce {
		delete(q.coalesce, h)
	}
	for i, it := range q.items {
		if it.Kind.coalescible() {
			q.coalesce[it.Handle] = i
		}
	}
}

// Drain removes and returns up to max queued events, oldest first, for the
// dispatcher's per-tick batch (spec §4.4 step 1).
func (q *Queue) Drain(max int) []Raw {
	q.mu.Lock()
	defer q.mu.Unlock()

	if max <= 0 || max > len(q.items) {
		max = len(q.items)
	}
	out := make([]Raw, max)
	copy(out, q.items[:max])
	q.items = q.items[max:]
	q.reindexLocked()
	return out
}

// Len reports the number of currently queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Dropped reports the cumulative number of events dropped for lack of
// capacity (diagnostic counter, not part of the wire protocol).
func (q *Queue) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
