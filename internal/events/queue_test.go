package events

import (
	"testing"
	"time"

	"github.com/davehorner/e-grid/internal/grid"
)

func TestLocationChangeCoalesces(t *testing.T) {
	q := NewQueue(16)
	base := time.Now()
	q.Push(Raw{Kind: LocationChange, Handle: 1, Timestamp: base})
	q.Push(Raw{Kind: LocationChange, Handle: 1, Timestamp: base.Add(time.Millisecond)})
	q.Push(Raw{Kind: LocationChange, Handle: 1, Timestamp: base.Add(2 * time.Millisecond)})

	if got := q.Len(); got != 1 {
		t.Fatalf("queue len = %d, want 1 (coalesced)", got)
	}
	drained := q.Drain(10)
	if len(drained) != 1 || !drained[0].Timestamp.Equal(base.Add(2*time.Millisecond)) {
		t.Fatalf("drained = %+v, want single most-recent event", drained)
	}
}

func TestMoveStartPreservedVerbatim(t *testing.T) {
	q := NewQueue(16)
	q.Push(Raw{Kind: MoveStart, Handle: 1})
	q.Push(Raw{Kind: MoveStart, Handle: 1})

	if got := q.Len(); got != 2 {
		t.Fatalf("queue len = %d, want 2 (MoveStart never coalesced)", got)
	}
}

func TestDestroySupersedesPending(t *testing.T) {
	q := NewQueue(16)
	q.Push(Raw{Kind: LocationChange, Handle: 1})
	q.Push(Raw{Kind: MoveStart, Handle: 1})
	q.Push(Raw{Kind: Destroy, Handle: 1})

	drained := q.Drain(10)
	if len(drained) != 1 || drained[0].Kind != Destroy {
		t.Fatalf("drained = %+v, want only the Destroy event", drained)
	}
}

func TestFullQueueCoalescesInsteadOfBlocking(t *testing.T) {
	q := NewQueue(2)
	q.Push(Raw{Kind: LocationChange, Handle: 1})
	q.Push(Raw{Kind: LocationChange, Handle: 2})
	// Queue is now "full"; pushing another LocationChange for handle 1
	// must coalesce rather than grow unbounded or drop handle 2's event.
	q.Push(Raw{Kind: LocationChange, Handle: 1, Timestamp: time.Unix(1, 0)})

	if got := q.Len(); got != 2 {
		t.Fatalf("queue len = %d, want 2", got)
	}
	drained := q.Drain(10)
	foundH2 := false
	for _, e := range drained {
		if e.Handle == grid.Handle(2) {
			foundH2 = true
		}
	}
	if !foundH2 {
		t.Fatalf("handle 2's event was dropped: %+v", drained)
	}
}

func TestDrainRespectsBatchLimit(t *testing.T) {
	q := NewQueue(16)
	for i := 0; i < 10; i++ {
		q.Push(Raw{Kind: Create, Handle: grid.Handle(i)})
	}
	drained := q.Drain(4)
	if len(drained) != 4 {
		t.Fatalf("drained = %d, want 4", len(drained))
	}
	if q.Len() != 6 {
		t.Fatalf("remaining = %d, want 6", q.Len())
	}
}
