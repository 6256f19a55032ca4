package animation

import (
	"testing"
	"time"

	"github.com/davehorner/e-grid/internal/geometry"
	"github.com/davehorner/e-grid/internal/grid"
)

func TestStartSupersedesPriorAnimation(t *testing.T) {
	m := NewManager()
	now := time.Now()
	m.Start(1, geometry.Rect{}, geometry.Rect{Right: 100, Bottom: 100}, time.Second, Linear, now)
	m.Start(1, geometry.Rect{}, geometry.Rect{Right: 200, Bottom: 200}, time.Second, Linear, now)

	if m.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 (second Start supersedes first)", m.Len())
	}
}

func TestAdvanceReachesTargetExactlyAtDuration(t *testing.T) {
	m := NewManager()
	now := time.Now()
	start := geometry.Rect{Left: 0, Top: 0, Right: 100, Bottom: 100}
	target := geometry.Rect{Left: 400, Top: 300, Right: 800, Bottom: 600}
	m.Start(1, start, target, 500*time.Millisecond, EaseInOut, now)

	var last geometry.Rect
	reposition := func(h grid.Handle, r geometry.Rect) error {
		last = r
		return nil
	}

	m.Advance(now, reposition)
	if last != start {
		t.Fatalf("at t=0 got %+v, want start %+v", last, start)
	}

	completed := m.Advance(now.Add(500*time.Millisecond), reposition)
	if last != target {
		t.Fatalf("at t=duration got %+v, want target %+v", last, target)
	}
	if len(completed) != 1 || completed[0] != grid.Handle(1) {
		t.Fatalf("completed = %v, want [1]", completed)
	}
	if m.Active(1) {
		t.Fatalf("animation should be retired after completion")
	}
}

func TestAdvanceMidpointIsBetweenStartAndTarget(t *testing.T) {
	m := NewManager()
	now := time.Now()
	start := geometry.Rect{Left: 0, Top: 0, Right: 100, Bottom: 100}
	target := geometry.Rect{Left: 400, Top: 300, Right: 800, Bottom: 600}
	m.Start(1, start, target, 500*time.Millisecond, Linear, now)

	var mid geometry.Rect
	m.Advance(now.Add(250*time.Millisecond), func(h grid.Handle, r geometry.Rect) error {
		mid = r
		return nil
	})

	if mid.Left <= start.Left || mid.Left >= target.Left {
		t.Fatalf("midpoint Left = %d, want strictly between %d and %d", mid.Left, start.Left, target.Left)
	}
}

func TestAdvanceRepositionFailureTerminatesAnimation(t *testing.T) {
	m := NewManager()
	now := time.Now()
	m.Start(1, geometry.Rect{}, geometry.Rect{Right: 10, Bottom: 10}, time.Second, Linear, now)

	m.Advance(now.Add(100*time.Millisecond), func(h grid.Handle, r geometry.Rect) error {
		return errFake{}
	})

	if m.Active(1) {
		t.Fatalf("animation must be terminated after a reposition failure")
	}
}

type errFake struct{}

func (errFake) Error() string { return "fake reposition failure" }
