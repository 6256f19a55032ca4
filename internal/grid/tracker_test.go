package grid

import (
	"testing"

	"github.com/davehorner/e-grid/internal/geometry"
)

func testMonitors() []Monitor {
	bounds := geometry.Rect{Left: 0, Top: 0, Right: 1200, Bottom: 800}
	return []Monitor{{ID: 0, Bounds: bounds, WorkArea: bounds, Width: 1200, Height: 800}}
}

func manageableAttrs(h Handle, r geometry.Rect) RawAttributes {
	return RawAttributes{Handle: h, Rect: r, IsTopLevel: true, IsVisible: true, ClassName: "AppWindow"}
}

func TestAddOrUpdateCapturesOriginalRectOnce(t *testing.T) {
	tr := New(DefaultConfig(), testMonitors())

	r1 := geometry.Rect{Left: 0, Top: 0, Right: 100, Bottom: 100}
	ch := tr.AddOrUpdate(1, r1, "win", Flags{}, manageableAttrs(1, r1))
	if ch.Kind != ChangeCreated {
		t.Fatalf("first add: got %v, want Created", ch.Kind)
	}

	r2 := geometry.Rect{Left: 50, Top: 50, Right: 150, Bottom: 150}
	ch = tr.AddOrUpdate(1, r2, "win", Flags{}, manageableAttrs(1, r2))
	if ch.Kind != ChangeMoved {
		t.Fatalf("move: got %v, want Moved", ch.Kind)
	}

	info, ok := tr.Get(1)
	if !ok {
		t.Fatalf("expected window to be tracked")
	}
	if info.OriginalRect != r1 {
		t.Fatalf("OriginalRect = %+v, want %+v (unchanged after move)", info.OriginalRect, r1)
	}
	if info.Rect != r2 {
		t.Fatalf("Rect = %+v, want %+v", info.Rect, r2)
	}
}

func TestAddOrUpdateRejectsUnmanageable(t *testing.T) {
	tr := New(DefaultConfig(), testMonitors())
	r := geometry.Rect{Left: 0, Top: 0, Right: 10, Bottom: 10}
	attrs := RawAttributes{Handle: 1, Rect: r, IsTopLevel: false}

	ch := tr.AddOrUpdate(1, r, "x", Flags{}, attrs)
	if ch.Kind != ChangeRejected {
		t.Fatalf("got %v, want Rejected", ch.Kind)
	}
	if _, ok := tr.Get(1); ok {
		t.Fatalf("rejected window must not be tracked")
	}
}

func TestRebuildGridsSingleCellAssignment(t *testing.T) {
	// S1 from spec §8: 1200x800 monitor, 8x12 grid, window at (0,0)-(100,100).
	tr := New(DefaultConfig(), testMonitors())
	r := geometry.Rect{Left: 0, Top: 0, Right: 100, Bottom: 100}
	tr.AddOrUpdate(1, r, "w", Flags{}, manageableAttrs(1, r))
	tr.RebuildGrids()

	monGrid := tr.MonitorGrid(0)
	occupied := 0
	for _, c := range monGrid.Cells {
		if c.Occupied {
			occupied++
		}
	}
	if occupied != 1 {
		t.Fatalf("occupied cells on monitor grid = %d, want 1", occupied)
	}
	if cell := monGrid.At(0, 0); !cell.Occupied || cell.Window != 1 {
		t.Fatalf("cell (0,0) = %+v, want occupied by handle 1", cell)
	}

	vGrid := tr.VirtualGrid()
	if cell := vGrid.At(0, 0); !cell.Occupied || cell.Window != 1 {
		t.Fatalf("virtual cell (0,0) = %+v, want occupied by handle 1", cell)
	}
}

func TestSnapshotIdempotentWithoutActivity(t *testing.T) {
	tr := New(DefaultConfig(), testMonitors())
	r := geometry.Rect{Left: 0, Top: 0, Right: 100, Bottom: 100}
	tr.AddOrUpdate(1, r, "w", Flags{}, manageableAttrs(1, r))
	tr.RebuildGrids()

	a := tr.VirtualGrid()
	b := tr.VirtualGrid()
	if !a.Equal(b) {
		t.Fatalf("two successive GetGridState-equivalent reads differ")
	}
}

func TestRemoveReportsExistence(t *testing.T) {
	tr := New(DefaultConfig(), testMonitors())
	if tr.Remove(42) {
		t.Fatalf("Remove on absent handle must return false")
	}
	r := geometry.Rect{Left: 0, Top: 0, Right: 10, Bottom: 10}
	tr.AddOrUpdate(42, r, "w", Flags{}, manageableAttrs(42, r))
	if !tr.Remove(42) {
		t.Fatalf("Remove on present handle must return true")
	}
}
