package geometry

import "testing"

func TestCoverageExactThreshold(t *testing.T) {
	cell := Rect{Left: 0, Top: 0, Right: 100, Bottom: 100}

	window := Rect{Left: 0, Top: 0, Right: 100, Bottom: 30}
	if got := Coverage(window, cell); got != 0.30 {
		t.Fatalf("coverage = %v, want 0.30", got)
	}

	window = Rect{Left: 0, Top: 0, Right: 100, Bottom: 29}
	if got := Coverage(window, cell); got >= 0.30 {
		t.Fatalf("coverage = %v, want < 0.30", got)
	}
}

func TestCoverageDisjoint(t *testing.T) {
	cell := Rect{Left: 0, Top: 0, Right: 100, Bottom: 100}
	window := Rect{Left: 200, Top: 200, Right: 300, Bottom: 300}
	if got := Coverage(window, cell); got != 0 {
		t.Fatalf("coverage = %v, want 0", got)
	}
}

func TestCellBoundsTileExactly(t *testing.T) {
	vb := Rect{Left: 0, Top: 0, Right: 1200, Bottom: 800}
	const rows, cols = 8, 12

	var widthSum int32
	for c := 0; c < cols; c++ {
		cell := CellBounds(0, c, rows, cols, vb)
		widthSum += cell.Width()
		if c > 0 {
			prev := CellBounds(0, c-1, rows, cols, vb)
			if prev.Right != cell.Left {
				t.Fatalf("gap/overlap between col %d and %d: %d != %d", c-1, c, prev.Right, cell.Left)
			}
		}
	}
	if widthSum != vb.Width() {
		t.Fatalf("sum of cell widths = %d, want %d", widthSum, vb.Width())
	}

	var heightSum int32
	for r := 0; r < rows; r++ {
		cell := CellBounds(r, 0, rows, cols, vb)
		heightSum += cell.Height()
	}
	if heightSum != vb.Height() {
		t.Fatalf("sum of cell heights = %d, want %d", heightSum, vb.Height())
	}
}

func TestOccupiedCellsSingleCellAssignment(t *testing.T) {
	monitor := Rect{Left: 0, Top: 0, Right: 1200, Bottom: 800}
	window := Rect{Left: 0, Top: 0, Right: 100, Bottom: 100}

	cells := OccupiedCells(window, 8, 12, monitor, 0.30)
	if len(cells) != 1 {
		t.Fatalf("got %d occupied cells, want 1: %+v", len(cells), cells)
	}
	if cells[0] != (Cell{Row: 0, Col: 0}) {
		t.Fatalf("occupied cell = %+v, want (0,0)", cells[0])
	}
}

func TestOccupiedCellsBoundarySpan(t *testing.T) {
	// A window straddling a 2x2 block of 100x100 cells: it covers 50x67 of
	// each top-row cell (0.335, at or above threshold) but only 50x33 of
	// each bottom-row cell (0.165, below), so only the top two count.
	monitor := Rect{Left: 0, Top: 0, Right: 1200, Bottom: 800}
	window := Rect{Left: 50, Top: 33, Right: 150, Bottom: 133}

	cells := OccupiedCells(window, 8, 12, monitor, 0.30)
	if len(cells) != 2 || cells[0] != (Cell{Row: 0, Col: 0}) || cells[1] != (Cell{Row: 0, Col: 1}) {
		t.Fatalf("occupied cells = %+v, want [(0,0) (0,1)]", cells)
	}
}

func TestMonitorVirtualCellRoundTrip(t *testing.T) {
	vr, vc := MonitorCellToVirtual(3, 5, 12)
	if vr != 3 || vc != 17 {
		t.Fatalf("MonitorCellToVirtual = (%d,%d), want (3,17)", vr, vc)
	}

	r, c, ok := VirtualCellToMonitor(vr, vc, 12, 12)
	if !ok || r != 3 || c != 5 {
		t.Fatalf("VirtualCellToMonitor = (%d,%d,%v), want (3,5,true)", r, c, ok)
	}

	_, _, ok = VirtualCellToMonitor(3, 5, 12, 12)
	if ok {
		t.Fatalf("expected ok=false for virtual col outside monitor span")
	}
}
