package layout

import (
	"testing"

	"github.com/davehorner/e-grid/internal/geometry"
)

func TestGridProducesRequestedCount(t *testing.T) {
	bounds := geometry.Rect{Left: 0, Top: 0, Right: 1200, Bottom: 800}
	rects := Grid(5, bounds)
	if len(rects) != 5 {
		t.Fatalf("len = %d, want 5", len(rects))
	}
	for _, r := range rects {
		if r.Empty() {
			t.Fatalf("unexpected empty rect in grid layout: %+v", r)
		}
	}
}

func TestFibonacciCoversBoundsWithoutOverflow(t *testing.T) {
	bounds := geometry.Rect{Left: 0, Top: 0, Right: 1000, Bottom: 1000}
	rects := Fibonacci(4, bounds)
	if len(rects) != 4 {
		t.Fatalf("len = %d, want 4", len(rects))
	}
	for _, r := range rects {
		if r.Left < bounds.Left || r.Right > bounds.Right || r.Top < bounds.Top || r.Bottom > bounds.Bottom {
			t.Fatalf("rect %+v escapes bounds %+v", r, bounds)
		}
	}
}

func TestCascadeMonotonicOffsets(t *testing.T) {
	bounds := geometry.Rect{Left: 0, Top: 0, Right: 1000, Bottom: 1000}
	rects := Cascade(3, bounds)
	if len(rects) != 3 {
		t.Fatalf("len = %d, want 3", len(rects))
	}
	for i := 1; i < len(rects); i++ {
		if rects[i].Left < rects[i-1].Left || rects[i].Top < rects[i-1].Top {
			t.Fatalf("cascade offsets not monotonic: %+v then %+v", rects[i-1], rects[i])
		}
	}
}

func TestLookupUnknownPreset(t *testing.T) {
	if _, err := Lookup("nonexistent"); err == nil {
		t.Fatalf("expected error for unknown preset")
	}
}
