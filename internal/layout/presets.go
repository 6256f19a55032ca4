// Package layout provides named, generated-on-demand window arrangements
// (grid, cascade, fibonacci) — the preset registry supplementing the
// spec's save_layout/apply_layout pair (SPEC_FULL.md §C.3), grounded on
// the teacher's internal/tiling grid-math helpers.
package layout

import (
	"fmt"

	"github.com/davehorner/e-grid/internal/geometry"
)

// Preset computes target rectangles for n windows within bounds. It never
// touches the window map or any handle: callers zip the returned slice
// against a handle list in the order they choose.
type Preset func(n int, bounds geometry.Rect) []geometry.Rect

// Registry maps preset names to their generators. Unlike SavedLayout,
// entries here are pure functions recomputed on every ApplyLayout call —
// they are not persisted state.
var Registry = map[string]Preset{
	"grid":      Grid,
	"cascade":   Cascade,
	"fibonacci": Fibonacci,
}

// Lookup returns the named preset, or an error if it is not registered.
func Lookup(name string) (Preset, error) {
	p, ok := Registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown layout preset %q", name)
	}
	return p, nil
}

// Grid arranges n windows into the most-square grid that fits them,
// columns-first (ceiling of sqrt(n)), mirroring the teacher's
// tiling.CalculateGrid/CalculatePositions pairing but against a single
// target rectangle rather than a per-monitor gap-aware layout.
func Grid(n int, bounds geometry.Rect) []geometry.Rect {
	if n <= 0 {
		return nil
	}
	cols := ceilSqrt(n)
	rows := (n + cols - 1) / cols

	out := make([]geometry.Rect, n)
	for i := 0; i < n; i++ {
		row := i / cols
		col := i % cols
		out[i] = geometry.CellBounds(row, col, rows, cols, bounds)
	}
	return out
}

// Cascade staggers windows diagonally, each offset from the last by a
// fixed fraction of the bounds, sized to a fraction of the available
// area; a common window-manager demo arrangement.
func Cascade(n int, bounds geometry.Rect) []geometry.Rect {
	if n <= 0 {
		return nil
	}
	w := bounds.Width()
	h := bounds.Height()
	cw := w * 3 / 5
	ch := h * 3 / 5
	stepX := int32(0)
	stepY := int32(0)
	if n > 1 {
		stepX = (w - cw) / int32(n-1)
		stepY = (h - ch) / int32(n-1)
		if stepX < 0 {
			stepX = 0
		}
		if stepY < 0 {
			stepY = 0
		}
	}

	out := make([]geometry.Rect, n)
	for i := 0; i < n; i++ {
		left := bounds.Left + int32(i)*stepX
		top := bounds.Top + int32(i)*stepY
		out[i] = geometry.Rect{Left: left, Top: top, Right: left + cw, Bottom: top + ch}
	}
	return out
}

// Fibonacci lays windows out by repeatedly splitting the remaining area in
// half, alternating the split axis — the classic "fibonacci"/dwindle tiling
// arrangement. The first window takes roughly half the area, the second
// half of what remains, and so on.
func Fibonacci(n int, bounds geometry.Rect) []geometry.Rect {
	if n <= 0 {
		return nil
	}
	out := make([]geometry.Rect, 0, n)
	remaining := bounds
	vertical := true
	for i := 0; i < n; i++ {
		if i == n-1 {
			out = append(out, remaining)
			break
		}
		var piece geometry.Rect
		piece, remaining = splitHalf(remaining, vertical)
		out = append(out, piece)
		vertical = !vertical
	}
	return out
}

// splitHalf divides r into two halves along the chosen axis, returning the
// first half and the remainder.
func splitHalf(r geometry.Rect, vertical bool) (geometry.Rect, geometry.Rect) {
	if vertical {
		mid := r.Left + r.Width()/2
		return geometry.Rect{Left: r.Left, Top: r.Top, Right: mid, Bottom: r.Bottom},
			geometry.Rect{Left: mid, Top: r.Top, Right: r.Right, Bottom: r.Bottom}
	}
	mid := r.Top + r.Height()/2
	return geometry.Rect{Left: r.Left, Top: r.Top, Right: r.Right, Bottom: mid},
		geometry.Rect{Left: r.Left, Top: mid, Right: r.Right, Bottom: r.Bottom}
}

func ceilSqrt(n int) int {
	c := 1
	for c*c < n {
		c++
	}
	return c
}
