package server

import (
	"hash/fnv"

	"github.com/davehorner/e-grid/internal/animation"
	"github.com/davehorner/e-grid/internal/geometry"
	"github.com/davehorner/e-grid/internal/grid"
)

// hashString returns a deterministic 64-bit hash of s via FNV-1a, used
// wherever the wire protocol or the saved-layout identity needs a fixed-
// width stand-in for a variable-length string (spec §3/§6).
func hashString(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

// identityOf derives a saved-layout replay identity from a live window
// record: title hash plus the owning process id (used directly rather
// than hashed — a process id is already a fixed-width integer, and
// hashing it would add collision risk for no benefit). This is narrower
// than a full executable-path hash, but the original's own replay key is
// likewise just (title, process) — see DESIGN.md.
func identityOf(w grid.WindowInfo) animation.Identity {
	return animation.Identity{TitleHash: hashString(w.Title), ProcessHash: uint64(w.ProcessID)}
}

// cellBoundingBox returns the min/max row and column across cells, for
// populating WindowEvent's grid_top_left/grid_bottom_right fields from a
// window's occupied-cell list. ok is false for an empty cell list (a
// window fully off every grid, e.g. spanning no monitor).
func cellBoundingBox(cells []geometry.Cell) (minRow, minCol, maxRow, maxCol int, ok bool) {
	if len(cells) == 0 {
		return 0, 0, 0, 0, false
	}
	minRow, minCol = cells[0].Row, cells[0].Col
	maxRow, maxCol = cells[0].Row, cells[0].Col
	for _, c := range cells[1:] {
		if c.Row < minRow {
			minRow = c.Row
		}
		if c.Row > maxRow {
			maxRow = c.Row
		}
		if c.Col < minCol {
			minCol = c.Col
		}
		if c.Col > maxCol {
			maxCol = c.Col
		}
	}
	return minRow, minCol, maxRow, maxCol, true
}
