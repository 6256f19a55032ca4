package geometry

// Coverage returns the fraction of cell's area covered by window, in
// [0, 1]. Disjoint rectangles or a zero-area cell both yield 0.
func Coverage(window, cell Rect) float32 {
	cellArea := cell.Area()
	if cellArea == 0 {
		return 0
	}
	inter := window.Intersect(cell)
	if inter.Empty() {
		return 0
	}
	return float32(inter.Area()) / float32(cellArea)
}

// CellBounds computes the bounds of grid cell (row, col) within a grid of
// rows x cols cells spanning gridBounds. Integer arithmetic guarantees
// adjacent cells share edges exactly: the right/bottom edge of cell (r, c)
// equals the left/top edge of cell (r, c+1)/(r+1, c), so column widths sum
// exactly to gridBounds.Width() and row heights sum exactly to
// gridBounds.Height().
func CellBounds(row, col, rows, cols int, gridBounds Rect) Rect {
	w := int64(gridBounds.Width())
	h := int64(gridBounds.Height())

	left := gridBounds.Left + int32(w*int64(col)/int64(cols))
	right := gridBounds.Left + int32(w*int64(col+1)/int64(cols))
	top := gridBounds.Top + int32(h*int64(row)/int64(rows))
	bottom := gridBounds.Top + int32(h*int64(row+1)/int64(rows))

	return Rect{Left: left, Top: top, Right: right, Bottom: bottom}
}

// CellAt returns the (row, col) of the cell containing point (x, y), per
// the tie-break rule: a point exactly on a shared boundary belongs to the
// cell to the right/below (half-open intervals on the right/bottom), which
// falls out naturally from CellBounds' half-open construction. Returns ok
// = false if the point lies outside gridBounds.
func CellAt(x, y int32, rows, cols int, gridBounds Rect) (row, col int, ok bool) {
	if !gridBounds.Contains(x, y) {
		return 0, 0, false
	}
	w := int64(gridBounds.Width())
	h := int64(gridBounds.Height())

	col = int(int64(x-gridBounds.Left) * int64(cols) / w)
	row = int(int64(y-gridBounds.Top) * int64(rows) / h)

	if col >= cols {
		col = cols - 1
	}
	if row >= rows {
		row = rows - 1
	}
	return row, col, true
}

// Cell is a (row, col) coordinate in a grid matrix.
type Cell struct {
	Row int
	Col int
}

// OccupiedCells returns the set of cells in a rows x cols grid spanning
// gridBounds whose coverage by window meets or exceeds threshold. Only
// cells whose bounding box could plausibly intersect the window are
// examined, pruning the search to the window's own bounding range of rows
// and columns.
func OccupiedCells(window Rect, rows, cols int, gridBounds Rect, threshold float32) []Cell {
	clipped := window.Intersect(gridBounds)
	if clipped.Empty() {
		return nil
	}

	minRow, minCol, _ := CellAt(clipped.Left, clipped.Top, rows, cols, gridBounds)
	// Bottom/right edges are exclusive; probe one pixel in so we don't
	// overshoot into the next cell when the window touches the grid edge.
	maxX := clipped.Right - 1
	maxY := clipped.Bottom - 1
	if maxX < clipped.Left {
		maxX = clipped.Left
	}
	if maxY < clipped.Top {
		maxY = clipped.Top
	}
	maxRow, maxCol, _ := CellAt(maxX, maxY, rows, cols, gridBounds)

	var out []Cell
	for r := minRow; r <= maxRow; r++ {
		for c := minCol; c <= maxCol; c++ {
			cellRect := CellBounds(r, c, rows, cols, gridBounds)
			if Coverage(window, cellRect) >= threshold {
				out = append(out, Cell{Row: r, Col: c})
			}
		}
	}
	return out
}
