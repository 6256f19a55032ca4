// Package grid holds the E-Grid data model: window records, monitor
// records, grid matrices, and the WindowTracker that ties them together.
// It owns no OS handles and performs no I/O; everything here is pure state
// mutated by the dispatcher (internal/dispatcher) and read by the IPC
// fabric (internal/ipc) and the CLI.
package grid

import "github.com/davehorner/e-grid/internal/geometry"

// Handle is the stable 64-bit identifier for a tracked window. On Windows
// this is the HWND value widened to 64 bits.
type Handle uint64

// MonitorID is a small, session-stable integer identifying a physical
// monitor.
type MonitorID uint32

// MonitorCell names a cell on one monitor's grid.
type MonitorCell struct {
	Monitor MonitorID
	Row     int
	Col     int
}

// Flags captures the z-order hints and window state bits carried in
// WindowDetails.flags on the wire (see spec §6).
type Flags struct {
	Minimized  bool
	Maximized  bool
	Foreground bool
	Topmost    bool
}

// Bits packs Flags into the wire's bit layout: bit0 minimized, bit1
// maximized, bit2 foreground, bit3 topmost.
func (f Flags) Bits() uint32 {
	var b uint32
	if f.Minimized {
		b |= 1 << 0
	}
	if f.Maximized {
		b |= 1 << 1
	}
	if f.Foreground {
		b |= 1 << 2
	}
	if f.Topmost {
		b |= 1 << 3
	}
	return b
}

// FlagsFromBits unpacks the wire bit layout back into Flags.
func FlagsFromBits(b uint32) Flags {
	return Flags{
		Minimized:  b&(1<<0) != 0,
		Maximized:  b&(1<<1) != 0,
		Foreground: b&(1<<2) != 0,
		Topmost:    b&(1<<3) != 0,
	}
}

// WindowInfo is the per-window record described in spec §3.
type WindowInfo struct {
	Handle       Handle
	Rect         geometry.Rect
	OriginalRect geometry.Rect
	Title        string
	VirtualCells []geometry.Cell
	MonitorCells []MonitorCell
	Flags        Flags
	Manageable   bool
	ProcessID    uint32
}

// Monitor is the per-monitor record described in spec §3. Monitor records
// are immutable for the lifetime of a server run (Invariant 5); a monitor
// set change restarts the tracker rather than mutating existing records.
type Monitor struct {
	ID       MonitorID
	Bounds   geometry.Rect // full display rectangle, virtual-desktop coords
	WorkArea geometry.Rect // excludes taskbars/docks; per-monitor grids use this
	Width    int32
	Height   int32
}

// CellState is the occupancy state of one grid cell.
type CellState struct {
	Occupied bool
	Window   Handle
	OffScreen bool
}

// Matrix is a rows x cols array of CellState.
type Matrix struct {
	Rows  int
	Cols  int
	Cells []CellState // row-major, len == Rows*Cols
}

// NewMatrix allocates an empty (all-Empty) matrix.
func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{Rows: rows, Cols: cols, Cells: make([]CellState, rows*cols)}
}

// At returns the cell state at (row, col). Out-of-range coordinates return
// the zero CellState (Empty).
func (m *Matrix) At(row, col int) CellState {
	if row < 0 || row >= m.Rows || col < 0 || col >= m.Cols {
		return CellState{}
	}
	return m.Cells[row*m.Cols+col]
}

// Set writes the cell state at (row, col). Out-of-range coordinates are a
// no-op.
func (m *Matrix) Set(row, col int, s CellState) {
	if row < 0 || row >= m.Rows || col < 0 || col >= m.Cols {
		return
	}
	m.Cells[row*m.Cols+col] = s
}

// Clone returns a deep copy, used by Snapshot so callers never observe a
// matrix the dispatcher is still mutating.
func (m *Matrix) Clone() *Matrix {
	if m == nil {
		return nil
	}
	out := &Matrix{Rows: m.Rows, Cols: m.Cols, Cells: make([]CellState, len(m.Cells))}
	copy(out.Cells, m.Cells)
	return out
}

// Equal reports whether two matrices have identical dimensions and cell
// contents. Used by tests asserting GetGridState idempotence (spec §8).
func (m *Matrix) Equal(o *Matrix) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.Rows != o.Rows || m.Cols != o.Cols {
		return false
	}
	for i := range m.Cells {
		if m.Cells[i] != o.Cells[i] {
			return false
		}
	}
	return true
}
