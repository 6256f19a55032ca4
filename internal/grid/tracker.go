package grid

import (
	"sync"

	"github.com/davehorner/e-grid/internal/geometry"
)

// Config holds the grid dimensions and coverage threshold negotiated at
// startup (spec §6).
type Config struct {
	RowsPerMonitor int
	ColsPerMonitor int
	Threshold      float32
}

// DefaultConfig matches the defaults in spec §3/§6: 8x12 per monitor,
// coverage threshold 0.30.
func DefaultConfig() Config {
	return Config{RowsPerMonitor: 8, ColsPerMonitor: 12, Threshold: 0.30}
}

// Tracker is the single source of truth for the window set and the grids
// derived from it (spec §4.2, component C2). The window map supports
// concurrent reads and writes from any goroutine; Monitors and the grid
// matrices are owned by the dispatcher goroutine and must only be mutated
// by calls to RebuildGrids, which the dispatcher alone invokes.
type Tracker struct {
	cfg Config

	windows *WindowMap

	mu        sync.RWMutex // guards monitors + grids below
	monitors  []Monitor
	virtual   *Matrix
	perMon    map[MonitorID]*Matrix
	virtualBounds geometry.Rect
}

// New constructs a Tracker for a fixed monitor layout. Monitor records are
// immutable for the session (Invariant 5); reconfiguring monitors requires
// constructing a new Tracker (and, at the server level, a restart).
func New(cfg Config, monitors []Monitor) *Tracker {
	t := &Tracker{
		cfg:      cfg,
		windows:  NewWindowMap(),
		monitors: append([]Monitor(nil), monitors...),
		perMon:   make(map[MonitorID]*Matrix),
	}
	for _, m := range monitors {
		t.virtualBounds = t.virtualBounds.Union(m.Bounds)
	}
	vcols := cfg.ColsPerMonitor * len(monitors)
	if vcols == 0 {
		vcols = cfg.ColsPerMonitor
	}
	t.virtual = NewMatrix(cfg.RowsPerMonitor, vcols)
	for _, m := range monitors {
		t.perMon[m.ID] = NewMatrix(cfg.RowsPerMonitor, cfg.ColsPerMonitor)
	}
	return t
}

// Monitors returns a copy of the immutable monitor list.
func (t *Tracker) Monitors() []Monitor {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Monitor(nil), t.monitors...)
}

// VirtualBounds returns the union of all monitor bounds.
func (t *Tracker) VirtualBounds() geometry.Rect {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.virtualBounds
}

// monitorColOffset returns the column offset of monitor index i within the
// virtual grid, under the default layout where virtual columns scale
// linearly with monitor count.
func (t *Tracker) monitorColOffset(id MonitorID) (int, bool) {
	for i, m := range t.monitors {
		if m.ID == id {
			return i * t.cfg.ColsPerMonitor, true
		}
	}
	return 0, false
}

// AddOrUpdate inserts a new window record or updates an existing one,
// applying the manageability filter first. Per Invariant 4, OriginalRect is
// captured only on first observation.
func (t *Tracker) AddOrUpdate(h Handle, rect geometry.Rect, title string, flags Flags, raw RawAttributes) Change {
	ok, reason := IsManageable(raw)
	if !ok {
		return Change{Kind: ChangeRejected, RejectReason: reason}
	}

	existing, had := t.windows.Get(h)
	if !had {
		t.windows.Store(h, WindowInfo{
			Handle:       h,
			Rect:         rect,
			OriginalRect: rect,
			Title:        title,
			Flags:        flags,
			Manageable:   true,
			ProcessID:    raw.ProcessID,
		})
		return Change{Kind: ChangeCreated, New: rect}
	}

	if existing.Rect == rect && existing.Title == title && existing.Flags == flags {
		return Change{Kind: ChangeUnchanged, New: rect}
	}

	old := existing.Rect
	t.windows.Mutate(h, func(w *WindowInfo) {
		w.Rect = rect
		w.Title = title
		w.Flags = flags
	})
	return Change{Kind: ChangeMoved, Old: old, New: rect}
}

// Remove deletes the record for handle, reporting whether it existed.
func (t *Tracker) Remove(h Handle) bool {
	return t.windows.Delete(h)
}

// Get returns a copy of the window record, if tracked.
func (t *Tracker) Get(h Handle) (WindowInfo, bool) {
	return t.windows.Get(h)
}

// ForEachWindow iterates tracked windows without holding a lock that could
// block a concurrent writer for more than one shard at a time (spec
// §4.2).
func (t *Tracker) ForEachWindow(fn func(WindowInfo)) {
	t.windows.ForEach(fn)
}

// Count returns the number of tracked windows.
func (t *Tracker) Count() int {
	return t.windows.Len()
}

// RebuildGrids recomputes the virtual and per-monitor matrices from the
// current window map, in O(|windows| * candidate cells) thanks to
// geometry.OccupiedCells' bounding-box pruning (spec §4.2). Must only be
// called from the dispatcher goroutine; it also recomputes each window's
// VirtualCells/MonitorCells fields to satisfy Invariant 2.
func (t *Tracker) RebuildGrids() {
	t.mu.Lock()
	defer t.mu.Unlock()

	vcols := t.virtual.Cols
	newVirtual := NewMatrix(t.cfg.RowsPerMonitor, vcols)
	newPerMon := make(map[MonitorID]*Matrix, len(t.monitors))
	for _, m := range t.monitors {
		newPerMon[m.ID] = NewMatrix(t.cfg.RowsPerMonitor, t.cfg.ColsPerMonitor)
	}

	t.windows.ForEach(func(w WindowInfo) {
		if !w.Manageable {
			return
		}

		vCells := geometry.OccupiedCells(w.Rect, t.cfg.RowsPerMonitor, vcols, t.virtualBounds, t.cfg.Threshold)
		for _, c := range vCells {
			newVirtual.Set(c.Row, c.Col, CellState{Occupied: true, Window: w.Handle})
		}

		var monCells []MonitorCell
		for _, m := range t.monitors {
			cells := geometry.OccupiedCells(w.Rect, t.cfg.RowsPerMonitor, t.cfg.ColsPerMonitor, m.WorkArea, t.cfg.Threshold)
			for _, c := range cells {
				newPerMon[m.ID].Set(c.Row, c.Col, CellState{Occupied: true, Window: w.Handle})
				monCells = append(monCells, MonitorCell{Monitor: m.ID, Row: c.Row, Col: c.Col})
			}
		}

		t.windows.Mutate(w.Handle, func(info *WindowInfo) {
			info.VirtualCells = vCells
			info.MonitorCells = monCells
		})
	})

	t.virtual = newVirtual
	t.perMon = newPerMon
}

// VirtualGrid returns a consistent copy of the virtual grid matrix.
func (t *Tracker) VirtualGrid() *Matrix {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.virtual.Clone()
}

// MonitorGrid returns a consistent copy of one monitor's grid matrix.
func (t *Tracker) MonitorGrid(id MonitorID) *Matrix {
	t.mu.RLock()
	defer t.mu.RUnlock()
	m, ok := t.perMon[id]
	if !ok {
		return nil
	}
	return m.Clone()
}

// Snapshot is a consistent, copyable view of the tracker's state for
// transmission over IPC or for display (spec §4.2).
type Snapshot struct {
	Windows  map[Handle]WindowInfo
	Monitors []Monitor
	Virtual  *Matrix
	PerMon   map[MonitorID]*Matrix
}

// Snapshot returns a point-in-time copy of the window map and grids.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	perMon := make(map[MonitorID]*Matrix, len(t.perMon))
	for id, m := range t.perMon {
		perMon[id] = m.Clone()
	}

	return Snapshot{
		Windows:  t.windows.Snapshot(),
		Monitors: append([]Monitor(nil), t.monitors...),
		Virtual:  t.virtual.Clone(),
		PerMon:   perMon,
	}
}

// Config returns the tracker's grid configuration.
func (t *Tracker) Config() Config { return t.cfg }
