package animation

import (
	"sync"
	"time"

	"github.com/davehorner/e-grid/internal/geometry"
	"github.com/davehorner/e-grid/internal/grid"
)

// Identity is the replay key for a saved-layout entry: title+process hash,
// not the volatile OS handle (spec §3: "Window identity for replay uses
// title+process hash, not handle").
type Identity struct {
	TitleHash   uint64
	ProcessHash uint64
}

// Entry pairs a window identity with its target virtual rectangle at save
// time.
type Entry struct {
	Identity Identity
	Target   geometry.Rect
}

// SavedLayout is a named, ordered set of window placements (spec §3).
type SavedLayout struct {
	Name    string
	Entries []Entry
}

// LayoutStore holds named saved layouts for the server's lifetime (spec
// §4.5: "Saved layouts survive arbitrary window lifecycle changes").
// Guarded by a plain mutex rather than sharded like WindowMap: layouts are
// created/applied far less often than window events, so contention is not
// a concern here.
type LayoutStore struct {
	mu      sync.RWMutex
	layouts map[string]SavedLayout
}

// NewLayoutStore constructs an empty store.
func NewLayoutStore() *LayoutStore {
	return &LayoutStore{layouts: make(map[string]SavedLayout)}
}

// IdentityFunc derives a window's replay identity from its live record.
type IdentityFunc func(grid.WindowInfo) Identity

// Save snapshots the current rectangles of the given handles under name,
// overwriting any prior layout of the same name.
func (s *LayoutStore) Save(name string, handles []grid.Handle, lookup func(grid.Handle) (grid.WindowInfo, bool), identity IdentityFunc) SavedLayout {
	entries := make([]Entry, 0, len(handles))
	for _, h := range handles {
		w, ok := lookup(h)
		if !ok {
			continue
		}
		entries = append(entries, Entry{Identity: identity(w), Target: w.Rect})
	}
	out := SavedLayout{Name: name, Entries: entries}

	s.mu.Lock()
	s.layouts[name] = out
	s.mu.Unlock()
	return out
}

// Get returns the named layout, if present.
func (s *LayoutStore) Get(name string) (SavedLayout, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	// Returned by value (owned copy), not a borrowed reference: spec §9
	// flags "saved-layout lookups returning borrowed references" as a
	// pattern to re-architect away from.
	l, ok := s.layouts[name]
	return l, ok
}

// Delete removes the named layout, reporting whether it existed.
func (s *LayoutStore) Delete(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.layouts[name]; !ok {
		return false
	}
	delete(s.layouts, name)
	return true
}

// Names lists all saved layout names.
func (s *LayoutStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.layouts))
	for n := range s.layouts {
		out = append(out, n)
	}
	return out
}

// ApplyResult reports the outcome of applying a saved layout: which
// handles were animated and which identities had no matching live window
// (spec §4.5: "skipped on apply with a per-window warning in the
// response").
type ApplyResult struct {
	Animated []grid.Handle
	Warnings []string
}

// Apply resolves a saved layout's entries against the live window set via
// resolve, and starts an animation for each resolved window through mgr.
// Unresolved entries produce a warning rather than failing the whole
// apply.
func Apply(l SavedLayout, resolve func(Identity) (grid.Handle, geometry.Rect, bool), mgr *Manager, duration time.Duration, easing Easing, now time.Time) ApplyResult {
	var res ApplyResult
	for _, e := range l.Entries {
		h, startRect, ok := resolve(e.Identity)
		if !ok {
			res.Warnings = append(res.Warnings, "no live window for saved identity in layout "+l.Name)
			continue
		}
		mgr.Start(h, startRect, e.Target, duration, easing, now)
		res.Animated = append(res.Animated, h)
	}
	return res
}
