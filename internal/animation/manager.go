package animation

import (
	"sync"
	"time"

	"github.com/davehorner/e-grid/internal/geometry"
	"github.com/davehorner/e-grid/internal/grid"
)

// Record is an active animation, as described in spec §3/§4.5. It exists
// only while in flight; the dispatcher retires it on completion.
type Record struct {
	Handle    grid.Handle
	Start     geometry.Rect
	Target    geometry.Rect
	StartTime time.Time
	Duration  time.Duration
	Easing    Easing
}

// done reports whether the record has reached or passed its duration as of
// now.
func (r Record) done(now time.Time) bool {
	return now.Sub(r.StartTime) >= r.Duration
}

// Progress returns the current interpolated rectangle for the record at
// now, and whether the animation has completed. Components are rounded to
// integers before being handed to the caller for dispatch, per spec §4.5.
func (r Record) Progress(now time.Time) (geometry.Rect, bool) {
	if r.Duration <= 0 {
		return r.Target, true
	}
	elapsed := now.Sub(r.StartTime)
	if elapsed <= 0 {
		return r.Start, false
	}
	if elapsed >= r.Duration {
		return r.Target, true
	}

	t := float64(elapsed) / float64(r.Duration)
	e := r.Easing.Apply(t)

	lerp := func(a, b int32) int32 {
		return a + int32(round(float64(b-a)*e))
	}
	rect := geometry.Rect{
		Left:   lerp(r.Start.Left, r.Target.Left),
		Top:    lerp(r.Start.Top, r.Target.Top),
		Right:  lerp(r.Start.Right, r.Target.Right),
		Bottom: lerp(r.Start.Bottom, r.Target.Bottom),
	}
	return rect, false
}

func round(f float64) float64 {
	if f < 0 {
		return -round(-f)
	}
	return float64(int64(f + 0.5))
}

// Reposition is the side effect the Manager drives: apply a window's
// rectangle at the OS level. internal/winapi supplies the real
// implementation; tests supply a recording stub, mirroring the teacher's
// platform.Backend interface-injection style.
type Reposition func(h grid.Handle, rect geometry.Rect) error

// Manager holds active animations in a concurrent map keyed by handle, as
// required by spec §4.5 ("Active animations are stored in a concurrent
// map keyed by handle"). Invariant 3: starting a new animation for a
// handle supersedes any prior one outright.
type Manager struct {
	mu     sync.Mutex
	active map[grid.Handle]Record
}

// NewManager constructs an empty animation manager.
func NewManager() *Manager {
	return &Manager{active: make(map[grid.Handle]Record)}
}

// Start begins (or replaces) the animation for handle, capturing start from
// the tracker's current rectangle for that window.
func (m *Manager) Start(h grid.Handle, start, target geometry.Rect, duration time.Duration, easing Easing, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active[h] = Record{Handle: h, Start: start, Target: target, StartTime: now, Duration: duration, Easing: easing}
}

// Cancel removes any active animation for handle, reporting whether one
// existed.
func (m *Manager) Cancel(h grid.Handle) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.active[h]; !ok {
		return false
	}
	delete(m.active, h)
	return true
}

// Active reports whether handle currently has an animation in flight.
func (m *Manager) Active(h grid.Handle) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.active[h]
	return ok
}

// Len returns the number of active animations.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

// Advance runs every active animation one dispatcher tick forward: it
// computes the interpolated rectangle, invokes reposition, and retires
// animations that fail (spec §4.4: "animation reposition failures
// terminate that animation") or complete. It returns the handles retired
// this call, whether completed or terminated by a reposition failure, in
// no particular order.
func (m *Manager) Advance(now time.Time, reposition Reposition) []grid.Handle {
	m.mu.Lock()
	snapshot := make([]Record, 0, len(m.active))
	for _, r := range m.active {
		snapshot = append(snapshot, r)
	}
	m.mu.Unlock()

	var completed []grid.Handle
	for _, r := range snapshot {
		rect, done := r.Progress(now)
		if err := reposition(r.Handle, rect); err != nil {
			m.Cancel(r.Handle)
			completed = append(completed, r.Handle)
			continue
		}
		if done {
			m.mu.Lock()
			if cur, ok := m.active[r.Handle]; ok && cur.StartTime.Equal(r.StartTime) {
				delete(m.active, r.Handle)
			}
			m.mu.Unlock()
			completed = append(completed, r.Handle)
		}
	}
	return completed
}
