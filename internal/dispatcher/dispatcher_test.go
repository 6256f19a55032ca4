package dispatcher

import (
	"testing"
	"time"

	"github.com/davehorner/e-grid/internal/animation"
	"github.com/davehorner/e-grid/internal/events"
	"github.com/davehorner/e-grid/internal/geometry"
	"github.com/davehorner/e-grid/internal/grid"
)

type fakeBackend struct {
	attrs map[grid.Handle]grid.RawAttributes
	fail  map[grid.Handle]bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{attrs: make(map[grid.Handle]grid.RawAttributes), fail: make(map[grid.Handle]bool)}
}

func (f *fakeBackend) QueryAttributes(h grid.Handle) (grid.RawAttributes, error) {
	if f.fail[h] {
		return grid.RawAttributes{}, errQueryFailed{}
	}
	a, ok := f.attrs[h]
	if !ok {
		return grid.RawAttributes{}, errQueryFailed{}
	}
	return a, nil
}

func (f *fakeBackend) Reposition(h grid.Handle, rect geometry.Rect) error { return nil }

type errQueryFailed struct{}

func (errQueryFailed) Error() string { return "query failed" }

type recordingPublisher struct {
	events     []Event
	heartbeats []uint64
}

func (r *recordingPublisher) PublishEvent(e Event)          { r.events = append(r.events, e) }
func (r *recordingPublisher) PublishDetails(grid.WindowInfo) {}
func (r *recordingPublisher) PublishGridState(grid.Snapshot) {}
func (r *recordingPublisher) PublishHeartbeat(seq uint64, shutdown bool) {
	r.heartbeats = append(r.heartbeats, seq)
}

func testMonitors() []grid.Monitor {
	b := geometry.Rect{Left: 0, Top: 0, Right: 1200, Bottom: 800}
	return []grid.Monitor{{ID: 0, Bounds: b, WorkArea: b, Width: 1200, Height: 800}}
}

func manageable(h grid.Handle, r geometry.Rect) grid.RawAttributes {
	return grid.RawAttributes{Handle: h, Rect: r, IsTopLevel: true, IsVisible: true, ClassName: "AppWindow"}
}

func newTestDispatcher() (*Dispatcher, *fakeBackend, *recordingPublisher, *grid.Tracker) {
	tr := grid.New(grid.DefaultConfig(), testMonitors())
	q := events.NewQueue(64)
	anim := animation.NewManager()
	backend := newFakeBackend()
	pub := &recordingPublisher{}
	d := New(DefaultConfig(), q, tr, anim, backend, pub, nil)
	return d, backend, pub, tr
}

func TestTickEmitsCreatedForNewWindow(t *testing.T) {
	d, backend, pub, tr := newTestDispatcher()
	r := geometry.Rect{Left: 0, Top: 0, Right: 100, Bottom: 100}
	backend.attrs[1] = manageable(1, r)

	d.queue.Push(events.Raw{Kind: events.Create, Handle: 1, Timestamp: time.Now()})
	d.Tick(time.Now())

	if len(pub.events) != 1 || pub.events[0].Kind != Created {
		t.Fatalf("events = %+v, want single Created", pub.events)
	}
	if _, ok := tr.Get(1); !ok {
		t.Fatalf("window not tracked after Created")
	}
}

func TestTickTreatsQueryFailureAsDestroy(t *testing.T) {
	d, backend, pub, tr := newTestDispatcher()
	r := geometry.Rect{Left: 0, Top: 0, Right: 100, Bottom: 100}
	backend.attrs[1] = manageable(1, r)
	d.queue.Push(events.Raw{Kind: events.Create, Handle: 1})
	d.Tick(time.Now())

	backend.fail[1] = true
	d.queue.Push(events.Raw{Kind: events.LocationChange, Handle: 1})
	d.Tick(time.Now())

	if _, ok := tr.Get(1); ok {
		t.Fatalf("window should have been removed after query failure")
	}
	last := pub.events[len(pub.events)-1]
	if last.Kind != Destroyed {
		t.Fatalf("last event = %v, want Destroyed", last.Kind)
	}
}

func TestFocusAlternation(t *testing.T) {
	d, backend, pub, _ := newTestDispatcher()
	for _, h := range []grid.Handle{1, 2, 3} {
		backend.attrs[h] = manageable(h, geometry.Rect{Right: 10, Bottom: 10})
		d.queue.Push(events.Raw{Kind: events.Create, Handle: h})
	}
	d.Tick(time.Now())
	pub.events = nil

	d.queue.Push(events.Raw{Kind: events.Foreground, Handle: 1})
	d.Tick(time.Now())
	d.queue.Push(events.Raw{Kind: events.Foreground, Handle: 2})
	d.Tick(time.Now())
	d.queue.Push(events.Raw{Kind: events.Foreground, Handle: 3})
	d.Tick(time.Now())

	var kinds []Kind
	for _, e := range pub.events {
		kinds = append(kinds, e.Kind)
	}
	want := []Kind{Focused, Defocused, Focused, Defocused, Focused}
	if len(kinds) != len(want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("kinds = %v, want %v", kinds, want)
		}
	}
}

func TestContinuousMoveWhileDragging(t *testing.T) {
	d, backend, pub, _ := newTestDispatcher()
	backend.attrs[1] = manageable(1, geometry.Rect{Right: 10, Bottom: 10})
	d.queue.Push(events.Raw{Kind: events.Create, Handle: 1})
	d.Tick(time.Now())
	pub.events = nil

	d.queue.Push(events.Raw{Kind: events.MoveStart, Handle: 1})
	d.Tick(time.Now())

	backend.attrs[1] = manageable(1, geometry.Rect{Left: 5, Top: 5, Right: 15, Bottom: 15})
	d.queue.Push(events.Raw{Kind: events.LocationChange, Handle: 1})
	d.Tick(time.Now())

	foundContinuous := false
	for _, e := range pub.events {
		if e.Kind == ContinuousMove {
			foundContinuous = true
		}
	}
	if !foundContinuous {
		t.Fatalf("events = %+v, want a ContinuousMove while MoveStart is active", pub.events)
	}
}

func TestHeartbeatEmittedOncePerPeriod(t *testing.T) {
	d, _, pub, _ := newTestDispatcher()
	d.cfg.HeartbeatPeriod = 10 * time.Millisecond
	now := time.Now()
	d.Tick(now)
	d.Tick(now.Add(time.Millisecond))
	if len(pub.heartbeats) != 1 {
		t.Fatalf("heartbeats = %v, want exactly 1 within the period", pub.heartbeats)
	}
	d.Tick(now.Add(20 * time.Millisecond))
	if len(pub.heartbeats) != 2 {
		t.Fatalf("heartbeats = %v, want 2 after period elapses", pub.heartbeats)
	}
}

func TestDestroySupersedesPriorAnimation(t *testing.T) {
	d, backend, _, _ := newTestDispatcher()
	backend.attrs[1] = manageable(1, geometry.Rect{Right: 10, Bottom: 10})
	d.queue.Push(events.Raw{Kind: events.Create, Handle: 1})
	d.Tick(time.Now())

	d.anim.Start(1, geometry.Rect{}, geometry.Rect{Right: 100, Bottom: 100}, time.Second, animation.Linear, time.Now())
	d.queue.Push(events.Raw{Kind: events.Destroy, Handle: 1})
	d.Tick(time.Now())

	if d.anim.Active(1) {
		t.Fatalf("destroyed handle's animation should have been cancelled")
	}
}
