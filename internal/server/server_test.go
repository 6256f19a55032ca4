package server

import (
	"testing"
	"time"

	"github.com/davehorner/e-grid/internal/config"
	"github.com/davehorner/e-grid/internal/dispatcher"
	"github.com/davehorner/e-grid/internal/events"
	"github.com/davehorner/e-grid/internal/geometry"
	"github.com/davehorner/e-grid/internal/grid"
	"github.com/davehorner/e-grid/internal/ipc"
)

type fakeFocusBackend struct {
	attrs     map[grid.Handle]grid.RawAttributes
	focused   []grid.Handle
	repositioned map[grid.Handle]geometry.Rect
}

func newFakeFocusBackend() *fakeFocusBackend {
	return &fakeFocusBackend{attrs: make(map[grid.Handle]grid.RawAttributes), repositioned: make(map[grid.Handle]geometry.Rect)}
}

func (f *fakeFocusBackend) QueryAttributes(h grid.Handle) (grid.RawAttributes, error) {
	a, ok := f.attrs[h]
	if !ok {
		return grid.RawAttributes{}, errNotFound{}
	}
	return a, nil
}

func (f *fakeFocusBackend) Reposition(h grid.Handle, rect geometry.Rect) error {
	f.repositioned[h] = rect
	return nil
}

func (f *fakeFocusBackend) Focus(h grid.Handle) error {
	f.focused = append(f.focused, h)
	return nil
}

type errNotFound struct{}

func (errNotFound) Error() string { return "not found" }

func testMonitors() []grid.Monitor {
	bounds := geometry.Rect{Left: 0, Top: 0, Right: 1920, Bottom: 1080}
	return []grid.Monitor{{ID: 1, Bounds: bounds, WorkArea: bounds, Width: 1920, Height: 1080}}
}

func manageableAttrs(h grid.Handle, r geometry.Rect, title string) grid.RawAttributes {
	return grid.RawAttributes{
		Handle: h, Rect: r, Title: title, ClassName: "AppWindow",
		ProcessID: uint32(h) + 100, IsTopLevel: true, IsVisible: true,
	}
}

func newTestServer(t *testing.T) (*Server, *fakeFocusBackend, *events.Queue) {
	t.Helper()
	backend := newFakeFocusBackend()
	queue := events.NewQueue(64)
	srv := New(config.Default(), testMonitors(), queue, backend, nil)
	return srv, backend, queue
}

func TestHandleGetWindowListRespondsOnce(t *testing.T) {
	srv, backend, _ := newTestServer(t)
	h := grid.Handle(1)
	backend.attrs[h] = manageableAttrs(h, geometry.Rect{Left: 0, Top: 0, Right: 100, Bottom: 100}, "A")
	srv.Tracker().AddOrUpdate(h, backend.attrs[h].Rect, "A", grid.Flags{}, backend.attrs[h])

	sub, err := srv.Bus().Responses.Subscribe(4)
	if err != nil {
		t.Fatalf("subscribe responses: %v", err)
	}

	srv.Handle(dispatcher.Command{RequestID: 7, Type: dispatcher.GetWindowList})

	data, ok := sub.TryRecv()
	if !ok {
		t.Fatalf("expected one response")
	}
	var resp ipc.WindowResponse
	if err := ipc.Decode(data, &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.RequestID != 7 || resp.ResponseType != ipc.RespData {
		t.Fatalf("response = %+v, want RequestID=7 RespData", resp)
	}
}

func TestHandleAssignToVirtualCellStartsAnimation(t *testing.T) {
	srv, backend, _ := newTestServer(t)
	h := grid.Handle(1)
	attrs := manageableAttrs(h, geometry.Rect{Left: 0, Top: 0, Right: 100, Bottom: 100}, "A")
	backend.attrs[h] = attrs
	srv.Tracker().AddOrUpdate(h, attrs.Rect, "A", grid.Flags{}, attrs)

	sub, _ := srv.Bus().Responses.Subscribe(4)
	srv.Handle(dispatcher.Command{RequestID: 1, Type: dispatcher.AssignToVirtualCell, Handle: uint64(h), TargetRow: 0, TargetCol: 0})

	if !srv.anim.Active(h) {
		t.Fatalf("expected an active animation for handle after assign")
	}
	data, ok := sub.TryRecv()
	if !ok {
		t.Fatalf("expected an ack response")
	}
	var resp ipc.WindowResponse
	ipc.Decode(data, &resp)
	if resp.ResponseType != ipc.RespAck {
		t.Fatalf("response type = %d, want RespAck", resp.ResponseType)
	}
}

func TestHandleAssignUnknownHandleRespondsError(t *testing.T) {
	srv, _, _ := newTestServer(t)
	sub, _ := srv.Bus().Responses.Subscribe(4)
	srv.Handle(dispatcher.Command{RequestID: 2, Type: dispatcher.AssignToVirtualCell, Handle: 999})

	data, ok := sub.TryRecv()
	if !ok {
		t.Fatalf("expected error response")
	}
	var resp ipc.WindowResponse
	ipc.Decode(data, &resp)
	if resp.ResponseType != ipc.RespError {
		t.Fatalf("response type = %d, want RespError", resp.ResponseType)
	}
}

func TestHandleFocusWindowCallsBackend(t *testing.T) {
	srv, backend, _ := newTestServer(t)
	h := grid.Handle(42)
	srv.Handle(dispatcher.Command{RequestID: 3, Type: dispatcher.FocusWindow, Handle: uint64(h)})

	if len(backend.focused) != 1 || backend.focused[0] != h {
		t.Fatalf("focused = %v, want [%d]", backend.focused, h)
	}
}

func TestSaveAndApplyLayoutByNumericID(t *testing.T) {
	srv, backend, _ := newTestServer(t)
	h := grid.Handle(1)
	attrs := manageableAttrs(h, geometry.Rect{Left: 0, Top: 0, Right: 100, Bottom: 100}, "A")
	backend.attrs[h] = attrs
	srv.Tracker().AddOrUpdate(h, attrs.Rect, "A", grid.Flags{}, attrs)

	sub, _ := srv.Bus().Responses.Subscribe(4)
	srv.Handle(dispatcher.Command{RequestID: 10, Type: dispatcher.SaveLayout, LayoutID: 5})
	sub.TryRecv() // drain the save response

	// Clear any animation for the window, then apply the saved layout and
	// expect the window it matches by identity to be animated.
	srv.anim.Cancel(h)
	srv.Handle(dispatcher.Command{RequestID: 11, Type: dispatcher.ApplyLayout, LayoutID: 5})

	if !srv.anim.Active(h) {
		t.Fatalf("expected apply_layout to animate the matched window")
	}
}

func TestApplyGridPresetAnimatesManageableWindows(t *testing.T) {
	srv, backend, _ := newTestServer(t)
	for i := 1; i <= 4; i++ {
		h := grid.Handle(i)
		attrs := manageableAttrs(h, geometry.Rect{Left: 0, Top: 0, Right: 50, Bottom: 50}, "W")
		backend.attrs[h] = attrs
		srv.Tracker().AddOrUpdate(h, attrs.Rect, "W", grid.Flags{}, attrs)
	}

	srv.Handle(dispatcher.Command{RequestID: 20, Type: dispatcher.ApplyLayout, LayoutID: presetLayoutIDBase})

	for i := 1; i <= 4; i++ {
		if !srv.anim.Active(grid.Handle(i)) {
			t.Fatalf("expected preset apply to animate handle %d", i)
		}
	}
}

func TestPublishHeartbeatEmitsOnBus(t *testing.T) {
	srv, _, _ := newTestServer(t)
	sub, _ := srv.Bus().Heartbeat.Subscribe(4)

	srv.PublishHeartbeat(1, false)

	data, ok := sub.TryRecv()
	if !ok {
		t.Fatalf("expected a heartbeat message")
	}
	var hb ipc.Heartbeat
	if err := ipc.Decode(data, &hb); err != nil {
		t.Fatalf("decode heartbeat: %v", err)
	}
	if hb.Sequence != 1 || hb.Flag != 0 {
		t.Fatalf("heartbeat = %+v, want seq=1 flag=0", hb)
	}
}

func TestTickEndToEndPublishesCreatedEvent(t *testing.T) {
	srv, backend, queue := newTestServer(t)
	h := grid.Handle(9)
	backend.attrs[h] = manageableAttrs(h, geometry.Rect{Left: 0, Top: 0, Right: 100, Bottom: 100}, "New")
	queue.Push(events.Raw{Kind: events.Create, Handle: h, Timestamp: time.Now()})

	sub, _ := srv.Bus().Events.Subscribe(4)
	srv.Tick(time.Now())

	data, ok := sub.TryRecv()
	if !ok {
		t.Fatalf("expected a window event published from Tick")
	}
	var we ipc.WindowEvent
	if err := ipc.Decode(data, &we); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if we.EventType != ipc.EventCreated || we.Hwnd != uint64(h) {
		t.Fatalf("event = %+v, want Created for handle %d", we, h)
	}
}
