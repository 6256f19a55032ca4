package client

import (
	"sync"

	"github.com/davehorner/e-grid/internal/ipc"
)

// WindowEventFunc receives a decoded GRID_EVENTS message.
type WindowEventFunc func(ipc.WindowEvent)

// FocusEventFunc receives a decoded GRID_FOCUS_EVENTS message.
type FocusEventFunc func(ipc.WindowFocusEvent)

// HeartbeatFunc receives a decoded GRID_HEARTBEAT message.
type HeartbeatFunc func(ipc.Heartbeat)

// callbackSet holds every registered handler, keyed by the granularity the
// spec's callback surface asks for: a catch-all window-event handler plus
// one per lifecycle sub-kind (move/resize start/stop/continuous), mirroring
// spec.md's on_window_event / on_move_start / on_move / ... enumeration.
type callbackSet struct {
	mu sync.Mutex

	windowEvent []WindowEventFunc
	focusEvent  []FocusEventFunc
	heartbeat   []HeartbeatFunc

	moveStart, moveStop, move       []WindowEventFunc
	resizeStart, resizeStop, resize []WindowEventFunc
}

func (c *callbackSet) addWindowEvent(f WindowEventFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.windowEvent = append(c.windowEvent, f)
}

func (c *callbackSet) addFocusEvent(f FocusEventFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.focusEvent = append(c.focusEvent, f)
}

func (c *callbackSet) addHeartbeat(f HeartbeatFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.heartbeat = append(c.heartbeat, f)
}

func (c *callbackSet) addMoveStart(f WindowEventFunc)   { c.append(&c.moveStart, f) }
func (c *callbackSet) addMoveStop(f WindowEventFunc)    { c.append(&c.moveStop, f) }
func (c *callbackSet) addMove(f WindowEventFunc)        { c.append(&c.move, f) }
func (c *callbackSet) addResizeStart(f WindowEventFunc) { c.append(&c.resizeStart, f) }
func (c *callbackSet) addResizeStop(f WindowEventFunc)  { c.append(&c.resizeStop, f) }
func (c *callbackSet) addResize(f WindowEventFunc)      { c.append(&c.resize, f) }

func (c *callbackSet) append(slice *[]WindowEventFunc, f WindowEventFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	*slice = append(*slice, f)
}

// dispatchWindowEvent fans e out to the catch-all handlers and, by
// EventType, to the matching sub-kind handlers.
func (c *callbackSet) dispatchWindowEvent(e ipc.WindowEvent) {
	c.mu.Lock()
	all := append([]WindowEventFunc(nil), c.windowEvent...)
	var sub []WindowEventFunc
	switch e.EventType {
	case ipc.EventMoveStart:
		sub = c.moveStart
	case ipc.EventMoveStop:
		sub = c.moveStop
	case ipc.EventContinuousMove:
		sub = c.move
	case ipc.EventResizeStart:
		sub = c.resizeStart
	case ipc.EventResizeStop:
		sub = c.resizeStop
	case ipc.EventContinuousResize:
		sub = c.resize
	}
	sub = append([]WindowEventFunc(nil), sub...)
	c.mu.Unlock()

	for _, f := range all {
		f(e)
	}
	for _, f := range sub {
		f(e)
	}
}

func (c *callbackSet) dispatchFocusEvent(e ipc.WindowFocusEvent) {
	c.mu.Lock()
	handlers := append([]FocusEventFunc(nil), c.focusEvent...)
	c.mu.Unlock()
	for _, f := range handlers {
		f(e)
	}
}

func (c *callbackSet) dispatchHeartbeat(hb ipc.Heartbeat) {
	c.mu.Lock()
	handlers := append([]HeartbeatFunc(nil), c.heartbeat...)
	c.mu.Unlock()
	for _, f := range handlers {
		f(hb)
	}
}

// OnWindowEvent registers f for every GRID_EVENTS message, regardless of
// sub-kind.
func (c *Client) OnWindowEvent(f WindowEventFunc) { c.cb.addWindowEvent(f) }

// OnFocusEvent registers f for every GRID_FOCUS_EVENTS message.
func (c *Client) OnFocusEvent(f FocusEventFunc) { c.cb.addFocusEvent(f) }

// OnHeartbeat registers f for every GRID_HEARTBEAT message.
func (c *Client) OnHeartbeat(f HeartbeatFunc) { c.cb.addHeartbeat(f) }

// OnMoveStart registers f for move-start events only.
func (c *Client) OnMoveStart(f WindowEventFunc) { c.cb.addMoveStart(f) }

// OnMoveStop registers f for move-stop events only.
func (c *Client) OnMoveStop(f WindowEventFunc) { c.cb.addMoveStop(f) }

// OnMove registers f for continuous-move events only.
func (c *Client) OnMove(f WindowEventFunc) { c.cb.addMove(f) }

// OnResizeStart registers f for resize-start events only.
func (c *Client) OnResizeStart(f WindowEventFunc) { c.cb.addResizeStart(f) }

// OnResizeStop registers f for resize-stop events only.
func (c *Client) OnResizeStop(f WindowEventFunc) { c.cb.addResizeStop(f) }

// OnResize registers f for continuous-resize events only.
func (c *Client) OnResize(f WindowEventFunc) { c.cb.addResize(f) }
