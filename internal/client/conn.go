// Package client implements the client library (spec component C8): a
// process-agnostic connection to the eight IPC services, typed command
// wrappers with request/response correlation, and a background monitor
// goroutine that detects a lost server and reconnects.
package client

import (
	"context"
	"fmt"

	"github.com/davehorner/e-grid/internal/ipc"
)

// Receiver is one subscribed service's inbox, abstracting over the
// in-process ipc.Subscriber (tests, same-process tools) and the
// shared-memory ipcshm.Cursor (a real cross-process deployment) behind
// the same polling shape the monitor goroutine drives.
type Receiver interface {
	TryRecv() ([]byte, bool)
	Close()
}

// Conn abstracts the transport a Client rides on. internal/ipc's Bus
// (same-process) and internal/ipcshm's Transport (cross-process, Windows
// only) both have a natural Conn implementation; tests use BusConn
// directly over an in-process *ipc.Bus.
type Conn interface {
	Subscribe(ctx context.Context, service string, inbox int) (Receiver, error)
	Publish(service string, msg []byte) error
}

// BusConn adapts an in-process *ipc.Bus to Conn — the shape a server and
// its CLI/monitor tooling share when running in the same process, and
// what every client-library test in this package rides on.
type BusConn struct {
	bus *ipc.Bus
}

// NewBusConn wraps bus for in-process client use.
func NewBusConn(bus *ipc.Bus) *BusConn { return &BusConn{bus: bus} }

func (c *BusConn) serviceByName(name string) (*ipc.Service, error) {
	switch name {
	case ipc.ServiceGridEvents:
		return c.bus.Events, nil
	case ipc.ServiceGridWindowDetails:
		return c.bus.WindowDetails, nil
	case ipc.ServiceGridFocusEvents:
		return c.bus.FocusEvents, nil
	case ipc.ServiceGridLayout:
		return c.bus.Layout, nil
	case ipc.ServiceGridAnimation:
		return c.bus.Animation, nil
	case ipc.ServiceGridCommands:
		return c.bus.Commands, nil
	case ipc.ServiceGridResponses:
		return c.bus.Responses, nil
	case ipc.ServiceGridHeartbeat:
		return c.bus.Heartbeat, nil
	default:
		return nil, fmt.Errorf("client: unknown service %q", name)
	}
}

// Subscribe registers a new consumer of service. ctx is honored only in
// the sense that a cancelled context still returns whatever Subscribe
// itself returns — an in-process Bus subscription never blocks, so there
// is nothing to wait on here (a shared-memory Conn's discovery poll is
// where ctx's deadline matters).
func (c *BusConn) Subscribe(ctx context.Context, service string, inbox int) (Receiver, error) {
	svc, err := c.serviceByName(service)
	if err != nil {
		return nil, err
	}
	sub, err := svc.Subscribe(inbox)
	if err != nil {
		return nil, err
	}
	return &busReceiver{svc: svc, sub: sub}, nil
}

// Publish fans msg out on service.
func (c *BusConn) Publish(service string, msg []byte) error {
	svc, err := c.serviceByName(service)
	if err != nil {
		return err
	}
	svc.Publish(msg)
	return nil
}

type busReceiver struct {
	svc *ipc.Service
	sub *ipc.Subscriber
}

func (r *busReceiver) TryRecv() ([]byte, bool) { return r.sub.TryRecv() }
func (r *busReceiver) Close()                  { r.svc.Unsubscribe(r.sub) }
