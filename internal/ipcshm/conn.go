//go:build windows

package ipcshm

import (
	"context"
	"fmt"
	"sync"

	"github.com/davehorner/e-grid/internal/client"
	"github.com/davehorner/e-grid/internal/ipc"
)

// tierFor maps a service name to spec §4.6's buffer-tier column, the same
// partition internal/ipc.NewBus uses for its in-process history depth.
func tierFor(service string) string {
	switch service {
	case ipc.ServiceGridEvents, ipc.ServiceGridWindowDetails, ipc.ServiceGridFocusEvents:
		return "large"
	case ipc.ServiceGridLayout, ipc.ServiceGridAnimation, ipc.ServiceGridCommands, ipc.ServiceGridResponses:
		return "medium"
	default:
		return "small"
	}
}

// Conn is the cross-process counterpart of internal/client.BusConn: it
// satisfies internal/client.Conn over shared memory instead of an
// in-process *ipc.Bus, so cmd/e-grid can hand either one to client.New
// depending on whether the server is in this process or another.
type Conn struct {
	mu         sync.Mutex
	transports map[string]*Transport
}

// NewConn constructs a shared-memory Conn. Transports are opened lazily,
// one per service, the first time Subscribe or Publish touches them.
func NewConn() *Conn {
	return &Conn{transports: make(map[string]*Transport)}
}

func (c *Conn) transportFor(service string) (*Transport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.transports[service]; ok {
		return t, nil
	}
	t, err := Open(service, TierSlots(tierFor(service)))
	if err != nil {
		return nil, fmt.Errorf("ipcshm: open %q: %w", service, err)
	}
	c.transports[service] = t
	return t, nil
}

// Subscribe attaches a cursor to service's ring, replaying its current
// backlog as history (fromZero=true) the same way internal/ipc.Service
// replays history to a new in-process subscriber.
func (c *Conn) Subscribe(ctx context.Context, service string, inbox int) (client.Receiver, error) {
	t, err := c.transportFor(service)
	if err != nil {
		return nil, err
	}
	return &Receiver{cursor: t.NewCursor(true)}, nil
}

// Publish writes msg to service's ring.
func (c *Conn) Publish(service string, msg []byte) error {
	t, err := c.transportFor(service)
	if err != nil {
		return err
	}
	t.Publish(msg)
	return nil
}

// Close releases every transport this Conn opened.
func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.transports {
		t.Close()
	}
	c.transports = make(map[string]*Transport)
}

// Receiver adapts a shared-memory Cursor to internal/client.Receiver's
// one-message-at-a-time TryRecv shape, buffering each Poll batch.
type Receiver struct {
	cursor   *Cursor
	buffered [][]byte
}

// TryRecv returns the next buffered message, polling the ring for a new
// batch when the buffer is empty.
func (r *Receiver) TryRecv() ([]byte, bool) {
	if len(r.buffered) == 0 {
		r.buffered = r.cursor.Poll()
	}
	if len(r.buffered) == 0 {
		return nil, false
	}
	msg := r.buffered[0]
	r.buffered = r.buffered[1:]
	return msg, true
}

// Close is a no-op: the underlying Transport is shared across every
// Receiver a Conn hands out and is released by Conn.Close instead.
func (r *Receiver) Close() {}
