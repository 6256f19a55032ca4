//go:build windows

package ipcshm

import (
	"context"
	"log/slog"

	"github.com/davehorner/e-grid/internal/ipc"
)

// Bridge mirrors every message published on an in-process *ipc.Bus onto
// the matching shared-memory Transport, so a client CLI running in a
// separate OS process can observe server traffic without the server
// itself knowing its eventual audience is out-of-process. The server
// facade (internal/server) only ever publishes to its *ipc.Bus; Bridge is
// the seam that fans that bus out across the process boundary.
type Bridge struct {
	conn   *Conn
	cancel context.CancelFunc
}

// Start subscribes to every service on bus and forwards each message to
// its shared-memory counterpart until ctx is cancelled, polling at a
// fixed cadence rather than blocking per-service so one slow service
// cannot stall the others.
func Start(ctx context.Context, bus *ipc.Bus, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	bridgeCtx, cancel := context.WithCancel(ctx)
	conn := NewConn()

	for _, svc := range bus.All() {
		sub, err := svc.Subscribe(256)
		if err != nil {
			logger.Error("ipcshm: bridge subscribe failed", "service", svc.Name(), "error", err)
			continue
		}
		go forward(bridgeCtx, svc, sub, conn, logger)
	}

	return &Bridge{conn: conn, cancel: cancel}
}

// forward relays sub's messages to conn until svc.Unsubscribe(sub) closes
// sub's channel (triggered by ctx cancellation in a sibling goroutine,
// since Subscriber.Recv otherwise blocks indefinitely with no ctx of its
// own).
func forward(ctx context.Context, svc *ipc.Service, sub *ipc.Subscriber, conn *Conn, logger *slog.Logger) {
	go func() {
		<-ctx.Done()
		svc.Unsubscribe(sub)
	}()
	for {
		data, ok := sub.Recv()
		if !ok {
			return
		}
		if err := conn.Publish(svc.Name(), data); err != nil {
			logger.Warn("ipcshm: bridge publish failed", "service", svc.Name(), "error", err)
		}
	}
}

// Stop halts every forwarding goroutine and releases the bridge's shared
// memory transports.
func (b *Bridge) Stop() {
	b.cancel()
	b.conn.Close()
}
