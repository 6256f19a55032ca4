package client

import (
	"context"
	"time"

	"github.com/davehorner/e-grid/internal/ipc"
)

// runMonitor polls every subscribed service at cfg.IPC.PollInterval and
// declares the server lost after cfg.IPC.EmptyCycleThreshold consecutive
// cycles with nothing to deliver, or immediately on a shutdown heartbeat
// (Flag bit 0) — spec.md's "Connection health" paragraph, at the default
// 500ms cadence that makes a 20-cycle threshold a ~10s detection window.
func (c *Client) runMonitor(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.IPC.PollInterval())
	defer ticker.Stop()

	emptyCycles := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.closed:
			return
		case <-ticker.C:
			if !c.connected.Load() {
				continue
			}
			processed, lost := c.pollOnce()
			if lost {
				emptyCycles = 0
				c.handleServerLost(ctx)
				continue
			}
			if processed == 0 {
				emptyCycles++
			} else {
				emptyCycles = 0
			}
			if emptyCycles >= c.cfg.IPC.EmptyCycleThreshold {
				c.logger.Warn("client: server appears lost, no messages for consecutive poll cycles", "cycles", emptyCycles)
				emptyCycles = 0
				c.handleServerLost(ctx)
			}
		}
	}
}

// pollOnce drains every receiver once and dispatches decoded messages,
// reporting whether a shutdown heartbeat was seen among them.
func (c *Client) pollOnce() (processed int, shutdownSeen bool) {
	c.mu.RLock()
	receivers := make(map[string]Receiver, len(c.receivers))
	for name, r := range c.receivers {
		receivers[name] = r
	}
	c.mu.RUnlock()

	for name, r := range receivers {
		for {
			data, ok := r.TryRecv()
			if !ok {
				break
			}
			processed++
			if c.dispatch(name, data) {
				shutdownSeen = true
			}
		}
	}
	return
}

func (c *Client) dispatch(service string, data []byte) (shutdown bool) {
	switch service {
	case ipc.ServiceGridEvents:
		var e ipc.WindowEvent
		if err := ipc.Decode(data, &e); err == nil {
			c.cb.dispatchWindowEvent(e)
		}
	case ipc.ServiceGridFocusEvents:
		var e ipc.WindowFocusEvent
		if err := ipc.Decode(data, &e); err == nil {
			c.cb.dispatchFocusEvent(e)
		}
	case ipc.ServiceGridHeartbeat:
		var hb ipc.Heartbeat
		if err := ipc.Decode(data, &hb); err == nil {
			c.cb.dispatchHeartbeat(hb)
			if hb.Flag&1 != 0 {
				shutdown = true
			}
		}
	case ipc.ServiceGridResponses:
		var resp ipc.WindowResponse
		if err := ipc.Decode(data, &resp); err == nil {
			c.deliverResponse(resp)
		}
	case ipc.ServiceGridWindowDetails, ipc.ServiceGridLayout, ipc.ServiceGridAnimation:
		// No client-level callback surface for these yet; the CLI dump
		// command reads window/layout state through typed commands
		// instead of subscribing here directly.
	}
	return
}

// handleServerLost tears down the current subscriptions and retries
// connFn every cfg.IPC.ReconnectInterval, backing off linearly, up to
// cfg.IPC.ReconnectMaxAttempts times. On success it re-subscribes all
// eight services and re-issues the implicit startup queries.
func (c *Client) handleServerLost(ctx context.Context) {
	if !c.connected.CompareAndSwap(true, false) {
		return
	}
	c.logger.Warn("client: entering reconnect loop")
	c.closeReceivers()

	attempts := c.cfg.IPC.ReconnectMaxAttempts
	interval := c.cfg.IPC.ReconnectInterval()

	for attempt := 1; attempt <= attempts; attempt++ {
		select {
		case <-ctx.Done():
			return
		case <-c.closed:
			return
		case <-time.After(interval * time.Duration(attempt)):
		}

		conn, err := c.connFn()
		if err != nil {
			c.logger.Warn("client: reconnect attempt failed to establish a connection", "attempt", attempt, "error", err)
			continue
		}

		c.mu.Lock()
		c.conn = conn
		c.mu.Unlock()

		subCtx, cancel := context.WithTimeout(ctx, c.cfg.IPC.DiscoveryTimeout())
		err = c.subscribeAll(subCtx)
		cancel()
		if err != nil {
			c.logger.Warn("client: reconnect attempt failed to subscribe", "attempt", attempt, "error", err)
			continue
		}

		c.connected.Store(true)
		c.logger.Info("client: reconnected", "attempt", attempt)
		c.reissueImplicitQueries()
		return
	}

	c.logger.Error("client: exhausted reconnect attempts, giving up", "attempts", attempts)
}
