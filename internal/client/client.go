package client

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/davehorner/e-grid/internal/config"
	"github.com/davehorner/e-grid/internal/ipc"
)

var allServices = []string{
	ipc.ServiceGridEvents,
	ipc.ServiceGridWindowDetails,
	ipc.ServiceGridFocusEvents,
	ipc.ServiceGridLayout,
	ipc.ServiceGridAnimation,
	ipc.ServiceGridCommands,
	ipc.ServiceGridResponses,
	ipc.ServiceGridHeartbeat,
}

// ConnFactory produces a fresh Conn to the server, called once at Connect
// and again on every reconnect attempt — for a BusConn this simply
// rewraps the same *ipc.Bus, but a shared-memory Conn would reopen the
// transport's discovery handshake here.
type ConnFactory func() (Conn, error)

// Client is the in-process client library (spec component C8): it
// subscribes to all eight IPC services, dispatches decoded messages to
// registered callbacks, answers typed commands by request-id
// correlation, and runs a background monitor goroutine that detects a
// lost server and reconnects (spec.md, "Connection health").
type Client struct {
	cfg       config.Config
	connFn    ConnFactory
	logger    *slog.Logger
	sessionID uuid.UUID

	mu        sync.RWMutex
	conn      Conn
	receivers map[string]Receiver

	cb callbackSet

	pendingMu sync.Mutex
	pending   map[uint64]chan ipc.WindowResponse
	reqSeq    uint64

	connected atomic.Bool
	closed    chan struct{}
	closeOnce sync.Once
}

// New constructs a Client; Connect must be called before any command or
// callback traffic flows.
func New(cfg config.Config, connFn ConnFactory, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:       cfg,
		connFn:    connFn,
		logger:    logger,
		sessionID: uuid.New(),
		receivers: make(map[string]Receiver),
		pending:   make(map[uint64]chan ipc.WindowResponse),
		closed:    make(chan struct{}),
	}
}

// SessionID identifies this client instance across reconnects, for
// logging and for a server-side session-scoped feature to key off of.
func (c *Client) SessionID() uuid.UUID { return c.sessionID }

// Connected reports whether the client currently believes it has a live
// server on the other end of the bus.
func (c *Client) Connected() bool { return c.connected.Load() }

// Connect establishes the transport, subscribes to every service within
// cfg.IPC.DiscoveryTimeout, issues the implicit startup queries spec.md
// names (GetWindowList, GetGridState), and starts the background monitor
// goroutine. ctx governs Connect itself, not the client's subsequent
// lifetime — call Close to stop the monitor goroutine.
func (c *Client) Connect(ctx context.Context) error {
	conn, err := c.connFn()
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	subCtx, cancel := context.WithTimeout(ctx, c.cfg.IPC.DiscoveryTimeout())
	defer cancel()
	if err := c.subscribeAll(subCtx); err != nil {
		return err
	}

	c.connected.Store(true)
	go c.runMonitor(context.Background())
	c.reissueImplicitQueries()
	return nil
}

// Close stops the monitor goroutine and releases every subscription.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.closeReceivers()
	})
}

func (c *Client) subscribeAll(ctx context.Context) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	receivers := make(map[string]Receiver, len(allServices))
	for _, name := range allServices {
		r, err := conn.Subscribe(ctx, name, c.cfg.IPC.QueueCapacity)
		if err != nil {
			for _, already := range receivers {
				already.Close()
			}
			return err
		}
		receivers[name] = r
	}

	c.mu.Lock()
	c.receivers = receivers
	c.mu.Unlock()
	return nil
}

func (c *Client) closeReceivers() {
	c.mu.Lock()
	old := c.receivers
	c.receivers = make(map[string]Receiver)
	c.mu.Unlock()
	for _, r := range old {
		r.Close()
	}
}

func (c *Client) reissueImplicitQueries() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.IPC.ClientTimeout())
		defer cancel()
		if _, err := c.GetWindowList(ctx); err != nil {
			c.logger.Debug("client: implicit get_window_list failed", "error", err)
		}
		if _, err := c.GetGridState(ctx); err != nil {
			c.logger.Debug("client: implicit get_grid_state failed", "error", err)
		}
	}()
}

func (c *Client) registerPending(requestID uint64) chan ipc.WindowResponse {
	ch := make(chan ipc.WindowResponse, 1)
	c.pendingMu.Lock()
	c.pending[requestID] = ch
	c.pendingMu.Unlock()
	return ch
}

func (c *Client) unregisterPending(requestID uint64) {
	c.pendingMu.Lock()
	delete(c.pending, requestID)
	c.pendingMu.Unlock()
}

func (c *Client) deliverResponse(resp ipc.WindowResponse) {
	c.pendingMu.Lock()
	ch, ok := c.pending[resp.RequestID]
	c.pendingMu.Unlock()
	if !ok {
		return
	}
	select {
	case ch <- resp:
	default:
	}
}

type errNotConnected struct{}

func (errNotConnected) Error() string { return "client: not connected" }
