// Package server implements the server facade (spec component C7): it
// wires the WindowTracker, animation manager, layout store and health
// monitor to the IPC fabric, and drives the dispatcher loop under a
// github.com/thejerf/suture supervision tree (internal/supervision). This
// is the process entry point's single composition root; cmd/e-grid just
// constructs a Config and a platform Backend and calls Run.
package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/davehorner/e-grid/internal/animation"
	"github.com/davehorner/e-grid/internal/config"
	"github.com/davehorner/e-grid/internal/dispatcher"
	"github.com/davehorner/e-grid/internal/events"
	"github.com/davehorner/e-grid/internal/grid"
	"github.com/davehorner/e-grid/internal/health"
	"github.com/davehorner/e-grid/internal/ipc"
	"github.com/davehorner/e-grid/internal/supervision"
)

// FocusBackend extends dispatcher.Backend with the foreground-focus
// operation the FocusWindow command needs — kept separate from
// dispatcher.Backend so the dispatcher package itself never needs to know
// about focus-stealing, only query/reposition.
type FocusBackend interface {
	dispatcher.Backend
	Focus(h grid.Handle) error
}

// Server is the composition root for one running instance: every
// long-lived piece of state the dispatcher and the IPC fabric share.
type Server struct {
	cfg config.Config

	tracker *grid.Tracker
	anim    *animation.Manager
	layouts *animation.LayoutStore
	health  *health.Monitor

	bus     *ipc.Bus
	cmdSub  *ipc.Subscriber

	dispatcher *dispatcher.Dispatcher
	backend    FocusBackend
	logger     *slog.Logger

	heartbeatEveryNHealth uint64
}

// New constructs a Server over a fixed monitor layout and backend. queue
// is the raw event intake the caller's OS hook (or, in tests, a synthetic
// producer) feeds; New does not start consuming it — call Run for that.
func New(cfg config.Config, monitors []grid.Monitor, queue *events.Queue, backend FocusBackend, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gridCfg := grid.Config{RowsPerMonitor: cfg.Grid.RowsPerMonitor, ColsPerMonitor: cfg.Grid.ColsPerMonitor, Threshold: cfg.Grid.Threshold}
	tracker := grid.New(gridCfg, monitors)
	anim := animation.NewManager()
	layouts := animation.NewLayoutStore()
	hm := health.New()
	bus := ipc.NewBus()

	dcfg := dispatcher.Config{
		TickInterval:     cfg.Dispatcher.TickInterval(),
		BatchSize:        cfg.Dispatcher.BatchSize,
		RebuildInterval:  cfg.Dispatcher.RebuildInterval(),
		GridDumpEveryN:   cfg.Dispatcher.GridDumpEveryN,
		HeartbeatPeriod:  cfg.Dispatcher.HeartbeatPeriod(),
		CommandBatchSize: cfg.Dispatcher.CommandBatchSize,
	}

	s := &Server{
		cfg:                   cfg,
		tracker:               tracker,
		anim:                  anim,
		layouts:               layouts,
		health:                hm,
		bus:                   bus,
		backend:                backend,
		logger:                logger,
		heartbeatEveryNHealth: 10,
	}

	sub, err := bus.Commands.Subscribe(cfg.IPC.QueueCapacity)
	if err != nil {
		// MaxSubscribers is 8 and the server facade is always the first
		// subscriber of GRID_COMMANDS; this can only fail if New is
		// called twice against the same Bus, which is a programmer error.
		logger.Error("server: subscribe to command service", "error", err)
	}
	s.cmdSub = sub

	s.dispatcher = dispatcher.New(dcfg, queue, tracker, anim, backend, s, logger)
	s.dispatcher.SetCommandSource(s, s)
	return s
}

// Bus exposes the IPC service set for the transport layer (internal/ipcshm
// on Windows, or a test harness) to bridge each Service's Publish/Subscribe
// onto a shared-memory ring.
func (s *Server) Bus() *ipc.Bus { return s.bus }

// Tracker exposes the window tracker for CLI inspection commands (e.g. the
// client dump subcommand run in-process, or tests).
func (s *Server) Tracker() *grid.Tracker { return s.tracker }

// Health exposes the performance monitor for the CLI's diagnostic output.
func (s *Server) Health() *health.Monitor { return s.health }

// Run drives the server until ctx is cancelled: the dispatcher tick loop
// under a suture supervisor, matching the teacher pack's supervised-
// service composition rather than a bare goroutine (spec §4.7).
func (s *Server) Run(ctx context.Context) error {
	super := supervision.New("e-grid-server")
	supervision.Add(super, supervision.NewFunc("dispatcher", func(ctx context.Context) error {
		s.dispatcher.Run(ctx)
		return ctx.Err()
	}))
	return super.Serve(ctx)
}

// Tick steps the dispatcher exactly once, for tests and for a caller that
// wants to drive the loop manually instead of via Run.
func (s *Server) Tick(now time.Time) { s.dispatcher.Tick(now) }

// --- dispatcher.Publisher ---

// PublishEvent encodes a dispatcher event as the matching wire struct and
// fans it out on GRID_EVENTS (lifecycle/move/resize events) or
// GRID_FOCUS_EVENTS (focus alternation), per spec §6's service table.
func (s *Server) PublishEvent(e dispatcher.Event) {
	switch e.Kind {
	case dispatcher.Focused, dispatcher.Defocused:
		s.publishFocusEvent(e)
	default:
		s.publishWindowEvent(e)
	}
}

func (s *Server) publishWindowEvent(e dispatcher.Event) {
	var minRow, minCol, maxRow, maxCol int
	if w, ok := s.tracker.Get(e.Handle); ok {
		minRow, minCol, maxRow, maxCol, _ = cellBoundingBox(w.VirtualCells)
	}
	msg := ipc.WindowEvent{
		ProtocolVersion:    ipc.ProtocolVersion,
		EventType:          eventTypeCode(e.Kind),
		Hwnd:               uint64(e.Handle),
		Row:                uint32(minRow),
		Col:                uint32(minCol),
		GridTopLeftRow:     uint32(minRow),
		GridTopLeftCol:     uint32(minCol),
		GridBottomRightRow: uint32(maxRow),
		GridBottomRightCol: uint32(maxCol),
		RealX:              e.New.Left,
		RealY:              e.New.Top,
		RealWidth:          uint32(e.New.Width()),
		RealHeight:         uint32(e.New.Height()),
		MonitorID:          uint32(e.MonitorID),
		Timestamp:          uint64(e.Timestamp.UnixMilli()),
	}
	s.publish(s.bus.Events, &msg)
}

func (s *Server) publishFocusEvent(e dispatcher.Event) {
	var titleHash, appHash uint64
	var pid uint32
	if w, ok := s.tracker.Get(e.Handle); ok {
		titleHash = hashString(w.Title)
		pid = w.ProcessID
	}
	ft := ipc.FocusEventFocused
	if e.Kind == dispatcher.Defocused {
		ft = ipc.FocusEventDefocused
	}
	msg := ipc.WindowFocusEvent{
		ProtocolVersion: ipc.ProtocolVersion,
		EventType:       uint8(ft),
		Hwnd:            uint64(e.Handle),
		ProcessID:       pid,
		Timestamp:       uint64(e.Timestamp.UnixMilli()),
		AppNameHash:     appHash,
		WindowTitleHash: titleHash,
	}
	s.publish(s.bus.FocusEvents, &msg)
}

// PublishDetails fans out the changed window's full record on
// GRID_WINDOW_DETAILS.
func (s *Server) PublishDetails(w grid.WindowInfo) {
	s.publish(s.bus.WindowDetails, windowDetailsMessage(w))
}

// PublishGridState republishes every tracked window's details — the
// periodic full re-sync spec §4.4 names ("periodic grid-state dumps every
// N ticks"); this module implements that dump as a WindowDetails replay
// rather than inventing a new wire struct, since WindowDetails already
// carries everything a resync needs and the spec defines no dedicated
// grid-dump message type.
func (s *Server) PublishGridState(snap grid.Snapshot) {
	for _, w := range snap.Windows {
		s.publish(s.bus.WindowDetails, windowDetailsMessage(w))
	}
}

func windowDetailsMessage(w grid.WindowInfo) *ipc.WindowDetails {
	minRow, minCol, maxRow, maxCol, _ := cellBoundingBox(w.VirtualCells)
	var monitorID uint32
	if len(w.MonitorCells) > 0 {
		monitorID = uint32(w.MonitorCells[0].Monitor)
	}
	return &ipc.WindowDetails{
		ProtocolVersion:       ipc.ProtocolVersion,
		Hwnd:                  uint64(w.Handle),
		X:                     w.Rect.Left,
		Y:                     w.Rect.Top,
		Width:                 uint32(w.Rect.Width()),
		Height:                uint32(w.Rect.Height()),
		VirtualRowTopLeft:     uint32(minRow),
		VirtualColTopLeft:     uint32(minCol),
		VirtualRowBottomRight: uint32(maxRow),
		VirtualColBottomRight: uint32(maxCol),
		MonitorID:             monitorID,
		TitleHash:             hashString(w.Title),
		Flags:                 w.Flags.Bits(),
	}
}

// PublishHeartbeat fans out on GRID_HEARTBEAT and, every
// heartbeatEveryNHealth beats, also folds in a performance-monitor report
// (supplemented feature, spec §C.1): logged at info level and reflected
// in the heartbeat's reserved flag bit 1 when the monitor reports
// degraded.
func (s *Server) PublishHeartbeat(seq uint64, shutdown bool) {
	s.health.UpdateWindowCount(s.tracker.Count())

	flag := uint8(0)
	if shutdown {
		flag = 1
	}

	if s.heartbeatEveryNHealth > 0 && seq%s.heartbeatEveryNHealth == 0 {
		snap := s.health.Report(context.Background())
		if snap.Degraded {
			flag |= 2
		}
		s.logger.Info(snap.Line())
	}

	msg := ipc.Heartbeat{
		ProtocolVersion: ipc.ProtocolVersion,
		Sequence:        seq,
		Timestamp:       uint64(time.Now().UnixMilli()),
		Flag:            flag,
	}
	s.publish(s.bus.Heartbeat, &msg)
}

func (s *Server) publish(svc *ipc.Service, v any) {
	data, err := ipc.Encode(v)
	if err != nil {
		s.logger.Error("server: encode wire message", "service", svc.Name(), "error", err)
		return
	}
	svc.Publish(data)
}

func eventTypeCode(k dispatcher.Kind) uint8 {
	switch k {
	case dispatcher.Created:
		return ipc.EventCreated
	case dispatcher.Destroyed:
		return ipc.EventDestroyed
	case dispatcher.Moved:
		return ipc.EventMoved
	case dispatcher.StateChanged:
		return ipc.EventStateChanged
	case dispatcher.MoveStart:
		return ipc.EventMoveStart
	case dispatcher.MoveStop:
		return ipc.EventMoveStop
	case dispatcher.ResizeStart:
		return ipc.EventResizeStart
	case dispatcher.ResizeStop:
		return ipc.EventResizeStop
	case dispatcher.ContinuousMove:
		return ipc.EventContinuousMove
	case dispatcher.ContinuousResize:
		return ipc.EventContinuousResize
	default:
		return ipc.EventMoved
	}
}
