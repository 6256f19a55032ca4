// Package dispatcher implements the single-threaded main loop (spec
// component C4): it drains the raw event queue, mutates the WindowTracker,
// derives high-level grid events, drives animations, and emits heartbeats.
// Nothing here runs concurrently with itself — Tick is only ever called
// from the goroutine Run owns — mirroring the teacher's reconciler ticker
// pattern (internal/daemon/reconciler.go) generalized from a fixed
// interval-only loop to one that also drains a queue each tick.
package dispatcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/davehorner/e-grid/internal/animation"
	"github.com/davehorner/e-grid/internal/events"
	"github.com/davehorner/e-grid/internal/grid"
)

// Config holds the dispatcher's tick cadence and batch sizes (spec §4.4).
type Config struct {
	TickInterval     time.Duration
	BatchSize        int
	RebuildInterval  time.Duration
	GridDumpEveryN   int // publish a full grid-state snapshot every N ticks
	HeartbeatPeriod  time.Duration
	CommandBatchSize int
}

// DefaultConfig matches the defaults named throughout spec §4.4.
func DefaultConfig() Config {
	return Config{
		TickInterval:     50 * time.Millisecond,
		BatchSize:        256,
		RebuildInterval:  2 * time.Second,
		GridDumpEveryN:   40,
		HeartbeatPeriod:  time.Second,
		CommandBatchSize: 64,
	}
}

// Dispatcher owns the tracker and animation manager's mutation path. It is
// constructed once per server run and driven by Run (production) or Tick
// (tests, one step at a time).
type Dispatcher struct {
	cfg Config

	queue   *events.Queue
	tracker *grid.Tracker
	anim    *animation.Manager
	backend Backend

	publisher Publisher
	commands  CommandSource
	handler   CommandHandler

	logger *slog.Logger

	lastFocused   *grid.Handle
	moving        map[grid.Handle]bool
	resizing      map[grid.Handle]bool
	lastRebuild   time.Time
	tickCount     uint64
	heartbeatSeq  uint64
	lastHeartbeat time.Time
	mutatedSince  bool
}

// New constructs a Dispatcher. publisher/commands/handler may be nil; a nil
// publisher defaults to NopPublisher and a nil commands/handler pair simply
// skips command servicing for that tick.
func New(cfg Config, queue *events.Queue, tracker *grid.Tracker, anim *animation.Manager, backend Backend, publisher Publisher, logger *slog.Logger) *Dispatcher {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		cfg:       cfg,
		queue:     queue,
		tracker:   tracker,
		anim:      anim,
		backend:   backend,
		publisher: publisher,
		logger:    logger,
		moving:    make(map[grid.Handle]bool),
		resizing:  make(map[grid.Handle]bool),
	}
}

// SetCommandSource wires the server facade's pending-command channel and
// handler in after construction, once the IPC fabric is up.
func (d *Dispatcher) SetCommandSource(src CommandSource, handler CommandHandler) {
	d.commands = src
	d.handler = handler
}

// Run drives Tick at cfg.TickInterval until ctx is cancelled, recovering
// from any panic within a single tick so one bad event never takes the
// whole server down — the same defense the teacher's reconciler applies
// around its periodic work.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.cfg.TickInterval)
	defer ticker.Stop()

	d.logger.Info("dispatcher started", "tick_interval", d.cfg.TickInterval)

	for {
		select {
		case <-ctx.Done():
			d.shutdown()
			return
		case <-ticker.C:
			d.safeTick(time.Now())
		}
	}
}

func (d *Dispatcher) safeTick(now time.Time) {
	defer func() {
		if err := recover(); err != nil {
			d.logger.Error("dispatcher tick panic recovered", "error", err)
		}
	}()
	d.Tick(now)
}

// shutdown emits the final shutdown heartbeat and drains the queue before
// Run returns (spec §4.4 step 7 / Invariant 6).
func (d *Dispatcher) shutdown() {
	d.heartbeatSeq++
	d.publisher.PublishHeartbeat(d.heartbeatSeq, true)
	d.queue.Drain(d.queue.Len())
	d.logger.Info("dispatcher stopped")
}

// Tick runs exactly one iteration of the main loop (spec §4.4, steps 1-7).
// Exported so tests can step the dispatcher deterministically without a
// real ticker.
func (d *Dispatcher) Tick(now time.Time) {
	batch := d.queue.Drain(d.cfg.BatchSize)
	for _, raw := range batch {
		d.handleRaw(raw, now)
	}

	if d.mutatedSince || d.lastRebuild.IsZero() || now.Sub(d.lastRebuild) >= d.cfg.RebuildInterval {
		d.tracker.RebuildGrids()
		d.lastRebuild = now
		d.mutatedSince = false
	}

	d.tickCount++
	if d.cfg.GridDumpEveryN > 0 && int(d.tickCount)%d.cfg.GridDumpEveryN == 0 {
		d.publisher.PublishGridState(d.tracker.Snapshot())
	}

	if d.anim != nil && d.backend != nil {
		d.anim.Advance(now, d.backend.Reposition)
	}

	if d.commands != nil && d.handler != nil {
		for _, cmd := range d.commands.Drain(d.cfg.CommandBatchSize) {
			d.handler.Handle(cmd)
		}
	}

	if d.lastHeartbeat.IsZero() || now.Sub(d.lastHeartbeat) >= d.cfg.HeartbeatPeriod {
		d.heartbeatSeq++
		d.publisher.PublishHeartbeat(d.heartbeatSeq, false)
		d.lastHeartbeat = now
	}
}

// handleRaw resolves one raw event into tracker mutation plus zero or more
// derived Events, per spec §4.4 step 2 and the focus-alternation rule in
// §4.4/§8 property 4.
func (d *Dispatcher) handleRaw(raw events.Raw, now time.Time) {
	switch raw.Kind {
	case events.Destroy:
		d.handleDestroy(raw.Handle, now)
		return
	case events.MoveStart:
		d.moving[raw.Handle] = true
		d.emit(Event{Kind: MoveStart, Handle: raw.Handle, Timestamp: now})
		return
	case events.MoveEnd:
		delete(d.moving, raw.Handle)
		d.emit(Event{Kind: MoveStop, Handle: raw.Handle, Timestamp: now})
		d.resolveAndUpdate(raw.Handle, now, Moved)
		return
	case events.ResizeStart:
		d.resizing[raw.Handle] = true
		d.emit(Event{Kind: ResizeStart, Handle: raw.Handle, Timestamp: now})
		return
	case events.ResizeEnd:
		delete(d.resizing, raw.Handle)
		d.emit(Event{Kind: ResizeStop, Handle: raw.Handle, Timestamp: now})
		d.resolveAndUpdate(raw.Handle, now, Moved)
		return
	case events.Foreground:
		d.handleForeground(raw.Handle, now)
		return
	case events.Minimize, events.Restore:
		d.resolveAndUpdate(raw.Handle, now, StateChanged)
		return
	case events.Create:
		d.resolveAndUpdate(raw.Handle, now, Created)
		return
	case events.LocationChange:
		kind := Moved
		if d.moving[raw.Handle] {
			kind = ContinuousMove
		} else if d.resizing[raw.Handle] {
			kind = ContinuousResize
		}
		d.resolveAndUpdate(raw.Handle, now, kind)
		return
	}
}

// handleDestroy removes handle from the tracker and emits Destroyed,
// cleaning up any in-flight move/resize/animation/focus bookkeeping for
// it (Testable property 3: nothing for H follows a Destroyed unless a new
// Created precedes it).
func (d *Dispatcher) handleDestroy(h grid.Handle, now time.Time) {
	delete(d.moving, h)
	delete(d.resizing, h)
	if d.anim != nil {
		d.anim.Cancel(h)
	}
	if d.lastFocused != nil && *d.lastFocused == h {
		d.lastFocused = nil
	}
	if d.tracker.Remove(h) {
		d.mutatedSince = true
		d.emit(Event{Kind: Destroyed, Handle: h, Timestamp: now})
	}
}

// resolveAndUpdate queries live attributes for h, feeds them through
// AddOrUpdate, and emits the appropriate event for the outcome. An OS
// query failure is treated as an implicit Destroy (spec §4.4 failure
// semantics).
func (d *Dispatcher) resolveAndUpdate(h grid.Handle, now time.Time, preferredKind Kind) {
	if d.backend == nil {
		return
	}
	attrs, err := d.backend.QueryAttributes(h)
	if err != nil {
		d.handleDestroy(h, now)
		return
	}

	change := d.tracker.AddOrUpdate(h, attrs.Rect, attrs.Title, attrs.Flags, attrs)
	switch change.Kind {
	case grid.ChangeRejected:
		return
	case grid.ChangeUnchanged:
		return
	case grid.ChangeCreated:
		d.mutatedSince = true
		d.emit(Event{Kind: Created, Handle: h, New: change.New, ProcessID: attrs.ProcessID, Timestamp: now})
		if w, ok := d.tracker.Get(h); ok {
			d.publisher.PublishDetails(w)
		}
	case grid.ChangeMoved:
		d.mutatedSince = true
		kind := preferredKind
		if kind == Created {
			// Create raw events that turn out to be updates to an
			// already-tracked handle (a rescan re-observing it) still
			// read as a move, not a second Created.
			kind = Moved
		}
		d.emit(Event{Kind: kind, Handle: h, Old: change.Old, New: change.New, ProcessID: attrs.ProcessID, Timestamp: now})
		if w, ok := d.tracker.Get(h); ok {
			d.publisher.PublishDetails(w)
		}
	}
}

// handleForeground applies the focus-alternation rule from spec §4.4: a
// Foreground event for H, with a different previously-focused window P,
// emits Defocused(P) before Focused(H); the same handle re-observed is a
// no-op (alternation is already satisfied).
func (d *Dispatcher) handleForeground(h grid.Handle, now time.Time) {
	if d.lastFocused != nil && *d.lastFocused == h {
		return
	}
	if d.lastFocused != nil {
		prev := *d.lastFocused
		d.emit(Event{Kind: Defocused, Handle: prev, Timestamp: now})
	}
	hh := h
	d.lastFocused = &hh
	d.emit(Event{Kind: Focused, Handle: h, Timestamp: now})
}

func (d *Dispatcher) emit(e Event) {
	d.publisher.PublishEvent(e)
}
