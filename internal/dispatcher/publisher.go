package dispatcher

import "github.com/davehorner/e-grid/internal/grid"

// Publisher is the dispatcher's one-way fan-out into the IPC fabric (C6).
// internal/server's facade implements this over the real shared-memory
// services; tests use a recording fake. The dispatcher never blocks on a
// publish failure — implementations are expected to log and drop per spec
// §4.6 ("the server never blocks on publish").
type Publisher interface {
	PublishEvent(Event)
	PublishDetails(grid.WindowInfo)
	PublishGridState(grid.Snapshot)
	PublishHeartbeat(sequence uint64, shutdown bool)
}

// NopPublisher discards everything. Useful for a dispatcher running
// headless (e.g. before the IPC fabric has finished subscriber discovery).
type NopPublisher struct{}

func (NopPublisher) PublishEvent(Event)                {}
func (NopPublisher) PublishDetails(grid.WindowInfo)    {}
func (NopPublisher) PublishGridState(grid.Snapshot)    {}
func (NopPublisher) PublishHeartbeat(uint64, bool)     {}
