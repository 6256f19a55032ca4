// Package health implements the performance-monitor supplement: a
// self-tracked counters/rates view modeled on the original
// PerformanceMonitor (events_per_second, peak/avg processing time,
// memory estimate, degraded detection), augmented with OS-level process
// stats from github.com/shirou/gopsutil/v4 so the report reflects real
// CPU/RSS rather than just a byte-count estimate derived from tracked
// window/animation counts.
package health

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// Kind identifies which counter a recorded sample belongs to, mirroring
// the original's EventType enum.
type Kind int

const (
	KindWindowEvent Kind = iota
	KindFocusEvent
	KindWindowDetails
)

// degradedProcessingBudget and degradedRate are the thresholds the
// original flags as "too slow" / "too busy".
const (
	degradedProcessingBudget = 100 * time.Millisecond
	degradedRate             = 100.0
	degradedSilence          = 30 * time.Second
	rateWindow               = time.Second
	retentionWindow          = 60 * time.Second
	maxProcessingSamples     = 1000
)

// Snapshot is a point-in-time read of the monitor's metrics, returned by
// Report() for logging or a client-facing diagnostic dump.
type Snapshot struct {
	Uptime                  time.Duration
	TotalEventsProcessed    uint64
	TotalFocusEvents        uint64
	TotalWindowDetails      uint64
	AvgProcessingTime       time.Duration
	PeakProcessingTime      time.Duration
	EventsPerSecond         float64
	EstimatedMemoryUsage    uint64
	ActiveWindowCount       int
	BackgroundHealthy       bool
	LastActivity            time.Time
	ProcessCPUPercent       float64
	ProcessRSSBytes         uint64
	Degraded                bool
}

// Monitor tracks dispatcher throughput and exposes it for the heartbeat
// cadence's periodic diagnostic report (SPEC_FULL.md supplemented
// feature: performance monitor).
type Monitor struct {
	mu sync.Mutex

	startedAt time.Time

	totalEvents  uint64
	totalFocus   uint64
	totalDetails uint64

	peakProcessing time.Duration
	processing     []time.Duration
	eventTimes     []time.Time

	activeWindows int
	memEstimate   uint64
	healthy       bool
	lastActivity  time.Time

	proc *process.Process
}

// New constructs a Monitor and attaches a gopsutil process handle for the
// current process (best-effort: a handle lookup failure just means
// ProcessCPUPercent/ProcessRSSBytes stay at zero in every snapshot).
func New() *Monitor {
	m := &Monitor{startedAt: time.Now(), healthy: true, lastActivity: time.Now()}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		m.proc = p
	}
	return m
}

// Record registers one processed event of kind, taking processingTime to
// complete, and updates the rolling rate/average windows.
func (m *Monitor) Record(kind Kind, processingTime time.Duration) {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	switch kind {
	case KindWindowEvent:
		m.totalEvents++
	case KindFocusEvent:
		m.totalFocus++
	case KindWindowDetails:
		m.totalDetails++
	}

	if processingTime > m.peakProcessing {
		m.peakProcessing = processingTime
	}
	m.lastActivity = now
	m.healthy = true

	m.eventTimes = append(m.eventTimes, now)
	m.pruneEventTimesLocked(now)

	m.processing = append(m.processing, processingTime)
	if len(m.processing) > maxProcessingSamples {
		m.processing = m.processing[len(m.processing)-maxProcessingSamples:]
	}
}

// Timer starts an operation timer; call the returned func when the
// operation completes to record its duration against kind — Go's analog
// of the original's RAII OperationTimer/Drop pairing.
func (m *Monitor) Timer(kind Kind) func() {
	start := time.Now()
	return func() {
		m.Record(kind, time.Since(start))
	}
}

func (m *Monitor) pruneEventTimesLocked(now time.Time) {
	cutoff := now.Add(-retentionWindow)
	i := 0
	for i < len(m.eventTimes) && m.eventTimes[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		m.eventTimes = m.eventTimes[i:]
	}
}

// UpdateWindowCount records the tracker's current active window count,
// used both for reporting and for the memory estimate.
func (m *Monitor) UpdateWindowCount(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activeWindows = n
}

// UpdateMemoryEstimate records a caller-computed estimate of bytes held
// by tracked windows/animations (the original's update_memory_usage).
func (m *Monitor) UpdateMemoryEstimate(bytes uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.memEstimate = bytes
}

// MarkUnhealthy flags the dispatcher loop as unhealthy (e.g. after a
// recovered panic), cleared automatically by the next Record call.
func (m *Monitor) MarkUnhealthy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.healthy = false
}

// Report computes a fresh Snapshot, including a best-effort CPU/RSS
// sample from gopsutil (skipped silently if no process handle attached).
func (m *Monitor) Report(ctx context.Context) Snapshot {
	now := time.Now()

	m.mu.Lock()
	m.pruneEventTimesLocked(now)

	rateCutoff := now.Add(-rateWindow)
	recent := 0
	for _, t := range m.eventTimes {
		if !t.Before(rateCutoff) {
			recent++
		}
	}

	var avg time.Duration
	if len(m.processing) > 0 {
		var total time.Duration
		for _, d := range m.processing {
			total += d
		}
		avg = total / time.Duration(len(m.processing))
	}

	snap := Snapshot{
		Uptime:               now.Sub(m.startedAt),
		TotalEventsProcessed: m.totalEvents,
		TotalFocusEvents:     m.totalFocus,
		TotalWindowDetails:   m.totalDetails,
		AvgProcessingTime:    avg,
		PeakProcessingTime:   m.peakProcessing,
		EventsPerSecond:      float64(recent),
		EstimatedMemoryUsage: m.memEstimate,
		ActiveWindowCount:    m.activeWindows,
		BackgroundHealthy:    m.healthy,
		LastActivity:         m.lastActivity,
	}
	m.mu.Unlock()

	if m.proc != nil {
		if cpu, err := m.proc.CPUPercentWithContext(ctx); err == nil {
			snap.ProcessCPUPercent = cpu
		}
		if mi, err := m.proc.MemoryInfoWithContext(ctx); err == nil && mi != nil {
			snap.ProcessRSSBytes = mi.RSS
		}
	}

	snap.Degraded = snap.AvgProcessingTime > degradedProcessingBudget ||
		snap.EventsPerSecond > degradedRate ||
		now.Sub(snap.LastActivity) > degradedSilence ||
		!snap.BackgroundHealthy

	return snap
}

// Line renders snap as the one-line log report the server facade's
// PublishHeartbeat emits every heartbeatEveryNHealth (10) heartbeats,
// condensed from the original's multi-line banner report.
func (s Snapshot) Line() string {
	status := "healthy"
	if s.Degraded {
		status = "degraded"
	}
	return fmt.Sprintf(
		"health status=%s uptime=%s events=%d focus=%d details=%d rate=%.1f/s avg=%s peak=%s windows=%d mem_est=%dKB cpu=%.1f%% rss=%dKB",
		status, s.Uptime.Round(time.Second), s.TotalEventsProcessed, s.TotalFocusEvents, s.TotalWindowDetails,
		s.EventsPerSecond, s.AvgProcessingTime.Round(time.Microsecond), s.PeakProcessingTime.Round(time.Microsecond),
		s.ActiveWindowCount, s.EstimatedMemoryUsage/1024, s.ProcessCPUPercent, s.ProcessRSSBytes/1024,
	)
}
