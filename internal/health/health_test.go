package health

import (
	"context"
	"testing"
	"time"
)

func TestRecordAccumulatesCounters(t *testing.T) {
	m := New()
	m.Record(KindWindowEvent, 2*time.Millisecond)
	m.Record(KindWindowEvent, 4*time.Millisecond)
	m.Record(KindFocusEvent, time.Millisecond)
	m.Record(KindWindowDetails, time.Millisecond)

	snap := m.Report(context.Background())
	if snap.TotalEventsProcessed != 2 {
		t.Fatalf("total events = %d, want 2", snap.TotalEventsProcessed)
	}
	if snap.TotalFocusEvents != 1 || snap.TotalWindowDetails != 1 {
		t.Fatalf("focus=%d details=%d, want 1/1", snap.TotalFocusEvents, snap.TotalWindowDetails)
	}
	if snap.PeakProcessingTime != 4*time.Millisecond {
		t.Fatalf("peak = %v, want 4ms", snap.PeakProcessingTime)
	}
	if !snap.BackgroundHealthy {
		t.Fatalf("expected healthy after Record")
	}
}

func TestTimerRecordsElapsedDuration(t *testing.T) {
	m := New()
	stop := m.Timer(KindWindowEvent)
	time.Sleep(time.Millisecond)
	stop()

	snap := m.Report(context.Background())
	if snap.TotalEventsProcessed != 1 {
		t.Fatalf("total events = %d, want 1", snap.TotalEventsProcessed)
	}
	if snap.PeakProcessingTime <= 0 {
		t.Fatalf("expected nonzero peak processing time")
	}
}

func TestMarkUnhealthyReflectsInSnapshot(t *testing.T) {
	m := New()
	m.Record(KindWindowEvent, time.Millisecond)
	m.MarkUnhealthy()

	snap := m.Report(context.Background())
	if snap.BackgroundHealthy {
		t.Fatalf("expected unhealthy after MarkUnhealthy")
	}
	if !snap.Degraded {
		t.Fatalf("unhealthy monitor should report degraded")
	}
}

func TestDegradedOnSlowAverageProcessing(t *testing.T) {
	m := New()
	m.Record(KindWindowEvent, 200*time.Millisecond)

	snap := m.Report(context.Background())
	if !snap.Degraded {
		t.Fatalf("expected degraded when avg processing exceeds budget")
	}
}

func TestUpdateWindowCountAndMemoryEstimate(t *testing.T) {
	m := New()
	m.UpdateWindowCount(12)
	m.UpdateMemoryEstimate(4096)

	snap := m.Report(context.Background())
	if snap.ActiveWindowCount != 12 {
		t.Fatalf("active windows = %d, want 12", snap.ActiveWindowCount)
	}
	if snap.EstimatedMemoryUsage != 4096 {
		t.Fatalf("mem estimate = %d, want 4096", snap.EstimatedMemoryUsage)
	}
}

func TestLineFormatsWithoutPanicking(t *testing.T) {
	m := New()
	m.Record(KindWindowEvent, time.Millisecond)
	line := m.Report(context.Background()).Line()
	if line == "" {
		t.Fatalf("expected non-empty report line")
	}
}
