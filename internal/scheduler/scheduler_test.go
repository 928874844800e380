package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestJobRunsImmediatelyAndPeriodically(t *testing.T) {
	var runs atomic.Int32
	s := New(20*time.Millisecond, 0)
	s.AddJob("count", func(context.Context) error {
		runs.Add(1)
		return nil
	})
	s.Start(context.Background())
	time.Sleep(110 * time.Millisecond)
	s.Stop()

	got := runs.Load()
	// One immediate run plus roughly five ticks; timing slack keeps the
	// bounds loose.
	if got < 3 {
		t.Errorf("runs = %d, want at least 3", got)
	}
}

func TestOverlappingTicksAreCoalesced(t *testing.T) {
	var concurrent atomic.Int32
	var peak atomic.Int32
	var runs atomic.Int32
	s := New(10*time.Millisecond, 0)
	s.AddJob("slow", func(context.Context) error {
		runs.Add(1)
		cur := concurrent.Add(1)
		if cur > peak.Load() {
			peak.Store(cur)
		}
		time.Sleep(60 * time.Millisecond) // spans several ticks
		concurrent.Add(-1)
		return nil
	})
	s.Start(context.Background())
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	if peak.Load() > 1 {
		t.Errorf("peak concurrency = %d, want 1", peak.Load())
	}
	// A 60ms job on a 10ms ticker over ~100ms fits at most two full runs
	// plus one in flight; well below the ten ticks that fired.
	if runs.Load() > 4 {
		t.Errorf("runs = %d, coalescing should have skipped most ticks", runs.Load())
	}
}

func TestSlowJobDoesNotDelayOthers(t *testing.T) {
	var fastRuns atomic.Int32
	block := make(chan struct{})
	s := New(10*time.Millisecond, 0)
	s.AddJob("stuck", func(context.Context) error {
		<-block
		return nil
	})
	s.AddJob("fast", func(context.Context) error {
		fastRuns.Add(1)
		return nil
	})
	s.Start(context.Background())
	time.Sleep(80 * time.Millisecond)
	close(block)
	s.Stop()

	if fastRuns.Load() < 3 {
		t.Errorf("fast job runs = %d, want at least 3 while the other job is stuck", fastRuns.Load())
	}
}

func TestStopWaitsForInFlightRun(t *testing.T) {
	var finished atomic.Bool
	s := New(10*time.Millisecond, 0)
	s.AddJob("slow", func(context.Context) error {
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
		return nil
	})
	s.Start(context.Background())
	time.Sleep(15 * time.Millisecond) // let the immediate run start
	s.Stop()

	if !finished.Load() {
		t.Errorf("Stop returned before the in-flight run finished")
	}
}

func TestLateTicksPastGraceAreSkipped(t *testing.T) {
	var runs atomic.Int32
	s := New(10*time.Millisecond, 5*time.Millisecond)
	s.AddJob("count", func(context.Context) error {
		runs.Add(1)
		return nil
	})
	// Every clock reading drifts another hour forward, so each tick
	// observes a time far past its expected slot plus the grace period.
	var reads atomic.Int64
	s.now = func() time.Time {
		return time.Now().Add(time.Duration(reads.Add(1)) * time.Hour)
	}
	s.Start(context.Background())
	time.Sleep(80 * time.Millisecond)
	s.Stop()

	// Only the immediate startup run executes; all ~8 ticks misfire.
	if got := runs.Load(); got != 1 {
		t.Errorf("runs = %d, want 1 when every tick misfires", got)
	}
}

func TestContextCancelStopsTheLoop(t *testing.T) {
	var runs atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	s := New(10*time.Millisecond, 0)
	s.AddJob("count", func(context.Context) error {
		runs.Add(1)
		return nil
	})
	s.Start(ctx)
	time.Sleep(25 * time.Millisecond)
	cancel()
	time.Sleep(30 * time.Millisecond)
	before := runs.Load()
	time.Sleep(30 * time.Millisecond)
	if runs.Load() != before {
		t.Errorf("jobs kept running after context cancellation")
	}
	s.Stop()
}
