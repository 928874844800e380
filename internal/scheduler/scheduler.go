// Package scheduler provides the process-wide periodic timer that
// drives background jobs. One ticker fans out to every registered job
// with two guarantees: at most one instance of a job runs at a time
// (a tick that overlaps a still-running prior tick is skipped, not
// queued), and ticks that fire later than the misfire grace period are
// dropped instead of being replayed.
package scheduler

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// JobFunc is a single run of a background job. Implementations should
// honor ctx cancellation and return an error only for failures worth
// logging; the scheduler never retries a run.
type JobFunc func(ctx context.Context) error

type job struct {
	name    string
	run     JobFunc
	running atomic.Bool
}

// Scheduler owns the ticker and the registered jobs. Construct it with
// New, register jobs before Start, and Stop it during shutdown. It is
// created and owned by the process startup sequence; there is no global
// instance.
type Scheduler struct {
	interval time.Duration
	grace    time.Duration // misfire grace period
	jobs     []*job
	stopOnce sync.Once
	stopChan chan struct{}
	wg       sync.WaitGroup
	now      func() time.Time // injected for tests
}

// New returns a scheduler ticking at the given interval. Ticks that
// arrive more than grace past their expected time are treated as
// misfires and skipped.
func New(interval, grace time.Duration) *Scheduler {
	return &Scheduler{
		interval: interval,
		grace:    grace,
		stopChan: make(chan struct{}),
		now:      time.Now,
	}
}

// AddJob registers a named job. Must be called before Start.
func (s *Scheduler) AddJob(name string, fn JobFunc) {
	s.jobs = append(s.jobs, &job{name: name, run: fn})
}

// Start launches the ticker loop. Jobs run once immediately so a
// restarted process catches up on due transitions without waiting a
// full interval.
func (s *Scheduler) Start(ctx context.Context) {
	log.Printf("scheduler: starting, interval=%s grace=%s jobs=%d", s.interval, s.grace, len(s.jobs))
	s.wg.Add(1)
	go s.loop(ctx)
}

// Stop signals the loop to exit and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	log.Printf("scheduler: stopped")
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	expected := s.now().Add(s.interval)
	for {
		select {
		case <-ticker.C:
			now := s.now()
			if s.grace > 0 && now.After(expected.Add(s.grace)) {
				log.Printf("scheduler: tick misfired by %s, skipping run", now.Sub(expected))
			} else {
				s.tick(ctx)
			}
			expected = now.Add(s.interval)
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// tick dispatches every job that is not already running. The dispatch is
// asynchronous so one slow job cannot delay the others, but each job's
// running flag guarantees a single in-flight instance.
func (s *Scheduler) tick(ctx context.Context) {
	for _, j := range s.jobs {
		if !j.running.CompareAndSwap(false, true) {
			log.Printf("scheduler: job %q still running, coalescing tick", j.name)
			continue
		}
		s.wg.Add(1)
		go func(j *job) {
			defer s.wg.Done()
			defer j.running.Store(false)
			if err := j.run(ctx); err != nil {
				log.Printf("scheduler: job %q failed: %v", j.name, err)
			}
		}(j)
	}
}
