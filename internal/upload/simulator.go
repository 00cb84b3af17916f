package upload

import (
	"context"
	"math"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	// DefaultDuration is how long a simulated upload takes.
	DefaultDuration = 2000 * time.Millisecond

	// DefaultTickInterval is how often progress advances.
	DefaultTickInterval = 50 * time.Millisecond
)

// Simulator produces fake upload progress driven purely by time.
type Simulator struct {
	clock    clockwork.Clock
	duration time.Duration
	interval time.Duration
}

// NewSimulator creates a simulator that reaches 100 after duration, advancing
// every interval. Non-positive values fall back to the defaults.
func NewSimulator(clock clockwork.Clock, duration, interval time.Duration) *Simulator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if duration <= 0 {
		duration = DefaultDuration
	}
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Simulator{clock: clock, duration: duration, interval: interval}
}

// Steps returns the number of ticks from 0 to 100.
func (s *Simulator) Steps() int {
	return max(int(s.duration/s.interval), 1)
}

// Interval returns the tick interval.
func (s *Simulator) Interval() time.Duration {
	return s.interval
}

// Run is one active simulation.
type Run struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Start begins a simulation. onProgress receives 0 before Start returns and
// then one value per tick, ending with exactly one 100, after which onDone is
// called once. Both callbacks run on the simulation goroutine (except the
// initial 0) and must not call Stop on the returned Run.
func (s *Simulator) Start(onProgress func(int), onDone func()) *Run {
	ctx, cancel := context.WithCancel(context.Background())
	run := &Run{cancel: cancel, done: make(chan struct{})}

	// Created before returning so that a fake clock sees the waiter.
	ticker := s.clock.NewTicker(s.interval)
	steps := s.Steps()

	onProgress(0)

	go func() {
		defer close(run.done)
		defer ticker.Stop()

		step := 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
			}

			// A tick may race with cancellation; cancellation wins.
			if ctx.Err() != nil {
				return
			}

			step++
			if step >= steps {
				onProgress(100)
				onDone()
				return
			}
			onProgress(percent(step, steps))
		}
	}()

	return run
}

// Stop cancels the simulation and waits for its goroutine to exit. No
// progress is delivered after Stop returns. Stop is idempotent.
func (r *Run) Stop() {
	r.cancel()
	<-r.done
}

// Done is closed when the simulation finished or was stopped.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

func percent(step, steps int) int {
	return int(math.Round(float64(step) / float64(steps) * 100))
}
