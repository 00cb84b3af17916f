package upload

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// waitTicker blocks until the simulator's ticker is registered with fc.
func waitTicker(t *testing.T, fc *clockwork.FakeClock) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, fc.BlockUntilContext(ctx, 1), "ticker never registered")
}

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for value")
		var zero T
		return zero
	}
}

func TestSimulator_Steps(t *testing.T) {
	tests := []struct {
		duration, interval time.Duration
		want               int
	}{
		{2000 * time.Millisecond, 50 * time.Millisecond, 40},
		{time.Second, 100 * time.Millisecond, 10},
		{10 * time.Millisecond, 50 * time.Millisecond, 1},
		{0, 0, 40},
	}

	for _, tt := range tests {
		sim := NewSimulator(clockwork.NewFakeClock(), tt.duration, tt.interval)
		if got := sim.Steps(); got != tt.want {
			t.Errorf("Steps(%v, %v) = %d, want %d", tt.duration, tt.interval, got, tt.want)
		}
	}
}

func TestSimulator_FullRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	fc := clockwork.NewFakeClock()
	sim := NewSimulator(fc, DefaultDuration, DefaultTickInterval)

	progress := make(chan int, 64)
	done := make(chan struct{}, 2)
	run := sim.Start(
		func(p int) { progress <- p },
		func() { done <- struct{}{} },
	)

	got := []int{recv(t, progress)}
	for i := 0; i < sim.Steps(); i++ {
		waitTicker(t, fc)
		fc.Advance(sim.Interval())
		got = append(got, recv(t, progress))
	}

	recv(t, done)
	<-run.Done()

	// 40 steps of 2.5% round to 3, 5, 8, 10, ... so check the shape.
	require.Len(t, got, 41)
	require.Equal(t, 0, got[0])
	require.Equal(t, 100, got[len(got)-1])
	for i := 1; i < len(got); i++ {
		require.GreaterOrEqual(t, got[i], got[i-1], "progress decreased at %d: %v", i, got)
	}

	hundreds := 0
	for _, p := range got {
		if p == 100 {
			hundreds++
		}
	}
	require.Equal(t, 1, hundreds, "100 must be reported exactly once: %v", got)
	require.Empty(t, done, "done signalled more than once")
}

func TestSimulator_TwentyStepsGoByFive(t *testing.T) {
	fc := clockwork.NewFakeClock()
	sim := NewSimulator(fc, time.Second, 50*time.Millisecond)

	progress := make(chan int, 64)
	done := make(chan struct{}, 1)
	sim.Start(func(p int) { progress <- p }, func() { done <- struct{}{} })

	got := []int{recv(t, progress)}
	for i := 0; i < sim.Steps(); i++ {
		waitTicker(t, fc)
		fc.Advance(sim.Interval())
		got = append(got, recv(t, progress))
	}
	recv(t, done)

	want := []int{0}
	for p := 5; p <= 100; p += 5 {
		want = append(want, p)
	}
	require.Equal(t, want, got)
}

func TestSimulator_StopDeliversNothingAfter(t *testing.T) {
	defer goleak.VerifyNone(t)

	fc := clockwork.NewFakeClock()
	sim := NewSimulator(fc, DefaultDuration, DefaultTickInterval)

	progress := make(chan int, 64)
	done := make(chan struct{}, 1)
	run := sim.Start(func(p int) { progress <- p }, func() { done <- struct{}{} })
	recv(t, progress)

	for i := 0; i < 3; i++ {
		waitTicker(t, fc)
		fc.Advance(sim.Interval())
		recv(t, progress)
	}

	run.Stop()
	fc.Advance(DefaultDuration)

	require.Empty(t, progress)
	require.Empty(t, done)

	// Stop is idempotent.
	run.Stop()
}
