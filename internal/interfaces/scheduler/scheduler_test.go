package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerRunsJobsWithoutOverlap(t *testing.T) {
	t.Parallel()

	var (
		runs    atomic.Int32
		active  atomic.Int32
		overlap atomic.Bool
	)
	job := Job{
		Name:         "alerts",
		StartupDelay: 5 * time.Millisecond,
		Interval:     5 * time.Millisecond,
		Timeout:      time.Second,
		Run: func(ctx context.Context) error {
			if active.Add(1) > 1 {
				overlap.Store(true)
			}
			defer active.Add(-1)
			runs.Add(1)
			time.Sleep(12 * time.Millisecond)
			return nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		New(nil, job).Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.False(t, overlap.Load())
}

func TestSchedulerAppliesTimeoutAndSurvivesFailures(t *testing.T) {
	t.Parallel()

	var (
		runs        atomic.Int32
		sawDeadline atomic.Bool
	)
	job := Job{
		Name:     "flaky",
		Interval: 5 * time.Millisecond,
		Timeout:  20 * time.Millisecond,
		Run: func(ctx context.Context) error {
			n := runs.Add(1)
			if _, ok := ctx.Deadline(); ok {
				sawDeadline.Store(true)
			}
			switch n {
			case 1:
				return errors.New("upstream down")
			case 2:
				panic("boom")
			}
			return nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go New(nil, job).Run(ctx)

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	assert.True(t, sawDeadline.Load())
}

func TestSchedulerStopsDuringStartupDelay(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	New(nil, Job{
		Name:         "never",
		StartupDelay: time.Hour,
		Interval:     time.Hour,
		Run: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	}).Run(ctx)

	assert.Zero(t, runs.Load())
}
