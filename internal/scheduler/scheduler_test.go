package scheduler_test

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/paydesk/paydesk_backend/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunsJobOnInterval(t *testing.T) {
	var runs atomic.Int32
	job := &scheduler.Job{
		Name:     "count",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context, now time.Time) error {
			runs.Add(1)
			return nil
		},
	}

	s := scheduler.New(slog.Default(), job)
	s.Start(context.Background())
	defer s.Stop()

	require.Eventually(t, func() bool {
		return runs.Load() >= 3
	}, time.Second, 5*time.Millisecond)
}

func TestScheduler_SkipsOverlappingTicks(t *testing.T) {
	release := make(chan struct{})
	var started atomic.Int32
	job := &scheduler.Job{
		Name:     "slow",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context, now time.Time) error {
			started.Add(1)
			<-release
			return nil
		},
	}

	s := scheduler.New(slog.Default(), job)
	s.Start(context.Background())

	// Let several ticks fire while the first run blocks.
	require.Eventually(t, func() bool {
		return started.Load() == 1
	}, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), started.Load())

	close(release)
	s.Stop()
}

func TestScheduler_StopWaitsForInFlightRun(t *testing.T) {
	inRun := make(chan struct{})
	var finished atomic.Bool
	job := &scheduler.Job{
		Name:     "finishing",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context, now time.Time) error {
			select {
			case inRun <- struct{}{}:
			default:
			}
			time.Sleep(30 * time.Millisecond)
			finished.Store(true)
			return nil
		},
	}

	s := scheduler.New(slog.Default(), job)
	s.Start(context.Background())

	<-inRun
	s.Stop()
	assert.True(t, finished.Load())
}
