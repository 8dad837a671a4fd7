package stats

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestCountersIncrAndGet(t *testing.T) {
	c := NewCounters()
	c.Incr("processed", 1)
	c.Incr("processed", 2)
	c.Incr("failed", 1)

	if got := c.Get("processed"); got != 3 {
		t.Errorf("Get(processed) = %d, want 3", got)
	}
	if got := c.Get("failed"); got != 1 {
		t.Errorf("Get(failed) = %d, want 1", got)
	}
	if got := c.Get("unseen"); got != 0 {
		t.Errorf("Get(unseen) = %d, want 0", got)
	}
}

func TestCountersSnapshotIsCopy(t *testing.T) {
	c := NewCounters()
	c.Incr("a", 5)

	snap := c.Snapshot()
	snap["a"] = 999
	if got := c.Get("a"); got != 5 {
		t.Errorf("Snapshot mutation leaked into counters: Get(a) = %d, want 5", got)
	}
}

func TestRunWorkersProcessesAllItems(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	var sum int64

	err := RunWorkers(context.Background(), items, 2, func(ctx context.Context, n int) error {
		atomic.AddInt64(&sum, int64(n))
		return nil
	})
	if err != nil {
		t.Fatalf("RunWorkers: %v", err)
	}
	if sum != 15 {
		t.Errorf("sum = %d, want 15", sum)
	}
}

func TestRunWorkersPropagatesFirstError(t *testing.T) {
	items := []int{1, 2, 3}
	wantErr := errors.New("boom")

	err := RunWorkers(context.Background(), items, 1, func(ctx context.Context, n int) error {
		if n == 2 {
			return wantErr
		}
		return nil
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("RunWorkers error = %v, want %v", err, wantErr)
	}
}

func TestRunWorkersRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := []int{1, 2, 3}
	var ran int64
	err := RunWorkers(ctx, items, 1, func(ctx context.Context, n int) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			atomic.AddInt64(&ran, 1)
			return nil
		}
	})
	if err == nil {
		t.Error("expected error from canceled context")
	}
}
