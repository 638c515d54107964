package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestBlockingPool_DrainsJobs(t *testing.T) {
	for _, size := range []int{-1, 0, 1, 4} {
		jobs := make(chan int, 100)
		for i := range 100 {
			jobs <- i
		}
		close(jobs)

		var sum atomic.Int64
		BlockingPool(context.Background(), size, jobs, func(_ context.Context, n int) {
			sum.Add(int64(n))
		})
		if got := sum.Load(); got != 4950 {
			t.Errorf("size=%d: sum = %d, want 4950", size, got)
		}
	}
}

func TestBlockingPool_SurvivesPanics(t *testing.T) {
	jobs := make(chan int, 10)
	for i := range 10 {
		jobs <- i
	}
	close(jobs)

	var done atomic.Int64
	BlockingPool(context.Background(), 1, jobs, func(_ context.Context, n int) {
		if n%2 == 0 {
			panic("even job")
		}
		done.Add(1)
	})
	if got := done.Load(); got != 5 {
		t.Errorf("completed = %d, want 5", got)
	}
}

func TestBlockingPool_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	jobs := make(chan int)

	finished := make(chan struct{})
	go func() {
		BlockingPool(ctx, 3, jobs, func(context.Context, int) {})
		close(finished)
	}()

	cancel()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("pool did not stop after cancellation")
	}
}
