package ratelimit

import (
	"context"
	"testing"
	"time"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func TestSlidingWindow_LimitsWithinWindow(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{now: time.Unix(600, 0)}
	limiter := SlidingWindowFactory(clk, NewMemoryCounter(clk), "rl")(3, time.Minute)

	for i, wantRemaining := range []int64{2, 1, 0} {
		res, err := limiter.Allow(ctx, "1.2.3.4")
		if err != nil {
			t.Fatal(err)
		}
		if !res.Allowed || res.Remaining != wantRemaining {
			t.Fatalf("request %d: allowed=%v remaining=%d", i+1, res.Allowed, res.Remaining)
		}
	}

	res, err := limiter.Allow(ctx, "1.2.3.4")
	if err != nil {
		t.Fatal(err)
	}
	if res.Allowed {
		t.Fatal("4th request should be limited")
	}
	if res.RetryAfter != time.Minute {
		t.Fatalf("retry after = %v", res.RetryAfter)
	}

	other, _ := limiter.Allow(ctx, "5.6.7.8")
	if !other.Allowed {
		t.Fatal("keys must be limited independently")
	}
}

func TestSlidingWindow_PreviousWindowIsWeighted(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{now: time.Unix(600, 0)}
	limiter := SlidingWindowFactory(clk, NewMemoryCounter(clk), "rl")(3, time.Minute)

	for range 4 {
		if _, err := limiter.Allow(ctx, "k"); err != nil {
			t.Fatal(err)
		}
	}

	// halfway into the next window the previous 4 hits weigh as 2
	clk.now = time.Unix(690, 0)
	res, _ := limiter.Allow(ctx, "k")
	if !res.Allowed {
		t.Fatal("expected request to fit next to the weighted previous window")
	}
	res, _ = limiter.Allow(ctx, "k")
	if res.Allowed {
		t.Fatal("expected request to be limited")
	}
}

func TestMemoryCounter_Expires(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{now: time.Unix(0, 0)}
	c := NewMemoryCounter(clk)

	if n, _ := c.Incr(ctx, "a", time.Second); n != 1 {
		t.Fatalf("n = %d", n)
	}
	if n, _ := c.Incr(ctx, "a", time.Second); n != 2 {
		t.Fatalf("n = %d", n)
	}
	clk.now = clk.now.Add(time.Second)
	if n, _ := c.Get(ctx, "a"); n != 0 {
		t.Fatalf("expired counter = %d", n)
	}
	if n, _ := c.Incr(ctx, "a", time.Second); n != 1 {
		t.Fatalf("restarted counter = %d", n)
	}
}
