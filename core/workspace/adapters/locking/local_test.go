package locking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"remixfs/core/workspace/domain"
)

func TestLocal_SerialisesSameKey(t *testing.T) {
	l := NewLocal(0)
	var (
		wg      sync.WaitGroup
		counter int
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.WithLock(context.Background(), "workspace:1", func(context.Context) error {
				v := counter
				time.Sleep(time.Microsecond)
				counter = v + 1
				return nil
			})
		}()
	}
	wg.Wait()
	if counter != 50 {
		t.Fatalf("counter = %d, want 50", counter)
	}
	if len(l.locks) != 0 {
		t.Fatalf("%d lock entries leaked", len(l.locks))
	}
}

func TestLocal_TimeoutIsBusy(t *testing.T) {
	l := NewLocal(20 * time.Millisecond)
	held := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		_ = l.WithLock(context.Background(), "k", func(context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	err := l.WithLock(context.Background(), "k", func(context.Context) error {
		t.Error("fn must not run while the lock is held")
		return nil
	})
	if !errors.Is(err, domain.ErrBusy) {
		t.Fatalf("err = %v, want ErrBusy", err)
	}

	if err := l.WithLock(context.Background(), "other", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("other key: %v", err)
	}

	close(release)
	<-done
}

func TestLocal_CallerCancel(t *testing.T) {
	l := NewLocal(time.Minute)
	held := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = l.WithLock(context.Background(), "k", func(context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := l.WithLock(ctx, "k", func(context.Context) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestLocal_ReturnsFnError(t *testing.T) {
	l := NewLocal(0)
	want := errors.New("boom")
	if err := l.WithLock(context.Background(), "k", func(context.Context) error { return want }); !errors.Is(err, want) {
		t.Fatalf("err = %v", err)
	}
}
