package favorites

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mmcdole/atelier/internal/domain"
)

func TestDispatcher_ReportsEveryTask(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{Workers: 3, QueueSize: 16}, quietLogger())
	defer d.Close()

	boom := errors.New("boom")
	var mu sync.Mutex
	results := make(map[domain.FavoriteID]error)

	for i := 1; i <= 10; i++ {
		id := domain.FavoriteID(i)
		d.Submit(Task{Op: domain.OpAdd, ID: id, Run: func(ctx context.Context) error {
			if id%2 == 0 {
				return boom
			}
			return nil
		}}, func(res domain.RemoteResult) {
			mu.Lock()
			results[res.ID] = res.Err
			mu.Unlock()
		})
	}
	d.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(results) != 10 {
		t.Fatalf("got %d results, want 10", len(results))
	}
	for id, err := range results {
		if id%2 == 0 && !errors.Is(err, boom) {
			t.Errorf("task %d error = %v, want boom", id, err)
		}
		if id%2 == 1 && err != nil {
			t.Errorf("task %d error = %v, want nil", id, err)
		}
	}
}

func TestDispatcher_QueueFull(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{Workers: 1, QueueSize: 1}, quietLogger())
	defer d.Close()

	release := make(chan struct{})
	started := make(chan struct{})
	d.Submit(Task{Op: domain.OpAdd, ID: 1, Run: func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	}}, nil)
	<-started

	// Worker is busy; one task fits in the queue, the next is rejected.
	d.Submit(Task{Op: domain.OpAdd, ID: 2, Run: func(ctx context.Context) error { return nil }}, nil)

	var rejected domain.RemoteResult
	d.Submit(Task{Op: domain.OpAdd, ID: 3, Run: func(ctx context.Context) error { return nil }}, func(res domain.RemoteResult) {
		rejected = res
	})
	if !errors.Is(rejected.Err, ErrQueueFull) || rejected.ID != 3 {
		t.Fatalf("rejected result = %+v, want ErrQueueFull for id 3", rejected)
	}

	close(release)
	d.Wait()
}

func TestDispatcher_SubmitAfterClose(t *testing.T) {
	d := NewDispatcher(DefaultDispatcherConfig(), quietLogger())
	d.Close()
	d.Close()

	var got error
	d.Submit(Task{Op: domain.OpRemove, ID: 4, Run: func(ctx context.Context) error {
		t.Error("task should not run after Close")
		return nil
	}}, func(res domain.RemoteResult) { got = res.Err })

	if !errors.Is(got, ErrDispatcherClosed) {
		t.Fatalf("error = %v, want ErrDispatcherClosed", got)
	}
}

func TestDispatcher_CloseDrainsQueue(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{Workers: 1, QueueSize: 8}, quietLogger())

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		d.Submit(Task{Op: domain.OpAdd, Run: func(ctx context.Context) error {
			ran.Add(1)
			return nil
		}}, nil)
	}
	d.Close()

	if got := ran.Load(); got != 5 {
		t.Fatalf("ran %d tasks before Close returned, want 5", got)
	}
}

func TestDispatcher_TimeoutCancelsCall(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{Workers: 1, QueueSize: 1, Timeout: 20 * time.Millisecond}, quietLogger())
	defer d.Close()

	var got error
	d.Submit(Task{Op: domain.OpFetchAll, Run: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}, func(res domain.RemoteResult) { got = res.Err })
	d.Wait()

	if !errors.Is(got, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want deadline exceeded", got)
	}
}

func TestDispatcher_RateLimit(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{Workers: 1, QueueSize: 8, RateLimit: 50}, quietLogger())
	defer d.Close()

	start := time.Now()
	for i := 0; i < 4; i++ {
		d.Submit(Task{Op: domain.OpAdd, Run: func(ctx context.Context) error { return nil }}, nil)
	}
	d.Wait()

	// burst of 1, then 3 more at 50/s
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Fatalf("4 calls at 50/s finished in %v, expected throttling", elapsed)
	}
}
