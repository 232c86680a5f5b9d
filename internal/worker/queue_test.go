package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ameyrk/wealthledger/internal/worker"
)

// fakeBackfiller records rebuild invocations and can hold the consumer
// inside a rebuild until released.
type fakeBackfiller struct {
	mu      sync.Mutex
	calls   []string
	started chan string
	release chan struct{}
}

func newFakeBackfiller() *fakeBackfiller {
	return &fakeBackfiller{}
}

func (f *fakeBackfiller) Rebuild(userID string) {
	if f.started != nil {
		f.started <- userID
	}
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	f.calls = append(f.calls, userID)
	f.mu.Unlock()
}

func (f *fakeBackfiller) callCount(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, id := range f.calls {
		if id == userID {
			n++
		}
	}
	return n
}

func TestQueueProcessesJobs(t *testing.T) {
	backfiller := newFakeBackfiller()
	q := worker.NewQueue(backfiller, 8, zerolog.Nop())

	q.Submit("user-a")
	q.Submit("user-b")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := q.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	if backfiller.callCount("user-a") != 1 || backfiller.callCount("user-b") != 1 {
		t.Errorf("Expected both users rebuilt once, got %v", backfiller.calls)
	}
}

func TestQueueCoalescesDuplicates(t *testing.T) {
	backfiller := newFakeBackfiller()
	backfiller.started = make(chan string, 4)
	backfiller.release = make(chan struct{})
	q := worker.NewQueue(backfiller, 8, zerolog.Nop())

	// Hold the consumer inside the first rebuild so later submissions
	// arrive while user-b is still waiting in the queue.
	q.Submit("user-a")
	<-backfiller.started

	q.Submit("user-b")
	q.Submit("user-b")
	q.Submit("user-b")

	close(backfiller.release)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := q.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	if got := backfiller.callCount("user-b"); got != 1 {
		t.Errorf("Expected queued duplicates coalesced into 1 rebuild, got %d", got)
	}
}

func TestQueueResubmitDuringRebuild(t *testing.T) {
	backfiller := newFakeBackfiller()
	backfiller.started = make(chan string, 4)
	release := make(chan struct{})
	backfiller.release = release
	q := worker.NewQueue(backfiller, 8, zerolog.Nop())

	q.Submit("user-a")
	<-backfiller.started

	// The rebuild for user-a is running, not pending; this submit must be
	// accepted so trades recorded mid-rebuild are picked up.
	q.Submit("user-a")

	close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := q.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	if got := backfiller.callCount("user-a"); got != 2 {
		t.Errorf("Expected a second rebuild for a submit during the first, got %d", got)
	}
}

func TestQueueShutdown(t *testing.T) {
	t.Run("submit after shutdown is dropped", func(t *testing.T) {
		backfiller := newFakeBackfiller()
		q := worker.NewQueue(backfiller, 8, zerolog.Nop())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := q.Shutdown(ctx); err != nil {
			t.Fatalf("Shutdown failed: %v", err)
		}

		q.Submit("user-a")

		if len(backfiller.calls) != 0 {
			t.Errorf("Expected no rebuilds after shutdown, got %v", backfiller.calls)
		}
	})

	t.Run("expired context abandons the wait", func(t *testing.T) {
		backfiller := newFakeBackfiller()
		backfiller.started = make(chan string, 1)
		backfiller.release = make(chan struct{}) // never released
		q := worker.NewQueue(backfiller, 8, zerolog.Nop())

		q.Submit("user-a")
		<-backfiller.started

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		if err := q.Shutdown(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Expected DeadlineExceeded, got %v", err)
		}
	})
}
