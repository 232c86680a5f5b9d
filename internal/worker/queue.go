// Package worker provides the single-consumer job queue that serializes
// history rebuilds. One rebuild materializes O(days x symbols) tables in
// memory, so at most one runs at a time process-wide; rebuilds for other
// users queue behind it.
package worker

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Backfiller runs one user's history rebuild to completion.
type Backfiller interface {
	Rebuild(userID string)
}

// Queue accepts per-user rebuild jobs and processes them serially on a
// single consumer goroutine. A user already waiting in the queue is not
// enqueued twice; a submit that arrives while that user's rebuild is
// running is enqueued again, so trades recorded mid-rebuild are never lost.
type Queue struct {
	backfiller Backfiller
	jobs       chan string
	done       chan struct{}
	log        zerolog.Logger

	mu      sync.Mutex
	pending map[string]bool
	closed  bool
}

// NewQueue creates a queue with the given buffer size and starts its
// consumer goroutine.
func NewQueue(backfiller Backfiller, size int, log zerolog.Logger) *Queue {
	q := &Queue{
		backfiller: backfiller,
		jobs:       make(chan string, size),
		done:       make(chan struct{}),
		log:        log,
		pending:    make(map[string]bool),
	}
	go q.consume()
	return q
}

// Submit enqueues a rebuild for the user. Non-blocking: a full queue drops
// the job with a warning, and a job for a user already queued is coalesced.
func (q *Queue) Submit(userID string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed || q.pending[userID] {
		return
	}

	select {
	case q.jobs <- userID:
		q.pending[userID] = true
	default:
		q.log.Warn().Str("user_id", userID).Msg("backfill queue full, job dropped")
	}
}

// Shutdown stops accepting jobs and waits for queued rebuilds to drain, or
// for the context to expire, whichever comes first.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) consume() {
	defer close(q.done)
	for userID := range q.jobs {
		// Clear the pending mark before running so a submit arriving
		// mid-rebuild re-enqueues rather than being swallowed.
		q.mu.Lock()
		delete(q.pending, userID)
		q.mu.Unlock()

		q.backfiller.Rebuild(userID)
	}
}
