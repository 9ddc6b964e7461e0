// Package dispatch runs blocking store and reconciler calls off the
// interactive loop. Each dispatched operation gets its own goroutine,
// bounded by a weighted semaphore, and reports back through a completion
// queue that the interactive goroutine drains — handlers never run on the
// worker's own goroutine.
package dispatch

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/newguy103/passvault-client/internal/logging"
)

// DefaultMaxWorkers bounds concurrent in-flight operations when the caller
// does not configure a limit.
const DefaultMaxWorkers = 8

// Dispatcher schedules units of work and queues their completions.
type Dispatcher struct {
	sem         *semaphore.Weighted
	completions chan func()
	log         logging.Logger
	wg          sync.WaitGroup
}

// New creates a dispatcher allowing at most maxWorkers concurrent operations.
func New(maxWorkers int64, logger logging.Logger) *Dispatcher {
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	}
	return &Dispatcher{
		sem:         semaphore.NewWeighted(maxWorkers),
		completions: make(chan func(), 64),
		log:         logger.With("component", "dispatch"),
	}
}

// Completions is the queue of pending result deliveries. Exactly one
// completion is queued per dispatched operation; the draining goroutine is
// the only place success/failure handlers execute.
func (d *Dispatcher) Completions() <-chan func() {
	return d.completions
}

// Wait blocks until every dispatched worker has queued its completion.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Do schedules work on a worker goroutine and delivers exactly one of
// onSuccess(value) or onFailure(err), exactly once, through the completion
// queue. The returned channel closes after the handler has run.
//
// ctx only gates admission (waiting for a free worker slot); once started,
// work runs to completion and cannot be cancelled.
func Do[T any](d *Dispatcher, ctx context.Context, work func() (T, error), onSuccess func(T), onFailure func(error)) <-chan struct{} {
	done := make(chan struct{})

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		if err := d.sem.Acquire(ctx, 1); err != nil {
			d.completions <- func() {
				defer close(done)
				onFailure(err)
			}
			return
		}

		value, err := runProtected(d, ctx, work)
		d.sem.Release(1)

		d.completions <- func() {
			defer close(done)
			if err != nil {
				onFailure(err)
				return
			}
			onSuccess(value)
		}
	}()

	return done
}

// runProtected invokes work, converting a panic into an ordinary failure so
// a broken operation cannot take down the process.
func runProtected[T any](d *Dispatcher, ctx context.Context, work func() (T, error)) (value T, err error) {
	defer func() {
		if p := recover(); p != nil {
			d.log.Error(ctx, "worker panicked", "panic", p)
			err = fmt.Errorf("worker panic: %v", p)
		}
	}()
	return work()
}
