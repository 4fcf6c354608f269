package pool

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// ErrClosed is returned by Go once the pool has stopped accepting work,
// either because Wait was called or because a task failed.
var ErrClosed = errors.New("pool: closed")

// Task is one unit of work. A non-nil error aborts the pool: the task
// context is cancelled and Wait returns the error.
type Task func(ctx context.Context) error

// Pool runs tasks with a hard ceiling on how many execute at once.
type Pool struct {
	sem      *semaphore.Weighted
	group    *errgroup.Group
	taskCtx  context.Context
	inFlight atomic.Int64
	peak     atomic.Int64
}

// New creates a pool that runs at most size tasks concurrently. Tasks receive
// a context derived from taskCtx that is cancelled only when a task fails;
// callers that want in-flight work to survive an interrupt should pass a
// context detached from the interrupt signal.
func New(taskCtx context.Context, size int) *Pool {
	if size <= 0 {
		size = 1
	}
	if taskCtx == nil {
		taskCtx = context.Background()
	}
	group, gctx := errgroup.WithContext(taskCtx)
	return &Pool{
		sem:     semaphore.NewWeighted(int64(size)),
		group:   group,
		taskCtx: gctx,
	}
}

// Go blocks until a slot is free, then starts task in its own goroutine.
// It returns ctx.Err() if ctx ends while waiting, or ErrClosed if a previous
// task has failed. No task is started in either case.
func (p *Pool) Go(ctx context.Context, task Task) error {
	if err := p.taskCtx.Err(); err != nil {
		return ErrClosed
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	// Acquire can succeed on an already-done ctx when a slot is free.
	if err := ctx.Err(); err != nil {
		p.sem.Release(1)
		return err
	}
	if p.taskCtx.Err() != nil {
		p.sem.Release(1)
		return ErrClosed
	}

	current := p.inFlight.Add(1)
	for {
		peak := p.peak.Load()
		if current <= peak || p.peak.CompareAndSwap(peak, current) {
			break
		}
	}

	p.group.Go(func() error {
		defer func() {
			p.inFlight.Add(-1)
			p.sem.Release(1)
		}()
		return task(p.taskCtx)
	})
	return nil
}

// Wait blocks until every started task has returned and reports the first
// task error, if any.
func (p *Pool) Wait() error {
	return p.group.Wait()
}

// Done is closed when a task fails or Wait returns.
func (p *Pool) Done() <-chan struct{} {
	return p.taskCtx.Done()
}

// Peak returns the highest number of tasks that ever ran at once.
func (p *Pool) Peak() int {
	return int(p.peak.Load())
}
