// Package workerpool offloads CPU-bound work from the main request-dispatch
// path onto a bounded pool, so heavy work never blocks the main scheduler.
// The validation pipeline runs on it; embedding generation does not (the
// store calls the embedder directly on the request goroutine, before
// opening its write transaction). It is built on golang.org/x/sync/semaphore
// (bounded queue) and
// golang.org/x/sync/errgroup (fan-out with first-error cancellation),
// following the same pattern AKJUS-bsc-erigon and juju-juju use for
// bounded background work.
package workerpool

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Pool bounds concurrent CPU-bound submissions. Build one with New: a
// zero-value Pool has no semaphore, and Run on it panics.
type Pool struct {
	sem *semaphore.Weighted
}

// New creates a Pool with the given bounded concurrency.
func New(concurrency int) *Pool {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(concurrency))}
}

// Run executes fn inside the pool, blocking (cooperatively, via the
// semaphore) until a slot is free or ctx is done. If ctx is cancelled
// before fn starts, Run returns ctx.Err() without running fn.
func (p *Pool) Run(ctx context.Context, fn func(context.Context) error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)
	return fn(ctx)
}

// RunAll runs one fn per item concurrently, bounded by the pool, and
// returns the first error encountered (cancelling the rest via the
// errgroup's derived context) — suitable for per-cell validation/
// embedding fan-out within a single request.
func RunAll[T any](ctx context.Context, p *Pool, items []T, fn func(context.Context, int, T) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			return p.Run(gctx, func(c context.Context) error {
				return fn(c, i, item)
			})
		})
	}
	return g.Wait()
}
