// Package worker runs independent claim jobs concurrently. Claims share no
// mutable state, so whole-claim parallelism never changes per-claim results.
package worker

import (
	"context"
	"sync"
)

// Result pairs a job's index with its outcome.
type Result[R any] struct {
	Index int
	Value R
	Err   error
}

// Run executes fn for every job using at most workers goroutines, returning
// results in input order. A cancelled context marks the remaining jobs with
// ctx.Err() without starting them.
func Run[J, R any](ctx context.Context, workers int, jobs []J, fn func(context.Context, J) (R, error)) []Result[R] {
	if workers <= 0 {
		workers = 1
	}

	results := make([]Result[R], len(jobs))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, job := range jobs {
		wg.Add(1)
		go func(idx int, j J) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				results[idx] = Result[R]{Index: idx, Err: ctx.Err()}
				return
			case sem <- struct{}{}:
			}
			defer func() { <-sem }()

			v, err := fn(ctx, j)
			results[idx] = Result[R]{Index: idx, Value: v, Err: err}
		}(i, job)
	}

	wg.Wait()
	return results
}
