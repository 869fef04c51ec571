// Package workpool runs independent units of CPU-bound work on a fixed
// number of goroutines and collects their results in input order.
package workpool

import (
	"context"
	"runtime"
	"sync"
)

// job is one unit of work for the pool.
type job struct {
	index int
}

// result pairs a unit's output with its input position.
type result[T any] struct {
	index int
	value T
}

// Workers returns n if positive, otherwise the number of usable CPUs.
func Workers(n int) int {
	if n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}

// Map calls fn for every index in [0, n) using up to workers goroutines and
// returns the results ordered by index, regardless of completion order.
//
// ctx is checked between units, never inside fn. If ctx is cancelled the
// partial results are discarded and ctx.Err() is returned.
func Map[T any](ctx context.Context, workers, n int, fn func(i int) T) ([]T, error) {
	if n == 0 {
		return nil, ctx.Err()
	}
	workers = Workers(workers)
	if workers > n {
		workers = n
	}

	jobs := make(chan job, workers*2)
	results := make(chan result[T], workers*2)

	// Start workers.
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if ctx.Err() != nil {
					return
				}
				r := result[T]{index: j.index, value: fn(j.index)}
				select {
				case results <- r:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	// Feed jobs.
	go func() {
		defer close(jobs)
		for i := 0; i < n; i++ {
			select {
			case jobs <- job{index: i}:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Close results when all workers are done.
	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]T, n)
	received := 0
	for r := range results {
		out[r.index] = r.value
		received++
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if received != n {
		return nil, context.Canceled
	}
	return out, nil
}
