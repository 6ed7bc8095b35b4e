// Package worker fans independent jobs out to a bounded set of goroutines
// and collects their results in input order. The task manager uses it to
// write the finalized wizard documents and the slash-command files.
package worker

import (
	"context"
	"runtime"
	"sync"
)

// Result pairs a processed value with its original index to preserve ordering.
type Result[Out any] struct {
	Index int
	Value Out
	Err   error
}

// Pool runs a function over a slice of inputs with bounded concurrency.
type Pool[In, Out any] struct {
	concurrency int
}

// NewPool creates a worker pool with the given concurrency.
// If concurrency <= 0, defaults to runtime.NumCPU().
func NewPool[In, Out any](concurrency int) *Pool[In, Out] {
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	return &Pool[In, Out]{concurrency: concurrency}
}

// Process applies fn to every item and returns results in input order.
// Errors are captured per result rather than aborting the batch. Items not
// yet started when ctx is cancelled get ctx.Err() as their error.
func (p *Pool[In, Out]) Process(ctx context.Context, items []In, fn func(context.Context, In) (Out, error)) []Result[Out] {
	if len(items) == 0 {
		return nil
	}

	workers := min(p.concurrency, len(items))

	jobs := make(chan int, len(items))
	results := make([]Result[Out], len(items))
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i].Index = i
				if err := ctx.Err(); err != nil {
					results[i].Err = err
					continue
				}
				results[i].Value, results[i].Err = fn(ctx, items[i])
			}
		}()
	}

	for i := range items {
		jobs <- i
	}
	close(jobs)

	wg.Wait()

	return results
}

// FirstError returns the error of the lowest-index failed result, or nil.
func FirstError[Out any](results []Result[Out]) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}
