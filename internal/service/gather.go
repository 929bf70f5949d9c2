package service

import (
	"context"
	"sync"
	"time"
)

// gathered pairs one fan-out input with its outcome.
type gathered[I, O any] struct {
	In  I
	Out O
	Err error
}

// gatherAll runs fn once per item concurrently and waits for every task to
// finish. Failures never abort siblings; each item's error is reported in
// its slot. Results keep input order, so downstream merging stays
// deterministic regardless of completion order. A positive stagger delays
// each launch to avoid bursting rate-limited providers.
func gatherAll[I, O any](ctx context.Context, items []I, stagger time.Duration, fn func(context.Context, I) (O, error)) []gathered[I, O] {
	results := make([]gathered[I, O], len(items))
	var wg sync.WaitGroup
	for i, item := range items {
		if stagger > 0 && i > 0 {
			time.Sleep(stagger)
		}
		wg.Add(1)
		go func(i int, item I) {
			defer wg.Done()
			out, err := fn(ctx, item)
			results[i] = gathered[I, O]{In: item, Out: out, Err: err}
		}(i, item)
	}
	wg.Wait()
	return results
}
