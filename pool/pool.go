// Package pool runs a stage function over a channel on several goroutines
// and hands results downstream in input order.
package pool

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Func processes one item. worker identifies the calling goroutine, so a
// stage can keep per-worker scratch state indexed by it.
type Func[In, Out any] func(worker int, v In) (Out, error)

type job[T any] struct {
	seq uint64
	v   T
}

// Ordered reads in until it is closed, applies fn on the given number of
// workers and writes the results to out in the order they were read. It
// does not close out. The first error from fn cancels the stage and is
// returned.
func Ordered[In, Out any](ctx context.Context, workers int, in <-chan In, out chan<- Out, fn Func[In, Out]) error {
	workers = max(workers, 1)
	g, ctx := errgroup.WithContext(ctx)
	jobs := make(chan job[In], workers)
	results := make(chan job[Out], workers)

	g.Go(func() error {
		defer close(jobs)
		var seq uint64
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case v, ok := <-in:
				if !ok {
					return nil
				}
				select {
				case jobs <- job[In]{seq, v}:
					seq++
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	})

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			for j := range jobs {
				r, err := fn(w, j.v)
				if err != nil {
					return err
				}
				select {
				case results <- job[Out]{j.seq, r}:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		wg.Wait()
		close(results)
		return nil
	})

	g.Go(func() error {
		pending := make(map[uint64]Out, workers)
		var next uint64
		for r := range results {
			pending[r.seq] = r.v
			for {
				v, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				select {
				case out <- v:
				case <-ctx.Done():
					return ctx.Err()
				}
				next++
			}
		}
		return nil
	})
	return g.Wait()
}
