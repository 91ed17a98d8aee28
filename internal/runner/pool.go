package runner

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// WorkerPool runs tasks on a fixed number of long-lived workers.
// Workers <= 0 means runtime.GOMAXPROCS(0).
type WorkerPool struct {
	Workers int
}

// Size returns the number of workers Execute starts for a batch of n tasks.
func (p WorkerPool) Size(n int) int {
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}
	return workers
}

// Execute feeds task indices to the workers over an unbuffered channel.
// Once ctx is done the remaining indices are still drained, each recorded as
// a failure carrying ctx.Err(), so every index is accounted for.
func (p WorkerPool) Execute(ctx context.Context, n int, task Task) Report {
	if n <= 0 {
		return Report{}
	}

	errs := make([]error, n)
	jobs := make(chan int)

	var g errgroup.Group
	for w := 0; w < p.Size(n); w++ {
		g.Go(func() error {
			for i := range jobs {
				errs[i] = runTask(ctx, task, i)
			}
			return nil
		})
	}

	// Close and join on every path so workers never leak.
	func() {
		defer close(jobs)
		for i := 0; i < n; i++ {
			jobs <- i
		}
	}()
	_ = g.Wait()

	return collect(errs)
}
