package runner

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultMaxInFlight caps concurrent tasks when Bounded.MaxInFlight is unset.
const DefaultMaxInFlight = 8

// Bounded launches one goroutine per task but never lets more than
// MaxInFlight run at once.
type Bounded struct {
	MaxInFlight int
}

// Execute runs the batch. Tasks that have not been admitted when ctx is done
// are recorded as failures carrying ctx.Err().
func (b Bounded) Execute(ctx context.Context, n int, task Task) Report {
	if n <= 0 {
		return Report{}
	}

	limit := b.MaxInFlight
	if limit <= 0 {
		limit = DefaultMaxInFlight
	}
	sem := make(chan struct{}, limit)
	errs := make([]error, n)

	var g errgroup.Group

TASKS:
	for i := 0; i < n; i++ {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			for j := i; j < n; j++ {
				errs[j] = ctx.Err()
			}
			break TASKS
		}

		g.Go(func() error {
			defer func() { <-sem }()
			errs[i] = runTask(ctx, task, i)
			return nil
		})
	}

	_ = g.Wait()
	return collect(errs)
}
