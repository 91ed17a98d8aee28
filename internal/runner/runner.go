// Package runner executes batches of independent tasks and collects
// per-task failures without letting one failure abort its siblings.
//
// Two strategies are provided: WorkerPool, a fixed set of workers sized to
// the available parallelism, and Bounded, one goroutine per task gated by an
// in-flight cap and an optional rate limiter for remote I/O.
package runner

import (
	"context"
	"fmt"
)

// Task processes item i of a batch. Tasks must only write state owned by
// index i.
type Task func(ctx context.Context, i int) error

// Failure is the error returned by the task at Index.
type Failure struct {
	Index int
	Err   error
}

// Report is the outcome of one Execute call. Failures are ordered by Index.
type Report struct {
	Succeeded int
	Failures  []Failure
}

// Failed reports whether the task at index i failed.
func (r Report) Failed(i int) bool {
	for _, f := range r.Failures {
		if f.Index == i {
			return true
		}
	}
	return false
}

// Executor runs n independent tasks and returns once every task has either
// finished or been abandoned because ctx was cancelled. No goroutine started
// by an Executor outlives the Execute call.
type Executor interface {
	Execute(ctx context.Context, n int, task Task) Report
}

// runTask invokes task for i, converting a panic into an error so a single
// misbehaving item cannot take the batch down.
func runTask(ctx context.Context, task Task, i int) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %d panicked: %v", i, r)
		}
	}()
	return task(ctx, i)
}

// collect builds a Report from the per-index error slots.
func collect(errs []error) Report {
	var rep Report
	for i, err := range errs {
		if err != nil {
			rep.Failures = append(rep.Failures, Failure{Index: i, Err: err})
			continue
		}
		rep.Succeeded++
	}
	return rep
}
