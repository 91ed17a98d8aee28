package runner_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pankaj-dahiya-devops/shcx/internal/runner"
)

func executors() map[string]runner.Executor {
	return map[string]runner.Executor{
		"pool":    runner.WorkerPool{Workers: 3},
		"bounded": runner.Bounded{MaxInFlight: 3},
	}
}

// ── partial failure ──────────────────────────────────────────────────────────

func TestExecute_PartialFailureDoesNotAbortSiblings(t *testing.T) {
	for name, ex := range executors() {
		t.Run(name, func(t *testing.T) {
			done := make([]bool, 10)
			rep := ex.Execute(context.Background(), 10, func(_ context.Context, i int) error {
				if i == 4 {
					return errors.New("boom")
				}
				done[i] = true
				return nil
			})

			if rep.Succeeded != 9 {
				t.Errorf("Succeeded = %d; want 9", rep.Succeeded)
			}
			if len(rep.Failures) != 1 || rep.Failures[0].Index != 4 {
				t.Fatalf("Failures = %+v; want one failure at index 4", rep.Failures)
			}
			if !rep.Failed(4) || rep.Failed(3) {
				t.Error("Failed() disagrees with Failures")
			}
			for i, ok := range done {
				if i != 4 && !ok {
					t.Errorf("task %d did not run", i)
				}
			}
		})
	}
}

func TestExecute_PanicBecomesFailure(t *testing.T) {
	for name, ex := range executors() {
		t.Run(name, func(t *testing.T) {
			rep := ex.Execute(context.Background(), 3, func(_ context.Context, i int) error {
				if i == 1 {
					panic("bad item")
				}
				return nil
			})
			if rep.Succeeded != 2 || len(rep.Failures) != 1 {
				t.Fatalf("report = %+v; want 2 succeeded, 1 failure", rep)
			}
		})
	}
}

func TestExecute_Empty(t *testing.T) {
	for name, ex := range executors() {
		t.Run(name, func(t *testing.T) {
			rep := ex.Execute(context.Background(), 0, func(context.Context, int) error {
				t.Fatal("task must not run")
				return nil
			})
			if rep.Succeeded != 0 || len(rep.Failures) != 0 {
				t.Errorf("report = %+v; want zero", rep)
			}
		})
	}
}

// ── cancellation ─────────────────────────────────────────────────────────────

func TestExecute_CancelledContextFailsEveryTask(t *testing.T) {
	for name, ex := range executors() {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			var ran atomic.Int32
			rep := ex.Execute(ctx, 5, func(context.Context, int) error {
				ran.Add(1)
				return nil
			})

			if ran.Load() != 0 {
				t.Errorf("%d tasks ran after cancellation", ran.Load())
			}
			if len(rep.Failures) != 5 {
				t.Fatalf("Failures = %d; want 5", len(rep.Failures))
			}
			for _, f := range rep.Failures {
				if !errors.Is(f.Err, context.Canceled) {
					t.Errorf("failure %d = %v; want context.Canceled", f.Index, f.Err)
				}
			}
		})
	}
}

// ── sizing ───────────────────────────────────────────────────────────────────

func TestWorkerPool_Size(t *testing.T) {
	if got := (runner.WorkerPool{Workers: 8}).Size(3); got != 3 {
		t.Errorf("Size(3) with 8 workers = %d; want 3", got)
	}
	if got := (runner.WorkerPool{Workers: 2}).Size(10); got != 2 {
		t.Errorf("Size(10) with 2 workers = %d; want 2", got)
	}
	if got := (runner.WorkerPool{}).Size(1000); got < 1 {
		t.Errorf("default Size = %d; want >= 1", got)
	}
}

func TestBounded_RespectsMaxInFlight(t *testing.T) {
	var inFlight, peak atomic.Int32
	ex := runner.Bounded{MaxInFlight: 2}

	rep := ex.Execute(context.Background(), 12, func(context.Context, int) error {
		cur := inFlight.Add(1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return nil
	})

	if rep.Succeeded != 12 {
		t.Fatalf("Succeeded = %d; want 12", rep.Succeeded)
	}
	if peak.Load() > 2 {
		t.Errorf("peak in-flight = %d; want <= 2", peak.Load())
	}
}
