// Package pool runs a function over a slice of inputs on a bounded pool of
// workers and returns one result slot per input, in input order.
//
// The primary type is Runner[T, R]. Each Run call builds its own pool of
// workers, submits every input, waits for all of them, and tears the pool
// down before returning. A unit that fails (returns an error or panics) is
// logged and recorded in its slot; its siblings keep running.
//
// # Basic Usage
//
//	ctx := context.Background()
//	r := pool.NewRunner[int, int](pool.WithWorkerCount(4))
//	results, err := r.Run(ctx, []int{1, 2, 3}, func(ctx context.Context, n int) (int, error) {
//	    return n * n, nil
//	})
//	// err is non-nil only for setup problems.
//	for _, res := range results {
//	    if res.Failed() {
//	        log.Printf("input %d failed: %v", res.Index, res.Err)
//	    }
//	}
//
// # Modes
//
//   - ModeThread: plain goroutines, for I/O-bound work (default)
//   - ModeProcess: one OS thread per worker pinned to a CPU core, for CPU-bound work
//
// Unrecognised Mode values fall back to ModeThread with a warning.
//
// # Batches
//
// RunBatches splits the input with Chunk and runs the chunks strictly one
// after another, sleeping between them. Batching never changes the result:
// the output is flat and ordered exactly like the input.
//
//	results, err := r.RunBatches(ctx, ids, callAPI, 20, 500*time.Millisecond)
//
// # Failure Slots
//
// A failed slot has a non-nil Err of type *TaskError, which records the
// index, the input and the number of attempts. Its cause is the error fn
// returned, a *PanicError, ErrTimedOut (WithDeadline expired) or ErrNotRun
// (context done before the unit started).
//
// # Configuration Options
//
//   - WithWorkerCount(n): number of concurrent workers (default: 8)
//   - WithMode(m): ModeThread or ModeProcess
//   - WithTaskBuffer(n): submission channel buffer (default: worker count)
//   - WithRetryPolicy(maxAttempts, initialDelay): retry failing units
//   - WithBackoff(kind, maxDelay, jitter): retry delay algorithm
//   - WithRateLimit(tasksPerSecond, burst): cap unit start rate
//   - WithDeadline(d): stop waiting for stragglers after d
//   - WithLogger(l): *zap.Logger for run and failure logs
//   - WithProgress(s): progress.Sink advanced once per completed unit
//   - WithOnTaskEnd(fn): observe each unit's final error
//
// The function passed to Run owns whatever it touches: the pool adds no
// shared state between units, so synchronising shared state is the
// caller's job.
package pool
