package pool

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/utkarsh5026/fanout/internal/backoff"
	"github.com/utkarsh5026/fanout/internal/cpu"
	"github.com/utkarsh5026/fanout/progress"
)

// Runner fans a ProcessFunc out over a slice of inputs on a bounded pool
// of workers. A Runner holds only configuration: every Run call creates
// its own pool and tears it down before returning, so one Runner may be
// used for many runs, including concurrent ones.
//
// Type parameters:
//   - T: The input task type
//   - R: The result type
type Runner[T any, R any] struct {
	conf    *config
	backoff backoff.Strategy
	log     *zap.Logger
}

// NewRunner creates a Runner with the given options.
//
// Default configuration:
//   - workerCount: DefaultWorkerCount (runtime.NumCPU() in ModeProcess)
//   - taskBuffer: equal to workerCount
//   - mode: ModeThread
//   - maxAttempts: 1 (no retries)
//   - logger: zap.NewNop()
//   - progress: progress.Nop
//
// Example:
//
//	r := NewRunner[string, int](
//	    WithWorkerCount(16),
//	    WithLogger(logger),
//	    WithProgress(progress.NewBar()),
//	)
//	results, err := r.Run(ctx, urls, fetchSize)
func NewRunner[T any, R any](opts ...Option) *Runner[T, R] {
	cfg := newConfig(opts...)
	return &Runner[T, R]{
		conf:    cfg,
		backoff: backoff.New(cfg.backoffKind, cfg.initialDelay, cfg.maxDelay, cfg.jitter),
		log:     cfg.logger,
	}
}

// execution carries the per-call parameters that differ between a plain
// Run and one batch of RunBatches.
type execution struct {
	mode   Mode
	sink   progress.Sink
	offset int
	stop   <-chan struct{}
}

// Run executes fn once for every element of items and blocks until every
// unit has finished.
//
// The returned slice always has len(items) elements and results[i] belongs
// to items[i], whatever order the units completed in. A unit that returns
// an error or panics is logged and recorded in its slot; it never stops
// other units and never makes Run return an error.
//
// Run returns a non-nil error only for setup problems (nil fn, worker
// count below 1), in which case no unit is executed and results is nil.
//
// Example:
//
//	results, err := r.Run(ctx, []int{1, 2, 3}, func(ctx context.Context, n int) (int, error) {
//	    return n * n, nil
//	})
func (r *Runner[T, R]) Run(ctx context.Context, items []T, fn ProcessFunc[T, R]) ([]Result[R], error) {
	if err := r.validate(fn); err != nil {
		r.log.Error("cannot start parallel run", zap.Error(err))
		return nil, err
	}

	if len(items) == 0 {
		return []Result[R]{}, nil
	}

	return r.execute(ctx, items, fn, execution{
		mode: r.resolveMode(),
		sink: r.conf.progress,
	}), nil
}

func (r *Runner[T, R]) validate(fn ProcessFunc[T, R]) error {
	if fn == nil {
		return ErrNilFunc
	}
	if r.conf.workerCount < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidWorkerCount, r.conf.workerCount)
	}
	return nil
}

func (r *Runner[T, R]) resolveMode() Mode {
	if r.conf.mode.Valid() {
		return r.conf.mode
	}
	r.log.Warn("unknown execution mode, falling back to thread mode", zap.Int("mode", int(r.conf.mode)))
	return ModeThread
}

// execute runs a non-empty slice of units to completion (or to the
// deadline) and returns their slots in input order.
func (r *Runner[T, R]) execute(ctx context.Context, items []T, fn ProcessFunc[T, R], ex execution) []Result[R] {
	start := time.Now()
	numWorkers := min(r.conf.workerCount, len(items))
	taskBuffer := r.conf.taskBuffer
	if taskBuffer == 0 {
		taskBuffer = numWorkers
	}

	r.log.Info("running tasks in parallel",
		zap.Int("tasks", len(items)),
		zap.Stringer("mode", ex.mode),
		zap.Int("workers", numWorkers),
	)

	results := make([]Result[R], len(items))
	filled := make([]bool, len(items))
	for i := range results {
		results[i].Index = ex.offset + i
	}

	ex.sink.Start(len(items))
	defer ex.sink.Finish()

	taskChan := make(chan indexedTask[T], taskBuffer)
	// Sized for every unit so workers never block on send, even after a
	// deadline made execute stop reading.
	resultChan := make(chan Result[R], len(items))
	stop := make(chan struct{})
	ex.stop = stop

	var g errgroup.Group
	for id := range numWorkers {
		g.Go(func() error {
			r.worker(ctx, id, ex, taskChan, resultChan, fn)
			return nil
		})
	}

	go func() {
		defer close(taskChan)
		for idx, task := range items {
			select {
			case taskChan <- indexedTask[T]{index: idx, task: task}:
			case <-stop:
				return
			}
		}
	}()

	go func() {
		_ = g.Wait()
		close(resultChan)
	}()

	var deadline <-chan time.Time
	if r.conf.deadline > 0 {
		timer := time.NewTimer(r.conf.deadline)
		defer timer.Stop()
		deadline = timer.C
	}

	record := func(res Result[R]) {
		local := res.Index - ex.offset
		results[local] = res
		filled[local] = true
		ex.sink.Increment()
	}

collect:
	for {
		select {
		case res, ok := <-resultChan:
			if !ok {
				break collect
			}
			record(res)

		case <-deadline:
			close(stop)
			// Units that finished before the deadline keep their results.
		drain:
			for {
				select {
				case res, ok := <-resultChan:
					if !ok {
						break drain
					}
					record(res)
				default:
					break drain
				}
			}

			pending := 0
			for i := range results {
				if filled[i] {
					continue
				}
				pending++
				results[i].Err = &TaskError{Index: ex.offset + i, Input: items[i], Err: ErrTimedOut}
			}
			r.log.Warn("deadline reached, abandoning unfinished tasks",
				zap.Duration("deadline", r.conf.deadline),
				zap.Int("unfinished", pending),
			)
			break collect
		}
	}

	summary := Summarize(results)
	r.log.Info("parallel tasks complete",
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Duration("duration", time.Since(start)),
	)

	return results
}

// worker takes units from taskChan until it is closed or the run is
// stopped. Every unit it executes produces exactly one Result on resultChan.
func (r *Runner[T, R]) worker(
	ctx context.Context,
	id int,
	ex execution,
	taskChan <-chan indexedTask[T],
	resultChan chan<- Result[R],
	fn ProcessFunc[T, R],
) {
	if ex.mode == ModeProcess {
		release, err := cpu.Pin(id)
		defer release()
		if err != nil {
			r.log.Debug("cpu pinning unavailable", zap.Int("worker_id", id), zap.Error(err))
		}
	}

	for t := range taskChan {
		select {
		case <-ex.stop:
			return
		default:
		}

		index := ex.offset + t.index
		value, attempts, err := r.runUnit(ctx, index, t.task, fn)
		if err != nil {
			var zero R
			value = zero
			err = &TaskError{Index: index, Input: t.task, Attempts: attempts, Err: err}
			r.log.Error("task failed",
				zap.Int("index", index),
				zap.Any("input", t.task),
				zap.Int("attempts", attempts),
				zap.Error(err),
			)
		}

		if r.conf.onTaskEnd != nil {
			r.conf.onTaskEnd(index, err)
		}

		resultChan <- Result[R]{Value: value, Err: err, Index: index}
	}
}

// runUnit applies the rate limit and retry policy to a single unit.
// It returns the number of attempts made.
func (r *Runner[T, R]) runUnit(ctx context.Context, index int, task T, fn ProcessFunc[T, R]) (result R, attempts int, err error) {
	if err := ctx.Err(); err != nil {
		return result, 0, fmt.Errorf("%w: %w", ErrNotRun, err)
	}

	if r.conf.rateLimiter != nil {
		if err := r.conf.rateLimiter.Wait(ctx); err != nil {
			return result, 0, fmt.Errorf("%w: rate limiter: %w", ErrNotRun, err)
		}
	}

	maxAttempts := max(r.conf.maxAttempts, 1)
	for attempt := range maxAttempts {
		if attempt > 0 && r.conf.initialDelay > 0 {
			select {
			case <-time.After(r.backoff.NextDelay(attempt - 1)):
			case <-ctx.Done():
				return result, attempt, ctx.Err()
			}
		}

		result, err = processWithRecovery(ctx, task, fn)
		if err == nil {
			return result, attempt + 1, nil
		}

		if attempt < maxAttempts-1 {
			r.log.Warn("retrying task",
				zap.Int("index", index),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
		}
	}

	return result, maxAttempts, err
}

// processWithRecovery calls fn and converts a panic into a *PanicError so
// a single unit cannot crash its worker.
func processWithRecovery[T, R any](ctx context.Context, task T, fn ProcessFunc[T, R]) (result R, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			var zero R
			result = zero
			err = &PanicError{Value: rec, Stack: buf[:n]}
		}
	}()

	return fn(ctx, task)
}
