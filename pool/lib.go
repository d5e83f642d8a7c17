package pool

import (
	"context"
	"time"

	"github.com/utkarsh5026/fanout/progress"
)

// Run executes fn over items with the given mode and worker count and
// returns one Result per item, in input order. When showProgress is true a
// progress bar is drawn on stderr. Extra opts are applied last.
//
// It is shorthand for NewRunner with WithMode, WithWorkerCount and
// WithProgress followed by Runner.Run.
func Run[T any, R any](
	ctx context.Context,
	fn ProcessFunc[T, R],
	items []T,
	mode Mode,
	maxWorkers int,
	showProgress bool,
	opts ...Option,
) ([]Result[R], error) {
	base := []Option{WithMode(mode), WithWorkerCount(maxWorkers)}
	if showProgress {
		base = append(base, WithProgress(progress.NewBar()))
	}
	return NewRunner[T, R](append(base, opts...)...).Run(ctx, items, fn)
}

// RunBatches runs items in sequential batches of chunkSize with delay
// between them, using DefaultWorkerCount thread workers per batch.
// Extra opts are applied on top of the defaults.
func RunBatches[T any, R any](
	ctx context.Context,
	fn ProcessFunc[T, R],
	items []T,
	chunkSize int,
	delay time.Duration,
	opts ...Option,
) ([]Result[R], error) {
	return NewRunner[T, R](opts...).RunBatches(ctx, items, fn, chunkSize, delay)
}
