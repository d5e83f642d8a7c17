package pool

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/utkarsh5026/fanout/progress"
)

// Chunk splits items into consecutive sub-slices of length size; the last
// one holds the remainder. Concatenating the chunks reproduces items.
//
// A size below 1 returns ErrInvalidChunkSize. Empty items return an empty
// slice. Each chunk's capacity is capped at its length, so appending to a
// chunk never overwrites the next one.
func Chunk[T any](items []T, size int) ([][]T, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidChunkSize, size)
	}

	n := len(items) / size
	if len(items)%size != 0 {
		n++
	}

	chunks := make([][]T, 0, n)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end:end])
	}
	return chunks, nil
}

// RunBatches splits items into chunks of chunkSize and runs them one after
// another, each through the pool in ModeThread with progress disabled. The
// calling goroutine sleeps for delay between consecutive batches, which
// throttles whatever downstream system fn talks to.
//
// The returned slice is flat: it has len(items) slots in input order and
// Result.Index is the position in items, not in the batch. If ctx is done
// while waiting between batches, the remaining batches are not started and
// their slots hold ErrNotRun.
//
// RunBatches returns a non-nil error only for setup problems (nil fn,
// worker count below 1, chunkSize below 1).
//
// Example:
//
//	r := NewRunner[string, *http.Response](WithWorkerCount(4))
//	results, err := r.RunBatches(ctx, urls, fetch, 20, 500*time.Millisecond)
func (r *Runner[T, R]) RunBatches(
	ctx context.Context,
	items []T,
	fn ProcessFunc[T, R],
	chunkSize int,
	delay time.Duration,
) ([]Result[R], error) {
	if err := r.validate(fn); err != nil {
		r.log.Error("cannot start batch run", zap.Error(err))
		return nil, err
	}

	chunks, err := Chunk(items, chunkSize)
	if err != nil {
		r.log.Error("cannot split tasks into batches", zap.Int("chunk_size", chunkSize), zap.Error(err))
		return nil, err
	}

	r.log.Info("executing batches",
		zap.Int("batches", len(chunks)),
		zap.Int("chunk_size", chunkSize),
		zap.Int("tasks", len(items)),
	)

	results := make([]Result[R], 0, len(items))
	offset := 0
	for i, chunk := range chunks {
		r.log.Info("starting batch",
			zap.Int("batch", i+1),
			zap.Int("of", len(chunks)),
			zap.Int("size", len(chunk)),
		)

		results = append(results, r.execute(ctx, chunk, fn, execution{
			mode:   ModeThread,
			sink:   progress.Nop{},
			offset: offset,
		})...)
		offset += len(chunk)

		if i == len(chunks)-1 {
			break
		}

		if err := pause(ctx, delay); err != nil {
			r.log.Warn("batch run interrupted", zap.Int("remaining", len(items)-offset), zap.Error(err))
			results = append(results, notRun[T, R](items[offset:], offset, err)...)
			break
		}
	}

	r.log.Info("all batches complete", zap.Int("tasks", len(results)))
	return results, nil
}

// pause blocks for d or until ctx is done, whichever comes first.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func notRun[T, R any](items []T, offset int, cause error) []Result[R] {
	out := make([]Result[R], len(items))
	for i, item := range items {
		out[i] = Result[R]{
			Index: offset + i,
			Err: &TaskError{
				Index: offset + i,
				Input: item,
				Err:   fmt.Errorf("%w: %w", ErrNotRun, cause),
			},
		}
	}
	return out
}
