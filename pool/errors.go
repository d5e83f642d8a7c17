package pool

import (
	"errors"
	"fmt"
)

var (
	// ErrNilFunc is returned when Run is given a nil ProcessFunc.
	ErrNilFunc = errors.New("process function is nil")

	// ErrInvalidWorkerCount is returned when the worker count is below 1.
	ErrInvalidWorkerCount = errors.New("worker count must be at least 1")

	// ErrInvalidChunkSize is returned by Chunk and RunBatches when the
	// chunk size is below 1.
	ErrInvalidChunkSize = errors.New("chunk size must be greater than 0")

	// ErrTimedOut marks slots whose units had not finished when the run
	// deadline expired.
	ErrTimedOut = errors.New("task timed out")

	// ErrNotRun marks slots whose units were never started because the
	// context was done.
	ErrNotRun = errors.New("task not run")
)

// TaskError is the failure stored in a Result slot.
type TaskError struct {
	Index    int
	Input    any
	Attempts int
	Err      error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %d (input %v) failed after %d attempt(s): %v", e.Index, e.Input, e.Attempts, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

// PanicError is the cause recorded when a ProcessFunc panics.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("worker panic: %v\nstack trace:\n%s", e.Value, e.Stack)
}
