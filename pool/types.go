package pool

import (
	"context"
	"strings"
)

// ProcessFunc processes a single unit of work.
// The context is the one passed to Run; a returned error marks only this
// unit's slot as failed and never stops its siblings.
//
// Type parameters:
//   - T: The input task type
//   - R: The result type
type ProcessFunc[T any, R any] func(ctx context.Context, task T) (R, error)

// Result is the slot holding the outcome of one unit of work.
//
// Fields:
//   - Value: The value returned by the ProcessFunc (zero value if Err != nil)
//   - Err: Non-nil if the unit failed; always a *TaskError
//   - Index: The position of the unit in the input slice
type Result[R any] struct {
	Value R
	Err   error
	Index int
}

// Failed reports whether the slot holds a failure instead of a value.
func (r Result[R]) Failed() bool {
	return r.Err != nil
}

// indexedTask wraps a task with its original index.
type indexedTask[T any] struct {
	index int
	task  T
}

// Mode selects the kind of workers a run uses. It is fixed for the
// lifetime of one Run call.
type Mode int

const (
	// ModeThread runs units on plain goroutines. Suited to I/O-bound work.
	ModeThread Mode = iota
	// ModeProcess runs each worker on a dedicated OS thread pinned to a CPU
	// core. Suited to CPU-bound work.
	ModeProcess
)

// String returns "thread", "process", or "unknown".
func (m Mode) String() string {
	switch m {
	case ModeThread:
		return "thread"
	case ModeProcess:
		return "process"
	default:
		return "unknown"
	}
}

// Valid reports whether m is one of the declared modes.
func (m Mode) Valid() bool {
	return m == ModeThread || m == ModeProcess
}

// ParseMode maps "thread" or "process" (case-insensitive) onto a Mode.
// Anything else returns ModeThread and false.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "thread", "threads":
		return ModeThread, true
	case "process", "processes", "cpu":
		return ModeProcess, true
	default:
		return ModeThread, false
	}
}
