package pool

import (
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/utkarsh5026/fanout/internal/backoff"
	"github.com/utkarsh5026/fanout/progress"
)

const (
	// DefaultWorkerCount is the worker count used when none is configured.
	DefaultWorkerCount = 8
	// DefaultChunkSize is the batch size used by the package-level RunBatches.
	DefaultChunkSize = 20
	// DefaultBatchDelay is the pause between batches used by the package-level RunBatches.
	DefaultBatchDelay = 500 * time.Millisecond
)

// Option is a functional option for configuring a Runner.
type Option func(*config)

type config struct {
	workerCount    int
	workerCountSet bool
	taskBuffer     int
	mode           Mode

	maxAttempts  int
	initialDelay time.Duration
	backoffKind  backoff.Kind
	maxDelay     time.Duration
	jitter       float64

	rateLimiter *rate.Limiter
	deadline    time.Duration

	logger    *zap.Logger
	progress  progress.Sink
	onTaskEnd func(index int, err error)
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		workerCount: DefaultWorkerCount,
		mode:        ModeThread,
		maxAttempts: 1,
		backoffKind: backoff.Exponential,
		maxDelay:    5 * time.Second,
		jitter:      0.1,
		logger:      zap.NewNop(),
		progress:    progress.Nop{},
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.mode == ModeProcess && !cfg.workerCountSet {
		cfg.workerCount = runtime.NumCPU()
	}

	return cfg
}

// WithWorkerCount sets the number of concurrent workers.
// Values below 1 are rejected by Run with ErrInvalidWorkerCount.
// Defaults to DefaultWorkerCount, or runtime.NumCPU() in ModeProcess.
func WithWorkerCount(count int) Option {
	return func(cfg *config) {
		cfg.workerCount = count
		cfg.workerCountSet = true
	}
}

// WithTaskBuffer sets the buffer size of the submission channel.
// If not specified, it equals the number of workers.
func WithTaskBuffer(size int) Option {
	return func(cfg *config) {
		if size >= 0 {
			cfg.taskBuffer = size
		}
	}
}

// WithMode selects thread or process workers. Unrecognised values fall
// back to ModeThread at run time with a warning.
func WithMode(mode Mode) Option {
	return func(cfg *config) {
		cfg.mode = mode
	}
}

// WithRetryPolicy retries a failing unit up to maxAttempts times in total.
// initialDelay is the wait before the first retry; later waits follow the
// configured backoff. If not specified, no retries are performed.
func WithRetryPolicy(maxAttempts int, initialDelay time.Duration) Option {
	return func(cfg *config) {
		if maxAttempts > 0 {
			cfg.maxAttempts = maxAttempts
		}
		if initialDelay > 0 {
			cfg.initialDelay = initialDelay
		}
	}
}

// WithBackoff selects the retry backoff algorithm, its ceiling, and the
// jitter factor used by backoff.Jittered.
func WithBackoff(kind backoff.Kind, maxDelay time.Duration, jitter float64) Option {
	return func(cfg *config) {
		cfg.backoffKind = kind
		if maxDelay > 0 {
			cfg.maxDelay = maxDelay
		}
		if jitter >= 0 {
			cfg.jitter = jitter
		}
	}
}

// WithRateLimit caps how many units start per second across all workers.
// Useful when the ProcessFunc calls a rate-limited API.
//
// Example:
//
//	WithRateLimit(10, 5) // Allow 10 tasks/sec with burst of 5
func WithRateLimit(tasksPerSecond float64, burst int) Option {
	return func(cfg *config) {
		if tasksPerSecond > 0 && burst > 0 {
			cfg.rateLimiter = rate.NewLimiter(rate.Limit(tasksPerSecond), burst)
		}
	}
}

// WithDeadline bounds how long Run waits. When d elapses, Run returns
// with every unfinished slot set to ErrTimedOut. Units already running
// are not interrupted; their late results are dropped.
func WithDeadline(d time.Duration) Option {
	return func(cfg *config) {
		if d > 0 {
			cfg.deadline = d
		}
	}
}

// WithLogger sets the logger. Defaults to zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithProgress sets the sink notified as units complete. Defaults to progress.Nop.
func WithProgress(sink progress.Sink) Option {
	return func(cfg *config) {
		if sink != nil {
			cfg.progress = sink
		}
	}
}

// WithOnTaskEnd registers a hook called by the worker after each unit,
// with the unit's index and its final error (nil on success).
// The hook runs concurrently on worker goroutines.
func WithOnTaskEnd(fn func(index int, err error)) Option {
	return func(cfg *config) {
		cfg.onTaskEnd = fn
	}
}
