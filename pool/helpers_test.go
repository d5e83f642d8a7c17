package pool

import (
	"fmt"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// observedLogger returns a logger whose entries at debug level and above
// are captured for assertions.
func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

// countingSink is a progress.Sink that records every call.
type countingSink struct {
	mu         sync.Mutex
	total      int
	starts     int
	increments int
	finishes   int
}

func (s *countingSink) Start(total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.starts++
	s.total = total
}

func (s *countingSink) Increment() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.increments++
}

func (s *countingSink) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishes++
}

func sequence(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i + 1
	}
	return items
}

// workerCounts are the concurrency levels every ordering test runs with.
var workerCounts = []int{1, 2, 4, 16}

func runWithWorkerCounts(t *testing.T, testFunc func(t *testing.T, workers int)) {
	for _, n := range workerCounts {
		t.Run(fmt.Sprintf("workers=%d", n), func(t *testing.T) {
			testFunc(t, n)
		})
	}
}

func assertResultsEqual[R comparable](t *testing.T, got []Result[R], want []Result[R]) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Index != want[i].Index {
			t.Errorf("slot %d: expected index %d, got %d", i, want[i].Index, got[i].Index)
		}
		if got[i].Failed() != want[i].Failed() {
			t.Errorf("slot %d: expected failed=%v, got failed=%v", i, want[i].Failed(), got[i].Failed())
			continue
		}
		if !got[i].Failed() && got[i].Value != want[i].Value {
			t.Errorf("slot %d: expected %v, got %v", i, want[i].Value, got[i].Value)
		}
	}
}
