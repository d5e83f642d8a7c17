package backoff

import (
	"math"
	"sync"
	"testing"
	"time"
)

func TestExponential_NextDelay(t *testing.T) {
	tests := []struct {
		name    string
		initial time.Duration
		max     time.Duration
		attempt int
		want    time.Duration
	}{
		{"first retry", 100 * time.Millisecond, 10 * time.Second, 0, 100 * time.Millisecond},
		{"second retry doubles", 100 * time.Millisecond, 10 * time.Second, 1, 200 * time.Millisecond},
		{"third retry", 100 * time.Millisecond, 10 * time.Second, 2, 400 * time.Millisecond},
		{"capped at max", 1 * time.Second, 5 * time.Second, 10, 5 * time.Second},
		{"negative attempt", 1 * time.Second, 5 * time.Second, -1, 0},
		{"huge attempt does not overflow", 1 * time.Second, 5 * time.Second, 200, 5 * time.Second},
		{"max below initial uses initial", 1 * time.Second, 0, 3, 1 * time.Second},
		{"exactly at max", 1 * time.Second, 4 * time.Second, 2, 4 * time.Second},
		{"product wrapping to zero is capped", 4, math.MaxInt64, 62, math.MaxInt64},
		{"product wrapping to a positive value is capped", 5, math.MaxInt64, 62, math.MaxInt64},
		{"large initial delay is capped", time.Hour, math.MaxInt64, 40, math.MaxInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(Exponential, tt.initial, tt.max, 0)
			if got := s.NextDelay(tt.attempt); got != tt.want {
				t.Errorf("NextDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
			}
		})
	}
}

func TestJittered_StaysWithinBounds(t *testing.T) {
	initial := 100 * time.Millisecond
	s := New(Jittered, initial, 10*time.Second, 0.2)

	for attempt := range 5 {
		base := initial * time.Duration(1<<attempt)
		lo := time.Duration(float64(base) * 0.8)
		hi := time.Duration(float64(base) * 1.2)

		for range 50 {
			d := s.NextDelay(attempt)
			if d < lo || d > hi {
				t.Fatalf("attempt %d: delay %v outside [%v, %v]", attempt, d, lo, hi)
			}
		}
	}
}

func TestJittered_ConcurrentUse(t *testing.T) {
	s := New(Jittered, time.Millisecond, time.Second, 0.5)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				if d := s.NextDelay(i % 8); d < 0 || d > time.Second {
					t.Errorf("delay %v out of range", d)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestKind_String(t *testing.T) {
	if Exponential.String() != "exponential" {
		t.Errorf("got %q", Exponential.String())
	}
	if Jittered.String() != "jittered" {
		t.Errorf("got %q", Jittered.String())
	}
}
