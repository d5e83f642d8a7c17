package progress

import (
	"bytes"
	"strings"
	"testing"
)

func TestBar_WritesToWriter(t *testing.T) {
	var buf bytes.Buffer
	bar := NewBar(WithWriter(&buf), WithDescription("crunching"))

	bar.Start(3)
	for range 3 {
		bar.Increment()
	}
	bar.Finish()

	out := buf.String()
	if !strings.Contains(out, "crunching") {
		t.Errorf("expected description in output, got %q", out)
	}
	if !strings.Contains(out, "3/3") {
		t.Errorf("expected final count 3/3 in output, got %q", out)
	}
}

func TestBar_IncrementBeforeStartIsSafe(t *testing.T) {
	var buf bytes.Buffer
	bar := NewBar(WithWriter(&buf))

	bar.Increment()
	bar.Finish()

	if buf.Len() != 0 {
		t.Errorf("expected no output without Start, got %q", buf.String())
	}
}

func TestNop_SatisfiesSink(t *testing.T) {
	var s Sink = Nop{}
	s.Start(10)
	s.Increment()
	s.Finish()
}
