package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/utkarsh5026/fanout/pool"
)

var (
	bold  = color.New(color.Bold)
	green = color.New(color.FgGreen)
	red   = color.New(color.FgRed)
)

// maxCell truncates long outputs so one noisy unit cannot wreck the table.
const maxCell = 60

// renderResults writes one row per input, in input order.
func renderResults(w io.Writer, title string, inputs []string, results []pool.Result[string]) error {
	_, _ = bold.Fprintln(w, title)

	table := tablewriter.NewWriter(w)
	table.Header("#", "Input", "Status", "Output")

	for i, res := range results {
		input := ""
		if i < len(inputs) {
			input = inputs[i]
		}

		status, output := green.Sprint("ok"), res.Value
		if res.Failed() {
			status, output = red.Sprint("failed"), causeOf(res.Err)
		}

		if err := table.Append(fmt.Sprint(res.Index+1), truncate(input), status, truncate(output)); err != nil {
			return fmt.Errorf("append row %d: %w", i, err)
		}
	}

	return table.Render()
}

// renderSummary prints the succeeded/failed tally on one line.
func renderSummary(w io.Writer, results []pool.Result[string], elapsed time.Duration) pool.Summary {
	s := pool.Summarize(results)
	_, _ = green.Fprintf(w, "✓ %d succeeded", s.Succeeded)
	_, _ = fmt.Fprint(w, "  ")
	if s.Failed > 0 {
		_, _ = red.Fprintf(w, "✗ %d failed", s.Failed)
	} else {
		_, _ = fmt.Fprintf(w, "✗ %d failed", s.Failed)
	}
	_, _ = fmt.Fprintf(w, "  in %s\n", elapsed.Round(time.Millisecond))
	return s
}

// causeOf strips the TaskError prefix, which repeats the index and input
// already shown in the table, and drops panic stack traces.
func causeOf(err error) string {
	var pe *pool.PanicError
	if errors.As(err, &pe) {
		return fmt.Sprintf("panic: %v", pe.Value)
	}
	var te *pool.TaskError
	if errors.As(err, &te) && te.Err != nil {
		return te.Err.Error()
	}
	return err.Error()
}

func truncate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len([]rune(s)) <= maxCell {
		return s
	}
	return string([]rune(s)[:maxCell-1]) + "…"
}
