package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/utkarsh5026/fanout/pool"
	"github.com/utkarsh5026/fanout/progress"
)

// placeholder is replaced by the input line in the command arguments.
const placeholder = "{}"

func newExecCmd(a *app) *cobra.Command {
	var batched bool

	cmd := &cobra.Command{
		Use:   "exec [flags] -- command [args...]",
		Short: "Run a command once per stdin line",
		Long: `exec reads one input per line from stdin and runs the command once per
input. Every "{}" in the arguments is replaced by the input; if there is
none, the input is appended as the last argument.

With --batched the inputs are split into chunks of --chunk-size that run
one after another with --delay between them.`,
		Example: `  cat urls.txt | fanout exec -w 16 -- curl -sI {}
  seq 1 100 | fanout exec --batched --chunk-size 10 --delay 1s -- ./notify.sh`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExec(cmd, args, batched)
		},
	}

	cmd.Flags().BoolVar(&batched, "batched", false, "run inputs in sequential batches")

	return cmd
}

func (a *app) runExec(cmd *cobra.Command, argv []string, batched bool) error {
	ctx := cmd.Context()

	inputs, err := readInputs(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("read inputs: %w", err)
	}

	run := func(ctx context.Context, input string) (string, error) {
		args := buildArgs(argv, input)
		raw, err := exec.CommandContext(ctx, args[0], args[1:]...).CombinedOutput()
		out := strings.TrimSpace(string(raw))
		if err != nil && out != "" {
			return "", fmt.Errorf("%w: %s", err, out)
		}
		return out, err
	}

	opts := a.settings.PoolOptions(a.logger)
	if a.settings.ShowProgress && !batched {
		opts = append(opts, pool.WithProgress(progress.NewBar(progress.WithWriter(cmd.ErrOrStderr()))))
	}
	runner := pool.NewRunner[string, string](opts...)

	start := time.Now()
	var results []pool.Result[string]
	if batched {
		results, err = runner.RunBatches(ctx, inputs, run, a.settings.ChunkSize, a.settings.Delay)
	} else {
		results, err = runner.Run(ctx, inputs, run)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := renderResults(out, "Results", inputs, results); err != nil {
		return err
	}
	s := renderSummary(out, results, time.Since(start))

	if s.Failed > 0 {
		return fmt.Errorf("%d of %d tasks failed", s.Failed, s.Total)
	}
	return nil
}

// readInputs returns the non-blank lines of r.
func readInputs(r io.Reader) ([]string, error) {
	var inputs []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			inputs = append(inputs, line)
		}
	}
	return inputs, sc.Err()
}

// buildArgs substitutes input into argv.
func buildArgs(argv []string, input string) []string {
	args := make([]string, len(argv))
	replaced := false
	for i, arg := range argv {
		if strings.Contains(arg, placeholder) {
			replaced = true
		}
		args[i] = strings.ReplaceAll(arg, placeholder, input)
	}
	if !replaced {
		args = append(args, input)
	}
	return args
}
