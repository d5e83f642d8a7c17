package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/utkarsh5026/fanout/pool"
	"github.com/utkarsh5026/fanout/progress"
)

// selfTestTasks is the number of mock units the self-test runs.
const selfTestTasks = 10

func newSelfTestCmd(a *app) *cobra.Command {
	var (
		sleep     time.Duration
		workers   int
		chunkSize int
	)

	cmd := &cobra.Command{
		Use:   "selftest",
		Short: "Run mock tasks threaded and in batches to check the runner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSelfTest(cmd, sleep, workers, chunkSize)
		},
	}

	cmd.Flags().DurationVar(&sleep, "sleep", 200*time.Millisecond, "how long each mock task sleeps")
	cmd.Flags().IntVar(&workers, "threads", 5, "workers for the threaded run")
	cmd.Flags().IntVar(&chunkSize, "batch", 4, "chunk size for the batched run")

	return cmd
}

func (a *app) runSelfTest(cmd *cobra.Command, sleep time.Duration, workers, chunkSize int) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	mockTask := func(ctx context.Context, n int) (string, error) {
		select {
		case <-time.After(sleep):
			return fmt.Sprintf("Task %d done", n), nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	tasks := make([]int, selfTestTasks)
	inputs := make([]string, selfTestTasks)
	for i := range tasks {
		tasks[i] = i + 1
		inputs[i] = fmt.Sprint(i + 1)
	}

	a.logger.Info("running self-test", zap.Int("tasks", len(tasks)))

	opts := []pool.Option{pool.WithLogger(a.logger)}
	if a.settings.ShowProgress {
		opts = append(opts, pool.WithProgress(progress.NewBar(
			progress.WithWriter(cmd.ErrOrStderr()),
			progress.WithDescription("Running tasks"),
		)))
	}

	// The bar is passed in opts so it draws on the command's stderr.
	start := time.Now()
	threaded, err := pool.Run(ctx, mockTask, tasks, pool.ModeThread, workers, false, opts...)
	if err != nil {
		return err
	}
	if err := renderResults(out, "Threaded results", inputs, threaded); err != nil {
		return err
	}
	renderSummary(out, threaded, time.Since(start))

	start = time.Now()
	batchOpts := []pool.Option{pool.WithLogger(a.logger)}
	if a.settings.Workers > 0 {
		batchOpts = append(batchOpts, pool.WithWorkerCount(a.settings.Workers))
	}
	batched, err := pool.NewRunner[int, string](batchOpts...).
		RunBatches(ctx, tasks, mockTask, chunkSize, a.settings.Delay)
	if err != nil {
		return err
	}
	if err := renderResults(out, "Batched results", inputs, batched); err != nil {
		return err
	}
	s := renderSummary(out, batched, time.Since(start))

	if s.Failed > 0 {
		return fmt.Errorf("self-test: %d of %d batched tasks failed", s.Failed, s.Total)
	}
	a.logger.Info("self-test complete")
	return nil
}
