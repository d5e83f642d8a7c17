// Package cli implements the fanout command line.
package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/utkarsh5026/fanout/internal/config"
	"github.com/utkarsh5026/fanout/internal/logging"
)

// app is the state shared by every subcommand once flags and config are resolved.
type app struct {
	v        *viper.Viper
	cfgFile  string
	settings *config.Settings
	logger   *zap.Logger
	closeLog func()
}

func newApp() *app {
	return &app{v: viper.New()}
}

// Execute runs the root command with the provided context.
func Execute(ctx context.Context) error {
	a := newApp()
	defer a.close()
	return a.newRootCmd().ExecuteContext(ctx)
}

func (a *app) newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fanout",
		Short: "Run a command or function over many inputs in parallel",
		Long: `fanout runs one unit of work per input on a bounded worker pool,
keeps results in input order, isolates failures to their own slot and can
split large inputs into throttled batches.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is ./fanout.yaml or $HOME/.config/fanout/fanout.yaml)")
	flags.IntP("workers", "w", 0, "number of concurrent workers (0 = 8, or one per CPU in process mode)")
	flags.StringP("mode", "m", "", "execution mode: thread or process")
	flags.Int("chunk-size", 0, "units per batch when running in batches")
	flags.Duration("delay", 0, "pause between batches")
	flags.Bool("progress", true, "show a progress bar")
	flags.Int("retries", 0, "retries per failing unit")
	flags.Float64("rate-limit", 0, "maximum units started per second (0 = unlimited)")
	flags.Duration("deadline", 0, "stop waiting for unfinished units after this long (0 = wait forever)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: console or json")
	flags.String("log-dir", "", "also write logs to a daily file in this directory")
	flags.Bool("no-color", false, "disable colored output")

	for key, flag := range map[string]string{
		"workers":       "workers",
		"mode":          "mode",
		"chunk_size":    "chunk-size",
		"delay":         "delay",
		"show_progress": "progress",
		"retries":       "retries",
		"rate_limit":    "rate-limit",
		"deadline":      "deadline",
		"log.level":     "log-level",
		"log.format":    "log-format",
		"log.dir":       "log-dir",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(newSelfTestCmd(a))
	rootCmd.AddCommand(newExecCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// init loads configuration and builds the logger.
func (a *app) init(cmd *cobra.Command) error {
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		color.NoColor = true
	}

	settings, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.New(logging.Options{
		Level:  settings.Log.Level,
		Format: settings.Log.Format,
		Dir:    settings.Log.Dir,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	if used := a.v.ConfigFileUsed(); used != "" {
		logger.Debug("loaded configuration", zap.String("file", used))
	}

	a.settings = settings
	a.logger = logger
	a.closeLog = closeLog
	return nil
}

// close flushes the logger and releases its log file. It runs after the
// command whether or not it failed.
func (a *app) close() {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if a.closeLog != nil {
		a.closeLog()
	}
}
