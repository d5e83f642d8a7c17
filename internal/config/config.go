// Package config loads fanout settings from a YAML file, FANOUT_*
// environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/utkarsh5026/fanout/pool"
)

const (
	defaultConfigName = "fanout"
	envPrefix         = "FANOUT"
)

// Settings is the resolved configuration of a fanout run.
type Settings struct {
	Workers      int           `mapstructure:"workers"`
	Mode         string        `mapstructure:"mode"`
	ChunkSize    int           `mapstructure:"chunk_size"`
	Delay        time.Duration `mapstructure:"delay"`
	ShowProgress bool          `mapstructure:"show_progress"`
	Retries      int           `mapstructure:"retries"`
	RetryDelay   time.Duration `mapstructure:"retry_delay"`
	RateLimit    float64       `mapstructure:"rate_limit"`
	RateBurst    int           `mapstructure:"rate_burst"`
	Deadline     time.Duration `mapstructure:"deadline"`
	Log          LogSettings   `mapstructure:"log"`
}

// LogSettings configures the logger.
type LogSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Dir    string `mapstructure:"dir"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	// 0 leaves the choice to the runner: DefaultWorkerCount, or one per CPU in process mode.
	v.SetDefault("workers", 0)
	v.SetDefault("mode", pool.ModeThread.String())
	v.SetDefault("chunk_size", pool.DefaultChunkSize)
	v.SetDefault("delay", pool.DefaultBatchDelay)
	v.SetDefault("show_progress", true)
	v.SetDefault("retries", 0)
	v.SetDefault("retry_delay", 100*time.Millisecond)
	v.SetDefault("rate_limit", 0.0)
	v.SetDefault("rate_burst", 1)
	v.SetDefault("deadline", time.Duration(0))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.dir", "")
}

// Load reads configuration into Settings. If path is empty, fanout.yaml is
// looked up in the working directory and in $HOME/.config/fanout; a missing
// file is not an error. Environment variables such as FANOUT_WORKERS or
// FANOUT_LOG_LEVEL override file values.
func Load(v *viper.Viper, path string) (*Settings, error) {
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(defaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "fanout"))
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	s := &Settings{}
	if err := v.Unmarshal(s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate rejects values the runner cannot work with.
func (s *Settings) Validate() error {
	var errs []error
	if s.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", s.Workers))
	}
	if s.ChunkSize < 1 {
		errs = append(errs, fmt.Errorf("chunk_size must be at least 1, got %d", s.ChunkSize))
	}
	if s.Delay < 0 {
		errs = append(errs, fmt.Errorf("delay must not be negative, got %v", s.Delay))
	}
	if s.Retries < 0 {
		errs = append(errs, fmt.Errorf("retries must not be negative, got %d", s.Retries))
	}
	if s.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("rate_limit must not be negative, got %v", s.RateLimit))
	}
	return errors.Join(errs...)
}

// PoolOptions converts the settings into runner options. An unrecognised
// mode is logged and replaced by thread mode. A zero worker count adds no
// WithWorkerCount, so the runner picks its default for the mode.
func (s *Settings) PoolOptions(logger *zap.Logger) []pool.Option {
	mode, ok := pool.ParseMode(s.Mode)
	if !ok {
		logger.Warn("unknown mode in config, using thread mode", zap.String("mode", s.Mode))
	}

	opts := []pool.Option{
		pool.WithMode(mode),
		pool.WithLogger(logger),
	}
	if s.Workers > 0 {
		opts = append(opts, pool.WithWorkerCount(s.Workers))
	}
	if s.Retries > 0 {
		opts = append(opts, pool.WithRetryPolicy(s.Retries+1, s.RetryDelay))
	}
	if s.RateLimit > 0 {
		opts = append(opts, pool.WithRateLimit(s.RateLimit, max(s.RateBurst, 1)))
	}
	if s.Deadline > 0 {
		opts = append(opts, pool.WithDeadline(s.Deadline))
	}
	return opts
}
