package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fanout.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	s, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Workers != 0 || s.Mode != "thread" || s.ChunkSize != 20 {
		t.Errorf("unexpected defaults: %+v", s)
	}
	if s.Delay != 500*time.Millisecond {
		t.Errorf("expected 500ms delay, got %v", s.Delay)
	}
	if !s.ShowProgress {
		t.Error("expected progress on by default")
	}
	if s.Log.Level != "info" || s.Log.Format != "console" {
		t.Errorf("unexpected log defaults: %+v", s.Log)
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
workers: 3
mode: process
chunk_size: 50
delay: 2s
show_progress: false
retries: 2
retry_delay: 250ms
rate_limit: 5
rate_burst: 2
log:
  level: debug
  format: json
`)

	s, err := Load(viper.New(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Workers != 3 || s.Mode != "process" || s.ChunkSize != 50 {
		t.Errorf("unexpected settings: %+v", s)
	}
	if s.Delay != 2*time.Second || s.RetryDelay != 250*time.Millisecond {
		t.Errorf("unexpected durations: delay=%v retry_delay=%v", s.Delay, s.RetryDelay)
	}
	if s.ShowProgress {
		t.Error("expected progress off")
	}
	if s.Retries != 2 || s.RateLimit != 5 || s.RateBurst != 2 {
		t.Errorf("unexpected retry/rate settings: %+v", s)
	}
	if s.Log.Level != "debug" || s.Log.Format != "json" {
		t.Errorf("unexpected log settings: %+v", s.Log)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "workers: 3\nlog:\n  level: warn\n")
	t.Setenv("FANOUT_WORKERS", "12")
	t.Setenv("FANOUT_LOG_LEVEL", "error")

	s, err := Load(viper.New(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Workers != 12 {
		t.Errorf("expected env to set workers=12, got %d", s.Workers)
	}
	if s.Log.Level != "error" {
		t.Errorf("expected env to set log level, got %q", s.Log.Level)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	path := writeConfig(t, "workers: -1\nchunk_size: -1\n")

	_, err := Load(viper.New(), path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"workers", "chunk_size"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in error %q", want, err)
		}
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	// An explicitly named file that does not exist falls back to defaults.
	s, err := Load(viper.New(), filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Workers != 0 {
		t.Errorf("expected default workers, got %d", s.Workers)
	}
}

func TestSettings_PoolOptions(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger := zap.New(core)

	s := &Settings{Workers: 2, Mode: "fork", Retries: 1, RateLimit: 3, Deadline: time.Second}
	opts := s.PoolOptions(logger)

	// workers, mode, logger, retry, rate limit, deadline
	if len(opts) != 6 {
		t.Errorf("expected 6 options, got %d", len(opts))
	}
	if logs.FilterMessage("unknown mode in config, using thread mode").Len() != 1 {
		t.Error("expected warning for unknown mode")
	}
}

func TestSettings_PoolOptions_LeavesWorkerCountToRunner(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name    string
		workers int
		want    int
	}{
		// mode, logger
		{"unset", 0, 2},
		// mode, logger, workers
		{"explicit", 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Settings{Workers: tt.workers, Mode: "process"}
			if got := len(s.PoolOptions(logger)); got != tt.want {
				t.Errorf("expected %d options, got %d", tt.want, got)
			}
		})
	}
}
