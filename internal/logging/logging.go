// Package logging builds the zap loggers used by the fanout command.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls logger construction.
type Options struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string
	// Format is "console" or "json". Empty means console.
	Format string
	// Dir, when set, adds a daily log file Dir/YYYY-MM-DD.log next to stderr.
	Dir string
	// Now is used to name the daily file. Defaults to time.Now.
	Now func() time.Time
}

// New returns a logger writing to stderr and, if opts.Dir is set, to the
// day's log file, plus a func that closes the file. Call it once the
// logger is no longer used.
func New(opts Options) (*zap.Logger, func(), error) {
	level, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(orDefault(opts.Level, "info"))))
	if err != nil {
		return nil, nil, fmt.Errorf("parse log level: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(time.DateTime)

	var encoder zapcore.Encoder
	switch format := orDefault(opts.Format, "console"); format {
	case "console":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	case "json":
		encoder = zapcore.NewJSONEncoder(encCfg)
	default:
		return nil, nil, fmt.Errorf("unknown log format %q", format)
	}

	paths := []string{"stderr"}
	if opts.Dir != "" {
		path, err := dailyFilePath(opts.Dir, opts.Now)
		if err != nil {
			return nil, nil, err
		}
		paths = append(paths, path)
	}

	sink, closeSinks, err := zap.Open(paths...)
	if err != nil {
		return nil, nil, fmt.Errorf("open log outputs: %w", err)
	}

	core := zapcore.NewCore(encoder, sink, level)
	return zap.New(core), closeSinks, nil
}

// DailyFileName returns the log file name for t.
func DailyFileName(t time.Time) string {
	return t.Format(time.DateOnly) + ".log"
}

// dailyFilePath creates dir and returns the absolute path of today's file in it.
func dailyFilePath(dir string, now func() time.Time) (string, error) {
	if now == nil {
		now = time.Now
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create log dir: %w", err)
	}

	abs, err := filepath.Abs(filepath.Join(dir, DailyFileName(now())))
	if err != nil {
		return "", fmt.Errorf("resolve log file: %w", err)
	}
	return abs, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
