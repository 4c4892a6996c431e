// Package logger holds the process-wide structured logger. Records are
// discarded until Init enables them.
package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// L is the global logger.
var L = slog.New(slog.DiscardHandler)

const (
	logPrefix     = "hivescan-"
	logSuffix     = ".log"
	dayLayout     = "2006-01-02"
	retentionDays = 30
)

// Options selects where records go.
type Options struct {
	Enabled bool
	// Stderr sends text records to stderr instead of the dated file.
	Stderr bool
	// Dir holds one JSON file per day. Required unless Stderr is set.
	Dir   string
	Level slog.Level
}

// Init replaces L according to opts. Files older than thirty days are
// removed from Dir on the way.
func Init(opts Options) error {
	handlerOpts := &slog.HandlerOptions{Level: opts.Level}
	switch {
	case !opts.Enabled:
		L = slog.New(slog.DiscardHandler)
		return nil
	case opts.Stderr:
		L = slog.New(slog.NewTextHandler(os.Stderr, handlerOpts))
		return nil
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return err
	}
	now := time.Now()
	pruneLogs(opts.Dir, now)
	f, err := os.OpenFile(filepath.Join(opts.Dir, logFileName(now)), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	L = slog.New(slog.NewJSONHandler(f, handlerOpts))
	return nil
}

func logFileName(day time.Time) string {
	return logPrefix + day.Format(dayLayout) + logSuffix
}

// pruneLogs removes dated log files past the retention window. Failures are
// ignored.
func pruneLogs(dir string, now time.Time) {
	matches, _ := filepath.Glob(filepath.Join(dir, logPrefix+"*"+logSuffix))
	cutoff := now.AddDate(0, 0, -retentionDays)
	for _, m := range matches {
		day := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), logPrefix), logSuffix)
		if t, err := time.Parse(dayLayout, day); err == nil && t.Before(cutoff) {
			_ = os.Remove(m)
		}
	}
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }
