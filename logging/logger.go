// Package logging wraps log/slog with a console handler, a JSON handler on a
// weekly rotating file and package-level helpers usable before initialization.
package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// Options configures InitLogger
type Options struct {
	Dir            string // empty logs to the console only
	Level          string // debug, info, warn or error
	RetentionWeeks int
	MaxFileSize    int64
	Console        io.Writer // defaults to os.Stdout
}

var (
	mu      sync.RWMutex
	current *slog.Logger
	writer  *RotatingWriter

	fallback = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
)

// ParseLevel maps a LOG_LEVEL value to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// InitLogger installs the process logger and makes it the slog default.
// If the log directory cannot be used, logging continues on the console and
// the error is returned.
func InitLogger(opts Options) (*slog.Logger, error) {
	level := ParseLevel(opts.Level)
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(console, &slog.HandlerOptions{Level: level}),
	}

	var fileErr error
	var rotating *RotatingWriter
	if opts.Dir != "" {
		retention := opts.RetentionWeeks
		if retention <= 0 {
			retention = 4
		}
		rotating, fileErr = NewRotatingWriter(opts.Dir, retention, opts.MaxFileSize)
		if fileErr == nil {
			rotating.StartCleanup(24 * time.Hour)
			handlers = append(handlers, slog.NewJSONHandler(rotating, &slog.HandlerOptions{Level: level}))
		}
	}

	logger := slog.New(fanout(handlers))

	mu.Lock()
	previous := writer
	current, writer = logger, rotating
	mu.Unlock()

	if previous != nil {
		_ = previous.Close()
	}
	slog.SetDefault(logger)

	if fileErr != nil {
		logger.Error("File logging disabled", "dir", opts.Dir, "error", fileErr)
	}
	return logger, fileErr
}

// Close flushes and closes the log file, if any. Later calls log to the console fallback.
func Close() error {
	mu.Lock()
	w := writer
	current, writer = nil, nil
	mu.Unlock()

	if w == nil {
		return nil
	}
	return w.Close()
}

// Logger returns the installed logger, or the stderr fallback before InitLogger
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return fallback
	}
	return current
}

func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}

func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

// fanoutHandler sends each record to every handler that accepts its level
type fanoutHandler []slog.Handler

func fanout(handlers []slog.Handler) slog.Handler {
	if len(handlers) == 1 {
		return handlers[0]
	}
	return fanoutHandler(handlers)
}

func (f fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (f fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanoutHandler, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanoutHandler) WithGroup(name string) slog.Handler {
	out := make(fanoutHandler, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
