package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Config describes how the process logger should behave.
type Config struct {
	Level       string
	Format      string
	OutputPaths []string
	// Rotation applies to file outputs only.
	MaxSizeMB  int
	MaxBackups int
}

var (
	mu            sync.Mutex
	defaultLogger *slog.Logger
	closers       []io.Closer
)

// Init configures the process-wide logger. Calling it again replaces the
// previous logger and closes its file outputs.
func Init(cfg Config) error {
	logger, outs, err := New(cfg)
	if err != nil {
		return err
	}

	mu.Lock()
	old := closers
	defaultLogger = logger
	closers = outs
	mu.Unlock()

	return closeAll(old)
}

// New builds a logger without installing it globally. The returned closers
// own any files opened for the configured outputs.
func New(cfg Config) (*slog.Logger, []io.Closer, error) {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var (
		writers []io.Writer
		outs    []io.Closer
	)
	if len(cfg.OutputPaths) == 0 {
		writers = append(writers, os.Stderr)
	}
	for _, path := range cfg.OutputPaths {
		writer, closer, err := openWriter(path, cfg.MaxSizeMB, cfg.MaxBackups)
		if err != nil {
			_ = closeAll(outs)
			return nil, nil, err
		}
		if closer != nil {
			outs = append(outs, closer)
		}
		writers = append(writers, writer)
	}

	writer := writers[0]
	if len(writers) > 1 {
		writer = io.MultiWriter(writers...)
	}

	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(writer, opts)), outs, nil
	}
	return slog.New(slog.NewTextHandler(writer, opts)), outs, nil
}

func openWriter(path string, maxSizeMB, maxBackups int) (io.Writer, io.Closer, error) {
	switch strings.ToLower(strings.TrimSpace(path)) {
	case "", "stderr":
		return os.Stderr, nil, nil
	case "stdout":
		return os.Stdout, nil, nil
	default:
		writer, err := newRotatingWriter(path, maxSizeMB, maxBackups)
		if err != nil {
			return nil, nil, fmt.Errorf("open log output %s: %w", path, err)
		}
		return writer, writer, nil
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// L returns the process logger, falling back to text on stderr.
func L() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if defaultLogger == nil {
		defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return defaultLogger
}

// Named returns a child logger tagged with the component name.
func Named(name string) *slog.Logger {
	return L().With("component", name)
}

// Sync closes file outputs opened by Init.
func Sync() error {
	mu.Lock()
	old := closers
	closers = nil
	mu.Unlock()
	return closeAll(old)
}

func closeAll(cs []io.Closer) error {
	var err error
	for _, c := range cs {
		err = errors.Join(err, c.Close())
	}
	return err
}
