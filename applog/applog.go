// Package applog provides general-purpose application logging.
//
// Logs are structured JSON records written to ~/.sqlchat/logs/app.log and
// rotated by lumberjack. Nothing is written to stdout: the TUI owns the
// terminal. Until Init is called every record is discarded, which keeps
// tests and one-off commands quiet.
package applog

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu     sync.RWMutex
	logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	sink   *lumberjack.Logger
)

// Init opens the rotating app.log in dir and installs it as the
// package logger and the slog default.
func Init(dir string, level slog.Level) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	lj := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "app.log"),
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}

	l := slog.New(slog.NewJSONHandler(lj, &slog.HandlerOptions{Level: level}))

	mu.Lock()
	defer mu.Unlock()
	if sink != nil {
		_ = sink.Close()
	}
	sink = lj
	logger = l
	slog.SetDefault(l)
	return nil
}

// SetOutput routes records to w. Used by tests to capture output.
func SetOutput(w io.Writer, level slog.Level) {
	mu.Lock()
	defer mu.Unlock()
	logger = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// L returns the current logger.
func L() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Info logs a general info message.
func Info(msg string, args ...any) {
	L().Info(msg, args...)
}

// Error logs an error with its cause.
func Error(msg string, err error, args ...any) {
	if err != nil {
		args = append(args, slog.String("error", Mask(err.Error())))
	}
	L().Error(msg, args...)
}

// Event logs a record tagged with a category such as "connect" or "chain".
func Event(category string, msg string, args ...any) {
	L().Info(msg, append([]any{slog.String("category", category)}, args...)...)
}

// Close flushes and closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if sink != nil {
		_ = sink.Close()
		sink = nil
	}
}
