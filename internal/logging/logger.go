// Package logging builds the slog logger shared by every component.
package logging

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// New opens (or creates) the log file at path and returns a text logger
// writing to it and to any extra writers. The terminal UI owns stdout, so
// callers only pass extra writers when no UI is running.
func New(path, level string, extra ...io.Writer) (*slog.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, func() {}, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, func() {}, fmt.Errorf("open log file: %w", err)
	}

	writers := append([]io.Writer{f}, extra...)
	mw := io.MultiWriter(writers...)
	logger := slog.New(slog.NewTextHandler(mw, &slog.HandlerOptions{Level: ParseLevel(level)}))
	log.SetOutput(mw)

	cleanup := func() {
		log.SetOutput(os.Stderr)
		_ = f.Sync()
		_ = f.Close()
	}
	return logger, cleanup, nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps DEBUG, WARN and ERROR (any case) to their slog levels;
// anything else is INFO.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
