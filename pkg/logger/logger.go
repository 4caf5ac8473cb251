// Package logger builds the process-wide slog.Logger from the logging
// settings (level and text/json format).
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Option adjusts logger construction.
type Option func(*options)

type options struct {
	w       io.Writer
	service string
	source  bool
}

// WithWriter sends output to w instead of stderr.
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		o.w = w
	}
}

// WithService attaches a "service" attribute to every record.
func WithService(name string) Option {
	return func(o *options) {
		o.service = name
	}
}

// WithSource adds the caller's file:line to every record.
func WithSource() Option {
	return func(o *options) {
		o.source = true
	}
}

// New creates a *slog.Logger for the given level and format.
// Level: "debug", "info", "warn", "error" (default "info").
// Format: "json" or "text" (default "text").
func New(level, format string, opts ...Option) *slog.Logger {
	o := &options{w: os.Stderr}
	for _, opt := range opts {
		opt(o)
	}

	hopts := &slog.HandlerOptions{Level: ParseLevel(level), AddSource: o.source}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(o.w, hopts)
	} else {
		handler = slog.NewTextHandler(o.w, hopts)
	}

	l := slog.New(handler)
	if o.service != "" {
		l = l.With("service", o.service)
	}
	return l
}

// Discard returns a logger that drops everything. Tests use it to keep
// output quiet.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel converts a level string to slog.Level. Matching is
// case-insensitive and "warning" is accepted for "warn". Everything else
// returns LevelInfo.
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
