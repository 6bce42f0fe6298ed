// Package observe provides the thin status/log notification surface
// spec.md §2 item 9 calls for: a narrow interface the store package and the
// CLI commands call into, defaulting to a no-op, backed by
// charmbracelet/log the way the teacher's internal/infrastructure/logging
// package backs its ports.Logger.
package observe

import (
	"fmt"
	"io"
	"os"
	"strings"

	cblog "github.com/charmbracelet/log"
)

// Logger is the structured logging contract used throughout this module.
// Field arguments are key/value pairs, same convention as the teacher's
// ports.Logger, minus the per-call context (correlation is carried by
// binding fields via With instead).
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)
	With(fields ...any) Logger
}

// Options configures the charmbracelet/log-backed implementation.
type Options struct {
	Writer    io.Writer
	Level     string
	Component string
}

type logger struct {
	backend *cblog.Logger
	fields  []any
}

// New builds a Logger backed by charmbracelet/log.
func New(opts Options) (Logger, error) {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	level := cblog.InfoLevel
	if opts.Level != "" {
		parsed, err := cblog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		level = parsed
	}

	backend := cblog.NewWithOptions(w, cblog.Options{
		Level:           level,
		ReportTimestamp: true,
	})

	var fields []any
	if opts.Component != "" {
		fields = []any{"component", opts.Component}
	}
	return &logger{backend: backend, fields: fields}, nil
}

func (l *logger) Debug(msg string, fields ...any) { l.backend.Debug(msg, merge(l.fields, fields)...) }
func (l *logger) Info(msg string, fields ...any)  { l.backend.Info(msg, merge(l.fields, fields)...) }
func (l *logger) Warn(msg string, fields ...any)  { l.backend.Warn(msg, merge(l.fields, fields)...) }
func (l *logger) Error(msg string, fields ...any) { l.backend.Error(msg, merge(l.fields, fields)...) }

func (l *logger) With(fields ...any) Logger {
	return &logger{backend: l.backend, fields: merge(l.fields, fields)}
}

func merge(base, additions []any) []any {
	out := make([]any, 0, len(base)+len(additions))
	out = append(out, base...)
	out = append(out, additions...)
	return out
}

