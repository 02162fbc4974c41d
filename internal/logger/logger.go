// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package logger provides a thin wrapper around zerolog.Logger that adds
// convenience constructors and context-aware helpers used throughout
// dashkeys.
//
// The Logger type embeds zerolog.Logger so all standard zerolog methods
// (Debug, Info, Warn, Error, Fatal, etc.) are available directly on *Logger.
// Application code should pass *Logger by pointer and obtain
// operation-scoped loggers via WithTraceID or FromContext.
//
// Nothing that passes through this package may carry a plaintext API key,
// a derived key or a device fingerprint.
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is a thin wrapper around zerolog.Logger.
// Embedding zerolog.Logger exposes the full zerolog API while allowing the
// application to add helper methods without modifying the upstream type.
type Logger struct {
	zerolog.Logger
}

type traceIDKey struct{}

// NewLogger constructs a *Logger for the given role label (e.g. "cli").
//
// The logger is configured with:
//   - global log level set to Debug (all levels are emitted);
//   - a "role" field set to role;
//   - a timestamp field added to every log entry;
//   - a "func" caller field that records the fully-qualified function name
//     (instead of the default file:line format) for easier log navigation.
//
// Output is written to os.Stdout in JSON format.
func NewLogger(role string) *Logger {
	return newLogger(os.Stdout, role)
}

// NewFileLogger is like NewLogger but appends to the file at path, creating
// parent directories as needed. It falls back to os.Stderr when the file
// cannot be opened. The terminal UI uses it so log lines do not draw over
// the screen.
func NewFileLogger(role, path string) *Logger {
	var out io.Writer = os.Stderr

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err == nil {
		logFile, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err == nil {
			out = logFile
		}
	}

	return newLogger(out, role)
}

// NewWriterLogger is like NewLogger but writes to out. Command-line tools pass
// stderr so that stdout carries only command output.
func NewWriterLogger(role string, out io.Writer) *Logger {
	return newLogger(out, role)
}

func newLogger(out io.Writer, role string) *Logger {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return runtime.FuncForPC(pc).Name() // return function name
	}

	zerolog.CallerFieldName = "func"
	logger := zerolog.New(out).With().
		Str("role", role).
		Timestamp().
		Caller().
		Logger()

	return &Logger{logger}
}

// Nop returns a *Logger that discards all log output.
// It is intended for use in tests and other contexts where logging is
// undesirable or would produce noise.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// SetLevel changes the minimum level of l. An empty level leaves it
// unchanged.
func (l *Logger) SetLevel(level string) error {
	if level == "" {
		return nil
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	l.Logger = l.Level(lvl)
	return nil
}

// GetChildLogger returns a new *Logger that inherits all fields of the
// receiver. The child logger can be enriched with additional context fields
// without affecting the parent logger.
func (l *Logger) GetChildLogger() *Logger {
	return &Logger{l.With().Logger()}
}

// WithTraceID returns a child of l carrying a "trace_id" field and a context
// holding that child. The trace id already stored in ctx is reused; otherwise
// a new UUID is generated. Every credential operation gets one so its log
// lines can be grouped.
func (l *Logger) WithTraceID(ctx context.Context) (context.Context, *Logger) {
	traceID, ok := TraceIDFromContext(ctx)
	if !ok {
		traceID = uuid.NewString()
		ctx = context.WithValue(ctx, traceIDKey{}, traceID)
	}

	child := l.GetChildLogger()
	child.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("trace_id", traceID)
	})

	return child.WithContext(ctx), child
}

// TraceIDFromContext returns the trace id attached by [Logger.WithTraceID].
func TraceIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(traceIDKey{}).(string)
	return id, ok && id != ""
}

// FromContext extracts the zerolog.Logger stored in ctx by zerolog's log.Ctx
// helper and returns it as a *Logger.
//
// If no logger has been attached to ctx, zerolog returns its default
// (disabled) logger, so this function never returns nil.
func FromContext(ctx context.Context) *Logger {
	return &Logger{*log.Ctx(ctx)}
}
