package logger

import (
	"context"
	"log/slog"
)

// loggerKey is unexported so only this package can place loggers in a context.
type loggerKey struct{}

// With attaches fields to the request-scoped logger and stores the result in
// the context. The request-id middleware uses it to stamp the trace id onto
// every log line emitted downstream.
func With(ctx context.Context, fields ...any) context.Context {
	return context.WithValue(ctx, loggerKey{}, From(ctx).With(fields...))
}

// From returns the request-scoped logger, or the process-wide one when the
// context carries none.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return LoggerWrapper()
}
