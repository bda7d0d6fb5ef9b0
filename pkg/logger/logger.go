package logger

import (
	"context"
	"log/slog"
	"os"
)

var Log = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// Init replaces the default logger. Release mode logs from Info up.
func Init(release bool) {
	level := slog.LevelDebug
	if release {
		level = slog.LevelInfo
	}
	// JSON handler for production-ready logging
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	Log = slog.New(handler).With("service", "cv-tracker")
}

type requestIDKey struct{}

// WithRequestID stores the request id so FromContext can tag log lines.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// FromContext returns Log tagged with the request id, when there is one.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return Log
	}
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return Log.With("request_id", id)
	}
	return Log
}
