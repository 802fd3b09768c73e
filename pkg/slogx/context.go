package slogx

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// WithContext stores logger on ctx.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the request logger, or slog.Default when none is set.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// WithRequestID tags the ctx logger with req_id.
func WithRequestID(ctx context.Context, reqID string) context.Context {
	return WithContext(ctx, FromContext(ctx).With("req_id", reqID))
}

// WithUser tags the ctx logger with the authenticated user and, while a quiz
// is in progress, its id. Empty values are skipped.
func WithUser(ctx context.Context, userID, quizID string) context.Context {
	l := FromContext(ctx)
	if userID != "" {
		l = l.With("user_id", userID)
	}
	if quizID != "" {
		l = l.With("quiz_id", quizID)
	}
	return WithContext(ctx, l)
}
