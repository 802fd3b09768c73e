package httpx

import (
	"context"

	"github.com/aussiebroadwan/quizify/pkg/jwtx"
)

type ctxKey string

const (
	ctxKeySession ctxKey = "session"
	ctxKeyToken   ctxKey = "token"
)

// WithSession stores a verified session and the raw token it came from.
func WithSession(ctx context.Context, sess jwtx.Session, token string) context.Context {
	ctx = context.WithValue(ctx, ctxKeySession, sess)
	return context.WithValue(ctx, ctxKeyToken, token)
}

// SessionFromContext returns the session stored by AuthnMiddleware.
func SessionFromContext(ctx context.Context) (jwtx.Session, bool) {
	sess, ok := ctx.Value(ctxKeySession).(jwtx.Session)
	return sess, ok
}

// TokenFromContext returns the raw token that produced the session in ctx.
func TokenFromContext(ctx context.Context) string {
	tok, _ := ctx.Value(ctxKeyToken).(string)
	return tok
}
