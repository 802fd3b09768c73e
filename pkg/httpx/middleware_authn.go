package httpx

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/quizify/pkg/jwtx"
	"github.com/aussiebroadwan/quizify/pkg/slogx"
)

// SessionVerifier verifies a raw session token.
type SessionVerifier interface {
	Verify(token string) (jwtx.Session, error)
}

// TokenFromRequest returns the session token from the auth cookie, falling
// back to an "Authorization: Bearer" header.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(AuthCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	authz := r.Header.Get("Authorization")
	if strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	}
	return ""
}

// AuthnMiddleware rejects requests without a valid session token. Browsers
// are redirected to "/" with a flash message and the stale cookie is cleared;
// JSON callers get a 401.
func AuthnMiddleware(v SessionVerifier, secureCookies bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			raw := TokenFromRequest(r)
			if raw == "" {
				Fail(w, r, http.StatusUnauthorized, "unauthorized", "Please log in to continue.", "/")
				return
			}

			sess, err := v.Verify(raw)
			if err != nil {
				log.Warn("session verify failed", "err", err)
				ClearAuthCookie(w, secureCookies)

				msg := "Invalid session. Please log in again."
				if errors.Is(err, jwtx.ErrExpired) {
					msg = "Your session has expired. Please log in again."
				}
				Fail(w, r, http.StatusUnauthorized, "invalid_token", msg, "/")
				return
			}

			ctx := WithSession(r.Context(), sess, raw)
			var quizID string
			if sess.Quiz != nil {
				quizID = sess.Quiz.QuizID
			}
			ctx = slogx.WithUser(ctx, sess.Identity.UserID, quizID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthn attaches the session when a valid token is present and
// otherwise lets the request through anonymously.
func OptionalAuthn(v SessionVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := TokenFromRequest(r)
			if raw != "" {
				if sess, err := v.Verify(raw); err == nil {
					r = r.WithContext(WithSession(r.Context(), sess, raw))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
