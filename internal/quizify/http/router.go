package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/quizify/internal/quizify/service"
	"github.com/aussiebroadwan/quizify/internal/quizify/store"
	"github.com/aussiebroadwan/quizify/pkg/httpx"
	"github.com/aussiebroadwan/quizify/pkg/jwtx"
	"github.com/aussiebroadwan/quizify/pkg/slogx"
)

// Limits are the rate limit profiles applied per route class.
type Limits struct {
	Strict   httpx.RateLimitConfig
	Moderate httpx.RateLimitConfig
	Lenient  httpx.RateLimitConfig
}

// DefaultLimits returns the current httpx profiles.
func DefaultLimits() Limits {
	return Limits{
		Strict:   httpx.StrictLimit,
		Moderate: httpx.ModerateLimit,
		Lenient:  httpx.LenientLimit,
	}
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	codec         *jwtx.Codec
	store         store.Store
	buildVersion  string
	startTime     time.Time
	logger        *slog.Logger
	secureCookies bool

	Limits Limits

	// LockPinger is checked by /readyz when result locks live in Redis.
	LockPinger Pinger

	AuthService         *service.AuthService
	VerificationService *service.VerificationService
	QuizService         *service.QuizService
	ScoringService      *service.ScoringService
	HistoryService      *service.HistoryService
}

func NewRouter(
	codec *jwtx.Codec,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
	secureCookies bool,
) *Router {
	r := &Router{
		Mux:           http.NewServeMux(),
		codec:         codec,
		store:         st,
		buildVersion:  buildVersion,
		startTime:     time.Now(),
		logger:        logger,
		secureCookies: secureCookies,
		Limits:        DefaultLimits(),
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Recover(),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerHome()
	r.registerUsers()
	r.registerQuiz()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) authn() httpx.Middleware {
	return httpx.AuthnMiddleware(r.codec, r.secureCookies)
}

func (r *Router) registerHome() {
	h := &HomeHandler{}

	r.Mux.Handle("GET /{$}",
		httpx.Chain(h,
			httpx.RateLimitByIP(r.Limits.Lenient),
			httpx.OptionalAuthn(r.codec),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{
		AuthService:         r.AuthService,
		VerificationService: r.VerificationService,
		Codec:               r.codec,
		SecureCookies:       r.secureCookies,
	}

	// Credential endpoints: strict, keyed by IP + email so one address
	// cannot be brute forced from a single client.
	r.Mux.Handle("POST /users/signup",
		httpx.Chain(http.HandlerFunc(h.HandleSignup),
			httpx.RateLimitByIP(r.Limits.Strict),
		),
	)
	r.Mux.Handle("POST /users/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndFormField(r.Limits.Strict, "email"),
		),
	)
	r.Mux.Handle("POST /users/resend-verification-email",
		httpx.Chain(http.HandlerFunc(h.HandleResend),
			httpx.RateLimitByIPAndFormField(r.Limits.Strict, "email"),
		),
	)

	r.Mux.Handle("GET /users/logout", http.HandlerFunc(h.HandleLogout))

	verify := &VerifyEmailHandler{VerificationService: r.VerificationService}
	r.Mux.Handle("GET /users/verify-email",
		httpx.Chain(verify,
			httpx.RateLimitByIP(r.Limits.Moderate),
		),
	)

	r.Mux.Handle("GET /users/user-profile",
		httpx.Chain(http.HandlerFunc(h.HandleProfile),
			r.authn(),
			httpx.RateLimitByUser(r.Limits.Lenient),
		),
	)
}

func (r *Router) registerQuiz() {
	h := &QuizHandler{
		QuizService:    r.QuizService,
		ScoringService: r.ScoringService,
		HistoryService: r.HistoryService,
		SecureCookies:  r.secureCookies,
	}

	// Quiz start calls out to the question provider.
	r.Mux.Handle("POST /quiz/start",
		httpx.Chain(http.HandlerFunc(h.HandleStart),
			r.authn(),
			httpx.RateLimitByUser(r.Limits.Moderate),
		),
	)
	r.Mux.Handle("GET /quiz",
		httpx.Chain(http.HandlerFunc(h.HandleActive),
			r.authn(),
			httpx.RateLimitByUser(r.Limits.Lenient),
		),
	)
	r.Mux.Handle("POST /quiz/submit",
		httpx.Chain(http.HandlerFunc(h.HandleSubmit),
			r.authn(),
			httpx.RateLimitByUser(r.Limits.Moderate),
		),
	)
	r.Mux.Handle("GET /quiz/history",
		httpx.Chain(http.HandlerFunc(h.HandleHistory),
			r.authn(),
			httpx.RateLimitByUser(r.Limits.Lenient),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.Limits.Lenient),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.LockPinger),
			httpx.RateLimitByIP(r.Limits.Lenient),
		),
	)
}
