package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/quizify/internal/quizify/http"
	"github.com/aussiebroadwan/quizify/internal/quizify/lock"
	"github.com/aussiebroadwan/quizify/internal/quizify/mail"
	"github.com/aussiebroadwan/quizify/internal/quizify/service"
	"github.com/aussiebroadwan/quizify/internal/quizify/store"
	"github.com/aussiebroadwan/quizify/internal/quizify/store/drivers/sqlite"
	"github.com/aussiebroadwan/quizify/internal/quizify/trivia"
	"github.com/aussiebroadwan/quizify/pkg/cryptox"
	"github.com/aussiebroadwan/quizify/pkg/jwtx"
	"github.com/aussiebroadwan/quizify/pkg/slogx"
	"github.com/redis/go-redis/v9"
)

// BuildVersion is overridden at build time via -ldflags "-X ...".
var BuildVersion = "v0.1.0"

// Application holds the quiz service and all of its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db     store.Store
	codec  *jwtx.Codec
	redis  *redis.Client
	locker lock.Locker

	// Services
	authService         *service.AuthService
	verificationService *service.VerificationService
	quizService         *service.QuizService
	scoringService      *service.ScoringService
	historyService      *service.HistoryService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg:    cfg,
		logger: NewLogger(cfg),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initLocker(); err != nil {
		app.closeResources()
		return nil, err
	}

	app.codec = jwtx.NewCodec(jwtx.CodecOptions{
		Secret:  []byte(cfg.JWTSecret),
		Issuer:  cfg.Issuer,
		QuizTTL: cfg.QuizTTL,
	})

	if err := app.initServices(); err != nil {
		app.closeResources()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg Config) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: "quizify",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
}

// Handler exposes the router, mostly for tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("quizify starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		app.housekeepingService.Stop()
		app.closeResources()
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully stops a running application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down quizify...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.closeResources(); err != nil {
		return err
	}

	app.logger.Info("quizify stopped")
	return nil
}

func (app *Application) closeResources() error {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database", "error", err)
			return err
		}
	}
	return nil
}

// DSN returns the sqlite DSN for a database file.
func DSN(file string) string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", file)
}

// Migrate applies database migrations and exits.
func Migrate(cfg Config, logger *slog.Logger) error {
	db, err := sqlite.NewStore(DSN(cfg.DatabaseFile))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.ApplyMigrations(); err != nil {
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}
	logger.Info("database migrations applied", "file", cfg.DatabaseFile)
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(DSN(app.cfg.DatabaseFile))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		app.db = nil
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initLocker picks the Redis lock when an address is configured so that
// several instances serialise result writes together.
func (app *Application) initLocker() error {
	if app.cfg.Redis.Addr == "" {
		app.locker = lock.NewLocal()
		app.logger.Info("result lock: in-process")
		return nil
	}

	app.redis = redis.NewClient(&redis.Options{
		Addr:     app.cfg.Redis.Addr,
		Password: app.cfg.Redis.Password,
		DB:       app.cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis at %s: %w", app.cfg.Redis.Addr, err)
	}

	app.locker = lock.NewRedis(app.redis, app.cfg.LockTTL, app.cfg.LockWait)
	app.logger.Info("result lock: redis", "addr", app.cfg.Redis.Addr)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	pepper := app.cfg.Pepper
	if pepper == "" {
		var err error
		pepper, err = cryptox.LoadOrCreatePepper(app.cfg.PepperFile)
		if err != nil {
			return fmt.Errorf("failed to load pepper: %w", err)
		}
	}

	app.verificationService = &service.VerificationService{
		Store:  app.db,
		Mailer: mail.LogMailer{BaseURL: app.cfg.BaseURL},
		TTL:    app.cfg.TicketTTL,
	}
	app.authService = &service.AuthService{
		Store:        app.db,
		Hasher:       cryptox.NewPasswordHasher(pepper),
		Codec:        app.codec,
		SessionTTL:   app.cfg.SessionTTL,
		Verification: app.verificationService,
	}
	app.quizService = &service.QuizService{
		Codec:    app.codec,
		Provider: trivia.NewClient(app.cfg.TriviaURL, app.cfg.TriviaTimeout),
		Amount:   app.cfg.QuizAmount,
	}
	app.scoringService = &service.ScoringService{
		Codec:  app.codec,
		Store:  app.db,
		Locker: app.locker,
	}
	app.historyService = &service.HistoryService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.codec,
		BuildVersion,
		app.db,
		app.logger,
		app.cfg.UseSecureCookies(),
	)

	router.Limits = httpapi.Limits{
		Strict:   app.cfg.StrictLimit,
		Moderate: app.cfg.ModerateLimit,
		Lenient:  app.cfg.LenientLimit,
	}
	if r, ok := app.locker.(*lock.Redis); ok {
		router.LockPinger = r
	}

	router.AuthService = app.authService
	router.VerificationService = app.verificationService
	router.QuizService = app.quizService
	router.ScoringService = app.scoringService
	router.HistoryService = app.historyService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
