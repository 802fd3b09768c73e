package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/aussiebroadwan/quizify/pkg/httpx"
	"github.com/aussiebroadwan/quizify/pkg/jwtx"
	"gopkg.in/yaml.v3"
)

// ErrMissingSecret is returned by Validate when no JWT secret is configured.
var ErrMissingSecret = errors.New("QUIZIFY_JWT_SECRET is required")

type RedisConfig struct {
	Addr     string `yaml:"addr"`     // Optional: enables the shared result lock
	Password string `yaml:"password"` // Optional
	DB       int    `yaml:"db"`       // Optional (default: 0)
}

type Config struct {
	JWTSecret  string        `yaml:"jwt_secret"`  // Required: HS256 secret for session tokens
	Issuer     string        `yaml:"issuer"`      // Optional: iss claim (default: quizify)
	SessionTTL time.Duration `yaml:"session_ttl"` // Optional: login token lifetime (default: 1h)
	QuizTTL    time.Duration `yaml:"quiz_ttl"`    // Optional: quiz token lifetime (default: 30m)
	TicketTTL  time.Duration `yaml:"ticket_ttl"`  // Optional: verification link lifetime (default: 1h)

	DatabaseFile string `yaml:"database_file"` // Optional: path to SQLite database file (default: ./quizify.db)
	Pepper       string `yaml:"pepper"`        // Optional: password pepper; read from PepperFile when empty
	PepperFile   string `yaml:"pepper_file"`   // Optional: created on first start (default: ./pepper)

	BaseURL       string        `yaml:"base_url"`       // Optional: public URL used in emails (default: http://localhost:<port>)
	TriviaURL     string        `yaml:"trivia_url"`     // Optional: question provider (default: https://opentdb.com)
	TriviaTimeout time.Duration `yaml:"trivia_timeout"` // Optional (default: 10s)
	QuizAmount    int           `yaml:"quiz_amount"`    // Optional: questions per quiz (default: 10)

	Redis    RedisConfig   `yaml:"redis"`
	LockTTL  time.Duration `yaml:"lock_ttl"`  // Optional (default: 10s)
	LockWait time.Duration `yaml:"lock_wait"` // Optional (default: 5s)

	Env                  string        `yaml:"env"`                   // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        `yaml:"log_level"`             // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        `yaml:"log_format"`            // Log format (json, text) (default: json)
	Port                 int           `yaml:"port"`                  // HTTP server port (default: 8080)
	SecureCookies        *bool         `yaml:"secure_cookies"`        // Optional (default: true when Env is prod)
	ShutdownGracePeriod  time.Duration `yaml:"shutdown_grace_period"` // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration `yaml:"housekeeping_interval"` // Housekeeping interval (default: 1h)

	// Rate limits come from RATELIMIT_* only.
	StrictLimit   httpx.RateLimitConfig `yaml:"-"`
	ModerateLimit httpx.RateLimitConfig `yaml:"-"`
	LenientLimit  httpx.RateLimitConfig `yaml:"-"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Issuer:               "quizify",
		SessionTTL:           jwtx.DefaultSessionTTL,
		QuizTTL:              jwtx.DefaultQuizTTL,
		TicketTTL:            time.Hour,
		DatabaseFile:         "quizify.db",
		PepperFile:           "pepper",
		TriviaURL:            "https://opentdb.com",
		TriviaTimeout:        10 * time.Second,
		QuizAmount:           10,
		Env:                  "dev",
		LogLevel:             "info",
		LogFormat:            "json",
		Port:                 8080,
		ShutdownGracePeriod:  10 * time.Second,
		HousekeepingInterval: 1 * time.Hour,
		StrictLimit:          httpx.StrictLimit,
		ModerateLimit:        httpx.ModerateLimit,
		LenientLimit:         httpx.LenientLimit,
	}
}

// LoadConfig builds the configuration from defaults, then the YAML file at
// path (skipped when path is empty), then environment variables.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.JWTSecret = getEnvOrDefault("QUIZIFY_JWT_SECRET", cfg.JWTSecret)
	cfg.Issuer = getEnvOrDefault("QUIZIFY_ISSUER", cfg.Issuer)
	cfg.SessionTTL = getEnvDurationOrDefault("QUIZIFY_SESSION_TTL", cfg.SessionTTL)
	cfg.QuizTTL = getEnvDurationOrDefault("QUIZIFY_QUIZ_TTL", cfg.QuizTTL)
	cfg.TicketTTL = getEnvDurationOrDefault("QUIZIFY_TICKET_TTL", cfg.TicketTTL)
	cfg.DatabaseFile = getEnvOrDefault("QUIZIFY_DATABASE_FILE", cfg.DatabaseFile)
	cfg.Pepper = getEnvOrDefault("QUIZIFY_PEPPER", cfg.Pepper)
	cfg.PepperFile = getEnvOrDefault("QUIZIFY_PEPPER_FILE", cfg.PepperFile)
	cfg.BaseURL = getEnvOrDefault("QUIZIFY_BASE_URL", cfg.BaseURL)
	cfg.TriviaURL = getEnvOrDefault("QUIZIFY_TRIVIA_URL", cfg.TriviaURL)
	cfg.TriviaTimeout = getEnvDurationOrDefault("QUIZIFY_TRIVIA_TIMEOUT", cfg.TriviaTimeout)
	cfg.QuizAmount = getEnvIntOrDefault("QUIZIFY_QUIZ_AMOUNT", cfg.QuizAmount)
	cfg.Redis.Addr = getEnvOrDefault("QUIZIFY_REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnvOrDefault("QUIZIFY_REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvIntOrDefault("QUIZIFY_REDIS_DB", cfg.Redis.DB)
	cfg.LockTTL = getEnvDurationOrDefault("QUIZIFY_LOCK_TTL", cfg.LockTTL)
	cfg.LockWait = getEnvDurationOrDefault("QUIZIFY_LOCK_WAIT", cfg.LockWait)
	cfg.Env = getEnvOrDefault("ENV", cfg.Env)
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnvOrDefault("LOG_FORMAT", cfg.LogFormat)
	cfg.Port = getEnvIntOrDefault("PORT", cfg.Port)
	cfg.ShutdownGracePeriod = getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", cfg.ShutdownGracePeriod)
	cfg.HousekeepingInterval = getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", cfg.HousekeepingInterval)

	if v, ok := getEnvBool("QUIZIFY_SECURE_COOKIES"); ok {
		cfg.SecureCookies = &v
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}

	cfg.StrictLimit = httpx.ParseRateLimitFromEnv("STRICT", cfg.StrictLimit)
	cfg.ModerateLimit = httpx.ParseRateLimitFromEnv("MODERATE", cfg.ModerateLimit)
	cfg.LenientLimit = httpx.ParseRateLimitFromEnv("LENIENT", cfg.LenientLimit)

	return cfg, nil
}

// Validate reports configuration that cannot be defaulted.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingSecret
	}
	if c.SessionTTL <= 0 || c.QuizTTL <= 0 {
		return errors.New("session and quiz TTLs must be positive")
	}
	return nil
}

// UseSecureCookies reports whether the auth cookie gets the Secure flag.
func (c Config) UseSecureCookies() bool {
	if c.SecureCookies != nil {
		return *c.SecureCookies
	}
	return c.Env == "prod"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBool(key string) (bool, bool) {
	value := os.Getenv(key)
	if value == "" {
		return false, false
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, false
	}
	return b, true
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
