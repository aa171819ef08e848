package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"cyberguardian"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	LogLevel                string        `env:"LOG_LEVEL" envDefault:"info"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Postgres Postgres
	Redis    Redis
	Security Security
	OAuth    OAuth
	Session  Session
	AI       AI
	Tutor    Tutor
	SMTP     SMTP
	Badge    Badge
}

// Postgres captures connection info for the SQL database.
type Postgres struct {
	Host     string `env:"PG_HOST,notEmpty"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER,notEmpty"`
	Password string `env:"PG_PASSWORD,notEmpty"`
	Database string `env:"PG_DATABASE,notEmpty"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
	MaxConns int    `env:"PG_MAX_CONNS" envDefault:"10"`
}

// DSN renders the keyword/value connection string understood by pgx.
func (p Postgres) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=%d",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode, p.MaxConns)
}

// Redis holds session store and cache configuration.
type Redis struct {
	Addr     string `env:"REDIS_ADDR,notEmpty"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// Security stores secrets for signing and auth.
type Security struct {
	JWTSecret     string        `env:"JWT_SECRET,notEmpty"`
	AccessTTL     time.Duration `env:"JWT_ACCESS_TTL" envDefault:"24h"`
	RefreshTTL    time.Duration `env:"JWT_REFRESH_TTL" envDefault:"720h"`
	SecureCookies bool          `env:"SECURE_COOKIES" envDefault:"false"`
}

// OAuth holds OAuth provider configuration.
type OAuth struct {
	GoogleClientID     string `env:"GOOGLE_OAUTH_CLIENT_ID" envDefault:""`
	GoogleClientSecret string `env:"GOOGLE_OAUTH_CLIENT_SECRET" envDefault:""`
	GoogleRedirectURL  string `env:"GOOGLE_OAUTH_REDIRECT_URL" envDefault:""`
}

// Session controls how long play sessions live in Redis.
type Session struct {
	TTL time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	// LockTTL must outlast result recording, which runs while the final advance holds the lock.
	LockTTL time.Duration `env:"SESSION_LOCK_TTL" envDefault:"30s"`
}

// AI configures the external completion service. An empty APIKey disables AI calls.
type AI struct {
	CompletionURL    string        `env:"AI_COMPLETION_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`
	APIKey           string        `env:"AI_API_KEY" envDefault:""`
	Model            string        `env:"AI_MODEL" envDefault:"gemini-2.0-flash"`
	HTTPTimeout      time.Duration `env:"AI_HTTP_TIMEOUT" envDefault:"20s"`
	FeedbackCacheTTL time.Duration `env:"AI_FEEDBACK_CACHE_TTL" envDefault:"24h"`
}

// Tutor limits chat usage per user.
type Tutor struct {
	RequestsPerWindow int           `env:"TUTOR_REQUESTS_PER_WINDOW" envDefault:"20"`
	Window            time.Duration `env:"TUTOR_RATE_WINDOW" envDefault:"1m"`
	HistoryLimit      int           `env:"TUTOR_HISTORY_LIMIT" envDefault:"50"`
}

// SMTP holds email server configuration for the contact relay.
type SMTP struct {
	Host         string `env:"SMTP_HOST" envDefault:""`
	Port         int    `env:"SMTP_PORT" envDefault:"587"`
	Username     string `env:"SMTP_USERNAME" envDefault:""`
	Password     string `env:"SMTP_PASSWORD" envDefault:""`
	FromEmail    string `env:"SMTP_FROM_EMAIL" envDefault:""`
	SupportEmail string `env:"SUPPORT_EMAIL" envDefault:""`
}

// Badge tunes award rules.
type Badge struct {
	MasteryThreshold int `env:"BADGE_MASTERY_THRESHOLD" envDefault:"80"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// LoadPostgres parses only the database settings, for tools that never serve traffic.
func LoadPostgres() (Postgres, error) {
	var pg Postgres
	if err := env.ParseWithOptions(&pg, env.Options{RequiredIfNoDef: true}); err != nil {
		return Postgres{}, fmt.Errorf("parse postgres config: %w", err)
	}
	return pg, nil
}
