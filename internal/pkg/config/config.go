package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT, default=8080"`
	Env      string `env:"ENV, default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	PublicBaseURL string   `env:"PUBLIC_BASE_URL"`
	CORSOrigins   []string `env:"CORS_ALLOW_ORIGINS, default=*"`
	AuditWorkers  int      `env:"AUDIT_WORKERS, default=4"`

	Database DatabaseConfig
	Redis    RedisConfig
	Mongo    MongoConfig
	Media    MediaConfig
	Session  SessionConfig
}

type DatabaseConfig struct {
	URL          string `env:"DATABASE_URL"`
	SQLitePath   string `env:"SQLITE_PATH, default=visitors.db"`
	MaxOpenConns int    `env:"DB_MAX_OPEN_CONNS, default=10"`
	Debug        bool   `env:"DB_DEBUG, default=false"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// MongoConfig configures the audit trail. An empty URI disables it.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=visitor_audit"`
}

type MediaConfig struct {
	Root string `env:"MEDIA_ROOT, default=media"`
	URL  string `env:"MEDIA_URL, default=/media"`
}

type SessionConfig struct {
	Secret           string        `env:"SESSION_SECRET"`
	TTL              time.Duration `env:"SESSION_TTL, default=12h"`
	CookieSecure     bool          `env:"SESSION_COOKIE_SECURE, default=false"`
	LoginMaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS, default=5"`
	LoginWindow      time.Duration `env:"LOGIN_WINDOW, default=15m"`
}

// Load reads a .env file when present, then the process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// RequireSessionSecret fails when the admin session key is missing.
func (c *Config) RequireSessionSecret() error {
	if c.Session.Secret == "" {
		return errors.New("config: SESSION_SECRET must be set")
	}
	return nil
}
