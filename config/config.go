package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the process configuration read from the environment.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"auction.db"`

	JWTSecret      string        `env:"JWT_SECRET" envDefault:"auction-secret-key-change-in-production"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`

	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"http://localhost:5173"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Default administrator created on first boot when no admin exists.
	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"admin@auction.pl"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	Production      bool          `env:"PRODUCTION" envDefault:"false"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	return load(env.Options{})
}

func load(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Production && strings.Contains(c.JWTSecret, "change-in-production") {
		return fmt.Errorf("config: JWT_SECRET must be set in production")
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("config: ACCESS_TOKEN_TTL must be positive, got %s", c.AccessTokenTTL)
	}
	return nil
}

// ListenAddr returns the address passed to the HTTP listener.
func (c *Config) ListenAddr() string {
	return ":" + c.Port
}
