// Copyright (c) 2026 Housika. All rights reserved.

/*
Package config handles application-wide settings and environment parsing.

It uses 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, then validates cross-field rules that struct tags cannot express.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Once loaded, configuration is read-only and passed to components through
their constructors.
*/
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/housika/housika-api/internal/platform/constants"
)

// Session backends.
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// ErrConfiguration marks settings the process cannot start with.
var ErrConfiguration = errors.New("configuration_error")

// # Configuration Schema

// Config holds all runtime configuration for the Housika API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./migrations"`

	// SessionBackend selects where the revocation registry and the bootstrap
	// gate live. "memory" is only correct for a single instance.
	SessionBackend string `env:"SESSION_BACKEND" envDefault:"redis"`

	// Key-Value Cache (Redis)
	RedisURL string `env:"REDIS_URL"`

	// Session signing
	SessionSecret string        `env:"SESSION_SECRET,required"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"168h"`

	// Transactional email (ZeptoMail). An empty key logs mail instead of sending.
	ZeptoAPIKey        string `env:"ZEPTO_API_KEY"`
	MailFromAddress    string `env:"MAIL_FROM_ADDRESS"    envDefault:"noreply@housika.co.ke"`
	MailFromName       string `env:"MAIL_FROM_NAME"       envDefault:"Housika No Reply"`
	MailSupportAddress string `env:"MAIL_SUPPORT_ADDRESS" envDefault:"customercare@housika.co.ke"`
	MailSupportName    string `env:"MAIL_SUPPORT_NAME"    envDefault:"Housika Customer Care"`
	MailAdminAddress   string `env:"MAIL_ADMIN_ADDRESS"   envDefault:"admin@housika.co.ke"`
	MailAdminName      string `env:"MAIL_ADMIN_NAME"      envDefault:"Housika Admin Desk"`
	FrontendURL        string `env:"FRONTEND_URL"         envDefault:"https://housika.co.ke"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] and validates it.
func Load() (*Config, error) {
	cfg := &Config{}

	// Fails if any field marked 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks rules spanning several fields.
func (c *Config) Validate() error {
	switch c.SessionBackend {
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("%w: REDIS_URL is required when SESSION_BACKEND=redis", ErrConfiguration)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("%w: SESSION_BACKEND must be %q or %q", ErrConfiguration, BackendRedis, BackendMemory)
	}

	if len(c.SessionSecret) < constants.MinSecretLength {
		return fmt.Errorf("%w: SESSION_SECRET must be at least %d bytes", ErrConfiguration, constants.MinSecretLength)
	}

	if c.TokenTTL <= 0 {
		return fmt.Errorf("%w: TOKEN_TTL must be positive", ErrConfiguration)
	}

	return nil
}

// Origins returns the extra CORS origins as a trimmed list.
func (c *Config) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.ExtraOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
