// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (session store, Discord client) via constructors.
  - Zero Hidden State: No global variables are used to store config.

Discord credentials are deliberately optional at load time. A deployment
without them still serves the market pages; the login and refresh routes
report the misconfiguration when they are hit.
*/
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/taibuivan/saddlebag/internal/platform/constants"
	"github.com/taibuivan/saddlebag/internal/platform/validate"
)

// Session backends.
const (
	SessionBackendCookie = "cookie"
	SessionBackendRedis  = "redis"
)

// # Configuration Schema

// Config holds all runtime configuration for the web server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Session signing. The first secret signs; every secret verifies.
	SessionSecrets []string `env:"SESSION_SECRET,required,notEmpty" envSeparator:","`
	SessionBackend string   `env:"SESSION_BACKEND" envDefault:"cookie"`

	// Key-Value Cache (Redis), required only for the redis session backend.
	RedisURL string `env:"REDIS_URL"`

	// Relational Database (PostgreSQL) for the Discord link ledger. Optional.
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrationPath overrides the embedded SQL migrations with a directory on disk.
	MigrationPath string `env:"MIGRATION_PATH"`

	// Discord OAuth application and bot credentials
	DiscordClientID     string `env:"DISCORD_CLIENT_ID"`
	DiscordClientSecret string `env:"DISCORD_CLIENT_SECRET"`
	DiscordBotToken     string `env:"DISCORD_BOT_TOKEN"`
	DiscordAPIURL       string `env:"DISCORD_API_URL" envDefault:"https://discord.com/api/v10"`

	// DiscordRolesLookupStrict fails the login when the guild role lookup fails
	// instead of continuing with an empty role list.
	DiscordRolesLookupStrict bool `env:"DISCORD_ROLES_LOOKUP_STRICT" envDefault:"false"`

	// Entitlement policy
	PremiumRoleIDs     []string      `env:"PREMIUM_ROLE_IDS" envSeparator:"," envDefault:"1210537409949548615,1211135581254451213,1211135713006723082"`
	RolesRefreshWindow time.Duration `env:"ROLES_REFRESH_WINDOW" envDefault:"192h"`

	// Remote market-data API
	MarketAPIURL string `env:"MARKET_API_URL" envDefault:"https://api.saddlebagexchange.com/api"`

	// Cross-Origin Resource Sharing
	ExtraOrigins []string `env:"EXTRA_ORIGINS" envSeparator:","`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c *Config) Validate() error {
	switch c.SessionBackend {
	case SessionBackendCookie:
	case SessionBackendRedis:
		if c.RedisURL == "" {
			return errors.New("config: SESSION_BACKEND=redis requires REDIS_URL")
		}
	default:
		return fmt.Errorf("config: unknown SESSION_BACKEND %q", c.SessionBackend)
	}

	for _, secret := range c.SessionSecrets {
		if secret == "" {
			return errors.New("config: SESSION_SECRET contains an empty entry")
		}
	}

	roles := &validate.Validator{}
	for _, id := range c.PremiumRoleIDs {
		roles.Snowflake("PREMIUM_ROLE_IDS", id)
	}
	if roles.HasErrors() {
		return fmt.Errorf("config: PREMIUM_ROLE_IDS must list Discord role ids: %w", roles.Err())
	}

	if c.RolesRefreshWindow <= 0 {
		c.RolesRefreshWindow = constants.DefaultRolesRefreshWindow
	}

	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// DiscordOAuthConfigured reports whether the OAuth application credentials are present.
func (c *Config) DiscordOAuthConfigured() bool {
	return c.DiscordClientID != "" && c.DiscordClientSecret != ""
}

// AllowedOrigins returns the extra CORS origins configured for this deployment.
func (c *Config) AllowedOrigins() []string {
	return c.ExtraOrigins
}
