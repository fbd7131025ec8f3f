// Copyright (c) 2026 LocaFleet. All rights reserved.
// Author: dev@locafleet.app

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
  - DI-Friendly: Passed to core components (DB, Redis) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the LocaFleet API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis) — volatile password-reset tokens only.
	RedisURL string `env:"REDIS_URL,required"`

	// Brute-force lockout policy. Thresholds are configuration, not code:
	// operators can tighten or loosen them without a rebuild.
	LockoutThreshold int           `env:"LOCKOUT_THRESHOLD" envDefault:"5"`
	LockoutDuration  time.Duration `env:"LOCKOUT_DURATION"  envDefault:"30m"`

	// SessionDuration is the fixed, absolute lifetime of a session token.
	// There is no sliding window: validation never extends expiry.
	SessionDuration time.Duration `env:"SESSION_DURATION" envDefault:"8h"`

	// SessionPurgeInterval drives the optional background reclamation of
	// expired session rows. Zero disables the sweep; expiry is always
	// enforced lazily at validation time regardless.
	SessionPurgeInterval time.Duration `env:"SESSION_PURGE_INTERVAL" envDefault:"1h"`

	// BcryptCost tunes the password hash work factor. Stored digests
	// self-describe their cost, so raising this never invalidates them.
	BcryptCost int `env:"BCRYPT_COST" envDefault:"0"`

	// StoreTimeout bounds the dependency health probes and each background
	// purge sweep so a stalled store surfaces as degraded instead of
	// hanging the caller.
	StoreTimeout time.Duration `env:"STORE_TIMEOUT" envDefault:"3s"`

	// Bootstrap administrator, created once at first initialization.
	BootstrapAdminUsername string `env:"BOOTSTRAP_ADMIN_USERNAME" envDefault:"admin"`
	BootstrapAdminPassword string `env:"BOOTSTRAP_ADMIN_PASSWORD" envDefault:"admin123"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.LockoutThreshold < 1 {
		return nil, fmt.Errorf("config: LOCKOUT_THRESHOLD must be at least 1, got %d", cfg.LockoutThreshold)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
