package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// Validate checks Config for production-critical problems.
// It collects all errors into a single joined error.
func (c *Config) Validate() error {
	var errs []string

	// Gateway
	if c.Gateway.APIKey == "" {
		errs = append(errs, "GATEWAY_API_KEY is required")
	}
	if u, err := url.Parse(c.Gateway.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("GATEWAY_URL must be an absolute URL, got %q", c.Gateway.BaseURL))
	}
	if c.Gateway.Timeout <= 0 {
		errs = append(errs, "GATEWAY_TIMEOUT must be positive")
	}
	// Two sequential gateway calls must fit in one response
	if c.Server.WriteTimeout > 0 && c.Server.WriteTimeout < 2*c.Gateway.Timeout {
		errs = append(errs, "SERVER_WRITE_TIMEOUT must be at least twice GATEWAY_TIMEOUT")
	}

	// Store
	switch c.Store.Driver {
	case StoreDriverPostgres:
		if c.DB.Password == "" {
			errs = append(errs, "DB_PASSWORD is required")
		}
		if c.DB.Port < 1 || c.DB.Port > 65535 {
			errs = append(errs, fmt.Sprintf("DB_PORT must be 1–65535, got %d", c.DB.Port))
		}
	case StoreDriverSupabase:
		if c.Supabase.URL == "" {
			errs = append(errs, "SUPABASE_URL is required")
		}
		if c.Supabase.ServiceRoleKey == "" {
			errs = append(errs, "SUPABASE_SERVICE_ROLE_KEY is required")
		}
	default:
		errs = append(errs, fmt.Sprintf("STORE_DRIVER must be %q or %q, got %q", StoreDriverPostgres, StoreDriverSupabase, c.Store.Driver))
	}

	// Port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT must be 1–65535, got %d", c.Server.Port))
	}

	// Rate limiting
	if c.RateLimit.Enabled {
		if c.Redis.Port < 1 || c.Redis.Port > 65535 {
			errs = append(errs, fmt.Sprintf("REDIS_PORT must be 1–65535, got %d", c.Redis.Port))
		}
		if c.RateLimit.MaxRequests < 1 {
			errs = append(errs, "RATELIMIT_MAX_REQUESTS must be positive")
		}
		if c.RateLimit.WindowSec < 1 {
			errs = append(errs, "RATELIMIT_WINDOW_SEC must be positive")
		}
	}

	// Auth: warn only
	if c.Auth.JWTSecret == "" {
		slog.Warn("AUTH_JWT_SECRET is empty, function routes accept unauthenticated callers")
	} else if len(c.Auth.JWTSecret) < 32 {
		errs = append(errs, "AUTH_JWT_SECRET must be at least 32 characters")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
