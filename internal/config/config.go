// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// RedisURL is the Redis connection URL for the access-token blacklist; empty disables it.
	RedisURL string `mapstructure:"REDIS_URL"`
	// JWTPrivateKey is the PEM-encoded private key (RSA or ECDSA) or path to file.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key or path to file.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTIssuer is the iss claim (e.g. "fintrack-auth").
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim (e.g. "fintrack-api").
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// JWTAccessTTL is the access token lifetime (e.g. "15m").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// JWTRefreshTTL is the refresh token lifetime (e.g. "168h").
	JWTRefreshTTL string `mapstructure:"JWT_REFRESH_TTL"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// LockoutThreshold is the consecutive failed-login count that trips a lock; default 5.
	LockoutThreshold int `mapstructure:"LOCKOUT_THRESHOLD"`
	// LockoutWindow is how long a tripped lock lasts (e.g. "15m").
	LockoutWindow string `mapstructure:"LOCKOUT_WINDOW"`
	// SessionCap is the maximum number of active sessions per user; default 5.
	SessionCap int `mapstructure:"SESSION_CAP"`
	// SessionTTLStr is the session lifetime (e.g. "168h"); extended on refresh.
	SessionTTLStr string `mapstructure:"SESSION_TTL"`
	// ResetTokenTTLStr is the password-reset token lifetime (e.g. "1h").
	ResetTokenTTLStr string `mapstructure:"RESET_TOKEN_TTL"`
	// ResendAPIKey is the Resend API key for reset emails; empty logs links instead.
	ResendAPIKey string `mapstructure:"RESEND_API_KEY"`
	// EmailFrom is the From address for reset emails.
	EmailFrom string `mapstructure:"EMAIL_FROM"`
	// ResetLinkBase is the frontend URL the reset token is appended to.
	ResetLinkBase string `mapstructure:"RESET_LINK_BASE"`
	// OTLPEndpoint is the OTLP trace collector endpoint; empty disables export.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP export even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTLP_INSECURE"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the
// environment via Viper. Missing .env is ignored (e.g. in CI). Env vars
// override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("JWT_ISSUER", "fintrack-auth")
	v.SetDefault("JWT_AUDIENCE", "fintrack-api")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("JWT_REFRESH_TTL", "168h") // 7d
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("LOCKOUT_THRESHOLD", 5)
	v.SetDefault("LOCKOUT_WINDOW", "15m")
	v.SetDefault("SESSION_CAP", 5)
	v.SetDefault("SESSION_TTL", "168h")
	v.SetDefault("RESET_TOKEN_TTL", "1h")
	v.SetDefault("RESEND_API_KEY", "")
	v.SetDefault("EMAIL_FROM", "no-reply@fintrack.app")
	v.SetDefault("RESET_LINK_BASE", "http://localhost:3000/reset-password")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("OTLP_INSECURE", false)
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	if cfg.LockoutThreshold <= 0 {
		return nil, errors.New("config: LOCKOUT_THRESHOLD must be positive")
	}
	if cfg.SessionCap <= 0 {
		return nil, errors.New("config: SESSION_CAP must be positive")
	}

	return &cfg, nil
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	return durationOr(c.JWTAccessTTL, 15*time.Minute)
}

// RefreshTTL parses JWTRefreshTTL as a time.Duration. Returns 168h if unset or invalid.
func (c *Config) RefreshTTL() time.Duration {
	return durationOr(c.JWTRefreshTTL, 168*time.Hour)
}

// LockWindow parses LockoutWindow as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) LockWindow() time.Duration {
	return durationOr(c.LockoutWindow, 15*time.Minute)
}

// SessionTTL parses SessionTTLStr as a time.Duration. Returns 168h if unset or invalid.
func (c *Config) SessionTTL() time.Duration {
	return durationOr(c.SessionTTLStr, 168*time.Hour)
}

// ResetTokenTTL parses ResetTokenTTLStr as a time.Duration. Returns 1h if unset or invalid.
func (c *Config) ResetTokenTTL() time.Duration {
	return durationOr(c.ResetTokenTTLStr, time.Hour)
}

func durationOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
