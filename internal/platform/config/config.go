package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures service level configuration.
type Server struct {
	Addr          string
	DatabaseURL   string
	JWTSigningKey string
	SessionTTL    time.Duration
	TermsVersion  string

	// Lockout knobs. Defaults match the product rule: 10 failed attempts
	// per 30 minutes per (team, truncated IP).
	LockoutWindow  time.Duration
	LockoutCeiling int

	// Background maintenance.
	CleanupInterval time.Duration
	RetentionCutoff time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:            ":8080",
		SessionTTL:      12 * time.Hour,
		TermsVersion:    "v1.0",
		LockoutWindow:   30 * time.Minute,
		LockoutCeiling:  10,
		CleanupInterval: 15 * time.Minute,
		RetentionCutoff: 365 * 24 * time.Hour,
	}

	if addr := os.Getenv("RINKSIDE_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.JWTSigningKey = os.Getenv("JWT_SIGNING_KEY")
	if cfg.JWTSigningKey == "" {
		// Development default - must be overridden in production.
		cfg.JWTSigningKey = "dev-secret-key-change-in-production"
	}
	if v := os.Getenv("TERMS_VERSION"); v != "" {
		cfg.TermsVersion = v
	}
	if d, err := time.ParseDuration(os.Getenv("SESSION_TTL")); err == nil && d > 0 {
		cfg.SessionTTL = d
	}
	if d, err := time.ParseDuration(os.Getenv("LOCKOUT_WINDOW")); err == nil && d > 0 {
		cfg.LockoutWindow = d
	}
	if n, err := strconv.Atoi(os.Getenv("LOCKOUT_CEILING")); err == nil && n > 0 {
		cfg.LockoutCeiling = n
	}
	if d, err := time.ParseDuration(os.Getenv("CLEANUP_INTERVAL")); err == nil && d > 0 {
		cfg.CleanupInterval = d
	}
	if d, err := time.ParseDuration(os.Getenv("RETENTION_CUTOFF")); err == nil && d > 0 {
		cfg.RetentionCutoff = d
	}

	return cfg
}
