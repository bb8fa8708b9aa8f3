// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/etl.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Table names, kept in step with db/schema.go
// --------------------------------------------------------------------------

const (
	// Bronze
	RawMetadataTable = "raw_match_metadata"
	RawEventsTable   = "raw_match_events"

	// Silver
	MetadataTable     = "silver_match_metadata"
	ReplacementsTable = "silver_player_replacements"
	EventsTable       = "silver_match_events"

	// Gold
	MatchSummaryTable   = "gold_match_summary"
	InningsSummaryTable = "gold_innings_summary"
	BattingStatsTable   = "gold_player_batting_stats"
	BowlingStatsTable   = "gold_player_bowling_stats"

	BattingLeadersView = "mv_batting_leaders"
	BowlingLeadersView = "mv_bowling_leaders"
)

// GoldEventsStream is the Redis stream written after each gold match.
const GoldEventsStream = "cricket.gold.match"

// GoldRefreshedChannel is the Postgres NOTIFY channel signalled after a gold
// run commits; the API purges its cache on it.
const GoldRefreshedChannel = "gold_refreshed"

// ErrNoDatabase is returned by Load when no database URL is configured.
// Commands that can run against the in-memory store may ignore it.
var ErrNoDatabase = errors.New("DATABASE_URL must be set")

// --------------------------------------------------------------------------
// Configuration, populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// Pipeline
	Workers       int
	GoldWriteMode string // replace, insert-missing

	// Redis (optional gold event publishing)
	RedisURL string

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Cache
	CacheEnabled bool
	CacheTTL     time.Duration

	// Leader view refresh in the API service; zero disables.
	ViewRefreshInterval time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
// The returned Config is always usable; the error is ErrNoDatabase when the
// database URL is missing.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:    envOr("DATABASE_URL", ""),
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 1),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 5),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		Workers:       envInt("ETL_WORKERS", 1),
		GoldWriteMode: envOr("GOLD_WRITE_MODE", "replace"),

		RedisURL: envOr("REDIS_URL", ""),

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:4321",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   envDuration("RATE_LIMIT_WINDOW", 60*time.Second),

		CacheEnabled: envBool("CACHE_ENABLED", true),
		CacheTTL:     envDuration("CACHE_TTL", 5*time.Minute),

		ViewRefreshInterval: envDuration("VIEW_REFRESH_INTERVAL", 0),
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.DatabaseURL == "" {
		return cfg, ErrNoDatabase
	}
	return cfg, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

// envDuration accepts Go durations ("90s") or a bare number of seconds.
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
