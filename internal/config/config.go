// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New builds a Config with defaults; Load layers file and env on top.
// - Keys are flat snake_case so GIGMATCH_MAX_PER_DAY maps to max_per_day.
// - Errors are wrapped with this package's sentinel kinds.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// LogFile additionally writes logs to a rotated file when set.
	LogFile string `koanf:"log_file"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr" validate:"required"`

	// CatalogPath points at a YAML festival catalog loaded at startup.
	CatalogPath string `koanf:"catalog_path"`

	// TablesPath replaces the built-in alias and genre affinity tables.
	TablesPath string `koanf:"tables_path"`

	// WorkerCount sets the number of lineup scoring workers.
	WorkerCount int `koanf:"worker_count" validate:"gte=0"`

	// ScoreCacheSize bounds the score memoization cache. 0 disables it.
	ScoreCacheSize int `koanf:"score_cache_size" validate:"gte=0"`

	// MaxTopArtists caps the top artists considered per profile.
	MaxTopArtists int `koanf:"max_top_artists" validate:"gt=0"`

	// MaxFestivals bounds the festival catalog. 0 means unbounded.
	MaxFestivals int `koanf:"max_festivals" validate:"gte=0"`

	// MaxPerDay, RestBreakMinutes and IncludeDiscoveries are itinerary
	// defaults; requests may override them.
	MaxPerDay          int  `koanf:"max_per_day" validate:"gt=0"`
	RestBreakMinutes   int  `koanf:"rest_break_minutes" validate:"gte=0"`
	IncludeDiscoveries bool `koanf:"include_discoveries"`

	// MaxRecommendations caps the recommendations returned per request.
	MaxRecommendations int `koanf:"max_recommendations" validate:"gt=0"`

	// RateLimitPerMinute limits /v1 requests per client IP. 0 disables it.
	RateLimitPerMinute int `koanf:"rate_limit_per_minute" validate:"gte=0"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		WorkerCount:        runtime.NumCPU(),
		ScoreCacheSize:     50_000,
		MaxTopArtists:      30,
		MaxPerDay:          6,
		RestBreakMinutes:   15,
		IncludeDiscoveries: false,
		MaxRecommendations: 50,
	}
}
