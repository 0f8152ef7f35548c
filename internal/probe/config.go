// Package probe drives a running gigmatch server with synthetic festivals
// and profiles and checks the plans it returns.
package probe

import (
	"runtime"
	"time"
)

// Default probe settings.
const (
	DefaultBaseURL    = "http://localhost:9080"
	DefaultFestivals  = 3
	DefaultDays       = 3
	DefaultSetsPerDay = 16
	DefaultProfiles   = 20
	DefaultTopArtists = 10
	DefaultMaxPerDay  = 6
	DefaultTimeout    = 30 * time.Second
	DefaultRunTimeout = 10 * time.Minute
)

// Config holds configuration for a probe run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Festivals  int           // Festivals to generate and upload
	Days       int           // Days per festival
	SetsPerDay int           // Performances per day
	Profiles   int           // Profiles planned against each festival
	TopArtists int           // Top artists per generated profile
	MaxPerDay  int           // Itinerary bound requested
	Workers    int           // Concurrent requests
	Rate       float64       // Requests per second; 0 means unpaced
	Timeout    time.Duration // HTTP request timeout
	Seed       uint64        // Seed for the generators; equal seeds give equal data
	LogFile    string        // Optional log file
	Verbose    bool          // Enable debug logging
}

// DefaultConfig returns a Config with the default settings.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:    DefaultBaseURL,
		Festivals:  DefaultFestivals,
		Days:       DefaultDays,
		SetsPerDay: DefaultSetsPerDay,
		Profiles:   DefaultProfiles,
		TopArtists: DefaultTopArtists,
		MaxPerDay:  DefaultMaxPerDay,
		Workers:    runtime.NumCPU(),
		Timeout:    DefaultTimeout,
		Seed:       uint64(time.Now().UnixNano()),
	}
}

// Stats holds run statistics.
type Stats struct {
	FestivalsUploaded int
	Requests          int
	Failures          int
	Violations        int
	SlotsPlanned      int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
