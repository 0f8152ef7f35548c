package service

import (
	"github.com/okian/gigmatch/internal/adapters/repository"
	"github.com/okian/gigmatch/internal/domain/itinerary"
	"github.com/okian/gigmatch/internal/domain/tables"
	"github.com/okian/gigmatch/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of lineup scoring workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithScoreCacheSize bounds the score cache. 0 disables caching.
func WithScoreCacheSize(size int) Option {
	return func(s *Service) {
		if size >= 0 {
			s.scoreCacheSize = size
		}
	}
}

// WithMaxTopArtists caps the top artists considered per profile.
func WithMaxTopArtists(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxTopArtists = n
		}
	}
}

// WithMaxRecommendations caps recommendations returned per request.
func WithMaxRecommendations(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxRecommendations = n
		}
	}
}

// WithMaxFestivals bounds the festival catalog. 0 means unbounded.
func WithMaxFestivals(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxFestivals = n
		}
	}
}

// WithItineraryDefaults sets the options used when a request leaves them out.
func WithItineraryDefaults(opts itinerary.Options) Option {
	return func(s *Service) {
		if opts.MaxPerDay > 0 {
			s.defaults = opts
		}
	}
}

// WithTables injects alias and affinity tables instead of the built-in ones.
func WithTables(t *tables.Tables) Option {
	return func(s *Service) {
		s.tables = t
	}
}

// WithTablesPath loads alias and affinity tables from a YAML file on Start.
func WithTablesPath(path string) Option {
	return func(s *Service) {
		s.tablesPath = path
	}
}

// WithCatalogPath loads a festival catalog from a YAML file on Start.
func WithCatalogPath(path string) Option {
	return func(s *Service) {
		s.catalogPath = path
	}
}

// WithStore replaces the in-memory festival store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
