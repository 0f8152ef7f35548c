// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/okian/gigmatch/internal/adapters/ics"
	workerpool "github.com/okian/gigmatch/internal/adapters/mq/worker"
	"github.com/okian/gigmatch/internal/adapters/repository"
	"github.com/okian/gigmatch/internal/domain/genre"
	"github.com/okian/gigmatch/internal/domain/itinerary"
	"github.com/okian/gigmatch/internal/domain/model"
	"github.com/okian/gigmatch/internal/domain/namematch"
	"github.com/okian/gigmatch/internal/domain/schedule"
	"github.com/okian/gigmatch/internal/domain/scorecache"
	"github.com/okian/gigmatch/internal/domain/scoring"
	"github.com/okian/gigmatch/internal/domain/tables"
	"github.com/okian/gigmatch/pkg/logger"
	"github.com/okian/gigmatch/pkg/metrics"
)

// Defaults used when no option overrides them.
const (
	defaultScoreCacheSize     = 50_000
	defaultMaxTopArtists      = 30
	defaultMaxRecommendations = 50
	defaultMaxPerDay          = 6
	defaultRestBreakMinutes   = 15
)

// Service implements the API dependencies for the matching engine.
type Service struct {
	mu sync.RWMutex

	// Core components
	tables    *tables.Tables
	scorer    scoring.Scorer
	cache     *scorecache.Scorer
	store     repository.Store
	pool      *workerpool.Pool
	generator *itinerary.Generator
	encoder   *ics.Encoder

	// Configuration
	workerCount        int
	scoreCacheSize     int
	maxTopArtists      int
	maxRecommendations int
	maxFestivals       int
	tablesPath         string
	catalogPath        string
	defaults           itinerary.Options

	// State
	started bool

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:        runtime.NumCPU(),
		scoreCacheSize:     defaultScoreCacheSize,
		maxTopArtists:      defaultMaxTopArtists,
		maxRecommendations: defaultMaxRecommendations,
		defaults: itinerary.Options{
			MaxPerDay:        defaultMaxPerDay,
			RestBreakMinutes: defaultRestBreakMinutes,
		},
		logger: nil, // replaced when the service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads tables and the catalog, wires the scorer and starts the
// worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting matching service...")

	tb, err := s.loadTables()
	if err != nil {
		return err
	}
	s.tables = tb

	var scorer scoring.Scorer = scoring.NewTieredScorer(
		scoring.WithNameMatcher(namematch.New(namematch.WithAliases(tb.Aliases))),
		scoring.WithGenreResolver(genre.NewResolver(tb.Affinity)),
	)
	s.cache = nil
	if s.scoreCacheSize > 0 {
		s.cache = scorecache.NewScorer(scorer, scorecache.NewInMemoryCache(
			scorecache.WithMaxSize(s.scoreCacheSize),
		))
		scorer = s.cache
	}
	s.scorer = scorer

	if s.store == nil {
		s.store = repository.NewMemoryStore(repository.WithMaxFestivals(s.maxFestivals))
	}
	if s.catalogPath != "" {
		n, err := repository.LoadCatalogFile(ctx, s.store, s.catalogPath)
		if err != nil {
			return fmt.Errorf("load catalog %s: %w", s.catalogPath, err)
		}
		s.logger.Info(ctx, "festival catalog loaded",
			logger.String("path", s.catalogPath),
			logger.Int("festivals", n),
		)
	}

	s.generator = itinerary.New()
	s.encoder = ics.NewEncoder()

	s.pool = workerpool.NewPool(s.workerCount, s.scorer, workerpool.WithLogger(s.logger.Named("worker")))
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "matching service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("scoreCacheSize", s.scoreCacheSize),
		logger.Int("festivals", s.store.Count(ctx)),
	)

	return nil
}

func (s *Service) loadTables() (*tables.Tables, error) {
	switch {
	case s.tables != nil:
		return s.tables, nil
	case s.tablesPath != "":
		tb, err := tables.LoadFile(s.tablesPath)
		if err != nil {
			return nil, fmt.Errorf("load tables: %w", err)
		}
		return tb, nil
	default:
		tb, err := tables.Default()
		if err != nil {
			return nil, fmt.Errorf("load default tables: %w", err)
		}
		return tb, nil
	}
}

// Stop gracefully shuts down the service.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping matching service...")

	var err error
	if s.pool != nil {
		err = s.pool.Shutdown(ctx)
	}

	s.started = false
	s.logger.Info(ctx, "matching service stopped")
	return err
}

// components returns the started scorer and pool, or ErrNotStarted.
func (s *Service) components() (scoring.Scorer, *workerpool.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	return s.scorer, s.pool, nil
}

func (s *Service) capped(profile *model.UserProfile) *model.UserProfile {
	p := profile.Capped(s.maxTopArtists)
	return &p
}

// Match scores one performance against a profile.
func (s *Service) Match(ctx context.Context, perf model.Performance, profile model.UserProfile) (model.ScoredPerformance, error) {
	scorer, _, err := s.components()
	if err != nil {
		return model.ScoredPerformance{}, err
	}

	start := time.Now()
	sp := scoring.ScorePerformance(scorer, &perf, s.capped(&profile))
	metrics.RecordScoringLatency(float64(time.Since(start).Microseconds()) / 1000)
	metrics.RecordPerformanceScored(string(sp.Match.MatchType))

	s.logger.Debug(ctx, "performance scored",
		logger.String("artist", perf.ArtistName),
		logger.String("matchType", string(sp.Match.MatchType)),
		logger.Int("score", sp.Match.Score),
	)
	return sp, nil
}

// Festivals lists the catalog.
func (s *Service) Festivals(ctx context.Context) ([]repository.Summary, error) {
	if _, _, err := s.components(); err != nil {
		return nil, err
	}
	return s.store.List(ctx), nil
}

// Festival returns one festival. Unknown IDs yield repository.ErrNotFound.
func (s *Service) Festival(ctx context.Context, id string) (model.Festival, error) {
	if _, _, err := s.components(); err != nil {
		return model.Festival{}, err
	}
	return s.store.Get(ctx, id)
}

// PutFestival validates and stores a festival.
func (s *Service) PutFestival(ctx context.Context, f *model.Festival) (model.Festival, error) {
	if _, _, err := s.components(); err != nil {
		return model.Festival{}, err
	}
	stored, err := s.store.Upsert(ctx, f)
	if err != nil {
		return model.Festival{}, err
	}
	s.logger.Info(ctx, "festival stored",
		logger.String("festival", stored.ID),
		logger.Int("performances", len(stored.Lineup)),
	)
	return stored, nil
}

// scoreFestival loads a festival and scores its whole lineup.
func (s *Service) scoreFestival(ctx context.Context, festivalID string, profile *model.UserProfile) (model.Festival, []model.ScoredPerformance, error) {
	_, pool, err := s.components()
	if err != nil {
		return model.Festival{}, nil, err
	}
	f, err := s.store.Get(ctx, festivalID)
	if err != nil {
		return model.Festival{}, nil, err
	}
	scored, err := pool.ScoreLineup(ctx, f.Lineup, s.capped(profile))
	if err != nil {
		return model.Festival{}, nil, err
	}
	return f, scored, nil
}

// Recommendations returns the festival lineup scored against a profile,
// best first. Equal scores keep the stronger match type, then lineup order.
// A limit of 0 or above the configured maximum returns the maximum.
func (s *Service) Recommendations(ctx context.Context, festivalID string, profile model.UserProfile, limit int) ([]model.ScoredPerformance, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit %d", ErrInvalidInput, limit)
	}
	_, scored, err := s.scoreFestival(ctx, festivalID, &profile)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(scored, func(a, b model.ScoredPerformance) int {
		if c := cmp.Compare(b.Match.Score, a.Match.Score); c != 0 {
			return c
		}
		return cmp.Compare(b.Match.MatchType.Priority(), a.Match.MatchType.Priority())
	})

	if limit == 0 || limit > s.maxRecommendations {
		limit = s.maxRecommendations
	}
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// Grid lays the scored lineup out per day and start time.
func (s *Service) Grid(ctx context.Context, festivalID string, profile model.UserProfile) (schedule.Grid, error) {
	f, scored, err := s.scoreFestival(ctx, festivalID, &profile)
	if err != nil {
		return schedule.Grid{}, err
	}
	g := schedule.BuildGrid(scored, f.Days)
	metrics.RecordGridBuilt()
	return g, nil
}

// ItineraryDefaults returns the options applied when a request omits them.
func (s *Service) ItineraryDefaults() itinerary.Options {
	return s.defaults
}

// Itinerary plans a conflict-free schedule for a profile.
func (s *Service) Itinerary(ctx context.Context, festivalID string, profile model.UserProfile, opts itinerary.Options) (model.Itinerary, error) {
	it, _, err := s.itinerary(ctx, festivalID, &profile, opts)
	return it, err
}

func (s *Service) itinerary(ctx context.Context, festivalID string, profile *model.UserProfile, opts itinerary.Options) (model.Itinerary, model.Festival, error) {
	start := time.Now()
	f, scored, err := s.scoreFestival(ctx, festivalID, profile)
	if err != nil {
		return model.Itinerary{}, model.Festival{}, err
	}
	it, err := s.generator.Generate(scored, &f, opts)
	if err != nil {
		return model.Itinerary{}, model.Festival{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	metrics.RecordItineraryGenerated(it.SlotCount(), float64(time.Since(start).Microseconds())/1000)

	s.logger.Debug(ctx, "itinerary generated",
		logger.String("festival", f.ID),
		logger.Int("slots", it.SlotCount()),
		logger.Int("conflicts", len(it.Conflicts)),
	)
	return it, f, nil
}

// ExportItinerary plans an itinerary and writes it to w as an iCalendar
// document.
func (s *Service) ExportItinerary(ctx context.Context, w io.Writer, festivalID string, profile model.UserProfile, opts itinerary.Options) (ics.Result, error) {
	it, f, err := s.itinerary(ctx, festivalID, &profile, opts)
	if err != nil {
		return ics.Result{}, err
	}
	res, err := s.encoder.Encode(w, &it, &f)
	if err != nil {
		return ics.Result{}, fmt.Errorf("encode calendar: %w", err)
	}
	metrics.RecordCalendarExport()
	if res.Skipped > 0 {
		s.logger.Warn(ctx, "calendar export skipped undated slots",
			logger.String("festival", f.ID),
			logger.Int("skipped", res.Skipped),
		)
	}
	return res, nil
}

// Conflicts reports overlaps among a user's own selection.
func (s *Service) Conflicts(ctx context.Context, selected []model.Performance) ([]model.ScheduleConflict, error) {
	if _, _, err := s.components(); err != nil {
		return nil, err
	}
	conflicts := schedule.DetectConflicts(selected)
	metrics.RecordConflictsDetected(len(conflicts))
	s.logger.Debug(ctx, "conflicts detected",
		logger.Int("selected", len(selected)),
		logger.Int("conflicts", len(conflicts)),
	)
	return conflicts, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":        s.started,
		"workerCount":    s.workerCount,
		"scoreCacheSize": s.scoreCacheSize,
		"maxTopArtists":  s.maxTopArtists,
		"maxPerDay":      s.defaults.MaxPerDay,
	}

	if s.started {
		festivals := s.store.Count(context.Background())
		stats["festivals"] = festivals
		metrics.UpdateFestivalsTotal(festivals)
		metrics.UpdateWorkerCount(s.pool.Size())
		if s.cache != nil {
			size := s.cache.Size()
			stats["cachedScores"] = size
			metrics.UpdateScoreCacheSize(size)
		}
	}

	return stats
}
