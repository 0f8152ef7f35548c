// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/okian/gigmatch/internal/adapters/ics"
	"github.com/okian/gigmatch/internal/adapters/repository"
	"github.com/okian/gigmatch/internal/domain/itinerary"
	"github.com/okian/gigmatch/internal/domain/model"
	"github.com/okian/gigmatch/internal/domain/schedule"
	"github.com/okian/gigmatch/pkg/logger"
)

// Request body limits.
const (
	maxBodyBytes     = 1 << 20
	maxCatalogBytes  = 8 << 20
	routeFestivalKey = "festivalID"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Match scores a single performance against a profile.
	Match(ctx context.Context, perf model.Performance, profile model.UserProfile) (model.ScoredPerformance, error)

	// Catalog operations.
	Festivals(ctx context.Context) ([]repository.Summary, error)
	Festival(ctx context.Context, id string) (model.Festival, error)
	PutFestival(ctx context.Context, f *model.Festival) (model.Festival, error)

	// Planning operations over a stored festival.
	Recommendations(ctx context.Context, festivalID string, profile model.UserProfile, limit int) ([]model.ScoredPerformance, error)
	Grid(ctx context.Context, festivalID string, profile model.UserProfile) (schedule.Grid, error)
	Itinerary(ctx context.Context, festivalID string, profile model.UserProfile, opts itinerary.Options) (model.Itinerary, error)
	ExportItinerary(ctx context.Context, w io.Writer, festivalID string, profile model.UserProfile, opts itinerary.Options) (ics.Result, error)
	ItineraryDefaults() itinerary.Options

	// Conflicts checks a user's own selection.
	Conflicts(ctx context.Context, selected []model.Performance) ([]model.ScheduleConflict, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	matchHandler    *MatchHandler
	festivalHandler *FestivalHandler
	planHandler     *PlanHandler
	limit           func(http.Handler) http.Handler
	logger          logger.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithRateLimit limits /v1 requests per client IP. See RateLimit.
func WithRateLimit(requests int, window time.Duration) ServerOption {
	return func(s *Server) {
		s.limit = RateLimit(requests, window)
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	l := logger.Get().Named("api")
	s := &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		matchHandler:    NewMatchHandler(deps, l),
		festivalHandler: NewFestivalHandler(deps, l),
		planHandler:     NewPlanHandler(deps, l),
		limit:           RateLimit(0, 0),
		logger:          l,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(ctx context.Context, r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/metrics", s.healthHandler.HandleMetrics)
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.limit)
		r.Post("/match", MetricsMiddleware(s.matchHandler.HandleMatch, "match"))
		r.Post("/conflicts", MetricsMiddleware(s.planHandler.HandleConflicts, "conflicts"))

		r.Route("/festivals", func(r chi.Router) {
			r.Get("/", MetricsMiddleware(s.festivalHandler.HandleList, "festivals"))
			r.Route("/{"+routeFestivalKey+"}", func(r chi.Router) {
				r.Get("/", MetricsMiddleware(s.festivalHandler.HandleGet, "festival"))
				r.Put("/", MetricsMiddleware(s.festivalHandler.HandlePut, "festival"))
				r.Post("/recommendations", MetricsMiddleware(s.planHandler.HandleRecommendations, "recommendations"))
				r.Post("/grid", MetricsMiddleware(s.planHandler.HandleGrid, "grid"))
				r.Post("/itinerary", MetricsMiddleware(s.planHandler.HandleItinerary, "itinerary"))
				r.Post("/itinerary.ics", MetricsMiddleware(s.planHandler.HandleItineraryICS, "itinerary_ics"))
			})
		})
	})

	s.logger.Debug(ctx, "api routes registered")
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var validate = validator.New(validator.WithRequiredStructEnabled()) //nolint:gochecknoglobals // validator caches struct metadata

// decode reads a JSON body of at most limit bytes into v and validates it.
func decode(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("validate body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// classify maps upstream errors to an API error kind.
func classify(err error) error {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, repository.ErrInvalidFestival),
		errors.Is(err, itinerary.ErrInvalidMaxPerDay):
		return ErrBadRequest
	case errors.Is(err, ErrNotFound), errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrCatalogFull):
		return ErrConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrUnavailable
	default:
		return ErrInternal
	}
}

// fail writes err with the status its kind maps to. Server side failures
// are logged.
func fail(ctx context.Context, l logger.Logger, w http.ResponseWriter, op string, err error) {
	kind := classify(err)
	wrapped := WrapKind(op, kind, err)
	switch kind {
	case ErrBadRequest:
		writeError(w, http.StatusBadRequest, "bad_request", wrapped)
	case ErrNotFound:
		writeError(w, http.StatusNotFound, "not_found", wrapped)
	case ErrConflict:
		writeError(w, http.StatusConflict, "conflict", wrapped)
	case ErrUnavailable:
		writeError(w, http.StatusServiceUnavailable, "unavailable", wrapped)
	default:
		l.Error(ctx, "request failed", logger.String("op", op), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", NewKind(op, ErrInternal))
	}
}
