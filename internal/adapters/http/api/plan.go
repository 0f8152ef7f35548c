package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/okian/gigmatch/internal/adapters/ics"
	"github.com/okian/gigmatch/internal/domain/itinerary"
	"github.com/okian/gigmatch/internal/domain/model"
	"github.com/okian/gigmatch/internal/domain/schedule"
	"github.com/okian/gigmatch/pkg/logger"
)

// PlanDependencies defines the interface for festival planning operations.
type PlanDependencies interface {
	Recommendations(ctx context.Context, festivalID string, profile model.UserProfile, limit int) ([]model.ScoredPerformance, error)
	Grid(ctx context.Context, festivalID string, profile model.UserProfile) (schedule.Grid, error)
	Itinerary(ctx context.Context, festivalID string, profile model.UserProfile, opts itinerary.Options) (model.Itinerary, error)
	ExportItinerary(ctx context.Context, w io.Writer, festivalID string, profile model.UserProfile, opts itinerary.Options) (ics.Result, error)
	ItineraryDefaults() itinerary.Options
	Conflicts(ctx context.Context, selected []model.Performance) ([]model.ScheduleConflict, error)
}

// PlanHandler handles recommendation, grid, itinerary and conflict requests.
type PlanHandler struct {
	deps   PlanDependencies
	logger logger.Logger
}

// NewPlanHandler creates a new plan handler.
func NewPlanHandler(deps PlanDependencies, l logger.Logger) *PlanHandler {
	return &PlanHandler{deps: deps, logger: l}
}

// planRequest is shared by the festival planning endpoints. Itinerary
// fields left out fall back to the service defaults.
type planRequest struct {
	Profile            model.UserProfile `json:"profile"`
	Limit              int               `json:"limit" validate:"gte=0"`
	MaxPerDay          *int              `json:"maxPerDay,omitempty" validate:"omitempty,gt=0"`
	IncludeDiscoveries *bool             `json:"includeDiscoveries,omitempty"`
	RestBreakMinutes   *int              `json:"restBreakMinutes,omitempty" validate:"omitempty,gte=0"`
}

func (p *planRequest) options(defaults itinerary.Options) itinerary.Options {
	opts := defaults
	if p.MaxPerDay != nil {
		opts.MaxPerDay = *p.MaxPerDay
	}
	if p.IncludeDiscoveries != nil {
		opts.IncludeDiscoveries = *p.IncludeDiscoveries
	}
	if p.RestBreakMinutes != nil {
		opts.RestBreakMinutes = *p.RestBreakMinutes
	}
	return opts
}

type recommendationsResponse struct {
	FestivalID      string                    `json:"festivalId"`
	Recommendations []model.ScoredPerformance `json:"recommendations"`
}

type conflictsRequest struct {
	Selected []model.Performance `json:"selected" validate:"required"`
}

type conflictsResponse struct {
	Conflicts []model.ScheduleConflict `json:"conflicts"`
}

func (h *PlanHandler) decodePlan(w http.ResponseWriter, r *http.Request, op string) (*planRequest, bool) {
	var req planRequest
	if err := decode(w, r, maxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return nil, false
	}
	return &req, true
}

// HandleRecommendations handles POST /v1/festivals/{festivalID}/recommendations.
func (h *PlanHandler) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	const op = "api.recommendations"
	req, ok := h.decodePlan(w, r, op)
	if !ok {
		return
	}
	id := chi.URLParam(r, routeFestivalKey)
	recs, err := h.deps.Recommendations(r.Context(), id, req.Profile, req.Limit)
	if err != nil {
		fail(r.Context(), h.logger, w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, recommendationsResponse{FestivalID: id, Recommendations: recs})
}

// HandleGrid handles POST /v1/festivals/{festivalID}/grid.
func (h *PlanHandler) HandleGrid(w http.ResponseWriter, r *http.Request) {
	const op = "api.grid"
	req, ok := h.decodePlan(w, r, op)
	if !ok {
		return
	}
	grid, err := h.deps.Grid(r.Context(), chi.URLParam(r, routeFestivalKey), req.Profile)
	if err != nil {
		fail(r.Context(), h.logger, w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, grid)
}

// HandleItinerary handles POST /v1/festivals/{festivalID}/itinerary.
func (h *PlanHandler) HandleItinerary(w http.ResponseWriter, r *http.Request) {
	const op = "api.itinerary"
	req, ok := h.decodePlan(w, r, op)
	if !ok {
		return
	}
	it, err := h.deps.Itinerary(r.Context(), chi.URLParam(r, routeFestivalKey), req.Profile, req.options(h.deps.ItineraryDefaults()))
	if err != nil {
		fail(r.Context(), h.logger, w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// HandleItineraryICS handles POST /v1/festivals/{festivalID}/itinerary.ics.
// The calendar is rendered in full before the response starts so that a
// failure still produces a JSON error.
func (h *PlanHandler) HandleItineraryICS(w http.ResponseWriter, r *http.Request) {
	const op = "api.itinerary_ics"
	req, ok := h.decodePlan(w, r, op)
	if !ok {
		return
	}
	id := chi.URLParam(r, routeFestivalKey)

	var buf bytes.Buffer
	res, err := h.deps.ExportItinerary(r.Context(), &buf, id, req.Profile, req.options(h.deps.ItineraryDefaults()))
	if err != nil {
		fail(r.Context(), h.logger, w, op, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+"-itinerary.ics"))
	w.Header().Set("X-Calendar-Events", strconv.Itoa(res.Events))
	w.Header().Set("X-Calendar-Skipped", strconv.Itoa(res.Skipped))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// HandleConflicts handles POST /v1/conflicts.
func (h *PlanHandler) HandleConflicts(w http.ResponseWriter, r *http.Request) {
	const op = "api.conflicts"
	var req conflictsRequest
	if err := decode(w, r, maxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	conflicts, err := h.deps.Conflicts(r.Context(), req.Selected)
	if err != nil {
		fail(r.Context(), h.logger, w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, conflictsResponse{Conflicts: conflicts})
}
