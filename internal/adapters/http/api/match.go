package api

import (
	"context"
	"net/http"

	"github.com/okian/gigmatch/internal/domain/model"
	"github.com/okian/gigmatch/pkg/logger"
)

// MatchDependencies defines the interface for single performance scoring.
type MatchDependencies interface {
	Match(ctx context.Context, perf model.Performance, profile model.UserProfile) (model.ScoredPerformance, error)
}

// MatchHandler handles match requests.
type MatchHandler struct {
	deps   MatchDependencies
	logger logger.Logger
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(deps MatchDependencies, l logger.Logger) *MatchHandler {
	return &MatchHandler{deps: deps, logger: l}
}

// matchRequest mirrors the OpenAPI schema for POST /v1/match.
type matchRequest struct {
	Performance performanceInput  `json:"performance"`
	Profile     model.UserProfile `json:"profile"`
}

// performanceInput is a performance as clients send it; only the billing is
// required to score.
type performanceInput struct {
	ID         string   `json:"id"`
	ArtistName string   `json:"artistName" validate:"required"`
	CoArtists  []string `json:"coArtists"`
	Day        string   `json:"day"`
	Stage      string   `json:"stage"`
	StartTime  string   `json:"startTime"`
	EndTime    string   `json:"endTime"`
	Genres     []string `json:"genres"`
	Headliner  bool     `json:"headliner"`
}

func (p performanceInput) model() model.Performance {
	return model.Performance{
		ID:         p.ID,
		ArtistName: p.ArtistName,
		CoArtists:  p.CoArtists,
		Day:        p.Day,
		Stage:      p.Stage,
		StartTime:  p.StartTime,
		EndTime:    p.EndTime,
		Genres:     p.Genres,
		Headliner:  p.Headliner,
	}
}

// HandleMatch handles POST /v1/match requests.
func (h *MatchHandler) HandleMatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.match"
	var req matchRequest
	if err := decode(w, r, maxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	sp, err := h.deps.Match(r.Context(), req.Performance.model(), req.Profile)
	if err != nil {
		fail(r.Context(), h.logger, w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, sp)
}
