package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/okian/gigmatch/internal/adapters/repository"
	"github.com/okian/gigmatch/internal/domain/model"
	"github.com/okian/gigmatch/pkg/logger"
)

// FestivalDependencies defines the interface for catalog operations.
type FestivalDependencies interface {
	Festivals(ctx context.Context) ([]repository.Summary, error)
	Festival(ctx context.Context, id string) (model.Festival, error)
	PutFestival(ctx context.Context, f *model.Festival) (model.Festival, error)
}

// FestivalHandler handles catalog requests.
type FestivalHandler struct {
	deps   FestivalDependencies
	logger logger.Logger
}

// NewFestivalHandler creates a new festival handler.
func NewFestivalHandler(deps FestivalDependencies, l logger.Logger) *FestivalHandler {
	return &FestivalHandler{deps: deps, logger: l}
}

type festivalsResponse struct {
	Festivals []repository.Summary `json:"festivals"`
}

// HandleList handles GET /v1/festivals requests.
func (h *FestivalHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_festivals"
	list, err := h.deps.Festivals(r.Context())
	if err != nil {
		fail(r.Context(), h.logger, w, op, err)
		return
	}
	if list == nil {
		list = []repository.Summary{}
	}
	writeJSON(w, http.StatusOK, festivalsResponse{Festivals: list})
}

// HandleGet handles GET /v1/festivals/{festivalID} requests.
func (h *FestivalHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_festival"
	f, err := h.deps.Festival(r.Context(), chi.URLParam(r, routeFestivalKey))
	if err != nil {
		fail(r.Context(), h.logger, w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// HandlePut handles PUT /v1/festivals/{festivalID} requests. The body ID may
// be omitted; when present it must match the path.
func (h *FestivalHandler) HandlePut(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_festival"
	id := chi.URLParam(r, routeFestivalKey)

	var f model.Festival
	if err := decode(w, r, maxCatalogBytes, &f); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	switch body := strings.TrimSpace(f.ID); {
	case body == "":
		f.ID = id
	case body != id:
		writeError(w, http.StatusBadRequest, "bad_request",
			WrapKind(op, ErrBadRequest, fmt.Errorf("body id %q does not match path id %q", body, id)))
		return
	}

	stored, err := h.deps.PutFestival(r.Context(), &f)
	if err != nil {
		fail(r.Context(), h.logger, w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}
