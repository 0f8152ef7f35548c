// Package repository holds the festival catalog: lineups and day structure
// keyed by festival ID.
package repository

import (
	"context"

	"github.com/okian/gigmatch/internal/domain/model"
)

// Summary is a catalog listing row.
type Summary struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Days         []string `json:"days"`
	Performances int      `json:"performances"`
}

// Store provides read/write access to the festival catalog.
type Store interface {
	// Upsert validates and stores a festival, replacing any festival with the
	// same ID. Performances without an ID get a deterministic one. The stored
	// copy is returned.
	Upsert(ctx context.Context, f *model.Festival) (model.Festival, error)

	// Get returns a copy of a festival.
	// Returns ErrNotFound if the festival is unknown.
	Get(ctx context.Context, id string) (model.Festival, error)

	// List returns all festivals ordered by ID.
	List(ctx context.Context) []Summary

	// Count returns the number of festivals in the catalog.
	Count(ctx context.Context) int
}
