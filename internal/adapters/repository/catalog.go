package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/okian/gigmatch/internal/domain/model"
)

// catalogFile is the on-disk lineup format.
type catalogFile struct {
	Festivals []model.Festival `yaml:"festivals"`
}

// LoadCatalogFile reads a YAML catalog and upserts every festival into store.
// It returns the number of festivals loaded.
func LoadCatalogFile(ctx context.Context, store Store, path string) (int, error) {
	f, err := os.Open(path) //nolint:gosec // operator supplied path
	if err != nil {
		return 0, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return LoadCatalog(ctx, store, f)
}

// LoadCatalog decodes a YAML catalog from r and upserts every festival.
// Loading stops at the first invalid festival.
func LoadCatalog(ctx context.Context, store Store, r io.Reader) (int, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc catalogFile
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("%w: %w", ErrMalformedFile, err)
	}
	for i := range doc.Festivals {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if _, err := store.Upsert(ctx, &doc.Festivals[i]); err != nil {
			return i, fmt.Errorf("festival %d: %w", i, err)
		}
	}
	return len(doc.Festivals), nil
}
