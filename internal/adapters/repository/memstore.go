package repository

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/okian/gigmatch/internal/domain/model"
	"github.com/okian/gigmatch/pkg/metrics"
)

// performanceNamespace scopes generated performance IDs.
var performanceNamespace = uuid.MustParse("a8d4f0a2-61c7-4b8e-9f35-0c2e7b1d5a94") //nolint:gochecknoglobals // constant namespace

var validate = validator.New(validator.WithRequiredStructEnabled()) //nolint:gochecknoglobals // validator caches struct metadata

// snapshot is an immutable view of the catalog. Readers load it without
// locking; writers publish a new one.
type snapshot struct {
	byID map[string]*model.Festival
	ids  []string // sorted
}

// MemoryStore is an in-memory, copy-on-write Store.
type MemoryStore struct {
	mu           sync.Mutex // serializes writers
	current      atomic.Pointer[snapshot]
	maxFestivals int
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty catalog.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{}
	for _, opt := range opts {
		opt(s)
	}
	s.current.Store(&snapshot{byID: map[string]*model.Festival{}})
	return s
}

// Upsert implements Store.
func (s *MemoryStore) Upsert(_ context.Context, f *model.Festival) (model.Festival, error) {
	if f == nil {
		return model.Festival{}, fmt.Errorf("%w: nil festival", ErrInvalidFestival)
	}
	stored, err := prepare(f)
	if err != nil {
		metrics.RecordErrorByComponent("repository", "invalid_festival")
		return model.Festival{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Load()
	_, exists := cur.byID[stored.ID]
	if !exists && s.maxFestivals > 0 && len(cur.byID) >= s.maxFestivals {
		metrics.RecordErrorByComponent("repository", "catalog_full")
		return model.Festival{}, fmt.Errorf("%w: limit %d", ErrCatalogFull, s.maxFestivals)
	}

	next := &snapshot{byID: make(map[string]*model.Festival, len(cur.byID)+1), ids: cur.ids}
	for id, v := range cur.byID {
		next.byID[id] = v
	}
	next.byID[stored.ID] = stored
	if !exists {
		next.ids = append(slices.Clone(cur.ids), stored.ID)
		slices.Sort(next.ids)
	}
	s.current.Store(next)

	metrics.RecordFestivalUpsert()
	metrics.UpdateFestivalsTotal(len(next.byID))
	return clone(stored), nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (model.Festival, error) {
	start := time.Now()
	defer func() {
		metrics.RecordCatalogQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	f, ok := s.current.Load().byID[strings.TrimSpace(id)]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Festival{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return clone(f), nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context) []Summary {
	snap := s.current.Load()
	out := make([]Summary, 0, len(snap.ids))
	for _, id := range snap.ids {
		f := snap.byID[id]
		out = append(out, Summary{
			ID:           f.ID,
			Name:         f.Name,
			Days:         f.DayLabels(),
			Performances: len(f.Lineup),
		})
	}
	return out
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) int {
	return len(s.current.Load().byID)
}

// prepare validates f and returns a private, normalized copy.
func prepare(f *model.Festival) (*model.Festival, error) {
	c := clone(f)
	c.ID = strings.TrimSpace(c.ID)
	if c.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidFestival)
	}
	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFestival, err)
	}

	seen := make(map[string]struct{}, len(c.Lineup))
	occurrences := make(map[string]int)
	for i := range c.Lineup {
		p := &c.Lineup[i]
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			content := contentKey(c.ID, p)
			p.ID = uuid.NewSHA1(performanceNamespace, []byte(content+"#"+strconv.Itoa(occurrences[content]))).String()
			occurrences[content]++
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate performance id %q", ErrInvalidFestival, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return &c, nil
}

// contentKey identifies a performance by what it is, so regenerated IDs are
// stable across reloads of the same lineup.
func contentKey(festivalID string, p *model.Performance) string {
	parts := append([]string{festivalID, p.DayKey(), strings.TrimSpace(p.Stage), p.StartTime, p.EndTime}, p.Artists()...)
	return strings.Join(parts, "\x1f")
}

func clone(f *model.Festival) model.Festival {
	c := *f
	c.Days = slices.Clone(f.Days)
	c.Lineup = make([]model.Performance, len(f.Lineup))
	for i, p := range f.Lineup {
		p.CoArtists = slices.Clone(p.CoArtists)
		p.Genres = slices.Clone(p.Genres)
		c.Lineup[i] = p
	}
	return c
}
