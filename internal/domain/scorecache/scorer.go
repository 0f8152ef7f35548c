package scorecache

import (
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/okian/gigmatch/internal/domain/identity"
	"github.com/okian/gigmatch/internal/domain/model"
	"github.com/okian/gigmatch/internal/domain/scoring"
	"github.com/okian/gigmatch/pkg/metrics"
)

// profileNamespace scopes profile version UUIDs.
var profileNamespace = uuid.MustParse("3b0f6c2e-9a51-4d7e-8c1f-5e2a7d9b4f60") //nolint:gochecknoglobals // constant namespace

// ProfileVersion returns a deterministic version for a profile: a UUIDv5 of
// its JSON encoding. Equal profiles share a version.
func ProfileVersion(p *model.UserProfile) string {
	if p == nil {
		p = &model.UserProfile{}
	}
	b, err := json.Marshal(p)
	if err != nil {
		// UserProfile holds only strings and ints.
		return uuid.Nil.String()
	}
	return uuid.NewSHA1(profileNamespace, b).String()
}

// Key builds the cache key for a performance's artists and genres under a
// profile version. Artist names are normalized since matching only sees the
// normalized form. Genres are only trimmed: their spelling shows up in genre
// reasons, so case variants must not share an entry.
func Key(artists, genres []string, version string) string {
	var b strings.Builder
	b.WriteString(version)
	b.WriteByte('|')
	for i, a := range artists {
		if i > 0 {
			b.WriteByte(0x1f)
		}
		b.WriteString(identity.Normalize(a))
	}
	b.WriteByte('|')
	for i, g := range genres {
		if i > 0 {
			b.WriteByte(0x1f)
		}
		b.WriteString(strings.TrimSpace(g))
	}
	return b.String()
}

// Scorer memoizes another scoring.Scorer.
type Scorer struct {
	next  scoring.Scorer
	cache Cache
}

// NewScorer wraps next with cache.
func NewScorer(next scoring.Scorer, cache Cache) *Scorer {
	return &Scorer{next: next, cache: cache}
}

// Score implements scoring.Scorer.
func (s *Scorer) Score(artists, genres []string, profile *model.UserProfile) model.MatchResult {
	key := Key(artists, genres, ProfileVersion(profile))
	if r, ok := s.cache.Get(key); ok {
		metrics.RecordScoreCacheHit()
		return r
	}
	metrics.RecordScoreCacheMiss()
	r := s.next.Score(artists, genres, profile)
	s.cache.Put(key, r)
	metrics.UpdateScoreCacheSize(s.cache.Size())
	return r
}

// Size returns the number of cached results.
func (s *Scorer) Size() int64 {
	return s.cache.Size()
}
