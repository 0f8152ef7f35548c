// Package genre resolves how a performance's genres relate to a user's
// favourite genres, either directly or through the static affinity table.
package genre

import (
	"math"
	"strings"

	"github.com/okian/gigmatch/internal/domain/tables"
)

// Direct match scoring: base + per-genre step, capped. Affinity scores are
// the strength scaled to affinityScale.
const (
	directBase    = 20
	directStep    = 10
	directCap     = 40
	affinityScale = 25
)

// MatchKind tells how the genres matched.
type MatchKind string

// Match kinds.
const (
	KindDirect   MatchKind = "direct"
	KindAffinity MatchKind = "affinity"
	KindNone     MatchKind = "none"
)

// Match is the outcome of a genre comparison.
type Match struct {
	Score         int
	MatchedGenres []string
	Type          MatchKind
}

// Resolver compares genre lists. It is safe for concurrent use.
type Resolver struct {
	affinity *tables.AffinityTable
}

// NewResolver creates a resolver backed by an affinity table. A nil table
// disables the affinity step.
func NewResolver(affinity *tables.AffinityTable) *Resolver {
	return &Resolver{affinity: affinity}
}

// Resolve compares performance genres with user genres.
//
// Direct overlap is checked first and wins outright. Otherwise the user
// genres are walked in profile order and the first one whose adjacency entry
// relates to a performance genre decides the score, even when a later user
// genre would have scored higher.
func (r *Resolver) Resolve(performanceGenres, userGenres []string) Match {
	perf := fold(performanceGenres)
	user := fold(userGenres)
	if len(perf) == 0 || len(user) == 0 {
		return Match{Type: KindNone}
	}

	var direct []string
	for _, pg := range perf {
		for _, ug := range user {
			if related(pg.key, ug.key) {
				direct = append(direct, pg.name)
				break
			}
		}
	}
	if len(direct) > 0 {
		return Match{
			Score:         min(directCap, directBase+directStep*len(direct)),
			MatchedGenres: direct,
			Type:          KindDirect,
		}
	}

	for _, ug := range user {
		entry, ok := r.affinity.Lookup(ug.key)
		if !ok {
			continue
		}
		for _, rel := range entry.Related {
			for _, pg := range perf {
				if related(pg.key, rel) {
					return Match{
						Score:         int(math.Round(affinityScale * entry.Strength)),
						MatchedGenres: []string{pg.name},
						Type:          KindAffinity,
					}
				}
			}
		}
	}
	return Match{Type: KindNone}
}

// related reports substring containment in either direction.
func related(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

type foldedGenre struct {
	key  string // lowercased, for comparison
	name string // trimmed original, for display
}

func fold(genres []string) []foldedGenre {
	out := make([]foldedGenre, 0, len(genres))
	for _, g := range genres {
		name := strings.TrimSpace(g)
		if name == "" {
			continue
		}
		out = append(out, foldedGenre{key: strings.ToLower(name), name: name})
	}
	return out
}
