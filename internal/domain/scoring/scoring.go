// Package scoring fuses artist and genre signals into a ranked match score
// with a short human-readable justification.
package scoring

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/okian/gigmatch/internal/domain/genre"
	"github.com/okian/gigmatch/internal/domain/identity"
	"github.com/okian/gigmatch/internal/domain/model"
	"github.com/okian/gigmatch/internal/domain/namematch"
)

// Tier weights. A matched name scores weight × confidence.
const (
	directWeight  = 100
	relatedWeight = 70
	recentWeight  = 60

	rankBonusBase = 50
	rankBonusStep = 3
)

// Tier ceilings: a lower tier is consulted only while the best score so far
// is below its ceiling. They follow the score ranges of the tiers above.
const (
	RelatedCeiling = 80
	RecentCeiling  = 60
	GenreCeiling   = 50
)

// A direct hit at or above these values ends scoring after the direct tier.
const (
	conclusiveScore      = 100
	conclusiveConfidence = 0.9
)

const (
	genreDirectConfidence   = 0.7
	genreAffinityConfidence = 0.5

	maxReasons = 2
)

// Reason texts.
const (
	reasonTopFive   = "One of your top 5 artists"
	reasonLove      = "You love %s"
	reasonTaste     = "Based on your taste in %s"
	reasonSimilar   = "Similar to %s you listen to"
	reasonRecent    = "You recently played %s"
	reasonGenre     = "Matches your %s taste"
	reasonAffinity  = "You might like this %s show"
	reasonDiscovery = "Happening near you"

	topFiveRank = 5
	loveRank    = 20
)

// Scorer computes a match between a performance and a profile.
type Scorer interface {
	// Score matches the billed artists and genres of a performance against
	// a profile. It never fails; no signal yields a discovery match.
	Score(artists, genres []string, profile *model.UserProfile) model.MatchResult
}

// Option applies a configuration option to the TieredScorer.
type Option func(*TieredScorer)

// WithNameMatcher sets the artist name matcher.
func WithNameMatcher(m *namematch.Matcher) Option {
	return func(s *TieredScorer) {
		if m != nil {
			s.names = m
		}
	}
}

// WithGenreResolver sets the genre resolver.
func WithGenreResolver(r *genre.Resolver) Option {
	return func(s *TieredScorer) {
		if r != nil {
			s.genres = r
		}
	}
}

// TieredScorer walks the taste signals strongest first: top artists, related
// artists, recently played, then genres. It holds no mutable state and is
// safe for concurrent use.
type TieredScorer struct {
	names  *namematch.Matcher
	genres *genre.Resolver
}

// NewTieredScorer creates a scorer. Without options it matches names without
// aliases and genres without affinities.
func NewTieredScorer(opts ...Option) *TieredScorer {
	s := &TieredScorer{
		names:  namematch.New(),
		genres: genre.NewResolver(nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score implements Scorer.
func (s *TieredScorer) Score(artists, genres []string, profile *model.UserProfile) model.MatchResult {
	if profile == nil {
		profile = &model.UserProfile{}
	}
	perf := normalizeAll(artists)
	t := &tally{}

	for _, pa := range perf {
		for _, top := range profile.TopArtists {
			m := s.names.MatchNormalized(pa, identity.Normalize(top.Name))
			if !m.IsMatch {
				continue
			}
			score := weighted(directWeight, m.Confidence) + RankBonus(top.Rank)
			t.offer(score, m.Confidence, model.MatchDirectArtist, directReasons(top)...)
		}
	}
	if t.found && t.best >= conclusiveScore && t.confidence >= conclusiveConfidence {
		return t.result()
	}

	if t.best < RelatedCeiling {
		for _, pa := range perf {
			for _, rel := range profile.RelatedArtists {
				m := s.names.MatchNormalized(pa, identity.Normalize(rel.Name))
				if !m.IsMatch {
					continue
				}
				t.offer(weighted(relatedWeight, m.Confidence), m.Confidence, model.MatchRelatedArtist, similarReason(rel))
			}
		}
	}

	if t.best < RecentCeiling && len(profile.RecentlyPlayed) > 0 {
		for _, pa := range perf {
			for _, name := range profile.RecentlyPlayed {
				m := s.names.MatchNormalized(pa, identity.Normalize(name))
				if !m.IsMatch {
					continue
				}
				t.offer(weighted(recentWeight, m.Confidence), m.Confidence, model.MatchRecentlyPlayed,
					fmt.Sprintf(reasonRecent, strings.TrimSpace(name)))
			}
		}
	}

	if t.best < GenreCeiling {
		g := s.genres.Resolve(genres, profile.TopGenres)
		switch g.Type {
		case genre.KindDirect:
			t.offer(g.Score, genreDirectConfidence, model.MatchGenre, fmt.Sprintf(reasonGenre, g.MatchedGenres[0]))
		case genre.KindAffinity:
			t.offer(g.Score, genreAffinityConfidence, model.MatchGenre, fmt.Sprintf(reasonAffinity, g.MatchedGenres[0]))
		case genre.KindNone:
		}
	}

	return t.result()
}

// RankBonus rewards higher ranked top artists: 50 - 3×rank, floored at 0.
// Ranks below 1 are read as 1.
func RankBonus(rank int) int {
	rank = max(rank, 1)
	return max(0, rankBonusBase-rank*rankBonusStep)
}

// FormatMatchScore maps an additive score to the 0-100 display range.
func FormatMatchScore(score int) int {
	switch {
	case score >= 100:
		return min(100, 85+(score-100)/10)
	case score >= 60:
		return 65 + (score-60)/3
	case score >= 30:
		return 45 + (score-30)/2
	case score <= 0:
		return 0
	default:
		return int(math.Floor(float64(score) * 1.5))
	}
}

// ScorePerformance scores one lineup entry and attaches its display score.
func ScorePerformance(s Scorer, p *model.Performance, profile *model.UserProfile) model.ScoredPerformance {
	m := s.Score(p.Artists(), p.Genres, profile)
	return model.ScoredPerformance{
		Performance:  *p,
		Match:        m,
		DisplayScore: FormatMatchScore(m.Score),
	}
}

// directReasons names the artist and, for the top five, says so.
func directReasons(top model.TopArtist) []string {
	name := strings.TrimSpace(top.Name)
	if top.Rank > loveRank {
		return []string{fmt.Sprintf(reasonTaste, name)}
	}
	if top.Rank <= topFiveRank {
		return []string{fmt.Sprintf(reasonLove, name), reasonTopFive}
	}
	return []string{fmt.Sprintf(reasonLove, name)}
}

func similarReason(rel model.RelatedArtist) string {
	to := strings.TrimSpace(rel.RelatedTo)
	if to == "" {
		to = "artists"
	}
	return fmt.Sprintf(reasonSimilar, to)
}

func weighted(weight int, confidence float64) int {
	return int(math.Round(float64(weight) * confidence))
}

func normalizeAll(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if nn := identity.Normalize(n); nn != "" {
			out = append(out, nn)
		}
	}
	return out
}

// tally accumulates the best match and the reasons seen so far.
type tally struct {
	found       bool
	best        int
	confidence  float64
	matchType   model.MatchType
	bestReasons []string
	reasons     []string
}

// offer records a candidate. Only a strictly higher score replaces the best,
// so ties keep the first pair encountered.
func (t *tally) offer(score int, confidence float64, mt model.MatchType, reasons ...string) {
	for _, r := range reasons {
		if !slices.Contains(t.reasons, r) {
			t.reasons = append(t.reasons, r)
		}
	}
	if t.found && score <= t.best {
		return
	}
	t.found = true
	t.best = score
	t.confidence = confidence
	t.matchType = mt
	t.bestReasons = reasons
}

func (t *tally) result() model.MatchResult {
	if !t.found {
		return model.MatchResult{
			Score:      0,
			Reasons:    []string{reasonDiscovery},
			MatchType:  model.MatchDiscovery,
			Confidence: 0,
		}
	}
	reasons := make([]string, 0, maxReasons)
	for _, r := range append(append([]string(nil), t.bestReasons...), t.reasons...) {
		if len(reasons) == maxReasons {
			break
		}
		if !slices.Contains(reasons, r) {
			reasons = append(reasons, r)
		}
	}
	return model.MatchResult{
		Score:      t.best,
		Reasons:    reasons,
		MatchType:  t.matchType,
		Confidence: t.confidence,
	}
}
