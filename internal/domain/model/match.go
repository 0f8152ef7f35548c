package model

// MatchType classifies which taste signal produced a match.
type MatchType string

// Match types, strongest first.
const (
	MatchDirectArtist   MatchType = "direct-artist"
	MatchRelatedArtist  MatchType = "related-artist"
	MatchRecentlyPlayed MatchType = "recently-played"
	MatchGenre          MatchType = "genre"
	MatchDiscovery      MatchType = "discovery"
)

// Priority orders match types; higher is stronger. Unknown types rank below
// discovery.
func (t MatchType) Priority() int {
	switch t {
	case MatchDirectArtist:
		return 5
	case MatchRelatedArtist:
		return 4
	case MatchRecentlyPlayed:
		return 3
	case MatchGenre:
		return 2
	case MatchDiscovery:
		return 1
	default:
		return 0
	}
}

// MustSee reports whether a match of this type counts toward the must-see tier.
func (t MatchType) MustSee() bool {
	return t == MatchDirectArtist || t == MatchRelatedArtist
}

// MatchResult is the outcome of scoring one performance against one profile.
// Score is additive and unbounded; use scoring.FormatMatchScore for display.
type MatchResult struct {
	Score      int       `json:"score"`
	Reasons    []string  `json:"reasons"`
	MatchType  MatchType `json:"matchType"`
	Confidence float64   `json:"confidence"`
}

// Clone returns a deep copy so callers cannot mutate a shared result.
func (m MatchResult) Clone() MatchResult {
	m.Reasons = append([]string(nil), m.Reasons...)
	return m
}

// ScoredPerformance pairs a lineup entry with its match against a profile.
type ScoredPerformance struct {
	Performance
	Match        MatchResult `json:"match"`
	DisplayScore int         `json:"displayScore"`
}
