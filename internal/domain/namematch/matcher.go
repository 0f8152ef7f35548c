// Package namematch decides whether two artist names denote the same act.
package namematch

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/okian/gigmatch/internal/domain/identity"
	"github.com/okian/gigmatch/internal/domain/tables"
)

// Confidence levels of the deterministic strategies, and the minimum fuzzy
// similarity accepted as a match.
const (
	ExactConfidence       = 1.0
	AliasConfidence       = 0.95
	ContainmentConfidence = 0.9
	FuzzyThreshold        = 0.85

	// minContainerLen is the shortest normalized name that may contain
	// another one ("artist ft other").
	minContainerLen = 5
)

// Strategy names the check that produced a match.
type Strategy string

// Strategies in evaluation order.
const (
	StrategyNone        Strategy = ""
	StrategyExact       Strategy = "exact"
	StrategyAlias       Strategy = "alias"
	StrategyContainment Strategy = "containment"
	StrategyFuzzy       Strategy = "fuzzy"
)

// Result is the outcome of comparing two names.
type Result struct {
	IsMatch    bool
	Confidence float64
	Strategy   Strategy
}

var noMatch = Result{}

// Matcher compares artist names using exact, alias, containment and fuzzy
// checks, cheapest first. It is safe for concurrent use.
type Matcher struct {
	aliases *tables.AliasTable
}

// Option applies a configuration option to the Matcher.
type Option func(*Matcher)

// WithAliases sets the alias table consulted after exact comparison.
func WithAliases(t *tables.AliasTable) Option {
	return func(m *Matcher) {
		m.aliases = t
	}
}

// New creates a Matcher. Without WithAliases the alias check never matches.
func New(opts ...Option) *Matcher {
	m := &Matcher{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Match compares two raw names. The relation is symmetric.
func (m *Matcher) Match(a, b string) Result {
	return m.MatchNormalized(identity.Normalize(a), identity.Normalize(b))
}

// MatchNormalized compares two names that were already normalized.
// A blank name never matches.
func (m *Matcher) MatchNormalized(a, b string) Result {
	if a == "" || b == "" {
		return noMatch
	}
	if a == b {
		return Result{IsMatch: true, Confidence: ExactConfidence, Strategy: StrategyExact}
	}
	if m.aliases.Lists(a, b) || m.aliases.Lists(b, a) {
		return Result{IsMatch: true, Confidence: AliasConfidence, Strategy: StrategyAlias}
	}

	longer, shorter := a, b
	if len(shorter) > len(longer) {
		longer, shorter = shorter, longer
	}
	if len(longer) >= minContainerLen && strings.Contains(longer, shorter) {
		return Result{IsMatch: true, Confidence: ContainmentConfidence, Strategy: StrategyContainment}
	}

	if sim := Similarity(a, b); sim >= FuzzyThreshold {
		return Result{IsMatch: true, Confidence: sim, Strategy: StrategyFuzzy}
	}
	return noMatch
}

// Similarity converts the Levenshtein distance of two strings into a
// similarity in [0,1]: (maxLen - distance) / maxLen.
func Similarity(a, b string) float64 {
	maxLen := max(len(a), len(b))
	if maxLen == 0 {
		return 1
	}
	d := levenshtein.ComputeDistance(a, b)
	return float64(maxLen-d) / float64(maxLen)
}
