// Package itinerary picks a conflict-free, per-day plan out of a scored lineup.
package itinerary

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/okian/gigmatch/internal/domain/model"
	"github.com/okian/gigmatch/internal/domain/schedule"
	"github.com/okian/gigmatch/internal/domain/types"
)

// Options bound a single itinerary request.
type Options struct {
	// MaxPerDay caps admitted performances per day. Must be positive.
	MaxPerDay int
	// IncludeDiscoveries admits performances with no taste signal.
	IncludeDiscoveries bool
	// RestBreakMinutes is the preferred gap around admitted performances.
	// It only breaks ties between equally ranked candidates.
	RestBreakMinutes int
}

// ConflictDetector finds overlaps in a set of performances.
type ConflictDetector func(selected []model.Performance) []model.ScheduleConflict

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithConflictDetector replaces the final consistency check.
func WithConflictDetector(d ConflictDetector) Option {
	return func(g *Generator) {
		if d != nil {
			g.detect = d
		}
	}
}

// Generator builds itineraries. It is stateless and safe for concurrent use.
type Generator struct {
	detect ConflictDetector
}

// New creates a Generator.
func New(opts ...Option) *Generator {
	g := &Generator{detect: schedule.DetectConflicts}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type candidate struct {
	idx int
	sp  model.ScoredPerformance
	iv  types.Interval
}

// Generate walks each festival day and greedily admits the best ranked
// performances that fit. Days follow the festival's declared order, then any
// day only the lineup mentions. Untimed performances are never admitted. A
// lineup without timing data yields days with empty slots.
func (g *Generator) Generate(scored []model.ScoredPerformance, festival *model.Festival, opts Options) (model.Itinerary, error) {
	if opts.MaxPerDay <= 0 {
		return model.Itinerary{}, fmt.Errorf("%w: got %d", ErrInvalidMaxPerDay, opts.MaxPerDay)
	}

	lineup := make([]model.Performance, len(scored))
	for i := range scored {
		lineup[i] = scored[i].Performance
	}
	var declared []model.FestivalDay
	if festival != nil {
		declared = festival.Days
	}
	labels := model.OrderedDays(declared, lineup)

	byDay := make(map[string][]candidate, len(labels))
	for i, sp := range scored {
		if sp.Match.MatchType == model.MatchDiscovery && !opts.IncludeDiscoveries {
			continue
		}
		iv, ok := sp.Interval()
		if !ok {
			continue
		}
		day := sp.DayKey()
		byDay[day] = append(byDay[day], candidate{idx: i, sp: sp, iv: iv})
	}

	it := model.Itinerary{Days: make([]model.ItineraryDay, 0, len(labels))}
	var admittedAll []model.Performance
	for _, label := range labels {
		day := planDay(label, byDay[label], opts)
		for _, s := range day.Slots {
			admittedAll = append(admittedAll, s.Performance)
		}
		it.Days = append(it.Days, day)
	}

	it.Conflicts = g.detect(admittedAll)
	if it.Conflicts == nil {
		it.Conflicts = []model.ScheduleConflict{}
	}
	return it, nil
}

// rank orders candidates by score, then match type, then input position.
func rank(a, b candidate) int {
	return cmp.Or(
		cmp.Compare(b.sp.Match.Score, a.sp.Match.Score),
		cmp.Compare(b.sp.Match.MatchType.Priority(), a.sp.Match.MatchType.Priority()),
		cmp.Compare(a.idx, b.idx),
	)
}

func sameRank(a, b candidate) bool {
	return a.sp.Match.Score == b.sp.Match.Score &&
		a.sp.Match.MatchType.Priority() == b.sp.Match.MatchType.Priority()
}

func planDay(label string, cands []candidate, opts Options) model.ItineraryDay {
	slices.SortFunc(cands, rank)

	day := model.ItineraryDay{Day: label, Slots: []model.ScoredPerformance{}}
	var admitted []types.Interval

	fits := func(c candidate) bool {
		for _, iv := range admitted {
			if c.iv.Overlap(iv) > 0 {
				return false
			}
		}
		return true
	}
	rested := func(c candidate) bool {
		for _, iv := range admitted {
			if c.iv.Gap(iv) < opts.RestBreakMinutes {
				return false
			}
		}
		return true
	}

	for start := 0; start < len(cands) && len(day.Slots) < opts.MaxPerDay; {
		end := start + 1
		for end < len(cands) && sameRank(cands[start], cands[end]) {
			end++
		}
		group := cands[start:end]
		used := make([]bool, len(group))

		for len(day.Slots) < opts.MaxPerDay {
			pick := -1
			for i, c := range group {
				if used[i] || !fits(c) {
					continue
				}
				if pick < 0 {
					pick = i
				}
				if rested(c) {
					pick = i
					break
				}
			}
			if pick < 0 {
				break
			}
			used[pick] = true
			c := group[pick]
			admitted = append(admitted, c.iv)
			day.Slots = append(day.Slots, c.sp)
			if c.sp.Match.MatchType.MustSee() {
				day.MustSeeCount++
			}
		}
		start = end
	}
	return day
}
