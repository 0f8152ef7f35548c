// Package schedule lays scored lineups out on a per-day time grid and finds
// overlapping selections.
package schedule

import (
	"cmp"
	"slices"
	"strings"

	"github.com/okian/gigmatch/internal/domain/model"
	"github.com/okian/gigmatch/internal/domain/types"
)

// Slot groups the performances that start at the same time.
type Slot struct {
	Start        string                    `json:"start"`
	Performances []model.ScoredPerformance `json:"performances"`
}

// Day is one column of the grid.
type Day struct {
	Day         string                    `json:"day"`
	Date        string                    `json:"date,omitempty"`
	Slots       []Slot                    `json:"slots"`
	Unscheduled []model.ScoredPerformance `json:"unscheduled"`
}

// Grid is the full schedule. Performances without a day label cannot be
// placed in any column and are listed in Unassigned.
type Grid struct {
	Days       []Day                     `json:"days"`
	Unassigned []model.ScoredPerformance `json:"unassigned,omitempty"`
}

// PerformanceCount returns the number of performances placed on the grid,
// scheduled or not.
func (g *Grid) PerformanceCount() int {
	n := len(g.Unassigned)
	for _, d := range g.Days {
		n += len(d.Unscheduled)
		for _, s := range d.Slots {
			n += len(s.Performances)
		}
	}
	return n
}

type placed struct {
	iv    types.Interval
	stage string
	sp    model.ScoredPerformance
}

// BuildGrid places a scored lineup on a grid. Declared festival days come
// first in their given order, followed by days only the lineup mentions.
// Within a day, timed performances are ordered by start time then stage, ties
// keeping input order, and grouped into slots by start time. Performances
// without a usable time range go to the day's Unscheduled bucket.
func BuildGrid(scored []model.ScoredPerformance, days []model.FestivalDay) Grid {
	lineup := make([]model.Performance, len(scored))
	for i := range scored {
		lineup[i] = scored[i].Performance
	}
	labels := model.OrderedDays(days, lineup)

	dates := make(map[string]string, len(days))
	for _, d := range days {
		if l := strings.TrimSpace(d.Label); l != "" {
			if _, ok := dates[l]; !ok {
				dates[l] = d.Date
			}
		}
	}

	timed := make(map[string][]placed, len(labels))
	untimed := make(map[string][]model.ScoredPerformance, len(labels))
	var unassigned []model.ScoredPerformance
	for _, sp := range scored {
		day := sp.DayKey()
		if day == "" {
			unassigned = append(unassigned, sp)
			continue
		}
		iv, ok := sp.Interval()
		if !ok {
			untimed[day] = append(untimed[day], sp)
			continue
		}
		timed[day] = append(timed[day], placed{iv: iv, stage: strings.TrimSpace(sp.Stage), sp: sp})
	}

	g := Grid{Days: make([]Day, 0, len(labels)), Unassigned: unassigned}
	for _, label := range labels {
		entries := timed[label]
		slices.SortStableFunc(entries, func(a, b placed) int {
			return cmp.Or(cmp.Compare(a.iv.Start, b.iv.Start), strings.Compare(a.stage, b.stage))
		})
		d := Day{
			Day:         label,
			Date:        dates[label],
			Slots:       []Slot{},
			Unscheduled: untimed[label],
		}
		if d.Unscheduled == nil {
			d.Unscheduled = []model.ScoredPerformance{}
		}
		for _, e := range entries {
			start := e.iv.Start.String()
			if n := len(d.Slots); n > 0 && d.Slots[n-1].Start == start {
				d.Slots[n-1].Performances = append(d.Slots[n-1].Performances, e.sp)
				continue
			}
			d.Slots = append(d.Slots, Slot{Start: start, Performances: []model.ScoredPerformance{e.sp}})
		}
		g.Days = append(g.Days, d)
	}
	return g
}
