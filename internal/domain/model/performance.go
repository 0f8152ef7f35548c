// Package model contains domain models passed between layers.
package model

import (
	"strings"

	"github.com/okian/gigmatch/internal/domain/types"
)

// Performance is a single lineup entry as supplied by a lineup source.
// Optional fields are left empty when the source does not publish them.
type Performance struct {
	ID         string   `json:"id" yaml:"id"`
	ArtistName string   `json:"artistName" yaml:"artist"`
	CoArtists  []string `json:"coArtists,omitempty" yaml:"co_artists,omitempty"` // co-billed acts sharing the slot
	Day        string   `json:"day" yaml:"day"`                                  // day label, e.g. "Saturday"
	Stage      string   `json:"stage,omitempty" yaml:"stage,omitempty"`
	StartTime  string   `json:"startTime,omitempty" yaml:"start,omitempty"` // "HH:MM"
	EndTime    string   `json:"endTime,omitempty" yaml:"end,omitempty"`     // "HH:MM"
	Genres     []string `json:"genres,omitempty" yaml:"genres,omitempty"`
	Headliner  bool     `json:"headliner,omitempty" yaml:"headliner,omitempty"`
}

// Artists returns the billed artist names, headline name first.
func (p *Performance) Artists() []string {
	out := make([]string, 0, 1+len(p.CoArtists))
	if strings.TrimSpace(p.ArtistName) != "" {
		out = append(out, p.ArtistName)
	}
	for _, a := range p.CoArtists {
		if strings.TrimSpace(a) != "" {
			out = append(out, a)
		}
	}
	return out
}

// Interval returns the parsed time range of the performance. ok is false when
// either time is missing or unparsable, in which case the performance cannot
// take part in any time-based operation.
func (p *Performance) Interval() (types.Interval, bool) {
	if strings.TrimSpace(p.StartTime) == "" || strings.TrimSpace(p.EndTime) == "" {
		return types.Interval{}, false
	}
	iv, err := types.ParseInterval(p.StartTime, p.EndTime)
	if err != nil {
		return types.Interval{}, false
	}
	return iv, true
}

// Timed reports whether the performance has a usable time range.
func (p *Performance) Timed() bool {
	_, ok := p.Interval()
	return ok
}

// DayKey returns the day label used for same-day comparisons.
func (p *Performance) DayKey() string {
	return strings.TrimSpace(p.Day)
}
