package model

import "strings"

// FestivalDay maps a day label to its calendar date ("YYYY-MM-DD").
type FestivalDay struct {
	Label string `json:"label" yaml:"label" validate:"required"`
	Date  string `json:"date,omitempty" yaml:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// Festival is the lineup and day structure of one event.
type Festival struct {
	ID       string        `json:"id" yaml:"id"`
	Name     string        `json:"name" yaml:"name"`
	Timezone string        `json:"timezone,omitempty" yaml:"timezone,omitempty"` // IANA zone of the wall-clock times
	Days     []FestivalDay `json:"days,omitempty" yaml:"days,omitempty" validate:"dive"`
	Lineup   []Performance `json:"lineup" yaml:"lineup"`
}

// DayLabels returns the festival's day labels in order. Days that only appear
// in the lineup are appended in first-seen order.
func (f *Festival) DayLabels() []string {
	return OrderedDays(f.Days, f.Lineup)
}

// DateOf returns the calendar date for a day label.
func (f *Festival) DateOf(label string) (string, bool) {
	label = strings.TrimSpace(label)
	for _, d := range f.Days {
		if strings.TrimSpace(d.Label) == label && d.Date != "" {
			return d.Date, true
		}
	}
	return "", false
}

// OrderedDays merges declared festival days with the days used by a lineup.
func OrderedDays(days []FestivalDay, lineup []Performance) []string {
	seen := make(map[string]struct{}, len(days))
	out := make([]string, 0, len(days))
	add := func(label string) {
		label = strings.TrimSpace(label)
		if label == "" {
			return
		}
		if _, ok := seen[label]; ok {
			return
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	for _, d := range days {
		add(d.Label)
	}
	for i := range lineup {
		add(lineup[i].Day)
	}
	return out
}
