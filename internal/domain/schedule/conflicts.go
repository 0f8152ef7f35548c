package schedule

import (
	"github.com/okian/gigmatch/internal/domain/model"
	"github.com/okian/gigmatch/internal/domain/types"
)

// DetectConflicts reports every unordered pair of performances that share a
// day and overlap in time. Pairs carrying the same non-empty ID, performances
// without a day label and untimed performances are skipped.
//
// The check is quadratic. Run it over a user's selection, not a lineup.
func DetectConflicts(selected []model.Performance) []model.ScheduleConflict {
	type entry struct {
		p   *model.Performance
		day string
		iv  types.Interval
	}
	entries := make([]entry, 0, len(selected))
	for i := range selected {
		p := &selected[i]
		day := p.DayKey()
		if day == "" {
			continue
		}
		iv, ok := p.Interval()
		if !ok {
			continue
		}
		entries = append(entries, entry{p: p, day: day, iv: iv})
	}

	conflicts := []model.ScheduleConflict{}
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			a, b := entries[i], entries[j]
			if a.day != b.day {
				continue
			}
			if a.p.ID != "" && a.p.ID == b.p.ID {
				continue
			}
			if overlap := a.iv.Overlap(b.iv); overlap > 0 {
				conflicts = append(conflicts, model.ScheduleConflict{
					Day:            a.day,
					A:              *a.p,
					B:              *b.p,
					OverlapMinutes: overlap,
				})
			}
		}
	}
	return conflicts
}
