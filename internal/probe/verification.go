package probe

import (
	"errors"
	"fmt"

	"github.com/okian/gigmatch/internal/domain/model"
	"github.com/okian/gigmatch/internal/domain/schedule"
	"github.com/okian/gigmatch/internal/domain/scoring"
)

// maxReasons bounds MatchResult.Reasons.
const maxReasons = 2

// VerifyItinerary checks a returned itinerary against its plan bound:
// per-day count, timed slots only, no overlaps, no discoveries, a correct
// must-see count and an empty conflict list.
func VerifyItinerary(it *model.Itinerary, maxPerDay int) error {
	var errs []error
	for _, day := range it.Days {
		if len(day.Slots) > maxPerDay {
			errs = append(errs, fmt.Errorf("%s: %d slots above bound %d", day.Day, len(day.Slots), maxPerDay))
		}

		selected := make([]model.Performance, len(day.Slots))
		mustSee := 0
		for i := range day.Slots {
			s := &day.Slots[i]
			selected[i] = s.Performance
			if !s.Timed() {
				errs = append(errs, fmt.Errorf("%s: untimed slot %q", day.Day, s.ArtistName))
			}
			if s.Match.MatchType == model.MatchDiscovery {
				errs = append(errs, fmt.Errorf("%s: discovery slot %q", day.Day, s.ArtistName))
			}
			if s.Match.MatchType.MustSee() {
				mustSee++
			}
		}
		if mustSee != day.MustSeeCount {
			errs = append(errs, fmt.Errorf("%s: must-see count %d, want %d", day.Day, day.MustSeeCount, mustSee))
		}
		for _, c := range schedule.DetectConflicts(selected) {
			errs = append(errs, fmt.Errorf("%s: %q overlaps %q by %d minutes", day.Day, c.A.ArtistName, c.B.ArtistName, c.OverlapMinutes))
		}
	}
	if len(it.Conflicts) > 0 {
		errs = append(errs, fmt.Errorf("itinerary reports %d conflicts", len(it.Conflicts)))
	}
	return errors.Join(errs...)
}

// VerifyRecommendations checks ordering, display scores and reasons.
func VerifyRecommendations(recs []model.ScoredPerformance) error {
	var errs []error
	for i := range recs {
		r := &recs[i]
		if i > 0 && r.Match.Score > recs[i-1].Match.Score {
			errs = append(errs, fmt.Errorf("recommendation %d scores %d above %d", i, r.Match.Score, recs[i-1].Match.Score))
		}
		if want := scoring.FormatMatchScore(r.Match.Score); r.DisplayScore != want {
			errs = append(errs, fmt.Errorf("%q: display score %d, want %d", r.ArtistName, r.DisplayScore, want))
		}
		if n := len(r.Match.Reasons); n == 0 || n > maxReasons {
			errs = append(errs, fmt.Errorf("%q: %d reasons", r.ArtistName, n))
		}
		if r.Match.Confidence < 0 || r.Match.Confidence > 1 {
			errs = append(errs, fmt.Errorf("%q: confidence %.2f out of range", r.ArtistName, r.Match.Confidence))
		}
	}
	return errors.Join(errs...)
}

// VerifyConflicts compares server conflicts with a local computation.
func VerifyConflicts(selected []model.Performance, got []model.ScheduleConflict) error {
	want := schedule.DetectConflicts(selected)
	if len(got) != len(want) {
		return fmt.Errorf("got %d conflicts, want %d", len(got), len(want))
	}
	var errs []error
	for i := range want {
		if got[i].A.ID != want[i].A.ID || got[i].B.ID != want[i].B.ID || got[i].OverlapMinutes != want[i].OverlapMinutes {
			errs = append(errs, fmt.Errorf("conflict %d: got %s/%s %d, want %s/%s %d", i,
				got[i].A.ID, got[i].B.ID, got[i].OverlapMinutes, want[i].A.ID, want[i].B.ID, want[i].OverlapMinutes))
		}
	}
	return errors.Join(errs...)
}
