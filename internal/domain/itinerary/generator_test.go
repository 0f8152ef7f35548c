package itinerary_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/okian/gigmatch/internal/domain/itinerary"
	"github.com/okian/gigmatch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func sp(id, day, start, end string, score int, mt model.MatchType) model.ScoredPerformance {
	return model.ScoredPerformance{
		Performance: model.Performance{ID: id, ArtistName: "Act " + id, Day: day, StartTime: start, EndTime: end},
		Match:       model.MatchResult{Score: score, MatchType: mt},
	}
}

func slotIDs(d model.ItineraryDay) []string {
	out := make([]string, len(d.Slots))
	for i := range d.Slots {
		out[i] = d.Slots[i].ID
	}
	return out
}

func TestGenerate_Validation(t *testing.T) {
	Convey("Given a non-positive per-day bound", t, func() {
		g := itinerary.New()

		for _, n := range []int{0, -3} {
			_, err := g.Generate(nil, nil, itinerary.Options{MaxPerDay: n})
			So(errors.Is(err, itinerary.ErrInvalidMaxPerDay), ShouldBeTrue)
		}
	})
}

func TestGenerate_Admission(t *testing.T) {
	Convey("Given five non-overlapping Saturday sets with descending scores", t, func() {
		g := itinerary.New()
		lineup := []model.ScoredPerformance{
			sp("c", "Saturday", "16:00", "17:00", 80, model.MatchGenre),
			sp("a", "Saturday", "12:00", "13:00", 100, model.MatchDirectArtist),
			sp("e", "Saturday", "20:00", "21:00", 60, model.MatchGenre),
			sp("b", "Saturday", "14:00", "15:00", 90, model.MatchDirectArtist),
			sp("d", "Saturday", "18:00", "19:00", 70, model.MatchRelatedArtist),
		}

		Convey("When at most two per day are allowed", func() {
			it, err := g.Generate(lineup, nil, itinerary.Options{MaxPerDay: 2, IncludeDiscoveries: true})

			Convey("Then exactly the top two are admitted in score order", func() {
				So(err, ShouldBeNil)
				So(it.Days, ShouldHaveLength, 1)
				So(slotIDs(it.Days[0]), ShouldResemble, []string{"a", "b"})
				So(it.Days[0].MustSeeCount, ShouldEqual, 2)
				So(it.Conflicts, ShouldBeEmpty)
			})
		})

		Convey("Then the per-day bound always holds", func() {
			for n := 1; n <= 7; n++ {
				it, err := g.Generate(lineup, nil, itinerary.Options{MaxPerDay: n})
				So(err, ShouldBeNil)
				for _, d := range it.Days {
					So(len(d.Slots), ShouldBeLessThanOrEqualTo, n)
				}
				So(it.SlotCount(), ShouldEqual, min(n, len(lineup)))
			}
		})
	})

	Convey("Given a top pick that overlaps the runner-up", t, func() {
		g := itinerary.New()
		lineup := []model.ScoredPerformance{
			sp("top", "Friday", "20:00", "21:30", 147, model.MatchDirectArtist),
			sp("clash", "Friday", "21:00", "22:00", 120, model.MatchDirectArtist),
			sp("later", "Friday", "22:00", "23:00", 70, model.MatchRelatedArtist),
			sp("genre", "Friday", "18:00", "19:00", 30, model.MatchGenre),
		}

		it, err := g.Generate(lineup, nil, itinerary.Options{MaxPerDay: 5})

		Convey("Then the overlapping set is skipped and the rest are admitted", func() {
			So(err, ShouldBeNil)
			So(slotIDs(it.Days[0]), ShouldResemble, []string{"top", "later", "genre"})
			So(it.Days[0].MustSeeCount, ShouldEqual, 2)
			So(it.Conflicts, ShouldBeEmpty)
		})
	})

	Convey("Given equal scores with different match types", t, func() {
		g := itinerary.New()
		lineup := []model.ScoredPerformance{
			sp("genre", "Friday", "18:00", "19:00", 40, model.MatchGenre),
			sp("recent", "Friday", "18:30", "19:30", 40, model.MatchRecentlyPlayed),
		}

		it, err := g.Generate(lineup, nil, itinerary.Options{MaxPerDay: 1})

		Convey("Then the stronger match type wins", func() {
			So(err, ShouldBeNil)
			So(slotIDs(it.Days[0]), ShouldResemble, []string{"recent"})
			So(it.Days[0].MustSeeCount, ShouldEqual, 0)
		})
	})
}

func TestGenerate_Discoveries(t *testing.T) {
	Convey("Given a day with a discovery set", t, func() {
		g := itinerary.New()
		lineup := []model.ScoredPerformance{
			sp("known", "Sunday", "15:00", "16:00", 30, model.MatchGenre),
			sp("new", "Sunday", "17:00", "18:00", 0, model.MatchDiscovery),
		}

		Convey("When discoveries are excluded", func() {
			it, _ := g.Generate(lineup, nil, itinerary.Options{MaxPerDay: 4})

			Convey("Then only the known set is admitted", func() {
				So(slotIDs(it.Days[0]), ShouldResemble, []string{"known"})
			})
		})

		Convey("When discoveries are included", func() {
			it, _ := g.Generate(lineup, nil, itinerary.Options{MaxPerDay: 4, IncludeDiscoveries: true})

			Convey("Then both are admitted", func() {
				So(slotIDs(it.Days[0]), ShouldResemble, []string{"known", "new"})
			})
		})
	})
}

func TestGenerate_RestBreak(t *testing.T) {
	Convey("Given two equally ranked sets after an admitted headliner", t, func() {
		g := itinerary.New()
		lineup := []model.ScoredPerformance{
			sp("head", "Friday", "18:00", "19:00", 141, model.MatchDirectArtist),
			sp("tight", "Friday", "19:00", "20:00", 30, model.MatchGenre),
			sp("spaced", "Friday", "19:30", "20:30", 30, model.MatchGenre),
		}

		Convey("When a rest break is requested", func() {
			it, _ := g.Generate(lineup, nil, itinerary.Options{MaxPerDay: 3, RestBreakMinutes: 15})

			Convey("Then the candidate leaving a break is preferred", func() {
				So(slotIDs(it.Days[0]), ShouldResemble, []string{"head", "spaced"})
			})
		})

		Convey("When no rest break is requested", func() {
			it, _ := g.Generate(lineup, nil, itinerary.Options{MaxPerDay: 3})

			Convey("Then input order decides the tie", func() {
				So(slotIDs(it.Days[0]), ShouldResemble, []string{"head", "tight"})
			})
		})
	})

	Convey("Given only back-to-back sets", t, func() {
		g := itinerary.New()
		lineup := []model.ScoredPerformance{
			sp("a", "Friday", "18:00", "19:00", 100, model.MatchDirectArtist),
			sp("b", "Friday", "19:00", "20:00", 100, model.MatchDirectArtist),
		}

		it, _ := g.Generate(lineup, nil, itinerary.Options{MaxPerDay: 2, RestBreakMinutes: 30})

		Convey("Then the break does not block admission", func() {
			So(slotIDs(it.Days[0]), ShouldResemble, []string{"a", "b"})
		})
	})
}

func TestGenerate_Degradation(t *testing.T) {
	Convey("Given a festival whose lineup has no usable times", t, func() {
		g := itinerary.New()
		fest := &model.Festival{
			ID:   "f",
			Days: []model.FestivalDay{{Label: "Friday"}, {Label: "Saturday"}},
		}
		lineup := []model.ScoredPerformance{
			sp("a", "Friday", "", "", 147, model.MatchDirectArtist),
			sp("b", "Saturday", "tbc", "tbc", 90, model.MatchDirectArtist),
			sp("c", "Sunday", "20:00", "20:00", 90, model.MatchDirectArtist),
		}

		it, err := g.Generate(lineup, fest, itinerary.Options{MaxPerDay: 3})

		Convey("Then every day is present with empty slots", func() {
			So(err, ShouldBeNil)
			So(it.Days, ShouldHaveLength, 3)
			for _, d := range it.Days {
				So(d.Slots, ShouldNotBeNil)
				So(d.Slots, ShouldBeEmpty)
			}
			So(it.Conflicts, ShouldNotBeNil)
			So(it.Conflicts, ShouldBeEmpty)
		})
	})

	Convey("Given an empty lineup", t, func() {
		it, err := itinerary.New().Generate(nil, nil, itinerary.Options{MaxPerDay: 1})

		Convey("Then the itinerary is empty", func() {
			So(err, ShouldBeNil)
			So(it.Days, ShouldBeEmpty)
			So(it.SlotCount(), ShouldEqual, 0)
		})
	})
}

func TestGenerate_FinalCheck(t *testing.T) {
	Convey("Given a custom conflict detector", t, func() {
		var seen []string
		g := itinerary.New(itinerary.WithConflictDetector(func(sel []model.Performance) []model.ScheduleConflict {
			for _, p := range sel {
				seen = append(seen, fmt.Sprintf("%s/%s", p.Day, p.ID))
			}
			return []model.ScheduleConflict{{Day: "Friday", OverlapMinutes: 5}}
		}))
		lineup := []model.ScoredPerformance{
			sp("a", "Friday", "18:00", "19:00", 100, model.MatchDirectArtist),
			sp("b", "Saturday", "18:00", "19:00", 100, model.MatchDirectArtist),
		}

		it, err := g.Generate(lineup, nil, itinerary.Options{MaxPerDay: 1})

		Convey("Then it runs over every admitted set and its findings are surfaced", func() {
			So(err, ShouldBeNil)
			So(seen, ShouldResemble, []string{"Friday/a", "Saturday/b"})
			So(it.Conflicts, ShouldHaveLength, 1)
		})
	})
}
