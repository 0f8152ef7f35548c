package probe

import (
	"testing"

	"github.com/okian/gigmatch/internal/domain/model"
	"github.com/okian/gigmatch/internal/domain/schedule"
	. "github.com/smartystreets/goconvey/convey"
)

func slot(id, start, end string, mt model.MatchType) model.ScoredPerformance {
	return model.ScoredPerformance{
		Performance: model.Performance{ID: id, ArtistName: id, Day: "Friday", StartTime: start, EndTime: end},
		Match:       model.MatchResult{Score: 100, Reasons: []string{"x"}, MatchType: mt, Confidence: 1},
	}
}

func TestVerifyItinerary(t *testing.T) {
	Convey("Given a well formed itinerary", t, func() {
		it := model.Itinerary{
			Days: []model.ItineraryDay{{
				Day: "Friday",
				Slots: []model.ScoredPerformance{
					slot("a", "18:00", "19:00", model.MatchDirectArtist),
					slot("b", "19:30", "20:30", model.MatchGenre),
				},
				MustSeeCount: 1,
			}},
			Conflicts: []model.ScheduleConflict{},
		}

		Convey("It passes", func() {
			So(VerifyItinerary(&it, 2), ShouldBeNil)
		})

		Convey("Exceeding the bound fails", func() {
			So(VerifyItinerary(&it, 1), ShouldNotBeNil)
		})

		Convey("Overlapping slots fail", func() {
			it.Days[0].Slots[1].StartTime = "18:30"
			So(VerifyItinerary(&it, 2).Error(), ShouldContainSubstring, "overlaps")
		})

		Convey("A wrong must-see count fails", func() {
			it.Days[0].MustSeeCount = 2
			So(VerifyItinerary(&it, 2).Error(), ShouldContainSubstring, "must-see")
		})

		Convey("Discoveries and untimed slots fail", func() {
			it.Days[0].Slots[1].Match.MatchType = model.MatchDiscovery
			it.Days[0].Slots[1].EndTime = ""
			err := VerifyItinerary(&it, 2)
			So(err.Error(), ShouldContainSubstring, "discovery")
			So(err.Error(), ShouldContainSubstring, "untimed")
		})

		Convey("Reported conflicts fail", func() {
			it.Conflicts = []model.ScheduleConflict{{Day: "Friday"}}
			So(VerifyItinerary(&it, 2), ShouldNotBeNil)
		})
	})
}

func TestVerifyRecommendations(t *testing.T) {
	Convey("Given recommendations best first", t, func() {
		recs := []model.ScoredPerformance{
			slot("a", "18:00", "19:00", model.MatchDirectArtist),
			slot("b", "19:30", "20:30", model.MatchGenre),
		}
		recs[0].DisplayScore = 85
		recs[1].Match.Score = 30
		recs[1].DisplayScore = 45

		Convey("It passes", func() {
			So(VerifyRecommendations(recs), ShouldBeNil)
		})

		Convey("Ascending scores fail", func() {
			recs[1].Match.Score = 120
			recs[1].DisplayScore = 87
			So(VerifyRecommendations(recs), ShouldNotBeNil)
		})

		Convey("A wrong display score fails", func() {
			recs[0].DisplayScore = 100
			So(VerifyRecommendations(recs).Error(), ShouldContainSubstring, "display score")
		})

		Convey("Too many reasons fail", func() {
			recs[0].Match.Reasons = []string{"x", "y", "z"}
			So(VerifyRecommendations(recs).Error(), ShouldContainSubstring, "3 reasons")
		})
	})
}

func TestVerifyConflicts(t *testing.T) {
	Convey("Given an overlapping selection", t, func() {
		selected := []model.Performance{
			slot("a", "18:00", "19:00", model.MatchGenre).Performance,
			slot("b", "18:30", "19:30", model.MatchGenre).Performance,
		}
		want := schedule.DetectConflicts(selected)
		So(want, ShouldHaveLength, 1)

		Convey("Matching reports pass", func() {
			So(VerifyConflicts(selected, want), ShouldBeNil)
		})

		Convey("Missing reports fail", func() {
			So(VerifyConflicts(selected, nil), ShouldNotBeNil)
		})

		Convey("A wrong overlap fails", func() {
			got := append([]model.ScheduleConflict(nil), want...)
			got[0].OverlapMinutes = 10
			So(VerifyConflicts(selected, got), ShouldNotBeNil)
		})
	})
}
