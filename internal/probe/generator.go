package probe

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/okian/gigmatch/internal/domain/model"
)

// Layout of a generated festival day.
const (
	dayOpensAt     = 12 * 60
	rowSpacing     = 75
	jitterStep     = 5
	jitterSteps    = 7
	minSetLength   = 40
	setLengthSteps = 11
	minutesPerDay  = 24 * 60
	firstDate      = "2026-07-03"
)

var (
	stages   = []string{"Main", "Second", "Tent", "Forest"}                                                       //nolint:gochecknoglobals // fixture data
	weekdays = []string{"Friday", "Saturday", "Sunday", "Monday", "Tuesday", "Wednesday", "Thursday"}             //nolint:gochecknoglobals // fixture data
	genres   = []string{"indie", "indie rock", "shoegaze", "techno", "house", "hip hop", "pop", "folk", "post-punk"} //nolint:gochecknoglobals // fixture data
	headline = []string{"Dua Lipa", "JAY-Z", "Coldplay", "Beyoncé", "The Weeknd", "Fontaines D.C.", "Four Tet"}    //nolint:gochecknoglobals // fixture data
)

// newRand returns a deterministic generator for seed.
func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// GenerateFestival builds a festival with days × setsPerDay performances
// spread over four stages. Late rows may run past midnight.
func GenerateFestival(rng *rand.Rand, id string, days, setsPerDay int) model.Festival {
	start, _ := time.Parse(time.DateOnly, firstDate)
	f := model.Festival{
		ID:       id,
		Name:     "Probe Festival " + id,
		Timezone: "Europe/London",
	}
	for d := range days {
		label := weekdays[d%len(weekdays)]
		if d >= len(weekdays) {
			label = fmt.Sprintf("%s %d", label, d/len(weekdays)+1)
		}
		f.Days = append(f.Days, model.FestivalDay{Label: label, Date: start.AddDate(0, 0, d).Format(time.DateOnly)})

		for i := range setsPerDay {
			begin := dayOpensAt + (i/len(stages))*rowSpacing + rng.IntN(jitterSteps)*jitterStep
			length := minSetLength + rng.IntN(setLengthSteps)*jitterStep
			f.Lineup = append(f.Lineup, model.Performance{
				ArtistName: artistName(rng, d, i),
				Day:        label,
				Stage:      stages[i%len(stages)],
				StartTime:  clock(begin),
				EndTime:    clock(begin + length),
				Genres:     []string{genres[rng.IntN(len(genres))]},
				Headliner:  i >= setsPerDay-len(stages),
			})
		}
	}
	return f
}

func artistName(rng *rand.Rand, day, i int) string {
	if rng.IntN(4) == 0 {
		return headline[rng.IntN(len(headline))]
	}
	return fmt.Sprintf("Probe Act %d-%02d", day+1, i+1)
}

func clock(minutes int) string {
	minutes %= minutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// GenerateProfile picks a taste profile out of a lineup: topN distinct top
// artists, a related artist, recent plays and two genres.
func GenerateProfile(rng *rand.Rand, lineup []model.Performance, topN int) model.UserProfile {
	var p model.UserProfile
	seen := make(map[string]bool)
	for _, i := range rng.Perm(len(lineup)) {
		if len(p.TopArtists) == topN {
			break
		}
		name := lineup[i].ArtistName
		if seen[name] {
			continue
		}
		seen[name] = true
		p.TopArtists = append(p.TopArtists, model.TopArtist{Name: name, Rank: len(p.TopArtists) + 1})
	}
	if len(lineup) > 0 {
		related := lineup[rng.IntN(len(lineup))]
		p.RelatedArtists = []model.RelatedArtist{{Name: related.ArtistName, RelatedTo: headline[rng.IntN(len(headline))]}}
		p.RecentlyPlayed = []string{lineup[rng.IntN(len(lineup))].ArtistName}
	}
	p.TopGenres = []string{genres[rng.IntN(len(genres))], genres[rng.IntN(len(genres))]}
	return p
}
