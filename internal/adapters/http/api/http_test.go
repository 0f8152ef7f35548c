package api_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/okian/gigmatch/internal/adapters/http/api"
	"github.com/okian/gigmatch/internal/adapters/ics"
	"github.com/okian/gigmatch/internal/adapters/repository"
	"github.com/okian/gigmatch/internal/domain/itinerary"
	"github.com/okian/gigmatch/internal/domain/model"
	"github.com/okian/gigmatch/internal/domain/schedule"
	"github.com/okian/gigmatch/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// mockDependencies records what the handlers pass through.
type mockDependencies struct {
	err error

	festivals map[string]model.Festival
	lastOpts  itinerary.Options
	lastLimit int
	lastPut   model.Festival
	selected  []model.Performance
}

func newMockDependencies() *mockDependencies {
	return &mockDependencies{festivals: map[string]model.Festival{
		"riverside": {ID: "riverside", Name: "Riverside", Days: []model.FestivalDay{{Label: "Friday"}}},
	}}
}

func (m *mockDependencies) Match(_ context.Context, perf model.Performance, _ model.UserProfile) (model.ScoredPerformance, error) {
	if m.err != nil {
		return model.ScoredPerformance{}, m.err
	}
	return model.ScoredPerformance{
		Performance:  perf,
		Match:        model.MatchResult{Score: 147, MatchType: model.MatchDirectArtist, Confidence: 1, Reasons: []string{"One of your top 5 artists"}},
		DisplayScore: 89,
	}, nil
}

func (m *mockDependencies) Festivals(context.Context) ([]repository.Summary, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []repository.Summary{{ID: "riverside", Name: "Riverside", Days: []string{"Friday"}}}, nil
}

func (m *mockDependencies) Festival(_ context.Context, id string) (model.Festival, error) {
	f, ok := m.festivals[id]
	if !ok {
		return model.Festival{}, fmt.Errorf("%w: %q", repository.ErrNotFound, id)
	}
	return f, nil
}

func (m *mockDependencies) PutFestival(_ context.Context, f *model.Festival) (model.Festival, error) {
	if m.err != nil {
		return model.Festival{}, m.err
	}
	m.lastPut = *f
	return *f, nil
}

func (m *mockDependencies) lookup(id string) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.festivals[id]; !ok {
		return fmt.Errorf("%w: %q", repository.ErrNotFound, id)
	}
	return nil
}

func (m *mockDependencies) Recommendations(_ context.Context, id string, _ model.UserProfile, limit int) ([]model.ScoredPerformance, error) {
	if err := m.lookup(id); err != nil {
		return nil, err
	}
	m.lastLimit = limit
	return []model.ScoredPerformance{{Performance: model.Performance{ID: "p1", ArtistName: "Dua Lipa"}}}, nil
}

func (m *mockDependencies) Grid(_ context.Context, id string, _ model.UserProfile) (schedule.Grid, error) {
	if err := m.lookup(id); err != nil {
		return schedule.Grid{}, err
	}
	return schedule.Grid{Days: []schedule.Day{{Day: "Friday"}}}, nil
}

func (m *mockDependencies) Itinerary(_ context.Context, id string, _ model.UserProfile, opts itinerary.Options) (model.Itinerary, error) {
	if err := m.lookup(id); err != nil {
		return model.Itinerary{}, err
	}
	m.lastOpts = opts
	if opts.MaxPerDay <= 0 {
		return model.Itinerary{}, itinerary.ErrInvalidMaxPerDay
	}
	return model.Itinerary{Days: []model.ItineraryDay{{Day: "Friday"}}, Conflicts: []model.ScheduleConflict{}}, nil
}

func (m *mockDependencies) ExportItinerary(_ context.Context, w io.Writer, id string, _ model.UserProfile, opts itinerary.Options) (ics.Result, error) {
	if err := m.lookup(id); err != nil {
		return ics.Result{}, err
	}
	m.lastOpts = opts
	_, _ = io.WriteString(w, "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n")
	return ics.Result{Events: 2, Skipped: 1}, nil
}

func (m *mockDependencies) ItineraryDefaults() itinerary.Options {
	return itinerary.Options{MaxPerDay: 6, RestBreakMinutes: 15}
}

func (m *mockDependencies) Conflicts(_ context.Context, selected []model.Performance) ([]model.ScheduleConflict, error) {
	m.selected = selected
	if len(selected) < 2 {
		return []model.ScheduleConflict{}, nil
	}
	return []model.ScheduleConflict{{Day: "Friday", A: selected[0], B: selected[1], OverlapMinutes: 30}}, nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newTestRouter(deps api.Dependencies) http.Handler {
	r := api.NewRouter()
	api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"started": true}}).Register(context.Background(), r)
	return r
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var rd io.Reader = http.NoBody
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var out map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return out
}

const profileBody = `"profile":{"topArtists":[{"name":"Dua Lipa","rank":1}],"topGenres":["pop"]}`

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := newMockDependencies()
		h := newTestRouter(deps)

		Convey("Then the health endpoint should report ok", func() {
			w := serve(h, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)
		})

		Convey("Then the metrics endpoint should expose Prometheus text", func() {
			_ = serve(h, http.MethodGet, "/healthz", "")
			w := serve(h, http.MethodGet, "/metrics", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "gigmatch_")
		})

		Convey("Then the stats endpoint should return the provider's stats", func() {
			w := serve(h, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
		})

		Convey("Then unknown routes should be 404", func() {
			So(serve(h, http.MethodGet, "/unknown", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then wrong methods should be rejected", func() {
			So(serve(h, http.MethodGet, "/v1/match", "").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestMatchHandler(t *testing.T) {
	Convey("Given the match endpoint", t, func() {
		deps := newMockDependencies()
		h := newTestRouter(deps)

		Convey("When the request is valid", func() {
			w := serve(h, http.MethodPost, "/v1/match", `{"performance":{"artistName":"Dua Lipa","genres":["pop"]},`+profileBody+`}`)

			Convey("Then the scored performance should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var sp model.ScoredPerformance
				So(json.Unmarshal(w.Body.Bytes(), &sp), ShouldBeNil)
				So(sp.ArtistName, ShouldEqual, "Dua Lipa")
				So(sp.Match.Score, ShouldEqual, 147)
				So(sp.DisplayScore, ShouldEqual, 89)
			})
		})

		Convey("When the artist name is missing", func() {
			w := serve(h, http.MethodPost, "/v1/match", `{"performance":{"genres":["pop"]},`+profileBody+`}`)

			Convey("Then it should be a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["code"], ShouldEqual, "bad_request")
			})
		})

		Convey("When a top artist has an invalid rank", func() {
			w := serve(h, http.MethodPost, "/v1/match", `{"performance":{"artistName":"X"},"profile":{"topArtists":[{"name":"X","rank":0}]}}`)

			Convey("Then it should be a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the body has unknown fields", func() {
			w := serve(h, http.MethodPost, "/v1/match", `{"performance":{"artistName":"X"},"bogus":1}`)

			Convey("Then it should be a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the body is not JSON", func() {
			w := serve(h, http.MethodPost, "/v1/match", `not json`)

			Convey("Then it should be a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the service fails", func() {
			deps.err = errors.New("boom")
			w := serve(h, http.MethodPost, "/v1/match", `{"performance":{"artistName":"X"}}`)

			Convey("Then an internal error should be returned without details", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(decodeError(w)["code"], ShouldEqual, "internal_error")
				So(decodeError(w)["message"], ShouldNotContainSubstring, "boom")
			})
		})
	})
}

func TestFestivalHandler(t *testing.T) {
	Convey("Given the festival endpoints", t, func() {
		deps := newMockDependencies()
		h := newTestRouter(deps)

		Convey("When listing festivals", func() {
			w := serve(h, http.MethodGet, "/v1/festivals", "")

			Convey("Then the summaries should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"id":"riverside"`)
			})
		})

		Convey("When getting a known festival", func() {
			w := serve(h, http.MethodGet, "/v1/festivals/riverside", "")

			Convey("Then it should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"name":"Riverside"`)
			})
		})

		Convey("When getting an unknown festival", func() {
			w := serve(h, http.MethodGet, "/v1/festivals/nope", "")

			Convey("Then it should be not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(decodeError(w)["code"], ShouldEqual, "not_found")
			})
		})

		Convey("When putting a festival without a body id", func() {
			w := serve(h, http.MethodPut, "/v1/festivals/harbour", `{"name":"Harbour","lineup":[{"artistName":"Fontaines D.C.","day":"Sunday"}]}`)

			Convey("Then the path id should be used", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastPut.ID, ShouldEqual, "harbour")
				So(deps.lastPut.Lineup[0].ArtistName, ShouldEqual, "Fontaines D.C.")
			})
		})

		Convey("When putting a festival whose body id differs from the path", func() {
			w := serve(h, http.MethodPut, "/v1/festivals/harbour", `{"id":"other","name":"Harbour","lineup":[]}`)

			Convey("Then it should be a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the store rejects the festival", func() {
			deps.err = fmt.Errorf("%w: duplicate performance id", repository.ErrInvalidFestival)
			w := serve(h, http.MethodPut, "/v1/festivals/harbour", `{"name":"Harbour","lineup":[]}`)

			Convey("Then it should be a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["message"], ShouldContainSubstring, "duplicate performance id")
			})
		})

		Convey("When the catalog is full", func() {
			deps.err = repository.ErrCatalogFull
			w := serve(h, http.MethodPut, "/v1/festivals/harbour", `{"name":"Harbour","lineup":[]}`)

			Convey("Then it should be a conflict", func() {
				So(w.Code, ShouldEqual, http.StatusConflict)
			})
		})
	})
}

func TestPlanHandler(t *testing.T) {
	Convey("Given the planning endpoints", t, func() {
		deps := newMockDependencies()
		h := newTestRouter(deps)

		Convey("When asking for recommendations with a limit", func() {
			w := serve(h, http.MethodPost, "/v1/festivals/riverside/recommendations", `{`+profileBody+`,"limit":5}`)

			Convey("Then the limit should be passed through", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastLimit, ShouldEqual, 5)
				So(w.Body.String(), ShouldContainSubstring, `"festivalId":"riverside"`)
			})
		})

		Convey("When the limit is negative", func() {
			w := serve(h, http.MethodPost, "/v1/festivals/riverside/recommendations", `{`+profileBody+`,"limit":-1}`)

			Convey("Then it should be a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the festival is unknown", func() {
			w := serve(h, http.MethodPost, "/v1/festivals/nope/grid", `{`+profileBody+`}`)

			Convey("Then it should be not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When building a grid", func() {
			w := serve(h, http.MethodPost, "/v1/festivals/riverside/grid", `{`+profileBody+`}`)

			Convey("Then the grid should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"Friday"`)
			})
		})

		Convey("When generating an itinerary without options", func() {
			w := serve(h, http.MethodPost, "/v1/festivals/riverside/itinerary", `{`+profileBody+`}`)

			Convey("Then the service defaults should apply", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastOpts, ShouldResemble, itinerary.Options{MaxPerDay: 6, RestBreakMinutes: 15})
			})
		})

		Convey("When generating an itinerary with overrides", func() {
			w := serve(h, http.MethodPost, "/v1/festivals/riverside/itinerary",
				`{`+profileBody+`,"maxPerDay":2,"includeDiscoveries":true,"restBreakMinutes":0}`)

			Convey("Then the overrides should be used", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastOpts, ShouldResemble, itinerary.Options{MaxPerDay: 2, IncludeDiscoveries: true, RestBreakMinutes: 0})
			})
		})

		Convey("When maxPerDay is not positive", func() {
			w := serve(h, http.MethodPost, "/v1/festivals/riverside/itinerary", `{`+profileBody+`,"maxPerDay":0}`)

			Convey("Then it should be a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When exporting the itinerary as a calendar", func() {
			w := serve(h, http.MethodPost, "/v1/festivals/riverside/itinerary.ics", `{`+profileBody+`}`)

			Convey("Then an iCalendar attachment should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "text/calendar; charset=utf-8")
				So(w.Header().Get("Content-Disposition"), ShouldContainSubstring, "riverside-itinerary.ics")
				So(w.Header().Get("X-Calendar-Events"), ShouldEqual, "2")
				So(w.Header().Get("X-Calendar-Skipped"), ShouldEqual, "1")
				So(w.Body.String(), ShouldStartWith, "BEGIN:VCALENDAR")
			})
		})

		Convey("When exporting an unknown festival", func() {
			w := serve(h, http.MethodPost, "/v1/festivals/nope/itinerary.ics", `{`+profileBody+`}`)

			Convey("Then a JSON error should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(w.Header().Get("Content-Type"), ShouldEqual, "application/json; charset=utf-8")
			})
		})

		Convey("When checking conflicts", func() {
			w := serve(h, http.MethodPost, "/v1/conflicts",
				`{"selected":[{"id":"a","artistName":"A","day":"Friday","startTime":"20:00","endTime":"21:00"},{"id":"b","artistName":"B","day":"Friday","startTime":"20:30","endTime":"21:30"}]}`)

			Convey("Then the conflicts should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(len(deps.selected), ShouldEqual, 2)
				So(w.Body.String(), ShouldContainSubstring, `"overlapMinutes":30`)
			})
		})

		Convey("When the selection is missing", func() {
			w := serve(h, http.MethodPost, "/v1/conflicts", `{}`)

			Convey("Then it should be a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestRateLimit(t *testing.T) {
	Convey("Given a server limited to two requests a minute", t, func() {
		r := api.NewRouter()
		api.NewServer(newMockDependencies(), &mockStatsProvider{stats: map[string]interface{}{}},
			api.WithRateLimit(2, time.Minute)).Register(context.Background(), r)

		Convey("The third /v1 request is rejected", func() {
			So(serve(r, http.MethodGet, "/v1/festivals", "").Code, ShouldEqual, http.StatusOK)
			So(serve(r, http.MethodGet, "/v1/festivals", "").Code, ShouldEqual, http.StatusOK)
			w := serve(r, http.MethodGet, "/v1/festivals", "")
			So(w.Code, ShouldEqual, http.StatusTooManyRequests)
			So(decodeError(w)["code"], ShouldEqual, "rate_limited")
		})

		Convey("Ops routes are not limited", func() {
			for range 5 {
				So(serve(r, http.MethodGet, "/healthz", "").Code, ShouldEqual, http.StatusOK)
			}
		})
	})

	Convey("A zero limit disables limiting", t, func() {
		h := api.RateLimit(0, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		for range 5 {
			So(serve(h, http.MethodGet, "/", "").Code, ShouldEqual, http.StatusNoContent)
		}
	})
}
