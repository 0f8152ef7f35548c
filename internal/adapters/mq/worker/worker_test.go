package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	worker "github.com/okian/gigmatch/internal/adapters/mq/worker"
	model "github.com/okian/gigmatch/internal/domain/model"
	logging "github.com/okian/gigmatch/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// lengthScorer scores by artist name length so results are easy to predict.
type lengthScorer struct {
	calls atomic.Int64
	delay time.Duration
}

func (s *lengthScorer) Score(artists, _ []string, _ *model.UserProfile) model.MatchResult {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	n := 0
	for _, a := range artists {
		n += len(a)
	}
	return model.MatchResult{Score: n, MatchType: model.MatchGenre, Reasons: []string{"len"}}
}

func lineup(n int) []model.Performance {
	out := make([]model.Performance, n)
	for i := range out {
		out[i] = model.Performance{ID: fmt.Sprintf("p%d", i), ArtistName: fmt.Sprintf("%0*d", i+1, 0)}
	}
	return out
}

func TestPool(t *testing.T) {
	convey.Convey("Given a started pool", t, func() {
		if err := logging.Init(); err != nil {
			t.Fatal(err)
		}
		scorer := &lengthScorer{}
		pool := worker.NewPool(4, scorer, worker.WithLogger(logging.Named("scoring")))
		pool.Start(context.Background())
		defer func() { _ = pool.Shutdown(context.Background()) }()

		convey.So(pool.Size(), convey.ShouldEqual, 4)

		convey.Convey("When a lineup is scored", func() {
			got, err := pool.ScoreLineup(context.Background(), lineup(50), &model.UserProfile{})

			convey.Convey("Then every performance is scored in lineup order", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(got, convey.ShouldHaveLength, 50)
				for i, sp := range got {
					convey.So(sp.ID, convey.ShouldEqual, fmt.Sprintf("p%d", i))
					convey.So(sp.Match.Score, convey.ShouldEqual, i+1)
				}
				convey.So(scorer.calls.Load(), convey.ShouldEqual, 50)
			})
		})

		convey.Convey("When the lineup is empty", func() {
			got, err := pool.ScoreLineup(context.Background(), nil, nil)

			convey.Convey("Then an empty result is returned", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(got, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When the batch context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			got, err := pool.ScoreLineup(ctx, lineup(20), nil)

			convey.Convey("Then the batch is aborted", func() {
				convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
				convey.So(got, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the pool is shut down", func() {
			convey.So(pool.Shutdown(context.Background()), convey.ShouldBeNil)
			_, err := pool.ScoreLineup(context.Background(), lineup(1), nil)

			convey.Convey("Then new batches are refused", func() {
				convey.So(errors.Is(err, worker.ErrPoolClosed), convey.ShouldBeTrue)
				convey.So(pool.Shutdown(context.Background()), convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given a pool that was never started", t, func() {
		if err := logging.Init(); err != nil {
			t.Fatal(err)
		}
		pool := worker.NewPool(0, &lengthScorer{})

		convey.Convey("Then it sizes itself from the CPU count and refuses work", func() {
			convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
			_, err := pool.ScoreLineup(context.Background(), lineup(1), nil)
			convey.So(errors.Is(err, worker.ErrPoolNotStarted), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a slow scorer and a short deadline", t, func() {
		if err := logging.Init(); err != nil {
			t.Fatal(err)
		}
		scorer := &lengthScorer{delay: 20 * time.Millisecond}
		pool := worker.NewPool(1, scorer)
		pool.Start(context.Background())
		defer func() { _ = pool.Shutdown(context.Background()) }()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()
		_, err := pool.ScoreLineup(ctx, lineup(40), nil)

		convey.Convey("Then the batch fails with the deadline and stops early", func() {
			convey.So(errors.Is(err, context.DeadlineExceeded), convey.ShouldBeTrue)
			convey.So(scorer.calls.Load(), convey.ShouldBeLessThan, 40)
		})
	})
}

func TestWorkerOptions(t *testing.T) {
	convey.Convey("Given worker options", t, func() {
		if err := logging.Init(); err != nil {
			t.Fatal(err)
		}

		convey.Convey("Then they are non-nil and tolerate empty values", func() {
			convey.So(worker.WithName("w-1"), convey.ShouldNotBeNil)
			convey.So(worker.WithName(""), convey.ShouldNotBeNil)
			convey.So(worker.WithLogger(logging.Named("test")), convey.ShouldNotBeNil)
			convey.So(worker.WithLogger(nil), convey.ShouldNotBeNil)
		})
	})
}
