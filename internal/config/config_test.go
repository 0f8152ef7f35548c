package config_test

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/okian/gigmatch/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.ScoreCacheSize, convey.ShouldEqual, 50_000)
			convey.So(cfg.MaxTopArtists, convey.ShouldEqual, 30)
			convey.So(cfg.MaxPerDay, convey.ShouldEqual, 6)
			convey.So(cfg.RestBreakMinutes, convey.ShouldEqual, 15)
			convey.So(cfg.IncludeDiscoveries, convey.ShouldBeFalse)
			convey.So(cfg.MaxRecommendations, convey.ShouldEqual, 50)
			convey.So(cfg.RateLimitPerMinute, convey.ShouldEqual, 0)
		})

		convey.Convey("Then it should validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})

	convey.Convey("Given configs that break a constraint", t, func() {
		mutations := []func(*config.Config){
			func(c *config.Config) { c.Addr = "" },
			func(c *config.Config) { c.MaxPerDay = 0 },
			func(c *config.Config) { c.MaxTopArtists = -1 },
			func(c *config.Config) { c.LogLevel = "loud" },
			func(c *config.Config) { c.LogFormat = "xml" },
			func(c *config.Config) { c.ScoreCacheSize = -5 },
			func(c *config.Config) { c.RestBreakMinutes = -1 },
			func(c *config.Config) { c.RateLimitPerMinute = -1 },
		}

		convey.Convey("Then validation fails with ErrInvalidConfig", func() {
			for _, mutate := range mutations {
				cfg := config.New(context.Background())
				mutate(cfg)
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			}
		})
	})
}
