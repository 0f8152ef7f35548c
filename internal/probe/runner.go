package probe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/gigmatch/internal/domain/model"
	"github.com/okian/gigmatch/pkg/logger"
)

// conflictSample is how many recommendations each job sends to /v1/conflicts.
const conflictSample = 4

// probeNamespace seeds festival IDs so equal seeds reuse equal IDs.
var probeNamespace = uuid.MustParse("5d0c8f3e-2b8a-4a57-9a3f-3f1f6d6c2e11") //nolint:gochecknoglobals // constant namespace

type job struct {
	festivalID string
	profile    model.UserProfile
}

// recorder accumulates run statistics across workers.
type recorder struct {
	mu    sync.Mutex
	stats *Stats
}

func (r *recorder) request(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.Requests++
	if err != nil {
		r.stats.Failures++
	}
}

func (r *recorder) violation() {
	r.mu.Lock()
	r.stats.Violations++
	r.mu.Unlock()
}

func (r *recorder) planned(n int) {
	r.mu.Lock()
	r.stats.SlotsPlanned += n
	r.mu.Unlock()
}

// Validate reports whether the config can drive a run.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.BaseURL) == "" {
		errs = append(errs, errors.New("base url is empty"))
	}
	for name, v := range map[string]int{
		"festivals":    c.Festivals,
		"days":         c.Days,
		"sets per day": c.SetsPerDay,
		"profiles":     c.Profiles,
		"top artists":  c.TopArtists,
		"max per day":  c.MaxPerDay,
		"workers":      c.Workers,
	} {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", name, v))
		}
	}
	if c.Rate < 0 {
		errs = append(errs, fmt.Errorf("rate must not be negative, got %g", c.Rate))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Run uploads generated festivals, plans every profile against every
// festival and verifies each response. It returns ErrVerificationFailed
// when any request failed or any plan broke its bounds.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.Get().Named("probe")
	stats := &Stats{StartTime: time.Now()}

	log.Info(ctx, "starting gigmatch probe",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("festivals", cfg.Festivals),
		logger.Int("profiles", cfg.Profiles),
		logger.Int("workers", cfg.Workers),
		logger.Any("seed", cfg.Seed))

	client := NewClient(cfg.BaseURL, cfg.Timeout, cfg.Rate)
	if err := client.Health(ctx); err != nil {
		return nil, err
	}

	rng := newRand(cfg.Seed)
	var jobs []job
	for i := range cfg.Festivals {
		id := uuid.NewSHA1(probeNamespace, fmt.Appendf(nil, "%d/%d", cfg.Seed, i)).String()
		f := GenerateFestival(rng, id, cfg.Days, cfg.SetsPerDay)
		stored, err := client.PutFestival(ctx, &f)
		if err != nil {
			return nil, fmt.Errorf("upload festival %s: %w", id, err)
		}
		stats.FestivalsUploaded++
		log.Debug(ctx, "festival uploaded", logger.String("id", id), logger.Int("performances", len(stored.Lineup)))

		for range cfg.Profiles {
			jobs = append(jobs, job{festivalID: id, profile: GenerateProfile(rng, stored.Lineup, cfg.TopArtists)})
		}
	}

	rec := &recorder{stats: stats}
	queue := make(chan job)
	var wg sync.WaitGroup
	for range cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range queue {
				runJob(ctx, log, client, cfg, rec, j)
			}
		}()
	}

dispatch:
	for _, j := range jobs {
		select {
		case queue <- j:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(queue)
	wg.Wait()

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	logStats(ctx, log, stats)

	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("probe interrupted: %w", err)
	}
	if stats.Failures > 0 || stats.Violations > 0 {
		return stats, fmt.Errorf("%w: %d failures, %d violations", ErrVerificationFailed, stats.Failures, stats.Violations)
	}
	return stats, nil
}

func runJob(ctx context.Context, log logger.Logger, c *Client, cfg *Config, rec *recorder, j job) {
	check := func(what string, err error) {
		if err != nil {
			rec.violation()
			log.Warn(ctx, what+" violation", logger.String("festival", j.festivalID), logger.Error(err))
		}
	}

	recs, err := c.Recommendations(ctx, j.festivalID, j.profile)
	rec.request(err)
	if err != nil {
		log.Error(ctx, "recommendations failed", logger.String("festival", j.festivalID), logger.Error(err))
		return
	}
	check("recommendations", VerifyRecommendations(recs))

	it, err := c.Itinerary(ctx, j.festivalID, j.profile, cfg.MaxPerDay)
	rec.request(err)
	if err != nil {
		log.Error(ctx, "itinerary failed", logger.String("festival", j.festivalID), logger.Error(err))
	} else {
		check("itinerary", VerifyItinerary(&it, cfg.MaxPerDay))
		rec.planned(it.SlotCount())
	}

	selected := make([]model.Performance, 0, conflictSample)
	for i := range recs[:min(conflictSample, len(recs))] {
		selected = append(selected, recs[i].Performance)
	}
	conflicts, err := c.Conflicts(ctx, selected)
	rec.request(err)
	if err != nil {
		log.Error(ctx, "conflicts failed", logger.Error(err))
		return
	}
	check("conflicts", VerifyConflicts(selected, conflicts))
}

func logStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.Requests) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("festivalsUploaded", stats.FestivalsUploaded),
		logger.Int("requests", stats.Requests),
		logger.Int("failures", stats.Failures),
		logger.Int("violations", stats.Violations),
		logger.Int("slotsPlanned", stats.SlotsPlanned),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("requestsPerSecond", perSecond))
}
