package probe

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/gigmatch/pkg/logger"
)

// NewCommand returns the probe command with flags bound to a fresh config.
func NewCommand() *cobra.Command {
	cfg := DefaultConfig()
	runTimeout := DefaultRunTimeout

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Drive a gigmatch server with synthetic festivals and verify its plans",
		Long: `probe uploads generated festivals to a running gigmatch server, plans
generated listener profiles against them and checks every response:
recommendation order and display scores, itinerary bounds and overlaps,
and conflict reports against a local computation.

Examples:
  probe
  probe --url http://localhost:8080 --festivals 10 --profiles 100
  probe --seed 42 --verbose --log probe.log`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.InitWithOptions(logger.WithOutput(cmd.ErrOrStderr()), logger.WithFile(cfg.LogFile)); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer func() { _ = logger.Close() }()
			if cfg.Verbose {
				_ = logger.SetLevelString("debug")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
			defer cancel()

			stats, err := Run(ctx, cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d requests, %d slots planned in %s\n",
				stats.Requests, stats.SlotsPlanned, stats.Duration)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", cfg.BaseURL, "Base URL of the service")
	f.IntVar(&cfg.Festivals, "festivals", cfg.Festivals, "Festivals to generate and upload")
	f.IntVar(&cfg.Days, "days", cfg.Days, "Days per festival")
	f.IntVar(&cfg.SetsPerDay, "sets", cfg.SetsPerDay, "Performances per day")
	f.IntVar(&cfg.Profiles, "profiles", cfg.Profiles, "Profiles planned against each festival")
	f.IntVar(&cfg.TopArtists, "top", cfg.TopArtists, "Top artists per profile")
	f.IntVar(&cfg.MaxPerDay, "max-per-day", cfg.MaxPerDay, "Itinerary bound to request")
	f.IntVarP(&cfg.Workers, "workers", "w", cfg.Workers, "Concurrent workers")
	f.Float64Var(&cfg.Rate, "rate", cfg.Rate, "Requests per second (0: unpaced)")
	f.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "HTTP request timeout")
	f.DurationVar(&runTimeout, "run-timeout", runTimeout, "Overall run timeout")
	f.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "Generator seed (default: current time)")
	f.StringVar(&cfg.LogFile, "log", "", "Also log to this file")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Enable debug logging")
	return cmd
}
