package main

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/riskibarqy/betstats/internal/app"
	"github.com/riskibarqy/betstats/internal/platform/logging"
	"github.com/riskibarqy/betstats/internal/usecase"
)

const (
	liveJobTimeout  = 10 * time.Minute
	dailyJobTimeout = 2 * time.Hour
)

func newScheduleCmd(c *cli) *cobra.Command {
	var (
		force  bool
		runNow bool
	)
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run live and daily ingestion on cron schedules until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			s := &scheduler{app: a, force: force, logger: a.Logger.Named("scheduler")}
			return s.run(cmd.Context(), runNow)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "allow paid providers when APP_ENV=dev")
	cmd.Flags().BoolVar(&runNow, "run_now", false, "run the daily job once at startup")
	return cmd
}

// scheduler runs at most one job at a time across both schedules.
type scheduler struct {
	app    *app.App
	force  bool
	logger *logging.Logger
	busy   sync.Mutex
}

func (s *scheduler) run(ctx context.Context, runNow bool) error {
	cfg := s.app.Config
	runner := cron.New(
		cron.WithLocation(cfg.ScheduleTimezone),
		cron.WithLogger(cronLogger{logger: s.logger}),
		cron.WithChain(cron.Recover(cronLogger{logger: s.logger}), cron.SkipIfStillRunning(cronLogger{logger: s.logger})),
	)
	if _, err := runner.AddFunc(cfg.ScheduleLiveCron, s.job(ctx, "live", liveJobTimeout, s.live)); err != nil {
		return usagef("invalid SCHEDULE_LIVE_CRON %q: %v", cfg.ScheduleLiveCron, err)
	}
	if _, err := runner.AddFunc(cfg.ScheduleDailyCron, s.job(ctx, "daily", dailyJobTimeout, s.daily)); err != nil {
		return usagef("invalid SCHEDULE_DAILY_CRON %q: %v", cfg.ScheduleDailyCron, err)
	}

	if runNow {
		go s.job(ctx, "daily", dailyJobTimeout, s.daily)()
	}

	runner.Start()
	s.logger.Info("scheduler started",
		"live_cron", cfg.ScheduleLiveCron,
		"daily_cron", cfg.ScheduleDailyCron,
		"timezone", cfg.ScheduleTimezone.String(),
	)

	<-ctx.Done()
	s.logger.Info("scheduler stopping, waiting for running job")
	<-runner.Stop().Done()
	return nil
}

func (s *scheduler) job(ctx context.Context, name string, timeout time.Duration, fn func(context.Context) error) func() {
	return func() {
		if !s.busy.TryLock() {
			s.logger.Info("previous job still running, skipping", "job", name)
			return
		}
		defer s.busy.Unlock()

		jobCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		started := time.Now()
		err := fn(jobCtx)
		if err != nil {
			s.logger.ErrorContext(jobCtx, "scheduled job failed", "job", name, "duration", time.Since(started).Round(time.Millisecond), "error", err)
			return
		}
		s.logger.InfoContext(jobCtx, "scheduled job finished", "job", name, "duration", time.Since(started).Round(time.Millisecond))
	}
}

func (s *scheduler) live(ctx context.Context) error {
	_, err := s.app.Ingestion.Ingest(ctx, usecase.IngestInput{
		Mode:    usecase.ModeLive,
		Execute: true,
		Force:   s.force,
	})
	return err
}

// daily refreshes recent results and the current seasons, then cleans
// duplicates and rebuilds every current table.
func (s *scheduler) daily(ctx context.Context) error {
	leagues := s.app.Catalog.Leagues()
	now := time.Now()
	opts := ingestOptions{execute: true, force: s.force}

	var errs []error
	if _, err := runIngest(ctx, s.app.Ingestion, usecase.ModeRecent, leagues, opts, now); err != nil {
		errs = append(errs, err)
	}
	if _, err := runIngest(ctx, s.app.Ingestion, usecase.ModeSeason, leagues, opts, now); err != nil {
		errs = append(errs, err)
	}
	if ctx.Err() != nil {
		return errors.Join(append(errs, ctx.Err())...)
	}
	if err := runDedup(ctx, io.Discard, s.app, leagues, true); err != nil {
		errs = append(errs, err)
	}
	if err := runStandings(ctx, io.Discard, s.app, leagues, 0, true, now); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// cronLogger adapts the structured logger to cron.Logger.
type cronLogger struct {
	logger *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
