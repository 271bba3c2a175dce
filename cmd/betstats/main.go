// Command betstats ingests football fixtures from external providers,
// reconciles them with stored matches and maintains league tables.
//
// Usage:
//
//	betstats ingest season --league_name "Premier League" --country England --season_year 2024 --execute
//	betstats ingest live --execute
//	betstats dedup --all --execute
//	betstats standings --division E0 --season_year 2024
//	betstats schedule
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/riskibarqy/betstats/internal/app"
	"github.com/riskibarqy/betstats/internal/config"
	"github.com/riskibarqy/betstats/internal/observability"
	"github.com/riskibarqy/betstats/internal/platform/logging"
)

const (
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	_ = godotenv.Load(".env")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	c := &cli{}
	err := newRootCmd(c).ExecuteContext(ctx)
	closeErr := c.close()
	stop()

	switch {
	case err == nil && closeErr == nil:
		return
	case err == nil:
		c.log().Error("shutdown failed", "error", closeErr)
		os.Exit(exitFailure)
	case !c.started || isUsage(err):
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitUsage)
	default:
		c.log().Error("command failed", "error", err)
		os.Exit(exitFailure)
	}
}

// cli carries state shared by every command of one process.
type cli struct {
	cfg     config.Config
	logger  *logging.Logger
	app     *app.App
	started bool

	stopTelemetry observability.Stop
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "betstats",
		Short:         "Football fixture ingestion and league table maintenance",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.start()
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err: err}
	})

	root.AddCommand(
		newIngestCmd(c),
		newDedupCmd(c),
		newStandingsCmd(c),
		newScheduleCmd(c),
		newCatalogCmd(c),
		newQuotaCmd(c),
	)
	return root
}

func (c *cli) start() error {
	c.started = true

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c.cfg = cfg
	c.logger = logging.New(cfg.LogFormat, cfg.LogLevel).With(
		"service", cfg.ServiceName,
		"env", cfg.AppEnv,
	)
	logging.SetDefault(c.logger)

	c.stopTelemetry, err = observability.Start(cfg, c.logger)
	if err != nil {
		return fmt.Errorf("start telemetry: %w", err)
	}
	return nil
}

// open wires the application on first use.
func (c *cli) open(ctx context.Context) (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	a, err := app.New(ctx, c.cfg, c.logger)
	if err != nil {
		return nil, err
	}
	c.app = a
	return a, nil
}

func (c *cli) close() error {
	var errs []error
	if c.app != nil {
		errs = append(errs, c.app.Close())
		c.app = nil
	}
	if c.stopTelemetry != nil {
		errs = append(errs, c.stopTelemetry(context.Background()))
	}
	if c.logger != nil {
		_ = c.logger.Sync()
	}
	return errors.Join(errs...)
}

func (c *cli) log() *logging.Logger {
	if c.logger == nil {
		return logging.Default()
	}
	return c.logger
}

type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return usageError{err: fmt.Errorf(format, args...)}
}

func isUsage(err error) bool {
	var target usageError
	return errors.As(err, &target)
}
