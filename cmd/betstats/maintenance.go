package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/riskibarqy/betstats/internal/app"
	"github.com/riskibarqy/betstats/internal/catalog"
	"github.com/riskibarqy/betstats/internal/usecase"
)

func newDedupCmd(c *cli) *cobra.Command {
	var (
		leagues leagueFlags
		execute bool
	)
	cmd := &cobra.Command{
		Use:   "dedup",
		Short: "Remove stored matches that share kickoff day and teams",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			selected, err := leagues.resolve(a.Catalog, false)
			if err != nil {
				return err
			}
			return runDedup(cmd.Context(), os.Stdout, a, selected, execute)
		},
	}
	leagues.register(cmd)
	cmd.Flags().BoolVar(&execute, "execute", false, "delete duplicates instead of reporting them")
	return cmd
}

// runDedup cleans each league in its own transaction and rebuilds the tables
// of every season it touched.
func runDedup(ctx context.Context, out io.Writer, a *app.App, leagues []catalog.League, execute bool) error {
	var (
		errs    []error
		targets []usecase.StandingsTarget
	)
	for _, item := range leagues {
		ref, err := a.Leagues.Find(ctx, item)
		if errors.Is(err, usecase.ErrNotFound) {
			a.Logger.WarnContext(ctx, "league has no stored row, skipping dedup", "league", item.Key())
			continue
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}

		result, err := a.Dedup.Dedup(ctx, ref.ID, execute)
		if err != nil {
			errs = append(errs, fmt.Errorf("dedup %s: %w", item.Key(), err))
			continue
		}
		printDedup(out, item, result)
		if !execute || result.Deleted == 0 {
			continue
		}
		for _, seasonID := range result.SeasonIDs {
			targets = append(targets, usecase.StandingsTarget{LeagueID: ref.ID, SeasonID: seasonID})
		}
	}

	if len(targets) > 0 {
		outcomes, err := a.Standings.RecomputeMany(ctx, targets, true)
		if err != nil {
			errs = append(errs, err)
		}
		errs = append(errs, outcomeErrors(outcomes)...)
	}
	return errors.Join(errs...)
}

func newStandingsCmd(c *cli) *cobra.Command {
	var (
		leagues    leagueFlags
		seasonYear int
		execute    bool
	)
	cmd := &cobra.Command{
		Use:   "standings",
		Short: "Recompute league tables from finished matches",
		Long: `Recompute league tables from finished, scored matches. Without --execute
the tables are printed and nothing is stored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			selected, err := leagues.resolve(a.Catalog, false)
			if err != nil {
				return err
			}
			return runStandings(cmd.Context(), os.Stdout, a, selected, seasonYear, execute, time.Now())
		},
	}
	leagues.register(cmd)
	cmd.Flags().IntVar(&seasonYear, "season_year", 0, "season identified by its ending year; defaults to each league's current season")
	cmd.Flags().BoolVar(&execute, "execute", false, "store the recomputed tables")
	return cmd
}

func runStandings(ctx context.Context, out io.Writer, a *app.App, leagues []catalog.League, seasonYear int, execute bool, now time.Time) error {
	var errs []error
	targets := make([]usecase.StandingsTarget, 0, len(leagues))
	names := make(map[usecase.StandingsTarget]string, len(leagues))
	for _, item := range leagues {
		year := seasonYear
		if year <= 0 {
			year = item.SeasonYearFor(now)
		}
		ref, err := a.Leagues.Find(ctx, item)
		if errors.Is(err, usecase.ErrNotFound) {
			a.Logger.WarnContext(ctx, "league has no stored row, skipping standings", "league", item.Key())
			continue
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		season, err := a.Leagues.Season(ctx, year)
		if errors.Is(err, usecase.ErrNotFound) {
			a.Logger.WarnContext(ctx, "season not stored, skipping standings", "league", item.Key(), "season_year", year)
			continue
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}

		target := usecase.StandingsTarget{LeagueID: ref.ID, SeasonID: season.ID}
		targets = append(targets, target)
		names[target] = fmt.Sprintf("%s %d", item.Key(), year)
	}

	outcomes, err := a.Standings.RecomputeMany(ctx, targets, execute)
	if err != nil {
		return errors.Join(append(errs, err)...)
	}
	for _, outcome := range outcomes {
		if outcome.Err == nil {
			printStandings(out, names[outcome.Target], outcome.Rows)
		}
	}
	errs = append(errs, outcomeErrors(outcomes)...)
	return errors.Join(errs...)
}

func outcomeErrors(outcomes []usecase.StandingsOutcome) []error {
	var errs []error
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			errs = append(errs, fmt.Errorf("standings league=%d season=%d: %w", outcome.Target.LeagueID, outcome.Target.SeasonID, outcome.Err))
		}
	}
	return errs
}
