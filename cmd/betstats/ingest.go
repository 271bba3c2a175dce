package main

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/riskibarqy/betstats/internal/catalog"
	"github.com/riskibarqy/betstats/internal/usecase"
)

type ingestOptions struct {
	leagues    leagueFlags
	seasonYear int
	execute    bool
	force      bool
	goals      bool
}

func newIngestCmd(c *cli) *cobra.Command {
	var opts ingestOptions
	cmd := &cobra.Command{
		Use:   "ingest <season|live|upcoming|recent>",
		Short: "Fetch fixtures and reconcile them with stored matches",
		Long: `Fetch fixtures from the provider chain of the given mode and reconcile
them with stored matches, one transaction per league. Without --execute every
transaction is rolled back and only the counts are reported.

season needs a league selection; the other modes default to every league.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"season", "live", "upcoming", "recent"},
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := usecase.ParseIngestMode(strings.ToLower(args[0]))
			if err != nil {
				return usageError{err: err}
			}
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			leagues, err := opts.leagues.resolve(a.Catalog, mode != usecase.ModeSeason)
			if err != nil {
				return err
			}

			results, err := runIngest(cmd.Context(), a.Ingestion, mode, leagues, opts, time.Now())
			for _, result := range results {
				printIngest(os.Stdout, result)
			}
			return err
		},
	}
	opts.leagues.register(cmd)
	cmd.Flags().IntVar(&opts.seasonYear, "season_year", 0, "season identified by its ending year; defaults to each league's current season")
	cmd.Flags().BoolVar(&opts.execute, "execute", false, "commit changes instead of a dry run")
	cmd.Flags().BoolVar(&opts.force, "force", false, "allow paid providers in dev and bypass the live window check")
	cmd.Flags().BoolVar(&opts.goals, "goals", false, "also fetch goal events for finished matches")
	return cmd
}

// runIngest splits season runs without an explicit year into batches of
// leagues sharing their current season.
func runIngest(ctx context.Context, svc *usecase.IngestionService, mode usecase.IngestMode, leagues []catalog.League, opts ingestOptions, now time.Time) ([]usecase.IngestResult, error) {
	input := usecase.IngestInput{
		Mode:       mode,
		SeasonYear: opts.seasonYear,
		Execute:    opts.execute,
		Force:      opts.force,
		Goals:      opts.goals,
	}

	if mode != usecase.ModeSeason || opts.seasonYear > 0 {
		input.Leagues = leagues
		result, err := svc.Ingest(ctx, input)
		return []usecase.IngestResult{result}, err
	}

	var (
		results []usecase.IngestResult
		errs    []error
	)
	for _, batch := range currentSeasonBatches(leagues, now) {
		input.SeasonYear = batch.year
		input.Leagues = batch.leagues
		result, err := svc.Ingest(ctx, input)
		results = append(results, result)
		if err != nil {
			errs = append(errs, err)
		}
		if ctx.Err() != nil {
			break
		}
	}
	return results, errors.Join(errs...)
}

type seasonBatch struct {
	year    int
	leagues []catalog.League
}

func currentSeasonBatches(leagues []catalog.League, now time.Time) []seasonBatch {
	out := make([]seasonBatch, 0, 2)
	index := make(map[int]int)
	for _, item := range leagues {
		year := item.SeasonYearFor(now)
		pos, ok := index[year]
		if !ok {
			pos = len(out)
			index[year] = pos
			out = append(out, seasonBatch{year: year})
		}
		out[pos].leagues = append(out[pos].leagues, item)
	}
	return out
}
