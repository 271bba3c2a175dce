package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/betstats/internal/catalog"
	"github.com/riskibarqy/betstats/internal/domain/fixture"
	"github.com/riskibarqy/betstats/internal/domain/goal"
	"github.com/riskibarqy/betstats/internal/domain/match"
	"github.com/riskibarqy/betstats/internal/domain/season"
	"github.com/riskibarqy/betstats/internal/domain/store"
	"github.com/riskibarqy/betstats/internal/platform/id"
	"github.com/riskibarqy/betstats/internal/platform/logging"
)

type IngestionConfig struct {
	// DevGuard blocks paid sources unless the run is forced.
	DevGuard      bool
	LiveLookahead time.Duration
	UpcomingDays  int
	RecentDays    int
}

type IngestInput struct {
	Mode       IngestMode
	Leagues    []catalog.League
	SeasonYear int
	Execute    bool
	Force      bool
	Goals      bool
}

type LeagueOutcome struct {
	League     string
	Source     string
	Fetched    int
	Inserted   int
	Updated    int
	Unchanged  int
	Skipped    int
	Invalid    int
	Unresolved int
	Goals      int
	Standings  []StandingsTarget
	Err        error
}

type IngestResult struct {
	RunID       string
	Mode        IngestMode
	Executed    bool
	LiveSkipped bool
	LiveReason  string
	Leagues     []LeagueOutcome
}

// Failed counts leagues whose batch did not complete.
func (r IngestResult) Failed() int {
	n := 0
	for _, item := range r.Leagues {
		if item.Err != nil {
			n++
		}
	}
	return n
}

type IngestionService struct {
	store      store.Store
	catalog    *catalog.Catalog
	resolver   *TeamResolver
	reconciler *FixtureReconciler
	chains     map[IngestMode]SourceChain
	ids        id.Generator
	validate   *validator.Validate
	cfg        IngestionConfig
	logger     *logging.Logger
	now        func() time.Time
}

func NewIngestionService(
	st store.Store,
	cat *catalog.Catalog,
	resolver *TeamResolver,
	reconciler *FixtureReconciler,
	chains map[IngestMode]SourceChain,
	ids id.Generator,
	cfg IngestionConfig,
	logger *logging.Logger,
) *IngestionService {
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if cfg.LiveLookahead <= 0 {
		cfg.LiveLookahead = 45 * time.Minute
	}
	if cfg.UpcomingDays <= 0 {
		cfg.UpcomingDays = 7
	}
	if cfg.RecentDays <= 0 {
		cfg.RecentDays = 3
	}
	return &IngestionService{
		store:      st,
		catalog:    cat,
		resolver:   resolver,
		reconciler: reconciler,
		chains:     chains,
		ids:        ids,
		validate:   validator.New(),
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock replaces the time source.
func (s *IngestionService) WithClock(now func() time.Time) *IngestionService {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *IngestionService) Ingest(ctx context.Context, input IngestInput) (IngestResult, error) {
	ctx, span := startSpan(ctx, "usecase.IngestionService.Ingest",
		attribute.String("mode", string(input.Mode)),
		attribute.Bool("execute", input.Execute),
	)
	defer span.End()

	runID, err := s.ids.NewID()
	if err != nil {
		return IngestResult{}, err
	}
	result := IngestResult{RunID: runID, Mode: input.Mode, Executed: input.Execute}
	logger := s.logger.With("run_id", runID, "mode", string(input.Mode))

	chain, ok := s.chains[input.Mode]
	if !ok {
		return result, fmt.Errorf("%w: unknown ingest mode %q", ErrInvalidInput, input.Mode)
	}
	if input.Mode == ModeSeason && input.SeasonYear <= 0 {
		return result, fmt.Errorf("%w: season year is required for season ingestion", ErrInvalidInput)
	}
	if s.cfg.DevGuard && !input.Force && chain.hasPaid() {
		chain = chain.withoutPaid()
		if len(chain.sources) == 0 {
			return result, ErrForceRequired
		}
		logger.WarnContext(ctx, "dev guard active, paid sources skipped")
	}

	leagues := input.Leagues
	if len(leagues) == 0 {
		leagues = s.catalog.Leagues()
	}

	if input.Mode == ModeLive {
		return s.ingestLive(ctx, chain, leagues, input, result, logger)
	}

	now := s.now().UTC()
	var failures []error
	for _, item := range leagues {
		req := FetchRequest{Mode: input.Mode, League: item, SeasonYear: input.SeasonYear}
		switch input.Mode {
		case ModeUpcoming:
			req.From, req.To = now, now.AddDate(0, 0, s.cfg.UpcomingDays)
		case ModeRecent:
			req.From, req.To = match.DayOf(now).AddDate(0, 0, -s.cfg.RecentDays), now
		}

		fixtures, source, err := chain.Fetch(ctx, req)
		if err != nil {
			logger.ErrorContext(ctx, "fetch fixtures failed", "league", item.Key(), "error", err)
			result.Leagues = append(result.Leagues, LeagueOutcome{League: item.Key(), Err: err})
			failures = append(failures, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}

		outcome := s.ingestLeague(ctx, item, source, fixtures, input, logger)
		result.Leagues = append(result.Leagues, outcome)
		if outcome.Err != nil {
			failures = append(failures, outcome.Err)
		}
	}

	return result, errors.Join(failures...)
}

func (s *IngestionService) ingestLive(ctx context.Context, chain SourceChain, leagues []catalog.League, input IngestInput, result IngestResult, logger *logging.Logger) (IngestResult, error) {
	if !input.Force {
		poll, reason, err := s.LiveWindow(ctx)
		if err != nil {
			return result, err
		}
		result.LiveReason = reason
		if !poll {
			result.LiveSkipped = true
			logger.InfoContext(ctx, "no live window, skipping provider calls", "reason", reason)
			return result, nil
		}
	}

	items, source, err := chain.FetchLive(ctx)
	if err != nil {
		return result, err
	}

	wanted := make(map[string]catalog.League, len(leagues))
	for _, item := range leagues {
		wanted[item.Key()] = item
	}
	grouped := make(map[string][]fixture.Fixture)
	order := make([]string, 0)
	for _, item := range items {
		target, ok := s.catalog.ByProviderName(item.LeagueName, item.Country)
		if !ok {
			logger.DebugContext(ctx, "live fixture outside catalog", "league_name", item.LeagueName, "country", item.Country)
			continue
		}
		if _, ok := wanted[target.Key()]; !ok {
			continue
		}
		if _, seen := grouped[target.Key()]; !seen {
			order = append(order, target.Key())
		}
		grouped[target.Key()] = append(grouped[target.Key()], item)
	}

	var failures []error
	for _, key := range order {
		outcome := s.ingestLeague(ctx, wanted[key], source, grouped[key], input, logger)
		result.Leagues = append(result.Leagues, outcome)
		if outcome.Err != nil {
			failures = append(failures, outcome.Err)
		}
	}
	return result, errors.Join(failures...)
}

// LiveWindow reports whether live polling is worth a provider call: a stored
// match is live, or a match today has not finished and kicks off within the
// lookahead.
func (s *IngestionService) LiveWindow(ctx context.Context) (bool, string, error) {
	live, err := s.store.Matches().ListByStatus(ctx, match.StatusLive)
	if err != nil {
		return false, "", fmt.Errorf("list live matches: %w", err)
	}
	if len(live) > 0 {
		return true, fmt.Sprintf("match %d is live", live[0].ID), nil
	}

	now := s.now().UTC()
	today := match.DayOf(now)
	items, err := s.store.Matches().ListBetween(ctx, today, now.Add(s.cfg.LiveLookahead))
	if err != nil {
		return false, "", fmt.Errorf("list matches around now: %w", err)
	}
	for _, item := range items {
		if item.Status == match.StatusScheduled && !item.Date.Before(today) {
			return true, fmt.Sprintf("match %d kicks off at %s", item.ID, item.Date.UTC().Format(time.RFC3339)), nil
		}
	}
	return false, "no live or imminent matches", nil
}

// ingestLeague reconciles one league's fixtures inside one transaction.
func (s *IngestionService) ingestLeague(ctx context.Context, item catalog.League, source fixture.Source, fixtures []fixture.Fixture, input IngestInput, logger *logging.Logger) LeagueOutcome {
	outcome := LeagueOutcome{League: item.Key(), Source: source.Name(), Fetched: len(fixtures)}
	logger = logger.With("league", item.Key(), "source", source.Name())
	policy := ResolvePolicy{CreateIfMissing: source.CreatesTeams()}

	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		row, _, err := ensureLeague(ctx, tx.Leagues(), item)
		if err != nil {
			return err
		}
		leagueRef := LeagueRef{ID: row.ID, Catalog: item}
		session, err := s.resolver.Begin(ctx, tx.Teams(), leagueRef)
		if err != nil {
			return err
		}

		seasons := make(map[int]season.Season)
		touched := make(map[int64]struct{})
		for _, incoming := range fixtures {
			incoming.HomeTeam = strings.TrimSpace(incoming.HomeTeam)
			incoming.AwayTeam = strings.TrimSpace(incoming.AwayTeam)
			if err := s.validate.StructCtx(ctx, incoming); err != nil {
				outcome.Invalid++
				logger.WarnContext(ctx, "invalid fixture skipped",
					"external_id", incoming.ExternalID,
					"home", incoming.HomeTeam,
					"away", incoming.AwayTeam,
					"error", err,
				)
				continue
			}

			year := input.SeasonYear
			if input.Mode != ModeSeason || year <= 0 {
				year = item.SeasonYearFor(incoming.Date)
			}
			seasonRow, ok := seasons[year]
			if !ok {
				seasonRow, err = tx.Seasons().GetOrCreate(ctx, year)
				if err != nil {
					return fmt.Errorf("get or create season %d: %w", year, err)
				}
				seasons[year] = seasonRow
			}

			home, err := session.Resolve(ctx, TeamInput{Name: incoming.HomeTeam, ExternalID: incoming.HomeExternalID}, policy)
			if err != nil {
				if errors.Is(err, ErrTeamNotFound) || errors.Is(err, ErrInvalidInput) {
					outcome.Unresolved++
					logger.WarnContext(ctx, "unresolved team, fixture skipped", "team", incoming.HomeTeam, "away", incoming.AwayTeam)
					continue
				}
				return err
			}
			away, err := session.Resolve(ctx, TeamInput{Name: incoming.AwayTeam, ExternalID: incoming.AwayExternalID}, policy)
			if err != nil {
				if errors.Is(err, ErrTeamNotFound) || errors.Is(err, ErrInvalidInput) {
					outcome.Unresolved++
					logger.WarnContext(ctx, "unresolved team, fixture skipped", "team", incoming.AwayTeam, "home", incoming.HomeTeam)
					continue
				}
				return err
			}

			res, err := s.reconciler.Reconcile(ctx, tx.Matches(), incoming, MatchTarget{
				LeagueID:   row.ID,
				SeasonID:   seasonRow.ID,
				HomeTeamID: home.Team.ID,
				AwayTeamID: away.Team.ID,
			})
			if err != nil {
				return err
			}

			switch {
			case res.Action == ActionInsert:
				outcome.Inserted++
			case res.Action == ActionUpdate && res.Changed:
				outcome.Updated++
			case res.Action == ActionUpdate:
				outcome.Unchanged++
			default:
				outcome.Skipped++
				logger.WarnContext(ctx, "fixture skipped",
					"external_id", incoming.ExternalID,
					"home", incoming.HomeTeam,
					"away", incoming.AwayTeam,
					"reason", res.Reason,
				)
				continue
			}
			if res.Changed {
				touched[seasonRow.ID] = struct{}{}
			}

			if input.Goals && incoming.Status == match.StatusFinished && res.Changed {
				written, err := s.syncGoals(ctx, tx, source, incoming, res.MatchID, home.Team.ID, away.Team.ID, logger)
				if err != nil {
					return err
				}
				outcome.Goals += written
			}
		}

		for _, seasonID := range sortedIDs(touched) {
			target := StandingsTarget{LeagueID: row.ID, SeasonID: seasonID}
			if _, err := recomputeIn(ctx, tx, target); err != nil {
				return err
			}
			outcome.Standings = append(outcome.Standings, target)
		}

		if !input.Execute {
			return errDryRun
		}
		return nil
	})
	if err != nil && !isDryRun(err) {
		outcome.Err = fmt.Errorf("ingest %s: %w", item.Key(), err)
		logger.ErrorContext(ctx, "league batch rolled back", "error", err)
		return outcome
	}

	logger.InfoContext(ctx, "league batch done",
		"executed", input.Execute,
		"fetched", outcome.Fetched,
		"inserted", outcome.Inserted,
		"updated", outcome.Updated,
		"unchanged", outcome.Unchanged,
		"skipped", outcome.Skipped,
		"invalid", outcome.Invalid,
		"unresolved", outcome.Unresolved,
		"goals", outcome.Goals,
	)
	return outcome
}

// syncGoals replaces goal rows of one match. Provider failures are logged
// and the fixture keeps its result; store failures abort the batch.
func (s *IngestionService) syncGoals(ctx context.Context, tx store.Store, source fixture.Source, incoming fixture.Fixture, matchID, homeTeamID, awayTeamID int64, logger *logging.Logger) (int, error) {
	events := incoming.Goals
	if len(events) == 0 {
		fetched, supported, err := fetchGoals(ctx, source, incoming.ExternalID)
		if err != nil {
			logger.WarnContext(ctx, "fetch goals failed", "external_id", incoming.ExternalID, "error", err)
			return 0, nil
		}
		if !supported {
			return 0, nil
		}
		events = fetched
	}

	rows := make([]goal.Goal, 0, len(events))
	for _, event := range events {
		teamID := awayTeamID
		if event.Home {
			teamID = homeTeamID
		}
		rows = append(rows, goal.Goal{
			MatchID:     matchID,
			TeamID:      teamID,
			Minute:      event.Minute,
			ExtraMinute: copyInt(event.ExtraMinute),
			Scorer:      strings.TrimSpace(event.Scorer),
			OwnGoal:     event.OwnGoal,
			Penalty:     event.Penalty,
		})
	}
	if err := tx.Goals().ReplaceByMatch(ctx, matchID, rows); err != nil {
		return 0, fmt.Errorf("replace goals match=%d: %w", matchID, err)
	}
	return len(rows), nil
}
