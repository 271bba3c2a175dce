package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/betstats/internal/domain/match"
	"github.com/riskibarqy/betstats/internal/domain/standing"
	"github.com/riskibarqy/betstats/internal/domain/store"
	"github.com/riskibarqy/betstats/internal/domain/team"
	"github.com/riskibarqy/betstats/internal/platform/logging"
)

const (
	pointsWin  = 3
	pointsDraw = 1
)

// ComputeStandings builds the table of one (league, season) from finished,
// scored matches. Teams without a played match get no row.
func ComputeStandings(leagueID, seasonID int64, matches []match.Match, teamNames map[int64]string) []standing.Standing {
	rows := make(map[int64]*standing.Standing)
	row := func(teamID int64) *standing.Standing {
		if existing, ok := rows[teamID]; ok {
			return existing
		}
		created := &standing.Standing{
			LeagueID: leagueID,
			SeasonID: seasonID,
			TeamID:   teamID,
			TeamName: teamNames[teamID],
		}
		rows[teamID] = created
		return created
	}

	for _, item := range matches {
		if item.LeagueID != leagueID || item.SeasonID != seasonID {
			continue
		}
		if !item.Status.IsFinished() || !item.HasScore() || item.HomeTeamID == item.AwayTeamID {
			continue
		}
		homeGoals, awayGoals := *item.HomeScore, *item.AwayScore
		home, away := row(item.HomeTeamID), row(item.AwayTeamID)

		home.Played++
		away.Played++
		home.GoalsFor += homeGoals
		home.GoalsAgainst += awayGoals
		away.GoalsFor += awayGoals
		away.GoalsAgainst += homeGoals

		switch {
		case homeGoals > awayGoals:
			home.Won++
			away.Lost++
			home.Points += pointsWin
		case homeGoals < awayGoals:
			away.Won++
			home.Lost++
			away.Points += pointsWin
		default:
			home.Drawn++
			away.Drawn++
			home.Points += pointsDraw
			away.Points += pointsDraw
		}
	}

	out := make([]standing.Standing, 0, len(rows))
	for _, item := range rows {
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference() != b.GoalDifference() {
			return a.GoalDifference() > b.GoalDifference()
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		if a.TeamName != b.TeamName {
			return a.TeamName < b.TeamName
		}
		return a.TeamID < b.TeamID
	})
	for idx := range out {
		out[idx].Position = idx + 1
	}
	return out
}

// StandingsTarget names one table to rebuild.
type StandingsTarget struct {
	LeagueID int64
	SeasonID int64
}

type StandingsOutcome struct {
	Target StandingsTarget
	Rows   []standing.Standing
	Err    error
}

type StandingsService struct {
	store   store.Store
	workers int
	logger  *logging.Logger
}

func NewStandingsService(st store.Store, workers int, logger *logging.Logger) *StandingsService {
	if workers <= 0 {
		workers = 4
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &StandingsService{store: st, workers: workers, logger: logger}
}

// Compute returns the table without persisting it.
func (s *StandingsService) Compute(ctx context.Context, target StandingsTarget) ([]standing.Standing, error) {
	ctx, span := startSpan(ctx, "usecase.StandingsService.Compute", targetAttrs(target)...)
	defer span.End()

	return computeFromStore(ctx, s.store, target)
}

// Recompute rebuilds and replaces the stored table in one transaction.
func (s *StandingsService) Recompute(ctx context.Context, target StandingsTarget) ([]standing.Standing, error) {
	ctx, span := startSpan(ctx, "usecase.StandingsService.Recompute", targetAttrs(target)...)
	defer span.End()

	var rows []standing.Standing
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		var err error
		rows, err = recomputeIn(ctx, tx, target)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// RecomputeMany rebuilds several tables concurrently. Each table keeps its
// own transaction; one failure does not stop the rest.
func (s *StandingsService) RecomputeMany(ctx context.Context, targets []StandingsTarget, persist bool) ([]StandingsOutcome, error) {
	ctx, span := startSpan(ctx, "usecase.StandingsService.RecomputeMany",
		attribute.Int("targets", len(targets)),
		attribute.Bool("persist", persist),
	)
	defer span.End()

	if len(targets) == 0 {
		return nil, nil
	}

	pool, err := ants.NewPool(min(s.workers, len(targets)))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	outcomes := make([]StandingsOutcome, len(targets))
	var workers sync.WaitGroup
	for idx, target := range targets {
		idx, target := idx, target
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			var rows []standing.Standing
			var err error
			if persist {
				rows, err = s.Recompute(ctx, target)
			} else {
				rows, err = s.Compute(ctx, target)
			}
			if err != nil {
				s.logger.WarnContext(ctx, "standings recompute failed",
					"league_id", target.LeagueID,
					"season_id", target.SeasonID,
					"error", err,
				)
			}
			outcomes[idx] = StandingsOutcome{Target: target, Rows: rows, Err: err}
		}); err != nil {
			workers.Done()
			return nil, fmt.Errorf("submit standings task to worker pool: %w", err)
		}
	}
	workers.Wait()

	return outcomes, nil
}

func recomputeIn(ctx context.Context, tx store.Store, target StandingsTarget) ([]standing.Standing, error) {
	rows, err := computeFromStore(ctx, tx, target)
	if err != nil {
		return nil, err
	}
	if err := tx.Standings().Replace(ctx, target.LeagueID, target.SeasonID, rows); err != nil {
		return nil, fmt.Errorf("replace standings league=%d season=%d: %w", target.LeagueID, target.SeasonID, err)
	}
	return rows, nil
}

func computeFromStore(ctx context.Context, st store.Store, target StandingsTarget) ([]standing.Standing, error) {
	if target.LeagueID <= 0 || target.SeasonID <= 0 {
		return nil, fmt.Errorf("%w: league id and season id are required", ErrInvalidInput)
	}

	matches, err := st.Matches().ListByLeague(ctx, target.LeagueID, match.Query{
		SeasonID: target.SeasonID,
		Statuses: []match.Status{match.StatusFinished},
	})
	if err != nil {
		return nil, fmt.Errorf("list finished matches league=%d season=%d: %w", target.LeagueID, target.SeasonID, err)
	}
	teams, err := st.Teams().ListByLeague(ctx, target.LeagueID)
	if err != nil {
		return nil, fmt.Errorf("list teams league=%d: %w", target.LeagueID, err)
	}
	return ComputeStandings(target.LeagueID, target.SeasonID, matches, teamNameIndex(teams)), nil
}

func targetAttrs(target StandingsTarget) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int64("league_id", target.LeagueID),
		attribute.Int64("season_id", target.SeasonID),
	}
}

func teamNameIndex(teams []team.Team) map[int64]string {
	out := make(map[int64]string, len(teams))
	for _, item := range teams {
		out[item.ID] = item.Name
	}
	return out
}
