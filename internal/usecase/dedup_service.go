package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/betstats/internal/domain/match"
	"github.com/riskibarqy/betstats/internal/domain/store"
	"github.com/riskibarqy/betstats/internal/platform/logging"
)

// DuplicateGroup is one set of stored matches sharing kickoff day and teams.
type DuplicateGroup struct {
	Day        time.Time
	HomeTeamID int64
	AwayTeamID int64
	Keep       match.Match
	Drop       []match.Match
}

type DedupResult struct {
	LeagueID  int64
	Executed  bool
	Groups    []DuplicateGroup
	Deleted   int
	SeasonIDs []int64
}

// PlanDedup groups matches by (UTC day, home, away) and picks one survivor
// per group. The result does not depend on input order.
func PlanDedup(items []match.Match) []DuplicateGroup {
	type groupKey struct {
		day  time.Time
		home int64
		away int64
	}
	grouped := make(map[groupKey][]match.Match)
	for _, item := range items {
		key := groupKey{day: item.Day(), home: item.HomeTeamID, away: item.AwayTeamID}
		grouped[key] = append(grouped[key], item)
	}

	out := make([]DuplicateGroup, 0)
	for key, members := range grouped {
		if len(members) < 2 {
			continue
		}
		sort.Slice(members, func(i, j int) bool {
			return preferSurvivor(members[i], members[j])
		})
		out = append(out, DuplicateGroup{
			Day:        key.day,
			HomeTeamID: key.home,
			AwayTeamID: key.away,
			Keep:       members[0],
			Drop:       append([]match.Match(nil), members[1:]...),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Day.Equal(out[j].Day) {
			return out[i].Day.Before(out[j].Day)
		}
		if out[i].HomeTeamID != out[j].HomeTeamID {
			return out[i].HomeTeamID < out[j].HomeTeamID
		}
		return out[i].AwayTeamID < out[j].AwayTeamID
	})
	return out
}

// preferSurvivor is a strict total order: external id, then finished, then
// scored, then earliest inserted.
func preferSurvivor(a, b match.Match) bool {
	if (a.ExternalID != "") != (b.ExternalID != "") {
		return a.ExternalID != ""
	}
	if a.Status.IsFinished() != b.Status.IsFinished() {
		return a.Status.IsFinished()
	}
	if a.HasScore() != b.HasScore() {
		return a.HasScore()
	}
	return a.ID < b.ID
}

type DedupService struct {
	store  store.Store
	logger *logging.Logger
}

func NewDedupService(st store.Store, logger *logging.Logger) *DedupService {
	if logger == nil {
		logger = logging.Default()
	}
	return &DedupService{store: st, logger: logger}
}

// Dedup runs the duplicate pass over one league in a single transaction.
// Without execute it only reports the plan.
func (s *DedupService) Dedup(ctx context.Context, leagueID int64, execute bool) (DedupResult, error) {
	ctx, span := startSpan(ctx, "usecase.DedupService.Dedup",
		attribute.Int64("league_id", leagueID),
		attribute.Bool("execute", execute),
	)
	defer span.End()

	if leagueID <= 0 {
		return DedupResult{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	result := DedupResult{LeagueID: leagueID, Executed: execute}
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		items, err := tx.Matches().ListByLeague(ctx, leagueID, match.Query{})
		if err != nil {
			return fmt.Errorf("list matches league=%d: %w", leagueID, err)
		}

		result.Groups = PlanDedup(items)
		ids := make([]int64, 0)
		seasons := make(map[int64]struct{})
		for _, group := range result.Groups {
			for _, dropped := range group.Drop {
				ids = append(ids, dropped.ID)
				seasons[dropped.SeasonID] = struct{}{}
			}
			s.logger.InfoContext(ctx, "duplicate match group",
				"league_id", leagueID,
				"day", group.Day.Format(time.DateOnly),
				"home_team_id", group.HomeTeamID,
				"away_team_id", group.AwayTeamID,
				"keep_id", group.Keep.ID,
				"drop", len(group.Drop),
			)
		}
		result.SeasonIDs = sortedIDs(seasons)

		if !execute || len(ids) == 0 {
			result.Deleted = len(ids)
			return nil
		}
		deleted, err := tx.Matches().DeleteByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("delete duplicate matches league=%d: %w", leagueID, err)
		}
		result.Deleted = deleted
		return nil
	})
	if err != nil {
		return DedupResult{}, err
	}
	return result, nil
}

func sortedIDs(set map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
