package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/betstats/internal/domain/fixture"
	"github.com/riskibarqy/betstats/internal/domain/match"
)

type ReconcileAction string

const (
	ActionInsert ReconcileAction = "insert"
	ActionUpdate ReconcileAction = "update"
	ActionSkip   ReconcileAction = "skip"
)

// MatchTarget carries the resolved ids a fixture is reconciled against.
type MatchTarget struct {
	LeagueID   int64
	SeasonID   int64
	HomeTeamID int64
	AwayTeamID int64
}

type ReconcileResult struct {
	Action  ReconcileAction
	MatchID int64
	// Changed is false when an update matched a row that already held the
	// incoming values.
	Changed bool
	Reason  string
}

type FixtureReconciler struct {
	window time.Duration
}

// NewFixtureReconciler builds a reconciler. window is the kickoff tolerance
// applied to sources with unreliable kickoff times.
func NewFixtureReconciler(window time.Duration) *FixtureReconciler {
	if window < 0 {
		window = 0
	}
	return &FixtureReconciler{window: window}
}

func (r *FixtureReconciler) Reconcile(ctx context.Context, repo match.Repository, item fixture.Fixture, target MatchTarget) (ReconcileResult, error) {
	if target.HomeTeamID == target.AwayTeamID {
		return ReconcileResult{Action: ActionSkip, Reason: "home and away resolve to the same team"}, nil
	}
	if item.Date.IsZero() {
		return ReconcileResult{Action: ActionSkip, Reason: "missing kickoff date"}, nil
	}
	if item.Status == match.StatusFinished && !item.HasScore() {
		return ReconcileResult{Action: ActionSkip, Reason: "finished without score"}, nil
	}

	existing, found, err := r.findExisting(ctx, repo, item, target)
	if err != nil {
		return ReconcileResult{}, err
	}
	if !found {
		inserted, err := repo.Insert(ctx, newMatch(item, target))
		if err != nil {
			return ReconcileResult{}, fmt.Errorf("insert match: %w", err)
		}
		return ReconcileResult{Action: ActionInsert, MatchID: inserted.ID, Changed: true}, nil
	}

	if existing.Status == match.StatusFinished && item.Status != match.StatusFinished && !item.HasScore() {
		return ReconcileResult{Action: ActionSkip, MatchID: existing.ID, Reason: "stale status for finished match"}, nil
	}

	updated := applyFixture(existing, item)
	if sameMatch(existing, updated) {
		return ReconcileResult{Action: ActionUpdate, MatchID: existing.ID}, nil
	}
	if err := repo.Update(ctx, updated); err != nil {
		return ReconcileResult{}, fmt.Errorf("update match id=%d: %w", existing.ID, err)
	}
	return ReconcileResult{Action: ActionUpdate, MatchID: existing.ID, Changed: true}, nil
}

func (r *FixtureReconciler) findExisting(ctx context.Context, repo match.Repository, item fixture.Fixture, target MatchTarget) (match.Match, bool, error) {
	if item.ExternalID != "" {
		existing, found, err := repo.GetByExternalID(ctx, item.ExternalID)
		if err != nil {
			return match.Match{}, false, fmt.Errorf("get match by external id=%s: %w", item.ExternalID, err)
		}
		if found {
			return existing, true, nil
		}
	}

	day := match.DayOf(item.Date)
	candidates, err := repo.FindByTeams(ctx, target.LeagueID, target.HomeTeamID, target.AwayTeamID, day, day.Add(24*time.Hour))
	if err != nil {
		return match.Match{}, false, fmt.Errorf("find match by teams on %s: %w", day.Format(time.DateOnly), err)
	}
	if best, ok := closestMatch(candidates, item); ok {
		return best, true, nil
	}

	if item.ReliableKickoff || r.window == 0 {
		return match.Match{}, false, nil
	}
	candidates, err = repo.FindByTeams(ctx, target.LeagueID, target.HomeTeamID, target.AwayTeamID, item.Date.Add(-r.window), item.Date.Add(r.window+time.Nanosecond))
	if err != nil {
		return match.Match{}, false, fmt.Errorf("find match by teams within window: %w", err)
	}
	best, ok := closestMatch(candidates, item)
	return best, ok, nil
}

// closestMatch prefers a candidate that can take the fixture's external id,
// then the nearest kickoff, then the lowest id. A candidate holding another
// provider's id still qualifies; it keeps its id on update.
func closestMatch(candidates []match.Match, item fixture.Fixture) (match.Match, bool) {
	if len(candidates) == 0 {
		return match.Match{}, false
	}
	best := 0
	for idx := 1; idx < len(candidates); idx++ {
		if closer(candidates[idx], candidates[best], item) {
			best = idx
		}
	}
	return candidates[best], true
}

func closer(a, b match.Match, item fixture.Fixture) bool {
	if fa, fb := takesExternalID(a, item), takesExternalID(b, item); fa != fb {
		return fa
	}
	da, db := absDuration(a.Date.Sub(item.Date)), absDuration(b.Date.Sub(item.Date))
	if da != db {
		return da < db
	}
	return a.ID < b.ID
}

func takesExternalID(candidate match.Match, item fixture.Fixture) bool {
	return candidate.ExternalID == "" || candidate.ExternalID == item.ExternalID
}

func newMatch(item fixture.Fixture, target MatchTarget) match.Match {
	return match.Match{
		LeagueID:      target.LeagueID,
		SeasonID:      target.SeasonID,
		HomeTeamID:    target.HomeTeamID,
		AwayTeamID:    target.AwayTeamID,
		Date:          item.Date.UTC(),
		Status:        item.Status,
		HomeScore:     copyInt(item.HomeScore),
		AwayScore:     copyInt(item.AwayScore),
		HalfHomeScore: copyInt(item.HalfHomeScore),
		HalfAwayScore: copyInt(item.HalfAwayScore),
		ExternalID:    item.ExternalID,
	}
}

// applyFixture overwrites status and scores. Kickoff is taken only from
// sources with reliable times, and an external id only fills an empty slot.
func applyFixture(existing match.Match, item fixture.Fixture) match.Match {
	out := existing
	out.Status = item.Status
	out.HomeScore = copyInt(item.HomeScore)
	out.AwayScore = copyInt(item.AwayScore)
	out.HalfHomeScore = copyInt(item.HalfHomeScore)
	out.HalfAwayScore = copyInt(item.HalfAwayScore)
	if item.ReliableKickoff {
		out.Date = item.Date.UTC()
	}
	if out.ExternalID == "" {
		out.ExternalID = item.ExternalID
	}
	return out
}

func sameMatch(a, b match.Match) bool {
	return a.Status == b.Status &&
		a.Date.Equal(b.Date) &&
		a.ExternalID == b.ExternalID &&
		equalIntPtr(a.HomeScore, b.HomeScore) &&
		equalIntPtr(a.AwayScore, b.AwayScore) &&
		equalIntPtr(a.HalfHomeScore, b.HalfHomeScore) &&
		equalIntPtr(a.HalfAwayScore, b.HalfAwayScore)
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
