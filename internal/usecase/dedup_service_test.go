package usecase

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/betstats/internal/domain/match"
)

func TestPlanDedup_SurvivorIndependentOfOrder(t *testing.T) {
	t.Parallel()

	kickoff := day(2025, time.March, 8, 15, 0)
	items := []match.Match{
		{ID: 1, HomeTeamID: 10, AwayTeamID: 20, Date: kickoff, Status: match.StatusScheduled},
		{ID: 2, HomeTeamID: 10, AwayTeamID: 20, Date: kickoff.Add(3 * time.Hour), Status: match.StatusFinished, HomeScore: match.IntPtr(1), AwayScore: match.IntPtr(0)},
		{ID: 3, HomeTeamID: 10, AwayTeamID: 20, Date: kickoff.Add(time.Hour), Status: match.StatusScheduled, ExternalID: "fd:5"},
		{ID: 4, HomeTeamID: 10, AwayTeamID: 20, Date: kickoff.Add(24 * time.Hour)},
		{ID: 5, HomeTeamID: 20, AwayTeamID: 10, Date: kickoff},
	}

	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 20; round++ {
		shuffled := append([]match.Match(nil), items...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		groups := PlanDedup(shuffled)
		if len(groups) != 1 {
			t.Fatalf("round %d: expected one duplicate group, got %d", round, len(groups))
		}
		if groups[0].Keep.ID != 3 {
			t.Fatalf("round %d: expected match with external id to survive, got %d", round, groups[0].Keep.ID)
		}
		if len(groups[0].Drop) != 2 {
			t.Fatalf("round %d: expected two dropped rows, got %d", round, len(groups[0].Drop))
		}
	}
}

func TestPreferSurvivor_Ordering(t *testing.T) {
	t.Parallel()

	finished := match.Match{ID: 9, Status: match.StatusFinished}
	scored := match.Match{ID: 8, Status: match.StatusLive, HomeScore: match.IntPtr(0), AwayScore: match.IntPtr(0)}
	plain := match.Match{ID: 1, Status: match.StatusScheduled}

	assert.True(t, preferSurvivor(finished, scored))
	assert.True(t, preferSurvivor(scored, plain))
	assert.True(t, preferSurvivor(match.Match{ID: 1}, match.Match{ID: 2}))
	assert.False(t, preferSurvivor(match.Match{ID: 2}, match.Match{ID: 1}))
}

func TestDedupService_DryRunAndExecute(t *testing.T) {
	t.Parallel()

	w := newFixtureWorld(t, "Porto", "Benfica")
	kickoff := day(2025, time.April, 6, 19, 0)
	keep := w.insert(t, match.Match{HomeTeamID: w.teams["Porto"].ID, AwayTeamID: w.teams["Benfica"].ID, Date: kickoff, ExternalID: "fd:1"})
	w.insert(t, match.Match{HomeTeamID: w.teams["Porto"].ID, AwayTeamID: w.teams["Benfica"].ID, Date: kickoff.Add(2 * time.Hour)})

	svc := NewDedupService(w.store, nil)
	ctx := context.Background()

	plan, err := svc.Dedup(ctx, w.league.ID, false)
	require.NoError(t, err)
	assert.False(t, plan.Executed)
	assert.Equal(t, 1, plan.Deleted)
	assert.Len(t, w.allMatches(t), 2)

	done, err := svc.Dedup(ctx, w.league.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, done.Deleted)
	assert.Equal(t, []int64{w.season.ID}, done.SeasonIDs)

	left := w.allMatches(t)
	require.Len(t, left, 1)
	assert.Equal(t, keep.ID, left[0].ID)

	_, err = svc.Dedup(ctx, 0, true)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
