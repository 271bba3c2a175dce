package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/betstats/internal/domain/match"
	"github.com/riskibarqy/betstats/internal/domain/standing"
)

func finishedMatch(id, home, away int64, homeGoals, awayGoals int) match.Match {
	return match.Match{
		ID:         id,
		LeagueID:   1,
		SeasonID:   1,
		HomeTeamID: home,
		AwayTeamID: away,
		Status:     match.StatusFinished,
		HomeScore:  match.IntPtr(homeGoals),
		AwayScore:  match.IntPtr(awayGoals),
	}
}

func TestComputeStandings_WinAndDraw(t *testing.T) {
	t.Parallel()

	names := map[int64]string{1: "TeamA", 2: "TeamB", 3: "TeamC"}
	rows := ComputeStandings(1, 1, []match.Match{
		finishedMatch(1, 1, 2, 2, 1),
		finishedMatch(2, 2, 1, 0, 0),
		{ID: 3, LeagueID: 1, SeasonID: 1, HomeTeamID: 2, AwayTeamID: 3, Status: match.StatusScheduled},
		{ID: 4, LeagueID: 2, SeasonID: 1, HomeTeamID: 1, AwayTeamID: 3, Status: match.StatusFinished, HomeScore: match.IntPtr(5), AwayScore: match.IntPtr(0)},
	}, names)

	require.Len(t, rows, 2, "teams without a played match get no row")
	a, b := rows[0], rows[1]
	assert.Equal(t, standing.Standing{
		LeagueID: 1, SeasonID: 1, TeamID: 1, TeamName: "TeamA", Position: 1,
		Played: 2, Won: 1, Drawn: 1, Lost: 0, GoalsFor: 2, GoalsAgainst: 1, Points: 4,
	}, a)
	assert.Equal(t, standing.Standing{
		LeagueID: 1, SeasonID: 1, TeamID: 2, TeamName: "TeamB", Position: 2,
		Played: 2, Won: 0, Drawn: 1, Lost: 1, GoalsFor: 1, GoalsAgainst: 2, Points: 1,
	}, b)
}

func TestComputeStandings_Invariants(t *testing.T) {
	t.Parallel()

	matches := []match.Match{
		finishedMatch(1, 1, 2, 3, 1),
		finishedMatch(2, 2, 3, 0, 0),
		finishedMatch(3, 3, 1, 2, 2),
		finishedMatch(4, 4, 1, 0, 5),
		finishedMatch(5, 2, 4, 1, 2),
	}
	rows := ComputeStandings(1, 1, matches, nil)

	totalPlayed, totalFor, totalAgainst := 0, 0, 0
	for idx, row := range rows {
		assert.Equal(t, idx+1, row.Position)
		assert.Equal(t, row.Won+row.Drawn+row.Lost, row.Played)
		assert.Equal(t, 3*row.Won+row.Drawn, row.Points)
		totalPlayed += row.Played
		totalFor += row.GoalsFor
		totalAgainst += row.GoalsAgainst
		if idx > 0 {
			assert.GreaterOrEqual(t, rows[idx-1].Points, row.Points)
		}
	}
	assert.Equal(t, 2*len(matches), totalPlayed)
	assert.Equal(t, totalFor, totalAgainst)
}

func TestComputeStandings_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, ComputeStandings(1, 1, nil, nil))
	assert.Empty(t, ComputeStandings(1, 1, []match.Match{{LeagueID: 1, SeasonID: 1, HomeTeamID: 1, AwayTeamID: 2, Status: match.StatusFinished}}, nil))
}

func TestComputeStandings_TieBreakByName(t *testing.T) {
	t.Parallel()

	rows := ComputeStandings(1, 1, []match.Match{finishedMatch(1, 2, 1, 1, 1)}, map[int64]string{1: "Zeta", 2: "Alpha"})
	require.Len(t, rows, 2)
	assert.Equal(t, "Alpha", rows[0].TeamName)
	assert.Equal(t, "Zeta", rows[1].TeamName)
}

func TestStandingsService_RecomputeReplacesTable(t *testing.T) {
	t.Parallel()

	w := newFixtureWorld(t, "Lyon", "Nice", "Lens")
	ctx := context.Background()
	kickoff := day(2025, time.March, 2, 16, 0)
	w.insert(t, match.Match{HomeTeamID: w.teams["Lyon"].ID, AwayTeamID: w.teams["Nice"].ID, Date: kickoff, Status: match.StatusFinished, HomeScore: match.IntPtr(2), AwayScore: match.IntPtr(0)})
	require.NoError(t, w.store.Standings().Replace(ctx, w.league.ID, w.season.ID, []standing.Standing{
		{LeagueID: w.league.ID, SeasonID: w.season.ID, TeamID: w.teams["Lens"].ID, TeamName: "Lens", Position: 1, Played: 9, Points: 27},
	}))

	svc := NewStandingsService(w.store, 2, nil)
	target := StandingsTarget{LeagueID: w.league.ID, SeasonID: w.season.ID}

	preview, err := svc.Compute(ctx, target)
	require.NoError(t, err)
	require.Len(t, preview, 2)
	stored, err := w.store.Standings().List(ctx, w.league.ID, w.season.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 1, "compute must not persist")

	rows, err := svc.Recompute(ctx, target)
	require.NoError(t, err)
	stored, err = w.store.Standings().List(ctx, w.league.ID, w.season.ID)
	require.NoError(t, err)
	assert.Equal(t, rows, stored)
	assert.Equal(t, "Lyon", stored[0].TeamName)

	_, err = svc.Recompute(ctx, StandingsTarget{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestStandingsService_RecomputeMany(t *testing.T) {
	t.Parallel()

	w := newFixtureWorld(t, "Genk", "Gent")
	ctx := context.Background()
	w.insert(t, match.Match{HomeTeamID: w.teams["Genk"].ID, AwayTeamID: w.teams["Gent"].ID, Date: day(2025, time.March, 2, 16, 0), Status: match.StatusFinished, HomeScore: match.IntPtr(0), AwayScore: match.IntPtr(1)})

	svc := NewStandingsService(w.store, 4, nil)
	outcomes, err := svc.RecomputeMany(ctx, []StandingsTarget{
		{LeagueID: w.league.ID, SeasonID: w.season.ID},
		{LeagueID: 0, SeasonID: w.season.ID},
	}, true)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.NoError(t, outcomes[0].Err)
	assert.Equal(t, "Gent", outcomes[0].Rows[0].TeamName)
	assert.ErrorIs(t, outcomes[1].Err, ErrInvalidInput)
}
