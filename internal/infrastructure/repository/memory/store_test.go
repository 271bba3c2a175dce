package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/betstats/internal/domain/league"
	"github.com/riskibarqy/betstats/internal/domain/match"
	"github.com/riskibarqy/betstats/internal/domain/store"
	"github.com/riskibarqy/betstats/internal/domain/team"
)

func TestStore_WithinTxRollsBackOnError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := NewStore()
	boom := errors.New("boom")

	err := st.WithinTx(ctx, func(tx store.Store) error {
		if _, err := tx.Leagues().Create(ctx, league.League{Name: "Premier League", Country: "England"}); err != nil {
			return err
		}
		return tx.WithinTx(ctx, func(nested store.Store) error {
			if _, err := nested.Seasons().GetOrCreate(ctx, 2026); err != nil {
				return err
			}
			return boom
		})
	})
	require.ErrorIs(t, err, boom)

	leagues, err := st.Leagues().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, leagues)
	_, found, err := st.Seasons().GetByYear(ctx, 2026)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_Constraints(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := NewStore()

	l, err := st.Leagues().Create(ctx, league.League{Name: "Brasileirão", Country: "Brazil"})
	require.NoError(t, err)
	_, err = st.Leagues().Create(ctx, league.League{Name: "brasileirao", Country: "BRAZIL"})
	require.ErrorIs(t, err, ErrConstraint)

	s, err := st.Seasons().GetOrCreate(ctx, 2025)
	require.NoError(t, err)
	home, err := st.Teams().Create(ctx, team.Team{LeagueID: l.ID, Name: "Flamengo"})
	require.NoError(t, err)
	away, err := st.Teams().Create(ctx, team.Team{LeagueID: l.ID, Name: "Palmeiras"})
	require.NoError(t, err)

	kickoff := time.Date(2025, 5, 10, 19, 0, 0, 0, time.UTC)
	first, err := st.Matches().Insert(ctx, match.Match{
		LeagueID: l.ID, SeasonID: s.ID, HomeTeamID: home.ID, AwayTeamID: away.ID,
		Date: kickoff, Status: match.StatusScheduled, ExternalID: "af:1",
	})
	require.NoError(t, err)
	_, err = st.Matches().Insert(ctx, match.Match{
		LeagueID: l.ID, SeasonID: s.ID, HomeTeamID: home.ID, AwayTeamID: away.ID,
		Date: kickoff, Status: match.StatusScheduled, ExternalID: "af:1",
	})
	require.ErrorIs(t, err, ErrConstraint)

	found, err := st.Matches().FindByTeams(ctx, l.ID, home.ID, away.ID, kickoff.Truncate(24*time.Hour), kickoff.Truncate(24*time.Hour).Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, first.ID, found[0].ID)
}

func TestMatchRepository_ListByStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := NewStore()

	l, err := st.Leagues().Create(ctx, league.League{Name: "Serie A", Country: "Italy"})
	require.NoError(t, err)
	s, err := st.Seasons().GetOrCreate(ctx, 2025)
	require.NoError(t, err)
	home, err := st.Teams().Create(ctx, team.Team{LeagueID: l.ID, Name: "Roma"})
	require.NoError(t, err)
	away, err := st.Teams().Create(ctx, team.Team{LeagueID: l.ID, Name: "Lazio"})
	require.NoError(t, err)

	base := time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC)
	statuses := []match.Status{match.StatusLive, match.StatusFinished, match.StatusLive}
	ids := make([]int64, 0, len(statuses))
	for idx, status := range statuses {
		row, err := st.Matches().Insert(ctx, match.Match{
			LeagueID: l.ID, SeasonID: s.ID, HomeTeamID: home.ID, AwayTeamID: away.ID,
			Date: base.AddDate(0, 0, -7*idx), Status: status,
		})
		require.NoError(t, err)
		ids = append(ids, row.ID)
	}

	live, err := st.Matches().ListByStatus(ctx, match.StatusLive)
	require.NoError(t, err)
	require.Len(t, live, 2)
	assert.Equal(t, ids[2], live[0].ID)
	assert.Equal(t, ids[0], live[1].ID)

	postponed, err := st.Matches().ListByStatus(ctx, match.StatusPostponed)
	require.NoError(t, err)
	assert.Empty(t, postponed)
}
