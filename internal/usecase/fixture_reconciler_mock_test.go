package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/betstats/internal/domain/fixture"
	"github.com/riskibarqy/betstats/internal/domain/match"
	matchmock "github.com/riskibarqy/betstats/internal/mocks/domain/match"
)

func TestFixtureReconciler_ReliableKickoffSkipsWindow(t *testing.T) {
	t.Parallel()

	repo := matchmock.NewRepository(t)
	kickoff := time.Date(2025, time.March, 10, 20, 0, 0, 0, time.UTC)
	target := MatchTarget{LeagueID: 1, SeasonID: 2, HomeTeamID: 10, AwayTeamID: 11}

	repo.On("GetByExternalID", mock.Anything, "fd:77").Return(match.Match{}, false, nil).Once()
	repo.On("FindByTeams", mock.Anything, int64(1), int64(10), int64(11), match.DayOf(kickoff), match.DayOf(kickoff).Add(24*time.Hour)).
		Return([]match.Match(nil), nil).Once()
	repo.On("Insert", mock.Anything, mock.MatchedBy(func(m match.Match) bool {
		return m.ExternalID == "fd:77" && m.Date.Equal(kickoff) && m.Status == match.StatusScheduled
	})).Return(match.Match{ID: 500}, nil).Once()

	result, err := NewFixtureReconciler(24*time.Hour).Reconcile(context.Background(), repo, fixture.Fixture{
		ExternalID:      "fd:77",
		Date:            kickoff,
		Status:          match.StatusScheduled,
		ReliableKickoff: true,
	}, target)

	require.NoError(t, err)
	assert.Equal(t, ActionInsert, result.Action)
	assert.Equal(t, int64(500), result.MatchID)
}

func TestFixtureReconciler_LookupErrorStopsReconcile(t *testing.T) {
	t.Parallel()

	repo := matchmock.NewRepository(t)
	boom := errors.New("connection reset")
	repo.On("GetByExternalID", mock.Anything, "af:9").Return(match.Match{}, false, boom).Once()

	_, err := NewFixtureReconciler(time.Hour).Reconcile(context.Background(), repo, fixture.Fixture{
		ExternalID: "af:9",
		Date:       time.Date(2025, time.March, 10, 20, 0, 0, 0, time.UTC),
		Status:     match.StatusScheduled,
	}, MatchTarget{LeagueID: 1, SeasonID: 2, HomeTeamID: 10, AwayTeamID: 11})

	require.ErrorIs(t, err, boom)
	repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}
