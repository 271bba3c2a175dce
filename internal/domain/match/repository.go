package match

import (
	"context"
	"time"
)

// Query narrows ListByLeague. Zero values mean no filter.
type Query struct {
	SeasonID int64
	From     time.Time
	To       time.Time
	Statuses []Status
}

type Repository interface {
	GetByID(ctx context.Context, id int64) (Match, bool, error)
	GetByExternalID(ctx context.Context, externalID string) (Match, bool, error)
	// FindByTeams returns matches for the pairing with kickoff in [from, to).
	FindByTeams(ctx context.Context, leagueID, homeTeamID, awayTeamID int64, from, to time.Time) ([]Match, error)
	ListByLeague(ctx context.Context, leagueID int64, query Query) ([]Match, error)
	// ListBetween returns matches across all leagues with kickoff in [from, to).
	ListBetween(ctx context.Context, from, to time.Time) ([]Match, error)
	// ListByStatus returns matches across all leagues in status, oldest first.
	ListByStatus(ctx context.Context, status Status) ([]Match, error)
	Insert(ctx context.Context, item Match) (Match, error)
	Update(ctx context.Context, item Match) error
	DeleteByIDs(ctx context.Context, ids []int64) (int, error)
}
