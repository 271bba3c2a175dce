package team

import "context"

// Repository describes team persistence needs from use cases.
type Repository interface {
	ListByLeague(ctx context.Context, leagueID int64) ([]Team, error)
	GetByID(ctx context.Context, id int64) (Team, bool, error)
	Create(ctx context.Context, item Team) (Team, error)
	SetExternalID(ctx context.Context, teamID int64, externalID string) error
}
