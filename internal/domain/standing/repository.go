package standing

import "context"

type Repository interface {
	List(ctx context.Context, leagueID, seasonID int64) ([]Standing, error)
	// Replace deletes the table for (leagueID, seasonID) and inserts rows.
	Replace(ctx context.Context, leagueID, seasonID int64, rows []Standing) error
}
