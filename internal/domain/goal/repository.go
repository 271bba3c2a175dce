package goal

import "context"

type Repository interface {
	ListByMatch(ctx context.Context, matchID int64) ([]Goal, error)
	// ReplaceByMatch swaps the goal list of one match.
	ReplaceByMatch(ctx context.Context, matchID int64, goals []Goal) error
}
