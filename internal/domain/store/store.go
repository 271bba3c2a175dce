package store

import (
	"context"

	"github.com/riskibarqy/betstats/internal/domain/goal"
	"github.com/riskibarqy/betstats/internal/domain/league"
	"github.com/riskibarqy/betstats/internal/domain/match"
	"github.com/riskibarqy/betstats/internal/domain/season"
	"github.com/riskibarqy/betstats/internal/domain/standing"
	"github.com/riskibarqy/betstats/internal/domain/team"
)

// Store groups the repositories that one batch writes together.
type Store interface {
	Leagues() league.Repository
	Seasons() season.Repository
	Teams() team.Repository
	Matches() match.Repository
	Goals() goal.Repository
	Standings() standing.Repository

	// WithinTx runs fn against a Store bound to one transaction. A non-nil
	// error from fn rolls back every write; calling WithinTx on the Store
	// handed to fn reuses the same transaction.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}
