package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/betstats/internal/domain/goal"
	"github.com/riskibarqy/betstats/internal/domain/league"
	"github.com/riskibarqy/betstats/internal/domain/match"
	"github.com/riskibarqy/betstats/internal/domain/season"
	"github.com/riskibarqy/betstats/internal/domain/standing"
	"github.com/riskibarqy/betstats/internal/domain/store"
	"github.com/riskibarqy/betstats/internal/domain/team"
)

// Store hands out repositories bound either to the pool or to one open
// transaction.
type Store struct {
	db *sqlx.DB
	tx *sqlx.Tx
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) conn() sqlx.ExtContext {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

func (s *Store) Leagues() league.Repository     { return &LeagueRepository{db: s.conn()} }
func (s *Store) Seasons() season.Repository     { return &SeasonRepository{db: s.conn()} }
func (s *Store) Teams() team.Repository         { return &TeamRepository{db: s.conn()} }
func (s *Store) Matches() match.Repository      { return &MatchRepository{db: s.conn()} }
func (s *Store) Goals() goal.Repository         { return &GoalRepository{db: s.conn()} }
func (s *Store) Standings() standing.Repository { return &StandingRepository{db: s.conn()} }

func (s *Store) WithinTx(ctx context.Context, fn func(tx store.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(&Store{db: s.db, tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
