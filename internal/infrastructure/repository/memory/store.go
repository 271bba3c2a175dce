// Package memory is an in-process Store used by tests and dry local runs.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/riskibarqy/betstats/internal/domain/goal"
	"github.com/riskibarqy/betstats/internal/domain/league"
	"github.com/riskibarqy/betstats/internal/domain/match"
	"github.com/riskibarqy/betstats/internal/domain/season"
	"github.com/riskibarqy/betstats/internal/domain/standing"
	"github.com/riskibarqy/betstats/internal/domain/store"
	"github.com/riskibarqy/betstats/internal/domain/team"
)

var ErrConstraint = errors.New("constraint violation")

type standingKey struct {
	leagueID int64
	seasonID int64
}

type state struct {
	leagues   []league.League
	seasons   []season.Season
	teams     []team.Team
	matches   map[int64]match.Match
	goals     map[int64][]goal.Goal
	standings map[standingKey][]standing.Standing

	leagueSeq int64
	seasonSeq int64
	teamSeq   int64
	matchSeq  int64
	goalSeq   int64
}

func newState() *state {
	return &state{
		matches:   make(map[int64]match.Match),
		goals:     make(map[int64][]goal.Goal),
		standings: make(map[standingKey][]standing.Standing),
	}
}

func (s *state) clone() *state {
	out := *s
	out.leagues = append([]league.League(nil), s.leagues...)
	out.seasons = append([]season.Season(nil), s.seasons...)
	out.teams = append([]team.Team(nil), s.teams...)
	out.matches = make(map[int64]match.Match, len(s.matches))
	for id, item := range s.matches {
		out.matches[id] = item
	}
	out.goals = make(map[int64][]goal.Goal, len(s.goals))
	for id, items := range s.goals {
		out.goals[id] = append([]goal.Goal(nil), items...)
	}
	out.standings = make(map[standingKey][]standing.Standing, len(s.standings))
	for key, rows := range s.standings {
		out.standings[key] = append([]standing.Standing(nil), rows...)
	}
	return &out
}

type database struct {
	mu   sync.Mutex
	txMu sync.Mutex
	st   *state
	now  func() time.Time
}

// Store keeps every table in memory. Transactions are serialized and roll
// back by restoring a snapshot.
type Store struct {
	db   *database
	inTx bool
}

func NewStore() *Store {
	return &Store{db: &database{st: newState(), now: time.Now}}
}

// WithClock sets the clock used for updated_at stamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	if now != nil {
		s.db.now = now
	}
	return s
}

func (s *Store) Leagues() league.Repository     { return &LeagueRepository{db: s.db} }
func (s *Store) Seasons() season.Repository     { return &SeasonRepository{db: s.db} }
func (s *Store) Teams() team.Repository         { return &TeamRepository{db: s.db} }
func (s *Store) Matches() match.Repository      { return &MatchRepository{db: s.db} }
func (s *Store) Goals() goal.Repository         { return &GoalRepository{db: s.db} }
func (s *Store) Standings() standing.Repository { return &StandingRepository{db: s.db} }

func (s *Store) WithinTx(ctx context.Context, fn func(tx store.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.db.txMu.Lock()
	defer s.db.txMu.Unlock()

	s.db.mu.Lock()
	snapshot := s.db.st.clone()
	s.db.mu.Unlock()

	if err := fn(&Store{db: s.db, inTx: true}); err != nil {
		s.db.mu.Lock()
		s.db.st = snapshot
		s.db.mu.Unlock()
		return err
	}
	return nil
}
