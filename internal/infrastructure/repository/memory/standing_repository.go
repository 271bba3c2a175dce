package memory

import (
	"context"

	"github.com/riskibarqy/betstats/internal/domain/standing"
)

type StandingRepository struct {
	db *database
}

func (r *StandingRepository) List(_ context.Context, leagueID, seasonID int64) ([]standing.Standing, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	return append([]standing.Standing(nil), r.db.st.standings[standingKey{leagueID, seasonID}]...), nil
}

func (r *StandingRepository) Replace(_ context.Context, leagueID, seasonID int64, rows []standing.Standing) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	key := standingKey{leagueID, seasonID}
	if len(rows) == 0 {
		delete(r.db.st.standings, key)
		return nil
	}
	r.db.st.standings[key] = append([]standing.Standing(nil), rows...)
	return nil
}
