package memory

import (
	"context"
	"fmt"

	"github.com/riskibarqy/betstats/internal/domain/goal"
)

type GoalRepository struct {
	db *database
}

func (r *GoalRepository) ListByMatch(_ context.Context, matchID int64) ([]goal.Goal, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	return append([]goal.Goal(nil), r.db.st.goals[matchID]...), nil
}

func (r *GoalRepository) ReplaceByMatch(_ context.Context, matchID int64, goals []goal.Goal) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.st.matches[matchID]; !ok {
		return fmt.Errorf("match %d not found", matchID)
	}
	rows := make([]goal.Goal, 0, len(goals))
	for _, item := range goals {
		item.MatchID = matchID
		if err := item.Validate(); err != nil {
			return err
		}
		r.db.st.goalSeq++
		item.ID = r.db.st.goalSeq
		rows = append(rows, item)
	}
	r.db.st.goals[matchID] = rows
	return nil
}
