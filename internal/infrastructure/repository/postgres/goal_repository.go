package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/betstats/internal/domain/goal"
	qb "github.com/riskibarqy/betstats/internal/platform/querybuilder"
)

type GoalRepository struct {
	db sqlx.ExtContext
}

func NewGoalRepository(db sqlx.ExtContext) *GoalRepository {
	return &GoalRepository{db: db}
}

func (r *GoalRepository) ListByMatch(ctx context.Context, matchID int64) ([]goal.Goal, error) {
	query, args, err := qb.Select("*").From("goals").
		Where(qb.Eq("match_id", matchID)).
		OrderBy("minute", "extra_minute NULLS FIRST", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select goals query: %w", err)
	}

	var rows []goalTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select goals match=%d: %w", matchID, err)
	}

	out := make([]goal.Goal, 0, len(rows))
	for _, row := range rows {
		out = append(out, goal.Goal{
			ID:          row.ID,
			MatchID:     row.MatchID,
			TeamID:      row.TeamID,
			Minute:      row.Minute,
			ExtraMinute: row.ExtraMinute,
			Scorer:      row.Scorer,
			OwnGoal:     row.OwnGoal,
			Penalty:     row.Penalty,
		})
	}
	return out, nil
}

// ReplaceByMatch runs inside the caller's transaction when the repository is
// bound to one.
func (r *GoalRepository) ReplaceByMatch(ctx context.Context, matchID int64, goals []goal.Goal) error {
	clearQuery, clearArgs, err := qb.DeleteFrom("goals").
		Where(qb.Eq("match_id", matchID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build clear goals query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, clearQuery, clearArgs...); err != nil {
		return fmt.Errorf("clear goals match=%d: %w", matchID, err)
	}
	if len(goals) == 0 {
		return nil
	}

	insert := qb.InsertInto("goals").
		Columns("match_id", "team_id", "minute", "extra_minute", "scorer", "own_goal", "penalty")
	for _, item := range goals {
		item.MatchID = matchID
		if err := item.Validate(); err != nil {
			return err
		}
		insert.Values(matchID, item.TeamID, item.Minute, item.ExtraMinute, strings.TrimSpace(item.Scorer), item.OwnGoal, item.Penalty)
	}
	query, args, err := insert.ToSQL()
	if err != nil {
		return fmt.Errorf("build insert goals query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert goals match=%d: %w", matchID, err)
	}
	return nil
}
