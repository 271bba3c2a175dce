package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/betstats/internal/domain/standing"
	qb "github.com/riskibarqy/betstats/internal/platform/querybuilder"
)

var standingColumns = []string{
	"league_id",
	"season_id",
	"team_id",
	"team_name",
	"position",
	"played",
	"won",
	"drawn",
	"lost",
	"goals_for",
	"goals_against",
	"points",
	"updated_at",
}

type StandingRepository struct {
	db sqlx.ExtContext
}

func NewStandingRepository(db sqlx.ExtContext) *StandingRepository {
	return &StandingRepository{db: db}
}

func (r *StandingRepository) List(ctx context.Context, leagueID, seasonID int64) ([]standing.Standing, error) {
	query, args, err := qb.Select(standingColumns...).From("standings").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("season_id", seasonID),
		).
		OrderBy("position", "team_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list standings query: %w", err)
	}

	var rows []standingTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list standings league=%d season=%d: %w", leagueID, seasonID, err)
	}

	out := make([]standing.Standing, 0, len(rows))
	for _, row := range rows {
		out = append(out, standing.Standing{
			LeagueID:     row.LeagueID,
			SeasonID:     row.SeasonID,
			TeamID:       row.TeamID,
			TeamName:     row.TeamName,
			Position:     row.Position,
			Played:       row.Played,
			Won:          row.Won,
			Drawn:        row.Drawn,
			Lost:         row.Lost,
			GoalsFor:     row.GoalsFor,
			GoalsAgainst: row.GoalsAgainst,
			Points:       row.Points,
		})
	}
	return out, nil
}

func (r *StandingRepository) Replace(ctx context.Context, leagueID, seasonID int64, rows []standing.Standing) error {
	clearQuery, clearArgs, err := qb.DeleteFrom("standings").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("season_id", seasonID),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build clear standings query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, clearQuery, clearArgs...); err != nil {
		return fmt.Errorf("clear standings league=%d season=%d: %w", leagueID, seasonID, err)
	}
	if len(rows) == 0 {
		return nil
	}

	insert := qb.InsertInto("standings").Columns(standingColumns[:len(standingColumns)-1]...)
	for _, item := range rows {
		insert.Values(
			leagueID,
			seasonID,
			item.TeamID,
			item.TeamName,
			item.Position,
			item.Played,
			item.Won,
			item.Drawn,
			item.Lost,
			item.GoalsFor,
			item.GoalsAgainst,
			item.Points,
		)
	}
	query, args, err := insert.ToSQL()
	if err != nil {
		return fmt.Errorf("build insert standings query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert standings league=%d season=%d: %w", leagueID, seasonID, err)
	}
	return nil
}
