package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/betstats/internal/domain/match"
	qb "github.com/riskibarqy/betstats/internal/platform/querybuilder"
)

type MatchRepository struct {
	db sqlx.ExtContext
}

func NewMatchRepository(db sqlx.ExtContext) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) GetByID(ctx context.Context, id int64) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build get match by id query: %w", err)
	}
	return r.getOne(ctx, query, args)
}

func (r *MatchRepository) GetByExternalID(ctx context.Context, externalID string) (match.Match, bool, error) {
	if externalID == "" {
		return match.Match{}, false, nil
	}
	query, args, err := qb.Select("*").From("matches").
		Where(qb.Eq("external_id", externalID)).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build get match by external id query: %w", err)
	}
	return r.getOne(ctx, query, args)
}

func (r *MatchRepository) FindByTeams(ctx context.Context, leagueID, homeTeamID, awayTeamID int64, from, to time.Time) ([]match.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("home_team_id", homeTeamID),
			qb.Eq("away_team_id", awayTeamID),
			qb.Range("kickoff_at", from.UTC(), to.UTC()),
		).
		OrderBy("kickoff_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build find matches by teams query: %w", err)
	}
	return r.selectMany(ctx, query, args)
}

func (r *MatchRepository) ListByLeague(ctx context.Context, leagueID int64, q match.Query) ([]match.Match, error) {
	conditions := []qb.Condition{qb.Eq("league_id", leagueID)}
	if q.SeasonID > 0 {
		conditions = append(conditions, qb.Eq("season_id", q.SeasonID))
	}
	if !q.From.IsZero() {
		conditions = append(conditions, qb.Expr("kickoff_at >= ?", q.From.UTC()))
	}
	if !q.To.IsZero() {
		conditions = append(conditions, qb.Expr("kickoff_at < ?", q.To.UTC()))
	}
	if len(q.Statuses) > 0 {
		conditions = append(conditions, qb.In("status", statusesToAny(q.Statuses)))
	}

	query, args, err := qb.Select("*").From("matches").
		Where(conditions...).
		OrderBy("kickoff_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches by league query: %w", err)
	}
	return r.selectMany(ctx, query, args)
}

func (r *MatchRepository) ListBetween(ctx context.Context, from, to time.Time) ([]match.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(qb.Range("kickoff_at", from.UTC(), to.UTC())).
		OrderBy("kickoff_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches between query: %w", err)
	}
	return r.selectMany(ctx, query, args)
}

func (r *MatchRepository) ListByStatus(ctx context.Context, status match.Status) ([]match.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(qb.Eq("status", string(status))).
		OrderBy("kickoff_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches by status query: %w", err)
	}
	return r.selectMany(ctx, query, args)
}

func (r *MatchRepository) Insert(ctx context.Context, item match.Match) (match.Match, error) {
	if err := item.Validate(); err != nil {
		return match.Match{}, err
	}

	query, args, err := qb.InsertModel("matches", matchInsertModel{
		LeagueID:      item.LeagueID,
		SeasonID:      item.SeasonID,
		HomeTeamID:    item.HomeTeamID,
		AwayTeamID:    item.AwayTeamID,
		KickoffAt:     item.Date.UTC(),
		Status:        string(item.Status),
		HomeScore:     item.HomeScore,
		AwayScore:     item.AwayScore,
		HalfHomeScore: item.HalfHomeScore,
		HalfAwayScore: item.HalfAwayScore,
		ExternalID:    nullString(item.ExternalID),
	}, "RETURNING *")
	if err != nil {
		return match.Match{}, fmt.Errorf("build insert match query: %w", err)
	}

	var row matchTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isUniqueViolation(err) {
			return match.Match{}, fmt.Errorf("match external id %s already stored: %w", item.ExternalID, err)
		}
		return match.Match{}, fmt.Errorf("insert match: %w", err)
	}
	return matchFromRow(row), nil
}

func (r *MatchRepository) Update(ctx context.Context, item match.Match) error {
	if err := item.Validate(); err != nil {
		return err
	}

	query, args, err := qb.Update("matches").
		Set("season_id", item.SeasonID).
		Set("kickoff_at", item.Date.UTC()).
		Set("status", string(item.Status)).
		Set("home_score", item.HomeScore).
		Set("away_score", item.AwayScore).
		Set("half_home_score", item.HalfHomeScore).
		Set("half_away_score", item.HalfAwayScore).
		Set("external_id", nullString(item.ExternalID)).
		SetNow("updated_at").
		Where(qb.Eq("id", item.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update match query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update match id=%d: %w", item.ID, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update match id=%d: no row", item.ID)
	}
	return nil
}

// DeleteByIDs removes matches; goals cascade through the foreign key.
func (r *MatchRepository) DeleteByIDs(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := qb.DeleteFrom("matches").
		Where(qb.In("id", int64sToAny(ids))).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build delete matches query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete matches: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete matches rows affected: %w", err)
	}
	return int(affected), nil
}

func (r *MatchRepository) getOne(ctx context.Context, query string, args []any) (match.Match, bool, error) {
	var row matchTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match: %w", err)
	}
	return matchFromRow(row), true, nil
}

func (r *MatchRepository) selectMany(ctx context.Context, query string, args []any) ([]match.Match, error) {
	var rows []matchTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select matches: %w", err)
	}
	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchFromRow(row))
	}
	return out, nil
}

func matchFromRow(row matchTableModel) match.Match {
	return match.Match{
		ID:            row.ID,
		LeagueID:      row.LeagueID,
		SeasonID:      row.SeasonID,
		HomeTeamID:    row.HomeTeamID,
		AwayTeamID:    row.AwayTeamID,
		Date:          row.KickoffAt.UTC(),
		Status:        match.Status(row.Status),
		HomeScore:     row.HomeScore,
		AwayScore:     row.AwayScore,
		HalfHomeScore: row.HalfHomeScore,
		HalfAwayScore: row.HalfAwayScore,
		ExternalID:    row.ExternalID.String,
		UpdatedAt:     row.UpdatedAt,
	}
}
