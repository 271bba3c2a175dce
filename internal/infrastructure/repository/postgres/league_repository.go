package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/betstats/internal/domain/league"
	qb "github.com/riskibarqy/betstats/internal/platform/querybuilder"
)

type LeagueRepository struct {
	db sqlx.ExtContext
}

func NewLeagueRepository(db sqlx.ExtContext) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func (r *LeagueRepository) List(ctx context.Context) ([]league.League, error) {
	query, args, err := qb.Select("*").From("leagues").
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select leagues query: %w", err)
	}

	var rows []leagueTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select leagues: %w", err)
	}

	out := make([]league.League, 0, len(rows))
	for _, row := range rows {
		out = append(out, leagueFromRow(row))
	}
	return out, nil
}

func (r *LeagueRepository) GetByID(ctx context.Context, id int64) (league.League, bool, error) {
	query, args, err := qb.Select("*").From("leagues").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return league.League{}, false, fmt.Errorf("build get league by id query: %w", err)
	}
	return r.getOne(ctx, query, args)
}

func (r *LeagueRepository) GetByNameCountry(ctx context.Context, name, country string) (league.League, bool, error) {
	query, args, err := qb.Select("*").From("leagues").
		Where(
			qb.EqFold("name", name),
			qb.EqFold("country", country),
		).
		ToSQL()
	if err != nil {
		return league.League{}, false, fmt.Errorf("build get league by name query: %w", err)
	}
	return r.getOne(ctx, query, args)
}

func (r *LeagueRepository) Create(ctx context.Context, item league.League) (league.League, error) {
	query, args, err := qb.InsertModel("leagues", leagueInsertModel{
		Name:    strings.TrimSpace(item.Name),
		Country: strings.TrimSpace(item.Country),
	}, "RETURNING *")
	if err != nil {
		return league.League{}, fmt.Errorf("build insert league query: %w", err)
	}

	var row leagueTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		return league.League{}, fmt.Errorf("insert league %s/%s: %w", item.Name, item.Country, err)
	}
	return leagueFromRow(row), nil
}

func (r *LeagueRepository) getOne(ctx context.Context, query string, args []any) (league.League, bool, error) {
	var row leagueTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.League{}, false, nil
		}
		return league.League{}, false, fmt.Errorf("get league: %w", err)
	}
	return leagueFromRow(row), true, nil
}

func leagueFromRow(row leagueTableModel) league.League {
	return league.League{ID: row.ID, Name: row.Name, Country: row.Country}
}
