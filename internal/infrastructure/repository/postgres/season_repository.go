package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/betstats/internal/domain/season"
	qb "github.com/riskibarqy/betstats/internal/platform/querybuilder"
)

type SeasonRepository struct {
	db sqlx.ExtContext
}

func NewSeasonRepository(db sqlx.ExtContext) *SeasonRepository {
	return &SeasonRepository{db: db}
}

func (r *SeasonRepository) GetByID(ctx context.Context, id int64) (season.Season, bool, error) {
	query, args, err := qb.Select("*").From("seasons").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return season.Season{}, false, fmt.Errorf("build get season by id query: %w", err)
	}
	return r.getOne(ctx, query, args)
}

func (r *SeasonRepository) GetByYear(ctx context.Context, year int) (season.Season, bool, error) {
	query, args, err := qb.Select("*").From("seasons").
		Where(qb.Eq("year", year)).
		ToSQL()
	if err != nil {
		return season.Season{}, false, fmt.Errorf("build get season by year query: %w", err)
	}
	return r.getOne(ctx, query, args)
}

// GetOrCreate relies on the unique year index; the no-op update makes
// RETURNING yield the existing row on conflict.
func (r *SeasonRepository) GetOrCreate(ctx context.Context, year int) (season.Season, error) {
	if err := (season.Season{Year: year}).Validate(); err != nil {
		return season.Season{}, err
	}

	query, args, err := qb.InsertInto("seasons").
		Columns("year").
		Values(year).
		Suffix("ON CONFLICT (year) DO UPDATE SET year = EXCLUDED.year RETURNING *").
		ToSQL()
	if err != nil {
		return season.Season{}, fmt.Errorf("build upsert season query: %w", err)
	}

	var row seasonTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		return season.Season{}, fmt.Errorf("upsert season year=%d: %w", year, err)
	}
	return season.Season{ID: row.ID, Year: row.Year}, nil
}

func (r *SeasonRepository) getOne(ctx context.Context, query string, args []any) (season.Season, bool, error) {
	var row seasonTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return season.Season{}, false, nil
		}
		return season.Season{}, false, fmt.Errorf("get season: %w", err)
	}
	return season.Season{ID: row.ID, Year: row.Year}, true, nil
}
