package usecase

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/betstats/internal/catalog"
	"github.com/riskibarqy/betstats/internal/domain/league"
	"github.com/riskibarqy/betstats/internal/domain/season"
	"github.com/riskibarqy/betstats/internal/domain/store"
)

// LeagueService keeps the stored league rows aligned with the catalog.
type LeagueService struct {
	store   store.Store
	catalog *catalog.Catalog
}

func NewLeagueService(st store.Store, cat *catalog.Catalog) *LeagueService {
	return &LeagueService{store: st, catalog: cat}
}

type CatalogSyncResult struct {
	Existing []league.League
	Created  []league.League
}

// SyncCatalog creates a row for every catalog league that has none.
func (s *LeagueService) SyncCatalog(ctx context.Context, execute bool) (CatalogSyncResult, error) {
	ctx, span := startSpan(ctx, "usecase.LeagueService.SyncCatalog", attribute.Bool("execute", execute))
	defer span.End()

	var result CatalogSyncResult
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		for _, item := range s.catalog.Leagues() {
			row, created, err := ensureLeague(ctx, tx.Leagues(), item)
			if err != nil {
				return err
			}
			if created {
				result.Created = append(result.Created, row)
			} else {
				result.Existing = append(result.Existing, row)
			}
		}
		if !execute {
			return errDryRun
		}
		return nil
	})
	if err != nil && !isDryRun(err) {
		return CatalogSyncResult{}, err
	}
	return result, nil
}

// Find returns the stored row of a catalog league.
func (s *LeagueService) Find(ctx context.Context, item catalog.League) (LeagueRef, error) {
	row, exists, err := s.store.Leagues().GetByNameCountry(ctx, item.Name, item.Country)
	if err != nil {
		return LeagueRef{}, fmt.Errorf("get league %s: %w", item.Key(), err)
	}
	if !exists {
		return LeagueRef{}, fmt.Errorf("%w: league %s has no stored row", ErrNotFound, item.Key())
	}
	return LeagueRef{ID: row.ID, Catalog: item}, nil
}

// Season returns the stored season for an ending year.
func (s *LeagueService) Season(ctx context.Context, year int) (season.Season, error) {
	if err := (season.Season{Year: year}).Validate(); err != nil {
		return season.Season{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	item, exists, err := s.store.Seasons().GetByYear(ctx, year)
	if err != nil {
		return season.Season{}, fmt.Errorf("get season year=%d: %w", year, err)
	}
	if !exists {
		return season.Season{}, fmt.Errorf("%w: season %d", ErrNotFound, year)
	}
	return item, nil
}

func ensureLeague(ctx context.Context, repo league.Repository, item catalog.League) (league.League, bool, error) {
	row, exists, err := repo.GetByNameCountry(ctx, item.Name, item.Country)
	if err != nil {
		return league.League{}, false, fmt.Errorf("get league %s: %w", item.Key(), err)
	}
	if exists {
		return row, false, nil
	}

	row = league.League{Name: item.Name, Country: item.Country}
	if err := row.Validate(); err != nil {
		return league.League{}, false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	row, err = repo.Create(ctx, row)
	if err != nil {
		return league.League{}, false, fmt.Errorf("create league %s: %w", item.Key(), err)
	}
	return row, true, nil
}
