package memory

import (
	"context"
	"fmt"

	"github.com/riskibarqy/betstats/internal/domain/league"
	"github.com/riskibarqy/betstats/internal/platform/textnorm"
)

type LeagueRepository struct {
	db *database
}

func (r *LeagueRepository) List(_ context.Context) ([]league.League, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	return append([]league.League(nil), r.db.st.leagues...), nil
}

func (r *LeagueRepository) GetByID(_ context.Context, id int64) (league.League, bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, item := range r.db.st.leagues {
		if item.ID == id {
			return item, true, nil
		}
	}
	return league.League{}, false, nil
}

func (r *LeagueRepository) GetByNameCountry(_ context.Context, name, country string) (league.League, bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, item := range r.db.st.leagues {
		if textnorm.Equal(item.Name, name) && textnorm.Equal(item.Country, country) {
			return item, true, nil
		}
	}
	return league.League{}, false, nil
}

func (r *LeagueRepository) Create(_ context.Context, item league.League) (league.League, error) {
	if err := item.Validate(); err != nil {
		return league.League{}, err
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, existing := range r.db.st.leagues {
		if textnorm.Equal(existing.Name, item.Name) && textnorm.Equal(existing.Country, item.Country) {
			return league.League{}, fmt.Errorf("%w: league %s already exists", ErrConstraint, item)
		}
	}
	r.db.st.leagueSeq++
	item.ID = r.db.st.leagueSeq
	r.db.st.leagues = append(r.db.st.leagues, item)
	return item, nil
}
