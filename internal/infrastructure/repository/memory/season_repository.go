package memory

import (
	"context"

	"github.com/riskibarqy/betstats/internal/domain/season"
)

type SeasonRepository struct {
	db *database
}

func (r *SeasonRepository) GetByID(_ context.Context, id int64) (season.Season, bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, item := range r.db.st.seasons {
		if item.ID == id {
			return item, true, nil
		}
	}
	return season.Season{}, false, nil
}

func (r *SeasonRepository) GetByYear(_ context.Context, year int) (season.Season, bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, item := range r.db.st.seasons {
		if item.Year == year {
			return item, true, nil
		}
	}
	return season.Season{}, false, nil
}

func (r *SeasonRepository) GetOrCreate(_ context.Context, year int) (season.Season, error) {
	item := season.Season{Year: year}
	if err := item.Validate(); err != nil {
		return season.Season{}, err
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, existing := range r.db.st.seasons {
		if existing.Year == year {
			return existing, nil
		}
	}
	r.db.st.seasonSeq++
	item.ID = r.db.st.seasonSeq
	r.db.st.seasons = append(r.db.st.seasons, item)
	return item, nil
}
