package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/betstats/internal/domain/match"
)

type MatchRepository struct {
	db *database
}

func (r *MatchRepository) GetByID(_ context.Context, id int64) (match.Match, bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	item, ok := r.db.st.matches[id]
	return item, ok, nil
}

func (r *MatchRepository) GetByExternalID(_ context.Context, externalID string) (match.Match, bool, error) {
	if externalID == "" {
		return match.Match{}, false, nil
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, item := range r.sortedLocked() {
		if item.ExternalID == externalID {
			return item, true, nil
		}
	}
	return match.Match{}, false, nil
}

func (r *MatchRepository) FindByTeams(_ context.Context, leagueID, homeTeamID, awayTeamID int64, from, to time.Time) ([]match.Match, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := make([]match.Match, 0)
	for _, item := range r.sortedLocked() {
		if item.LeagueID != leagueID || item.HomeTeamID != homeTeamID || item.AwayTeamID != awayTeamID {
			continue
		}
		if inRange(item.Date, from, to) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *MatchRepository) ListByLeague(_ context.Context, leagueID int64, query match.Query) ([]match.Match, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	statuses := make(map[match.Status]struct{}, len(query.Statuses))
	for _, status := range query.Statuses {
		statuses[status] = struct{}{}
	}

	out := make([]match.Match, 0)
	for _, item := range r.sortedLocked() {
		if item.LeagueID != leagueID {
			continue
		}
		if query.SeasonID > 0 && item.SeasonID != query.SeasonID {
			continue
		}
		if len(statuses) > 0 {
			if _, ok := statuses[item.Status]; !ok {
				continue
			}
		}
		if !query.From.IsZero() && item.Date.Before(query.From) {
			continue
		}
		if !query.To.IsZero() && !item.Date.Before(query.To) {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *MatchRepository) ListBetween(_ context.Context, from, to time.Time) ([]match.Match, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := make([]match.Match, 0)
	for _, item := range r.sortedLocked() {
		if inRange(item.Date, from, to) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *MatchRepository) ListByStatus(_ context.Context, status match.Status) ([]match.Match, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := make([]match.Match, 0)
	for _, item := range r.sortedLocked() {
		if item.Status == status {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *MatchRepository) Insert(_ context.Context, item match.Match) (match.Match, error) {
	if err := item.Validate(); err != nil {
		return match.Match{}, err
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if err := r.checkExternalIDLocked(item); err != nil {
		return match.Match{}, err
	}
	r.db.st.matchSeq++
	item.ID = r.db.st.matchSeq
	item.Date = item.Date.UTC()
	item.UpdatedAt = r.db.now().UTC()
	r.db.st.matches[item.ID] = item
	return item, nil
}

func (r *MatchRepository) Update(_ context.Context, item match.Match) error {
	if err := item.Validate(); err != nil {
		return err
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.st.matches[item.ID]; !ok {
		return fmt.Errorf("match %d not found", item.ID)
	}
	if err := r.checkExternalIDLocked(item); err != nil {
		return err
	}
	item.Date = item.Date.UTC()
	item.UpdatedAt = r.db.now().UTC()
	r.db.st.matches[item.ID] = item
	return nil
}

func (r *MatchRepository) DeleteByIDs(_ context.Context, ids []int64) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	deleted := 0
	for _, id := range ids {
		if _, ok := r.db.st.matches[id]; !ok {
			continue
		}
		delete(r.db.st.matches, id)
		delete(r.db.st.goals, id)
		deleted++
	}
	return deleted, nil
}

func (r *MatchRepository) checkExternalIDLocked(item match.Match) error {
	if item.ExternalID == "" {
		return nil
	}
	for id, existing := range r.db.st.matches {
		if id != item.ID && existing.ExternalID == item.ExternalID {
			return fmt.Errorf("%w: external id %s already used by match %d", ErrConstraint, item.ExternalID, id)
		}
	}
	return nil
}

func (r *MatchRepository) sortedLocked() []match.Match {
	out := make([]match.Match, 0, len(r.db.st.matches))
	for _, item := range r.db.st.matches {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}
