package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/betstats/internal/domain/team"
	"github.com/riskibarqy/betstats/internal/platform/textnorm"
)

type TeamRepository struct {
	db *database
}

func (r *TeamRepository) ListByLeague(_ context.Context, leagueID int64) ([]team.Team, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := make([]team.Team, 0)
	for _, item := range r.db.st.teams {
		if item.LeagueID == leagueID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *TeamRepository) GetByID(_ context.Context, id int64) (team.Team, bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, item := range r.db.st.teams {
		if item.ID == id {
			return item, true, nil
		}
	}
	return team.Team{}, false, nil
}

func (r *TeamRepository) Create(_ context.Context, item team.Team) (team.Team, error) {
	if err := item.Validate(); err != nil {
		return team.Team{}, err
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, existing := range r.db.st.teams {
		if existing.LeagueID == item.LeagueID && textnorm.Equal(existing.Name, item.Name) {
			return team.Team{}, fmt.Errorf("%w: team %q already exists in league %d", ErrConstraint, item.Name, item.LeagueID)
		}
	}
	r.db.st.teamSeq++
	item.ID = r.db.st.teamSeq
	r.db.st.teams = append(r.db.st.teams, item)
	return item, nil
}

func (r *TeamRepository) SetExternalID(_ context.Context, teamID int64, externalID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for idx := range r.db.st.teams {
		if r.db.st.teams[idx].ID == teamID {
			r.db.st.teams[idx].ExternalID = externalID
			return nil
		}
	}
	return fmt.Errorf("team %d not found", teamID)
}
