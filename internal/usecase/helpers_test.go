package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/betstats/internal/catalog"
	"github.com/riskibarqy/betstats/internal/domain/league"
	"github.com/riskibarqy/betstats/internal/domain/match"
	"github.com/riskibarqy/betstats/internal/domain/season"
	"github.com/riskibarqy/betstats/internal/domain/team"
	"github.com/riskibarqy/betstats/internal/infrastructure/repository/memory"
)

var testLeague = catalog.League{Name: "Premier League", Country: "England", Division: "E0"}

type fixtureWorld struct {
	store  *memory.Store
	league league.League
	season season.Season
	teams  map[string]team.Team
}

func newFixtureWorld(t *testing.T, teamNames ...string) *fixtureWorld {
	t.Helper()

	ctx := context.Background()
	st := memory.NewStore()
	l, err := st.Leagues().Create(ctx, league.League{Name: testLeague.Name, Country: testLeague.Country})
	if err != nil {
		t.Fatalf("create league: %v", err)
	}
	s, err := st.Seasons().GetOrCreate(ctx, 2025)
	if err != nil {
		t.Fatalf("create season: %v", err)
	}

	w := &fixtureWorld{store: st, league: l, season: s, teams: make(map[string]team.Team)}
	for _, name := range teamNames {
		created, err := st.Teams().Create(ctx, team.Team{LeagueID: l.ID, Name: name})
		if err != nil {
			t.Fatalf("create team %s: %v", name, err)
		}
		w.teams[name] = created
	}
	return w
}

func (w *fixtureWorld) ref() LeagueRef {
	return LeagueRef{ID: w.league.ID, Catalog: testLeague}
}

func (w *fixtureWorld) target(home, away string) MatchTarget {
	return MatchTarget{
		LeagueID:   w.league.ID,
		SeasonID:   w.season.ID,
		HomeTeamID: w.teams[home].ID,
		AwayTeamID: w.teams[away].ID,
	}
}

func (w *fixtureWorld) insert(t *testing.T, item match.Match) match.Match {
	t.Helper()
	if item.LeagueID == 0 {
		item.LeagueID = w.league.ID
	}
	if item.SeasonID == 0 {
		item.SeasonID = w.season.ID
	}
	if item.Status == "" {
		item.Status = match.StatusScheduled
	}
	created, err := w.store.Matches().Insert(context.Background(), item)
	if err != nil {
		t.Fatalf("insert match: %v", err)
	}
	return created
}

func (w *fixtureWorld) allMatches(t *testing.T) []match.Match {
	t.Helper()
	items, err := w.store.Matches().ListByLeague(context.Background(), w.league.ID, match.Query{})
	if err != nil {
		t.Fatalf("list matches: %v", err)
	}
	return items
}

func day(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

type staticAliases map[string]string

func (a staticAliases) Lookup(_ catalog.League, raw string) (string, bool) {
	to, ok := a[raw]
	return to, ok
}
