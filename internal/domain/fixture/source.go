package fixture

import (
	"context"
	"time"

	"github.com/riskibarqy/betstats/internal/catalog"
)

// Source is one upstream provider of fixtures.
type Source interface {
	Name() string
	// Paid sources spend a metered API budget and are gated in dev.
	Paid() bool
	// CreatesTeams reports whether unknown team names from this source may
	// create teams. Discovery feeds with loose naming return false.
	CreatesTeams() bool
	Supports(league catalog.League) bool
}

// SeasonFetcher lists every fixture of one league season.
type SeasonFetcher interface {
	Source
	FetchSeason(ctx context.Context, league catalog.League, seasonYear int) ([]Fixture, error)
}

// RangeFetcher lists one league's fixtures with kickoff in [from, to).
type RangeFetcher interface {
	Source
	FetchRange(ctx context.Context, league catalog.League, from, to time.Time) ([]Fixture, error)
}

// LiveFetcher lists in-play fixtures across every competition the provider
// covers. LeagueName and Country identify the competition.
type LiveFetcher interface {
	Source
	FetchLive(ctx context.Context) ([]Fixture, error)
}

// GoalFetcher loads scoring events of one finished fixture by its
// namespaced external id.
type GoalFetcher interface {
	FetchGoals(ctx context.Context, externalID string) ([]Goal, error)
}
