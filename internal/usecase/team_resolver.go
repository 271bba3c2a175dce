package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/betstats/internal/catalog"
	"github.com/riskibarqy/betstats/internal/domain/team"
	"github.com/riskibarqy/betstats/internal/platform/textnorm"
)

// containmentMinLen keeps short names ("FC", "SC") out of substring matching.
const containmentMinLen = 3

type ResolveMethod string

const (
	ResolvedByExternalID  ResolveMethod = "external_id"
	ResolvedByExactName   ResolveMethod = "exact"
	ResolvedByAlias       ResolveMethod = "alias"
	ResolvedByContainment ResolveMethod = "containment"
	ResolvedByCreate      ResolveMethod = "created"
)

// AliasTable maps provider spellings to canonical team names.
type AliasTable interface {
	Lookup(league catalog.League, raw string) (string, bool)
}

// LeagueRef pairs the stored league row with its catalog entry.
type LeagueRef struct {
	ID      int64
	Catalog catalog.League
}

type TeamInput struct {
	Name       string
	ExternalID string
}

type ResolvePolicy struct {
	CreateIfMissing bool
}

type TeamResolution struct {
	Team   team.Team
	Method ResolveMethod
}

type TeamResolver struct {
	aliases AliasTable
}

func NewTeamResolver(aliases AliasTable) *TeamResolver {
	return &TeamResolver{aliases: aliases}
}

// Resolve maps one raw team name onto a team of the league.
func (r *TeamResolver) Resolve(ctx context.Context, repo team.Repository, league LeagueRef, input TeamInput, policy ResolvePolicy) (TeamResolution, error) {
	session, err := r.Begin(ctx, repo, league)
	if err != nil {
		return TeamResolution{}, err
	}
	return session.Resolve(ctx, input, policy)
}

// Begin loads the league's teams once so a batch of fixtures resolves
// without a query per name. Teams created by the session join its index.
func (r *TeamResolver) Begin(ctx context.Context, repo team.Repository, league LeagueRef) (*TeamSession, error) {
	if league.ID <= 0 {
		return nil, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	teams, err := repo.ListByLeague(ctx, league.ID)
	if err != nil {
		return nil, fmt.Errorf("list teams by league=%d: %w", league.ID, err)
	}
	return &TeamSession{
		repo:    repo,
		league:  league,
		aliases: r.aliases,
		teams:   teams,
	}, nil
}

type TeamSession struct {
	repo    team.Repository
	league  LeagueRef
	aliases AliasTable
	teams   []team.Team
}

func (s *TeamSession) Resolve(ctx context.Context, input TeamInput, policy ResolvePolicy) (TeamResolution, error) {
	raw := strings.TrimSpace(input.Name)
	if textnorm.Fold(raw) == "" {
		return TeamResolution{}, fmt.Errorf("%w: team name is required", ErrInvalidInput)
	}
	externalID := strings.TrimSpace(input.ExternalID)

	if externalID != "" {
		if idx := s.indexByExternalID(externalID); idx >= 0 {
			return TeamResolution{Team: s.teams[idx], Method: ResolvedByExternalID}, nil
		}
	}

	name := raw
	method := ResolvedByExactName
	idx := s.indexByName(raw)
	if idx < 0 && s.aliases != nil {
		if canonical, ok := s.aliases.Lookup(s.league.Catalog, raw); ok {
			name = canonical
			method = ResolvedByAlias
			idx = s.indexByName(canonical)
		}
	}
	if idx < 0 {
		if idx = s.indexByContainment(name); idx >= 0 {
			method = ResolvedByContainment
		}
	}

	if idx >= 0 {
		if err := s.attachExternalID(ctx, idx, externalID); err != nil {
			return TeamResolution{}, err
		}
		return TeamResolution{Team: s.teams[idx], Method: method}, nil
	}

	if !policy.CreateIfMissing || !s.league.Catalog.Allows(name) {
		return TeamResolution{}, fmt.Errorf("%w: %q in %s", ErrTeamNotFound, raw, s.league.Catalog.Key())
	}

	created, err := s.repo.Create(ctx, team.Team{
		LeagueID:   s.league.ID,
		Name:       name,
		ExternalID: externalID,
	})
	if err != nil {
		return TeamResolution{}, fmt.Errorf("create team %q: %w", name, err)
	}
	s.teams = append(s.teams, created)
	return TeamResolution{Team: created, Method: ResolvedByCreate}, nil
}

func (s *TeamSession) indexByExternalID(externalID string) int {
	for idx, item := range s.teams {
		if item.ExternalID == externalID {
			return idx
		}
	}
	return -1
}

func (s *TeamSession) indexByName(name string) int {
	key := textnorm.Fold(name)
	for idx, item := range s.teams {
		if textnorm.Fold(item.Name) == key {
			return idx
		}
	}
	return -1
}

// indexByContainment picks the longest stored name that contains or is
// contained in name, then the lowest id.
func (s *TeamSession) indexByContainment(name string) int {
	best := -1
	bestLen := 0
	for idx, item := range s.teams {
		if !textnorm.Contains(item.Name, name, containmentMinLen) {
			continue
		}
		length := len([]rune(textnorm.Fold(item.Name)))
		switch {
		case best < 0, length > bestLen:
			best, bestLen = idx, length
		case length == bestLen && item.ID < s.teams[best].ID:
			best = idx
		}
	}
	return best
}

func (s *TeamSession) attachExternalID(ctx context.Context, idx int, externalID string) error {
	if externalID == "" || s.teams[idx].ExternalID != "" {
		return nil
	}
	if err := s.repo.SetExternalID(ctx, s.teams[idx].ID, externalID); err != nil {
		return fmt.Errorf("set team external id team=%d: %w", s.teams[idx].ID, err)
	}
	s.teams[idx].ExternalID = externalID
	return nil
}
