package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/betstats/internal/catalog"
	"github.com/riskibarqy/betstats/internal/domain/fixture"
	"github.com/riskibarqy/betstats/internal/domain/match"
	"github.com/riskibarqy/betstats/internal/domain/team"
	"github.com/riskibarqy/betstats/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/betstats/internal/platform/id"
	fixturemock "github.com/riskibarqy/betstats/internal/mocks/domain/fixture"
)

type stubSource struct {
	name     string
	paid     bool
	creates  bool
	fixtures []fixture.Fixture
	live     []fixture.Fixture
	goals    map[string][]fixture.Goal
	err      error

	mu    sync.Mutex
	calls int
}

func (s *stubSource) Name() string                  { return s.name }
func (s *stubSource) Paid() bool                    { return s.paid }
func (s *stubSource) CreatesTeams() bool            { return s.creates }
func (s *stubSource) Supports(_ catalog.League) bool { return true }

func (s *stubSource) FetchSeason(_ context.Context, _ catalog.League, _ int) ([]fixture.Fixture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.fixtures, s.err
}

func (s *stubSource) FetchRange(_ context.Context, _ catalog.League, _, _ time.Time) ([]fixture.Fixture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.fixtures, s.err
}

func (s *stubSource) FetchLive(_ context.Context) ([]fixture.Fixture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.live, s.err
}

func (s *stubSource) FetchGoals(_ context.Context, externalID string) ([]fixture.Goal, error) {
	return s.goals[externalID], nil
}

func (s *stubSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func mustCatalog(t *testing.T, leagues ...catalog.League) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(leagues)
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	return cat
}

func newIngestion(st *memory.Store, cat *catalog.Catalog, cfg IngestionConfig, chains map[IngestMode]SourceChain) *IngestionService {
	return NewIngestionService(st, cat, NewTeamResolver(nil), NewFixtureReconciler(24*time.Hour), chains, id.Static("run-1"), cfg, nil)
}

func finishedFixture(externalID, home, away string, kickoff time.Time, homeGoals, awayGoals int) fixture.Fixture {
	return fixture.Fixture{
		Source:          fixture.SourceFootballData,
		ExternalID:      externalID,
		Date:            kickoff,
		Status:          match.StatusFinished,
		HomeTeam:        home,
		AwayTeam:        away,
		HomeScore:       match.IntPtr(homeGoals),
		AwayScore:       match.IntPtr(awayGoals),
		ReliableKickoff: true,
	}
}

func TestIngestionService_SeasonExecuteIsIdempotent(t *testing.T) {
	t.Parallel()

	st := memory.NewStore()
	cat := mustCatalog(t, testLeague)
	source := &stubSource{name: "primary", creates: true, fixtures: []fixture.Fixture{
		finishedFixture("fd:1", "Arsenal", "Chelsea", day(2025, time.March, 1, 15, 0), 2, 0),
		finishedFixture("fd:2", "Chelsea", "Fulham", day(2025, time.March, 8, 15, 0), 1, 1),
		{Source: fixture.SourceFootballData, ExternalID: "fd:3", Date: day(2025, time.March, 15, 15, 0), Status: match.StatusScheduled, HomeTeam: "Fulham", AwayTeam: "Arsenal", ReliableKickoff: true},
		{Source: fixture.SourceFootballData, ExternalID: "fd:4", Status: match.StatusScheduled, HomeTeam: "Fulham", AwayTeam: "Chelsea"},
	}}
	svc := newIngestion(st, cat, IngestionConfig{}, map[IngestMode]SourceChain{
		ModeSeason: NewSourceChain(nil, source),
	})
	ctx := context.Background()
	input := IngestInput{Mode: ModeSeason, SeasonYear: 2025, Execute: true}

	first, err := svc.Ingest(ctx, input)
	require.NoError(t, err)
	require.Len(t, first.Leagues, 1)
	out := first.Leagues[0]
	assert.Equal(t, "run-1", first.RunID)
	assert.Equal(t, 4, out.Fetched)
	assert.Equal(t, 3, out.Inserted)
	assert.Equal(t, 1, out.Invalid)
	require.Len(t, out.Standings, 1)

	rows, err := st.Standings().List(ctx, out.Standings[0].LeagueID, out.Standings[0].SeasonID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Arsenal", rows[0].TeamName)
	assert.Equal(t, 3, rows[0].Points)

	second, err := svc.Ingest(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Leagues[0].Inserted)
	assert.Equal(t, 0, second.Leagues[0].Updated)
	assert.Equal(t, 3, second.Leagues[0].Unchanged)
	assert.Empty(t, second.Leagues[0].Standings)

	matches, err := st.Matches().ListByLeague(ctx, out.Standings[0].LeagueID, match.Query{})
	require.NoError(t, err)
	assert.Len(t, matches, 3)
}

func TestIngestionService_DryRunLeavesStoreUntouched(t *testing.T) {
	t.Parallel()

	st := memory.NewStore()
	cat := mustCatalog(t, testLeague)
	source := &stubSource{name: "primary", creates: true, fixtures: []fixture.Fixture{
		finishedFixture("fd:1", "Arsenal", "Chelsea", day(2025, time.March, 1, 15, 0), 2, 0),
	}}
	svc := newIngestion(st, cat, IngestionConfig{}, map[IngestMode]SourceChain{ModeSeason: NewSourceChain(nil, source)})

	result, err := svc.Ingest(context.Background(), IngestInput{Mode: ModeSeason, SeasonYear: 2025})
	require.NoError(t, err)
	assert.False(t, result.Executed)
	assert.Equal(t, 1, result.Leagues[0].Inserted)

	leagues, err := st.Leagues().List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, leagues)
	between, err := st.Matches().ListBetween(context.Background(), day(2025, time.January, 1, 0, 0), day(2026, time.January, 1, 0, 0))
	require.NoError(t, err)
	assert.Empty(t, between)
}

func TestIngestionService_UnknownTeamsSkippedWithoutCreatePolicy(t *testing.T) {
	t.Parallel()

	st := memory.NewStore()
	cat := mustCatalog(t, testLeague)
	ctx := context.Background()
	row, _, err := ensureLeague(ctx, st.Leagues(), testLeague)
	require.NoError(t, err)
	_, err = st.Teams().Create(ctx, team.Team{LeagueID: row.ID, Name: "Arsenal"})
	require.NoError(t, err)

	loose := &stubSource{name: "odds", creates: false, fixtures: []fixture.Fixture{
		finishedFixture("odds:1", "Arsenal FC", "Sunderland", day(2025, time.March, 1, 15, 0), 1, 0),
	}}
	svc := newIngestion(st, cat, IngestionConfig{}, map[IngestMode]SourceChain{ModeRecent: NewSourceChain(nil, loose)})
	svc.WithClock(func() time.Time { return day(2025, time.March, 2, 12, 0) })

	result, err := svc.Ingest(ctx, IngestInput{Mode: ModeRecent, Execute: true})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Leagues[0].Unresolved)
	assert.Equal(t, 0, result.Leagues[0].Inserted)

	teams, err := st.Teams().ListByLeague(ctx, row.ID)
	require.NoError(t, err)
	assert.Len(t, teams, 1)
}

func TestIngestionService_DevGuard(t *testing.T) {
	t.Parallel()

	st := memory.NewStore()
	cat := mustCatalog(t, testLeague)
	paid := &stubSource{name: "paid", paid: true, creates: true, fixtures: []fixture.Fixture{
		finishedFixture("af:1", "Arsenal", "Chelsea", day(2025, time.March, 1, 15, 0), 2, 0),
	}}
	free := &stubSource{name: "free", creates: true}
	cfg := IngestionConfig{DevGuard: true}

	guarded := newIngestion(st, cat, cfg, map[IngestMode]SourceChain{ModeSeason: NewSourceChain(nil, paid)})
	_, err := guarded.Ingest(context.Background(), IngestInput{Mode: ModeSeason, SeasonYear: 2025})
	require.ErrorIs(t, err, ErrForceRequired)
	assert.Zero(t, paid.callCount())

	forced, err := guarded.Ingest(context.Background(), IngestInput{Mode: ModeSeason, SeasonYear: 2025, Force: true})
	require.NoError(t, err)
	assert.Equal(t, "paid", forced.Leagues[0].Source)

	mixed := newIngestion(st, cat, cfg, map[IngestMode]SourceChain{ModeSeason: NewSourceChain(nil, paid, free)})
	result, err := mixed.Ingest(context.Background(), IngestInput{Mode: ModeSeason, SeasonYear: 2025})
	require.NoError(t, err)
	assert.Equal(t, "free", result.Leagues[0].Source)
	assert.Equal(t, 1, paid.callCount())
}

func TestIngestionService_ChainFallbackAndPartialFailure(t *testing.T) {
	t.Parallel()

	other := catalog.League{Name: "La Liga", Country: "Spain", Division: "SP1"}
	st := memory.NewStore()
	cat := mustCatalog(t, testLeague, other)

	broken := &stubSource{name: "broken", err: errors.New("503 from upstream")}
	backup := &stubSource{name: "backup", creates: true, fixtures: []fixture.Fixture{
		finishedFixture("fd:1", "Arsenal", "Chelsea", day(2025, time.March, 1, 15, 0), 2, 0),
	}}
	svc := newIngestion(st, cat, IngestionConfig{}, map[IngestMode]SourceChain{ModeSeason: NewSourceChain(nil, broken, backup)})

	result, err := svc.Ingest(context.Background(), IngestInput{Mode: ModeSeason, SeasonYear: 2025, Execute: true})
	require.NoError(t, err)
	require.Len(t, result.Leagues, 2)
	assert.Equal(t, "backup", result.Leagues[0].Source)

	only := newIngestion(st, cat, IngestionConfig{}, map[IngestMode]SourceChain{ModeSeason: NewSourceChain(nil, broken)})
	result, err = only.Ingest(context.Background(), IngestInput{Mode: ModeSeason, SeasonYear: 2025, Execute: true})
	require.Error(t, err)
	assert.Equal(t, 2, result.Failed())
}

func TestIngestionService_LiveWindow(t *testing.T) {
	t.Parallel()

	st := memory.NewStore()
	cat := mustCatalog(t, catalog.League{Name: "Premier League", Country: "England", Division: "E0", ProviderNames: []string{"EPL"}})
	now := day(2025, time.March, 1, 14, 30)
	liveFixture := fixture.Fixture{
		Source:          fixture.SourceAPIFootball,
		ExternalID:      "af:77",
		LeagueName:      "EPL",
		Country:         "England",
		Date:            day(2025, time.March, 1, 15, 0),
		Status:          match.StatusLive,
		HomeTeam:        "Arsenal",
		AwayTeam:        "Chelsea",
		HomeScore:       match.IntPtr(0),
		AwayScore:       match.IntPtr(0),
		ReliableKickoff: true,
	}
	source := &stubSource{name: "live", creates: true, live: []fixture.Fixture{
		liveFixture,
		{Source: fixture.SourceAPIFootball, ExternalID: "af:78", LeagueName: "Serie A", Country: "Italy", Date: now, Status: match.StatusLive, HomeTeam: "Roma", AwayTeam: "Lazio"},
	}}
	svc := newIngestion(st, cat, IngestionConfig{LiveLookahead: time.Hour}, map[IngestMode]SourceChain{ModeLive: NewSourceChain(nil, source)})
	svc.WithClock(func() time.Time { return now })
	ctx := context.Background()

	skipped, err := svc.Ingest(ctx, IngestInput{Mode: ModeLive, Execute: true})
	require.NoError(t, err)
	assert.True(t, skipped.LiveSkipped)
	assert.Zero(t, source.callCount())

	forced, err := svc.Ingest(ctx, IngestInput{Mode: ModeLive, Execute: true, Force: true})
	require.NoError(t, err)
	require.Len(t, forced.Leagues, 1)
	assert.Equal(t, 1, forced.Leagues[0].Inserted)

	poll, reason, err := svc.LiveWindow(ctx)
	require.NoError(t, err)
	assert.True(t, poll, reason)
}

func TestIngestionService_LiveWindowSeesStaleLiveMatch(t *testing.T) {
	t.Parallel()

	st := memory.NewStore()
	cat := mustCatalog(t, catalog.League{Name: "Premier League", Country: "England", Division: "E0", ProviderNames: []string{"EPL"}})
	kickoff := day(2025, time.March, 1, 15, 0)
	now := kickoff
	source := &stubSource{name: "live", creates: true, live: []fixture.Fixture{{
		Source:          fixture.SourceAPIFootball,
		ExternalID:      "af:77",
		LeagueName:      "EPL",
		Country:         "England",
		Date:            kickoff,
		Status:          match.StatusLive,
		HomeTeam:        "Arsenal",
		AwayTeam:        "Chelsea",
		ReliableKickoff: true,
	}}}
	svc := newIngestion(st, cat, IngestionConfig{LiveLookahead: time.Hour}, map[IngestMode]SourceChain{ModeLive: NewSourceChain(nil, source)})
	svc.WithClock(func() time.Time { return now })
	ctx := context.Background()

	_, err := svc.Ingest(ctx, IngestInput{Mode: ModeLive, Execute: true, Force: true})
	require.NoError(t, err)

	now = kickoff.Add(72 * time.Hour)
	poll, reason, err := svc.LiveWindow(ctx)
	require.NoError(t, err)
	assert.True(t, poll, reason)
	assert.Contains(t, reason, "is live")
}

func TestIngestionService_GoalsFromProvider(t *testing.T) {
	t.Parallel()

	st := memory.NewStore()
	cat := mustCatalog(t, testLeague)
	source := &stubSource{
		name:     "primary",
		creates:  true,
		fixtures: []fixture.Fixture{finishedFixture("af:10", "Arsenal", "Chelsea", day(2025, time.March, 1, 15, 0), 2, 1)},
		goals: map[string][]fixture.Goal{"af:10": {
			{Home: true, Minute: 12, Scorer: "Saka"},
			{Home: false, Minute: 40, Scorer: "Palmer", Penalty: true},
			{Home: true, Minute: 90, ExtraMinute: match.IntPtr(3), Scorer: "Havertz"},
		}},
	}
	svc := newIngestion(st, cat, IngestionConfig{}, map[IngestMode]SourceChain{ModeSeason: NewSourceChain(nil, source)})
	ctx := context.Background()

	result, err := svc.Ingest(ctx, IngestInput{Mode: ModeSeason, SeasonYear: 2025, Execute: true, Goals: true})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Leagues[0].Goals)

	stored, found, err := st.Matches().GetByExternalID(ctx, "af:10")
	require.NoError(t, err)
	require.True(t, found)
	goals, err := st.Goals().ListByMatch(ctx, stored.ID)
	require.NoError(t, err)
	assert.Len(t, goals, 3)
}

func TestIngestionService_InvalidInput(t *testing.T) {
	t.Parallel()

	svc := newIngestion(memory.NewStore(), mustCatalog(t, testLeague), IngestionConfig{}, map[IngestMode]SourceChain{})
	_, err := svc.Ingest(context.Background(), IngestInput{Mode: "weekly"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	svc = newIngestion(memory.NewStore(), mustCatalog(t, testLeague), IngestionConfig{}, map[IngestMode]SourceChain{ModeSeason: NewSourceChain(nil)})
	_, err = svc.Ingest(context.Background(), IngestInput{Mode: ModeSeason})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSourceChain_SeasonFetcherUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	first := fixturemock.NewSeasonFetcher(t)
	second := fixturemock.NewSeasonFetcher(t)
	expected := []fixture.Fixture{finishedFixture("fd:5", "Arsenal", "Chelsea", day(2025, time.March, 1, 15, 0), 1, 0)}

	first.On("Supports", testLeague).Return(true).Once()
	first.On("FetchSeason", mock.Anything, testLeague, 2025).Return(nil, errors.New("timeout")).Once()
	first.On("Name").Return("first").Maybe()
	second.On("Supports", testLeague).Return(true).Once()
	second.On("FetchSeason", mock.Anything, testLeague, 2025).Return(expected, nil).Once()

	chain := NewSourceChain(nil, first, second)
	got, source, err := chain.Fetch(ctx, FetchRequest{Mode: ModeSeason, League: testLeague, SeasonYear: 2025})
	require.NoError(t, err)
	assert.Equal(t, expected, got)
	assert.Same(t, second, source)

	_, _, err = NewSourceChain(nil).Fetch(ctx, FetchRequest{Mode: ModeUpcoming, League: testLeague})
	assert.ErrorIs(t, err, ErrDependencyUnavailable)
}
