// Package apifootball reads fixtures and goal events from the api-football
// v3 API.
package apifootball

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/betstats/external/httpfetch"
	"github.com/riskibarqy/betstats/internal/catalog"
	"github.com/riskibarqy/betstats/internal/domain/fixture"
	"github.com/riskibarqy/betstats/internal/domain/match"
	"github.com/riskibarqy/betstats/internal/platform/keypool"
	"github.com/riskibarqy/betstats/internal/platform/logging"
)

const defaultBaseURL = "https://v3.football.api-sports.io"

// Error keys the API reports with a 200 status when a key is out of budget.
var quotaErrorKeys = []string{"requests", "rateLimit"}

type ClientConfig struct {
	BaseURL string
	HTTP    *httpfetch.Client
	Pool    *keypool.Pool
	Logger  *logging.Logger
}

type Client struct {
	baseURL string
	http    *httpfetch.Client
	pool    *keypool.Pool
	logger  *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = httpfetch.New(httpfetch.Config{Name: fixture.SourceAPIFootball, Logger: logger})
	}
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		pool:    cfg.Pool,
		logger:  logger.With("source", fixture.SourceAPIFootball),
	}
}

func (c *Client) Name() string       { return fixture.SourceAPIFootball }
func (c *Client) Paid() bool         { return true }
func (c *Client) CreatesTeams() bool { return true }

func (c *Client) Supports(league catalog.League) bool {
	return league.APIFootball != nil && c.pool != nil && c.pool.Size() > 0
}

func (c *Client) FetchSeason(ctx context.Context, league catalog.League, seasonYear int) ([]fixture.Fixture, error) {
	if league.APIFootball == nil {
		return nil, fmt.Errorf("league %s has no api-football id", league.Key())
	}
	query := url.Values{}
	query.Set("league", strconv.Itoa(league.APIFootball.LeagueID))
	query.Set("season", strconv.Itoa(league.ProviderSeason(seasonYear)))

	items, err := c.fixtures(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch %s season=%d: %w", league.Key(), seasonYear, err)
	}
	return c.mapFixtures(ctx, items, &league, time.Time{}, time.Time{}), nil
}

// FetchRange queries every provider season the range touches, because the
// API requires a season next to from/to.
func (c *Client) FetchRange(ctx context.Context, league catalog.League, from, to time.Time) ([]fixture.Fixture, error) {
	if league.APIFootball == nil {
		return nil, fmt.Errorf("league %s has no api-football id", league.Key())
	}
	if !to.After(from) {
		return nil, nil
	}
	last := to.Add(-time.Nanosecond)

	seasons := []int{league.ProviderSeason(league.SeasonYearFor(from))}
	if next := league.ProviderSeason(league.SeasonYearFor(last)); next != seasons[0] {
		seasons = append(seasons, next)
	}

	out := make([]fixture.Fixture, 0)
	for _, providerSeason := range seasons {
		query := url.Values{}
		query.Set("league", strconv.Itoa(league.APIFootball.LeagueID))
		query.Set("season", strconv.Itoa(providerSeason))
		query.Set("from", from.UTC().Format(time.DateOnly))
		query.Set("to", last.UTC().Format(time.DateOnly))

		items, err := c.fixtures(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("fetch %s range season=%d: %w", league.Key(), providerSeason, err)
		}
		out = append(out, c.mapFixtures(ctx, items, &league, from, to)...)
	}
	return out, nil
}

func (c *Client) FetchLive(ctx context.Context) ([]fixture.Fixture, error) {
	query := url.Values{}
	query.Set("live", "all")

	items, err := c.fixtures(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch live fixtures: %w", err)
	}
	return c.mapFixtures(ctx, items, nil, time.Time{}, time.Time{}), nil
}

// FetchGoals loads the scoring events of one fixture. Missed penalties are
// dropped; a goal's side follows the team the API credits it to.
func (c *Client) FetchGoals(ctx context.Context, externalID string) ([]fixture.Goal, error) {
	rawID, ok := fixture.RawExternalID(fixture.SourceAPIFootball, externalID)
	if !ok {
		return nil, nil
	}
	query := url.Values{}
	query.Set("id", rawID)

	items, err := c.fixtures(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch events fixture=%s: %w", rawID, err)
	}
	if len(items) == 0 {
		return nil, nil
	}

	item := items[0]
	goals := make([]fixture.Goal, 0, len(item.Events))
	for _, event := range item.Events {
		if !strings.EqualFold(event.Type, "Goal") {
			continue
		}
		detail := strings.ToLower(event.Detail)
		if strings.Contains(detail, "missed") {
			continue
		}
		goals = append(goals, fixture.Goal{
			Home:        event.Team.ID == item.Teams.Home.ID,
			Minute:      event.Time.Elapsed,
			ExtraMinute: event.Time.Extra,
			Scorer:      strings.TrimSpace(event.Player.Name),
			OwnGoal:     strings.Contains(detail, "own goal"),
			Penalty:     detail == "penalty",
		})
	}
	return goals, nil
}

func (c *Client) fixtures(ctx context.Context, query url.Values) ([]apiFixture, error) {
	if c.pool == nil {
		return nil, crerr.Wrap(keypool.ErrProvidersExhausted, "api-football has no credentials")
	}
	endpoint := c.baseURL + "/fixtures?" + query.Encode()

	var payload fixturesEnvelope
	err := c.pool.Do(ctx, func(ctx context.Context, cred keypool.Credential) error {
		payload = fixturesEnvelope{}
		err := c.http.GetJSON(ctx, httpfetch.Request{
			URL:    endpoint,
			Header: http.Header{"x-apisports-key": []string{cred.Key}},
			Secret: cred.Key,
		}, &payload)
		if crerr.Is(err, httpfetch.ErrNotFound) {
			payload = fixturesEnvelope{}
			return nil
		}
		if err != nil {
			return err
		}
		return apiError(payload, cred.Key)
	})
	if err != nil {
		return nil, err
	}
	return payload.Response, nil
}

// apiError turns a 200 response carrying an errors object into an error.
// Budget errors wrap keypool.ErrQuotaExceeded so the key is parked for the
// day.
func apiError(payload fixturesEnvelope, secret string) error {
	messages := payload.errorMessages()
	if len(messages) == 0 {
		return nil
	}
	text := httpfetch.Redact(formatErrors(messages), secret)
	for _, key := range quotaErrorKeys {
		if _, ok := messages[key]; ok {
			return crerr.Wrapf(keypool.ErrQuotaExceeded, "api-football: %s", text)
		}
	}
	return fmt.Errorf("api-football error: %s", text)
}

func (c *Client) mapFixtures(ctx context.Context, items []apiFixture, league *catalog.League, from, to time.Time) []fixture.Fixture {
	out := make([]fixture.Fixture, 0, len(items))
	for _, item := range items {
		kickoff, err := time.Parse(time.RFC3339, item.Fixture.Date)
		if err != nil {
			c.logger.WarnContext(ctx, "skip api-football fixture with bad date",
				"fixture_id", item.Fixture.ID,
				"date", item.Fixture.Date,
				"error", err,
			)
			continue
		}
		kickoff = kickoff.UTC()
		if !from.IsZero() && (kickoff.Before(from) || !kickoff.Before(to)) {
			continue
		}

		next := fixture.Fixture{
			Source:          fixture.SourceAPIFootball,
			ExternalID:      fixture.ExternalKey(fixture.SourceAPIFootball, strconv.FormatInt(item.Fixture.ID, 10)),
			LeagueName:      item.League.Name,
			Country:         item.League.Country,
			Date:            kickoff,
			Status:          match.ParseStatus(item.Fixture.Status.Short),
			HomeTeam:        strings.TrimSpace(item.Teams.Home.Name),
			AwayTeam:        strings.TrimSpace(item.Teams.Away.Name),
			HomeExternalID:  teamKey(item.Teams.Home),
			AwayExternalID:  teamKey(item.Teams.Away),
			HomeScore:       item.Goals.Home,
			AwayScore:       item.Goals.Away,
			HalfHomeScore:   item.Score.HalfTime.Home,
			HalfAwayScore:   item.Score.HalfTime.Away,
			ReliableKickoff: true,
		}
		if league != nil {
			next.LeagueName = league.Name
			next.Country = league.Country
		}
		out = append(out, next)
	}
	return out
}

func teamKey(item apiTeam) string {
	if item.ID <= 0 {
		return ""
	}
	return fixture.ExternalKey(fixture.SourceAPIFootball, strconv.FormatInt(item.ID, 10))
}
