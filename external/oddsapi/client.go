// Package oddsapi discovers upcoming fixtures and recent results from
// the-odds-api v4. Its kickoff times and team spellings are loose, so it
// never creates teams and its dates are not trusted over other sources.
package oddsapi

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"sort"
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

const (
	defaultBaseURL = "https://api.the-odds-api.com/v4"
	// The scores endpoint looks back at most this many days.
	maxDaysFrom = 3
	// Error code the API sends with a 401 once a key's credits are spent.
	outOfCredits = "OUT_OF_USAGE_CREDITS"
)

type ClientConfig struct {
	BaseURL string
	HTTP    *httpfetch.Client
	Pool    *keypool.Pool
	Logger  *logging.Logger
	Now     func() time.Time
}

type Client struct {
	baseURL string
	http    *httpfetch.Client
	pool    *keypool.Pool
	logger  *logging.Logger
	now     func() time.Time
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
		httpClient = httpfetch.New(httpfetch.Config{Name: fixture.SourceOddsAPI, Logger: logger})
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		pool:    cfg.Pool,
		logger:  logger.With("source", fixture.SourceOddsAPI),
		now:     now,
	}
}

func (c *Client) Name() string       { return fixture.SourceOddsAPI }
func (c *Client) Paid() bool         { return true }
func (c *Client) CreatesTeams() bool { return false }

func (c *Client) Supports(league catalog.League) bool {
	return league.OddsAPI != nil && c.pool != nil && c.pool.Size() > 0
}

// FetchRange merges the scores feed for the past part of [from, to) with
// the events feed for the future part.
func (c *Client) FetchRange(ctx context.Context, league catalog.League, from, to time.Time) ([]fixture.Fixture, error) {
	if league.OddsAPI == nil {
		return nil, fmt.Errorf("league %s has no odds-api sport key", league.Key())
	}
	if !to.After(from) {
		return nil, nil
	}
	sportPath := "/sports/" + url.PathEscape(league.OddsAPI.SportKey)
	now := c.now().UTC()

	byID := make(map[string]apiEvent)
	if from.Before(now) {
		query := url.Values{}
		query.Set("daysFrom", strconv.Itoa(daysFrom(now, from)))
		query.Set("dateFormat", "iso")
		events, err := c.events(ctx, sportPath+"/scores", query)
		if err != nil {
			return nil, fmt.Errorf("fetch %s scores: %w", league.Key(), err)
		}
		for _, event := range events {
			byID[event.ID] = event
		}
	}
	if to.After(now) {
		query := url.Values{}
		query.Set("commenceTimeFrom", maxTime(from, now).UTC().Format(time.RFC3339))
		query.Set("commenceTimeTo", to.UTC().Format(time.RFC3339))
		query.Set("dateFormat", "iso")
		events, err := c.events(ctx, sportPath+"/events", query)
		if err != nil {
			return nil, fmt.Errorf("fetch %s events: %w", league.Key(), err)
		}
		for _, event := range events {
			if _, seen := byID[event.ID]; !seen {
				byID[event.ID] = event
			}
		}
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]fixture.Fixture, 0, len(ids))
	for _, id := range ids {
		item, ok := c.mapEvent(ctx, byID[id], league, now)
		if !ok {
			continue
		}
		if item.Date.Before(from) || !item.Date.Before(to) {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (c *Client) events(ctx context.Context, path string, query url.Values) ([]apiEvent, error) {
	if c.pool == nil {
		return nil, crerr.Wrap(keypool.ErrProvidersExhausted, "odds-api has no credentials")
	}

	var payload []apiEvent
	err := c.pool.Do(ctx, func(ctx context.Context, cred keypool.Credential) error {
		params := url.Values{}
		for key, values := range query {
			params[key] = values
		}
		params.Set("apiKey", cred.Key)

		payload = nil
		err := c.http.GetJSON(ctx, httpfetch.Request{
			URL:    c.baseURL + path + "?" + params.Encode(),
			Secret: cred.Key,
		}, &payload)
		switch {
		case err == nil:
			return nil
		case crerr.Is(err, httpfetch.ErrNotFound):
			payload = nil
			return nil
		case strings.Contains(err.Error(), outOfCredits):
			return crerr.Wrap(keypool.ErrQuotaExceeded, httpfetch.Redact(err.Error(), cred.Key))
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *Client) mapEvent(ctx context.Context, event apiEvent, league catalog.League, now time.Time) (fixture.Fixture, bool) {
	kickoff, err := time.Parse(time.RFC3339, event.CommenceTime)
	if err != nil {
		c.logger.WarnContext(ctx, "skip odds-api event with bad commence time",
			"event_id", event.ID,
			"commence_time", event.CommenceTime,
			"error", err,
		)
		return fixture.Fixture{}, false
	}

	item := fixture.Fixture{
		Source:     fixture.SourceOddsAPI,
		ExternalID: fixture.ExternalKey(fixture.SourceOddsAPI, event.ID),
		LeagueName: league.Name,
		Country:    league.Country,
		Date:       kickoff.UTC(),
		Status:     match.StatusScheduled,
		HomeTeam:   strings.TrimSpace(event.HomeTeam),
		AwayTeam:   strings.TrimSpace(event.AwayTeam),
	}

	home, away, scored := scoresFor(event)
	if scored {
		item.HomeScore, item.AwayScore = &home, &away
	}
	switch {
	case event.Completed:
		item.Status = match.StatusFinished
	case scored && !kickoff.After(now):
		item.Status = match.StatusLive
	}
	return item, true
}

// scoresFor pairs the score entries with the event's home and away names.
func scoresFor(event apiEvent) (int, int, bool) {
	if len(event.Scores) == 0 {
		return 0, 0, false
	}
	var (
		home, away       int
		hasHome, hasAway bool
	)
	for _, entry := range event.Scores {
		value, err := strconv.Atoi(strings.TrimSpace(entry.Score))
		if err != nil || value < 0 {
			continue
		}
		switch entry.Name {
		case event.HomeTeam:
			home, hasHome = value, true
		case event.AwayTeam:
			away, hasAway = value, true
		}
	}
	return home, away, hasHome && hasAway
}

func daysFrom(now, from time.Time) int {
	days := int(math.Ceil(now.Sub(from).Hours() / 24))
	return min(max(days, 1), maxDaysFrom)
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
