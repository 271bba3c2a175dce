// Package footballdata reads fixtures from the football-data.org v4 API.
package footballdata

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

const defaultBaseURL = "https://api.football-data.org/v4"

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
		httpClient = httpfetch.New(httpfetch.Config{Name: fixture.SourceFootballData, Logger: logger})
	}
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		pool:    cfg.Pool,
		logger:  logger.With("source", fixture.SourceFootballData),
	}
}

func (c *Client) Name() string       { return fixture.SourceFootballData }
func (c *Client) Paid() bool         { return true }
func (c *Client) CreatesTeams() bool { return true }

func (c *Client) Supports(league catalog.League) bool {
	return league.FootballData != nil && c.pool != nil && c.pool.Size() > 0
}

// FetchSeason lists every match of the competition season.
func (c *Client) FetchSeason(ctx context.Context, league catalog.League, seasonYear int) ([]fixture.Fixture, error) {
	if league.FootballData == nil {
		return nil, fmt.Errorf("league %s has no football-data code", league.Key())
	}
	query := url.Values{}
	query.Set("season", strconv.Itoa(league.ProviderSeason(seasonYear)))

	payload, err := c.matches(ctx, "/competitions/"+url.PathEscape(league.FootballData.Code)+"/matches", query)
	if err != nil {
		return nil, fmt.Errorf("fetch %s season=%d: %w", league.Key(), seasonYear, err)
	}
	return c.mapMatches(ctx, payload.Matches, &league, time.Time{}, time.Time{}), nil
}

// FetchRange lists matches kicking off in [from, to). The API filters by
// inclusive calendar dates, so the result is trimmed afterwards.
func (c *Client) FetchRange(ctx context.Context, league catalog.League, from, to time.Time) ([]fixture.Fixture, error) {
	if league.FootballData == nil {
		return nil, fmt.Errorf("league %s has no football-data code", league.Key())
	}
	if !to.After(from) {
		return nil, nil
	}
	query := url.Values{}
	query.Set("dateFrom", from.UTC().Format(time.DateOnly))
	query.Set("dateTo", to.Add(-time.Nanosecond).UTC().Format(time.DateOnly))

	payload, err := c.matches(ctx, "/competitions/"+url.PathEscape(league.FootballData.Code)+"/matches", query)
	if err != nil {
		return nil, fmt.Errorf("fetch %s range: %w", league.Key(), err)
	}
	return c.mapMatches(ctx, payload.Matches, &league, from, to), nil
}

// FetchLive lists in-play matches across every subscribed competition.
func (c *Client) FetchLive(ctx context.Context) ([]fixture.Fixture, error) {
	query := url.Values{}
	query.Set("status", "LIVE")

	payload, err := c.matches(ctx, "/matches", query)
	if err != nil {
		return nil, fmt.Errorf("fetch live matches: %w", err)
	}
	return c.mapMatches(ctx, payload.Matches, nil, time.Time{}, time.Time{}), nil
}

func (c *Client) matches(ctx context.Context, path string, query url.Values) (matchesEnvelope, error) {
	if c.pool == nil {
		return matchesEnvelope{}, crerr.Wrap(keypool.ErrProvidersExhausted, "football-data has no credentials")
	}

	endpoint := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var payload matchesEnvelope
	err := c.pool.Do(ctx, func(ctx context.Context, cred keypool.Credential) error {
		payload = matchesEnvelope{}
		err := c.http.GetJSON(ctx, httpfetch.Request{
			URL:    endpoint,
			Header: http.Header{"X-Auth-Token": []string{cred.Key}},
			Secret: cred.Key,
		}, &payload)
		if crerr.Is(err, httpfetch.ErrNotFound) {
			c.logger.WarnContext(ctx, "football-data resource not found", "path", path)
			payload = matchesEnvelope{}
			return nil
		}
		return err
	})
	if err != nil {
		return matchesEnvelope{}, err
	}
	return payload, nil
}

// mapMatches normalizes API matches. With a league they are labelled with
// its catalog identity; without one the competition fields are kept so the
// caller can map them. Zero from/to disables range trimming.
func (c *Client) mapMatches(ctx context.Context, items []apiMatch, league *catalog.League, from, to time.Time) []fixture.Fixture {
	out := make([]fixture.Fixture, 0, len(items))
	for _, item := range items {
		kickoff, err := time.Parse(time.RFC3339, item.UTCDate)
		if err != nil {
			c.logger.WarnContext(ctx, "skip football-data match with bad date",
				"match_id", item.ID,
				"date", item.UTCDate,
				"error", err,
			)
			continue
		}
		kickoff = kickoff.UTC()
		if !from.IsZero() && (kickoff.Before(from) || !kickoff.Before(to)) {
			continue
		}

		next := fixture.Fixture{
			Source:          fixture.SourceFootballData,
			ExternalID:      fixture.ExternalKey(fixture.SourceFootballData, strconv.FormatInt(item.ID, 10)),
			LeagueName:      item.Competition.Name,
			Country:         item.Area.Name,
			Date:            kickoff,
			Status:          match.ParseStatus(item.Status),
			HomeTeam:        teamName(item.HomeTeam),
			AwayTeam:        teamName(item.AwayTeam),
			HomeExternalID:  teamKey(item.HomeTeam),
			AwayExternalID:  teamKey(item.AwayTeam),
			HomeScore:       item.Score.FullTime.Home,
			AwayScore:       item.Score.FullTime.Away,
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

// teamName prefers the full name; the short name is used when the API
// leaves it empty for freshly promoted teams.
func teamName(item apiTeam) string {
	if name := strings.TrimSpace(item.Name); name != "" {
		return name
	}
	return strings.TrimSpace(item.ShortName)
}

func teamKey(item apiTeam) string {
	if item.ID <= 0 {
		return ""
	}
	return fixture.ExternalKey(fixture.SourceFootballData, strconv.FormatInt(item.ID, 10))
}
