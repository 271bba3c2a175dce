// Package scraper reads fixtures from HTML results tables. Pages give a
// kickoff day without a reliable time zone, so fixtures are marked as
// unreliable and matched with the reconciliation window.
package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/PuerkitoBio/goquery"
	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/betstats/external/httpfetch"
	"github.com/riskibarqy/betstats/internal/catalog"
	"github.com/riskibarqy/betstats/internal/domain/fixture"
	"github.com/riskibarqy/betstats/internal/domain/match"
	"github.com/riskibarqy/betstats/internal/platform/logging"
)

type ClientConfig struct {
	HTTP   *httpfetch.Client
	Logger *logging.Logger
}

type Client struct {
	http   *httpfetch.Client
	logger *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = httpfetch.New(httpfetch.Config{Name: fixture.SourceScraper, Timeout: 30 * time.Second, Logger: logger})
	}
	return &Client{
		http:   httpClient,
		logger: logger.With("source", fixture.SourceScraper),
	}
}

func (c *Client) Name() string       { return fixture.SourceScraper }
func (c *Client) Paid() bool         { return false }
func (c *Client) CreatesTeams() bool { return true }

func (c *Client) Supports(league catalog.League) bool {
	return league.Scraper != nil
}

func (c *Client) FetchSeason(ctx context.Context, league catalog.League, seasonYear int) ([]fixture.Fixture, error) {
	if league.Scraper == nil {
		return nil, fmt.Errorf("league %s has no results page", league.Key())
	}
	return c.page(ctx, league, seasonYear)
}

// FetchRange reads the season pages covering [from, to) and keeps rows
// whose day falls inside the range.
func (c *Client) FetchRange(ctx context.Context, league catalog.League, from, to time.Time) ([]fixture.Fixture, error) {
	if league.Scraper == nil {
		return nil, fmt.Errorf("league %s has no results page", league.Key())
	}
	if !to.After(from) {
		return nil, nil
	}

	seasons := []int{league.SeasonYearFor(from)}
	if last := league.SeasonYearFor(to.Add(-time.Nanosecond)); last != seasons[0] {
		seasons = append(seasons, last)
	}

	firstDay := match.DayOf(from)
	out := make([]fixture.Fixture, 0)
	for _, seasonYear := range seasons {
		items, err := c.page(ctx, league, seasonYear)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			if item.Date.Before(firstDay) || !item.Date.Before(to) {
				continue
			}
			out = append(out, item)
		}
	}
	return out, nil
}

func (c *Client) page(ctx context.Context, league catalog.League, seasonYear int) ([]fixture.Fixture, error) {
	pageURL := PageURL(league, seasonYear)
	raw, err := c.http.Get(ctx, httpfetch.Request{
		URL:    pageURL,
		Header: http.Header{"Accept": []string{"text/html,application/xhtml+xml"}},
	})
	if crerr.Is(err, httpfetch.ErrNotFound) {
		c.logger.WarnContext(ctx, "results page not found", "league", league.Key(), "url", pageURL)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s results page: %w", league.Key(), err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse %s results page: %w", league.Key(), err)
	}
	return c.parseTable(ctx, doc, league, seasonYear)
}

// PageURL fills the {season} and {start} placeholders of the league page.
func PageURL(league catalog.League, seasonYear int) string {
	replacer := strings.NewReplacer(
		"{season}", strconv.Itoa(seasonYear),
		"{start}", strconv.Itoa(league.ProviderSeason(seasonYear)),
	)
	return replacer.Replace(league.Scraper.URL)
}

func (c *Client) parseTable(ctx context.Context, doc *goquery.Document, league catalog.League, seasonYear int) ([]fixture.Fixture, error) {
	layout := league.Scraper.Layout
	loc := time.UTC
	if name := strings.TrimSpace(layout.Location); name != "" {
		loaded, err := time.LoadLocation(name)
		if err != nil {
			return nil, fmt.Errorf("load timezone %s for %s: %w", name, league.Key(), err)
		}
		loc = loaded
	}
	rowsSelector := strings.TrimSpace(layout.Rows)
	if rowsSelector == "" {
		rowsSelector = "table tr"
	}
	needed := max(layout.DateColumn, layout.HomeColumn, layout.ScoreColumn, layout.AwayColumn) + 1

	out := make([]fixture.Fixture, 0)
	doc.Find(rowsSelector).Each(func(rowIndex int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() == 0 {
			return
		}
		cell := func(idx int) string {
			return cleanText(cells.Eq(idx).Text())
		}
		if cells.Length() < needed {
			c.logger.WarnContext(ctx, "skip malformed results row",
				"league", league.Key(),
				"row", rowIndex,
				"reason", "missing cells",
			)
			return
		}

		home, away := cell(layout.HomeColumn), cell(layout.AwayColumn)
		if home == "" || away == "" {
			c.logger.WarnContext(ctx, "skip malformed results row",
				"league", league.Key(),
				"row", rowIndex,
				"reason", "missing team name",
			)
			return
		}
		kickoff, err := ParseDate(cell(layout.DateColumn), layout.DateLayouts, loc, league, seasonYear)
		if err != nil {
			c.logger.WarnContext(ctx, "skip malformed results row",
				"league", league.Key(),
				"row", rowIndex,
				"home", home,
				"away", away,
				"error", err,
			)
			return
		}

		item := fixture.Fixture{
			Source:     fixture.SourceScraper,
			LeagueName: league.Name,
			Country:    league.Country,
			Date:       kickoff,
			HomeTeam:   home,
			AwayTeam:   away,
		}
		item.Status, item.HomeScore, item.AwayScore = ParseResult(cell(layout.ScoreColumn))
		if layout.HalfColumn > 0 && layout.HalfColumn < cells.Length() {
			if _, halfHome, halfAway := ParseResult(cell(layout.HalfColumn)); halfHome != nil {
				item.HalfHomeScore, item.HalfAwayScore = halfHome, halfAway
			}
		}
		out = append(out, item)
	})
	return out, nil
}

// cleanText collapses whitespace, including non-breaking spaces.
func cleanText(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
