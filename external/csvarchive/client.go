// Package csvarchive reads results files published by football-data.co.uk.
// The files cover finished matches of past and current seasons and are
// free to download, which makes them the fallback for season backfills.
package csvarchive

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/betstats/external/httpfetch"
	"github.com/riskibarqy/betstats/internal/catalog"
	"github.com/riskibarqy/betstats/internal/domain/fixture"
	"github.com/riskibarqy/betstats/internal/domain/match"
	"github.com/riskibarqy/betstats/internal/platform/logging"
)

const defaultBaseURL = "https://www.football-data.co.uk"

// Kickoff times in the files are UK local time.
const fileTimezone = "Europe/London"

type ClientConfig struct {
	BaseURL string
	HTTP    *httpfetch.Client
	Logger  *logging.Logger
}

type Client struct {
	baseURL string
	http    *httpfetch.Client
	logger  *logging.Logger
	loc     *time.Location
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
		httpClient = httpfetch.New(httpfetch.Config{Name: fixture.SourceCSVArchive, Logger: logger})
	}
	loc, err := time.LoadLocation(fileTimezone)
	if err != nil {
		logger.Warn("csv archive timezone unavailable, using UTC", "error", err)
		loc = time.UTC
	}
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		logger:  logger.With("source", fixture.SourceCSVArchive),
		loc:     loc,
	}
}

func (c *Client) Name() string       { return fixture.SourceCSVArchive }
func (c *Client) Paid() bool         { return false }
func (c *Client) CreatesTeams() bool { return true }

func (c *Client) Supports(league catalog.League) bool {
	return league.CSVArchive != nil
}

func (c *Client) FetchSeason(ctx context.Context, league catalog.League, seasonYear int) ([]fixture.Fixture, error) {
	if league.CSVArchive == nil {
		return nil, fmt.Errorf("league %s has no csv archive code", league.Key())
	}
	return c.file(ctx, league, seasonYear)
}

// FetchRange reads the season files covering [from, to) and keeps rows
// whose day falls inside the range.
func (c *Client) FetchRange(ctx context.Context, league catalog.League, from, to time.Time) ([]fixture.Fixture, error) {
	if league.CSVArchive == nil {
		return nil, fmt.Errorf("league %s has no csv archive code", league.Key())
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
		items, err := c.file(ctx, league, seasonYear)
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

// FileURL is the results file holding seasonYear of the league.
func (c *Client) FileURL(league catalog.League, seasonYear int) string {
	ref := league.CSVArchive
	if ref.Extra {
		return fmt.Sprintf("%s/new/%s.csv", c.baseURL, ref.Code)
	}
	return fmt.Sprintf("%s/mmz4281/%02d%02d/%s.csv", c.baseURL, (seasonYear-1)%100, seasonYear%100, ref.Code)
}

func (c *Client) file(ctx context.Context, league catalog.League, seasonYear int) ([]fixture.Fixture, error) {
	fileURL := c.FileURL(league, seasonYear)
	raw, err := c.http.Get(ctx, httpfetch.Request{
		URL:    fileURL,
		Header: http.Header{"Accept": []string{"text/csv,*/*"}},
	})
	if crerr.Is(err, httpfetch.ErrNotFound) {
		c.logger.WarnContext(ctx, "csv results file not found", "league", league.Key(), "url", fileURL)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s results file: %w", league.Key(), err)
	}

	items, err := c.parse(ctx, raw, league, seasonYear)
	if err != nil {
		return nil, fmt.Errorf("parse %s results file: %w", league.Key(), err)
	}
	return items, nil
}

func (c *Client) parse(ctx context.Context, raw []byte, league catalog.League, seasonYear int) ([]fixture.Fixture, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if crerr.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := newColumns(header)
	if !cols.has("Date") || !cols.hasAny("HomeTeam", "Home") || !cols.hasAny("AwayTeam", "Away") {
		return nil, fmt.Errorf("unexpected header %v", header)
	}

	out := make([]fixture.Fixture, 0, 400)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if crerr.Is(err, io.EOF) {
			break
		}
		if err != nil {
			c.logger.WarnContext(ctx, "skip unreadable csv row", "league", league.Key(), "line", line, "error", err)
			continue
		}
		row := cols.row(record)

		if league.CSVArchive.Extra && !seasonMatches(row.get("Season"), seasonYear) {
			continue
		}
		home, away := row.first("HomeTeam", "Home"), row.first("AwayTeam", "Away")
		if home == "" && away == "" {
			continue
		}
		if home == "" || away == "" {
			c.logger.WarnContext(ctx, "skip csv row without teams", "league", league.Key(), "line", line)
			continue
		}
		kickoff, err := parseKickoff(row.get("Date"), row.get("Time"), c.loc)
		if err != nil {
			c.logger.WarnContext(ctx, "skip csv row with bad date",
				"league", league.Key(),
				"line", line,
				"home", home,
				"away", away,
				"error", err,
			)
			continue
		}

		item := fixture.Fixture{
			Source:     fixture.SourceCSVArchive,
			LeagueName: league.Name,
			Country:    league.Country,
			Date:       kickoff,
			Status:     match.StatusScheduled,
			HomeTeam:   home,
			AwayTeam:   away,
			HomeScore:  parseGoals(row.first("FTHG", "HG")),
			AwayScore:  parseGoals(row.first("FTAG", "AG")),
		}
		if item.HasScore() {
			item.Status = match.StatusFinished
			item.HalfHomeScore = parseGoals(row.get("HTHG"))
			item.HalfAwayScore = parseGoals(row.get("HTAG"))
		}
		out = append(out, item)
	}
	return out, nil
}

type columns map[string]int

func newColumns(header []string) columns {
	out := make(columns, len(header))
	for idx, name := range header {
		name = strings.TrimSpace(name)
		if _, exists := out[name]; !exists && name != "" {
			out[name] = idx
		}
	}
	return out
}

func (c columns) has(name string) bool {
	_, ok := c[name]
	return ok
}

func (c columns) hasAny(names ...string) bool {
	for _, name := range names {
		if c.has(name) {
			return true
		}
	}
	return false
}

func (c columns) row(record []string) csvRow {
	return csvRow{cols: c, record: record}
}

type csvRow struct {
	cols   columns
	record []string
}

func (r csvRow) get(name string) string {
	idx, ok := r.cols[name]
	if !ok || idx >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[idx])
}

func (r csvRow) first(names ...string) string {
	for _, name := range names {
		if value := r.get(name); value != "" {
			return value
		}
	}
	return ""
}

// parseKickoff reads dd/mm/yy or dd/mm/yyyy plus an optional HH:MM.
func parseKickoff(date, clock string, loc *time.Location) (time.Time, error) {
	var day time.Time
	var err error
	for _, layout := range []string{"02/01/2006", "02/01/06", "2/1/2006", "2/1/06"} {
		day, err = time.ParseInLocation(layout, date, loc)
		if err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q", date)
	}
	if clock != "" {
		if at, err := time.Parse("15:04", clock); err == nil {
			day = time.Date(day.Year(), day.Month(), day.Day(), at.Hour(), at.Minute(), 0, 0, loc)
		}
	}
	return day.UTC(), nil
}

func parseGoals(value string) *int {
	if value == "" {
		return nil
	}
	goals, err := strconv.Atoi(value)
	if err != nil || goals < 0 {
		return nil
	}
	return &goals
}

// seasonMatches compares a Season cell ("2024" or "2023/2024") with the
// ending-year season.
func seasonMatches(value string, seasonYear int) bool {
	value = strings.TrimSpace(value)
	if idx := strings.LastIndexAny(value, "/-"); idx >= 0 {
		value = value[idx+1:]
	}
	year, err := strconv.Atoi(value)
	if err != nil {
		return false
	}
	if year < 100 {
		year += 2000
	}
	return year == seasonYear
}
