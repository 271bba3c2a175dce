package catalog

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/riskibarqy/betstats/internal/platform/textnorm"
)

// League is one supported competition and how each provider refers to it.
type League struct {
	Name          string   `yaml:"name" validate:"required"`
	Country       string   `yaml:"country" validate:"required"`
	Division      string   `yaml:"division" validate:"required,max=8"`
	CalendarYear  bool     `yaml:"calendar_year"`
	ProviderNames []string `yaml:"provider_names"`
	AllowedTeams  []string `yaml:"allowed_teams"`

	FootballData *FootballDataRef `yaml:"football_data" validate:"omitempty"`
	APIFootball  *APIFootballRef  `yaml:"api_football" validate:"omitempty"`
	OddsAPI      *OddsAPIRef      `yaml:"odds_api" validate:"omitempty"`
	Scraper      *ScraperRef      `yaml:"scraper" validate:"omitempty"`
	CSVArchive   *CSVArchiveRef   `yaml:"csv_archive" validate:"omitempty"`
}

type FootballDataRef struct {
	Code string `yaml:"code" validate:"required"`
	ID   int    `yaml:"id" validate:"gt=0"`
}

type APIFootballRef struct {
	LeagueID int `yaml:"league_id" validate:"gt=0"`
}

type OddsAPIRef struct {
	SportKey string `yaml:"sport_key" validate:"required"`
}

// CSVArchiveRef names a football-data.co.uk results file. Main leagues
// publish one file per season; extra leagues publish a single file with a
// Season column.
type CSVArchiveRef struct {
	Code  string `yaml:"code" validate:"required"`
	Extra bool   `yaml:"extra"`
}

// ScraperRef points at an HTML results table. The URL may contain
// {season} and {start} placeholders for the season year and start year.
type ScraperRef struct {
	URL    string      `yaml:"url" validate:"required,url"`
	Layout TableLayout `yaml:"layout"`
}

// TableLayout locates fixture cells inside a results table. Columns are
// zero-based; an unset half_time_column means the table has none.
type TableLayout struct {
	Rows        string   `yaml:"rows"`
	DateColumn  int      `yaml:"date_column"`
	HomeColumn  int      `yaml:"home_column"`
	ScoreColumn int      `yaml:"score_column"`
	AwayColumn  int      `yaml:"away_column"`
	HalfColumn  int      `yaml:"half_time_column"`
	DateLayouts []string `yaml:"date_layouts"`
	Location    string   `yaml:"timezone"`
}

// Key identifies a league in logs and alias maps.
func (l League) Key() string {
	return l.Name + "|" + l.Country
}

// SeasonYearFor returns the ending-year season a kickoff belongs to.
// Split seasons turn over in August.
func (l League) SeasonYearFor(t time.Time) int {
	u := t.UTC()
	if l.CalendarYear {
		return u.Year()
	}
	if u.Month() >= time.August {
		return u.Year() + 1
	}
	return u.Year()
}

// ProviderSeason converts an ending-year season to the starting-year season
// parameter the REST providers expect.
func (l League) ProviderSeason(seasonYear int) int {
	if l.CalendarYear {
		return seasonYear
	}
	return seasonYear - 1
}

// Allows reports whether a team name may be created in the league.
// An empty whitelist allows everything.
func (l League) Allows(teamName string) bool {
	if len(l.AllowedTeams) == 0 {
		return true
	}
	for _, allowed := range l.AllowedTeams {
		if textnorm.Equal(allowed, teamName) {
			return true
		}
	}
	return false
}

// Catalog is the read-only set of configured leagues.
type Catalog struct {
	leagues    []League
	byKey      map[string]int
	byDivision map[string]int
	byProvider map[string][]int
}

func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read league catalog %s: %w", path, err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Catalog, error) {
	var doc struct {
		Leagues []League `yaml:"leagues" validate:"required,dive"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode league catalog: %w", err)
	}
	if err := validator.New().Struct(doc); err != nil {
		return nil, fmt.Errorf("validate league catalog: %w", err)
	}
	return New(doc.Leagues)
}

// New indexes leagues, rejecting duplicate (name, country) pairs and
// duplicate division codes.
func New(leagues []League) (*Catalog, error) {
	c := &Catalog{
		leagues:    make([]League, 0, len(leagues)),
		byKey:      make(map[string]int, len(leagues)),
		byDivision: make(map[string]int, len(leagues)),
		byProvider: make(map[string][]int),
	}
	for _, item := range leagues {
		key := foldKey(item.Name, item.Country)
		if _, exists := c.byKey[key]; exists {
			return nil, fmt.Errorf("duplicate league %s", item.Key())
		}
		division := strings.ToUpper(strings.TrimSpace(item.Division))
		if _, exists := c.byDivision[division]; exists {
			return nil, fmt.Errorf("duplicate division code %s", division)
		}
		if item.Scraper != nil {
			normalizeLayout(&item.Scraper.Layout)
		}

		idx := len(c.leagues)
		c.leagues = append(c.leagues, item)
		c.byKey[key] = idx
		c.byDivision[division] = idx
		for _, name := range append([]string{item.Name}, item.ProviderNames...) {
			folded := textnorm.Fold(name)
			if folded == "" {
				continue
			}
			c.byProvider[folded] = append(c.byProvider[folded], idx)
		}
	}
	return c, nil
}

func (c *Catalog) Leagues() []League {
	out := make([]League, len(c.leagues))
	copy(out, c.leagues)
	return out
}

// Lookup finds a league by name and country, ignoring case and accents.
func (c *Catalog) Lookup(name, country string) (League, bool) {
	idx, ok := c.byKey[foldKey(name, country)]
	if !ok {
		return League{}, false
	}
	return c.leagues[idx], true
}

func (c *Catalog) ByDivision(code string) (League, bool) {
	idx, ok := c.byDivision[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return League{}, false
	}
	return c.leagues[idx], true
}

// ByProviderName maps a provider's league spelling to a catalog league.
// Country disambiguates names shared across countries ("Premier League",
// "Serie A"); an empty country only matches an unambiguous name.
func (c *Catalog) ByProviderName(name, country string) (League, bool) {
	candidates := c.byProvider[textnorm.Fold(name)]
	if len(candidates) == 0 {
		return League{}, false
	}
	if strings.TrimSpace(country) == "" {
		if len(candidates) == 1 {
			return c.leagues[candidates[0]], true
		}
		return League{}, false
	}
	for _, idx := range candidates {
		if countryMatches(c.leagues[idx].Country, country) {
			return c.leagues[idx], true
		}
	}
	return League{}, false
}

// Select resolves a league by division code or by name and country.
func (c *Catalog) Select(name, country, division string) (League, error) {
	if strings.TrimSpace(division) != "" {
		item, ok := c.ByDivision(division)
		if !ok {
			return League{}, fmt.Errorf("unknown division code %q", division)
		}
		return item, nil
	}
	item, ok := c.Lookup(name, country)
	if !ok {
		return League{}, fmt.Errorf("league %q (%s) is not in the catalog", name, country)
	}
	return item, nil
}

// countryAliases holds English and local spellings providers mix freely.
var countryAliases = map[string]string{
	"inglaterra":       "england",
	"espanha":          "spain",
	"alemanha":         "germany",
	"italia":           "italy",
	"franca":           "france",
	"brasil":           "brazil",
	"holanda":          "netherlands",
	"turquia":          "turkey",
	"turkiye":          "turkey",
	"belgica":          "belgium",
	"dinamarca":        "denmark",
	"grecia":           "greece",
	"suica":            "switzerland",
	"republica tcheca": "czech republic",
	"czechia":          "czech republic",
	"finlandia":        "finland",
	"noruega":          "norway",
	"suecia":           "sweden",
	"polonia":          "poland",
	"ucrania":          "ukraine",
	"japao":            "japan",
}

func countryMatches(a, b string) bool {
	return canonicalCountry(a) == canonicalCountry(b)
}

func canonicalCountry(v string) string {
	folded := textnorm.Fold(v)
	if mapped, ok := countryAliases[folded]; ok {
		return mapped
	}
	return folded
}

func foldKey(name, country string) string {
	return textnorm.Fold(name) + "|" + canonicalCountry(country)
}

func normalizeLayout(layout *TableLayout) {
	if strings.TrimSpace(layout.Rows) == "" {
		layout.Rows = "table tr"
	}
	if len(layout.DateLayouts) == 0 {
		layout.DateLayouts = []string{"02/01/2006 15:04", "02/01/2006", "Mon 2 Jan"}
	}
	if layout.HalfColumn == 0 {
		layout.HalfColumn = -1
	}
	if strings.TrimSpace(layout.Location) == "" {
		layout.Location = "UTC"
	}
}
