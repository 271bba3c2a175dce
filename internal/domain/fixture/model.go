package fixture

import (
	"strings"
	"time"

	"github.com/riskibarqy/betstats/internal/domain/match"
)

// Provider source names, also used as external id namespaces.
const (
	SourceFootballData = "football-data"
	SourceAPIFootball  = "api-football"
	SourceOddsAPI      = "odds-api"
	SourceScraper      = "scraper"
	SourceCSVArchive   = "csv-archive"
)

var externalPrefixes = map[string]string{
	SourceFootballData: "fd",
	SourceAPIFootball:  "af",
	SourceOddsAPI:      "odds",
	SourceScraper:      "web",
	SourceCSVArchive:   "csv",
}

// Fixture is one provider record after normalization, before it is matched
// against stored matches.
type Fixture struct {
	Source     string `validate:"required"`
	ExternalID string `validate:"omitempty,max=64"`
	LeagueName string
	Country    string

	Date   time.Time    `validate:"required"`
	Status match.Status `validate:"required"`

	HomeTeam       string `validate:"required,max=120"`
	AwayTeam       string `validate:"required,max=120"`
	HomeExternalID string `validate:"omitempty,max=64"`
	AwayExternalID string `validate:"omitempty,max=64"`

	HomeScore     *int `validate:"omitempty,min=0,max=99"`
	AwayScore     *int `validate:"omitempty,min=0,max=99"`
	HalfHomeScore *int `validate:"omitempty,min=0,max=99"`
	HalfAwayScore *int `validate:"omitempty,min=0,max=99"`

	// ReliableKickoff is false for sources whose kickoff time can be off by
	// a day (timezone-less HTML tables, odds feeds).
	ReliableKickoff bool

	Goals []Goal `validate:"omitempty,dive"`
}

// Goal is a provider-reported scoring event keyed by team side.
type Goal struct {
	Home        bool
	Minute      int `validate:"min=0,max=150"`
	ExtraMinute *int
	Scorer      string `validate:"max=120"`
	OwnGoal     bool
	Penalty     bool
}

// HasScore reports whether both full-time scores are present.
func (f Fixture) HasScore() bool {
	return f.HomeScore != nil && f.AwayScore != nil
}

// ExternalKey namespaces a raw provider id so ids from different providers
// never collide in the shared external_id column.
func ExternalKey(source, rawID string) string {
	rawID = strings.TrimSpace(rawID)
	if rawID == "" || rawID == "0" {
		return ""
	}
	prefix, ok := externalPrefixes[source]
	if !ok {
		prefix = source
	}
	return prefix + ":" + rawID
}

// RawExternalID strips the namespace of source from key. It reports false
// when key belongs to another provider.
func RawExternalID(source, key string) (string, bool) {
	prefix, ok := externalPrefixes[source]
	if !ok {
		prefix = source
	}
	rawID, found := strings.CutPrefix(key, prefix+":")
	if !found || rawID == "" {
		return "", false
	}
	return rawID, true
}
