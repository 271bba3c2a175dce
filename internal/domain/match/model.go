package match

import (
	"fmt"
	"time"
)

// Match is one stored fixture. Scores are nil until a provider reports them.
type Match struct {
	ID            int64
	LeagueID      int64
	SeasonID      int64
	HomeTeamID    int64
	AwayTeamID    int64
	Date          time.Time
	Status        Status
	HomeScore     *int
	AwayScore     *int
	HalfHomeScore *int
	HalfAwayScore *int
	ExternalID    string
	UpdatedAt     time.Time
}

func (m Match) Validate() error {
	switch {
	case m.LeagueID <= 0:
		return fmt.Errorf("match league id is required")
	case m.SeasonID <= 0:
		return fmt.Errorf("match season id is required")
	case m.HomeTeamID <= 0 || m.AwayTeamID <= 0:
		return fmt.Errorf("match teams are required")
	case m.HomeTeamID == m.AwayTeamID:
		return fmt.Errorf("match home and away team must differ")
	case m.Date.IsZero():
		return fmt.Errorf("match date is required")
	case !m.Status.Valid():
		return fmt.Errorf("invalid match status %q", m.Status)
	}
	return nil
}

// HasScore reports whether both full-time scores are present.
func (m Match) HasScore() bool {
	return m.HomeScore != nil && m.AwayScore != nil
}

// Day is the UTC calendar day of the kickoff, used for dedup grouping.
func (m Match) Day() time.Time {
	return DayOf(m.Date)
}

// DayOf truncates t to midnight UTC.
func DayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// IntPtr is a helper for optional scores.
func IntPtr(v int) *int {
	return &v
}
