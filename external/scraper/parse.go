package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/betstats/internal/catalog"
	"github.com/riskibarqy/betstats/internal/domain/match"
)

var (
	scoreRegex = regexp.MustCompile(`^\(?\s*(\d{1,2})\s*[-–]\s*(\d{1,2})\s*\)?$`)
	clockRegex = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
)

var defaultDateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02.01.2006",
	"2 Jan 2006",
	"Mon 2 Jan",
	"2 Jan",
}

// ParseResult reads a score cell. A plain score means the match is over;
// postponement and cancellation markers map to their statuses; anything
// else is a fixture still to be played.
func ParseResult(value string) (match.Status, *int, *int) {
	text := strings.TrimSpace(value)
	if groups := scoreRegex.FindStringSubmatch(text); groups != nil {
		home, _ := strconv.Atoi(groups[1])
		away, _ := strconv.Atoi(groups[2])
		return match.StatusFinished, &home, &away
	}

	lower := strings.ToLower(text)
	switch {
	case strings.HasPrefix(lower, "pp"), strings.HasPrefix(lower, "postp"), strings.HasPrefix(lower, "susp"):
		return match.StatusPostponed, nil, nil
	case strings.HasPrefix(lower, "canc"), strings.HasPrefix(lower, "abd"), strings.HasPrefix(lower, "aband"):
		return match.StatusCancelled, nil, nil
	default:
		return match.StatusScheduled, nil, nil
	}
}

// ParseDate reads a date cell in loc and returns it in UTC. A kickoff
// clock in the cell is honoured. Layouts without a year take it from the
// season: split seasons start in August of the previous year.
func ParseDate(value string, layouts []string, loc *time.Location, league catalog.League, seasonYear int) (time.Time, error) {
	text := strings.TrimSpace(value)
	hour, minute := 0, 0
	if groups := clockRegex.FindStringSubmatch(text); groups != nil {
		hour, _ = strconv.Atoi(groups[1])
		minute, _ = strconv.Atoi(groups[2])
		text = strings.TrimSpace(clockRegex.ReplaceAllString(text, ""))
	}
	if text == "" {
		return time.Time{}, fmt.Errorf("empty date cell")
	}
	if len(layouts) == 0 {
		layouts = defaultDateLayouts
	}

	for _, layout := range layouts {
		parsed, err := time.Parse(layout, text)
		if err != nil {
			continue
		}
		year := parsed.Year()
		if year == 0 {
			year = seasonYear
			if !league.CalendarYear && parsed.Month() >= time.August {
				year = seasonYear - 1
			}
		}
		if hour > 23 || minute > 59 {
			hour, minute = 0, 0
		}
		return time.Date(year, parsed.Month(), parsed.Day(), hour, minute, 0, 0, loc).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}
