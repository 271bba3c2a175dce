package match

import "strings"

// Status is the canonical match lifecycle state.
type Status string

const (
	StatusScheduled Status = "Scheduled"
	StatusLive      Status = "Live"
	StatusFinished  Status = "Finished"
	StatusPostponed Status = "Postponed"
	StatusCancelled Status = "Cancelled"
)

var providerStatuses = map[string]Status{
	"NS":        StatusScheduled,
	"TBD":       StatusScheduled,
	"SCHEDULED": StatusScheduled,
	"TIMED":     StatusScheduled,
	"LIVE":      StatusLive,
	"IN_PLAY":   StatusLive,
	"PAUSED":    StatusLive,
	"1H":        StatusLive,
	"HT":        StatusLive,
	"2H":        StatusLive,
	"ET":        StatusLive,
	"BT":        StatusLive,
	"P":         StatusLive,
	"FT":        StatusFinished,
	"AET":       StatusFinished,
	"PEN":       StatusFinished,
	"FINISHED":  StatusFinished,
	"AWARDED":   StatusFinished,
	"PST":       StatusPostponed,
	"POSTPONED": StatusPostponed,
	"SUSP":      StatusPostponed,
	"SUSPENDED": StatusPostponed,
	"CANC":      StatusCancelled,
	"CANCELLED": StatusCancelled,
	"CANCELED":  StatusCancelled,
	"ABD":       StatusCancelled,
	"ABANDONED": StatusCancelled,
}

// ParseStatus maps a provider status code onto a canonical Status.
// Matching ignores case, so canonical names round-trip. Unknown codes map
// to Scheduled.
func ParseStatus(raw string) Status {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if code == "" {
		return StatusScheduled
	}
	if status, ok := providerStatuses[code]; ok {
		return status
	}
	return StatusScheduled
}

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusLive, StatusFinished, StatusPostponed, StatusCancelled:
		return true
	default:
		return false
	}
}

func (s Status) IsLive() bool     { return s == StatusLive }
func (s Status) IsFinished() bool { return s == StatusFinished }

func (s Status) String() string { return string(s) }
