package apifootball

import (
	"fmt"
	"sort"
	"strings"
)

type fixturesEnvelope struct {
	// Errors is an empty array on success and an object keyed by error
	// kind on failure.
	Errors   any          `json:"errors"`
	Results  int          `json:"results"`
	Response []apiFixture `json:"response"`
}

type apiFixture struct {
	Fixture struct {
		ID     int64  `json:"id"`
		Date   string `json:"date"`
		Status struct {
			Short string `json:"short"`
		} `json:"status"`
	} `json:"fixture"`
	League struct {
		ID      int64  `json:"id"`
		Name    string `json:"name"`
		Country string `json:"country"`
		Season  int    `json:"season"`
	} `json:"league"`
	Teams struct {
		Home apiTeam `json:"home"`
		Away apiTeam `json:"away"`
	} `json:"teams"`
	Goals apiScorePair `json:"goals"`
	Score struct {
		HalfTime apiScorePair `json:"halftime"`
	} `json:"score"`
	Events []apiEvent `json:"events"`
}

type apiTeam struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type apiScorePair struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

type apiEvent struct {
	Time struct {
		Elapsed int  `json:"elapsed"`
		Extra   *int `json:"extra"`
	} `json:"time"`
	Team   apiTeam `json:"team"`
	Player struct {
		Name string `json:"name"`
	} `json:"player"`
	Type   string `json:"type"`
	Detail string `json:"detail"`
}

// errorMessages flattens the errors field. An empty array, null or empty
// object means success.
func (e fixturesEnvelope) errorMessages() map[string]string {
	switch value := e.Errors.(type) {
	case map[string]any:
		if len(value) == 0 {
			return nil
		}
		out := make(map[string]string, len(value))
		for key, item := range value {
			out[key] = fmt.Sprint(item)
		}
		return out
	case []any:
		if len(value) == 0 {
			return nil
		}
		parts := make([]string, 0, len(value))
		for _, item := range value {
			parts = append(parts, fmt.Sprint(item))
		}
		return map[string]string{"error": strings.Join(parts, "; ")}
	case string:
		if strings.TrimSpace(value) == "" {
			return nil
		}
		return map[string]string{"error": value}
	default:
		return nil
	}
}

func formatErrors(messages map[string]string) string {
	keys := make([]string, 0, len(messages))
	for key := range messages {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+messages[key])
	}
	return strings.Join(parts, ", ")
}
