package team

import (
	"fmt"
	"strings"
)

// Team is a club inside one league. The same real-world club in two leagues
// is two rows. ExternalID links to one upstream provider's id.
type Team struct {
	ID         int64
	LeagueID   int64
	Name       string
	ExternalID string
}

func (t Team) Validate() error {
	if t.LeagueID <= 0 {
		return fmt.Errorf("team league id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("team name is required")
	}
	return nil
}
