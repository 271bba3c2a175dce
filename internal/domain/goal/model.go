package goal

import "fmt"

// Goal is one scoring event. Rows cascade with their match.
type Goal struct {
	ID          int64
	MatchID     int64
	TeamID      int64
	Minute      int
	ExtraMinute *int
	Scorer      string
	OwnGoal     bool
	Penalty     bool
}

func (g Goal) Validate() error {
	if g.MatchID <= 0 || g.TeamID <= 0 {
		return fmt.Errorf("goal match and team are required")
	}
	if g.Minute < 0 || g.Minute > 150 {
		return fmt.Errorf("goal minute %d out of range", g.Minute)
	}
	return nil
}
