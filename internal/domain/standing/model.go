package standing

// Standing is one derived league table row for a (league, season).
type Standing struct {
	LeagueID     int64
	SeasonID     int64
	TeamID       int64
	TeamName     string
	Position     int
	Played       int
	Won          int
	Drawn        int
	Lost         int
	GoalsFor     int
	GoalsAgainst int
	Points       int
}

func (s Standing) GoalDifference() int {
	return s.GoalsFor - s.GoalsAgainst
}
