package oddsapi

type apiEvent struct {
	ID           string     `json:"id"`
	SportKey     string     `json:"sport_key"`
	SportTitle   string     `json:"sport_title"`
	CommenceTime string     `json:"commence_time"`
	Completed    bool       `json:"completed"`
	HomeTeam     string     `json:"home_team"`
	AwayTeam     string     `json:"away_team"`
	Scores       []apiScore `json:"scores"`
}

type apiScore struct {
	Name  string `json:"name"`
	Score string `json:"score"`
}
