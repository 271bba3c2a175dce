package footballdata

type matchesEnvelope struct {
	Matches []apiMatch `json:"matches"`
}

type apiMatch struct {
	ID          int64          `json:"id"`
	UTCDate     string         `json:"utcDate"`
	Status      string         `json:"status"`
	Competition apiCompetition `json:"competition"`
	Area        apiArea        `json:"area"`
	HomeTeam    apiTeam        `json:"homeTeam"`
	AwayTeam    apiTeam        `json:"awayTeam"`
	Score       apiScore       `json:"score"`
}

type apiCompetition struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

type apiArea struct {
	Name string `json:"name"`
}

type apiTeam struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
}

type apiScore struct {
	FullTime apiScorePair `json:"fullTime"`
	HalfTime apiScorePair `json:"halfTime"`
}

type apiScorePair struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}
