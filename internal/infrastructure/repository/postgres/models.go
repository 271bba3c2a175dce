package postgres

import (
	"database/sql"
	"time"
)

type leagueTableModel struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Country   string    `db:"country"`
	CreatedAt time.Time `db:"created_at"`
}

type leagueInsertModel struct {
	Name    string `db:"name"`
	Country string `db:"country"`
}

type seasonTableModel struct {
	ID        int64     `db:"id"`
	Year      int       `db:"year"`
	CreatedAt time.Time `db:"created_at"`
}

type teamTableModel struct {
	ID         int64          `db:"id"`
	LeagueID   int64          `db:"league_id"`
	Name       string         `db:"name"`
	ExternalID sql.NullString `db:"external_id"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

type teamInsertModel struct {
	LeagueID   int64          `db:"league_id"`
	Name       string         `db:"name"`
	ExternalID sql.NullString `db:"external_id"`
}

type matchTableModel struct {
	ID            int64          `db:"id"`
	LeagueID      int64          `db:"league_id"`
	SeasonID      int64          `db:"season_id"`
	HomeTeamID    int64          `db:"home_team_id"`
	AwayTeamID    int64          `db:"away_team_id"`
	KickoffAt     time.Time      `db:"kickoff_at"`
	Status        string         `db:"status"`
	HomeScore     *int           `db:"home_score"`
	AwayScore     *int           `db:"away_score"`
	HalfHomeScore *int           `db:"half_home_score"`
	HalfAwayScore *int           `db:"half_away_score"`
	ExternalID    sql.NullString `db:"external_id"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

type matchInsertModel struct {
	LeagueID      int64          `db:"league_id"`
	SeasonID      int64          `db:"season_id"`
	HomeTeamID    int64          `db:"home_team_id"`
	AwayTeamID    int64          `db:"away_team_id"`
	KickoffAt     time.Time      `db:"kickoff_at"`
	Status        string         `db:"status"`
	HomeScore     *int           `db:"home_score"`
	AwayScore     *int           `db:"away_score"`
	HalfHomeScore *int           `db:"half_home_score"`
	HalfAwayScore *int           `db:"half_away_score"`
	ExternalID    sql.NullString `db:"external_id"`
}

type goalTableModel struct {
	ID          int64  `db:"id"`
	MatchID     int64  `db:"match_id"`
	TeamID      int64  `db:"team_id"`
	Minute      int    `db:"minute"`
	ExtraMinute *int   `db:"extra_minute"`
	Scorer      string `db:"scorer"`
	OwnGoal     bool   `db:"own_goal"`
	Penalty     bool   `db:"penalty"`
}

type standingTableModel struct {
	LeagueID     int64     `db:"league_id"`
	SeasonID     int64     `db:"season_id"`
	TeamID       int64     `db:"team_id"`
	TeamName     string    `db:"team_name"`
	Position     int       `db:"position"`
	Played       int       `db:"played"`
	Won          int       `db:"won"`
	Drawn        int       `db:"drawn"`
	Lost         int       `db:"lost"`
	GoalsFor     int       `db:"goals_for"`
	GoalsAgainst int       `db:"goals_against"`
	Points       int       `db:"points"`
	UpdatedAt    time.Time `db:"updated_at"`
}
