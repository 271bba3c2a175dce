package querybuilder

import (
	"testing"
	"time"
)

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "name").
		From("teams").
		Where(Eq("league_id", int64(7)), EqFold("name", " Arsenal ")).
		OrderBy("id").
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, name FROM teams WHERE league_id = $1 AND LOWER(name) = LOWER($2) ORDER BY id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != int64(7) || args[1] != "Arsenal" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_Range(t *testing.T) {
	from := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	query, args, err := Select("*").
		From("matches").
		Where(Eq("home_team_id", int64(1)), Range("match_date", from, to)).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT * FROM matches WHERE home_team_id = $1 AND match_date >= $2 AND match_date < $3"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[1] != from || args[2] != to {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("leagues").
		Columns("name", "country").
		Values("Premier League", "England").
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO leagues (name, country) VALUES ($1, $2) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "Premier League" || args[1] != "England" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModel(t *testing.T) {
	type row struct {
		LeagueID int64  `db:"league_id"`
		Name     string `db:"name"`
		Ignored  string `db:"-"`
		internal string
	}

	query, args, err := InsertModel("teams", row{LeagueID: 3, Name: "Leeds Utd", internal: "x"}, "RETURNING id")
	if err != nil {
		t.Fatalf("build insert model query: %v", err)
	}

	wantQuery := "INSERT INTO teams (league_id, name) VALUES ($1, $2) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != int64(3) || args[1] != "Leeds Utd" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("matches").
		Set("status", "FINISHED").
		SetNow("updated_at").
		Where(Eq("id", int64(9))).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE matches SET status = $1, updated_at = NOW() WHERE id = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "FINISHED" || args[1] != int64(9) {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := Update("matches").Set("status", "LIVE").ToSQL(); err == nil {
		t.Fatalf("expected error for unconditioned update")
	}
}

func TestInsertBuilder_MultiRow(t *testing.T) {
	query, args, err := InsertInto("goals").
		Columns("match_id", "minute").
		Values(int64(4), 12).
		Values(int64(4), 77).
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO goals (match_id, minute) VALUES ($1, $2), ($3, $4)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[3] != 77 {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := InsertInto("goals").Columns("match_id", "minute").Values(int64(4)).ToSQL(); err == nil {
		t.Fatalf("expected error for short row")
	}
}

func TestExpr_ExtraPlaceholdersKept(t *testing.T) {
	query, args, err := Select("*").From("matches").Where(Expr("kickoff_at >= ? AND note = '?'", "x")).ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}
	if query != "SELECT * FROM matches WHERE kickoff_at >= $1 AND note = '?'" || len(args) != 1 {
		t.Fatalf("unexpected query=%s args=%v", query, args)
	}
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("standings").
		Where(Eq("league_id", int64(1)), Eq("season_id", int64(2))).
		ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}

	wantQuery := "DELETE FROM standings WHERE league_id = $1 AND season_id = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := DeleteFrom("standings").ToSQL(); err == nil {
		t.Fatalf("expected error for unconditioned delete")
	}
}

func TestInCondition_Empty(t *testing.T) {
	query, args, err := DeleteFrom("matches").Where(In("id", nil)).ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}
	if query != "DELETE FROM matches WHERE 1=0" || len(args) != 0 {
		t.Fatalf("unexpected query=%s args=%v", query, args)
	}
}
