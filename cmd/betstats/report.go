package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/riskibarqy/betstats/internal/catalog"
	"github.com/riskibarqy/betstats/internal/domain/standing"
	"github.com/riskibarqy/betstats/internal/platform/keypool"
	"github.com/riskibarqy/betstats/internal/usecase"
)

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func runLabel(executed bool) string {
	if executed {
		return "executed"
	}
	return "dry run"
}

func printIngest(out io.Writer, result usecase.IngestResult) {
	fmt.Fprintf(out, "ingest %s run=%s (%s)\n", result.Mode, result.RunID, runLabel(result.Executed))
	if result.LiveSkipped {
		fmt.Fprintf(out, "live window closed: %s\n", result.LiveReason)
		return
	}

	w := newTable(out)
	fmt.Fprintln(w, "LEAGUE\tSOURCE\tFETCHED\tINSERTED\tUPDATED\tUNCHANGED\tSKIPPED\tINVALID\tUNRESOLVED\tGOALS\tERROR")
	for _, item := range result.Leagues {
		errText := ""
		if item.Err != nil {
			errText = item.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
			item.League, item.Source, item.Fetched, item.Inserted, item.Updated, item.Unchanged,
			item.Skipped, item.Invalid, item.Unresolved, item.Goals, errText)
	}
	_ = w.Flush()
}

func printDedup(out io.Writer, item catalog.League, result usecase.DedupResult) {
	fmt.Fprintf(out, "dedup %s (%s): %d group(s), %d match(es) to delete\n",
		item.Key(), runLabel(result.Executed), len(result.Groups), result.Deleted)
	if len(result.Groups) == 0 {
		return
	}

	w := newTable(out)
	fmt.Fprintln(w, "DAY\tHOME\tAWAY\tKEEP\tDROP")
	for _, group := range result.Groups {
		dropped := make([]string, 0, len(group.Drop))
		for _, m := range group.Drop {
			dropped = append(dropped, fmt.Sprint(m.ID))
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n",
			group.Day.Format("2006-01-02"), group.HomeTeamID, group.AwayTeamID, group.Keep.ID, strings.Join(dropped, ","))
	}
	_ = w.Flush()
}

func printStandings(out io.Writer, title string, rows []standing.Standing) {
	fmt.Fprintln(out, title)
	w := newTable(out)
	fmt.Fprintln(w, "POS\tTEAM\tP\tW\tD\tL\tGF\tGA\tGD\tPTS")
	for _, row := range rows {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%+d\t%d\n",
			row.Position, row.TeamName, row.Played, row.Won, row.Drawn, row.Lost,
			row.GoalsFor, row.GoalsAgainst, row.GoalDifference(), row.Points)
	}
	_ = w.Flush()
}

func printCatalog(out io.Writer, leagues []catalog.League) {
	w := newTable(out)
	fmt.Fprintln(w, "DIVISION\tLEAGUE\tCOUNTRY\tSEASON\tSOURCES")
	for _, item := range leagues {
		season := "split"
		if item.CalendarYear {
			season = "calendar"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", item.Division, item.Name, item.Country, season, strings.Join(configuredSources(item), ","))
	}
	_ = w.Flush()
}

func configuredSources(item catalog.League) []string {
	out := make([]string, 0, 5)
	if item.FootballData != nil {
		out = append(out, "football-data")
	}
	if item.APIFootball != nil {
		out = append(out, "api-football")
	}
	if item.OddsAPI != nil {
		out = append(out, "odds-api")
	}
	if item.CSVArchive != nil {
		out = append(out, "csv-archive")
	}
	if item.Scraper != nil {
		out = append(out, "scraper")
	}
	return out
}

func printCatalogSync(out io.Writer, result usecase.CatalogSyncResult, executed bool) {
	fmt.Fprintf(out, "catalog sync (%s): %d existing, %d created\n", runLabel(executed), len(result.Existing), len(result.Created))
	for _, item := range result.Created {
		fmt.Fprintf(out, "  + %s (%s)\n", item.Name, item.Country)
	}
}

func printQuota(out io.Writer, names []string, statuses map[string][]keypool.CredentialStatus) {
	w := newTable(out)
	fmt.Fprintln(w, "PROVIDER\tCREDENTIAL\tUSED\tLIMIT\tREMAINING")
	for _, name := range names {
		if len(statuses[name]) == 0 {
			fmt.Fprintf(w, "%s\t-\t-\t-\t-\n", name)
			continue
		}
		for _, status := range statuses[name] {
			limit, remaining := "unlimited", "unlimited"
			if status.DailyLimit > 0 {
				limit, remaining = fmt.Sprint(status.DailyLimit), fmt.Sprint(status.Remaining)
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", name, status.ID, status.Used, limit, remaining)
		}
	}
	_ = w.Flush()
}
