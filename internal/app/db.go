package app

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/riskibarqy/betstats/internal/config"
)

const maxTracedQueryLength = 512

func openDB(cfg config.Config) (*sqlx.DB, error) {
	db, err := otelsqlx.Open("postgres",
		dbURLWithParams(cfg.DBURL, connParams(cfg)),
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbName(cfg.DBURL)),
		otelsql.WithQueryFormatter(traceQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxOpenConns)
	return db, nil
}

// connParams are lib/pq parameters added unless the URL sets them itself.
func connParams(cfg config.Config) [][2]string {
	params := [][2]string{{"fallback_application_name", cfg.ServiceName}}
	if cfg.DBDisablePreparedBinary {
		params = append(params, [2]string{"disable_prepared_binary_result", "yes"})
	}
	return params
}

// dbURLWithParams accepts both URL and key=value connection strings.
func dbURLWithParams(raw string, params [][2]string) string {
	raw = strings.TrimSpace(raw)
	if parsed, err := url.Parse(raw); err == nil && parsed.Scheme != "" {
		query := parsed.Query()
		for _, param := range params {
			if param[1] != "" && query.Get(param[0]) == "" {
				query.Set(param[0], param[1])
			}
		}
		parsed.RawQuery = query.Encode()
		return parsed.String()
	}

	out := raw
	for _, param := range params {
		if param[1] == "" || dsnValue(raw, param[0]) != "" {
			continue
		}
		out += " " + param[0] + "=" + param[1]
	}
	return strings.TrimSpace(out)
}

func dbName(raw string) string {
	raw = strings.TrimSpace(raw)
	if parsed, err := url.Parse(raw); err == nil && parsed.Scheme != "" {
		return strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/"))
	}
	return dsnValue(raw, "dbname")
}

func dsnValue(dsn, key string) string {
	for _, token := range strings.Fields(dsn) {
		if value, ok := strings.CutPrefix(token, key+"="); ok {
			return strings.Trim(value, `"'`)
		}
	}
	return ""
}

// traceQuery collapses whitespace so multi-line queries read as one span
// attribute, and caps the length.
func traceQuery(query string) string {
	normalized := strings.Join(strings.Fields(query), " ")
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}
	return normalized[:maxTracedQueryLength] + "..."
}
