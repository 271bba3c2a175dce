package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/riskibarqy/betstats/internal/catalog"
)

// leagueFlags selects catalog leagues by name and country, division code,
// or all of them.
type leagueFlags struct {
	name     string
	country  string
	division string
	all      bool
}

func (f *leagueFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "league_name", "", "league name as listed in the catalog")
	cmd.Flags().StringVar(&f.country, "country", "", "league country, required with --league_name")
	cmd.Flags().StringVar(&f.division, "division", "", "division code, e.g. E0")
	cmd.Flags().BoolVar(&f.all, "all", false, "every league in the catalog")
	cmd.MarkFlagsMutuallyExclusive("all", "league_name")
	cmd.MarkFlagsMutuallyExclusive("all", "division")
}

func (f leagueFlags) empty() bool {
	return !f.all && strings.TrimSpace(f.name) == "" && strings.TrimSpace(f.division) == ""
}

// resolve returns the selected leagues. An empty selection is an error
// unless defaultAll is set.
func (f leagueFlags) resolve(cat *catalog.Catalog, defaultAll bool) ([]catalog.League, error) {
	if f.all || (defaultAll && f.empty()) {
		return cat.Leagues(), nil
	}
	if f.empty() {
		return nil, usagef("one of --league_name with --country, --division or --all is required")
	}
	if strings.TrimSpace(f.division) == "" && strings.TrimSpace(f.country) == "" {
		return nil, usagef("--country is required with --league_name")
	}
	item, err := cat.Select(f.name, f.country, f.division)
	if err != nil {
		return nil, usageError{err: err}
	}
	return []catalog.League{item}, nil
}
