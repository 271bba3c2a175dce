package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/riskibarqy/betstats/internal/catalog"
	"github.com/riskibarqy/betstats/internal/platform/keypool"
)

func newCatalogCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the league catalog and align stored leagues with it",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List catalog leagues and the sources configured for each",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := catalog.Load(c.cfg.CatalogLeaguesPath)
			if err != nil {
				return err
			}
			printCatalog(os.Stdout, cat.Leagues())
			return nil
		},
	}

	var execute bool
	sync := &cobra.Command{
		Use:   "sync",
		Short: "Create stored league rows for catalog leagues that have none",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			result, err := a.Leagues.SyncCatalog(cmd.Context(), execute)
			if err != nil {
				return err
			}
			printCatalogSync(os.Stdout, result, execute)
			return nil
		},
	}
	sync.Flags().BoolVar(&execute, "execute", false, "commit created rows instead of a dry run")

	cmd.AddCommand(list, sync)
	return cmd
}

func newQuotaCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quota",
		Short: "Inspect provider credential quotas",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show today's usage of every provider credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			statuses := make(map[string][]keypool.CredentialStatus, len(a.Pools))
			names := make([]string, 0, len(a.Pools))
			for _, pool := range a.Pools {
				status, err := pool.Status(cmd.Context())
				if err != nil {
					return err
				}
				names = append(names, pool.Name())
				statuses[pool.Name()] = status
			}
			printQuota(os.Stdout, names, statuses)
			return nil
		},
	})
	return cmd
}
