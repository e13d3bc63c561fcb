package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"items-planning/core/config"
	"items-planning/core/database"
	"items-planning/core/planning"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// sitesCmd manages the target site list of reconciliation runs.
var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "Show or change the configured target sites",
}

var sitesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the site ids reconciliation runs target",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, fallback, err := openSiteStore()
		if err != nil {
			return err
		}

		ctx := context.Background()
		stored, ok, err := store.ConfigurationValue(ctx, planning.SiteIDsSetting)
		if err != nil {
			return err
		}
		ids, err := planning.NewConfiguredSites(store, fallback).SiteIDs(ctx)
		if err != nil {
			return err
		}

		printSites(os.Stdout, stored, ok, fallback, ids)
		return nil
	},
}

var sitesSetCmd = &cobra.Command{
	Use:   "set <ids>",
	Short: "Store a comma-separated site id list (e.g. 1,4,9)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openSiteStore()
		if err != nil {
			return err
		}

		ids, err := planning.NewConfiguredSites(store, "").SetSiteIDs(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%s %s = %v\n", color.New(color.FgGreen).Sprint("saved"), planning.SiteIDsSetting, ids)
		return nil
	},
}

func init() {
	sitesCmd.AddCommand(sitesShowCmd, sitesSetCmd)
	RootCmd.AddCommand(sitesCmd)
}

func openSiteStore() (*planning.GormStore, string, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config: %w", err)
	}
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, "", fmt.Errorf("database connection required: %w", err)
	}
	return planning.NewStore(db), cfg.Reconcile.SiteIDs, nil
}

func printSites(w io.Writer, stored string, ok bool, fallback string, ids []int) {
	if ok && stored != "" {
		fmt.Fprintf(w, "%s = %q\n", planning.SiteIDsSetting, stored)
	} else {
		fmt.Fprintf(w, "%s %s, using reconcile.site_ids = %q\n",
			planning.SiteIDsSetting, color.New(color.FgYellow).Sprint("not set"), fallback)
	}
	if len(ids) == 0 {
		fmt.Fprintf(w, "target sites: %s\n", color.New(color.FgRed).Sprint("none"))
		return
	}
	fmt.Fprintf(w, "target sites: %v\n", ids)
}
