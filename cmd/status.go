package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"items-planning/core/config"
	"items-planning/core/database"
	"items-planning/core/planning"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var showRetracted bool

// statusCmd prints the planning state of an item.
var statusCmd = &cobra.Command{
	Use:   "status <id>",
	Short: "Show the planning cases and site rows of an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		itemID, err := strconv.Atoi(args[0])
		if err != nil || itemID <= 0 {
			return fmt.Errorf("invalid item id %q", args[0])
		}

		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("database connection required: %w", err)
		}

		ctx := context.Background()
		store := planning.NewStore(db)

		item, err := store.GetItem(ctx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("item %d not found", itemID)
		}

		cases, err := store.ListPlanningCases(ctx, itemID)
		if err != nil {
			return err
		}
		sites, err := planning.NewConfiguredSites(store, cfg.Reconcile.SiteIDs).SiteIDs(ctx)
		if err != nil {
			return err
		}

		printStatus(os.Stdout, item, cases, sites, showRetracted)
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&showRetracted, "all", false, "Include retracted planning cases")
	RootCmd.AddCommand(statusCmd)
}

func printStatus(w io.Writer, item *planning.Item, cases []planning.PlanningCase, siteIDs []int, all bool) {
	bold := color.New(color.Bold)
	fmt.Fprintf(w, "%s %s (%s)\n", bold.Sprintf("Item %d", item.ID), item.Name, item.ItemNumber)
	fmt.Fprintf(w, "  configured sites: %v\n", siteIDs)

	if len(cases) == 0 {
		fmt.Fprintf(w, "  %s\n", color.New(color.FgYellow).Sprint("no planning cases"))
		return
	}

	for _, pc := range cases {
		if !pc.IsActive() && !all {
			continue
		}
		fmt.Fprintf(w, "\n  %s %s  template %d  updated %s\n",
			bold.Sprintf("Planning case #%d", pc.ID),
			stateLabel(pc.WorkflowState),
			pc.RemoteTemplateID,
			pc.UpdatedAt.Format("2006-01-02 15:04"))

		bound := make(map[int]bool)
		for _, s := range pc.Sites {
			bound[s.SiteID] = true
			if !s.IsActive() && !all {
				continue
			}
			fmt.Fprintf(w, "    site %-6d %s  %s\n", s.SiteID, stateLabel(s.WorkflowState), remoteLabel(s))
		}

		if pc.IsActive() {
			for _, id := range siteIDs {
				if !bound[id] {
					fmt.Fprintf(w, "    site %-6d %s\n", id, color.New(color.FgRed).Sprint("MISSING"))
				}
			}
		}
	}
}

func stateLabel(s planning.WorkflowState) string {
	if s == planning.StateActive {
		return color.New(color.FgGreen).Sprint("ACTIVE   ")
	}
	return color.New(color.FgHiBlack).Sprint("RETRACTED")
}

func remoteLabel(s planning.PlanningCaseSite) string {
	if s.IsFulfilled() {
		return fmt.Sprintf("remote case %d", *s.RemoteCaseID)
	}
	if s.IsActive() {
		return color.New(color.FgYellow).Sprint("pending")
	}
	return "-"
}
