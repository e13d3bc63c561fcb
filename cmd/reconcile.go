package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"items-planning/core/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags shared by the reconcile and enqueue item commands
	templateID   int
	folderName   string
	forceRebuild bool
	yesConfirm   bool
	jsonOutput   bool
)

// reconcileCmd is the parent command for all reconcile operations.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile planning state with the remote form service",
}

// reconcileItemCmd runs one reconciliation inline.
var reconcileItemCmd = &cobra.Command{
	Use:   "item <id>",
	Short: "Reconcile one item now",
	Long: `Runs a reconciliation for one item in this process.

An unchanged item keeps its planning case and only missing remote cases are
created. --force retracts the planning case and replaces every remote case.

Examples:
  # Converge item 42
  reconcile item 42 --template 12 --folder Maintenance

  # Rebuild every remote case, non-interactive
  reconcile item 42 --template 12 --folder Maintenance --force --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runReconcileItem,
}

func init() {
	reconcileCmd.AddCommand(reconcileItemCmd)
	addItemEventFlags(reconcileItemCmd)
	reconcileItemCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm --force (non-interactive)")
	reconcileItemCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run report as JSON")

	RootCmd.AddCommand(reconcileCmd)
}

func addItemEventFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&templateID, "template", 0, "Remote template id (required)")
	cmd.Flags().StringVar(&folderName, "folder", "", "Remote folder name (required)")
	cmd.Flags().BoolVar(&forceRebuild, "force", false, "Retract and recreate even when the item is unchanged")
	_ = cmd.MarkFlagRequired("template")
	_ = cmd.MarkFlagRequired("folder")
}

func itemEvent(arg string) (reconcile.ItemChanged, error) {
	itemID, err := strconv.Atoi(arg)
	if err != nil || itemID <= 0 {
		return reconcile.ItemChanged{}, fmt.Errorf("invalid item id %q", arg)
	}
	return reconcile.ItemChanged{
		ItemID:     itemID,
		TemplateID: templateID,
		FolderName: folderName,
		Force:      forceRebuild,
	}, nil
}

func runReconcileItem(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	ev, err := itemEvent(args[0])
	if err != nil {
		return err
	}

	if ev.Force && !confirmDestructiveAction() {
		fmt.Println("Operation cancelled. No changes were made.")
		return nil
	}

	rt, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	report, err := rt.engine.Handle(ctx, ev)
	if report != nil {
		if jsonOutput {
			data, merr := json.MarshalIndent(report, "", "  ")
			if merr != nil {
				return fmt.Errorf("failed to marshal report: %w", merr)
			}
			fmt.Println(string(data))
		} else {
			printRunReport(rt.logger, report)
		}
	}
	return err
}

// printRunReport logs a run report, one line per site.
func printRunReport(l *zap.Logger, r *reconcile.Report) {
	if r.Skipped {
		l.Info("Item not found, nothing reconciled", zap.Int("item_id", r.ItemID))
		return
	}

	l.Info("Reconciliation report",
		zap.String("run_id", r.RunID),
		zap.Int("item_id", r.ItemID),
		zap.Int("planning_case_id", r.PlanningCaseID),
		zap.Bool("reused", r.Reused),
		zap.Int("folder_id", r.FolderID),
		zap.Int("created", r.Created()),
		zap.Int("deleted", r.Deleted()),
	)
	for _, s := range r.Sites {
		fields := []zap.Field{
			zap.Int("site_id", s.SiteID),
			zap.Bool("created", s.Created),
			zap.Bool("already_fulfilled", s.AlreadyFulfilled),
			zap.Int("retracted", s.Retracted),
			zap.Int("deleted", s.Deleted),
		}
		if s.RemoteCaseID != nil {
			fields = append(fields, zap.Int("remote_case_id", *s.RemoteCaseID))
		}
		if s.CleanupFailures > 0 {
			l.Warn("Site reconciled with cleanup failures", append(fields, zap.Int("cleanup_failures", s.CleanupFailures))...)
			continue
		}
		l.Info("Site reconciled", fields...)
	}
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  --force deletes and recreates every remote case of the item. Type 'yes' to confirm: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	return strings.TrimSpace(response) == "yes"
}
