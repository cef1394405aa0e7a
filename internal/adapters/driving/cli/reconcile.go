package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Run all reconcile passes in order",
	Long: `Runs the three corpus cleanup passes in their fixed order:
deduplication, placement fixing, pruning. Each pass is idempotent, so
reconcile can be rerun after any ingest.`,
	RunE: runReconcile,
}

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Collapse duplicate materials",
	Long: `Groups materials by normalised title across the whole corpus and
keeps only the earliest record of each group.`,
	RunE: runDedupe,
}

var fixPlacementCmd = &cobra.Command{
	Use:   "fix-placement",
	Short: "Apply curated placement overrides",
	Long: `Moves materials whose station or section disagrees with the curated
override table. Missing target sections are created.`,
	RunE: runFixPlacement,
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete empty taxonomy nodes",
	Long: `Deletes sections without materials and stations without sections,
then rewrites each surviving section's material order as a dense
sequence.`,
	RunE: runPrune,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(dedupeCmd)
	rootCmd.AddCommand(fixPlacementCmd)
	rootCmd.AddCommand(pruneCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	if err := runDedupe(cmd, args); err != nil {
		return err
	}
	if err := runFixPlacement(cmd, args); err != nil {
		return err
	}
	return runPrune(cmd, args)
}

func runDedupe(cmd *cobra.Command, _ []string) error {
	if reconcileService == nil {
		return errors.New("reconcile service not configured")
	}

	report, err := reconcileService.Dedupe(cmd.Context())
	if err != nil {
		return fmt.Errorf("dedupe failed: %w", err)
	}
	cmd.Printf("Dedupe: %d groups, %d duplicates, %d removed, %d skipped\n",
		report.Groups, report.Duplicates, report.Removed, report.Skipped)
	return nil
}

func runFixPlacement(cmd *cobra.Command, _ []string) error {
	if reconcileService == nil {
		return errors.New("reconcile service not configured")
	}

	report, err := reconcileService.FixPlacement(cmd.Context())
	if err != nil {
		return fmt.Errorf("fix-placement failed: %w", err)
	}
	cmd.Printf("Placement: %d scanned, %d moved, %d sections created, %d ambiguous\n",
		report.Scanned, report.Moved, report.SectionsCreated, report.Ambiguous)
	return nil
}

func runPrune(cmd *cobra.Command, _ []string) error {
	if reconcileService == nil {
		return errors.New("reconcile service not configured")
	}

	report, err := reconcileService.Prune(cmd.Context())
	if err != nil {
		return fmt.Errorf("prune failed: %w", err)
	}
	cmd.Printf("Prune: %d sections deleted, %d stations deleted, %d resequenced\n",
		report.SectionsDeleted, report.StationsDeleted, report.Resequenced)
	return nil
}
