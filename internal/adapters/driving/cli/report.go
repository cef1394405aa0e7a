package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report [source-dir]",
	Short: "Diff a source directory against the corpus",
	Long: `Lists every file in the source directory with its processing status:
whether text records, a file wrapper or nothing at all was persisted
for it, followed by aggregate counts. Matching is by normalised title,
which all records of one document share.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	if reportService == nil {
		return errors.New("report service not configured")
	}

	sourceDir, err := resolveSourceDir(args)
	if err != nil {
		return err
	}

	report, err := reportService.Report(cmd.Context(), sourceDir)
	if err != nil {
		return fmt.Errorf("report failed: %w", err)
	}

	for _, f := range report.Files {
		switch {
		case f.Error != "":
			cmd.Printf("%-60s %s (%s)\n", f.FileName, f.Status, f.Error)
		case f.Records > 1:
			cmd.Printf("%-60s %s (%d records)\n", f.FileName, f.Status, f.Records)
		default:
			cmd.Printf("%-60s %s\n", f.FileName, f.Status)
		}
	}
	cmd.Printf("\nFiles: %d, with text: %d, as file: %d, not processed: %d, errored: %d\n",
		report.FilesSeen, report.WithText, report.AsFile, report.NotProcessed, report.Errored)
	return nil
}
