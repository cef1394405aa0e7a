package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	configfile "github.com/trenlab/kontent-cli/internal/adapters/driven/config/file"
	"github.com/trenlab/kontent-cli/internal/core/ports/driving"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [source-dir]",
	Short: "Ingest source documents into the taxonomy",
	Long: `Extracts every document in the source directory, classifies it into
the station/section taxonomy and materialises it as content records.
Failing files are reported and skipped; the run continues.

If no directory is given, the configured source_dir is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	sourceDir, err := resolveSourceDir(args)
	if err != nil {
		return err
	}

	report, err := ingestService.Ingest(cmd.Context(), sourceDir)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Files seen:    %d\n", report.FilesSeen)
	cmd.Printf("Extracted:     %d\n", report.Extracted)
	cmd.Printf("Records saved: %d\n", report.Materialized)
	cmd.Printf("Failed:        %d\n", report.Failed)
	for _, f := range report.PerFile {
		if f.Status == driving.StatusErrored {
			cmd.Printf("  %s: %s\n", f.FileName, f.Error)
		}
	}
	return nil
}

// resolveSourceDir picks the source directory from the argument or the
// configured default.
func resolveSourceDir(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if config != nil {
		if dir := config.GetString(configfile.KeySourceDir); dir != "" {
			return dir, nil
		}
	}
	return "", errors.New("no source directory: pass one or set source_dir in the config")
}
