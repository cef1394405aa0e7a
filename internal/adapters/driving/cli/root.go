// Package cli is the cobra-based command line adapter. It wires the
// driven adapters into the core services and exposes one command per
// pipeline operation.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/trenlab/kontent-cli/internal/adapters/driven/assets"
	configfile "github.com/trenlab/kontent-cli/internal/adapters/driven/config/file"
	"github.com/trenlab/kontent-cli/internal/adapters/driven/storage/sqlite"
	"github.com/trenlab/kontent-cli/internal/classify"
	"github.com/trenlab/kontent-cli/internal/core/ports/driving"
	"github.com/trenlab/kontent-cli/internal/core/services"
	"github.com/trenlab/kontent-cli/internal/extractors"
	"github.com/trenlab/kontent-cli/internal/logger"
	"github.com/trenlab/kontent-cli/internal/splitter"
)

// version is set at build time via -ldflags.
var version = "dev"

// Persistent flags.
var (
	verbose       bool
	configDir     string
	dataDir       string
	assetsDir     string
	assetsBaseURL string
	rulesPath     string
	overridesPath string
)

// Wired services; nil until initServices runs. Tests swap these for
// mocks.
var (
	config           *configfile.ConfigStore
	store            *sqlite.Store
	ingestService    driving.Ingestor
	reconcileService driving.Reconciler
	reportService    driving.Reporter
)

var rootCmd = &cobra.Command{
	Use:   "kontent",
	Short: "Batch content pipeline for the training portal",
	Long: `kontent ingests source documents (PDF, Word, Excel, PowerPoint) into
the station/section taxonomy of the training portal and keeps the
resulting corpus clean: duplicates are collapsed, curated placement
overrides are applied and empty taxonomy nodes are pruned.`,
	SilenceUsage:      true,
	PersistentPreRunE: initServices,
	PersistentPostRunE: func(*cobra.Command, []string) error {
		return shutdownServices()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.kontent)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "metadata database directory (default ~/.kontent/data)")
	rootCmd.PersistentFlags().StringVar(&assetsDir, "assets-dir", "", "public assets directory (default ~/.kontent/assets)")
	rootCmd.PersistentFlags().StringVar(&assetsBaseURL, "base-url", "/assets", "public base URL of the assets directory")
	rootCmd.PersistentFlags().StringVar(&rulesPath, "rules", "", "classification rules file (default embedded table)")
	rootCmd.PersistentFlags().StringVar(&overridesPath, "overrides", "", "placement overrides file (default embedded table)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// initServices builds the driven adapters and core services. Commands
// that need no services (version, help) skip the wiring.
func initServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	switch cmd.Name() {
	case "version", "help", "completion":
		return nil
	}
	if ingestService != nil {
		// Already wired (tests inject their own services).
		return nil
	}

	var err error
	config, err = configfile.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}

	if dataDir == "" {
		dataDir = config.GetString(configfile.KeyDataDir)
	}
	if assetsDir == "" {
		assetsDir = config.GetString(configfile.KeyAssetsDir)
	}
	if assetsDir == "" {
		assetsDir = defaultAssetsDir()
	}

	store, err = sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	assetStore, err := assets.NewStore(assetsDir, assetsBaseURL)
	if err != nil {
		return fmt.Errorf("opening assets: %w", err)
	}

	classifier := classify.NewClassifier()
	if rulesPath != "" {
		classifier, err = classify.NewClassifierFromFile(rulesPath)
		if err != nil {
			return fmt.Errorf("loading rules: %w", err)
		}
	}
	overrides := classify.DefaultOverrides()
	if overridesPath != "" {
		overrides, err = classify.OverridesFromFile(overridesPath)
		if err != nil {
			return fmt.Errorf("loading overrides: %w", err)
		}
	}

	var splitOpts []splitter.Option
	if chunk := config.GetInt(configfile.KeyChunkSize); chunk > 0 {
		splitOpts = append(splitOpts, splitter.WithMaxLength(chunk))
	}

	materializer := services.NewMaterializer(store, assetStore, splitter.New(splitOpts...))
	ingestService = services.NewIngestService(
		extractors.NewDefaultRegistry(),
		classifier,
		services.NewTaxonomyReconciler(store),
		materializer,
		store,
	)
	reconcileService = services.NewReconcileService(store, overrides)
	reportService = services.NewReportService(extractors.NewDefaultRegistry(), store)
	return nil
}

// shutdownServices closes the store opened by initServices.
func shutdownServices() error {
	if store == nil {
		return nil
	}
	err := store.Close()
	store = nil
	return err
}

// defaultAssetsDir is the fallback public assets location.
func defaultAssetsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".kontent", "assets")
	}
	return filepath.Join(home, ".kontent", "assets")
}
