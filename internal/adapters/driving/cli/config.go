package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	configfile "github.com/trenlab/kontent-cli/internal/adapters/driven/config/file"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage pipeline configuration",
	Long: `View and set configuration values stored in config.toml.

Known keys:
  source_dir  - default source directory for ingest and report
  assets_dir  - public assets directory
  data_dir    - metadata database directory
  chunk_size  - maximum record size in bytes for text splitting`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if config == nil {
		return errors.New("config store not configured")
	}

	for _, key := range []string{
		configfile.KeySourceDir,
		configfile.KeyAssetsDir,
		configfile.KeyDataDir,
	} {
		value := config.GetString(key)
		if value == "" {
			value = "(unset)"
		}
		cmd.Printf("%-12s %s\n", key, value)
	}
	chunk := config.GetInt(configfile.KeyChunkSize)
	if chunk == 0 {
		cmd.Printf("%-12s (default)\n", configfile.KeyChunkSize)
	} else {
		cmd.Printf("%-12s %d\n", configfile.KeyChunkSize, chunk)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if config == nil {
		return errors.New("config store not configured")
	}

	key, raw := args[0], args[1]
	var value any = raw
	if key == configfile.KeyChunkSize {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return fmt.Errorf("chunk_size must be a positive integer, got %q", raw)
		}
		value = n
	}

	if err := config.Set(key, value); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	cmd.Printf("%s = %s\n", key, raw)
	return nil
}
