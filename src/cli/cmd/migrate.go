package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sofmeright/waxlint/src/config"
)

var (
	migrateInPlace bool
	migrateOutput  string
)

var configMigrateCmd = &cobra.Command{
	Use:   "migrate [file]",
	Short: "Migrate a config to the latest schema version",
	Long: `Migrate a waxlint config file to the latest schema version.

A file without a version field is read as editor plugin settings, where
only api_key is carried over.

By default, prints the migrated config to stdout. Use --in-place to
overwrite the file, or --output to write to a different path.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigrate,
}

func init() {
	configMigrateCmd.Flags().BoolVarP(&migrateInPlace, "in-place", "i", false, "overwrite the config file in place")
	configMigrateCmd.Flags().StringVarP(&migrateOutput, "output", "o", "", "write migrated config to this path")

	configCmd.AddCommand(configMigrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	inputPath := config.DefaultConfigFile
	if len(args) > 0 {
		inputPath = args[0]
	} else if cfgFile != "" {
		inputPath = cfgFile
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputPath, err)
	}

	migrated, err := config.MigrateToLatest(data)
	if err != nil {
		return err
	}

	switch {
	case migrateInPlace:
		if err := os.WriteFile(inputPath, migrated, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", inputPath, err)
		}
		fmt.Fprintf(os.Stderr, "  migrated %s (in-place)\n", inputPath)

	case migrateOutput != "":
		if err := os.WriteFile(migrateOutput, migrated, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", migrateOutput, err)
		}
		fmt.Fprintf(os.Stderr, "  migrated %s → %s\n", inputPath, migrateOutput)

	default:
		fmt.Fprint(cmd.OutOrStdout(), string(migrated))
	}
	return nil
}
