package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sofmeright/waxlint/src/config"
	"github.com/sofmeright/waxlint/src/version"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and maintain the waxlint config",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective config, defaults included",
	RunE: func(cmd *cobra.Command, args []string) error {
		shown := *cfg
		if shown.API.Key != "" {
			shown.API.Key = "********"
		}
		name := cfg.Path
		if name == "" {
			name = config.DefaultConfigFile
		}
		data, err := config.Encode(&shown, name)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the config for errors",
	RunE: func(cmd *cobra.Command, args []string) error {
		warnings, err := config.Validate(cfg, version.Version)
		for _, w := range warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}
		if err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "config ok")
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the path of the loaded config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Path == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "(defaults)")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), cfg.Path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configValidateCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}
