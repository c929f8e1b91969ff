package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/huanfeng/androidgen-cli/internal/config"
	"github.com/huanfeng/androidgen-cli/internal/errors"
)

var (
	configForce  bool
	configFormat string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the androidgen configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a commented androidgen.yaml",
	Long: `Write a commented androidgen.yaml to path (default ./androidgen.yaml).

Examples:
  androidgen config init
  androidgen config init ~/.config/androidgen/androidgen.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.FileName + ".yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := os.Stat(path); err == nil && !configForce {
			return errors.NewConfigurationError("CONFIG_EXISTS", fmt.Sprintf("%s already exists", path)).
				WithSuggestion("Pass --force to replace it")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return errors.NewFileSystemError(err, fmt.Sprintf("failed to create %s", filepath.Dir(path)))
		}
		if err := config.SaveTemplate(path); err != nil {
			return errors.NewFileSystemError(err, fmt.Sprintf("failed to write %s", path))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		source := cliViper.ConfigFileUsed()
		if source == "" {
			source = "(defaults and environment)"
		}
		return writeOutput(cmd.OutOrStdout(), configFormat, appConfig, func(tw *tabwriter.Writer) {
			fmt.Fprintf(tw, "file\t%s\n", source)
			fmt.Fprintf(tw, "%s\t%s\n", config.KeySettingsDir, appConfig.SettingsDir)
			fmt.Fprintf(tw, "%s\t%s\n", config.KeyEngineRoot, appConfig.EngineRoot)
			fmt.Fprintf(tw, "%s\t%s\n", config.KeyLogLevel, appConfig.Log.Level)
			fmt.Fprintf(tw, "%s\t%s\n", config.KeyLogFormat, appConfig.Log.Format)
			fmt.Fprintf(tw, "%s\t%s\n", config.KeyLogFile, appConfig.Log.File)
			fmt.Fprintf(tw, "%s\t%t\n", config.KeyNoColor, appConfig.NoColor)
			fmt.Fprintf(tw, "%s\t%s\n", config.KeyLang, appConfig.Lang)
		})
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "replace an existing file")
	configShowCmd.Flags().StringVarP(&configFormat, "format", "f", formatTable, "output format (table, json, yaml)")
}
