package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/huanfeng/androidgen-cli/internal/version"
	"github.com/huanfeng/androidgen-cli/pkg/agp"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display detailed version information about androidgen.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Info())
		fmt.Fprintf(cmd.OutOrStdout(), "Android Gradle Plugin: up to %s\n", agp.MaxSupported())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
