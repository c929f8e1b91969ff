package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/huanfeng/androidgen-cli/internal/errors"
	"github.com/huanfeng/androidgen-cli/internal/i18n"
	"github.com/huanfeng/androidgen-cli/pkg/sdk"
	"github.com/huanfeng/androidgen-cli/pkg/settings"
	"github.com/huanfeng/androidgen-cli/pkg/system"
)

var (
	sdkProjectPath string
	sdkCategory    string
	sdkPattern     string
	sdkFormat      string
	sdkInstallName string
)

var sdkCmd = &cobra.Command{
	Use:   "android-sdk",
	Short: "Inspect and manage Android SDK packages",
	Long: `Inspect and manage the packages of the registered Android SDK through sdkmanager.

The SDK root is read from the sdk.root setting.`,
}

var sdkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List SDK packages",
	Long: `List installed, available or updatable SDK packages whose path matches a glob.

Examples:
  androidgen android-sdk list
  androidgen android-sdk list --category available --pattern "build-tools;*"
  androidgen android-sdk list --category updatable --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		category, ok := sdk.ParseCategory(sdkCategory)
		if !ok {
			return errors.NewConfigurationError("INVALID_CATEGORY",
				fmt.Sprintf("unknown category '%s', expected installed, available or updatable", sdkCategory))
		}
		manager, err := openSDK(cmd)
		if err != nil {
			return err
		}

		rows := []sdk.Row{}
		for _, p := range manager.GetPackageList(sdkPattern, category) {
			rows = append(rows, sdk.ToRow(p))
		}
		return writeOutput(cmd.OutOrStdout(), sdkFormat, rows, func(tw *tabwriter.Writer) {
			if category == sdk.Updatable {
				fmt.Fprintln(tw, "PATH\tINSTALLED\tAVAILABLE\tDESCRIPTION")
				for _, r := range rows {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Path, r.Version, r.AvailableVersion, r.Description)
				}
				return
			}
			fmt.Fprintln(tw, "PATH\tVERSION\tDESCRIPTION")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Path, r.Version, r.Description)
			}
		})
	},
}

var sdkInstallCmd = &cobra.Command{
	Use:   "install <glob>",
	Short: "Install the newest package matching a glob",
	Long: `Install the highest version of the available package whose path matches the glob.
Nothing is installed when a matching package is already present.

Examples:
  androidgen android-sdk install "platforms;android-33"
  androidgen android-sdk install "build-tools;34.*" --name "Build tools"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := openSDK(cmd)
		if err != nil {
			return err
		}
		name := sdkInstallName
		if name == "" {
			name = args[0]
		}
		pkg, err := manager.InstallPackage(cmd.Context(), args[0], name)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), i18n.T("sdk.installed", map[string]interface{}{
			"Path":     pkg.Path(),
			"Version":  pkg.Version(),
			"Location": manager.InstallPath(pkg),
		}))
		return nil
	},
}

var sdkLicensesCmd = &cobra.Command{
	Use:   "licenses",
	Short: "Check that the SDK licenses are accepted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := openSDK(cmd)
		if err != nil {
			return err
		}
		if err := manager.CheckLicenses(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), i18n.T("sdk.licenses_ok", nil))
		return nil
	},
}

func openSDK(cmd *cobra.Command) (*sdk.Manager, error) {
	view, err := openSettings(sdkProjectPath)
	if err != nil {
		return nil, err
	}
	runner := system.NewExecRunner(view.Get(settings.KeyJavaHome))
	return sdk.NewManager(cmd.Context(), view.Get(settings.KeySDKRoot), runner, logger)
}

func init() {
	rootCmd.AddCommand(sdkCmd)
	sdkCmd.AddCommand(sdkListCmd, sdkInstallCmd, sdkLicensesCmd)

	sdkCmd.PersistentFlags().StringVar(&sdkProjectPath, "project-path", "", "project whose settings override the global ones")

	sdkListCmd.Flags().StringVar(&sdkCategory, "category", "installed", "installed, available or updatable")
	sdkListCmd.Flags().StringVar(&sdkPattern, "pattern", "*", "glob matched against package paths")
	sdkListCmd.Flags().StringVarP(&sdkFormat, "format", "f", formatTable, "output format (table, json, yaml)")

	sdkInstallCmd.Flags().StringVar(&sdkInstallName, "name", "", "display name used in messages")
}
