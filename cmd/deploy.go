package cmd

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/huanfeng/androidgen-cli/internal/errors"
	"github.com/huanfeng/androidgen-cli/internal/i18n"
	"github.com/huanfeng/androidgen-cli/pkg/deploy"
	"github.com/huanfeng/androidgen-cli/pkg/project"
	"github.com/huanfeng/androidgen-cli/pkg/settings"
	"github.com/huanfeng/androidgen-cli/pkg/system"
)

var (
	deployProjectPath string
	deployBuildDir    string
	deployConfig      string
	deployDevice      string
	deployAllDevices  bool
	deployJobs        int
)

var deployCmd = &cobra.Command{
	Use:   "android-deploy",
	Short: "Install a built APK on connected devices",
	Long: `Install the APK built from a generated project with adb.

The APK is looked up at <build-dir>/app/build/outputs/apk/<config>/app-<config>.apk.
Without --device or --all-devices, adb picks the single connected device.

Examples:
  androidgen android-deploy --project-path ./MyGame
  androidgen android-deploy --project-path ./MyGame --config release --device emulator-5554
  androidgen android-deploy --build-dir /tmp/mygame-android --all-devices --jobs 4`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if deployProjectPath == "" && deployBuildDir == "" {
			return errors.NewConfigurationError("NO_PROJECT", "either --project-path or --build-dir is required")
		}
		if deployDevice != "" && deployAllDevices {
			return errors.NewConfigurationError("INVALID_FLAGS", "--device and --all-devices cannot be combined")
		}

		view, err := openSettings(deployProjectPath)
		if err != nil {
			return err
		}

		buildDir := deployBuildDir
		if buildDir == "" {
			buildDir = filepath.Join(deployProjectPath, "build", "android")
		}

		var packageName string
		if deployProjectPath != "" {
			s, err := project.Load(deployProjectPath)
			if err != nil {
				return err
			}
			android, err := s.DecodeAndroid()
			if err != nil {
				return err
			}
			packageName = android.PackageName
		}

		adb, err := deploy.NewADB(view.Get(settings.KeySDKRoot), system.NewExecRunner(""))
		if err != nil {
			return err
		}
		logger.Debug("Using adb at %s", adb.Path())

		outcomes, err := deploy.NewDeployer(adb, logger).Deploy(cmd.Context(), deploy.Options{
			BuildDir:    buildDir,
			Config:      deployConfig,
			PackageName: packageName,
			Device:      deployDevice,
			AllDevices:  deployAllDevices,
			Jobs:        deployJobs,
		})
		if len(outcomes) > 1 {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "DEVICE\tRESULT")
			for _, o := range outcomes {
				result := "installed"
				if o.Error != "" {
					result = o.Error
				}
				fmt.Fprintf(tw, "%s\t%s\n", o.Serial, result)
			}
			tw.Flush()
		}
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), i18n.T("deploy.done", map[string]interface{}{
			"Config": deployConfig,
			"Count":  len(outcomes),
		}))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deployCmd)

	deployCmd.Flags().StringVarP(&deployProjectPath, "project-path", "p", "", "game project directory")
	deployCmd.Flags().StringVarP(&deployBuildDir, "build-dir", "b", "", "generated project (default <project>/build/android)")
	deployCmd.Flags().StringVarP(&deployConfig, "config", "c", "debug", "build configuration (debug, profile, release)")
	deployCmd.Flags().StringVarP(&deployDevice, "device", "d", "", "serial of the target device")
	deployCmd.Flags().BoolVar(&deployAllDevices, "all-devices", false, "install on every online device")
	deployCmd.Flags().IntVarP(&deployJobs, "jobs", "j", 1, "parallel installs with --all-devices")
}
