package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/huanfeng/androidgen-cli/internal/i18n"
	"github.com/huanfeng/androidgen-cli/pkg/generator"
	"github.com/huanfeng/androidgen-cli/pkg/settings"
	"github.com/huanfeng/androidgen-cli/pkg/system"
)

var (
	generateProjectPath string
	generateBuildDir    string
	generateEngineRoot  string
	generateOverwrite   bool
)

var generateCmd = &cobra.Command{
	Use:   "android-generate",
	Short: "Generate the Android Gradle project",
	Long: `Generate a Gradle multi-module Android project for a game project.

The host tools (java, gradle, cmake, ninja) are probed and checked against the
requirements of the configured Android Gradle Plugin, SDK licenses must be accepted,
missing SDK packages are installed, and the project is written to the build directory
(default <project>/build/android) together with a Gradle wrapper.

Examples:
  androidgen android-generate --project-path ./MyGame --engine-root ~/o3de
  androidgen android-generate --project-path ./MyGame --build-dir /tmp/mygame-android --overwrite-existing`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := openSettings(generateProjectPath)
		if err != nil {
			return err
		}

		runner := system.NewExecRunner(view.Get(settings.KeyJavaHome))
		g := generator.New(view, runner, logger)
		g.Progress = cmd.OutOrStdout()

		res, err := g.Generate(cmd.Context(), generator.Options{
			ProjectDir: generateProjectPath,
			BuildDir:   generateBuildDir,
			EngineRoot: engineRoot(generateEngineRoot),
			Overwrite:  generateOverwrite,
		})
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), i18n.T("generate.done", map[string]interface{}{
			"BuildDir": res.BuildDir,
			"Plugin":   res.GradlePlugin,
			"Modules":  len(res.Modules),
		}))
		fmt.Fprintln(cmd.OutOrStdout(), i18n.T("generate.next", map[string]interface{}{"BuildDir": res.BuildDir}))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&generateProjectPath, "project-path", "p", "", "game project directory (required)")
	generateCmd.Flags().StringVarP(&generateBuildDir, "build-dir", "b", "", "output directory (default <project>/build/android)")
	generateCmd.Flags().StringVar(&generateEngineRoot, "engine-root", "", "engine checkout (default engine_root from androidgen.yaml)")
	generateCmd.Flags().BoolVar(&generateOverwrite, "overwrite-existing", false, "replace a previously generated project")
	_ = generateCmd.MarkFlagRequired("project-path")
}
