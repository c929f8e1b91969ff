package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/huanfeng/androidgen-cli/internal/errors"
	"github.com/huanfeng/androidgen-cli/pkg/agp"
	"github.com/huanfeng/androidgen-cli/pkg/sdk"
	"github.com/huanfeng/androidgen-cli/pkg/settings"
	"github.com/huanfeng/androidgen-cli/pkg/system"
	"github.com/huanfeng/androidgen-cli/pkg/toolchain"
)

// minFreeSpace is what an NDK plus platform and build-tools install needs
const minFreeSpace = 4 << 30

var (
	doctorProjectPath string
	doctorFormat      string
)

// DoctorReport is the machine readable doctor result
type DoctorReport struct {
	GradlePlugin string             `json:"gradle_plugin" yaml:"gradle_plugin"`
	Requirement  *agp.Requirement   `json:"requirement,omitempty" yaml:"requirement,omitempty"`
	Tools        []toolchain.Status `json:"tools" yaml:"tools"`
	SDK          SDKStatus          `json:"sdk" yaml:"sdk"`
	Disks        []system.DiskUsage `json:"disks,omitempty" yaml:"disks,omitempty"`
	Issues       []string           `json:"issues" yaml:"issues"`
	Suggestions  []string           `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
}

// SDKStatus describes the registered Android SDK
type SDKStatus struct {
	Root       string `json:"root" yaml:"root"`
	SDKManager string `json:"sdkmanager,omitempty" yaml:"sdkmanager,omitempty"`
	Version    string `json:"version,omitempty" yaml:"version,omitempty"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

var doctorCmd = &cobra.Command{
	Use:   "android-doctor",
	Short: "Check the host toolchain and Android SDK",
	Long: `The doctor command checks everything android-generate and android-deploy depend on.

It checks:
- java, gradle, cmake, ninja and adb, using the registered tool homes first
- the installed JDK and Gradle against the configured Android Gradle Plugin
- the registered Android SDK root and its sdkmanager`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := openSettings(doctorProjectPath)
		if err != nil {
			return err
		}

		report := runDoctor(cmd.Context(), view, system.NewExecRunner(view.Get(settings.KeyJavaHome)))
		if strings.ToLower(doctorFormat) == formatTable || doctorFormat == "" {
			printDoctorReport(cmd.OutOrStdout(), report)
		} else if err := writeOutput(cmd.OutOrStdout(), doctorFormat, report, nil); err != nil {
			return err
		}

		if len(report.Issues) > 0 {
			return errors.NewToolchainError("DOCTOR_FAILED",
				fmt.Sprintf("found %d issue(s) in the Android toolchain", len(report.Issues)))
		}
		return nil
	},
}

func runDoctor(ctx context.Context, view *settings.View, runner system.Runner) *DoctorReport {
	report := &DoctorReport{GradlePlugin: view.Get(settings.KeyGradlePlugin), Issues: []string{}}

	prober := toolchain.NewProber(runner, view, logger)
	report.Tools = prober.Check(ctx, toolchain.All()...)
	versionsByName := map[string]string{}
	for _, st := range report.Tools {
		if st.Available {
			versionsByName[st.Name] = st.Version
			continue
		}
		if st.Required {
			report.Issues = append(report.Issues, fmt.Sprintf("%s was not found", st.Name))
			report.Suggestions = append(report.Suggestions, toolchain.InstallHints(st.Name)...)
		}
	}

	compat, err := agp.Lookup(report.GradlePlugin)
	if err != nil {
		report.Issues = append(report.Issues, err.Error())
	} else {
		report.Requirement = &compat.Record
		if v, ok := versionsByName["java"]; ok {
			if err := compat.ValidateJavaVersion(v); err != nil {
				report.Issues = append(report.Issues, err.Error())
			}
		}
		if v, ok := versionsByName["gradle"]; ok {
			if err := compat.ValidateGradleVersion(v); err != nil {
				report.Issues = append(report.Issues, err.Error())
			}
		}
	}

	report.SDK.Root = view.Get(settings.KeySDKRoot)
	manager, err := sdk.NewManager(ctx, report.SDK.Root, runner, logger)
	if err != nil {
		report.SDK.Error = err.Error()
		report.Issues = append(report.Issues, err.Error())
		var te *errors.ToolError
		if errors.As(err, &te) {
			report.Suggestions = append(report.Suggestions, te.Suggestions...)
		}
	} else {
		report.SDK.SDKManager = manager.SDKManager()
		report.SDK.Version = manager.Version()
	}

	var paths []string
	if report.SDK.Root != "" {
		paths = append(paths, report.SDK.Root)
	}
	if doctorProjectPath != "" {
		paths = append(paths, filepath.Join(doctorProjectPath, "build", "android"))
	}
	for _, p := range paths {
		usage, err := system.GetDiskUsage(p)
		if err != nil {
			logger.Debug("Skipping the disk check of %s: %v", p, err)
			continue
		}
		report.Disks = append(report.Disks, *usage)
		if usage.Available < minFreeSpace {
			report.Issues = append(report.Issues, fmt.Sprintf("only %s free under %s, at least %s is needed",
				system.FormatBytes(usage.Available), p, system.FormatBytes(minFreeSpace)))
		}
	}
	return report
}

func printDoctorReport(w io.Writer, report *DoctorReport) {
	fmt.Fprintln(w, "🏥 Android Toolchain Doctor")
	fmt.Fprintln(w, strings.Repeat("=", 50))

	fmt.Fprintln(w, "\n🔍 Host tools")
	for _, st := range report.Tools {
		switch {
		case st.Available:
			fmt.Fprintf(w, "  ✅ %-8s %-10s %s\n", st.Name, st.Version, st.Path)
		case st.Required:
			fmt.Fprintf(w, "  ❌ %-8s missing (%s)\n", st.Name, st.Description)
		default:
			fmt.Fprintf(w, "  ⚠️  %-8s missing, optional (%s)\n", st.Name, st.Description)
		}
	}

	fmt.Fprintf(w, "\n🧩 Android Gradle Plugin %s\n", report.GradlePlugin)
	if r := report.Requirement; r != nil {
		fmt.Fprintf(w, "  requires JDK %s+, Gradle %s+, build-tools %s+\n", r.MinJDK, r.MinGradle, r.MinBuildTools)
	}

	fmt.Fprintln(w, "\n📦 Android SDK")
	if report.SDK.Error != "" {
		fmt.Fprintf(w, "  ❌ %s\n", report.SDK.Error)
	} else {
		fmt.Fprintf(w, "  ✅ %s (sdkmanager %s)\n", report.SDK.Root, report.SDK.Version)
	}

	if len(report.Disks) > 0 {
		fmt.Fprintln(w, "\n💾 Disk space")
		for _, d := range report.Disks {
			fmt.Fprintf(w, "  %s free of %s (%.0f%% used) at %s\n",
				system.FormatBytes(d.Available), system.FormatBytes(d.Total), d.UsedPct(), d.Path)
		}
	}

	fmt.Fprintln(w, "\n"+strings.Repeat("=", 50))
	if len(report.Issues) == 0 {
		fmt.Fprintln(w, "✅ All checks passed! The host is ready to generate Android projects.")
		return
	}
	fmt.Fprintf(w, "❌ Found %d issues that need attention:\n\n", len(report.Issues))
	for i, issue := range report.Issues {
		fmt.Fprintf(w, "%d. %s\n", i+1, issue)
	}
	if len(report.Suggestions) > 0 {
		fmt.Fprintln(w, "\n💡 Suggestions:")
		for _, s := range report.Suggestions {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
}

func init() {
	rootCmd.AddCommand(doctorCmd)

	doctorCmd.Flags().StringVar(&doctorProjectPath, "project-path", "", "project whose settings override the global ones")
	doctorCmd.Flags().StringVarP(&doctorFormat, "format", "f", formatTable, "output format (table, json, yaml)")
}
