package sdk

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/huanfeng/androidgen-cli/internal/errors"
	"github.com/huanfeng/androidgen-cli/pkg/system"
	"github.com/huanfeng/androidgen-cli/pkg/toolchain"
	"github.com/huanfeng/androidgen-cli/pkg/utils"
	"github.com/huanfeng/androidgen-cli/pkg/versions"
)

// LicenseTimeout bounds the sdkmanager --licenses prompt
const LicenseTimeout = 5 * time.Second

var (
	licensesAccepted    = "All SDK package licenses accepted."
	licensesNotAccepted = regexp.MustCompile(`\d+ of \d+ SDK package licenses? not accepted\.?`)
	unknownSDKRoot      = "Could not determine SDK root"
)

// Manager wraps the sdkmanager of one SDK root
type Manager struct {
	root       string
	sdkmanager string
	version    string
	runner     system.Runner
	logger     utils.Logger
	packages   *PackageList
}

// SDKManagerPath returns where sdkmanager lives under root
func SDKManagerPath(root string) string {
	return filepath.Join(root, "cmdline-tools", "latest", "bin", system.ExecutableName("sdkmanager", true))
}

// NewManager validates root, probes the sdkmanager version and loads the package list
func NewManager(ctx context.Context, root string, runner system.Runner, logger utils.Logger) (*Manager, error) {
	if root == "" {
		return nil, errors.NewConfigurationError("SDK_ROOT_UNSET", "the Android SDK root is not registered").
			WithSuggestion("Run 'androidgen android-register --global --set-value sdk.root=<path to the Android SDK>'")
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, errors.NewConfigurationError("SDK_ROOT_MISSING",
			fmt.Sprintf("the Android SDK root '%s' does not exist", root))
	}
	tool := SDKManagerPath(root)
	if _, err := os.Stat(tool); err != nil {
		return nil, errors.NewConfigurationError("SDKMANAGER_MISSING",
			fmt.Sprintf("the Android SDK root '%s' does not contain %s", root,
				filepath.Join("cmdline-tools", "latest", "bin", filepath.Base(tool)))).
			WithSuggestion("Install the Android SDK command-line tools into cmdline-tools/latest")
	}

	m := &Manager{root: root, sdkmanager: tool, runner: runner, logger: logger}
	if err := m.probeVersion(ctx); err != nil {
		return nil, err
	}
	if err := m.Refresh(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// Root returns the SDK root
func (m *Manager) Root() string { return m.root }

// SDKManager returns the sdkmanager executable path
func (m *Manager) SDKManager() string { return m.sdkmanager }

// Version returns the sdkmanager version
func (m *Manager) Version() string { return m.version }

func (m *Manager) probeVersion(ctx context.Context) error {
	cmd := system.Command{Path: m.sdkmanager, Args: []string{"--version"}}
	res, err := m.runner.Run(ctx, cmd)
	if err != nil {
		return errors.WrapError(err, errors.ErrorTypeExternalTool, "TOOL_START_FAILED",
			fmt.Sprintf("failed to run %s", cmd.String()))
	}
	if res.ExitCode != 0 {
		output := res.Combined()
		if mismatch, ok := toolchain.DetectJDKMismatch(output); ok {
			return mismatch.Error(m.sdkmanager)
		}
		if strings.Contains(output, unknownSDKRoot) {
			return errors.NewConfigurationError("SDK_ROOT_LAYOUT",
				fmt.Sprintf("sdkmanager could not determine the SDK root; %s must live under <sdk>/cmdline-tools/latest/bin", m.sdkmanager))
		}
		return errors.NewExternalToolError(cmd.String(), res.ExitCode, res.Output())
	}
	m.version = strings.TrimSpace(res.Stdout)
	m.logger.Debug("sdkmanager %s at %s", m.version, m.sdkmanager)
	return nil
}

func (m *Manager) rootArg() string {
	return "--sdk_root=" + m.root
}

func (m *Manager) run(ctx context.Context, stdin string, args ...string) (*system.Result, error) {
	cmd := system.Command{Path: m.sdkmanager, Args: append(args, m.rootArg()), Stdin: stdin}
	res, err := m.runner.Run(ctx, cmd)
	if err != nil {
		return res, errors.WrapError(err, errors.ErrorTypeExternalTool, "TOOL_START_FAILED",
			fmt.Sprintf("failed to run %s", cmd.String()))
	}
	if res.ExitCode != 0 {
		return res, errors.NewExternalToolError(cmd.String(), res.ExitCode, res.Output())
	}
	return res, nil
}

// Refresh re-parses sdkmanager --list and replaces all three mappings at once
func (m *Manager) Refresh(ctx context.Context) error {
	res, err := m.run(ctx, "", "--list")
	if err != nil {
		return err
	}
	m.packages = ParseList(res.Stdout)
	m.logger.Debug("sdkmanager lists %d installed, %d available, %d updatable packages",
		len(m.packages.Installed), len(m.packages.Available), len(m.packages.Updatable))
	return nil
}

// GetPackageList returns the packages of category whose path matches the glob, highest
// version first
func (m *Manager) GetPackageList(pattern string, category Category) []Package {
	var out []Package
	match := func(p string) bool {
		ok, err := path.Match(pattern, p)
		return err == nil && ok
	}
	switch category {
	case Installed:
		for p, pkg := range m.packages.Installed {
			if match(p) {
				out = append(out, pkg)
			}
		}
	case Available:
		for p, pkg := range m.packages.Available {
			if match(p) {
				out = append(out, pkg)
			}
		}
	case Updatable:
		for p, pkg := range m.packages.Updatable {
			if match(p) {
				out = append(out, pkg)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := versions.Compare(out[i].Version(), out[j].Version()); c != 0 {
			return c > 0
		}
		return out[i].Path() > out[j].Path()
	})
	return out
}

// InstallPackage makes sure a package matching pattern is installed and returns it. An
// existing installed match is returned as is.
func (m *Manager) InstallPackage(ctx context.Context, pattern, name string) (*InstalledPackage, error) {
	if installed := m.GetPackageList(pattern, Installed); len(installed) > 0 {
		pkg := installed[0].(*InstalledPackage)
		m.logger.Info("%s %s is already installed", name, pkg.Version())
		return pkg, nil
	}

	available := m.GetPackageList(pattern, Available)
	if len(available) == 0 {
		return nil, errors.NewUnknownPackageError(pattern, name)
	}
	target := available[0]

	m.logger.Info("Installing %s (%s %s)", name, target.Path(), target.Version())
	if _, err := m.run(ctx, "", "--install", target.Path()); err != nil {
		return nil, err
	}
	if err := m.Refresh(ctx); err != nil {
		return nil, err
	}

	pkg, ok := m.packages.Installed[target.Path()]
	if !ok {
		return nil, errors.NewExternalToolError(
			fmt.Sprintf("%s --install %s", m.sdkmanager, target.Path()), 0,
			fmt.Sprintf("%s is not listed as installed after installation", target.Path()))
	}
	return pkg, nil
}

// InstallPath returns the absolute location of an installed package
func (m *Manager) InstallPath(pkg *InstalledPackage) string {
	if pkg.Location != "" {
		return filepath.Join(m.root, filepath.FromSlash(strings.TrimSuffix(pkg.Location, "/")))
	}
	return filepath.Join(m.root, filepath.FromSlash(strings.ReplaceAll(pkg.Path(), ";", "/")))
}

// CheckLicenses answers one "Y" to sdkmanager --licenses and fails unless every license ends
// up accepted
func (m *Manager) CheckLicenses(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, LicenseTimeout)
	defer cancel()

	cmd := system.Command{Path: m.sdkmanager, Args: []string{"--licenses", m.rootArg()}, Stdin: "Y\n"}
	res, err := m.runner.Run(ctx, cmd)
	output := ""
	if res != nil {
		output = res.Combined()
	}

	if strings.Contains(output, licensesAccepted) {
		return nil
	}
	if line := licensesNotAccepted.FindString(output); line != "" {
		return errors.NewLicenseError(line, m.sdkmanager)
	}
	if err != nil {
		return errors.NewLicenseError(fmt.Sprintf("license check did not complete: %v", err), m.sdkmanager)
	}
	return errors.NewLicenseError("license state could not be confirmed", m.sdkmanager).
		WithContext("output", strings.TrimSpace(output))
}
