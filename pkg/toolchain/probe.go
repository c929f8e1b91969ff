// Package toolchain locates the host tools the generator drives and reads their versions.
package toolchain

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/huanfeng/androidgen-cli/internal/errors"
	"github.com/huanfeng/androidgen-cli/pkg/settings"
	"github.com/huanfeng/androidgen-cli/pkg/system"
	"github.com/huanfeng/androidgen-cli/pkg/utils"
	"github.com/huanfeng/androidgen-cli/pkg/versions"
)

// Tool is a resolved executable and its parsed version
type Tool struct {
	Name    string `json:"name" yaml:"name"`
	Path    string `json:"path" yaml:"path"`
	Version string `json:"version" yaml:"version"`
}

// Definition describes how a tool is searched for and how its version is read
type Definition struct {
	Name        string
	Description string
	Executable  string
	// Shim marks tools distributed as .bat scripts on Windows
	Shim bool
	// HomeKey is the settings key holding an explicit home directory
	HomeKey string
	// EnvVar is the environment variable holding a home directory
	EnvVar string
	// BinDir is the executable's directory relative to a home directory
	BinDir      string
	VersionArgs []string
	// VersionPattern must capture the version in its first group
	VersionPattern *regexp.Regexp
	// CombinedOutput matches against stdout+stderr; java prints its version on stderr
	CombinedOutput bool
	Optional       bool
	UsedBy         []string
}

// Definitions of every tool the generator probes
var (
	Java = Definition{
		Name:           "java",
		Description:    "Java runtime used by Gradle and sdkmanager",
		Executable:     "java",
		HomeKey:        settings.KeyJavaHome,
		EnvVar:         "JAVA_HOME",
		BinDir:         "bin",
		VersionArgs:    []string{"-version"},
		VersionPattern: regexp.MustCompile(`version "([\d._]+)(?:-[\w.+-]+)?"`),
		CombinedOutput: true,
		UsedBy:         []string{"android-generate", "android-sdk"},
	}
	Gradle = Definition{
		Name:           "gradle",
		Description:    "Gradle build tool, used to emit the wrapper",
		Executable:     "gradle",
		Shim:           true,
		HomeKey:        settings.KeyGradleHome,
		EnvVar:         "GRADLE_HOME",
		BinDir:         "bin",
		VersionArgs:    []string{"--version"},
		VersionPattern: regexp.MustCompile(`Gradle\s+(\d+(?:\.\d+)*)`),
		UsedBy:         []string{"android-generate"},
	}
	CMake = Definition{
		Name:           "cmake",
		Description:    "CMake used by the Gradle native build",
		Executable:     "cmake",
		HomeKey:        settings.KeyCMakeHome,
		EnvVar:         "CMAKE_HOME",
		BinDir:         "bin",
		VersionArgs:    []string{"--version"},
		VersionPattern: regexp.MustCompile(`cmake version (\d+\.\d+\.\d+)`),
		UsedBy:         []string{"android-generate"},
	}
	Ninja = Definition{
		Name:           "ninja",
		Description:    "Ninja build system passed to CMake as the make program",
		Executable:     "ninja",
		HomeKey:        settings.KeyNinjaHome,
		VersionArgs:    []string{"--version"},
		VersionPattern: regexp.MustCompile(`(?m)^(\d+\.\d+\.\d+)`),
		Optional:       true,
		UsedBy:         []string{"android-generate"},
	}
	Adb = Definition{
		Name:           "adb",
		Description:    "Android Debug Bridge, used to install the APK",
		Executable:     "adb",
		HomeKey:        settings.KeySDKRoot,
		BinDir:         "platform-tools",
		VersionArgs:    []string{"version"},
		VersionPattern: regexp.MustCompile(`Android Debug Bridge version (\d+\.\d+\.\d+)`),
		UsedBy:         []string{"android-deploy"},
	}
)

// SettingsReader is the subset of the settings view the prober needs
type SettingsReader interface {
	Get(key string) string
}

// Prober runs the three-tier search: settings home, environment variable, PATH
type Prober struct {
	runner   system.Runner
	settings SettingsReader
	logger   utils.Logger

	// Getenv and LookPath are replaceable for tests
	Getenv   func(string) string
	LookPath func(string) (string, error)
}

// NewProber creates a prober backed by the real environment
func NewProber(runner system.Runner, s SettingsReader, logger utils.Logger) *Prober {
	return &Prober{
		runner:   runner,
		settings: s,
		logger:   logger,
		Getenv:   os.Getenv,
		LookPath: exec.LookPath,
	}
}

// Candidates lists the locations searched for def, in order
func (p *Prober) Candidates(def Definition) []string {
	exe := system.ExecutableName(def.Executable, def.Shim)
	var out []string
	if def.HomeKey != "" && p.settings != nil {
		if home := p.settings.Get(def.HomeKey); home != "" {
			out = append(out, filepath.Join(home, def.BinDir, exe))
		}
	}
	if def.EnvVar != "" {
		if home := p.Getenv(def.EnvVar); home != "" {
			out = append(out, filepath.Join(home, def.BinDir, exe))
		}
	}
	if path, err := p.LookPath(exe); err == nil {
		out = append(out, path)
	} else {
		out = append(out, "PATH:"+exe)
	}
	return out
}

// Probe resolves def. The first candidate whose version query succeeds wins; when candidates
// exist but all fail, the first failure is returned.
func (p *Prober) Probe(ctx context.Context, def Definition) (*Tool, error) {
	candidates := p.Candidates(def)
	var firstErr error

	for _, candidate := range candidates {
		if strings.HasPrefix(candidate, "PATH:") {
			continue
		}
		if info, err := os.Stat(candidate); err != nil || info.IsDir() {
			continue
		}

		tool, err := p.queryVersion(ctx, def, candidate)
		if err == nil {
			p.logger.Debug("Resolved %s %s at %s", def.Name, tool.Version, tool.Path)
			return tool, nil
		}
		p.logger.Debug("Candidate %s rejected: %v", candidate, err)
		if firstErr == nil {
			firstErr = err
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}
	return nil, notFoundError(def, candidates)
}

func (p *Prober) queryVersion(ctx context.Context, def Definition, path string) (*Tool, error) {
	cmd := system.Command{Path: path, Args: def.VersionArgs}
	res, err := p.runner.Run(ctx, cmd)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeExternalTool, "TOOL_START_FAILED",
			fmt.Sprintf("failed to run %s", cmd.String()))
	}
	if res.ExitCode != 0 {
		return nil, errors.NewExternalToolError(cmd.String(), res.ExitCode, res.Output())
	}

	output := res.Stdout
	if def.CombinedOutput {
		output = res.Combined()
	}
	version, ok := parseVersion(def, output)
	if !ok {
		return nil, errors.NewToolchainError("VERSION_UNPARSEABLE",
			fmt.Sprintf("unable to read the %s version from '%s' output: %s",
				def.Name, cmd.String(), strings.TrimSpace(output)))
	}
	return &Tool{Name: def.Name, Path: path, Version: version}, nil
}

func parseVersion(def Definition, output string) (string, bool) {
	m := def.VersionPattern.FindStringSubmatch(output)
	if m == nil {
		return "", false
	}
	version := m[1]
	if def.Name == Java.Name {
		version = normalizeJavaVersion(version)
	}
	if _, err := versions.Parse(version); err != nil {
		return "", false
	}
	return version, true
}

// normalizeJavaVersion maps "1.8.0_292" to "8.0.292" and "17.0.2" to itself. Suffixes such
// as "-ea" are dropped by the version pattern before this runs.
func normalizeJavaVersion(v string) string {
	v = strings.ReplaceAll(v, "_", ".")
	if strings.HasPrefix(v, "1.") {
		v = strings.TrimPrefix(v, "1.")
	}
	return v
}

func notFoundError(def Definition, searched []string) error {
	var locations []string
	for _, s := range searched {
		locations = append(locations, "  "+strings.TrimPrefix(s, "PATH:")+pathNote(s))
	}
	msg := fmt.Sprintf("unable to resolve %s. Locations searched:\n%s", def.Name, strings.Join(locations, "\n"))

	e := errors.NewConfigurationError("TOOL_NOT_FOUND", msg).
		WithContext("tool", def.Name)
	if def.HomeKey != "" {
		e.WithSuggestion(fmt.Sprintf("Register the location with 'androidgen android-register --set-value %s=<dir>'", def.HomeKey))
	}
	if def.EnvVar != "" {
		e.WithSuggestion(fmt.Sprintf("Or set the %s environment variable", def.EnvVar))
	}
	return e.WithSuggestions(InstallHints(def.Name))
}

func pathNote(candidate string) string {
	if strings.HasPrefix(candidate, "PATH:") {
		return " (on PATH)"
	}
	return ""
}
