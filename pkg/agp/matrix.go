// Package agp holds the Android Gradle Plugin compatibility table.
package agp

import (
	"fmt"
	"strings"

	"github.com/huanfeng/androidgen-cli/internal/errors"
	"github.com/huanfeng/androidgen-cli/pkg/versions"
)

// Requirement lists the minimum host tooling for one AGP major.minor release
type Requirement struct {
	AGP             string `json:"agp" yaml:"agp"`
	MinGradle       string `json:"min_gradle" yaml:"min_gradle"`
	MinBuildTools   string `json:"min_build_tools" yaml:"min_build_tools"`
	MinJDK          string `json:"min_jdk" yaml:"min_jdk"`
	ReleaseNotesURL string `json:"release_notes" yaml:"release_notes"`
}

func notesURL(agp string) string {
	return fmt.Sprintf("https://developer.android.com/build/releases/past-releases/agp-%s-0-release-notes",
		strings.ReplaceAll(agp, ".", "-"))
}

func req(agp, gradle, buildTools, jdk string) Requirement {
	return Requirement{AGP: agp, MinGradle: gradle, MinBuildTools: buildTools, MinJDK: jdk, ReleaseNotesURL: notesURL(agp)}
}

// Table is ordered by AGP version; the last entry is the highest supported release
var Table = []Requirement{
	req("4.2", "6.7.1", "30.0.2", "8"),
	req("7.0", "7.0", "30.0.2", "11"),
	req("7.1", "7.2", "30.0.3", "11"),
	req("7.2", "7.3.3", "30.0.3", "11"),
	req("7.3", "7.4", "30.0.3", "11"),
	req("7.4", "7.5", "30.0.3", "11"),
	req("8.0", "8.0", "30.0.3", "17"),
	req("8.1", "8.0", "33.0.1", "17"),
	req("8.2", "8.2", "34.0.0", "17"),
	req("8.3", "8.4", "34.0.0", "17"),
	req("8.4", "8.6", "34.0.0", "17"),
	req("8.5", "8.7", "34.0.0", "17"),
}

// MaxSupported returns the highest supported AGP major.minor
func MaxSupported() string {
	return Table[len(Table)-1].AGP
}

// Compatibility checks host tools against the record for one requested AGP version
type Compatibility struct {
	Requested string
	Record    Requirement
}

// Lookup resolves the record for a requested AGP version by its major.minor
func Lookup(requested string) (*Compatibility, error) {
	mm, err := versions.MajorMinor(requested)
	if err != nil {
		return nil, errors.NewConfigurationError("INVALID_AGP_VERSION",
			fmt.Sprintf("invalid Android Gradle Plugin version '%s'", requested))
	}
	if versions.Compare(mm, MaxSupported()) > 0 {
		return nil, errors.NewToolchainError("AGP_UNSUPPORTED",
			fmt.Sprintf("Android Gradle Plugin %s is newer than the highest supported version %s", requested, MaxSupported())).
			WithSuggestion(fmt.Sprintf("Register a supported version with 'androidgen android-register --set-value android.gradle.plugin=%s.0'", MaxSupported()))
	}
	for _, r := range Table {
		if r.AGP == mm {
			return &Compatibility{Requested: requested, Record: r}, nil
		}
	}
	return nil, errors.NewToolchainError("AGP_UNSUPPORTED",
		fmt.Sprintf("Android Gradle Plugin %s is not a supported version (supported: %s)", requested, supportedList()))
}

func supportedList() string {
	var out []string
	for _, r := range Table {
		out = append(out, r.AGP)
	}
	return strings.Join(out, ", ")
}

// ValidateJavaVersion fails when the JDK is older than the record requires
func (c *Compatibility) ValidateJavaVersion(java string) error {
	return c.validate("JDK", java, c.Record.MinJDK)
}

// ValidateGradleVersion fails when Gradle is older than the record requires
func (c *Compatibility) ValidateGradleVersion(gradle string) error {
	return c.validate("Gradle", gradle, c.Record.MinGradle)
}

// ValidateBuildToolsVersion fails when the SDK build-tools are older than the record requires
func (c *Compatibility) ValidateBuildToolsVersion(buildTools string) error {
	return c.validate("SDK build-tools", buildTools, c.Record.MinBuildTools)
}

var codeSuffix = strings.NewReplacer(" ", "_", "-", "_")

func (c *Compatibility) validate(what, detected, minimum string) error {
	if versions.AtLeast(detected, minimum) {
		return nil
	}
	return errors.NewToolchainError("INCOMPATIBLE_"+codeSuffix.Replace(strings.ToUpper(what)),
		fmt.Sprintf("Android Gradle Plugin %s requires %s %s or newer, detected %s %s. See %s",
			c.Requested, what, minimum, what, detected, c.Record.ReleaseNotesURL)).
		WithContext("required", minimum).
		WithContext("detected", detected).
		WithContext("release_notes", c.Record.ReleaseNotesURL)
}

// AtLeast7 reports whether the requested plugin uses the namespace DSL
func (c *Compatibility) AtLeast7() bool {
	major, err := versions.Major(c.Requested)
	return err == nil && major >= 7
}
