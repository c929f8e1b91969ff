// Package versions orders tool, SDK package and plugin version strings the way PEP 440 does
// for the shapes the Android toolchain produces: "31", "25.2.9519653", "8.1.0", "35.0.0 rc1".
package versions

import (
	"fmt"
	"regexp"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

var preReleaseSeparator = regexp.MustCompile(`^(\d+(?:\.\d+)*)[.\-_]?((?:a|b|c|rc|alpha|beta|pre|preview|dev)\.?\d*)$`)

// Normalize turns sdkmanager style versions into a dotted form. Spaces become dots, as
// sdkmanager prints e.g. "35.0.0 rc1".
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	return strings.Join(strings.Fields(s), ".")
}

// Parse parses a version string. Pre-release suffixes separated by a dot are accepted.
func Parse(s string) (*goversion.Version, error) {
	n := Normalize(s)
	if v, err := goversion.NewVersion(n); err == nil {
		return v, nil
	}
	if m := preReleaseSeparator.FindStringSubmatch(strings.ToLower(n)); m != nil {
		if v, err := goversion.NewVersion(m[1] + "-" + strings.ReplaceAll(m[2], ".", "")); err == nil {
			return v, nil
		}
	}
	return nil, fmt.Errorf("invalid version %q", s)
}

// Compare returns -1, 0 or 1. Unparseable versions sort before every parseable one and
// compare lexically among themselves.
func Compare(a, b string) int {
	va, errA := Parse(a)
	vb, errB := Parse(b)
	switch {
	case errA != nil && errB != nil:
		return strings.Compare(a, b)
	case errA != nil:
		return -1
	case errB != nil:
		return 1
	}
	return va.Compare(vb)
}

// AtLeast reports whether have >= want
func AtLeast(have, want string) bool {
	return Compare(have, want) >= 0
}

// MajorMinor returns the "major.minor" prefix of a version
func MajorMinor(s string) (string, error) {
	v, err := Parse(s)
	if err != nil {
		return "", err
	}
	seg := v.Segments()
	return fmt.Sprintf("%d.%d", seg[0], seg[1]), nil
}

// Major returns the leading segment of a version
func Major(s string) (int, error) {
	v, err := Parse(s)
	if err != nil {
		return 0, err
	}
	return v.Segments()[0], nil
}
