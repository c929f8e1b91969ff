// Package version identifies the androidgen build. The variables are set with
// -ldflags "-X github.com/huanfeng/androidgen-cli/internal/version.Version=..."; when they
// are not, the module and VCS data embedded by the Go toolchain are used.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

var readBuildInfo = debug.ReadBuildInfo

// Build describes the running binary
type Build struct {
	Version   string
	Commit    string
	BuildDate string
	Modified  bool
	GoVersion string
	Platform  string
}

// Current returns the linker-provided values, completed from the embedded build info
func Current() Build {
	b := Build{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	info, ok := readBuildInfo()
	if !ok {
		return b
	}
	if b.Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		b.Version = strings.TrimPrefix(info.Main.Version, "v")
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if b.Commit == "unknown" {
				b.Commit = s.Value
			}
		case "vcs.time":
			if b.BuildDate == "unknown" {
				b.BuildDate = s.Value
			}
		case "vcs.modified":
			b.Modified = s.Value == "true"
		}
	}
	return b
}

// Info renders the build for `androidgen version`
func Info() string {
	b := Current()
	commit := b.Commit
	if len(commit) > 12 {
		commit = commit[:12]
	}
	if b.Modified {
		commit += " (modified)"
	}
	return fmt.Sprintf("androidgen %s\nCommit: %s\nBuilt: %s\nGo: %s\nOS/Arch: %s",
		b.Version, commit, b.BuildDate, b.GoVersion, b.Platform)
}

// Short is the version recorded in error reports and printed by --version
func Short() string {
	return Current().Version
}
