// Package sdk drives the Android SDK command-line sdkmanager.
package sdk

import (
	"bufio"
	"strings"

	"github.com/huanfeng/androidgen-cli/pkg/versions"
)

// Category selects one of the three package mappings
type Category int

const (
	Installed Category = iota
	Available
	Updatable
)

func (c Category) String() string {
	switch c {
	case Available:
		return "available"
	case Updatable:
		return "updatable"
	default:
		return "installed"
	}
}

// ParseCategory maps a category name onto a Category
func ParseCategory(s string) (Category, bool) {
	switch strings.ToLower(s) {
	case "installed":
		return Installed, true
	case "available":
		return Available, true
	case "updatable", "updates":
		return Updatable, true
	}
	return Installed, false
}

// Package is the part shared by every package variant
type Package interface {
	Path() string
	Version() string
	Description() string
}

type packageInfo struct {
	path        string
	version     string
	description string
}

func (p packageInfo) Path() string        { return p.path }
func (p packageInfo) Version() string     { return p.version }
func (p packageInfo) Description() string { return p.description }

// InstalledPackage is a package present under the SDK root
type InstalledPackage struct {
	packageInfo
	// Location is relative to the SDK root
	Location string
}

// AvailablePackage is a package the repository offers
type AvailablePackage struct {
	packageInfo
}

// UpdatablePackage is an installed package with a newer version available. Version returns
// the installed version.
type UpdatablePackage struct {
	packageInfo
	AvailableVersion string
}

// Row is a flattened package used for table, JSON and YAML output
type Row struct {
	Category         string `json:"category" yaml:"category"`
	Path             string `json:"path" yaml:"path"`
	Version          string `json:"version" yaml:"version"`
	AvailableVersion string `json:"available_version,omitempty" yaml:"available_version,omitempty"`
	Description      string `json:"description,omitempty" yaml:"description,omitempty"`
	Location         string `json:"location,omitempty" yaml:"location,omitempty"`
}

// ToRow flattens any package variant
func ToRow(p Package) Row {
	row := Row{Path: p.Path(), Version: p.Version(), Description: p.Description()}
	switch v := p.(type) {
	case *InstalledPackage:
		row.Category = Installed.String()
		row.Location = v.Location
	case *AvailablePackage:
		row.Category = Available.String()
	case *UpdatablePackage:
		row.Category = Updatable.String()
		row.AvailableVersion = v.AvailableVersion
	}
	return row
}

// PackageList is the parsed result of sdkmanager --list
type PackageList struct {
	Installed map[string]*InstalledPackage
	Available map[string]*AvailablePackage
	Updatable map[string]*UpdatablePackage
}

func newPackageList() *PackageList {
	return &PackageList{
		Installed: make(map[string]*InstalledPackage),
		Available: make(map[string]*AvailablePackage),
		Updatable: make(map[string]*UpdatablePackage),
	}
}

const (
	headerInstalled = "Installed packages:"
	headerAvailable = "Available Packages:"
	headerUpdates   = "Available Updates:"
)

// ParseList parses sdkmanager --list output. Rows outside a recognised section, column
// headings and separator rows are ignored.
func ParseList(output string) *PackageList {
	list := newPackageList()
	section := -1

	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case headerInstalled:
			section = int(Installed)
			continue
		case headerAvailable:
			section = int(Available)
			continue
		case headerUpdates:
			section = int(Updatable)
			continue
		}
		if section < 0 || !strings.Contains(line, "|") {
			continue
		}

		fields := strings.Split(line, "|")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		if isHeadingRow(fields) || len(fields) < 2 {
			continue
		}

		path := fields[0]
		version := versions.Normalize(fields[1])
		switch Category(section) {
		case Installed:
			p := &InstalledPackage{packageInfo: packageInfo{path: path, version: version}}
			if len(fields) > 2 {
				p.description = fields[2]
			}
			if len(fields) > 3 {
				p.Location = fields[3]
			}
			list.Installed[path] = p
		case Available:
			p := &AvailablePackage{packageInfo: packageInfo{path: path, version: version}}
			if len(fields) > 2 {
				p.description = fields[2]
			}
			list.Available[path] = p
		case Updatable:
			p := &UpdatablePackage{packageInfo: packageInfo{path: path, version: version}}
			if len(fields) > 2 {
				p.AvailableVersion = versions.Normalize(fields[2])
			}
			list.Updatable[path] = p
		}
	}
	return list
}

func isHeadingRow(fields []string) bool {
	first := fields[0]
	if first == "Path" || first == "ID" {
		return true
	}
	return strings.HasPrefix(first, "---")
}
