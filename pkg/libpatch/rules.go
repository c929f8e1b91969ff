// Package libpatch turns vendored Android support libraries into Gradle library modules,
// applying the line patches declared in android_libraries.json.
package libpatch

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/huanfeng/androidgen-cli/internal/errors"
	"github.com/huanfeng/androidgen-cli/pkg/rules"
	"github.com/huanfeng/androidgen-cli/pkg/template"
)

// RulesFile is the rules file name inside the template directory
const RulesFile = "android_libraries.json"

// Change is one line-anchored substitution. Line is 1-based.
type Change struct {
	Line int      `json:"line"`
	Old  []string `json:"old"`
	New  []string `json:"new"`
}

// Patch lists the changes made to one file of a library, relative to its source directory
type Patch struct {
	Path    string   `json:"path"`
	Changes []Change `json:"changes"`
}

// Library is one entry of the rules file
type Library struct {
	Name              string   `json:"-"`
	SrcDir            []string `json:"srcDir"`
	Patches           []Patch  `json:"patches"`
	Dependencies      []string `json:"dependencies"`
	BuildDependencies []string `json:"buildDependencies"`
}

// RuleValues returns the placeholders available to the rules file
func RuleValues(sdkHome string, platformAPI string) map[string]string {
	return map[string]string{
		"ANDROID_SDK_HOME":    filepath.ToSlash(sdkHome),
		"ANDROID_SDK_VERSION": "android-" + platformAPI,
	}
}

// ParseRules expands and decodes rules text. source names the file in errors.
func ParseRules(text string, values map[string]string, source string) ([]*Library, error) {
	expanded, err := template.Expand(text, values, template.Safe)
	if err != nil {
		return nil, errors.NewInternalError("RULES_TEMPLATE", fmt.Sprintf("%s: %v", source, err))
	}

	names, raw, err := rules.OrderedObject([]byte(expanded))
	if err != nil {
		return nil, errors.NewInternalError("RULES_MALFORMED", fmt.Sprintf("%s: %v", source, err))
	}

	var libs []*Library
	for _, name := range names {
		lib := &Library{Name: name}
		if err := json.Unmarshal(raw[name], lib); err != nil {
			return nil, errors.NewInternalError("RULES_MALFORMED", fmt.Sprintf("%s: library %s: %v", source, name, err))
		}
		if len(lib.SrcDir) == 0 {
			return nil, errors.NewInternalError("RULES_MALFORMED", fmt.Sprintf("%s: library %s has no srcDir", source, name))
		}
		libs = append(libs, lib)
	}
	return libs, nil
}
