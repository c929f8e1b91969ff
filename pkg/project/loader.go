// Package project reads the game project descriptors the generator consumes.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/huanfeng/androidgen-cli/internal/errors"
)

const (
	// DescriptorFile is the general project descriptor at the project root
	DescriptorFile = "project.json"
	// AndroidKey holds the android settings in either descriptor
	AndroidKey = "android_settings"
)

// AndroidDescriptorPath is the preferred location of the android settings
var AndroidDescriptorPath = filepath.Join("Platform", "Android", "android_project.json")

// Settings is the pair of descriptors read for one project. No field validation happens at
// load time.
type Settings struct {
	ProjectDir string
	General    map[string]interface{}
	Android    map[string]interface{}
	// AndroidSource is the file the android settings were read from
	AndroidSource string
}

// Load reads project.json and the android settings, preferring the dedicated android
// descriptor over the legacy key inside project.json
func Load(projectDir string) (*Settings, error) {
	generalPath := filepath.Join(projectDir, DescriptorFile)
	general, err := readJSON(generalPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewError(errors.ErrorTypeProjectSettings, "PROJECT_NOT_FOUND",
				fmt.Sprintf("project descriptor %s does not exist", generalPath)).
				WithContext("file", generalPath)
		}
		return nil, malformed(generalPath, err)
	}

	s := &Settings{ProjectDir: projectDir, General: general}

	androidPath := filepath.Join(projectDir, AndroidDescriptorPath)
	dedicated, err := readJSON(androidPath)
	switch {
	case err == nil:
		android, ok := dedicated[AndroidKey].(map[string]interface{})
		if !ok {
			return nil, errors.NewProjectSettingsError(AndroidKey, androidPath)
		}
		s.Android = android
		s.AndroidSource = androidPath
	case os.IsNotExist(err):
		android, ok := general[AndroidKey].(map[string]interface{})
		if !ok {
			return nil, errors.NewError(errors.ErrorTypeProjectSettings, "MISSING_KEY",
				fmt.Sprintf("android settings not found: expected an '%s' key in %s or in %s",
					AndroidKey, androidPath, generalPath)).
				WithContext("file", androidPath).
				WithContext("legacy_file", generalPath)
		}
		s.Android = android
		s.AndroidSource = generalPath
	default:
		return nil, malformed(androidPath, err)
	}
	return s, nil
}

func readJSON(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("top-level value is not a JSON object")
	}
	return out, nil
}

func malformed(path string, err error) error {
	return errors.WrapError(err, errors.ErrorTypeProjectSettings, "MALFORMED_JSON",
		fmt.Sprintf("failed to parse %s", path)).
		WithContext("file", path)
}

// ProjectName returns the required project_name
func (s *Settings) ProjectName() (string, error) {
	name, ok := s.General["project_name"].(string)
	if !ok || name == "" {
		return "", errors.NewProjectSettingsError("project_name", filepath.Join(s.ProjectDir, DescriptorFile))
	}
	return name, nil
}

// ProductName returns product_name, falling back to project_name
func (s *Settings) ProductName() string {
	if name, ok := s.General["product_name"].(string); ok && name != "" {
		return name
	}
	name, _ := s.ProjectName()
	return name
}
