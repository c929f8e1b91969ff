package emitter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/ini.v1"

	"github.com/huanfeng/androidgen-cli/internal/errors"
	"github.com/huanfeng/androidgen-cli/pkg/libpatch"
	"github.com/huanfeng/androidgen-cli/pkg/utils"
)

// Build directory bookkeeping
const (
	PlatformSettingsFile = "platform.settings"
	PlatformName         = "android"
	TimestampLayout      = time.RFC3339
)

// PlatformSettings is the content of platform.settings
type PlatformSettings struct {
	Platform        string
	GameProjects    string
	AssetDeployMode string
	SDKPath         string
	GradlePlugin    string
}

// ReadPlatformSettings loads platform.settings from a build directory
func ReadPlatformSettings(buildDir string) (*PlatformSettings, error) {
	cfg, err := ini.Load(filepath.Join(buildDir, PlatformSettingsFile))
	if err != nil {
		return nil, err
	}
	settings := cfg.Section("settings")
	android := cfg.Section("android")
	return &PlatformSettings{
		Platform:        settings.Key("platform").String(),
		GameProjects:    settings.Key("game_projects").String(),
		AssetDeployMode: settings.Key("asset_deploy_mode").String(),
		SDKPath:         android.Key("android_sdk_path").String(),
		GradlePlugin:    android.Key("android_gradle_plugin").String(),
	}, nil
}

// CheckBuildDir decides whether emitting into buildDir may proceed. A non-empty directory
// needs overwrite, unless its platform.settings records a different plugin version, which
// forces the overwrite. forced reports that case.
func CheckBuildDir(buildDir, gradlePlugin string, overwrite bool) (forced bool, err error) {
	empty, err := utils.IsDirEmpty(buildDir)
	if err != nil {
		return false, errors.NewFileSystemError(err, fmt.Sprintf("failed to read build directory %s", buildDir))
	}
	if empty || overwrite {
		return false, nil
	}
	if prev, err := ReadPlatformSettings(buildDir); err == nil && prev.GradlePlugin != "" && prev.GradlePlugin != gradlePlugin {
		return true, nil
	}
	return false, errors.NewConfigurationError("BUILD_DIR_NOT_EMPTY",
		fmt.Sprintf("build directory %s is not empty", buildDir)).
		WithSuggestion("Pass --overwrite-existing to replace the generated project").
		WithSuggestion("Choose another directory with --build-dir")
}

func (e *Emitter) writePlatformSettings() error {
	c := e.cfg
	cfg := ini.Empty()
	settings := cfg.Section("settings")
	settings.Comment = "Generated by androidgen on " + c.now().UTC().Format(TimestampLayout)
	settings.Key("platform").SetValue(PlatformName)
	settings.Key("game_projects").SetValue(slash(c.ProjectDir))
	settings.Key("asset_deploy_mode").SetValue(c.AssetMode)
	android := cfg.Section("android")
	android.Key("android_sdk_path").SetValue(slash(c.SDKRoot))
	android.Key("android_gradle_plugin").SetValue(c.Compat.Requested)

	path := filepath.Join(c.BuildDir, PlatformSettingsFile)
	if err := cfg.SaveTo(path); err != nil {
		return errors.NewFileSystemError(err, fmt.Sprintf("failed to write %s", path))
	}
	return nil
}

func (e *Emitter) renderLocalProperties() (string, error) {
	c := e.cfg
	cmakeDir := ""
	if c.Tools != nil && c.Tools.CMake != nil {
		// cmake.dir is the install prefix, one level above bin/
		cmakeDir = "cmake.dir=" + slash(filepath.Dir(filepath.Dir(c.Tools.CMake.Path)))
	}
	return e.render(LocalPropTemplate, map[string]string{
		"GENERATION_TIMESTAMP": c.now().UTC().Format(TimestampLayout),
		"ANDROID_SDK_PATH":     slash(c.SDKRoot),
		"CMAKE_DIR_PROPERTY":   cmakeDir,
	})
}

func (e *Emitter) renderGradleProperties() (string, error) {
	jvmArgs := ""
	if e.cfg.GradleJVMArgs != "" {
		jvmArgs = "org.gradle.jvmargs=" + e.cfg.GradleJVMArgs
	}
	return e.render(GradlePropTemplate, map[string]string{
		"GRADLE_JVM_ARGS_PROPERTY": jvmArgs,
	})
}

// RenderSettingsGradle lists every library module followed by the app module
func RenderSettingsGradle(modules []*libpatch.Module) string {
	var b strings.Builder
	for _, m := range modules {
		fmt.Fprintf(&b, "include ':%s'\n", m.Name)
	}
	b.WriteString("include ':app'\n")
	return b.String()
}

func pakDir(projectDir string) string {
	return filepath.Join(projectDir, "AssetBundling", "Bundles")
}

func (e *Emitter) checkPakDir() {
	if e.cfg.AssetMode != AssetModePAK {
		return
	}
	if _, err := os.Stat(pakDir(e.cfg.ProjectDir)); err != nil {
		e.logger.Warn("Asset mode is PAK but %s does not exist; build the PAK files before deploying", pakDir(e.cfg.ProjectDir))
	}
}
