// Package emitter writes the Gradle multi-module project: root scripts, the app module,
// its manifest and resources, and the Gradle wrapper.
package emitter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-shellwords"

	"github.com/huanfeng/androidgen-cli/internal/errors"
	"github.com/huanfeng/androidgen-cli/pkg/libpatch"
	"github.com/huanfeng/androidgen-cli/pkg/system"
	"github.com/huanfeng/androidgen-cli/pkg/textio"
	"github.com/huanfeng/androidgen-cli/pkg/utils"
)

// Emitter renders one project. It also renders library build scripts for the patcher.
type Emitter struct {
	cfg       Config
	templates *Templates
	runner    system.Runner
	logger    utils.Logger
	extraArgs []string
}

// New validates the configuration and returns an emitter
func New(cfg Config, templates *Templates, runner system.Runner, logger utils.Logger) (*Emitter, error) {
	if cfg.Compat == nil || cfg.Manifest == nil || cfg.Tools == nil || cfg.Tools.Gradle == nil || cfg.Tools.CMake == nil {
		return nil, errors.NewInternalError("EMITTER_CONFIG", "emitter needs the plugin record, the manifest environment, gradle and cmake")
	}
	parser := shellwords.NewParser()
	extra, err := parser.Parse(cfg.ExtraCMakeArgs)
	if err != nil {
		return nil, errors.NewConfigurationError("INVALID_SETTING",
			fmt.Sprintf("extra.cmake.args could not be split: %v", err))
	}
	return &Emitter{
		cfg:       cfg,
		templates: templates,
		runner:    runner,
		logger:    logger,
		extraArgs: extra,
	}, nil
}

var _ libpatch.GradleRenderer = (*Emitter)(nil)

func (e *Emitter) writeText(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewFileSystemError(err, fmt.Sprintf("failed to create %s", filepath.Dir(path)))
	}
	if err := textio.WriteFile(path, content, 0644); err != nil {
		return errors.NewFileSystemError(err, fmt.Sprintf("failed to write %s", path))
	}
	e.logger.Debug("Wrote %s", path)
	return nil
}

func (e *Emitter) renderTo(path string, render func() (string, error)) error {
	content, err := render()
	if err != nil {
		return err
	}
	return e.writeText(path, content)
}

// Emit writes every project file except the library modules, which the patcher has already
// written. settings.gradle is written after all module directories exist.
func (e *Emitter) Emit(modules []*libpatch.Module) error {
	c := e.cfg
	if err := os.MkdirAll(c.BuildDir, 0755); err != nil {
		return errors.NewFileSystemError(err, fmt.Sprintf("failed to create %s", c.BuildDir))
	}
	e.checkPakDir()

	if err := e.writePlatformSettings(); err != nil {
		return err
	}
	steps := []struct {
		path   string
		render func() (string, error)
	}{
		{filepath.Join(c.BuildDir, "local.properties"), e.renderLocalProperties},
		{filepath.Join(c.BuildDir, "gradle.properties"), e.renderGradleProperties},
		{filepath.Join(c.BuildDir, "build.gradle"), e.RenderRootGradle},
		{filepath.Join(c.AppDir(), "build.gradle"), func() (string, error) { return e.RenderAppGradle(modules) }},
		{filepath.Join(c.AppDir(), "src", "main", "AndroidManifest.xml"), e.RenderManifest},
	}
	for _, step := range steps {
		if err := e.renderTo(step.path, step.render); err != nil {
			return err
		}
	}

	if err := e.applyBuilderRules(); err != nil {
		return err
	}
	if err := e.applyIcons(); err != nil {
		return err
	}
	if err := e.applySplashes(); err != nil {
		return err
	}
	if err := e.pruneOrientation(); err != nil {
		return err
	}

	e.logger.Info("Emitted app module and %d library modules into %s", len(modules), c.BuildDir)
	return e.writeText(filepath.Join(c.BuildDir, "settings.gradle"), RenderSettingsGradle(modules))
}

// RenderManifest renders the app's AndroidManifest.xml
func (e *Emitter) RenderManifest() (string, error) {
	return e.render(ManifestTemplate, e.cfg.Manifest.Values)
}

// RunWrapper generates the Gradle wrapper into the build directory
func (e *Emitter) RunWrapper(ctx context.Context) error {
	cmd := system.Command{
		Path: e.cfg.Tools.Gradle.Path,
		Args: []string{"wrapper", "-p", e.cfg.BuildDir},
		Dir:  e.cfg.BuildDir,
	}
	e.logger.Info("Generating the Gradle wrapper")
	res, err := e.runner.Run(ctx, cmd)
	if err != nil {
		return errors.WrapError(err, errors.ErrorTypeExternalTool, "GRADLE_WRAPPER",
			fmt.Sprintf("failed to run %s", cmd.String()))
	}
	if res.ExitCode != 0 {
		return errors.NewExternalToolError(cmd.String(), res.ExitCode, res.Output())
	}
	return nil
}
