// Package generator runs the android-generate pipeline: probe the host tools, check them
// against the plugin matrix, load the project, gate on SDK licenses, install the required
// SDK packages, then patch libraries and emit the Gradle project.
package generator

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/huanfeng/androidgen-cli/internal/errors"
	"github.com/huanfeng/androidgen-cli/internal/version"
	"github.com/huanfeng/androidgen-cli/pkg/agp"
	"github.com/huanfeng/androidgen-cli/pkg/emitter"
	"github.com/huanfeng/androidgen-cli/pkg/libpatch"
	"github.com/huanfeng/androidgen-cli/pkg/manifest"
	"github.com/huanfeng/androidgen-cli/pkg/project"
	"github.com/huanfeng/androidgen-cli/pkg/sdk"
	"github.com/huanfeng/androidgen-cli/pkg/settings"
	"github.com/huanfeng/androidgen-cli/pkg/system"
	"github.com/huanfeng/androidgen-cli/pkg/toolchain"
	"github.com/huanfeng/androidgen-cli/pkg/utils"
)

// Settings is the part of the settings view the pipeline reads
type Settings interface {
	Get(key string) string
	Bool(key string) bool
}

// Options are the per-invocation inputs of android-generate
type Options struct {
	ProjectDir string
	// BuildDir defaults to <ProjectDir>/build/android
	BuildDir   string
	EngineRoot string
	Overwrite  bool
}

// Result summarises a successful run
type Result struct {
	BuildDir          string
	GradlePlugin      string
	BuildToolsVersion string
	NDKVersion        string
	Modules           []string
	Tools             map[string]string
}

// Generator wires the components together. Prober and Runner are injectable so tests can
// script every external tool.
type Generator struct {
	Settings Settings
	Runner   system.Runner
	Prober   *toolchain.Prober
	Logger   utils.Logger
	// Progress receives one line per pipeline step; nil disables it
	Progress io.Writer
	Now      func() time.Time
}

// New creates a generator backed by real child processes
func New(s Settings, runner system.Runner, logger utils.Logger) *Generator {
	return &Generator{
		Settings: s,
		Runner:   runner,
		Prober:   toolchain.NewProber(runner, s, logger),
		Logger:   logger,
		Now:      time.Now,
	}
}

// Pipeline steps, in order
const (
	StepDiscover  = "Probing host tools"
	StepCompat    = "Checking the Android Gradle Plugin matrix"
	StepLoad      = "Loading project settings"
	StepLicenses  = "Checking SDK licenses"
	StepPackages  = "Installing SDK packages"
	StepManifest  = "Computing the manifest environment"
	StepLibraries = "Patching libraries"
	StepEmit      = "Emitting the Gradle project"
	StepWrapper   = "Generating the Gradle wrapper"
)

var steps = []string{StepDiscover, StepCompat, StepLoad, StepLicenses, StepPackages, StepManifest, StepLibraries, StepEmit, StepWrapper}

// run carries the state accumulated by the steps
type run struct {
	opts     Options
	progress *utils.StepProgress

	tools    *toolchain.Toolchain
	compat   *agp.Compatibility
	project  *project.Settings
	android  *project.AndroidSettings
	name     string
	sdk      *sdk.Manager
	packages installed
	signing  *emitter.Signing
	env      *manifest.Environment
	modules  []*libpatch.Module
	emitter  *emitter.Emitter
}

func (g *Generator) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

// Generate runs the whole pipeline. On failure after the build directory exists an error
// report is written into it; files already written are kept.
func (g *Generator) Generate(ctx context.Context, opts Options) (*Result, error) {
	if opts.ProjectDir == "" {
		return nil, errors.NewConfigurationError("PROJECT_PATH_UNSET", "--project-path is required")
	}
	projectDir, err := filepath.Abs(opts.ProjectDir)
	if err != nil {
		return nil, errors.NewFileSystemError(err, fmt.Sprintf("failed to resolve %s", opts.ProjectDir))
	}
	opts.ProjectDir = projectDir
	if opts.BuildDir == "" {
		opts.BuildDir = filepath.Join(projectDir, "build", "android")
	}
	if opts.BuildDir, err = filepath.Abs(opts.BuildDir); err != nil {
		return nil, errors.NewFileSystemError(err, fmt.Sprintf("failed to resolve %s", opts.BuildDir))
	}
	if opts.EngineRoot == "" {
		return nil, errors.NewConfigurationError("ENGINE_ROOT_UNSET", "the engine root is not set").
			WithSuggestion("Pass --engine-root or set engine_root in androidgen.yaml")
	}

	start := g.now()
	r := &run{opts: opts, progress: utils.NewStepProgressWithClock(g.Progress, len(steps), g.now)}
	res, err := g.execute(ctx, r)
	if err != nil {
		g.report(r, err, g.now().Sub(start))
		return nil, err
	}
	r.progress.Finish(fmt.Sprintf("Generated %s", opts.BuildDir))
	return res, nil
}

func (g *Generator) execute(ctx context.Context, r *run) (*Result, error) {
	stages := []struct {
		name string
		fn   func(context.Context, *run) error
	}{
		{StepDiscover, g.discover},
		{StepCompat, g.checkCompat},
		{StepLoad, g.load},
		{StepLicenses, g.checkLicenses},
		{StepPackages, g.installPackages},
		{StepManifest, g.computeEnvironment},
		{StepLibraries, g.patchLibraries},
		{StepEmit, g.emit},
		{StepWrapper, g.wrapper},
	}
	for _, stage := range stages {
		r.progress.Start(stage.name)
		if err := stage.fn(ctx, r); err != nil {
			return nil, err
		}
	}

	res := &Result{
		BuildDir:          r.opts.BuildDir,
		GradlePlugin:      r.compat.Requested,
		BuildToolsVersion: r.packages.buildTools,
		NDKVersion:        r.packages.ndkVersion,
		Tools:             r.tools.Versions(),
	}
	for _, m := range r.modules {
		res.Modules = append(res.Modules, m.Name)
	}
	res.Modules = append(res.Modules, "app")
	return res, nil
}

func (g *Generator) discover(ctx context.Context, r *run) error {
	tools, err := g.Prober.Discover(ctx)
	if err != nil {
		return err
	}
	r.tools = tools
	for name, v := range tools.Versions() {
		g.Logger.Debug("Using %s %s", name, v)
	}
	return nil
}

// checkCompat validates Java and Gradle. Build-tools are validated once installed.
func (g *Generator) checkCompat(ctx context.Context, r *run) error {
	compat, err := agp.Lookup(g.Settings.Get(settings.KeyGradlePlugin))
	if err != nil {
		return err
	}
	if err := compat.ValidateJavaVersion(r.tools.Java.Version); err != nil {
		return err
	}
	if err := compat.ValidateGradleVersion(r.tools.Gradle.Version); err != nil {
		return err
	}
	r.compat = compat
	return nil
}

// load reads the project, the signing settings and the build directory. Nothing is written here.
func (g *Generator) load(ctx context.Context, r *run) error {
	proj, err := project.Load(r.opts.ProjectDir)
	if err != nil {
		return err
	}
	name, err := proj.ProjectName()
	if err != nil {
		return err
	}
	android, err := proj.DecodeAndroid()
	if err != nil {
		return err
	}
	r.project, r.name, r.android = proj, name, android

	signing, err := emitter.NewSigning(
		g.Settings.Get(settings.KeySigningStoreFile),
		g.Settings.Get(settings.KeySigningStorePass),
		g.Settings.Get(settings.KeySigningKeyAlias),
		g.Settings.Get(settings.KeySigningKeyPassword),
	)
	if err != nil {
		return err
	}
	r.signing = signing

	forced, err := emitter.CheckBuildDir(r.opts.BuildDir, r.compat.Requested, r.opts.Overwrite)
	if err != nil {
		return err
	}
	if forced {
		g.Logger.Warn("%s was generated for a different Android Gradle Plugin; overwriting it", r.opts.BuildDir)
	}
	return nil
}

func (g *Generator) checkLicenses(ctx context.Context, r *run) error {
	mgr, err := sdk.NewManager(ctx, g.Settings.Get(settings.KeySDKRoot), g.Runner, g.Logger)
	if err != nil {
		return err
	}
	r.sdk = mgr
	return mgr.CheckLicenses(ctx)
}

func (g *Generator) installPackages(ctx context.Context, r *run) error {
	pkgs, err := ensurePackages(ctx, r.sdk, r.compat, g.Settings, g.Logger)
	if err != nil {
		return err
	}
	r.packages = *pkgs
	return nil
}

func (g *Generator) computeEnvironment(ctx context.Context, r *run) error {
	r.env = manifest.Compute(manifest.Inputs{
		ProjectName: r.name,
		ProductName: r.project.ProductName(),
		Android:     r.android,
		Oculus:      g.Settings.Bool(settings.KeyOculusProject),
		Namespace:   r.compat.AtLeast7(),
	})

	cfg := emitter.Config{
		BuildDir:          r.opts.BuildDir,
		EngineRoot:        r.opts.EngineRoot,
		ProjectDir:        r.opts.ProjectDir,
		ProjectName:       r.name,
		PackageName:       r.android.PackageName,
		Compat:            r.compat,
		Tools:             r.tools,
		SDKRoot:           r.sdk.Root(),
		NDKPath:           r.packages.ndkPath,
		NDKVersion:        r.packages.ndkVersion,
		BuildToolsVersion: r.packages.buildTools,
		PlatformAPI:       g.Settings.Get(settings.KeyPlatformAPI),
		MinAPI:            g.Settings.Get(settings.KeyMinAPI),
		AssetMode:         g.Settings.Get(settings.KeyAssetMode),
		StripDebug:        g.Settings.Bool(settings.KeyStripDebug),
		Oculus:            g.Settings.Bool(settings.KeyOculusProject),
		IconResample:      g.Settings.Bool(settings.KeyIconResample),
		ExtraCMakeArgs:    g.Settings.Get(settings.KeyExtraCMakeArgs),
		GradleJVMArgs:     g.Settings.Get(settings.KeyGradleJVMArgs),
		Signing:           r.signing,
		Manifest:          r.env,
		Now:               g.Now,
	}
	e, err := emitter.New(cfg, emitter.NewTemplates(r.opts.EngineRoot), g.Runner, g.Logger)
	if err != nil {
		return err
	}
	r.emitter = e
	return nil
}

func (g *Generator) patchLibraries(ctx context.Context, r *run) error {
	templates := emitter.NewTemplates(r.opts.EngineRoot)
	text, err := templates.Text(emitter.LibraryRulesFile)
	if err != nil {
		return errors.NewFileSystemError(err, fmt.Sprintf("failed to read %s", templates.Location(emitter.LibraryRulesFile)))
	}
	values := libpatch.RuleValues(r.sdk.Root(), g.Settings.Get(settings.KeyPlatformAPI))
	libs, err := libpatch.ParseRules(text, values, templates.Location(emitter.LibraryRulesFile))
	if err != nil {
		return err
	}

	patcher := &libpatch.Patcher{
		BuildDir:  r.opts.BuildDir,
		Namespace: r.compat.AtLeast7(),
		Renderer:  r.emitter,
		Logger:    g.Logger,
	}
	modules, err := patcher.Apply(libs)
	if err != nil {
		return err
	}
	r.modules = modules
	return nil
}

func (g *Generator) emit(ctx context.Context, r *run) error {
	return r.emitter.Emit(r.modules)
}

func (g *Generator) wrapper(ctx context.Context, r *run) error {
	return r.emitter.RunWrapper(ctx)
}

func (g *Generator) report(r *run, err error, elapsed time.Duration) {
	reporter := errors.NewErrorReporter(r.opts.BuildDir, version.Short(), g.Logger)
	var tools map[string]string
	if r.tools != nil {
		tools = r.tools.Versions()
	}
	report := reporter.GenerateReport(err, &errors.OperationContext{
		Command:     "android-generate",
		ProjectPath: r.opts.ProjectDir,
		BuildDir:    r.opts.BuildDir,
		Duration:    elapsed,
		Step:        r.progress.Current(),
	}, tools)
	report.Timestamp = g.now()
	if path, saveErr := reporter.SaveReport(report); saveErr != nil {
		g.Logger.Warn("Could not write the error report: %v", saveErr)
	} else if path != "" {
		g.Logger.Info("Error report written to %s", path)
	}
}
