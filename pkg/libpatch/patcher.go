package libpatch

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/huanfeng/androidgen-cli/internal/errors"
	"github.com/huanfeng/androidgen-cli/pkg/textio"
	"github.com/huanfeng/androidgen-cli/pkg/utils"
)

var (
	packageAttr      = regexp.MustCompile(`package\s*=\s*"([^"]+)"`)
	packageAttrStrip = regexp.MustCompile(`\s+package\s*=\s*"[^"]*"`)
)

// Module is an emitted Gradle library module
type Module struct {
	Name              string
	Dir               string
	SourceDir         string
	Namespace         string
	Dependencies      []string
	BuildDependencies []string
}

// DependencyLines renders the module's api dependencies, one per line
func (m *Module) DependencyLines() []string {
	var out []string
	for _, dep := range m.Dependencies {
		out = append(out, fmt.Sprintf("api project(path: ':%s')", dep))
	}
	for _, dep := range m.BuildDependencies {
		out = append(out, fmt.Sprintf("api '%s'", dep))
	}
	return out
}

// GradleRenderer renders the shared build.gradle template for a library module
type GradleRenderer interface {
	RenderLibraryGradle(m *Module) (string, error)
}

// Patcher emits one module directory per library under BuildDir
type Patcher struct {
	BuildDir string
	// Namespace selects the namespace DSL (AGP 7.0 and later); package= is then removed from
	// the emitted manifest
	Namespace bool
	Renderer  GradleRenderer
	Logger    utils.Logger
}

// Apply emits every library in order
func (p *Patcher) Apply(libs []*Library) ([]*Module, error) {
	var modules []*Module
	for _, lib := range libs {
		m, err := p.PatchLibrary(lib)
		if err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, nil
}

// ResolveSourceDir returns the first candidate directory that exists
func ResolveSourceDir(lib *Library) (string, error) {
	for _, candidate := range lib.SrcDir {
		if utils.DirExists(candidate) {
			return candidate, nil
		}
	}
	return "", errors.NewConfigurationError("LIBRARY_NOT_FOUND",
		fmt.Sprintf("source of library '%s' not found; searched:\n  %s", lib.Name, strings.Join(lib.SrcDir, "\n  "))).
		WithSuggestion("Install the library with 'androidgen android-sdk install' or check sdk.root")
}

// PatchLibrary emits the module directory for one library
func (p *Patcher) PatchLibrary(lib *Library) (*Module, error) {
	src, err := ResolveSourceDir(lib)
	if err != nil {
		return nil, err
	}
	m := &Module{
		Name:              lib.Name,
		Dir:               filepath.Join(p.BuildDir, lib.Name),
		SourceDir:         src,
		Dependencies:      lib.Dependencies,
		BuildDependencies: lib.BuildDependencies,
	}
	p.Logger.Info("Patching library %s from %s", lib.Name, src)

	mainDir := filepath.Join(m.Dir, "src", "main")
	if err := os.MkdirAll(mainDir, 0755); err != nil {
		return nil, errors.NewFileSystemError(err, fmt.Sprintf("failed to create %s", mainDir))
	}
	for _, tree := range []struct{ from, to string }{
		{filepath.Join(src, "res"), filepath.Join(mainDir, "res")},
		{filepath.Join(src, "src"), filepath.Join(mainDir, "java")},
	} {
		if !utils.DirExists(tree.from) {
			continue
		}
		if err := utils.CopyTree(tree.from, tree.to); err != nil {
			return nil, errors.NewFileSystemError(err, fmt.Sprintf("failed to copy %s", tree.from))
		}
	}

	manifest, err := textio.ReadFile(filepath.Join(src, "AndroidManifest.xml"))
	if err != nil {
		return nil, errors.NewFileSystemError(err, fmt.Sprintf("library '%s' has no AndroidManifest.xml", lib.Name))
	}

	for _, patch := range lib.Patches {
		rel := filepath.FromSlash(patch.Path)
		text, err := textio.ReadFile(filepath.Join(src, rel))
		if err != nil {
			return nil, errors.NewFileSystemError(err, fmt.Sprintf("failed to read patch target %s of library '%s'", patch.Path, lib.Name))
		}
		patched, err := ApplyChanges(text, patch.Changes)
		if err != nil {
			return nil, errors.NewInternalError("PATCH_FAILED", fmt.Sprintf("library '%s', %s: %v", lib.Name, patch.Path, err))
		}
		if filepath.Base(rel) == "AndroidManifest.xml" && filepath.Dir(rel) == "." {
			manifest = patched
			continue
		}
		dst := filepath.Join(mainDir, patchDestination(rel))
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return nil, errors.NewFileSystemError(err, fmt.Sprintf("failed to create %s", filepath.Dir(dst)))
		}
		if err := textio.WriteFile(dst, patched, 0644); err != nil {
			return nil, errors.NewFileSystemError(err, fmt.Sprintf("failed to write %s", dst))
		}
		p.Logger.Debug("Patched %s (%d changes)", dst, len(patch.Changes))
	}

	if match := packageAttr.FindStringSubmatch(manifest); match != nil {
		m.Namespace = match[1]
	} else if p.Namespace {
		return nil, errors.NewInternalError("NO_PACKAGE",
			fmt.Sprintf("AndroidManifest.xml of library '%s' declares no package", lib.Name))
	}
	if p.Namespace {
		manifest = packageAttrStrip.ReplaceAllString(manifest, "")
	}
	manifestPath := filepath.Join(mainDir, "AndroidManifest.xml")
	if err := textio.WriteFile(manifestPath, manifest, 0644); err != nil {
		return nil, errors.NewFileSystemError(err, fmt.Sprintf("failed to write %s", manifestPath))
	}

	gradle, err := p.Renderer.RenderLibraryGradle(m)
	if err != nil {
		return nil, err
	}
	gradlePath := filepath.Join(m.Dir, "build.gradle")
	if err := textio.WriteFile(gradlePath, gradle, 0644); err != nil {
		return nil, errors.NewFileSystemError(err, fmt.Sprintf("failed to write %s", gradlePath))
	}
	return m, nil
}

// patchDestination maps a library-relative path onto the module's src/main layout
func patchDestination(rel string) string {
	parts := strings.SplitN(filepath.ToSlash(rel), "/", 2)
	if len(parts) == 2 {
		switch parts[0] {
		case "src":
			return filepath.Join("java", filepath.FromSlash(parts[1]))
		case "res":
			return filepath.Join("res", filepath.FromSlash(parts[1]))
		}
	}
	return rel
}
