package emitter

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/huanfeng/androidgen-cli/internal/errors"
	"github.com/huanfeng/androidgen-cli/pkg/imaging"
	"github.com/huanfeng/androidgen-cli/pkg/manifest"
	"github.com/huanfeng/androidgen-cli/pkg/rules"
	"github.com/huanfeng/androidgen-cli/pkg/template"
	"github.com/huanfeng/androidgen-cli/pkg/textio"
	"github.com/huanfeng/androidgen-cli/pkg/utils"
)

// Resource file names inside the app module
const (
	IconFile   = "app_icon.png"
	SplashFile = "app_splash.png"
	DefaultKey = "default"
)

// SplashDensities excludes xxxhdpi, which splash screens do not ship
var SplashDensities = []string{"mdpi", "hdpi", "xhdpi", "xxhdpi"}

func (e *Emitter) resDir() string {
	return filepath.Join(e.cfg.AppDir(), "src", "main", "res")
}

// applyBuilderRules walks android_builder.json, copying binary files and expanding text
// files with the manifest environment
func (e *Emitter) applyBuilderRules() error {
	text, err := e.templates.Text(BuilderRulesFile)
	if err != nil {
		return errors.NewFileSystemError(err, fmt.Sprintf("failed to read %s", e.templates.Location(BuilderRulesFile)))
	}
	expanded, err := template.Expand(text, e.cfg.Manifest.Values, template.Safe)
	if err != nil {
		return errors.NewInternalError("RULES_TEMPLATE", fmt.Sprintf("%s: %v", e.templates.Location(BuilderRulesFile), err))
	}
	tree, err := rules.ParseTree([]byte(expanded))
	if err != nil {
		return errors.NewInternalError("RULES_MALFORMED", fmt.Sprintf("%s: %v", e.templates.Location(BuilderRulesFile), err))
	}
	return e.walkRules(tree, "", e.cfg.AppDir())
}

func (e *Emitter) walkRules(node *rules.Node, src, dst string) error {
	for _, entry := range node.Object {
		switch entry.Value.Kind {
		case rules.KindString:
			target := filepath.Join(dst, filepath.FromSlash(entry.Value.String), path.Base(entry.Key))
			if err := e.emitRuleFile(path.Join(src, entry.Key), target); err != nil {
				return err
			}
		case rules.KindList:
			for _, name := range entry.Value.List {
				target := filepath.Join(dst, filepath.FromSlash(entry.Key), name)
				if err := e.emitRuleFile(path.Join(src, entry.Key, name), target); err != nil {
					return err
				}
			}
		case rules.KindObject:
			if err := e.walkRules(entry.Value, path.Join(src, entry.Key), filepath.Join(dst, filepath.FromSlash(entry.Key))); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Emitter) emitRuleFile(src, dst string) error {
	data, err := e.templates.Bytes(src)
	if err != nil {
		return errors.NewFileSystemError(err, fmt.Sprintf("failed to read template %s", e.templates.Location(src)))
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.NewFileSystemError(err, fmt.Sprintf("failed to create %s", filepath.Dir(dst)))
	}
	if IsBinary(data) {
		err = os.WriteFile(dst, data, 0644)
	} else {
		var out string
		out, err = template.Expand(textio.Decode(data), e.cfg.Manifest.Values, template.Safe)
		if err == nil {
			err = textio.WriteFile(dst, out, 0644)
		}
	}
	if err != nil {
		return errors.NewFileSystemError(err, fmt.Sprintf("failed to write %s", dst))
	}
	e.logger.Debug("Emitted %s", dst)
	return nil
}

// overrideSet is one cascade of resource overrides: a default plus per-density files. dir
// maps a density to its res/ subdirectory, "" being the default.
type overrideSet struct {
	overrides map[string]string
	densities []string
	dir       func(density string) string
	file      string
	resample  bool
}

// applyOverrides copies the overrides and returns the densities that had neither an override nor a
// default
func (e *Emitter) applyOverrides(set overrideSet) ([]string, error) {
	res := e.resDir()
	def, hasDefault := set.overrides[DefaultKey]
	if hasDefault {
		if err := e.copyOverride(def, filepath.Join(res, set.dir(""), set.file), 0); err != nil {
			return nil, err
		}
	}

	var missing []string
	for _, density := range set.densities {
		target := filepath.Join(res, set.dir(density))
		if src, ok := set.overrides[density]; ok {
			size := uint(0)
			if set.resample {
				size = imaging.LauncherSizes[density]
			}
			if err := e.copyOverride(src, filepath.Join(target, set.file), size); err != nil {
				return nil, err
			}
			continue
		}
		if hasDefault {
			if err := os.RemoveAll(target); err != nil {
				return nil, errors.NewFileSystemError(err, fmt.Sprintf("failed to remove %s", target))
			}
			continue
		}
		missing = append(missing, density)
	}
	return missing, nil
}

// copyOverride copies a project file into the app resources. A non-zero size resamples it.
func (e *Emitter) copyOverride(rel, dst string, size uint) error {
	src := rel
	if !filepath.IsAbs(src) {
		src = filepath.Join(e.cfg.ProjectDir, filepath.FromSlash(rel))
	}
	if !utils.FileExists(src) {
		return errors.NewConfigurationError("OVERRIDE_NOT_FOUND",
			fmt.Sprintf("resource override %s not found (resolved to %s)", rel, src))
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.NewFileSystemError(err, fmt.Sprintf("failed to create %s", filepath.Dir(dst)))
	}
	var err error
	if size > 0 {
		err = imaging.ResampleIcon(src, dst, size)
	} else {
		err = utils.CopyFile(src, dst)
	}
	if err != nil {
		return errors.NewFileSystemError(err, fmt.Sprintf("failed to copy %s to %s", src, dst))
	}
	e.logger.Debug("Copied override %s to %s", src, dst)
	return nil
}

func (e *Emitter) applyIcons() error {
	missing, err := e.applyOverrides(overrideSet{
		overrides: e.cfg.Manifest.Icons,
		densities: imaging.Densities,
		dir: func(density string) string {
			if density == "" {
				return "mipmap"
			}
			return "mipmap-" + density
		},
		file:     IconFile,
		resample: e.cfg.IconResample,
	})
	if err != nil {
		return err
	}
	e.warnMissing("icon", missing, len(imaging.Densities))
	return nil
}

func (e *Emitter) applySplashes() error {
	env := e.cfg.Manifest
	for _, bucket := range []struct {
		name string
		bit  manifest.Orientation
	}{
		{"land", manifest.Landscape},
		{"port", manifest.Portrait},
	} {
		overrides := env.Splash[bucket.name]
		if !env.Orientation.Has(bucket.bit) {
			if len(overrides) > 0 {
				e.logger.Warn("Splash screen overrides for '%s' will be ignored: orientation is %s",
					bucket.name, env.Values["ANDROID_SCREEN_ORIENTATION"])
			}
			continue
		}
		orient := bucket.name
		missing, err := e.applyOverrides(overrideSet{
			overrides: overrides,
			densities: SplashDensities,
			dir: func(density string) string {
				if density == "" {
					return "drawable-" + orient
				}
				return "drawable-" + orient + "-" + density
			},
			file: SplashFile,
		})
		if err != nil {
			return err
		}
		e.warnMissing("'"+orient+"' splash screen", missing, len(SplashDensities))
	}
	return nil
}

func (e *Emitter) warnMissing(what string, missing []string, total int) {
	switch {
	case len(missing) == 0:
	case len(missing) == total:
		e.logger.Warn("No %s overrides were specified; the template defaults will be used", what)
	default:
		for _, density := range missing {
			e.logger.Warn("No %s override for %s and no default; the template %s will be used", what, density, what)
		}
	}
}

// pruneOrientation removes the drawable trees of the orientation the app never uses
func (e *Emitter) pruneOrientation() error {
	var unused string
	switch e.cfg.Manifest.Orientation {
	case manifest.Landscape:
		unused = "drawable-port"
	case manifest.Portrait:
		unused = "drawable-land"
	default:
		return nil
	}

	res := e.resDir()
	entries, err := os.ReadDir(res)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.NewFileSystemError(err, fmt.Sprintf("failed to read %s", res))
	}
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || (name != unused && !strings.HasPrefix(name, unused+"-")) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(res, name)); err != nil {
			return errors.NewFileSystemError(err, fmt.Sprintf("failed to remove %s", name))
		}
		e.logger.Debug("Pruned %s", name)
	}
	return nil
}
