package emitter

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/huanfeng/androidgen-cli/pkg/imaging"
	"github.com/huanfeng/androidgen-cli/pkg/textio"
	"github.com/huanfeng/androidgen-cli/pkg/utils"
)

// Template file names
const (
	AppGradleTemplate  = "build.gradle.in"
	RootGradleTemplate = "root.build.gradle.in"
	GradlePropTemplate = "gradle.properties.in"
	LocalPropTemplate  = "local.properties.in"
	ManifestTemplate   = "AndroidManifest.xml"
	LibraryRulesFile   = "android_libraries.json"
	BuilderRulesFile   = "android_builder.json"
)

// EngineTemplateDir is where an engine keeps its project builder templates
var EngineTemplateDir = filepath.Join("Code", "Tools", "Android", "ProjectBuilder")

//go:embed templates
var builtin embed.FS

// Templates resolves template files from the engine's project builder directory, falling
// back to the defaults built into the binary
type Templates struct {
	dir string
}

// NewTemplates returns the template source for an engine. An empty engine root uses only
// the built-in defaults.
func NewTemplates(engineRoot string) *Templates {
	t := &Templates{}
	if engineRoot != "" {
		t.dir = filepath.Join(engineRoot, EngineTemplateDir)
	}
	return t
}

// Dir returns the engine template directory, or "" when none is used
func (t *Templates) Dir() string {
	return t.dir
}

// Location describes where rel is read from, for messages
func (t *Templates) Location(rel string) string {
	if p := t.enginePath(rel); p != "" {
		return p
	}
	return "builtin:" + path.Clean(filepath.ToSlash(rel))
}

func (t *Templates) enginePath(rel string) string {
	if t.dir == "" {
		return ""
	}
	p := filepath.Join(t.dir, filepath.FromSlash(rel))
	if utils.FileExists(p) {
		return p
	}
	return ""
}

// Bytes reads a template file
func (t *Templates) Bytes(rel string) ([]byte, error) {
	if p := t.enginePath(rel); p != "" {
		return os.ReadFile(p)
	}
	return fs.ReadFile(builtin, path.Join("templates", filepath.ToSlash(rel)))
}

// Text reads a template file as text
func (t *Templates) Text(rel string) (string, error) {
	data, err := t.Bytes(rel)
	if err != nil {
		return "", err
	}
	return textio.Decode(data), nil
}

// IsBinary reports whether data sniffs as one of the known image formats
func IsBinary(data []byte) bool {
	return imaging.Format(data) != ""
}
