package emitter

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/huanfeng/androidgen-cli/internal/errors"
	"github.com/huanfeng/androidgen-cli/pkg/agp"
	"github.com/huanfeng/androidgen-cli/pkg/manifest"
	"github.com/huanfeng/androidgen-cli/pkg/toolchain"
)

// Asset deploy modes
const (
	AssetModeLoose = "LOOSE"
	AssetModePAK   = "PAK"
	AssetModeNone  = "NONE"
)

// Variants are the build configurations emitted into app/build.gradle, in order
var Variants = []string{"Debug", "Profile", "Release"}

// Signing is the keystore used for every variant
type Signing struct {
	StoreFile     string
	StorePassword string
	KeyAlias      string
	KeyPassword   string
}

// NewSigning returns nil when none of the four signconfig values is set and a Signing when
// all of them are. Any other combination is a SIGNING_INCOMPLETE configuration error naming
// the missing keys.
func NewSigning(storeFile, storePassword, keyAlias, keyPassword string) (*Signing, error) {
	values := []struct{ key, value string }{
		{"signconfig.store.file", storeFile},
		{"signconfig.store.password", storePassword},
		{"signconfig.key.alias", keyAlias},
		{"signconfig.key.password", keyPassword},
	}
	var missing []string
	for _, v := range values {
		if v.value == "" {
			missing = append(missing, v.key)
		}
	}
	switch len(missing) {
	case len(values):
		return nil, nil
	case 0:
		return &Signing{
			StoreFile:     storeFile,
			StorePassword: storePassword,
			KeyAlias:      keyAlias,
			KeyPassword:   keyPassword,
		}, nil
	}
	return nil, errors.NewConfigurationError("SIGNING_INCOMPLETE",
		fmt.Sprintf("signing is partially configured; missing %s", strings.Join(missing, ", "))).
		WithContext("missing", strings.Join(missing, ",")).
		WithSuggestion("Set all four signconfig.* values with 'androidgen android-register --set-value', or clear them all to build unsigned")
}

// Config is everything an emit run reads. Paths are absolute.
type Config struct {
	BuildDir   string
	EngineRoot string
	ProjectDir string

	ProjectName string
	PackageName string

	Compat *agp.Compatibility
	Tools  *toolchain.Toolchain

	SDKRoot           string
	NDKPath           string
	NDKVersion        string
	BuildToolsVersion string
	PlatformAPI       string
	MinAPI            string

	AssetMode      string
	StripDebug     bool
	Oculus         bool
	IconResample   bool
	ExtraCMakeArgs string
	GradleJVMArgs  string
	Signing        *Signing

	Manifest *manifest.Environment

	Now func() time.Time
}

// AppDir is the application module directory
func (c *Config) AppDir() string {
	return filepath.Join(c.BuildDir, "app")
}

func (c *Config) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
