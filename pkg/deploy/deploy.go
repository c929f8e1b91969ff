// Package deploy installs a built APK from the emitted Gradle project onto devices with adb.
package deploy

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shogo82148/androidbinary/apk"

	"github.com/huanfeng/androidgen-cli/internal/device"
	"github.com/huanfeng/androidgen-cli/internal/errors"
	"github.com/huanfeng/androidgen-cli/pkg/emitter"
	"github.com/huanfeng/androidgen-cli/pkg/utils"
)

// APKPath returns app/build/outputs/apk/<config>/app-<config>.apk under buildDir. config is
// one of Debug, Profile or Release, in any case.
func APKPath(buildDir, config string) (string, error) {
	variant := ""
	for _, v := range emitter.Variants {
		if strings.EqualFold(v, config) {
			variant = strings.ToLower(v)
		}
	}
	if variant == "" {
		return "", errors.NewConfigurationError("INVALID_CONFIG",
			fmt.Sprintf("unknown build configuration '%s', expected one of %s", config, strings.Join(emitter.Variants, ", ")))
	}
	return filepath.Join(buildDir, "app", "build", "outputs", "apk", variant, "app-"+variant+".apk"), nil
}

// APKInfo is what the binary manifest of a built APK says about it
type APKInfo struct {
	Package     string
	VersionName string
	VersionCode int32
}

// ReadAPKInfo parses the binary AndroidManifest.xml of an APK
func ReadAPKInfo(path string) (*APKInfo, error) {
	pkg, err := apk.OpenFile(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeFileSystem, "APK_UNREADABLE",
			fmt.Sprintf("failed to read %s", path))
	}
	defer pkg.Close()

	manifest := pkg.Manifest()
	return &APKInfo{
		Package:     manifest.Package.MustString(),
		VersionName: manifest.VersionName.MustString(),
		VersionCode: manifest.VersionCode.MustInt32(),
	}, nil
}

// Options selects what to install and where
type Options struct {
	BuildDir    string
	Config      string
	PackageName string
	Device      string
	AllDevices  bool
	Jobs        int
}

// Outcome is the install result for one device. Serial is empty when adb picked the device.
type Outcome struct {
	Serial string `json:"serial" yaml:"serial"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Deployer installs the emitted project's APK
type Deployer struct {
	adb    *ADB
	logger utils.Logger
}

// NewDeployer creates a deployer
func NewDeployer(adb *ADB, logger utils.Logger) *Deployer {
	return &Deployer{adb: adb, logger: logger}
}

// Deploy resolves the APK and installs it. With AllDevices every online device is served by
// the device worker pool and the first failure is returned after all devices finish.
func (d *Deployer) Deploy(ctx context.Context, opts Options) ([]Outcome, error) {
	path, err := APKPath(opts.BuildDir, opts.Config)
	if err != nil {
		return nil, err
	}
	if !utils.FileExists(path) {
		return nil, errors.NewConfigurationError("APK_NOT_FOUND", fmt.Sprintf("APK not found at %s", path)).
			WithContext("apk", path).
			WithSuggestion(fmt.Sprintf("Build it first with the Gradle wrapper in %s", opts.BuildDir))
	}
	d.checkPackage(path, opts.PackageName)

	if !opts.AllDevices {
		d.logger.Info("Installing %s", path)
		if err := d.adb.Install(ctx, path, opts.Device); err != nil {
			return []Outcome{{Serial: opts.Device, Error: err.Error()}}, err
		}
		return []Outcome{{Serial: opts.Device}}, nil
	}

	devices, err := d.adb.Devices(ctx)
	if err != nil {
		return nil, err
	}
	var serials []string
	for _, dev := range devices {
		if dev.Online() {
			serials = append(serials, dev.Serial)
		} else {
			d.logger.Warn("Skipping %s: device is %s", dev.Serial, dev.State)
		}
	}
	if len(serials) == 0 {
		return nil, errors.NewDeviceError("NO_DEVICE", "no online device is attached")
	}

	manager := device.NewManager[struct{}](device.WithWorkerLimit[struct{}](opts.Jobs))
	results := manager.Run(ctx, serials, func(ctx context.Context, serial string) (struct{}, error) {
		d.logger.Info("Installing %s on %s", path, serial)
		return struct{}{}, d.adb.Install(ctx, path, serial)
	})

	outcomes := make([]Outcome, len(results))
	var first error
	for i, r := range results {
		outcomes[i] = Outcome{Serial: r.Serial}
		if r.Err != nil {
			outcomes[i].Error = r.Err.Error()
			if first == nil {
				first = r.Err
			}
		}
	}
	return outcomes, first
}

func (d *Deployer) checkPackage(path, expected string) {
	if expected == "" {
		return
	}
	info, err := ReadAPKInfo(path)
	if err != nil {
		d.logger.Warn("Could not read the APK manifest: %v", err)
		return
	}
	if info.Package != expected {
		d.logger.Warn("APK package '%s' does not match package_name '%s'; regenerate the project", info.Package, expected)
		return
	}
	d.logger.Debug("APK %s version %s (%d)", info.Package, info.VersionName, info.VersionCode)
}
