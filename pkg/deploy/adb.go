package deploy

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/huanfeng/androidgen-cli/internal/errors"
	"github.com/huanfeng/androidgen-cli/pkg/system"
	"github.com/huanfeng/androidgen-cli/pkg/utils"
)

// Device is one entry of 'adb devices -l'
type Device struct {
	Serial    string `json:"serial" yaml:"serial"`
	State     string `json:"state" yaml:"state"`
	Model     string `json:"model,omitempty" yaml:"model,omitempty"`
	Product   string `json:"product,omitempty" yaml:"product,omitempty"`
	Transport string `json:"transport_id,omitempty" yaml:"transport_id,omitempty"`
}

// Online reports whether adb can install onto the device
func (d Device) Online() bool {
	return d.State == "device"
}

// ADBPath returns the adb executable inside an SDK
func ADBPath(sdkRoot string) string {
	return filepath.Join(sdkRoot, "platform-tools", system.ExecutableName("adb", false))
}

// ADB runs adb from the SDK's platform-tools
type ADB struct {
	path   string
	runner system.Runner
}

// NewADB resolves adb under sdkRoot
func NewADB(sdkRoot string, runner system.Runner) (*ADB, error) {
	if sdkRoot == "" {
		return nil, errors.NewConfigurationError("SDK_ROOT_UNSET", "sdk.root is not set").
			WithSuggestion("Register it with 'androidgen android-register --global --set-value sdk.root=<path>'")
	}
	path := ADBPath(sdkRoot)
	if !utils.FileExists(path) {
		return nil, errors.NewConfigurationError("ADB_MISSING", fmt.Sprintf("adb not found at %s", path)).
			WithSuggestion("Install platform-tools with 'androidgen android-sdk install \"platform-tools\"'")
	}
	return &ADB{path: path, runner: runner}, nil
}

// Path returns the adb executable
func (a *ADB) Path() string {
	return a.path
}

func (a *ADB) run(ctx context.Context, args ...string) (system.Command, *system.Result, error) {
	cmd := system.Command{Path: a.path, Args: args}
	res, err := a.runner.Run(ctx, cmd)
	if err != nil {
		return cmd, nil, errors.WrapError(err, errors.ErrorTypeExternalTool, "ADB_FAILED",
			fmt.Sprintf("failed to run %s", cmd.String()))
	}
	return cmd, res, nil
}

// Devices lists attached devices in adb's order
func (a *ADB) Devices(ctx context.Context) ([]Device, error) {
	cmd, res, err := a.run(ctx, "devices", "-l")
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, errors.NewExternalToolError(cmd.String(), res.ExitCode, res.Output())
	}
	return ParseDevices(res.Stdout), nil
}

// ParseDevices parses 'adb devices -l' output
func ParseDevices(output string) []Device {
	var devices []Device
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "List of devices") || strings.HasPrefix(line, "*") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}
		d := Device{Serial: parts[0], State: parts[1]}
		for _, part := range parts[2:] {
			key, value, ok := strings.Cut(part, ":")
			if !ok {
				continue
			}
			switch key {
			case "model":
				d.Model = value
			case "product":
				d.Product = value
			case "transport_id":
				d.Transport = value
			}
		}
		devices = append(devices, d)
	}
	return devices
}

// Install runs 'adb [-s serial] install -t -r apk'. adb reports some failures with exit code
// zero and a "Failure [...]" line; both count as failures.
func (a *ADB) Install(ctx context.Context, apkPath, serial string) error {
	var args []string
	if serial != "" {
		args = append(args, "-s", serial)
	}
	args = append(args, "install", "-t", "-r", apkPath)

	cmd, res, err := a.run(ctx, args...)
	if err != nil {
		return err
	}
	combined := res.Combined()
	if res.ExitCode == 0 && !strings.Contains(combined, "Failure [") {
		return nil
	}

	exit := res.ExitCode
	if exit == 0 {
		exit = 1
	}
	code, summary, suggestions := parseInstallError(combined)
	e := errors.NewExternalToolError(cmd.String(), exit, res.Output()).
		WithContext("apk", apkPath).
		WithContext("reason", summary).
		WithSuggestions(suggestions)
	e.Code = "INSTALL_" + code
	if serial != "" {
		e.WithContext("device", serial)
	}
	return e
}

var installFailure = regexp.MustCompile(`INSTALL_FAILED_([A-Z_]+)`)

type installFailureInfo struct {
	code        string
	summary     string
	suggestions []string
}

// installFailures covers the adb failures a freshly generated debug build runs into
var installFailures = []struct {
	pattern string
	info    installFailureInfo
}{
	{"INSTALL_FAILED_UPDATE_INCOMPATIBLE", installFailureInfo{"UPDATE_INCOMPATIBLE",
		"An installed build is signed with a different key",
		[]string{"Uninstall the existing app with 'adb uninstall <package>'", "Sign every configuration with the same keystore"}}},
	{"INSTALL_FAILED_VERSION_DOWNGRADE", installFailureInfo{"VERSION_DOWNGRADE",
		"The installed build has a higher version_number",
		[]string{"Raise version_number in android_project.json", "Uninstall the existing app first"}}},
	{"INSTALL_FAILED_INSUFFICIENT_STORAGE", installFailureInfo{"INSUFFICIENT_STORAGE",
		"Not enough storage space on device",
		[]string{"Free up storage space on the device", "Deploy loose assets less often by switching asset.mode to PAK"}}},
	{"INSTALL_FAILED_NO_MATCHING_ABIS", installFailureInfo{"NO_MATCHING_ABIS",
		"The device does not support arm64-v8a",
		[]string{"Deploy to a 64-bit ARM device or an arm64 emulator image"}}},
	{"INSTALL_FAILED_OLDER_SDK", installFailureInfo{"OLDER_SDK",
		"The device runs an Android version below platform.min.api",
		[]string{"Lower platform.min.api with 'androidgen android-register --set-value platform.min.api=<api>'", "Use a newer device"}}},
	{"INSTALL_FAILED_INVALID_APK", installFailureInfo{"INVALID_APK",
		"The APK is invalid or corrupted",
		[]string{"Rebuild the APK with the Gradle wrapper in the build directory"}}},
	{"INSTALL_PARSE_FAILED_NO_CERTIFICATES", installFailureInfo{"NO_CERTIFICATES",
		"The APK is not signed",
		[]string{"Register signconfig.* settings and regenerate the project, or deploy the Debug configuration"}}},
	{"INSTALL_FAILED_USER_RESTRICTED", installFailureInfo{"USER_RESTRICTED",
		"The install was rejected on the device",
		[]string{"Allow installs over USB in the device's developer options"}}},
}

// parseInstallError maps adb output onto a failure code, a summary and suggestions
func parseInstallError(output string) (string, string, []string) {
	upper := strings.ToUpper(output)
	for _, f := range installFailures {
		if strings.Contains(upper, f.pattern) {
			return f.info.code, f.info.summary, f.info.suggestions
		}
	}
	if m := installFailure.FindStringSubmatch(upper); m != nil {
		return m[1], "Installation failed: " + m[1], []string{"Check 'adb logcat' on the device for details"}
	}
	if strings.Contains(upper, "NO DEVICES/EMULATORS FOUND") || strings.Contains(upper, "DEVICE OFFLINE") {
		return "NO_DEVICE", "No device is available", []string{"Connect a device and check it with 'adb devices'"}
	}
	if strings.Contains(upper, "MORE THAN ONE DEVICE") {
		return "MULTIPLE_DEVICES", "More than one device is attached",
			[]string{"Select one with --device <serial>", "Install on every device with --all-devices"}
	}
	return "FAILED", "Unknown installation error", []string{"Check the adb connection", "Try restarting the adb server with 'adb kill-server'"}
}
