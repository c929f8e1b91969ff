package generator

import (
	"context"

	"github.com/huanfeng/androidgen-cli/internal/errors"
	"github.com/huanfeng/androidgen-cli/pkg/agp"
	"github.com/huanfeng/androidgen-cli/pkg/sdk"
	"github.com/huanfeng/androidgen-cli/pkg/settings"
	"github.com/huanfeng/androidgen-cli/pkg/utils"
)

// OptionalPackages back the default library rules. They are installed when the SDK still
// offers them. A missing one fails generation with LIBRARY_NOT_FOUND unless another source
// directory listed for the library exists.
var OptionalPackages = []struct {
	Pattern string
	Name    string
}{
	{"extras;google;market_licensing", "Google Play Licensing Library"},
	{"extras;google;market_apk_expansion", "Google Play APK Expansion Library"},
}

type installed struct {
	platform   string
	buildTools string
	ndkVersion string
	ndkPath    string
}

// ensurePackages installs the platform, build-tools and NDK an emit run needs. An installed
// build-tools release that satisfies the plugin minimum is reused; otherwise the minimum
// itself is installed.
func ensurePackages(ctx context.Context, mgr *sdk.Manager, compat *agp.Compatibility, s Settings, logger utils.Logger) (*installed, error) {
	out := &installed{}

	platform, err := mgr.InstallPackage(ctx, "platforms;android-"+s.Get(settings.KeyPlatformAPI), "Android SDK Platform")
	if err != nil {
		return nil, err
	}
	out.platform = platform.Path()

	buildTools := ""
	if current := mgr.GetPackageList("build-tools;*", sdk.Installed); len(current) > 0 {
		if compat.ValidateBuildToolsVersion(current[0].Version()) == nil {
			buildTools = current[0].Version()
		}
	}
	if buildTools == "" {
		pkg, err := mgr.InstallPackage(ctx, "build-tools;"+compat.Record.MinBuildTools, "Android SDK Build-Tools")
		if err != nil {
			return nil, err
		}
		if err := compat.ValidateBuildToolsVersion(pkg.Version()); err != nil {
			return nil, err
		}
		buildTools = pkg.Version()
	}
	out.buildTools = buildTools

	ndk, err := mgr.InstallPackage(ctx, "ndk;"+s.Get(settings.KeyNDKVersion), "Android NDK")
	if err != nil {
		return nil, err
	}
	out.ndkVersion = ndk.Version()
	out.ndkPath = mgr.InstallPath(ndk)

	for _, opt := range OptionalPackages {
		if _, err := mgr.InstallPackage(ctx, opt.Pattern, opt.Name); err != nil {
			var te *errors.ToolError
			if errors.As(err, &te) && te.Type == errors.ErrorTypeUnknownPackage {
				logger.Warn("%s (%s) is not offered by sdkmanager; generation will fail with LIBRARY_NOT_FOUND unless the library rules point at another copy of it", opt.Name, opt.Pattern)
				continue
			}
			return nil, err
		}
	}

	logger.Info("Using %s, build-tools %s, NDK %s", out.platform, out.buildTools, out.ndkVersion)
	return out, nil
}
