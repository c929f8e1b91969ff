// Package manifest computes the substitution environment for AndroidManifest.xml and the
// Gradle templates. Everything here is a pure function of its inputs.
package manifest

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"

	"github.com/huanfeng/androidgen-cli/pkg/project"
)

// Orientation is a bit set of the orientations the app supports
type Orientation int

const (
	Landscape Orientation = 1 << iota
	Portrait

	Both = Landscape | Portrait
)

// Has reports whether every bit of o2 is set
func (o Orientation) Has(o2 Orientation) bool {
	return o&o2 == o2
}

var orientationBits = map[string]Orientation{
	"landscape":        Landscape,
	"reverseLandscape": Landscape,
	"sensorLandscape":  Landscape,
	"userLandscape":    Landscape,
	"portrait":         Portrait,
	"reversePortrait":  Portrait,
	"sensorPortrait":   Portrait,
	"userPortrait":     Portrait,
}

// ResolveOrientation maps an android:screenOrientation value onto its bits. Values that do
// not pin an orientation enable both.
func ResolveOrientation(value string) Orientation {
	if bits, ok := orientationBits[value]; ok {
		return bits
	}
	return Both
}

// DefaultConfigChanges is the activity configChanges list before multi-window adjustments
const DefaultConfigChanges = "keyboard|keyboardHidden|orientation|screenSize|smallestScreenSize|screenLayout|uiMode"

// Meta-data names understood by Samsung DEX
const (
	DexKeepAliveMeta    = "com.samsung.android.keepalive.density"
	DexLaunchWidthMeta  = "com.samsung.android.sdk.multiwindow.dex.launchwidth"
	DexLaunchHeightMeta = "com.samsung.android.sdk.multiwindow.dex.launchheight"
)

// OculusCategory is added to the launcher intent filter for Oculus builds
const OculusCategory = `<category android:name="com.oculus.intent.category.VR"/>`

// Inputs are everything the environment is derived from
type Inputs struct {
	ProjectName string
	ProductName string
	Android     *project.AndroidSettings
	Oculus      bool
	// Namespace is true when the plugin uses the namespace DSL (AGP 7.0 and later)
	Namespace bool
}

// Environment is the computed substitution dictionary plus the override tables consumed by
// the resource resolver
type Environment struct {
	Values      map[string]string
	Orientation Orientation
	Icons       map[string]string
	Splash      map[string]map[string]string
}

// Compute derives the manifest environment
func Compute(in Inputs) *Environment {
	a := in.Android
	appName := in.ProductName
	if appName == "" {
		appName = in.ProjectName
	}

	orientation := ResolveOrientation(a.Orientation)
	values := map[string]string{
		"ANDROID_PACKAGE":                a.PackageName,
		"ANDROID_PACKAGE_PATH":           strings.ReplaceAll(a.PackageName, ".", "/"),
		"ANDROID_VERSION_NUMBER":         a.VersionNumber,
		"ANDROID_VERSION_NAME":           a.VersionName,
		"ANDROID_SCREEN_ORIENTATION":     a.Orientation,
		"ANDROID_PROJECT_NAME":           in.ProjectName,
		"ANDROID_APP_NAME":               appName,
		"ANDROID_PROJECT_ACTIVITY":       in.ProjectName + "Activity",
		"ANDROID_LAUNCHER_NAME":          in.ProjectName + ".GameLauncher",
		"ANDROID_KEEP_SCREEN_ON":         cast.ToString(a.EnableKeepScreenOn),
		"ANDROID_DISABLE_IMMERSIVE_MODE": cast.ToString(a.DisableImmersiveMode),
		"OCULUS_INTENT_FILTER_CATEGORY":  "",
	}

	mw := resolveMultiWindow(a.MultiWindow)
	values["ANDROID_CONFIG_CHANGES"] = mw.configChanges
	values["ANDROID_MULTI_WINDOW"] = mw.resizeable
	values["ANDROID_MULTI_WINDOW_PROPERTIES"] = mw.layout
	values["SAMSUNG_DEX_KEEP_ALIVE"] = mw.dexKeepAlive
	values["SAMSUNG_DEX_LAUNCH_WIDTH"] = mw.dexWidth
	values["SAMSUNG_DEX_LAUNCH_HEIGHT"] = mw.dexHeight

	if in.Oculus {
		values["OCULUS_INTENT_FILTER_CATEGORY"] = OculusCategory
	}
	packageOption := ""
	if !in.Namespace {
		packageOption = fmt.Sprintf(`package="%s"`, a.PackageName)
	}
	values["ANDROID_MANIFEST_PACKAGE_OPTION"] = packageOption

	return &Environment{
		Values:      values,
		Orientation: orientation,
		Icons:       a.Icons,
		Splash:      a.SplashScreen,
	}
}

type multiWindow struct {
	configChanges string
	resizeable    string
	layout        string
	dexKeepAlive  string
	dexWidth      string
	dexHeight     string
}

func resolveMultiWindow(opts *project.MultiWindowOptions) multiWindow {
	mw := multiWindow{configChanges: DefaultConfigChanges}
	if opts == nil {
		return mw
	}

	if dex := opts.SamsungDex; dex != nil {
		width, wOK := positiveInt(dex.LaunchWidth)
		height, hOK := positiveInt(dex.LaunchHeight)
		if wOK && hOK {
			mw.dexKeepAlive = metaData(DexKeepAliveMeta, cast.ToString(dex.KeepAlive))
			if !opts.LaunchInFullscreen {
				mw.dexWidth = metaData(DexLaunchWidthMeta, cast.ToString(width))
				mw.dexHeight = metaData(DexLaunchHeightMeta, cast.ToString(height))
			}
		}
	}

	if !opts.Enabled {
		mw.resizeable = `android:resizeableActivity="false"`
		return mw
	}
	mw.configChanges += "|density"
	mw.resizeable = `android:resizeableActivity="true"`

	if opts.DefaultWidth == nil && opts.DefaultHeight == nil && opts.MinWidth == nil &&
		opts.MinHeight == nil && opts.Gravity == "" {
		return mw
	}

	var attrs []string
	addDim := func(name string, v interface{}) {
		if n, ok := positiveInt(v); ok {
			attrs = append(attrs, fmt.Sprintf(`android:%s="%ddp"`, name, n))
		}
	}
	if !opts.LaunchInFullscreen {
		addDim("defaultWidth", opts.DefaultWidth)
		addDim("defaultHeight", opts.DefaultHeight)
	}
	addDim("minWidth", opts.MinWidth)
	addDim("minHeight", opts.MinHeight)
	if opts.Gravity != "" {
		attrs = append(attrs, fmt.Sprintf(`android:gravity="%s"`, opts.Gravity))
	}
	if len(attrs) > 0 {
		mw.layout = "<layout " + strings.Join(attrs, " ") + " />"
	}
	return mw
}

func metaData(name, value string) string {
	return fmt.Sprintf(`<meta-data android:name="%s" android:value="%s"/>`, name, value)
}

// positiveInt accepts JSON numbers greater than zero with no fractional part. Strings are
// rejected.
func positiveInt(v interface{}) (int64, bool) {
	var n int64
	switch x := v.(type) {
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) {
			return 0, false
		}
		n = int64(x)
	case int:
		n = int64(x)
	case int64:
		n = x
	default:
		return 0, false
	}
	return n, n > 0
}
