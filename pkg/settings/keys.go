package settings

import "regexp"

// Registered setting keys
const (
	KeySDKRoot            = "sdk.root"
	KeyPlatformAPI        = "platform.sdk.api"
	KeyMinAPI             = "platform.min.api"
	KeyNDKVersion         = "ndk.version"
	KeyGradlePlugin       = "android.gradle.plugin"
	KeyJavaHome           = "java.home"
	KeyGradleHome         = "gradle.home"
	KeyCMakeHome          = "cmake.home"
	KeyNinjaHome          = "ninja.home"
	KeyGradleJVMArgs      = "gradle.jvmargs"
	KeyAssetMode          = "asset.mode"
	KeyStripDebug         = "strip.debug"
	KeyOculusProject      = "oculus.project"
	KeyIconResample       = "icon.resample"
	KeyExtraCMakeArgs     = "extra.cmake.args"
	KeySigningStoreFile   = "signconfig.store.file"
	KeySigningStorePass   = "signconfig.store.password"
	KeySigningKeyAlias    = "signconfig.key.alias"
	KeySigningKeyPassword = "signconfig.key.password"
)

func init() {
	digits := regexp.MustCompile(`^[0-9]+$`)

	Register(Descriptor{Key: KeySDKRoot, Description: "Root of the Android SDK (contains cmdline-tools/latest)"})
	Register(Descriptor{Key: KeyPlatformAPI, Description: "Android platform API level to compile against",
		Default: "31", Pattern: digits, PatternHelp: "must be a positive integer API level"})
	Register(Descriptor{Key: KeyMinAPI, Description: "Minimum Android API level supported by the APK",
		Default: "24", Pattern: digits, PatternHelp: "must be a positive integer API level"})
	Register(Descriptor{Key: KeyNDKVersion, Description: "NDK version (glob) to install and build with", Default: "25.*"})
	Register(Descriptor{Key: KeyGradlePlugin, Description: "Android Gradle Plugin version",
		Default: "8.1.0", Pattern: regexp.MustCompile(`^[0-9]+\.[0-9]+(\.[0-9]+)?$`),
		PatternHelp: "must be a version of the form major.minor[.patch]"})
	Register(Descriptor{Key: KeyJavaHome, Description: "JDK home directory (overrides JAVA_HOME)"})
	Register(Descriptor{Key: KeyGradleHome, Description: "Gradle home directory (overrides GRADLE_HOME)"})
	Register(Descriptor{Key: KeyCMakeHome, Description: "CMake home directory (overrides CMAKE_HOME)"})
	Register(Descriptor{Key: KeyNinjaHome, Description: "Directory containing the ninja executable"})
	Register(Descriptor{Key: KeyGradleJVMArgs, Description: "org.gradle.jvmargs passed through to gradle.properties"})
	Register(Descriptor{Key: KeyAssetMode, Description: "Asset deploy mode (LOOSE, PAK or NONE)",
		Default: "LOOSE", Pattern: regexp.MustCompile(`^(LOOSE|PAK|NONE)$`),
		PatternHelp: "must be one of LOOSE, PAK, NONE"})
	Register(Descriptor{Key: KeyStripDebug, Description: "Strip debug symbols from native libraries", Default: "true", Kind: KindBool})
	Register(Descriptor{Key: KeyOculusProject, Description: "Build for Oculus (OpenXR) headsets", Default: "false", Kind: KindBool})
	Register(Descriptor{Key: KeyIconResample, Description: "Resample per-density icon overrides to launcher sizes", Default: "false", Kind: KindBool})
	Register(Descriptor{Key: KeyExtraCMakeArgs, Description: "Additional CMake configure arguments"})
	Register(Descriptor{Key: KeySigningStoreFile, Description: "Keystore file used to sign the APK"})
	Register(Descriptor{Key: KeySigningStorePass, Description: "Keystore password", Kind: KindPassword})
	Register(Descriptor{Key: KeySigningKeyAlias, Description: "Key alias inside the keystore"})
	Register(Descriptor{Key: KeySigningKeyPassword, Description: "Key password", Kind: KindPassword})
}
