package emitter

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/huanfeng/androidgen-cli/internal/errors"
	"github.com/huanfeng/androidgen-cli/pkg/libpatch"
	"github.com/huanfeng/androidgen-cli/pkg/template"
)

// Native build constants
const (
	ABIFilter             = "arm64-v8a"
	CMakeStagingDirectory = "o3de"
	AndroidSTL            = "c++_shared"
)

var groovyEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, `$`, `\$`)

// groovyString quotes s as a Groovy double-quoted string
func groovyString(s string) string {
	return `"` + groovyEscaper.Replace(s) + `"`
}

func groovyList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = groovyString(s)
	}
	return strings.Join(quoted, ", ")
}

func slash(p string) string {
	return filepath.ToSlash(p)
}

func indent(level int, lines ...string) string {
	pad := strings.Repeat("    ", level)
	out := make([]string, len(lines))
	for i, l := range lines {
		if l == "" {
			continue
		}
		out[i] = pad + l
	}
	return strings.Join(out, "\n")
}

// render expands a template strictly. A missing key is an internal error naming the template.
func (e *Emitter) render(name string, values map[string]string) (string, error) {
	text, err := e.templates.Text(name)
	if err != nil {
		return "", errors.NewFileSystemError(err, fmt.Sprintf("failed to read template %s", e.templates.Location(name)))
	}
	out, err := template.Expand(text, values, template.Strict)
	if err != nil {
		return "", errors.NewInternalError("TEMPLATE_EXPANSION",
			fmt.Sprintf("template %s: %v", e.templates.Location(name), err))
	}
	return out, nil
}

// CMakeArguments returns the configure arguments of one variant, in emission order
func (e *Emitter) CMakeArguments(variant string) []string {
	c := e.cfg
	engine := slash(c.EngineRoot)
	projectPath := slash(c.ProjectDir)

	args := []string{"-GNinja"}
	if c.Compat.AtLeast7() {
		args = append(args, "-S"+projectPath)
	} else {
		args = append(args, "-S"+engine)
	}
	args = append(args,
		"-DCMAKE_BUILD_TYPE="+strings.ToLower(variant),
		"-DCMAKE_TOOLCHAIN_FILE="+engine+"/cmake/Platform/Android/Toolchain_android.cmake",
		"-DLY_DISABLE_TEST_MODULES=ON",
	)
	if c.StripDebug {
		args = append(args, "-DLY_STRIP_DEBUG_SYMBOLS=ON")
	}
	if c.AssetMode == AssetModePAK {
		args = append(args, "-DLY_ARCHIVE_FILE_SEARCH_MODE=1")
	}
	args = append(args,
		"-DANDROID_NATIVE_API_LEVEL="+c.PlatformAPI,
		"-DLY_NDK_DIR="+slash(c.NDKPath),
		"-DANDROID_STL="+AndroidSTL,
		"-Wno-deprecated",
		"-DLY_MONOLITHIC_GAME=ON",
	)
	if c.Tools != nil && c.Tools.Ninja != nil {
		args = append(args, "-DCMAKE_MAKE_PROGRAM="+slash(c.Tools.Ninja.Path))
	}
	if c.Oculus {
		args = append(args, "-DANDROID_USE_OCULUS_OPENXR=ON")
	}
	if !c.Compat.AtLeast7() {
		args = append(args, "-DLY_PROJECTS="+projectPath)
	}
	return append(args, e.extraArgs...)
}

func (e *Emitter) cmakeListsPath() string {
	if e.cfg.Compat.AtLeast7() {
		return slash(filepath.Join(e.cfg.ProjectDir, "CMakeLists.txt"))
	}
	return slash(filepath.Join(e.cfg.EngineRoot, "CMakeLists.txt"))
}

func (e *Emitter) variantNativeSection(variant string) string {
	return indent(3,
		"externalNativeBuild {",
		"    cmake {",
		"        targets "+groovyString(e.cfg.ProjectName+".GameLauncher"),
		"        arguments "+groovyList(e.CMakeArguments(variant)),
		"    }",
		"}",
	)
}

func (e *Emitter) signingConfigs() string {
	s := e.cfg.Signing
	if s == nil {
		return ""
	}
	lines := []string{"signingConfigs {"}
	for _, v := range Variants {
		lines = append(lines,
			"    "+strings.ToLower(v)+" {",
			"        storeFile file("+groovyString(slash(s.StoreFile))+")",
			"        storePassword "+groovyString(s.StorePassword),
			"        keyAlias "+groovyString(s.KeyAlias),
			"        keyPassword "+groovyString(s.KeyPassword),
			"    }",
		)
	}
	lines = append(lines, "}")
	return indent(1, lines...)
}

func (e *Emitter) signingVariant(variant string) string {
	if e.cfg.Signing == nil {
		return ""
	}
	return indent(3, "signingConfig signingConfigs."+strings.ToLower(variant))
}

func (e *Emitter) pythonLauncher() string {
	name := "python.sh"
	if runtime.GOOS == "windows" {
		name = "python.cmd"
	}
	return slash(filepath.Join(e.cfg.EngineRoot, "python", name))
}

// assetLayoutTask syncs the asset layout before the variant's manifest and assets are
// processed, and after its native libraries are stripped
func (e *Emitter) assetLayoutTask(variant string) string {
	c := e.cfg
	task := "syncLYLayoutMode" + variant
	command := []string{
		e.pythonLauncher(),
		slash(filepath.Join(c.EngineRoot, "cmake", "Tools", "Platform", "Android", "android_post_build.py")),
		slash(filepath.Join(c.AppDir(), "src", "main", "assets")),
		"--project-root", slash(c.ProjectDir),
		"--gradle-version", c.Tools.Gradle.Version,
		"--asset-mode", c.AssetMode,
		"--asset-bundle-folder", slash(pakDir(c.ProjectDir)),
	}
	return strings.Join([]string{
		fmt.Sprintf("task %s(type:Exec) {", task),
		"    workingDir " + groovyString(slash(c.EngineRoot)),
		"    commandLine " + groovyList(command),
		"    mustRunAfter {",
		fmt.Sprintf("        tasks.findAll { task -> task.name.contains('strip%sDebugSymbols') }", variant),
		"    }",
		"}",
		"",
		"tasks.configureEach { task ->",
		fmt.Sprintf("    if (task.name == 'process%sMainManifest' || task.name == 'merge%sAssets') {", variant, variant),
		"        task.dependsOn " + task,
		"    }",
		"}",
		"",
	}, "\n")
}

func (e *Emitter) javaSourceSet() string {
	az := slash(filepath.Join(e.cfg.EngineRoot, "Code", "Framework", "AzAndroid", "java"))
	return indent(1,
		"sourceSets {",
		"    main {",
		"        java {",
		"            srcDirs = ['src/main/java', '"+az+"']",
		"        }",
		"    }",
		"}",
	)
}

func (e *Emitter) namespaceOption(namespace string) string {
	if !e.cfg.Compat.AtLeast7() || namespace == "" {
		return ""
	}
	return indent(1, "namespace "+groovyString(namespace))
}

// gradleValues holds the keys shared by every module's build.gradle
func (e *Emitter) gradleValues(targetType string) map[string]string {
	c := e.cfg
	values := map[string]string{
		"TARGET_TYPE":        targetType,
		"ANDROID_API_LEVEL":  c.PlatformAPI,
		"MIN_SDK_VER":        c.MinAPI,
		"TARGET_SDK_VER":     c.PlatformAPI,
		"SDK_BUILD_TOOL_VER": c.BuildToolsVersion,
		"NDK_VERSION":        c.NDKVersion,

		"ANDROID_NAMESPACE_OPTION":            "",
		"SIGNING_CONFIGS":                     "",
		"NATIVE_CMAKE_SECTION_DEFAULT_CONFIG": "",
		"NATIVE_CMAKE_SECTION_ANDROID":        "",
		"OVERRIDE_JAVA_SOURCESET":             "",
		"PROJECT_DEPENDENCIES":                "",
	}
	for _, v := range Variants {
		upper := strings.ToUpper(v)
		values["SIGNING_"+upper+"_CONFIG"] = ""
		values["NATIVE_CMAKE_SECTION_"+upper+"_CONFIG"] = ""
		values["CUSTOM_APPLY_ASSET_LAYOUT_"+upper+"_TASK"] = ""
	}
	return values
}

// RenderLibraryGradle renders build.gradle for a patched library module
func (e *Emitter) RenderLibraryGradle(m *libpatch.Module) (string, error) {
	values := e.gradleValues("library")
	values["ANDROID_NAMESPACE_OPTION"] = e.namespaceOption(m.Namespace)
	values["PROJECT_DEPENDENCIES"] = indent(1, m.DependencyLines()...)
	return e.render(AppGradleTemplate, values)
}

// RenderAppGradle renders app/build.gradle
func (e *Emitter) RenderAppGradle(modules []*libpatch.Module) (string, error) {
	c := e.cfg
	values := e.gradleValues("application")
	values["ANDROID_NAMESPACE_OPTION"] = e.namespaceOption(c.PackageName)
	values["SIGNING_CONFIGS"] = e.signingConfigs()
	values["NATIVE_CMAKE_SECTION_DEFAULT_CONFIG"] = indent(2,
		"ndk {",
		"    abiFilters '"+ABIFilter+"'",
		"}",
	)
	values["NATIVE_CMAKE_SECTION_ANDROID"] = indent(1,
		"externalNativeBuild {",
		"    cmake {",
		"        buildStagingDirectory "+groovyString(CMakeStagingDirectory),
		"        version "+groovyString(c.Tools.CMake.Version),
		"        path "+groovyString(e.cmakeListsPath()),
		"    }",
		"}",
	)
	values["OVERRIDE_JAVA_SOURCESET"] = e.javaSourceSet()
	for _, v := range Variants {
		upper := strings.ToUpper(v)
		values["SIGNING_"+upper+"_CONFIG"] = e.signingVariant(v)
		values["NATIVE_CMAKE_SECTION_"+upper+"_CONFIG"] = e.variantNativeSection(v)
		values["CUSTOM_APPLY_ASSET_LAYOUT_"+upper+"_TASK"] = e.assetLayoutTask(v)
	}

	var deps []string
	for _, m := range modules {
		deps = append(deps, fmt.Sprintf("api project(path: ':%s')", m.Name))
	}
	values["PROJECT_DEPENDENCIES"] = indent(1, deps...)
	return e.render(AppGradleTemplate, values)
}

// RenderRootGradle renders the top-level build.gradle
func (e *Emitter) RenderRootGradle() (string, error) {
	c := e.cfg
	return e.render(RootGradleTemplate, map[string]string{
		"ANDROID_GRADLE_PLUGIN_VERSION": c.Compat.Requested,
		"MIN_SDK_VER":                   c.MinAPI,
		"TARGET_SDK_VER":                c.PlatformAPI,
		"NDK_VERSION":                   c.NDKVersion,
		"SDK_BUILD_TOOL_VER":            c.BuildToolsVersion,
		"LY_ENGINE_ROOT":                groovyEscaper.Replace(slash(c.EngineRoot)),
	})
}
