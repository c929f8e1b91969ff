package libpatch

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/huanfeng/androidgen-cli/internal/errors"
	"github.com/huanfeng/androidgen-cli/pkg/utils"
)

func TestApplyChanges(t *testing.T) {
	testCases := []struct {
		name    string
		text    string
		changes []Change
		want    string
	}{
		{
			name:    "pairs pop from the end",
			text:    "a\nb\nc\nd\n",
			changes: []Change{{Line: 2, Old: []string{"b", "c"}, New: []string{"X", "Y"}}},
			want:    "a\nY\nX\nd\n",
		},
		{
			name:    "shorter new list empties lines",
			text:    "a\nb\nc\nd\n",
			changes: []Change{{Line: 2, Old: []string{"b", "c", "d"}, New: []string{"Z"}}},
			want:    "a\nZ\n\n\n",
		},
		{
			name:    "last old takes joined remainder",
			text:    "a\nb\nc\n",
			changes: []Change{{Line: 2, Old: []string{"b"}, New: []string{"p", "q"}}},
			want:    "a\np\nq\nc\n",
		},
		{
			name:    "substring replacement keeps indentation",
			text:    "    compileSdkVersion 19\n",
			changes: []Change{{Line: 1, Old: []string{"19"}, New: []string{"31"}}},
			want:    "    compileSdkVersion 31\n",
		},
		{
			name:    "crlf endings kept",
			text:    "x\r\ny\r\n",
			changes: []Change{{Line: 1, Old: []string{"x"}, New: []string{"z"}}},
			want:    "z\r\ny\r\n",
		},
		{
			name: "changes apply in order",
			text: "one\ntwo\n",
			changes: []Change{
				{Line: 1, Old: []string{"one"}, New: []string{"1"}},
				{Line: 2, Old: []string{"two"}, New: []string{"2"}},
			},
			want: "1\n2\n",
		},
		{
			name:    "no trailing newline",
			text:    "a\nb",
			changes: []Change{{Line: 2, Old: []string{"b"}, New: []string{"c"}}},
			want:    "a\nc",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ApplyChanges(tc.text, tc.changes)
			if err != nil {
				t.Fatalf("ApplyChanges: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestApplyChangesOutOfRange(t *testing.T) {
	for _, c := range []Change{
		{Line: 3, Old: []string{"x"}},
		{Line: 0, Old: []string{"x"}},
		{Line: 2, Old: []string{"b", "c"}},
	} {
		if _, err := ApplyChanges("a\nb\n", []Change{c}); err == nil {
			t.Errorf("change %+v should fail", c)
		}
	}
}

func TestApplyChangesDoesNotMutateNew(t *testing.T) {
	c := Change{Line: 1, Old: []string{"a", "b"}, New: []string{"1", "2"}}
	if _, err := ApplyChanges("a\nb\n", []Change{c}); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(c.New, []string{"1", "2"}) {
		t.Errorf("New mutated: %v", c.New)
	}
}

const rulesText = `{
  "zlib": {
    "srcDir": ["${ANDROID_SDK_HOME}/extras/zlib", "/opt/zlib"],
    "patches": [{"path": "build.gradle", "changes": [{"line": 3, "old": ["$$x"], "new": ["${ANDROID_SDK_VERSION}"]}]}],
    "dependencies": [],
    "buildDependencies": ["${MAVEN_COORD}"]
  },
  "apkx": {
    "srcDir": ["${ANDROID_SDK_HOME}/extras/apkx"],
    "dependencies": ["zlib"]
  }
}`

func TestParseRules(t *testing.T) {
	libs, err := ParseRules(rulesText, RuleValues(`/sdk`, "31"), "android_libraries.json")
	if err != nil {
		t.Fatalf("ParseRules: %v", err)
	}
	if len(libs) != 2 || libs[0].Name != "zlib" || libs[1].Name != "apkx" {
		t.Fatalf("libraries = %+v", libs)
	}
	if libs[0].SrcDir[0] != "/sdk/extras/zlib" {
		t.Errorf("srcDir = %v", libs[0].SrcDir)
	}
	change := libs[0].Patches[0].Changes[0]
	if change.Line != 3 || change.Old[0] != "$x" || change.New[0] != "android-31" {
		t.Errorf("change = %+v", change)
	}
	if libs[0].BuildDependencies[0] != "${MAVEN_COORD}" {
		t.Errorf("unknown placeholder should survive, got %v", libs[0].BuildDependencies)
	}
	if !reflect.DeepEqual(libs[1].Dependencies, []string{"zlib"}) {
		t.Errorf("dependencies = %v", libs[1].Dependencies)
	}
}

func TestParseRulesErrors(t *testing.T) {
	for _, text := range []string{
		`[]`,
		`{"a": {"srcDir": []}}`,
		`{"a": {"srcDir": "not-a-list"}}`,
	} {
		_, err := ParseRules(text, nil, "rules.json")
		if err == nil {
			t.Errorf("ParseRules(%s) should fail", text)
			continue
		}
		if errors.ExitCode(err) != 2 {
			t.Errorf("ParseRules(%s) exit code = %d, want 2", text, errors.ExitCode(err))
		}
	}
}

type stubRenderer struct{}

func (stubRenderer) RenderLibraryGradle(m *Module) (string, error) {
	var b strings.Builder
	if m.Namespace != "" {
		fmt.Fprintf(&b, "namespace \"%s\"\n", m.Namespace)
	}
	for _, line := range m.DependencyLines() {
		b.WriteString(line + "\n")
	}
	return b.String(), nil
}

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func makeLibrary(t *testing.T) string {
	t.Helper()
	src := filepath.Join(t.TempDir(), "play_licensing")
	write(t, filepath.Join(src, "AndroidManifest.xml"),
		"<manifest xmlns:android=\"http://schemas.android.com/apk/res/android\"\n    package=\"com.google.android.vending.licensing\">\n</manifest>\n")
	write(t, filepath.Join(src, "src", "com", "google", "Policy.java"), "package com.google;\nclass Policy { int v = 1; }\n")
	write(t, filepath.Join(src, "res", "values", "strings.xml"), "<resources/>\n")
	return src
}

func TestPatchLibrary(t *testing.T) {
	testCases := []struct {
		name        string
		namespace   bool
		wantPackage bool
	}{
		{"agp 7 and later", true, false},
		{"agp 4", false, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			src := makeLibrary(t)
			build := t.TempDir()
			var logs bytes.Buffer
			p := &Patcher{
				BuildDir:  build,
				Namespace: tc.namespace,
				Renderer:  stubRenderer{},
				Logger:    utils.NewWriterLogger(&logs, utils.LogLevelDebug),
			}
			lib := &Library{
				Name:   "play_licensing",
				SrcDir: []string{filepath.Join(build, "missing"), src},
				Patches: []Patch{{
					Path:    "src/com/google/Policy.java",
					Changes: []Change{{Line: 2, Old: []string{"v = 1"}, New: []string{"v = 2"}}},
				}},
				Dependencies:      []string{"zlib"},
				BuildDependencies: []string{"com.android.support:support-v4:28.0.0"},
			}

			m, err := p.PatchLibrary(lib)
			if err != nil {
				t.Fatalf("PatchLibrary: %v", err)
			}
			if m.SourceDir != src || m.Namespace != "com.google.android.vending.licensing" {
				t.Errorf("module = %+v", m)
			}

			main := filepath.Join(build, "play_licensing", "src", "main")
			if got := read(t, filepath.Join(main, "java", "com", "google", "Policy.java")); !strings.Contains(got, "int v = 2;") {
				t.Errorf("patched source = %q", got)
			}
			if got := read(t, filepath.Join(main, "res", "values", "strings.xml")); got != "<resources/>\n" {
				t.Errorf("resource copy = %q", got)
			}
			manifest := read(t, filepath.Join(main, "AndroidManifest.xml"))
			if strings.Contains(manifest, "package=") != tc.wantPackage {
				t.Errorf("manifest = %q", manifest)
			}
			gradle := read(t, filepath.Join(build, "play_licensing", "build.gradle"))
			for _, want := range []string{
				`namespace "com.google.android.vending.licensing"`,
				"api project(path: ':zlib')",
				"api 'com.android.support:support-v4:28.0.0'",
			} {
				if !strings.Contains(gradle, want) {
					t.Errorf("build.gradle missing %q:\n%s", want, gradle)
				}
			}
			if got := read(t, filepath.Join(src, "src", "com", "google", "Policy.java")); !strings.Contains(got, "v = 1") {
				t.Errorf("library source modified: %q", got)
			}
		})
	}
}

func TestPatchLibraryManifestPatch(t *testing.T) {
	src := makeLibrary(t)
	build := t.TempDir()
	p := &Patcher{BuildDir: build, Renderer: stubRenderer{}, Logger: utils.NewWriterLogger(&bytes.Buffer{}, utils.LogLevelInfo)}
	lib := &Library{
		Name:   "lic",
		SrcDir: []string{src},
		Patches: []Patch{{
			Path:    "AndroidManifest.xml",
			Changes: []Change{{Line: 2, Old: []string{"licensing"}, New: []string{"lic"}}},
		}},
	}
	m, err := p.PatchLibrary(lib)
	if err != nil {
		t.Fatal(err)
	}
	if m.Namespace != "com.google.android.vending.lic" {
		t.Errorf("namespace = %q", m.Namespace)
	}
	if got := read(t, filepath.Join(build, "lic", "src", "main", "AndroidManifest.xml")); !strings.Contains(got, `package="com.google.android.vending.lic"`) {
		t.Errorf("manifest = %q", got)
	}
}

func TestPatchLibraryMissingSource(t *testing.T) {
	p := &Patcher{BuildDir: t.TempDir(), Renderer: stubRenderer{}, Logger: utils.NewWriterLogger(&bytes.Buffer{}, utils.LogLevelInfo)}
	_, err := p.Apply([]*Library{{Name: "gone", SrcDir: []string{"/nonexistent/a", "/nonexistent/b"}}})
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"gone", "/nonexistent/a", "/nonexistent/b"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
	if errors.ExitCode(err) != 1 {
		t.Errorf("exit code = %d", errors.ExitCode(err))
	}
}
