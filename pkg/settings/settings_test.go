package settings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huanfeng/androidgen-cli/internal/errors"
)

func openTestView(t *testing.T) (*View, string, string) {
	t.Helper()
	globalDir := t.TempDir()
	projectDir := t.TempDir()
	v, err := Open(globalDir, projectDir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return v, globalDir, projectDir
}

func TestDefaults(t *testing.T) {
	v, _, _ := openTestView(t)
	if got := v.Get(KeyPlatformAPI); got != "31" {
		t.Errorf("default %s = %q, want 31", KeyPlatformAPI, got)
	}
	if !v.Bool(KeyStripDebug) {
		t.Errorf("%s should default to true", KeyStripDebug)
	}
	if got := v.Get("no.such.key"); got != "" {
		t.Errorf("unknown key returned %q", got)
	}
}

func TestProjectShadowsGlobal(t *testing.T) {
	v, globalDir, projectDir := openTestView(t)

	if err := v.Set(KeyPlatformAPI, "33", false); err != nil {
		t.Fatalf("global set: %v", err)
	}
	if got := v.Get(KeyPlatformAPI); got != "33" {
		t.Errorf("after global set got %q", got)
	}
	if err := v.Set(KeyPlatformAPI, "34", true); err != nil {
		t.Fatalf("project set: %v", err)
	}
	if got := v.Get(KeyPlatformAPI); got != "34" {
		t.Errorf("project value should shadow global, got %q", got)
	}

	// A fresh view sees the flushed files.
	reopened, err := Open(globalDir, projectDir)
	if err != nil {
		t.Fatal(err)
	}
	if got := reopened.Get(KeyPlatformAPI); got != "34" {
		t.Errorf("reopened project view got %q", got)
	}
	globalOnly, err := Open(globalDir, "")
	if err != nil {
		t.Fatal(err)
	}
	if got := globalOnly.Get(KeyPlatformAPI); got != "33" {
		t.Errorf("global view got %q", got)
	}

	if err := reopened.Clear(KeyPlatformAPI, true); err != nil {
		t.Fatal(err)
	}
	if got := reopened.Get(KeyPlatformAPI); got != "33" {
		t.Errorf("after clearing project value got %q", got)
	}
}

func TestSetWritesSection(t *testing.T) {
	v, globalDir, _ := openTestView(t)
	if err := v.Set(KeySDKRoot, "/opt/android-sdk", false); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(globalDir, FileName))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "["+SectionName+"]") {
		t.Errorf("settings file lacks section header:\n%s", data)
	}
	entries, _ := os.ReadDir(globalDir)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temporary file %s left behind", e.Name())
		}
	}
}

func TestValidation(t *testing.T) {
	v, _, _ := openTestView(t)
	testCases := []struct {
		key, value string
		ok         bool
	}{
		{KeyStripDebug, "TRUE", true},
		{KeyStripDebug, "false", true},
		{KeyStripDebug, "yes", false},
		{KeyPlatformAPI, "31", true},
		{KeyPlatformAPI, "android-31", false},
		{KeyAssetMode, "PAK", true},
		{KeyAssetMode, "ZIP", false},
		{KeyGradlePlugin, "7.4.2", true},
		{KeyGradlePlugin, "latest", false},
	}
	for _, tc := range testCases {
		err := v.Validate(tc.key, tc.value)
		if tc.ok && err != nil {
			t.Errorf("Validate(%s, %q) unexpected error: %v", tc.key, tc.value, err)
		}
		if !tc.ok {
			var te *errors.ToolError
			if !errors.As(err, &te) || te.Type != errors.ErrorTypeConfiguration {
				t.Errorf("Validate(%s, %q) = %v, want configuration error", tc.key, tc.value, err)
			}
		}
	}

	if err := v.Set(KeyAssetMode, "ZIP", false); err == nil {
		t.Error("Set accepted a value failing validation")
	} else if !strings.Contains(err.Error(), "LOOSE, PAK, NONE") {
		t.Errorf("error should carry the validation message, got %v", err)
	}
	if err := v.Set("bogus.key", "1", false); err == nil {
		t.Error("Set accepted an unknown key")
	}
}

func TestBoolIsStoredLowerCase(t *testing.T) {
	v, globalDir, _ := openTestView(t)
	if err := v.Set(KeyOculusProject, "True", false); err != nil {
		t.Fatal(err)
	}
	store, err := OpenStore(globalDir)
	if err != nil {
		t.Fatal(err)
	}
	if raw, _ := store.Get(KeyOculusProject); raw != "true" {
		t.Errorf("stored %q", raw)
	}
}

func TestPasswordObfuscated(t *testing.T) {
	v, _, projectDir := openTestView(t)
	if err := v.Set(KeySigningStorePass, "s3cret", true); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(projectDir, FileName))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "s3cret") {
		t.Errorf("password persisted in plain text:\n%s", data)
	}
	if got := v.Get(KeySigningStorePass); got != "s3cret" {
		t.Errorf("Get returned %q", got)
	}

	for _, e := range v.Entries() {
		if e.Key == KeySigningStorePass {
			if e.Value != "********" || e.Scope != ScopeProject {
				t.Errorf("entry = %+v", e)
			}
		}
	}
}

func TestProjectScopeRequiresProject(t *testing.T) {
	v, err := Open(t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}
	if err := v.Set(KeySDKRoot, "/sdk", true); err == nil {
		t.Error("project-scoped set without a project should fail")
	}
}

func TestObfuscateRoundTrip(t *testing.T) {
	for _, s := range []string{"", "a", "pässwörd with spaces", strings.Repeat("x", 100)} {
		if got := deobfuscate(obfuscate(s)); got != s {
			t.Errorf("round trip of %q = %q", s, got)
		}
	}
	if got := deobfuscate("legacy-plain"); got != "legacy-plain" {
		t.Errorf("unprefixed value changed: %q", got)
	}
}
