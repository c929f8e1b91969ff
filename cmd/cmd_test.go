package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/huanfeng/androidgen-cli/internal/config"
	"github.com/huanfeng/androidgen-cli/internal/errors"
	"github.com/huanfeng/androidgen-cli/pkg/settings"
	"github.com/huanfeng/androidgen-cli/pkg/system"
	"github.com/huanfeng/androidgen-cli/pkg/utils"
)

func setupCmdTest(t *testing.T) (globalDir string, out *bytes.Buffer) {
	t.Helper()
	globalDir = t.TempDir()
	appConfig = &config.Config{SettingsDir: globalDir}
	logger = utils.NewWriterLogger(&bytes.Buffer{}, utils.LogLevelDebug)

	registerGlobal, registerProjectPath, registerList, registerFormat = false, "", false, formatTable
	registerSetValues, registerClearValues = nil, nil
	doctorProjectPath = ""
	t.Cleanup(func() {
		registerSetValues, registerClearValues = nil, nil
	})

	out = &bytes.Buffer{}
	return globalDir, out
}

func testCommand(out *bytes.Buffer) *cobra.Command {
	c := &cobra.Command{}
	c.SetOut(out)
	c.SetContext(context.Background())
	return c
}

func TestRegisterScopes(t *testing.T) {
	globalDir, out := setupCmdTest(t)
	projectDir := t.TempDir()

	registerGlobal = true
	registerSetValues = []string{"sdk.root=/opt/android-sdk", "signconfig.store.password=hunter2"}
	if err := runRegister(testCommand(out), nil); err != nil {
		t.Fatalf("global set: %v", err)
	}

	registerGlobal = false
	registerProjectPath = projectDir
	registerSetValues = []string{"asset.mode=PAK"}
	registerList = true
	registerFormat = formatJSON
	if err := runRegister(testCommand(out), nil); err != nil {
		t.Fatalf("project set: %v", err)
	}

	var entries []settings.Entry
	if err := json.Unmarshal(out.Bytes(), &entries); err != nil {
		t.Fatalf("list output is not JSON: %v\n%s", err, out.String())
	}
	byKey := map[string]settings.Entry{}
	for _, e := range entries {
		byKey[e.Key] = e
	}
	if e := byKey[settings.KeySDKRoot]; e.Value != "/opt/android-sdk" || e.Scope != settings.ScopeGlobal {
		t.Errorf("sdk.root = %+v", e)
	}
	if e := byKey[settings.KeyAssetMode]; e.Value != "PAK" || e.Scope != settings.ScopeProject {
		t.Errorf("asset.mode = %+v", e)
	}
	if e := byKey[settings.KeySigningStorePass]; e.Value != "********" {
		t.Errorf("password should be masked, got %+v", e)
	}

	data, err := os.ReadFile(filepath.Join(globalDir, settings.FileName))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "hunter2") {
		t.Errorf("password stored in clear text:\n%s", data)
	}
	if _, err := os.Stat(filepath.Join(projectDir, settings.FileName)); err != nil {
		t.Errorf("project settings file missing: %v", err)
	}
}

func TestRegisterErrors(t *testing.T) {
	tests := []struct {
		name     string
		prepare  func()
		wantCode string
	}{
		{"nothing to do", func() {}, "NOTHING_TO_DO"},
		{"malformed assignment", func() {
			registerGlobal = true
			registerSetValues = []string{"sdk.root"}
		}, "INVALID_SETTING"},
		{"project scope without project", func() {
			registerSetValues = []string{"asset.mode=PAK"}
		}, "NO_PROJECT"},
		{"unknown key", func() {
			registerGlobal = true
			registerClearValues = []string{"no.such.key"}
		}, "UNKNOWN_SETTING"},
		{"bad format", func() {
			registerList = true
			registerFormat = "xml"
		}, "INVALID_FORMAT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out := setupCmdTest(t)
			tt.prepare()
			err := runRegister(testCommand(out), nil)
			var te *errors.ToolError
			if !errors.As(err, &te) || te.Code != tt.wantCode {
				t.Fatalf("err = %v, want code %s", err, tt.wantCode)
			}
			if errors.ExitCode(err) != 1 {
				t.Errorf("exit code = %d, want 1", errors.ExitCode(err))
			}
		})
	}
}

func TestWriteOutputYAML(t *testing.T) {
	var buf bytes.Buffer
	rows := []map[string]string{{"path": "platforms;android-33", "version": "2"}}
	if err := writeOutput(&buf, "YAML", rows, nil); err != nil {
		t.Fatal(err)
	}
	want := "- path: platforms;android-33\n  version: \"2\"\n"
	if buf.String() != want {
		t.Errorf("yaml =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestDoctorReportsMissingSDK(t *testing.T) {
	globalDir, _ := setupCmdTest(t)
	view, err := settings.Open(globalDir, "")
	if err != nil {
		t.Fatal(err)
	}
	for key, exe := range map[string]string{
		settings.KeyJavaHome:   filepath.Join("bin", system.ExecutableName("java", false)),
		settings.KeyGradleHome: filepath.Join("bin", system.ExecutableName("gradle", true)),
		settings.KeyCMakeHome:  filepath.Join("bin", system.ExecutableName("cmake", false)),
	} {
		home := t.TempDir()
		path := filepath.Join(home, exe)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, nil, 0755); err != nil {
			t.Fatal(err)
		}
		if err := view.Set(key, home, false); err != nil {
			t.Fatal(err)
		}
	}

	runner := system.NewFakeRunner().
		On("java -version", system.Result{Stderr: `openjdk version "17.0.2" 2022-01-18`}).
		On("gradle --version", system.Result{Stdout: "Gradle 8.4\n"}).
		On("cmake --version", system.Result{Stdout: "cmake version 3.24.0\n"})

	report := runDoctor(context.Background(), view, runner)

	if report.GradlePlugin != "8.1.0" || report.Requirement == nil || report.Requirement.MinJDK != "17" {
		t.Errorf("plugin = %s, requirement = %+v", report.GradlePlugin, report.Requirement)
	}
	if len(report.Tools) != 5 {
		t.Fatalf("tools = %+v", report.Tools)
	}
	if !strings.Contains(report.SDK.Error, "not registered") {
		t.Errorf("sdk error = %q", report.SDK.Error)
	}
	found := false
	for _, issue := range report.Issues {
		if strings.Contains(issue, "not registered") {
			found = true
		}
		if strings.Contains(issue, "JDK") {
			t.Errorf("JDK 17 should satisfy AGP 8.1: %s", issue)
		}
	}
	if !found {
		t.Errorf("issues = %v", report.Issues)
	}

	var buf bytes.Buffer
	printDoctorReport(&buf, report)
	if !strings.Contains(buf.String(), "Found") || !strings.Contains(buf.String(), "Android Gradle Plugin 8.1.0") {
		t.Errorf("report =\n%s", buf.String())
	}
}

func TestConfigInit(t *testing.T) {
	_, out := setupCmdTest(t)
	configForce = false
	t.Cleanup(func() { configForce = false })

	path := filepath.Join(t.TempDir(), "nested", "androidgen.yaml")
	if err := configInitCmd.RunE(testCommand(out), []string{path}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "engine_root:") {
		t.Errorf("template =\n%s", data)
	}

	err = configInitCmd.RunE(testCommand(out), []string{path})
	var te *errors.ToolError
	if !errors.As(err, &te) || te.Code != "CONFIG_EXISTS" {
		t.Fatalf("second init err = %v", err)
	}

	configForce = true
	if err := configInitCmd.RunE(testCommand(out), []string{path}); err != nil {
		t.Fatalf("forced init: %v", err)
	}
}
