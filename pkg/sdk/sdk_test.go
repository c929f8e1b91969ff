package sdk

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huanfeng/androidgen-cli/internal/errors"
	"github.com/huanfeng/androidgen-cli/pkg/system"
	"github.com/huanfeng/androidgen-cli/pkg/utils"
)

const listOutput = `Loading package information...
[=======================================] 100% Computing updates...
Installed packages:
  Path                 | Version      | Description                     | Location
  -------              | -------      | -------                         | -------
  build-tools;30.0.3   | 30.0.3       | Android SDK Build-Tools 30.0.3  | build-tools/30.0.3/
  ndk;25.1.8937393     | 25.1.8937393 | NDK (Side by side) 25.1.8937393 | ndk/25.1.8937393/
  platform-tools       | 34.0.4       | Android SDK Platform-Tools      | platform-tools/
  platforms;android-31 | 1            | Android SDK Platform 31         | platforms/android-31/

Available Packages:
  Path                 | Version      | Description
  -------              | -------      | -------
  build-tools;30.0.3   | 30.0.3       | Android SDK Build-Tools 30.0.3
  build-tools;34.0.0   | 34.0.0       | Android SDK Build-Tools 34
  build-tools;35.0.0-rc1 | 35.0.0 rc1 | Android SDK Build-Tools 35-rc1
  ndk;25.1.8937393     | 25.1.8937393 | NDK (Side by side) 25.1.8937393
  ndk;25.2.9519653     | 25.2.9519653 | NDK (Side by side) 25.2.9519653
  platforms;android-33 | 3            | Android SDK Platform 33

Available Updates:
  ID                   | Installed    | Available
  -------              | -------      | -------
  platform-tools       | 34.0.4       | 35.0.0
`

func makeSDKRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	tool := SDKManagerPath(root)
	if err := os.MkdirAll(filepath.Dir(tool), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(tool, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
	return root
}

func testLogger() utils.Logger {
	return utils.NewWriterLogger(io.Discard, utils.LogLevelDebug)
}

func newTestManager(t *testing.T, runner *system.FakeRunner) *Manager {
	t.Helper()
	runner.On("sdkmanager --version", system.Result{Stdout: "11.0\n"})
	if _, ok := runner.Responses["sdkmanager --list"]; !ok {
		runner.On("sdkmanager --list", system.Result{Stdout: listOutput})
	}
	m, err := NewManager(context.Background(), makeSDKRoot(t), runner, testLogger())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestParseList(t *testing.T) {
	list := ParseList(listOutput)
	if len(list.Installed) != 4 || len(list.Available) != 6 || len(list.Updatable) != 1 {
		t.Fatalf("parsed %d/%d/%d packages", len(list.Installed), len(list.Available), len(list.Updatable))
	}
	ndk := list.Installed["ndk;25.1.8937393"]
	if ndk == nil || ndk.Location != "ndk/25.1.8937393/" || ndk.Description() != "NDK (Side by side) 25.1.8937393" {
		t.Errorf("ndk = %+v", ndk)
	}
	if rc := list.Available["build-tools;35.0.0-rc1"]; rc == nil || rc.Version() != "35.0.0.rc1" {
		t.Errorf("space in version not normalised: %+v", rc)
	}
	up := list.Updatable["platform-tools"]
	if up == nil || up.Version() != "34.0.4" || up.AvailableVersion != "35.0.0" {
		t.Errorf("update = %+v", up)
	}
	for _, heading := range []string{"Path", "ID", "-------"} {
		if _, ok := list.Installed[heading]; ok {
			t.Errorf("heading row %q parsed as a package", heading)
		}
	}
}

func TestGetPackageListSortedDescending(t *testing.T) {
	m := newTestManager(t, system.NewFakeRunner())
	got := m.GetPackageList("build-tools;*", Available)
	var paths []string
	for _, p := range got {
		paths = append(paths, p.Path())
	}
	want := "build-tools;35.0.0-rc1,build-tools;34.0.0,build-tools;30.0.3"
	if strings.Join(paths, ",") != want {
		t.Errorf("order = %v, want %s", paths, want)
	}
	if rows := m.GetPackageList("nothing*", Installed); len(rows) != 0 {
		t.Errorf("unexpected matches: %v", rows)
	}
}

func TestInstallPackageAlreadyInstalled(t *testing.T) {
	runner := system.NewFakeRunner()
	m := newTestManager(t, runner)

	pkg, err := m.InstallPackage(context.Background(), "platforms;android-31", "Android SDK Platform 31")
	if err != nil {
		t.Fatalf("InstallPackage: %v", err)
	}
	if pkg.Path() != "platforms;android-31" {
		t.Errorf("got %s", pkg.Path())
	}
	if calls := runner.CallsMatching("sdkmanager --install"); len(calls) != 0 {
		t.Errorf("sdkmanager --install invoked %d times", len(calls))
	}
	if got := m.InstallPath(pkg); got != filepath.Join(m.Root(), "platforms", "android-31") {
		t.Errorf("InstallPath = %s", got)
	}
}

func TestInstallPackageInstallsHighestMatch(t *testing.T) {
	installedAfter := strings.Replace(listOutput,
		"  platform-tools       | 34.0.4",
		"  ndk;25.2.9519653     | 25.2.9519653 | NDK (Side by side) 25.2.9519653 | ndk/25.2.9519653/\n  platform-tools       | 34.0.4", 1)
	runner := system.NewFakeRunner()
	runner.OnSequence("sdkmanager --list",
		system.Result{Stdout: strings.Replace(listOutput, "  ndk;25.1.8937393     | 25.1.8937393 | NDK (Side by side) 25.1.8937393 | ndk/25.1.8937393/\n", "", 1)},
		system.Result{Stdout: installedAfter})
	m := newTestManager(t, runner)

	pkg, err := m.InstallPackage(context.Background(), "ndk;25.*", "Android NDK")
	if err != nil {
		t.Fatalf("InstallPackage: %v", err)
	}
	if pkg.Path() != "ndk;25.2.9519653" {
		t.Errorf("installed %s, want the highest available match", pkg.Path())
	}
	calls := runner.CallsMatching("sdkmanager --install")
	if len(calls) != 1 || calls[0].Args[1] != "ndk;25.2.9519653" {
		t.Errorf("install calls = %v", calls)
	}
}

func TestInstallPackageUnknown(t *testing.T) {
	m := newTestManager(t, system.NewFakeRunner())
	_, err := m.InstallPackage(context.Background(), "platforms;android-99", "Android SDK Platform 99")
	var te *errors.ToolError
	if !errors.As(err, &te) || te.Type != errors.ErrorTypeUnknownPackage {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(te.Message, "platforms;android-99") || !strings.Contains(te.Message, "Android SDK Platform 99") {
		t.Errorf("message = %q", te.Message)
	}
}

func TestCheckLicenses(t *testing.T) {
	runner := system.NewFakeRunner()
	runner.On("sdkmanager --licenses", system.Result{Stdout: "All SDK package licenses accepted.\n"})
	m := newTestManager(t, runner)
	if err := m.CheckLicenses(context.Background()); err != nil {
		t.Fatalf("CheckLicenses: %v", err)
	}
	calls := runner.CallsMatching("sdkmanager --licenses")
	if len(calls) != 1 || calls[0].Stdin != "Y\n" {
		t.Errorf("calls = %+v", calls)
	}
}

func TestCheckLicensesNotAccepted(t *testing.T) {
	runner := system.NewFakeRunner()
	runner.On("sdkmanager --licenses", system.Result{Stdout: "2 of 7 SDK package licenses not accepted.\nReview licenses that have not been accepted (y/N)? "})
	m := newTestManager(t, runner)

	err := m.CheckLicenses(context.Background())
	var te *errors.ToolError
	if !errors.As(err, &te) || te.Type != errors.ErrorTypeLicense {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(te.Message, "2 of 7 SDK package licenses not accepted") {
		t.Errorf("message should quote sdkmanager, got %q", te.Message)
	}
	if len(te.Suggestions) == 0 || !strings.Contains(te.Suggestions[0], "--licenses") {
		t.Errorf("suggestions = %v", te.Suggestions)
	}
}

func TestNewManagerValidatesRoot(t *testing.T) {
	runner := system.NewFakeRunner()
	if _, err := NewManager(context.Background(), "", runner, testLogger()); err == nil {
		t.Error("empty root accepted")
	}
	if _, err := NewManager(context.Background(), t.TempDir(), runner, testLogger()); err == nil ||
		!strings.Contains(err.Error(), "cmdline-tools") {
		t.Errorf("root without sdkmanager: %v", err)
	}
}

func TestNewManagerVersionFailures(t *testing.T) {
	testCases := []struct {
		name   string
		result system.Result
		want   string
	}{
		{"jdk", system.Result{ExitCode: 1, Stderr: "(class file version 61.0), this version of the Java Runtime only recognizes class file versions up to 55.0"}, "requires JDK 17, have JDK 11"},
		{"root", system.Result{ExitCode: 1, Stdout: "Error: Could not determine SDK root.\nError: Either specify it explicitly with --sdk_root="}, "could not determine the SDK root"},
		{"generic", system.Result{ExitCode: 4, Stderr: "boom"}, "boom"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			runner := system.NewFakeRunner().On("sdkmanager --version", tc.result)
			_, err := NewManager(context.Background(), makeSDKRoot(t), runner, testLogger())
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("err = %v, want it to contain %q", err, tc.want)
			}
		})
	}
}
