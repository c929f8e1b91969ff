package errors

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"configuration", NewConfigurationError("SDK_ROOT_UNSET", "unset"), 1},
		{"license", NewLicenseError("2 of 7 SDK package licenses not accepted.", "/sdk/sdkmanager"), 1},
		{"internal", NewInternalError("TEMPLATE_KEY", "missing key"), 2},
		{"wrapped internal", fmt.Errorf("emit: %w", NewInternalError("TEMPLATE_KEY", "missing key")), 2},
		{"plain", stderrors.New("boom"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsMatchesTypeAndCode(t *testing.T) {
	err := fmt.Errorf("deploy: %w", NewDeviceError("NO_DEVICE", "no online device is attached"))
	if !stderrors.Is(err, NewDeviceError("NO_DEVICE", "")) {
		t.Error("same type and code should match")
	}
	if stderrors.Is(err, NewDeviceError("INSTALL_FAILED", "")) {
		t.Error("different code should not match")
	}
}

func TestExternalToolError(t *testing.T) {
	e := NewExternalToolError("sdkmanager --install ndk;25.2.9519653", 1, "  Warning: failed to fetch\n")
	want := "command 'sdkmanager --install ndk;25.2.9519653' failed with exit code 1: Warning: failed to fetch"
	if e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}
	if e.Context["command"] != "sdkmanager --install ndk;25.2.9519653" {
		t.Errorf("context = %v", e.Context)
	}
	if got := NewExternalToolError("gradle wrapper", 2, " ").Error(); got != "command 'gradle wrapper' failed with exit code 2" {
		t.Errorf("empty output message = %q", got)
	}
}

func TestFormatDetailed(t *testing.T) {
	e := WrapError(os.ErrPermission, ErrorTypeFileSystem, "IO_FAILED", "failed to write build.gradle").
		WithContext("path", "/out/app/build.gradle").
		WithContext("module", "app").
		WithSuggestion("Check the permissions of the build directory")

	out := e.FormatDetailed()
	for _, want := range []string{
		"FILESYSTEM error [IO_FAILED]: failed to write build.gradle\n",
		"   module: app\n   path: /out/app/build.gradle\n",
		"Underlying cause: permission denied",
		"   - Check the permissions of the build directory\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatDetailed() missing %q:\n%s", want, out)
		}
	}
}

func TestErrorReporter(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "not-created")
	r := NewErrorReporter(missing, "1.2.3", nil)
	path, err := r.SaveReport(r.GenerateReport(stderrors.New("boom"), nil, nil))
	if err != nil || path != "" {
		t.Fatalf("missing directory should write nothing, got %q, %v", path, err)
	}
	if _, err := os.Stat(filepath.Join(missing, ReportFileName)); !os.IsNotExist(err) {
		t.Fatalf("report written into a directory that did not exist: %v", err)
	}

	dir := t.TempDir()
	r = NewErrorReporter(dir, "1.2.3", nil)
	report := r.GenerateReport(stderrors.New("boom"),
		&OperationContext{Command: "android-generate", BuildDir: dir, Step: "Emitting the Gradle project"},
		map[string]string{"java": "17.0.2"})
	if report.Error.Type != ErrorTypeInternal || report.Error.Code != "UNEXPECTED" {
		t.Errorf("plain errors should be reported as internal, got %+v", report.Error)
	}

	path, err = r.SaveReport(report)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Error struct {
			Code string `yaml:"code"`
		} `yaml:"error"`
		Environment struct {
			ToolVersion string            `yaml:"tool_version"`
			Tools       map[string]string `yaml:"tools"`
		} `yaml:"environment"`
		Context struct {
			Step string `yaml:"step"`
		} `yaml:"context"`
	}
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Error.Code != "UNEXPECTED" || decoded.Environment.ToolVersion != "1.2.3" ||
		decoded.Environment.Tools["java"] != "17.0.2" || decoded.Context.Step != "Emitting the Gradle project" {
		t.Errorf("decoded report = %+v", decoded)
	}
}
