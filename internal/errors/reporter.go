package errors

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// ReportFileName is the name of the failure report written into the build directory
const ReportFileName = "android_generate_error.yaml"

// ErrorReport captures a failed generator run so the partially written build directory can be
// debugged after the fact.
type ErrorReport struct {
	Timestamp   time.Time         `yaml:"timestamp"`
	Error       *ToolError        `yaml:"error"`
	Environment *EnvironmentInfo  `yaml:"environment"`
	Context     *OperationContext `yaml:"context,omitempty"`
}

// EnvironmentInfo contains information about the host
type EnvironmentInfo struct {
	OS           string            `yaml:"os"`
	Architecture string            `yaml:"architecture"`
	GoVersion    string            `yaml:"go_version"`
	ToolVersion  string            `yaml:"tool_version"`
	WorkingDir   string            `yaml:"working_dir"`
	Tools        map[string]string `yaml:"tools,omitempty"`
}

// OperationContext describes the command that failed
type OperationContext struct {
	Command     string        `yaml:"command"`
	Arguments   []string      `yaml:"arguments,omitempty"`
	ProjectPath string        `yaml:"project_path,omitempty"`
	BuildDir    string        `yaml:"build_dir,omitempty"`
	Duration    time.Duration `yaml:"duration"`
	Step        string        `yaml:"step,omitempty"`
}

// Logger interface for error logging
type Logger interface {
	Error(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

// ErrorReporter builds and persists error reports
type ErrorReporter struct {
	reportDir   string
	toolVersion string
	logger      Logger
}

// NewErrorReporter creates a new error reporter writing into reportDir
func NewErrorReporter(reportDir, toolVersion string, logger Logger) *ErrorReporter {
	return &ErrorReporter{
		reportDir:   reportDir,
		toolVersion: toolVersion,
		logger:      logger,
	}
}

// GenerateReport wraps err into a report. Errors that are not ToolErrors are reported as
// internal failures.
func (er *ErrorReporter) GenerateReport(err error, context *OperationContext, tools map[string]string) *ErrorReport {
	var te *ToolError
	if !stderrors.As(err, &te) {
		te = WrapError(err, ErrorTypeInternal, "UNEXPECTED", err.Error())
	}

	wd, _ := os.Getwd()
	return &ErrorReport{
		Timestamp: time.Now(),
		Error:     te,
		Environment: &EnvironmentInfo{
			OS:           runtime.GOOS,
			Architecture: runtime.GOARCH,
			GoVersion:    runtime.Version(),
			ToolVersion:  er.toolVersion,
			WorkingDir:   wd,
			Tools:        tools,
		},
		Context: context,
	}
}

// SaveReport writes the report next to the generated files. Nothing is written when the
// report directory does not exist yet, since a failure before emission must leave no files.
func (er *ErrorReporter) SaveReport(report *ErrorReport) (string, error) {
	if _, err := os.Stat(er.reportDir); err != nil {
		return "", nil
	}

	data, err := yaml.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	path := filepath.Join(er.reportDir, ReportFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	if er.logger != nil {
		er.logger.Debug("Error report written to %s", path)
	}
	return path, nil
}
