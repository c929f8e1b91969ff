package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrorType represents the category of a generator failure
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeConfiguration
	ErrorTypeToolchain
	ErrorTypeExternalTool
	ErrorTypeLicense
	ErrorTypeUnknownPackage
	ErrorTypeProjectSettings
	ErrorTypeFileSystem
	ErrorTypeDevice
	ErrorTypeInternal
)

// String returns the string representation of the error type
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeConfiguration:
		return "CONFIGURATION"
	case ErrorTypeToolchain:
		return "TOOLCHAIN"
	case ErrorTypeExternalTool:
		return "EXTERNAL_TOOL"
	case ErrorTypeLicense:
		return "LICENSE"
	case ErrorTypeUnknownPackage:
		return "UNKNOWN_PACKAGE"
	case ErrorTypeProjectSettings:
		return "PROJECT_SETTINGS"
	case ErrorTypeFileSystem:
		return "FILESYSTEM"
	case ErrorTypeDevice:
		return "DEVICE"
	case ErrorTypeInternal:
		return "INTERNAL"
	default:
		return "UNKNOWN"
	}
}

// ToolError is the single domain error raised by the generator. The message is meant to be
// actionable on its own; context and suggestions add detail for the detailed format.
type ToolError struct {
	Type        ErrorType         `json:"type" yaml:"type"`
	Code        string            `json:"code" yaml:"code"`
	Message     string            `json:"message" yaml:"message"`
	Cause       error             `json:"-" yaml:"-"`
	Context     map[string]string `json:"context,omitempty" yaml:"context,omitempty"`
	Suggestions []string          `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
	Timestamp   time.Time         `json:"timestamp" yaml:"timestamp"`
}

// Error implements the error interface
func (e *ToolError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *ToolError) Unwrap() error {
	return e.Cause
}

// Is matches on type and code so callers can compare against sentinel values
func (e *ToolError) Is(target error) bool {
	if t, ok := target.(*ToolError); ok {
		return e.Type == t.Type && e.Code == t.Code
	}
	return false
}

// WithContext adds context to the error
func (e *ToolError) WithContext(key, value string) *ToolError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion to the error
func (e *ToolError) WithSuggestion(suggestion string) *ToolError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *ToolError) WithSuggestions(suggestions []string) *ToolError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// FormatDetailed returns a detailed error message with context and suggestions
func (e *ToolError) FormatDetailed() string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("%s error [%s]: %s\n", e.Type.String(), e.Code, e.Message))

	if len(e.Context) > 0 {
		builder.WriteString("\nContext:\n")
		keys := make([]string, 0, len(e.Context))
		for key := range e.Context {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			builder.WriteString(fmt.Sprintf("   %s: %s\n", key, e.Context[key]))
		}
	}

	if e.Cause != nil {
		builder.WriteString(fmt.Sprintf("\nUnderlying cause: %v\n", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		builder.WriteString("\nSuggestions:\n")
		for _, suggestion := range e.Suggestions {
			builder.WriteString(fmt.Sprintf("   - %s\n", suggestion))
		}
	}

	return builder.String()
}

// NewError creates a new ToolError
func NewError(errorType ErrorType, code, message string) *ToolError {
	return &ToolError{
		Type:      errorType,
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Context:   make(map[string]string),
	}
}

// WrapError wraps an existing error with a ToolError
func WrapError(err error, errorType ErrorType, code, message string) *ToolError {
	e := NewError(errorType, code, message)
	e.Cause = err
	return e
}

// NewConfigurationError reports a missing, nonexistent or invalid setting
func NewConfigurationError(code, message string) *ToolError {
	return NewError(ErrorTypeConfiguration, code, message).
		WithSuggestion("Inspect the current values with 'androidgen android-register --list'")
}

// NewToolchainError reports an AGP/Gradle/JDK/build-tools mismatch
func NewToolchainError(code, message string) *ToolError {
	return NewError(ErrorTypeToolchain, code, message)
}

// NewExternalToolError reports a child process that exited non-zero. The output is stderr, or
// stdout when stderr was empty.
func NewExternalToolError(commandLine string, exitCode int, output string) *ToolError {
	msg := fmt.Sprintf("command '%s' failed with exit code %d", commandLine, exitCode)
	if trimmed := strings.TrimSpace(output); trimmed != "" {
		msg += ": " + trimmed
	}
	return NewError(ErrorTypeExternalTool, "TOOL_FAILED", msg).
		WithContext("command", commandLine)
}

// NewLicenseError reports that sdkmanager still has unaccepted licenses
func NewLicenseError(detail, sdkmanagerPath string) *ToolError {
	return NewError(ErrorTypeLicense, "LICENSES_NOT_ACCEPTED",
		fmt.Sprintf("Android SDK licenses are not accepted: %s", detail)).
		WithSuggestion(fmt.Sprintf("Run '%s --licenses' and accept every license, then retry", sdkmanagerPath))
}

// NewUnknownPackageError reports a package glob with no available match
func NewUnknownPackageError(pattern, description string) *ToolError {
	return NewError(ErrorTypeUnknownPackage, "PACKAGE_NOT_AVAILABLE",
		fmt.Sprintf("no available SDK package matches '%s' (%s)", pattern, description)).
		WithSuggestion("Run 'androidgen android-sdk list --category available' to see what can be installed")
}

// NewProjectSettingsError reports a missing or malformed project descriptor key
func NewProjectSettingsError(key, file string) *ToolError {
	return NewError(ErrorTypeProjectSettings, "MISSING_KEY",
		fmt.Sprintf("required key '%s' is missing from %s", key, file)).
		WithContext("file", file)
}

// NewFileSystemError reports an I/O failure while emitting the project
func NewFileSystemError(err error, message string) *ToolError {
	return WrapError(err, ErrorTypeFileSystem, "IO_FAILED", message)
}

// NewDeviceError reports an adb install failure
func NewDeviceError(code, message string) *ToolError {
	return NewError(ErrorTypeDevice, code, message).
		WithSuggestions([]string{
			"Check device connection with 'adb devices'",
			"Enable USB debugging and authorize this computer on the device",
		})
}

// NewInternalError reports a broken invariant in the generator itself
func NewInternalError(code, message string) *ToolError {
	return NewError(ErrorTypeInternal, code, message)
}

// As is re-exported so callers do not need to import the standard errors package alongside
// this one.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// ExitCode maps an error onto the process exit status: 0 success, 2 internal invariant
// violation, 1 for every user or environment error.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var te *ToolError
	if stderrors.As(err, &te) && te.Type == ErrorTypeInternal {
		return 2
	}
	return 1
}
