package utils

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestStepProgress(t *testing.T) {
	var buf bytes.Buffer
	start := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	now := start
	sp := NewStepProgressWithClock(&buf, 10, func() time.Time { return now })

	sp.Start("Probing host tools")
	if sp.Current() != "Probing host tools" {
		t.Errorf("Current() = %q", sp.Current())
	}
	sp.Start("Checking SDK licenses")
	now = start.Add(1500 * time.Millisecond)
	sp.Finish("Done")

	want := "[ 1/10] Probing host tools\n" +
		"[ 2/10] Checking SDK licenses\n" +
		"-----------\n" +
		"Done (1.5s)\n"
	if buf.String() != want {
		t.Errorf("output =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestStepProgressNilWriter(t *testing.T) {
	sp := NewStepProgress(nil, 2)
	sp.Start("step")
	sp.Finish("done")
	if sp.Current() != "step" {
		t.Errorf("Current() = %q", sp.Current())
	}
}

func TestLoggerLevelsAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, LogLevelWarn)
	logger.Info("hidden")
	logger.WithField("tool", "cmake").Warn("version %s is old", "3.10")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record written at warn level: %q", out)
	}
	if !strings.Contains(out, "WARN {tool=cmake} version 3.10 is old") {
		t.Errorf("output = %q", out)
	}
}

func TestLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, LogLevelDebug)
	logger.SetFormat(LogFormatJSON)
	logger.WithFields(map[string]interface{}{"step": "emit"}).Debug("writing %d files", 3)

	var entry map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("not JSON: %v: %q", err, buf.String())
	}
	if entry["level"] != "DEBUG" || entry["message"] != "writing 3 files" || entry["step"] != "emit" {
		t.Errorf("entry = %v", entry)
	}
}

func TestLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "androidgen.log")
	var console bytes.Buffer
	logger, err := NewLogger(LoggerConfig{
		Level:    LogLevelInfo,
		Output:   &console,
		FilePath: path,
		Color:    true,
	})
	if err != nil {
		t.Fatal(err)
	}
	logger.Error("sdkmanager failed")
	if err := logger.Close(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "ERROR sdkmanager failed") || strings.Contains(string(data), "\033[") {
		t.Errorf("log file = %q", data)
	}
	if !strings.HasPrefix(console.String(), "\033[31;1m") {
		t.Errorf("console record is not coloured: %q", console.String())
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestLoggerCompactFormatUsesClock(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(LoggerConfig{
		Level:  LogLevelDebug,
		Format: LogFormatCompact,
		Output: &buf,
		Now:    func() time.Time { return time.Date(2026, 10, 15, 9, 30, 5, 0, time.UTC) },
	})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("Probing %s", "cmake")
	if got := buf.String(); got != "I 09:30:05 Probing cmake\n" {
		t.Errorf("compact record = %q", got)
	}
}

func TestParseLogLevelAndFormat(t *testing.T) {
	levels := map[string]LogLevel{"debug": LogLevelDebug, "WARNING": LogLevelWarn, "error": LogLevelError, "": LogLevelInfo}
	for in, want := range levels {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
	formats := map[string]LogFormat{"json": LogFormatJSON, "compact": LogFormatCompact, "text": LogFormatText, "x": LogFormatText}
	for in, want := range formats {
		if got := ParseLogFormat(in); got != want {
			t.Errorf("ParseLogFormat(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFileHelpers(t *testing.T) {
	dir := t.TempDir()
	empty, err := IsDirEmpty(dir)
	if err != nil || !empty {
		t.Fatalf("IsDirEmpty(new dir) = %v, %v", empty, err)
	}

	src := filepath.Join(dir, "src")
	if err := os.MkdirAll(filepath.Join(src, "res", "values"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "res", "values", "strings.xml"), []byte("<resources/>"), 0644); err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(dir, "dst")
	if err := CopyTree(src, dst); err != nil {
		t.Fatal(err)
	}
	if !FileExists(filepath.Join(dst, "res", "values", "strings.xml")) || !DirExists(filepath.Join(dst, "res")) {
		t.Error("CopyTree did not reproduce the tree")
	}
	if FileExists(filepath.Join(dst, "res")) {
		t.Error("FileExists should be false for directories")
	}
}
