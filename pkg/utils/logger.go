package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// LogLevel orders log records by severity
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

var levelNames = map[LogLevel]string{
	LogLevelDebug: "DEBUG",
	LogLevelInfo:  "INFO",
	LogLevelWarn:  "WARN",
	LogLevelError: "ERROR",
}

// ANSI colors; warnings and errors stand out from the tool output they interleave with
var levelColors = map[LogLevel]string{
	LogLevelDebug: "\033[90m",
	LogLevelInfo:  "",
	LogLevelWarn:  "\033[33m",
	LogLevelError: "\033[31;1m",
}

const colorReset = "\033[0m"

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLogLevel maps a level name onto a LogLevel, defaulting to info
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// LogFormat selects how records are rendered
type LogFormat int

const (
	LogFormatText LogFormat = iota
	LogFormatJSON
	LogFormatCompact
)

// ParseLogFormat maps a format name onto a LogFormat, defaulting to text
func ParseLogFormat(s string) LogFormat {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return LogFormatJSON
	case "compact":
		return LogFormatCompact
	default:
		return LogFormatText
	}
}

// Logger is what the pipeline packages log through
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})

	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
}

// LoggerConfig configures NewLogger. A non-empty FilePath also appends every record to
// that file, uncoloured.
type LoggerConfig struct {
	Level    LogLevel
	Format   LogFormat
	Output   io.Writer
	FilePath string
	Color    bool
	Now      func() time.Time
}

// sink is shared by a logger and every logger derived from it with WithField
type sink struct {
	mu     sync.Mutex
	config LoggerConfig
	file   *os.File
}

// StdLogger writes leveled records to stderr and an optional log file
type StdLogger struct {
	sink   *sink
	fields map[string]interface{}
}

// NewLogger opens the log file, if any, and returns the logger
func NewLogger(config LoggerConfig) (*StdLogger, error) {
	if config.Output == nil {
		config.Output = os.Stderr
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	s := &sink{config: config}
	if config.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(config.FilePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		s.file = f
	}
	return &StdLogger{sink: s}, nil
}

// NewWriterLogger returns an uncoloured text logger writing to w at the given level
func NewWriterLogger(w io.Writer, level LogLevel) *StdLogger {
	logger, _ := NewLogger(LoggerConfig{Level: level, Output: w})
	return logger
}

func (l *StdLogger) Debug(msg string, args ...interface{}) { l.log(LogLevelDebug, msg, args) }
func (l *StdLogger) Info(msg string, args ...interface{})  { l.log(LogLevelInfo, msg, args) }
func (l *StdLogger) Warn(msg string, args ...interface{})  { l.log(LogLevelWarn, msg, args) }
func (l *StdLogger) Error(msg string, args ...interface{}) { l.log(LogLevelError, msg, args) }

// SetFormat switches the record format of l and every logger derived from it
func (l *StdLogger) SetFormat(format LogFormat) {
	l.sink.mu.Lock()
	l.sink.config.Format = format
	l.sink.mu.Unlock()
}

func (l *StdLogger) WithField(key string, value interface{}) Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

func (l *StdLogger) WithFields(fields map[string]interface{}) Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &StdLogger{sink: l.sink, fields: merged}
}

// Close closes the log file
func (l *StdLogger) Close() error {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if l.sink.file == nil {
		return nil
	}
	err := l.sink.file.Close()
	l.sink.file = nil
	return err
}

func (l *StdLogger) log(level LogLevel, msg string, args []interface{}) {
	s := l.sink
	s.mu.Lock()
	defer s.mu.Unlock()
	if level < s.config.Level {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	entry := l.format(level, msg, s.config.Now())

	if s.config.Color && s.config.Format != LogFormatJSON && levelColors[level] != "" {
		fmt.Fprintln(s.config.Output, levelColors[level]+entry+colorReset)
	} else {
		fmt.Fprintln(s.config.Output, entry)
	}
	if s.file != nil {
		fmt.Fprintln(s.file, entry)
	}
}

func (l *StdLogger) format(level LogLevel, msg string, now time.Time) string {
	switch l.sink.config.Format {
	case LogFormatJSON:
		record := map[string]interface{}{
			"time":    now.Format(time.RFC3339),
			"level":   level.String(),
			"message": msg,
		}
		for k, v := range l.fields {
			record[k] = v
		}
		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Sprintf(`{"level":%q,"message":%q}`, level.String(), msg)
		}
		return string(data)
	case LogFormatCompact:
		return fmt.Sprintf("%c %s %s", level.String()[0], now.Format("15:04:05"), msg)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", now.Format("2006-01-02 15:04:05"), level)
	if len(l.fields) > 0 {
		keys := make([]string, 0, len(l.fields))
		for k := range l.fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" {")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, l.fields[k])
		}
		b.WriteString("}")
	}
	b.WriteString(" ")
	b.WriteString(msg)
	return b.String()
}
