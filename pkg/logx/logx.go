// Package logx provides leveled, component-prefixed logging with an optional
// rotating JSONL file sink and env-driven debug domains.
package logx

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Level identifies the severity of a log line.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Logger writes component-prefixed log lines to stderr and, when file logging
// is enabled, structured JSONL entries to the shared sink.
type Logger struct {
	component string
	logger    *log.Logger
}

// Entry is the JSONL record written to the file sink. request_id carries the
// correlation ID assigned at the HTTP boundary.
type Entry struct {
	Timestamp string `json:"timestamp"`
	Component string `json:"component"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type debugConfig struct {
	enabled bool
	domains map[string]bool // nil = all domains
}

var (
	mu       sync.RWMutex
	debug    debugConfig
	fileSink *lumberjack.Logger
)

//nolint:gochecknoinits // env-driven debug configuration must run before any logging
func init() {
	initDebugFromEnv()
}

func initDebugFromEnv() {
	mu.Lock()
	defer mu.Unlock()

	if v := os.Getenv("DEBUG"); v == "1" || strings.EqualFold(v, "true") {
		debug.enabled = true
	}
	if domains := os.Getenv("DEBUG_DOMAINS"); domains != "" {
		debug.domains = make(map[string]bool)
		for _, d := range strings.Split(domains, ",") {
			debug.domains[strings.TrimSpace(d)] = true
		}
	}
}

// NewLogger creates a logger for the given component (e.g. "agent", "orchestrator").
func NewLogger(component string) *Logger {
	return &Logger{
		component: component,
		logger:    log.New(os.Stderr, "", 0), // stderr keeps stdout clean for CLI use
	}
}

// SetDebug toggles debug logging globally.
func SetDebug(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	debug.enabled = enabled
}

// IsDebugEnabled reports whether debug logging is on for the given component.
func IsDebugEnabled(component string) bool {
	mu.RLock()
	defer mu.RUnlock()
	if !debug.enabled {
		return false
	}
	if debug.domains == nil {
		return true
	}
	return debug.domains[component]
}

// EnableFileSink routes all log entries to a rotating JSONL file under dir.
func EnableFileSink(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}
	mu.Lock()
	defer mu.Unlock()
	fileSink = &lumberjack.Logger{
		Filename:   filepath.Join(dir, "assistant.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	}
	return nil
}

// CloseFileSink flushes and detaches the file sink.
func CloseFileSink() {
	mu.Lock()
	defer mu.Unlock()
	if fileSink != nil {
		_ = fileSink.Close()
		fileSink = nil
	}
}

func (l *Logger) log(level Level, requestID, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	ts := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
	l.logger.Printf("%s [%s] %s: %s", ts, l.component, level, msg)

	mu.RLock()
	sink := fileSink
	mu.RUnlock()
	if sink != nil {
		entry := Entry{
			Timestamp: ts,
			Component: l.component,
			Level:     string(level),
			Message:   msg,
			RequestID: requestID,
		}
		if data, err := json.Marshal(entry); err == nil {
			_, _ = sink.Write(append(data, '\n'))
		}
	}
}

// Debug logs a debug message when debug logging is enabled for this component.
func (l *Logger) Debug(format string, args ...any) {
	if IsDebugEnabled(l.component) {
		l.log(LevelDebug, "", format, args...)
	}
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...any) {
	l.log(LevelInfo, "", format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...any) {
	l.log(LevelWarn, "", format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...any) {
	l.log(LevelError, "", format, args...)
}

// InfoReq logs an informational message correlated with a request ID.
func (l *Logger) InfoReq(requestID, format string, args ...any) {
	l.log(LevelInfo, requestID, format, args...)
}

// ErrorReq logs an error message correlated with a request ID.
func (l *Logger) ErrorReq(requestID, format string, args ...any) {
	l.log(LevelError, requestID, format, args...)
}

// Wrap annotates an error with a message, preserving the original for errors.Is/As.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
