package tools

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sammcj/mcp-gsheets/internal/telemetry"
	"github.com/sirupsen/logrus"
)

const (
	// ToolErrorLogFile is created under the log directory when LOG_TOOL_ERRORS is set
	ToolErrorLogFile = "tool-errors.log"

	// ToolErrorRetention is how long entries survive; older ones are pruned when the log is opened
	ToolErrorRetention = 60 * 24 * time.Hour
)

// ToolFailure describes one failed tool call
type ToolFailure struct {
	Tool         string
	InvocationID string
	Transport    string
	ErrorType    string
	Arguments    map[string]any
	Err          error
}

// ToolErrorLogEntry is one line of the tool error log
type ToolErrorLogEntry struct {
	Time         time.Time      `json:"time"`
	Tool         string         `json:"tool"`
	InvocationID string         `json:"invocation_id"`
	ErrorType    string         `json:"error_type,omitempty"`
	Error        string         `json:"error"`
	Arguments    map[string]any `json:"arguments,omitempty"`
	Transport    string         `json:"transport,omitempty"`
}

// ToolErrorLogger appends failed tool calls to a JSON-lines file.
// Arguments go through telemetry.SanitiseArgumentMap, so the file records no more than a span.
// A nil *ToolErrorLogger is a disabled logger.
type ToolErrorLogger struct {
	mu     sync.Mutex
	file   *os.File
	path   string
	logger *logrus.Logger
	now    func() time.Time
}

var globalErrorLogger atomic.Pointer[ToolErrorLogger]

// InitGlobalErrorLogger opens the shared tool error log under logDir
func InitGlobalErrorLogger(logger *logrus.Logger, logDir string) error {
	l, err := OpenToolErrorLog(logger, logDir)
	if err != nil {
		return err
	}
	if previous := globalErrorLogger.Swap(l); previous != nil {
		_ = previous.Close()
	}
	return nil
}

// GetGlobalErrorLogger returns the shared tool error log, or nil when none was opened
func GetGlobalErrorLogger() *ToolErrorLogger {
	return globalErrorLogger.Load()
}

// OpenToolErrorLog prunes expired entries from logDir/tool-errors.log and opens it for appending
func OpenToolErrorLog(logger *logrus.Logger, logDir string) (*ToolErrorLogger, error) {
	if logDir == "" {
		return nil, errors.New("no log directory for the tool error log")
	}
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	l := &ToolErrorLogger{
		path:   filepath.Join(logDir, ToolErrorLogFile),
		logger: logger,
		now:    time.Now,
	}
	if err := l.prune(); err != nil {
		logger.WithError(err).Warn("Failed to prune tool error log")
	}

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open tool error log: %w", err)
	}
	l.file = file

	logger.WithField("path", l.path).Info("Tool error logging enabled")
	return l, nil
}

// IsEnabled reports whether entries are being written
func (l *ToolErrorLogger) IsEnabled() bool {
	if l == nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file != nil
}

// Path returns the log file location
func (l *ToolErrorLogger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// LogToolError appends one entry. Write failures are reported to the application log only.
func (l *ToolErrorLogger) LogToolError(failure ToolFailure) {
	if l == nil {
		return
	}

	entry := ToolErrorLogEntry{
		Time:         l.now().UTC(),
		Tool:         failure.Tool,
		InvocationID: failure.InvocationID,
		ErrorType:    failure.ErrorType,
		Arguments:    telemetry.SanitiseArgumentMap(failure.Arguments),
		Transport:    failure.Transport,
	}
	if failure.Err != nil {
		entry.Error = failure.Err.Error()
	}

	line, err := json.Marshal(entry)
	if err != nil {
		l.logger.WithError(err).Error("Failed to encode tool error log entry")
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return
	}
	if _, err := l.file.Write(append(line, '\n')); err != nil {
		l.logger.WithError(err).WithField("path", l.path).Error("Failed to write tool error log entry")
	}
}

// Close stops logging and closes the file
func (l *ToolErrorLogger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// prune rewrites the log without entries older than ToolErrorRetention.
// Lines that do not parse, or carry no time, are kept.
func (l *ToolErrorLogger) prune() error {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	cutoff := l.now().Add(-ToolErrorRetention)
	var kept bytes.Buffer
	dropped := 0
	for line := range bytes.Lines(data) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var entry struct {
			Time time.Time `json:"time"`
		}
		if json.Unmarshal(line, &entry) == nil && !entry.Time.IsZero() && entry.Time.Before(cutoff) {
			dropped++
			continue
		}
		kept.Write(line)
		kept.WriteByte('\n')
	}
	if dropped == 0 {
		return nil
	}

	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, kept.Bytes(), 0600); err != nil {
		return err
	}
	if err := os.Rename(tmp, l.path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	l.logger.WithFields(logrus.Fields{"path": l.path, "dropped": dropped}).Debug("Pruned tool error log")
	return nil
}
