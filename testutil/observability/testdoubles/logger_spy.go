package testdoubles

import (
	"sync"
)

// Log levels recorded by LoggerSpy.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// SpyLogRecord represents one captured log call.
type SpyLogRecord struct {
	Level   string
	Message string
	Attrs   map[string]any
}

// LoggerSpy is a licensing.Logger implementation that captures log calls for
// testing.
type LoggerSpy struct {
	records []SpyLogRecord
	mu      sync.Mutex
}

// NewLoggerSpy creates a new LoggerSpy.
func NewLoggerSpy() *LoggerSpy {
	return &LoggerSpy{
		records: make([]SpyLogRecord, 0),
	}
}

// Debug implements the licensing.Logger interface.
func (s *LoggerSpy) Debug(msg string, args ...any) {
	s.record(LevelDebug, msg, args)
}

// Info implements the licensing.Logger interface.
func (s *LoggerSpy) Info(msg string, args ...any) {
	s.record(LevelInfo, msg, args)
}

// Warn implements the licensing.Logger interface.
func (s *LoggerSpy) Warn(msg string, args ...any) {
	s.record(LevelWarn, msg, args)
}

// Error implements the licensing.Logger interface.
func (s *LoggerSpy) Error(msg string, args ...any) {
	s.record(LevelError, msg, args)
}

func (s *LoggerSpy) record(level string, msg string, args []any) {
	attrs := make(map[string]any, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}

		attrs[key] = args[i+1]
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, SpyLogRecord{Level: level, Message: msg, Attrs: attrs})
}

// GetRecordCount returns the number of captured log records.
func (s *LoggerSpy) GetRecordCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.records)
}

// GetRecords returns a copy of all captured log records.
func (s *LoggerSpy) GetRecords() []SpyLogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]SpyLogRecord, len(s.records))
	copy(records, s.records)

	return records
}

// Reset clears all captured log records.
func (s *LoggerSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = s.records[:0]
}

// HasLog checks if there's a log record with the specified level and message.
func (s *LoggerSpy) HasLog(level string, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.records {
		if record.Level == level && record.Message == message {
			return true
		}
	}

	return false
}

// SpyLogRecordMatcher provides a fluent interface for checking log record attributes.
type SpyLogRecordMatcher struct {
	record *SpyLogRecord
	found  bool
}

// HasLogWithMessage starts a fluent chain to check a log record with the
// specified level and message.
func (s *LoggerSpy) HasLogWithMessage(level string, message string) *SpyLogRecordMatcher {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.records {
		if record.Level == level && record.Message == message {
			return &SpyLogRecordMatcher{record: &record, found: true}
		}
	}

	return &SpyLogRecordMatcher{found: false}
}

// WithAttr checks if the log record has the specified attribute with the given value.
func (m *SpyLogRecordMatcher) WithAttr(key string, value any) *SpyLogRecordMatcher {
	if !m.found {
		return m
	}

	if attrValue, exists := m.record.Attrs[key]; !exists || attrValue != value {
		m.found = false
	}

	return m
}

// Assert returns true if all conditions in the fluent chain were met.
func (m *SpyLogRecordMatcher) Assert() bool {
	return m.found
}
