package licensing

import (
	"time"
)

// Logger interface for warnings about tolerated data anomalies, reconciliation
// details, and error reporting. All interfaces in this file are
// dependency-free so users can plug in any backend.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// MetricsCollector interface for collecting accounting and operational
// metrics: reconciliation counts, dropped delta events, clamp corrections.
type MetricsCollector interface {
	RecordDuration(metric string, duration time.Duration, labels map[string]string)
	IncrementCounter(metric string, labels map[string]string)
	RecordValue(metric string, value float64, labels map[string]string)
}

// ChangeRecorder receives the typed counter-change records emitted by
// UpdateAvailability. This is the circulation-analytics side channel: the
// core emits structured data, and implementations decide whether that becomes
// a log line, an analytics event, or both.
type ChangeRecorder interface {
	RecordCounterChange(change CounterChange)
}

// Metric names emitted through MetricsCollector.
const (
	DeltaEventsIgnoredMetric    = "licensing_delta_events_ignored_total"
	AvailabilityClampedMetric   = "licensing_availability_clamped_total"
	CounterInvariantFixedMetric = "licensing_counter_invariant_fixed_total"
)

// Metric label keys.
const (
	LabelPoolIdentifier = "pool_identifier"
	LabelDeltaType      = "delta_type"
	LabelIgnoreReason   = "ignore_reason"
)
