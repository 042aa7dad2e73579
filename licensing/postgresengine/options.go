package postgresengine

import (
	"github.com/ejournals/license-accounting-go/licensing"
)

// Option defines a functional option for configuring PoolStore.
type Option func(*PoolStore) error

// WithTableNames sets the four table names for the PoolStore. Empty fields
// keep their defaults.
func WithTableNames(tables TableNames) Option {
	return func(ps *PoolStore) error {
		if tables.Pools != "" {
			ps.tables.Pools = tables.Pools
		}

		if tables.Licenses != "" {
			ps.tables.Licenses = tables.Licenses
		}

		if tables.Holds != "" {
			ps.tables.Holds = tables.Holds
		}

		if tables.Loans != "" {
			ps.tables.Loans = tables.Loans
		}

		return nil
	}
}

// WithPoolTableName sets just the pool table name for the PoolStore.
func WithPoolTableName(tableName string) Option {
	return func(ps *PoolStore) error {
		if tableName == "" {
			return ErrEmptyTableName
		}

		ps.tables.Pools = tableName

		return nil
	}
}

// WithLogger sets the logger for the PoolStore.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL queries with execution timing (development use)
// Info level: Load/save summaries, durations, concurrency conflicts (production-safe)
// Warn level: Non-critical issues like cleanup failures
// Error level: Critical failures that cause operation failures.
func WithLogger(logger licensing.Logger) Option {
	return func(ps *PoolStore) error {
		ps.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the PoolStore.
// The metrics collector will receive operation durations and concurrency
// conflict counts.
func WithMetrics(collector licensing.MetricsCollector) Option {
	return func(ps *PoolStore) error {
		ps.metricsCollector = collector
		return nil
	}
}
