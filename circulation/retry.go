package circulation

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"time"

	"github.com/ejournals/license-accounting-go/licensing"
)

const (
	defaultMaxAttempts  = 6
	defaultBaseDelay    = 10 * time.Millisecond
	defaultJitterFactor = 0.3

	retriesMetric           = "circulation_operation_retries_total"
	maxRetriesReachedMetric = "circulation_operation_max_retries_reached_total"
	retryLabelOperation     = "operation"
	retryLabelAttempt       = "attempt_number"
)

var (
	// ErrInvalidMaxAttempts is returned when max attempts are not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrNegativeBaseDelay is returned when the base delay is negative.
	ErrNegativeBaseDelay = errors.New("base delay must not be negative")

	// ErrInvalidJitterFactor is returned when the jitter factor is not between 0.0 and 1.0.
	ErrInvalidJitterFactor = errors.New("jitter factor must be between 0.0 and 1.0")
)

// RetryableFunc represents a function that can be retried.
type RetryableFunc func(ctx context.Context) error

// retryConfig holds configuration for exponential backoff retry logic.
type retryConfig struct {
	maxAttempts      int
	baseDelay        time.Duration
	jitterFactor     float64
	metricsCollector licensing.MetricsCollector
	operation        string
}

// RetryOption configures retry behavior using the functional options pattern.
type RetryOption func(*retryConfig) error

// WithMaxAttempts sets the maximum number of retry attempts.
func WithMaxAttempts(attempts int) RetryOption {
	return func(config *retryConfig) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}

		config.maxAttempts = attempts

		return nil
	}
}

// WithBaseDelay sets the base delay for exponential backoff.
// Actual delays: baseDelay, baseDelay*2, baseDelay*4, baseDelay*8, etc.
func WithBaseDelay(delay time.Duration) RetryOption {
	return func(config *retryConfig) error {
		if delay < 0 {
			return ErrNegativeBaseDelay
		}

		config.baseDelay = delay

		return nil
	}
}

// WithJitterFactor sets the jitter factor to prevent thundering herd problems.
// Jitter is added as a percentage of the calculated backoff delay.
// Valid range: 0.0 (no jitter) to 1.0 (100% jitter).
func WithJitterFactor(factor float64) RetryOption {
	return func(config *retryConfig) error {
		if factor < 0.0 || factor > 1.0 {
			return ErrInvalidJitterFactor
		}

		config.jitterFactor = factor

		return nil
	}
}

// withRetryMetrics sets the metrics collector and operation label for retry
// instrumentation.
func withRetryMetrics(collector licensing.MetricsCollector, operation string) RetryOption {
	return func(config *retryConfig) error {
		config.metricsCollector = collector
		config.operation = operation

		return nil
	}
}

// RetryWithExponentialBackoff implements optimistic concurrency retry logic.
// It executes the provided function with exponential backoff, retrying only
// on licensing.ErrConcurrencyConflict up to maxAttempts times. All other
// errors fail fast.
//
// Retry schedule (default): 0 ms, 10 ms, 20 ms, 40 ms, 80 ms (with 30% jitter).
func RetryWithExponentialBackoff(ctx context.Context, fn RetryableFunc, options ...RetryOption) error {
	config := &retryConfig{
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		jitterFactor: defaultJitterFactor,
	}

	for _, option := range options {
		if err := option(config); err != nil {
			return err
		}
	}

	var lastErr error

	for attempt := 0; attempt < config.maxAttempts; attempt++ {
		if attempt > 0 {
			// Exponential backoff: baseDelay * 2^(attempt-1)
			delay := config.baseDelay * time.Duration(1<<(attempt-1))

			// Add jitter to prevent thundering herd
			jitter := rand.Float64() * float64(delay) * config.jitterFactor //nolint:gosec //math/rand is sufficient for jitter
			backoffDelay := delay + time.Duration(jitter)

			select {
			case <-time.After(backoffDelay):
				// Continue with retry
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if !errors.Is(lastErr, licensing.ErrConcurrencyConflict) {
			return lastErr // Permanent failure
		}

		recordRetryAttemptMetric(config, attempt)
	}

	recordMaxRetriesReachedMetric(config)

	return lastErr // Max attempts reached
}

// recordRetryAttemptMetric tracks retry attempts by operation and attempt number.
func recordRetryAttemptMetric(config *retryConfig, attempt int) {
	if attempt < config.maxAttempts-1 && config.metricsCollector != nil {
		config.metricsCollector.IncrementCounter(retriesMetric, map[string]string{
			retryLabelOperation: config.operation,
			retryLabelAttempt:   strconv.Itoa(attempt + 1),
		})
	}
}

// recordMaxRetriesReachedMetric tracks when retry exhaustion occurs.
func recordMaxRetriesReachedMetric(config *retryConfig) {
	if config.metricsCollector != nil {
		config.metricsCollector.IncrementCounter(maxRetriesReachedMetric, map[string]string{
			retryLabelOperation: config.operation,
		})
	}
}
