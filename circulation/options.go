package circulation

import (
	"errors"
	"time"

	"github.com/ejournals/license-accounting-go/licensing"
)

var (
	// ErrNilClock is returned when WithClock receives a nil function.
	ErrNilClock = errors.New("clock must not be nil")

	// ErrNonPositivePeriod is returned when a loan or reservation period
	// option receives a zero or negative duration.
	ErrNonPositivePeriod = errors.New("period must be positive")
)

// Option defines a functional option for configuring Service.
type Option func(*Service) error

// WithClock sets the time source for the Service. Tests use this to pin
// "now".
func WithClock(clock func() time.Time) Option {
	return func(s *Service) error {
		if clock == nil {
			return ErrNilClock
		}

		s.clock = clock

		return nil
	}
}

// WithLoanPeriod sets the default loan duration used for new loans and for
// hold-readiness estimates.
func WithLoanPeriod(period time.Duration) Option {
	return func(s *Service) error {
		if period <= 0 {
			return ErrNonPositivePeriod
		}

		s.loanPeriod = period

		return nil
	}
}

// WithReservationPeriod sets how long a reserved copy is kept for the patron
// at the front of the hold queue.
func WithReservationPeriod(period time.Duration) Option {
	return func(s *Service) error {
		if period <= 0 {
			return ErrNonPositivePeriod
		}

		s.reservationPeriod = period

		return nil
	}
}

// WithHoldsAllowed sets whether the library permits holds at all.
func WithHoldsAllowed(allowed bool) Option {
	return func(s *Service) error {
		s.allowHolds = allowed
		return nil
	}
}

// WithLogger sets the logger for the Service.
func WithLogger(logger licensing.Logger) Option {
	return func(s *Service) error {
		s.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Service. It receives
// invariant repairs, ignored delta events, and retry counts.
func WithMetrics(collector licensing.MetricsCollector) Option {
	return func(s *Service) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithChangeRecorder sets the recorder that receives every committed counter
// change.
func WithChangeRecorder(recorder licensing.ChangeRecorder) Option {
	return func(s *Service) error {
		s.changeRecorder = recorder
		return nil
	}
}

// WithRetryOptions overrides the retry behavior of all operations.
func WithRetryOptions(options ...RetryOption) Option {
	return func(s *Service) error {
		s.retryOptions = options
		return nil
	}
}
