package circulation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ejournals/license-accounting-go/licensing"
)

const (
	defaultLoanPeriod        = 21 * 24 * time.Hour
	defaultReservationPeriod = 3 * 24 * time.Hour

	logMsgInvariantRepaired = "license pool counters were out of bounds and have been clamped"
	logMsgDeltaIgnored      = "circulation delta event ignored"
	logAttrPoolIdentifier   = "pool_identifier"
	logAttrDeltaType        = "delta_type"
	logAttrIgnoreReason     = "ignore_reason"
)

// ErrNilPoolStore is returned when NewService receives a nil store.
var ErrNilPoolStore = errors.New("pool store must not be nil")

// PoolStore is the persistence the circulation service depends on. The
// PostgreSQL implementation lives in licensing/postgresengine; tests use an
// in-memory double.
//
// SaveCounters must be guarded: it fails with
// licensing.ErrConcurrencyConflict when the pool row no longer carries the
// version the caller loaded.
type PoolStore interface {
	InsertPool(ctx context.Context, pool *licensing.LicensePool) error
	LoadPool(ctx context.Context, collectionID uuid.UUID, identifier string) (*licensing.LicensePool, licensing.PoolVersion, error)
	SaveCounters(ctx context.Context, pool *licensing.LicensePool, expectedVersion licensing.PoolVersion) error
	ReplaceLicenses(ctx context.Context, poolID uuid.UUID, licenses licensing.Licenses) error
	SaveHold(ctx context.Context, poolID uuid.UUID, hold licensing.Hold) error
	DeleteHold(ctx context.Context, poolID uuid.UUID, patronID uuid.UUID) error
	SaveLoan(ctx context.Context, poolID uuid.UUID, loan licensing.Loan) error
	DeleteLoan(ctx context.Context, poolID uuid.UUID, patronID uuid.UUID) error
}

// LicenseSnapshot is a distributor's full statement of the licenses backing
// one title. AsOf is the time the distributor produced it; zero means "as of
// receipt".
type LicenseSnapshot struct {
	AsOf     time.Time
	Licenses licensing.Licenses
}

// Service implements the circulation operations on license pools: patron
// checkouts, checkins, and holds, plus the two reconciliation paths that fold
// distributor data into the counters.
//
// Every operation loads the pool fresh, decides, and persists the counters
// through a guarded write; concurrency conflicts are retried with
// exponential backoff.
type Service struct {
	store             PoolStore
	clock             func() time.Time
	loanPeriod        time.Duration
	reservationPeriod time.Duration
	allowHolds        bool
	logger            licensing.Logger
	metricsCollector  licensing.MetricsCollector
	changeRecorder    licensing.ChangeRecorder
	retryOptions      []RetryOption
}

// NewService creates a circulation Service with optional configuration.
func NewService(store PoolStore, options ...Option) (*Service, error) {
	if store == nil {
		return nil, ErrNilPoolStore
	}

	s := &Service{
		store:             store,
		clock:             time.Now,
		loanPeriod:        defaultLoanPeriod,
		reservationPeriod: defaultReservationPeriod,
		allowHolds:        true,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// RegisterPool creates a new license pool for a title in a collection.
// Pools cannot be created for inactive collections; existing pools of
// inactive collections stay readable.
func (s *Service) RegisterPool(
	ctx context.Context,
	collectionID uuid.UUID,
	identifier string,
	collectionActive bool,
) (*licensing.LicensePool, error) {

	if !collectionActive {
		return nil, licensing.ErrCollectionInactive
	}

	pool := &licensing.LicensePool{
		ID:               uuid.New(),
		CollectionID:     collectionID,
		Identifier:       identifier,
		CollectionActive: true,
	}

	if err := s.store.InsertPool(ctx, pool); err != nil {
		return nil, err
	}

	return pool, nil
}

// GetPool fetches the pool for a title, including licenses, holds, and loans.
func (s *Service) GetPool(ctx context.Context, collectionID uuid.UUID, identifier string) (*licensing.LicensePool, error) {
	pool, _, err := s.store.LoadPool(ctx, collectionID, identifier)

	return pool, err
}

// Checkout loans a copy of the title to the patron.
//
// A patron with an active loan gets that loan back unchanged. On a
// limited pool the loan is backed by the best available license; a patron
// whose hold is ready may take the copy reserved for them, anyone else needs
// free availability. When no license can back the loan the patron's hold, if
// any, is moved to the front of the waiting list and ErrNoAvailableCopies is
// returned.
func (s *Service) Checkout(
	ctx context.Context,
	collectionID uuid.UUID,
	identifier string,
	patronID uuid.UUID,
) (*licensing.Loan, error) {

	var loan *licensing.Loan

	err := s.withPool(ctx, "checkout", collectionID, identifier,
		func(ctx context.Context, pool *licensing.LicensePool, version licensing.PoolVersion) error {
			now := s.clock()

			if existing := pool.FindLoan(patronID); existing != nil {
				result := *existing
				loan = &result

				return nil
			}

			if pool.IsUnlimitedAccess() {
				created, err := s.loanWithoutAccounting(ctx, pool, patronID, now)
				if err != nil {
					return err
				}

				loan = created

				return nil
			}

			hold := pool.FindHold(patronID)
			holdReady := hold != nil && hold.IsReady(now)

			best := pool.BestAvailableLicenses(now)
			if len(best) == 0 || (pool.Counters.Available == 0 && !holdReady) {
				return s.failCheckout(ctx, pool, patronID, hold)
			}

			license := best[0]
			license.Checkout(now)

			end := now.Add(s.loanPeriod)
			created, _, loanErr := pool.LoanTo(patronID, now, &end, &license.Identifier, nil)
			if loanErr != nil {
				return loanErr
			}

			var ignored map[uuid.UUID]struct{}
			if hold != nil {
				ignored = map[uuid.UUID]struct{}{patronID: {}}
			}

			change, changed := pool.ReconcileFromLicenses(now, time.Time{}, ignored)
			s.repairInvariants(pool)

			if err := s.store.SaveCounters(ctx, pool, version); err != nil {
				return err
			}

			if err := s.store.ReplaceLicenses(ctx, pool.ID, pool.Licenses); err != nil {
				return err
			}

			if err := s.store.SaveLoan(ctx, pool.ID, *created); err != nil {
				return err
			}

			if hold != nil {
				pool.RemoveHold(patronID)
				if err := s.store.DeleteHold(ctx, pool.ID, patronID); err != nil {
					return err
				}
			}

			if err := s.persistHoldQueue(ctx, pool, now); err != nil {
				return err
			}

			s.emitChange(change, changed)

			result := *created
			loan = &result

			return nil
		})

	return loan, err
}

// loanWithoutAccounting serves a checkout on an unlimited-access pool, where
// no license or counter bookkeeping applies.
func (s *Service) loanWithoutAccounting(
	ctx context.Context,
	pool *licensing.LicensePool,
	patronID uuid.UUID,
	now time.Time,
) (*licensing.Loan, error) {

	end := now.Add(s.loanPeriod)

	created, _, err := pool.LoanTo(patronID, now, &end, nil, nil)
	if err != nil {
		return nil, err
	}

	if err := s.store.SaveLoan(ctx, pool.ID, *created); err != nil {
		return nil, err
	}

	result := *created

	return &result, nil
}

// failCheckout handles a checkout that found no license to back the loan.
// The patron's hold, if any, goes back to the front of the waiting list so
// the next freed copy is theirs.
func (s *Service) failCheckout(
	ctx context.Context,
	pool *licensing.LicensePool,
	patronID uuid.UUID,
	hold *licensing.Hold,
) error {

	if hold != nil {
		position := 1
		hold.Update(nil, nil, &position)
		hold.End = nil

		if err := s.store.SaveHold(ctx, pool.ID, *hold); err != nil {
			return err
		}
	}

	return licensing.ErrNoAvailableCopies
}

// Checkin returns the patron's loan. The backing license gets its free slot
// back and the freed copy goes to the front of the hold queue, if anyone is
// waiting.
func (s *Service) Checkin(ctx context.Context, collectionID uuid.UUID, identifier string, patronID uuid.UUID) error {
	return s.withPool(ctx, "checkin", collectionID, identifier,
		func(ctx context.Context, pool *licensing.LicensePool, version licensing.PoolVersion) error {
			now := s.clock()

			loan := pool.FindLoan(patronID)
			if loan == nil {
				return licensing.ErrNotCheckedOut
			}

			if pool.IsUnlimitedAccess() {
				pool.RemoveLoan(patronID)

				return s.store.DeleteLoan(ctx, pool.ID, patronID)
			}

			if loan.LicenseIdentifier != nil {
				if license := pool.FindLicense(*loan.LicenseIdentifier); license != nil {
					license.Checkin(now)
				}
			}

			pool.RemoveLoan(patronID)

			change, changed := s.rederiveCounters(pool, now, licensing.DeltaCheckin)
			s.repairInvariants(pool)

			if err := s.store.SaveCounters(ctx, pool, version); err != nil {
				return err
			}

			if err := s.store.ReplaceLicenses(ctx, pool.ID, pool.Licenses); err != nil {
				return err
			}

			if err := s.store.DeleteLoan(ctx, pool.ID, patronID); err != nil {
				return err
			}

			if err := s.persistHoldQueue(ctx, pool, now); err != nil {
				return err
			}

			s.emitChange(change, changed)

			return nil
		})
}

// PlaceHold queues the patron for the next free copy of the title.
//
// A patron with an existing hold gets that hold back unchanged. Holds are
// refused on unlimited-access pools, when the library disallows them, and
// while copies are freely available, in which case the patron should simply
// check out.
func (s *Service) PlaceHold(
	ctx context.Context,
	collectionID uuid.UUID,
	identifier string,
	patronID uuid.UUID,
) (*licensing.Hold, error) {

	var hold *licensing.Hold

	err := s.withPool(ctx, "place-hold", collectionID, identifier,
		func(ctx context.Context, pool *licensing.LicensePool, version licensing.PoolVersion) error {
			now := s.clock()

			if pool.IsUnlimitedAccess() {
				return licensing.ErrHoldsNotPermitted
			}

			if existing := pool.FindHold(patronID); existing != nil {
				result := *existing
				hold = &result

				return nil
			}

			if pool.Counters.Available > 0 {
				return licensing.ErrTitleCurrentlyAvailable
			}

			queueLength := len(pool.ActiveHolds(now)) + 1
			position := queueLength - pool.Counters.Reserved

			created, _, holdErr := pool.PlaceHold(patronID, now, now, nil, &position, s.allowHolds)
			if holdErr != nil {
				return holdErr
			}

			change, changed := pool.UpdateAvailability(
				licensing.CounterPatch{HoldQueue: licensing.SetTo(queueLength)},
				time.Time{},
			)
			s.repairInvariants(pool)

			if err := s.store.SaveCounters(ctx, pool, version); err != nil {
				return err
			}

			if err := s.store.SaveHold(ctx, pool.ID, *created); err != nil {
				return err
			}

			s.emitChange(change, changed)

			result := *created
			hold = &result

			return nil
		})

	return hold, err
}

// ReleaseHold takes the patron out of the hold queue. A reserved copy goes
// back into availability and the queue behind the patron moves up.
func (s *Service) ReleaseHold(ctx context.Context, collectionID uuid.UUID, identifier string, patronID uuid.UUID) error {
	return s.withPool(ctx, "release-hold", collectionID, identifier,
		func(ctx context.Context, pool *licensing.LicensePool, version licensing.PoolVersion) error {
			now := s.clock()

			hold := pool.FindHold(patronID)
			if hold == nil {
				return licensing.ErrNotOnHold
			}

			wasReady := hold.IsReady(now)
			pool.RemoveHold(patronID)

			var change licensing.CounterChange
			var changed bool

			if len(pool.Licenses) > 0 {
				change, changed = pool.ReconcileFromLicenses(now, time.Time{}, nil)
			} else if wasReady {
				next := pool.Counters
				next.Reserved = max(next.Reserved-1, 0)
				next.HoldQueue = max(next.HoldQueue-1, 0)
				next.Available = min(next.Available+1, next.Owned)
				change, changed = pool.UpdateAvailability(
					licensing.FullPatch(next.Owned, next.Available, next.Reserved, next.HoldQueue),
					time.Time{},
				)
			} else {
				change, changed = s.rederiveCounters(pool, now, licensing.DeltaHoldRelease)
			}

			s.repairInvariants(pool)

			if err := s.store.SaveCounters(ctx, pool, version); err != nil {
				return err
			}

			if err := s.store.DeleteHold(ctx, pool.ID, patronID); err != nil {
				return err
			}

			if err := s.persistHoldQueue(ctx, pool, now); err != nil {
				return err
			}

			s.emitChange(change, changed)

			return nil
		})
}

// EstimateHoldReady estimates when the patron's hold will be ready for
// checkout. The boolean is false when no estimate is possible.
func (s *Service) EstimateHoldReady(
	ctx context.Context,
	collectionID uuid.UUID,
	identifier string,
	patronID uuid.UUID,
) (time.Time, bool, error) {

	pool, _, err := s.store.LoadPool(ctx, collectionID, identifier)
	if err != nil {
		return time.Time{}, false, err
	}

	hold := pool.FindHold(patronID)
	if hold == nil {
		return time.Time{}, false, licensing.ErrNotOnHold
	}

	until, ok := hold.Until(s.clock(), pool.Counters.Owned, s.loanPeriod, s.reservationPeriod)

	return until, ok, nil
}

// ApplyLicenseSnapshot replaces the pool's license records with a
// distributor's full statement and re-derives the counters from it.
func (s *Service) ApplyLicenseSnapshot(
	ctx context.Context,
	collectionID uuid.UUID,
	identifier string,
	snapshot LicenseSnapshot,
) error {

	return s.withPool(ctx, "apply-license-snapshot", collectionID, identifier,
		func(ctx context.Context, pool *licensing.LicensePool, version licensing.PoolVersion) error {
			now := s.clock()

			asOf := snapshot.AsOf
			if asOf.IsZero() {
				asOf = now
			}

			pool.Licenses = snapshot.Licenses

			change, changed := pool.ReconcileFromLicenses(now, asOf, nil)
			s.repairInvariants(pool)

			if err := s.store.SaveCounters(ctx, pool, version); err != nil {
				return err
			}

			if err := s.store.ReplaceLicenses(ctx, pool.ID, pool.Licenses); err != nil {
				return err
			}

			if err := s.persistHoldQueue(ctx, pool, now); err != nil {
				return err
			}

			s.emitChange(change, changed)

			return nil
		})
}

// ApplyCirculationDeltas folds incremental distributor signals into the
// pool's counters. Events that cannot be ordered against the pool's
// watermark are dropped and counted, never applied.
func (s *Service) ApplyCirculationDeltas(
	ctx context.Context,
	collectionID uuid.UUID,
	identifier string,
	events ...licensing.DeltaEvent,
) error {

	return s.withPool(ctx, "apply-circulation-deltas", collectionID, identifier,
		func(ctx context.Context, pool *licensing.LicensePool, version licensing.PoolVersion) error {
			now := s.clock()

			changes := make([]licensing.CounterChange, 0, len(events))

			for _, event := range events {
				if reason, dropped := pool.DeltaDropReason(event); dropped {
					s.recordIgnoredDelta(pool, event, reason)
					continue
				}

				if change, applied := pool.ApplyDelta(event); applied {
					changes = append(changes, change)
				}
			}

			s.repairInvariants(pool)

			if err := s.store.SaveCounters(ctx, pool, version); err != nil {
				return err
			}

			if err := s.persistHoldQueue(ctx, pool, now); err != nil {
				return err
			}

			for _, change := range changes {
				s.emitChange(change, true)
			}

			return nil
		})
}

// withPool runs fn against a freshly loaded pool, retrying the whole
// load-decide-persist cycle on concurrency conflicts.
func (s *Service) withPool(
	ctx context.Context,
	operation string,
	collectionID uuid.UUID,
	identifier string,
	fn func(ctx context.Context, pool *licensing.LicensePool, version licensing.PoolVersion) error,
) error {

	retryOptions := make([]RetryOption, 0, len(s.retryOptions)+1)
	retryOptions = append(retryOptions, withRetryMetrics(s.metricsCollector, operation))
	retryOptions = append(retryOptions, s.retryOptions...)

	return RetryWithExponentialBackoff(ctx, func(ctx context.Context) error {
		pool, version, err := s.store.LoadPool(ctx, collectionID, identifier)
		if err != nil {
			return err
		}

		return fn(ctx, pool, version)
	}, retryOptions...)
}

// rederiveCounters recomputes the counters after a local circulation change.
// Pools with license records are re-derived from the license set; pools
// tracked purely through distributor deltas reuse the delta transition for
// the equivalent signal.
func (s *Service) rederiveCounters(
	pool *licensing.LicensePool,
	now time.Time,
	equivalent licensing.DeltaType,
) (licensing.CounterChange, bool) {

	if len(pool.Licenses) > 0 {
		return pool.ReconcileFromLicenses(now, time.Time{}, nil)
	}

	next := licensing.NextCounters(pool.Counters, licensing.DeltaEvent{Type: equivalent, Delta: 1})

	return pool.UpdateAvailability(
		licensing.FullPatch(next.Owned, next.Available, next.Reserved, next.HoldQueue),
		time.Time{},
	)
}

func (s *Service) persistHoldQueue(ctx context.Context, pool *licensing.LicensePool, now time.Time) error {
	for _, hold := range pool.RecalculateHoldQueue(now, s.reservationPeriod) {
		if err := s.store.SaveHold(ctx, pool.ID, hold); err != nil {
			return err
		}
	}

	return nil
}

func (s *Service) repairInvariants(pool *licensing.LicensePool) {
	if !pool.CheckInvariants() {
		return
	}

	if s.logger != nil {
		s.logger.Warn(logMsgInvariantRepaired, logAttrPoolIdentifier, pool.Identifier)
	}

	if s.metricsCollector != nil {
		s.metricsCollector.IncrementCounter(
			licensing.CounterInvariantFixedMetric,
			map[string]string{licensing.LabelPoolIdentifier: pool.Identifier},
		)
	}
}

func (s *Service) recordIgnoredDelta(pool *licensing.LicensePool, event licensing.DeltaEvent, reason string) {
	if s.logger != nil {
		s.logger.Warn(logMsgDeltaIgnored,
			logAttrPoolIdentifier, pool.Identifier,
			logAttrDeltaType, string(event.Type),
			logAttrIgnoreReason, reason)
	}

	if s.metricsCollector != nil {
		s.metricsCollector.IncrementCounter(licensing.DeltaEventsIgnoredMetric, map[string]string{
			licensing.LabelPoolIdentifier: pool.Identifier,
			licensing.LabelDeltaType:      string(event.Type),
			licensing.LabelIgnoreReason:   reason,
		})
	}
}

func (s *Service) emitChange(change licensing.CounterChange, changed bool) {
	if changed && s.changeRecorder != nil {
		s.changeRecorder.RecordCounterChange(change)
	}
}
