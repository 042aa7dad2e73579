package licensing

import "errors"

// Policy violations: user-actionable, returned to the circulation API layer
// which is responsible for patron-facing messaging.
var (
	// ErrHoldsNotPermitted is returned when holds are disabled for the
	// library, or when a hold is requested on an unlimited-access pool.
	ErrHoldsNotPermitted = errors.New("holds are not permitted on this license pool")

	// ErrCollectionInactive is returned when a new loan or hold is requested
	// on an inactive collection. Lookups of existing records stay permitted.
	ErrCollectionInactive = errors.New("cannot create new records on an inactive collection")

	// ErrNoAvailableCopies is returned when a checkout finds no license able
	// to back the loan.
	ErrNoAvailableCopies = errors.New("no available copies")

	// ErrTitleCurrentlyAvailable is returned when a hold is requested while
	// copies are freely available; the patron should just check out.
	ErrTitleCurrentlyAvailable = errors.New("title is currently available, no hold needed")

	// ErrNotCheckedOut is returned when a checkin finds no active loan for
	// the patron.
	ErrNotCheckedOut = errors.New("patron has no active loan on this license pool")

	// ErrNotOnHold is returned when a hold release finds no hold for the patron.
	ErrNotOnHold = errors.New("patron has no hold on this license pool")
)

// ErrConcurrencyConflict signals that a guarded counter write found the pool
// row changed underneath it; the operation should be retried from a fresh
// load.
var ErrConcurrencyConflict = errors.New("concurrency conflict, license pool was modified")
