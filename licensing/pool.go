package licensing

import (
	"time"

	"github.com/google/uuid"
)

// PoolVersion is the optimistic concurrency token of a persisted license
// pool. Stores bump it on every guarded counter write; a stale token turns
// the write into ErrConcurrencyConflict.
type PoolVersion int64

// Counters is the derived availability picture of a LicensePool: how many
// loans the licenses can still serve in total, how many copies are free right
// now, how many are reserved for patrons at the front of the hold queue, and
// how many patrons are queued overall.
type Counters struct {
	Owned     int `json:"owned"`
	Available int `json:"available"`
	Reserved  int `json:"reserved"`
	HoldQueue int `json:"hold_queue"`
}

// LicensePool is the aggregate root for one title within one collection. It
// owns the distributor Licenses, the patron Holds and Loans, and the four
// derived counters, and is the unit of contention for all accounting.
type LicensePool struct {
	ID           uuid.UUID
	CollectionID uuid.UUID

	// Identifier is the title identifier within the collection; the pair
	// (CollectionID, Identifier) is unique.
	Identifier string

	// CollectionActive mirrors the owning collection's state. New loans and
	// holds are refused on inactive collections; lookups stay permitted.
	CollectionActive bool

	// UnlimitedAccess marks open-access or distributor-unmetered content. No
	// scarcity accounting is done for such pools; the counters stay at their
	// zero values. An explicit flag, so that a counter that drifts negative
	// can never be misread as unmetered content.
	UnlimitedAccess bool

	Counters Counters

	// LastChecked is the reconciliation watermark: the event time of the most
	// recent snapshot or delta reflected in the counters. Zero means the pool
	// has never been checked.
	LastChecked time.Time

	Licenses Licenses
	Holds    Holds
	Loans    Loans
}

// IsUnlimitedAccess reports whether this pool bypasses scarcity accounting.
func (p *LicensePool) IsUnlimitedAccess() bool {
	return p.UnlimitedAccess
}

// NeedsUpdate reports whether the pool's circulation info is stale relative
// to the given refresh interval. A zero interval means the pool never needs a
// refresh once checked.
func (p *LicensePool) NeedsUpdate(now time.Time, refreshInterval time.Duration) bool {
	if p.LastChecked.IsZero() {
		return true
	}

	if refreshInterval <= 0 {
		return false
	}

	return now.Sub(p.LastChecked) > refreshInterval
}

// UpdateAvailability is the single choke point that ever writes the four
// counters. Unset patch fields leave their counter unchanged.
//
// When any counter actually moves, LastChecked is advanced to asOf, unless
// asOf is the zero time, the "do not stamp" sentinel used by delta events
// that carry no usable timestamp. The returned CounterChange describes the
// committed movement; the boolean is false when nothing moved.
//
// Unlimited-access pools are left untouched.
func (p *LicensePool) UpdateAvailability(patch CounterPatch, asOf time.Time) (CounterChange, bool) {
	if p.IsUnlimitedAccess() {
		return CounterChange{}, false
	}

	old := p.Counters

	p.Counters.Owned = patch.Owned.Value(old.Owned)
	p.Counters.Available = patch.Available.Value(old.Available)
	p.Counters.Reserved = patch.Reserved.Value(old.Reserved)
	p.Counters.HoldQueue = patch.HoldQueue.Value(old.HoldQueue)

	changed := p.Counters != old

	if !asOf.IsZero() && !patch.IsEmpty() {
		// We got actual numbers, they may even have changed our view of the
		// pool; either way this counts as a check.
		p.LastChecked = asOf
	}

	if !changed {
		return CounterChange{}, false
	}

	return CounterChange{
		PoolID:     p.ID,
		Identifier: p.Identifier,
		AsOf:       asOf,
		Old:        old,
		New:        p.Counters,
	}, true
}

// ReconcileFromLicenses re-derives all four counters from the pool's full
// license set and its active holds, after a license snapshot import.
//
// Holds in ignoredHolds (keyed by patron) are treated as already gone; the
// caller uses this when a hold is about to be converted or released in the
// same unit of work. The result is committed through UpdateAvailability, so
// watermark and change-record semantics apply uniformly. Calling it twice
// with no intervening license change is a no-op the second time.
func (p *LicensePool) ReconcileFromLicenses(
	now time.Time,
	asOf time.Time,
	ignoredHolds map[uuid.UUID]struct{},
) (CounterChange, bool) {

	owned := 0
	available := 0

	for _, license := range p.Licenses {
		if total, ok := license.TotalRemainingLoans(now); ok {
			owned += total
		}

		available += license.CurrentlyAvailableLoans(now)
	}

	queueLength := 0
	for _, hold := range p.ActiveHolds(now) {
		if _, ignored := ignoredHolds[hold.PatronID]; ignored {
			continue
		}

		queueLength++
	}

	reserved := 0
	if queueLength > available {
		reserved = available
		available = 0
	} else {
		reserved = queueLength
		available -= reserved
	}

	return p.UpdateAvailability(FullPatch(owned, available, reserved, queueLength), asOf)
}

// CheckInvariants clamps counter states that can never legitimately occur
// (negative counters, or more copies available than owned) and reports
// whether a breach was found. A breach is a programmer error upstream;
// production behavior is to clamp, never to propagate a broken count.
func (p *LicensePool) CheckInvariants() bool {
	if p.IsUnlimitedAccess() {
		return false
	}

	before := p.Counters
	fixed := p.Counters

	if fixed.Owned < 0 {
		fixed.Owned = 0
	}

	if fixed.Available < 0 {
		fixed.Available = 0
	}

	if fixed.Reserved < 0 {
		fixed.Reserved = 0
	}

	if fixed.HoldQueue < 0 {
		fixed.HoldQueue = 0
	}

	if fixed.Available > fixed.Owned {
		fixed.Available = fixed.Owned
	}

	p.Counters = fixed

	return fixed != before
}

// FindLoan returns the patron's active loan on this pool, if any.
func (p *LicensePool) FindLoan(patronID uuid.UUID) *Loan {
	for i := range p.Loans {
		if p.Loans[i].PatronID == patronID {
			return &p.Loans[i]
		}
	}

	return nil
}

// FindHold returns the patron's hold on this pool, if any.
func (p *LicensePool) FindHold(patronID uuid.UUID) *Hold {
	for i := range p.Holds {
		if p.Holds[i].PatronID == patronID {
			return &p.Holds[i]
		}
	}

	return nil
}

// FindLicense returns the license with the given distributor identifier, if
// any.
func (p *LicensePool) FindLicense(identifier string) *License {
	for i := range p.Licenses {
		if p.Licenses[i].Identifier == identifier {
			return &p.Licenses[i]
		}
	}

	return nil
}

// LoanTo creates or fetches the patron's loan on this pool.
//
// On an active collection the loan is created when missing; on an inactive
// collection only an existing loan can be fetched, and ErrCollectionInactive
// is returned when there is none. Non-nil license and external identifiers
// are attached to the loan either way, as are explicit start/end overrides.
// The boolean reports whether the loan is new.
func (p *LicensePool) LoanTo(
	patronID uuid.UUID,
	start time.Time,
	end *time.Time,
	licenseIdentifier *string,
	externalIdentifier *string,
) (*Loan, bool, error) {

	loan := p.FindLoan(patronID)
	isNew := false

	if loan == nil {
		if !p.CollectionActive {
			return nil, false, ErrCollectionInactive
		}

		p.Loans = append(p.Loans, Loan{PatronID: patronID, Start: start})
		loan = &p.Loans[len(p.Loans)-1]
		isNew = true
	}

	if !start.IsZero() {
		loan.Start = start
	}

	if end != nil {
		loan.End = end
	}

	if licenseIdentifier != nil {
		loan.LicenseIdentifier = licenseIdentifier
	}

	if externalIdentifier != nil {
		loan.ExternalIdentifier = externalIdentifier
	}

	return loan, isNew, nil
}

// PlaceHold creates or updates the patron's hold on this pool.
//
// It is refused when the library disallows holds, and on an inactive
// collection when no pre-existing hold record exists. A zero start defaults
// to now. End and position follow the distributor's view of the queue, nil
// meaning unchanged. The boolean reports whether the hold is new.
func (p *LicensePool) PlaceHold(
	patronID uuid.UUID,
	now time.Time,
	start time.Time,
	end *time.Time,
	position *int,
	allowHolds bool,
) (*Hold, bool, error) {

	if !allowHolds {
		return nil, false, ErrHoldsNotPermitted
	}

	if start.IsZero() {
		start = now
	}

	hold := p.FindHold(patronID)
	isNew := false

	if hold == nil {
		if !p.CollectionActive {
			return nil, false, ErrCollectionInactive
		}

		p.Holds = append(p.Holds, Hold{PatronID: patronID, Start: start})
		hold = &p.Holds[len(p.Holds)-1]
		isNew = true
	}

	hold.Update(&start, end, position)

	return hold, isNew, nil
}

// RemoveHold deletes the patron's hold from the pool and reports whether one
// was present.
func (p *LicensePool) RemoveHold(patronID uuid.UUID) bool {
	for i := range p.Holds {
		if p.Holds[i].PatronID == patronID {
			p.Holds = append(p.Holds[:i], p.Holds[i+1:]...)
			return true
		}
	}

	return false
}

// RemoveLoan deletes the patron's loan from the pool and reports whether one
// was present.
func (p *LicensePool) RemoveLoan(patronID uuid.UUID) bool {
	for i := range p.Loans {
		if p.Loans[i].PatronID == patronID {
			p.Loans = append(p.Loans[:i], p.Loans[i+1:]...)
			return true
		}
	}

	return false
}
