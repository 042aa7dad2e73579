package licensing

import (
	"time"
)

// LicenseStatus is the availability state reported by the distributor for a
// single license, following the ODL License Info Document status values.
type LicenseStatus string

const (
	// LicenseStatusAvailable means the distributor considers the license usable.
	LicenseStatusAvailable LicenseStatus = "available"

	// LicenseStatusUnavailable means the distributor has suspended the license.
	LicenseStatusUnavailable LicenseStatus = "unavailable"

	// LicenseStatusRevoked means the distributor has permanently revoked the license.
	LicenseStatusRevoked LicenseStatus = "revoked"
)

// Licenses is an alias type for a slice of License.
type Licenses = []License

// License is one distributor-issued grant of lending rights for a title,
// possibly limited in time (Expires), in lifetime use (CheckoutsLeft) and in
// concurrent use (TermsConcurrency).
//
// All limit fields are optional; a nil pointer means the distributor imposes
// no limit on that axis. CheckoutsAvailable is the number of currently free
// concurrent slots and is always known.
type License struct {
	Identifier         string
	Status             LicenseStatus
	Expires            *time.Time
	CheckoutsLeft      *int
	CheckoutsAvailable int
	TermsConcurrency   *int
}

// IsPerpetual reports whether the license has neither an expiry nor a
// lifetime usage cap.
func (l License) IsPerpetual() bool {
	return l.Expires == nil && l.CheckoutsLeft == nil
}

// IsTimeLimited reports whether the license has an expiry date.
func (l License) IsTimeLimited() bool {
	return l.Expires != nil
}

// IsLoanLimited reports whether the license has a lifetime usage cap.
func (l License) IsLoanLimited() bool {
	return l.CheckoutsLeft != nil
}

// IsInactive reports whether the license can no longer back loans: it has
// expired, its lifetime usage is exhausted, or the distributor reports a
// status other than available.
func (l License) IsInactive(now time.Time) bool {
	if l.Expires != nil && !l.Expires.After(now) {
		return true
	}

	if l.CheckoutsLeft != nil && *l.CheckoutsLeft <= 0 {
		return true
	}

	return l.Status != LicenseStatusAvailable
}

// TotalRemainingLoans returns the number of loans this license can still
// contribute to the pool's owned count.
//
// The boolean is false only for an active perpetual license with unlimited
// concurrency: such a license has no meaningful total and is excluded from
// the owned sum by policy.
func (l License) TotalRemainingLoans(now time.Time) (int, bool) {
	if l.IsInactive(now) {
		return 0, true
	}

	if l.IsLoanLimited() {
		if l.TermsConcurrency != nil {
			return min(*l.CheckoutsLeft, *l.TermsConcurrency), true
		}

		return *l.CheckoutsLeft, true
	}

	if l.TermsConcurrency != nil {
		return *l.TermsConcurrency, true
	}

	return 0, false
}

// CurrentlyAvailableLoans returns the number of loans this license can back
// right now: zero for an inactive license, otherwise its free concurrent
// slots.
func (l License) CurrentlyAvailableLoans(now time.Time) int {
	if l.IsInactive(now) {
		return 0
	}

	return l.CheckoutsAvailable
}

// IsAvailableForBorrowing reports whether this license can back a new loan
// right now.
func (l License) IsAvailableForBorrowing(now time.Time) bool {
	return !l.IsInactive(now) && l.CheckoutsAvailable > 0
}

// Checkout updates the license's internal accounting when a loan is made
// against it. Calling it on an inactive license is tolerated and reported as
// a no-op via the false return value; callers are expected to log it.
//
// Callers must select licenses through LicensePool.BestAvailableLicenses
// before calling Checkout; no bounds checking beyond the inactive guard is
// performed here.
func (l *License) Checkout(now time.Time) bool {
	if l.IsInactive(now) {
		return false
	}

	if l.CheckoutsLeft != nil && *l.CheckoutsLeft > 0 {
		*l.CheckoutsLeft--
	}

	if l.CheckoutsAvailable > 0 {
		l.CheckoutsAvailable--
	}

	return true
}

// Checkin updates the license's internal accounting when a loan against it
// ends. Availability never rises above the license's concurrency ceiling, nor
// above its lifetime-remaining ceiling when loan-limited. Calling it on an
// inactive license is a no-op reported via the false return value.
func (l *License) Checkin(now time.Time) bool {
	if l.IsInactive(now) {
		return false
	}

	available := l.CheckoutsAvailable + 1
	if l.TermsConcurrency != nil {
		available = min(available, *l.TermsConcurrency)
	}

	if l.IsLoanLimited() {
		available = min(available, *l.CheckoutsLeft)
	}

	l.CheckoutsAvailable = available

	return true
}
