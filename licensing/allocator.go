package licensing

import (
	"sort"
	"time"
)

// licensePriority orders the allocator's primary buckets. Licenses limited on
// both axes are the riskiest to hoard and are spent first; any license with a
// hard expiry is consumed before one without, so non-expiring capacity is
// preserved as long as possible.
type licensePriority int

const (
	priorityTimeAndLoanLimited licensePriority = iota
	priorityTimeLimited
	priorityPerpetual
	priorityLoanLimited
)

func priorityFor(license License) licensePriority {
	switch {
	case license.IsTimeLimited() && license.IsLoanLimited():
		return priorityTimeAndLoanLimited

	case license.IsTimeLimited():
		return priorityTimeLimited

	case license.IsLoanLimited():
		return priorityLoanLimited

	default:
		return priorityPerpetual
	}
}

// expiryKey orders time-limited licenses soonest-expiring first.
func expiryKey(license License) int64 {
	if license.Expires == nil {
		return 0
	}

	return license.Expires.Unix()
}

// loanLimitedKey orders loan-limited licenses by descending remaining
// checkouts, spreading depletion evenly to maximize future concurrent
// availability.
func loanLimitedKey(license License) int {
	if license.CheckoutsLeft == nil {
		return 0
	}

	return -*license.CheckoutsLeft
}

// BestAvailableLicenses returns the licenses currently eligible to back the
// next checkout, highest priority first. Eligibility means active with at
// least one free concurrent slot.
//
// Callers take the first element, attach it to the new loan, and invoke
// License.Checkout on it. The function is pure: repeated calls over the same
// license set return the same order.
func (p *LicensePool) BestAvailableLicenses(now time.Time) []*License {
	eligible := make([]*License, 0, len(p.Licenses))

	for i := range p.Licenses {
		if p.Licenses[i].IsAvailableForBorrowing(now) {
			eligible = append(eligible, &p.Licenses[i])
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		left, right := *eligible[i], *eligible[j]

		if pl, pr := priorityFor(left), priorityFor(right); pl != pr {
			return pl < pr
		}

		if el, er := expiryKey(left), expiryKey(right); el != er {
			return el < er
		}

		return loanLimitedKey(left) < loanLimitedKey(right)
	})

	return eligible
}
