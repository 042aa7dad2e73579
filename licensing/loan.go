package licensing

import (
	"time"

	"github.com/google/uuid"
)

// Loans is an alias type for a slice of Loan.
type Loans = []Loan

// Loan is an active checkout of a title by a patron. At most one active loan
// exists per patron per pool.
//
// A nil End means the loan is indefinite. LicenseIdentifier is set when the
// distributor tracks individual licenses and tells us which one backs the
// loan. ExternalIdentifier is a distributor-side handle that can be used to
// check the status of this specific loan.
type Loan struct {
	PatronID           uuid.UUID
	Start              time.Time
	End                *time.Time
	LicenseIdentifier  *string
	ExternalIdentifier *string
}

// Until gives or estimates the time at which the loan will end. The boolean
// is false for a loan that lasts forever: no end date and no known default
// loan period (zero).
func (l Loan) Until(defaultLoanPeriod time.Duration) (time.Time, bool) {
	if l.End != nil {
		return *l.End, true
	}

	if defaultLoanPeriod <= 0 {
		return time.Time{}, false
	}

	return l.Start.Add(defaultLoanPeriod), true
}
