package licensing

import (
	"time"

	"github.com/google/uuid"
)

// Holds is an alias type for a slice of Hold.
type Holds = []Hold

// Hold is a patron's place in line waiting for a copy of a title.
//
// Position 0 means the copy is reserved for the patron right now; End is then
// the moment the reservation lapses. A nil Position means the distributor has
// not told us where in line the patron is.
type Hold struct {
	PatronID uuid.UUID
	Start    time.Time
	End      *time.Time
	Position *int
}

// IsActive reports whether the hold still occupies a place in the queue:
// the patron is waiting (nonzero or unknown position), or the copy is
// reserved for them and the reservation window has not lapsed.
func (h Hold) IsActive(now time.Time) bool {
	if h.Position == nil || *h.Position != 0 {
		return true
	}

	return h.End != nil && h.End.After(now)
}

// IsReady reports whether the patron can check the title out right now:
// position 0 with an unlapsed (or distributor-unset) reservation window.
func (h Hold) IsReady(now time.Time) bool {
	if h.Position == nil || *h.Position != 0 {
		return false
	}

	return h.End == nil || h.End.After(now)
}

// Update applies distributor-reported queue movement to the hold. Nil
// parameters leave the corresponding field unchanged. When the title becomes
// available, position will be 0 and end the time at which the patron loses
// their reservation; while waiting, end is irrelevant.
func (h *Hold) Update(start *time.Time, end *time.Time, position *int) {
	if start != nil {
		h.Start = *start
	}

	if end != nil {
		h.End = end
	}

	if position != nil {
		h.Position = position
	}
}

// Until estimates the time at which the title will be available to this
// patron, given the pool's total license count. The estimate is a worst case:
// every patron ahead in line waits out their full reservation window and then
// keeps the title for the full loan period.
//
// The boolean is false when no estimate is possible: the pool owns no
// licenses, or either period is unknown (zero).
func (h Hold) Until(
	now time.Time,
	totalLicenses int,
	defaultLoanPeriod time.Duration,
	defaultReservationPeriod time.Duration,
) (time.Time, bool) {

	if h.End != nil && h.End.After(now) {
		// The license source provided its own estimate and it is not
		// obviously wrong, so use it.
		return *h.End, true
	}

	if defaultLoanPeriod <= 0 || defaultReservationPeriod <= 0 {
		return time.Time{}, false
	}

	position := 0
	if h.Position != nil {
		position = *h.Position
	}

	return calculateHoldUntil(now, position, totalLicenses, defaultLoanPeriod, defaultReservationPeriod)
}

// calculateHoldUntil estimates the end of the wait for a given queue position.
//
// The licenses have to cycle a certain number of times before the patron gets
// a turn. Example with 4 licenses and queue position 21:
//
//	after 1 cycle: position 17
//	      2      : position 13
//	      3      : position 9
//	      4      : position 5
//	      5      : position 1
//	      6      : available
//
// The worst-case cycle time is the loan period plus the reservation period.
func calculateHoldUntil(
	start time.Time,
	queuePosition int,
	totalLicenses int,
	defaultLoanPeriod time.Duration,
	defaultReservationPeriod time.Duration,
) (time.Time, bool) {

	if queuePosition == 0 {
		// The title is reserved for this patron; they need to hurry up and
		// check it out.
		return start.Add(defaultReservationPeriod), true
	}

	if totalLicenses == 0 {
		// The title will never be available.
		return time.Time{}, false
	}

	cyclePeriod := defaultReservationPeriod + defaultLoanPeriod

	cycles := 1
	if queuePosition > totalLicenses {
		cycles += queuePosition / totalLicenses
		if totalLicenses > 1 && queuePosition%totalLicenses == 0 {
			cycles--
		}
	}

	return start.Add(time.Duration(cycles) * cyclePeriod), true
}
