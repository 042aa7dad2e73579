package licensing

import (
	"time"
)

// DeltaType identifies the kind of incremental circulation signal a
// distributor reported.
type DeltaType string

const (
	// DeltaHoldPlace reports patrons joining the hold queue.
	DeltaHoldPlace DeltaType = "distributor_hold_place"

	// DeltaHoldRelease reports patrons leaving the hold queue.
	DeltaHoldRelease DeltaType = "distributor_hold_release"

	// DeltaCheckin reports copies coming back from loans.
	DeltaCheckin DeltaType = "distributor_checkin"

	// DeltaCheckout reports copies going out on loan.
	DeltaCheckout DeltaType = "distributor_checkout"

	// DeltaLicenseAdd reports licenses added to the pool.
	DeltaLicenseAdd DeltaType = "distributor_license_add"

	// DeltaLicenseRemove reports licenses removed from the pool.
	DeltaLicenseRemove DeltaType = "distributor_license_remove"

	// DeltaAvailabilityNotify reports queued patrons being notified that a
	// reserved copy is waiting for them.
	DeltaAvailabilityNotify DeltaType = "distributor_availability_notify"
)

// DeltaEvent is one incremental circulation signal: something changed by
// Delta at EventDate. A zero EventDate means the distributor did not say when
// the change happened.
type DeltaEvent struct {
	Type      DeltaType
	EventDate time.Time
	Delta     int
}

// Reasons reported by DeltaDropReason, used as the ignore_reason metric label.
const (
	DropReasonOutOfOrder = "out_of_order"
	DropReasonUndated    = "undated"
)

// DeltaDropReason reports whether ApplyDelta would drop the event without
// applying it, and why.
func (p *LicensePool) DeltaDropReason(event DeltaEvent) (string, bool) {
	if p.LastChecked.IsZero() {
		return "", false
	}

	if !event.EventDate.IsZero() && event.EventDate.Before(p.LastChecked) {
		// An old event; its effect on availability has already been taken
		// into account.
		return DropReasonOutOfOrder, true
	}

	if event.EventDate.IsZero() {
		// We have a history for this pool and no idea where this event fits
		// into it.
		return DropReasonUndated, true
	}

	return "", false
}

// ApplyDelta folds a single delta event into the pool's counters.
//
// Events must arrive in nondecreasing event-time order relative to the
// pool's LastChecked watermark. This method is the safety net for importers
// that cannot fully guarantee that order:
//
//   - an event dated strictly before LastChecked is dropped, its effect is
//     already reflected;
//   - an event without a date is dropped whenever a watermark exists, because
//     it cannot be ordered safely.
//
// An applied event advances LastChecked to its date. The result is committed
// through UpdateAvailability, so change recording works the same as for
// snapshot reconciliation. The boolean is false when the event was dropped
// or moved nothing.
func (p *LicensePool) ApplyDelta(event DeltaEvent) (CounterChange, bool) {
	if _, dropped := p.DeltaDropReason(event); dropped {
		return CounterChange{}, false
	}

	next := NextCounters(p.Counters, event)

	return p.UpdateAvailability(
		FullPatch(next.Owned, next.Available, next.Reserved, next.HoldQueue),
		event.EventDate,
	)
}

// NextCounters is the pure transition function from one delta event to the
// next counter state. It never produces a negative counter, and it distrusts
// the delta over the ownership ceiling: the result never reports more copies
// available than owned.
func NextCounters(current Counters, event DeltaEvent) Counters {
	next := current
	delta := event.Delta

	deduct := func(value int) int {
		return max(value-delta, 0)
	}

	switch event.Type {
	case DeltaHoldPlace:
		next.HoldQueue += delta
		if next.Available > 0 {
			// If someone placed a hold, the title must not actually have
			// been available.
			next.Available = 0
		}

	case DeltaHoldRelease:
		next.HoldQueue = deduct(next.HoldQueue)

	case DeltaCheckin:
		if current.HoldQueue == 0 {
			next.Available += delta
		} else if delta > next.HoldQueue {
			// Checked-in copies beyond what the queue needs become generally
			// available. The queue itself does not shrink here; that happens
			// when availability-notify events come through.
			next.Available += delta - next.HoldQueue
		}

	case DeltaCheckout:
		if next.Available == 0 {
			// The only way to borrow with nothing available is to take a
			// reserved copy.
			next.Reserved = deduct(next.Reserved)
		} else {
			next.Available = deduct(next.Available)
		}

	case DeltaLicenseAdd:
		next.Owned += delta
		// New licenses start out available unless patrons are queued for them.
		if next.HoldQueue == 0 {
			next.Available += delta
		}

	case DeltaLicenseRemove:
		next.Owned = deduct(next.Owned)
		// Whether the removed licenses were available or already checked out
		// is ambiguous, so availability is left alone and the ceiling clamp
		// below settles it.

	case DeltaAvailabilityNotify:
		next.HoldQueue = deduct(next.HoldQueue)
		next.Reserved += delta
	}

	if next.Owned < next.Available {
		// Either we own licenses we never heard about, or some expired
		// without notice. The latter is more likely.
		next.Available = next.Owned
	}

	return next
}
