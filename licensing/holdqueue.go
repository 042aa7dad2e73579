package licensing

import (
	"sort"
	"time"
)

// ActiveHolds returns the holds that still occupy a place in the queue,
// waiting patrons plus patrons whose reservation window has not lapsed,
// ordered by the time the hold was placed.
func (p *LicensePool) ActiveHolds(now time.Time) Holds {
	active := make(Holds, 0, len(p.Holds))

	for _, hold := range p.Holds {
		if hold.IsActive(now) {
			active = append(active, hold)
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Start.Before(active[j].Start)
	})

	return active
}

// RecalculateHoldQueue rewrites hold positions after availability changed:
// the first Counters.Reserved active holds (by start time) get position 0 and
// a fresh reservation window, the rest get their 1-based position within the
// waiting segment.
//
// Holds whose reservation was already in progress keep their end date so an
// earlier notification is not silently extended. The returned holds are the
// ones whose position or window actually moved; callers persist exactly
// those. Reads feeding this method must be taken under a locking read so two
// workers cannot promote different patrons into the same freed slot.
func (p *LicensePool) RecalculateHoldQueue(now time.Time, reservationPeriod time.Duration) Holds {
	if p.IsUnlimitedAccess() {
		return nil
	}

	active := p.ActiveHolds(now)
	changed := make(Holds, 0, len(active))

	for i, hold := range active {
		target := p.FindHold(hold.PatronID)
		if target == nil {
			continue
		}

		var newPosition int
		var newEnd *time.Time

		if i < p.Counters.Reserved {
			newPosition = 0
			if target.Position != nil && *target.Position == 0 && target.End != nil {
				newEnd = target.End
			} else {
				end := now.Add(reservationPeriod)
				newEnd = &end
			}
		} else {
			// Waiting positions restart behind the reserved segment.
			newPosition = i - p.Counters.Reserved + 1
			newEnd = nil
		}

		positionMoved := target.Position == nil || *target.Position != newPosition
		endMoved := !equalTimePtr(target.End, newEnd)

		if positionMoved || endMoved {
			position := newPosition
			target.Position = &position
			target.End = newEnd
			changed = append(changed, *target)
		}
	}

	return changed
}

func equalTimePtr(a *time.Time, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}

	return a.Equal(*b)
}
