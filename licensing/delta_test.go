package licensing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ejournals/license-accounting-go/licensing"
)

func Test_ApplyDelta_AppliesInOrderEventAndAdvancesWatermark(t *testing.T) {
	// arrange
	watermark := time.Now().Add(-time.Hour)
	pool := givenPool(licensing.Counters{Owned: 5, Available: 3})
	pool.LastChecked = watermark
	eventDate := watermark.Add(30 * time.Minute)

	// act
	change, applied := pool.ApplyDelta(licensing.DeltaEvent{
		Type:      licensing.DeltaCheckout,
		EventDate: eventDate,
		Delta:     2,
	})

	// assert
	assert.True(t, applied)
	assert.Equal(t, licensing.Counters{Owned: 5, Available: 1}, pool.Counters)
	assert.Equal(t, eventDate, pool.LastChecked)
	assert.Equal(t, 3, change.Old.Available)
	assert.Equal(t, 1, change.New.Available)
}

func Test_ApplyDelta_DropsEventsDatedBeforeTheWatermark(t *testing.T) {
	// arrange
	watermark := time.Now()
	pool := givenPool(licensing.Counters{Owned: 5, Available: 3})
	pool.LastChecked = watermark

	// act
	_, applied := pool.ApplyDelta(licensing.DeltaEvent{
		Type:      licensing.DeltaCheckout,
		EventDate: watermark.Add(-time.Minute),
		Delta:     1,
	})

	// assert - the snapshot behind the watermark already reflects this event
	assert.False(t, applied)
	assert.Equal(t, licensing.Counters{Owned: 5, Available: 3}, pool.Counters)
	assert.Equal(t, watermark, pool.LastChecked)
}

func Test_ApplyDelta_DropsUndatedEventsOncePoolHasHistory(t *testing.T) {
	// arrange
	watermark := time.Now()
	pool := givenPool(licensing.Counters{Owned: 5, Available: 3})
	pool.LastChecked = watermark

	// act
	_, applied := pool.ApplyDelta(licensing.DeltaEvent{
		Type:  licensing.DeltaCheckout,
		Delta: 1,
	})

	// assert
	assert.False(t, applied)
	assert.Equal(t, licensing.Counters{Owned: 5, Available: 3}, pool.Counters)
}

func Test_ApplyDelta_UndatedEventOnNeverCheckedPoolApplies(t *testing.T) {
	// arrange - no watermark yet, so there is no order to violate
	pool := givenPool(licensing.Counters{Owned: 5, Available: 3})

	// act
	_, applied := pool.ApplyDelta(licensing.DeltaEvent{
		Type:  licensing.DeltaCheckout,
		Delta: 1,
	})

	// assert - applied, but the watermark stays unset
	assert.True(t, applied)
	assert.Equal(t, licensing.Counters{Owned: 5, Available: 2}, pool.Counters)
	assert.True(t, pool.LastChecked.IsZero())
}

func Test_NextCounters_TransitionTable(t *testing.T) {
	testCases := []struct {
		name     string
		current  licensing.Counters
		event    licensing.DeltaEvent
		expected licensing.Counters
	}{
		{
			name:     "hold place grows the queue",
			current:  licensing.Counters{Owned: 2, HoldQueue: 1},
			event:    licensing.DeltaEvent{Type: licensing.DeltaHoldPlace, Delta: 2},
			expected: licensing.Counters{Owned: 2, HoldQueue: 3},
		},
		{
			name:     "hold place zeroes stale availability",
			current:  licensing.Counters{Owned: 2, Available: 2},
			event:    licensing.DeltaEvent{Type: licensing.DeltaHoldPlace, Delta: 1},
			expected: licensing.Counters{Owned: 2, HoldQueue: 1},
		},
		{
			name:     "hold release shrinks the queue",
			current:  licensing.Counters{Owned: 2, HoldQueue: 3},
			event:    licensing.DeltaEvent{Type: licensing.DeltaHoldRelease, Delta: 2},
			expected: licensing.Counters{Owned: 2, HoldQueue: 1},
		},
		{
			name:     "hold release never drives the queue negative",
			current:  licensing.Counters{Owned: 2, HoldQueue: 1},
			event:    licensing.DeltaEvent{Type: licensing.DeltaHoldRelease, Delta: 5},
			expected: licensing.Counters{Owned: 2},
		},
		{
			name:     "checkin with an empty queue frees copies",
			current:  licensing.Counters{Owned: 3, Available: 1},
			event:    licensing.DeltaEvent{Type: licensing.DeltaCheckin, Delta: 2},
			expected: licensing.Counters{Owned: 3, Available: 3},
		},
		{
			name:     "checkin with a queue feeds the queue first",
			current:  licensing.Counters{Owned: 3, HoldQueue: 2},
			event:    licensing.DeltaEvent{Type: licensing.DeltaCheckin, Delta: 1},
			expected: licensing.Counters{Owned: 3, HoldQueue: 2},
		},
		{
			name:     "checkin beyond the queue spills into availability",
			current:  licensing.Counters{Owned: 5, HoldQueue: 2},
			event:    licensing.DeltaEvent{Type: licensing.DeltaCheckin, Delta: 3},
			expected: licensing.Counters{Owned: 5, Available: 1, HoldQueue: 2},
		},
		{
			name:     "checkout consumes availability",
			current:  licensing.Counters{Owned: 3, Available: 2},
			event:    licensing.DeltaEvent{Type: licensing.DeltaCheckout, Delta: 1},
			expected: licensing.Counters{Owned: 3, Available: 1},
		},
		{
			name:     "checkout with nothing available consumes a reservation",
			current:  licensing.Counters{Owned: 3, Reserved: 2},
			event:    licensing.DeltaEvent{Type: licensing.DeltaCheckout, Delta: 1},
			expected: licensing.Counters{Owned: 3, Reserved: 1},
		},
		{
			name:     "checkout never drives counters negative",
			current:  licensing.Counters{Owned: 3},
			event:    licensing.DeltaEvent{Type: licensing.DeltaCheckout, Delta: 4},
			expected: licensing.Counters{Owned: 3},
		},
		{
			name:     "license add with no queue is immediately available",
			current:  licensing.Counters{Owned: 2, Available: 1},
			event:    licensing.DeltaEvent{Type: licensing.DeltaLicenseAdd, Delta: 2},
			expected: licensing.Counters{Owned: 4, Available: 3},
		},
		{
			name:     "license add with a queue is not available",
			current:  licensing.Counters{Owned: 2, HoldQueue: 3},
			event:    licensing.DeltaEvent{Type: licensing.DeltaLicenseAdd, Delta: 2},
			expected: licensing.Counters{Owned: 4, HoldQueue: 3},
		},
		{
			name:     "license remove drops ownership and clamps availability",
			current:  licensing.Counters{Owned: 4, Available: 4},
			event:    licensing.DeltaEvent{Type: licensing.DeltaLicenseRemove, Delta: 3},
			expected: licensing.Counters{Owned: 1, Available: 1},
		},
		{
			name:     "availability notify moves queued patrons to reserved",
			current:  licensing.Counters{Owned: 3, HoldQueue: 3},
			event:    licensing.DeltaEvent{Type: licensing.DeltaAvailabilityNotify, Delta: 2},
			expected: licensing.Counters{Owned: 3, Reserved: 2, HoldQueue: 1},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			next := licensing.NextCounters(tc.current, tc.event)

			assert.Equal(t, tc.expected, next)
		})
	}
}

func Test_NextCounters_NeverReportsMoreAvailableThanOwned(t *testing.T) {
	types := []licensing.DeltaType{
		licensing.DeltaHoldPlace, licensing.DeltaHoldRelease,
		licensing.DeltaCheckin, licensing.DeltaCheckout,
		licensing.DeltaLicenseAdd, licensing.DeltaLicenseRemove,
		licensing.DeltaAvailabilityNotify,
	}

	for _, deltaType := range types {
		for owned := 0; owned <= 3; owned++ {
			for available := 0; available <= owned; available++ {
				for delta := 0; delta <= 4; delta++ {
					current := licensing.Counters{Owned: owned, Available: available, Reserved: 1, HoldQueue: 2}

					next := licensing.NextCounters(current, licensing.DeltaEvent{Type: deltaType, Delta: delta})

					assert.LessOrEqual(t, next.Available, next.Owned,
						"type=%s owned=%d available=%d delta=%d", deltaType, owned, available, delta)
					assert.GreaterOrEqual(t, next.Owned, 0)
					assert.GreaterOrEqual(t, next.Available, 0)
					assert.GreaterOrEqual(t, next.Reserved, 0)
					assert.GreaterOrEqual(t, next.HoldQueue, 0)
				}
			}
		}
	}
}

// A copy comes back for a queued patron, the patron is notified, and the
// patron borrows the reserved copy.
func Test_ApplyDelta_ReservationLifecycle(t *testing.T) {
	// arrange
	start := time.Now().Add(-time.Hour)
	pool := givenPool(licensing.Counters{Owned: 1, HoldQueue: 1})
	pool.LastChecked = start

	// act + assert
	_, applied := pool.ApplyDelta(licensing.DeltaEvent{
		Type: licensing.DeltaCheckin, EventDate: start.Add(time.Minute), Delta: 1,
	})
	assert.False(t, applied) // the copy waits for the queue, nothing moves yet
	assert.Equal(t, licensing.Counters{Owned: 1, HoldQueue: 1}, pool.Counters)

	_, applied = pool.ApplyDelta(licensing.DeltaEvent{
		Type: licensing.DeltaAvailabilityNotify, EventDate: start.Add(2 * time.Minute), Delta: 1,
	})
	assert.True(t, applied)
	assert.Equal(t, licensing.Counters{Owned: 1, Reserved: 1}, pool.Counters)

	_, applied = pool.ApplyDelta(licensing.DeltaEvent{
		Type: licensing.DeltaCheckout, EventDate: start.Add(3 * time.Minute), Delta: 1,
	})
	assert.True(t, applied)
	assert.Equal(t, licensing.Counters{Owned: 1}, pool.Counters)
}
