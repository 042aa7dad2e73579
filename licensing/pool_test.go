package licensing_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ejournals/license-accounting-go/licensing"
)

func Test_UpdateAvailability_SetsCountersAndStampsWatermark(t *testing.T) {
	// arrange
	pool := givenPool(licensing.Counters{})
	asOf := time.Now()

	// act
	change, changed := pool.UpdateAvailability(licensing.FullPatch(5, 3, 1, 2), asOf)

	// assert
	assert.True(t, changed)
	assert.Equal(t, licensing.Counters{Owned: 5, Available: 3, Reserved: 1, HoldQueue: 2}, pool.Counters)
	assert.Equal(t, asOf, pool.LastChecked)
	assert.Equal(t, licensing.Counters{}, change.Old)
	assert.Equal(t, pool.Counters, change.New)
	assert.Equal(t, pool.ID, change.PoolID)
}

func Test_UpdateAvailability_UnsetFieldsLeaveCountersAlone(t *testing.T) {
	// arrange
	pool := givenPool(licensing.Counters{Owned: 5, Available: 3, Reserved: 1, HoldQueue: 2})

	// act
	change, changed := pool.UpdateAvailability(
		licensing.CounterPatch{Available: licensing.SetTo(0)},
		time.Now(),
	)

	// assert
	assert.True(t, changed)
	assert.Equal(t, licensing.Counters{Owned: 5, Available: 0, Reserved: 1, HoldQueue: 2}, pool.Counters)
	assert.Equal(t, 3, change.Old.Available)
}

func Test_UpdateAvailability_UnchangedValuesStillStampTheWatermark(t *testing.T) {
	// arrange
	pool := givenPool(licensing.Counters{Owned: 5, Available: 5})
	asOf := time.Now()

	// act
	_, changed := pool.UpdateAvailability(licensing.FullPatch(5, 5, 0, 0), asOf)

	// assert - we got numbers, so this counts as a check even without movement
	assert.False(t, changed)
	assert.Equal(t, asOf, pool.LastChecked)
}

func Test_UpdateAvailability_ZeroAsOfDoesNotStampTheWatermark(t *testing.T) {
	// arrange
	pool := givenPool(licensing.Counters{Owned: 5, Available: 5})
	before := time.Now().Add(-time.Hour)
	pool.LastChecked = before

	// act
	_, changed := pool.UpdateAvailability(licensing.FullPatch(5, 4, 0, 0), time.Time{})

	// assert
	assert.True(t, changed)
	assert.Equal(t, before, pool.LastChecked)
}

func Test_UpdateAvailability_UnlimitedAccessPoolSkipsAccounting(t *testing.T) {
	// arrange
	pool := givenPool(licensing.Counters{})
	pool.UnlimitedAccess = true

	// act
	_, changed := pool.UpdateAvailability(licensing.FullPatch(5, 5, 0, 0), time.Now())

	// assert
	assert.False(t, changed)
	assert.True(t, pool.IsUnlimitedAccess())
	assert.Equal(t, licensing.Counters{}, pool.Counters)
}

func Test_ReconcileFromLicenses_DerivesCountersFromLicenseSet(t *testing.T) {
	// arrange
	now := time.Now()
	pool := givenPool(licensing.Counters{})
	pool.Licenses = licensing.Licenses{
		givenPerpetualLicense("l-1", 2, 1),
		givenTimeLimitedLicense("l-2", now.Add(24*time.Hour), 1, 1),
		givenTimeLimitedLicense("l-3", now.Add(-time.Hour), 1, 1), // expired
	}

	// act
	_, changed := pool.ReconcileFromLicenses(now, now, nil)

	// assert - expired license contributes nothing
	assert.True(t, changed)
	assert.Equal(t, licensing.Counters{Owned: 3, Available: 2}, pool.Counters)
}

func Test_ReconcileFromLicenses_QueueConsumesAvailability(t *testing.T) {
	// arrange
	now := time.Now()
	pool := givenPool(licensing.Counters{})
	pool.Licenses = licensing.Licenses{givenPerpetualLicense("l-1", 2, 2)}
	pool.Holds = licensing.Holds{
		givenWaitingHold(uuid.New(), now.Add(-3*time.Hour), 1),
		givenWaitingHold(uuid.New(), now.Add(-2*time.Hour), 2),
		givenWaitingHold(uuid.New(), now.Add(-1*time.Hour), 3),
	}

	// act
	_, changed := pool.ReconcileFromLicenses(now, now, nil)

	// assert - more patrons than copies: everything is reserved
	assert.True(t, changed)
	assert.Equal(t, licensing.Counters{Owned: 2, Available: 0, Reserved: 2, HoldQueue: 3}, pool.Counters)
}

func Test_ReconcileFromLicenses_IgnoredHoldsAreTreatedAsGone(t *testing.T) {
	// arrange
	now := time.Now()
	leaving := uuid.New()
	pool := givenPool(licensing.Counters{})
	pool.Licenses = licensing.Licenses{givenPerpetualLicense("l-1", 2, 2)}
	pool.Holds = licensing.Holds{
		givenWaitingHold(leaving, now.Add(-2*time.Hour), 1),
		givenWaitingHold(uuid.New(), now.Add(-1*time.Hour), 2),
	}

	// act
	_, changed := pool.ReconcileFromLicenses(now, now, map[uuid.UUID]struct{}{leaving: {}})

	// assert
	assert.True(t, changed)
	assert.Equal(t, licensing.Counters{Owned: 2, Available: 1, Reserved: 1, HoldQueue: 1}, pool.Counters)
}

func Test_ReconcileFromLicenses_IsIdempotent(t *testing.T) {
	// arrange
	now := time.Now()
	pool := givenPool(licensing.Counters{})
	pool.Licenses = licensing.Licenses{
		givenPerpetualLicense("l-1", 3, 2),
		givenLoanLimitedLicense("l-2", 4, 2, 1),
	}
	pool.Holds = licensing.Holds{givenWaitingHold(uuid.New(), now.Add(-time.Hour), 1)}

	// act
	_, firstChanged := pool.ReconcileFromLicenses(now, now, nil)
	afterFirst := pool.Counters
	_, secondChanged := pool.ReconcileFromLicenses(now, now, nil)

	// assert
	assert.True(t, firstChanged)
	assert.False(t, secondChanged)
	assert.Equal(t, afterFirst, pool.Counters)
}

func Test_ReconcileFromLicenses_LapsedReservationLeavesTheQueue(t *testing.T) {
	// arrange
	now := time.Now()
	pool := givenPool(licensing.Counters{})
	pool.Licenses = licensing.Licenses{givenPerpetualLicense("l-1", 1, 1)}
	pool.Holds = licensing.Holds{
		givenReadyHold(uuid.New(), now.Add(-48*time.Hour), now.Add(-time.Hour)),
	}

	// act
	pool.ReconcileFromLicenses(now, now, nil)

	// assert - the reservation window lapsed, the copy is free again
	assert.Equal(t, licensing.Counters{Owned: 1, Available: 1}, pool.Counters)
}

func Test_CheckInvariants_ClampsImpossibleStates(t *testing.T) {
	testCases := []struct {
		name     string
		counters licensing.Counters
		expected licensing.Counters
	}{
		{
			name:     "negative counters are clamped to zero",
			counters: licensing.Counters{Owned: -2, Available: -1, Reserved: -3, HoldQueue: -1},
			expected: licensing.Counters{},
		},
		{
			name:     "available never exceeds owned",
			counters: licensing.Counters{Owned: 2, Available: 5},
			expected: licensing.Counters{Owned: 2, Available: 2},
		},
		{
			name:     "consistent counters are untouched",
			counters: licensing.Counters{Owned: 5, Available: 2, Reserved: 1, HoldQueue: 4},
			expected: licensing.Counters{Owned: 5, Available: 2, Reserved: 1, HoldQueue: 4},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pool := givenPool(tc.counters)

			breached := pool.CheckInvariants()

			assert.Equal(t, tc.expected, pool.Counters)
			assert.Equal(t, tc.counters != tc.expected, breached)
		})
	}
}

func Test_CheckInvariants_NegativeDriftIsNotUnlimitedAccess(t *testing.T) {
	// arrange - a pool whose counters drifted negative, including exactly -1
	pool := givenPool(licensing.Counters{Owned: -2, Available: -1, Reserved: -3, HoldQueue: -1})

	// act
	breached := pool.CheckInvariants()

	// assert
	assert.True(t, breached)
	assert.False(t, pool.IsUnlimitedAccess())
	assert.Equal(t, licensing.Counters{}, pool.Counters)

	// and the pool keeps accepting counter writes afterwards
	_, changed := pool.UpdateAvailability(licensing.FullPatch(2, 2, 0, 0), time.Now())
	assert.True(t, changed)
}

func Test_LoanTo_CreatesLoanOnActiveCollection(t *testing.T) {
	// arrange
	pool := givenPool(licensing.Counters{Owned: 1, Available: 1})
	patronID := uuid.New()
	start := time.Now()
	end := start.Add(21 * 24 * time.Hour)

	// act
	loan, isNew, err := pool.LoanTo(patronID, start, &end, nil, nil)

	// assert
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, patronID, loan.PatronID)
	assert.Equal(t, end, *loan.End)
}

func Test_LoanTo_IsIdempotentPerPatron(t *testing.T) {
	// arrange
	pool := givenPool(licensing.Counters{Owned: 1, Available: 1})
	patronID := uuid.New()
	start := time.Now()
	licenseID := "l-1"

	_, _, err := pool.LoanTo(patronID, start, nil, nil, nil)
	require.NoError(t, err)

	// act - the second call updates the same loan instead of creating another
	loan, isNew, err := pool.LoanTo(patronID, start, nil, &licenseID, nil)

	// assert
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Len(t, pool.Loans, 1)
	assert.Equal(t, "l-1", *loan.LicenseIdentifier)
}

func Test_LoanTo_OnInactiveCollection_OnlyFetchesExistingLoans(t *testing.T) {
	// arrange
	pool := givenPool(licensing.Counters{Owned: 1, Available: 1})
	patronID := uuid.New()
	start := time.Now()

	_, _, err := pool.LoanTo(patronID, start, nil, nil, nil)
	require.NoError(t, err)

	pool.CollectionActive = false

	// act - the existing loan stays reachable
	loan, isNew, err := pool.LoanTo(patronID, start, nil, nil, nil)

	// assert
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.NotNil(t, loan)

	// act - a new patron cannot borrow against the frozen collection
	_, _, err = pool.LoanTo(uuid.New(), start, nil, nil, nil)

	// assert
	assert.ErrorIs(t, err, licensing.ErrCollectionInactive)
}

func Test_PlaceHold_PolicyChecks(t *testing.T) {
	now := time.Now()

	t.Run("holds disabled for the library", func(t *testing.T) {
		pool := givenPool(licensing.Counters{Owned: 1})

		_, _, err := pool.PlaceHold(uuid.New(), now, now, nil, nil, false)

		assert.ErrorIs(t, err, licensing.ErrHoldsNotPermitted)
	})

	t.Run("no new holds on an inactive collection", func(t *testing.T) {
		pool := givenPool(licensing.Counters{Owned: 1})
		pool.CollectionActive = false

		_, _, err := pool.PlaceHold(uuid.New(), now, now, nil, nil, true)

		assert.ErrorIs(t, err, licensing.ErrCollectionInactive)
	})

	t.Run("existing hold on an inactive collection stays updatable", func(t *testing.T) {
		pool := givenPool(licensing.Counters{Owned: 1})
		patronID := uuid.New()

		_, _, err := pool.PlaceHold(patronID, now, now, nil, ptrInt(3), true)
		require.NoError(t, err)

		pool.CollectionActive = false

		hold, isNew, err := pool.PlaceHold(patronID, now, now, nil, ptrInt(1), true)

		require.NoError(t, err)
		assert.False(t, isNew)
		assert.Equal(t, 1, *hold.Position)
	})
}

func Test_RemoveHoldAndRemoveLoan(t *testing.T) {
	// arrange
	now := time.Now()
	pool := givenPool(licensing.Counters{Owned: 1})
	patronID := uuid.New()

	_, _, err := pool.PlaceHold(patronID, now, now, nil, nil, true)
	require.NoError(t, err)
	_, _, err = pool.LoanTo(patronID, now, nil, nil, nil)
	require.NoError(t, err)

	// act + assert
	assert.True(t, pool.RemoveHold(patronID))
	assert.False(t, pool.RemoveHold(patronID))
	assert.True(t, pool.RemoveLoan(patronID))
	assert.Empty(t, pool.Holds)
	assert.Empty(t, pool.Loans)
}

func Test_NeedsUpdate(t *testing.T) {
	now := time.Now()

	t.Run("never checked pools always need an update", func(t *testing.T) {
		pool := givenPool(licensing.Counters{})

		assert.True(t, pool.NeedsUpdate(now, time.Hour))
	})

	t.Run("zero interval means never refresh once checked", func(t *testing.T) {
		pool := givenPool(licensing.Counters{})
		pool.LastChecked = now.Add(-240 * time.Hour)

		assert.False(t, pool.NeedsUpdate(now, 0))
	})

	t.Run("stale pools need a refresh", func(t *testing.T) {
		pool := givenPool(licensing.Counters{})
		pool.LastChecked = now.Add(-2 * time.Hour)

		assert.True(t, pool.NeedsUpdate(now, time.Hour))
		assert.False(t, pool.NeedsUpdate(now, 3*time.Hour))
	})
}
