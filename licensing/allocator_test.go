package licensing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ejournals/license-accounting-go/licensing"
)

func Test_BestAvailableLicenses_OrdersByRiskOfWaste(t *testing.T) {
	// arrange
	now := time.Now()
	soon := now.Add(24 * time.Hour)
	later := now.Add(30 * 24 * time.Hour)

	perpetual := givenPerpetualLicense("perpetual", 1, 1)
	timeLimited := givenTimeLimitedLicense("time-limited", later, 1, 1)
	loanLimited := givenLoanLimitedLicense("loan-limited", 10, 1, 1)
	timeAndLoanLimited := givenLoanLimitedLicense("time-and-loan-limited", 10, 1, 1)
	timeAndLoanLimited.Expires = ptrTime(soon)

	pool := givenPool(licensing.Counters{Owned: 4, Available: 4})
	pool.Licenses = licensing.Licenses{perpetual, loanLimited, timeLimited, timeAndLoanLimited}

	// act
	best := pool.BestAvailableLicenses(now)

	// assert - expiring capacity is spent before capacity that keeps
	require.Len(t, best, 4)
	assert.Equal(t, "time-and-loan-limited", best[0].Identifier)
	assert.Equal(t, "time-limited", best[1].Identifier)
	assert.Equal(t, "perpetual", best[2].Identifier)
	assert.Equal(t, "loan-limited", best[3].Identifier)
}

func Test_BestAvailableLicenses_SoonestExpiryGoesFirst(t *testing.T) {
	// arrange
	now := time.Now()
	pool := givenPool(licensing.Counters{Owned: 2, Available: 2})
	pool.Licenses = licensing.Licenses{
		givenTimeLimitedLicense("expires-later", now.Add(60*24*time.Hour), 1, 1),
		givenTimeLimitedLicense("expires-soon", now.Add(7*24*time.Hour), 1, 1),
	}

	// act
	best := pool.BestAvailableLicenses(now)

	// assert
	require.Len(t, best, 2)
	assert.Equal(t, "expires-soon", best[0].Identifier)
	assert.Equal(t, "expires-later", best[1].Identifier)
}

func Test_BestAvailableLicenses_LoanLimitedDepletionIsSpreadEvenly(t *testing.T) {
	// arrange
	now := time.Now()
	pool := givenPool(licensing.Counters{Owned: 3, Available: 3})
	pool.Licenses = licensing.Licenses{
		givenLoanLimitedLicense("almost-spent", 2, 1, 1),
		givenLoanLimitedLicense("fresh", 50, 1, 1),
		givenLoanLimitedLicense("half-spent", 25, 1, 1),
	}

	// act
	best := pool.BestAvailableLicenses(now)

	// assert - the license with the most checkouts left is drawn down first
	require.Len(t, best, 3)
	assert.Equal(t, "fresh", best[0].Identifier)
	assert.Equal(t, "half-spent", best[1].Identifier)
	assert.Equal(t, "almost-spent", best[2].Identifier)
}

func Test_BestAvailableLicenses_SkipsIneligibleLicenses(t *testing.T) {
	// arrange
	now := time.Now()

	expired := givenTimeLimitedLicense("expired", now.Add(-time.Hour), 1, 1)
	spent := givenLoanLimitedLicense("spent", 0, 1, 1)
	busy := givenPerpetualLicense("busy", 2, 0)
	revoked := givenPerpetualLicense("revoked", 1, 1)
	revoked.Status = licensing.LicenseStatusRevoked
	usable := givenPerpetualLicense("usable", 1, 1)

	pool := givenPool(licensing.Counters{Owned: 1, Available: 1})
	pool.Licenses = licensing.Licenses{expired, spent, busy, revoked, usable}

	// act
	best := pool.BestAvailableLicenses(now)

	// assert
	require.Len(t, best, 1)
	assert.Equal(t, "usable", best[0].Identifier)
}

func Test_BestAvailableLicenses_IsDeterministic(t *testing.T) {
	// arrange
	now := time.Now()
	pool := givenPool(licensing.Counters{Owned: 4, Available: 4})
	pool.Licenses = licensing.Licenses{
		givenPerpetualLicense("p-1", 1, 1),
		givenTimeLimitedLicense("t-1", now.Add(24*time.Hour), 1, 1),
		givenLoanLimitedLicense("l-1", 5, 1, 1),
		givenPerpetualLicense("p-2", 1, 1),
	}

	// act
	first := pool.BestAvailableLicenses(now)
	second := pool.BestAvailableLicenses(now)

	// assert
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Identifier, second[i].Identifier)
	}
}

func Test_BestAvailableLicenses_ReturnsPointersIntoThePool(t *testing.T) {
	// arrange
	now := time.Now()
	pool := givenPool(licensing.Counters{Owned: 1, Available: 1})
	pool.Licenses = licensing.Licenses{givenPerpetualLicense("l-1", 1, 1)}

	best := pool.BestAvailableLicenses(now)
	require.Len(t, best, 1)

	// act - checking out through the returned pointer mutates the pool
	assert.True(t, best[0].Checkout(now))

	// assert
	assert.Equal(t, 0, pool.Licenses[0].CheckoutsAvailable)
}
