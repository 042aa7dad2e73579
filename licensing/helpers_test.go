package licensing_test

import (
	"time"

	"github.com/google/uuid"

	"github.com/ejournals/license-accounting-go/licensing"
)

func ptrInt(v int) *int {
	return &v
}

func ptrTime(t time.Time) *time.Time {
	return &t
}

func givenPerpetualLicense(id string, concurrency int, available int) licensing.License {
	return licensing.License{
		Identifier:         id,
		Status:             licensing.LicenseStatusAvailable,
		CheckoutsAvailable: available,
		TermsConcurrency:   ptrInt(concurrency),
	}
}

func givenTimeLimitedLicense(id string, expires time.Time, concurrency int, available int) licensing.License {
	return licensing.License{
		Identifier:         id,
		Status:             licensing.LicenseStatusAvailable,
		Expires:            ptrTime(expires),
		CheckoutsAvailable: available,
		TermsConcurrency:   ptrInt(concurrency),
	}
}

func givenLoanLimitedLicense(id string, checkoutsLeft int, concurrency int, available int) licensing.License {
	return licensing.License{
		Identifier:         id,
		Status:             licensing.LicenseStatusAvailable,
		CheckoutsLeft:      ptrInt(checkoutsLeft),
		CheckoutsAvailable: available,
		TermsConcurrency:   ptrInt(concurrency),
	}
}

func givenPool(counters licensing.Counters) *licensing.LicensePool {
	return &licensing.LicensePool{
		ID:               uuid.New(),
		CollectionID:     uuid.New(),
		Identifier:       "urn:isbn:978-1-098-10013-1",
		CollectionActive: true,
		Counters:         counters,
	}
}

func givenWaitingHold(patronID uuid.UUID, start time.Time, position int) licensing.Hold {
	return licensing.Hold{
		PatronID: patronID,
		Start:    start,
		Position: ptrInt(position),
	}
}

func givenReadyHold(patronID uuid.UUID, start time.Time, end time.Time) licensing.Hold {
	return licensing.Hold{
		PatronID: patronID,
		Start:    start,
		End:      ptrTime(end),
		Position: ptrInt(0),
	}
}
