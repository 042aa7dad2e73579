package poolstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ejournals/license-accounting-go/licensing"
)

// InMemory is a PoolStore double backed by maps. It honors the guarded
// counter write contract: SaveCounters fails with
// licensing.ErrConcurrencyConflict when the version token is stale, and
// conflicts can additionally be forced to exercise retry paths.
type InMemory struct {
	mu              sync.Mutex
	records         map[uuid.UUID]*poolRecord
	byKey           map[poolKey]uuid.UUID
	forcedConflicts int
}

type poolKey struct {
	collectionID uuid.UUID
	identifier   string
}

type poolRecord struct {
	pool    licensing.LicensePool
	version licensing.PoolVersion
}

// NewInMemory creates an empty in-memory pool store.
func NewInMemory() *InMemory {
	return &InMemory{
		records: make(map[uuid.UUID]*poolRecord),
		byKey:   make(map[poolKey]uuid.UUID),
	}
}

// ErrPoolNotFound mirrors the not-found error of the PostgreSQL store.
var ErrPoolNotFound = errors.New("license pool not found")

// ForceConflicts makes the next n SaveCounters calls fail with
// licensing.ErrConcurrencyConflict regardless of version.
func (s *InMemory) ForceConflicts(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.forcedConflicts = n
}

// Version returns the current version token of a pool.
func (s *InMemory) Version(poolID uuid.UUID) licensing.PoolVersion {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record, ok := s.records[poolID]; ok {
		return record.version
	}

	return 0
}

// InsertPool stores a new pool at version zero.
func (s *InMemory) InsertPool(_ context.Context, pool *licensing.LicensePool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[pool.ID] = &poolRecord{pool: clonePool(pool)}
	s.byKey[poolKey{collectionID: pool.CollectionID, identifier: pool.Identifier}] = pool.ID

	return nil
}

// LoadPool returns a deep copy of the pool and its version token.
func (s *InMemory) LoadPool(_ context.Context, collectionID uuid.UUID, identifier string) (
	*licensing.LicensePool,
	licensing.PoolVersion,
	error,
) {

	s.mu.Lock()
	defer s.mu.Unlock()

	poolID, ok := s.byKey[poolKey{collectionID: collectionID, identifier: identifier}]
	if !ok {
		return nil, 0, ErrPoolNotFound
	}

	record := s.records[poolID]
	pool := clonePool(&record.pool)

	return &pool, record.version, nil
}

// SaveCounters applies the pool's counters under the optimistic guard and
// bumps the version on success.
func (s *InMemory) SaveCounters(_ context.Context, pool *licensing.LicensePool, expectedVersion licensing.PoolVersion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.forcedConflicts > 0 {
		s.forcedConflicts--
		return licensing.ErrConcurrencyConflict
	}

	record, ok := s.records[pool.ID]
	if !ok {
		return ErrPoolNotFound
	}

	if record.version != expectedVersion {
		return licensing.ErrConcurrencyConflict
	}

	record.pool.CollectionActive = pool.CollectionActive
	record.pool.UnlimitedAccess = pool.UnlimitedAccess
	record.pool.Counters = pool.Counters
	record.pool.LastChecked = pool.LastChecked
	record.version++

	return nil
}

// ReplaceLicenses swaps the pool's license records.
func (s *InMemory) ReplaceLicenses(_ context.Context, poolID uuid.UUID, licenses licensing.Licenses) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[poolID]
	if !ok {
		return ErrPoolNotFound
	}

	record.pool.Licenses = make(licensing.Licenses, len(licenses))
	for i, license := range licenses {
		record.pool.Licenses[i] = cloneLicense(license)
	}

	return nil
}

// SaveHold inserts or updates the patron's hold.
func (s *InMemory) SaveHold(_ context.Context, poolID uuid.UUID, hold licensing.Hold) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[poolID]
	if !ok {
		return ErrPoolNotFound
	}

	for i := range record.pool.Holds {
		if record.pool.Holds[i].PatronID == hold.PatronID {
			record.pool.Holds[i] = cloneHold(hold)
			return nil
		}
	}

	record.pool.Holds = append(record.pool.Holds, cloneHold(hold))

	return nil
}

// DeleteHold removes the patron's hold, if present.
func (s *InMemory) DeleteHold(_ context.Context, poolID uuid.UUID, patronID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[poolID]
	if !ok {
		return ErrPoolNotFound
	}

	record.pool.RemoveHold(patronID)

	return nil
}

// SaveLoan inserts or updates the patron's loan.
func (s *InMemory) SaveLoan(_ context.Context, poolID uuid.UUID, loan licensing.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[poolID]
	if !ok {
		return ErrPoolNotFound
	}

	for i := range record.pool.Loans {
		if record.pool.Loans[i].PatronID == loan.PatronID {
			record.pool.Loans[i] = cloneLoan(loan)
			return nil
		}
	}

	record.pool.Loans = append(record.pool.Loans, cloneLoan(loan))

	return nil
}

// DeleteLoan removes the patron's loan, if present.
func (s *InMemory) DeleteLoan(_ context.Context, poolID uuid.UUID, patronID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[poolID]
	if !ok {
		return ErrPoolNotFound
	}

	record.pool.RemoveLoan(patronID)

	return nil
}

// clonePool deep-copies the pool including the pointer fields of its child
// records, so a loaded pool never aliases stored state. Without this a
// caller mutating a loaded license through a pointer field would write into
// the store before SaveCounters commits, and a retried operation would apply
// the mutation twice.
func clonePool(pool *licensing.LicensePool) licensing.LicensePool {
	clone := *pool

	clone.Licenses = make(licensing.Licenses, len(pool.Licenses))
	for i, license := range pool.Licenses {
		clone.Licenses[i] = cloneLicense(license)
	}

	clone.Holds = make(licensing.Holds, len(pool.Holds))
	for i, hold := range pool.Holds {
		clone.Holds[i] = cloneHold(hold)
	}

	clone.Loans = make(licensing.Loans, len(pool.Loans))
	for i, loan := range pool.Loans {
		clone.Loans[i] = cloneLoan(loan)
	}

	return clone
}

func cloneLicense(license licensing.License) licensing.License {
	license.Expires = clonedTimePtr(license.Expires)
	license.CheckoutsLeft = clonedIntPtr(license.CheckoutsLeft)
	license.TermsConcurrency = clonedIntPtr(license.TermsConcurrency)

	return license
}

func cloneHold(hold licensing.Hold) licensing.Hold {
	hold.End = clonedTimePtr(hold.End)
	hold.Position = clonedIntPtr(hold.Position)

	return hold
}

func cloneLoan(loan licensing.Loan) licensing.Loan {
	loan.End = clonedTimePtr(loan.End)
	loan.LicenseIdentifier = clonedStringPtr(loan.LicenseIdentifier)
	loan.ExternalIdentifier = clonedStringPtr(loan.ExternalIdentifier)

	return loan
}

func clonedTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	value := *t

	return &value
}

func clonedIntPtr(i *int) *int {
	if i == nil {
		return nil
	}

	value := *i

	return &value
}

func clonedStringPtr(s *string) *string {
	if s == nil {
		return nil
	}

	value := *s

	return &value
}
