package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/ejournals/license-accounting-go/licensing"
	"github.com/ejournals/license-accounting-go/licensing/postgresengine/internal/adapters"
)

const (
	defaultPoolTableName    = "license_pools"
	defaultLicenseTableName = "licenses"
	defaultHoldTableName    = "holds"
	defaultLoanTableName    = "loans"

	logMsgBuildQueryFailed    = "failed to build sql query"
	logMsgDBQueryFailed       = "database query execution failed"
	logMsgDBExecFailed        = "database execution failed"
	logMsgCloseRowsFailed     = "failed to close database rows"
	logMsgScanRowFailed       = "failed to scan database row"
	logMsgRowsAffectedFailed  = "failed to get rows affected count"
	logMsgConcurrencyConflict = "concurrency conflict detected"
	logMsgSQLExecuted         = "executed sql for: "
	logMsgOperation           = "pool store operation: "
	logAttrError              = "error"
	logAttrQuery              = "query"
	logAttrPoolID             = "pool_id"
	logAttrIdentifier         = "identifier"
	logAttrDurationMS         = "duration_ms"
	logAttrExpectedVersion    = "expected_version"
	logAttrRowsAffected       = "rows_affected"
	logAttrLicenseCount       = "license_count"

	colID                 = "id"
	colCollectionID       = "collection_id"
	colIdentifier         = "identifier"
	colCollectionActive   = "collection_active"
	colUnlimitedAccess    = "unlimited_access"
	colOwned              = "owned"
	colAvailable          = "available"
	colReserved           = "reserved"
	colHoldQueue          = "hold_queue"
	colLastChecked        = "last_checked"
	colVersion            = "version"
	colPoolID             = "pool_id"
	colStatus             = "status"
	colExpires            = "expires"
	colCheckoutsLeft      = "checkouts_left"
	colCheckoutsAvailable = "checkouts_available"
	colTermsConcurrency   = "terms_concurrency"
	colPatronID           = "patron_id"
	colHoldStart          = "hold_start"
	colHoldEnd            = "hold_end"
	colPosition           = "position"
	colLoanStart          = "loan_start"
	colLoanEnd            = "loan_end"
	colLicenseIdentifier  = "license_identifier"
	colExternalIdentifier = "external_identifier"

	dialectPostgres = "postgres"
	versionBump     = colVersion + " + 1"
)

// Metric names emitted through the configured MetricsCollector.
const (
	MetricOperationDuration    = "poolstore_operation_duration"
	MetricConcurrencyConflicts = "poolstore_concurrency_conflicts_total"
	MetricLabelOperation       = "operation"
)

// PoolVersion is the row version token used for guarded counter writes.
type PoolVersion = licensing.PoolVersion

// TableNames holds the four table names the store reads and writes.
type TableNames struct {
	Pools    string
	Licenses string
	Holds    string
	Loans    string
}

// PoolStore persists LicensePool aggregates in PostgreSQL: the pool row with
// its counters and version, plus the license, hold and loan rows hanging off
// it. It leverages a database adapter and supports customizable logging,
// metrics, and table configuration.
type PoolStore struct {
	db               adapters.DBAdapter
	tables           TableNames
	logger           licensing.Logger
	metricsCollector licensing.MetricsCollector
}

// NewPoolStoreFromPGXPool creates a new PoolStore using a pgx Pool with optional configuration.
func NewPoolStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (PoolStore, error) {
	if db == nil {
		return PoolStore{}, ErrNilDatabaseConnection
	}

	return newPoolStore(adapters.NewPGXAdapter(db), options...)
}

// NewPoolStoreFromSQLDB creates a new PoolStore using a sql.DB with optional configuration.
func NewPoolStoreFromSQLDB(db *sql.DB, options ...Option) (PoolStore, error) {
	if db == nil {
		return PoolStore{}, ErrNilDatabaseConnection
	}

	return newPoolStore(adapters.NewSQLAdapter(db), options...)
}

// NewPoolStoreFromSQLX creates a new PoolStore using a sqlx.DB with optional configuration.
func NewPoolStoreFromSQLX(db *sqlx.DB, options ...Option) (PoolStore, error) {
	if db == nil {
		return PoolStore{}, ErrNilDatabaseConnection
	}

	return newPoolStore(adapters.NewSQLXAdapter(db), options...)
}

func newPoolStore(db adapters.DBAdapter, options ...Option) (PoolStore, error) {
	ps := PoolStore{
		db: db,
		tables: TableNames{
			Pools:    defaultPoolTableName,
			Licenses: defaultLicenseTableName,
			Holds:    defaultHoldTableName,
			Loans:    defaultLoanTableName,
		},
	}

	for _, option := range options {
		if err := option(&ps); err != nil {
			return PoolStore{}, err
		}
	}

	return ps, nil
}

// InsertPool creates the pool row for a new license pool at version zero.
// License, hold, and loan rows are written through their own methods.
func (ps PoolStore) InsertPool(ctx context.Context, pool *licensing.LicensePool) error {
	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(ps.tables.Pools).
		Rows(goqu.Record{
			colID:               pool.ID,
			colCollectionID:     pool.CollectionID,
			colIdentifier:       pool.Identifier,
			colCollectionActive: pool.CollectionActive,
			colUnlimitedAccess:  pool.UnlimitedAccess,
			colOwned:            pool.Counters.Owned,
			colAvailable:        pool.Counters.Available,
			colReserved:         pool.Counters.Reserved,
			colHoldQueue:        pool.Counters.HoldQueue,
			colLastChecked:      zeroableTime(pool.LastChecked),
			colVersion:          0,
		})

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return ps.buildQueryError(toSQLErr)
	}

	_, err := ps.executeExec(ctx, sqlQuery, "insert-pool")
	if err != nil {
		return err
	}

	ps.logOperation("pool inserted", logAttrPoolID, pool.ID.String(), logAttrIdentifier, pool.Identifier)

	return nil
}

// LoadPool fetches one license pool by collection and title identifier,
// including its licenses, holds, and loans, together with the version token
// to use for the subsequent guarded counter write.
func (ps PoolStore) LoadPool(ctx context.Context, collectionID uuid.UUID, identifier string) (
	*licensing.LicensePool,
	PoolVersion,
	error,
) {

	return ps.loadPool(ctx, goqu.Ex{colCollectionID: collectionID, colIdentifier: identifier})
}

// LoadPoolByID fetches one license pool by its primary key, including its
// licenses, holds, and loans, together with the version token.
func (ps PoolStore) LoadPoolByID(ctx context.Context, poolID uuid.UUID) (
	*licensing.LicensePool,
	PoolVersion,
	error,
) {

	return ps.loadPool(ctx, goqu.Ex{colID: poolID})
}

func (ps PoolStore) loadPool(ctx context.Context, where goqu.Ex) (*licensing.LicensePool, PoolVersion, error) {
	start := time.Now()

	pool, version, err := ps.queryPoolRow(ctx, where)
	if err != nil {
		return nil, 0, err
	}

	if pool.Licenses, err = ps.queryLicenses(ctx, pool.ID); err != nil {
		return nil, 0, err
	}

	if pool.Holds, err = ps.queryHolds(ctx, pool.ID); err != nil {
		return nil, 0, err
	}

	if pool.Loans, err = ps.queryLoans(ctx, pool.ID); err != nil {
		return nil, 0, err
	}

	duration := time.Since(start)
	ps.recordDuration("load-pool", duration)
	ps.logOperation(
		"pool loaded",
		logAttrPoolID, pool.ID.String(),
		logAttrLicenseCount, len(pool.Licenses),
		logAttrDurationMS, durationToMilliseconds(duration))

	return pool, version, nil
}

// SaveCounters writes the pool's counters, watermark, and collection state
// with an optimistic guard: the update only applies while the row still
// carries expectedVersion, and bumps the version on success.
//
// The caller must have loaded the pool (and its version) before making the
// accounting decision. An affected-row count of zero means another writer got
// there first and licensing.ErrConcurrencyConflict is returned; the caller
// reloads and retries.
func (ps PoolStore) SaveCounters(ctx context.Context, pool *licensing.LicensePool, expectedVersion PoolVersion) error {
	updateStmt := goqu.Dialect(dialectPostgres).
		Update(ps.tables.Pools).
		Set(goqu.Record{
			colCollectionActive: pool.CollectionActive,
			colUnlimitedAccess:  pool.UnlimitedAccess,
			colOwned:            pool.Counters.Owned,
			colAvailable:        pool.Counters.Available,
			colReserved:         pool.Counters.Reserved,
			colHoldQueue:        pool.Counters.HoldQueue,
			colLastChecked:      zeroableTime(pool.LastChecked),
			colVersion:          goqu.L(versionBump),
		}).
		Where(goqu.Ex{colID: pool.ID, colVersion: int64(expectedVersion)})

	sqlQuery, _, toSQLErr := updateStmt.ToSQL()
	if toSQLErr != nil {
		return ps.buildQueryError(toSQLErr)
	}

	rowsAffected, err := ps.executeExec(ctx, sqlQuery, "save-counters")
	if err != nil {
		return err
	}

	if rowsAffected < 1 {
		ps.logOperation(
			logMsgConcurrencyConflict,
			logAttrPoolID, pool.ID.String(),
			logAttrExpectedVersion, int64(expectedVersion),
			logAttrRowsAffected, rowsAffected)
		ps.incrementCounter(MetricConcurrencyConflicts, "save-counters")

		return licensing.ErrConcurrencyConflict
	}

	return nil
}

// ReplaceLicenses swaps the pool's license rows for the given set, as after a
// license snapshot import.
func (ps PoolStore) ReplaceLicenses(ctx context.Context, poolID uuid.UUID, licenses licensing.Licenses) error {
	builder := goqu.Dialect(dialectPostgres)

	deleteSQL, _, toSQLErr := builder.
		Delete(ps.tables.Licenses).
		Where(goqu.Ex{colPoolID: poolID}).
		ToSQL()
	if toSQLErr != nil {
		return ps.buildQueryError(toSQLErr)
	}

	if _, err := ps.executeExec(ctx, deleteSQL, "replace-licenses"); err != nil {
		return err
	}

	if len(licenses) == 0 {
		return nil
	}

	records := make([]any, 0, len(licenses))
	for _, license := range licenses {
		records = append(records, goqu.Record{
			colPoolID:             poolID,
			colIdentifier:         license.Identifier,
			colStatus:             string(license.Status),
			colExpires:            nullableTime(license.Expires),
			colCheckoutsLeft:      nullableInt(license.CheckoutsLeft),
			colCheckoutsAvailable: license.CheckoutsAvailable,
			colTermsConcurrency:   nullableInt(license.TermsConcurrency),
		})
	}

	insertSQL, _, toSQLErr := builder.
		Insert(ps.tables.Licenses).
		Rows(records...).
		ToSQL()
	if toSQLErr != nil {
		return ps.buildQueryError(toSQLErr)
	}

	if _, err := ps.executeExec(ctx, insertSQL, "replace-licenses"); err != nil {
		return err
	}

	ps.logOperation("licenses replaced", logAttrPoolID, poolID.String(), logAttrLicenseCount, len(licenses))

	return nil
}

// SaveHold inserts or updates the patron's hold row on the pool.
func (ps PoolStore) SaveHold(ctx context.Context, poolID uuid.UUID, hold licensing.Hold) error {
	upsertStmt := goqu.Dialect(dialectPostgres).
		Insert(ps.tables.Holds).
		Rows(goqu.Record{
			colPoolID:    poolID,
			colPatronID:  hold.PatronID,
			colHoldStart: hold.Start,
			colHoldEnd:   nullableTime(hold.End),
			colPosition:  nullableInt(hold.Position),
		}).
		OnConflict(goqu.DoUpdate(
			colPoolID+", "+colPatronID,
			goqu.Record{
				colHoldStart: hold.Start,
				colHoldEnd:   nullableTime(hold.End),
				colPosition:  nullableInt(hold.Position),
			},
		))

	sqlQuery, _, toSQLErr := upsertStmt.ToSQL()
	if toSQLErr != nil {
		return ps.buildQueryError(toSQLErr)
	}

	_, err := ps.executeExec(ctx, sqlQuery, "save-hold")

	return err
}

// DeleteHold removes the patron's hold row from the pool, if present.
func (ps PoolStore) DeleteHold(ctx context.Context, poolID uuid.UUID, patronID uuid.UUID) error {
	deleteSQL, _, toSQLErr := goqu.Dialect(dialectPostgres).
		Delete(ps.tables.Holds).
		Where(goqu.Ex{colPoolID: poolID, colPatronID: patronID}).
		ToSQL()
	if toSQLErr != nil {
		return ps.buildQueryError(toSQLErr)
	}

	_, err := ps.executeExec(ctx, deleteSQL, "delete-hold")

	return err
}

// SaveLoan inserts or updates the patron's loan row on the pool.
func (ps PoolStore) SaveLoan(ctx context.Context, poolID uuid.UUID, loan licensing.Loan) error {
	upsertStmt := goqu.Dialect(dialectPostgres).
		Insert(ps.tables.Loans).
		Rows(goqu.Record{
			colPoolID:             poolID,
			colPatronID:           loan.PatronID,
			colLoanStart:          loan.Start,
			colLoanEnd:            nullableTime(loan.End),
			colLicenseIdentifier:  nullableString(loan.LicenseIdentifier),
			colExternalIdentifier: nullableString(loan.ExternalIdentifier),
		}).
		OnConflict(goqu.DoUpdate(
			colPoolID+", "+colPatronID,
			goqu.Record{
				colLoanStart:          loan.Start,
				colLoanEnd:            nullableTime(loan.End),
				colLicenseIdentifier:  nullableString(loan.LicenseIdentifier),
				colExternalIdentifier: nullableString(loan.ExternalIdentifier),
			},
		))

	sqlQuery, _, toSQLErr := upsertStmt.ToSQL()
	if toSQLErr != nil {
		return ps.buildQueryError(toSQLErr)
	}

	_, err := ps.executeExec(ctx, sqlQuery, "save-loan")

	return err
}

// DeleteLoan removes the patron's loan row from the pool, if present.
func (ps PoolStore) DeleteLoan(ctx context.Context, poolID uuid.UUID, patronID uuid.UUID) error {
	deleteSQL, _, toSQLErr := goqu.Dialect(dialectPostgres).
		Delete(ps.tables.Loans).
		Where(goqu.Ex{colPoolID: poolID, colPatronID: patronID}).
		ToSQL()
	if toSQLErr != nil {
		return ps.buildQueryError(toSQLErr)
	}

	_, err := ps.executeExec(ctx, deleteSQL, "delete-loan")

	return err
}

func (ps PoolStore) queryPoolRow(ctx context.Context, where goqu.Ex) (*licensing.LicensePool, PoolVersion, error) {
	sqlQuery, _, toSQLErr := goqu.Dialect(dialectPostgres).
		From(ps.tables.Pools).
		Select(
			colID, colCollectionID, colIdentifier, colCollectionActive,
			colUnlimitedAccess, colOwned, colAvailable, colReserved,
			colHoldQueue, colLastChecked, colVersion,
		).
		Where(where).
		ToSQL()
	if toSQLErr != nil {
		return nil, 0, ps.buildQueryError(toSQLErr)
	}

	rows, err := ps.executeQuery(ctx, sqlQuery, "load-pool")
	if err != nil {
		return nil, 0, err
	}
	defer ps.closeRows(rows)

	if !rows.Next() {
		return nil, 0, ErrPoolNotFound
	}

	pool := &licensing.LicensePool{}
	var lastChecked sql.NullTime
	var version int64

	scanErr := rows.Scan(
		&pool.ID, &pool.CollectionID, &pool.Identifier, &pool.CollectionActive,
		&pool.UnlimitedAccess, &pool.Counters.Owned, &pool.Counters.Available, &pool.Counters.Reserved,
		&pool.Counters.HoldQueue, &lastChecked, &version,
	)
	if scanErr != nil {
		return nil, 0, ps.scanRowError(scanErr)
	}

	if lastChecked.Valid {
		pool.LastChecked = lastChecked.Time
	}

	return pool, PoolVersion(version), nil
}

func (ps PoolStore) queryLicenses(ctx context.Context, poolID uuid.UUID) (licensing.Licenses, error) {
	sqlQuery, _, toSQLErr := goqu.Dialect(dialectPostgres).
		From(ps.tables.Licenses).
		Select(colIdentifier, colStatus, colExpires, colCheckoutsLeft, colCheckoutsAvailable, colTermsConcurrency).
		Where(goqu.Ex{colPoolID: poolID}).
		Order(goqu.I(colIdentifier).Asc()).
		ToSQL()
	if toSQLErr != nil {
		return nil, ps.buildQueryError(toSQLErr)
	}

	rows, err := ps.executeQuery(ctx, sqlQuery, "load-licenses")
	if err != nil {
		return nil, err
	}
	defer ps.closeRows(rows)

	licenses := make(licensing.Licenses, 0)

	for rows.Next() {
		var license licensing.License
		var status string
		var expires sql.NullTime
		var checkoutsLeft, termsConcurrency sql.NullInt64

		scanErr := rows.Scan(
			&license.Identifier, &status, &expires,
			&checkoutsLeft, &license.CheckoutsAvailable, &termsConcurrency,
		)
		if scanErr != nil {
			return nil, ps.scanRowError(scanErr)
		}

		license.Status = licensing.LicenseStatus(status)
		license.Expires = timeFromNull(expires)
		license.CheckoutsLeft = intFromNull(checkoutsLeft)
		license.TermsConcurrency = intFromNull(termsConcurrency)

		licenses = append(licenses, license)
	}

	return licenses, nil
}

func (ps PoolStore) queryHolds(ctx context.Context, poolID uuid.UUID) (licensing.Holds, error) {
	sqlQuery, _, toSQLErr := goqu.Dialect(dialectPostgres).
		From(ps.tables.Holds).
		Select(colPatronID, colHoldStart, colHoldEnd, colPosition).
		Where(goqu.Ex{colPoolID: poolID}).
		Order(goqu.I(colHoldStart).Asc()).
		ToSQL()
	if toSQLErr != nil {
		return nil, ps.buildQueryError(toSQLErr)
	}

	rows, err := ps.executeQuery(ctx, sqlQuery, "load-holds")
	if err != nil {
		return nil, err
	}
	defer ps.closeRows(rows)

	holds := make(licensing.Holds, 0)

	for rows.Next() {
		var hold licensing.Hold
		var end sql.NullTime
		var position sql.NullInt64

		if scanErr := rows.Scan(&hold.PatronID, &hold.Start, &end, &position); scanErr != nil {
			return nil, ps.scanRowError(scanErr)
		}

		hold.End = timeFromNull(end)
		hold.Position = intFromNull(position)

		holds = append(holds, hold)
	}

	return holds, nil
}

func (ps PoolStore) queryLoans(ctx context.Context, poolID uuid.UUID) (licensing.Loans, error) {
	sqlQuery, _, toSQLErr := goqu.Dialect(dialectPostgres).
		From(ps.tables.Loans).
		Select(colPatronID, colLoanStart, colLoanEnd, colLicenseIdentifier, colExternalIdentifier).
		Where(goqu.Ex{colPoolID: poolID}).
		Order(goqu.I(colLoanStart).Asc()).
		ToSQL()
	if toSQLErr != nil {
		return nil, ps.buildQueryError(toSQLErr)
	}

	rows, err := ps.executeQuery(ctx, sqlQuery, "load-loans")
	if err != nil {
		return nil, err
	}
	defer ps.closeRows(rows)

	loans := make(licensing.Loans, 0)

	for rows.Next() {
		var loan licensing.Loan
		var end sql.NullTime
		var licenseIdentifier, externalIdentifier sql.NullString

		scanErr := rows.Scan(&loan.PatronID, &loan.Start, &end, &licenseIdentifier, &externalIdentifier)
		if scanErr != nil {
			return nil, ps.scanRowError(scanErr)
		}

		loan.End = timeFromNull(end)
		loan.LicenseIdentifier = stringFromNull(licenseIdentifier)
		loan.ExternalIdentifier = stringFromNull(externalIdentifier)

		loans = append(loans, loan)
	}

	return loans, nil
}

// executeQuery executes the SQL query with timing and error logging.
func (ps PoolStore) executeQuery(ctx context.Context, sqlQuery string, action string) (adapters.DBRows, error) {
	start := time.Now()
	rows, queryErr := ps.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	ps.logQueryWithDuration(sqlQuery, action, duration)

	if queryErr != nil {
		if ps.logger != nil {
			ps.logger.Error(logMsgDBQueryFailed, logAttrError, queryErr.Error(), logAttrQuery, sqlQuery)
		}

		return nil, errors.Join(ErrQueryingPoolFailed, queryErr)
	}

	return rows, nil
}

// executeExec executes the SQL statement with timing and error logging and
// returns the affected-row count.
func (ps PoolStore) executeExec(ctx context.Context, sqlQuery string, action string) (int64, error) {
	start := time.Now()
	result, execErr := ps.db.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	ps.logQueryWithDuration(sqlQuery, action, duration)
	ps.recordDuration(action, duration)

	if execErr != nil {
		if ps.logger != nil {
			ps.logger.Error(logMsgDBExecFailed, logAttrError, execErr.Error(), logAttrQuery, sqlQuery)
		}

		return 0, errors.Join(ErrSavingPoolFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		if ps.logger != nil {
			ps.logger.Error(logMsgRowsAffectedFailed, logAttrError, rowsAffectedErr.Error())
		}

		return 0, errors.Join(ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	return rowsAffected, nil
}

// closeRows safely closes database rows and logs any errors.
func (ps PoolStore) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		if ps.logger != nil {
			ps.logger.Warn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
		}
	}
}

func (ps PoolStore) buildQueryError(err error) error {
	if ps.logger != nil {
		ps.logger.Error(logMsgBuildQueryFailed, logAttrError, err.Error())
	}

	return errors.Join(ErrBuildingQueryFailed, err)
}

func (ps PoolStore) scanRowError(err error) error {
	if ps.logger != nil {
		ps.logger.Error(logMsgScanRowFailed, logAttrError, err.Error())
	}

	return errors.Join(ErrScanningDBRowFailed, err)
}

// logQueryWithDuration logs SQL queries with execution time at debug level if the logger is configured.
func (ps PoolStore) logQueryWithDuration(sqlQuery string, action string, duration time.Duration) {
	if ps.logger != nil {
		ps.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, durationToMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level if the logger is configured.
func (ps PoolStore) logOperation(action string, args ...any) {
	if ps.logger != nil {
		ps.logger.Info(logMsgOperation+action, args...)
	}
}

func (ps PoolStore) recordDuration(operation string, duration time.Duration) {
	if ps.metricsCollector != nil {
		ps.metricsCollector.RecordDuration(
			MetricOperationDuration, duration, map[string]string{MetricLabelOperation: operation})
	}
}

func (ps PoolStore) incrementCounter(metric string, operation string) {
	if ps.metricsCollector != nil {
		ps.metricsCollector.IncrementCounter(metric, map[string]string{MetricLabelOperation: operation})
	}
}

// durationToMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func durationToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

func zeroableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}

	return t
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}

	return *t
}

func nullableInt(i *int) any {
	if i == nil {
		return nil
	}

	return *i
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}

	return *s
}

func timeFromNull(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}

	value := t.Time

	return &value
}

func intFromNull(i sql.NullInt64) *int {
	if !i.Valid {
		return nil
	}

	value := int(i.Int64)

	return &value
}

func stringFromNull(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}

	value := s.String

	return &value
}
