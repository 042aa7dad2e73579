package postgresengine

import "errors"

var (
	// ErrNilDatabaseConnection is returned when a constructor receives a nil
	// database handle.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrEmptyTableName is returned when a table name option is given an
	// empty string.
	ErrEmptyTableName = errors.New("table name must not be empty")

	// ErrPoolNotFound is returned when no license pool row matches the
	// requested collection and identifier.
	ErrPoolNotFound = errors.New("license pool not found")

	// ErrBuildingQueryFailed is returned when the sql query could not be built.
	ErrBuildingQueryFailed = errors.New("building sql query failed")

	// ErrQueryingPoolFailed is returned when a select against the pool
	// tables failed.
	ErrQueryingPoolFailed = errors.New("querying license pool failed")

	// ErrScanningDBRowFailed is returned when a database row could not be
	// scanned into its record.
	ErrScanningDBRowFailed = errors.New("scanning database row failed")

	// ErrSavingPoolFailed is returned when a write against the pool tables
	// failed.
	ErrSavingPoolFailed = errors.New("saving license pool failed")

	// ErrGettingRowsAffectedFailed is returned when the driver could not
	// report how many rows a write touched.
	ErrGettingRowsAffectedFailed = errors.New("getting rows affected failed")
)
