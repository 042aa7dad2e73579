package pgtesthelpers

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"

	"github.com/ejournals/license-accounting-go/testutil/postgresengine/config"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS license_pools (
		id                uuid PRIMARY KEY,
		collection_id     uuid NOT NULL,
		identifier        text NOT NULL,
		collection_active boolean NOT NULL,
		unlimited_access  boolean NOT NULL,
		owned             integer NOT NULL,
		available         integer NOT NULL,
		reserved          integer NOT NULL,
		hold_queue        integer NOT NULL,
		last_checked      timestamptz,
		version           bigint NOT NULL,
		UNIQUE (collection_id, identifier)
	)`,
	`CREATE TABLE IF NOT EXISTS licenses (
		pool_id             uuid NOT NULL,
		identifier          text NOT NULL,
		status              text NOT NULL,
		expires             timestamptz,
		checkouts_left      integer,
		checkouts_available integer NOT NULL,
		terms_concurrency   integer,
		PRIMARY KEY (pool_id, identifier)
	)`,
	`CREATE TABLE IF NOT EXISTS holds (
		pool_id    uuid NOT NULL,
		patron_id  uuid NOT NULL,
		hold_start timestamptz NOT NULL,
		hold_end   timestamptz,
		position   integer,
		PRIMARY KEY (pool_id, patron_id)
	)`,
	`CREATE TABLE IF NOT EXISTS loans (
		pool_id             uuid NOT NULL,
		patron_id           uuid NOT NULL,
		loan_start          timestamptz NOT NULL,
		loan_end            timestamptz,
		license_identifier  text,
		external_identifier text,
		PRIMARY KEY (pool_id, patron_id)
	)`,
}

// CreateTablesIfNecessary creates the pool store schema in the test database.
func CreateTablesIfNecessary(t testing.TB) {
	ctx := context.Background()

	connPool, err := pgxpool.New(ctx, config.PostgresDSN())
	assert.NoError(t, err, "error connecting to DB in test setup")
	defer connPool.Close()

	for _, statement := range schemaStatements {
		_, err = connPool.Exec(ctx, statement)
		assert.NoError(t, err, "error creating schema in test setup")
	}
}

// TruncateAllTables removes all rows from the pool store tables.
func TruncateAllTables(t testing.TB) {
	ctx := context.Background()

	connPool, err := pgxpool.New(ctx, config.PostgresDSN())
	assert.NoError(t, err, "error connecting to DB in test setup")
	defer connPool.Close()

	_, err = connPool.Exec(ctx, `TRUNCATE TABLE license_pools, licenses, holds, loans`)
	assert.NoError(t, err, "error truncating tables in test setup")
}
