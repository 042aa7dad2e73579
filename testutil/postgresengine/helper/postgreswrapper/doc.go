// Package postgreswrapper abstracts over the three supported database
// adapters (pgx pool, sql.DB, sqlx.DB) for pool store tests against a live
// PostgreSQL database. The adapter is selected through the ADAPTER_TYPE
// environment variable; tests are skipped when no database is reachable.
package postgreswrapper
