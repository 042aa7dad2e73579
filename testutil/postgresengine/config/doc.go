// Package config provides PostgreSQL database configuration for pool store
// testing, with factory functions for all three supported adapters
// (pgx.Pool, sql.DB, sqlx.DB) against the local test database.
package config
