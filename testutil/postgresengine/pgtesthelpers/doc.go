// Package pgtesthelpers provides schema and cleanup helpers for pool store
// tests that run against a live PostgreSQL database.
package pgtesthelpers
