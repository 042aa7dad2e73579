// Package poolstore provides an in-memory PoolStore double for circulation
// tests, honoring the guarded counter-write contract of the PostgreSQL
// implementation.
package poolstore
