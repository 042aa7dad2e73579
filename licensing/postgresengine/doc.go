// Package postgresengine provides the PostgreSQL persistence for license pools.
//
// The store keeps one row per LicensePool with its four counters, the
// reconciliation watermark, and an optimistic version token, plus license,
// hold, and loan rows keyed by pool. Counter writes are guarded: they only
// apply while the row still carries the version the caller loaded, so two
// workers folding circulation data into the same pool cannot silently
// overwrite each other.
//
// Key features:
//   - Multiple database adapter support (PGX, SQL, SQLX)
//   - Guarded counter writes with concurrency conflict detection
//   - Configurable table names and dependency-free logging and metrics
//
// Usage examples:
//
//	// Basic usage
//	db, _ := pgxpool.New(context.Background(), dsn)
//	store, _ := postgresengine.NewPoolStoreFromPGXPool(db)
//
//	// With logging and custom table names
//	store, _ := postgresengine.NewPoolStoreFromPGXPool(
//		db,
//		postgresengine.WithPoolTableName("my_license_pools"),
//		postgresengine.WithLogger(logger),
//	)
//
//	pool, version, _ := store.LoadPool(ctx, collectionID, identifier)
//	pool.ApplyDelta(event)
//	err := store.SaveCounters(ctx, pool, version)
package postgresengine
