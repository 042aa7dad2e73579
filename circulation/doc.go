// Package circulation implements the patron-facing circulation operations on
// license pools and the importer-facing reconciliation operations that keep
// the pools' counters in line with distributor data.
//
// The package owns no accounting rules itself: decisions are made by the
// licensing package on a freshly loaded pool, and the outcome is persisted
// through a guarded counter write. When two workers race on the same pool,
// the loser gets licensing.ErrConcurrencyConflict and the whole
// load-decide-persist cycle is retried with exponential backoff.
//
// Usage example:
//
//	store, _ := postgresengine.NewPoolStoreFromPGXPool(db)
//	service, _ := circulation.NewService(store,
//		circulation.WithLoanPeriod(21*24*time.Hour),
//		circulation.WithChangeRecorder(recorder),
//	)
//
//	loan, err := service.Checkout(ctx, collectionID, identifier, patronID)
//	switch {
//	case errors.Is(err, licensing.ErrNoAvailableCopies):
//		// offer the patron a hold instead
//	case err != nil:
//		// infrastructure failure
//	}
package circulation
