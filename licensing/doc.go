// Package licensing provides the license-accounting core for a library
// e-content circulation manager.
//
// The central type is the LicensePool: the per-title, per-collection aggregate
// that owns distributor-issued Licenses, patron Holds and Loans, and the four
// derived counters (owned / available / reserved / hold queue length). The
// counters are kept consistent through two reconciliation paths:
//
//   - ReconcileFromLicenses re-derives all counters from a full license
//     snapshot delivered by an importer.
//   - ApplyDelta folds a single incremental circulation event (checkin,
//     checkout, hold placed, ...) into the counters, guarded by the pool's
//     LastChecked watermark so stale or unorderable events are dropped.
//
// Both paths commit through UpdateAvailability, the single choke point that
// ever writes the counters. It detects changes, advances the watermark and
// returns a typed CounterChange for an external ChangeRecorder, keeping the
// core free of string formatting.
//
// BestAvailableLicenses ranks the licenses eligible to back the next
// checkout, preferring capacity that is going to expire over capacity that
// is not.
//
// Common usage pattern:
//
//	pool, _ := store.Load(ctx, poolID)
//	change, changed := pool.ApplyDelta(licensing.DeltaEvent{
//		Type:      licensing.DeltaCheckin,
//		EventDate: eventDate,
//		Delta:     1,
//	})
//	if changed {
//		recorder.RecordCounterChange(change)
//	}
package licensing
