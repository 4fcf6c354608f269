// Package metrics aggregates per-request outcomes for a load test run and
// derives the final summary.
//
// # Store
//
// A [Store] is created empty at run start and shared by every request
// worker. Completed HTTP transactions are bucketed by status code, transport
// failures are kept in a separate list:
//
//	store := metrics.NewStore()
//	store.RecordSuccess(200, latency)
//	store.RecordFailure(err)
//
// The dispatcher writes the total elapsed time exactly once with
// [Store.Finish], which also freezes the store.
//
// # Statistics
//
// [Compute] is a read-only pass over a store:
//
//	stats, err := metrics.Compute(store)
//	if errors.Is(err, metrics.ErrNoSamples) {
//		// no successes: MinLatency and MaxLatency are undefined
//	}
//
// Throughput and mean latency are zero when nothing succeeded.
//
// # Thread Safety
//
// All Store methods take a single mutex, so concurrent appends to the same or
// different buckets are never lost.
package metrics
