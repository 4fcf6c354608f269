// Package runner is the dispatcher at the core of pressure.
//
// A Runner launches requests under a hard concurrency ceiling until one of
// two stopping conditions is met:
//   - Count-bounded: exactly TotalRequests requests are launched.
//   - Duration-bounded: launches continue until Duration has elapsed.
//
// Either way the runner then waits for every in-flight request to finish
// before it measures the total elapsed time and hands it to the store.
//
// # Basic Usage
//
//	store := metrics.NewStore()
//	r := runner.New(runner.Options{
//		Concurrency:   10,
//		TotalRequests: 1000,
//		Requester:     myRequester,
//		Store:         store,
//	})
//	res, err := r.Run(ctx)
//
// # Requester Interface
//
// The [Requester] records its own outcome. A non-nil error from Do is a
// run-level failure: no further requests are launched, in-flight requests are
// cancelled and Run returns the error without finalizing the store.
//
// # Interrupts
//
// Cancelling the context passed to Run stops new launches. Requests already
// in flight are not aborted; their outcomes are kept and Result.Interrupted is
// set. The elapsed time of an interrupted run ends at the interrupt, so the
// drain does not dilute the reported throughput.
//
// # Pacing
//
// When RatePerSecond is set, launches are paced with either
// [ArrivalModelUniform] (token bucket) or [ArrivalModelPoisson]
// (exponential inter-arrival gaps).
//
// LoadPatterns replace the fixed rate with a schedule of ramps, steps and
// spikes. The target rate is re-evaluated every 100ms and launches stop when
// the schedule ends, even if a longer Duration was configured.
package runner
