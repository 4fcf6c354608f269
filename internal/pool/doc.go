// Package pool provides a bounded-concurrency task pool.
//
// The concurrency ceiling is a hard limit enforced by a weighted semaphore:
// [Pool.Go] blocks until a slot is free. The first task error cancels the
// shared task context and is returned from [Pool.Wait].
package pool
