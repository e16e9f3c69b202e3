// Package engine provides the bounded-concurrency task executor with
// per-attempt timeouts and linear retry backoff.
//
// Run admits a task only when a slot is free; there is no internal
// queue. Batch runs a task list through a sliding window of workers,
// starting the next task as soon as any in-flight task settles.
package engine
