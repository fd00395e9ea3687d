// Package buffer implements the engine's shared byte buffers and their
// deferred reclamation.
//
// A shared buffer is a reference-counted byte region that may be referenced
// simultaneously by engine-internal structures and by host-heap wrappers
// whose lifetime is governed by the host collector. The invariant is that
// storage is released only after both sides have let go.
//
// # Two release paths
//
// Engine code releases its references directly with Pool.Release; the
// decrement is immediate. Host-side wrappers cannot release directly: the
// host may finalize them on any goroutine at any point, and touching pool
// bookkeeping from a finalizer would race with the collector. Instead,
// Wrapper.Release enqueues the handle on the pool's pending-release queue.
//
// # Reclamation epochs
//
// The Reclaimer drains the pending queue exactly once per GC prologue. The
// drain takes a snapshot: handles enqueued while the drain runs are
// deferred to the next epoch, so the prologue pause is bounded by the
// number of handles enqueued during the previous epoch. A handle enqueued
// in epoch n and not re-referenced is therefore freed by the end of epoch
// n+1.
//
// Reclamation never reports an error to the host. A handle whose count
// would go negative is leaked and logged; the remaining handles in the
// batch are still processed.
package buffer
