package buffer

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// Reclaimer drives the deferred destruction of shared buffers whose host
// wrappers have been dropped. Reclaim is the bridge's GC prologue hook: the
// host invokes it on the isolate goroutine immediately before each
// collection cycle.
//
// Reclaim never reports a failure to the host. An invariant violation
// (an invalid handle or a count going negative) is logged on the engine's
// diagnostic channel and the buffer is leaked; the rest of the batch is
// still processed.
type Reclaimer struct {
	pool *Pool

	active  atomic.Bool
	running atomic.Bool

	epochs    atomic.Uint64
	reclaimed atomic.Uint64
	leaked    atomic.Uint64
}

// NewReclaimer creates a reclaimer over pool. It stays inert until
// Activate, so prologue invocations during module load are no-ops.
func NewReclaimer(pool *Pool) *Reclaimer {
	return &Reclaimer{pool: pool}
}

// Activate arms the reclaimer. The bridge calls this once the module
// reaches the active state.
func (r *Reclaimer) Activate() {
	r.active.Store(true)
}

// Reclaim drains the pending-release set once. Handles enqueued while the
// drain runs are deferred to the next epoch, bounding the prologue pause by
// the previous epoch's enqueue count. Outside the active state, and on
// re-entry, it is a no-op.
func (r *Reclaimer) Reclaim() {
	if !r.active.Load() {
		return
	}
	if !r.running.CompareAndSwap(false, true) {
		// Host re-entered the prologue; the inner call must not touch
		// the batch the outer call is draining.
		return
	}
	defer r.running.Store(false)
	defer func() {
		if p := recover(); p != nil {
			Logger().Error("panic during reclaim, remaining handles deferred",
				zap.Any("panic", p))
		}
	}()

	r.drainOnce()
	r.epochs.Add(1)
}

// Shutdown performs the final drain for isolate teardown, looping until
// the pending set is empty, then disarms the reclaimer. Later prologue
// invocations are no-ops.
func (r *Reclaimer) Shutdown() {
	r.active.Store(false)
	for !r.pool.pending.empty() {
		r.drainOnce()
	}
}

// Epochs returns the number of completed prologue drains.
func (r *Reclaimer) Epochs() uint64 {
	return r.epochs.Load()
}

// Reclaimed returns the number of buffers freed by the reclaimer.
func (r *Reclaimer) Reclaimed() uint64 {
	return r.reclaimed.Load()
}

// Leaked returns the number of buffers abandoned after an invariant
// violation.
func (r *Reclaimer) Leaked() uint64 {
	return r.leaked.Load()
}

func (r *Reclaimer) drainOnce() {
	for _, h := range r.pool.drainPending() {
		switch r.pool.dropRef(h) {
		case outcomeLive:
			// Host side let go but engine references remain.
		case outcomeFreed:
			r.reclaimed.Add(1)
		case outcomeInvalid:
			r.leaked.Add(1)
			Logger().Error("pending release for unknown buffer, leaking",
				zap.Uint32("handle", uint32(h)))
		case outcomeUnderflow:
			r.leaked.Add(1)
			Logger().Error("buffer reference count went negative, leaking",
				zap.Uint32("handle", uint32(h)))
		}
	}
}
