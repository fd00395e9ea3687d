package buffer

import (
	"sync/atomic"

	"github.com/plugkit/engine-bridge/errors"
)

// Wrapper is the host-heap face of a shared buffer. It holds one reference
// on behalf of whatever script value points at the buffer. Dropping the
// last host reference releases the wrapper, which enqueues the handle for
// the next reclamation epoch instead of touching the pool directly: the
// host may finalize wrappers at any point, and the deferred decrement keeps
// finalization cheap and race-free.
type Wrapper struct {
	pool     *Pool
	handle   Handle
	released atomic.Bool
}

// Wrap takes a new host-side reference on h and returns its wrapper.
func (p *Pool) Wrap(h Handle) (*Wrapper, error) {
	if !p.Retain(h) {
		return nil, errors.InvalidHandle(errors.PhaseRuntime, uint32(h))
	}
	return &Wrapper{pool: p, handle: h}, nil
}

// Handle returns the wrapped buffer's handle.
func (w *Wrapper) Handle() Handle {
	return w.handle
}

// Bytes returns the buffer's storage, or nil once the wrapper is released.
func (w *Wrapper) Bytes() []byte {
	if w.released.Load() {
		return nil
	}
	data, ok := w.pool.Bytes(w.handle)
	if !ok {
		return nil
	}
	return data
}

// Released reports whether the host reference has been dropped.
func (w *Wrapper) Released() bool {
	return w.released.Load()
}

// Release drops the host reference. This is the finalizer path: the handle
// is enqueued on the pending-release queue and decremented at the next
// drain. Safe to call from any goroutine; repeats are no-ops.
func (w *Wrapper) Release() {
	if !w.released.CompareAndSwap(false, true) {
		return
	}
	w.pool.enqueueRelease(w.handle)
}
