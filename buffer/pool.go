package buffer

import (
	"sync"
	"sync/atomic"

	"github.com/plugkit/engine-bridge/errors"
)

// Handle is an opaque reference to a shared buffer in a pool.
// Handle 0 is reserved and always invalid.
type Handle uint32

// releaseOutcome classifies what happened to a buffer when one reference
// was dropped.
type releaseOutcome int

const (
	outcomeLive      releaseOutcome = iota // references remain
	outcomeFreed                           // last reference, storage released
	outcomeInvalid                         // no entry for the handle
	outcomeUnderflow                       // count went negative, entry kept
)

// Pool owns the engine side of shared-buffer bookkeeping: the handle table,
// the reference counts and the pending-release queue fed by host wrappers.
//
// Reference counts are atomic; they may be manipulated from engine worker
// goroutines while the isolate goroutine drains the pending queue.
type Pool struct {
	entries  []*shared
	freeList []Handle
	mu       sync.RWMutex
	closed   bool

	pending    releaseQueue
	pendingLen atomic.Int64

	liveBytes atomic.Int64
	allocs    atomic.Uint64
	frees     atomic.Uint64
}

type shared struct {
	data []byte
	refs atomic.Int32
}

// NewPool creates an empty buffer pool.
func NewPool() *Pool {
	return &Pool{
		entries:  make([]*shared, 0, 64),
		freeList: make([]Handle, 0, 16),
	}
}

// Alloc creates a buffer of size bytes with one reference, owned by the
// caller.
func (p *Pool) Alloc(size int) (Handle, error) {
	if size < 0 {
		return 0, errors.InvalidInput(errors.PhaseRuntime, "negative buffer size")
	}

	s := &shared{data: make([]byte, size)}
	s.refs.Store(1)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, errors.Closed(errors.PhaseTeardown, "buffer pool")
	}

	p.liveBytes.Add(int64(size))
	p.allocs.Add(1)

	if n := len(p.freeList); n > 0 {
		h := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		p.entries[h-1] = s
		return h, nil
	}

	p.entries = append(p.entries, s)
	return Handle(len(p.entries)), nil
}

// Bytes returns the buffer's storage. The slice stays valid only while the
// caller holds a reference.
func (p *Pool) Bytes(h Handle) ([]byte, bool) {
	s, ok := p.get(h)
	if !ok {
		return nil, false
	}
	return s.data, true
}

// Retain adds a reference. The caller must already hold one; retaining a
// buffer it does not own races with the final release.
func (p *Pool) Retain(h Handle) bool {
	s, ok := p.get(h)
	if !ok {
		return false
	}
	s.refs.Add(1)
	return true
}

// Release drops an engine-side reference immediately, freeing the storage
// if it was the last one. Host-side references go through Wrapper.Release
// and the pending queue instead.
func (p *Pool) Release(h Handle) error {
	switch p.dropRef(h) {
	case outcomeInvalid:
		return errors.InvalidHandle(errors.PhaseReclaim, uint32(h))
	case outcomeUnderflow:
		return errors.New(errors.PhaseReclaim, errors.KindRefcountUnderflow).
			Detail("buffer %d over-released", h).
			Build()
	}
	return nil
}

// Refs returns the current reference count. Diagnostic use only; the value
// may be stale by the time it is observed.
func (p *Pool) Refs(h Handle) (int32, bool) {
	s, ok := p.get(h)
	if !ok {
		return 0, false
	}
	return s.refs.Load(), true
}

// AllocatedBytes returns the bytes held by live buffers.
func (p *Pool) AllocatedBytes() int64 {
	return p.liveBytes.Load()
}

// Active returns the number of live buffers.
func (p *Pool) Active() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	count := 0
	for _, s := range p.entries {
		if s != nil {
			count++
		}
	}
	return count
}

// PendingReleases returns the number of handles waiting for the next drain.
func (p *Pool) PendingReleases() int64 {
	return p.pendingLen.Load()
}

// TotalAllocs returns the number of buffers ever allocated.
func (p *Pool) TotalAllocs() uint64 {
	return p.allocs.Load()
}

// TotalFrees returns the number of buffers ever freed.
func (p *Pool) TotalFrees() uint64 {
	return p.frees.Load()
}

// Close releases every remaining buffer regardless of reference count and
// rejects further allocations. Only the bridge teardown path calls this,
// after the final drain.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	for i, s := range p.entries {
		if s != nil {
			p.liveBytes.Add(-int64(len(s.data)))
			p.frees.Add(1)
			p.entries[i] = nil
		}
	}
	p.entries = nil
	p.freeList = nil
	return nil
}

// enqueueRelease is the wrapper-finalizer path: the handle's deferred
// decrement happens at the next drain.
func (p *Pool) enqueueRelease(h Handle) {
	p.pending.push(h)
	p.pendingLen.Add(1)
}

// drainPending snapshots the pending queue. Handles enqueued after the
// snapshot stay queued for the next epoch.
func (p *Pool) drainPending() []Handle {
	batch := p.pending.drain()
	if len(batch) > 0 {
		p.pendingLen.Add(-int64(len(batch)))
	}
	return batch
}

func (p *Pool) get(h Handle) (*shared, bool) {
	if h == 0 {
		return nil, false
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	idx := int(h) - 1
	if idx >= len(p.entries) || p.entries[idx] == nil {
		return nil, false
	}
	return p.entries[idx], true
}

// dropRef decrements the count and frees the storage when it reaches zero.
// The goroutine that observes zero is the one that frees; a racing drop
// that observes a negative count reports underflow and leaves the entry
// alone, so storage is never released twice.
func (p *Pool) dropRef(h Handle) releaseOutcome {
	s, ok := p.get(h)
	if !ok {
		return outcomeInvalid
	}

	switch n := s.refs.Add(-1); {
	case n > 0:
		return outcomeLive
	case n < 0:
		return outcomeUnderflow
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	idx := int(h) - 1
	if idx >= len(p.entries) || p.entries[idx] != s {
		// Slot already recycled; nothing left to free.
		return outcomeInvalid
	}

	p.entries[idx] = nil
	p.freeList = append(p.freeList, h)
	p.liveBytes.Add(-int64(len(s.data)))
	p.frees.Add(1)
	return outcomeFreed
}
