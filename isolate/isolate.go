package isolate

import (
	"sync"
	"sync/atomic"

	enginebridge "github.com/plugkit/engine-bridge"
	"github.com/plugkit/engine-bridge/errors"
)

var isolateSeq atomic.Uint64

// Isolate is one independent host execution context. It stands in for the
// embedding runtime's isolate: it owns the prologue hook list and drives
// collection cycles. Script-visible callbacks, including the prologue
// hooks, run on whichever goroutine calls Collect; the contract is
// single-threaded cooperative scheduling, so the caller must not run
// Collect concurrently with itself.
type Isolate struct {
	id          uint64
	hooks       []enginebridge.PrologueHook
	mu          sync.Mutex
	closed      bool
	collections atomic.Uint64
}

// New creates a fresh isolate with a process-unique identity.
func New() *Isolate {
	return &Isolate{
		id: isolateSeq.Add(1),
	}
}

// ID returns the isolate's process-unique identity.
func (i *Isolate) ID() uint64 {
	return i.id
}

// AddGCPrologue registers a hook invoked before each collection cycle, in
// registration order. Registration fails once the isolate is closed.
func (i *Isolate) AddGCPrologue(hook enginebridge.PrologueHook) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return errors.Closed(errors.PhaseRegister, "isolate")
	}
	i.hooks = append(i.hooks, hook)
	return nil
}

// Collect runs one collection cycle: every prologue hook, in order, to
// completion. Hooks registered after a closed isolate never run; hooks on a
// live isolate always do, even when there is nothing to reclaim.
func (i *Isolate) Collect() {
	i.mu.Lock()
	hooks := make([]enginebridge.PrologueHook, len(i.hooks))
	copy(hooks, i.hooks)
	i.mu.Unlock()

	for _, hook := range hooks {
		hook()
	}
	i.collections.Add(1)
}

// Collections returns how many collection cycles have run.
func (i *Isolate) Collections() uint64 {
	return i.collections.Load()
}

// PrologueHooks returns the number of registered hooks.
func (i *Isolate) PrologueHooks() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.hooks)
}

// Close tears the isolate down. Hook registrations are dropped; further
// registrations fail. Collect on a closed isolate is a no-op.
func (i *Isolate) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return nil
	}
	i.closed = true
	i.hooks = nil
	return nil
}
