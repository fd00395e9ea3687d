package buffer

import (
	"sync/atomic"
)

// releaseQueue is the pending-release set: a lock-free multi-producer,
// single-consumer stack of handles awaiting their final decrement.
// Producers are wrapper finalizers on arbitrary goroutines; the single
// consumer is the reclaimer on the isolate goroutine.
type releaseQueue struct {
	head atomic.Pointer[releaseNode]
}

type releaseNode struct {
	next *releaseNode
	h    Handle
}

func (q *releaseQueue) push(h Handle) {
	n := &releaseNode{h: h}
	for {
		old := q.head.Load()
		n.next = old
		if q.head.CompareAndSwap(old, n) {
			return
		}
	}
}

// drain detaches the whole queue in one swap and returns the handles in
// enqueue order. Pushes that race with the swap land on the fresh head and
// are observed by the next drain.
func (q *releaseQueue) drain() []Handle {
	n := q.head.Swap(nil)
	if n == nil {
		return nil
	}

	var count int
	for p := n; p != nil; p = p.next {
		count++
	}

	// The stack yields newest-first; reverse to enqueue order.
	batch := make([]Handle, count)
	for i := count - 1; i >= 0; i-- {
		batch[i] = n.h
		n = n.next
	}
	return batch
}

func (q *releaseQueue) empty() bool {
	return q.head.Load() == nil
}
