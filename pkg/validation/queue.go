package validation

import (
	"fmt"

	queue "github.com/yireyun/go-queue"
)

const DefaultQueueCapacity = 1024

// PendingQueue keeps results in arrival order until they are released. It is
// backed by a fixed ring that is replaced by one twice as large when full.
// PendingQueue is owned by a single goroutine.
type PendingQueue struct {
	ring *queue.EsQueue
}

func NewPendingQueue(capacity uint32) *PendingQueue {
	if capacity < 4 {
		capacity = DefaultQueueCapacity
	}
	return &PendingQueue{
		ring: queue.NewQueue(capacity),
	}
}

func (pq *PendingQueue) Len() int { return int(pq.ring.Quantity()) }

func (pq *PendingQueue) Capacity() int { return int(pq.ring.Capaciity()) }

func (pq *PendingQueue) Push(r Result) {
	pq.put(r)
}

func (pq *PendingQueue) put(v interface{}) {
	for {
		if ok, _ := pq.ring.Put(v); ok {
			return
		}
		pq.grow()
	}
}

func (pq *PendingQueue) grow() {
	next := queue.NewQueue(pq.ring.Capaciity() * 2)
	for {
		v, ok, _ := pq.ring.Get()
		if !ok {
			break
		}
		if ok, _ = next.Put(v); !ok {
			panic("logic error")
		}
	}
	pq.ring = next
}

func (pq *PendingQueue) drain() []Result {
	items := make([]Result, 0, pq.ring.Quantity())
	for {
		v, ok, _ := pq.ring.Get()
		if !ok {
			break
		}
		items = append(items, v.(Result))
	}
	return items
}

// Release removes every result with ID <= ref and returns them in arrival
// order. Results above ref keep their relative order for a later release.
func (pq *PendingQueue) Release(ref uint64) []Result {
	items := pq.drain()
	released := make([]Result, 0, len(items))
	for _, r := range items {
		if r.ID <= ref {
			released = append(released, r)
		} else {
			pq.put(r)
		}
	}
	return released
}

func (pq *PendingQueue) String() string {
	return fmt.Sprintf("PENDING[len=%d,cap=%d]", pq.Len(), pq.Capacity())
}
