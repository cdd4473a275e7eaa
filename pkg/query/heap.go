package query

import "github.com/tdcch/tdcch/pkg/tdgraph"

// arrivalHeap is a concrete-typed min-heap keyed by a float64 priority
// (tentative arrival plus A* potential), the same avoid-container/heap-
// boxing shape as pkg/corridor's rankHeap, with its uint32 rank key
// replaced by float64 seconds since travel times here are continuous.
type arrivalHeap struct {
	items []arrivalItem
}

type arrivalItem struct {
	node     tdgraph.NodeID
	priority float64
}

func (h *arrivalHeap) Len() int { return len(h.items) }

func (h *arrivalHeap) Push(node tdgraph.NodeID, priority float64) {
	h.items = append(h.items, arrivalItem{node, priority})
	h.siftUp(len(h.items) - 1)
}

func (h *arrivalHeap) Pop() arrivalItem {
	n := len(h.items)
	item := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return item
}

func (h *arrivalHeap) Reset() {
	h.items = h.items[:0]
}

func (h *arrivalHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[i].priority >= h.items[parent].priority {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *arrivalHeap) siftDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2
		if left < n && h.items[left].priority < h.items[smallest].priority {
			smallest = left
		}
		if right < n && h.items[right].priority < h.items[smallest].priority {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}
