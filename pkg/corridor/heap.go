package corridor

import "github.com/tdcch/tdcch/pkg/tdgraph"

// rankHeap is a concrete-typed min-heap ordering touched nodes by CCH rank,
// the frontier structure of one direction's elimination-tree walk. Since
// every CCH arc strictly increases rank, processing touched nodes in
// ascending rank order is exactly a topological sweep: by the time a node is
// popped, every arc that could still improve its bound has already been
// relaxed.
type rankHeap struct {
	items []rankItem
}

type rankItem struct {
	node tdgraph.NodeID
	rank uint32
}

func (h *rankHeap) Len() int { return len(h.items) }

func (h *rankHeap) Push(node tdgraph.NodeID, rank uint32) {
	h.items = append(h.items, rankItem{node, rank})
	h.siftUp(len(h.items) - 1)
}

func (h *rankHeap) Pop() tdgraph.NodeID {
	n := len(h.items)
	node := h.items[0].node
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return node
}

func (h *rankHeap) Reset() {
	h.items = h.items[:0]
}

func (h *rankHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[i].rank >= h.items[parent].rank {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *rankHeap) siftDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2
		if left < n && h.items[left].rank < h.items[smallest].rank {
			smallest = left
		}
		if right < n && h.items[right].rank < h.items[smallest].rank {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}
