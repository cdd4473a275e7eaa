package testgraph

import "container/heap"

// orderEntry is one node's current priority in the elimination queue, the
// same node/priority/index shape the contraction-order priority queue
// uses, minus anything weight- or witness-related: this elimination order
// is purely about chordal-supergraph topology, not shortcut travel times.
type orderEntry struct {
	node     uint32
	priority int
	index    int
}

type orderQueue []*orderEntry

func (pq orderQueue) Len() int            { return len(pq) }
func (pq orderQueue) Less(i, j int) bool  { return pq[i].priority < pq[j].priority }
func (pq orderQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}
func (pq *orderQueue) Push(x any) {
	entry := x.(*orderEntry)
	entry.index = len(*pq)
	*pq = append(*pq, entry)
}
func (pq *orderQueue) Pop() any {
	old := *pq
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil
	entry.index = -1
	*pq = old[:n-1]
	return entry
}

// EliminationOrder computes a min-edge-difference elimination permutation
// over an undirected adjacency derived from adj (treating adj[u] as u's
// undirected neighbor set, already deduplicated and without self-loops):
// repeatedly eliminate the node whose elimination would add the fewest
// fill-in edges, the same greedy lazy-priority-recompute idiom as a
// contraction priority queue, minus any shortcut/witness bookkeeping since
// only the chordal topology matters for a test fixture's CCH.
//
// Returns perm, where perm[rank] is the node eliminated at that rank —
// exactly the cchPerm tdgraph.BuildStaticCCH expects.
func EliminationOrder(numNodes int, adj [][]uint32) []uint32 {
	neighbors := make([]map[uint32]bool, numNodes)
	for v := 0; v < numNodes; v++ {
		neighbors[v] = make(map[uint32]bool, len(adj[v]))
		for _, w := range adj[v] {
			if w != uint32(v) {
				neighbors[v][w] = true
			}
		}
	}
	eliminated := make([]bool, numNodes)

	priorityOf := func(v uint32) int {
		return edgeDifference(neighbors, eliminated, v)
	}

	pq := make(orderQueue, numNodes)
	for v := 0; v < numNodes; v++ {
		pq[v] = &orderEntry{node: uint32(v), priority: priorityOf(uint32(v)), index: v}
	}
	heap.Init(&pq)

	perm := make([]uint32, 0, numNodes)
	for pq.Len() > 0 {
		entry := heap.Pop(&pq).(*orderEntry)
		v := entry.node
		if eliminated[v] {
			continue
		}

		newPriority := priorityOf(v)
		if pq.Len() > 0 && newPriority > pq[0].priority {
			entry.priority = newPriority
			heap.Push(&pq, entry)
			continue
		}

		// Eliminate v: connect every pair of its still-active neighbors
		// (fill-in), then mark it gone.
		var active []uint32
		for w := range neighbors[v] {
			if !eliminated[w] {
				active = append(active, w)
			}
		}
		for i := 0; i < len(active); i++ {
			for j := i + 1; j < len(active); j++ {
				a, b := active[i], active[j]
				neighbors[a][b] = true
				neighbors[b][a] = true
			}
		}
		eliminated[v] = true
		perm = append(perm, v)
	}
	return perm
}

// edgeDifference is the classic min-degree/min-fill priority: how many new
// fill-in edges eliminating v would add, minus how many of its incident
// edges disappear with it. Lower means "cheaper to eliminate now".
func edgeDifference(neighbors []map[uint32]bool, eliminated []bool, v uint32) int {
	var active []uint32
	for w := range neighbors[v] {
		if !eliminated[w] {
			active = append(active, w)
		}
	}
	existing := 0
	for i := 0; i < len(active); i++ {
		for j := i + 1; j < len(active); j++ {
			if neighbors[active[i]][active[j]] {
				existing++
			}
		}
	}
	possible := len(active) * (len(active) - 1) / 2
	return (possible - existing) - len(active)
}
