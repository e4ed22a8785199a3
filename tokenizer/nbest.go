package tokenizer

import (
	"container/heap"

	"github.com/stellanomia/vibrato-rkyv/dictionary"
)

// nbPathStep is a persistent (immutable, shared-tail) linked list node
// used to reconstruct a partial path without copying it on every queue
// push.
type nbPathStep struct {
	node int32
	prev *nbPathStep
}

type nbItem struct {
	node         int32
	backwardCost int32
	priority     int32
	path         *nbPathStep
}

// nbHeap is a min-heap of nbItem ordered by ascending priority:
// container/heap always pops the element for which Less is smallest.
type nbHeap []nbItem

func (h nbHeap) Len() int            { return len(h) }
func (h nbHeap) Less(i, j int) bool  { return h[i].priority < h[j].priority }
func (h nbHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *nbHeap) Push(x interface{}) { *h = append(*h, x.(nbItem)) }
func (h *nbHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// NbestGenerator is a lazy, finite A* enumerator over a completed
// NbestLattice (C9), yielding paths in strictly non-decreasing cost
// order. The forward min_cost computed during lattice construction is
// an exact, hence admissible and consistent, heuristic, so pop order is
// optimal.
type NbestGenerator struct {
	lat       *NbestLattice
	connector dictionary.Connector
	pq        nbHeap
}

// NewNbestGenerator initializes the search over lat.
func NewNbestGenerator(lat *NbestLattice, connector dictionary.Connector) *NbestGenerator {
	eos := lat.nodes[lat.eosIdx]
	g := &NbestGenerator{lat: lat, connector: connector}
	g.pq = nbHeap{{
		node:         lat.eosIdx,
		backwardCost: 0,
		priority:     eos.MinCost,
		path:         &nbPathStep{node: lat.eosIdx},
	}}
	heap.Init(&g.pq)
	return g
}

// Next pops the next-best path. ok is false once the queue is exhausted.
// Returned nodes are ordered BOS->EOS with BOS/EOS filtered out.
func (g *NbestGenerator) Next() (nodes []NBNode, cost int32, ok bool) {
	for len(g.pq) > 0 {
		item := heap.Pop(&g.pq).(nbItem)
		for {
			cur := g.lat.nodes[item.node]
			if isBOSNB(cur) {
				return g.reify(item.path), item.priority, true
			}
			// The first incoming edge that keeps item's priority is followed
			// directly instead of being queued. lpath lists the most recently
			// inserted predecessor first, which is the one searchMin's
			// last-wins tie-break keeps, so on cost ties the first path
			// produced is the 1-best path.
			var next nbItem
			found := false
			for e := cur.LpathHead; e != -1; e = g.lat.edges[e].Next {
				predIdx := g.lat.edges[e].Pred
				pred := g.lat.nodes[predIdx]
				newBackward := item.backwardCost + g.connector.Cost(pred.RightID, cur.LeftID) + int32(cur.WordCost)
				newPriority := newBackward + pred.MinCost
				child := nbItem{
					node:         predIdx,
					backwardCost: newBackward,
					priority:     newPriority,
					path:         &nbPathStep{node: predIdx, prev: item.path},
				}
				if !found && newPriority == item.priority {
					next, found = child, true
					continue
				}
				heap.Push(&g.pq, child)
			}
			if !found {
				break
			}
			item = next
		}
	}
	return nil, 0, false
}

func (g *NbestGenerator) reify(path *nbPathStep) []NBNode {
	var nodes []NBNode
	for s := path; s != nil; s = s.prev {
		n := g.lat.nodes[s.node]
		if isBOSNB(n) || isEOSNB(n) {
			continue
		}
		nodes = append(nodes, n)
	}
	return nodes
}
