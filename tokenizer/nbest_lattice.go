package tokenizer

import "github.com/stellanomia/vibrato-rkyv/dictionary"

// NBNode is the N-best lattice's node record: the same forward fields as
// Node, plus its own word cost (needed by the A* backward pass) and the
// head of its lpath — the linked list of every incoming edge whose
// predecessor is connected to BOS (spec §4.7).
type NBNode struct {
	WordIdx   dictionary.WordIdx
	StartNode int
	StartWord int
	LeftID    uint16
	RightID   uint16
	WordCost  int16
	MinCost   int32
	LpathHead int32 // index into the edge arena, -1 if none
}

func isBOSNB(n NBNode) bool { return n.StartNode == bosSentinel }
func isEOSNB(n NBNode) bool { return n.RightID == ^uint16(0) }

// nbEdge is one incoming-edge record in the lpath linked list.
type nbEdge struct {
	Pred int32 // arena index of the predecessor node
	Next int32 // next edge in this node's lpath, or -1
}

// NbestLattice is the N-best variant of the lattice (C7'): nodes and
// edges are allocated in flat slices that act as a bump arena, reset
// (truncated, not deallocated) once per sentence, the way the teacher's
// HNSW graph reuses its node slice across inserts.
type NbestLattice struct {
	nodes  []NBNode
	edges  []nbEdge
	ends   [][]int32 // ends[end_char] holds arena indices
	eosIdx int32

	lenChar int
}

// Reset clears the arena and seeds the BOS node, reusing capacity.
func (l *NbestLattice) Reset(lenChar int) {
	l.lenChar = lenChar
	l.nodes = l.nodes[:0]
	l.edges = l.edges[:0]

	need := lenChar + 1
	for len(l.ends) < need {
		l.ends = append(l.ends, nil)
	}
	for i := 0; i < need; i++ {
		l.ends[i] = l.ends[i][:0]
	}

	bosIdx := int32(len(l.nodes))
	l.nodes = append(l.nodes, NBNode{StartNode: bosSentinel, StartWord: bosSentinel, RightID: 0, MinCost: 0, LpathHead: -1})
	l.ends[0] = append(l.ends[0], bosIdx)
}

// HasPreviousNode reports whether any node ends exactly at boundary i.
func (l *NbestLattice) HasPreviousNode(i int) bool { return len(l.ends[i]) > 0 }

// BridgeEnds copies every node ending at from so it also ends at to; see
// Lattice.BridgeEnds.
func (l *NbestLattice) BridgeEnds(from, to int) {
	l.ends[to] = append(l.ends[to], l.ends[from]...)
}

func (l *NbestLattice) searchMinAndLpath(startNode int, leftID uint16, connector dictionary.Connector) (minIdx int32, minCost int32, lpathHead int32) {
	candidates := l.ends[startNode]
	minCost = l.nodes[candidates[0]].MinCost + connector.Cost(l.nodes[candidates[0]].RightID, leftID)
	minIdx = candidates[0]

	lpathHead = int32(-1)
	for _, idx := range candidates {
		n := l.nodes[idx]
		edgeIdx := int32(len(l.edges))
		l.edges = append(l.edges, nbEdge{Pred: idx, Next: lpathHead})
		lpathHead = edgeIdx
		c := n.MinCost + connector.Cost(n.RightID, leftID)
		if c <= minCost {
			minCost = c
			minIdx = idx
		}
	}
	return minIdx, minCost, lpathHead
}

// InsertNode mirrors Lattice.InsertNode but additionally records the
// lpath of every incoming edge.
func (l *NbestLattice) InsertNode(startNode, startWord, endWord int, wordIdx dictionary.WordIdx, param dictionary.WordParam, connector dictionary.Connector) {
	_, minCost, lpathHead := l.searchMinAndLpath(startNode, param.LeftID, connector)
	idx := int32(len(l.nodes))
	l.nodes = append(l.nodes, NBNode{
		WordIdx:   wordIdx,
		StartNode: startNode,
		StartWord: startWord,
		LeftID:    param.LeftID,
		RightID:   param.RightID,
		WordCost:  param.WordCost,
		MinCost:   minCost + int32(param.WordCost),
		LpathHead: lpathHead,
	})
	l.ends[endWord] = append(l.ends[endWord], idx)
}

// InsertEOS closes the lattice with the EOS sentinel.
func (l *NbestLattice) InsertEOS(startNode int, connector dictionary.Connector) {
	_, minCost, lpathHead := l.searchMinAndLpath(startNode, 0, connector)
	idx := int32(len(l.nodes))
	l.nodes = append(l.nodes, NBNode{
		StartNode: startNode,
		StartWord: startNode,
		LeftID:    0,
		RightID:   ^uint16(0),
		MinCost:   minCost,
		LpathHead: lpathHead,
	})
	l.eosIdx = idx
}
