package tokenizer

import "github.com/stellanomia/vibrato-rkyv/dictionary"

// bosSentinel marks the BOS/EOS special positions (spec §3): Go has no
// natural "MAX_SENTINEL" constant to reuse the way Rust's usize::MAX
// does, so -1 plays that role here, which also reads naturally as "no
// such character index".
const bosSentinel = -1

// Node is one lattice node: spec §3's (word_id, lex_type, start_node,
// start_word, left_id, right_id, min_idx, min_cost) tuple. lpath (used
// only by the N-best lattice) lives on NBNode instead, since the 1-best
// lattice never needs it.
type Node struct {
	WordIdx   dictionary.WordIdx
	StartNode int
	StartWord int
	LeftID    uint16
	RightID   uint16
	MinIdx    int
	MinCost   int32
}

func isBOS(n Node) bool { return n.StartNode == bosSentinel }

// Lattice is the 1-best Viterbi lattice (C7).
type Lattice struct {
	ends    [][]Node // ends[end_char] holds nodes whose exclusive end is end_char
	eos     Node
	hasEOS  bool
	lenChar int
}

// Reset clears the lattice for a sentence of lenChar characters, reusing
// capacity from the previous sentence, and seeds the BOS node.
func (l *Lattice) Reset(lenChar int) {
	l.lenChar = lenChar
	need := lenChar + 1
	for len(l.ends) < need {
		l.ends = append(l.ends, nil)
	}
	for i := 0; i < need; i++ {
		l.ends[i] = l.ends[i][:0]
	}
	l.ends[0] = append(l.ends[0], Node{
		StartNode: bosSentinel,
		StartWord: bosSentinel,
		RightID:   0,
		MinCost:   0,
	})
	l.hasEOS = false
}

// HasPreviousNode reports whether any node ends exactly at boundary i.
func (l *Lattice) HasPreviousNode(i int) bool { return len(l.ends[i]) > 0 }

// BridgeEnds copies every node ending at from so it also ends at to,
// letting a zero-cost run (e.g. an ignored space) be crossed without
// inserting any node of its own.
func (l *Lattice) BridgeEnds(from, to int) {
	l.ends[to] = append(l.ends[to], l.ends[from]...)
}

// searchMin scans ends[startNode] for the predecessor minimizing
// forward cost through connector, tie-breaking with "last wins" (<=,
// not <) to match the reference engine's observed behavior (spec §4.6,
// an explicitly fixed open question).
func (l *Lattice) searchMin(startNode int, leftID uint16, connector dictionary.Connector) (minIdx int, minCost int32) {
	candidates := l.ends[startNode]
	minCost = candidates[0].MinCost + connector.Cost(candidates[0].RightID, leftID)
	minIdx = 0
	for i := 1; i < len(candidates); i++ {
		c := candidates[i].MinCost + connector.Cost(candidates[i].RightID, leftID)
		if c <= minCost {
			minCost = c
			minIdx = i
		}
	}
	return minIdx, minCost
}

// InsertNode relaxes a new edge ending at endWord.
func (l *Lattice) InsertNode(startNode, startWord, endWord int, wordIdx dictionary.WordIdx, param dictionary.WordParam, connector dictionary.Connector) {
	minIdx, minCost := l.searchMin(startNode, param.LeftID, connector)
	l.ends[endWord] = append(l.ends[endWord], Node{
		WordIdx:   wordIdx,
		StartNode: startNode,
		StartWord: startWord,
		LeftID:    param.LeftID,
		RightID:   param.RightID,
		MinIdx:    minIdx,
		MinCost:   minCost + int32(param.WordCost),
	})
}

// InsertEOS closes the lattice with the EOS sentinel, using BOS/EOS
// connection id 0 as its left_id.
func (l *Lattice) InsertEOS(startNode int, connector dictionary.Connector) {
	minIdx, minCost := l.searchMin(startNode, 0, connector)
	l.eos = Node{
		StartNode: startNode,
		StartWord: startNode,
		LeftID:    0,
		RightID:   ^uint16(0),
		MinIdx:    minIdx,
		MinCost:   minCost,
	}
	l.hasEOS = true
}

// EOS returns the EOS sentinel node, valid after InsertEOS.
func (l *Lattice) EOS() Node { return l.eos }

// TopNode is one entry of AppendTopNodes: a node paired with the
// exclusive end-character index it was referenced at.
type TopNode struct {
	Node    Node
	EndChar int
}

// AppendTopNodes walks the back-pointer chain from EOS to BOS, appending
// each visited real node together with its end_char. The result is
// last-token-first.
func (l *Lattice) AppendTopNodes(out []TopNode) []TopNode {
	cur := l.eos
	for {
		pred := l.ends[cur.StartNode][cur.MinIdx]
		if isBOS(pred) {
			return out
		}
		out = append(out, TopNode{Node: pred, EndChar: cur.StartNode})
		cur = pred
	}
}
