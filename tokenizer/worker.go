package tokenizer

import "github.com/stellanomia/vibrato-rkyv/dictionary"

// latticeSweeper is the subset of Lattice/NbestLattice's API the
// boundary sweep in addEdges needs, letting the 1-best and N-best
// passes share one implementation of build_lattice/add_edges (spec
// §4.8) instead of duplicating the sweep twice.
type latticeSweeper interface {
	HasPreviousNode(i int) bool
	BridgeEnds(from, to int)
	InsertNode(startNode, startWord, endWord int, wordIdx dictionary.WordIdx, param dictionary.WordParam, connector dictionary.Connector)
	InsertEOS(startNode int, connector dictionary.Connector)
}

// Worker drives one Dictionary through the sentence preprocessor, the
// lattice, and (on demand) the N-best generator. A Worker is not safe
// for concurrent use; create one per goroutine via Tokenizer.NewWorker.
type Worker struct {
	dict           *dictionary.Dictionary
	normalize      bool
	ignoreSpace    bool
	spaceCateID    uint8
	maxGroupingLen int

	sent  Sentence
	lat   Lattice
	nbLat NbestLattice

	unkEntries []dictionary.UnkEntry

	views []tokenView

	nbGen   *NbestGenerator
	nbViews [][]tokenView
	nbCosts []int32
}

// ResetSentence replaces the worker's held sentence with input, ready
// for Tokenize or TokenizeNbest.
func (w *Worker) ResetSentence(input string) {
	w.sent.Reset(input, w.normalize)
	w.sent.Compile(w.dict.CharProp)
	w.views = w.views[:0]
	w.nbViews = nil
	w.nbCosts = nil
	w.nbGen = nil
}

// addEdges relaxes every edge starting at boundary pos: system lexicon
// matches, user lexicon matches, and unknown-word candidates.
func (w *Worker) addEdges(lat latticeSweeper, pos int) {
	connector := w.dict.Connector
	chars := w.sent.Chars()[pos:]
	hasDictMatch := false

	// User lexicon first, then system, matching spec §4.8's add_edges
	// order; search_min's last-wins tie-break makes insertion order
	// within a boundary observable, not just a cosmetic choice.
	if w.dict.UserLexicon != nil {
		for m := range w.dict.UserLexicon.CommonPrefixIterator(chars) {
			hasDictMatch = true
			lat.InsertNode(pos, pos, pos+m.EndCharOffs, m.WordIdx, m.Param, connector)
		}
	}
	for m := range w.dict.SystemLexicon.CommonPrefixIterator(chars) {
		hasDictMatch = true
		lat.InsertNode(pos, pos, pos+m.EndCharOffs, m.WordIdx, m.Param, connector)
	}

	w.dict.Unk.GenUnkWords(&w.sent, pos, hasDictMatch, w.maxGroupingLen, func(c dictionary.UnkCandidate) {
		id := uint32(len(w.unkEntries))
		w.unkEntries = append(w.unkEntries, c.Entry)
		wordIdx := dictionary.WordIdx{Type: dictionary.Unknown, ID: id}
		lat.InsertNode(c.StartChar, c.StartChar, c.EndChar, wordIdx, c.Entry.Param(), connector)
	})
}

// buildLattice runs the full boundary sweep over lat (spec §4.8's
// build_lattice), honoring ignore_space by bridging across a space run
// instead of inserting any node for it.
func (w *Worker) buildLattice(lat latticeSweeper) {
	w.unkEntries = w.unkEntries[:0]
	lenChar := w.sent.LenChar()

	pos := 0
	for pos < lenChar {
		if !lat.HasPreviousNode(pos) {
			pos++
			continue
		}
		if w.ignoreSpace && w.sent.CharInfoAt(pos).HasCategory(w.spaceCateID) {
			run := w.sent.Groupable(pos)
			end := pos + run
			if end > lenChar {
				end = lenChar
			}
			lat.BridgeEnds(pos, end)
			pos = end
			continue
		}
		w.addEdges(lat, pos)
		pos++
	}
	lat.InsertEOS(lenChar, w.dict.Connector)
}

// Tokenize computes the 1-best segmentation of the held sentence.
func (w *Worker) Tokenize() {
	lenChar := w.sent.LenChar()
	w.lat.Reset(lenChar)
	w.buildLattice(&w.lat)

	var tops []TopNode
	tops = w.lat.AppendTopNodes(tops[:0])

	w.views = w.views[:0]
	for i := len(tops) - 1; i >= 0; i-- {
		n := tops[i].Node
		w.views = append(w.views, tokenView{
			WordIdx:   n.WordIdx,
			StartChar: n.StartNode,
			EndChar:   tops[i].EndChar,
			LeftID:    n.LeftID,
			RightID:   n.RightID,
			WordCost:  w.wordCostOf(n.WordIdx),
			TotalCost: n.MinCost,
		})
	}
}

// wordCostOf looks up a word's own dictionary cost, resolving through
// the unknown-word table for this sentence when wordIdx.Type is Unknown.
func (w *Worker) wordCostOf(wordIdx dictionary.WordIdx) int16 {
	switch wordIdx.Type {
	case dictionary.System:
		return w.dict.SystemLexicon.WordParam(wordIdx.ID).WordCost
	case dictionary.User:
		return w.dict.UserLexicon.WordParam(wordIdx.ID).WordCost
	default:
		return w.unkEntries[wordIdx.ID].WordCost
	}
}

// TokenLen returns the number of tokens in the last Tokenize result.
func (w *Worker) TokenLen() int { return len(w.views) }

// Token returns the i'th token of the last Tokenize result.
func (w *Worker) Token(i int) Token { return Token{w: w, v: w.views[i]} }

// TokenIter returns a forward iterator over the last Tokenize result.
func (w *Worker) TokenIter() *TokenIter { return &TokenIter{w: w, views: w.views} }

// TokenizeNbest computes up to n best segmentations of the held
// sentence, in non-decreasing cost order, via A* search (C9).
func (w *Worker) TokenizeNbest(n int) {
	lenChar := w.sent.LenChar()
	w.nbLat.Reset(lenChar)
	w.buildLattice(&w.nbLat)

	gen := NewNbestGenerator(&w.nbLat, w.dict.Connector)
	w.nbViews = w.nbViews[:0]
	w.nbCosts = w.nbCosts[:0]
	for i := 0; i < n; i++ {
		nodes, cost, ok := gen.Next()
		if !ok {
			break
		}
		views := make([]tokenView, len(nodes))
		for j, nd := range nodes {
			views[j] = tokenView{
				WordIdx:  nd.WordIdx,
				StartChar: nd.StartNode,
				LeftID:   nd.LeftID,
				RightID:  nd.RightID,
				WordCost: nd.WordCost,
			}
		}
		// NBNode retains start_node but not end_char; recover it from
		// the next token's start (or the sentence length for the last
		// token). TotalCost is not filled in for N-best tokens and stays
		// 0; the path total is reported by PathCost instead, since a
		// per-token value would require replaying connector costs along
		// the path.
		for j := range views {
			if j+1 < len(views) {
				views[j].EndChar = views[j+1].StartChar
			} else {
				views[j].EndChar = lenChar
			}
		}
		w.nbViews = append(w.nbViews, views)
		w.nbCosts = append(w.nbCosts, cost)
	}
}

// NbestLen returns the number of paths produced by the last
// TokenizeNbest call.
func (w *Worker) NbestLen() int { return len(w.nbViews) }

// PathCost returns the total cost of the i'th N-best path.
func (w *Worker) PathCost(i int) int32 { return w.nbCosts[i] }

// NbestTokenIter returns a forward iterator over the i'th N-best path.
func (w *Worker) NbestTokenIter(i int) *TokenIter { return &TokenIter{w: w, views: w.nbViews[i]} }
