// Package doublearray implements a double-array trie supporting
// common-prefix enumeration over sequences of Unicode scalar values.
//
// There is no ready-made double-array trie library in the dependency
// corpus this project was grounded on, so this is a hand-written minimal
// implementation of the classic algorithm (BASE/CHECK transition arrays,
// incremental base-slot search). It backs both the lexicon index (C2) and
// the Raw connector's feature-template scorer (C4).
package doublearray

import "sort"

const nilCheck = int32(-1)

// Builder incrementally constructs a trie from (key, payload) pairs. Two
// inserts of the same key accumulate payloads on the same terminal node,
// modeling homograph dictionary entries that share one surface.
type Builder struct {
	children []map[int32]int32
	payloads [][]uint32
	alphabet map[rune]int32
	nextCode int32
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		children: []map[int32]int32{make(map[int32]int32)},
		payloads: [][]uint32{nil},
		alphabet: make(map[rune]int32),
		nextCode: 1,
	}
}

func (b *Builder) codeOf(r rune) int32 {
	if c, ok := b.alphabet[r]; ok {
		return c
	}
	c := b.nextCode
	b.alphabet[r] = c
	b.nextCode++
	return c
}

// Insert adds key with an associated payload.
func (b *Builder) Insert(key []rune, payload uint32) {
	cur := int32(0)
	for _, r := range key {
		code := b.codeOf(r)
		child, ok := b.children[cur][code]
		if !ok {
			child = int32(len(b.children))
			b.children = append(b.children, make(map[int32]int32))
			b.payloads = append(b.payloads, nil)
			b.children[cur][code] = child
		}
		cur = child
	}
	b.payloads[cur] = append(b.payloads[cur], payload)
}

// Build compiles the trie into its immutable double-array form. The
// builder must not be reused afterward.
func (b *Builder) Build() *Trie {
	n := len(b.children)
	t := &Trie{
		base:     make([]int32, 1, n*2),
		check:    make([]int32, 1, n*2),
		payloads: make([][]uint32, 1, n*2),
		alphabet: b.alphabet,
	}
	t.check[0] = nilCheck
	t.payloads[0] = b.payloads[0]

	type queued struct{ tempID, realID int32 }
	queue := []queued{{0, 0}}

	grow := func(upTo int32) {
		for int32(len(t.check)) <= upTo {
			t.base = append(t.base, 0)
			t.check = append(t.check, nilCheck)
			t.payloads = append(t.payloads, nil)
		}
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		children := b.children[cur.tempID]
		if len(children) == 0 {
			continue
		}
		codes := make([]int32, 0, len(children))
		for c := range children {
			codes = append(codes, c)
		}
		sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

		base := t.findFreeBase(codes)
		t.base[cur.realID] = base
		for _, c := range codes {
			slot := base + c
			grow(slot)
			t.check[slot] = cur.realID
			t.payloads[slot] = b.payloads[children[c]]
			queue = append(queue, queued{children[c], slot})
		}
	}
	return t
}

func (t *Trie) findFreeBase(codes []int32) int32 {
	for base := int32(1); ; base++ {
		ok := true
		for _, c := range codes {
			slot := base + c
			if slot >= 0 && int(slot) < len(t.check) && t.check[slot] != nilCheck {
				ok = false
				break
			}
		}
		if ok {
			return base
		}
	}
}

// Trie is the immutable, built double-array trie.
type Trie struct {
	base     []int32
	check    []int32
	payloads [][]uint32 // indexed by state id
	alphabet map[rune]int32
}

// Match is one hit yielded by CommonPrefixSearch.
type Match struct {
	// End is the number of runes of the queried sequence consumed to
	// reach this terminal.
	End int
	// Payloads are the values attached to this terminal via Insert.
	Payloads []uint32
}

// CommonPrefixSearch walks key rune by rune from the trie root and yields
// one Match per terminal node encountered along the path. The sequence is
// lazy and finite; the caller must not rely on yield order beyond
// increasing End.
func (t *Trie) CommonPrefixSearch(key []rune) func(yield func(Match) bool) {
	return func(yield func(Match) bool) {
		s := int32(0)
		for i, r := range key {
			code, ok := t.alphabet[r]
			if !ok {
				return
			}
			slot := t.base[s] + code
			if slot < 0 || int(slot) >= len(t.check) || t.check[slot] != s {
				return
			}
			s = slot
			if len(t.payloads[s]) > 0 {
				if !yield(Match{End: i + 1, Payloads: t.payloads[s]}) {
					return
				}
			}
		}
	}
}
