package dictionary

import "github.com/stellanomia/vibrato-rkyv/internal/doublearray"

// U31x8 is eight packed 31-bit feature-id lanes, the width MeCab-family
// scorers pack to allow SIMD-width lookups. Lane values are constrained
// to [0, 0x7fff_ffff] (U31) by the build collaborator; this package does
// not enforce that range, only stores and looks values up.
type U31x8 [8]uint32

// Scorer is a double-array trie keyed by an encoded (template*8+lane,
// right_lane, left_lane) triple, mapping to a partial connection-cost
// contribution. Missing keys contribute zero.
type Scorer struct {
	trie    *doublearray.Trie
	entries []ScoreEntry // retained for archival re-serialization
}

// ScoreEntry is one (slot, right lane value, left lane value) -> cost
// triple used to build a Scorer.
type ScoreEntry struct {
	Slot      int32 // template*8 + lane
	RightLane uint32
	LeftLane  uint32
	Cost      int32
}

// NewScorer builds a Scorer from its entries.
func NewScorer(entries []ScoreEntry) *Scorer {
	b := doublearray.NewBuilder()
	for _, e := range entries {
		key := []rune{rune(e.Slot), rune(e.RightLane), rune(e.LeftLane)}
		b.Insert(key, uint32(e.Cost))
	}
	return &Scorer{trie: b.Build(), entries: entries}
}

// Entries returns the entries this scorer was built from.
func (s *Scorer) Entries() []ScoreEntry { return s.entries }

// Lookup returns the cost contribution for (slot, rightLane, leftLane),
// or 0 if absent.
func (s *Scorer) Lookup(slot int32, rightLane, leftLane uint32) int32 {
	key := []rune{rune(slot), rune(rightLane), rune(leftLane)}
	var found int32
	for m := range s.trie.CommonPrefixSearch(key) {
		if m.End == len(key) {
			found = int32(m.Payloads[len(m.Payloads)-1])
		}
	}
	return found
}
