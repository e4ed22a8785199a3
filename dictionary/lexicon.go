package dictionary

import "github.com/stellanomia/vibrato-rkyv/internal/doublearray"

// LexiconEntry is one (surface, params, feature) triple used to build a
// Lexicon. word_id is assigned as the entry's position in the slice
// passed to NewLexicon.
type LexiconEntry struct {
	Surface []rune
	Param   WordParam
	Feature string
}

// Lexicon is the trie-indexed dictionary index (C2): a double-array trie
// over surfaces, a param table indexed by word_id, and a feature table
// (flat string concatenation with an offset index per word_id).
//
// The reference design keeps the trie-terminal-to-word_id mapping in a
// separate "postings" array; here it lives directly in the trie's
// terminal payload set (doublearray.Trie already maps a terminal to zero
// or more uint32 payloads), which removes one indirection without
// changing the observable contract: common_prefix_iterator still yields
// only indices valid in both the param and feature tables.
type Lexicon struct {
	trie           *doublearray.Trie
	surfaces       [][]rune // indexed by word_id; retained for archival re-serialization
	params         []WordParam
	featureOffsets []int
	features       string
	lexType        LexType
}

// NewLexicon builds a Lexicon of the given type from entries.
func NewLexicon(entries []LexiconEntry, lexType LexType) *Lexicon {
	b := doublearray.NewBuilder()
	surfaces := make([][]rune, len(entries))
	params := make([]WordParam, len(entries))
	offsets := make([]int, len(entries)+1)
	var features []byte

	for id, e := range entries {
		b.Insert(e.Surface, uint32(id))
		surfaces[id] = e.Surface
		params[id] = e.Param
		offsets[id] = len(features)
		features = append(features, e.Feature...)
	}
	offsets[len(entries)] = len(features)

	return &Lexicon{
		trie:           b.Build(),
		surfaces:       surfaces,
		params:         params,
		featureOffsets: offsets,
		features:       string(features),
		lexType:        lexType,
	}
}

// LexType returns the fixed lex_type of this lexicon instance.
func (l *Lexicon) LexType() LexType { return l.lexType }

// Len returns the number of words in this lexicon.
func (l *Lexicon) Len() int { return len(l.params) }

// WordParam returns the (left_id, right_id, word_cost) of a word.
func (l *Lexicon) WordParam(wordID uint32) WordParam {
	return l.params[wordID]
}

// WordFeature returns the opaque feature string of a word.
func (l *Lexicon) WordFeature(wordID uint32) string {
	return l.features[l.featureOffsets[wordID]:l.featureOffsets[wordID+1]]
}

// CommonPrefixMatch is one hit from CommonPrefixIterator.
type CommonPrefixMatch struct {
	WordIdx     WordIdx
	EndCharOffs int
	Param       WordParam
}

// CommonPrefixIterator yields every word beginning at the start of chars
// that is a prefix of it, in unspecified order. The consumer must not
// rely on ordering within a start position.
func (l *Lexicon) CommonPrefixIterator(chars []rune) func(yield func(CommonPrefixMatch) bool) {
	return func(yield func(CommonPrefixMatch) bool) {
		for m := range l.trie.CommonPrefixSearch(chars) {
			for _, wordID := range m.Payloads {
				cm := CommonPrefixMatch{
					WordIdx:     WordIdx{Type: l.lexType, ID: wordID},
					EndCharOffs: m.End,
					Param:       l.params[wordID],
				}
				if !yield(cm) {
					return
				}
			}
		}
	}
}

// Entries reconstructs the (surface, param, feature) triples this
// lexicon was built from, in word_id order. Used by the archive writer;
// round-tripping through NewLexicon(l.Entries(), l.LexType()) preserves
// tokenization behavior even though it does not reproduce the original
// trie's internal layout byte-for-byte.
func (l *Lexicon) Entries() []LexiconEntry {
	entries := make([]LexiconEntry, len(l.params))
	for id := range l.params {
		entries[id] = LexiconEntry{
			Surface: l.surfaces[id],
			Param:   l.params[id],
			Feature: l.WordFeature(uint32(id)),
		}
	}
	return entries
}

// Verify checks that every left_id/right_id is in range for connector.
func (l *Lexicon) Verify(connector Connector) bool {
	for _, p := range l.params {
		if int(p.LeftID) >= connector.NumLeft() || int(p.RightID) >= connector.NumRight() {
			return false
		}
	}
	return true
}

// MapConnectionIDs rewrites every param's ids in place through mapper.
func (l *Lexicon) MapConnectionIDs(mapper *ConnIdMapper) {
	for i := range l.params {
		l.params[i].LeftID = mapper.Left(l.params[i].LeftID)
		l.params[i].RightID = mapper.Right(l.params[i].RightID)
	}
}
