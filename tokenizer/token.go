package tokenizer

import "github.com/stellanomia/vibrato-rkyv/dictionary"

// tokenView is the resolved, dictionary-agnostic shape shared by both
// the 1-best and N-best result sets; Token wraps it with the Worker
// needed to resolve surface/feature text.
type tokenView struct {
	WordIdx   dictionary.WordIdx
	StartChar int
	EndChar   int
	LeftID    uint16
	RightID   uint16
	WordCost  int16
	TotalCost int32
}

// Token is a read-only view over one segmented word: its surface,
// feature string, connection ids and costs, and its character/byte
// ranges. Token accessors assume a successful preceding Tokenize call.
type Token struct {
	w *Worker
	v tokenView
}

// Surface returns the token's text, byte-sliced from the sentence.
func (t Token) Surface() string { return t.w.sent.Surface(t.v.StartChar, t.v.EndChar) }

// Feature returns the token's opaque feature payload.
func (t Token) Feature() string {
	switch t.v.WordIdx.Type {
	case dictionary.System:
		return t.w.dict.SystemLexicon.WordFeature(t.v.WordIdx.ID)
	case dictionary.User:
		return t.w.dict.UserLexicon.WordFeature(t.v.WordIdx.ID)
	default:
		return t.w.unkEntries[t.v.WordIdx.ID].Feature
	}
}

// LexType returns the token's lexicon origin.
func (t Token) LexType() dictionary.LexType { return t.v.WordIdx.Type }

// WordIdx returns the token's stable (lex_type, word_id) key.
func (t Token) WordIdx() dictionary.WordIdx { return t.v.WordIdx }

// LeftID returns the token's left connection id.
func (t Token) LeftID() uint16 { return t.v.LeftID }

// RightID returns the token's right connection id.
func (t Token) RightID() uint16 { return t.v.RightID }

// WordCost returns the token's own dictionary cost.
func (t Token) WordCost() int16 { return t.v.WordCost }

// TotalCost returns the cumulative best-path cost through this token.
func (t Token) TotalCost() int32 { return t.v.TotalCost }

// RangeChar returns [startChar, endChar).
func (t Token) RangeChar() (int, int) { return t.v.StartChar, t.v.EndChar }

// RangeByte returns the token's byte range within the sentence.
func (t Token) RangeByte() (int, int) {
	return t.w.sent.ByteOffset(t.v.StartChar), t.w.sent.ByteOffset(t.v.EndChar)
}

// TokenIter is a forward iterator over one result's tokens, in sentence
// order (left to right).
type TokenIter struct {
	w      *Worker
	views  []tokenView
	cursor int
}

// Next returns the next token, or ok=false when exhausted.
func (it *TokenIter) Next() (Token, bool) {
	if it.cursor >= len(it.views) {
		return Token{}, false
	}
	tok := Token{w: it.w, v: it.views[it.cursor]}
	it.cursor++
	return tok, true
}
