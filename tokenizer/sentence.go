// Package tokenizer builds the per-boundary lattice from a preprocessed
// sentence and a Dictionary, and drives the Viterbi/A* search over it
// (C1, C7, C7', C8, C9).
package tokenizer

import (
	"golang.org/x/text/unicode/norm"

	"github.com/stellanomia/vibrato-rkyv/dictionary"
)

// Sentence holds a decoded input: its characters, their byte offsets,
// and (after Compile) their per-character classification and groupable
// run lengths. Buffers are retained across ResetSentence calls so a
// Worker can tokenize many sentences without allocating in steady state.
type Sentence struct {
	raw         string
	chars       []rune
	byteOffsets []int // len = len(chars)+1
	infos       []dictionary.CharInfo
	groupable   []int
}

// Reset replaces the held buffer with a UTF-8 view of input and computes
// the character array and byte-offset index. If normalize is true, input
// is first passed through NFKC normalization (a supplemented
// preprocessing step; see SPEC_FULL.md domain stack).
func (s *Sentence) Reset(input string, normalize bool) {
	if normalize {
		input = norm.NFKC.String(input)
	}
	s.raw = input
	s.chars = s.chars[:0]
	s.byteOffsets = s.byteOffsets[:0]

	off := 0
	for _, r := range input {
		s.chars = append(s.chars, r)
		s.byteOffsets = append(s.byteOffsets, off)
		off += runeLen(r)
	}
	s.byteOffsets = append(s.byteOffsets, off)
}

func runeLen(r rune) int {
	switch {
	case r < 0x80:
		return 1
	case r < 0x800:
		return 2
	case r < 0x10000:
		return 3
	default:
		return 4
	}
}

// Compile fills, per character, its CharInfo and groupable run length
// using charProp.
func (s *Sentence) Compile(charProp *dictionary.CharProperty) {
	n := len(s.chars)
	if cap(s.infos) < n {
		s.infos = make([]dictionary.CharInfo, n)
		s.groupable = make([]int, n)
	} else {
		s.infos = s.infos[:n]
		s.groupable = s.groupable[:n]
	}
	for i, r := range s.chars {
		s.infos[i] = charProp.CharInfoAt(r)
	}
	// groupable[i] = length of the maximal run starting at i of
	// characters sharing the same base category. Computed back-to-front
	// so every position is O(1) amortized.
	for i := n - 1; i >= 0; i-- {
		if i+1 < n && s.infos[i+1].BaseID() == s.infos[i].BaseID() {
			s.groupable[i] = s.groupable[i+1] + 1
		} else {
			s.groupable[i] = 1
		}
	}
}

// LenChar returns the number of Unicode scalar values in the sentence.
func (s *Sentence) LenChar() int { return len(s.chars) }

// LenByte returns the byte length of the sentence.
func (s *Sentence) LenByte() int { return len(s.raw) }

// CharInfoAt returns the classification of the character at char index i.
func (s *Sentence) CharInfoAt(i int) dictionary.CharInfo { return s.infos[i] }

// Groupable returns the groupable run length starting at char index i.
func (s *Sentence) Groupable(i int) int { return s.groupable[i] }

// ByteOffset returns the byte offset of char index i (i may equal
// LenChar() to get the sentence's total byte length).
func (s *Sentence) ByteOffset(i int) int { return s.byteOffsets[i] }

// Surface returns the byte-sliced substring spanning
// [startChar, endChar).
func (s *Sentence) Surface(startChar, endChar int) string {
	return s.raw[s.byteOffsets[startChar]:s.byteOffsets[endChar]]
}

// Chars returns the decoded character slice, valid until the next Reset.
func (s *Sentence) Chars() []rune { return s.chars }
