package doublearray_test

import (
	"testing"

	"github.com/stellanomia/vibrato-rkyv/internal/doublearray"
)

// TestCommonPrefixSearchYieldsAllTerminals confirms that when one
// inserted key is a prefix of another (言語 vs 言語処理), both terminals
// are yielded, in increasing End order. Tokenizer correctness for
// scenario S1 (自然 as a prefix of 自然言語) depends on the shorter match
// not being silently dropped.
func TestCommonPrefixSearchYieldsAllTerminals(t *testing.T) {
	b := doublearray.NewBuilder()
	b.Insert([]rune("言語"), 1)
	b.Insert([]rune("言語処理"), 2)
	trie := b.Build()

	var got []doublearray.Match
	for m := range trie.CommonPrefixSearch([]rune("言語処理学")) {
		got = append(got, m)
	}

	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2: %+v", len(got), got)
	}
	if got[0].End != 2 || got[0].Payloads[0] != 1 {
		t.Errorf("match 0 = %+v, want End=2 Payloads=[1]", got[0])
	}
	if got[1].End != 4 || got[1].Payloads[0] != 2 {
		t.Errorf("match 1 = %+v, want End=4 Payloads=[2]", got[1])
	}
}

// TestCommonPrefixSearchNoMatch confirms an absent prefix yields nothing.
func TestCommonPrefixSearchNoMatch(t *testing.T) {
	b := doublearray.NewBuilder()
	b.Insert([]rune("自然"), 1)
	trie := b.Build()

	for range trie.CommonPrefixSearch([]rune("言語")) {
		t.Fatal("expected no matches for an unrelated prefix")
	}
}

// TestCommonPrefixSearchMultiplePayloadsPerTerminal confirms duplicate
// keys accumulate payloads on the same terminal rather than overwriting.
func TestCommonPrefixSearchMultiplePayloadsPerTerminal(t *testing.T) {
	b := doublearray.NewBuilder()
	b.Insert([]rune("橋"), 10)
	b.Insert([]rune("橋"), 20)
	trie := b.Build()

	var matches []doublearray.Match
	for m := range trie.CommonPrefixSearch([]rune("橋")) {
		matches = append(matches, m)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if len(matches[0].Payloads) != 2 || matches[0].Payloads[0] != 10 || matches[0].Payloads[1] != 20 {
		t.Errorf("payloads = %v, want [10 20]", matches[0].Payloads)
	}
}
