// Package tokenizer_test exercises the end-to-end scenarios from the
// system's design document (greedy disambiguation, unknown-word
// fallback and prefix handling, empty input, and N-best monotonicity)
// against dictionaries built directly from in-memory fixtures.
package tokenizer_test

import (
	"testing"

	"github.com/stellanomia/vibrato-rkyv/dictionary"
	"github.com/stellanomia/vibrato-rkyv/tokenizer"
)

// buildDict assembles a single-category, single-connection-class
// dictionary: every word uses left_id=right_id=0 and the matrix
// connector is always zero cost, so only word costs (and the unknown
// template's cost) decide the best path.
func buildDict(t *testing.T, entries []dictionary.LexiconEntry, invoke, group bool, length uint8, unkCost int16) *dictionary.Dictionary {
	t.Helper()

	lex := dictionary.NewLexicon(entries, dictionary.System)
	connector, err := dictionary.NewMatrixConnector([]int16{0}, 1, 1)
	if err != nil {
		t.Fatalf("NewMatrixConnector: %v", err)
	}
	charProp := dictionary.NewCharProperty(
		[]string{"DEFAULT"},
		dictionary.NewCharInfo(1, 0, invoke, group, length),
		nil,
	)
	unk := dictionary.NewUnkHandler(1, []dictionary.UnkEntry{
		{CateID: 0, LeftID: 0, RightID: 0, WordCost: unkCost, Feature: "*"},
	})

	dict, err := dictionary.New(lex, nil, connector, charProp, unk)
	if err != nil {
		t.Fatalf("dictionary.New: %v", err)
	}
	return dict
}

var sharedLexicon = []dictionary.LexiconEntry{
	{Surface: []rune("自然"), Param: dictionary.WordParam{WordCost: 1}, Feature: "sizen"},
	{Surface: []rune("言語"), Param: dictionary.WordParam{WordCost: 4}, Feature: "gengo"},
	{Surface: []rune("処理"), Param: dictionary.WordParam{WordCost: 3}, Feature: "shori"},
	{Surface: []rune("自然言語"), Param: dictionary.WordParam{WordCost: 6}, Feature: "sizengengo"},
	{Surface: []rune("言語処理"), Param: dictionary.WordParam{WordCost: 5}, Feature: "gengoshori"},
}

func tokenize(t *testing.T, dict *dictionary.Dictionary, input string) []tokenizer.Token {
	t.Helper()
	tok, err := tokenizer.New(dict)
	if err != nil {
		t.Fatalf("tokenizer.New: %v", err)
	}
	w := tok.NewWorker()
	w.ResetSentence(input)
	w.Tokenize()

	var tokens []tokenizer.Token
	for i := 0; i < w.TokenLen(); i++ {
		tokens = append(tokens, w.Token(i))
	}
	return tokens
}

// TestGreedyDisambiguation is scenario S1: the cheaper 自然+言語処理
// segmentation must win over both 自然言語+処理 and the fully split
// 自然+言語+処理.
func TestGreedyDisambiguation(t *testing.T) {
	dict := buildDict(t, sharedLexicon, false, true, 0, 100)
	tokens := tokenize(t, dict, "自然言語処理")

	if len(tokens) != 2 {
		t.Fatalf("got %d tokens, want 2", len(tokens))
	}
	if tokens[0].Surface() != "自然" || tokens[0].TotalCost() != 1 {
		t.Errorf("token 0 = %q cost=%d, want 自然 cost=1", tokens[0].Surface(), tokens[0].TotalCost())
	}
	if tokens[1].Surface() != "言語処理" || tokens[1].TotalCost() != 6 {
		t.Errorf("token 1 = %q cost=%d, want 言語処理 cost=6", tokens[1].Surface(), tokens[1].TotalCost())
	}
}

// TestUnknownWordFallback is scenario S2: an uncovered run of DEFAULT
// characters is emitted as a single grouped unknown token.
func TestUnknownWordFallback(t *testing.T) {
	dict := buildDict(t, sharedLexicon, false, true, 0, 100)
	tokens := tokenize(t, dict, "自然日本語処理")

	if len(tokens) != 2 {
		t.Fatalf("got %d tokens, want 2", len(tokens))
	}
	if tokens[0].Surface() != "自然" || tokens[0].TotalCost() != 1 {
		t.Errorf("token 0 = %q cost=%d, want 自然 cost=1", tokens[0].Surface(), tokens[0].TotalCost())
	}
	if tokens[1].Surface() != "日本語処理" {
		t.Errorf("token 1 surface = %q, want 日本語処理", tokens[1].Surface())
	}
	if tokens[1].LexType() != dictionary.Unknown {
		t.Errorf("token 1 lex_type = %v, want Unknown", tokens[1].LexType())
	}
	if tokens[1].Feature() != "*" {
		t.Errorf("token 1 feature = %q, want *", tokens[1].Feature())
	}
	if tokens[1].TotalCost() != 101 {
		t.Errorf("token 1 total cost = %d, want 101", tokens[1].TotalCost())
	}
}

// TestUnknownPrefix is scenario S3: per-length unknown candidates (no
// grouping) compete with a direct multi-character lexicon match, and
// the single-word 言語処理 entry must beat the 言語+処理 split.
func TestUnknownPrefix(t *testing.T) {
	dict := buildDict(t, sharedLexicon, false, false, 3, 100)
	tokens := tokenize(t, dict, "不自然言語処理")

	if len(tokens) != 2 {
		t.Fatalf("got %d tokens, want 2: %+v", len(tokens), tokens)
	}
	if tokens[0].Surface() != "不自然" || tokens[0].LexType() != dictionary.Unknown || tokens[0].TotalCost() != 100 {
		t.Errorf("token 0 = %q type=%v cost=%d, want 不自然 Unknown cost=100",
			tokens[0].Surface(), tokens[0].LexType(), tokens[0].TotalCost())
	}
	if tokens[1].Surface() != "言語処理" || tokens[1].TotalCost() != 105 {
		t.Errorf("token 1 = %q cost=%d, want 言語処理 cost=105", tokens[1].Surface(), tokens[1].TotalCost())
	}
}

// TestEmptyInput is scenario S4.
func TestEmptyInput(t *testing.T) {
	dict := buildDict(t, sharedLexicon, false, true, 0, 100)
	tokens := tokenize(t, dict, "")
	if len(tokens) != 0 {
		t.Fatalf("got %d tokens, want 0", len(tokens))
	}
}

// TestNbestMonotonicityAndFirstMatches1Best is scenario S5: a
// dictionary where 自然言語 and 自然+言語 tie on total cost must yield
// at least two non-decreasing-cost paths, the first identical to the
// 1-best result.
func TestNbestMonotonicityAndFirstMatches1Best(t *testing.T) {
	entries := []dictionary.LexiconEntry{
		{Surface: []rune("自然"), Param: dictionary.WordParam{WordCost: 3}, Feature: "sizen"},
		{Surface: []rune("言語"), Param: dictionary.WordParam{WordCost: 3}, Feature: "gengo"},
		{Surface: []rune("自然言語"), Param: dictionary.WordParam{WordCost: 6}, Feature: "sizengengo"},
	}
	dict := buildDict(t, entries, false, true, 0, 100)

	tok, err := tokenizer.New(dict)
	if err != nil {
		t.Fatalf("tokenizer.New: %v", err)
	}
	w := tok.NewWorker()

	w.ResetSentence("自然言語")
	w.Tokenize()
	var best []tokenizer.Token
	for i := 0; i < w.TokenLen(); i++ {
		best = append(best, w.Token(i))
	}
	bestCost := w.Token(w.TokenLen() - 1).TotalCost()

	w.ResetSentence("自然言語")
	w.TokenizeNbest(3)
	if w.NbestLen() < 2 {
		t.Fatalf("got %d nbest paths, want >= 2", w.NbestLen())
	}

	var prev int32 = -1 << 31
	for i := 0; i < w.NbestLen(); i++ {
		cost := w.PathCost(i)
		if cost < prev {
			t.Errorf("path %d cost %d is less than path %d cost %d: not non-decreasing", i, cost, i-1, prev)
		}
		prev = cost
	}
	if w.PathCost(0) != bestCost {
		t.Errorf("nbest path 0 cost = %d, want 1-best cost %d", w.PathCost(0), bestCost)
	}

	it := w.NbestTokenIter(0)
	for i := 0; i < len(best); i++ {
		tok, ok := it.Next()
		if !ok {
			t.Fatalf("nbest path 0 has fewer tokens than 1-best result")
		}
		if tok.Surface() != best[i].Surface() {
			t.Errorf("nbest path 0 token %d = %q, want %q (1-best)", i, tok.Surface(), best[i].Surface())
		}
	}
}

// TestIgnoreSpaceRequiresSpaceCategory checks the supplemented
// fail-fast validation: constructing a tokenizer with ignore_space
// against a dictionary lacking a SPACE category must fail.
func TestIgnoreSpaceRequiresSpaceCategory(t *testing.T) {
	dict := buildDict(t, sharedLexicon, false, true, 0, 100)
	_, err := tokenizer.New(dict, tokenizer.WithIgnoreSpace(true))
	if err == nil {
		t.Fatal("expected an error constructing a tokenizer with ignore_space against a dictionary with no SPACE category")
	}
}

// buildDictWithSpace is buildDict plus a second, SPACE category assigned
// to the space rune via an override, so ignore_space has something to
// bridge across.
func buildDictWithSpace(t *testing.T, entries []dictionary.LexiconEntry) *dictionary.Dictionary {
	t.Helper()

	lex := dictionary.NewLexicon(entries, dictionary.System)
	connector, err := dictionary.NewMatrixConnector([]int16{0}, 1, 1)
	if err != nil {
		t.Fatalf("NewMatrixConnector: %v", err)
	}
	charProp := dictionary.NewCharProperty(
		[]string{"DEFAULT", "SPACE"},
		dictionary.NewCharInfo(1, 0, false, true, 0),
		map[rune]dictionary.CharInfo{
			' ': dictionary.NewCharInfo(2, 1, false, true, 0),
		},
	)
	unk := dictionary.NewUnkHandler(1, []dictionary.UnkEntry{
		{CateID: 0, LeftID: 0, RightID: 0, WordCost: 100, Feature: "*"},
	})

	dict, err := dictionary.New(lex, nil, connector, charProp, unk)
	if err != nil {
		t.Fatalf("dictionary.New: %v", err)
	}
	return dict
}

// TestIgnoreSpaceBridgesSpaceRun is the actual ignore_space skip
// behavior: a space run between two dictionary words must be bridged
// (Worker.buildLattice's ignore_space branch calling Lattice.BridgeEnds)
// rather than emitted as its own token or breaking adjacency between
// the words on either side of it.
func TestIgnoreSpaceBridgesSpaceRun(t *testing.T) {
	dict := buildDictWithSpace(t, sharedLexicon)
	tok, err := tokenizer.New(dict, tokenizer.WithIgnoreSpace(true))
	if err != nil {
		t.Fatalf("tokenizer.New: %v", err)
	}
	w := tok.NewWorker()
	w.ResetSentence("自然  言語処理")
	w.Tokenize()

	if w.TokenLen() != 2 {
		t.Fatalf("got %d tokens, want 2 (space run bridged away): %+v", w.TokenLen(), dumpTokens(w))
	}
	if w.Token(0).Surface() != "自然" {
		t.Errorf("token 0 = %q, want 自然", w.Token(0).Surface())
	}
	if w.Token(1).Surface() != "言語処理" {
		t.Errorf("token 1 = %q, want 言語処理", w.Token(1).Surface())
	}
	startChar, _ := w.Token(1).RangeChar()
	if startChar != 4 {
		t.Errorf("token 1 starts at char %d, want 4 (自然 + two bridged spaces)", startChar)
	}
}

func dumpTokens(w *tokenizer.Worker) []string {
	var out []string
	for i := 0; i < w.TokenLen(); i++ {
		out = append(out, w.Token(i).Surface())
	}
	return out
}
