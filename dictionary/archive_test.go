package dictionary_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stellanomia/vibrato-rkyv/dictionary"
	"github.com/stellanomia/vibrato-rkyv/tokenizer"
)

var archiveTestEntries = []dictionary.LexiconEntry{
	{Surface: []rune("自然"), Param: dictionary.WordParam{LeftID: 0, RightID: 0, WordCost: 1}, Feature: "sizen"},
	{Surface: []rune("言語処理"), Param: dictionary.WordParam{LeftID: 0, RightID: 0, WordCost: 5}, Feature: "gengoshori"},
}

func buildArchiveTestDictionary(t *testing.T) *dictionary.Dictionary {
	t.Helper()
	lex := dictionary.NewLexicon(archiveTestEntries, dictionary.System)
	connector, err := dictionary.NewMatrixConnector([]int16{0}, 1, 1)
	if err != nil {
		t.Fatalf("NewMatrixConnector: %v", err)
	}
	charProp := dictionary.NewCharProperty(
		[]string{"DEFAULT"},
		dictionary.NewCharInfo(1, 0, false, true, 0),
		nil,
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

// TestArchiveRoundTrip is scenario S6: writing a dictionary to an
// archive and reading it back must reconstruct a behaviorally
// equivalent dictionary, not necessarily a byte-identical one.
func TestArchiveRoundTrip(t *testing.T) {
	dict := buildArchiveTestDictionary(t)

	var buf bytes.Buffer
	if err := dictionary.WriteArchive(&buf, dict); err != nil {
		t.Fatalf("WriteArchive: %v", err)
	}

	reloaded, err := dictionary.ReadArchive(buf.Bytes())
	if err != nil {
		t.Fatalf("ReadArchive: %v", err)
	}

	wantStats := dict.Stats()
	gotStats := reloaded.Stats()
	if gotStats != wantStats {
		t.Fatalf("Stats mismatch after round-trip: got %+v, want %+v", gotStats, wantStats)
	}

	for wordID, want := range archiveTestEntries {
		gotFeature := reloaded.SystemLexicon.WordFeature(uint32(wordID))
		if gotFeature != want.Feature {
			t.Errorf("word %d feature = %q, want %q", wordID, gotFeature, want.Feature)
		}
		gotParam := reloaded.SystemLexicon.WordParam(uint32(wordID))
		if gotParam != want.Param {
			t.Errorf("word %d param = %+v, want %+v", wordID, gotParam, want.Param)
		}
	}
}

// TestReadArchiveRejectsBadMagic exercises the validation invariant that
// ReadArchive never silently accepts a truncated or foreign payload.
func TestReadArchiveRejectsBadMagic(t *testing.T) {
	_, err := dictionary.ReadArchive([]byte("not a vibrato archive, just some plain text"))
	if err == nil {
		t.Fatal("expected an error reading a non-archive payload")
	}
}

// tokenizeAll runs the tokenizer over input and returns one
// "surface/cost" string per token, for comparing two dictionaries' tokenization behavior.
func tokenizeAll(t *testing.T, dict *dictionary.Dictionary, input string) []string {
	t.Helper()
	tok, err := tokenizer.New(dict)
	if err != nil {
		t.Fatalf("tokenizer.New: %v", err)
	}
	w := tok.NewWorker()
	w.ResetSentence(input)
	w.Tokenize()
	var out []string
	for i := 0; i < w.TokenLen(); i++ {
		tk := w.Token(i)
		out = append(out, fmt.Sprintf("%s/%d", tk.Surface(), tk.TotalCost()))
	}
	return out
}

// TestLoaderEquivalenceTrustCache is Testable Property #6: for the same
// file, Validate and a warm TrustCache load (proof file already present)
// must produce dictionaries with identical tokenize output. This drives
// LoadArchive's cold TrustCache path (validates, then writes a proof),
// its warm path (readArchiveTrusted, skipping validation), and Validate,
// all against the same on-disk archive.
func TestLoaderEquivalenceTrustCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	dir := t.TempDir()
	path := filepath.Join(dir, "dict.vibrato")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	if err := dictionary.WriteArchive(f, buildArchiveTestDictionary(t)); err != nil {
		t.Fatalf("WriteArchive: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	const input = "自然言語処理"

	validated, err := dictionary.LoadArchive(path, dictionary.Validate)
	if err != nil {
		t.Fatalf("LoadArchive(Validate): %v", err)
	}
	want := tokenizeAll(t, validated, input)

	cold, err := dictionary.LoadArchive(path, dictionary.TrustCache)
	if err != nil {
		t.Fatalf("LoadArchive(TrustCache) cold: %v", err)
	}
	if got := tokenizeAll(t, cold, input); !equalStrings(got, want) {
		t.Errorf("cold TrustCache tokenize = %v, want %v", got, want)
	}

	warm, err := dictionary.LoadArchive(path, dictionary.TrustCache)
	if err != nil {
		t.Fatalf("LoadArchive(TrustCache) warm: %v", err)
	}
	if got := tokenizeAll(t, warm, input); !equalStrings(got, want) {
		t.Errorf("warm TrustCache tokenize = %v, want %v (readArchiveTrusted diverged)", got, want)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
