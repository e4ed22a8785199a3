package dictionary_test

import (
	"testing"

	"github.com/stellanomia/vibrato-rkyv/dictionary"
)

// TestRawConnectorCost builds a single-template feature table by hand and
// checks that Cost sums one scorer lookup per lane, with missing
// (slot, rightLane, leftLane) triples contributing zero rather than
// erroring.
func TestRawConnectorCost(t *testing.T) {
	rightFeatIDs := [][]dictionary.U31x8{
		{{5, 0, 0, 0, 0, 0, 0, 0}},
		{{7, 0, 0, 0, 0, 0, 0, 0}},
	}
	leftFeatIDs := [][]dictionary.U31x8{
		{{9, 0, 0, 0, 0, 0, 0, 0}},
		{{11, 0, 0, 0, 0, 0, 0, 0}},
	}
	scorer := dictionary.NewScorer([]dictionary.ScoreEntry{
		{Slot: 0, RightLane: 5, LeftLane: 9, Cost: 100},
		{Slot: 0, RightLane: 7, LeftLane: 11, Cost: 200},
	})

	c, err := dictionary.NewRawConnector(rightFeatIDs, leftFeatIDs, 1, scorer)
	if err != nil {
		t.Fatalf("NewRawConnector: %v", err)
	}

	if got := c.Cost(0, 0); got != 100 {
		t.Errorf("Cost(0,0) = %d, want 100", got)
	}
	if got := c.Cost(1, 1); got != 200 {
		t.Errorf("Cost(1,1) = %d, want 200", got)
	}
	// rightID=0 paired with leftID=1 has no matching scorer entry for
	// (lane 5, lane 11); every lane lookup must fall through to 0.
	if got := c.Cost(0, 1); got != 0 {
		t.Errorf("Cost(0,1) = %d, want 0 (no matching entry)", got)
	}
}

// TestRawConnectorRejectsMismatchedRows checks NewRawConnector validates
// that every row matches templateSize before a mismatched row can ever
// reach Cost's unchecked indexing.
func TestRawConnectorRejectsMismatchedRows(t *testing.T) {
	rightFeatIDs := [][]dictionary.U31x8{{{1, 0, 0, 0, 0, 0, 0, 0}, {2, 0, 0, 0, 0, 0, 0, 0}}}
	leftFeatIDs := [][]dictionary.U31x8{{{1, 0, 0, 0, 0, 0, 0, 0}}}
	if _, err := dictionary.NewRawConnector(rightFeatIDs, leftFeatIDs, 1, dictionary.NewScorer(nil)); err == nil {
		t.Fatal("expected an error for a right feature row longer than templateSize")
	}
}

// TestConnIdMapperInverse is the Left/InvLeft (and Right/InvRight)
// inverse property: mapping an id forward and then back through the
// inverse must return the original id, for every id in a non-trivial
// permutation.
func TestConnIdMapperInverse(t *testing.T) {
	lmap := []uint16{0, 2, 1, 3}
	rmap := []uint16{0, 1, 3, 2}
	m, err := dictionary.NewConnIdMapper(lmap, rmap)
	if err != nil {
		t.Fatalf("NewConnIdMapper: %v", err)
	}

	for id := uint16(0); id < uint16(len(lmap)); id++ {
		if got := m.InvLeft(m.Left(id)); got != id {
			t.Errorf("InvLeft(Left(%d)) = %d, want %d", id, got, id)
		}
	}
	for id := uint16(0); id < uint16(len(rmap)); id++ {
		if got := m.InvRight(m.Right(id)); got != id {
			t.Errorf("InvRight(Right(%d)) = %d, want %d", id, got, id)
		}
	}
}

// TestConnIdMapperRejectsNonPermutation checks the fixed-point and
// bijectivity validation that lets Left/Right skip bounds-checking
// logic beyond a simple length comparison.
func TestConnIdMapperRejectsNonPermutation(t *testing.T) {
	cases := [][]uint16{
		{1, 0}, // 0 must map to 0
		{0, 0}, // duplicate target, not a bijection
		{0, 2}, // target out of range
	}
	for _, m := range cases {
		if _, err := dictionary.NewConnIdMapper(m, []uint16{0, 1}); err == nil {
			t.Errorf("NewConnIdMapper(%v, ...) succeeded, want an error", m)
		}
	}
}

// TestDualConnectorFallsBackToRaw checks both of DualConnector.Cost's
// branches: the dense matrix is consulted when both ids are within its
// range, and ids outside it fall through to the sparse raw connector.
func TestDualConnectorFallsBackToRaw(t *testing.T) {
	matrix, err := dictionary.NewMatrixConnector([]int16{1, 2, 3, 4}, 2, 2)
	if err != nil {
		t.Fatalf("NewMatrixConnector: %v", err)
	}

	rightFeatIDs := [][]dictionary.U31x8{
		{{5, 0, 0, 0, 0, 0, 0, 0}},
		{{7, 0, 0, 0, 0, 0, 0, 0}},
		{{13, 0, 0, 0, 0, 0, 0, 0}},
	}
	leftFeatIDs := [][]dictionary.U31x8{
		{{9, 0, 0, 0, 0, 0, 0, 0}},
		{{11, 0, 0, 0, 0, 0, 0, 0}},
		{{9, 0, 0, 0, 0, 0, 0, 0}},
	}
	scorer := dictionary.NewScorer([]dictionary.ScoreEntry{
		// (0,0) under the raw connector alone would resolve to this, but
		// the dense matrix must win since both ids fall in its range.
		{Slot: 0, RightLane: 5, LeftLane: 9, Cost: 999},
		{Slot: 0, RightLane: 13, LeftLane: 9, Cost: 50},
	})
	raw, err := dictionary.NewRawConnector(rightFeatIDs, leftFeatIDs, 1, scorer)
	if err != nil {
		t.Fatalf("NewRawConnector: %v", err)
	}

	dual := dictionary.NewDualConnector(matrix, raw)

	if got := dual.Cost(0, 0); got != 1 {
		t.Errorf("Cost(0,0) = %d, want 1 (from the dense matrix, not the raw fallback)", got)
	}
	if got := dual.Cost(2, 0); got != 50 {
		t.Errorf("Cost(2,0) = %d, want 50 (rightID 2 is outside the matrix's range)", got)
	}
	if got, want := dual.NumRight(), raw.NumRight(); got != want {
		t.Errorf("NumRight() = %d, want %d (delegates to the raw connector's full range)", got, want)
	}
}
