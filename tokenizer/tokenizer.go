package tokenizer

import "github.com/stellanomia/vibrato-rkyv/dictionary"

// Tokenizer binds a Dictionary to the settings that shape every Worker
// it spawns: whether input is NFKC-normalized before classification,
// whether runs of the SPACE category are skipped rather than tokenized,
// and the cap applied to grouped unknown-word spans.
type Tokenizer struct {
	dict           *dictionary.Dictionary
	normalize      bool
	ignoreSpace    bool
	spaceCateID    uint8
	maxGroupingLen int
}

// Option configures a Tokenizer at construction time.
type Option func(*Tokenizer)

// WithNormalize enables NFKC normalization of input before
// classification (a supplemented preprocessing step; see
// SPEC_FULL.md's domain stack).
func WithNormalize(enabled bool) Option {
	return func(t *Tokenizer) { t.normalize = enabled }
}

// WithIgnoreSpace enables skipping runs of the dictionary's SPACE
// category instead of tokenizing them. New fails fast if the
// dictionary does not define a SPACE category.
func WithIgnoreSpace(enabled bool) Option {
	return func(t *Tokenizer) { t.ignoreSpace = enabled }
}

// WithMaxGroupingLen caps the length of a grouped unknown-word span. 0
// (the default) leaves grouped spans unbounded.
func WithMaxGroupingLen(n int) Option {
	return func(t *Tokenizer) { t.maxGroupingLen = n }
}

// New builds a Tokenizer bound to dict. It fails with an
// InvalidArgument error if WithIgnoreSpace(true) is requested against a
// dictionary that has no SPACE category (spec §4.8, supplemented from
// the original's builder validation).
func New(dict *dictionary.Dictionary, opts ...Option) (*Tokenizer, error) {
	t := &Tokenizer{dict: dict}
	for _, opt := range opts {
		opt(t)
	}
	if t.ignoreSpace {
		id, ok := dict.CharProp.CategoryID("SPACE")
		if !ok {
			return nil, &dictionary.Error{Kind: dictionary.InvalidArgument, Arg: "ignore_space", Msg: "dictionary has no SPACE category"}
		}
		t.spaceCateID = id
	}
	return t, nil
}

// NewWorker creates a Worker bound to this Tokenizer's dictionary and
// settings. Workers are cheap and are not safe for concurrent use; spawn
// one per goroutine.
func (t *Tokenizer) NewWorker() *Worker {
	return &Worker{
		dict:           t.dict,
		normalize:      t.normalize,
		ignoreSpace:    t.ignoreSpace,
		spaceCateID:    t.spaceCateID,
		maxGroupingLen: t.maxGroupingLen,
	}
}
