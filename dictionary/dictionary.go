package dictionary

// Dictionary bundles the system lexicon, an optional user lexicon, the
// connection-cost provider, the character property table, and the
// unknown-word handler (C5). It is created once at load time, is
// immutable thereafter, and is safe to share across any number of
// concurrent tokenizer workers without synchronization.
type Dictionary struct {
	SystemLexicon *Lexicon
	UserLexicon   *Lexicon // nil if absent
	Connector     Connector
	CharProp      *CharProperty
	Unk           *UnkHandler
	mapper        *ConnIdMapper // set once MapConnectionIDsFromIter has run
}

// New bundles the five dictionary components. userLexicon may be nil.
func New(system *Lexicon, userLexicon *Lexicon, connector Connector, charProp *CharProperty, unk *UnkHandler) (*Dictionary, error) {
	if system.LexType() != System {
		return nil, errInvalidArgument("system_lexicon", "lex_type must be System")
	}
	if userLexicon != nil && userLexicon.LexType() != User {
		return nil, errInvalidArgument("user_lexicon", "lex_type must be User")
	}
	if !system.Verify(connector) {
		return nil, errInvalidState("system lexicon references out-of-range connection ids", nil)
	}
	if userLexicon != nil && !userLexicon.Verify(connector) {
		return nil, errInvalidState("user lexicon references out-of-range connection ids", nil)
	}
	return &Dictionary{
		SystemLexicon: system,
		UserLexicon:   userLexicon,
		Connector:     connector,
		CharProp:      charProp,
		Unk:           unk,
	}, nil
}

// MapConnectionIDsFromIter applies a ConnIdMapper built from lmap/rmap to
// every lexicon, the connector, and the unknown handler in one pass,
// storing the mapper so any later SetUserLexicon call maps through it too
// (per spec §4.10).
func (d *Dictionary) MapConnectionIDsFromIter(lmap, rmap []uint16) error {
	mapper, err := NewConnIdMapper(lmap, rmap)
	if err != nil {
		return err
	}
	d.SystemLexicon.MapConnectionIDs(mapper)
	d.Connector.MapConnectionIDs(mapper)
	d.Unk.MapConnectionIDs(mapper)
	if d.UserLexicon != nil {
		d.UserLexicon.MapConnectionIDs(mapper)
	}
	d.mapper = mapper
	return nil
}

// SetUserLexicon attaches a user lexicon, mapping its connection ids
// through the dictionary's stored ConnIdMapper first, if one was applied.
func (d *Dictionary) SetUserLexicon(lex *Lexicon) error {
	if lex.LexType() != User {
		return errInvalidArgument("user_lexicon", "lex_type must be User")
	}
	if d.mapper != nil {
		lex.MapConnectionIDs(d.mapper)
	}
	if !lex.Verify(d.Connector) {
		return errInvalidState("user lexicon references out-of-range connection ids", nil)
	}
	d.UserLexicon = lex
	return nil
}

// HasSpaceCategory reports whether the dictionary defines the SPACE
// category name, required to construct a tokenizer with ignore_space.
func (d *Dictionary) HasSpaceCategory() bool {
	_, ok := d.CharProp.CategoryID("SPACE")
	return ok
}

// Stats is a read-only summary of dictionary sizes, used by the `info`
// CLI subcommand and by tests.
type Stats struct {
	SystemWords  int
	UserWords    int
	NumLeft      int
	NumRight     int
	NumCategories int
}

// Stats summarizes this dictionary's size.
func (d *Dictionary) Stats() Stats {
	s := Stats{
		SystemWords:   d.SystemLexicon.Len(),
		NumLeft:       d.Connector.NumLeft(),
		NumRight:      d.Connector.NumRight(),
		NumCategories: d.CharProp.NumCategories(),
	}
	if d.UserLexicon != nil {
		s.UserWords = d.UserLexicon.Len()
	}
	return s
}
