package dictionary

// UnkEntry is one unknown-word candidate template registered to a
// character category.
type UnkEntry struct {
	CateID   uint8
	LeftID   uint16
	RightID  uint16
	WordCost int16
	Feature  string
}

// Param returns the WordParam for this entry.
func (e UnkEntry) Param() WordParam {
	return WordParam{LeftID: e.LeftID, RightID: e.RightID, WordCost: e.WordCost}
}

// UnkHandler holds, for each character category, zero or more UnkEntry
// templates.
type UnkHandler struct {
	entries [][]UnkEntry // indexed by category id
}

// NewUnkHandler builds a handler from entries grouped by category id.
func NewUnkHandler(numCategories int, entries []UnkEntry) *UnkHandler {
	h := &UnkHandler{entries: make([][]UnkEntry, numCategories)}
	for _, e := range entries {
		if int(e.CateID) < numCategories {
			h.entries[e.CateID] = append(h.entries[e.CateID], e)
		}
	}
	return h
}

// EntriesFor returns the templates registered to category id.
func (h *UnkHandler) EntriesFor(cateID uint8) []UnkEntry {
	if int(cateID) >= len(h.entries) {
		return nil
	}
	return h.entries[cateID]
}

// MapConnectionIDs rewrites every entry's left_id/right_id in place
// through mapper.
func (h *UnkHandler) MapConnectionIDs(mapper *ConnIdMapper) {
	for _, group := range h.entries {
		for i := range group {
			group[i].LeftID = mapper.Left(group[i].LeftID)
			group[i].RightID = mapper.Right(group[i].RightID)
		}
	}
}

// UnkSentence is the minimal view of a preprocessed sentence the unknown
// word generator needs. It is implemented by tokenizer.Sentence; defined
// here (rather than imported from the tokenizer package) to avoid an
// import cycle, since the tokenizer package depends on dictionary.
type UnkSentence interface {
	CharInfoAt(i int) CharInfo
	Groupable(i int) int
	LenChar() int
}

// UnkCandidate is one candidate emitted by GenUnkWords.
type UnkCandidate struct {
	StartChar int
	EndChar   int
	EntryIdx  uint32 // index into the category's entry slice, packed for WordIdx
	Entry     UnkEntry
}

// GenUnkWords produces candidate tokens spanning [startChar, endChar) for
// positions not (fully) covered by the lexicon, per spec §4.3, and hands
// each to emit.
func (h *UnkHandler) GenUnkWords(sent UnkSentence, startChar int, hasDictMatch bool, maxGroupingLen int, emit func(UnkCandidate)) {
	info := sent.CharInfoAt(startChar)
	if hasDictMatch && !info.Invoke() {
		return
	}

	lenChar := sent.LenChar()
	for _, cate := range info.Categories() {
		entries := h.EntriesFor(cate)
		if len(entries) == 0 {
			continue
		}

		if info.Group() {
			length := sent.Groupable(startChar)
			if maxGroupingLen > 0 && length > maxGroupingLen {
				length = maxGroupingLen
			}
			end := startChar + length
			if end > lenChar {
				end = lenChar
			}
			for i, e := range entries {
				emit(UnkCandidate{StartChar: startChar, EndChar: end, EntryIdx: uint32(i), Entry: e})
			}
		}

		maxLen := int(info.Length())
		for length := 1; length <= maxLen; length++ {
			end := startChar + length
			if end > lenChar {
				break
			}
			if !samePrefixCategory(sent, startChar, length, cate) {
				break
			}
			for i, e := range entries {
				emit(UnkCandidate{StartChar: startChar, EndChar: end, EntryIdx: uint32(i), Entry: e})
			}
		}
	}
}

func samePrefixCategory(sent UnkSentence, start, length int, cate uint8) bool {
	for i := 0; i < length; i++ {
		if !sent.CharInfoAt(start + i).HasCategory(cate) {
			return false
		}
	}
	return true
}
