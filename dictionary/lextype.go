package dictionary

// LexType distinguishes the origin table a WordIdx refers to. Encoded as a
// single byte on disk; every switch over it is exhaustive.
type LexType uint8

const (
	System LexType = iota
	User
	Unknown
)

func (t LexType) String() string {
	switch t {
	case System:
		return "System"
	case User:
		return "User"
	case Unknown:
		return "Unknown"
	default:
		return "Invalid"
	}
}

// WordIdx is a stable key for feature and parameter lookup within its
// origin table. WordID's high bit is reserved zero.
type WordIdx struct {
	Type LexType
	ID   uint32
}

// WordParam is the (left_id, right_id, word_cost) triple attached to every
// dictionary entry. Immutable after load except through a build-time
// ConnIdMapper.
type WordParam struct {
	LeftID   uint16
	RightID  uint16
	WordCost int16
}
