package model

// AccessLevel is what a user may do with a patient's records.
// Levels are totally ordered: read < write < admin.
type AccessLevel string

const (
	AccessNone  AccessLevel = ""
	AccessRead  AccessLevel = "read"
	AccessWrite AccessLevel = "write"
	AccessAdmin AccessLevel = "admin"
)

// Rank returns the position of the level in the total order. AccessNone and
// unknown values rank 0.
func (l AccessLevel) Rank() int {
	switch l {
	case AccessRead:
		return 1
	case AccessWrite:
		return 2
	case AccessAdmin:
		return 3
	default:
		return 0
	}
}

// Valid reports whether l is one of read, write or admin.
func (l AccessLevel) Valid() bool {
	return l.Rank() > 0
}

// AtLeast reports whether l grants everything required grants.
func (l AccessLevel) AtLeast(required AccessLevel) bool {
	return l.Valid() && l.Rank() >= required.Rank()
}

// ParseAccessLevel converts a caller-supplied string.
func ParseAccessLevel(s string) (AccessLevel, bool) {
	l := AccessLevel(s)
	return l, l.Valid()
}
