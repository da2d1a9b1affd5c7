package imap

import (
	"github.com/emersion/go-imapcmd/internal/imapnum"
)

// NumRange is a single seq-number or seq-range value. Zero stands for "*".
//
// Start <= Stop always holds, except for "n:*" where Stop is zero.
type NumRange = imapnum.Range

// NumSet is a set of message sequence numbers or UIDs, in the order the
// client wrote them. Whether numbers are UIDs depends on the command.
type NumSet imapnum.Set

// SearchRes returns the special NumSet standing for the "$" marker which
// references the result of the last SEARCH with RETURN (SAVE).
//
// See RFC 5182.
func SearchRes() NumSet {
	return NumSet(imapnum.SearchRes())
}

// IsSearchRes returns true if the set is the "$" marker.
func (s NumSet) IsSearchRes() bool {
	return imapnum.Set(s).IsSearchRes()
}

// Dynamic returns true if the set contains "*" or "n:*" ranges or if the set
// is the "$" marker.
func (s NumSet) Dynamic() bool {
	return s.IsSearchRes() || imapnum.Set(s).Dynamic()
}

// String returns the IMAP representation of the set.
func (s NumSet) String() string {
	return imapnum.Set(s).String()
}

// ParseNumSet parses a sequence-set string such as "1:4,7,9:*".
func ParseNumSet(s string) (NumSet, error) {
	set, err := imapnum.ParseSet(s, imapnum.ParseOptions{})
	return NumSet(set), err
}
