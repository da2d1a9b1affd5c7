package imapnum

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Range represents a single seq-number or seq-range value (RFC 3501 ABNF). Values
// may be static (e.g. "1", "2:4") or dynamic (e.g. "*", "1:*"). A seq-number is
// represented by setting Start = Stop. Zero is used to represent "*", which is
// safe because seq-number uses nz-number rule. The order of values is always
// Start <= Stop, except when representing "n:*", where Start = n and Stop = 0.
type Range struct {
	Start, Stop uint32
}

// searchRes is the range used to represent the "$" marker. It cannot be
// produced by parsing a range since "*:n" is always normalized to "n:*".
var searchRes = Range{Start: 0, Stop: math.MaxUint32}

// Contains returns true if the seq-number q is contained in range value s.
// The dynamic value "*" contains only other "*" values, the dynamic range "n:*"
// contains "*" and all numbers >= n.
func (s Range) Contains(q uint32) bool {
	if q == 0 {
		return s.Stop == 0 // "*" is contained only in "*" and "n:*"
	}
	return s.Start != 0 && s.Start <= q && (q <= s.Stop || s.Stop == 0)
}

// String returns range value s as a seq-number or seq-range string.
func (s Range) String() string {
	if s == searchRes {
		return "$"
	}
	if s.Start == s.Stop {
		if s.Start == 0 {
			return "*"
		}
		return strconv.FormatUint(uint64(s.Start), 10)
	}
	b := strconv.AppendUint(make([]byte, 0, 24), uint64(s.Start), 10)
	if s.Stop == 0 {
		return string(append(b, ':', '*'))
	}
	return string(strconv.AppendUint(append(b, ':'), uint64(s.Stop), 10))
}

// Set is an ordered list of ranges. Ranges are kept in the order they were
// written by the client: Set never merges nor deduplicates.
type Set []Range

// SearchRes returns the set standing for the "$" marker (RFC 5182).
func SearchRes() Set {
	return Set{searchRes}
}

// IsSearchRes returns true if the set is the "$" marker.
func (s Set) IsSearchRes() bool {
	return len(s) == 1 && s[0] == searchRes
}

// Dynamic returns true if the set contains "*" or "n:*" values.
func (s Set) Dynamic() bool {
	for _, r := range s {
		if r.Stop == 0 {
			return true
		}
	}
	return false
}

// String returns the wire representation of the set.
func (s Set) String() string {
	l := make([]string, len(s))
	for i, r := range s {
		l[i] = r.String()
	}
	return strings.Join(l, ",")
}

// ParseError is used to report problems with the format of a number set
// value.
type ParseError struct {
	Value  string
	Reason string
}

func (err *ParseError) Error() string {
	if err.Reason == "" {
		return fmt.Sprintf("bad number set value %q", err.Value)
	}
	return fmt.Sprintf("bad number set value %q: %v", err.Value, err.Reason)
}

// ParseOptions controls how strictly a set is parsed.
type ParseOptions struct {
	// NoStar rejects "*" anywhere in the set.
	NoStar bool
	// Ordered rejects descending ranges and requires the left edges of
	// successive ranges to be non-decreasing.
	Ordered bool
}

// parseNum parses a single seq-number value (non-zero uint32 or "*").
func parseNum(v string) (uint32, error) {
	if v == "*" {
		return 0, nil
	}
	if v == "" || v[0] == '0' {
		return 0, &ParseError{Value: v}
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, &ParseError{Value: v, Reason: "numbers must be non-zero unsigned 32-bit integers"}
	}
	return uint32(n), nil
}

// ParseRange parses a range in the format "n" or "n:m", where n and/or m may
// be "*". Reversed bounds are swapped, the returned reversed flag records it.
func ParseRange(v string) (r Range, reversed bool, err error) {
	sep := strings.IndexByte(v, ':')
	if sep < 0 {
		r.Start, err = parseNum(v)
		r.Stop = r.Start
		return r, false, err
	}
	if r.Start, err = parseNum(v[:sep]); err != nil {
		return r, false, err
	}
	if r.Stop, err = parseNum(v[sep+1:]); err != nil {
		return r, false, err
	}
	if (r.Stop < r.Start && r.Stop != 0) || (r.Start == 0 && r.Stop != 0) {
		r.Start, r.Stop = r.Stop, r.Start
		reversed = true
	}
	return r, reversed, nil
}

// ParseSet parses a sequence-set: comma-separated ranges, at least one.
func ParseSet(s string, options ParseOptions) (Set, error) {
	if s == "" {
		return nil, &ParseError{Value: s, Reason: "empty set"}
	}
	var set Set
	for _, v := range strings.Split(s, ",") {
		r, reversed, err := ParseRange(v)
		if err != nil {
			return nil, err
		}
		if options.NoStar && (r.Start == 0 || r.Stop == 0) {
			return nil, &ParseError{Value: s, Reason: "'*' is not allowed"}
		}
		if options.Ordered {
			if reversed {
				return nil, &ParseError{Value: s, Reason: "descending range"}
			}
			if n := len(set); n > 0 && r.Start < set[n-1].Start {
				return nil, &ParseError{Value: s, Reason: "ranges are not in ascending order"}
			}
		}
		set = append(set, r)
	}
	return set, nil
}
