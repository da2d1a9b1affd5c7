package imap

import (
	"strings"
)

// Date and time layouts.
const (
	// Described in RFC 3501 section 9, date-text.
	DateLayout = "2-Jan-2006"
	// Described in RFC 3501 section 9, date-time.
	DateTimeLayout = "_2-Jan-2006 15:04:05 -0700"
)

var months = [...]string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}

// ParseMonth returns the 1-based month number of a three-letter month name.
// Names are case-insensitive.
func ParseMonth(s string) (int, bool) {
	for i, m := range months {
		if strings.EqualFold(m, s) {
			return i + 1, true
		}
	}
	return 0, false
}
