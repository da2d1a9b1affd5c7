package internal

import (
	"fmt"
	"time"

	"github.com/emersion/go-imapcmd"
	"github.com/emersion/go-imapcmd/internal/imapwire"
)

func isDateChar(ch byte) bool {
	return ch == '-' || (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// ExpectDate reads a date: "D-Mon-YYYY" or "DD-Mon-YYYY", optionally quoted.
// The result is midnight UTC.
func ExpectDate(dec *imapwire.Decoder, ptr *time.Time) bool {
	var s string
	if !dec.Quoted(&s) {
		if dec.Err() != nil {
			return false
		}
		if !dec.Expect(dec.Func(&s, isDateChar), "date") {
			return false
		}
	}
	t, err := ParseDate(s)
	if err != nil {
		return dec.Expect(false, fmt.Sprintf("date (%v)", err))
	}
	*ptr = t
	return true
}

// ParseDate parses a date-text value. Month names are case-insensitive.
func ParseDate(s string) (time.Time, error) {
	var day, year int
	var mon string
	if len(s) < 10 || len(s) > 11 {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	dash := len(s) - 9
	if s[dash] != '-' || s[dash+4] != '-' {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	if _, err := fmt.Sscanf(s[:dash], "%d", &day); err != nil || !allDigits(s[:dash]) {
		return time.Time{}, fmt.Errorf("invalid day in %q", s)
	}
	mon = s[dash+1 : dash+4]
	month, ok := imap.ParseMonth(mon)
	if !ok {
		return time.Time{}, fmt.Errorf("invalid month %q", mon)
	}
	if _, err := fmt.Sscanf(s[dash+5:], "%d", &year); err != nil || !allDigits(s[dash+5:]) {
		return time.Time{}, fmt.Errorf("invalid year in %q", s)
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		return time.Time{}, fmt.Errorf("day out of range in %q", s)
	}
	return t, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// ExpectDateTime reads a quoted date-time, e.g. "17-Jul-1996 02:44:25 -0700".
func ExpectDateTime(dec *imapwire.Decoder, ptr *time.Time) bool {
	var s string
	if !dec.ExpectQuoted(&s) {
		return false
	}
	t, err := DecodeDateTime(s)
	if err != nil {
		return dec.Expect(false, fmt.Sprintf("date-time (%v)", err))
	}
	*ptr = t
	return true
}

// DecodeDateTime parses a date-time value. The day may be space-padded or
// zero-padded and month names are case-insensitive.
func DecodeDateTime(s string) (time.Time, error) {
	if len(s) == len(imap.DateTimeLayout)-1 {
		s = " " + s
	}
	if len(s) != len(imap.DateTimeLayout) {
		return time.Time{}, fmt.Errorf("invalid date-time %q", s)
	}
	// time.Parse only accepts the canonical month spelling
	month, ok := imap.ParseMonth(s[3:6])
	if !ok {
		return time.Time{}, fmt.Errorf("invalid month in %q", s)
	}
	canon := s[:3] + time.Month(month).String()[:3] + s[6:]
	if canon[0] == '0' {
		canon = " " + canon[1:]
	}
	return time.Parse(imap.DateTimeLayout, canon)
}
