// Package imap contains the values produced by the IMAP command decoder.
//
// IMAP4rev1 is defined in RFC 3501. The decoder itself lives in the
// imapserver package.
package imap

import (
	"strings"
)

// Flag is a message flag.
//
// Message flags are defined in RFC 3501 section 2.3.2.
type Flag string

const (
	// System flags
	FlagSeen     Flag = "\\Seen"
	FlagAnswered Flag = "\\Answered"
	FlagFlagged  Flag = "\\Flagged"
	FlagDeleted  Flag = "\\Deleted"
	FlagDraft    Flag = "\\Draft"
	FlagRecent   Flag = "\\Recent" // IMAP4rev1 only

	// Widely used flags
	FlagForwarded Flag = "$Forwarded"
	FlagMDNSent   Flag = "$MDNSent" // Message Disposition Notification sent
	FlagJunk      Flag = "$Junk"
	FlagNotJunk   Flag = "$NotJunk"
	FlagPhishing  Flag = "$Phishing"
	FlagImportant Flag = "$Important" // RFC 8457

	// Permanent flags
	FlagWildcard Flag = "\\*"
)

// IsSystem reports whether the flag is a backslash-prefixed system flag.
func (f Flag) IsSystem() bool {
	return len(f) > 0 && f[0] == '\\'
}

var systemFlags = []Flag{FlagSeen, FlagAnswered, FlagFlagged, FlagDeleted, FlagDraft, FlagRecent}

// CanonicalFlag returns the canonical spelling of a system flag. Other flags
// are returned unchanged.
func CanonicalFlag(f Flag) Flag {
	if !f.IsSystem() {
		return f
	}
	for _, sf := range systemFlags {
		if strings.EqualFold(string(sf), string(f)) {
			return sf
		}
	}
	return f
}
