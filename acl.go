package imap

import (
	"fmt"
	"strings"
)

// RightSet is a set of ACL rights, in the order the client wrote them.
type RightSet string

// Right is a single ACL right.
//
// Rights are defined in RFC 4314 section 2.1.
type Right byte

const (
	RightLookup     = Right('l') // mailbox is visible to LIST/LSUB commands
	RightRead       = Right('r') // SELECT the mailbox, perform STATUS
	RightSeen       = Right('s') // keep seen/unseen information across sessions
	RightWrite      = Right('w') // set or clear flags other than \Seen and \Deleted
	RightInsert     = Right('i') // perform APPEND, COPY into mailbox
	RightPost       = Right('p') // send mail to submission address for mailbox
	RightCreate     = Right('k') // CREATE new sub-mailboxes
	RightDeleteMbox = Right('x') // DELETE mailbox
	RightDeleteMsg  = Right('t') // set or clear the \Deleted flag
	RightExpunge    = Right('e') // perform EXPUNGE
	RightAdminister = Right('a') // perform SETACL/DELETEACL/GETACL/LISTRIGHTS

	// Obsolete RFC 2086 rights, still accepted from clients
	RightObsoleteCreate = Right('c')
	RightObsoleteDelete = Right('d')

	AllRights = RightSet("lrswipkxteacd")
)

// RightsIdentifier is an ACL identifier such as a user name or "anyone".
type RightsIdentifier string

const RightsIdentifierAnyone = RightsIdentifier("anyone")

// ACLEntryKey identifies an ACL entry. Negative entries are written with a
// leading "-" on the wire.
type ACLEntryKey struct {
	Identifier RightsIdentifier
	Negative   bool
}

// ParseACLEntryKey parses an identifier as sent in SETACL or DELETEACL.
func ParseACLEntryKey(s string) (ACLEntryKey, error) {
	key := ACLEntryKey{Identifier: RightsIdentifier(s)}
	if strings.HasPrefix(s, "-") {
		key.Identifier = RightsIdentifier(s[1:])
		key.Negative = true
	}
	if key.Identifier == "" {
		return key, fmt.Errorf("empty ACL identifier")
	}
	return key, nil
}

func (key ACLEntryKey) String() string {
	if key.Negative {
		return "-" + string(key.Identifier)
	}
	return string(key.Identifier)
}

// RightModification is the edit mode of a SETACL command.
type RightModification byte

const (
	RightModificationReplace = RightModification(0)
	RightModificationAdd     = RightModification('+')
	RightModificationRemove  = RightModification('-')
)

// NewRights converts rights string into RightModification and RightSet with validation
func NewRights(rights string) (RightModification, RightSet, error) {
	rm := RightModificationReplace

	if len(rights) == 0 {
		return rm, RightSet(rights), nil
	}

	if rights[0] == byte(RightModificationAdd) || rights[0] == byte(RightModificationRemove) {
		rm = RightModification(rights[0])
		rights = rights[1:]
	}

	for _, r := range rights {
		if !strings.ContainsRune(string(AllRights), r) {
			return rm, "", fmt.Errorf("unsupported right: '%v'", string(r))
		}
	}

	return rm, RightSet(rights), nil
}
