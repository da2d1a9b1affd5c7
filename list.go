package imap

// MailboxAttr is a mailbox attribute, as used by CREATE (USE ...) and LIST.
//
// Special-use attributes are defined in RFC 6154.
type MailboxAttr string

const (
	MailboxAttrAll     MailboxAttr = "\\All"
	MailboxAttrArchive MailboxAttr = "\\Archive"
	MailboxAttrDrafts  MailboxAttr = "\\Drafts"
	MailboxAttrFlagged MailboxAttr = "\\Flagged"
	MailboxAttrJunk    MailboxAttr = "\\Junk"
	MailboxAttrSent    MailboxAttr = "\\Sent"
	MailboxAttrTrash   MailboxAttr = "\\Trash"
)

// ListOptions contains options for the LIST command.
//
// See RFC 5258.
type ListOptions struct {
	SelectSubscribed     bool
	SelectRemote         bool
	SelectRecursiveMatch bool // requires SelectSubscribed to be set
	SelectSpecialUse     bool // requires SPECIAL-USE

	ReturnSubscribed bool
	ReturnChildren   bool
	ReturnStatus     StatusItem // requires LIST-STATUS, zero if not requested
	ReturnSpecialUse bool       // requires SPECIAL-USE
}
