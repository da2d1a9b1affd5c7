package imap

// FetchOptions contains the data items requested by a FETCH command.
//
// Macros (ALL, FAST, FULL) are expanded by the decoder.
type FetchOptions struct {
	Flags         bool
	UID           bool
	InternalDate  bool
	RFC822Size    bool
	Envelope      bool
	Body          bool // the non-extensible BODYSTRUCTURE
	BodyStructure bool
	ModSeq        bool // requires CONDSTORE
	EmailID       bool // requires OBJECTID
	ThreadID      bool // requires OBJECTID
	SaveDate      bool // requires SAVEDATE

	BodySection []*FetchItemBodySection

	ChangedSince uint64 // requires CONDSTORE, zero if unset
	Vanished     bool   // requires QRESYNC, only valid with UID FETCH
}

// PartSpecifier is the section type of a BODY[] item.
type PartSpecifier string

const (
	PartSpecifierNone            PartSpecifier = ""
	PartSpecifierHeader          PartSpecifier = "HEADER"
	PartSpecifierHeaderFields    PartSpecifier = "HEADER.FIELDS"
	PartSpecifierHeaderFieldsNot PartSpecifier = "HEADER.FIELDS.NOT"
	PartSpecifierMIME            PartSpecifier = "MIME"
	PartSpecifierText            PartSpecifier = "TEXT"
)

// SectionPartial is a "<offset.size>" byte range. Size is -1 when the client
// only gave an offset.
type SectionPartial struct {
	Offset, Size int64
}

// FetchItemBodySection is a FETCH BODY[] data item.
type FetchItemBodySection struct {
	Specifier PartSpecifier
	Part      []int
	// Header field names, only for HEADER.FIELDS and HEADER.FIELDS.NOT
	Fields  []string
	Partial *SectionPartial
	// Peek suppresses the implicit \Seen side effect
	Peek bool
}
