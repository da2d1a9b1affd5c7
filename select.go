package imap

// SelectOptions contains options for the SELECT or EXAMINE command.
type SelectOptions struct {
	ReadOnly  bool
	CondStore bool           // requires CONDSTORE
	QResync   *SelectQResync // requires QRESYNC
}

// SelectQResync contains the QRESYNC parameters of a SELECT or EXAMINE
// command.
//
// See RFC 7162 section 3.2.5.
type SelectQResync struct {
	UIDValidity uint32
	ModSeq      uint64
	// Optional fields, nil if omitted. KnownSeqNums and KnownUIDs are either
	// both set or both nil.
	UIDs         NumSet
	KnownSeqNums NumSet
	KnownUIDs    NumSet
}
