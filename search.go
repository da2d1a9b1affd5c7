package imap

import (
	"fmt"
	"time"
)

// SearchKeyKind identifies the kind of a SearchKey.
type SearchKeyKind int

const (
	searchKeyInvalid SearchKeyKind = iota

	// Composite keys
	SearchKeyAnd // Keys holds at least one key
	SearchKeyOr  // Keys holds exactly two keys
	SearchKeyNot // Keys holds exactly one key

	// Set predicates, NumSet is populated
	SearchKeySeqSet
	SearchKeyUID

	// Flag predicates
	SearchKeyAll
	SearchKeyAnswered
	SearchKeyDeleted
	SearchKeyDraft
	SearchKeyFlagged
	SearchKeyNew
	SearchKeyOld
	SearchKeyRecent
	SearchKeySeen
	SearchKeyUnanswered
	SearchKeyUndeleted
	SearchKeyUndraft
	SearchKeyUnflagged
	SearchKeyUnseen

	// Keyword predicates, Value holds the flag
	SearchKeyKeyword
	SearchKeyUnkeyword

	// Textual predicates, Value holds the string. HEADER also sets Field.
	SearchKeyBcc
	SearchKeyBody
	SearchKeyCc
	SearchKeyFrom
	SearchKeyHeader
	SearchKeySubject
	SearchKeyText
	SearchKeyTo

	// Identifier predicates (RFC 8474), Value holds the identifier
	SearchKeyEmailID
	SearchKeyThreadID

	// Numeric predicates, Number is populated
	SearchKeyLarger
	SearchKeySmaller
	SearchKeyModSeq  // ModSeqEntry may be set
	SearchKeyYounger // seconds, RFC 5032
	SearchKeyOlder   // seconds, RFC 5032

	// Date predicates, Date is populated
	SearchKeyBefore
	SearchKeyOn
	SearchKeySince
	SearchKeySentBefore
	SearchKeySentOn
	SearchKeySentSince
	SearchKeySavedBefore // RFC 8514
	SearchKeySavedOn
	SearchKeySavedSince
)

var searchKeyNames = map[SearchKeyKind]string{
	SearchKeyAnd:         "AND",
	SearchKeyOr:          "OR",
	SearchKeyNot:         "NOT",
	SearchKeySeqSet:      "SEQSET",
	SearchKeyUID:         "UID",
	SearchKeyAll:         "ALL",
	SearchKeyAnswered:    "ANSWERED",
	SearchKeyDeleted:     "DELETED",
	SearchKeyDraft:       "DRAFT",
	SearchKeyFlagged:     "FLAGGED",
	SearchKeyNew:         "NEW",
	SearchKeyOld:         "OLD",
	SearchKeyRecent:      "RECENT",
	SearchKeySeen:        "SEEN",
	SearchKeyUnanswered:  "UNANSWERED",
	SearchKeyUndeleted:   "UNDELETED",
	SearchKeyUndraft:     "UNDRAFT",
	SearchKeyUnflagged:   "UNFLAGGED",
	SearchKeyUnseen:      "UNSEEN",
	SearchKeyKeyword:     "KEYWORD",
	SearchKeyUnkeyword:   "UNKEYWORD",
	SearchKeyBcc:         "BCC",
	SearchKeyBody:        "BODY",
	SearchKeyCc:          "CC",
	SearchKeyFrom:        "FROM",
	SearchKeyHeader:      "HEADER",
	SearchKeySubject:     "SUBJECT",
	SearchKeyText:        "TEXT",
	SearchKeyTo:          "TO",
	SearchKeyEmailID:     "EMAILID",
	SearchKeyThreadID:    "THREADID",
	SearchKeyLarger:      "LARGER",
	SearchKeySmaller:     "SMALLER",
	SearchKeyModSeq:      "MODSEQ",
	SearchKeyYounger:     "YOUNGER",
	SearchKeyOlder:       "OLDER",
	SearchKeyBefore:      "BEFORE",
	SearchKeyOn:          "ON",
	SearchKeySince:       "SINCE",
	SearchKeySentBefore:  "SENTBEFORE",
	SearchKeySentOn:      "SENTON",
	SearchKeySentSince:   "SENTSINCE",
	SearchKeySavedBefore: "SAVEDBEFORE",
	SearchKeySavedOn:     "SAVEDON",
	SearchKeySavedSince:  "SAVEDSINCE",
}

func (kind SearchKeyKind) String() string {
	if name, ok := searchKeyNames[kind]; ok {
		return name
	}
	return fmt.Sprintf("SearchKeyKind(%d)", int(kind))
}

// SearchKey is a node of a SEARCH criteria tree.
//
// Which fields are meaningful depends on Kind, see the SearchKeyKind
// constants.
type SearchKey struct {
	Kind SearchKeyKind

	Field  string // HEADER field name
	Value  string
	Number uint64
	// Only the date is meaningful, the time is always midnight UTC
	Date        time.Time
	NumSet      NumSet
	ModSeqEntry *SearchModSeqEntry

	Keys []SearchKey
}

// SearchModSeqEntry is the optional metadata item name and type of a MODSEQ
// search key.
//
// See RFC 7162 section 3.1.5.
type SearchModSeqEntry struct {
	Name string
	Type SearchModSeqEntryType
}

// SearchModSeqEntryType is the type of a MODSEQ search key entry.
type SearchModSeqEntryType string

const (
	SearchModSeqEntryPrivate SearchModSeqEntryType = "priv"
	SearchModSeqEntryShared  SearchModSeqEntryType = "shared"
	SearchModSeqEntryAll     SearchModSeqEntryType = "all"
)

// SearchAnd returns a key matching messages matched by all keys. A single key
// is returned as is.
func SearchAnd(keys ...SearchKey) SearchKey {
	if len(keys) == 1 {
		return keys[0]
	}
	return SearchKey{Kind: SearchKeyAnd, Keys: keys}
}

// SearchOr returns a key matching messages matched by either key.
func SearchOr(left, right SearchKey) SearchKey {
	return SearchKey{Kind: SearchKeyOr, Keys: []SearchKey{left, right}}
}

// SearchNot returns a key matching messages not matched by key.
func SearchNot(key SearchKey) SearchKey {
	return SearchKey{Kind: SearchKeyNot, Keys: []SearchKey{key}}
}

// SearchReturnOptions contains the RETURN options of an extended SEARCH
// command.
//
// See RFC 4731 and RFC 5182.
type SearchReturnOptions struct {
	Min   bool
	Max   bool
	All   bool
	Count bool
	Save  bool // requires SEARCHRES
}
