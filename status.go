package imap

import (
	"strings"
)

// StatusItem is a set of data items requested by a STATUS command. Items are
// bits and can be combined.
type StatusItem uint16

const (
	StatusItemNumMessages StatusItem = 1 << iota
	StatusItemNumRecent
	StatusItemUIDNext
	StatusItemUIDValidity
	StatusItemNumUnseen
	StatusItemHighestModSeq // requires CONDSTORE
	StatusItemSize          // requires STATUS=SIZE
	StatusItemNumDeleted    // requires QUOTA
	StatusItemDeletedStorage
	StatusItemAppendLimit // requires APPENDLIMIT
	StatusItemMailboxID   // requires OBJECTID
)

var statusItemNames = []struct {
	item StatusItem
	name string
}{
	{StatusItemNumMessages, "MESSAGES"},
	{StatusItemNumRecent, "RECENT"},
	{StatusItemUIDNext, "UIDNEXT"},
	{StatusItemUIDValidity, "UIDVALIDITY"},
	{StatusItemNumUnseen, "UNSEEN"},
	{StatusItemHighestModSeq, "HIGHESTMODSEQ"},
	{StatusItemSize, "SIZE"},
	{StatusItemNumDeleted, "DELETED"},
	{StatusItemDeletedStorage, "DELETED-STORAGE"},
	{StatusItemAppendLimit, "APPENDLIMIT"},
	{StatusItemMailboxID, "MAILBOXID"},
}

// ParseStatusItem returns the item named name. Names are case-insensitive.
func ParseStatusItem(name string) (StatusItem, bool) {
	for _, item := range statusItemNames {
		if strings.EqualFold(item.name, name) {
			return item.item, true
		}
	}
	return 0, false
}

// Has returns true if all items in other are part of the set.
func (items StatusItem) Has(other StatusItem) bool {
	return items&other == other
}

// Names returns the wire names of the items in the set.
func (items StatusItem) Names() []string {
	var l []string
	for _, item := range statusItemNames {
		if items.Has(item.item) {
			l = append(l, item.name)
		}
	}
	return l
}

func (items StatusItem) String() string {
	return "(" + strings.Join(items.Names(), " ") + ")"
}
