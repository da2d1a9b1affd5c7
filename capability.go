package imap

import (
	"sort"
	"strings"
)

// Cap represents an IMAP capability.
type Cap string

// Capabilities whose commands or arguments are decoded.
//
// See: https://www.iana.org/assignments/imap-capabilities/
const (
	CapIMAP4rev1 Cap = "IMAP4rev1" // RFC 3501

	CapStartTLS      Cap = "STARTTLS"
	CapLoginDisabled Cap = "LOGINDISABLED"

	CapNamespace    Cap = "NAMESPACE"     // RFC 2342
	CapUnselect     Cap = "UNSELECT"      // RFC 3691
	CapUIDPlus      Cap = "UIDPLUS"       // RFC 4315
	CapESearch      Cap = "ESEARCH"       // RFC 4731
	CapSearchRes    Cap = "SEARCHRES"     // RFC 5182
	CapEnable       Cap = "ENABLE"        // RFC 5161
	CapIdle         Cap = "IDLE"          // RFC 2177
	CapSASLIR       Cap = "SASL-IR"       // RFC 4959
	CapListExtended Cap = "LIST-EXTENDED" // RFC 5258
	CapListStatus   Cap = "LIST-STATUS"   // RFC 5819
	CapMove         Cap = "MOVE"          // RFC 6851
	CapLiteralMinus Cap = "LITERAL-"      // RFC 7888
	CapLiteralPlus  Cap = "LITERAL+"      // RFC 7888
	CapStatusSize   Cap = "STATUS=SIZE"   // RFC 8438

	CapACL              Cap = "ACL" // RFC 4314
	CapAnnotate         Cap = "ANNOTATE-EXPERIMENT-1"
	CapChildren         Cap = "CHILDREN"           // RFC 3348
	CapCompressDeflate  Cap = "COMPRESS=DEFLATE"   // RFC 4978
	CapCondStore        Cap = "CONDSTORE"          // RFC 7162
	CapCreateSpecialUse Cap = "CREATE-SPECIAL-USE" // RFC 6154
	CapID               Cap = "ID"                 // RFC 2971
	CapMetadata         Cap = "METADATA"           // RFC 5464
	CapObjectID         Cap = "OBJECTID"           // RFC 8474
	CapQResync          Cap = "QRESYNC"            // RFC 7162
	CapQuota            Cap = "QUOTA"              // RFC 9208
	CapQuotaSet         Cap = "QUOTASET"           // RFC 9208
	CapReplace          Cap = "REPLACE"            // RFC 8508
	CapSaveDate         Cap = "SAVEDATE"           // RFC 8514
	CapSpecialUse       Cap = "SPECIAL-USE"        // RFC 6154
	CapUTF8Accept       Cap = "UTF8=ACCEPT"        // RFC 6855
	CapWithin           Cap = "WITHIN"             // RFC 5032
)

// AuthCap returns the capability name for an SASL authentication mechanism.
func AuthCap(mechanism string) Cap {
	return Cap("AUTH=" + mechanism)
}

// CapSet is a set of capabilities.
type CapSet map[Cap]struct{}

// NewCapSet creates a set containing caps.
func NewCapSet(caps ...Cap) CapSet {
	set := make(CapSet, len(caps))
	for _, c := range caps {
		set[c] = struct{}{}
	}
	return set
}

func (set CapSet) has(c Cap) bool {
	_, ok := set[c]
	return ok
}

// Has checks whether a capability is supported.
//
// Some capabilities are implied by others, as such Has may return true even if
// the capability is not in the map.
func (set CapSet) Has(c Cap) bool {
	if set.has(c) {
		return true
	}
	if c == CapLiteralMinus && set.has(CapLiteralPlus) {
		return true
	}
	if c == CapCondStore && set.has(CapQResync) {
		return true
	}
	return false
}

// AuthMechanisms returns the list of supported SASL mechanisms for
// authentication.
func (set CapSet) AuthMechanisms() []string {
	var l []string
	for c := range set {
		if !strings.HasPrefix(string(c), "AUTH=") {
			continue
		}
		mech := strings.TrimPrefix(string(c), "AUTH=")
		l = append(l, mech)
	}
	sort.Strings(l)
	return l
}

// Names returns the capabilities as a sorted list, with IMAP4rev1 first.
func (set CapSet) Names() []string {
	l := make([]string, 0, len(set))
	for c := range set {
		if c != CapIMAP4rev1 {
			l = append(l, string(c))
		}
	}
	sort.Strings(l)
	if set.has(CapIMAP4rev1) {
		l = append([]string{string(CapIMAP4rev1)}, l...)
	}
	return l
}
