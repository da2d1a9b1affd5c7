package imapwire

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/emersion/go-imapcmd/utf7"
)

// ExpectMailbox reads a mailbox name. Any case variant of INBOX yields
// "INBOX". ASCII names are decoded from modified UTF-7, names containing
// 8-bit bytes must be valid UTF-8 and are normalized to NFC.
func (dec *Decoder) ExpectMailbox(ptr *string) bool {
	var name string
	if !dec.ExpectAString(&name) {
		return false
	}
	name, err := decodeMailboxName(name)
	if err != nil {
		return dec.returnErr(&DecoderExpectError{Message: err.Error()})
	}
	*ptr = name
	return true
}

// ExpectListMailbox reads a LIST pattern, which may contain the '%' and '*'
// wildcards.
func (dec *Decoder) ExpectListMailbox(ptr *string) bool {
	var name string
	if !dec.String(&name) {
		if dec.err != nil {
			return false
		}
		if !dec.Expect(dec.Func(&name, IsListChar), "list-mailbox") {
			return false
		}
	}
	name, err := decodeMailboxName(name)
	if err != nil {
		return dec.returnErr(&DecoderExpectError{Message: err.Error()})
	}
	*ptr = name
	return true
}

func decodeMailboxName(name string) (string, error) {
	if strings.EqualFold(name, "INBOX") {
		return "INBOX", nil
	}
	for i := 0; i < len(name); i++ {
		if name[i] >= utf8.RuneSelf {
			if !utf8.ValidString(name) {
				return "", fmt.Errorf("mailbox name %q is not valid UTF-8", name)
			}
			return norm.NFC.String(name), nil
		}
	}
	decoded, err := utf7.Decode(name)
	if err != nil {
		return "", fmt.Errorf("mailbox name %q: %v", name, err)
	}
	return decoded, nil
}
