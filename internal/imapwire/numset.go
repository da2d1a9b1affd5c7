package imapwire

import (
	"fmt"

	"github.com/emersion/go-imapcmd"
	"github.com/emersion/go-imapcmd/internal/imapnum"
)

// NumSetOptions controls which sequence-set forms are accepted.
type NumSetOptions struct {
	// AllowSearchRes accepts the "$" marker (RFC 5182).
	AllowSearchRes bool
	imapnum.ParseOptions
}

func isNumSetChar(ch byte) bool {
	return ch == '*' || ch == ':' || ch == ',' || ch == '$' || (ch >= '0' && ch <= '9')
}

// NumSet reads a sequence-set.
func (dec *Decoder) NumSet(ptr *imap.NumSet, options NumSetOptions) bool {
	var s string
	if !dec.Func(&s, isNumSetChar) {
		return false
	}
	if s == "$" {
		if !options.AllowSearchRes {
			return dec.returnErr(&DecoderExpectError{Message: "'$' is not allowed here"})
		}
		*ptr = imap.SearchRes()
		return true
	}
	set, err := imapnum.ParseSet(s, options.ParseOptions)
	if err != nil {
		return dec.returnErr(&DecoderExpectError{Message: fmt.Sprintf("in sequence-set: %v", err)})
	}
	*ptr = imap.NumSet(set)
	return true
}

func (dec *Decoder) ExpectNumSet(ptr *imap.NumSet, options NumSetOptions) bool {
	return dec.Expect(dec.NumSet(ptr, options), "sequence-set")
}

// ExpectUIDSet reads a sequence-set made of explicit UIDs only.
func (dec *Decoder) ExpectUIDSet(ptr *imap.NumSet) bool {
	return dec.ExpectNumSet(ptr, NumSetOptions{ParseOptions: imapnum.ParseOptions{NoStar: true}})
}
