package imapserver

import (
	"fmt"
	"strings"

	"github.com/emersion/go-imapcmd"
	"github.com/emersion/go-imapcmd/internal/imapwire"
)

// IDCommand is an ID command.
//
// See RFC 2971.
type IDCommand struct {
	// Data is nil if the client sent NIL.
	Data *imap.IDData
}

func (*IDCommand) command() {}

func decodeID(dec *imapwire.Decoder, numKind NumKind, options *Options) (Command, error) {
	var cmd IDCommand
	if !dec.ExpectSP() {
		return nil, dec.Err()
	}

	var atom string
	if dec.Atom(&atom) {
		if !dec.Expect(strings.EqualFold(atom, "NIL"), "NIL") || !dec.ExpectCRLF() {
			return nil, dec.Err()
		}
		return &cmd, nil
	}

	data := &imap.IDData{}
	err := dec.ExpectList(func() error {
		var key string
		var value *string
		if !dec.ExpectString(&key) || !dec.ExpectSP() || !dec.ExpectNString(&value) {
			return dec.Err()
		}
		data.Set(key, value)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("in id-params-list: %w", err)
	}
	if !dec.ExpectCRLF() {
		return nil, dec.Err()
	}
	cmd.Data = data
	return &cmd, nil
}
