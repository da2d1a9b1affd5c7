package imapserver

import (
	"strings"

	"github.com/emersion/go-imapcmd/internal/imapwire"
)

// EnableCommand is an ENABLE command.
//
// See RFC 5161.
type EnableCommand struct {
	// Caps holds upper-case capability names.
	Caps []string
}

func (*EnableCommand) command() {}

func decodeEnable(dec *imapwire.Decoder, numKind NumKind, options *Options) (Command, error) {
	var cmd EnableCommand
	if !dec.ExpectSP() {
		return nil, dec.Err()
	}
	for {
		var c string
		if !dec.ExpectAtom(&c) {
			return nil, dec.Err()
		}
		cmd.Caps = append(cmd.Caps, strings.ToUpper(c))
		if !dec.SP() {
			break
		}
	}
	if !dec.ExpectCRLF() {
		return nil, dec.Err()
	}
	return &cmd, nil
}
