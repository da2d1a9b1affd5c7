package imapserver

import (
	"strings"

	"github.com/emersion/go-imapcmd/internal/imapwire"
)

// CompressDeflate is the DEFLATE compression mechanism (RFC 1951).
const CompressDeflate = "DEFLATE"

// CompressCommand is a COMPRESS command.
//
// See RFC 4978.
type CompressCommand struct {
	// Mechanism is upper-case.
	Mechanism string
}

func (*CompressCommand) command() {}

func decodeCompress(dec *imapwire.Decoder, numKind NumKind, options *Options) (Command, error) {
	var cmd CompressCommand
	if !dec.ExpectSP() || !dec.ExpectAtom(&cmd.Mechanism) || !dec.ExpectCRLF() {
		return nil, dec.Err()
	}
	cmd.Mechanism = strings.ToUpper(cmd.Mechanism)
	return &cmd, nil
}
