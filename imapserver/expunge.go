package imapserver

import (
	"github.com/emersion/go-imapcmd"
	"github.com/emersion/go-imapcmd/internal/imapwire"
)

// ExpungeCommand is an EXPUNGE or UID EXPUNGE command. UIDs is nil for a plain
// EXPUNGE.
type ExpungeCommand struct {
	UIDs imap.NumSet
}

func (*ExpungeCommand) command() {}

func decodeExpunge(dec *imapwire.Decoder, numKind NumKind, options *Options) (Command, error) {
	var cmd ExpungeCommand
	if numKind == NumKindUID {
		if !dec.ExpectSP() || !dec.ExpectNumSet(&cmd.UIDs, allowSearchRes) {
			return nil, dec.Err()
		}
	}
	if !dec.ExpectCRLF() {
		return nil, dec.Err()
	}
	return &cmd, nil
}
