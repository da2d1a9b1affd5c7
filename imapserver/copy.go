package imapserver

import (
	"github.com/emersion/go-imapcmd"
	"github.com/emersion/go-imapcmd/internal/imapwire"
)

// CopyCommand is a COPY or UID COPY command.
type CopyCommand struct {
	NumKind NumKind
	NumSet  imap.NumSet
	Mailbox string
}

// MoveCommand is a MOVE or UID MOVE command.
//
// See RFC 6851.
type MoveCommand struct {
	NumKind NumKind
	NumSet  imap.NumSet
	Mailbox string
}

func (*CopyCommand) command() {}
func (*MoveCommand) command() {}

func decodeCopy(move bool) decodeFunc {
	return func(dec *imapwire.Decoder, numKind NumKind, options *Options) (Command, error) {
		numSet, dest, err := readCopy(dec)
		if err != nil {
			return nil, err
		}
		if move {
			return &MoveCommand{NumKind: numKind, NumSet: numSet, Mailbox: dest}, nil
		}
		return &CopyCommand{NumKind: numKind, NumSet: numSet, Mailbox: dest}, nil
	}
}

func readCopy(dec *imapwire.Decoder) (numSet imap.NumSet, dest string, err error) {
	if !dec.ExpectSP() || !dec.ExpectNumSet(&numSet, allowSearchRes) || !dec.ExpectSP() || !dec.ExpectMailbox(&dest) || !dec.ExpectCRLF() {
		return nil, "", dec.Err()
	}
	return numSet, dest, nil
}
