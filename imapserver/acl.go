package imapserver

import (
	"github.com/emersion/go-imapcmd"
	"github.com/emersion/go-imapcmd/internal/imapwire"
)

// SetACLCommand is a SETACL command.
//
// See RFC 4314.
type SetACLCommand struct {
	Mailbox      string
	Key          imap.ACLEntryKey
	Modification imap.RightModification
	Rights       imap.RightSet
}

// DeleteACLCommand is a DELETEACL command.
type DeleteACLCommand struct {
	Mailbox string
	Key     imap.ACLEntryKey
}

type GetACLCommand struct {
	Mailbox string
}

type ListRightsCommand struct {
	Mailbox    string
	Identifier imap.RightsIdentifier
}

type MyRightsCommand struct {
	Mailbox string
}

func (*SetACLCommand) command()     {}
func (*DeleteACLCommand) command()  {}
func (*GetACLCommand) command()     {}
func (*ListRightsCommand) command() {}
func (*MyRightsCommand) command()   {}

func decodeSetACL(dec *imapwire.Decoder, numKind NumKind, options *Options) (Command, error) {
	var (
		cmd    SetACLCommand
		rights string
	)
	if !dec.ExpectSP() || !dec.ExpectMailbox(&cmd.Mailbox) || !dec.ExpectSP() {
		return nil, dec.Err()
	}
	key, err := readACLEntryKey(dec)
	if err != nil {
		return nil, err
	}
	cmd.Key = key
	if !dec.ExpectSP() || !dec.ExpectAString(&rights) || !dec.ExpectCRLF() {
		return nil, dec.Err()
	}

	cmd.Modification, cmd.Rights, err = imap.NewRights(rights)
	if err != nil {
		return nil, newClientBugError(err.Error())
	}
	return &cmd, nil
}

func decodeDeleteACL(dec *imapwire.Decoder, numKind NumKind, options *Options) (Command, error) {
	var cmd DeleteACLCommand
	if !dec.ExpectSP() || !dec.ExpectMailbox(&cmd.Mailbox) || !dec.ExpectSP() {
		return nil, dec.Err()
	}
	key, err := readACLEntryKey(dec)
	if err != nil {
		return nil, err
	}
	cmd.Key = key
	if !dec.ExpectCRLF() {
		return nil, dec.Err()
	}
	return &cmd, nil
}

func decodeListRights(dec *imapwire.Decoder, numKind NumKind, options *Options) (Command, error) {
	var (
		cmd        ListRightsCommand
		identifier string
	)
	if !dec.ExpectSP() || !dec.ExpectMailbox(&cmd.Mailbox) || !dec.ExpectSP() || !dec.ExpectAString(&identifier) || !dec.ExpectCRLF() {
		return nil, dec.Err()
	}
	cmd.Identifier = imap.RightsIdentifier(identifier)
	return &cmd, nil
}

func readACLEntryKey(dec *imapwire.Decoder) (imap.ACLEntryKey, error) {
	var s string
	if !dec.ExpectAString(&s) {
		return imap.ACLEntryKey{}, dec.Err()
	}
	key, err := imap.ParseACLEntryKey(s)
	if err != nil {
		return key, &imapwire.DecoderExpectError{Message: err.Error()}
	}
	return key, nil
}
