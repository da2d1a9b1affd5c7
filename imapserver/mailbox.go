package imapserver

import (
	"strings"

	"github.com/emersion/go-imapcmd"
	"github.com/emersion/go-imapcmd/internal"
	"github.com/emersion/go-imapcmd/internal/imapwire"
)

// CreateCommand is a CREATE command.
type CreateCommand struct {
	Mailbox    string
	SpecialUse []imap.MailboxAttr // requires CREATE-SPECIAL-USE
}

// DeleteCommand is a DELETE command.
type DeleteCommand struct {
	Mailbox string
}

// RenameCommand is a RENAME command.
type RenameCommand struct {
	Mailbox string
	NewName string
}

// SubscribeCommand is a SUBSCRIBE command.
type SubscribeCommand struct {
	Mailbox string
}

// UnsubscribeCommand is an UNSUBSCRIBE command.
type UnsubscribeCommand struct {
	Mailbox string
}

func (*CreateCommand) command()      {}
func (*DeleteCommand) command()      {}
func (*RenameCommand) command()      {}
func (*SubscribeCommand) command()   {}
func (*UnsubscribeCommand) command() {}

func decodeCreate(dec *imapwire.Decoder, numKind NumKind, options *Options) (Command, error) {
	var cmd CreateCommand
	if !dec.ExpectSP() || !dec.ExpectMailbox(&cmd.Mailbox) {
		return nil, dec.Err()
	}
	if dec.SP() {
		var name string
		if !dec.ExpectSpecial('(') || !dec.ExpectAtom(&name) || !dec.ExpectSP() {
			return nil, dec.Err()
		}
		switch strings.ToUpper(name) {
		case "USE":
			err := dec.ExpectList(func() error {
				flag, err := internal.ReadFlag(dec)
				if err != nil {
					return err
				}
				cmd.SpecialUse = append(cmd.SpecialUse, imap.MailboxAttr(flag))
				return nil
			})
			if err != nil {
				return nil, err
			}
		default:
			return nil, newUnknownArgError("CREATE", name)
		}
		if !dec.ExpectSpecial(')') {
			return nil, dec.Err()
		}
	}
	if !dec.ExpectCRLF() {
		return nil, dec.Err()
	}
	return &cmd, nil
}

func decodeRename(dec *imapwire.Decoder, numKind NumKind, options *Options) (Command, error) {
	var cmd RenameCommand
	if !dec.ExpectSP() || !dec.ExpectMailbox(&cmd.Mailbox) || !dec.ExpectSP() || !dec.ExpectMailbox(&cmd.NewName) || !dec.ExpectCRLF() {
		return nil, dec.Err()
	}
	return &cmd, nil
}
