package imapserver

import (
	"fmt"

	"github.com/emersion/go-imapcmd"
	"github.com/emersion/go-imapcmd/internal"
	"github.com/emersion/go-imapcmd/internal/imapwire"
)

// AppendCommand is an APPEND command.
type AppendCommand struct {
	Mailbox string
	Options imap.AppendOptions
	Message []byte
}

// ReplaceCommand is a REPLACE or UID REPLACE command. Target is the sequence
// number or the UID of the message to replace.
//
// See RFC 8508.
type ReplaceCommand struct {
	NumKind NumKind
	Target  uint32
	Mailbox string
	Options imap.AppendOptions
	Message []byte
}

func (*AppendCommand) command()  {}
func (*ReplaceCommand) command() {}

func decodeAppend(dec *imapwire.Decoder, numKind NumKind, options *Options) (Command, error) {
	var cmd AppendCommand
	if !dec.ExpectSP() || !dec.ExpectMailbox(&cmd.Mailbox) || !dec.ExpectSP() {
		return nil, dec.Err()
	}
	if err := readAppendMessage(dec, options, &cmd.Options, &cmd.Message); err != nil {
		return nil, err
	}
	return &cmd, nil
}

func decodeReplace(dec *imapwire.Decoder, numKind NumKind, options *Options) (Command, error) {
	cmd := ReplaceCommand{NumKind: numKind}
	if !dec.ExpectSP() || !dec.ExpectNzNumber(&cmd.Target) || !dec.ExpectSP() || !dec.ExpectMailbox(&cmd.Mailbox) || !dec.ExpectSP() {
		return nil, dec.Err()
	}
	if err := readAppendMessage(dec, options, &cmd.Options, &cmd.Message); err != nil {
		return nil, err
	}
	return &cmd, nil
}

// readAppendMessage reads [flag-list SP] [date-time SP] literal CRLF.
func readAppendMessage(dec *imapwire.Decoder, options *Options, appendOptions *imap.AppendOptions, msg *[]byte) error {
	if b, ok := dec.Peek(); ok && b == '(' {
		flags, err := internal.ReadFlagList(dec)
		if err != nil {
			return fmt.Errorf("in flag-list: %w", err)
		}
		appendOptions.Flags = flags
		if !dec.ExpectSP() {
			return dec.Err()
		}
	}

	if b, ok := dec.Peek(); ok && b == '"' {
		if !internal.ExpectDateTime(dec, &appendOptions.Time) || !dec.ExpectSP() {
			return dec.Err()
		}
	} else {
		appendOptions.Time = options.now()
	}

	if !dec.ExpectLiteral(msg) || !dec.ExpectCRLF() {
		return dec.Err()
	}
	return nil
}
