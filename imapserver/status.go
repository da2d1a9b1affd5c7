package imapserver

import (
	"fmt"

	"github.com/emersion/go-imapcmd"
	"github.com/emersion/go-imapcmd/internal/imapwire"
)

// StatusCommand is a STATUS command.
type StatusCommand struct {
	Mailbox string
	Items   imap.StatusItem
}

func (*StatusCommand) command() {}

func decodeStatus(dec *imapwire.Decoder, numKind NumKind, options *Options) (Command, error) {
	var cmd StatusCommand
	if !dec.ExpectSP() || !dec.ExpectMailbox(&cmd.Mailbox) || !dec.ExpectSP() {
		return nil, dec.Err()
	}
	items, err := readStatusItems(dec)
	if err != nil {
		return nil, err
	}
	if !dec.ExpectCRLF() {
		return nil, dec.Err()
	}
	cmd.Items = items
	return &cmd, nil
}

// readStatusItems reads a non-empty parenthesized list of status data items.
func readStatusItems(dec *imapwire.Decoder) (imap.StatusItem, error) {
	var items imap.StatusItem
	n := 0
	err := dec.ExpectList(func() error {
		var name string
		if !dec.ExpectAtom(&name) {
			return dec.Err()
		}
		item, ok := imap.ParseStatusItem(name)
		if !ok {
			return newUnknownArgError("STATUS", name)
		}
		items |= item
		n++
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("in status-att-list: %w", err)
	}
	if n == 0 {
		return 0, &imapwire.DecoderExpectError{Message: "empty STATUS item list"}
	}
	return items, nil
}
