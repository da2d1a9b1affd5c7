package imapserver

import (
	"fmt"
	"strings"

	"github.com/emersion/go-imapcmd"
	"github.com/emersion/go-imapcmd/internal/imapwire"
)

// ListCommand is a LIST command, including the LIST-EXTENDED forms.
//
// See RFC 5258.
type ListCommand struct {
	Reference string
	// Patterns holds at least one pattern. Only LIST-EXTENDED clients send
	// more than one.
	Patterns []string
	Options  imap.ListOptions
}

// LsubCommand is an LSUB command.
type LsubCommand struct {
	Reference string
	Pattern   string
}

func (*ListCommand) command() {}
func (*LsubCommand) command() {}

func decodeList(dec *imapwire.Decoder, numKind NumKind, options *Options) (Command, error) {
	var cmd ListCommand
	if !dec.ExpectSP() {
		return nil, dec.Err()
	}

	hasSelectOpts, err := dec.List(func() error {
		var selectOpt string
		if !dec.ExpectAtom(&selectOpt) {
			return dec.Err()
		}
		switch strings.ToUpper(selectOpt) {
		case "SUBSCRIBED":
			cmd.Options.SelectSubscribed = true
		case "REMOTE":
			cmd.Options.SelectRemote = true
		case "RECURSIVEMATCH":
			cmd.Options.SelectRecursiveMatch = true
		case "SPECIAL-USE":
			cmd.Options.SelectSpecialUse = true
		default:
			return newUnknownArgError("LIST selection", selectOpt)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("in list-select-opts: %w", err)
	}
	if hasSelectOpts && !dec.ExpectSP() {
		return nil, dec.Err()
	}

	if !dec.ExpectMailbox(&cmd.Reference) || !dec.ExpectSP() {
		return nil, dec.Err()
	}

	hasPatterns, err := dec.List(func() error {
		var pattern string
		if !dec.ExpectListMailbox(&pattern) {
			return dec.Err()
		}
		cmd.Patterns = append(cmd.Patterns, pattern)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("in list-mailbox: %w", err)
	} else if !hasPatterns {
		var pattern string
		if !dec.ExpectListMailbox(&pattern) {
			return nil, dec.Err()
		}
		cmd.Patterns = append(cmd.Patterns, pattern)
	} else if len(cmd.Patterns) == 0 {
		return nil, &imapwire.DecoderExpectError{Message: "empty LIST pattern list"}
	}

	if dec.SP() { // list-return-opts
		var atom string
		if !dec.ExpectAtom(&atom) || !dec.Expect(strings.EqualFold(atom, "RETURN"), "RETURN") || !dec.ExpectSP() {
			return nil, dec.Err()
		}
		err := dec.ExpectList(func() error {
			return readListReturnOption(dec, &cmd.Options)
		})
		if err != nil {
			return nil, fmt.Errorf("in list-return-opts: %w", err)
		}
	}

	if !dec.ExpectCRLF() {
		return nil, dec.Err()
	}

	if cmd.Options.SelectRecursiveMatch && !cmd.Options.SelectSubscribed {
		return nil, newClientBugError("The LIST RECURSIVEMATCH select option requires SUBSCRIBED")
	}
	return &cmd, nil
}

func readListReturnOption(dec *imapwire.Decoder, options *imap.ListOptions) error {
	var name string
	if !dec.ExpectAtom(&name) {
		return dec.Err()
	}

	switch strings.ToUpper(name) {
	case "SUBSCRIBED":
		options.ReturnSubscribed = true
	case "CHILDREN":
		options.ReturnChildren = true
	case "SPECIAL-USE":
		options.ReturnSpecialUse = true
	case "STATUS":
		if !dec.ExpectSP() {
			return dec.Err()
		}
		items, err := readStatusItems(dec)
		if err != nil {
			return err
		}
		options.ReturnStatus = items
	default:
		return newUnknownArgError("LIST RETURN", name)
	}
	return nil
}

func decodeLsub(dec *imapwire.Decoder, numKind NumKind, options *Options) (Command, error) {
	var cmd LsubCommand
	if !dec.ExpectSP() || !dec.ExpectMailbox(&cmd.Reference) || !dec.ExpectSP() || !dec.ExpectListMailbox(&cmd.Pattern) || !dec.ExpectCRLF() {
		return nil, dec.Err()
	}
	return &cmd, nil
}
