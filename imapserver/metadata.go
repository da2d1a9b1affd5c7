package imapserver

import (
	"fmt"
	"strings"

	"github.com/emersion/go-imapcmd"
	"github.com/emersion/go-imapcmd/internal/imapwire"
)

// GetMetadataCommand is a GETMETADATA or GETANNOTATION command.
//
// See RFC 5464.
type GetMetadataCommand struct {
	Mailbox string
	Entries []string
	Options imap.GetMetadataOptions
}

// SetMetadataCommand is a SETMETADATA or SETANNOTATION command.
type SetMetadataCommand struct {
	Mailbox string
	Entries []imap.MetadataEntry
}

func (*GetMetadataCommand) command() {}
func (*SetMetadataCommand) command() {}

func decodeGetMetadata(dec *imapwire.Decoder, numKind NumKind, options *Options) (Command, error) {
	var cmd GetMetadataCommand
	if !dec.ExpectSP() || !dec.ExpectMailbox(&cmd.Mailbox) {
		return nil, dec.Err()
	}

	hasOptions := false
	for dec.SP() {
		if !dec.Special('(') {
			var entry string
			if !dec.ExpectAString(&entry) {
				return nil, dec.Err()
			}
			if err := checkEntryName(entry); err != nil {
				return nil, err
			}
			cmd.Entries = []string{entry}
			break
		}

		if b, ok := dec.Peek(); ok && (b == '/' || b == '"' || b == '{') {
			entries, err := readEntryList(dec)
			if err != nil {
				return nil, fmt.Errorf("in entries: %w", err)
			}
			cmd.Entries = entries
			break
		}

		if err := readGetMetadataOptions(dec, &cmd.Options); err != nil {
			return nil, fmt.Errorf("in getmetadata-options: %w", err)
		}
		hasOptions = true
	}
	if !dec.ExpectCRLF() {
		return nil, dec.Err()
	}

	if hasOptions && len(cmd.Entries) == 0 {
		return nil, &imapwire.DecoderExpectError{Message: "options must be followed by entries"}
	}
	return &cmd, nil
}

// readEntryList reads the entries of a list whose opening parenthesis has
// already been consumed.
func readEntryList(dec *imapwire.Decoder) ([]string, error) {
	var entries []string
	for {
		var entry string
		if !dec.ExpectAString(&entry) {
			return nil, dec.Err()
		}
		if err := checkEntryName(entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
		if dec.Special(')') {
			return entries, nil
		}
		if !dec.ExpectSP() {
			return nil, dec.Err()
		}
	}
}

// readGetMetadataOptions reads the options of a group whose opening
// parenthesis has already been consumed.
func readGetMetadataOptions(dec *imapwire.Decoder, options *imap.GetMetadataOptions) error {
	for {
		var name string
		if !dec.ExpectAtom(&name) || !dec.ExpectSP() {
			return dec.Err()
		}
		switch strings.ToUpper(name) {
		case "MAXSIZE":
			var maxSize uint32
			if !dec.ExpectNzNumber(&maxSize) {
				return dec.Err()
			}
			options.MaxSize = &maxSize
		case "DEPTH":
			var depth string
			if !dec.ExpectAtom(&depth) {
				return dec.Err()
			}
			switch strings.ToLower(depth) {
			case "0":
				options.Depth = imap.GetMetadataDepthZero
			case "1":
				options.Depth = imap.GetMetadataDepthOne
			case "infinity":
				options.Depth = imap.GetMetadataDepthInfinity
			default:
				return &imapwire.DecoderExpectError{Message: fmt.Sprintf("invalid DEPTH %v", depth)}
			}
		default:
			return newUnknownArgError("GETMETADATA option", name)
		}

		if dec.Special(')') {
			return nil
		}
		if !dec.ExpectSP() {
			return dec.Err()
		}
	}
}

func decodeSetMetadata(dec *imapwire.Decoder, numKind NumKind, options *Options) (Command, error) {
	var cmd SetMetadataCommand
	if !dec.ExpectSP() || !dec.ExpectMailbox(&cmd.Mailbox) || !dec.ExpectSP() {
		return nil, dec.Err()
	}
	err := dec.ExpectList(func() error {
		var entry imap.MetadataEntry
		if !dec.ExpectAString(&entry.Key) {
			return dec.Err()
		}
		if err := checkEntryName(entry.Key); err != nil {
			return err
		}
		if !dec.ExpectSP() || !dec.ExpectNStringBytes(&entry.Value) {
			return dec.Err()
		}
		cmd.Entries = append(cmd.Entries, entry)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("in entry-values: %w", err)
	}
	if !dec.ExpectCRLF() {
		return nil, dec.Err()
	}
	if len(cmd.Entries) == 0 {
		return nil, &imapwire.DecoderExpectError{Message: "missing entry"}
	}
	return &cmd, nil
}

func checkEntryName(entry string) error {
	if !strings.HasPrefix(entry, "/") {
		return &imapwire.DecoderExpectError{Message: fmt.Sprintf("entry %q must start with '/'", entry)}
	}
	return nil
}
