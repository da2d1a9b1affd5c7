package imapserver

import (
	"fmt"
	"strings"

	"github.com/emersion/go-imapcmd"
	"github.com/emersion/go-imapcmd/internal"
	"github.com/emersion/go-imapcmd/internal/imapwire"
)

// StoreCommand is a STORE or UID STORE command.
type StoreCommand struct {
	NumKind NumKind
	NumSet  imap.NumSet
	Flags   imap.StoreFlags
	Options imap.StoreOptions
}

func (*StoreCommand) command() {}

func decodeStore(dec *imapwire.Decoder, numKind NumKind, options *Options) (Command, error) {
	cmd := StoreCommand{NumKind: numKind}
	if !dec.ExpectSP() || !dec.ExpectNumSet(&cmd.NumSet, allowSearchRes) || !dec.ExpectSP() {
		return nil, dec.Err()
	}

	isList, err := dec.List(func() error {
		return readStoreModifier(dec, &cmd.Options)
	})
	if err != nil {
		return nil, fmt.Errorf("in store-modifiers: %w", err)
	} else if isList && !dec.ExpectSP() {
		return nil, dec.Err()
	}

	var item string
	if !dec.ExpectAtom(&item) || !dec.ExpectSP() {
		return nil, dec.Err()
	}
	item = strings.ToUpper(item)

	cmd.Flags.Silent = strings.HasSuffix(item, ".SILENT")
	item = strings.TrimSuffix(item, ".SILENT")

	switch {
	case strings.HasPrefix(item, "+"):
		cmd.Flags.Op = imap.StoreFlagsAdd
		item = strings.TrimPrefix(item, "+")
	case strings.HasPrefix(item, "-"):
		cmd.Flags.Op = imap.StoreFlagsDel
		item = strings.TrimPrefix(item, "-")
	default:
		cmd.Flags.Op = imap.StoreFlagsSet
	}
	if item != "FLAGS" {
		return nil, &imapwire.DecoderExpectError{Message: "STORE can only change FLAGS"}
	}

	flags, err := readStoreFlags(dec)
	if err != nil {
		return nil, err
	}
	cmd.Flags.Flags = flags

	if !dec.ExpectCRLF() {
		return nil, dec.Err()
	}
	return &cmd, nil
}

// readStoreFlags reads a flag list, or flags separated by spaces.
func readStoreFlags(dec *imapwire.Decoder) ([]imap.Flag, error) {
	if b, ok := dec.Peek(); ok && b == '(' {
		return internal.ReadFlagList(dec)
	}
	var flags []imap.Flag
	for {
		flag, err := internal.ReadFlag(dec)
		if err != nil {
			return nil, err
		}
		flags = append(flags, flag)
		if !dec.SP() {
			return flags, nil
		}
	}
}

func readStoreModifier(dec *imapwire.Decoder, options *imap.StoreOptions) error {
	var name string
	if !dec.ExpectAtom(&name) {
		return dec.Err()
	}
	switch strings.ToUpper(name) {
	case "UNCHANGEDSINCE":
		var modSeq uint64
		if !dec.ExpectSP() || !dec.ExpectModSeq(&modSeq) {
			return dec.Err()
		}
		options.UnchangedSince = &modSeq
	default:
		return newUnknownArgError("STORE modifier", name)
	}
	return nil
}
