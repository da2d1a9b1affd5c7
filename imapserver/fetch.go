package imapserver

import (
	"fmt"
	"strings"

	"github.com/emersion/go-imapcmd"
	"github.com/emersion/go-imapcmd/internal/imapwire"
)

// FetchCommand is a FETCH or UID FETCH command.
//
// Options.UID is always set for UID FETCH, Options.ModSeq is always set when
// CHANGEDSINCE is used.
type FetchCommand struct {
	NumKind NumKind
	NumSet  imap.NumSet
	Options imap.FetchOptions
}

func (*FetchCommand) command() {}

var allowSearchRes = imapwire.NumSetOptions{AllowSearchRes: true}

func decodeFetch(dec *imapwire.Decoder, numKind NumKind, options *Options) (Command, error) {
	cmd := FetchCommand{NumKind: numKind}
	if !dec.ExpectSP() || !dec.ExpectNumSet(&cmd.NumSet, allowSearchRes) || !dec.ExpectSP() {
		return nil, dec.Err()
	}
	if err := readFetchOptions(dec, &cmd.Options); err != nil {
		return nil, err
	}
	if !dec.ExpectCRLF() {
		return nil, dec.Err()
	}

	if cmd.Options.Vanished && numKind != NumKindUID {
		return nil, newClientBugError("VANISHED can only be used with UID FETCH")
	}
	if numKind == NumKindUID {
		cmd.Options.UID = true
	}
	if cmd.Options.ChangedSince > 0 {
		cmd.Options.ModSeq = true
	}
	return &cmd, nil
}

// readFetchOptions reads the data items and the optional modifier list.
func readFetchOptions(dec *imapwire.Decoder, options *imap.FetchOptions) error {
	isList, err := dec.List(func() error {
		return readFetchAtt(dec, options, false)
	})
	if err != nil {
		return fmt.Errorf("in fetch-att: %w", err)
	}
	if !isList {
		if err := readFetchAtt(dec, options, true); err != nil {
			return fmt.Errorf("in fetch-att: %w", err)
		}
	}

	if dec.SP() {
		err := dec.ExpectList(func() error {
			return readFetchModifier(dec, options)
		})
		if err != nil {
			return fmt.Errorf("in fetch-modifiers: %w", err)
		}
	}
	return nil
}

func readFetchAtt(dec *imapwire.Decoder, options *imap.FetchOptions, single bool) error {
	var attName string
	if !dec.Expect(dec.Func(&attName, isMsgAttNameChar), "msg-att name") {
		return dec.Err()
	}

	switch attName = strings.ToUpper(attName); attName {
	case "ALL", "FAST", "FULL":
		if !single {
			return &imapwire.DecoderExpectError{Message: fmt.Sprintf("macro %v must be the only FETCH data item", attName)}
		}
		options.Flags = true
		options.InternalDate = true
		options.RFC822Size = true
		if attName != "FAST" {
			options.Envelope = true
		}
		if attName == "FULL" {
			options.Body = true
		}
	case "FLAGS":
		options.Flags = true
	case "UID":
		options.UID = true
	case "INTERNALDATE":
		options.InternalDate = true
	case "RFC822.SIZE":
		options.RFC822Size = true
	case "ENVELOPE":
		options.Envelope = true
	case "BODYSTRUCTURE":
		options.BodyStructure = true
	case "MODSEQ":
		options.ModSeq = true
	case "EMAILID":
		options.EmailID = true
	case "THREADID":
		options.ThreadID = true
	case "SAVEDATE":
		options.SaveDate = true
	case "RFC822":
		options.BodySection = append(options.BodySection, &imap.FetchItemBodySection{})
	case "RFC822.HEADER":
		options.BodySection = append(options.BodySection, &imap.FetchItemBodySection{
			Specifier: imap.PartSpecifierHeader,
			Peek:      true,
		})
	case "RFC822.TEXT":
		options.BodySection = append(options.BodySection, &imap.FetchItemBodySection{
			Specifier: imap.PartSpecifierText,
		})
	case "BODY", "BODY.PEEK":
		if !dec.Special('[') {
			if attName == "BODY.PEEK" {
				dec.Expect(false, "'['")
				return dec.Err()
			}
			options.Body = true
			return nil
		}
		section := imap.FetchItemBodySection{Peek: attName == "BODY.PEEK"}
		if err := readSection(dec, &section); err != nil {
			return err
		}
		partial, err := maybeReadPartial(dec)
		if err != nil {
			return err
		}
		section.Partial = partial
		options.BodySection = append(options.BodySection, &section)
	default:
		if b, ok := dec.Peek(); ok && b == '[' {
			return &imapwire.DecoderExpectError{Message: fmt.Sprintf("%v[] is not a supported FETCH data item", attName)}
		}
		return &imapwire.DecoderExpectError{Message: fmt.Sprintf("unknown FETCH data item %v", attName)}
	}
	return nil
}

func isMsgAttNameChar(ch byte) bool {
	return ch != '[' && imapwire.IsAtomChar(ch)
}

func readSection(dec *imapwire.Decoder, section *imap.FetchItemBodySection) error {
	if dec.Special(']') {
		return nil
	}

	for {
		var num uint32
		if !dec.Number(&num) {
			if dec.Err() != nil {
				return dec.Err()
			}
			break
		}
		if num == 0 {
			return &imapwire.DecoderExpectError{Message: "section part numbers must be non-zero"}
		}
		section.Part = append(section.Part, int(num))
		if !dec.Special('.') {
			if !dec.ExpectSpecial(']') {
				return dec.Err()
			}
			return nil
		}
	}

	var specifier string
	if !dec.Expect(dec.Atom(&specifier), "section-text") {
		return dec.Err()
	}
	switch spec := imap.PartSpecifier(strings.ToUpper(specifier)); spec {
	case imap.PartSpecifierHeader, imap.PartSpecifierText:
		section.Specifier = spec
	case imap.PartSpecifierMIME:
		if len(section.Part) == 0 {
			return &imapwire.DecoderExpectError{Message: "MIME section requires a part number"}
		}
		section.Specifier = spec
	case imap.PartSpecifierHeaderFields, imap.PartSpecifierHeaderFieldsNot:
		section.Specifier = spec
		if !dec.ExpectSP() {
			return dec.Err()
		}
		fields, err := readHeaderList(dec)
		if err != nil {
			return err
		}
		section.Fields = fields
	default:
		return &imapwire.DecoderExpectError{Message: fmt.Sprintf("unknown section specifier %v", specifier)}
	}

	if !dec.ExpectSpecial(']') {
		return dec.Err()
	}
	return nil
}

func readHeaderList(dec *imapwire.Decoder) ([]string, error) {
	var l []string
	err := dec.ExpectList(func() error {
		var s string
		if !dec.ExpectAString(&s) {
			return dec.Err()
		}
		l = append(l, s)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("in header-list: %w", err)
	}
	if len(l) == 0 {
		return nil, &imapwire.DecoderExpectError{Message: "empty header-list"}
	}
	return l, nil
}

// maybeReadPartial reads an optional "<" number ["." nz-number] ">".
func maybeReadPartial(dec *imapwire.Decoder) (*imap.SectionPartial, error) {
	if !dec.Special('<') {
		return nil, dec.Err()
	}
	partial := imap.SectionPartial{Size: -1}
	if !dec.ExpectNumber64(&partial.Offset) {
		return nil, dec.Err()
	}
	if dec.Special('.') {
		var size uint32
		if !dec.ExpectNzNumber(&size) {
			return nil, dec.Err()
		}
		partial.Size = int64(size)
	}
	if !dec.ExpectSpecial('>') {
		return nil, dec.Err()
	}
	return &partial, nil
}

func readFetchModifier(dec *imapwire.Decoder, options *imap.FetchOptions) error {
	var name string
	if !dec.ExpectAtom(&name) {
		return dec.Err()
	}
	switch strings.ToUpper(name) {
	case "CHANGEDSINCE":
		var modSeq uint64
		if !dec.ExpectSP() || !dec.ExpectModSeq(&modSeq) {
			return dec.Err()
		}
		if modSeq == 0 {
			return &imapwire.DecoderExpectError{Message: "CHANGEDSINCE requires a non-zero mod-sequence"}
		}
		options.ChangedSince = modSeq
	case "VANISHED":
		options.Vanished = true
	default:
		return newUnknownArgError("FETCH modifier", name)
	}
	return nil
}
