package imapserver

import (
	"fmt"
	"strings"

	"github.com/emersion/go-imapcmd"
	"github.com/emersion/go-imapcmd/internal/imapnum"
	"github.com/emersion/go-imapcmd/internal/imapwire"
)

// SelectCommand is a SELECT or EXAMINE command. Options.ReadOnly is set for
// EXAMINE.
type SelectCommand struct {
	Mailbox string
	Options imap.SelectOptions
}

func (*SelectCommand) command() {}

var (
	qresyncUIDsOptions  = imapwire.NumSetOptions{ParseOptions: imapnum.ParseOptions{NoStar: true}}
	qresyncKnownOptions = imapwire.NumSetOptions{ParseOptions: imapnum.ParseOptions{NoStar: true, Ordered: true}}
)

func decodeSelect(readOnly bool) decodeFunc {
	return func(dec *imapwire.Decoder, numKind NumKind, options *Options) (Command, error) {
		cmd := SelectCommand{Options: imap.SelectOptions{ReadOnly: readOnly}}
		if !dec.ExpectSP() || !dec.ExpectMailbox(&cmd.Mailbox) {
			return nil, dec.Err()
		}
		if dec.SP() {
			err := dec.ExpectList(func() error {
				return readSelectParam(dec, &cmd.Options)
			})
			if err != nil {
				return nil, fmt.Errorf("in select-params: %w", err)
			}
		}
		if !dec.ExpectCRLF() {
			return nil, dec.Err()
		}
		return &cmd, nil
	}
}

func readSelectParam(dec *imapwire.Decoder, options *imap.SelectOptions) error {
	var name string
	if !dec.ExpectAtom(&name) {
		return dec.Err()
	}
	switch strings.ToUpper(name) {
	case "CONDSTORE":
		options.CondStore = true
	case "QRESYNC":
		if !dec.ExpectSP() {
			return dec.Err()
		}
		qresync, err := readQResync(dec)
		if err != nil {
			return fmt.Errorf("in QRESYNC: %w", err)
		}
		options.QResync = qresync
	default:
		return newUnknownArgError("SELECT", name)
	}
	return nil
}

// readQResync reads:
//
//	"(" uidvalidity SP mod-sequence-value [SP known-uids]
//	    [SP "(" known-sequence-set SP known-uid-set ")"] ")"
func readQResync(dec *imapwire.Decoder) (*imap.SelectQResync, error) {
	var qresync imap.SelectQResync
	if !dec.ExpectSpecial('(') || !dec.ExpectNzNumber(&qresync.UIDValidity) || !dec.ExpectSP() || !dec.ExpectModSeq(&qresync.ModSeq) {
		return nil, dec.Err()
	}

	if dec.SP() {
		if b, _ := dec.Peek(); b != '(' {
			if !dec.ExpectNumSet(&qresync.UIDs, qresyncUIDsOptions) {
				return nil, fmt.Errorf("in known-uids: %w", dec.Err())
			}
			if !dec.SP() {
				return finishQResync(dec, &qresync)
			}
		}

		if !dec.ExpectSpecial('(') {
			return nil, dec.Err()
		}
		if !dec.ExpectNumSet(&qresync.KnownSeqNums, qresyncKnownOptions) {
			return nil, fmt.Errorf("in known-sequence-set: %w", dec.Err())
		}
		if !dec.ExpectSP() {
			return nil, dec.Err()
		}
		if !dec.ExpectNumSet(&qresync.KnownUIDs, qresyncKnownOptions) {
			return nil, fmt.Errorf("in known-uid-set: %w", dec.Err())
		}
		if !dec.ExpectSpecial(')') {
			return nil, dec.Err()
		}
	}

	return finishQResync(dec, &qresync)
}

func finishQResync(dec *imapwire.Decoder, qresync *imap.SelectQResync) (*imap.SelectQResync, error) {
	if !dec.ExpectSpecial(')') {
		return nil, dec.Err()
	}
	return qresync, nil
}
