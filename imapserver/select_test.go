package imapserver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/emersion/go-imapcmd"
	"github.com/emersion/go-imapcmd/imapserver"
)

var selectTests = []struct {
	in  string
	cmd *imapserver.SelectCommand
}{
	{
		in:  "a SELECT INBOX\r\n",
		cmd: &imapserver.SelectCommand{Mailbox: "INBOX"},
	},
	{
		in: "a EXAMINE inbox\r\n",
		cmd: &imapserver.SelectCommand{
			Mailbox: "INBOX",
			Options: imap.SelectOptions{ReadOnly: true},
		},
	},
	{
		in: "a SELECT \"Sent &AOk-l&AOk-ments\" (CONDSTORE)\r\n",
		cmd: &imapserver.SelectCommand{
			Mailbox: "Sent éléments",
			Options: imap.SelectOptions{CondStore: true},
		},
	},
	{
		in: "a SELECT INBOX (QRESYNC (67890007 20050715194045000 41,43:211,214:541))\r\n",
		cmd: &imapserver.SelectCommand{
			Mailbox: "INBOX",
			Options: imap.SelectOptions{QResync: &imap.SelectQResync{
				UIDValidity: 67890007,
				ModSeq:      20050715194045000,
				UIDs:        mustNumSet("41,43:211,214:541"),
			}},
		},
	},
	{
		in: "a SELECT INBOX (QRESYNC (1 1 1:5 (1:3 1:3)))\r\n",
		cmd: &imapserver.SelectCommand{
			Mailbox: "INBOX",
			Options: imap.SelectOptions{QResync: &imap.SelectQResync{
				UIDValidity:  1,
				ModSeq:       1,
				UIDs:         mustNumSet("1:5"),
				KnownSeqNums: mustNumSet("1:3"),
				KnownUIDs:    mustNumSet("1:3"),
			}},
		},
	},
	{
		in: "a EXAMINE INBOX (QRESYNC (3 0 (1,5:9 10,20:24)) CONDSTORE)\r\n",
		cmd: &imapserver.SelectCommand{
			Mailbox: "INBOX",
			Options: imap.SelectOptions{
				ReadOnly:  true,
				CondStore: true,
				QResync: &imap.SelectQResync{
					UIDValidity:  3,
					KnownSeqNums: mustNumSet("1,5:9"),
					KnownUIDs:    mustNumSet("10,20:24"),
				},
			},
		},
	},
}

func TestDecodeSelect(t *testing.T) {
	for _, tc := range selectTests {
		assert.Equal(t, tc.cmd, decodeCommand(t, tc.in), tc.in)
	}
}

var selectErrorTests = []struct {
	in   string
	kind imapserver.ErrorKind
}{
	{"a SELECT\r\n", imapserver.ErrorKindSyntax},
	{"a SELECT INBOX (FOO)\r\n", imapserver.ErrorKindSemantic},
	{"a SELECT INBOX (QRESYNC (0 1))\r\n", imapserver.ErrorKindSyntax},
	{"a SELECT INBOX (QRESYNC (1))\r\n", imapserver.ErrorKindSyntax},
	{"a SELECT INBOX (QRESYNC (1 1 1:*))\r\n", imapserver.ErrorKindSyntax},
	{"a SELECT INBOX (QRESYNC (1 1 1:5 (3:1 1:3)))\r\n", imapserver.ErrorKindSyntax},
	{"a SELECT INBOX (QRESYNC (1 1 1:5 (1:3 5,2)))\r\n", imapserver.ErrorKindSyntax},
	{"a SELECT INBOX (QRESYNC (1 1 1:5 (1:3)))\r\n", imapserver.ErrorKindSyntax},
	{"a SELECT INBOX (QRESYNC (1 1 $))\r\n", imapserver.ErrorKindSyntax},
}

func TestDecodeSelect_errors(t *testing.T) {
	for _, tc := range selectErrorTests {
		decErr := decodeError(t, tc.in)
		if decErr.Kind != tc.kind {
			t.Errorf("ReadRequest(%q): kind = %v, want %v (%v)", tc.in, decErr.Kind, tc.kind, decErr)
		}
	}
}
