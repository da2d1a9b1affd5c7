package imapserver

import (
	"fmt"
	"strings"

	"github.com/emersion/go-imapcmd"
	"github.com/emersion/go-imapcmd/internal/imapwire"
)

// GetQuotaCommand is a GETQUOTA command.
//
// See RFC 9208.
type GetQuotaCommand struct {
	Root string
}

type GetQuotaRootCommand struct {
	Mailbox string
}

// SetQuotaCommand is a SETQUOTA command. An empty list of limits removes all
// limits from the quota root.
type SetQuotaCommand struct {
	Root   string
	Limits []imap.QuotaLimit
}

func (*GetQuotaCommand) command()     {}
func (*GetQuotaRootCommand) command() {}
func (*SetQuotaCommand) command()     {}

func decodeGetQuota(dec *imapwire.Decoder, numKind NumKind, options *Options) (Command, error) {
	var cmd GetQuotaCommand
	if !dec.ExpectSP() || !dec.ExpectAString(&cmd.Root) || !dec.ExpectCRLF() {
		return nil, dec.Err()
	}
	return &cmd, nil
}

func decodeSetQuota(dec *imapwire.Decoder, numKind NumKind, options *Options) (Command, error) {
	var cmd SetQuotaCommand
	if !dec.ExpectSP() || !dec.ExpectAString(&cmd.Root) || !dec.ExpectSP() {
		return nil, dec.Err()
	}
	err := dec.ExpectList(func() error {
		var (
			resource string
			limit    imap.QuotaLimit
		)
		if !dec.ExpectAtom(&resource) || !dec.ExpectSP() || !dec.ExpectNumber64(&limit.Limit) {
			return dec.Err()
		}
		limit.Resource = imap.QuotaResourceType(strings.ToUpper(resource))
		cmd.Limits = append(cmd.Limits, limit)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("in setquota-list: %w", err)
	}
	if !dec.ExpectCRLF() {
		return nil, dec.Err()
	}
	return &cmd, nil
}
