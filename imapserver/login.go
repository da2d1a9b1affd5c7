package imapserver

import (
	"github.com/emersion/go-imapcmd/internal/imapwire"
)

// LoginCommand is a LOGIN command.
type LoginCommand struct {
	Username string
	Password string
}

func (*LoginCommand) command() {}

func decodeLogin(dec *imapwire.Decoder, numKind NumKind, options *Options) (Command, error) {
	var cmd LoginCommand
	if !dec.ExpectSP() || !dec.ExpectAString(&cmd.Username) || !dec.ExpectSP() || !dec.ExpectAString(&cmd.Password) || !dec.ExpectCRLF() {
		return nil, dec.Err()
	}
	return &cmd, nil
}
