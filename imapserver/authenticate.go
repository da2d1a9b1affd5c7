package imapserver

import (
	"strings"

	"github.com/emersion/go-sasl"

	"github.com/emersion/go-imapcmd/internal"
	"github.com/emersion/go-imapcmd/internal/imapwire"
)

var saslMechanisms = []string{sasl.Plain, sasl.Login, sasl.External, sasl.Anonymous, sasl.OAuthBearer}

// AuthenticateCommand is an AUTHENTICATE command.
//
// The SASL exchange itself is left to the caller, only the envelope is
// decoded.
type AuthenticateCommand struct {
	// Mechanism is upper-case.
	Mechanism string
	// InitialResponse is nil if the client didn't send one (SASL-IR). An
	// empty response ("=") is a non-nil empty slice.
	InitialResponse []byte
}

func (*AuthenticateCommand) command() {}

// KnownMechanism reports whether the mechanism is one of the SASL mechanisms
// implemented by go-sasl.
func (cmd *AuthenticateCommand) KnownMechanism() bool {
	for _, mech := range saslMechanisms {
		if mech == cmd.Mechanism {
			return true
		}
	}
	return false
}

func decodeAuthenticate(dec *imapwire.Decoder, numKind NumKind, options *Options) (Command, error) {
	var cmd AuthenticateCommand
	if !dec.ExpectSP() || !dec.ExpectAtom(&cmd.Mechanism) {
		return nil, dec.Err()
	}
	cmd.Mechanism = strings.ToUpper(cmd.Mechanism)

	if dec.SP() {
		var initialResp string
		if !dec.ExpectAtom(&initialResp) {
			return nil, dec.Err()
		}
		var err error
		cmd.InitialResponse, err = internal.DecodeSASL(initialResp)
		if err != nil {
			return nil, &imapwire.DecoderExpectError{Message: "invalid base64 in SASL initial response"}
		}
	}

	if !dec.ExpectCRLF() {
		return nil, dec.Err()
	}
	return &cmd, nil
}
