package imapserver

import (
	"fmt"
	"strings"

	"github.com/emersion/go-imapcmd"
	"github.com/emersion/go-imapcmd/internal"
)

// ErrAuthFailed can be returned by Session.Handle on authentication failure.
var ErrAuthFailed = &imap.Error{
	Type: imap.StatusResponseTypeNo,
	Code: imap.ResponseCodeAuthenticationFailed,
	Text: "Authentication failed",
}

// Session handles the commands of a single connection.
//
// Commands are handed over one at a time, in the order they were received.
type Session interface {
	// Handle executes a decoded command. Returning an *imap.Error sends it
	// back as the tagged status response, any other error is logged and
	// reported as a server bug. A nil error results in a tagged OK.
	//
	// IDLE, LOGOUT and COMPRESS are completed by the connection once Handle
	// returns nil.
	Handle(w *ResponseWriter, req *Request) error
	Close() error
}

// ResponseWriter writes responses for the command being handled.
type ResponseWriter struct {
	conn *conn
}

// WriteUntagged writes an untagged response line. The text is written as is.
func (w *ResponseWriter) WriteUntagged(text string) error {
	enc := newResponseEncoder(w.conn)
	defer enc.end()
	return enc.Atom("*").SP().Text(text).CRLF()
}

// ReadSASLResponse sends a SASL challenge to the client and waits for its
// response. A client cancelling the exchange with "*" results in an
// *imap.Error.
func (w *ResponseWriter) ReadSASLResponse(challenge []byte) ([]byte, error) {
	enc := newResponseEncoder(w.conn)
	err := writeContReq(enc.Encoder, internal.EncodeSASL(challenge))
	enc.end()
	if err != nil {
		return nil, err
	}

	line, err := w.conn.readLine()
	if err != nil {
		return nil, err
	}
	if line == "*" {
		return nil, &imap.Error{
			Type: imap.StatusResponseTypeBad,
			Text: "AUTHENTICATE cancelled",
		}
	}
	resp, err := internal.DecodeSASL(line)
	if err != nil {
		return nil, newClientBugError(fmt.Sprintf("Invalid SASL response: %v", err))
	}
	return resp, nil
}

// enabledCaps filters the capabilities requested by ENABLE.
func enabledCaps(caps imap.CapSet, requested []string) []string {
	var l []string
	for _, name := range requested {
		c := imap.Cap(strings.ToUpper(name))
		switch c {
		case imap.CapCondStore, imap.CapQResync, imap.CapUTF8Accept, imap.CapMetadata:
			if caps.Has(c) {
				l = append(l, string(c))
			}
		}
	}
	return l
}
