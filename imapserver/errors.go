package imapserver

import (
	"errors"
	"fmt"

	"github.com/emersion/go-imapcmd"
	"github.com/emersion/go-imapcmd/internal/imapwire"
)

// ErrAbandoned is wrapped by decode errors returned when the connection ends
// in the middle of a command. No response should be sent.
var ErrAbandoned = imapwire.ErrAbandoned

// ErrorKind classifies decode errors.
type ErrorKind int

const (
	// ErrorKindSyntax means the command grammar was violated.
	ErrorKindSyntax ErrorKind = 1 + iota
	// ErrorKindSemantic means a syntactically valid value was rejected.
	ErrorKindSemantic
	// ErrorKindLimit means a line or a literal exceeded a configured limit.
	ErrorKindLimit
)

// String implements fmt.Stringer.
func (kind ErrorKind) String() string {
	switch kind {
	case ErrorKindSyntax:
		return "syntax"
	case ErrorKindSemantic:
		return "semantic"
	case ErrorKindLimit:
		return "limit"
	default:
		panic(fmt.Errorf("imapserver: unknown ErrorKind %d", kind))
	}
}

// DecodeError is returned when a command cannot be decoded. The connection
// can continue with the next command.
type DecodeError struct {
	Kind ErrorKind
	Tag  string
	Name string
	Err  error
}

func (err *DecodeError) Error() string {
	if err.Name == "" {
		return fmt.Sprintf("imapserver: %v error: %v", err.Kind, err.Err)
	}
	return fmt.Sprintf("imapserver: %v error in %v: %v", err.Kind, err.Name, err.Err)
}

func (err *DecodeError) Unwrap() error {
	return err.Err
}

// Response returns the status response to send back to the client, tagged
// with Tag.
func (err *DecodeError) Response() *imap.StatusResponse {
	var (
		imapErr  *imap.Error
		decErr   *imapwire.DecoderExpectError
		limitErr *imapwire.LimitError
	)
	switch {
	case errors.As(err.Err, &imapErr):
		return (*imap.StatusResponse)(imapErr)
	case errors.As(err.Err, &limitErr):
		return &imap.StatusResponse{
			Type: imap.StatusResponseTypeBad,
			Code: imap.ResponseCodeTooBig,
			Text: fmt.Sprintf("%v too big", limitErr.What),
		}
	case errors.As(err.Err, &decErr):
		return &imap.StatusResponse{
			Type: imap.StatusResponseTypeBad,
			Code: imap.ResponseCodeClientBug,
			Text: "Syntax error: " + decErr.Message,
		}
	default:
		return &imap.StatusResponse{
			Type: imap.StatusResponseTypeBad,
			Text: err.Err.Error(),
		}
	}
}

// newDecodeError classifies err. Errors that don't come from the grammar
// mean the command can't be completed and are returned as abandonment.
func newDecodeError(tag, name string, err error) error {
	var (
		imapErr  *imap.Error
		decErr   *imapwire.DecoderExpectError
		limitErr *imapwire.LimitError
	)
	kind := ErrorKindSyntax
	switch {
	case errors.Is(err, ErrAbandoned):
		return err
	case errors.As(err, &limitErr):
		kind = ErrorKindLimit
	case errors.As(err, &imapErr):
		kind = ErrorKindSemantic
	case errors.As(err, &decErr):
		kind = ErrorKindSyntax
	default:
		return fmt.Errorf("%w: %v", ErrAbandoned, err)
	}
	return &DecodeError{Kind: kind, Tag: tag, Name: name, Err: err}
}

func newClientBugError(text string) error {
	return &imap.Error{
		Type: imap.StatusResponseTypeBad,
		Code: imap.ResponseCodeClientBug,
		Text: text,
	}
}

func newBadCharsetError(name string) error {
	return &imap.Error{
		Type: imap.StatusResponseTypeNo,
		Code: imap.ResponseCodeBadCharset,
		Text: fmt.Sprintf("Unsupported charset %v", name),
	}
}
