package imapserver

import (
	"bufio"
	"io"
	"log"
	"time"

	"github.com/emersion/go-imapcmd/internal/imapwire"
)

// Logger is a facility to log error messages.
type Logger interface {
	Printf(format string, args ...interface{})
}

// Options contains decoder and server options.
//
// The zero value is valid.
type Options struct {
	// Now returns the current time. APPEND and REPLACE use it when the client
	// doesn't send a date. Defaults to time.Now.
	Now func() time.Time
	// MaxLiteralSize is the maximum size of a literal, zero means unlimited.
	MaxLiteralSize int64
	// MaxLineLength is the maximum length of a command line, literals
	// excluded. Defaults to 8192 bytes.
	MaxLineLength int
	// CheckLiteral is called before a literal is read. It overrides
	// MaxLiteralSize.
	CheckLiteral func(size int64, nonSync bool) error
	// Logger is used to log errors. Defaults to log.Default().
	Logger Logger
	// Raw ingress and egress data will be written to this writer, if any
	DebugWriter io.Writer
}

func (options *Options) now() time.Time {
	if options == nil || options.Now == nil {
		return time.Now()
	}
	return options.Now()
}

func (options *Options) logger() Logger {
	if options == nil || options.Logger == nil {
		return log.Default()
	}
	return options.Logger
}

func (options *Options) checkLiteral(size int64, nonSync bool) error {
	if options == nil {
		return nil
	}
	if options.CheckLiteral != nil {
		return options.CheckLiteral(size, nonSync)
	}
	if options.MaxLiteralSize > 0 && size > options.MaxLiteralSize {
		return &imapwire.LimitError{What: "literal", Size: size, Limit: options.MaxLiteralSize}
	}
	return nil
}

func (options *Options) wrapReadWriter(rw io.ReadWriter) io.ReadWriter {
	if options == nil || options.DebugWriter == nil {
		return rw
	}
	return struct {
		io.Reader
		io.Writer
	}{
		Reader: io.TeeReader(rw, options.DebugWriter),
		Writer: io.MultiWriter(rw, options.DebugWriter),
	}
}

// NewDecoder creates a decoder for one command read from br.
//
// continuationRequest is called before the octets of a synchronizing literal
// are read, it may be nil.
func NewDecoder(br *bufio.Reader, options *Options, continuationRequest func() error) *imapwire.Decoder {
	dec := imapwire.NewDecoder(br)
	dec.CheckLiteral = options.checkLiteral
	dec.ContinuationRequest = continuationRequest
	if options != nil {
		dec.MaxLineLength = options.MaxLineLength
	}
	return dec
}
