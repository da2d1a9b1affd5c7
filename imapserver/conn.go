package imapserver

import (
	"bufio"
	"compress/flate"
	"errors"
	"fmt"
	"io"
	"net"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/emersion/go-imapcmd"
	"github.com/emersion/go-imapcmd/internal"
	"github.com/emersion/go-imapcmd/internal/imapwire"
)

var internalServerErrorResp = &imap.StatusResponse{
	Type: imap.StatusResponseTypeNo,
	Code: imap.ResponseCodeServerBug,
	Text: "Internal server error",
}

type conn struct {
	conn     net.Conn
	server   *Server
	br       *bufio.Reader
	bw       *bufio.Writer
	encMutex sync.Mutex

	session    Session
	compressed bool
	loggedOut  bool
}

func newConn(c net.Conn, server *Server) *conn {
	rw := server.Options.wrapReadWriter(c)
	return &conn{
		conn:   c,
		server: server,
		br:     bufio.NewReader(rw),
		bw:     bufio.NewWriter(rw),
	}
}

func (c *conn) logger() Logger {
	return c.server.Options.logger()
}

func (c *conn) serve() {
	defer func() {
		if v := recover(); v != nil {
			c.logger().Printf("panic handling command: %v\n%s", v, debug.Stack())
		}

		c.conn.Close()
	}()

	var err error
	c.session, err = c.server.NewSession()
	if err != nil {
		var (
			resp    *imap.StatusResponse
			imapErr *imap.Error
		)
		if errors.As(err, &imapErr) {
			resp = (*imap.StatusResponse)(imapErr)
		} else {
			c.logger().Printf("failed to create session: %v", err)
			resp = internalServerErrorResp
		}
		if err := c.writeStatusResp("", resp); err != nil {
			c.logger().Printf("failed to write greeting: %v", err)
		}
		return
	}

	defer func() {
		if err := c.session.Close(); err != nil {
			c.logger().Printf("failed to close session: %v", err)
		}
	}()

	err = c.writeStatusResp("", &imap.StatusResponse{
		Type: imap.StatusResponseTypeOK,
		Text: "IMAP4rev1 server ready",
	})
	if err != nil {
		c.logger().Printf("failed to write greeting: %v", err)
		return
	}

	for !c.loggedOut {
		dec := NewDecoder(c.br, c.server.Options, c.writeLiteralContReq)
		if dec.EOF() {
			break
		}

		if err := c.readCommand(dec); err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, ErrAbandoned) {
				c.logger().Printf("failed to read command: %v", err)
			}
			break
		}
	}
}

// readCommand decodes and handles a single command. A returned error means
// the connection can't be used anymore.
func (c *conn) readCommand(dec *imapwire.Decoder) error {
	req, err := c.server.registry().ReadRequest(dec, c.server.Options)
	var decErr *DecodeError
	if errors.As(err, &decErr) {
		if err := dec.DiscardLine(); err != nil {
			return err
		}
		return c.writeStatusResp(decErr.Tag, decErr.Response())
	} else if err != nil {
		return err
	}

	err = c.handle(req)

	var (
		resp    *imap.StatusResponse
		imapErr *imap.Error
	)
	if errors.As(err, &imapErr) {
		resp = (*imap.StatusResponse)(imapErr)
	} else if err != nil {
		c.logger().Printf("handling %v command: %v", req.Name, err)
		resp = internalServerErrorResp
	} else {
		name := req.Name
		if req.UID {
			name = "UID " + name
		}
		resp = &imap.StatusResponse{
			Type: imap.StatusResponseTypeOK,
			Text: fmt.Sprintf("%v completed", name),
		}
	}
	if err := c.writeStatusResp(req.Tag, resp); err != nil {
		return err
	}

	if _, ok := req.Command.(*CompressCommand); ok && resp.Type == imap.StatusResponseTypeOK {
		return c.startCompress()
	}
	return nil
}

func (c *conn) handle(req *Request) error {
	w := &ResponseWriter{conn: c}
	switch cmd := req.Command.(type) {
	case CapabilityCommand:
		return c.handleCapability()
	case LogoutCommand:
		return c.handleLogout(w, req)
	case IdleCommand:
		return c.handleIdle(w, req)
	case *EnableCommand:
		return c.handleEnable(w, req, cmd)
	case *CompressCommand:
		return c.handleCompress(w, req, cmd)
	default:
		return c.session.Handle(w, req)
	}
}

func (c *conn) handleCapability() error {
	enc := newResponseEncoder(c)
	defer enc.end()
	enc.Atom("*").SP().Atom("CAPABILITY")
	for _, name := range c.server.caps().Names() {
		enc.SP().Atom(name)
	}
	return enc.CRLF()
}

func (c *conn) handleLogout(w *ResponseWriter, req *Request) error {
	if err := c.session.Handle(w, req); err != nil {
		return err
	}

	c.loggedOut = true

	return c.writeStatusResp("", &imap.StatusResponse{
		Type: imap.StatusResponseTypeBye,
		Text: "Logging out",
	})
}

func (c *conn) handleEnable(w *ResponseWriter, req *Request, cmd *EnableCommand) error {
	if err := c.session.Handle(w, req); err != nil {
		return err
	}

	enc := newResponseEncoder(c)
	defer enc.end()
	enc.Atom("*").SP().Atom("ENABLED")
	for _, name := range enabledCaps(c.server.caps(), cmd.Caps) {
		enc.SP().Atom(name)
	}
	return enc.CRLF()
}

func (c *conn) handleIdle(w *ResponseWriter, req *Request) error {
	if err := c.session.Handle(w, req); err != nil {
		return err
	}

	enc := newResponseEncoder(c)
	err := writeContReq(enc.Encoder, "idling")
	enc.end()
	if err != nil {
		return err
	}

	line, err := c.readLine()
	if err != nil {
		return err
	} else if !strings.EqualFold(line, "DONE") {
		return newClientBugError("Syntax error: expected DONE to end IDLE command")
	}
	return nil
}

func (c *conn) handleCompress(w *ResponseWriter, req *Request, cmd *CompressCommand) error {
	if c.compressed {
		return &imap.Error{
			Type: imap.StatusResponseTypeNo,
			Code: imap.ResponseCodeCompressionActive,
			Text: "Compression is already active",
		}
	}
	if cmd.Mechanism != CompressDeflate {
		return newClientBugError(fmt.Sprintf("Unsupported compression mechanism %v", cmd.Mechanism))
	}
	return c.session.Handle(w, req)
}

// startCompress switches the connection to DEFLATE once the tagged OK has
// been sent.
func (c *conn) startCompress() error {
	dc, err := internal.NewDeflateConn(c.conn, c.br, flate.DefaultCompression)
	if err != nil {
		return err
	}

	c.encMutex.Lock()
	defer c.encMutex.Unlock()
	c.compressed = true
	c.br = bufio.NewReader(dc)
	c.bw = bufio.NewWriter(c.server.Options.wrapReadWriter(dc))
	return nil
}

// readLine reads a line outside of a command, e.g. a SASL response or the
// end of IDLE.
func (c *conn) readLine() (string, error) {
	dec := NewDecoder(c.br, c.server.Options, nil)
	var line string
	dec.Text(&line)
	if !dec.ExpectCRLF() {
		if errors.Is(dec.Err(), io.EOF) {
			return "", dec.Err()
		}
		if err := dec.DiscardLine(); err != nil {
			return "", err
		}
		return "", newClientBugError("Syntax error: " + dec.Err().Error())
	}
	return strings.TrimRight(line, " "), nil
}

func (c *conn) writeLiteralContReq() error {
	enc := newResponseEncoder(c)
	defer enc.end()
	return writeContReq(enc.Encoder, "Ready for literal data")
}

func (c *conn) writeStatusResp(tag string, statusResp *imap.StatusResponse) error {
	enc := newResponseEncoder(c)
	defer enc.end()

	if tag == "" {
		tag = "*"
	}
	enc.Atom(tag).SP().Atom(string(statusResp.Type)).SP()
	if statusResp.Code != "" {
		enc.Atom(fmt.Sprintf("[%v]", statusResp.Code)).SP()
	}
	enc.Text(statusResp.Text)
	return enc.CRLF()
}

type responseEncoder struct {
	*imapwire.Encoder
	conn *conn
}

func newResponseEncoder(conn *conn) *responseEncoder {
	conn.encMutex.Lock() // released by responseEncoder.end
	return &responseEncoder{
		Encoder: imapwire.NewEncoder(conn.bw),
		conn:    conn,
	}
}

func (enc *responseEncoder) end() {
	if enc.Encoder == nil {
		panic("imapserver: responseEncoder.end called twice")
	}
	enc.Encoder = nil
	enc.conn.encMutex.Unlock()
}

func writeContReq(enc *imapwire.Encoder, text string) error {
	return enc.Atom("+").SP().Text(text).CRLF()
}
