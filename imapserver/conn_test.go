package imapserver_test

import (
	"bufio"
	"compress/flate"
	"errors"
	"io"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emersion/go-imapcmd"
	"github.com/emersion/go-imapcmd/imapserver"
)

type handleFunc func(w *imapserver.ResponseWriter, req *imapserver.Request) error

type testSession struct {
	handle handleFunc
	closed bool
}

func (sess *testSession) Handle(w *imapserver.ResponseWriter, req *imapserver.Request) error {
	if sess.handle == nil {
		return nil
	}
	return sess.handle(w, req)
}

func (sess *testSession) Close() error {
	sess.closed = true
	return nil
}

type testLogger struct {
	t *testing.T
}

func (l testLogger) Printf(format string, args ...interface{}) {
	l.t.Logf(format, args...)
}

type testClient struct {
	t  *testing.T
	c  net.Conn
	br *bufio.Reader
}

func (tc *testClient) write(s string) {
	tc.t.Helper()
	_, err := io.WriteString(tc.c, s)
	require.NoError(tc.t, err)
}

func (tc *testClient) readLine() string {
	tc.t.Helper()
	line, err := tc.br.ReadString('\n')
	require.NoError(tc.t, err)
	return strings.TrimSuffix(line, "\r\n")
}

func (tc *testClient) expect(want string) {
	tc.t.Helper()
	assert.Equal(tc.t, want, tc.readLine())
}

func (tc *testClient) expectEOF() {
	tc.t.Helper()
	_, err := tc.br.ReadString('\n')
	assert.Equal(tc.t, io.EOF, err)
}

// newTestConn starts serving a connection. The returned channel is closed
// once the server is done with the connection.
func newTestConn(t *testing.T, sess *testSession, options *imapserver.Options) (*testClient, <-chan struct{}) {
	serverConn, clientConn := net.Pipe()
	if options == nil {
		options = &imapserver.Options{}
	}
	options.Logger = testLogger{t}
	server := &imapserver.Server{
		NewSession: func() (imapserver.Session, error) {
			return sess, nil
		},
		Options: options,
	}

	done := make(chan struct{})
	go func() {
		server.ServeConn(serverConn)
		close(done)
	}()
	t.Cleanup(func() {
		clientConn.Close()
		<-done
	})

	tc := &testClient{t: t, c: clientConn, br: bufio.NewReader(clientConn)}
	tc.expect("* OK IMAP4rev1 server ready")
	return tc, done
}

func TestConn(t *testing.T) {
	var names []string
	sess := &testSession{handle: func(w *imapserver.ResponseWriter, req *imapserver.Request) error {
		names = append(names, req.Name)
		return nil
	}}
	tc, done := newTestConn(t, sess, nil)

	tc.write("a1 NOOP\r\n")
	tc.expect("a1 OK NOOP completed")

	tc.write("a2 LOGIN {5}\r\n")
	tc.expect("+ Ready for literal data")
	tc.write("alice {4+}\r\npass\r\n")
	tc.expect("a2 OK LOGIN completed")

	tc.write("a3 FOO\r\n")
	tc.expect("a3 BAD [CLIENTBUG] Syntax error: unknown command FOO")

	tc.write("a4 uid fetch 1:* (FLAGS)\r\n")
	tc.expect("a4 OK UID FETCH completed")

	tc.write("a5 CAPABILITY\r\n")
	line := tc.readLine()
	assert.True(t, strings.HasPrefix(line, "* CAPABILITY IMAP4rev1 "), line)
	assert.Contains(t, line, " LITERAL+")
	tc.expect("a5 OK CAPABILITY completed")

	tc.write("a6 ENABLE condstore X-UNKNOWN\r\n")
	tc.expect("* ENABLED CONDSTORE")
	tc.expect("a6 OK ENABLE completed")

	tc.write("a7 IDLE\r\n")
	tc.expect("+ idling")
	tc.write("DONE\r\n")
	tc.expect("a7 OK IDLE completed")

	tc.write("a8 LOGOUT\r\n")
	tc.expect("* BYE Logging out")
	tc.expect("a8 OK LOGOUT completed")
	tc.expectEOF()

	<-done
	assert.True(t, sess.closed)
	// CAPABILITY is answered by the connection itself
	assert.Equal(t, []string{"NOOP", "LOGIN", "FETCH", "ENABLE", "IDLE", "LOGOUT"}, names)
}

func TestConn_handleErrors(t *testing.T) {
	sess := &testSession{handle: func(w *imapserver.ResponseWriter, req *imapserver.Request) error {
		switch req.Name {
		case "SELECT":
			return &imap.Error{
				Type: imap.StatusResponseTypeNo,
				Code: imap.ResponseCodeCannot,
				Text: "No such mailbox",
			}
		case "LOGIN":
			return imapserver.ErrAuthFailed
		case "CHECK":
			return errors.New("disk on fire")
		case "NAMESPACE":
			return w.WriteUntagged("NAMESPACE ((\"\" \"/\")) NIL NIL")
		}
		return nil
	}}
	tc, _ := newTestConn(t, sess, nil)

	tc.write("a1 SELECT foo\r\n")
	tc.expect("a1 NO [CANNOT] No such mailbox")

	tc.write("a2 LOGIN alice wrong\r\n")
	tc.expect("a2 NO [AUTHENTICATIONFAILED] Authentication failed")

	tc.write("a3 CHECK\r\n")
	tc.expect("a3 NO [SERVERBUG] Internal server error")

	tc.write("a4 NAMESPACE\r\n")
	tc.expect("* NAMESPACE ((\"\" \"/\")) NIL NIL")
	tc.expect("a4 OK NAMESPACE completed")

	tc.write("a5 IDLE\r\n")
	tc.expect("+ idling")
	tc.write("NOT DONE\r\n")
	tc.expect("a5 BAD [CLIENTBUG] Syntax error: expected DONE to end IDLE command")
}

func TestConn_literalLimit(t *testing.T) {
	called := false
	sess := &testSession{handle: func(w *imapserver.ResponseWriter, req *imapserver.Request) error {
		if req.Name == "APPEND" {
			called = true
		}
		return nil
	}}
	tc, _ := newTestConn(t, sess, &imapserver.Options{MaxLiteralSize: 4})

	tc.write("a1 APPEND INBOX {10}\r\n")
	tc.expect("a1 BAD [TOOBIG] literal too big")

	tc.write("a2 APPEND INBOX {10+}\r\n0123456789\r\n")
	tc.expect("a2 BAD [TOOBIG] literal too big")

	tc.write("a3 NOOP\r\n")
	tc.expect("a3 OK NOOP completed")
	assert.False(t, called)
}

func TestConn_abandonedLiteral(t *testing.T) {
	called := false
	sess := &testSession{handle: func(w *imapserver.ResponseWriter, req *imapserver.Request) error {
		called = true
		return nil
	}}
	tc, done := newTestConn(t, sess, nil)

	tc.write("a1 APPEND INBOX {10}\r\n")
	tc.expect("+ Ready for literal data")
	tc.write("0123")
	tc.c.Close()

	<-done
	assert.False(t, called)
	assert.True(t, sess.closed)
}

func TestConn_authenticate(t *testing.T) {
	sess := &testSession{handle: func(w *imapserver.ResponseWriter, req *imapserver.Request) error {
		if _, ok := req.Command.(*imapserver.AuthenticateCommand); !ok {
			return nil
		}
		resp, err := w.ReadSASLResponse([]byte("challenge"))
		if err != nil {
			return err
		}
		if string(resp) != "response" {
			return imapserver.ErrAuthFailed
		}
		return nil
	}}
	tc, _ := newTestConn(t, sess, nil)

	tc.write("a1 AUTHENTICATE X-TEST\r\n")
	tc.expect("+ Y2hhbGxlbmdl")
	tc.write("cmVzcG9uc2U=\r\n")
	tc.expect("a1 OK AUTHENTICATE completed")

	tc.write("a2 AUTHENTICATE X-TEST\r\n")
	tc.expect("+ Y2hhbGxlbmdl")
	tc.write("*\r\n")
	tc.expect("a2 BAD AUTHENTICATE cancelled")
}

func TestConn_newSessionError(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer clientConn.Close()
	server := &imapserver.Server{
		NewSession: func() (imapserver.Session, error) {
			return nil, &imap.Error{Type: imap.StatusResponseTypeBye, Text: "Too many connections"}
		},
		Options: &imapserver.Options{Logger: testLogger{t}},
	}
	done := make(chan struct{})
	go func() {
		server.ServeConn(serverConn)
		close(done)
	}()

	tc := &testClient{t: t, c: clientConn, br: bufio.NewReader(clientConn)}
	tc.expect("* BYE Too many connections")
	tc.expectEOF()
	<-done
}

func TestConn_compress(t *testing.T) {
	tc, _ := newTestConn(t, &testSession{}, nil)

	tc.write("a1 COMPRESS DEFLATE\r\n")
	tc.expect("a1 OK COMPRESS completed")

	fw, err := flate.NewWriter(tc.c, flate.DefaultCompression)
	require.NoError(t, err)
	br := bufio.NewReader(flate.NewReader(tc.c))
	send := func(s string) {
		_, err := io.WriteString(fw, s)
		require.NoError(t, err)
		require.NoError(t, fw.Flush())
	}
	recv := func() string {
		line, err := br.ReadString('\n')
		require.NoError(t, err)
		return strings.TrimSuffix(line, "\r\n")
	}

	send("a2 NOOP\r\n")
	assert.Equal(t, "a2 OK NOOP completed", recv())

	send("a3 COMPRESS DEFLATE\r\n")
	assert.Equal(t, "a3 NO [COMPRESSIONACTIVE] Compression is already active", recv())
}

func TestConn_compressUnknownMechanism(t *testing.T) {
	tc, _ := newTestConn(t, &testSession{}, nil)

	tc.write("a1 COMPRESS LZ4\r\n")
	tc.expect("a1 BAD [CLIENTBUG] Unsupported compression mechanism LZ4")

	tc.write("a2 NOOP\r\n")
	tc.expect("a2 OK NOOP completed")
}
