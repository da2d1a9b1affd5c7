package imapserver_test

import (
	"bufio"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emersion/go-imapcmd"
	"github.com/emersion/go-imapcmd/imapserver"
)

var testNow = time.Date(2023, time.March, 14, 15, 9, 26, 0, time.UTC)

var testOptions = &imapserver.Options{
	Now: func() time.Time { return testNow },
}

func readRequest(s string, options *imapserver.Options) (*imapserver.Request, error) {
	br := bufio.NewReader(strings.NewReader(s))
	dec := imapserver.NewDecoder(br, options, nil)
	return imapserver.NewRegistry().ReadRequest(dec, options)
}

// decodeCommand decodes s and fails the test if it isn't a valid command.
func decodeCommand(t *testing.T, s string) imapserver.Command {
	t.Helper()
	req, err := readRequest(s, testOptions)
	require.NoError(t, err, "ReadRequest(%q)", s)
	require.NotNil(t, req)
	return req.Command
}

// decodeError decodes s and fails the test unless a *DecodeError is returned.
func decodeError(t *testing.T, s string) *imapserver.DecodeError {
	t.Helper()
	req, err := readRequest(s, testOptions)
	require.Nil(t, req, "ReadRequest(%q) returned a request", s)
	var decErr *imapserver.DecodeError
	require.True(t, errors.As(err, &decErr), "ReadRequest(%q) = %v, want a DecodeError", s, err)
	return decErr
}

func mustNumSet(s string) imap.NumSet {
	set, err := imap.ParseNumSet(s)
	if err != nil {
		panic(err)
	}
	return set
}

var readRequestTests = []struct {
	in   string
	tag  string
	name string
	uid  bool
	cmd  imapserver.Command
}{
	{
		in:   "a1 NOOP\r\n",
		tag:  "a1",
		name: "NOOP",
		cmd:  imapserver.NoopCommand{},
	},
	{
		in:   "a2 capability\r\n",
		tag:  "a2",
		name: "CAPABILITY",
		cmd:  imapserver.CapabilityCommand{},
	},
	{
		in:   "tag.3 LOGOUT\n",
		tag:  "tag.3",
		name: "LOGOUT",
		cmd:  imapserver.LogoutCommand{},
	},
	{
		in:   "A4 LOGIN alice \"pass word\"\r\n",
		tag:  "A4",
		name: "LOGIN",
		cmd:  &imapserver.LoginCommand{Username: "alice", Password: "pass word"},
	},
	{
		in:   "A5 uid fetch 1:* FLAGS\r\n",
		tag:  "A5",
		name: "FETCH",
		uid:  true,
		cmd: &imapserver.FetchCommand{
			NumKind: imapserver.NumKindUID,
			NumSet:  mustNumSet("1:*"),
			Options: imap.FetchOptions{Flags: true, UID: true},
		},
	},
	{
		in:   "A6 LOGIN {5}\r\nalice {3+}\r\nfoo\r\n",
		tag:  "A6",
		name: "LOGIN",
		cmd:  &imapserver.LoginCommand{Username: "alice", Password: "foo"},
	},
	{
		in:   "A7 IDLE  \r\n",
		tag:  "A7",
		name: "IDLE",
		cmd:  imapserver.IdleCommand{},
	},
}

func TestRegistry_ReadRequest(t *testing.T) {
	for _, tc := range readRequestTests {
		req, err := readRequest(tc.in, testOptions)
		if err != nil {
			t.Errorf("ReadRequest(%q) = %v", tc.in, err)
			continue
		}
		if req.Tag != tc.tag || req.Name != tc.name || req.UID != tc.uid {
			t.Errorf("ReadRequest(%q) = %v %v (UID: %v), want %v %v (UID: %v)", tc.in, req.Tag, req.Name, req.UID, tc.tag, tc.name, tc.uid)
		}
		assert.Equal(t, tc.cmd, req.Command, "ReadRequest(%q)", tc.in)
	}
}

var readRequestErrorTests = []struct {
	in   string
	tag  string
	kind imapserver.ErrorKind
}{
	{"a1 FOO\r\n", "a1", imapserver.ErrorKindSyntax},
	{"a1 UID LOGIN a b\r\n", "a1", imapserver.ErrorKindSyntax},
	{"a1 UID NOOP\r\n", "a1", imapserver.ErrorKindSyntax},
	{"a1 UID\r\n", "a1", imapserver.ErrorKindSyntax},
	{"a1\r\n", "a1", imapserver.ErrorKindSyntax},
	{"+ NOOP\r\n", "", imapserver.ErrorKindSyntax},
	{"a1 NOOP extra\r\n", "a1", imapserver.ErrorKindSyntax},
	{"a1 SELECT INBOX (FOO)\r\n", "a1", imapserver.ErrorKindSemantic},
	{"a1 SEARCH CHARSET X-UNKNOWN ALL\r\n", "a1", imapserver.ErrorKindSemantic},
}

func TestRegistry_ReadRequest_errors(t *testing.T) {
	for _, tc := range readRequestErrorTests {
		req, err := readRequest(tc.in, testOptions)
		if req != nil {
			t.Errorf("ReadRequest(%q) returned a request: %+v", tc.in, req)
		}
		var decErr *imapserver.DecodeError
		if !errors.As(err, &decErr) {
			t.Errorf("ReadRequest(%q) = %v, want a DecodeError", tc.in, err)
			continue
		}
		if decErr.Tag != tc.tag {
			t.Errorf("ReadRequest(%q): tag = %q, want %q", tc.in, decErr.Tag, tc.tag)
		}
		if decErr.Kind != tc.kind {
			t.Errorf("ReadRequest(%q): kind = %v, want %v (%v)", tc.in, decErr.Kind, tc.kind, decErr)
		}
	}
}

func TestRegistry_ReadRequest_abandoned(t *testing.T) {
	for _, in := range []string{
		"a1 LOGIN {5}\r\nab",
		"a1 APPEND INBOX {10}\r\n0123",
		"a1 LOGIN alice {3+}\r\nfoo",
		"a1 APPEND INBOX {9223372036854775807}\r\nx\r\n",
	} {
		req, err := readRequest(in, testOptions)
		assert.Nil(t, req)
		if !errors.Is(err, imapserver.ErrAbandoned) {
			t.Errorf("ReadRequest(%q) = %v, want ErrAbandoned", in, err)
		}
		var decErr *imapserver.DecodeError
		assert.False(t, errors.As(err, &decErr), "ReadRequest(%q) returned a DecodeError", in)
	}
}

func TestRegistry_ReadRequest_limits(t *testing.T) {
	options := &imapserver.Options{MaxLiteralSize: 3, MaxLineLength: 32}

	_, err := readRequest("a1 LOGIN {5}\r\nhello pass\r\n", options)
	var decErr *imapserver.DecodeError
	require.True(t, errors.As(err, &decErr), "got %v", err)
	assert.Equal(t, imapserver.ErrorKindLimit, decErr.Kind)
	assert.Equal(t, "a1", decErr.Tag)
	assert.Equal(t, imap.ResponseCodeTooBig, decErr.Response().Code)

	_, err = readRequest("a1 LOGIN averyveryverylongusername password\r\n", options)
	require.True(t, errors.As(err, &decErr), "got %v", err)
	assert.Equal(t, imapserver.ErrorKindLimit, decErr.Kind)
}

func TestRegistry_ReadRequest_resync(t *testing.T) {
	br := bufio.NewReader(strings.NewReader("a1 FOO {3+}\r\nabc\r\na2 FETCH 1 (BOGUS)\r\na3 NOOP\r\n"))
	registry := imapserver.NewRegistry()

	for _, tag := range []string{"a1", "a2"} {
		dec := imapserver.NewDecoder(br, nil, nil)
		_, err := registry.ReadRequest(dec, nil)
		var decErr *imapserver.DecodeError
		require.True(t, errors.As(err, &decErr), "got %v", err)
		assert.Equal(t, tag, decErr.Tag)
		require.NoError(t, dec.DiscardLine())
	}

	dec := imapserver.NewDecoder(br, nil, nil)
	req, err := registry.ReadRequest(dec, nil)
	require.NoError(t, err)
	assert.Equal(t, "a3", req.Tag)
	assert.True(t, imapserver.NewDecoder(br, nil, nil).EOF())
}

func TestRegistry_ReadRequest_continuation(t *testing.T) {
	br := bufio.NewReader(strings.NewReader("a1 LOGIN {5}\r\nalice {3}\r\nfoo\r\n"))
	n := 0
	dec := imapserver.NewDecoder(br, nil, func() error {
		n++
		return nil
	})
	req, err := imapserver.NewRegistry().ReadRequest(dec, nil)
	require.NoError(t, err)
	assert.Equal(t, &imapserver.LoginCommand{Username: "alice", Password: "foo"}, req.Command)
	assert.Equal(t, 2, n)

	br = bufio.NewReader(strings.NewReader("a1 LOGIN {5+}\r\nalice bob\r\n"))
	dec = imapserver.NewDecoder(br, nil, func() error {
		t.Error("continuation request sent for a non-synchronizing literal")
		return nil
	})
	_, err = imapserver.NewRegistry().ReadRequest(dec, nil)
	require.NoError(t, err)
}

// Decoding the same bytes twice must yield the same request.
func TestRegistry_ReadRequest_deterministic(t *testing.T) {
	inputs := []string{
		"a1 APPEND INBOX (\\Seen) {5}\r\nhello\r\n",
		"a2 UID SEARCH RETURN (MIN COUNT) CHARSET UTF-8 OR FROM alice (SUBJECT \"hi\" SINCE 1-Feb-2020)\r\n",
		"a3 FETCH 1:3,5 (FLAGS BODY.PEEK[1.2.HEADER.FIELDS (From To)]<0.100>) (CHANGEDSINCE 12)\r\n",
		"a4 SELECT INBOX (QRESYNC (1 2 1:5 (1:3 1:3)))\r\n",
	}
	for _, in := range inputs {
		req1, err1 := readRequest(in, testOptions)
		req2, err2 := readRequest(in, testOptions)
		require.NoError(t, err1, in)
		require.NoError(t, err2, in)
		assert.Equal(t, req1, req2, in)
	}
}

func TestRegistry_Names(t *testing.T) {
	names := imapserver.NewRegistry().Names()
	assert.Contains(t, names, "FETCH")
	assert.Contains(t, names, "GETANNOTATION")
	assert.NotContains(t, names, "UID")
	assert.IsIncreasing(t, names)
}
