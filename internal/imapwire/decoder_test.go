package imapwire

import (
	"bufio"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emersion/go-imapcmd"
)

func newTestDecoder(s string) *Decoder {
	return NewDecoder(bufio.NewReader(strings.NewReader(s)))
}

func TestDecoder_AString(t *testing.T) {
	tests := []struct {
		in  string
		out string
		ok  bool
	}{
		{"INBOX\r\n", "INBOX", true},
		{"foo]bar\r\n", "foo]bar", true},
		{"\"hello world\"\r\n", "hello world", true},
		{"\"esc \\\"q\\\" \\\\\"\r\n", "esc \"q\" \\", true},
		{"\"\"\r\n", "", true},
		{"{5}\r\nhello\r\n", "hello", true},
		{"{0}\r\n\r\n", "", true},
		{"\"bad \\n escape\"\r\n", "", false},
		{"\"unterminated\r\n", "", false},
		{"(list)\r\n", "", false},
	}
	for _, tc := range tests {
		dec := newTestDecoder(tc.in)
		var out string
		ok := dec.ExpectAString(&out) && dec.ExpectCRLF()
		if ok != tc.ok {
			t.Errorf("ExpectAString(%q) = %v, want %v (err: %v)", tc.in, ok, tc.ok, dec.Err())
		} else if ok && out != tc.out {
			t.Errorf("ExpectAString(%q) = %q, want %q", tc.in, out, tc.out)
		}
	}
}

func TestDecoder_NString(t *testing.T) {
	dec := newTestDecoder("NIL nil \"NIL\" foo\r\n")
	var s *string
	require.True(t, dec.ExpectNString(&s))
	assert.Nil(t, s)
	require.True(t, dec.ExpectSP())
	require.True(t, dec.ExpectNString(&s))
	assert.Nil(t, s)
	require.True(t, dec.ExpectSP())
	require.True(t, dec.ExpectNString(&s))
	require.NotNil(t, s)
	assert.Equal(t, "NIL", *s)
	require.True(t, dec.ExpectSP())
	require.True(t, dec.ExpectNString(&s))
	assert.Equal(t, "foo", *s)
	assert.True(t, dec.ExpectCRLF())
}

func TestDecoder_Whitespace(t *testing.T) {
	dec := newTestDecoder("a   b  \n")
	var a, b string
	require.True(t, dec.ExpectAtom(&a))
	require.True(t, dec.ExpectSP())
	require.True(t, dec.ExpectAtom(&b))
	assert.False(t, dec.SP(), "trailing spaces must be left for CRLF")
	assert.True(t, dec.ExpectCRLF())
	assert.NoError(t, dec.Err())
	assert.Equal(t, "a", a)
	assert.Equal(t, "b", b)
}

func TestDecoder_Number(t *testing.T) {
	tests := []struct {
		in  string
		out uint32
		ok  bool
	}{
		{"0", 0, true},
		{"42", 42, true},
		{"4294967295", 4294967295, true},
		{"4294967296", 0, false},
		{"abc", 0, false},
	}
	for _, tc := range tests {
		dec := newTestDecoder(tc.in + "\r\n")
		var out uint32
		ok := dec.ExpectNumber(&out)
		if ok != tc.ok {
			t.Errorf("ExpectNumber(%q) = %v, want %v", tc.in, ok, tc.ok)
		} else if ok && out != tc.out {
			t.Errorf("ExpectNumber(%q) = %v, want %v", tc.in, out, tc.out)
		}
	}

	dec := newTestDecoder("0\r\n")
	var v uint32
	assert.False(t, dec.ExpectNzNumber(&v))

	dec = newTestDecoder("9223372036854775807\r\n")
	var modSeq uint64
	require.True(t, dec.ExpectModSeq(&modSeq))
	assert.Equal(t, uint64(9223372036854775807), modSeq)

	dec = newTestDecoder("9223372036854775808\r\n")
	assert.False(t, dec.ExpectModSeq(&modSeq))
}

func TestDecoder_SyncLiteral(t *testing.T) {
	var calls []string
	dec := newTestDecoder("{3}\r\nabc rest\r\n")
	dec.CheckLiteral = func(size int64, nonSync bool) error {
		assert.Equal(t, int64(3), size)
		assert.False(t, nonSync)
		calls = append(calls, "check")
		return nil
	}
	dec.ContinuationRequest = func() error {
		calls = append(calls, "continue")
		return nil
	}

	var lit []byte
	require.True(t, dec.ExpectLiteral(&lit))
	assert.Equal(t, "abc", string(lit))
	assert.Equal(t, []string{"check", "continue"}, calls)

	var rest string
	require.True(t, dec.ExpectSP())
	require.True(t, dec.ExpectAtom(&rest))
	assert.Equal(t, "rest", rest)
	assert.True(t, dec.ExpectCRLF())
}

func TestDecoder_NonSyncLiteral(t *testing.T) {
	dec := newTestDecoder("{3+}\r\nabc\r\n")
	dec.ContinuationRequest = func() error {
		t.Error("continuation request sent for a non-synchronizing literal")
		return nil
	}
	var lit []byte
	require.True(t, dec.ExpectLiteral(&lit))
	assert.Equal(t, "abc", string(lit))
	assert.True(t, dec.ExpectCRLF())
}

func TestDecoder_RejectedLiteral(t *testing.T) {
	limit := &LimitError{What: "literal", Size: 5, Limit: 4}
	check := func(size int64, nonSync bool) error {
		if size > 4 {
			return limit
		}
		return nil
	}

	// A non-synchronizing literal is skipped so that the next command can be
	// read
	dec := newTestDecoder("{5+}\r\nhello\r\nA2 NOOP\r\n")
	dec.CheckLiteral = check
	var lit []byte
	assert.False(t, dec.ExpectLiteral(&lit))
	assert.Same(t, limit, dec.Err())
	require.NoError(t, dec.DiscardLine())

	next := NewDecoder(dec.r)
	var tag string
	require.True(t, next.ExpectAtom(&tag))
	assert.Equal(t, "A2", tag)

	// A synchronizing literal is never sent
	dec = newTestDecoder("{5}\r\nA2 NOOP\r\n")
	dec.CheckLiteral = check
	dec.ContinuationRequest = func() error {
		t.Error("continuation request sent for a rejected literal")
		return nil
	}
	assert.False(t, dec.ExpectLiteral(&lit))
	next = NewDecoder(dec.r)
	require.True(t, next.ExpectAtom(&tag))
	assert.Equal(t, "A2", tag)
}

func TestDecoder_AbandonedLiteral(t *testing.T) {
	dec := newTestDecoder("{10}\r\nshort")
	var lit []byte
	assert.False(t, dec.ExpectLiteral(&lit))
	assert.True(t, errors.Is(dec.Err(), ErrAbandoned), "got %v", dec.Err())
}

func TestDecoder_HugeLiteral(t *testing.T) {
	for _, in := range []string{
		"{9223372036854775807}\r\nx\r\n",
		"{4000000000+}\r\nshort",
	} {
		dec := newTestDecoder(in)
		var lit []byte
		if dec.ExpectLiteral(&lit) {
			t.Errorf("ExpectLiteral(%q) succeeded", in)
		} else if !errors.Is(dec.Err(), ErrAbandoned) {
			t.Errorf("ExpectLiteral(%q): got %v, want ErrAbandoned", in, dec.Err())
		}
	}
}

func TestDecoder_EmptyLiteral(t *testing.T) {
	dec := newTestDecoder("{0}\r\n\r\n")
	var lit []byte
	require.True(t, dec.ExpectLiteral(&lit))
	assert.Equal(t, []byte{}, lit)
}

func TestDecoder_DiscardLine(t *testing.T) {
	dec := newTestDecoder("A1 FOO bar {3+}\r\nabc more\r\nA2 NOOP\r\n")
	var tag string
	require.True(t, dec.ExpectAtom(&tag))
	require.NoError(t, dec.DiscardLine())

	next := NewDecoder(dec.r)
	require.True(t, next.ExpectAtom(&tag))
	assert.Equal(t, "A2", tag)
}

func TestDecoder_LineLimit(t *testing.T) {
	long := strings.Repeat("a", 100)
	dec := newTestDecoder(long + "\r\nA2 NOOP\r\n")
	dec.MaxLineLength = 32
	var s string
	assert.False(t, dec.ExpectAtom(&s))
	var limitErr *LimitError
	require.True(t, errors.As(dec.Err(), &limitErr))
	assert.Equal(t, int64(32), limitErr.Limit)

	next := NewDecoder(dec.r)
	require.True(t, next.ExpectAtom(&s))
	assert.Equal(t, "A2", s)
}

func TestDecoder_List(t *testing.T) {
	dec := newTestDecoder("(a b  c) ()\r\n")
	var items []string
	err := dec.ExpectList(func() error {
		var s string
		if !dec.ExpectAtom(&s) {
			return dec.Err()
		}
		items = append(items, s)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, items)

	require.True(t, dec.ExpectSP())
	isList, err := dec.List(func() error {
		t.Error("unexpected item in empty list")
		return nil
	})
	require.NoError(t, err)
	assert.True(t, isList)
	assert.True(t, dec.ExpectCRLF())
}

func TestDecoder_NumSet(t *testing.T) {
	tests := []struct {
		in      string
		options NumSetOptions
		out     string
		ok      bool
	}{
		{"1:4,7,9:*", NumSetOptions{}, "1:4,7,9:*", true},
		{"5:2", NumSetOptions{}, "2:5", true},
		{"*:3", NumSetOptions{}, "3:*", true},
		{"$", NumSetOptions{AllowSearchRes: true}, "$", true},
		{"$", NumSetOptions{}, "", false},
		{"0", NumSetOptions{}, "", false},
		{"1,,2", NumSetOptions{}, "", false},
	}
	for _, tc := range tests {
		dec := newTestDecoder(tc.in + "\r\n")
		var out imap.NumSet
		ok := dec.ExpectNumSet(&out, tc.options)
		if ok != tc.ok {
			t.Errorf("ExpectNumSet(%q) = %v, want %v (err: %v)", tc.in, ok, tc.ok, dec.Err())
		} else if ok && out.String() != tc.out {
			t.Errorf("ExpectNumSet(%q) = %q, want %q", tc.in, out.String(), tc.out)
		}
	}

	var uids imap.NumSet
	dec := newTestDecoder("1:*\r\n")
	assert.False(t, dec.ExpectUIDSet(&uids))
}

func TestDecoder_Mailbox(t *testing.T) {
	tests := []struct {
		in  string
		out string
		ok  bool
	}{
		{"inbox", "INBOX", true},
		{"\"InBoX\"", "INBOX", true},
		{"Archive", "Archive", true},
		{"Entw&APw-rfe", "Entwürfe", true},
		{"\"Entwürfe\"", "Entwürfe", true},
		{"&Jjo", "", false},
		{"\"bad \xff\"", "", false},
	}
	for _, tc := range tests {
		dec := newTestDecoder(tc.in + "\r\n")
		var out string
		ok := dec.ExpectMailbox(&out)
		if ok != tc.ok {
			t.Errorf("ExpectMailbox(%q) = %v, want %v (err: %v)", tc.in, ok, tc.ok, dec.Err())
		} else if ok && out != tc.out {
			t.Errorf("ExpectMailbox(%q) = %q, want %q", tc.in, out, tc.out)
		}
	}
}

func TestDecoder_EOF(t *testing.T) {
	dec := newTestDecoder("")
	assert.True(t, dec.EOF())

	dec = newTestDecoder("A1 NOOP\r\n")
	assert.False(t, dec.EOF())
}
