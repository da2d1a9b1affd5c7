package imapwire

import (
	"bufio"
	"bytes"
	"testing"
)

func TestEncoder(t *testing.T) {
	tests := []struct {
		name string
		f    func(enc *Encoder)
		want string
	}{
		{
			name: "status",
			f: func(enc *Encoder) {
				enc.Atom("A1").SP().Atom("BAD").SP().Special('[').Atom("CLIENTBUG").Special(']').SP().Text("oops")
			},
			want: "A1 BAD [CLIENTBUG] oops\r\n",
		},
		{
			name: "quoted",
			f: func(enc *Encoder) {
				enc.String(`a "b" \c`)
			},
			want: `"a \"b\" \\c"` + "\r\n",
		},
		{
			name: "literal",
			f: func(enc *Encoder) {
				enc.String("two\r\nlines")
			},
			want: "{10}\r\ntwo\r\nlines\r\n",
		},
		{
			name: "list",
			f: func(enc *Encoder) {
				l := []string{"IMAP4rev1", "IDLE"}
				enc.List(len(l), func(i int) { enc.Atom(l[i]) }).SP().Number(42).SP().NIL()
			},
			want: "(IMAP4rev1 IDLE) 42 NIL\r\n",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			enc := NewEncoder(bufio.NewWriter(&buf))
			tc.f(enc)
			if err := enc.CRLF(); err != nil {
				t.Fatalf("CRLF() = %v", err)
			}
			if got := buf.String(); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}
