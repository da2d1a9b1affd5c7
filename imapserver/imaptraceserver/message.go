package imaptraceserver

import (
	"bufio"
	"bytes"
	"fmt"

	gomessage "github.com/emersion/go-message"
	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-message/textproto"
)

// describeMessage summarizes an appended message from its header.
func describeMessage(buf []byte) string {
	br := bufio.NewReader(bytes.NewReader(buf))
	header, err := textproto.ReadHeader(br)
	if err != nil {
		return fmt.Sprintf("Received %v bytes with a malformed header", len(buf))
	}
	h := mail.Header{Header: gomessage.Header{Header: header}}

	subject, err := h.Subject()
	if err != nil {
		subject = h.Get("Subject")
	}
	from, err := h.AddressList("From")
	if err != nil || len(from) == 0 {
		return fmt.Sprintf("Received %v bytes, subject %q", len(buf), subject)
	}
	return fmt.Sprintf("Received %v bytes from %v, subject %q", len(buf), from[0].Address, subject)
}
