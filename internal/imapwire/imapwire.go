// Package imapwire implements the IMAP wire protocol for command decoding.
//
// The IMAP wire protocol is defined in RFC 9051 section 4. A Decoder reads
// the client side of the conversation one line at a time, an Encoder writes
// server responses.
package imapwire
