package internal

import (
	"encoding/base64"
)

// EncodeSASL encodes a SASL challenge or response. An empty payload is
// written as "=" (RFC 4959).
func EncodeSASL(b []byte) string {
	if len(b) == 0 {
		return "="
	}
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeSASL decodes a SASL initial response or continuation line.
func DecodeSASL(s string) ([]byte, error) {
	if s == "=" {
		// go-sasl treats nil as no challenge/response, so return a non-nil
		// empty byte slice
		return []byte{}, nil
	}
	return base64.StdEncoding.DecodeString(s)
}
