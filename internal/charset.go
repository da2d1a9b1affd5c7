package internal

import (
	"bytes"
	"io"
	"strings"

	"github.com/emersion/go-message/charset"
)

// CheckCharset returns an error if the charset is unknown.
func CheckCharset(name string) error {
	if isUTF8(name) {
		return nil
	}
	_, err := charset.Reader(name, bytes.NewReader(nil))
	return err
}

// DecodeCharset converts s from the named charset to UTF-8.
func DecodeCharset(name, s string) (string, error) {
	if name == "" || isUTF8(name) {
		return s, nil
	}
	r, err := charset.Reader(name, strings.NewReader(s))
	if err != nil {
		return "", err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func isUTF8(name string) bool {
	return strings.EqualFold(name, "UTF-8") || strings.EqualFold(name, "US-ASCII")
}
