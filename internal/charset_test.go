package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckCharset(t *testing.T) {
	for _, name := range []string{"UTF-8", "utf-8", "US-ASCII", "ISO-8859-1", "windows-1252"} {
		assert.NoError(t, CheckCharset(name), name)
	}
	assert.Error(t, CheckCharset("X-NO-SUCH-CHARSET"))
}

func TestDecodeCharset(t *testing.T) {
	s, err := DecodeCharset("ISO-8859-1", "caf\xe9")
	require.NoError(t, err)
	assert.Equal(t, "café", s)

	s, err = DecodeCharset("", "plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", s)
}
