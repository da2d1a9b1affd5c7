package internal

import (
	"compress/flate"
	"io"
	"net"
)

// deflateConn compresses both directions of a connection after a successful
// COMPRESS DEFLATE command.
type deflateConn struct {
	net.Conn

	r io.ReadCloser
	w *flate.Writer
}

func (c *deflateConn) Read(b []byte) (int, error) {
	return c.r.Read(b)
}

// Write compresses b and flushes the compressor: callers write whole
// responses at once, and the client must be able to decode them right away.
func (c *deflateConn) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	if err != nil {
		return n, err
	}
	return n, c.w.Flush()
}

func (c *deflateConn) Close() error {
	rErr := c.r.Close()
	wErr := c.w.Close()
	if err := c.Conn.Close(); err != nil {
		return err
	}
	if rErr != nil {
		return rErr
	}
	return wErr
}

// NewDeflateConn wraps c with raw DEFLATE (RFC 1951) compression, as required
// by RFC 4978. r is read instead of c, so that data already buffered from c
// isn't lost.
func NewDeflateConn(c net.Conn, r io.Reader, level int) (net.Conn, error) {
	w, err := flate.NewWriter(c, level)
	if err != nil {
		return nil, err
	}
	return &deflateConn{
		Conn: c,
		r:    flate.NewReader(r),
		w:    w,
	}, nil
}
