// Package imapserver decodes IMAP client commands and serves them over
// network connections.
package imapserver

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/emersion/go-imapcmd"
)

var defaultRegistry = NewRegistry()

// Server accepts IMAP connections and hands decoded commands to sessions.
type Server struct {
	// NewSession is called when a client connects.
	NewSession func() (Session, error)
	// Options is used for every connection, it may be nil.
	Options *Options
	// Registry defaults to the registry returned by NewRegistry.
	Registry *Registry
	// Caps is the list of capabilities advertised by the CAPABILITY command.
	// If nil, the capabilities of the decoder are advertised.
	Caps imap.CapSet
}

func (s *Server) registry() *Registry {
	if s.Registry == nil {
		return defaultRegistry
	}
	return s.Registry
}

func (s *Server) caps() imap.CapSet {
	if s.Caps == nil {
		return DefaultCaps
	}
	return s.Caps
}

// DefaultCaps contains the capabilities whose syntax is fully decoded.
var DefaultCaps = imap.NewCapSet(
	imap.CapIMAP4rev1,
	imap.CapNamespace,
	imap.CapUnselect,
	imap.CapUIDPlus,
	imap.CapESearch,
	imap.CapSearchRes,
	imap.CapEnable,
	imap.CapIdle,
	imap.CapSASLIR,
	imap.CapListExtended,
	imap.CapListStatus,
	imap.CapMove,
	imap.CapLiteralPlus,
	imap.CapStatusSize,
	imap.CapACL,
	imap.CapChildren,
	imap.CapCompressDeflate,
	imap.CapQResync,
	imap.CapCreateSpecialUse,
	imap.CapID,
	imap.CapMetadata,
	imap.CapObjectID,
	imap.CapQuota,
	imap.CapQuotaSet,
	imap.CapReplace,
	imap.CapSaveDate,
	imap.CapSpecialUse,
	imap.CapUTF8Accept,
	imap.CapWithin,
)

// Serve accepts connections on ln. It returns nil once ln is closed.
func (s *Server) Serve(ln net.Listener) error {
	var delay time.Duration
	for {
		conn, err := ln.Accept()
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			if delay == 0 {
				delay = 5 * time.Millisecond
			} else {
				delay *= 2
			}
			if max := 1 * time.Second; delay > max {
				delay = max
			}
			s.Options.logger().Printf("accept error (retrying in %v): %v", delay, err)
			time.Sleep(delay)
			continue
		} else if errors.Is(err, net.ErrClosed) {
			return nil
		} else if err != nil {
			return fmt.Errorf("accept error: %w", err)
		}

		delay = 0
		go newConn(conn, s).serve()
	}
}

// ServeConn serves a single connection and blocks until it's closed.
func (s *Server) ServeConn(c net.Conn) {
	newConn(c, s).serve()
}
