// Package imaptraceserver implements an IMAP server which authenticates users
// and records every decoded command, without storing any mail.
package imaptraceserver

import (
	"io"
	"sync"

	"github.com/davecgh/go-spew/spew"

	"github.com/emersion/go-imapcmd/imapserver"
)

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Server is a server instance.
//
// A server contains a list of users.
type Server struct {
	mutex sync.Mutex
	users map[string]*User
	dump  io.Writer
}

// New creates a new server. Decoded requests are dumped to w, which may be
// nil.
func New(w io.Writer) *Server {
	return &Server{
		users: make(map[string]*User),
		dump:  w,
	}
}

// NewSession creates a new IMAP session.
func (s *Server) NewSession() (imapserver.Session, error) {
	return &session{server: s}, nil
}

func (s *Server) user(username string) *User {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.users[username]
}

// AddUser adds a user to the server.
func (s *Server) AddUser(user *User) {
	s.mutex.Lock()
	s.users[user.username] = user
	s.mutex.Unlock()
}

// Dump writes a human-readable representation of req.
func (s *Server) Dump(req *imapserver.Request) {
	if s.dump == nil {
		return
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	dumpConfig.Fdump(s.dump, req)
}
