package imaptraceserver

import (
	"github.com/emersion/go-sasl"

	"github.com/emersion/go-imapcmd"
	"github.com/emersion/go-imapcmd/imapserver"
)

type session struct {
	server *Server // immutable
	user   *User   // nil until authenticated
}

var _ imapserver.Session = (*session)(nil)

var errNotAuthenticated = &imap.Error{
	Type: imap.StatusResponseTypeNo,
	Text: "Not authenticated",
}

func (sess *session) Close() error {
	return nil
}

func (sess *session) Handle(w *imapserver.ResponseWriter, req *imapserver.Request) error {
	sess.server.Dump(req)

	switch cmd := req.Command.(type) {
	case imapserver.NoopCommand, imapserver.LogoutCommand, imapserver.IdleCommand:
		return nil
	case imapserver.StartTLSCommand:
		return &imap.Error{
			Type: imap.StatusResponseTypeNo,
			Code: imap.ResponseCodeCannot,
			Text: "TLS is not available on this connection",
		}
	case *imapserver.IDCommand:
		return w.WriteUntagged(`ID ("name" "imaptraceserver")`)
	case *imapserver.LoginCommand:
		return sess.login(cmd.Username, cmd.Password)
	case *imapserver.AuthenticateCommand:
		return sess.authenticate(w, cmd)
	}

	if sess.user == nil {
		return errNotAuthenticated
	}

	switch cmd := req.Command.(type) {
	case *imapserver.AppendCommand:
		return w.WriteUntagged("OK " + describeMessage(cmd.Message))
	case *imapserver.ReplaceCommand:
		return w.WriteUntagged("OK " + describeMessage(cmd.Message))
	}
	return nil
}

func (sess *session) login(username, password string) error {
	u := sess.server.user(username)
	if u == nil {
		return imapserver.ErrAuthFailed
	}
	if err := u.Login(username, password); err != nil {
		return err
	}
	sess.user = u
	return nil
}

func (sess *session) authenticate(w *imapserver.ResponseWriter, cmd *imapserver.AuthenticateCommand) error {
	if cmd.Mechanism != sasl.Plain {
		return &imap.Error{
			Type: imap.StatusResponseTypeNo,
			Code: imap.ResponseCodeCannot,
			Text: "SASL mechanism not supported",
		}
	}

	saslServer := sasl.NewPlainServer(func(identity, username, password string) error {
		if identity != "" && identity != username {
			return imapserver.ErrAuthFailed
		}
		return sess.login(username, password)
	})

	resp := cmd.InitialResponse
	for {
		challenge, done, err := saslServer.Next(resp)
		if err != nil {
			return err
		} else if done {
			return nil
		}

		resp, err = w.ReadSASLResponse(challenge)
		if err != nil {
			return err
		}
	}
}
