package imaptraceserver

import (
	"crypto/subtle"

	"github.com/emersion/go-imapcmd/imapserver"
)

// User is an account allowed to log in.
type User struct {
	username, password string
}

func NewUser(username, password string) *User {
	return &User{username: username, password: password}
}

func (u *User) Login(username, password string) error {
	if username != u.username {
		return imapserver.ErrAuthFailed
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(u.password)) != 1 {
		return imapserver.ErrAuthFailed
	}
	return nil
}
