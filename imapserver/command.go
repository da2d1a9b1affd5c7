package imapserver

import (
	"fmt"

	"github.com/emersion/go-imapcmd/internal/imapwire"
)

// Command is a decoded IMAP command. The concrete type depends on the command
// name, e.g. *FetchCommand for FETCH.
type Command interface {
	command()
}

// Request is a decoded tagged command.
type Request struct {
	Tag string
	// Name is the upper-case command name. For UID commands, it's the name
	// following "UID".
	Name    string
	UID     bool
	Command Command
}

// NumKind describes how a number should be interpreted: either as a sequence
// number, either as a UID.
type NumKind int

const (
	NumKindSeq NumKind = 1 + iota
	NumKindUID
)

// String implements fmt.Stringer.
func (kind NumKind) String() string {
	switch kind {
	case NumKindSeq:
		return "seq"
	case NumKindUID:
		return "uid"
	default:
		panic(fmt.Errorf("imapserver: unknown NumKind %d", kind))
	}
}

type (
	NoopCommand       struct{}
	CapabilityCommand struct{}
	LogoutCommand     struct{}
	CheckCommand      struct{}
	CloseCommand      struct{}
	UnselectCommand   struct{}
	StartTLSCommand   struct{}
	NamespaceCommand  struct{}
	IdleCommand       struct{}
)

func (NoopCommand) command()       {}
func (CapabilityCommand) command() {}
func (LogoutCommand) command()     {}
func (CheckCommand) command()      {}
func (CloseCommand) command()      {}
func (UnselectCommand) command()   {}
func (StartTLSCommand) command()   {}
func (NamespaceCommand) command()  {}
func (IdleCommand) command()       {}

// decodeNoArgs returns a decoder for a command without arguments.
func decodeNoArgs(cmd Command) decodeFunc {
	return func(dec *imapwire.Decoder, numKind NumKind, options *Options) (Command, error) {
		if !dec.ExpectCRLF() {
			return nil, dec.Err()
		}
		return cmd, nil
	}
}
