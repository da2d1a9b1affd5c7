package imapserver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/emersion/go-imapcmd/internal/imapwire"
)

// decodeFunc decodes the arguments of a command, starting right after the
// command name, up to and including the final CRLF.
type decodeFunc func(dec *imapwire.Decoder, numKind NumKind, options *Options) (Command, error)

type commandDecoder struct {
	decode decodeFunc
	uid    bool // can be prefixed with "UID"
}

// Registry maps command names to their decoders.
//
// A Registry is never modified after NewRegistry returns, it's safe to share
// between connections.
type Registry struct {
	decoders map[string]commandDecoder
}

// NewRegistry creates a registry with all supported commands.
func NewRegistry() *Registry {
	return &Registry{decoders: map[string]commandDecoder{
		"NOOP":       {decode: decodeNoArgs(NoopCommand{})},
		"CAPABILITY": {decode: decodeNoArgs(CapabilityCommand{})},
		"LOGOUT":     {decode: decodeNoArgs(LogoutCommand{})},
		"CHECK":      {decode: decodeNoArgs(CheckCommand{})},
		"CLOSE":      {decode: decodeNoArgs(CloseCommand{})},
		"UNSELECT":   {decode: decodeNoArgs(UnselectCommand{})},
		"STARTTLS":   {decode: decodeNoArgs(StartTLSCommand{})},
		"NAMESPACE":  {decode: decodeNoArgs(NamespaceCommand{})},
		"IDLE":       {decode: decodeNoArgs(IdleCommand{})},

		"LOGIN":        {decode: decodeLogin},
		"AUTHENTICATE": {decode: decodeAuthenticate},
		"ENABLE":       {decode: decodeEnable},
		"ID":           {decode: decodeID},
		"COMPRESS":     {decode: decodeCompress},

		"CREATE":      {decode: decodeCreate},
		"DELETE":      {decode: decodeMailboxCommand(func(name string) Command { return &DeleteCommand{Mailbox: name} })},
		"SUBSCRIBE":   {decode: decodeMailboxCommand(func(name string) Command { return &SubscribeCommand{Mailbox: name} })},
		"UNSUBSCRIBE": {decode: decodeMailboxCommand(func(name string) Command { return &UnsubscribeCommand{Mailbox: name} })},
		"RENAME":      {decode: decodeRename},
		"LIST":        {decode: decodeList},
		"LSUB":        {decode: decodeLsub},
		"STATUS":      {decode: decodeStatus},
		"SELECT":      {decode: decodeSelect(false)},
		"EXAMINE":     {decode: decodeSelect(true)},
		"APPEND":      {decode: decodeAppend},

		"EXPUNGE": {decode: decodeExpunge, uid: true},
		"FETCH":   {decode: decodeFetch, uid: true},
		"STORE":   {decode: decodeStore, uid: true},
		"SEARCH":  {decode: decodeSearch, uid: true},
		"COPY":    {decode: decodeCopy(false), uid: true},
		"MOVE":    {decode: decodeCopy(true), uid: true},
		"REPLACE": {decode: decodeReplace, uid: true},

		"GETACL":     {decode: decodeMailboxCommand(func(name string) Command { return &GetACLCommand{Mailbox: name} })},
		"MYRIGHTS":   {decode: decodeMailboxCommand(func(name string) Command { return &MyRightsCommand{Mailbox: name} })},
		"SETACL":     {decode: decodeSetACL},
		"DELETEACL":  {decode: decodeDeleteACL},
		"LISTRIGHTS": {decode: decodeListRights},

		"GETMETADATA":   {decode: decodeGetMetadata},
		"GETANNOTATION": {decode: decodeGetMetadata},
		"SETMETADATA":   {decode: decodeSetMetadata},
		"SETANNOTATION": {decode: decodeSetMetadata},

		"GETQUOTA":     {decode: decodeGetQuota},
		"GETQUOTAROOT": {decode: decodeMailboxCommand(func(name string) Command { return &GetQuotaRootCommand{Mailbox: name} })},
		"SETQUOTA":     {decode: decodeSetQuota},
	}}
}

// Names returns the sorted list of command names known to the registry.
func (r *Registry) Names() []string {
	l := make([]string, 0, len(r.decoders))
	for name := range r.decoders {
		l = append(l, name)
	}
	sort.Strings(l)
	return l
}

// ReadRequest reads a full command line: tag, command name and arguments.
//
// On failure, the returned error is either a *DecodeError, which leaves the
// connection usable once the rest of the line has been discarded, or wraps
// ErrAbandoned.
func (r *Registry) ReadRequest(dec *imapwire.Decoder, options *Options) (*Request, error) {
	var tag, name string
	if !dec.Expect(dec.Func(&tag, imapwire.IsTagChar), "tag") {
		return nil, newDecodeError("", "", fmt.Errorf("in command: %w", dec.Err()))
	}
	if !dec.ExpectSP() || !dec.ExpectAtom(&name) {
		return nil, newDecodeError(tag, "", fmt.Errorf("in command: %w", dec.Err()))
	}
	return r.Decode(dec, tag, name, options)
}

// Decode decodes the arguments of the command name, up to and including the
// final CRLF.
//
// Exactly one of the returned request and error is non-nil.
func (r *Registry) Decode(dec *imapwire.Decoder, tag, name string, options *Options) (*Request, error) {
	name = strings.ToUpper(name)
	req, err := r.decode(dec, tag, name, options)
	if err != nil {
		if req != nil {
			name = req.Name
		}
		return nil, newDecodeError(tag, name, err)
	}
	return req, nil
}

func (r *Registry) decode(dec *imapwire.Decoder, tag, name string, options *Options) (*Request, error) {
	req := &Request{Tag: tag, Name: name}
	numKind := NumKindSeq
	if name == "UID" {
		var verb string
		if !dec.ExpectSP() || !dec.ExpectAtom(&verb) {
			return nil, fmt.Errorf("in UID command: %w", dec.Err())
		}
		verb = strings.ToUpper(verb)
		if d, ok := r.decoders[verb]; !ok || !d.uid {
			return nil, &imapwire.DecoderExpectError{Message: fmt.Sprintf("unknown UID command %v", verb)}
		}
		req.Name = verb
		req.UID = true
		numKind = NumKindUID
	}

	d, ok := r.decoders[req.Name]
	if !ok {
		return nil, &imapwire.DecoderExpectError{Message: fmt.Sprintf("unknown command %v", req.Name)}
	}

	cmd, err := d.decode(dec, numKind, options)
	if err != nil {
		return req, err
	}
	req.Command = cmd
	return req, nil
}

// decodeMailboxCommand returns a decoder for commands taking a single mailbox
// argument.
func decodeMailboxCommand(newCommand func(mailbox string) Command) decodeFunc {
	return func(dec *imapwire.Decoder, numKind NumKind, options *Options) (Command, error) {
		var mailbox string
		if !dec.ExpectSP() || !dec.ExpectMailbox(&mailbox) || !dec.ExpectCRLF() {
			return nil, dec.Err()
		}
		return newCommand(mailbox), nil
	}
}

func newUnknownArgError(cmd, arg string) error {
	return newClientBugError(fmt.Sprintf("Unknown %v argument %v", cmd, arg))
}
