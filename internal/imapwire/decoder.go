package imapwire

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DefaultMaxLineLength is the line length limit used when
// Decoder.MaxLineLength is zero.
const DefaultMaxLineLength = 8192

// ErrAbandoned is returned when the connection ends before a command is
// complete, for instance while a literal is being received. The partially
// decoded command must be dropped.
var ErrAbandoned = errors.New("imapwire: command abandoned")

// A Decoder reads one IMAP command line at a time.
//
// The Decoder works on a single line of input. Literals are the only case
// where it needs more data: the literal octets and the rest of the command
// (which starts a new line) are read from the underlying reader, after the
// ContinuationRequest hook has been called for synchronizing literals.
//
// Most methods don't return an error, instead they return false and the error
// is recorded. It can be retrieved with Err. Only the first error is kept.
type Decoder struct {
	// CheckLiteral is called with the announced size before a literal is
	// read. Returning an error rejects the literal.
	CheckLiteral func(size int64, nonSync bool) error
	// ContinuationRequest is called before the octets of a synchronizing
	// literal are read. It should send a "+" response to the client.
	ContinuationRequest func() error
	// MaxLineLength limits the length of a single line, literals excluded.
	MaxLineLength int

	r    *bufio.Reader
	line []byte
	pos  int
	err  error
}

// NewDecoder creates a new decoder reading from r.
func NewDecoder(r *bufio.Reader) *Decoder {
	return &Decoder{r: r}
}

// Err returns the first error encountered.
func (dec *Decoder) Err() error {
	return dec.err
}

func (dec *Decoder) returnErr(err error) bool {
	if err == nil {
		return true
	}
	if dec.err == nil {
		dec.err = err
	}
	return false
}

func (dec *Decoder) maxLineLength() int {
	if dec.MaxLineLength > 0 {
		return dec.MaxLineLength
	}
	return DefaultMaxLineLength
}

// readLine reads the next line, including its line ending.
func (dec *Decoder) readLine() error {
	var line []byte
	max := dec.maxLineLength()
	for {
		b, err := dec.r.ReadSlice('\n')
		if len(line)+len(b) > max {
			if err == bufio.ErrBufferFull || err == nil {
				// Keep the stream in sync with the client
				if err == bufio.ErrBufferFull {
					if _, err := dec.r.ReadBytes('\n'); err != nil {
						return fmt.Errorf("%w: %v", ErrAbandoned, err)
					}
				}
				return &LimitError{What: "line", Limit: int64(max)}
			}
		}
		line = append(line, b...)
		if err == bufio.ErrBufferFull {
			continue
		} else if err == io.EOF && len(line) > 0 {
			break // last line without a line ending
		} else if err != nil {
			return fmt.Errorf("%w: %v", ErrAbandoned, err)
		}
		break
	}
	dec.line = line
	dec.pos = 0
	return nil
}

func (dec *Decoder) ensureLine() bool {
	if dec.line != nil {
		return true
	}
	if dec.err != nil {
		return false
	}
	return dec.returnErr(dec.readLine())
}

// EOF returns true if the underlying reader has no more data. It must only be
// called before the first byte of a command is read.
func (dec *Decoder) EOF() bool {
	if dec.line != nil {
		return dec.pos >= len(dec.line)
	}
	_, err := dec.r.Peek(1)
	if err == io.EOF {
		return true
	} else if err != nil {
		return !dec.returnErr(err)
	}
	return false
}

func (dec *Decoder) readByte() (byte, bool) {
	if !dec.ensureLine() {
		return 0, false
	}
	if dec.pos >= len(dec.line) {
		return 0, dec.returnErr(&DecoderExpectError{Message: "unexpected end of line"})
	}
	b := dec.line[dec.pos]
	dec.pos++
	return b, true
}

func (dec *Decoder) mustUnreadByte() {
	if dec.pos == 0 {
		panic(fmt.Errorf("imapwire: failed to unread byte"))
	}
	dec.pos--
}

func (dec *Decoder) acceptByte(want byte) bool {
	got, ok := dec.readByte()
	if !ok {
		return false
	} else if got != want {
		dec.mustUnreadByte()
		return false
	}
	return true
}

func isLineEnd(b byte) bool {
	return b == '\r' || b == '\n'
}

// Peek returns the next byte without consuming it. It returns false at the
// end of the line.
func (dec *Decoder) Peek() (byte, bool) {
	if !dec.ensureLine() || dec.pos >= len(dec.line) {
		return 0, false
	}
	b := dec.line[dec.pos]
	if isLineEnd(b) {
		return 0, false
	}
	return b, true
}

// Consume consumes and returns the next byte. It fails at the end of the
// line.
func (dec *Decoder) Consume() (byte, bool) {
	b, ok := dec.Peek()
	if !ok {
		return 0, dec.returnErr(&DecoderExpectError{Message: "unexpected end of line"})
	}
	dec.pos++
	return b, true
}

// ConsumeIf consumes the next byte if valid returns true for it.
func (dec *Decoder) ConsumeIf(valid func(ch byte) bool) bool {
	b, ok := dec.Peek()
	if !ok || !valid(b) {
		return false
	}
	dec.pos++
	return true
}

// Letter consumes the next byte if it's the ASCII letter ch, ignoring case.
func (dec *Decoder) Letter(ch byte) bool {
	return dec.ConsumeIf(func(b byte) bool {
		return toUpper(b) == toUpper(ch)
	})
}

func toUpper(b byte) byte {
	if 'a' <= b && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

// SkipSpaces skips spaces and returns the next byte without consuming it. It
// fails at the end of the line: an argument was expected.
func (dec *Decoder) SkipSpaces() (byte, bool) {
	if !dec.ensureLine() {
		return 0, false
	}
	for dec.pos < len(dec.line) && dec.line[dec.pos] == ' ' {
		dec.pos++
	}
	b, ok := dec.Peek()
	if !ok {
		return 0, dec.returnErr(&DecoderExpectError{Message: "missing argument"})
	}
	return b, true
}

// Expect records a syntax error if ok is false.
func (dec *Decoder) Expect(ok bool, name string) bool {
	if !ok {
		msg := fmt.Sprintf("expected %v", name)
		if b, ok := dec.Peek(); ok {
			msg = fmt.Sprintf("%v, got '%v'", msg, string(b))
		} else if dec.line != nil {
			msg += ", got end of line"
		}
		return dec.returnErr(&DecoderExpectError{Message: msg})
	}
	return true
}

// SP consumes one or more spaces. Spaces followed by the end of the line are
// left for CRLF.
func (dec *Decoder) SP() bool {
	if !dec.ensureLine() {
		return false
	}
	i := dec.pos
	for i < len(dec.line) && dec.line[i] == ' ' {
		i++
	}
	if i == dec.pos || i == len(dec.line) || isLineEnd(dec.line[i]) {
		return false
	}
	dec.pos = i
	return true
}

func (dec *Decoder) ExpectSP() bool {
	return dec.Expect(dec.SP(), "SP")
}

// CRLF consumes the end of the line. Trailing spaces and a bare LF are
// tolerated.
func (dec *Decoder) CRLF() bool {
	if !dec.ensureLine() {
		return false
	}
	i := dec.pos
	for i < len(dec.line) && dec.line[i] == ' ' {
		i++
	}
	rest := dec.line[i:]
	switch {
	case len(rest) == 0, string(rest) == "\n", string(rest) == "\r\n":
		dec.pos = len(dec.line)
		return true
	default:
		return false
	}
}

func (dec *Decoder) ExpectCRLF() bool {
	return dec.Expect(dec.CRLF(), "CRLF")
}

// Func reads a non-empty word made of bytes accepted by valid.
func (dec *Decoder) Func(ptr *string, valid func(ch byte) bool) bool {
	if !dec.ensureLine() {
		return false
	}
	start := dec.pos
	for dec.pos < len(dec.line) && valid(dec.line[dec.pos]) && !isLineEnd(dec.line[dec.pos]) {
		dec.pos++
	}
	if dec.pos == start {
		return false
	}
	*ptr = string(dec.line[start:dec.pos])
	return true
}

func (dec *Decoder) Atom(ptr *string) bool {
	return dec.Func(ptr, IsAtomChar)
}

func (dec *Decoder) ExpectAtom(ptr *string) bool {
	return dec.Expect(dec.Atom(ptr), "atom")
}

func (dec *Decoder) Special(b byte) bool {
	return dec.acceptByte(b)
}

func (dec *Decoder) ExpectSpecial(b byte) bool {
	return dec.Expect(dec.Special(b), fmt.Sprintf("'%v'", string(b)))
}

// Text reads everything up to the end of the line.
func (dec *Decoder) Text(ptr *string) bool {
	return dec.Func(ptr, func(ch byte) bool { return true })
}

func (dec *Decoder) ExpectText(ptr *string) bool {
	return dec.Expect(dec.Text(ptr), "text")
}

// Skip consumes bytes until untilCh or the end of the line.
func (dec *Decoder) Skip(untilCh byte) {
	var s string
	dec.Func(&s, func(ch byte) bool { return ch != untilCh })
}

// DiscardLine drops the rest of the command. Non-synchronizing literals
// announced at the end of the line are skipped too, since the client sends
// them without waiting.
func (dec *Decoder) DiscardLine() error {
	for dec.line != nil {
		rest := strings.TrimRight(string(dec.line[dec.pos:]), "\r\n")
		dec.pos = len(dec.line)
		size, nonSync, ok := trailingLiteral(rest)
		if !ok || !nonSync {
			return nil
		}
		if _, err := io.CopyN(io.Discard, dec.r, size); err != nil {
			return fmt.Errorf("%w: %v", ErrAbandoned, err)
		}
		if err := dec.readLine(); err != nil {
			return err
		}
	}
	return nil
}

func trailingLiteral(s string) (size int64, nonSync, ok bool) {
	if !strings.HasSuffix(s, "}") {
		return 0, false, false
	}
	i := strings.LastIndexByte(s, '{')
	if i < 0 {
		return 0, false, false
	}
	digits := s[i+1 : len(s)-1]
	if strings.HasSuffix(digits, "+") {
		digits = strings.TrimSuffix(digits, "+")
		nonSync = true
	}
	size, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false, false
	}
	return size, nonSync, true
}

func (dec *Decoder) digits(ptr *string) bool {
	return dec.Func(ptr, func(ch byte) bool { return ch >= '0' && ch <= '9' })
}

// Number reads a 32-bit unsigned number.
func (dec *Decoder) Number(ptr *uint32) bool {
	var s string
	if !dec.digits(&s) {
		return false
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return dec.returnErr(&DecoderExpectError{Message: fmt.Sprintf("number %v out of range", s)})
	}
	*ptr = uint32(v)
	return true
}

func (dec *Decoder) ExpectNumber(ptr *uint32) bool {
	return dec.Expect(dec.Number(ptr), "number")
}

// ExpectNzNumber reads a non-zero 32-bit unsigned number.
func (dec *Decoder) ExpectNzNumber(ptr *uint32) bool {
	var v uint32
	if !dec.ExpectNumber(&v) {
		return false
	}
	if v == 0 {
		return dec.returnErr(&DecoderExpectError{Message: "expected non-zero number"})
	}
	*ptr = v
	return true
}

// Number64 reads a 63-bit unsigned number.
func (dec *Decoder) Number64(ptr *int64) bool {
	var s string
	if !dec.digits(&s) {
		return false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return dec.returnErr(&DecoderExpectError{Message: fmt.Sprintf("number %v out of range", s)})
	}
	*ptr = v
	return true
}

func (dec *Decoder) ExpectNumber64(ptr *int64) bool {
	return dec.Expect(dec.Number64(ptr), "number64")
}

// ModSeq reads a mod-sequence value: a 63-bit unsigned number.
func (dec *Decoder) ModSeq(ptr *uint64) bool {
	var v int64
	if !dec.Number64(&v) {
		return false
	}
	*ptr = uint64(v)
	return true
}

func (dec *Decoder) ExpectModSeq(ptr *uint64) bool {
	return dec.Expect(dec.ModSeq(ptr), "mod-sequence value")
}

// Quoted reads a quoted string. Only '"' and '\' may be escaped.
func (dec *Decoder) Quoted(ptr *string) bool {
	if !dec.Special('"') {
		return false
	}
	var sb strings.Builder
	for {
		ch, ok := dec.readByte()
		if !ok {
			return false
		}
		switch {
		case ch == '"':
			*ptr = sb.String()
			return true
		case ch == '\\':
			ch, ok = dec.readByte()
			if !ok {
				return false
			}
			if ch != '"' && ch != '\\' {
				return dec.returnErr(&DecoderExpectError{Message: fmt.Sprintf("invalid escape '\\%v' in quoted string", string(ch))})
			}
		case isLineEnd(ch) || ch == 0:
			dec.mustUnreadByte()
			return dec.returnErr(&DecoderExpectError{Message: "unterminated quoted string"})
		}
		sb.WriteByte(ch)
	}
}

func (dec *Decoder) ExpectQuoted(ptr *string) bool {
	return dec.Expect(dec.Quoted(ptr), "quoted string")
}

// Literal reads a literal: "{" number ["+"] "}" CRLF *OCTET.
//
// CheckLiteral is called first. For synchronizing literals the
// ContinuationRequest hook is then called before the octets are read. The
// rest of the command is read from the next line.
func (dec *Decoder) Literal(ptr *[]byte) bool {
	size, nonSync, ok := dec.literalHeader()
	if !ok {
		return false
	}

	if dec.CheckLiteral != nil {
		if err := dec.CheckLiteral(size, nonSync); err != nil {
			if nonSync {
				// The client sends the octets anyway
				if _, copyErr := io.CopyN(io.Discard, dec.r, size); copyErr != nil {
					return dec.returnErr(fmt.Errorf("%w: %v", ErrAbandoned, copyErr))
				}
				if readErr := dec.readLine(); readErr != nil {
					return dec.returnErr(readErr)
				}
			}
			return dec.returnErr(err)
		}
	}

	if !nonSync && dec.ContinuationRequest != nil {
		if err := dec.ContinuationRequest(); err != nil {
			return dec.returnErr(err)
		}
	}

	// The buffer grows with the octets actually received, not with the
	// announced size
	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, dec.r, size); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return dec.returnErr(fmt.Errorf("%w: %v", ErrAbandoned, err))
	}
	if err := dec.readLine(); err != nil {
		return dec.returnErr(err)
	}
	b := buf.Bytes()
	if b == nil {
		b = []byte{}
	}
	*ptr = b
	return true
}

func (dec *Decoder) ExpectLiteral(ptr *[]byte) bool {
	return dec.Expect(dec.Literal(ptr), "literal")
}

func (dec *Decoder) literalHeader() (size int64, nonSync, ok bool) {
	if !dec.Special('{') {
		return 0, false, false
	}
	if !dec.ExpectNumber64(&size) {
		return 0, false, false
	}
	nonSync = dec.Special('+')
	if !dec.ExpectSpecial('}') {
		return 0, false, false
	}
	// The literal header must end the line
	dec.acceptByte('\r')
	if !dec.acceptByte('\n') {
		return 0, false, dec.Expect(false, "CRLF after literal header")
	}
	return size, nonSync, true
}

// String reads a quoted string or a literal.
func (dec *Decoder) String(ptr *string) bool {
	b, ok := dec.Peek()
	if !ok {
		return false
	}
	switch b {
	case '"':
		return dec.Quoted(ptr)
	case '{':
		var lit []byte
		if !dec.Literal(&lit) {
			return false
		}
		*ptr = string(lit)
		return true
	default:
		return false
	}
}

func (dec *Decoder) ExpectString(ptr *string) bool {
	return dec.Expect(dec.String(ptr), "string")
}

// AString reads an atom (including ']'), a quoted string or a literal.
func (dec *Decoder) AString(ptr *string) bool {
	if dec.String(ptr) {
		return true
	} else if dec.err != nil {
		return false
	}
	return dec.Func(ptr, IsAStringChar)
}

func (dec *Decoder) ExpectAString(ptr *string) bool {
	return dec.Expect(dec.AString(ptr), "ASTRING")
}

// NString reads an astring or NIL. NIL (case-insensitive) yields a nil
// pointer.
func (dec *Decoder) NString(ptr **string) bool {
	var s string
	if b, ok := dec.Peek(); ok && b != '"' && b != '{' {
		if !dec.Func(&s, IsAStringChar) {
			return false
		}
		if strings.EqualFold(s, "NIL") {
			*ptr = nil
		} else {
			*ptr = &s
		}
		return true
	}
	if !dec.String(&s) {
		return false
	}
	*ptr = &s
	return true
}

func (dec *Decoder) ExpectNString(ptr **string) bool {
	return dec.Expect(dec.NString(ptr), "NSTRING")
}

// ExpectNStringBytes reads a string, literal or NIL as raw bytes. NIL yields
// a nil pointer.
func (dec *Decoder) ExpectNStringBytes(ptr **[]byte) bool {
	if b, ok := dec.Peek(); ok && b == '{' {
		var lit []byte
		if !dec.ExpectLiteral(&lit) {
			return false
		}
		*ptr = &lit
		return true
	}
	var s *string
	if !dec.ExpectNString(&s) {
		return false
	}
	if s == nil {
		*ptr = nil
	} else {
		b := []byte(*s)
		*ptr = &b
	}
	return true
}

// List reads a parenthesized list. f is called for each item, items are
// separated by SP. isList is false if the next byte is not '('.
func (dec *Decoder) List(f func() error) (isList bool, err error) {
	if !dec.Special('(') {
		return false, dec.Err()
	}
	if dec.Special(')') {
		return true, nil
	}

	for {
		if err := f(); err != nil {
			return true, err
		}
		if dec.Special(')') {
			return true, nil
		} else if !dec.ExpectSP() {
			return true, dec.Err()
		}
	}
}

func (dec *Decoder) ExpectList(f func() error) error {
	isList, err := dec.List(f)
	if err != nil {
		return err
	} else if !dec.Expect(isList, "(") {
		return dec.Err()
	}
	return nil
}

// IsAtomChar returns true if ch is an ATOM-CHAR. 8-bit bytes are accepted for
// UTF-8 atoms.
func IsAtomChar(ch byte) bool {
	switch ch {
	case '(', ')', '{', ' ', '%', '*', '"', '\\', ']':
		return false
	default:
		return ch > 0x1f && ch != 0x7f
	}
}

// IsAStringChar returns true if ch is an ASTRING-CHAR.
func IsAStringChar(ch byte) bool {
	return ch == ']' || IsAtomChar(ch)
}

// IsListChar returns true if ch is a list-char: an ATOM-CHAR or a LIST
// wildcard.
func IsListChar(ch byte) bool {
	return ch == '%' || ch == '*' || IsAStringChar(ch)
}

// IsTagChar returns true if ch may appear in a command tag.
func IsTagChar(ch byte) bool {
	return ch != '+' && IsAStringChar(ch)
}

// DecoderExpectError is a syntax error.
type DecoderExpectError struct {
	Message string
}

func (err *DecoderExpectError) Error() string {
	return "imapwire: " + err.Message
}

// LimitError is returned when a line or a literal exceeds a configured
// limit.
type LimitError struct {
	What  string // "line" or "literal"
	Size  int64  // announced size, zero if unknown
	Limit int64
}

func (err *LimitError) Error() string {
	if err.Size > 0 {
		return fmt.Sprintf("imapwire: %v of %v bytes exceeds limit of %v bytes", err.What, err.Size, err.Limit)
	}
	return fmt.Sprintf("imapwire: %v exceeds limit of %v bytes", err.What, err.Limit)
}
