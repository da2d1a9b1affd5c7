package imapserver

import (
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-imapcmd"
	"github.com/emersion/go-imapcmd/internal"
	"github.com/emersion/go-imapcmd/internal/imapwire"
)

// SearchCommand is a SEARCH or UID SEARCH command.
type SearchCommand struct {
	NumKind NumKind
	// Charset is the CHARSET sent by the client, if any. String values in Key
	// have already been converted to UTF-8.
	Charset string
	Key     imap.SearchKey
	// Return is nil unless the client asked for an extended (ESEARCH) result.
	Return *imap.SearchReturnOptions
}

func (*SearchCommand) command() {}

func decodeSearch(dec *imapwire.Decoder, numKind NumKind, options *Options) (Command, error) {
	cmd := SearchCommand{NumKind: numKind}
	sd := searchDecoder{dec: dec}
	if !dec.ExpectSP() {
		return nil, dec.Err()
	}

	var keys []imap.SearchKey
	for {
		key, err := sd.readKey(true)
		if err != nil {
			return nil, fmt.Errorf("in search-key: %w", err)
		}
		if key != nil {
			keys = append(keys, *key)
		}
		if !dec.SP() {
			break
		}
	}
	if !dec.ExpectCRLF() {
		return nil, dec.Err()
	}
	if len(keys) == 0 {
		return nil, &imapwire.DecoderExpectError{Message: "missing search-key"}
	}

	cmd.Charset = sd.charset
	cmd.Key = imap.SearchAnd(keys...)
	cmd.Return = sd.ret
	return &cmd, nil
}

// searchDecoder holds the state shared by all the keys of a single SEARCH
// command.
type searchDecoder struct {
	dec     *imapwire.Decoder
	charset string
	ret     *imap.SearchReturnOptions
	// set once a key has been read at the top level, CHARSET and RETURN are
	// no longer allowed afterwards
	sawKey     bool
	sawCharset bool
}

// readKey reads a single search key. At the top level, it returns a nil key
// for the CHARSET and RETURN clauses.
func (sd *searchDecoder) readKey(topLevel bool) (*imap.SearchKey, error) {
	dec := sd.dec
	b, ok := dec.Peek()
	if !ok {
		dec.Expect(false, "search-key")
		return nil, dec.Err()
	}

	var (
		key *imap.SearchKey
		err error
	)
	switch {
	case b == '(':
		key, err = sd.readKeyList()
	case b == '*' || b == '$' || (b >= '0' && b <= '9'):
		var set imap.NumSet
		if !dec.ExpectNumSet(&set, allowSearchRes) {
			return nil, dec.Err()
		}
		key = &imap.SearchKey{Kind: imap.SearchKeySeqSet, NumSet: set}
	default:
		dec.Consume()
		key, err = sd.readKeyword(b, topLevel)
	}
	if err != nil {
		return nil, err
	}
	if key != nil && topLevel {
		sd.sawKey = true
	}
	return key, nil
}

func (sd *searchDecoder) readKeyList() (*imap.SearchKey, error) {
	dec := sd.dec
	if !dec.ExpectSpecial('(') {
		return nil, dec.Err()
	}
	// Spaces are tolerated after "(" and before ")"
	var keys []imap.SearchKey
	for {
		if _, ok := dec.SkipSpaces(); !ok {
			return nil, dec.Err()
		}
		if dec.Special(')') {
			break
		}
		key, err := sd.readKey(false)
		if err != nil {
			return nil, err
		}
		keys = append(keys, *key)
	}
	if len(keys) == 0 {
		return nil, &imapwire.DecoderExpectError{Message: "empty search-key list"}
	}
	key := imap.SearchAnd(keys...)
	return &key, nil
}

// readKeyword dispatches on the first letter of a keyword, which has already
// been consumed.
func (sd *searchDecoder) readKeyword(first byte, topLevel bool) (*imap.SearchKey, error) {
	switch toUpperASCII(first) {
	case 'A':
		return sd.readA()
	case 'B':
		return sd.readB()
	case 'C':
		return sd.readC(topLevel)
	case 'D':
		return sd.readD()
	case 'E':
		return sd.idKey(imap.SearchKeyEmailID, "MAILID")
	case 'F':
		return sd.readF()
	case 'H':
		return sd.readHeader()
	case 'K':
		return sd.keywordKey(imap.SearchKeyKeyword, "EYWORD")
	case 'L':
		return sd.numberKey(imap.SearchKeyLarger, "ARGER")
	case 'M':
		return sd.readModSeq()
	case 'N':
		return sd.readN()
	case 'O':
		return sd.readO()
	case 'R':
		return sd.readR(topLevel)
	case 'S':
		return sd.readS()
	case 'T':
		return sd.readT()
	case 'U':
		return sd.readU()
	case 'Y':
		return sd.secondsKey(imap.SearchKeyYounger, "OUNGER")
	default:
		return nil, unknownSearchKey(first)
	}
}

func (sd *searchDecoder) readA() (*imap.SearchKey, error) {
	switch sd.choose("LN") {
	case 'L':
		return sd.flagKey(imap.SearchKeyAll, "L")
	case 'N':
		return sd.flagKey(imap.SearchKeyAnswered, "SWERED")
	}
	return nil, sd.dec.Err()
}

func (sd *searchDecoder) readB() (*imap.SearchKey, error) {
	switch sd.choose("CEO") {
	case 'C':
		return sd.stringKey(imap.SearchKeyBcc, "C")
	case 'E':
		return sd.dateKey(imap.SearchKeyBefore, "FORE")
	case 'O':
		return sd.stringKey(imap.SearchKeyBody, "DY")
	}
	return nil, sd.dec.Err()
}

func (sd *searchDecoder) readC(topLevel bool) (*imap.SearchKey, error) {
	switch sd.choose("CH") {
	case 'C':
		return sd.stringKey(imap.SearchKeyCc, "")
	case 'H':
		if !sd.rest("ARSET") {
			return nil, sd.dec.Err()
		}
		return nil, sd.readCharset(topLevel)
	}
	return nil, sd.dec.Err()
}

func (sd *searchDecoder) readD() (*imap.SearchKey, error) {
	switch sd.choose("ER") {
	case 'E':
		return sd.flagKey(imap.SearchKeyDeleted, "LETED")
	case 'R':
		return sd.flagKey(imap.SearchKeyDraft, "AFT")
	}
	return nil, sd.dec.Err()
}

func (sd *searchDecoder) readF() (*imap.SearchKey, error) {
	switch sd.choose("LR") {
	case 'L':
		return sd.flagKey(imap.SearchKeyFlagged, "AGGED")
	case 'R':
		return sd.stringKey(imap.SearchKeyFrom, "OM")
	}
	return nil, sd.dec.Err()
}

func (sd *searchDecoder) readN() (*imap.SearchKey, error) {
	switch sd.choose("EO") {
	case 'E':
		return sd.flagKey(imap.SearchKeyNew, "W")
	case 'O':
		if !sd.rest("T") || !sd.dec.ExpectSP() {
			return nil, sd.dec.Err()
		}
		operand, err := sd.readKey(false)
		if err != nil {
			return nil, fmt.Errorf("in NOT: %w", err)
		}
		key := imap.SearchNot(*operand)
		return &key, nil
	}
	return nil, sd.dec.Err()
}

func (sd *searchDecoder) readO() (*imap.SearchKey, error) {
	switch sd.choose("LNR") {
	case 'L':
		if !sd.dec.Letter('D') {
			return nil, sd.unknownKey()
		}
		if sd.dec.Letter('E') {
			return sd.secondsKey(imap.SearchKeyOlder, "R")
		}
		return sd.flagKey(imap.SearchKeyOld, "")
	case 'N':
		return sd.dateKey(imap.SearchKeyOn, "")
	case 'R':
		if !sd.rest("") || !sd.dec.ExpectSP() {
			return nil, sd.dec.Err()
		}
		left, err := sd.readKey(false)
		if err != nil {
			return nil, fmt.Errorf("in OR: %w", err)
		}
		if !sd.dec.ExpectSP() {
			return nil, sd.dec.Err()
		}
		right, err := sd.readKey(false)
		if err != nil {
			return nil, fmt.Errorf("in OR: %w", err)
		}
		key := imap.SearchOr(*left, *right)
		return &key, nil
	}
	return nil, sd.dec.Err()
}

func (sd *searchDecoder) readR(topLevel bool) (*imap.SearchKey, error) {
	if !sd.dec.Letter('E') {
		return nil, sd.unknownKey()
	}
	switch sd.choose("CT") {
	case 'C':
		return sd.flagKey(imap.SearchKeyRecent, "ENT")
	case 'T':
		if !sd.rest("URN") {
			return nil, sd.dec.Err()
		}
		return nil, sd.readReturn(topLevel)
	}
	return nil, sd.dec.Err()
}

func (sd *searchDecoder) readS() (*imap.SearchKey, error) {
	switch sd.choose("AEIMU") {
	case 'A':
		if !sd.dec.Letter('V') || !sd.dec.Letter('E') || !sd.dec.Letter('D') {
			return nil, sd.unknownKey()
		}
		return sd.readDateVariant(imap.SearchKeySavedBefore, imap.SearchKeySavedOn, imap.SearchKeySavedSince)
	case 'E':
		switch sd.choose("EN") {
		case 'E':
			return sd.flagKey(imap.SearchKeySeen, "N")
		case 'N':
			if !sd.dec.Letter('T') {
				return nil, sd.unknownKey()
			}
			return sd.readDateVariant(imap.SearchKeySentBefore, imap.SearchKeySentOn, imap.SearchKeySentSince)
		}
	case 'I':
		return sd.dateKey(imap.SearchKeySince, "NCE")
	case 'M':
		return sd.numberKey(imap.SearchKeySmaller, "ALLER")
	case 'U':
		return sd.stringKey(imap.SearchKeySubject, "BJECT")
	}
	return nil, sd.dec.Err()
}

// readDateVariant reads the BEFORE, ON or SINCE suffix of SAVED and SENT keys.
func (sd *searchDecoder) readDateVariant(before, on, since imap.SearchKeyKind) (*imap.SearchKey, error) {
	switch sd.choose("BOS") {
	case 'B':
		return sd.dateKey(before, "EFORE")
	case 'O':
		return sd.dateKey(on, "N")
	case 'S':
		return sd.dateKey(since, "INCE")
	}
	return nil, sd.dec.Err()
}

func (sd *searchDecoder) readT() (*imap.SearchKey, error) {
	switch sd.choose("EHO") {
	case 'E':
		return sd.stringKey(imap.SearchKeyText, "XT")
	case 'H':
		return sd.idKey(imap.SearchKeyThreadID, "READID")
	case 'O':
		return sd.stringKey(imap.SearchKeyTo, "")
	}
	return nil, sd.dec.Err()
}

func (sd *searchDecoder) readU() (*imap.SearchKey, error) {
	switch sd.choose("IN") {
	case 'I':
		if !sd.rest("D") || !sd.dec.ExpectSP() {
			return nil, sd.dec.Err()
		}
		var set imap.NumSet
		if !sd.dec.ExpectNumSet(&set, allowSearchRes) {
			return nil, sd.dec.Err()
		}
		return &imap.SearchKey{Kind: imap.SearchKeyUID, NumSet: set}, nil
	case 'N':
		switch sd.choose("ADFKS") {
		case 'A':
			return sd.flagKey(imap.SearchKeyUnanswered, "NSWERED")
		case 'D':
			switch sd.choose("ER") {
			case 'E':
				return sd.flagKey(imap.SearchKeyUndeleted, "LETED")
			case 'R':
				return sd.flagKey(imap.SearchKeyUndraft, "AFT")
			}
		case 'F':
			return sd.flagKey(imap.SearchKeyUnflagged, "LAGGED")
		case 'K':
			return sd.keywordKey(imap.SearchKeyUnkeyword, "EYWORD")
		case 'S':
			return sd.flagKey(imap.SearchKeyUnseen, "EEN")
		}
	}
	return nil, sd.dec.Err()
}

func (sd *searchDecoder) readHeader() (*imap.SearchKey, error) {
	if !sd.rest("EADER") || !sd.dec.ExpectSP() {
		return nil, sd.dec.Err()
	}
	field, err := sd.astring()
	if err != nil {
		return nil, err
	}
	if !sd.dec.ExpectSP() {
		return nil, sd.dec.Err()
	}
	value, err := sd.astring()
	if err != nil {
		return nil, err
	}
	return &imap.SearchKey{Kind: imap.SearchKeyHeader, Field: field, Value: value}, nil
}

// readModSeq reads "MODSEQ" [SP entry-name SP entry-type-req] SP mod-sequence-value.
func (sd *searchDecoder) readModSeq() (*imap.SearchKey, error) {
	dec := sd.dec
	if !sd.rest("ODSEQ") || !dec.ExpectSP() {
		return nil, dec.Err()
	}
	key := imap.SearchKey{Kind: imap.SearchKeyModSeq}
	if dec.ModSeq(&key.Number) {
		return &key, nil
	} else if dec.Err() != nil {
		return nil, dec.Err()
	}

	var name, typ string
	// Any word is accepted as the entry type
	if !dec.ExpectQuoted(&name) || !dec.ExpectSP() || !dec.Expect(dec.Func(&typ, isEntryTypeChar), "entry-type") || !dec.ExpectSP() {
		return nil, fmt.Errorf("in MODSEQ: %w", dec.Err())
	}
	entryType := imap.SearchModSeqEntryType(strings.ToLower(typ))
	if !dec.ExpectModSeq(&key.Number) {
		return nil, fmt.Errorf("in MODSEQ: %w", dec.Err())
	}
	key.ModSeqEntry = &imap.SearchModSeqEntry{Name: name, Type: entryType}
	return &key, nil
}

func (sd *searchDecoder) readCharset(topLevel bool) error {
	if !topLevel || sd.sawKey || sd.sawCharset {
		return &imapwire.DecoderExpectError{Message: "CHARSET must come before all search keys"}
	}
	var name string
	if !sd.dec.ExpectSP() || !sd.dec.ExpectAString(&name) {
		return sd.dec.Err()
	}
	if err := internal.CheckCharset(name); err != nil {
		return newBadCharsetError(name)
	}
	sd.charset = name
	sd.sawCharset = true
	return nil
}

func (sd *searchDecoder) readReturn(topLevel bool) error {
	if !topLevel || sd.sawKey || sd.sawCharset || sd.ret != nil {
		return &imapwire.DecoderExpectError{Message: "RETURN must come before all search keys"}
	}
	if !sd.dec.ExpectSP() {
		return sd.dec.Err()
	}
	var ret imap.SearchReturnOptions
	err := sd.dec.ExpectList(func() error {
		var name string
		if !sd.dec.ExpectAtom(&name) {
			return sd.dec.Err()
		}
		switch strings.ToUpper(name) {
		case "MIN":
			ret.Min = true
		case "MAX":
			ret.Max = true
		case "ALL":
			ret.All = true
		case "COUNT":
			ret.Count = true
		case "SAVE":
			ret.Save = true
		default:
			return newUnknownArgError("SEARCH RETURN", name)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("in search-return-opts: %w", err)
	}
	if ret == (imap.SearchReturnOptions{}) {
		ret.All = true
	}
	sd.ret = &ret
	return nil
}

func (sd *searchDecoder) flagKey(kind imap.SearchKeyKind, rest string) (*imap.SearchKey, error) {
	if !sd.rest(rest) {
		return nil, sd.dec.Err()
	}
	return &imap.SearchKey{Kind: kind}, nil
}

func (sd *searchDecoder) stringKey(kind imap.SearchKeyKind, rest string) (*imap.SearchKey, error) {
	if !sd.rest(rest) || !sd.dec.ExpectSP() {
		return nil, sd.dec.Err()
	}
	value, err := sd.astring()
	if err != nil {
		return nil, err
	}
	return &imap.SearchKey{Kind: kind, Value: value}, nil
}

func (sd *searchDecoder) keywordKey(kind imap.SearchKeyKind, rest string) (*imap.SearchKey, error) {
	if !sd.rest(rest) || !sd.dec.ExpectSP() {
		return nil, sd.dec.Err()
	}
	var flag string
	if !sd.dec.Expect(sd.dec.Atom(&flag), "flag-keyword") {
		return nil, sd.dec.Err()
	}
	return &imap.SearchKey{Kind: kind, Value: flag}, nil
}

func (sd *searchDecoder) idKey(kind imap.SearchKeyKind, rest string) (*imap.SearchKey, error) {
	var id string
	if !sd.rest(rest) || !sd.dec.ExpectSP() || !sd.dec.Expect(sd.dec.Func(&id, isObjectIDChar), "objectid") {
		return nil, sd.dec.Err()
	}
	return &imap.SearchKey{Kind: kind, Value: id}, nil
}

func (sd *searchDecoder) numberKey(kind imap.SearchKeyKind, rest string) (*imap.SearchKey, error) {
	var n int64
	if !sd.rest(rest) || !sd.dec.ExpectSP() || !sd.dec.ExpectNumber64(&n) {
		return nil, sd.dec.Err()
	}
	return &imap.SearchKey{Kind: kind, Number: uint64(n)}, nil
}

func (sd *searchDecoder) secondsKey(kind imap.SearchKeyKind, rest string) (*imap.SearchKey, error) {
	var n uint32
	if !sd.rest(rest) || !sd.dec.ExpectSP() || !sd.dec.ExpectNzNumber(&n) {
		return nil, sd.dec.Err()
	}
	return &imap.SearchKey{Kind: kind, Number: uint64(n)}, nil
}

func (sd *searchDecoder) dateKey(kind imap.SearchKeyKind, rest string) (*imap.SearchKey, error) {
	var t time.Time
	if !sd.rest(rest) || !sd.dec.ExpectSP() || !internal.ExpectDate(sd.dec, &t) {
		return nil, sd.dec.Err()
	}
	return &imap.SearchKey{Kind: kind, Date: t}, nil
}

// astring reads an astring and converts it from the CHARSET to UTF-8.
func (sd *searchDecoder) astring() (string, error) {
	var s string
	if !sd.dec.ExpectAString(&s) {
		return "", sd.dec.Err()
	}
	s, err := internal.DecodeCharset(sd.charset, s)
	if err != nil {
		return "", &imapwire.DecoderExpectError{Message: fmt.Sprintf("invalid %v string: %v", sd.charset, err)}
	}
	return s, nil
}

// choose consumes one of the letters in choices and returns it. Zero is
// returned if none matches.
func (sd *searchDecoder) choose(choices string) byte {
	for i := 0; i < len(choices); i++ {
		if sd.dec.Letter(choices[i]) {
			return choices[i]
		}
	}
	sd.unknownKey()
	return 0
}

// rest consumes the remaining letters of a keyword and checks that the
// keyword ends there.
func (sd *searchDecoder) rest(letters string) bool {
	for i := 0; i < len(letters); i++ {
		if !sd.dec.Letter(letters[i]) {
			sd.unknownKey()
			return false
		}
	}
	if b, ok := sd.dec.Peek(); ok && b != ' ' && b != ')' {
		sd.unknownKey()
		return false
	}
	return true
}

func (sd *searchDecoder) unknownKey() error {
	sd.dec.Expect(false, "search-key")
	return sd.dec.Err()
}

func unknownSearchKey(first byte) error {
	return &imapwire.DecoderExpectError{Message: fmt.Sprintf("unknown search-key starting with '%v'", string(first))}
}

func isEntryTypeChar(ch byte) bool {
	return ch != ' ' && ch != '\r' && ch != '\n'
}

func isObjectIDChar(ch byte) bool {
	return ch == '_' || ch == '-' || (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func toUpperASCII(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}
