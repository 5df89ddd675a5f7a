package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

// Tag selects the payload layout of a fullcode record.
type Tag uint32

const (
	TagNull         Tag = 0
	TagChar         Tag = 1
	TagExtendedChar Tag = 2
	TagWord         Tag = 4
	TagVariable     Tag = 8
	TagSymbol       Tag = 16
)

var tagNames = map[Tag]string{
	TagNull:         "null",
	TagChar:         "char",
	TagExtendedChar: "extended-char",
	TagWord:         "word",
	TagVariable:     "variable",
	TagSymbol:       "symbol",
}

func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tag(%d)", uint32(t))
}

// Valid reports whether t is one of the defined tags.
func (t Tag) Valid() bool {
	_, ok := tagNames[t]
	return ok
}

// IsChar reports whether t carries the character layout.
func (t Tag) IsChar() bool {
	return t == TagChar || t == TagExtendedChar
}

// ParseTag maps a tag name such as "extended-char" to its Tag.
func ParseTag(s string) (Tag, error) {
	for tag, name := range tagNames {
		if name == s {
			return tag, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidTag, s)
}

// Fullcode record geometry.
const (
	FullcodeCodeSize   = 4
	FullcodeUnionSize  = 296
	FullcodeRecordSize = 4 + FullcodeCodeSize + FullcodeUnionSize

	fullcodeUnionOffset = 4 + FullcodeCodeSize

	charValueSize    = 4
	wordValueSize    = 2 * 32
	textValueSize    = FullcodeUnionSize
	wordReservedSize = 7 + 16*2
)

// char layout
const (
	charValueOffset         = 0
	charDecompositionOffset = charValueOffset + charValueSize
	charReadingOffset       = charDecompositionOffset + componentSize*MaxComponents
	charFlagOffset          = charReadingOffset + syllableSize*MaxCharSyllables
	charToleranceOffset     = charFlagOffset + 2
	charCode6kOffset        = charToleranceOffset + toleranceSize*MaxTolerances
	charReading2Offset      = charCode6kOffset + MaxCode6k
	charEnd                 = charReading2Offset + Reading2Size
)

// word layout
const (
	wordLengthOffset   = 0
	wordReservedOffset = 1
	wordValueOffset    = wordReservedOffset + wordReservedSize
	wordReadingOffset  = wordValueOffset + wordValueSize
	wordEnd            = wordReadingOffset + syllableSize*MaxWordSyllables
)

// Payload is the tag dependent part of a fullcode record. It is one of
// *CharData, *WordData or *TextData; null records have no payload.
type Payload interface {
	accepts(Tag) bool
	marshal(union []byte) error
}

// CharData is the payload of char and extended-char records.
type CharData struct {
	Value         string
	Decomposition []Component
	Reading       []Syllable
	Flag          uint16
	Tolerance     []string
	Code6k        []byte
	Reading2      []string
}

func (*CharData) accepts(t Tag) bool { return t.IsChar() }

func (c *CharData) marshal(u []byte) error {
	if c == nil {
		return fmt.Errorf("%w: nil char payload", ErrInvalidField)
	}
	if err := putText(gb18030, u[charValueOffset:charDecompositionOffset], c.Value, "char value"); err != nil {
		return err
	}
	if err := encodeDecomposition(u[charDecompositionOffset:charReadingOffset], c.Decomposition); err != nil {
		return err
	}
	if err := encodeReading(u[charReadingOffset:charFlagOffset], c.Reading); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(u[charFlagOffset:charToleranceOffset], c.Flag)
	if err := encodeTolerance(u[charToleranceOffset:charCode6kOffset], c.Tolerance); err != nil {
		return err
	}
	if err := encodeCode6k(u[charCode6kOffset:charReading2Offset], c.Code6k); err != nil {
		return err
	}
	return encodeReading2(u[charReading2Offset:charEnd], c.Reading2)
}

func unmarshalChar(u []byte) (*CharData, error) {
	c := &CharData{}
	var err error
	if c.Value, err = getText(gb18030, u[charValueOffset:charDecompositionOffset], "char value"); err != nil {
		return nil, err
	}
	if c.Decomposition, err = decodeDecomposition(u[charDecompositionOffset:charReadingOffset]); err != nil {
		return nil, err
	}
	if c.Reading, err = decodeReading(u[charReadingOffset:charFlagOffset]); err != nil {
		return nil, err
	}
	c.Flag = binary.LittleEndian.Uint16(u[charFlagOffset:charToleranceOffset])
	if c.Tolerance, err = decodeTolerance(u[charToleranceOffset:charCode6kOffset]); err != nil {
		return nil, err
	}
	c.Code6k = decodeCode6k(u[charCode6kOffset:charReading2Offset])
	if c.Reading2, err = decodeReading2(u[charReading2Offset:charEnd]); err != nil {
		return nil, err
	}
	return c, nil
}

// WordData is the payload of word records. Length is the declared number of
// syllables in Reading.
type WordData struct {
	Value   string
	Length  uint8
	Reading []Syllable
}

func (*WordData) accepts(t Tag) bool { return t == TagWord }

func (w *WordData) marshal(u []byte) error {
	if w == nil {
		return fmt.Errorf("%w: nil word payload", ErrInvalidField)
	}
	u[wordLengthOffset] = w.Length
	clear(u[wordReservedOffset:wordValueOffset])
	if err := putText(gb18030, u[wordValueOffset:wordReadingOffset], w.Value, "word value"); err != nil {
		return err
	}
	return encodeReading(u[wordReadingOffset:wordEnd], w.Reading)
}

func unmarshalWord(u []byte) (*WordData, error) {
	if !isZero(u[wordReservedOffset:wordValueOffset]) {
		return nil, fmt.Errorf("%w: word record", ErrReservedNonzero)
	}
	w := &WordData{Length: u[wordLengthOffset]}
	var err error
	if w.Value, err = getText(gb18030, u[wordValueOffset:wordReadingOffset], "word value"); err != nil {
		return nil, err
	}
	if w.Reading, err = decodeReading(u[wordReadingOffset:wordEnd]); err != nil {
		return nil, err
	}
	return w, nil
}

// TextData is the payload of variable and symbol records.
type TextData struct {
	Value string
}

func (*TextData) accepts(t Tag) bool { return t == TagVariable || t == TagSymbol }

func (s *TextData) marshal(u []byte) error {
	if s == nil {
		return fmt.Errorf("%w: nil text payload", ErrInvalidField)
	}
	return putText(gb18030, u[:textValueSize], s.Value, "text value")
}

func unmarshalText(u []byte) (*TextData, error) {
	v, err := getText(gb18030, u[:textValueSize], "text value")
	if err != nil {
		return nil, err
	}
	return &TextData{Value: v}, nil
}

// FullcodeRecord is a tagged union: Tag decides which Payload type is held.
type FullcodeRecord struct {
	Tag     Tag
	Code    string
	Payload Payload
}

// NewFullcodeRecord builds a record and checks that it encodes.
func NewFullcodeRecord(tag Tag, code string, payload Payload) (FullcodeRecord, error) {
	r := FullcodeRecord{Tag: tag, Code: code, Payload: payload}
	if _, err := r.MarshalBinary(); err != nil {
		return FullcodeRecord{}, err
	}
	return r, nil
}

func (r FullcodeRecord) mismatch(want string) {
	panic(fmt.Errorf("%w: %s record %q has no %s fields", ErrTagMismatch, r.Tag, r.Code, want))
}

// Char returns the character payload. It panics for any other tag.
func (r FullcodeRecord) Char() *CharData {
	c, ok := r.Payload.(*CharData)
	if !ok || !r.Tag.IsChar() {
		r.mismatch("char")
	}
	return c
}

// Word returns the word payload. It panics for any other tag.
func (r FullcodeRecord) Word() *WordData {
	w, ok := r.Payload.(*WordData)
	if !ok || r.Tag != TagWord {
		r.mismatch("word")
	}
	return w
}

// Text returns the variable/symbol payload. It panics for any other tag.
func (r FullcodeRecord) Text() *TextData {
	s, ok := r.Payload.(*TextData)
	if !ok || !s.accepts(r.Tag) {
		r.mismatch("text")
	}
	return s
}

// Value returns the value field shared by every non-null layout.
func (r FullcodeRecord) Value() string {
	switch p := r.Payload.(type) {
	case *CharData:
		return p.Value
	case *WordData:
		return p.Value
	case *TextData:
		return p.Value
	}
	r.mismatch("value")
	return ""
}

// MarshalBinary encodes the record into its 304 byte form.
func (r FullcodeRecord) MarshalBinary() ([]byte, error) {
	if !r.Tag.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTag, uint32(r.Tag))
	}
	if strings.HasSuffix(r.Code, " ") || !isASCII(r.Code) {
		return nil, fmt.Errorf("%w: fullcode %q must be ASCII without trailing spaces", ErrInvalidCode, r.Code)
	}
	if len(r.Code) > FullcodeCodeSize {
		return nil, fmt.Errorf("%w: fullcode %q is longer than %d bytes", ErrInvalidCode, r.Code, FullcodeCodeSize)
	}
	buf := make([]byte, FullcodeRecordSize)
	binary.LittleEndian.PutUint32(buf, uint32(r.Tag))
	code := buf[4:fullcodeUnionOffset]
	copy(code, bytes.Repeat([]byte{' '}, FullcodeCodeSize))
	copy(code, r.Code)

	if r.Tag == TagNull {
		if r.Payload != nil {
			return nil, fmt.Errorf("%w: null record %q carries a payload", ErrInvalidField, r.Code)
		}
		return buf, nil
	}
	if r.Payload == nil || !r.Payload.accepts(r.Tag) {
		return nil, fmt.Errorf("%w: %s record %q with payload %T", ErrInvalidField, r.Tag, r.Code, r.Payload)
	}
	if err := r.Payload.marshal(buf[fullcodeUnionOffset:]); err != nil {
		return nil, fmt.Errorf("fullcode %q: %w", r.Code, err)
	}
	return buf, nil
}

// UnmarshalBinary decodes a 304 byte fullcode record.
func (r *FullcodeRecord) UnmarshalBinary(data []byte) error {
	if len(data) != FullcodeRecordSize {
		return fmt.Errorf("%w: fullcode record is %d bytes, want %d", ErrTruncated, len(data), FullcodeRecordSize)
	}
	tag := Tag(binary.LittleEndian.Uint32(data))
	if !tag.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidTag, uint32(tag))
	}
	code := data[4:fullcodeUnionOffset]
	if !isASCII(string(code)) {
		return fmt.Errorf("%w: fullcode bytes % x", ErrInvalidCode, code)
	}
	u := data[fullcodeUnionOffset:]

	var payload Payload
	var err error
	switch {
	case tag == TagNull:
		if !isZero(u) {
			err = fmt.Errorf("%w: null record", ErrReservedNonzero)
		}
	case tag.IsChar():
		payload, err = unmarshalChar(u)
	case tag == TagWord:
		payload, err = unmarshalWord(u)
	default:
		payload, err = unmarshalText(u)
	}
	if err != nil {
		return fmt.Errorf("fullcode %q: %w", strings.TrimRight(string(code), " "), err)
	}
	r.Tag = tag
	r.Code = strings.TrimRight(string(code), " ")
	r.Payload = payload
	return nil
}

func (r FullcodeRecord) String() string {
	return r.Code
}

// CheckWordLength reports whether the declared length of a word matches the
// number of syllables in its reading. A word with neither is consistent.
func CheckWordLength(w *WordData) bool {
	if len(w.Reading) == 0 && w.Length == 0 {
		return true
	}
	return len(w.Reading) == int(w.Length)
}

// CheckDecomposition reports whether the component keys of c spell code.
func CheckDecomposition(code string, c *CharData) bool {
	keys := make([]byte, len(c.Decomposition))
	for i, comp := range c.Decomposition {
		keys[i] = comp.Key
	}
	return string(keys) == code
}

// FullcodeTable keeps records in insertion order.
type FullcodeTable struct {
	Header  []byte
	records []FullcodeRecord
}

// NewFullcodeTable creates an empty table that will be written after header.
func NewFullcodeTable(header []byte) *FullcodeTable {
	return &FullcodeTable{Header: header}
}

// Add appends r.
func (t *FullcodeTable) Add(r FullcodeRecord) {
	t.records = append(t.records, r)
}

// Len returns the number of records.
func (t *FullcodeTable) Len() int {
	return len(t.records)
}

// Records returns the records in insertion order.
func (t *FullcodeTable) Records() []FullcodeRecord {
	return append([]FullcodeRecord(nil), t.records...)
}

// ReadFullcodeTable reads a headerSize byte header followed by fullcode
// records until the stream ends.
func ReadFullcodeTable(r io.Reader, headerSize int) (*FullcodeTable, error) {
	rr := newRecordReader(r)
	header, err := rr.readHeader(headerSize)
	if err != nil {
		return nil, fmt.Errorf("fullcode table: %w", err)
	}
	t := NewFullcodeTable(header)
	buf := make([]byte, FullcodeRecordSize)
	for {
		err := rr.next(buf)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fullcode table: %w", err)
		}
		var rec FullcodeRecord
		if err := rec.UnmarshalBinary(buf); err != nil {
			return nil, fmt.Errorf("fullcode table at offset %d: %w", rr.offset-FullcodeRecordSize, err)
		}
		t.Add(rec)
	}
	tracer().Debugf("loaded %d fullcode records", t.Len())
	return t, nil
}

// WriteTo writes the header and every record in insertion order.
func (t *FullcodeTable) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	if _, err := cw.Write(t.Header); err != nil {
		return cw.n, err
	}
	for _, rec := range t.records {
		buf, err := rec.MarshalBinary()
		if err != nil {
			return cw.n, err
		}
		if _, err := cw.Write(buf); err != nil {
			return cw.n, err
		}
	}
	return cw.n, nil
}
