package codec

import (
	"encoding/binary"
	"fmt"
	"io"
	"sort"
)

// Shortcut index tiers. A one letter code uses the first 25 slots, longer
// codes use 30 slots per position.
const (
	S1Begin = 0
	S1End   = 24
	S2Begin = 30 + 1
	S2End   = 30 + 30*24 + 25
	S3Begin = 930 + 1
	S3End   = 930 + 900*24 + 30*24 + 25
)

const (
	// ShortcutRecordSize is the on-disk size of one shortcut record:
	// index(4) value(4).
	ShortcutRecordSize = 8
	// ShortcutValueSize is the width of the GB18030 value.
	ShortcutValueSize = 4
)

// ShortcutIndex maps a one to three letter code to its record index.
func ShortcutIndex(code string) (uint32, error) {
	if len(code) < 1 || len(code) > 3 {
		return 0, fmt.Errorf("%w: shortcut code %q must have 1 to 3 letters", ErrInvalidCode, code)
	}
	var n [3]uint32
	for i := 0; i < len(code); i++ {
		c := code[i]
		if c < 'a' || c > 'z' {
			return 0, fmt.Errorf("%w: shortcut code %q must be lowercase letters", ErrInvalidCode, code)
		}
		n[i] = uint32(c - 'a')
	}
	var index, begin, end uint32
	switch len(code) {
	case 1:
		index, begin, end = S1Begin+n[0], S1Begin, S1End
	case 2:
		index, begin, end = S2Begin+30*n[0]+n[1], S2Begin, S2End
	default:
		index, begin, end = S3Begin+900*n[0]+30*n[1]+n[2], S3Begin, S3End
	}
	if index < begin || index > end {
		return 0, fmt.Errorf("%w: shortcut code %q has no index", ErrInvalidCode, code)
	}
	return index, nil
}

// ShortcutCode maps a record index back to its code.
func ShortcutCode(index uint32) (string, error) {
	var pos []uint32
	switch {
	case index <= S1End:
		off := index - S1Begin
		pos = []uint32{off}
	case index >= S2Begin && index <= S2End:
		off := index - S2Begin
		pos = []uint32{off / 30, off % 30}
	case index >= S3Begin && index <= S3End:
		off := index - S3Begin
		pos = []uint32{off / 900, off / 30 % 30, off % 30}
	default:
		return "", fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}
	code := make([]byte, len(pos))
	for i, p := range pos {
		if p >= 26 {
			return "", fmt.Errorf("%w: %d has no letter at position %d", ErrInvalidIndex, index, i)
		}
		code[i] = 'a' + byte(p)
	}
	return string(code), nil
}

// ShortcutRecord maps a short code to a value of at most four GB18030 bytes.
type ShortcutRecord struct {
	Code  string
	Value string
}

// NewShortcutRecord validates code and value and builds a record.
func NewShortcutRecord(code, value string) (ShortcutRecord, error) {
	r := ShortcutRecord{Code: code, Value: value}
	if _, err := r.MarshalBinary(); err != nil {
		return ShortcutRecord{}, err
	}
	return r, nil
}

// MarshalBinary encodes the record into its 8 byte form.
func (r ShortcutRecord) MarshalBinary() ([]byte, error) {
	index, err := ShortcutIndex(r.Code)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, ShortcutRecordSize)
	binary.LittleEndian.PutUint32(buf, index)
	if err := putText(gb18030, buf[4:], r.Value, "shortcut value"); err != nil {
		return nil, err
	}
	return buf, nil
}

// UnmarshalBinary decodes an 8 byte shortcut record.
func (r *ShortcutRecord) UnmarshalBinary(data []byte) error {
	if len(data) != ShortcutRecordSize {
		return fmt.Errorf("%w: shortcut record is %d bytes, want %d", ErrTruncated, len(data), ShortcutRecordSize)
	}
	code, err := ShortcutCode(binary.LittleEndian.Uint32(data))
	if err != nil {
		return err
	}
	value, err := getText(gb18030, data[4:], "shortcut value")
	if err != nil {
		return err
	}
	r.Code, r.Value = code, value
	return nil
}

func (r ShortcutRecord) String() string {
	return r.Code
}

// ShortcutTable groups records by code. Records sharing a code keep their
// insertion order; codes are ordered by length and then lexicographically.
type ShortcutTable struct {
	Header  []byte
	records map[string][]ShortcutRecord
}

// NewShortcutTable creates an empty table that will be written after header.
func NewShortcutTable(header []byte) *ShortcutTable {
	return &ShortcutTable{Header: header, records: make(map[string][]ShortcutRecord)}
}

// Add appends r to the records of its code.
func (t *ShortcutTable) Add(r ShortcutRecord) {
	t.records[r.Code] = append(t.records[r.Code], r)
}

// Get returns the records stored for code.
func (t *ShortcutTable) Get(code string) []ShortcutRecord {
	return t.records[code]
}

// Len returns the number of records.
func (t *ShortcutTable) Len() int {
	n := 0
	for _, rs := range t.records {
		n += len(rs)
	}
	return n
}

// Codes returns the distinct codes ordered by length, then lexicographically.
func (t *ShortcutTable) Codes() []string {
	codes := make([]string, 0, len(t.records))
	for code := range t.records {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		if len(codes[i]) != len(codes[j]) {
			return len(codes[i]) < len(codes[j])
		}
		return codes[i] < codes[j]
	})
	return codes
}

// Records returns all records in table order.
func (t *ShortcutTable) Records() []ShortcutRecord {
	out := make([]ShortcutRecord, 0, t.Len())
	for _, code := range t.Codes() {
		out = append(out, t.records[code]...)
	}
	return out
}

// ReadShortcutTable reads a headerSize byte header followed by shortcut
// records until the stream ends.
func ReadShortcutTable(r io.Reader, headerSize int) (*ShortcutTable, error) {
	rr := newRecordReader(r)
	header, err := rr.readHeader(headerSize)
	if err != nil {
		return nil, fmt.Errorf("shortcut table: %w", err)
	}
	t := NewShortcutTable(header)
	buf := make([]byte, ShortcutRecordSize)
	for {
		err := rr.next(buf)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("shortcut table: %w", err)
		}
		var rec ShortcutRecord
		if err := rec.UnmarshalBinary(buf); err != nil {
			return nil, fmt.Errorf("shortcut table at offset %d: %w", rr.offset-ShortcutRecordSize, err)
		}
		t.Add(rec)
	}
	tracer().Debugf("loaded %d shortcut records", t.Len())
	return t, nil
}

// WriteTo writes the header and every record in table order.
func (t *ShortcutTable) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	if _, err := cw.Write(t.Header); err != nil {
		return cw.n, err
	}
	for _, rec := range t.Records() {
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
