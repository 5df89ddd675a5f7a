package codec

import (
	"fmt"
	"io"
	"sort"
)

const (
	// RadicalRecordSize is the on-disk size of one radical record:
	// letter(1) major(1) minor(1) reserved(5) bitmap(64).
	RadicalRecordSize = 72
	// RadicalDataSize is the size of the glyph bitmap.
	RadicalDataSize = 64

	radicalReservedOffset = 3
	radicalDataOffset     = 8
)

// RadicalRecord maps a radical code such as "a+01" to its 64 byte bitmap.
type RadicalRecord struct {
	Code string
	Data [RadicalDataSize]byte
}

// NewRadicalRecord validates code and data and builds a record.
func NewRadicalRecord(code string, data []byte) (RadicalRecord, error) {
	if err := validateRadicalCode(code); err != nil {
		return RadicalRecord{}, err
	}
	if len(data) != RadicalDataSize {
		return RadicalRecord{}, fmt.Errorf("%w: radical %s data is %d bytes, want %d", ErrInvalidField, code, len(data), RadicalDataSize)
	}
	r := RadicalRecord{Code: code}
	copy(r.Data[:], data)
	return r, nil
}

// validateRadicalCode checks the [a-z]+[0-9][0-9] form.
func validateRadicalCode(code string) error {
	ok := len(code) == 4 &&
		code[0] >= 'a' && code[0] <= 'z' &&
		code[1] == '+' &&
		code[2] >= '0' && code[2] <= '9' &&
		code[3] >= '0' && code[3] <= '9'
	if !ok {
		return fmt.Errorf("%w: radical code %q", ErrInvalidCode, code)
	}
	return nil
}

// MarshalBinary encodes the record into its 72 byte form.
func (r RadicalRecord) MarshalBinary() ([]byte, error) {
	if err := validateRadicalCode(r.Code); err != nil {
		return nil, err
	}
	buf := make([]byte, RadicalRecordSize)
	buf[0] = r.Code[0] - 'a' + 'A'
	buf[1] = r.Code[2]
	buf[2] = r.Code[3]
	copy(buf[radicalDataOffset:], r.Data[:])
	return buf, nil
}

// UnmarshalBinary decodes a 72 byte radical record.
func (r *RadicalRecord) UnmarshalBinary(data []byte) error {
	if len(data) != RadicalRecordSize {
		return fmt.Errorf("%w: radical record is %d bytes, want %d", ErrTruncated, len(data), RadicalRecordSize)
	}
	letter, major, minor := data[0], data[1], data[2]
	if letter < 'A' || letter > 'Z' || major < '0' || major > '9' || minor < '0' || minor > '9' {
		return fmt.Errorf("%w: radical key bytes % x", ErrInvalidCode, data[:3])
	}
	if !isZero(data[radicalReservedOffset:radicalDataOffset]) {
		return fmt.Errorf("%w: radical %c+%c%c", ErrReservedNonzero, letter, major, minor)
	}
	r.Code = string([]byte{letter - 'A' + 'a', '+', major, minor})
	copy(r.Data[:], data[radicalDataOffset:])
	return nil
}

func (r RadicalRecord) String() string {
	return r.Code
}

// RadicalTable holds one record per code. Adding a record with an existing
// code replaces it. Records are written in code order.
type RadicalTable struct {
	records map[string]RadicalRecord
}

// NewRadicalTable creates an empty radical table
func NewRadicalTable() *RadicalTable {
	return &RadicalTable{records: make(map[string]RadicalRecord)}
}

// Add stores r, replacing any record with the same code.
func (t *RadicalTable) Add(r RadicalRecord) {
	t.records[r.Code] = r
}

// Get returns the record for code.
func (t *RadicalTable) Get(code string) (RadicalRecord, bool) {
	r, ok := t.records[code]
	return r, ok
}

// Len returns the number of records.
func (t *RadicalTable) Len() int {
	return len(t.records)
}

// Records returns the records ordered by code.
func (t *RadicalTable) Records() []RadicalRecord {
	codes := make([]string, 0, len(t.records))
	for code := range t.records {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	out := make([]RadicalRecord, len(codes))
	for i, code := range codes {
		out[i] = t.records[code]
	}
	return out
}

// ReadRadicalTable reads radical records until the stream ends. The file has
// no header.
func ReadRadicalTable(r io.Reader) (*RadicalTable, error) {
	rr := newRecordReader(r)
	t := NewRadicalTable()
	buf := make([]byte, RadicalRecordSize)
	for {
		err := rr.next(buf)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("radical table: %w", err)
		}
		var rec RadicalRecord
		if err := rec.UnmarshalBinary(buf); err != nil {
			return nil, fmt.Errorf("radical table at offset %d: %w", rr.offset-RadicalRecordSize, err)
		}
		t.Add(rec)
	}
	tracer().Debugf("loaded %d radical records", t.Len())
	return t, nil
}

// WriteTo writes every record in code order.
func (t *RadicalTable) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
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
