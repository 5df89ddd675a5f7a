package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// PhoneSections is the number of section offsets: one per letter a..z
	// plus the end of the body.
	PhoneSections = 27
	// PhoneHeaderSize is max-length(1) + offsets(27*4).
	PhoneHeaderSize = 1 + PhoneSections*4
	// DefaultPhoneMaxLength is the max-length byte written by new files.
	DefaultPhoneMaxLength = 4

	phoneReservedSize = 4
	phoneMaxField     = 0xff
)

// PhoneRecord is one entry of a BaiduPhone dictionary: a value and the codes
// that produce it.
type PhoneRecord struct {
	Value string
	Codes []string
}

// NewPhoneRecord validates value and codes and builds a record.
func NewPhoneRecord(value string, codes ...string) (PhoneRecord, error) {
	r := PhoneRecord{Value: value, Codes: codes}
	if _, err := r.MarshalBinary(); err != nil {
		return PhoneRecord{}, err
	}
	return r, nil
}

func (r PhoneRecord) String() string {
	if len(r.Codes) == 0 {
		return r.Value
	}
	return r.Value + " " + strings.Join(r.Codes, " ")
}

// MarshalBinary encodes the record framing:
// codeLen(1) valueLen(1) codes value NUL-unit reserved(4).
func (r PhoneRecord) MarshalBinary() ([]byte, error) {
	for _, code := range r.Codes {
		if code == "" || !isASCII(code) || strings.IndexFunc(code, unicode.IsSpace) >= 0 {
			return nil, fmt.Errorf("%w: phone code %q", ErrInvalidCode, code)
		}
	}
	codes := strings.Join(r.Codes, " ")
	if len(codes) > phoneMaxField {
		return nil, fmt.Errorf("%w: phone codes need %d bytes, max %d", ErrFieldOverflow, len(codes), phoneMaxField)
	}
	if !utf8.ValidString(r.Value) {
		return nil, fmt.Errorf("%w: phone value %q is not UTF-8", ErrInvalidField, r.Value)
	}
	if strings.HasSuffix(r.Value, "\x00") {
		return nil, fmt.Errorf("%w: phone value %q ends with NUL", ErrInvalidField, r.Value)
	}
	value, err := utf16LE.NewEncoder().Bytes([]byte(r.Value))
	if err != nil {
		return nil, fmt.Errorf("%w: phone value %q: %v", ErrInvalidField, r.Value, err)
	}
	value = append(value, 0, 0)
	if len(value) > phoneMaxField {
		return nil, fmt.Errorf("%w: phone value needs %d bytes, max %d", ErrFieldOverflow, len(value), phoneMaxField)
	}

	buf := make([]byte, 0, 2+len(codes)+len(value)+phoneReservedSize)
	buf = append(buf, byte(len(codes)), byte(len(value)))
	buf = append(buf, codes...)
	buf = append(buf, value...)
	buf = append(buf, make([]byte, phoneReservedSize)...)
	return buf, nil
}

// ReadPhoneRecord reads one record. It returns io.EOF if the stream ends
// before the first byte of the record; a record cut anywhere later is
// ErrTruncated.
func ReadPhoneRecord(r io.Reader) (PhoneRecord, error) {
	return readPhoneRecord(newRecordReader(r))
}

func readPhoneRecord(rr *recordReader) (PhoneRecord, error) {
	var lengths [2]byte
	if err := rr.next(lengths[:1]); err != nil {
		return PhoneRecord{}, err
	}
	start := rr.offset - 1
	if err := rr.full(lengths[1:]); err != nil {
		return PhoneRecord{}, err
	}
	body := make([]byte, int(lengths[0])+int(lengths[1])+phoneReservedSize)
	if err := rr.full(body); err != nil {
		return PhoneRecord{}, err
	}
	codes := body[:lengths[0]]
	value := body[lengths[0] : len(body)-phoneReservedSize]
	reserved := body[len(body)-phoneReservedSize:]

	if !isZero(reserved) {
		return PhoneRecord{}, fmt.Errorf("%w: phone record at offset %d has reserved % x", ErrReservedNonzero, start, reserved)
	}
	if !isASCII(string(codes)) {
		return PhoneRecord{}, fmt.Errorf("%w: phone codes at offset %d are not ASCII", ErrMalformedField, start)
	}
	if len(value)%2 != 0 {
		return PhoneRecord{}, fmt.Errorf("%w: phone value at offset %d has odd length %d", ErrMalformedField, start, len(value))
	}
	decoded, err := utf16LE.NewDecoder().Bytes(value)
	if err != nil {
		return PhoneRecord{}, fmt.Errorf("%w: phone value at offset %d: %v", ErrMalformedField, start, err)
	}
	rec := PhoneRecord{
		Value: strings.TrimRight(string(decoded), "\x00"),
		Codes: strings.Fields(string(codes)),
	}
	// The decoder replaces lone surrogates, and the framing expects exactly
	// one NUL unit; both show up as bytes that do not encode back.
	back, err := utf16LE.NewEncoder().Bytes([]byte(rec.Value))
	if err != nil || !bytes.Equal(append(back, 0, 0), value) {
		return PhoneRecord{}, fmt.Errorf("%w: phone value at offset %d bytes % x do not round-trip", ErrMalformedField, start, value)
	}
	return rec, nil
}

// PhoneFile is a BaiduPhone dictionary. Records must be ordered by the first
// letter of their first code so that Offsets index the letter buckets.
type PhoneFile struct {
	MaxLength byte
	Offsets   [PhoneSections]uint32
	Records   []PhoneRecord
}

// NewPhoneFile creates an empty file with the default max length.
func NewPhoneFile() *PhoneFile {
	return &PhoneFile{MaxLength: DefaultPhoneMaxLength}
}

// ReadPhoneFile reads the header, the section offsets and every record.
func ReadPhoneFile(r io.Reader) (*PhoneFile, error) {
	rr := newRecordReader(r)
	f := &PhoneFile{}
	var err error
	if f.MaxLength, err = rr.readByte(); err != nil {
		return nil, fmt.Errorf("phone file header: %w", err)
	}
	for i := range f.Offsets {
		if f.Offsets[i], err = rr.readUint32(); err != nil {
			return nil, fmt.Errorf("phone file offsets: %w", err)
		}
		if i > 0 && f.Offsets[i] < f.Offsets[i-1] {
			return nil, fmt.Errorf("%w: phone offset %d decreases", ErrMalformedField, i)
		}
	}
	for {
		rec, err := readPhoneRecord(rr)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("phone file: %w", err)
		}
		f.Records = append(f.Records, rec)
	}
	tracer().Debugf("loaded %d phone records", len(f.Records))
	return f, nil
}

// leadingLetter returns the section letter of a record.
func (r PhoneRecord) leadingLetter() (byte, error) {
	if len(r.Codes) == 0 || r.Codes[0] == "" {
		return 0, fmt.Errorf("%w: phone record %q has no code", ErrInvalidCode, r.Value)
	}
	c := r.Codes[0][0]
	if c < 'a' || c > 'z' {
		return 0, fmt.Errorf("%w: phone code %q does not start with a..z", ErrInvalidCode, r.Codes[0])
	}
	return c, nil
}

// Compile encodes the file and recomputes Offsets. Each letter's offset is
// the body length before its first record; letters without records and the
// trailing slot take the length of the bucket end.
func (f *PhoneFile) Compile() ([]byte, error) {
	var body bytes.Buffer
	var offsets [PhoneSections]uint32
	next := 0
	for i, rec := range f.Records {
		letter, err := rec.leadingLetter()
		if err != nil {
			return nil, fmt.Errorf("phone record %d: %w", i, err)
		}
		section := int(letter - 'a')
		if section+1 < next {
			return nil, fmt.Errorf("%w: record %d (%s) follows section %c", ErrUnsorted, i, rec.Codes[0], 'a'+byte(next-1))
		}
		for ; next <= section; next++ {
			offsets[next] = uint32(body.Len())
		}
		buf, err := rec.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("phone record %d: %w", i, err)
		}
		body.Write(buf)
	}
	for ; next < PhoneSections; next++ {
		offsets[next] = uint32(body.Len())
	}
	f.Offsets = offsets

	out := make([]byte, PhoneHeaderSize, PhoneHeaderSize+body.Len())
	out[0] = f.MaxLength
	for i, off := range offsets {
		binary.LittleEndian.PutUint32(out[1+4*i:], off)
	}
	return append(out, body.Bytes()...), nil
}

// Section returns the body byte range of the records whose first code
// starts with letter.
func (f *PhoneFile) Section(letter byte) (start, end uint32, ok bool) {
	if letter < 'a' || letter > 'z' {
		return 0, 0, false
	}
	i := int(letter - 'a')
	return f.Offsets[i], f.Offsets[i+1], true
}

// Dump writes a human readable listing of the file.
func (f *PhoneFile) Dump(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "MaxLength: %d\n", f.MaxLength)
	b.WriteString("Offsets:\n")
	for i, off := range f.Offsets {
		label := "end"
		if i < PhoneSections-1 {
			label = string(rune('A' + i))
		}
		fmt.Fprintf(&b, "  %-3s -> 0x%08X\n", label, off)
	}
	b.WriteString("Records:\n")
	for _, rec := range f.Records {
		fmt.Fprintf(&b, "  %s\n", rec)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
