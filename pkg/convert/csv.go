package convert

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ssargent/wubitab/pkg/codec"
)

// newCSVWriter writes UTF-8 with a byte order mark and CRLF rows. The
// returned closer flushes both layers.
func newCSVWriter(w io.Writer) (*csv.Writer, func() error) {
	tw := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	cw := csv.NewWriter(tw)
	cw.UseCRLF = true
	return cw, func() error {
		cw.Flush()
		if err := cw.Error(); err != nil {
			return err
		}
		return tw.Close()
	}
}

// newCSVReader strips an optional byte order mark.
func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(transform.NewReader(r, unicode.UTF8BOM.NewDecoder()))
	cr.FieldsPerRecord = -1
	return cr
}

// WriteShortcutCSV writes one `code,value` row per record.
func WriteShortcutCSV(w io.Writer, table *codec.ShortcutTable) error {
	cw, done := newCSVWriter(w)
	for _, rec := range table.Records() {
		if err := cw.Write([]string{rec.Code, rec.Value}); err != nil {
			return err
		}
	}
	return done()
}

// ReadShortcutCSV parses rows written by WriteShortcutCSV. The table gets the
// given header.
func ReadShortcutCSV(r io.Reader, header []byte) (*codec.ShortcutTable, error) {
	cr := newCSVReader(r)
	table := codec.NewShortcutTable(header)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		if len(row) != 2 {
			return nil, fmt.Errorf("line %d: shortcut row has %d fields, want 2", line, len(row))
		}
		rec, err := codec.NewShortcutRecord(row[0], row[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		table.Add(rec)
	}
	return table, nil
}

// fullcodeRow renders one record as CSV fields.
func fullcodeRow(rec codec.FullcodeRecord) []string {
	row := []string{rec.Tag.String(), rec.Code}
	switch {
	case rec.Tag == codec.TagNull:
		row = append(row, "")
	case rec.Tag == codec.TagWord:
		w := rec.Word()
		row = append(row, w.Value, codec.FormatReading(w.Reading), strconv.Itoa(int(w.Length)))
	case rec.Tag.IsChar():
		c := rec.Char()
		row = append(row,
			c.Value,
			codec.FormatReading(c.Reading),
			strings.Join(c.Reading2, " "),
			codec.FormatDecomposition(c.Decomposition),
			strconv.Itoa(int(c.Flag)),
			strings.Join(c.Tolerance, " "),
			codec.FormatCode6k(c.Code6k),
		)
	default:
		row = append(row, rec.Text().Value)
	}
	return row
}

// WriteFullcodeCSV writes one row per record in table order.
func WriteFullcodeCSV(w io.Writer, table *codec.FullcodeTable) error {
	cw, done := newCSVWriter(w)
	for _, rec := range table.Records() {
		if err := cw.Write(fullcodeRow(rec)); err != nil {
			return err
		}
	}
	return done()
}

var fullcodeFields = map[codec.Tag]int{
	codec.TagNull:         3,
	codec.TagChar:         9,
	codec.TagExtendedChar: 9,
	codec.TagWord:         5,
	codec.TagVariable:     3,
	codec.TagSymbol:       3,
}

// parseFullcodeRow builds a record from CSV fields and reports semantic
// mismatches as warnings for file.
func parseFullcodeRow(row []string, file string) (codec.FullcodeRecord, []Warning, error) {
	if len(row) < 2 {
		return codec.FullcodeRecord{}, nil, fmt.Errorf("fullcode row has %d fields", len(row))
	}
	tag, err := codec.ParseTag(row[0])
	if err != nil {
		return codec.FullcodeRecord{}, nil, err
	}
	if want := fullcodeFields[tag]; len(row) != want {
		return codec.FullcodeRecord{}, nil, fmt.Errorf("%s row has %d fields, want %d", tag, len(row), want)
	}
	code := row[1]

	var payload codec.Payload
	var ws []Warning
	switch {
	case tag == codec.TagNull:
		if row[2] != "" {
			return codec.FullcodeRecord{}, nil, fmt.Errorf("%w: null record %q has value %q", codec.ErrInvalidField, code, row[2])
		}
	case tag == codec.TagWord:
		reading, err := codec.ParseReading(row[3])
		if err != nil {
			return codec.FullcodeRecord{}, nil, err
		}
		length, err := strconv.ParseUint(row[4], 10, 8)
		if err != nil {
			return codec.FullcodeRecord{}, nil, fmt.Errorf("%w: word length %q", codec.ErrInvalidField, row[4])
		}
		w := &codec.WordData{Value: row[2], Length: uint8(length), Reading: reading}
		if !codec.CheckWordLength(w) {
			ws = warn(ws, file, WarnWordLength, w.Value)
		}
		payload = w
	case tag.IsChar():
		c, err := parseCharFields(row[2:])
		if err != nil {
			return codec.FullcodeRecord{}, nil, err
		}
		if !codec.CheckDecomposition(code, c) {
			ws = warn(ws, file, WarnCharDecomposition, code)
		}
		payload = c
	default:
		payload = &codec.TextData{Value: row[2]}
	}

	rec, err := codec.NewFullcodeRecord(tag, code, payload)
	if err != nil {
		return codec.FullcodeRecord{}, nil, err
	}
	return rec, ws, nil
}

// parseCharFields parses value,reading,reading2,decomposition,flag,tolerance,code6k.
func parseCharFields(f []string) (*codec.CharData, error) {
	reading, err := codec.ParseReading(f[1])
	if err != nil {
		return nil, err
	}
	decomposition, err := codec.ParseDecomposition(f[3])
	if err != nil {
		return nil, err
	}
	flag, err := strconv.ParseUint(f[4], 10, 16)
	if err != nil {
		return nil, fmt.Errorf("%w: char flag %q", codec.ErrInvalidField, f[4])
	}
	code6k, err := codec.ParseCode6k(f[6])
	if err != nil {
		return nil, err
	}
	c := &codec.CharData{
		Value:         f[0],
		Decomposition: decomposition,
		Reading:       reading,
		Flag:          uint16(flag),
		Code6k:        code6k,
	}
	if tokens := strings.Fields(f[5]); len(tokens) > 0 {
		c.Tolerance = tokens
	}
	if tokens := strings.Fields(f[2]); len(tokens) > 0 {
		c.Reading2 = tokens
	}
	return c, nil
}

// ReadFullcodeCSV parses rows written by WriteFullcodeCSV. file names the
// input in warnings.
func ReadFullcodeCSV(r io.Reader, header []byte, file string) (*codec.FullcodeTable, []Warning, error) {
	cr := newCSVReader(r)
	table := codec.NewFullcodeTable(header)
	var ws []Warning
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		line, _ := cr.FieldPos(0)
		rec, rowWarnings, err := parseFullcodeRow(row, file)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}
		ws = append(ws, rowWarnings...)
		table.Add(rec)
	}
	return table, ws, nil
}
