package codec

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Sub-field geometry inside a fullcode record.
const (
	componentSize     = 2
	syllableSize      = 6
	syllableMajorSize = 2
	syllableMinorSize = 4
	toleranceSize     = 4

	MaxComponents     = 4
	MaxCharSyllables  = 7
	MaxWordSyllables  = 32
	MaxTolerances     = 3
	MaxCode6k         = 5
	Reading2Size      = 223
	reading2Separator = ","
)

// Component is one entry of a character decomposition: the key of a
// component character and its position index. It displays as "a+05".
type Component struct {
	Key   byte
	Index uint8
}

func (c Component) String() string {
	return fmt.Sprintf("%c+%02d", rune(c.Key), c.Index)
}

// ParseComponent parses the "C+NN" display form.
func ParseComponent(s string) (Component, error) {
	key, index, ok := strings.Cut(s, "+")
	if !ok {
		return Component{}, fmt.Errorf("%w: component %q lacks '+'", ErrInvalidField, s)
	}
	r, size := utf8.DecodeRuneInString(key)
	if size == 0 || size != len(key) || r == 0 || r > 0xff {
		return Component{}, fmt.Errorf("%w: component key %q", ErrInvalidField, key)
	}
	n, err := strconv.ParseUint(index, 10, 8)
	if err != nil {
		return Component{}, fmt.Errorf("%w: component index %q", ErrInvalidField, index)
	}
	return Component{Key: byte(r), Index: uint8(n)}, nil
}

// ParseDecomposition parses space separated components.
func ParseDecomposition(s string) ([]Component, error) {
	var out []Component
	for _, tok := range strings.Fields(s) {
		c, err := ParseComponent(tok)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// FormatDecomposition renders components in display form.
func FormatDecomposition(cs []Component) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// encodeDecomposition packs components as (index, key) byte pairs,
// NUL padded to the end of window.
func encodeDecomposition(window []byte, cs []Component) error {
	if len(cs)*componentSize > len(window) {
		return fmt.Errorf("%w: %d components, max %d", ErrFieldOverflow, len(cs), len(window)/componentSize)
	}
	clear(window)
	for i, c := range cs {
		if c.Key == 0 {
			return fmt.Errorf("%w: component %d has NUL key", ErrInvalidField, i)
		}
		window[i*componentSize] = c.Index
		window[i*componentSize+1] = c.Key
	}
	return nil
}

// decodeDecomposition strips trailing NULs and reads the remaining pairs.
func decodeDecomposition(window []byte) ([]Component, error) {
	raw := bytes.TrimRight(window, "\x00")
	if len(raw)%componentSize != 0 {
		return nil, fmt.Errorf("%w: decomposition % x", ErrMalformedField, window)
	}
	var out []Component
	for i := 0; i < len(raw); i += componentSize {
		if raw[i+1] == 0 {
			return nil, fmt.Errorf("%w: decomposition % x", ErrMalformedField, window)
		}
		out = append(out, Component{Index: raw[i], Key: raw[i+1]})
	}
	return out, nil
}

// Syllable is one reading token, a two byte major part and a four byte minor
// part. It displays as "MM+mmmm".
type Syllable struct {
	Major string
	Minor string
}

func (s Syllable) String() string {
	return s.Major + "+" + s.Minor
}

// ParseSyllable parses the "MM+mmmm" display form.
func ParseSyllable(s string) (Syllable, error) {
	major, minor, ok := strings.Cut(s, "+")
	if !ok {
		return Syllable{}, fmt.Errorf("%w: reading %q lacks '+'", ErrInvalidField, s)
	}
	return Syllable{Major: major, Minor: minor}, nil
}

// ParseReading parses space separated syllables.
func ParseReading(s string) ([]Syllable, error) {
	var out []Syllable
	for _, tok := range strings.Fields(s) {
		syl, err := ParseSyllable(tok)
		if err != nil {
			return nil, err
		}
		out = append(out, syl)
	}
	return out, nil
}

// FormatReading renders syllables in display form.
func FormatReading(ss []Syllable) string {
	parts := make([]string, len(ss))
	for i, s := range ss {
		parts[i] = s.String()
	}
	return strings.Join(parts, " ")
}

// encodeReading writes one 6 byte slot per syllable. Unused slots are NUL,
// and an all-NUL slot terminates the list.
func encodeReading(window []byte, ss []Syllable) error {
	if len(ss)*syllableSize > len(window) {
		return fmt.Errorf("%w: %d syllables, max %d", ErrFieldOverflow, len(ss), len(window)/syllableSize)
	}
	clear(window)
	for i, s := range ss {
		if s.Major == "" && s.Minor == "" {
			return fmt.Errorf("%w: syllable %d is empty", ErrInvalidField, i)
		}
		slot := window[i*syllableSize : (i+1)*syllableSize]
		if err := putText(latin1, slot[:syllableMajorSize], s.Major, "reading major"); err != nil {
			return err
		}
		if err := putText(latin1, slot[syllableMajorSize:], s.Minor, "reading minor"); err != nil {
			return err
		}
	}
	return nil
}

func decodeReading(window []byte) ([]Syllable, error) {
	var out []Syllable
	for i := 0; i+syllableSize <= len(window); i += syllableSize {
		slot := window[i : i+syllableSize]
		if isZero(slot) {
			if !isZero(window[i:]) {
				return nil, fmt.Errorf("%w: reading has data after terminator", ErrMalformedField)
			}
			break
		}
		major, err := getText(latin1, slot[:syllableMajorSize], "reading major")
		if err != nil {
			return nil, err
		}
		minor, err := getText(latin1, slot[syllableMajorSize:], "reading minor")
		if err != nil {
			return nil, err
		}
		out = append(out, Syllable{Major: major, Minor: minor})
	}
	return out, nil
}

// encodeTolerance writes one 4 byte slot per token.
func encodeTolerance(window []byte, tokens []string) error {
	if len(tokens)*toleranceSize > len(window) {
		return fmt.Errorf("%w: %d tolerance tokens, max %d", ErrFieldOverflow, len(tokens), len(window)/toleranceSize)
	}
	clear(window)
	for i, tok := range tokens {
		if tok == "" {
			return fmt.Errorf("%w: tolerance token %d is empty", ErrInvalidField, i)
		}
		if err := putText(latin1, window[i*toleranceSize:(i+1)*toleranceSize], tok, "tolerance"); err != nil {
			return err
		}
	}
	return nil
}

func decodeTolerance(window []byte) ([]string, error) {
	var out []string
	for i := 0; i+toleranceSize <= len(window); i += toleranceSize {
		slot := window[i : i+toleranceSize]
		if isZero(slot) {
			if !isZero(window[i:]) {
				return nil, fmt.Errorf("%w: tolerance has data after terminator", ErrMalformedField)
			}
			break
		}
		tok, err := getText(latin1, slot, "tolerance")
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
	}
	return out, nil
}

// ParseCode6k parses space separated decimal byte values.
func ParseCode6k(s string) ([]byte, error) {
	var out []byte
	for _, tok := range strings.Fields(s) {
		n, err := strconv.ParseUint(tok, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: code6k value %q", ErrInvalidField, tok)
		}
		out = append(out, byte(n))
	}
	return out, nil
}

// FormatCode6k renders each byte as a decimal number.
func FormatCode6k(b []byte) string {
	parts := make([]string, len(b))
	for i, c := range b {
		parts[i] = strconv.Itoa(int(c))
	}
	return strings.Join(parts, " ")
}

// encodeCode6k stores the raw bytes NUL padded. A trailing zero would be
// indistinguishable from padding and is rejected.
func encodeCode6k(window []byte, b []byte) error {
	if len(b) > len(window) {
		return fmt.Errorf("%w: %d code6k values, max %d", ErrFieldOverflow, len(b), len(window))
	}
	if len(b) > 0 && b[len(b)-1] == 0 {
		return fmt.Errorf("%w: code6k must not end with 0", ErrInvalidField)
	}
	clear(window)
	copy(window, b)
	return nil
}

func decodeCode6k(window []byte) []byte {
	raw := bytes.TrimRight(window, "\x00")
	if len(raw) == 0 {
		return nil
	}
	return append([]byte(nil), raw...)
}

// encodeReading2 joins tokens with commas into the NUL padded window.
func encodeReading2(window []byte, tokens []string) error {
	for i, tok := range tokens {
		if strings.Contains(tok, reading2Separator) || strings.IndexByte(tok, 0) >= 0 || !utf8.ValidString(tok) {
			return fmt.Errorf("%w: reading2 token %d %q", ErrInvalidField, i, tok)
		}
	}
	joined := strings.Join(tokens, reading2Separator)
	if len(tokens) > 0 && joined == "" {
		return fmt.Errorf("%w: reading2 has only an empty token", ErrInvalidField)
	}
	if len(joined) > len(window) {
		return fmt.Errorf("%w: reading2 needs %d bytes, have %d", ErrFieldOverflow, len(joined), len(window))
	}
	clear(window)
	copy(window, joined)
	return nil
}

func decodeReading2(window []byte) ([]string, error) {
	raw, err := unpad(window, "reading2")
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("%w: reading2 is not UTF-8", ErrMalformedField)
	}
	return strings.Split(string(raw), reading2Separator), nil
}
