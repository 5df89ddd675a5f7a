package codec

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
)

// Character sets used inside the table files. Values are GB18030, reading and
// tolerance tokens are single-byte (decoded as Latin-1 so every byte survives),
// phone-file values are UTF-16LE.
var (
	gb18030 encoding.Encoding = simplifiedchinese.GB18030
	latin1  encoding.Encoding = charmap.ISO8859_1
	utf16LE encoding.Encoding = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
)

// putText encodes s with enc into window and pads the remainder with NUL.
func putText(enc encoding.Encoding, window []byte, s, field string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("%w: %s %q is not UTF-8", ErrInvalidField, field, s)
	}
	b, err := enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return fmt.Errorf("%w: %s %q: %v", ErrInvalidField, field, s, err)
	}
	if bytes.IndexByte(b, 0) >= 0 {
		return fmt.Errorf("%w: %s %q contains NUL", ErrInvalidField, field, s)
	}
	if len(b) > len(window) {
		return fmt.Errorf("%w: %s %q needs %d bytes, have %d", ErrFieldOverflow, field, s, len(b), len(window))
	}
	clear(window)
	copy(window, b)
	return nil
}

// getText decodes the NUL padded window with enc. The decoded string must
// encode back to the same bytes.
func getText(enc encoding.Encoding, window []byte, field string) (string, error) {
	raw, err := unpad(window, field)
	if err != nil {
		return "", err
	}
	if len(raw) == 0 {
		return "", nil
	}
	s, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrMalformedField, field, err)
	}
	back, err := enc.NewEncoder().Bytes(s)
	if err != nil || !bytes.Equal(back, raw) {
		return "", fmt.Errorf("%w: %s bytes % x do not round-trip", ErrMalformedField, field, raw)
	}
	return string(s), nil
}

// unpad returns the bytes of window before the first NUL. Everything after
// that NUL must be NUL as well.
func unpad(window []byte, field string) ([]byte, error) {
	i := bytes.IndexByte(window, 0)
	if i < 0 {
		return window, nil
	}
	if !isZero(window[i:]) {
		return nil, fmt.Errorf("%w: %s has data after padding", ErrMalformedField, field)
	}
	return window[:i], nil
}

func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
