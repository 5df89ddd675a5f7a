// Package codec reads and writes the binary code tables of the Wangma Wubi
// input method and the BaiduPhone dictionary format.
//
// Every format is little-endian and made of fixed-size fields. Strings are
// stored right-padded with NUL (or space, for fullcode codes) and the decoder
// requires the padding to be clean, so that encoding a decoded record always
// reproduces the original bytes.
//
// # Radical tables (*zg.dat)
//
// No header, a stream of 72 byte records:
//
//	[Letter(1)][Major(1)][Minor(1)][Reserved(5)][Bitmap(64)]
//
// Letter is an uppercase ASCII letter, Major and Minor are ASCII digits. The
// code "a+01" is stored as 'A' '0' '1'. The reserved bytes must be zero.
//
// # Shortcut tables (*jm.dat)
//
// A fixed header blob followed by 8 byte records:
//
//	[Index(4)][Value(4, GB18030)]
//
// The index encodes a one to three letter code in three disjoint ranges,
// see [ShortcutIndex].
//
// # Fullcode tables (*qm.dat)
//
// A fixed header blob followed by 304 byte records:
//
//	[Tag(4)][Code(4, space padded)][Union(296)]
//
// The tag selects one of three union layouts (char, word, text). Within the
// char and word layouts several small sub-encodings are packed into fixed
// windows: decompositions, readings, tolerances, code6k values and the
// comma separated second reading.
//
// # BaiduPhone dictionaries (*.def)
//
//	[MaxLength(1)][Offsets(27*4)][Record]...
//	Record: [CodeLen(1)][ValueLen(1)][Codes][Value UTF-16LE + NUL unit][Reserved(4)]
//
// Offsets[i] is the body offset of the first record whose first code starts
// with 'a'+i; Offsets[26] is the body length.
//
// # End of table and errors
//
// A table ends when the stream ends exactly on a record boundary. A stream
// that ends inside a record yields [ErrTruncated]; reserved bytes that are not
// zero yield [ErrReservedNonzero]. In both cases no partial table is returned.
// Accessing a payload that the record tag does not define panics with
// [ErrTagMismatch].
package codec

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'wubitab.codec'
func tracer() tracing.Trace {
	return tracing.Select("wubitab.codec")
}
