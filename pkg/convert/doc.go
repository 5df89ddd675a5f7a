/*
Package convert projects the binary code tables onto editable files and back.

Radical tables become a folder with one monochrome bitmap per component
(`a+01.bmp`). Shortcut and fullcode tables become CSV files, UTF-8 with a
byte order mark and CRLF line ends, one row per record:

	shortcut:       code,value
	null:           null,code,
	variable/symbol tag,code,value
	word:           word,code,value,reading,length
	char:           char,code,value,reading,reading2,decomposition,flag,tolerance,code6k

The opaque header in front of shortcut and fullcode records is kept in a
`<name>.header` sidecar next to the CSV so that encoding reproduces it.

DecodeFolder and EncodeFolder convert a whole directory, one file per
goroutine. Inconsistent data that still encodes (a word whose length does not
match its reading, a character whose decomposition does not spell its code,
a broken bitmap) is reported as a Warning and traced, never treated as fatal.
*/
package convert

import "github.com/npillmayer/schuko/tracing"

// tracer traces to the global tracer.
func tracer() tracing.Trace {
	return tracing.Select("wubitab.convert")
}
