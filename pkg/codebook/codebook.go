// Package codebook merges the shortcut and fullcode tables of one scheme
// version into a single code -> values dictionary and exports it in the
// formats of several input method products.
package codebook

import (
	"errors"
	"sort"

	"github.com/derekparker/trie"
	"github.com/npillmayer/schuko/tracing"

	"github.com/ssargent/wubitab/pkg/codec"
	"github.com/ssargent/wubitab/pkg/convert"
)

func tracer() tracing.Trace {
	return tracing.Select("wubitab.codebook")
}

// ErrNotFound is returned by lookups of unknown codes.
var ErrNotFound = errors.New("code not found")

// firstLevel holds the single letter codes that do not follow the first
// letter of the full code.
var firstLevel = map[string]string{
	"我": "q",
	"以": "c",
	"为": "o",
	"有": "e",
	"这": "p",
	"不": "i",
	"发": "v",
}

// Simple code bits of a char flag.
const (
	FlagSimple1 = 1 << iota
	FlagSimple2
	FlagSimple3
)

// Entry is one code with its values in priority order.
type Entry struct {
	Code   string   `json:"code"`
	Values []string `json:"values"`
}

// Codebook maps codes to ordered, duplicate free values.
type Codebook struct {
	Version string
	values  map[string][]string
	index   *trie.Trie
}

// New creates an empty codebook for version.
func New(version string) *Codebook {
	return &Codebook{
		Version: version,
		values:  make(map[string][]string),
		index:   trie.New(),
	}
}

// Add appends value to code unless it is already listed there.
func (b *Codebook) Add(code, value string) {
	vs, ok := b.values[code]
	if !ok {
		b.index.Add(code, nil)
	}
	for _, v := range vs {
		if v == value {
			return
		}
	}
	b.values[code] = append(vs, value)
}

// charFlag returns the simple code flag of a char record, with the known
// data errors of the shipped tables corrected.
func charFlag(version string, c *codec.CharData) uint16 {
	switch {
	case c.Value == "三":
		return FlagSimple2 | FlagSimple3
	case c.Value == "著" && version == "06":
		return FlagSimple2 | FlagSimple3
	}
	return c.Flag
}

func prefix(code string, n int) string {
	if len(code) < n {
		return code
	}
	return code[:n]
}

// Build merges the tables. Shortcut values come first, then the simple codes
// derived from the flags of the leading run of char records, then every
// char, extended char and word under its full code.
func Build(version string, fullcode *codec.FullcodeTable, shortcut *codec.ShortcutTable) *Codebook {
	b := New(version)
	for _, rec := range shortcut.Records() {
		b.Add(rec.Code, rec.Value)
	}

	records := fullcode.Records()
	for _, rec := range records {
		if rec.Tag != codec.TagChar {
			break
		}
		c := rec.Char()
		flag := charFlag(version, c)
		if flag&FlagSimple1 != 0 {
			code := prefix(rec.Code, 1)
			if override, ok := firstLevel[c.Value]; ok {
				code = override
			}
			b.Add(code, c.Value)
		}
		if flag&FlagSimple2 != 0 {
			b.Add(prefix(rec.Code, 2), c.Value)
		}
		if flag&FlagSimple3 != 0 {
			b.Add(prefix(rec.Code, 3), c.Value)
		}
	}

	for _, rec := range records {
		switch rec.Tag {
		case codec.TagChar, codec.TagExtendedChar, codec.TagWord:
			b.Add(rec.Code, rec.Value())
		}
	}
	tracer().Infof("codebook %s: %d codes", version, b.Len())
	return b
}

// Load reads the fullcode and shortcut CSV files of a version and builds its
// codebook. The fullcode table is returned as well for the exports that
// need per-record data.
func Load(version, fullcodePath, shortcutPath string) (*Codebook, *codec.FullcodeTable, []convert.Warning, error) {
	fullcode, ws, err := convert.EncodeFullcodeFile(fullcodePath, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	shortcut, err := convert.EncodeShortcutFile(shortcutPath, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	return Build(version, fullcode, shortcut), fullcode, ws, nil
}

// Len returns the number of codes.
func (b *Codebook) Len() int {
	return len(b.values)
}

// Lookup returns the values of code in priority order.
func (b *Codebook) Lookup(code string) ([]string, error) {
	vs, ok := b.values[code]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]string(nil), vs...), nil
}

// Codes returns every code in byte order.
func (b *Codebook) Codes() []string {
	codes := make([]string, 0, len(b.values))
	for code := range b.values {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Entries returns every code with its values, ordered by code.
func (b *Codebook) Entries() []Entry {
	codes := b.Codes()
	out := make([]Entry, len(codes))
	for i, code := range codes {
		out[i] = Entry{Code: code, Values: append([]string(nil), b.values[code]...)}
	}
	return out
}

// Complete returns up to limit entries whose code starts with prefix,
// ordered by code. A limit of zero or less means no limit.
func (b *Codebook) Complete(prefix string, limit int) ([]Entry, error) {
	var codes []string
	if prefix == "" {
		codes = b.Codes()
	} else {
		codes = b.index.PrefixSearch(prefix)
		sort.Strings(codes)
	}
	if limit > 0 && len(codes) > limit {
		codes = codes[:limit]
	}
	out := make([]Entry, len(codes))
	for i, code := range codes {
		out[i] = Entry{Code: code, Values: append([]string(nil), b.values[code]...)}
	}
	return out, nil
}
