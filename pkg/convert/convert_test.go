package convert

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/wubitab/pkg/codec"
)

var testHeader = []byte("0123456789ABCDEF")

func sampleRadicals(t *testing.T) *codec.RadicalTable {
	t.Helper()
	table := codec.NewRadicalTable()
	for i, code := range []string{"a+01", "g+12", "y+03"} {
		rec, err := codec.NewRadicalRecord(code, bytes.Repeat([]byte{byte(0x11 * (i + 1))}, codec.RadicalDataSize))
		require.NoError(t, err)
		table.Add(rec)
	}
	return table
}

func sampleShortcuts(t *testing.T) *codec.ShortcutTable {
	t.Helper()
	table := codec.NewShortcutTable(testHeader)
	for _, pair := range [][2]string{{"g", "一"}, {"gg", "王"}, {"a", "工"}, {"gg", "五"}, {"abc", "阿"}} {
		rec, err := codec.NewShortcutRecord(pair[0], pair[1])
		require.NoError(t, err)
		table.Add(rec)
	}
	return table
}

func sampleFullcodes(t *testing.T) *codec.FullcodeTable {
	t.Helper()
	table := codec.NewFullcodeTable(testHeader)
	add := func(tag codec.Tag, code string, p codec.Payload) {
		rec, err := codec.NewFullcodeRecord(tag, code, p)
		require.NoError(t, err)
		table.Add(rec)
	}
	add(codec.TagChar, "aaaa", &codec.CharData{
		Value:         "工",
		Decomposition: []codec.Component{{Key: 'a', Index: 1}, {Key: 'a', Index: 2}, {Key: 'a', Index: 3}, {Key: 'a', Index: 4}},
		Reading:       []codec.Syllable{{Major: "g", Minor: "ong1"}},
		Flag:          7,
		Tolerance:     []string{"aaa"},
		Code6k:        []byte{23, 5},
		Reading2:      []string{"gong1", "gong4"},
	})
	add(codec.TagExtendedChar, "ggll", &codec.CharData{Value: "王"})
	add(codec.TagWord, "aaaa", &codec.WordData{
		Value:   "工人",
		Length:  2,
		Reading: []codec.Syllable{{Major: "g", Minor: "ong1"}, {Major: "r", Minor: "en2"}},
	})
	add(codec.TagVariable, "date", &codec.TextData{Value: "2014年"})
	add(codec.TagSymbol, "zzz", &codec.TextData{Value: "→"})
	add(codec.TagNull, "", nil)
	return table
}

func tableBytes(t *testing.T, wt interface {
	WriteTo(w io.Writer) (int64, error)
}) []byte {
	t.Helper()
	var buf bytes.Buffer
	_, err := wt.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestBitmapHeader(t *testing.T) {
	require.Len(t, BitmapHeader, 62)
	assert.Equal(t, []byte("BM"), BitmapHeader[:2])
	assert.Equal(t, uint32(62+64), binary.LittleEndian.Uint32(BitmapHeader[2:]))
	assert.Equal(t, uint32(62), binary.LittleEndian.Uint32(BitmapHeader[10:]))
	assert.Equal(t, uint32(BitmapWidth), binary.LittleEndian.Uint32(BitmapHeader[18:]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(BitmapHeader[28:]))
}

func TestRadicalBitmaps_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wmwb86zg.dat")
	original := tableBytes(t, sampleRadicals(t))
	require.NoError(t, os.WriteFile(path, original, 0644))

	folder := filepath.Join(dir, "bitmaps")
	require.NoError(t, os.Mkdir(folder, 0750))
	require.NoError(t, DecodeRadicalFile(path, folder))

	data, err := os.ReadFile(filepath.Join(folder, "g+12.bmp"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, BitmapHeader))
	assert.Len(t, data, BitmapHeaderSize+codec.RadicalDataSize)

	table, ws, err := EncodeRadicalFolder(folder)
	require.NoError(t, err)
	assert.Empty(t, ws)
	assert.Equal(t, original, tableBytes(t, table))
}

func TestEncodeRadicalFolder_BrokenBitmaps(t *testing.T) {
	folder := t.TempDir()
	good := append(bytes.Clone(BitmapHeader), make([]byte, codec.RadicalDataSize)...)
	require.NoError(t, os.WriteFile(filepath.Join(folder, "b+01.bmp"), good, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(folder, "c+02.bmp"), good[:70], 0644))
	require.NoError(t, os.WriteFile(filepath.Join(folder, "d+03.bmp"), append([]byte("XX"), good[2:]...), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(folder, "notes.bmp"), good, 0644))

	table, ws, err := EncodeRadicalFolder(folder)
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
	require.Len(t, ws, 2)
	for _, w := range ws {
		assert.Equal(t, WarnBrokenBitmap, w.Kind)
	}
}

func TestShortcutCSV_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteShortcutCSV(&buf, sampleShortcuts(t)))

	out := buf.Bytes()
	assert.True(t, bytes.HasPrefix(out, []byte{0xef, 0xbb, 0xbf}), "missing BOM")
	assert.Equal(t, "a,工\r\ng,一\r\ngg,王\r\ngg,五\r\nabc,阿\r\n", string(out[3:]))

	table, err := ReadShortcutCSV(bytes.NewReader(out), testHeader)
	require.NoError(t, err)
	assert.Equal(t, tableBytes(t, sampleShortcuts(t)), tableBytes(t, table))
}

func TestShortcutCSV_WithoutBOM(t *testing.T) {
	table, err := ReadShortcutCSV(strings.NewReader("a,工\n"), nil)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, "工", table.Get("a")[0].Value)
}

func TestShortcutCSV_Errors(t *testing.T) {
	_, err := ReadShortcutCSV(strings.NewReader("a,工,extra\n"), nil)
	assert.ErrorContains(t, err, "line 1")

	_, err = ReadShortcutCSV(strings.NewReader("a,工\nzz,王\n"), nil)
	assert.ErrorIs(t, err, codec.ErrInvalidCode)
	assert.ErrorContains(t, err, "line 2")
}

func TestFullcodeCSV_Rows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFullcodeCSV(&buf, sampleFullcodes(t)))

	lines := strings.Split(strings.TrimSuffix(string(buf.Bytes()[3:]), "\r\n"), "\r\n")
	assert.Equal(t, []string{
		"char,aaaa,工,g+ong1,gong1 gong4,a+01 a+02 a+03 a+04,7,aaa,23 5",
		"extended-char,ggll,王,,,,0,,",
		"word,aaaa,工人,g+ong1 r+en2,2",
		"variable,date,2014年",
		"symbol,zzz,→",
		"null,,",
	}, lines)
}

func TestFullcodeCSV_RoundTrip(t *testing.T) {
	original := sampleFullcodes(t)
	var buf bytes.Buffer
	require.NoError(t, WriteFullcodeCSV(&buf, original))

	table, ws, err := ReadFullcodeCSV(&buf, testHeader, "wmwb86qm.dat.txt")
	require.NoError(t, err)
	// 王 is stored under ggll without a decomposition
	require.Len(t, ws, 1)
	assert.Equal(t, Warning{File: "wmwb86qm.dat.txt", Kind: WarnCharDecomposition, Subject: "ggll"}, ws[0])
	assert.Equal(t, tableBytes(t, original), tableBytes(t, table))
}

func TestFullcodeCSV_Warnings(t *testing.T) {
	input := strings.Join([]string{
		"word,aaaa,工人,g+ong1,2",
		"word,aaab,工厂,,0",
		"char,gggg,王,,,g+01 g+02 g+03 h+04,0,,",
	}, "\r\n") + "\r\n"

	_, ws, err := ReadFullcodeCSV(strings.NewReader(input), nil, "t.txt")
	require.NoError(t, err)
	assert.Equal(t, []Warning{
		{File: "t.txt", Kind: WarnWordLength, Subject: "工人"},
		{File: "t.txt", Kind: WarnCharDecomposition, Subject: "gggg"},
	}, ws)
	assert.Equal(t, "t.txt: word-length: 工人", ws[0].String())
}

func TestFullcodeCSV_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  error
	}{
		{"unknown tag", "glyph,aaaa,工\n", codec.ErrInvalidTag},
		{"bad flag", "char,aaaa,工,,,,x,,\n", codec.ErrInvalidField},
		{"bad length", "word,aaaa,工人,,300\n", codec.ErrInvalidField},
		{"null with value", "null,,x\n", codec.ErrInvalidField},
		{"long code", "symbol,abcde,→\n", codec.ErrInvalidCode},
		{"long value", "char,aaaa,工人工,,,,0,,\n", codec.ErrFieldOverflow},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := ReadFullcodeCSV(strings.NewReader(tc.input), nil, "t.txt")
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, _, err := ReadFullcodeCSV(strings.NewReader("word,aaaa,工人\n"), nil, "t.txt")
	assert.ErrorContains(t, err, "want 5")
}

func writeBinaryFolder(t *testing.T, dir string) map[string][]byte {
	t.Helper()
	files := map[string][]byte{
		"wmwb86zg.dat": tableBytes(t, sampleRadicals(t)),
		"wmwb86jm.dat": tableBytes(t, sampleShortcuts(t)),
		"wmwb86qm.dat": tableBytes(t, sampleFullcodes(t)),
	}
	for name, data := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0644))
	}
	return files
}

func TestFolders_RoundTrip(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "dat")
	csvDir := filepath.Join(root, "csv")
	out := filepath.Join(root, "dat2")
	require.NoError(t, os.Mkdir(src, 0750))
	files := writeBinaryFolder(t, src)

	ctx := context.Background()
	ws, err := DecodeFolder(ctx, src, csvDir, Options{HeaderSize: len(testHeader), Workers: 2})
	require.NoError(t, err)
	assert.Empty(t, ws)

	assert.DirExists(t, filepath.Join(csvDir, "wmwb86zg.dat"))
	assert.FileExists(t, filepath.Join(csvDir, "wmwb86zg.dat", "a+01.bmp"))
	assert.FileExists(t, filepath.Join(csvDir, "wmwb86jm.dat.txt"))
	assert.FileExists(t, filepath.Join(csvDir, "wmwb86qm.dat.txt"))
	header, err := os.ReadFile(filepath.Join(csvDir, "wmwb86qm.dat.header"))
	require.NoError(t, err)
	assert.Equal(t, testHeader, header)

	ws, err = EncodeFolder(ctx, csvDir, out, Options{})
	require.NoError(t, err)
	require.Len(t, ws, 1)
	assert.Equal(t, WarnCharDecomposition, ws[0].Kind)

	for name, want := range files {
		got, err := os.ReadFile(filepath.Join(out, name))
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
}

func TestEncodeFolder_FallbackHeader(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "csv")
	require.NoError(t, os.Mkdir(src, 0750))
	require.NoError(t, os.WriteFile(filepath.Join(src, "x86jm.dat.txt"), []byte("a,工\r\n"), 0644))

	out := filepath.Join(root, "out")
	_, err := EncodeFolder(context.Background(), src, out, Options{Header: []byte("HDR!")})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(out, "x86jm.dat"))
	require.NoError(t, err)
	assert.Equal(t, []byte("HDR!"), data[:4])
	assert.Len(t, data, 4+codec.ShortcutRecordSize)
}

func TestDecodeFolder_RecreatesDestination(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "dat")
	dst := filepath.Join(root, "csv")
	require.NoError(t, os.Mkdir(src, 0750))
	require.NoError(t, os.Mkdir(dst, 0750))
	stale := filepath.Join(dst, "stale.txt")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0644))

	_, err := DecodeFolder(context.Background(), src, dst, Options{})
	require.NoError(t, err)
	assert.NoFileExists(t, stale)
	assert.DirExists(t, dst)
}

func TestDecodeFolder_Failure(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "dat")
	require.NoError(t, os.Mkdir(src, 0750))
	writeBinaryFolder(t, src)
	// cut the fullcode table inside its last record
	path := filepath.Join(src, "wmwb86qm.dat")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data[:len(data)-10], 0644))

	_, err = DecodeFolder(context.Background(), src, filepath.Join(root, "csv"), Options{HeaderSize: len(testHeader)})
	assert.ErrorIs(t, err, codec.ErrTruncated)
}

func TestDecodeFolder_Cancelled(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "dat")
	require.NoError(t, os.Mkdir(src, 0750))
	writeBinaryFolder(t, src)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := DecodeFolder(ctx, src, filepath.Join(root, "csv"), Options{HeaderSize: len(testHeader)})
	assert.ErrorIs(t, err, context.Canceled)
}
