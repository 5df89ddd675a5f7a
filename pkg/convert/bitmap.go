package convert

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ssargent/wubitab/pkg/codec"
)

// Bitmap geometry of a radical glyph: 32x16 pixels at one bit per pixel,
// rows padded to four bytes, which is exactly the 64 data bytes of a record.
const (
	BitmapWidth  = 32
	BitmapHeight = 16

	bitmapFileHeaderSize = 14
	bitmapInfoHeaderSize = 40
	bitmapPaletteSize    = 2 * 4
	// BitmapHeaderSize is the size of every byte in front of the pixel data.
	BitmapHeaderSize = bitmapFileHeaderSize + bitmapInfoHeaderSize + bitmapPaletteSize
)

// BitmapHeader is the fixed header written in front of the 64 data bytes of
// each radical glyph.
var BitmapHeader = bitmapHeader()

func bitmapHeader() []byte {
	h := make([]byte, BitmapHeaderSize)
	le := binary.LittleEndian

	h[0], h[1] = 'B', 'M'
	le.PutUint32(h[2:], uint32(BitmapHeaderSize+codec.RadicalDataSize))
	le.PutUint32(h[10:], BitmapHeaderSize)

	info := h[bitmapFileHeaderSize:]
	le.PutUint32(info[0:], bitmapInfoHeaderSize)
	le.PutUint32(info[4:], BitmapWidth)
	le.PutUint32(info[8:], BitmapHeight)
	le.PutUint16(info[12:], 1) // planes
	le.PutUint16(info[14:], 1) // bits per pixel
	le.PutUint32(info[20:], codec.RadicalDataSize)
	le.PutUint32(info[24:], 2835)
	le.PutUint32(info[28:], 2835)
	le.PutUint32(info[32:], 2)
	le.PutUint32(info[36:], 2)

	palette := info[bitmapInfoHeaderSize:]
	copy(palette[4:], []byte{0xff, 0xff, 0xff, 0})
	return h
}

// radicalBitmapPattern matches the bitmap files written by DecodeRadicalFile.
const radicalBitmapPattern = "[a-z]+[0-9][0-9].bmp"

// DecodeRadicalFile writes every record of the radical table at path into
// folder as `<code>.bmp`.
func DecodeRadicalFile(path, folder string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open radical table: %w", err)
	}
	defer f.Close()

	table, err := codec.ReadRadicalTable(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	for _, rec := range table.Records() {
		name := filepath.Join(folder, rec.Code+".bmp")
		data := make([]byte, 0, BitmapHeaderSize+codec.RadicalDataSize)
		data = append(data, BitmapHeader...)
		data = append(data, rec.Data[:]...)
		if err := os.WriteFile(name, data, 0644); err != nil {
			return fmt.Errorf("failed to write bitmap: %w", err)
		}
	}
	tracer().Debugf("%s: wrote %d bitmaps", path, table.Len())
	return nil
}

// EncodeRadicalFolder builds a radical table from the bitmaps in folder.
// Files with a foreign header or the wrong size are skipped with a warning.
func EncodeRadicalFolder(folder string) (*codec.RadicalTable, []Warning, error) {
	names, err := filepath.Glob(filepath.Join(folder, radicalBitmapPattern))
	if err != nil {
		return nil, nil, err
	}
	table := codec.NewRadicalTable()
	var ws []Warning
	for _, name := range names {
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read bitmap: %w", err)
		}
		if !bytes.HasPrefix(data, BitmapHeader) || len(data) != BitmapHeaderSize+codec.RadicalDataSize {
			ws = warn(ws, name, WarnBrokenBitmap, filepath.Base(name))
			continue
		}
		base := filepath.Base(name)
		rec, err := codec.NewRadicalRecord(base[:len(base)-len(".bmp")], data[BitmapHeaderSize:])
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", name, err)
		}
		table.Add(rec)
	}
	return table, ws, nil
}
