package codebook

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ssargent/wubitab/pkg/codec"
)

const crlf = "\r\n"

// utf16Writer writes UTF-16 little endian with a byte order mark.
func utf16Writer(w io.Writer) *transform.Writer {
	return transform.NewWriter(w, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder())
}

// writeLines writes each line followed by CRLF in UTF-16.
func writeLines(w io.Writer, lines func(emit func(string) error) error) error {
	tw := utf16Writer(w)
	err := lines(func(line string) error {
		_, err := io.WriteString(tw, line+crlf)
		return err
	})
	if err != nil {
		return err
	}
	return tw.Close()
}

var gbk = simplifiedchinese.GBK

// inGB2312 reports whether every character of s exists in GB 2312. GBK is a
// superset; its GB 2312 part is the EUC area A1A1-F7FE minus the
// unassigned rows AA-AF.
func inGB2312(s string) bool {
	b, err := gbk.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return false
	}
	for i := 0; i < len(b); {
		if b[i] < 0x80 {
			i++
			continue
		}
		if i+1 >= len(b) {
			return false
		}
		lead, trail := b[i], b[i+1]
		if lead < 0xa1 || lead > 0xf7 || (lead >= 0xaa && lead <= 0xaf) || trail < 0xa1 || trail > 0xfe {
			return false
		}
		i += 2
	}
	return true
}

// WriteJidian writes "code v1 v2 ..." lines. Values outside GB 2312 are
// marked with a leading '~'.
func WriteJidian(w io.Writer, b *Codebook) error {
	return writeLines(w, func(emit func(string) error) error {
		for _, e := range b.Entries() {
			var sb strings.Builder
			sb.WriteString(e.Code)
			for _, v := range e.Values {
				sb.WriteByte(' ')
				if !inGB2312(v) {
					sb.WriteByte('~')
				}
				sb.WriteString(v)
			}
			if err := emit(sb.String()); err != nil {
				return err
			}
		}
		return nil
	})
}

func plainLines(b *Codebook, emit func(string) error) error {
	for _, e := range b.Entries() {
		if err := emit(e.Code + " " + strings.Join(e.Values, " ")); err != nil {
			return err
		}
	}
	return nil
}

// WriteQQ writes "code v1 v2 ..." lines.
func WriteQQ(w io.Writer, b *Codebook) error {
	return writeLines(w, func(emit func(string) error) error {
		return plainLines(b, emit)
	})
}

// WriteXiaoya writes the QQ lines after the command header that replaces the
// whole user table and names it.
func WriteXiaoya(w io.Writer, b *Codebook, name string) error {
	return writeLines(w, func(emit func(string) error) error {
		for _, cmd := range []string{"[cmd:RefCode]", "[cmd:RemoveAll]", "[cmd:Info=" + name + "]"} {
			if err := emit(cmd); err != nil {
				return err
			}
		}
		return plainLines(b, emit)
	})
}

// WriteBaidu writes one "value\tcode" line per pair. Values of a code are
// listed in reverse priority because the importer pushes each to the front.
func WriteBaidu(w io.Writer, b *Codebook) error {
	return writeLines(w, func(emit func(string) error) error {
		for _, e := range b.Entries() {
			for i := len(e.Values) - 1; i >= 0; i-- {
				if err := emit(e.Values[i] + "\t" + e.Code); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// WriteJidianIndex writes the full code of every char, left justified to four
// bytes, ordered by the GB 18030 bytes of the char. The output is ASCII
// without separators.
func WriteJidianIndex(w io.Writer, fullcode *codec.FullcodeTable) error {
	codes := make(map[string]string)
	keys := make(map[string][]byte)
	for _, rec := range fullcode.Records() {
		if rec.Tag != codec.TagChar {
			continue
		}
		value := rec.Value()
		key, err := simplifiedchinese.GB18030.NewEncoder().Bytes([]byte(value))
		if err != nil {
			return fmt.Errorf("index key for %q: %w", value, err)
		}
		codes[value] = rec.Code
		keys[value] = key
	}
	values := make([]string, 0, len(codes))
	for v := range codes {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool {
		return bytes.Compare(keys[values[i]], keys[values[j]]) < 0
	})

	bw := bufio.NewWriter(w)
	for _, v := range values {
		if _, err := fmt.Fprintf(bw, "%-4s", codes[v]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// BaiduPhoneFile builds the BaiduPhone dictionary of the codebook, one record
// per code and value.
func BaiduPhoneFile(b *Codebook) (*codec.PhoneFile, error) {
	f := codec.NewPhoneFile()
	for _, e := range b.Entries() {
		for _, v := range e.Values {
			rec, err := codec.NewPhoneRecord(v, e.Code)
			if err != nil {
				return nil, err
			}
			f.Records = append(f.Records, rec)
		}
	}
	return f, nil
}

// WriteBaiduPhone writes the compiled BaiduPhone dictionary.
func WriteBaiduPhone(w io.Writer, b *Codebook) error {
	f, err := BaiduPhoneFile(b)
	if err != nil {
		return err
	}
	data, err := f.Compile()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Target is one export product: its folder, file extension and writer.
type Target struct {
	Dir   string
	Ext   string
	write func(w io.Writer, name string, b *Codebook, fullcode *codec.FullcodeTable) error
}

// Targets lists every export product.
var Targets = []Target{
	{Dir: "jidian", Ext: ".txt", write: func(w io.Writer, _ string, b *Codebook, _ *codec.FullcodeTable) error {
		return WriteJidian(w, b)
	}},
	{Dir: "qq", Ext: ".txt", write: func(w io.Writer, _ string, b *Codebook, _ *codec.FullcodeTable) error {
		return WriteQQ(w, b)
	}},
	{Dir: "xiaoya", Ext: ".txt", write: func(w io.Writer, name string, b *Codebook, _ *codec.FullcodeTable) error {
		return WriteXiaoya(w, b, name)
	}},
	{Dir: "baidu", Ext: ".txt", write: func(w io.Writer, _ string, b *Codebook, _ *codec.FullcodeTable) error {
		return WriteBaidu(w, b)
	}},
	{Dir: "jidian-index", Ext: ".freeime.dat", write: func(w io.Writer, _ string, _ *Codebook, fullcode *codec.FullcodeTable) error {
		return WriteJidianIndex(w, fullcode)
	}},
	{Dir: "baidu-phone", Ext: ".def", write: func(w io.Writer, _ string, b *Codebook, _ *codec.FullcodeTable) error {
		return WriteBaiduPhone(w, b)
	}},
}

// FileName returns the export file name of a version, e.g. wmwb86.def.
func (t Target) FileName(version string) string {
	return "wmwb" + version + t.Ext
}

// ExportAll writes every target for the codebook into dir/<target dir>/ and
// returns the written paths. name is the human readable scheme name used by
// targets that embed one.
func ExportAll(dir, name string, b *Codebook, fullcode *codec.FullcodeTable) ([]string, error) {
	var paths []string
	for _, t := range Targets {
		folder := filepath.Join(dir, t.Dir)
		if err := os.MkdirAll(folder, 0750); err != nil {
			return paths, fmt.Errorf("failed to create export folder: %w", err)
		}
		path := filepath.Join(folder, t.FileName(b.Version))
		if err := exportFile(path, func(w io.Writer) error {
			return t.write(w, name, b, fullcode)
		}); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	tracer().Infof("exported %s to %d targets", b.Version, len(paths))
	return paths, nil
}

func exportFile(path string, write func(w io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return bw.Flush()
}
