package convert

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ssargent/wubitab/pkg/codec"
)

// File name patterns of the three table kinds.
const (
	RadicalPattern  = "*zg.dat"
	ShortcutPattern = "*jm.dat"
	FullcodePattern = "*qm.dat"

	csvSuffix    = ".txt"
	headerSuffix = ".header"
)

// Options control folder conversion.
type Options struct {
	// HeaderSize is the size of the blob in front of shortcut and fullcode
	// records when decoding.
	HeaderSize int
	// Header is written in front of encoded shortcut and fullcode tables
	// that have no sidecar.
	Header []byte
	// Workers bounds the number of files converted at once. Zero means one
	// goroutine per file.
	Workers int
}

// SidecarPath returns the header sidecar of a table file name.
func SidecarPath(tablePath string) string {
	return tablePath + headerSuffix
}

func readSidecar(tablePath string, fallback []byte) ([]byte, error) {
	header, err := os.ReadFile(SidecarPath(tablePath))
	if errors.Is(err, fs.ErrNotExist) {
		return fallback, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header sidecar: %w", err)
	}
	return header, nil
}

// writeFile creates path and hands a buffered writer to write. The file is
// closed on every path and a failed close is reported.
func writeFile(path string, write func(w *bufio.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return bw.Flush()
}

// DecodeShortcutFile converts the shortcut table at input into a CSV at
// output and stores its header in the sidecar of output's table name.
func DecodeShortcutFile(input, output string, headerSize int) error {
	f, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("failed to open shortcut table: %w", err)
	}
	defer f.Close()

	table, err := codec.ReadShortcutTable(bufio.NewReader(f), headerSize)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}
	if err := os.WriteFile(SidecarPath(strings.TrimSuffix(output, csvSuffix)), table.Header, 0644); err != nil {
		return fmt.Errorf("failed to write header sidecar: %w", err)
	}
	return writeFile(output, func(w *bufio.Writer) error {
		return WriteShortcutCSV(w, table)
	})
}

// EncodeShortcutFile parses a shortcut CSV. The header comes from the
// sidecar next to input, or fallback if there is none.
func EncodeShortcutFile(input string, fallback []byte) (*codec.ShortcutTable, error) {
	header, err := readSidecar(strings.TrimSuffix(input, csvSuffix), fallback)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(input)
	if err != nil {
		return nil, fmt.Errorf("failed to open shortcut csv: %w", err)
	}
	defer f.Close()

	table, err := ReadShortcutCSV(bufio.NewReader(f), header)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", input, err)
	}
	return table, nil
}

// DecodeFullcodeFile converts the fullcode table at input into a CSV at
// output and stores its header in the sidecar of output's table name.
func DecodeFullcodeFile(input, output string, headerSize int) error {
	f, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("failed to open fullcode table: %w", err)
	}
	defer f.Close()

	table, err := codec.ReadFullcodeTable(bufio.NewReader(f), headerSize)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}
	if err := os.WriteFile(SidecarPath(strings.TrimSuffix(output, csvSuffix)), table.Header, 0644); err != nil {
		return fmt.Errorf("failed to write header sidecar: %w", err)
	}
	return writeFile(output, func(w *bufio.Writer) error {
		return WriteFullcodeCSV(w, table)
	})
}

// EncodeFullcodeFile parses a fullcode CSV. The header comes from the
// sidecar next to input, or fallback if there is none.
func EncodeFullcodeFile(input string, fallback []byte) (*codec.FullcodeTable, []Warning, error) {
	header, err := readSidecar(strings.TrimSuffix(input, csvSuffix), fallback)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(input)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open fullcode csv: %w", err)
	}
	defer f.Close()

	table, ws, err := ReadFullcodeCSV(bufio.NewReader(f), header, filepath.Base(input))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", input, err)
	}
	return table, ws, nil
}

// job converts a single file and returns its warnings.
type job func() ([]Warning, error)

// run executes jobs on an errgroup. The first failure cancels the jobs that
// have not started yet.
func run(ctx context.Context, workers int, jobs []job) ([]Warning, error) {
	group, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		group.SetLimit(workers)
	}
	var collected warnings
	for _, j := range jobs {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ws, err := j()
			collected.add(ws)
			return err
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return collected.sorted(), nil
}

// recreate removes dir and creates it empty.
func recreate(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to clear %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return nil
}

// DecodeFolder converts every binary table in src into its editable form in
// dst, which is recreated. Radical tables become bitmap folders, shortcut and
// fullcode tables become CSV files with header sidecars.
func DecodeFolder(ctx context.Context, src, dst string, opts Options) ([]Warning, error) {
	radicals, err := filepath.Glob(filepath.Join(src, RadicalPattern))
	if err != nil {
		return nil, err
	}
	shortcuts, err := filepath.Glob(filepath.Join(src, ShortcutPattern))
	if err != nil {
		return nil, err
	}
	fullcodes, err := filepath.Glob(filepath.Join(src, FullcodePattern))
	if err != nil {
		return nil, err
	}
	if err := recreate(dst); err != nil {
		return nil, err
	}

	var jobs []job
	for _, path := range radicals {
		jobs = append(jobs, func() ([]Warning, error) {
			target := filepath.Join(dst, filepath.Base(path))
			if err := os.Mkdir(target, 0750); err != nil {
				return nil, err
			}
			return nil, DecodeRadicalFile(path, target)
		})
	}
	for _, path := range shortcuts {
		jobs = append(jobs, func() ([]Warning, error) {
			return nil, DecodeShortcutFile(path, filepath.Join(dst, filepath.Base(path)+csvSuffix), opts.HeaderSize)
		})
	}
	for _, path := range fullcodes {
		jobs = append(jobs, func() ([]Warning, error) {
			return nil, DecodeFullcodeFile(path, filepath.Join(dst, filepath.Base(path)+csvSuffix), opts.HeaderSize)
		})
	}
	tracer().Infof("decoding %d tables from %s", len(jobs), src)
	return run(ctx, opts.Workers, jobs)
}

// EncodeFolder is the inverse of DecodeFolder: it rebuilds every binary table
// from the editable files in src into dst, which is recreated.
func EncodeFolder(ctx context.Context, src, dst string, opts Options) ([]Warning, error) {
	radicals, err := filepath.Glob(filepath.Join(src, RadicalPattern))
	if err != nil {
		return nil, err
	}
	shortcuts, err := filepath.Glob(filepath.Join(src, ShortcutPattern+csvSuffix))
	if err != nil {
		return nil, err
	}
	fullcodes, err := filepath.Glob(filepath.Join(src, FullcodePattern+csvSuffix))
	if err != nil {
		return nil, err
	}
	if err := recreate(dst); err != nil {
		return nil, err
	}

	var jobs []job
	for _, folder := range radicals {
		if info, err := os.Stat(folder); err != nil || !info.IsDir() {
			continue
		}
		jobs = append(jobs, func() ([]Warning, error) {
			table, ws, err := EncodeRadicalFolder(folder)
			if err != nil {
				return nil, err
			}
			return ws, writeFile(filepath.Join(dst, filepath.Base(folder)), func(w *bufio.Writer) error {
				_, err := table.WriteTo(w)
				return err
			})
		})
	}
	for _, input := range shortcuts {
		jobs = append(jobs, func() ([]Warning, error) {
			table, err := EncodeShortcutFile(input, opts.Header)
			if err != nil {
				return nil, err
			}
			output := filepath.Join(dst, strings.TrimSuffix(filepath.Base(input), csvSuffix))
			return nil, writeFile(output, func(w *bufio.Writer) error {
				_, err := table.WriteTo(w)
				return err
			})
		})
	}
	for _, input := range fullcodes {
		jobs = append(jobs, func() ([]Warning, error) {
			table, ws, err := EncodeFullcodeFile(input, opts.Header)
			if err != nil {
				return nil, err
			}
			output := filepath.Join(dst, strings.TrimSuffix(filepath.Base(input), csvSuffix))
			return ws, writeFile(output, func(w *bufio.Writer) error {
				_, err := table.WriteTo(w)
				return err
			})
		})
	}
	tracer().Infof("encoding %d tables from %s", len(jobs), src)
	return run(ctx, opts.Workers, jobs)
}
