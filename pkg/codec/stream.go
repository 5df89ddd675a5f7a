package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// recordReader provides sequential access to the records of a table stream
// and keeps track of the stream offset for error reporting.
type recordReader struct {
	r      io.Reader
	offset int64
}

func newRecordReader(r io.Reader) *recordReader {
	return &recordReader{r: r}
}

// next fills buf with the next fixed-size record. It returns io.EOF when the
// stream ends exactly on a record boundary and ErrTruncated when it ends
// inside the record.
func (rr *recordReader) next(buf []byte) error {
	n, err := io.ReadFull(rr.r, buf)
	rr.offset += int64(n)
	if err == io.EOF {
		return io.EOF
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: read %d of %d bytes at offset %d", ErrTruncated, n, len(buf), rr.offset-int64(n))
	}
	return err
}

// full is like next but treats a clean end of stream as truncation too.
func (rr *recordReader) full(buf []byte) error {
	start := rr.offset
	err := rr.next(buf)
	if err == io.EOF {
		return fmt.Errorf("%w: need %d bytes at offset %d", ErrTruncated, len(buf), start)
	}
	return err
}

func (rr *recordReader) readByte() (byte, error) {
	var b [1]byte
	if err := rr.full(b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (rr *recordReader) readUint32() (uint32, error) {
	var b [4]byte
	if err := rr.full(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// readHeader reads the fixed header blob that precedes the records.
func (rr *recordReader) readHeader(size int) ([]byte, error) {
	header := make([]byte, size)
	if size == 0 {
		return header, nil
	}
	if err := rr.full(header); err != nil {
		return nil, fmt.Errorf("file header: %w", err)
	}
	return header, nil
}

// countingWriter tracks how many bytes have been written so WriteTo can
// report it.
type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
