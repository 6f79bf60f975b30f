package importer

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// RowReader splits a byte stream into rows, one per physical line. Lines may
// end in "\n", "\r\n" or a bare "\r". It works like bufio.Scanner: call Scan
// until it returns false, then check Err.
type RowReader struct {
	r    *bufio.Reader
	sep  string
	ws   Whitespace
	good bool
	err  error
	line []byte
	row  []string
}

// NewRowReader returns a reader that splits lines on sep after applying ws.
func NewRowReader(r io.Reader, sep string, ws Whitespace) *RowReader {
	return &RowReader{r: bufio.NewReader(r), sep: sep, ws: ws, good: true}
}

// SkipBOM drops a UTF-8 byte order mark if the stream starts with one. It
// must be called before the first Scan.
func (rr *RowReader) SkipBOM() {
	b, _ := rr.r.Peek(len(utf8BOM))
	if bytes.Equal(b, utf8BOM) {
		_, _ = rr.r.Discard(len(utf8BOM))
	}
}

// Scan reads the next row. A final line without terminator is still
// returned. Once a read fails the reader is exhausted: the bytes gathered so
// far form the last row, and nothing more is read from the stream.
func (rr *RowReader) Scan() bool {
	rr.row = nil
	if !rr.good {
		return false
	}
	rr.line = rr.line[:0]
	for {
		c, err := rr.r.ReadByte()
		if err != nil {
			rr.fail(err)
			if len(rr.line) == 0 {
				return false
			}
			break
		}
		if c == '\n' {
			break
		}
		if c == '\r' {
			next, err := rr.r.ReadByte()
			if err != nil {
				rr.fail(err)
			} else if next != '\n' {
				_ = rr.r.UnreadByte()
			}
			break
		}
		rr.line = append(rr.line, c)
	}
	rr.row = rr.split(string(rr.line))
	return true
}

func (rr *RowReader) fail(err error) {
	rr.good = false
	if !errors.Is(err, io.EOF) {
		rr.err = err
	}
}

func (rr *RowReader) split(line string) []string {
	switch rr.ws {
	case WhitespaceSimplify:
		line = strings.Join(strings.Fields(line), " ")
	case WhitespaceTrim:
		line = strings.TrimSpace(line)
	}
	return strings.Split(line, rr.sep)
}

// Row returns the fields of the last row read by Scan.
func (rr *RowReader) Row() []string { return rr.row }

// Good reports whether the underlying stream can still be read.
func (rr *RowReader) Good() bool { return rr.good }

// Err returns the first non-EOF read error.
func (rr *RowReader) Err() error { return rr.err }
