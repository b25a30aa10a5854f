package http

import (
	"bufio"
	"io"

	"github.com/cockroachdb/errors"
)

var (
	// ErrLineTooLong is returned when a request or header line exceeds the
	// configured limit.
	ErrLineTooLong = errors.New("header line too long")

	// ErrIncompleteBody is returned when the connection closes before the
	// announced body length has been read.
	ErrIncompleteBody = errors.New("connection closed before full body was read")
)

// StreamReader buffers raw socket bytes and exposes the two read shapes the
// request parser needs: CRLF-terminated lines and exact byte counts. A client
// may deliver headers and body in any number of TCP segments; the reader never
// assumes one socket read equals one HTTP message.
type StreamReader struct {
	br      *bufio.Reader
	maxLine int
}

// DefaultMaxLineBytes bounds a single request or header line.
const DefaultMaxLineBytes = 8192

// NewStreamReader wraps r. maxLine bounds a single line; zero or negative
// selects DefaultMaxLineBytes.
func NewStreamReader(r io.Reader, maxLine int) *StreamReader {
	if maxLine <= 0 {
		maxLine = DefaultMaxLineBytes
	}
	bufSize := maxLine
	if bufSize > DefaultMaxLineBytes {
		bufSize = DefaultMaxLineBytes
	}
	return &StreamReader{
		br:      bufio.NewReaderSize(r, bufSize),
		maxLine: maxLine,
	}
}

// ReadLine returns the next line stripped of its CRLF (or bare LF) terminator.
// io.EOF is returned only when the stream ends cleanly before any byte of the
// line; a line cut off mid-way yields io.ErrUnexpectedEOF.
func (sr *StreamReader) ReadLine() (string, error) {
	var line []byte
	for {
		frag, err := sr.br.ReadSlice('\n')
		line = append(line, frag...)
		if err == bufio.ErrBufferFull {
			if len(line) > sr.maxLine {
				return "", ErrLineTooLong
			}
			continue
		}
		if err != nil {
			if err == io.EOF {
				if len(line) == 0 {
					return "", io.EOF
				}
				return "", io.ErrUnexpectedEOF
			}
			return "", err
		}
		break
	}
	if len(line) > sr.maxLine {
		return "", ErrLineTooLong
	}

	// Strip the terminator.
	line = line[:len(line)-1]
	if len(line) > 0 && line[len(line)-1] == '\r' {
		line = line[:len(line)-1]
	}
	return string(line), nil
}

// ReadExact returns exactly n bytes, reading as many times as the transport
// requires. A connection that closes early fails with ErrIncompleteBody.
func (sr *StreamReader) ReadExact(n int) ([]byte, error) {
	buf := make([]byte, n)
	got, err := io.ReadFull(sr.br, buf)
	if err != nil {
		return nil, errors.Wrapf(ErrIncompleteBody, "read %d of %d bytes", got, n)
	}
	return buf, nil
}

// Buffered reports how many parsed-ahead bytes are sitting in the reader.
func (sr *StreamReader) Buffered() int {
	return sr.br.Buffered()
}
