package http

import (
	"errors"
	"io"
	"strings"
	"testing"
)

// chunkReader delivers at most chunk bytes per Read, simulating a client
// whose message arrives in many small TCP segments.
type chunkReader struct {
	data  []byte
	chunk int
	off   int
}

func (cr *chunkReader) Read(p []byte) (int, error) {
	if cr.off >= len(cr.data) {
		return 0, io.EOF
	}
	n := cr.chunk
	if n > len(p) {
		n = len(p)
	}
	if cr.off+n > len(cr.data) {
		n = len(cr.data) - cr.off
	}
	copy(p, cr.data[cr.off:cr.off+n])
	cr.off += n
	return n, nil
}

func TestReadLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"crlf", "GET / HTTP/1.1\r\nHost: x\r\n", []string{"GET / HTTP/1.1", "Host: x"}},
		{"bare lf", "line one\nline two\n", []string{"line one", "line two"}},
		{"empty line", "\r\nafter\r\n", []string{"", "after"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sr := NewStreamReader(strings.NewReader(tt.input), 0)
			for _, want := range tt.want {
				got, err := sr.ReadLine()
				if err != nil {
					t.Fatalf("ReadLine: %v", err)
				}
				if got != want {
					t.Errorf("ReadLine = %q, want %q", got, want)
				}
			}
		})
	}
}

func TestReadLineSegmented(t *testing.T) {
	cr := &chunkReader{data: []byte("GET /hello HTTP/1.1\r\nHost: example\r\n"), chunk: 1}
	sr := NewStreamReader(cr, 0)

	line, err := sr.ReadLine()
	if err != nil {
		t.Fatalf("ReadLine: %v", err)
	}
	if line != "GET /hello HTTP/1.1" {
		t.Errorf("ReadLine = %q", line)
	}

	line, err = sr.ReadLine()
	if err != nil {
		t.Fatalf("ReadLine: %v", err)
	}
	if line != "Host: example" {
		t.Errorf("ReadLine = %q", line)
	}
}

func TestReadLineCleanEOF(t *testing.T) {
	sr := NewStreamReader(strings.NewReader(""), 0)
	if _, err := sr.ReadLine(); err != io.EOF {
		t.Errorf("ReadLine on empty stream = %v, want io.EOF", err)
	}
}

func TestReadLineTruncated(t *testing.T) {
	sr := NewStreamReader(strings.NewReader("GET / HT"), 0)
	if _, err := sr.ReadLine(); err != io.ErrUnexpectedEOF {
		t.Errorf("ReadLine on truncated line = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestReadLineTooLong(t *testing.T) {
	sr := NewStreamReader(strings.NewReader(strings.Repeat("a", 100)+"\r\n"), 32)
	if _, err := sr.ReadLine(); !errors.Is(err, ErrLineTooLong) {
		t.Errorf("ReadLine = %v, want ErrLineTooLong", err)
	}
}

func TestReadExactSegmented(t *testing.T) {
	cr := &chunkReader{data: []byte("abcdefghij"), chunk: 3}
	sr := NewStreamReader(cr, 0)

	got, err := sr.ReadExact(10)
	if err != nil {
		t.Fatalf("ReadExact: %v", err)
	}
	if string(got) != "abcdefghij" {
		t.Errorf("ReadExact = %q", got)
	}
}

func TestReadExactIncomplete(t *testing.T) {
	sr := NewStreamReader(strings.NewReader("abc"), 0)
	if _, err := sr.ReadExact(10); !errors.Is(err, ErrIncompleteBody) {
		t.Errorf("ReadExact = %v, want ErrIncompleteBody", err)
	}
}

func TestReadExactZero(t *testing.T) {
	sr := NewStreamReader(strings.NewReader(""), 0)
	got, err := sr.ReadExact(0)
	if err != nil {
		t.Fatalf("ReadExact(0): %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ReadExact(0) = %q", got)
	}
}
