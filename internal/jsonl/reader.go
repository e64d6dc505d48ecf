// Package jsonl reads newline-delimited JSON transcript files.
package jsonl

import (
	"bufio"
	"bytes"
	"io"
)

// maxLineSize bounds a single transcript line. Tool results can embed
// whole files, so the default bufio limit is far too small.
const maxLineSize = 16 * 1024 * 1024

// Reader yields one non-blank line at a time from a JSONL stream.
type Reader struct {
	scanner *bufio.Scanner
}

// NewReader wraps r in a line reader.
func NewReader(r io.Reader) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), maxLineSize)
	return &Reader{scanner: s}
}

// Next returns the next non-blank line, or io.EOF when the stream ends.
// The returned slice is a copy and remains valid across calls.
func (r *Reader) Next() ([]byte, error) {
	for r.scanner.Scan() {
		line := bytes.TrimSpace(r.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		out := make([]byte, len(line))
		copy(out, line)
		return out, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}
