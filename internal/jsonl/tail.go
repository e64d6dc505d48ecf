package jsonl

import (
	"bytes"
	"io"
)

// Tail incrementally reads complete lines from a reader that may grow,
// such as a transcript file still being written. Unlike Reader, hitting
// the end of input is not final: a later Next call picks up appended data.
type Tail struct {
	src io.Reader
	buf []byte
}

// NewTail wraps src in an incremental line reader.
func NewTail(src io.Reader) *Tail {
	return &Tail{src: src}
}

// Next returns the next complete non-blank line. io.EOF means no complete
// line is available yet; call again after the source grows.
func (t *Tail) Next() ([]byte, error) {
	for {
		if i := bytes.IndexByte(t.buf, '\n'); i >= 0 {
			line := bytes.TrimSpace(t.buf[:i])
			t.buf = t.buf[i+1:]
			if len(line) == 0 {
				continue
			}
			out := make([]byte, len(line))
			copy(out, line)
			return out, nil
		}

		chunk := make([]byte, 64*1024)
		n, err := t.src.Read(chunk)
		if n > 0 {
			t.buf = append(t.buf, chunk[:n]...)
			continue
		}
		if err == nil {
			err = io.EOF
		}
		return nil, err
	}
}
