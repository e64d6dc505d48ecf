package jsonl

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestReader(t *testing.T) {
	r := NewReader(strings.NewReader("{\"a\":1}\n\n  \n{\"b\":2}\n"))

	line, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if string(line) != `{"a":1}` {
		t.Errorf("got %q", line)
	}

	line, err = r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if string(line) != `{"b":2}` {
		t.Errorf("got %q", line)
	}

	if _, err = r.Next(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestReader_NoTrailingNewline(t *testing.T) {
	r := NewReader(strings.NewReader(`{"a":1}`))
	line, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if string(line) != `{"a":1}` {
		t.Errorf("got %q", line)
	}
}

func TestTail_ResumesAfterGrowth(t *testing.T) {
	var buf bytes.Buffer
	tail := NewTail(&buf)

	buf.WriteString(`{"a":1}` + "\n" + `{"b":`)

	line, err := tail.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if string(line) != `{"a":1}` {
		t.Errorf("got %q", line)
	}

	// The partial line is not yielded until its newline arrives.
	if _, err = tail.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF for incomplete line, got %v", err)
	}

	buf.WriteString("2}\n")
	line, err = tail.Next()
	if err != nil {
		t.Fatalf("Next after growth: %v", err)
	}
	if string(line) != `{"b":2}` {
		t.Errorf("got %q", line)
	}
}

func TestTail_SkipsBlankLines(t *testing.T) {
	var buf bytes.Buffer
	tail := NewTail(&buf)
	buf.WriteString("\n  \n{\"a\":1}\n")

	line, err := tail.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if string(line) != `{"a":1}` {
		t.Errorf("got %q", line)
	}
}
