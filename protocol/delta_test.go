package protocol

import (
	"encoding/json"
	"testing"
)

func TestParseContentBlockDelta_TextDelta(t *testing.T) {
	raw := json.RawMessage(`{"type":"text_delta","text":"hello"}`)
	d, err := ParseContentBlockDelta(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	td, ok := d.(TextDelta)
	if !ok {
		t.Fatalf("expected TextDelta, got %T", d)
	}
	if td.Text != "hello" {
		t.Errorf("expected text 'hello', got %q", td.Text)
	}
	if td.DeltaType() != "text_delta" {
		t.Errorf("expected DeltaType 'text_delta', got %q", td.DeltaType())
	}
}

func TestParseContentBlockDelta_ThinkingDelta(t *testing.T) {
	raw := json.RawMessage(`{"type":"thinking_delta","thinking":"hmm"}`)
	d, err := ParseContentBlockDelta(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	td, ok := d.(ThinkingDelta)
	if !ok {
		t.Fatalf("expected ThinkingDelta, got %T", d)
	}
	if td.Thinking != "hmm" {
		t.Errorf("expected thinking 'hmm', got %q", td.Thinking)
	}
}

func TestParseContentBlockDelta_Unknown(t *testing.T) {
	raw := json.RawMessage(`{"type":"future_delta","data":"x"}`)
	d, err := ParseContentBlockDelta(raw)
	if err != nil {
		t.Fatalf("unexpected error for unknown delta type: %v", err)
	}
	if d != nil {
		t.Errorf("expected nil for unknown delta type, got %T", d)
	}
}

func TestParseContentBlockDelta_InvalidJSON(t *testing.T) {
	_, err := ParseContentBlockDelta(json.RawMessage(`not json`))
	if err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestParseDeltaEvent_ContentBlockStart(t *testing.T) {
	raw := json.RawMessage(`{"type":"content_block_start","index":0,"content_block":{"type":"tool_use","id":"toolu_1","name":"Read","input":{}}}`)
	e, err := ParseDeltaEvent(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	start, ok := e.(ContentBlockStartEvent)
	if !ok {
		t.Fatalf("expected ContentBlockStartEvent, got %T", e)
	}

	block, err := start.ParsedBlock()
	if err != nil {
		t.Fatalf("unexpected error parsing block: %v", err)
	}
	tb, ok := block.(ToolUseBlock)
	if !ok {
		t.Fatalf("expected ToolUseBlock, got %T", block)
	}
	if tb.ID != "toolu_1" || tb.Name != "Read" {
		t.Errorf("unexpected tool block: %+v", tb)
	}
}

func TestParseDeltaEvent_Unknown(t *testing.T) {
	raw := json.RawMessage(`{"type":"message_ping"}`)
	e, err := ParseDeltaEvent(raw)
	if err != nil {
		t.Fatalf("unexpected error for unknown event type: %v", err)
	}
	if e != nil {
		t.Errorf("expected nil for unknown event type, got %T", e)
	}
}
