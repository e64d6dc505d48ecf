package protocol

import (
	"encoding/json"
	"log/slog"
)

// DeltaMessage wraps fine-grained streaming updates.
type DeltaMessage struct {
	ParentTaskID *string         `json:"parent_task_id"`
	MsgKind      MessageKind     `json:"kind"`
	SessionID    string          `json:"session_id,omitempty"`
	Event        json.RawMessage `json:"event"`
}

// Kind returns the message kind.
func (m DeltaMessage) Kind() MessageKind { return MessageKindDelta }

// DeltaEventType discriminates between delta sub-event kinds.
type DeltaEventType string

const (
	DeltaEventTypeContentBlockStart DeltaEventType = "content_block_start"
	DeltaEventTypeContentBlockDelta DeltaEventType = "content_block_delta"
	DeltaEventTypeContentBlockStop  DeltaEventType = "content_block_stop"
)

// DeltaEventData is the interface for delta sub-event discrimination.
type DeltaEventData interface {
	EventType() DeltaEventType
}

// ContentBlockStartEvent starts a content block.
type ContentBlockStartEvent struct {
	Type         DeltaEventType  `json:"type"`
	ContentBlock json.RawMessage `json:"content_block"`
	Index        int             `json:"index"`
}

// EventType returns the delta sub-event type.
func (e ContentBlockStartEvent) EventType() DeltaEventType { return DeltaEventTypeContentBlockStart }

// ParsedBlock parses the content_block field.
func (e ContentBlockStartEvent) ParsedBlock() (ContentBlock, error) {
	return UnmarshalContentBlock(e.ContentBlock)
}

// ContentBlockDeltaEvent contains incremental content.
type ContentBlockDeltaEvent struct {
	Type  DeltaEventType  `json:"type"`
	Delta json.RawMessage `json:"delta"`
	Index int             `json:"index"`
}

// EventType returns the delta sub-event type.
func (e ContentBlockDeltaEvent) EventType() DeltaEventType { return DeltaEventTypeContentBlockDelta }

// ParsedDelta parses the delta field.
func (e ContentBlockDeltaEvent) ParsedDelta() (DeltaData, error) {
	return ParseContentBlockDelta(e.Delta)
}

// ContentBlockStopEvent marks block completion.
type ContentBlockStopEvent struct {
	Type  DeltaEventType `json:"type"`
	Index int            `json:"index"`
}

// EventType returns the delta sub-event type.
func (e ContentBlockStopEvent) EventType() DeltaEventType { return DeltaEventTypeContentBlockStop }

// DeltaData is the interface for content block delta discrimination.
type DeltaData interface {
	DeltaType() string
}

// TextDelta is a delta containing text.
type TextDelta struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// DeltaType returns the delta type.
func (d TextDelta) DeltaType() string { return d.Type }

// ThinkingDelta is a delta containing thinking.
type ThinkingDelta struct {
	Type     string `json:"type"`
	Thinking string `json:"thinking"`
}

// DeltaType returns the delta type.
func (d ThinkingDelta) DeltaType() string { return d.Type }

// InputJSONDelta is a delta containing partial JSON for tool input.
type InputJSONDelta struct {
	Type        string `json:"type"`
	PartialJSON string `json:"partial_json"`
}

// DeltaType returns the delta type.
func (d InputJSONDelta) DeltaType() string { return d.Type }

// ParseContentBlockDelta parses the inner delta of a ContentBlockDeltaEvent.
func ParseContentBlockDelta(data json.RawMessage) (DeltaData, error) {
	var base struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &base); err != nil {
		return nil, err
	}

	switch base.Type {
	case "text_delta":
		var d TextDelta
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, err
		}
		return d, nil
	case "thinking_delta":
		var d ThinkingDelta
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, err
		}
		return d, nil
	case "input_json_delta":
		var d InputJSONDelta
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, err
		}
		return d, nil
	default:
		slog.Warn("skipping unknown content block delta type", "type", base.Type)
		return nil, nil
	}
}

// ParseDeltaEvent parses the inner event of a DeltaMessage.
func ParseDeltaEvent(data json.RawMessage) (DeltaEventData, error) {
	var base struct {
		Type DeltaEventType `json:"type"`
	}
	if err := json.Unmarshal(data, &base); err != nil {
		return nil, err
	}

	switch base.Type {
	case DeltaEventTypeContentBlockStart:
		var e ContentBlockStartEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, err
		}
		return e, nil
	case DeltaEventTypeContentBlockDelta:
		var e ContentBlockDeltaEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, err
		}
		return e, nil
	case DeltaEventTypeContentBlockStop:
		var e ContentBlockStopEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, err
		}
		return e, nil
	default:
		slog.Warn("skipping unknown delta event type", "type", base.Type)
		return nil, nil
	}
}
