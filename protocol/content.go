package protocol

import (
	"encoding/json"
	"log/slog"
)

// ContentBlockType identifies the kind of content block.
type ContentBlockType string

const (
	ContentBlockTypeText       ContentBlockType = "text"
	ContentBlockTypeThinking   ContentBlockType = "thinking"
	ContentBlockTypeToolUse    ContentBlockType = "tool_use"
	ContentBlockTypeToolResult ContentBlockType = "tool_result"
)

// ContentBlock is the interface for all content block variants.
type ContentBlock interface {
	BlockType() ContentBlockType
}

// TextBlock contains assistant text.
type TextBlock struct {
	Type ContentBlockType `json:"type"`
	Text string           `json:"text"`
}

// BlockType returns the content block type.
func (b TextBlock) BlockType() ContentBlockType { return ContentBlockTypeText }

// ThinkingBlock contains assistant thinking.
type ThinkingBlock struct {
	Type      ContentBlockType `json:"type"`
	Thinking  string           `json:"thinking"`
	Signature string           `json:"signature,omitempty"`
}

// BlockType returns the content block type.
func (b ThinkingBlock) BlockType() ContentBlockType { return ContentBlockTypeThinking }

// ToolUseBlock is a tool invocation requested by the assistant.
type ToolUseBlock struct {
	Input map[string]interface{} `json:"input"`
	Type  ContentBlockType       `json:"type"`
	ID    string                 `json:"id"`
	Name  string                 `json:"name"`
}

// BlockType returns the content block type.
func (b ToolUseBlock) BlockType() ContentBlockType { return ContentBlockTypeToolUse }

// ToolResultBlock carries the result of a previously invoked tool.
// Content may be a plain string or arbitrary structured JSON.
type ToolResultBlock struct {
	Content   interface{}      `json:"content"`
	IsError   *bool            `json:"is_error,omitempty"`
	Type      ContentBlockType `json:"type"`
	ToolUseID string           `json:"tool_use_id"`
}

// BlockType returns the content block type.
func (b ToolResultBlock) BlockType() ContentBlockType { return ContentBlockTypeToolResult }

// UnmarshalContentBlock parses a single content block. Unknown block types
// return (nil, nil) so a new upstream block shape never breaks parsing.
func UnmarshalContentBlock(data json.RawMessage) (ContentBlock, error) {
	var base struct {
		Type ContentBlockType `json:"type"`
	}
	if err := json.Unmarshal(data, &base); err != nil {
		return nil, err
	}

	switch base.Type {
	case ContentBlockTypeText:
		var b TextBlock
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, err
		}
		return b, nil
	case ContentBlockTypeThinking:
		var b ThinkingBlock
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, err
		}
		return b, nil
	case ContentBlockTypeToolUse:
		var b ToolUseBlock
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, err
		}
		return b, nil
	case ContentBlockTypeToolResult:
		var b ToolResultBlock
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, err
		}
		return b, nil
	default:
		slog.Warn("skipping unknown content block type", "type", base.Type)
		return nil, nil
	}
}

// ContentBlocks is an ordered list of content blocks. Unknown block types
// are skipped during unmarshaling.
type ContentBlocks []ContentBlock

// UnmarshalJSON implements json.Unmarshaler.
func (cb *ContentBlocks) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}

	blocks := make(ContentBlocks, 0, len(raws))
	for _, raw := range raws {
		block, err := UnmarshalContentBlock(raw)
		if err != nil {
			return err
		}
		if block != nil {
			blocks = append(blocks, block)
		}
	}
	*cb = blocks
	return nil
}
