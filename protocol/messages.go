package protocol

import (
	"encoding/json"
)

// MessageKind discriminates between raw message kinds.
type MessageKind string

const (
	MessageKindSystemInit    MessageKind = "system-init"
	MessageKindSystemCompact MessageKind = "system-compact"
	MessageKindAssistantTurn MessageKind = "assistant-turn"
	MessageKindUserTurn      MessageKind = "user-turn"
	MessageKindDelta         MessageKind = "delta"
	MessageKindFinalResult   MessageKind = "final-result"
	MessageKindError         MessageKind = "error"
)

// Message is the interface for all raw agent messages.
type Message interface {
	Kind() MessageKind
}

// SystemInitMessage announces a new session.
type SystemInitMessage struct {
	MsgKind   MessageKind `json:"kind"`
	SessionID string      `json:"session_id"`
	Model     string      `json:"model,omitempty"`
	CWD       string      `json:"cwd,omitempty"`
	Tools     []string    `json:"tools,omitempty"`
	Agents    []string    `json:"agents,omitempty"`
}

// Kind returns the message kind.
func (m SystemInitMessage) Kind() MessageKind { return MessageKindSystemInit }

// SystemCompactMessage marks a context compaction boundary.
type SystemCompactMessage struct {
	MsgKind MessageKind `json:"kind"`
	Trigger string      `json:"trigger,omitempty"`
}

// Kind returns the message kind.
func (m SystemCompactMessage) Kind() MessageKind { return MessageKindSystemCompact }

// Usage tracks token usage for a single turn.
type Usage struct {
	InputTokens              int `json:"input_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens"`
	OutputTokens             int `json:"output_tokens"`
}

// HasCounters reports whether any context-relevant counter is populated.
func (u Usage) HasCounters() bool {
	return u.InputTokens > 0 || u.CacheCreationInputTokens > 0 || u.CacheReadInputTokens > 0
}

// FlexibleContent can be either a string or an array of content blocks.
type FlexibleContent struct {
	raw json.RawMessage
}

// NewStringContent builds a FlexibleContent holding a plain string.
// Used by tests and fixture builders.
func NewStringContent(s string) FlexibleContent {
	b, _ := json.Marshal(s)
	return FlexibleContent{raw: b}
}

// NewBlocksContent builds a FlexibleContent holding raw block JSON.
func NewBlocksContent(raw json.RawMessage) FlexibleContent {
	return FlexibleContent{raw: raw}
}

// UnmarshalJSON implements json.Unmarshaler.
func (fc *FlexibleContent) UnmarshalJSON(data []byte) error {
	fc.raw = data
	return nil
}

// MarshalJSON implements json.Marshaler.
func (fc FlexibleContent) MarshalJSON() ([]byte, error) {
	if fc.raw == nil {
		return []byte("null"), nil
	}
	return fc.raw, nil
}

// IsString returns true if the content is a string.
func (fc FlexibleContent) IsString() bool {
	if len(fc.raw) == 0 {
		return false
	}
	return fc.raw[0] == '"'
}

// AsString returns the content as a string (if it is one).
func (fc FlexibleContent) AsString() (string, bool) {
	if !fc.IsString() {
		return "", false
	}
	var s string
	if err := json.Unmarshal(fc.raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// AsBlocks returns the content as content blocks (if it is an array).
func (fc FlexibleContent) AsBlocks() (ContentBlocks, bool) {
	if fc.IsString() || len(fc.raw) == 0 {
		return nil, false
	}
	var blocks ContentBlocks
	if err := json.Unmarshal(fc.raw, &blocks); err != nil {
		return nil, false
	}
	return blocks, true
}

// TurnContent is the inner payload of assistant/user turn messages.
type TurnContent struct {
	Model   string          `json:"model,omitempty"`
	ID      string          `json:"id,omitempty"`
	Role    string          `json:"role,omitempty"`
	Content FlexibleContent `json:"content"`
	Usage   Usage           `json:"usage,omitempty"`
}

// AssistantTurnMessage is a complete assistant message. ParentTaskID is
// nil for the top-level turn and carries the spawning tool-invocation id
// for messages produced while a child task runs.
type AssistantTurnMessage struct {
	ParentTaskID *string     `json:"parent_task_id"`
	MsgKind      MessageKind `json:"kind"`
	SessionID    string      `json:"session_id,omitempty"`
	Message      TurnContent `json:"message"`
}

// Kind returns the message kind.
func (m AssistantTurnMessage) Kind() MessageKind { return MessageKindAssistantTurn }

// UserTurnSubtypeHookBlocked flags a user turn carrying a hook-denied tool
// call instead of tool results.
const UserTurnSubtypeHookBlocked = "hook_blocked"

// UserTurnMessage carries tool results echoed back to the agent, or a
// hook-denied tool call.
type UserTurnMessage struct {
	ParentTaskID  *string         `json:"parent_task_id"`
	MsgKind       MessageKind     `json:"kind"`
	Subtype       string          `json:"subtype,omitempty"`
	SessionID     string          `json:"session_id,omitempty"`
	Message       TurnContent     `json:"message"`
	ToolUseID     string          `json:"tool_use_id,omitempty"`
	ToolUseResult json.RawMessage `json:"tool_use_result,omitempty"`
}

// Kind returns the message kind.
func (m UserTurnMessage) Kind() MessageKind { return MessageKindUserTurn }

// IsHookBlocked reports whether this turn is a hook-denied tool call.
func (m UserTurnMessage) IsHookBlocked() bool {
	return m.Subtype == UserTurnSubtypeHookBlocked
}

// ModelUsage tracks cumulative usage per model in a final result.
type ModelUsage struct {
	InputTokens              int     `json:"inputTokens"`
	OutputTokens             int     `json:"outputTokens"`
	CacheReadInputTokens     int     `json:"cacheReadInputTokens"`
	CacheCreationInputTokens int     `json:"cacheCreationInputTokens"`
	CostUSD                  float64 `json:"costUSD,omitempty"`
	ContextWindow            int     `json:"contextWindow,omitempty"`
}

// FinalResultMessage contains turn completion metrics. Its usage counters
// are cumulative across parent and child tasks, so they never feed the
// context-window indicator.
type FinalResultMessage struct {
	ModelUsage   map[string]ModelUsage `json:"modelUsage,omitempty"`
	MsgKind      MessageKind           `json:"kind"`
	SessionID    string                `json:"session_id,omitempty"`
	Result       string                `json:"result"`
	Usage        Usage                 `json:"usage"`
	NumTurns     int                   `json:"num_turns,omitempty"`
	DurationMs   int64                 `json:"duration_ms,omitempty"`
	TotalCostUSD float64               `json:"total_cost_usd,omitempty"`
	IsError      bool                  `json:"is_error"`
}

// Kind returns the message kind.
func (m FinalResultMessage) Kind() MessageKind { return MessageKindFinalResult }

// ErrorMessage reports an upstream error.
type ErrorMessage struct {
	MsgKind MessageKind `json:"kind"`
	Message string      `json:"message"`
}

// Kind returns the message kind.
func (m ErrorMessage) Kind() MessageKind { return MessageKindError }
