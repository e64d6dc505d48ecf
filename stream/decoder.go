package stream

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/quillpad/agentcore/internal/logutil"
	"github.com/quillpad/agentcore/protocol"
)

// Decoder turns raw agent messages into normalized stream events.
// It is stateless: Decode is a pure function of its input, so one decoder
// can serve any number of turns. Decode never panics on malformed input.
type Decoder struct {
	logger       *slog.Logger
	windows      map[string]int
	defaultModel string
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithDefaultModel sets the model name used when an assistant turn omits one.
func WithDefaultModel(model string) DecoderOption {
	return func(d *Decoder) { d.defaultModel = model }
}

// WithLogger sets the logger for soft warnings about skipped payloads.
func WithLogger(l *slog.Logger) DecoderOption {
	return func(d *Decoder) { d.logger = l }
}

// WithContextWindow overrides the context window for a model id,
// taking precedence over the built-in registry.
func WithContextWindow(model string, tokens int) DecoderOption {
	return func(d *Decoder) {
		if d.windows == nil {
			d.windows = make(map[string]int)
		}
		d.windows[model] = tokens
	}
}

// NewDecoder creates a decoder with the given options.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = logutil.OrNop(d.logger)
	return d
}

// Decode normalizes one raw message into zero or more stream events.
func (d *Decoder) Decode(msg protocol.Message) []Event {
	switch m := msg.(type) {
	case protocol.SystemInitMessage:
		return d.decodeSystemInit(m)
	case protocol.SystemCompactMessage:
		return []Event{CompactBoundaryEvent{}}
	case protocol.AssistantTurnMessage:
		return d.decodeAssistantTurn(m)
	case protocol.UserTurnMessage:
		return d.decodeUserTurn(m)
	case protocol.DeltaMessage:
		return d.decodeDelta(m)
	case protocol.FinalResultMessage:
		// Usage is sourced from assistant turns only; final results carry
		// counters that are cumulative across parent and child tasks.
		return nil
	case protocol.ErrorMessage:
		if m.Message == "" {
			return nil
		}
		return []Event{ErrorEvent{Content: m.Message}}
	default:
		if msg != nil {
			d.logger.Warn("skipping message of unknown kind", "kind", msg.Kind())
		}
		return nil
	}
}

func (d *Decoder) decodeSystemInit(m protocol.SystemInitMessage) []Event {
	if m.SessionID == "" {
		d.logger.Warn("system-init without session id, skipping")
		return nil
	}
	return []Event{SessionStartedEvent{
		SessionID:   m.SessionID,
		AgentRoster: m.Agents,
	}}
}

func (d *Decoder) decodeAssistantTurn(m protocol.AssistantTurnMessage) []Event {
	var events []Event

	if text, ok := m.Message.Content.AsString(); ok {
		if text != "" {
			events = append(events, TextEvent{Content: text, ParentTaskID: m.ParentTaskID})
		}
	} else if blocks, ok := m.Message.Content.AsBlocks(); ok {
		for _, block := range blocks {
			switch b := block.(type) {
			case protocol.ThinkingBlock:
				if b.Thinking != "" {
					events = append(events, ThinkingEvent{Content: b.Thinking, ParentTaskID: m.ParentTaskID})
				}
			case protocol.TextBlock:
				if b.Text != "" {
					events = append(events, TextEvent{Content: b.Text, ParentTaskID: m.ParentTaskID})
				}
			case protocol.ToolUseBlock:
				events = append(events, d.toolInvoked(b, m.ParentTaskID))
			}
		}
	}

	// Usage is only meaningful on the top-level turn: the runtime reports
	// counters cumulatively across parent and children.
	if m.ParentTaskID == nil && m.Message.Usage.HasCounters() {
		model := m.Message.Model
		if model == "" {
			model = d.defaultModel
		}
		events = append(events, UsageEvent{
			Info: computeUsage(model, m.Message.Usage, d.contextWindow(model)),
		})
	}

	return events
}

func (d *Decoder) decodeUserTurn(m protocol.UserTurnMessage) []Event {
	// A hook-denied tool call replaces the tool result entirely.
	if m.IsHookBlocked() {
		return []Event{BlockedEvent{Content: blockedContent(m)}}
	}

	var events []Event
	seen := make(map[string]bool)

	if blocks, ok := m.Message.Content.AsBlocks(); ok {
		for _, block := range blocks {
			rb, ok := block.(protocol.ToolResultBlock)
			if !ok {
				continue
			}
			if rb.ToolUseID == "" {
				d.logger.Warn("tool result without tool_use_id, skipping")
				continue
			}
			isError := rb.IsError != nil && *rb.IsError
			events = append(events, ToolCompletedEvent{
				ID:           rb.ToolUseID,
				Content:      stringifyResult(rb.Content),
				IsError:      isError,
				ParentTaskID: m.ParentTaskID,
			})
			seen[rb.ToolUseID] = true
		}
	}

	// The dedicated result field duplicates block results for some tools;
	// only emit it for ids the blocks did not cover.
	if len(m.ToolUseResult) > 0 && m.ToolUseID != "" && !seen[m.ToolUseID] {
		events = append(events, ToolCompletedEvent{
			ID:           m.ToolUseID,
			Content:      stringifyRaw(m.ToolUseResult),
			ParentTaskID: m.ParentTaskID,
		})
	}

	return events
}

func (d *Decoder) decodeDelta(m protocol.DeltaMessage) []Event {
	ev, err := protocol.ParseDeltaEvent(m.Event)
	if err != nil {
		d.logger.Warn("malformed delta event, skipping", "error", err)
		return nil
	}

	switch e := ev.(type) {
	case protocol.ContentBlockStartEvent:
		block, err := e.ParsedBlock()
		if err != nil {
			d.logger.Warn("malformed content block in delta, skipping", "error", err)
			return nil
		}
		switch b := block.(type) {
		case protocol.ToolUseBlock:
			return []Event{d.toolInvoked(b, m.ParentTaskID)}
		case protocol.TextBlock:
			if b.Text != "" {
				return []Event{TextEvent{Content: b.Text, ParentTaskID: m.ParentTaskID}}
			}
		case protocol.ThinkingBlock:
			if b.Thinking != "" {
				return []Event{ThinkingEvent{Content: b.Thinking, ParentTaskID: m.ParentTaskID}}
			}
		}
		return nil
	case protocol.ContentBlockDeltaEvent:
		delta, err := e.ParsedDelta()
		if err != nil {
			d.logger.Warn("malformed content block delta, skipping", "error", err)
			return nil
		}
		switch dd := delta.(type) {
		case protocol.TextDelta:
			if dd.Text != "" {
				return []Event{TextEvent{Content: dd.Text, ParentTaskID: m.ParentTaskID}}
			}
		case protocol.ThinkingDelta:
			if dd.Thinking != "" {
				return []Event{ThinkingEvent{Content: dd.Thinking, ParentTaskID: m.ParentTaskID}}
			}
		}
		// Tool-input fragments have no place in the normalized vocabulary;
		// the complete input arrives with the assistant turn.
		return nil
	default:
		return nil
	}
}

func (d *Decoder) toolInvoked(b protocol.ToolUseBlock, parent *string) ToolInvokedEvent {
	id := b.ID
	if id == "" {
		id = synthesizeToolID()
		d.logger.Warn("tool use without id, synthesized one", "name", b.Name, "id", id)
	}
	return ToolInvokedEvent{
		ID:           id,
		Name:         b.Name,
		Input:        b.Input,
		ParentTaskID: parent,
	}
}

func (d *Decoder) contextWindow(model string) int {
	if w, ok := d.windows[model]; ok {
		return w
	}
	return ContextWindowFor(model)
}

// synthesizeToolID generates a unique id for a tool use that arrived
// without one, so correlation never breaks on a malformed upstream id.
func synthesizeToolID() string {
	b := make([]byte, 4)
	rand.Read(b)
	return fmt.Sprintf("tool_%d_%s", time.Now().UnixNano(), hex.EncodeToString(b))
}

// stringifyResult renders a tool result value as display text.
// Strings pass through; everything else is pretty-printed JSON.
func stringifyResult(content interface{}) string {
	switch c := content.(type) {
	case nil:
		return ""
	case string:
		return c
	default:
		b, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return fmt.Sprintf("%v", c)
		}
		return string(b)
	}
}

// stringifyRaw renders a raw JSON result as display text, unquoting
// plain strings and pretty-printing objects.
func stringifyRaw(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return stringifyResult(v)
}

// blockedContent extracts the denial reason from a hook-blocked user turn.
func blockedContent(m protocol.UserTurnMessage) string {
	if s, ok := m.Message.Content.AsString(); ok {
		return s
	}
	if blocks, ok := m.Message.Content.AsBlocks(); ok {
		for _, block := range blocks {
			switch b := block.(type) {
			case protocol.TextBlock:
				if b.Text != "" {
					return b.Text
				}
			case protocol.ToolResultBlock:
				if s := stringifyResult(b.Content); s != "" {
					return s
				}
			}
		}
	}
	return "tool call blocked by hook"
}
