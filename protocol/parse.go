package protocol

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// ParseMessage parses a single raw message. Unknown kinds return
// (nil, nil) so a new upstream message shape never aborts the stream.
func ParseMessage(data []byte) (Message, error) {
	var base struct {
		Kind MessageKind `json:"kind"`
	}
	if err := json.Unmarshal(data, &base); err != nil {
		return nil, fmt.Errorf("parse message envelope: %w", err)
	}

	switch base.Kind {
	case MessageKindSystemInit:
		var m SystemInitMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse system-init: %w", err)
		}
		return m, nil
	case MessageKindSystemCompact:
		var m SystemCompactMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse system-compact: %w", err)
		}
		return m, nil
	case MessageKindAssistantTurn:
		var m AssistantTurnMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse assistant-turn: %w", err)
		}
		return m, nil
	case MessageKindUserTurn:
		var m UserTurnMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse user-turn: %w", err)
		}
		return m, nil
	case MessageKindDelta:
		var m DeltaMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse delta: %w", err)
		}
		return m, nil
	case MessageKindFinalResult:
		var m FinalResultMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse final-result: %w", err)
		}
		return m, nil
	case MessageKindError:
		var m ErrorMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse error message: %w", err)
		}
		return m, nil
	default:
		slog.Warn("skipping unknown message kind", "kind", base.Kind)
		return nil, nil
	}
}

// TraceEntry represents a single entry in a recorded transcript file.
// Transcript files wrap protocol messages with metadata for debugging.
type TraceEntry struct {
	ID        string          `json:"id"`
	Timestamp string          `json:"timestamp"`
	Direction string          `json:"direction"` // "sent" or "received"
	Message   json.RawMessage `json:"message"`
	Turn      int             `json:"turn,omitempty"`
}

// ParseTraceEntry parses a transcript line and extracts the inner protocol
// message. Falls back to parsing the line as a raw protocol message when
// the wrapper format doesn't match.
func ParseTraceEntry(line []byte) (Message, error) {
	var entry TraceEntry
	if err := json.Unmarshal(line, &entry); err != nil || len(entry.Message) == 0 {
		return ParseMessage(line)
	}
	return ParseMessage(entry.Message)
}
