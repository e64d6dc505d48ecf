package subtask

import (
	"fmt"
	"strings"

	"github.com/buger/jsonparser"
)

// Result payloads from the task runtime arrive in one of three envelope
// shapes: a bare JSON object, a JSON array of {"text": "<json>"} wrappers,
// or a single {"text": "<json>"} wrapper. The helpers here unwrap all of
// them and probe fields without trusting the payload shape.

// candidateDocs returns the JSON documents to probe for a payload:
// the payload itself plus every unwrapped "text" envelope.
func candidateDocs(content string) [][]byte {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil
	}

	docs := [][]byte{[]byte(trimmed)}

	switch trimmed[0] {
	case '[':
		_, _ = jsonparser.ArrayEach([]byte(trimmed), func(value []byte, vt jsonparser.ValueType, _ int, _ error) {
			if vt != jsonparser.Object {
				return
			}
			if text, err := jsonparser.GetString(value, "text"); err == nil && text != "" {
				docs = append(docs, []byte(text))
			}
		})
	case '{':
		if text, err := jsonparser.GetString([]byte(trimmed), "text"); err == nil && text != "" {
			docs = append(docs, []byte(text))
		}
	}

	return docs
}

// agentIDFields is the fallback chain of fields that may carry the
// runtime-assigned agent id.
var agentIDFields = [][]string{
	{"agent_id"},
	{"agentId"},
	{"data", "agent_id"},
	{"data", "agentId"},
	{"id"},
}

// agentIDFromDoc probes one JSON document for an agent id.
func agentIDFromDoc(doc []byte) string {
	for _, keys := range agentIDFields {
		if id, err := jsonparser.GetString(doc, keys...); err == nil && id != "" {
			return id
		}
	}
	return ""
}

// parseAgentID extracts the agent id from a spawn result payload, trying
// each envelope shape, then direct fields, then a raw scan for the
// escaped key before giving up.
func parseAgentID(content string) (string, error) {
	for _, doc := range candidateDocs(content) {
		if id := agentIDFromDoc(doc); id != "" {
			return id, nil
		}
	}

	if id := scanEscapedKey(content, "agent_id"); id != "" {
		return id, nil
	}

	snippet := content
	if len(snippet) > 120 {
		snippet = snippet[:120] + "..."
	}
	return "", fmt.Errorf("no agent identifier in payload %q", snippet)
}

// scanEscapedKey finds `\"key\":\"value\"` inside a doubly-encoded JSON
// string and returns the value. Covers payloads where the envelope text
// failed to parse as JSON but still carries the key.
func scanEscapedKey(content, key string) string {
	marker := `\"` + key + `\"`
	idx := strings.Index(content, marker)
	if idx < 0 {
		return ""
	}
	rest := content[idx+len(marker):]

	// Expect a colon, then the escaped opening quote of the value.
	colon := strings.Index(rest, ":")
	if colon < 0 {
		return ""
	}
	rest = rest[colon+1:]

	open := strings.Index(rest, `\"`)
	if open < 0 {
		return ""
	}
	rest = rest[open+2:]

	end := strings.Index(rest, `\"`)
	if end <= 0 {
		return ""
	}
	return rest[:end]
}

// retrievalState classifies an output-probe payload.
type retrievalState int

const (
	// retrievalUnknown means the payload shape was not recognized.
	// Treated as still-pending so a garbled poll never kills a task.
	retrievalUnknown retrievalState = iota
	retrievalPending
	retrievalSuccess
	retrievalFailure
)

// agentResult is one entry of a per-agent results map, in payload order.
type agentResult struct {
	agentID string
	text    string
}

// probePayload is the parsed form of an output-probe result.
type probePayload struct {
	state   retrievalState
	agentID string        // optional hint identifying the target record
	results []agentResult // per-agent results, payload order preserved
	text    string        // flat result/error text when present
}

// classifyStatus maps a status string to a retrieval state.
func classifyStatus(s string) retrievalState {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "success", "complete", "completed", "done":
		return retrievalSuccess
	case "not_ready", "running", "pending", "in_progress":
		return retrievalPending
	case "failed", "failure", "error", "timeout":
		return retrievalFailure
	default:
		return retrievalUnknown
	}
}

// parseProbePayload parses an output-probe result, supporting the same
// envelope shapes as parseAgentID. It never fails: unrecognized payloads
// come back with retrievalUnknown.
func parseProbePayload(content string) probePayload {
	var p probePayload

	for _, doc := range candidateDocs(content) {
		state := retrievalUnknown
		for _, key := range []string{"retrieval_status", "status"} {
			if s, err := jsonparser.GetString(doc, key); err == nil {
				state = classifyStatus(s)
				if state != retrievalUnknown {
					break
				}
			}
		}
		if state == retrievalUnknown {
			continue
		}

		p.state = state
		p.agentID = agentIDFromDoc(doc)
		p.results = agentResultsFromDoc(doc)
		p.text = flatTextFromDoc(doc)
		return p
	}

	// No recognizable status anywhere; still surface whatever text or
	// agent hint the first doc carries.
	for _, doc := range candidateDocs(content) {
		if p.agentID == "" {
			p.agentID = agentIDFromDoc(doc)
		}
		if p.text == "" {
			p.text = flatTextFromDoc(doc)
		}
	}
	return p
}

// agentResultsFromDoc reads a per-agent results map, preserving payload
// order so the single-task fallback can pick the first entry.
func agentResultsFromDoc(doc []byte) []agentResult {
	var results []agentResult

	collect := func(key []byte, value []byte, vt jsonparser.ValueType, _ int) error {
		entry := agentResult{agentID: string(key)}
		switch vt {
		case jsonparser.String:
			if s, err := jsonparser.ParseString(value); err == nil {
				entry.text = s
			}
		case jsonparser.Object:
			for _, field := range []string{"result", "output", "text"} {
				if s, err := jsonparser.GetString(value, field); err == nil {
					entry.text = s
					break
				}
			}
		default:
			return nil
		}
		results = append(results, entry)
		return nil
	}

	for _, key := range []string{"agents", "results"} {
		if err := jsonparser.ObjectEach(doc, collect, key); err == nil && len(results) > 0 {
			return results
		}
	}
	return results
}

// flatTextFromDoc reads a flat result or error string from a payload.
func flatTextFromDoc(doc []byte) string {
	for _, key := range []string{"result", "output", "error", "message"} {
		if s, err := jsonparser.GetString(doc, key); err == nil && s != "" {
			return s
		}
	}
	return ""
}
