package stream

import "strings"

// DefaultContextWindow is used for models absent from the registry.
const DefaultContextWindow = 200_000

// ModelInfo describes a model known to the usage extractor.
type ModelInfo struct {
	ID            string // Full model identifier as reported on the wire
	Family        string // Short alias (e.g. "opus") accepted as a prefix match
	ContextWindow int    // Maximum input-token budget
}

// AllModels is the ordered list of known models. Later entries with the
// same family are preferred for prefix matching, so list newest first.
var AllModels = []ModelInfo{
	{ID: "claude-opus-4", Family: "opus", ContextWindow: 200_000},
	{ID: "claude-sonnet-4-5", Family: "sonnet", ContextWindow: 200_000},
	{ID: "claude-sonnet-4", Family: "sonnet", ContextWindow: 200_000},
	{ID: "claude-haiku-4-5", Family: "haiku", ContextWindow: 200_000},
	{ID: "claude-3-7-sonnet", Family: "sonnet", ContextWindow: 200_000},
	{ID: "claude-3-5-haiku", Family: "haiku", ContextWindow: 200_000},
}

// ContextWindowFor resolves the context window for a model identifier.
// Resolution order: exact id, id prefix, family alias, default.
func ContextWindowFor(model string) int {
	for _, m := range AllModels {
		if m.ID == model {
			return m.ContextWindow
		}
	}
	for _, m := range AllModels {
		if strings.HasPrefix(model, m.ID) {
			return m.ContextWindow
		}
	}
	for _, m := range AllModels {
		if m.Family != "" && strings.HasPrefix(model, m.Family) {
			return m.ContextWindow
		}
	}
	return DefaultContextWindow
}
