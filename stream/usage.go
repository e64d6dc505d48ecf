package stream

import (
	"math"

	"github.com/quillpad/agentcore/protocol"
)

// UsageInfo is a derived snapshot of context-window occupancy for one
// top-level assistant turn. It is never mutated after creation.
type UsageInfo struct {
	Model               string
	InputTokens         int
	CacheCreationTokens int
	CacheReadTokens     int
	ContextWindowSize   int
	OccupiedTokens      int
	Percentage          int
}

// computeUsage derives UsageInfo from raw turn counters. window must be
// positive; callers resolve it via the model registry.
func computeUsage(model string, u protocol.Usage, window int) UsageInfo {
	occupied := u.InputTokens + u.CacheCreationInputTokens + u.CacheReadInputTokens

	pct := 0
	if window > 0 {
		pct = int(math.Round(float64(occupied) / float64(window) * 100))
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	return UsageInfo{
		Model:               model,
		InputTokens:         u.InputTokens,
		CacheCreationTokens: u.CacheCreationInputTokens,
		CacheReadTokens:     u.CacheReadInputTokens,
		ContextWindowSize:   window,
		OccupiedTokens:      occupied,
		Percentage:          pct,
	}
}
