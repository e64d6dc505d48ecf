package stream

import "testing"

func TestContextWindowFor(t *testing.T) {
	tests := []struct {
		model string
		want  int
	}{
		{"claude-sonnet-4-5", 200_000},
		{"claude-sonnet-4-5-20250929", 200_000},
		{"opus-latest", 200_000},
		{"some-unknown-model", DefaultContextWindow},
		{"", DefaultContextWindow},
	}
	for _, tt := range tests {
		if got := ContextWindowFor(tt.model); got != tt.want {
			t.Errorf("ContextWindowFor(%q) = %d, want %d", tt.model, got, tt.want)
		}
	}
}
