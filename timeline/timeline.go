// Package timeline correlates normalized stream events into per-turn
// aggregates: the main conversation timeline, synchronous subagent
// aggregates, and (via the subtask coordinator) background tasks.
package timeline

import "github.com/quillpad/agentcore/stream"

// ToolStatus is the lifecycle state of a tool invocation.
type ToolStatus string

const (
	ToolStatusRunning   ToolStatus = "running"
	ToolStatusCompleted ToolStatus = "completed"
	ToolStatusError     ToolStatus = "error"
	ToolStatusBlocked   ToolStatus = "blocked"
)

// ToolInvocation is one tool call and, once resolved, its result.
// It is owned by the aggregate that received the invocation and is
// mutated in place when the matching completion arrives.
type ToolInvocation struct {
	Input  map[string]interface{}
	ID     string
	Name   string
	Status ToolStatus
	Result string
}

// EntryKind discriminates timeline entries.
type EntryKind int

const (
	EntryText EntryKind = iota
	EntryThinking
	EntryTool
	EntryBlocked
	EntryError
	EntryCompact
)

// Entry is one item of the main timeline. Tool is set for EntryTool,
// Content for everything else.
type Entry struct {
	Tool    *ToolInvocation
	Content string
	Kind    EntryKind
}

// Timeline is the top-level turn aggregate.
type Timeline struct {
	toolsByID   map[string]*ToolInvocation
	Usage       *stream.UsageInfo
	SessionID   string
	AgentRoster []string
	Entries     []Entry
	Subagents   []*SyncSubagent
	Turns       int
}

func newTimeline() *Timeline {
	return &Timeline{toolsByID: make(map[string]*ToolInvocation)}
}

func (t *Timeline) appendTool(inv *ToolInvocation) {
	t.toolsByID[inv.ID] = inv
	t.Entries = append(t.Entries, Entry{Kind: EntryTool, Tool: inv})
}

func (t *Timeline) tool(id string) *ToolInvocation {
	return t.toolsByID[id]
}

// lastRunningTool returns the most recent invocation still running,
// or nil when none is open.
func (t *Timeline) lastRunningTool() *ToolInvocation {
	for i := len(t.Entries) - 1; i >= 0; i-- {
		e := t.Entries[i]
		if e.Kind == EntryTool && e.Tool.Status == ToolStatusRunning {
			return e.Tool
		}
	}
	return nil
}

// SubagentStatus is the lifecycle state of a synchronous subagent.
type SubagentStatus string

const (
	SubagentStatusRunning   SubagentStatus = "running"
	SubagentStatusCompleted SubagentStatus = "completed"
	SubagentStatusError     SubagentStatus = "error"
)

// SyncSubagent aggregates the nested activity of an inline task. Its id
// is the spawning tool-invocation id, which every nested event carries as
// its parent-task link. Once finalized it stops accepting nested events.
type SyncSubagent struct {
	nestedByID  map[string]*ToolInvocation
	ID          string
	Description string
	Result      string
	Status      SubagentStatus
	Nested      []*ToolInvocation
}

func newSyncSubagent(id, description string) *SyncSubagent {
	return &SyncSubagent{
		ID:          id,
		Description: description,
		Status:      SubagentStatusRunning,
		nestedByID:  make(map[string]*ToolInvocation),
	}
}

func (a *SyncSubagent) appendNested(inv *ToolInvocation) {
	a.nestedByID[inv.ID] = inv
	a.Nested = append(a.Nested, inv)
}

func (a *SyncSubagent) nested(id string) *ToolInvocation {
	return a.nestedByID[id]
}
