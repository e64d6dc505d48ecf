package timeline

import (
	"log/slog"

	"github.com/quillpad/agentcore/internal/logutil"
	"github.com/quillpad/agentcore/stream"
	"github.com/quillpad/agentcore/subtask"
)

// Default tool names for task spawning and output polling.
const (
	DefaultTaskToolName  = "Task"
	DefaultProbeToolName = "TaskOutput"
)

// backgroundInputKey is the Task-tool input field requesting background
// execution.
const backgroundInputKey = "run_in_background"

// Correlator consumes stream events in emission order and routes each to
// the main timeline, to an active synchronous subagent aggregate, or to
// the background-task coordinator. Every lookup is a soft miss: out of
// order or duplicate delivery never corrupts state and never panics.
//
// The correlator is single-writer: all events for a turn arrive from one
// logical thread, so no locking is needed.
type Correlator struct {
	timeline        *Timeline
	active          map[string]*SyncSubagent
	tasks           *subtask.Coordinator
	logger          *slog.Logger
	taskToolName    string
	probeToolName   string
	spawnedThisTurn bool
}

// CorrelatorOption configures a Correlator.
type CorrelatorOption func(*Correlator)

// WithTaskToolName overrides the task-spawning tool name.
func WithTaskToolName(name string) CorrelatorOption {
	return func(c *Correlator) { c.taskToolName = name }
}

// WithProbeToolName overrides the output-probe tool name.
func WithProbeToolName(name string) CorrelatorOption {
	return func(c *Correlator) { c.probeToolName = name }
}

// WithCorrelatorLogger sets the logger for soft-miss warnings.
func WithCorrelatorLogger(l *slog.Logger) CorrelatorOption {
	return func(c *Correlator) { c.logger = l }
}

// NewCorrelator creates a correlator delegating background-task events to
// tasks, which must not be nil.
func NewCorrelator(tasks *subtask.Coordinator, opts ...CorrelatorOption) *Correlator {
	c := &Correlator{
		timeline:      newTimeline(),
		active:        make(map[string]*SyncSubagent),
		tasks:         tasks,
		taskToolName:  DefaultTaskToolName,
		probeToolName: DefaultProbeToolName,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logutil.OrNop(c.logger)
	return c
}

// Timeline returns the main turn aggregate. The correlator keeps
// mutating it as events arrive.
func (c *Correlator) Timeline() *Timeline { return c.timeline }

// ActiveSubagent returns the open synchronous subagent aggregate for the
// given spawning invocation id, or nil.
func (c *Correlator) ActiveSubagent(id string) *SyncSubagent { return c.active[id] }

// Apply consumes one stream event.
func (c *Correlator) Apply(ev stream.Event) {
	switch e := ev.(type) {
	case stream.SessionStartedEvent:
		c.timeline.SessionID = e.SessionID
		c.timeline.AgentRoster = e.AgentRoster
	case stream.CompactBoundaryEvent:
		c.timeline.Entries = append(c.timeline.Entries, Entry{Kind: EntryCompact})
	case stream.DoneEvent:
		c.timeline.Turns++
		c.spawnedThisTurn = false
	case stream.BlockedEvent:
		c.timeline.Entries = append(c.timeline.Entries, Entry{Kind: EntryBlocked, Content: e.Content})
		// The denial replaces the result of the invocation it interrupted.
		if inv := c.timeline.lastRunningTool(); inv != nil {
			inv.Status = ToolStatusBlocked
			inv.Result = e.Content
		}
	case stream.ErrorEvent:
		c.timeline.Entries = append(c.timeline.Entries, Entry{Kind: EntryError, Content: e.Content})
	case stream.UsageEvent:
		c.applyUsage(e)
	case stream.TextEvent:
		c.applyScoped(e, e.ParentTaskID)
	case stream.ThinkingEvent:
		c.applyScoped(e, e.ParentTaskID)
	case stream.ToolInvokedEvent:
		c.applyScoped(e, e.ParentTaskID)
	case stream.ToolCompletedEvent:
		c.applyScoped(e, e.ParentTaskID)
	}
}

// applyUsage enforces the suppression rule: the runtime reports token
// usage cumulatively across parent and children, so a turn that spawned
// any subagent would double-count occupancy.
func (c *Correlator) applyUsage(e stream.UsageEvent) {
	if c.spawnedThisTurn {
		c.logger.Debug("suppressing usage from turn with spawned subagent")
		return
	}
	info := e.Info
	c.timeline.Usage = &info
}

// applyScoped routes an event by its parent-task link.
func (c *Correlator) applyScoped(ev stream.Event, parent *string) {
	if parent != nil {
		c.applyNested(ev, *parent)
		return
	}
	c.applyTopLevel(ev)
}

// applyNested handles events produced while a spawned task executes.
func (c *Correlator) applyNested(ev stream.Event, parentID string) {
	if agg, ok := c.active[parentID]; ok {
		switch e := ev.(type) {
		case stream.ToolInvokedEvent:
			if agg.nested(e.ID) != nil {
				return // duplicate delivery
			}
			agg.appendNested(&ToolInvocation{
				ID:     e.ID,
				Name:   e.Name,
				Input:  e.Input,
				Status: ToolStatusRunning,
			})
		case stream.ToolCompletedEvent:
			inv := agg.nested(e.ID)
			if inv == nil {
				c.logger.Debug("nested result with no matching invocation, dropping", "id", e.ID)
				return
			}
			resolveTool(inv, e)
		default:
			// Nested text/thinking is not surfaced; only the parent task's
			// own completion matters.
		}
		return
	}

	// No open aggregate: the parent finalized already, or it is a
	// background task. Task-shaped events still feed the coordinator.
	switch e := ev.(type) {
	case stream.ToolInvokedEvent:
		if e.Name == c.probeToolName {
			c.tasks.LinkOutputProbe(e.ID, agentIDFromInput(e.Input))
		}
	case stream.ToolCompletedEvent:
		c.tasks.ResolveOutputProbe(e.ID, e.Content, e.IsError)
	}
}

// applyTopLevel handles events belonging to the top-level turn.
func (c *Correlator) applyTopLevel(ev stream.Event) {
	switch e := ev.(type) {
	case stream.TextEvent:
		c.timeline.Entries = append(c.timeline.Entries, Entry{Kind: EntryText, Content: e.Content})
	case stream.ThinkingEvent:
		c.timeline.Entries = append(c.timeline.Entries, Entry{Kind: EntryThinking, Content: e.Content})
	case stream.ToolInvokedEvent:
		c.applyTopLevelInvoked(e)
	case stream.ToolCompletedEvent:
		c.applyTopLevelCompleted(e)
	}
}

func (c *Correlator) applyTopLevelInvoked(e stream.ToolInvokedEvent) {
	if e.Name == c.taskToolName {
		c.spawnedThisTurn = true
		if wantsBackground(e.Input) {
			c.tasks.Spawn(e.ID, taskDescription(e.Input))
			return
		}
		agg := newSyncSubagent(e.ID, taskDescription(e.Input))
		c.active[e.ID] = agg
		c.timeline.Subagents = append(c.timeline.Subagents, agg)
		return
	}

	inv := &ToolInvocation{
		ID:     e.ID,
		Name:   e.Name,
		Input:  e.Input,
		Status: ToolStatusRunning,
	}
	if c.timeline.tool(e.ID) != nil {
		return // duplicate delivery
	}
	c.timeline.appendTool(inv)

	if e.Name == c.probeToolName {
		c.tasks.LinkOutputProbe(e.ID, agentIDFromInput(e.Input))
	}
}

func (c *Correlator) applyTopLevelCompleted(e stream.ToolCompletedEvent) {
	// An open synchronous subagent finalizes on its spawning id.
	if agg, ok := c.active[e.ID]; ok {
		agg.Result = e.Content
		if e.IsError {
			agg.Status = SubagentStatusError
		} else {
			agg.Status = SubagentStatusCompleted
		}
		delete(c.active, e.ID)
		return
	}

	// A pending background spawn resolves on its task id.
	if c.tasks.HasPending(e.ID) {
		c.tasks.ResolveSpawn(e.ID, e.Content, e.IsError)
		return
	}

	inv := c.timeline.tool(e.ID)
	if inv == nil {
		c.logger.Debug("result with no matching invocation, dropping", "id", e.ID)
		return
	}
	if inv.Status != ToolStatusRunning {
		return // duplicate delivery
	}
	resolveTool(inv, e)

	if inv.Name == c.probeToolName {
		c.tasks.ResolveOutputProbe(e.ID, e.Content, e.IsError)
	}
}

// Reset tears down the current conversation: every outstanding background
// task is deterministically orphaned (never silently forgotten), open
// synchronous aggregates are discarded, and a fresh timeline begins.
// Returns the orphaned task snapshots.
func (c *Correlator) Reset() []subtask.Record {
	orphaned := c.tasks.OrphanAll()
	c.active = make(map[string]*SyncSubagent)
	c.timeline = newTimeline()
	c.spawnedThisTurn = false
	return orphaned
}

func resolveTool(inv *ToolInvocation, e stream.ToolCompletedEvent) {
	inv.Result = e.Content
	if e.IsError {
		inv.Status = ToolStatusError
	} else {
		inv.Status = ToolStatusCompleted
	}
}

// wantsBackground reports whether a Task input requests background
// execution. Tolerates a stringly-typed flag.
func wantsBackground(input map[string]interface{}) bool {
	switch v := input[backgroundInputKey].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return false
	}
}

// taskDescription extracts a human-readable description from Task input.
func taskDescription(input map[string]interface{}) string {
	for _, key := range []string{"description", "prompt"} {
		if s, ok := input[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// agentIDFromInput extracts the target agent id from probe-tool input.
func agentIDFromInput(input map[string]interface{}) string {
	for _, key := range []string{"agent_id", "agentId", "id"} {
		if s, ok := input[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
