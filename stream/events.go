package stream

// EventType discriminates between normalized event kinds.
type EventType int

const (
	// EventTypeSessionStarted fires when the agent announces a session.
	EventTypeSessionStarted EventType = iota
	// EventTypeCompactBoundary marks a context compaction point.
	EventTypeCompactBoundary
	// EventTypeText fires for assistant text, complete or streamed.
	EventTypeText
	// EventTypeThinking fires for assistant thinking, complete or streamed.
	EventTypeThinking
	// EventTypeToolInvoked fires when the agent requests a tool call.
	EventTypeToolInvoked
	// EventTypeToolCompleted fires when a tool result arrives.
	EventTypeToolCompleted
	// EventTypeBlocked fires when a hook denied a tool call.
	EventTypeBlocked
	// EventTypeError fires for upstream errors.
	EventTypeError
	// EventTypeUsage fires with context-window occupancy for a top-level turn.
	EventTypeUsage
	// EventTypeDone marks the end of a turn.
	EventTypeDone
)

// Event is the interface for all normalized stream events.
type Event interface {
	Type() EventType
}

// ParentScoped is implemented by events that carry a parent-task link.
// A nil ParentTask means the event belongs to the top-level turn;
// otherwise it is the id of the spawning tool invocation.
type ParentScoped interface {
	ParentTask() *string
}

// SessionStartedEvent announces a new session.
type SessionStartedEvent struct {
	SessionID   string
	AgentRoster []string
}

// Type returns the event type.
func (e SessionStartedEvent) Type() EventType { return EventTypeSessionStarted }

// CompactBoundaryEvent marks a context compaction point.
type CompactBoundaryEvent struct{}

// Type returns the event type.
func (e CompactBoundaryEvent) Type() EventType { return EventTypeCompactBoundary }

// TextEvent contains assistant text.
type TextEvent struct {
	ParentTaskID *string
	Content      string
}

// Type returns the event type.
func (e TextEvent) Type() EventType { return EventTypeText }

// ParentTask returns the parent-task link.
func (e TextEvent) ParentTask() *string { return e.ParentTaskID }

// ThinkingEvent contains assistant thinking.
type ThinkingEvent struct {
	ParentTaskID *string
	Content      string
}

// Type returns the event type.
func (e ThinkingEvent) Type() EventType { return EventTypeThinking }

// ParentTask returns the parent-task link.
func (e ThinkingEvent) ParentTask() *string { return e.ParentTaskID }

// ToolInvokedEvent fires when the agent requests a tool call.
type ToolInvokedEvent struct {
	Input        map[string]interface{}
	ParentTaskID *string
	ID           string
	Name         string
}

// Type returns the event type.
func (e ToolInvokedEvent) Type() EventType { return EventTypeToolInvoked }

// ParentTask returns the parent-task link.
func (e ToolInvokedEvent) ParentTask() *string { return e.ParentTaskID }

// ToolCompletedEvent carries a tool result.
type ToolCompletedEvent struct {
	ParentTaskID *string
	ID           string
	Content      string
	IsError      bool
}

// Type returns the event type.
func (e ToolCompletedEvent) Type() EventType { return EventTypeToolCompleted }

// ParentTask returns the parent-task link.
func (e ToolCompletedEvent) ParentTask() *string { return e.ParentTaskID }

// BlockedEvent fires when a hook denied a tool call.
type BlockedEvent struct {
	Content string
}

// Type returns the event type.
func (e BlockedEvent) Type() EventType { return EventTypeBlocked }

// ErrorEvent carries an upstream error message.
type ErrorEvent struct {
	Content string
}

// Type returns the event type.
func (e ErrorEvent) Type() EventType { return EventTypeError }

// UsageEvent carries context-window occupancy for a top-level turn.
type UsageEvent struct {
	Info UsageInfo
}

// Type returns the event type.
func (e UsageEvent) Type() EventType { return EventTypeUsage }

// DoneEvent marks the end of a turn. The decoder never produces it from
// raw messages; the host emits it when the agent reports turn completion.
type DoneEvent struct{}

// Type returns the event type.
func (e DoneEvent) Type() EventType { return EventTypeDone }
