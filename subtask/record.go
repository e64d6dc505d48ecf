// Package subtask tracks the lifecycle of background tasks the agent
// spawns. Records are dual-keyed: by the spawning tool-invocation id
// until the agent runtime accepts the task, then by the runtime-assigned
// agent id. Observers receive immutable snapshots on every transition.
package subtask

// Status is the lifecycle state of a background task.
type Status string

const (
	// StatusPending means the spawn call was issued but has not returned.
	StatusPending Status = "pending"
	// StatusRunning means the runtime accepted the task and assigned an agent id.
	StatusRunning Status = "running"
	// StatusCompleted means the task finished and its result was retrieved.
	StatusCompleted Status = "completed"
	// StatusError means the spawn or retrieval failed.
	StatusError Status = "error"
	// StatusOrphaned means the owning conversation ended while the task was active.
	StatusOrphaned Status = "orphaned"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusError, StatusOrphaned:
		return true
	default:
		return false
	}
}

// Record is a snapshot of a background task. Values handed to observers
// are copies; mutating them has no effect on the coordinator.
type Record struct {
	TaskID      string
	AgentID     string
	Description string
	Status      Status
	Result      string
}

// Observer receives a record snapshot after every state transition.
// Implementations must not block; the coordinator calls them inline from
// its single event-consumption thread.
type Observer interface {
	TaskUpdated(Record)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Record)

// TaskUpdated implements Observer.
func (f ObserverFunc) TaskUpdated(r Record) { f(r) }
