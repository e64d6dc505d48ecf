package subtask

import (
	"log/slog"

	"github.com/quillpad/agentcore/internal/logutil"
)

// orphanedResult is the fixed explanation attached to tasks that were
// still active when the owning conversation ended.
const orphanedResult = "conversation ended while task was active"

// Coordinator owns the pending/running/completed/error/orphaned lifecycle
// of background tasks. All methods are called from the single event
// consumption thread, so the coordinator takes no locks.
//
// A record is reachable by exactly one key at a time: by task id while
// pending, by agent id while running. Terminal transitions drop the record
// from all tables after notifying the observer.
type Coordinator struct {
	byTaskID   map[string]*Record
	byAgentID  map[string]*Record
	probeLinks map[string]string // output-probe tool-use id -> agent id
	observer   Observer
	logger     *slog.Logger
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithObserver registers the observer notified on every transition.
func WithObserver(o Observer) CoordinatorOption {
	return func(c *Coordinator) { c.observer = o }
}

// WithCoordinatorLogger sets the logger for soft warnings.
func WithCoordinatorLogger(l *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) { c.logger = l }
}

// NewCoordinator creates an empty coordinator.
func NewCoordinator(opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		byTaskID:   make(map[string]*Record),
		byAgentID:  make(map[string]*Record),
		probeLinks: make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logutil.OrNop(c.logger)
	return c
}

func (c *Coordinator) notify(r *Record) {
	if c.observer != nil {
		c.observer.TaskUpdated(*r)
	}
}

// Spawn registers a new background task in state pending, keyed by the
// spawning tool-invocation id.
func (c *Coordinator) Spawn(taskID, description string) Record {
	r := &Record{
		TaskID:      taskID,
		Description: description,
		Status:      StatusPending,
	}
	c.byTaskID[taskID] = r
	c.logger.Debug("background task spawned", "taskID", taskID)
	c.notify(r)
	return *r
}

// ResolveSpawn consumes the result of the spawn call. On success the
// record moves to running and is re-keyed from task id to the
// runtime-assigned agent id; the task id no longer resolves afterwards.
// Returns false when no pending record matches taskID.
func (c *Coordinator) ResolveSpawn(taskID, resultContent string, isError bool) (Record, bool) {
	r, ok := c.byTaskID[taskID]
	if !ok {
		c.logger.Debug("spawn result for unknown task, ignoring", "taskID", taskID)
		return Record{}, false
	}
	delete(c.byTaskID, taskID)

	if isError {
		r.Status = StatusError
		r.Result = resultContent
		c.notify(r)
		return *r, true
	}

	agentID, err := parseAgentID(resultContent)
	if err != nil {
		r.Status = StatusError
		r.Result = "Failed to parse agent_id: " + err.Error()
		c.notify(r)
		return *r, true
	}

	r.AgentID = agentID
	r.Status = StatusRunning
	c.byAgentID[agentID] = r
	c.logger.Debug("background task running", "taskID", taskID, "agentID", agentID)
	c.notify(r)
	return *r, true
}

// LinkOutputProbe records that a later output-probe result with the given
// tool-use id refers to agentID. Probes for agents that are not running
// are ignored.
func (c *Coordinator) LinkOutputProbe(probeID, agentID string) {
	r, ok := c.byAgentID[agentID]
	if !ok || r.Status != StatusRunning {
		c.logger.Debug("output probe for inactive agent, ignoring", "probeID", probeID, "agentID", agentID)
		return
	}
	c.probeLinks[probeID] = agentID
}

// ResolveOutputProbe consumes an output-probe result. The target record is
// resolved via a prior LinkOutputProbe, falling back to an agent id parsed
// out of the payload itself for probes that were never linked.
//
// Returns false for no-ops: unknown probe, unknown agent, or a record that
// is no longer running (guarding against acting twice on a terminal task).
// A still-pending retrieval leaves the record running and returns its
// unchanged snapshot.
func (c *Coordinator) ResolveOutputProbe(probeID, resultContent string, isError bool) (Record, bool) {
	payload := parseProbePayload(resultContent)

	agentID, linked := c.probeLinks[probeID]
	if linked {
		delete(c.probeLinks, probeID)
	} else {
		agentID = payload.agentID
		if agentID == "" {
			// Infer from the results map: acceptable only when exactly one
			// key matches a running agent.
			for _, entry := range payload.results {
				if _, ok := c.byAgentID[entry.agentID]; ok {
					if agentID != "" && agentID != entry.agentID {
						agentID = ""
						break
					}
					agentID = entry.agentID
				}
			}
		}
	}

	r, ok := c.byAgentID[agentID]
	if !ok || r.Status != StatusRunning {
		c.logger.Debug("output probe with no running target, ignoring", "probeID", probeID, "agentID", agentID)
		return Record{}, false
	}

	if isError || payload.state == retrievalFailure {
		c.terminate(r, StatusError, payload.text)
		return *r, true
	}

	if payload.state == retrievalSuccess {
		text, err := resultForAgent(payload, r.AgentID, c.outstanding())
		if err != nil {
			c.terminate(r, StatusError, err.Error())
			return *r, true
		}
		c.terminate(r, StatusCompleted, text)
		return *r, true
	}

	// Still pending (or unrecognized payload): stay running. Re-link so a
	// retried probe with the same id keeps resolving.
	if linked {
		c.probeLinks[probeID] = agentID
	}
	return *r, true
}

// resultForAgent picks this agent's entry from a per-agent results map.
// When the explicit key is absent, falling back to the first entry is only
// safe with a single outstanding task; with more, misattribution is worse
// than an error, so the record fails instead.
func resultForAgent(p probePayload, agentID string, outstanding int) (string, error) {
	for _, entry := range p.results {
		if entry.agentID == agentID {
			return entry.text, nil
		}
	}
	if len(p.results) > 0 {
		if outstanding <= 1 {
			return p.results[0].text, nil
		}
		return "", &AmbiguousResultError{AgentID: agentID, Outstanding: outstanding}
	}
	return p.text, nil
}

// terminate applies a terminal transition, drops all keys to the record,
// and notifies the observer.
func (c *Coordinator) terminate(r *Record, status Status, result string) {
	r.Status = status
	r.Result = result
	delete(c.byAgentID, r.AgentID)
	delete(c.byTaskID, r.TaskID)
	for probeID, agentID := range c.probeLinks {
		if agentID == r.AgentID {
			delete(c.probeLinks, probeID)
		}
	}
	c.logger.Debug("background task finished", "taskID", r.TaskID, "agentID", r.AgentID, "status", status)
	c.notify(r)
}

// OrphanAll transitions every pending or running task to orphaned, clears
// all tables, and returns the affected snapshots. Call before discarding
// correlator state so no task is silently forgotten.
func (c *Coordinator) OrphanAll() []Record {
	var orphaned []Record

	seen := make(map[*Record]bool)
	for _, r := range c.byTaskID {
		seen[r] = true
	}
	for _, r := range c.byAgentID {
		seen[r] = true
	}

	for r := range seen {
		r.Status = StatusOrphaned
		r.Result = orphanedResult
		c.notify(r)
		orphaned = append(orphaned, *r)
	}

	c.byTaskID = make(map[string]*Record)
	c.byAgentID = make(map[string]*Record)
	c.probeLinks = make(map[string]string)

	if len(orphaned) > 0 {
		c.logger.Debug("orphaned outstanding tasks", "count", len(orphaned))
	}
	return orphaned
}

// HasPending reports whether taskID refers to a pending spawn.
func (c *Coordinator) HasPending(taskID string) bool {
	r, ok := c.byTaskID[taskID]
	return ok && r.Status == StatusPending
}

// Outstanding returns snapshots of every pending or running task.
func (c *Coordinator) Outstanding() []Record {
	seen := make(map[*Record]bool)
	var out []Record
	for _, r := range c.byTaskID {
		if !seen[r] {
			seen[r] = true
			out = append(out, *r)
		}
	}
	for _, r := range c.byAgentID {
		if !seen[r] {
			seen[r] = true
			out = append(out, *r)
		}
	}
	return out
}

func (c *Coordinator) outstanding() int {
	return len(c.byTaskID) + len(c.byAgentID)
}
