package subtask

import "fmt"

// AmbiguousResultError reports a success payload whose per-agent results
// map has no entry for the target agent while more than one task is
// outstanding, so picking an entry would risk misattributing a result.
type AmbiguousResultError struct {
	AgentID     string
	Outstanding int
}

func (e *AmbiguousResultError) Error() string {
	return fmt.Sprintf("ambiguous task result: no entry for agent %q with %d tasks outstanding", e.AgentID, e.Outstanding)
}
