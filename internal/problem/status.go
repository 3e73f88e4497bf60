package problem

import "fmt"

// Status is the pipeline state of a candidate.
type Status string

const (
	StatusRequested     Status = "requested"
	StatusGenerated     Status = "generated"
	StatusFiltered      Status = "filtered"
	StatusScored        Status = "scored"
	StatusReviewed      Status = "reviewed"
	StatusNeedsRevision Status = "needs_revision"
	StatusRevised       Status = "revised"
	StatusAccepted      Status = "accepted"
	StatusRejected      Status = "rejected"
	StatusFailed        Status = "failed"
)

// transitions lists the allowed successors of every non-terminal status.
// FAILED is reachable from any non-terminal status and is not listed.
var transitions = map[Status][]Status{
	StatusRequested:     {StatusGenerated},
	StatusGenerated:     {StatusFiltered},
	StatusFiltered:      {StatusScored, StatusNeedsRevision},
	StatusScored:        {StatusReviewed, StatusNeedsRevision, StatusRequested},
	StatusReviewed:      {StatusAccepted, StatusNeedsRevision},
	StatusNeedsRevision: {StatusRevised, StatusRejected},
	StatusRevised:       {StatusFiltered},
}

// Terminal reports whether s ends the pipeline.
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected || s == StatusFailed
}

// CanTransition reports whether the state machine allows from → to.
func CanTransition(from, to Status) bool {
	if from.Terminal() {
		return false
	}
	if to == StatusFailed {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionError reports a disallowed state change.
type TransitionError struct {
	From, To Status
	Reason   string
}

func (e *TransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("illegal transition %s -> %s: %s", e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("illegal transition %s -> %s", e.From, e.To)
}
