package applications

// Status is the closed set of application pipeline states.
type Status string

const (
	StatusPending            Status = "pending"
	StatusShortlisted        Status = "shortlisted"
	StatusTestScheduled      Status = "test_scheduled"
	StatusInterviewScheduled Status = "interview_scheduled"
	StatusWaitingForResult   Status = "waiting_for_result"
	StatusAccepted           Status = "accepted"
	StatusRejected           Status = "rejected"
)

// transitions is the adjacency table for the pipeline. Rejection is
// reachable from every non-terminal state; accepted/rejected are terminal.
var transitions = map[Status][]Status{
	StatusPending:            {StatusShortlisted, StatusRejected},
	StatusShortlisted:        {StatusTestScheduled, StatusInterviewScheduled, StatusRejected},
	StatusTestScheduled:      {StatusInterviewScheduled, StatusWaitingForResult, StatusRejected},
	StatusInterviewScheduled: {StatusTestScheduled, StatusWaitingForResult, StatusRejected},
	StatusWaitingForResult:   {StatusAccepted, StatusRejected},
	StatusAccepted:           {},
	StatusRejected:           {},
}

// ParseStatus maps a raw value onto a known Status.
func ParseStatus(raw string) (Status, bool) {
	s := Status(raw)
	_, ok := transitions[s]
	return s, ok
}

// IsTerminal reports whether no further transitions exist from s.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// CanTransition reports whether the pipeline permits moving from old to new.
func CanTransition(old, new Status) bool {
	if old == new {
		return false
	}
	for _, next := range transitions[old] {
		if next == new {
			return true
		}
	}
	return false
}
