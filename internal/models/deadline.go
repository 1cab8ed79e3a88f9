package models

import "time"

type DeadlineKind string

const (
	DeadlineNone   DeadlineKind = ""
	DeadlineAck    DeadlineKind = "ack"
	DeadlineSLA    DeadlineKind = "sla"
	DeadlineChange DeadlineKind = "change"
)

func (k DeadlineKind) Label() string {
	switch k {
	case DeadlineAck:
		return "Acknowledgement"
	case DeadlineSLA:
		return "SLA"
	case DeadlineChange:
		return "Change request"
	default:
		return "No deadline"
	}
}

// Deadline is the boundary that currently applies to a task.
type Deadline struct {
	Kind          DeadlineKind
	At            time.Time
	BudgetMinutes int
}

// ActiveDeadline picks the deadline the assignee is currently measured against.
// ok is false when no clock runs: the task is resolved, held, or waiting on a reviewer.
func (t *Task) ActiveDeadline() (Deadline, bool) {
	switch t.Status {
	case TaskAssigned:
		return Deadline{Kind: DeadlineAck, At: t.AckDeadline, BudgetMinutes: t.AckMinutes}, true

	case TaskAcknowledged, TaskInProgress:
		phase := t.Phase()
		if phase == nil || phase.AwaitingReview() {
			return Deadline{}, false
		}
		if phase.ReviewStatus.NeedsChanges() && phase.ChangeDeadline != nil {
			return Deadline{Kind: DeadlineChange, At: *phase.ChangeDeadline, BudgetMinutes: phase.ChangeMinutes}, true
		}
		if phase.SLADeadline != nil {
			return Deadline{Kind: DeadlineSLA, At: *phase.SLADeadline, BudgetMinutes: phase.SLAMinutes}, true
		}
		return Deadline{}, false

	default:
		// completed, approved, on_hold, cancelled
		return Deadline{}, false
	}
}
