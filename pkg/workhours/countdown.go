package workhours

import "time"

// State is the macro state of a single deadline. It is never stored; it is
// recomputed from now and the deadline on every evaluation.
type State int

const (
	StateCountingDown State = iota
	StateOverdueAccruing
)

func (s State) String() string {
	switch s {
	case StateCountingDown:
		return "counting_down"
	case StateOverdueAccruing:
		return "overdue_accruing"
	default:
		return "unknown"
	}
}

// Snapshot is one evaluation of a deadline at a given instant.
type Snapshot struct {
	Now      time.Time
	Deadline time.Time
	State    State

	Remaining        time.Duration
	RemainingMinutes int
	Overdue          time.Duration
	OverdueMinutes   int

	// Paused means the clock is outside the shift or on leave; only set when CalendarAware.
	Paused        bool
	CalendarAware bool
}

// Evaluate computes the snapshot of deadline at now. A nil calendar falls back
// to wall-clock arithmetic with no pause state.
func Evaluate(now, deadline time.Time, cal *CalendarConfig, leaves []LeaveRecord) Snapshot {
	snap := Snapshot{Now: now, Deadline: deadline, State: StateCountingDown}
	if !now.Before(deadline) {
		snap.State = StateOverdueAccruing
	}

	if cal == nil {
		if snap.State == StateCountingDown {
			snap.Remaining = deadline.Sub(now)
			snap.RemainingMinutes = toMinutes(snap.Remaining, RoundDown)
		} else {
			snap.Overdue = now.Sub(deadline)
			snap.OverdueMinutes = toMinutes(snap.Overdue, RoundUp)
		}
		return snap
	}

	snap.CalendarAware = true
	snap.Paused = !IsWorkingAt(now, *cal, leaves)
	if snap.State == StateCountingDown {
		snap.Remaining = WorkingDuration(now, deadline, *cal, leaves)
		snap.RemainingMinutes = toMinutes(snap.Remaining, RoundDown)
	} else {
		snap.Overdue = WorkingDuration(deadline, now, *cal, leaves)
		snap.OverdueMinutes = toMinutes(snap.Overdue, RoundUp)
	}
	return snap
}

// FormatOptions carries the display context of a badge.
type FormatOptions struct {
	Live           bool
	SLAHoursPerDay float64
	// InitialBudget is added to overdue time to show how long the item has been open.
	InitialBudget time.Duration
}

// Duration is the figure the badge shows: time left, or total open time once overdue.
func (s Snapshot) Duration(initialBudget time.Duration) time.Duration {
	if s.State == StateCountingDown {
		return s.Remaining
	}
	return s.Overdue + initialBudget
}

// Format renders the snapshot. Calendar-only embellishments are dropped in the wall-clock fallback.
func (s Snapshot) Format(opts FormatOptions) string {
	display := DisplayOptions{Ticking: opts.Live}
	if s.CalendarAware {
		display.Paused = s.Paused
		display.SLAHoursPerDay = opts.SLAHoursPerDay
	}
	return FormatDuration(s.Duration(opts.InitialBudget), display)
}

// Urgent reports whether the deadline is breached or closer than threshold.
func (s Snapshot) Urgent(threshold time.Duration) bool {
	return s.State == StateOverdueAccruing || s.Remaining <= threshold
}
