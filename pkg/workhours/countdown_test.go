package workhours

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateCountingDown(t *testing.T) {
	cal := officeCalendar()
	snap := Evaluate(utc(19, 10, 0), utc(19, 12, 30), &cal, nil)

	assert.Equal(t, StateCountingDown, snap.State)
	assert.Equal(t, 150*time.Minute, snap.Remaining)
	assert.Equal(t, 150, snap.RemainingMinutes)
	assert.Zero(t, snap.Overdue)
	assert.False(t, snap.Paused)
	assert.True(t, snap.CalendarAware)
	assert.Equal(t, "2h 30m 0s", snap.Format(FormatOptions{Live: true}))
}

func TestEvaluatePausedOutsideShift(t *testing.T) {
	cal := officeCalendar()
	snap := Evaluate(utc(19, 20, 0), utc(20, 10, 0), &cal, nil)

	assert.Equal(t, StateCountingDown, snap.State)
	assert.True(t, snap.Paused)
	assert.Equal(t, 60, snap.RemainingMinutes)
	assert.Equal(t, "1h 0m (paused)", snap.Format(FormatOptions{Live: true}))
}

func TestEvaluatePausedOnLeave(t *testing.T) {
	cal := officeCalendar()
	leaves := []LeaveRecord{{Start: utc(19, 9, 0), End: utc(19, 13, 0)}}
	snap := Evaluate(utc(19, 10, 0), utc(19, 15, 0), &cal, leaves)

	assert.True(t, snap.Paused)
	assert.Equal(t, 120, snap.RemainingMinutes)
}

func TestEvaluateOverdue(t *testing.T) {
	cal := officeCalendar()
	snap := Evaluate(utc(19, 9, 30), utc(16, 17, 0), &cal, nil)

	assert.Equal(t, StateOverdueAccruing, snap.State)
	assert.Equal(t, 90, snap.OverdueMinutes)
	assert.Zero(t, snap.Remaining)
	assert.True(t, snap.Urgent(0))

	// Total open time adds the original nine hour budget on top.
	got := snap.Format(FormatOptions{SLAHoursPerDay: 9, InitialBudget: 9 * time.Hour})
	assert.Equal(t, "10h 30m — 1.2 days", got)
}

func TestEvaluateAtDeadlineIsOverdueWithNothingAccrued(t *testing.T) {
	cal := officeCalendar()
	at := utc(19, 12, 0)
	snap := Evaluate(at, at, &cal, nil)

	assert.Equal(t, StateOverdueAccruing, snap.State)
	assert.Zero(t, snap.OverdueMinutes)
	assert.Zero(t, snap.RemainingMinutes)
}

func TestEvaluateWithoutCalendarUsesWallClock(t *testing.T) {
	snap := Evaluate(utc(24, 10, 0), utc(24, 12, 0), nil, nil)
	assert.Equal(t, StateCountingDown, snap.State)
	assert.Equal(t, 120, snap.RemainingMinutes)
	assert.False(t, snap.CalendarAware)
	assert.False(t, snap.Paused)
	assert.Equal(t, "2h 0m", snap.Format(FormatOptions{SLAHoursPerDay: 9}), "no day equivalent without a calendar")

	late := Evaluate(utc(24, 12, 0).Add(90*time.Second), utc(24, 12, 0), nil, nil)
	assert.Equal(t, StateOverdueAccruing, late.State)
	assert.Equal(t, 2, late.OverdueMinutes)
}

func TestSnapshotUrgent(t *testing.T) {
	cal := officeCalendar()
	snap := Evaluate(utc(19, 10, 0), utc(19, 10, 20), &cal, nil)
	assert.True(t, snap.Urgent(30*time.Minute))
	assert.False(t, snap.Urgent(10*time.Minute))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "counting_down", StateCountingDown.String())
	assert.Equal(t, "overdue_accruing", StateOverdueAccruing.String())
}
