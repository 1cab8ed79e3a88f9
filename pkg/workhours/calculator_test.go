package workhours

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Week of 2026-10-19: Monday 19 .. Sunday 25. Friday 16 is the week before.
func utc(day, hour, minute int) time.Time {
	return time.Date(2026, time.October, day, hour, minute, 0, 0, time.UTC)
}

func officeCalendar() CalendarConfig {
	return CalendarConfig{
		WorkingDays: []int{1, 2, 3, 4, 5},
		StartTime:   "09:00",
		EndTime:     "18:00",
		Timezone:    "UTC",
	}
}

func TestWorkingMinutesZeroRange(t *testing.T) {
	cal := officeCalendar()
	at := utc(19, 10, 0)
	assert.Equal(t, 0, WorkingMinutes(at, at, cal, nil, RoundDown))
	assert.Equal(t, 0, WorkingMinutes(at, at, cal, nil, RoundUp))
	assert.Equal(t, 0, CalculateRemainingWorkingMinutes(at, at, cal, nil))
}

func TestWorkingMinutesSingleDay(t *testing.T) {
	cal := officeCalendar()
	tests := []struct {
		name     string
		from, to time.Time
		want     int
	}{
		{"full shift", utc(19, 0, 0), utc(20, 0, 0), 540},
		{"inside shift", utc(19, 10, 0), utc(19, 12, 30), 150},
		{"starts before shift", utc(19, 7, 0), utc(19, 10, 0), 60},
		{"ends after shift", utc(19, 17, 0), utc(19, 21, 0), 60},
		{"off hours only", utc(19, 19, 0), utc(20, 8, 59), 0},
		{"weekend only", utc(24, 0, 0), utc(26, 0, 0), 0},
		{"whole week", utc(19, 0, 0), utc(26, 0, 0), 5 * 540},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WorkingMinutes(tt.from, tt.to, cal, nil, RoundDown))
		})
	}
}

func TestWorkingMinutesReversedArgumentsAreSwapped(t *testing.T) {
	cal := officeCalendar()
	forward := WorkingMinutes(utc(16, 17, 0), utc(19, 9, 30), cal, nil, RoundDown)
	backward := WorkingMinutes(utc(19, 9, 30), utc(16, 17, 0), cal, nil, RoundDown)
	assert.Equal(t, 90, forward)
	assert.Equal(t, forward, backward)
}

func TestWorkingMinutesRounding(t *testing.T) {
	cal := officeCalendar()
	from := utc(19, 10, 0)
	to := from.Add(90 * time.Second)
	assert.Equal(t, 1, WorkingMinutes(from, to, cal, nil, RoundDown))
	assert.Equal(t, 2, WorkingMinutes(from, to, cal, nil, RoundUp))
	assert.Equal(t, 90*time.Second, WorkingDuration(from, to, cal, nil))
}

func TestWorkingMinutesEmptyWorkingDays(t *testing.T) {
	cal := officeCalendar()
	cal.WorkingDays = nil
	assert.Equal(t, 0, WorkingMinutes(utc(19, 0, 0), utc(26, 0, 0), cal, nil, RoundUp))
}

func TestWorkingMinutesBrokenCalendarCountsNothing(t *testing.T) {
	badTime := officeCalendar()
	badTime.EndTime = "6pm"
	assert.Equal(t, 0, WorkingMinutes(utc(19, 0, 0), utc(20, 0, 0), badTime, nil, RoundDown))

	badZone := officeCalendar()
	badZone.Timezone = "Nowhere/City"
	assert.Equal(t, 0, WorkingMinutes(utc(19, 0, 0), utc(20, 0, 0), badZone, nil, RoundDown))
}

func TestWorkingMinutesLeave(t *testing.T) {
	cal := officeCalendar()
	day := func() (time.Time, time.Time) { return utc(19, 0, 0), utc(20, 0, 0) }

	tests := []struct {
		name   string
		leaves []LeaveRecord
		want   int
	}{
		{"covers whole shift", []LeaveRecord{{Start: utc(19, 8, 0), End: utc(19, 19, 0)}}, 0},
		{"overlaps shift start", []LeaveRecord{{Start: utc(19, 8, 0), End: utc(19, 10, 30)}}, 450},
		{"overlaps shift end", []LeaveRecord{{Start: utc(19, 16, 0), End: utc(19, 20, 0)}}, 420},
		{"inside shift", []LeaveRecord{{Start: utc(19, 12, 0), End: utc(19, 13, 0)}}, 480},
		{"overlapping records count once", []LeaveRecord{
			{Start: utc(19, 10, 0), End: utc(19, 12, 0)},
			{Start: utc(19, 11, 0), End: utc(19, 13, 0)},
		}, 360},
		{"duplicate records count once", []LeaveRecord{
			{Start: utc(19, 10, 0), End: utc(19, 12, 0)},
			{Start: utc(19, 10, 0), End: utc(19, 12, 0)},
		}, 420},
		{"reversed record is ignored", []LeaveRecord{{Start: utc(19, 12, 0), End: utc(19, 10, 0)}}, 540},
		{"outside shift", []LeaveRecord{{Start: utc(19, 19, 0), End: utc(19, 23, 0)}}, 540},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to := day()
			assert.Equal(t, tt.want, WorkingMinutes(from, to, cal, tt.leaves, RoundDown))
		})
	}
}

func TestWorkingMinutesMultiDayLeave(t *testing.T) {
	cal := officeCalendar()
	leaves := []LeaveRecord{{Start: utc(16, 12, 0), End: utc(19, 12, 0)}}
	// Friday 09-12 and Monday 12-18.
	assert.Equal(t, 180+360, WorkingMinutes(utc(16, 9, 0), utc(19, 18, 0), cal, leaves, RoundDown))
}

func TestWorkingMinutesLeaveCoveringRangeIsZero(t *testing.T) {
	calendars := []CalendarConfig{officeCalendar(), {
		WorkingDays: []int{1, 2, 3, 4, 5, 6, 7},
		StartTime:   "22:00",
		EndTime:     "06:00",
		Timezone:    "Asia/Karachi",
	}}
	from, to := utc(14, 3, 0), utc(22, 17, 0)
	leaves := []LeaveRecord{{Start: from.Add(-time.Hour), End: to.Add(time.Hour)}}
	for _, cal := range calendars {
		assert.Equal(t, 0, WorkingMinutes(from, to, cal, leaves, RoundUp))
	}
}

func TestWorkingMinutesSaturdayOverride(t *testing.T) {
	cal := officeCalendar()
	cal.WorkingDays = []int{1, 2, 3, 4, 5, 6}
	saturday := func() (time.Time, time.Time) { return utc(24, 0, 0), utc(25, 0, 0) }

	from, to := saturday()
	assert.Equal(t, 540, WorkingMinutes(from, to, cal, nil, RoundDown), "normal window without override")

	cal.SaturdayStartTime = strPtr("10:00")
	cal.SaturdayEndTime = strPtr("14:00")
	assert.Equal(t, 240, WorkingMinutes(from, to, cal, nil, RoundDown))

	// Weekdays keep the normal window.
	assert.Equal(t, 540, WorkingMinutes(utc(23, 0, 0), utc(24, 0, 0), cal, nil, RoundDown))

	cal.WorkingDays = []int{1, 2, 3, 4, 5}
	assert.Equal(t, 0, WorkingMinutes(from, to, cal, nil, RoundDown), "override does not make Saturday a working day")
}

func TestWorkingMinutesOvernightShift(t *testing.T) {
	cal := CalendarConfig{
		WorkingDays: []int{1, 2, 3, 4, 5, 6, 7},
		StartTime:   "22:00",
		EndTime:     "06:00",
		Timezone:    "UTC",
	}

	assert.Equal(t, 60, WorkingMinutes(utc(19, 23, 0), utc(20, 0, 0), cal, nil, RoundDown))
	// Tail of Monday's shift plus the start of Tuesday's.
	assert.Equal(t, 120, WorkingMinutes(utc(20, 5, 0), utc(20, 23, 0), cal, nil, RoundDown))
	assert.Equal(t, 480, WorkingMinutes(utc(19, 12, 0), utc(20, 12, 0), cal, nil, RoundDown))
}

func TestWorkingMinutesOvernightShiftBelongsToStartDay(t *testing.T) {
	cal := CalendarConfig{
		WorkingDays: []int{5}, // Friday night only
		StartTime:   "22:00",
		EndTime:     "06:00",
		Timezone:    "UTC",
	}
	// Friday 22:00 to Saturday 06:00 counts even though Saturday is not a working day.
	assert.Equal(t, 480, WorkingMinutes(utc(23, 0, 0), utc(25, 0, 0), cal, nil, RoundDown))
}

func TestWorkingMinutesOvernightOverlapWithSaturdayCountsOnce(t *testing.T) {
	cal := CalendarConfig{
		WorkingDays:       []int{5, 6},
		StartTime:         "22:00",
		EndTime:           "06:00",
		SaturdayStartTime: strPtr("05:00"),
		SaturdayEndTime:   strPtr("10:00"),
		Timezone:          "UTC",
	}
	// Friday 22:00-06:00 then Saturday 06:00-10:00; 05:00-06:00 is not doubled.
	assert.Equal(t, 8*60+4*60, WorkingMinutes(utc(23, 22, 0), utc(24, 10, 0), cal, nil, RoundDown))
}

func TestWorkingMinutesHonoursCalendarTimezone(t *testing.T) {
	cal := officeCalendar()
	cal.Timezone = "Asia/Karachi" // UTC+5, shift is 04:00-13:00 UTC
	assert.Equal(t, 540, WorkingMinutes(utc(19, 0, 0), utc(20, 0, 0), cal, nil, RoundDown))
	assert.Equal(t, 240, WorkingMinutes(utc(19, 9, 0), utc(19, 18, 0), cal, nil, RoundDown))
}

func TestWorkingMinutesDaylightSavingDays(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	cal := CalendarConfig{WorkingDays: []int{7}, StartTime: "01:00", EndTime: "05:00", Timezone: "Europe/Berlin"}

	spring := WorkingMinutes(
		time.Date(2026, time.March, 29, 0, 0, 0, 0, berlin),
		time.Date(2026, time.March, 30, 0, 0, 0, 0, berlin),
		cal, nil, RoundDown)
	assert.Equal(t, 180, spring, "02:00-03:00 does not exist")

	autumn := WorkingMinutes(
		time.Date(2026, time.October, 25, 0, 0, 0, 0, berlin),
		time.Date(2026, time.October, 26, 0, 0, 0, 0, berlin),
		cal, nil, RoundDown)
	assert.Equal(t, 300, autumn, "02:00-03:00 happens twice")
}

func TestMergeLeaves(t *testing.T) {
	merged := mergeLeaves([]LeaveRecord{
		{Start: utc(20, 9, 0), End: utc(20, 10, 0)},
		{Start: utc(19, 9, 0), End: utc(19, 11, 0)},
		{Start: utc(19, 11, 0), End: utc(19, 12, 0)},
		{Start: utc(19, 13, 0), End: utc(19, 13, 0)},
	})
	if assert.Len(t, merged, 2) {
		assert.Equal(t, utc(19, 9, 0), merged[0].start)
		assert.Equal(t, utc(19, 12, 0), merged[0].end)
		assert.Equal(t, utc(20, 9, 0), merged[1].start)
	}
}
