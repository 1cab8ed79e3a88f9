package workhours

import "time"

// CalculateRemainingWorkingMinutes returns the working minutes left until deadline,
// rounded down. It is 0 once now has reached the deadline; use
// CalculateOverdueWorkingMinutes past that point.
func CalculateRemainingWorkingMinutes(now, deadline time.Time, cal CalendarConfig, leaves []LeaveRecord) int {
	if !now.Before(deadline) {
		return 0
	}
	return WorkingMinutes(now, deadline, cal, leaves, RoundDown)
}

// CalculateOverdueWorkingMinutes returns the working minutes consumed since deadline,
// rounded up. It is 0 while now has not passed the deadline.
func CalculateOverdueWorkingMinutes(now, deadline time.Time, cal CalendarConfig, leaves []LeaveRecord) int {
	if !now.After(deadline) {
		return 0
	}
	return WorkingMinutes(deadline, now, cal, leaves, RoundUp)
}

// IsWithinShiftAt reports whether now falls inside the shift of its calendar day,
// including the morning tail of an overnight shift that began the day before.
func IsWithinShiftAt(now time.Time, cal CalendarConfig) bool {
	parts, err := ToTimezoneDate(now, cal.Timezone)
	if err != nil {
		return false
	}
	current := parts.MinuteOfDay()
	today := GetISODay(parts)

	if cal.IsWorkingDay(today) {
		start, end, err := cal.ShiftFor(today)
		if err != nil {
			return false
		}
		if IsOvernightShift(start, end) {
			if current >= start {
				return true
			}
		} else if IsWithinShift(current, start, end) {
			return true
		}
	}

	yesterday := today - 1
	if yesterday == 0 {
		yesterday = 7
	}
	if !cal.IsWorkingDay(yesterday) {
		return false
	}
	start, end, err := cal.ShiftFor(yesterday)
	if err != nil {
		return false
	}
	return IsOvernightShift(start, end) && current < end
}

// IsWorkingAt is IsWithinShiftAt that also treats approved leave as off-shift.
func IsWorkingAt(now time.Time, cal CalendarConfig, leaves []LeaveRecord) bool {
	if !IsWithinShiftAt(now, cal) {
		return false
	}
	return !(&plan{leaves: mergeLeaves(leaves)}).onLeave(now)
}
