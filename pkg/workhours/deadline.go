package workhours

import (
	"errors"
	"time"
)

// ErrNoWorkingTime is returned when the budget cannot be placed within the search horizon.
var ErrNoWorkingTime = errors.New("no working time available")

const maxScanDays = 3 * 366

// AddWorkingMinutes returns the instant at which minutes of working time have
// elapsed after start. A nil calendar adds plain wall-clock minutes.
func AddWorkingMinutes(start time.Time, minutes int, cal *CalendarConfig, leaves []LeaveRecord) (time.Time, error) {
	if minutes <= 0 {
		return start, nil
	}
	if cal == nil {
		return start.Add(time.Duration(minutes) * time.Minute), nil
	}
	if _, err := cal.Location(); err != nil {
		return time.Time{}, err
	}

	p, ok := newPlan(*cal, leaves)
	if !ok {
		return time.Time{}, ErrNoWorkingTime
	}

	remaining := time.Duration(minutes) * time.Minute
	var prevEnd time.Time
	day := prevDay(dayAnchor(start, p.loc))
	for i := 0; i < maxScanDays; i, day = i+1, nextDay(day) {
		s, ok := p.shift(day)
		if !ok {
			continue
		}
		if s.start.Before(prevEnd) {
			s.start = prevEnd
		}
		if s.end.After(prevEnd) {
			prevEnd = s.end
		}
		if !s.end.After(start) {
			continue
		}
		if s.start.Before(start) {
			s.start = start
		}
		if !s.start.Before(s.end) {
			continue
		}

		for _, piece := range p.free(s.start, s.end) {
			available := piece.end.Sub(piece.start)
			if available >= remaining {
				return piece.start.Add(remaining), nil
			}
			remaining -= available
		}
	}
	return time.Time{}, ErrNoWorkingTime
}
