package workhours

import (
	"sort"
	"time"
)

// Rounding selects how a working duration is converted to whole minutes.
type Rounding int

const (
	// RoundDown never over-credits time that is still left.
	RoundDown Rounding = iota
	// RoundUp never under-reports time that has already been consumed.
	RoundUp
)

type interval struct {
	start time.Time
	end   time.Time
}

type window struct {
	start, end int
	working    bool
}

// plan is a calendar resolved once per query: location, per-weekday windows and merged leave.
type plan struct {
	loc     *time.Location
	windows [8]window // indexed by ISO weekday
	leaves  []interval
}

func newPlan(cal CalendarConfig, leaves []LeaveRecord) (*plan, bool) {
	loc, err := cal.Location()
	if err != nil {
		return nil, false
	}

	p := &plan{loc: loc, leaves: mergeLeaves(leaves)}
	hasDay := false
	for iso := 1; iso <= 7; iso++ {
		if !cal.IsWorkingDay(iso) {
			continue
		}
		start, end, err := cal.ShiftFor(iso)
		if err != nil {
			return nil, false
		}
		p.windows[iso] = window{start: start, end: end, working: true}
		hasDay = true
	}
	return p, hasDay
}

// shift returns the absolute shift of the civil day that contains anchor.
func (p *plan) shift(anchor time.Time) (interval, bool) {
	w := p.windows[isoDay(anchor.Weekday())]
	if !w.working {
		return interval{}, false
	}

	y, m, d := anchor.Date()
	start := time.Date(y, m, d, w.start/60, w.start%60, 0, 0, p.loc)
	endDay := d
	if IsOvernightShift(w.start, w.end) {
		endDay++
	}
	end := time.Date(y, m, endDay, w.end/60, w.end%60, 0, 0, p.loc)
	return interval{start: start, end: end}, true
}

// free splits [start, end) into the pieces not covered by leave.
func (p *plan) free(start, end time.Time) []interval {
	var out []interval
	cursor := start
	for _, l := range p.leaves {
		if !l.end.After(cursor) {
			continue
		}
		if !l.start.Before(end) {
			break
		}
		if l.start.After(cursor) {
			out = append(out, interval{start: cursor, end: l.start})
		}
		cursor = l.end
		if !cursor.Before(end) {
			return out
		}
	}
	if cursor.Before(end) {
		out = append(out, interval{start: cursor, end: end})
	}
	return out
}

// onLeave reports whether the instant falls inside merged leave.
func (p *plan) onLeave(t time.Time) bool {
	for _, l := range p.leaves {
		if !t.Before(l.start) && t.Before(l.end) {
			return true
		}
	}
	return false
}

// dayAnchor is noon of the civil day containing t; noon exists on every DST day.
func dayAnchor(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 12, 0, 0, 0, loc)
}

func nextDay(anchor time.Time) time.Time {
	y, m, d := anchor.Date()
	return time.Date(y, m, d+1, 12, 0, 0, 0, anchor.Location())
}

func prevDay(anchor time.Time) time.Time {
	y, m, d := anchor.Date()
	return time.Date(y, m, d-1, 12, 0, 0, 0, anchor.Location())
}

// mergeLeaves drops empty or reversed records and returns the sorted union.
func mergeLeaves(leaves []LeaveRecord) []interval {
	valid := make([]interval, 0, len(leaves))
	for _, l := range leaves {
		if !l.End.After(l.Start) {
			continue
		}
		valid = append(valid, interval{start: l.Start, end: l.End})
	}
	sort.Slice(valid, func(i, j int) bool {
		return valid[i].start.Before(valid[j].start)
	})

	merged := valid[:0]
	for _, iv := range valid {
		if n := len(merged); n > 0 && !iv.start.After(merged[n-1].end) {
			if iv.end.After(merged[n-1].end) {
				merged[n-1].end = iv.end
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// WorkingDuration returns the working time between two instants under cal, minus leave.
// Argument order does not matter; the result is never negative.
func WorkingDuration(from, to time.Time, cal CalendarConfig, leaves []LeaveRecord) time.Duration {
	if from.After(to) {
		from, to = to, from
	}
	if from.Equal(to) {
		return 0
	}

	p, ok := newPlan(cal, leaves)
	if !ok {
		return 0
	}

	var (
		total   time.Duration
		prevEnd time.Time
	)
	last := dayAnchor(to, p.loc)
	// Start one day early: an overnight shift from the previous evening may cover from.
	for day := prevDay(dayAnchor(from, p.loc)); !day.After(last); day = nextDay(day) {
		s, ok := p.shift(day)
		if !ok {
			continue
		}
		// An overnight shift may run into the next day's window; count the overlap once.
		if s.start.Before(prevEnd) {
			s.start = prevEnd
		}
		if s.end.After(prevEnd) {
			prevEnd = s.end
		}
		if s.start.Before(from) {
			s.start = from
		}
		if s.end.After(to) {
			s.end = to
		}
		if !s.start.Before(s.end) {
			continue
		}
		for _, piece := range p.free(s.start, s.end) {
			total += piece.end.Sub(piece.start)
		}
	}
	return total
}

// WorkingMinutes is WorkingDuration in whole minutes.
func WorkingMinutes(from, to time.Time, cal CalendarConfig, leaves []LeaveRecord, rounding Rounding) int {
	return toMinutes(WorkingDuration(from, to, cal, leaves), rounding)
}

func toMinutes(d time.Duration, rounding Rounding) int {
	if d <= 0 {
		return 0
	}
	if rounding == RoundUp {
		return int((d + time.Minute - 1) / time.Minute)
	}
	return int(d / time.Minute)
}
