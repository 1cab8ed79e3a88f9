package workhours

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

var (
	ErrInvalidFormat   = errors.New("invalid time format")
	ErrUnknownTimezone = errors.New("unknown timezone")
	ErrInvalidCalendar = errors.New("invalid calendar")
)

// InvalidFormatError is returned by TimeToMinutes for anything that is not a 24-hour HH:MM value.
type InvalidFormatError struct {
	Value string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid time format %q: expected HH:MM", e.Value)
}

func (e *InvalidFormatError) Is(target error) bool {
	return target == ErrInvalidFormat
}

// CalendarConfig describes one resource's working pattern.
type CalendarConfig struct {
	WorkingDays       []int // ISO weekdays, 1=Monday..7=Sunday
	StartTime         string
	EndTime           string
	SaturdayStartTime *string
	SaturdayEndTime   *string
	Timezone          string
}

// LeaveRecord is an approved absence. Working time inside it does not count.
type LeaveRecord struct {
	Start time.Time
	End   time.Time
}

// LocalDateParts is an instant as seen on the wall clock of a calendar.
type LocalDateParts struct {
	Year    int
	Month   time.Month
	Day     int
	Hour    int
	Minute  int
	Second  int
	Weekday time.Weekday
}

// MinuteOfDay returns minutes since local midnight.
func (p LocalDateParts) MinuteOfDay() int {
	return p.Hour*60 + p.Minute
}

// Location resolves the calendar timezone. An empty name means UTC.
func (c CalendarConfig) Location() (*time.Location, error) {
	return loadLocation(c.Timezone)
}

// IsWorkingDay reports whether the ISO weekday is configured as a working day.
func (c CalendarConfig) IsWorkingDay(isoDay int) bool {
	for _, d := range c.WorkingDays {
		if d == isoDay {
			return true
		}
	}
	return false
}

// HasSaturdayOverride reports whether a separate Saturday window is configured.
func (c CalendarConfig) HasSaturdayOverride() bool {
	return c.SaturdayStartTime != nil && c.SaturdayEndTime != nil &&
		*c.SaturdayStartTime != "" && *c.SaturdayEndTime != ""
}

// ShiftFor returns the shift window in minutes of day for the given ISO weekday.
func (c CalendarConfig) ShiftFor(isoDay int) (start, end int, err error) {
	startText, endText := c.StartTime, c.EndTime
	if isoDay == 6 && c.HasSaturdayOverride() {
		startText, endText = *c.SaturdayStartTime, *c.SaturdayEndTime
	}

	if start, err = TimeToMinutes(startText); err != nil {
		return 0, 0, err
	}
	if end, err = TimeToMinutes(endText); err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// Validate checks the configuration at the data-entry boundary.
// Overnight shifts are accepted; a zero-length shift is not.
func (c CalendarConfig) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}

	seen := make(map[int]bool, len(c.WorkingDays))
	for _, d := range c.WorkingDays {
		if d < 1 || d > 7 {
			return fmt.Errorf("%w: weekday %d out of range 1..7", ErrInvalidCalendar, d)
		}
		if seen[d] {
			return fmt.Errorf("%w: weekday %d listed twice", ErrInvalidCalendar, d)
		}
		seen[d] = true
	}

	if err := validateWindow(c.StartTime, c.EndTime); err != nil {
		return err
	}

	if (c.SaturdayStartTime == nil) != (c.SaturdayEndTime == nil) {
		return fmt.Errorf("%w: saturday override needs both start and end", ErrInvalidCalendar)
	}
	if c.HasSaturdayOverride() {
		if err := validateWindow(*c.SaturdayStartTime, *c.SaturdayEndTime); err != nil {
			return fmt.Errorf("saturday: %w", err)
		}
	}
	return nil
}

func validateWindow(startText, endText string) error {
	start, err := TimeToMinutes(startText)
	if err != nil {
		return err
	}
	end, err := TimeToMinutes(endText)
	if err != nil {
		return err
	}
	if start == end {
		return fmt.Errorf("%w: shift %s-%s has zero length", ErrInvalidCalendar, startText, endText)
	}
	return nil
}

// ToTimezoneDate projects an instant onto the wall clock of timezone.
func ToTimezoneDate(instant time.Time, timezone string) (LocalDateParts, error) {
	loc, err := loadLocation(timezone)
	if err != nil {
		return LocalDateParts{}, err
	}
	return partsOf(instant.In(loc)), nil
}

func partsOf(t time.Time) LocalDateParts {
	return LocalDateParts{
		Year:    t.Year(),
		Month:   t.Month(),
		Day:     t.Day(),
		Hour:    t.Hour(),
		Minute:  t.Minute(),
		Second:  t.Second(),
		Weekday: t.Weekday(),
	}
}

// GetISODay converts the weekday to Monday=1..Sunday=7.
func GetISODay(p LocalDateParts) int {
	return isoDay(p.Weekday)
}

func isoDay(w time.Weekday) int {
	if w == time.Sunday {
		return 7
	}
	return int(w)
}

// TimeToMinutes parses a 24-hour "HH:MM" (or "H:MM") value into minutes since midnight.
func TimeToMinutes(text string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(text), ":")
	if !ok || len(hh) < 1 || len(hh) > 2 || len(mm) != 2 {
		return 0, &InvalidFormatError{Value: text}
	}

	hours, err := strconv.Atoi(hh)
	if err != nil || hours < 0 || hours > 23 || strings.ContainsAny(hh, "+-") {
		return 0, &InvalidFormatError{Value: text}
	}
	minutes, err := strconv.Atoi(mm)
	if err != nil || minutes < 0 || minutes > 59 || strings.ContainsAny(mm, "+-") {
		return 0, &InvalidFormatError{Value: text}
	}

	return hours*60 + minutes, nil
}

// IsOvernightShift reports whether the shift crosses midnight.
func IsOvernightShift(startMinutes, endMinutes int) bool {
	return endMinutes <= startMinutes
}

// IsWithinShift reports whether the minute of day falls inside the shift.
func IsWithinShift(currentMinutes, startMinutes, endMinutes int) bool {
	if IsOvernightShift(startMinutes, endMinutes) {
		return currentMinutes >= startMinutes || currentMinutes < endMinutes
	}
	return currentMinutes >= startMinutes && currentMinutes < endMinutes
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrUnknownTimezone, name, err)
	}
	return loc, nil
}
