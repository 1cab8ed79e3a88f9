package weekends

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// CalendarJSON is the production-calendar file layout: one year, days listed per month.
// "+" marks a holiday moved from a weekend, "*" marks a shortened working day.
type CalendarJSON struct {
	Year   int             `json:"year"`
	Months []MonthWeekends `json:"months"`
}

type MonthWeekends struct {
	Month int    `json:"month"`
	Days  string `json:"days"`
}

// NonWorkingDay is a civil date that nobody works on, whatever their calendar says.
type NonWorkingDay struct {
	Year  int
	Month int
	Day   int
}

// Span returns the whole local day in loc as an absolute interval.
func (d NonWorkingDay) Span(loc *time.Location) (time.Time, time.Time) {
	start := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, loc)
	end := time.Date(d.Year, time.Month(d.Month), d.Day+1, 0, 0, 0, 0, loc)
	return start, end
}

// IsWeekend reports whether the date is a Saturday or Sunday. Production
// calendars list these alongside real holidays.
func (d NonWorkingDay) IsWeekend() bool {
	wd := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC).Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// ParseFile reads and parses a production-calendar JSON file.
func ParseFile(filePath string) ([]NonWorkingDay, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON file: %w", err)
	}
	return Parse(data)
}

// Parse returns the non-working days listed in data. Shortened days are still working days and are skipped.
func Parse(data []byte) ([]NonWorkingDay, error) {
	var cal CalendarJSON
	if err := json.Unmarshal(data, &cal); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	if cal.Year < 2000 || cal.Year > 2100 {
		return nil, fmt.Errorf("year %d out of range", cal.Year)
	}

	days := []NonWorkingDay{}
	for _, monthData := range cal.Months {
		if monthData.Month < 1 || monthData.Month > 12 {
			return nil, fmt.Errorf("month %d out of range", monthData.Month)
		}

		for _, dayStr := range strings.Split(monthData.Days, ",") {
			dayStr = strings.TrimSpace(dayStr)
			if dayStr == "" || strings.HasSuffix(dayStr, "*") {
				continue
			}
			dayStr = strings.TrimSuffix(dayStr, "+")

			day, err := strconv.Atoi(dayStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse day '%s' in month %d: %w",
					dayStr, monthData.Month, err)
			}
			date := time.Date(cal.Year, time.Month(monthData.Month), day, 0, 0, 0, 0, time.UTC)
			if date.Day() != day {
				return nil, fmt.Errorf("day %d does not exist in month %d", day, monthData.Month)
			}

			days = append(days, NonWorkingDay{Year: cal.Year, Month: monthData.Month, Day: day})
		}
	}
	return days, nil
}

// Between returns the days whose date falls within [from, to] in loc.
func Between(days []NonWorkingDay, from, to time.Time, loc *time.Location) []NonWorkingDay {
	result := []NonWorkingDay{}
	for _, day := range days {
		start, end := day.Span(loc)
		if end.After(from) && !start.After(to) {
			result = append(result, day)
		}
	}
	return result
}
