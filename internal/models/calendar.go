package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"order-sla-bot/pkg/workhours"
)

// Calendar is a stored working pattern. UserID 0 is the team default.
type Calendar struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UserID            uint      `gorm:"uniqueIndex;not null;default:0" json:"user_id"`
	WorkingDays       string    `gorm:"type:varchar(20);not null" json:"working_days"` // "1,2,3,4,5"
	StartTime         string    `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime           string    `gorm:"type:varchar(5);not null" json:"end_time"`
	SaturdayStartTime *string   `gorm:"type:varchar(5)" json:"saturday_start_time"`
	SaturdayEndTime   *string   `gorm:"type:varchar(5)" json:"saturday_end_time"`
	Timezone          string    `gorm:"type:varchar(64);not null" json:"timezone"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Calendar) TableName() string {
	return "calendars"
}

// IsDefault reports whether this is the team default calendar.
func (c *Calendar) IsDefault() bool {
	return c.UserID == 0
}

// ToConfig converts the row into the immutable value the deadline engine consumes.
func (c *Calendar) ToConfig() (workhours.CalendarConfig, error) {
	days, err := ParseWorkingDays(c.WorkingDays)
	if err != nil {
		return workhours.CalendarConfig{}, err
	}
	return workhours.CalendarConfig{
		WorkingDays:       days,
		StartTime:         c.StartTime,
		EndTime:           c.EndTime,
		SaturdayStartTime: c.SaturdayStartTime,
		SaturdayEndTime:   c.SaturdayEndTime,
		Timezone:          c.Timezone,
	}, nil
}

// ParseWorkingDays parses "1,2,3" into ISO weekdays. An empty string is an empty set.
func ParseWorkingDays(s string) ([]int, error) {
	days := []int{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		day, err := strconv.Atoi(part)
		if err != nil || day < 1 || day > 7 {
			return nil, fmt.Errorf("invalid weekday %q", part)
		}
		days = append(days, day)
	}
	return days, nil
}

// FormatWorkingDays is the inverse of ParseWorkingDays; the output is sorted.
func FormatWorkingDays(days []int) string {
	sorted := append([]int(nil), days...)
	sort.Ints(sorted)

	parts := make([]string, len(sorted))
	for i, d := range sorted {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

var weekdayNames = [...]string{"", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Summary renders the calendar for chat output.
func (c *Calendar) Summary() string {
	days, err := ParseWorkingDays(c.WorkingDays)
	if err != nil {
		return "invalid calendar: " + err.Error()
	}

	names := make([]string, 0, len(days))
	for _, d := range days {
		names = append(names, weekdayNames[d])
	}
	if len(names) == 0 {
		names = append(names, "none")
	}

	text := fmt.Sprintf("📅 Days: %s\n⏰ Shift: %s-%s", strings.Join(names, ", "), c.StartTime, c.EndTime)
	if c.SaturdayStartTime != nil && c.SaturdayEndTime != nil {
		text += fmt.Sprintf("\n🗓 Saturday: %s-%s", *c.SaturdayStartTime, *c.SaturdayEndTime)
	}
	text += "\n🌍 Timezone: " + c.Timezone
	return text
}
