package service

import (
	"context"
	"time"

	"order-sla-bot/internal/models"
	"order-sla-bot/internal/repository"
	"order-sla-bot/pkg/weekends"
	"order-sla-bot/pkg/workhours"

	"golang.org/x/sync/errgroup"
)

// Schedule is everything the deadline engine needs about one person.
// A nil Calendar means deadlines run on the wall clock.
type Schedule struct {
	Calendar *workhours.CalendarConfig
	Leaves   []workhours.LeaveRecord
}

// Location is the calendar's zone, or UTC without a calendar.
func (s Schedule) Location() *time.Location {
	if s.Calendar == nil {
		return time.UTC
	}
	loc, err := s.Calendar.Location()
	if err != nil {
		return time.UTC
	}
	return loc
}

// ScheduleResolver loads a person's calendar, approved leave and public holidays.
type ScheduleResolver struct {
	calendars *CalendarService
	leaves    repository.LeaveRepository
	holidays  *NonWorkingDayService
}

func NewScheduleResolver(calendars *CalendarService, leaves repository.LeaveRepository, holidays *NonWorkingDayService) *ScheduleResolver {
	return &ScheduleResolver{calendars: calendars, leaves: leaves, holidays: holidays}
}

// Resolve returns the schedule of userID with the leave that touches [from, to].
// Holidays are read for a day either side and placed in the calendar's zone.
func (r *ScheduleResolver) Resolve(ctx context.Context, userID uint, from, to time.Time) (Schedule, error) {
	if to.Before(from) {
		from, to = to, from
	}

	var (
		calendar *workhours.CalendarConfig
		approved []models.Leave
		holidays []weekends.NonWorkingDay
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		calendar, err = r.calendars.ForUser(userID)
		return err
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		approved, err = r.leaves.GetApprovedOverlapping(userID, from, to)
		return err
	})
	if r.holidays != nil {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var err error
			// Widened by a day; filtered again below once the calendar zone is known.
			holidays, err = r.holidays.Between(from.AddDate(0, 0, -1), to.AddDate(0, 0, 1), time.UTC)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Schedule{}, err
	}

	schedule := Schedule{Calendar: calendar}
	for i := range approved {
		schedule.Leaves = append(schedule.Leaves, approved[i].ToRecord())
	}
	if len(holidays) > 0 {
		loc := schedule.Location()
		schedule.Leaves = append(schedule.Leaves, AsLeave(weekends.Between(holidays, from, to, loc), loc)...)
	}
	return schedule, nil
}

// AddWorkingMinutes places a deadline minutes of working time after start.
func (s Schedule) AddWorkingMinutes(start time.Time, minutes int) (time.Time, error) {
	return workhours.AddWorkingMinutes(start, minutes, s.Calendar, s.Leaves)
}

// WorkingMinutes counts working minutes in [from, to], or wall-clock minutes without a calendar.
func (s Schedule) WorkingMinutes(from, to time.Time) int {
	if s.Calendar == nil {
		if to.Before(from) {
			from, to = to, from
		}
		return int(to.Sub(from) / time.Minute)
	}
	return workhours.WorkingMinutes(from, to, *s.Calendar, s.Leaves, workhours.RoundDown)
}
