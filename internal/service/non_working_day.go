package service

import (
	"time"

	"order-sla-bot/internal/logging"
	"order-sla-bot/internal/models"
	"order-sla-bot/internal/repository"
	"order-sla-bot/pkg/weekends"
	"order-sla-bot/pkg/workhours"

	"github.com/sirupsen/logrus"
)

type NonWorkingDayService struct {
	repo   repository.NonWorkingDayRepository
	logger *logrus.Logger
}

func NewNonWorkingDayService(repo repository.NonWorkingDayRepository) *NonWorkingDayService {
	return &NonWorkingDayService{repo: repo, logger: logging.New()}
}

// LoadFromJSON replaces the stored holidays with the ones listed in the production-calendar file.
func (s *NonWorkingDayService) LoadFromJSON(filePath string) (int, error) {
	days, err := weekends.ParseFile(filePath)
	if err != nil {
		return 0, err
	}

	rows := make([]models.NonWorkingDay, 0, len(days))
	for _, d := range days {
		rows = append(rows, models.NonWorkingDay{
			Date:  time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC),
			Year:  d.Year,
			Month: d.Month,
			Day:   d.Day,
		})
	}

	// Replace rather than merge so re-running the import never duplicates days.
	if err := s.repo.DeleteAll(); err != nil {
		s.logger.Warnf("Failed to delete old non-working days: %v", err)
	}

	if err := s.repo.BulkCreate(rows); err != nil {
		return 0, err
	}

	return len(rows), nil
}

// Upcoming returns up to limit stored holidays on or after the date of from,
// skipping the ordinary weekends the production calendar lists as well.
func (s *NonWorkingDayService) Upcoming(from time.Time, limit int) ([]weekends.NonWorkingDay, error) {
	rows, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}

	today := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	days := []weekends.NonWorkingDay{}
	for _, r := range rows {
		day := weekends.NonWorkingDay{Year: r.Year, Month: r.Month, Day: r.Day}
		if day.IsWeekend() || r.Date.Before(today) {
			continue
		}
		days = append(days, day)
		if len(days) == limit {
			break
		}
	}
	return days, nil
}

// Between returns the stored holidays touching [from, to] in loc.
func (s *NonWorkingDayService) Between(from, to time.Time, loc *time.Location) ([]weekends.NonWorkingDay, error) {
	rows, err := s.repo.GetBetween(from, to)
	if err != nil {
		return nil, err
	}

	days := make([]weekends.NonWorkingDay, 0, len(rows))
	for _, r := range rows {
		days = append(days, weekends.NonWorkingDay{Year: r.Year, Month: r.Month, Day: r.Day})
	}
	return weekends.Between(days, from, to, loc), nil
}

// AsLeave turns holidays into whole-day leave records in loc. Weekend dates
// are left to each resource's own calendar, so Saturday shifts keep counting.
func AsLeave(days []weekends.NonWorkingDay, loc *time.Location) []workhours.LeaveRecord {
	records := make([]workhours.LeaveRecord, 0, len(days))
	for _, d := range days {
		if d.IsWeekend() {
			continue
		}
		start, end := d.Span(loc)
		records = append(records, workhours.LeaveRecord{Start: start, End: end})
	}
	return records
}
