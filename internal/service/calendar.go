package service

import (
	"errors"
	"fmt"

	"order-sla-bot/internal/logging"
	"order-sla-bot/internal/models"
	"order-sla-bot/internal/repository"
	"order-sla-bot/pkg/workhours"

	"github.com/sirupsen/logrus"
)

// CalendarInput is a calendar as typed by a user. The Saturday window is optional
// but must be given as a pair; an empty Timezone means the configured default.
type CalendarInput struct {
	WorkingDays       []int   `validate:"required,min=1,dive,min=1,max=7"`
	StartTime         string  `validate:"required,hhmm"`
	EndTime           string  `validate:"required,hhmm"`
	SaturdayStartTime *string `validate:"omitempty,hhmm"`
	SaturdayEndTime   *string `validate:"omitempty,hhmm"`
	Timezone          string  `validate:"omitempty,timezone"`
}

type CalendarService struct {
	repo            repository.CalendarRepository
	defaultTimezone string
	logger          *logrus.Logger
}

func NewCalendarService(repo repository.CalendarRepository, defaultTimezone string) *CalendarService {
	return &CalendarService{
		repo:            repo,
		defaultTimezone: defaultTimezone,
		logger:          logging.New(),
	}
}

// Lookup returns the stored calendar that applies to the user: their own, else the team
// default. Both missing yields nil.
func (s *CalendarService) Lookup(userID uint) (*models.Calendar, error) {
	calendar, err := s.repo.GetByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get calendar: %w", err)
	}
	if calendar != nil || userID == 0 {
		return calendar, nil
	}

	calendar, err = s.repo.GetDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to get default calendar: %w", err)
	}
	return calendar, nil
}

// ForUser resolves the calendar config for the user. A nil config means no calendar
// is known and deadlines run on the wall clock.
func (s *CalendarService) ForUser(userID uint) (*workhours.CalendarConfig, error) {
	calendar, err := s.Lookup(userID)
	if err != nil || calendar == nil {
		return nil, err
	}

	cfg, err := calendar.ToConfig()
	if err != nil {
		return nil, fmt.Errorf("calendar of user %d: %w", userID, errors.Join(workhours.ErrInvalidCalendar, err))
	}
	return &cfg, nil
}

// SetCalendar stores the actor's own calendar.
func (s *CalendarService) SetCalendar(actor *models.User, in CalendarInput) (*models.Calendar, error) {
	return s.save(actor.ID, in)
}

// SetDefault stores the team default calendar. Managers only.
func (s *CalendarService) SetDefault(actor *models.User, in CalendarInput) (*models.Calendar, error) {
	if !actor.CanManage() {
		return nil, ErrForbidden
	}
	return s.save(0, in)
}

func (s *CalendarService) save(userID uint, in CalendarInput) (*models.Calendar, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if (in.SaturdayStartTime == nil) != (in.SaturdayEndTime == nil) {
		return nil, fmt.Errorf("%w: saturday window needs both start and end", ErrInvalidInput)
	}
	if in.Timezone == "" {
		in.Timezone = s.defaultTimezone
	}

	calendar := &models.Calendar{
		UserID:            userID,
		WorkingDays:       models.FormatWorkingDays(in.WorkingDays),
		StartTime:         in.StartTime,
		EndTime:           in.EndTime,
		SaturdayStartTime: in.SaturdayStartTime,
		SaturdayEndTime:   in.SaturdayEndTime,
		Timezone:          in.Timezone,
	}

	cfg, err := calendar.ToConfig()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.repo.Upsert(calendar); err != nil {
		return nil, fmt.Errorf("failed to save calendar: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"days":     calendar.WorkingDays,
		"shift":    calendar.StartTime + "-" + calendar.EndTime,
		"timezone": calendar.Timezone,
	}).Info("Calendar saved")

	return calendar, nil
}
