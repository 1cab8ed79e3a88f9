package repository

import (
	"errors"

	"order-sla-bot/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CalendarRepository is the calendar-lookup store. UserID 0 holds the team default.
type CalendarRepository interface {
	GetByUserID(userID uint) (*models.Calendar, error)
	GetDefault() (*models.Calendar, error)
	Upsert(calendar *models.Calendar) error
	Delete(userID uint) error
}

type GormCalendarRepository struct {
	db *gorm.DB
}

func NewGormCalendarRepository(db *gorm.DB) (*GormCalendarRepository, error) {
	if err := db.AutoMigrate(&models.Calendar{}); err != nil {
		return nil, err
	}
	return &GormCalendarRepository{db: db}, nil
}

func (r *GormCalendarRepository) GetByUserID(userID uint) (*models.Calendar, error) {
	var calendar models.Calendar
	err := r.db.Where("user_id = ?", userID).First(&calendar).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &calendar, nil
}

func (r *GormCalendarRepository) GetDefault() (*models.Calendar, error) {
	return r.GetByUserID(0)
}

// Upsert replaces the calendar of calendar.UserID.
func (r *GormCalendarRepository) Upsert(calendar *models.Calendar) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"working_days", "start_time", "end_time",
			"saturday_start_time", "saturday_end_time", "timezone", "updated_at",
		}),
	}).Create(calendar).Error
}

func (r *GormCalendarRepository) Delete(userID uint) error {
	result := r.db.Where("user_id = ?", userID).Delete(&models.Calendar{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
