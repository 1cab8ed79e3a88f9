package repository

import (
	"time"

	"order-sla-bot/internal/models"

	"gorm.io/gorm"
)

type NonWorkingDayRepository interface {
	GetAll() ([]models.NonWorkingDay, error)
	GetBetween(from, to time.Time) ([]models.NonWorkingDay, error)
	BulkCreate(days []models.NonWorkingDay) error
	DeleteAll() error
}

type GormNonWorkingDayRepository struct {
	db *gorm.DB
}

func NewGormNonWorkingDayRepository(db *gorm.DB) (*GormNonWorkingDayRepository, error) {
	if err := db.AutoMigrate(&models.NonWorkingDay{}); err != nil {
		return nil, err
	}

	return &GormNonWorkingDayRepository{db: db}, nil
}

func (r *GormNonWorkingDayRepository) BulkCreate(days []models.NonWorkingDay) error {
	if len(days) == 0 {
		return nil
	}
	return r.db.Create(&days).Error
}

func (r *GormNonWorkingDayRepository) GetAll() ([]models.NonWorkingDay, error) {
	var days []models.NonWorkingDay
	err := r.db.Order("date").Find(&days).Error
	return days, err
}

// GetBetween returns the holidays whose civil date lies within the civil dates of from and to.
// A day of slack on each side covers calendars far from UTC.
func (r *GormNonWorkingDayRepository) GetBetween(from, to time.Time) ([]models.NonWorkingDay, error) {
	var days []models.NonWorkingDay
	err := r.db.Where("date >= ? AND date <= ?", civilDate(from.AddDate(0, 0, -1)), civilDate(to.AddDate(0, 0, 1))).
		Order("date").
		Find(&days).Error
	return days, err
}

func (r *GormNonWorkingDayRepository) DeleteAll() error {
	return r.db.Exec("DELETE FROM non_working_days").Error
}

// civilDate is the UTC midnight of t's own date, the form holidays are stored in.
func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
