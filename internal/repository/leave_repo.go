package repository

import (
	"errors"
	"time"

	"order-sla-bot/internal/logging"
	"order-sla-bot/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type LeaveRepository interface {
	Create(leave *models.Leave) error
	Update(leave *models.Leave) error
	GetByID(id uint) (*models.Leave, error)
	GetByUserID(userID uint) ([]models.Leave, error)
	GetPending() ([]models.Leave, error)
	GetApprovedOverlapping(userID uint, from, to time.Time) ([]models.Leave, error)
	CheckPeriodConflict(userID uint, start, end time.Time) (bool, error)
}

type GormLeaveRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormLeaveRepository(db *gorm.DB) (*GormLeaveRepository, error) {
	logger := logging.New()

	if err := db.AutoMigrate(&models.Leave{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate leaves table")
		return nil, err
	}

	logger.Info("Leave repository initialized")

	return &GormLeaveRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *GormLeaveRepository) Create(leave *models.Leave) error {
	r.logger.WithFields(logrus.Fields{
		"user_id":  leave.UserID,
		"start_at": leave.StartAt,
		"end_at":   leave.EndAt,
		"status":   leave.Status,
	}).Debug("Creating leave")

	if err := r.db.Create(leave).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create leave")
		return err
	}
	return nil
}

func (r *GormLeaveRepository) Update(leave *models.Leave) error {
	if err := r.db.Save(leave).Error; err != nil {
		r.logger.WithError(err).WithField("leave_id", leave.ID).Error("Failed to update leave")
		return err
	}
	return nil
}

func (r *GormLeaveRepository) GetByID(id uint) (*models.Leave, error) {
	var leave models.Leave
	err := r.db.First(&leave, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &leave, nil
}

func (r *GormLeaveRepository) GetByUserID(userID uint) ([]models.Leave, error) {
	var leaves []models.Leave
	err := r.db.Where("user_id = ?", userID).
		Order("start_at DESC").
		Find(&leaves).Error
	return leaves, err
}

func (r *GormLeaveRepository) GetPending() ([]models.Leave, error) {
	var leaves []models.Leave
	err := r.db.Where("status = ?", models.LeaveStatusPending).
		Order("start_at").
		Find(&leaves).Error
	return leaves, err
}

// GetApprovedOverlapping returns approved leave that intersects [from, to].
func (r *GormLeaveRepository) GetApprovedOverlapping(userID uint, from, to time.Time) ([]models.Leave, error) {
	var leaves []models.Leave
	err := r.db.Where("user_id = ? AND status = ? AND start_at <= ? AND end_at >= ?",
		userID, models.LeaveStatusApproved, to.UTC(), from.UTC()).
		Order("start_at").
		Find(&leaves).Error
	return leaves, err
}

// CheckPeriodConflict reports whether a pending or approved leave already overlaps the period.
func (r *GormLeaveRepository) CheckPeriodConflict(userID uint, start, end time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&models.Leave{}).
		Where("user_id = ? AND status <> ? AND start_at < ? AND end_at > ?",
			userID, models.LeaveStatusRejected, end.UTC(), start.UTC()).
		Count(&count).Error
	return count > 0, err
}
