package repository

import (
	"errors"
	"time"

	"order-sla-bot/internal/logging"
	"order-sla-bot/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type TaskRepository interface {
	Create(task *models.Task) error
	Update(task *models.Task) error
	GetByID(id uint) (*models.Task, error)
	GetByAssignee(assigneeID uint, includeResolved bool) ([]*models.Task, error)
	GetByCreator(creatorID uint, includeResolved bool) ([]*models.Task, error)
	GetOpen() ([]*models.Task, error)
	MarkEscalated(id uint, status models.TaskStatus, deadline, at time.Time) (bool, error)
}

type GormTaskRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormTaskRepository(db *gorm.DB) (*GormTaskRepository, error) {
	logger := logging.New()

	if err := db.AutoMigrate(&models.Task{}, &models.Phase{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate tasks table")
		return nil, err
	}

	logger.Info("Task repository initialized")

	return &GormTaskRepository{
		db:     db,
		logger: logger,
	}, nil
}

var resolvedStatuses = []models.TaskStatus{models.TaskApproved, models.TaskCancelled}

func withPhases(db *gorm.DB) *gorm.DB {
	return db.Preload("Phases", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	})
}

// Create stores the task together with its phases.
func (r *GormTaskRepository) Create(task *models.Task) error {
	r.logger.WithFields(logrus.Fields{
		"reference":   task.Reference,
		"order_type":  task.OrderType,
		"assignee_id": task.AssigneeID,
		"phases":      len(task.Phases),
	}).Debug("Creating task")

	if err := r.db.Create(task).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create task")
		return err
	}
	return nil
}

// Update saves the task and every loaded phase in one transaction.
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Phases").Save(task).Error; err != nil {
			return err
		}
		for i := range task.Phases {
			if err := tx.Save(&task.Phases[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormTaskRepository) GetByID(id uint) (*models.Task, error) {
	var task models.Task
	err := withPhases(r.db).First(&task, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *GormTaskRepository) GetByAssignee(assigneeID uint, includeResolved bool) ([]*models.Task, error) {
	query := withPhases(r.db).Where("assignee_id = ?", assigneeID)
	if !includeResolved {
		query = query.Where("status NOT IN ?", resolvedStatuses)
	}

	var tasks []*models.Task
	err := query.Order("id").Find(&tasks).Error
	return tasks, err
}

func (r *GormTaskRepository) GetByCreator(creatorID uint, includeResolved bool) ([]*models.Task, error) {
	query := withPhases(r.db).Where("created_by_id = ?", creatorID)
	if !includeResolved {
		query = query.Where("status NOT IN ?", resolvedStatuses)
	}

	var tasks []*models.Task
	err := query.Order("id").Find(&tasks).Error
	return tasks, err
}

// GetOpen returns every task that is not approved or cancelled.
func (r *GormTaskRepository) GetOpen() ([]*models.Task, error) {
	var tasks []*models.Task
	err := withPhases(r.db).
		Where("status NOT IN ?", resolvedStatuses).
		Order("id").
		Find(&tasks).Error
	return tasks, err
}

// MarkEscalated writes only the escalation columns, and only while the task is
// still in status. It reports whether a row was stamped.
func (r *GormTaskRepository) MarkEscalated(id uint, status models.TaskStatus, deadline, at time.Time) (bool, error) {
	result := r.db.Model(&models.Task{}).
		Where("id = ? AND status = ?", id, status).
		UpdateColumns(map[string]any{
			"escalated_for": deadline.UTC(),
			"escalated_at":  at.UTC(),
		})
	if result.Error != nil {
		r.logger.WithError(result.Error).WithField("task_id", id).Error("Failed to stamp escalation")
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
