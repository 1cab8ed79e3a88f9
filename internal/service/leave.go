package service

import (
	"fmt"
	"time"

	"order-sla-bot/internal/logging"
	"order-sla-bot/internal/models"
	"order-sla-bot/internal/repository"
	"order-sla-bot/pkg/clock"

	"github.com/sirupsen/logrus"
)

type LeaveService struct {
	repo   repository.LeaveRepository
	clock  clock.Clock
	logger *logrus.Logger
}

func NewLeaveService(repo repository.LeaveRepository, clk clock.Clock) *LeaveService {
	return &LeaveService{repo: repo, clock: clk, logger: logging.New()}
}

// RequestLeave files a pending leave request for the actor.
// Managers' own requests are approved straight away.
func (s *LeaveService) RequestLeave(actor *models.User, start, end time.Time, reason string) (*models.Leave, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("%w: leave must end after it starts", ErrInvalidInput)
	}
	if end.Before(s.clock.Now()) {
		return nil, fmt.Errorf("%w: leave is entirely in the past", ErrInvalidInput)
	}

	conflict, err := s.repo.CheckPeriodConflict(actor.ID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to check leave conflicts: %w", err)
	}
	if conflict {
		return nil, ErrLeaveConflict
	}

	leave := &models.Leave{
		UserID:  actor.ID,
		StartAt: start,
		EndAt:   end,
		Status:  models.LeaveStatusPending,
		Reason:  reason,
	}
	if actor.CanManage() {
		leave.Status = models.LeaveStatusApproved
		leave.ReviewedBy = &actor.ID
	}

	if err := s.repo.Create(leave); err != nil {
		return nil, fmt.Errorf("failed to create leave: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": actor.ID,
		"start":   start,
		"end":     end,
		"status":  leave.Status,
	}).Info("Leave requested")

	return leave, nil
}

// Approve marks a pending request approved. From then on it pauses the user's SLA clocks.
func (s *LeaveService) Approve(actor *models.User, leaveID uint) (*models.Leave, error) {
	return s.review(actor, leaveID, models.LeaveStatusApproved)
}

func (s *LeaveService) Reject(actor *models.User, leaveID uint) (*models.Leave, error) {
	return s.review(actor, leaveID, models.LeaveStatusRejected)
}

func (s *LeaveService) review(actor *models.User, leaveID uint, status models.LeaveStatus) (*models.Leave, error) {
	if !actor.CanManage() {
		return nil, ErrForbidden
	}

	leave, err := s.repo.GetByID(leaveID)
	if err != nil {
		return nil, fmt.Errorf("failed to get leave: %w", err)
	}
	if leave == nil {
		return nil, ErrLeaveNotFound
	}
	if leave.Status != models.LeaveStatusPending {
		return nil, ErrInvalidTransition
	}

	leave.Status = status
	leave.ReviewedBy = &actor.ID
	if err := s.repo.Update(leave); err != nil {
		return nil, fmt.Errorf("failed to update leave: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"leave_id": leaveID, "status": status, "by": actor.ID}).Info("Leave reviewed")
	return leave, nil
}

func (s *LeaveService) ListForUser(userID uint) ([]models.Leave, error) {
	return s.repo.GetByUserID(userID)
}

func (s *LeaveService) Pending() ([]models.Leave, error) {
	return s.repo.GetPending()
}
